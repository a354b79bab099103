package websocket

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"droplink/pkg/logger"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	maxInbound = 4096
)

// Client is one socket of an authenticated user. A user may hold several.
type Client struct {
	UserID string
	Conn   *websocket.Conn
	Send   chan []byte
}

// Manager tracks live connections and pushes events to users.
type Manager struct {
	clients    map[string]map[*Client]bool
	Register   chan *Client
	Unregister chan *Client
	done       chan struct{}
	mutex      sync.RWMutex
}

func NewManager() *Manager {
	return &Manager{
		clients:    make(map[string]map[*Client]bool),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// Start runs the registration loop until ctx is cancelled. Done is closed
// once the loop has stopped.
func (m *Manager) Start(ctx context.Context) {
	go func() {
		defer close(m.done)
		for {
			select {
			case client := <-m.Register:
				m.add(client)
			case client := <-m.Unregister:
				m.remove(client)
			case <-ctx.Done():
				return
			}
		}
	}()
}

func (m *Manager) Done() <-chan struct{} {
	return m.done
}

// Attach registers client unless the manager has stopped.
func (m *Manager) Attach(client *Client) bool {
	select {
	case m.Register <- client:
		return true
	case <-m.done:
		return false
	}
}

// Detach unregisters client; after shutdown it returns immediately.
func (m *Manager) Detach(client *Client) {
	select {
	case m.Unregister <- client:
	case <-m.done:
	}
}

func (m *Manager) add(client *Client) {
	m.mutex.Lock()
	first := len(m.clients[client.UserID]) == 0
	if m.clients[client.UserID] == nil {
		m.clients[client.UserID] = make(map[*Client]bool)
	}
	m.clients[client.UserID][client] = true
	m.mutex.Unlock()

	logger.Debug("websocket client registered: %s", client.UserID)

	if payload, err := encodeEvent(EventUsersOnline, m.OnlineUsers()); err == nil {
		m.deliver(client, payload)
	}
	if first {
		m.broadcastExcept(client.UserID, EventUserJoined, UserPresenceData{UserID: client.UserID})
	}
}

func (m *Manager) remove(client *Client) {
	m.mutex.Lock()
	conns, ok := m.clients[client.UserID]
	if !ok || !conns[client] {
		m.mutex.Unlock()
		return
	}
	delete(conns, client)
	close(client.Send)
	last := len(conns) == 0
	if last {
		delete(m.clients, client.UserID)
	}
	m.mutex.Unlock()

	logger.Debug("websocket client unregistered: %s", client.UserID)

	if last {
		m.broadcastExcept(client.UserID, EventUserLeft, UserPresenceData{UserID: client.UserID})
	}
}

// Notify pushes an event to every connection of userID. Offline users are
// skipped silently.
func (m *Manager) Notify(userID, eventType string, data interface{}) {
	payload, err := encodeEvent(eventType, data)
	if err != nil {
		logger.Error("failed to encode %s event: %v", eventType, err)
		return
	}
	m.SendToUser(userID, payload)
}

func (m *Manager) SendToUser(userID string, payload []byte) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	for client := range m.clients[userID] {
		m.deliver(client, payload)
	}
}

// OnlineUsers returns the ids of users with at least one live connection.
func (m *Manager) OnlineUsers() []string {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	users := make([]string, 0, len(m.clients))
	for userID := range m.clients {
		users = append(users, userID)
	}
	sort.Strings(users)
	return users
}

func (m *Manager) IsOnline(userID string) bool {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return len(m.clients[userID]) > 0
}

func (m *Manager) broadcastExcept(userID, eventType string, data interface{}) {
	payload, err := encodeEvent(eventType, data)
	if err != nil {
		return
	}

	m.mutex.RLock()
	defer m.mutex.RUnlock()
	for id, conns := range m.clients {
		if id == userID {
			continue
		}
		for client := range conns {
			m.deliver(client, payload)
		}
	}
}

// deliver never blocks; a client whose buffer is full misses the event.
func (m *Manager) deliver(client *Client, payload []byte) {
	defer func() {
		if recover() != nil {
			logger.Debug("dropped event for closed client %s", client.UserID)
		}
	}()

	select {
	case client.Send <- payload:
	default:
		logger.Warn("send buffer full for %s, dropping event", client.UserID)
	}
}

// ReadPump reads client frames until the connection closes. Only pings are
// answered; messages are sent over HTTP.
func (c *Client) ReadPump(m *Manager) {
	defer func() {
		m.Detach(c)
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxInbound)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		return c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Warn("websocket read error for %s: %v", c.UserID, err)
			}
			return
		}

		var in Event
		if err := json.Unmarshal(raw, &in); err != nil {
			continue
		}
		if in.Type == EventPing {
			if payload, err := encodeEvent(EventPong, nil); err == nil {
				m.deliver(c, payload)
			}
		}
	}
}

// WritePump drains Send to the connection and keeps it alive with pings.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				logger.Warn("websocket write error for %s: %v", c.UserID, err)
				return
			}
		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
