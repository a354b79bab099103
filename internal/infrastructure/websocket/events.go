package websocket

import (
	"encoding/json"
	"time"
)

// Event names pushed to connected clients.
const (
	EventMessageReceived = "message-received"
	EventMessagesRead    = "messages-read"
	EventUsersOnline     = "users-online"
	EventUserJoined      = "user-joined"
	EventUserLeft        = "user-left"

	EventPing = "ping"
	EventPong = "pong"
)

type Event struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp string      `json:"timestamp"`
}

type MessagesReadData struct {
	ConversationKey string `json:"conversationKey"`
	ReaderID        string `json:"readerId"`
	MessageID       string `json:"messageId,omitempty"`
	Count           int64  `json:"count"`
	ReadAt          string `json:"readAt"`
}

type UserPresenceData struct {
	UserID string `json:"userId"`
}

func encodeEvent(eventType string, data interface{}) ([]byte, error) {
	return json.Marshal(Event{
		Type:      eventType,
		Data:      data,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}
