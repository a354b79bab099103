package handler

import (
	"net/http"
	"strings"

	gorillaws "github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"droplink/internal/adapter/api/middleware"
	ws "droplink/internal/infrastructure/websocket"
	"droplink/pkg/errors"
	"droplink/pkg/logger"
	"droplink/pkg/response"
)

type WebSocketHandler struct {
	wsManager      *ws.Manager
	authMiddleware *middleware.AuthMiddleware
	upgrader       gorillaws.Upgrader
}

// NewWebSocketHandler accepts any origin when allowedOrigins is empty.
func NewWebSocketHandler(wsManager *ws.Manager, authMiddleware *middleware.AuthMiddleware, allowedOrigins []string) *WebSocketHandler {
	return &WebSocketHandler{
		wsManager:      wsManager,
		authMiddleware: authMiddleware,
		upgrader: gorillaws.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
	}
}

func originChecker(allowed []string) func(r *http.Request) bool {
	if len(allowed) == 0 {
		return func(r *http.Request) bool { return true }
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		for _, a := range allowed {
			if strings.EqualFold(a, origin) {
				return true
			}
		}
		return false
	}
}

// HandleWebSocket authenticates with the "token" query parameter or a bearer
// header, since browsers cannot set headers on the upgrade request.
func (h *WebSocketHandler) HandleWebSocket(c echo.Context) error {
	token := c.QueryParam("token")
	if token == "" {
		token = strings.TrimPrefix(c.Request().Header.Get("Authorization"), "Bearer ")
	}
	if token == "" {
		return response.Error(c, errors.Unauthorized("Authentication required", nil))
	}

	userID, err := h.authMiddleware.GetUIDFromToken(c.Request().Context(), token)
	if err != nil {
		return response.Error(c, errors.Unauthorized("Invalid or expired token", err))
	}

	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// The upgrader has already written the HTTP error.
		logger.Warn("websocket upgrade failed for %s: %v", userID, err)
		return nil
	}

	client := &ws.Client{
		UserID: userID,
		Conn:   conn,
		Send:   make(chan []byte, 256),
	}

	if !h.wsManager.Attach(client) {
		conn.Close()
		return nil
	}

	go client.ReadPump(h.wsManager)
	go client.WritePump()

	return nil
}
