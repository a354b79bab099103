package router

import (
	"github.com/labstack/echo/v4"

	"droplink/internal/adapter/api/handler"
)

// SetupWebSocketRouter mounts /ws without the auth middleware; the handler
// authenticates from the query string.
func SetupWebSocketRouter(e *echo.Echo, wsHandler *handler.WebSocketHandler) {
	e.GET("/ws", wsHandler.HandleWebSocket)
}
