package router

import (
	"github.com/labstack/echo/v4"

	"droplink/internal/adapter/api/handler"
	"droplink/internal/adapter/api/middleware"
	"droplink/internal/infrastructure/ratelimit"
)

func SetupMessageRouter(e *echo.Echo, authMiddleware *middleware.AuthMiddleware, limiter middleware.Limiter) {
	messageHandler := handler.GetMessageHandler()

	messages := e.Group("/v1/messages")
	messages.Use(authMiddleware.Authenticate)
	messages.Use(middleware.RateLimit(limiter, ratelimit.ActionRequest))

	messages.POST("", messageHandler.SendMessage)
	messages.GET("/conversations", messageHandler.ListConversations)
	messages.GET("/conversations/:key", messageHandler.GetConversation)
	messages.PUT("/conversations/:key/read", messageHandler.MarkConversationRead)
	messages.PUT("/:id/read", messageHandler.MarkMessageRead)
	messages.DELETE("/:id", messageHandler.DeleteMessage)
}
