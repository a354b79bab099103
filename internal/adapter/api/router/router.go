package router

import (
	"github.com/labstack/echo/v4"

	"droplink/internal/adapter/api/middleware"
)

func Setup(e *echo.Echo, authMiddleware *middleware.AuthMiddleware, limiter middleware.Limiter) {
	SetupItemRouter(e, authMiddleware, limiter)
	SetupMessageRouter(e, authMiddleware, limiter)
	SetupAttachmentRouter(e, authMiddleware, limiter)
}
