package router

import (
	"github.com/labstack/echo/v4"

	"droplink/internal/adapter/api/handler"
	"droplink/internal/adapter/api/middleware"
	"droplink/internal/infrastructure/ratelimit"
)

// SetupAttachmentRouter mounts upload, and download for stores that serve
// their own bytes (GridFS and memory). Downloads are public like bucket URLs,
// since image tags cannot send a bearer token.
func SetupAttachmentRouter(e *echo.Echo, authMiddleware *middleware.AuthMiddleware, limiter middleware.Limiter) {
	attachmentHandler := handler.GetAttachmentHandler()

	attachments := e.Group("/v1/attachments")

	attachments.POST("", attachmentHandler.UploadAttachment,
		authMiddleware.Authenticate,
		middleware.RateLimit(limiter, ratelimit.ActionRequest),
	)
	attachments.GET("/:id", attachmentHandler.ServeAttachment,
		middleware.RateLimit(limiter, ratelimit.ActionRequest),
	)
}
