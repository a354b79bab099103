package router

import (
	"github.com/labstack/echo/v4"

	"droplink/internal/adapter/api/handler"
	"droplink/internal/adapter/api/middleware"
	"droplink/internal/infrastructure/ratelimit"
)

func SetupItemRouter(e *echo.Echo, authMiddleware *middleware.AuthMiddleware, limiter middleware.Limiter) {
	itemHandler := handler.GetItemHandler()

	items := e.Group("/v1/items")
	items.Use(authMiddleware.OptionalAuth)
	items.Use(middleware.RateLimit(limiter, ratelimit.ActionRequest))

	items.GET("", itemHandler.SearchItems)
	items.GET("/trending", itemHandler.TrendingItems)
	items.GET("/:id", itemHandler.GetItem)

	users := e.Group("/v1/users")
	users.Use(middleware.RateLimit(limiter, ratelimit.ActionRequest))

	users.GET("/:id/items", itemHandler.ListSellerItems)
}
