package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// Pinger is a backing service the health check can probe.
type Pinger interface {
	Ping(ctx context.Context) error
}

type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

type HealthHandler struct {
	store     string
	storePing Pinger
	online    func() []string
}

func NewHealthHandler(store string, storePing Pinger, online func() []string) *HealthHandler {
	return &HealthHandler{
		store:     store,
		storePing: storePing,
		online:    online,
	}
}

func (h *HealthHandler) CheckHealth(c echo.Context) error {
	body := map[string]interface{}{
		"status": "ok",
		"store":  h.store,
		"time":   time.Now().UTC().Format(time.RFC3339),
	}
	if h.online != nil {
		body["connectedUsers"] = len(h.online())
	}

	if h.storePing != nil {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
		defer cancel()
		if err := h.storePing.Ping(ctx); err != nil {
			body["status"] = "degraded"
			body["error"] = err.Error()
			return c.JSON(http.StatusServiceUnavailable, body)
		}
	}

	return c.JSON(http.StatusOK, body)
}
