package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"droplink/pkg/logger"
)

type Limiter interface {
	Allow(key, action string) (bool, time.Duration)
}

// RateLimit limits action per authenticated user, falling back to the client
// IP for anonymous requests. Place it after the auth middleware.
func RateLimit(limiter Limiter, action string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := UID(c)
			if key == "" {
				key = "ip:" + c.RealIP()
			}

			allowed, wait := limiter.Allow(key, action)
			if !allowed {
				logger.Warn("RATE LIMIT: blocked %s for %s (retry in %v)", action, key, wait)
				retryAfter := int(wait.Seconds()) + 1
				c.Response().Header().Set("Retry-After", strconv.Itoa(retryAfter))
				return echo.NewHTTPError(http.StatusTooManyRequests, "Rate limit exceeded")
			}
			return next(c)
		}
	}
}
