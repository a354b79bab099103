package usecase

import (
	"context"
	"time"
)

// Notifier pushes best-effort realtime events to a user.
type Notifier interface {
	Notify(userID, eventType string, data interface{})
}

type RateLimiter interface {
	Allow(userID, action string) (bool, time.Duration)
}

// TokenIssuer mints bearer tokens for seeded users in development.
type TokenIssuer interface {
	GenerateToken(ctx context.Context, uid string) (string, error)
}
