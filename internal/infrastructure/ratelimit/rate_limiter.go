package ratelimit

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Actions limited per user.
const (
	ActionSendMessage = "send_message"
	ActionUpload      = "upload"
	ActionRequest     = "request"
)

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter holds one token bucket per user and action.
type RateLimiter struct {
	buckets map[string]*bucket
	limits  map[string]rate.Limit
	bursts  map[string]int
	mutex   sync.Mutex
	now     func() time.Time
}

// NewRateLimiter allows messagesPerMinute sends per user, with the full
// minute's allowance available as a burst. Uploads get a tenth of it. Plain
// API requests are limited per client at two per second with a burst of 60.
func NewRateLimiter(messagesPerMinute int) *RateLimiter {
	uploads := messagesPerMinute / 10
	if uploads < 1 {
		uploads = 1
	}
	return &RateLimiter{
		buckets: make(map[string]*bucket),
		limits: map[string]rate.Limit{
			ActionSendMessage: rate.Every(time.Minute / time.Duration(messagesPerMinute)),
			ActionUpload:      rate.Every(time.Minute / time.Duration(uploads)),
			ActionRequest:     rate.Every(time.Second / 2),
		},
		bursts: map[string]int{
			ActionSendMessage: messagesPerMinute,
			ActionUpload:      uploads,
			ActionRequest:     60,
		},
		now: time.Now,
	}
}

// Allow consumes a token for userID's action. When denied it returns how long
// until the next token.
func (rl *RateLimiter) Allow(userID, action string) (bool, time.Duration) {
	now := rl.now()
	limiter := rl.limiterFor(userID, action, now)

	reservation := limiter.ReserveN(now, 1)
	if !reservation.OK() {
		return false, time.Minute
	}
	if delay := reservation.DelayFrom(now); delay > 0 {
		reservation.CancelAt(now)
		return false, delay
	}
	return true, 0
}

func (rl *RateLimiter) limiterFor(userID, action string, now time.Time) *rate.Limiter {
	key := userID + ":" + action

	rl.mutex.Lock()
	defer rl.mutex.Unlock()

	b, ok := rl.buckets[key]
	if !ok {
		limit, known := rl.limits[action]
		burst := rl.bursts[action]
		if !known {
			limit, burst = rate.Every(3*time.Second), 20
		}
		b = &bucket{limiter: rate.NewLimiter(limit, burst)}
		rl.buckets[key] = b
	}
	b.lastSeen = now
	return b.limiter
}

// Cleanup drops buckets idle for longer than an hour.
func (rl *RateLimiter) Cleanup() {
	rl.mutex.Lock()
	defer rl.mutex.Unlock()

	cutoff := rl.now().Add(-time.Hour)
	for key, b := range rl.buckets {
		if b.lastSeen.Before(cutoff) {
			delete(rl.buckets, key)
		}
	}
}

func (rl *RateLimiter) StartCleanupRoutine(stop <-chan struct{}) {
	go func() {
		ticker := time.NewTicker(30 * time.Minute)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				rl.Cleanup()
			case <-stop:
				return
			}
		}
	}()
}
