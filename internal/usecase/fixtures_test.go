package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"droplink/internal/adapter/repository"
	"droplink/internal/domain/entity"
	domainrepo "droplink/internal/domain/repository"
	"droplink/pkg/errors"
)

type sentEvent struct {
	UserID string
	Type   string
	Data   interface{}
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []sentEvent
}

func (n *recordingNotifier) Notify(userID, eventType string, data interface{}) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, sentEvent{UserID: userID, Type: eventType, Data: data})
}

func (n *recordingNotifier) sent() []sentEvent {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]sentEvent(nil), n.events...)
}

type stubLimiter struct {
	deny bool
	wait time.Duration
}

func (l *stubLimiter) Allow(userID, action string) (bool, time.Duration) {
	if l.deny {
		return false, l.wait
	}
	return true, 0
}

// stepClock advances one second per call so consecutive writes get distinct
// timestamps.
type stepClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Second)
	return c.now
}

// partialReadRepo applies the read through the wrapped store, then reports
// one write as failed.
type partialReadRepo struct {
	domainrepo.MessageRepository
}

func (r partialReadRepo) MarkConversationRead(ctx context.Context, conversationKey, receiverID string, at time.Time) (int64, error) {
	n, err := r.MessageRepository.MarkConversationRead(ctx, conversationKey, receiverID, at)
	if err != nil {
		return n, err
	}
	return n - 1, errors.Internal("Failed to mark conversation as read", nil)
}

type fixture struct {
	messages domainrepo.MessageRepository
	items    domainrepo.ItemRepository
	users    domainrepo.UserRepository
	notifier *recordingNotifier
	limiter  *stubLimiter
	clock    *stepClock
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		messages: repository.NewMemoryMessageRepository(),
		items:    repository.NewMemoryItemRepository(),
		users:    repository.NewMemoryUserRepository(),
		notifier: &recordingNotifier{},
		limiter:  &stubLimiter{},
		clock:    &stepClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)},
	}

	ctx := context.Background()
	for _, u := range []*entity.User{
		{ID: "amy", Name: "Amy", ProfileImage: "https://img/amy.png", Location: entity.UserLocation{City: "Bandung"}, Rating: 4.5},
		{ID: "zed", Name: "Zed"},
		{ID: "bob", Name: "Bob"},
	} {
		require.NoError(t, f.users.Create(ctx, u))
	}
	for _, item := range []*entity.Item{
		{ID: "item1", SellerID: "zed", Title: "Vintage camera", Price: 250, Status: entity.ItemStatusActive, Views: 3},
		{ID: "item2", SellerID: "amy", Title: "Leather bag", Price: 120, Status: entity.ItemStatusSold},
	} {
		require.NoError(t, f.items.Create(ctx, item))
	}
	return f
}

func (f *fixture) messageUseCase() *MessageUseCase {
	uc := NewMessageUseCase(f.messages, f.items, f.users, f.notifier, f.limiter)
	uc.now = f.clock.Now
	return uc
}
