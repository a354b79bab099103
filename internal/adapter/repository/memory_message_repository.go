package repository

import (
	"context"
	"sync"
	"time"

	"droplink/internal/domain/entity"
	"droplink/internal/domain/repository"
	"droplink/internal/domain/service"
	"droplink/pkg/errors"
)

// memoryMessageRepository keeps messages in process. It backs local runs and
// the use case tests.
type memoryMessageRepository struct {
	mu       sync.RWMutex
	messages map[string]*entity.Message
}

func NewMemoryMessageRepository() repository.MessageRepository {
	return &memoryMessageRepository{
		messages: make(map[string]*entity.Message),
	}
}

func (r *memoryMessageRepository) Create(ctx context.Context, message *entity.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.messages[message.ID]; exists {
		return errors.BadRequest("Message already exists", nil)
	}
	r.messages[message.ID] = cloneMessage(message)
	return nil
}

func (r *memoryMessageRepository) GetByID(ctx context.Context, id string) (*entity.Message, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	message, ok := r.messages[id]
	if !ok {
		return nil, errors.NotFound("Message", nil)
	}
	return cloneMessage(message), nil
}

func (r *memoryMessageRepository) ListByConversation(ctx context.Context, conversationKey, viewerID string, limit, offset int) ([]*entity.Message, error) {
	r.mu.RLock()
	var thread []*entity.Message
	for _, m := range r.messages {
		if m.ConversationKey == conversationKey {
			thread = append(thread, cloneMessage(m))
		}
	}
	r.mu.RUnlock()

	return service.VisibleConversationPage(thread, viewerID, limit, offset), nil
}

func (r *memoryMessageRepository) MarkConversationRead(ctx context.Context, conversationKey, receiverID string, at time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var updated int64
	for _, m := range r.messages {
		if m.ConversationKey == conversationKey && m.ReceiverID == receiverID && !m.IsRead {
			markRead(m, at)
			updated++
		}
	}
	return updated, nil
}

func (r *memoryMessageRepository) MarkRead(ctx context.Context, id string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, ok := r.messages[id]
	if !ok {
		return errors.NotFound("Message", nil)
	}
	if !m.IsRead {
		markRead(m, at)
	}
	return nil
}

func (r *memoryMessageRepository) AddDeletedBy(ctx context.Context, id, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, ok := r.messages[id]
	if !ok {
		return errors.NotFound("Message", nil)
	}
	if !m.IsDeletedFor(userID) {
		m.DeletedBy = append(m.DeletedBy, userID)
	}
	return nil
}

func (r *memoryMessageRepository) ListConversations(ctx context.Context, userID string, limit int) ([]*entity.ConversationSummary, error) {
	r.mu.RLock()
	var mine []*entity.Message
	for _, m := range r.messages {
		if m.IsParticipant(userID) {
			mine = append(mine, cloneMessage(m))
		}
	}
	r.mu.RUnlock()

	return service.AggregateConversations(mine, userID, limit), nil
}

func markRead(m *entity.Message, at time.Time) {
	readAt := at
	m.IsRead = true
	m.ReadAt = &readAt
}

// cloneMessage copies the mutable parts so callers never share state with
// the store.
func cloneMessage(m *entity.Message) *entity.Message {
	c := *m
	if m.Offer != nil {
		offer := *m.Offer
		c.Offer = &offer
	}
	if m.ReadAt != nil {
		readAt := *m.ReadAt
		c.ReadAt = &readAt
	}
	c.Attachments = append([]entity.Attachment(nil), m.Attachments...)
	c.DeletedBy = append([]string(nil), m.DeletedBy...)
	return &c
}
