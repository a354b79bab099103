package repository

import (
	"context"
	"time"

	"droplink/internal/domain/entity"
)

type MessageRepository interface {
	Create(ctx context.Context, message *entity.Message) error
	GetByID(ctx context.Context, id string) (*entity.Message, error)

	// ListByConversation returns messages newest first, skipping those the
	// viewer has soft-deleted.
	ListByConversation(ctx context.Context, conversationKey, viewerID string, limit, offset int) ([]*entity.Message, error)

	// MarkConversationRead flags every unread message addressed to receiverID.
	// It returns how many messages changed.
	MarkConversationRead(ctx context.Context, conversationKey, receiverID string, at time.Time) (int64, error)
	MarkRead(ctx context.Context, id string, at time.Time) error

	// AddDeletedBy adds userID to the message's deletedBy set if absent.
	AddDeletedBy(ctx context.Context, id, userID string) error

	// ListConversations returns summaries without counterpart or item details.
	ListConversations(ctx context.Context, userID string, limit int) ([]*entity.ConversationSummary, error)
}
