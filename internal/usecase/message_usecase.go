package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"droplink/internal/domain/entity"
	"droplink/internal/domain/repository"
	"droplink/internal/domain/service"
	"droplink/internal/infrastructure/ratelimit"
	ws "droplink/internal/infrastructure/websocket"
	"droplink/pkg/errors"
	"droplink/pkg/logger"
	"droplink/pkg/utils"
)

const (
	DefaultConversationLimit = 20
	DefaultMessagePageSize   = 50
)

type MessageUseCase struct {
	messageRepo repository.MessageRepository
	itemRepo    repository.ItemRepository
	userRepo    repository.UserRepository
	notifier    Notifier
	rateLimiter RateLimiter
	now         func() time.Time
}

func NewMessageUseCase(
	messageRepo repository.MessageRepository,
	itemRepo repository.ItemRepository,
	userRepo repository.UserRepository,
	notifier Notifier,
	rateLimiter RateLimiter,
) *MessageUseCase {
	return &MessageUseCase{
		messageRepo: messageRepo,
		itemRepo:    itemRepo,
		userRepo:    userRepo,
		notifier:    notifier,
		rateLimiter: rateLimiter,
		now:         time.Now,
	}
}

type OfferInput struct {
	Amount    float64
	ExpiresAt *time.Time
}

type SendMessageInput struct {
	ReceiverID  string
	ItemID      string
	Content     string
	Type        string
	Offer       *OfferInput
	Attachments []entity.Attachment
}

// MessageView is a message with its participants and item resolved.
type MessageView struct {
	*entity.Message
	Sender   *entity.UserProfile `json:"sender,omitempty"`
	Receiver *entity.UserProfile `json:"receiver,omitempty"`
	Item     *entity.ItemPreview `json:"item,omitempty"`
}

func (uc *MessageUseCase) SendMessage(ctx context.Context, senderID string, input SendMessageInput) (*MessageView, error) {
	if allowed, wait := uc.rateLimiter.Allow(senderID, ratelimit.ActionSendMessage); !allowed {
		return nil, errors.TooManyRequests(fmt.Sprintf("Too many messages, retry in %d seconds", int(wait.Seconds())+1))
	}

	message, err := uc.buildMessage(senderID, input)
	if err != nil {
		return nil, err
	}

	item, err := uc.itemRepo.GetByID(ctx, input.ItemID)
	if err != nil {
		return nil, err
	}
	receiver, err := uc.userRepo.GetByID(ctx, input.ReceiverID)
	if err != nil {
		return nil, err
	}

	if err := uc.messageRepo.Create(ctx, message); err != nil {
		return nil, err
	}

	sender, err := uc.userRepo.GetByID(ctx, senderID)
	if err != nil && !errors.Is(err, errors.CodeNotFound) {
		logger.Warn("could not load sender %s: %v", senderID, err)
	}

	view := &MessageView{
		Message:  message,
		Sender:   sender.Profile(),
		Receiver: receiver.Profile(),
		Item:     item.Preview(),
	}
	uc.notifier.Notify(message.ReceiverID, ws.EventMessageReceived, view)
	return view, nil
}

// buildMessage validates the input and derives the conversation key.
func (uc *MessageUseCase) buildMessage(senderID string, input SendMessageInput) (*entity.Message, error) {
	messageType := input.Type
	if messageType == "" {
		messageType = entity.MessageTypeText
	}
	if !entity.IsValidMessageType(messageType) || messageType == entity.MessageTypeSystem {
		return nil, errors.Validation("type must be one of: text image offer")
	}

	content := strings.TrimSpace(input.Content)
	if n := utf8.RuneCountInString(content); n < 1 || n > entity.MaxMessageLength {
		return nil, errors.Validation("Message must be between 1 and 1000 characters")
	}

	key, err := service.DeriveConversationKey(senderID, input.ReceiverID, input.ItemID)
	if err != nil {
		return nil, err
	}

	now := uc.now().UTC()
	id, err := uuid.NewV7()
	if err != nil {
		return nil, errors.Internal("Failed to generate message id", err)
	}

	message := &entity.Message{
		ID:              id.String(),
		ConversationKey: key,
		SenderID:        senderID,
		ReceiverID:      input.ReceiverID,
		ItemID:          input.ItemID,
		Type:            messageType,
		Content:         content,
		Attachments:     []entity.Attachment{},
		DeletedBy:       []string{},
		CreatedAt:       now,
	}

	if input.Offer != nil || messageType == entity.MessageTypeOffer {
		if messageType != entity.MessageTypeOffer {
			return nil, errors.Validation("offer is only allowed on offer messages")
		}
		if input.Offer == nil || input.Offer.Amount <= 0 {
			return nil, errors.Validation("offer amount must be greater than 0")
		}
		if input.Offer.ExpiresAt != nil && !input.Offer.ExpiresAt.After(now) {
			return nil, errors.Validation("offer expiry must be in the future")
		}
		message.Offer = &entity.MessageOffer{
			Amount:    input.Offer.Amount,
			Status:    entity.OfferStatusPending,
			ExpiresAt: input.Offer.ExpiresAt,
		}
	}

	for _, a := range input.Attachments {
		if a.URL == "" {
			return nil, errors.Validation("attachment url is required")
		}
		message.Attachments = append(message.Attachments, a)
	}
	if messageType == entity.MessageTypeImage && len(message.Attachments) == 0 {
		return nil, errors.Validation("image messages need at least one attachment")
	}

	return message, nil
}

// GetConversation returns one page of the conversation as the viewer sees it
// and then marks the viewer's unread messages as read. The page reflects the
// read state from before the call.
func (uc *MessageUseCase) GetConversation(ctx context.Context, viewerID, conversationKey string, page, pageSize int) ([]*MessageView, error) {
	pagination := utils.NewPagination(page, pageSize)
	if err := pagination.Validate(); err != nil {
		return nil, err
	}
	if err := uc.authorizeConversation(conversationKey, viewerID); err != nil {
		return nil, err
	}

	messages, err := uc.messageRepo.ListByConversation(ctx, conversationKey, viewerID, pagination.PageSize, pagination.Offset)
	if err != nil {
		return nil, err
	}

	if _, err := uc.markConversationRead(ctx, conversationKey, viewerID); err != nil {
		return nil, err
	}

	return uc.hydrate(ctx, messages), nil
}

func (uc *MessageUseCase) MarkConversationRead(ctx context.Context, viewerID, conversationKey string) (int64, error) {
	if err := uc.authorizeConversation(conversationKey, viewerID); err != nil {
		return 0, err
	}
	return uc.markConversationRead(ctx, conversationKey, viewerID)
}

func (uc *MessageUseCase) markConversationRead(ctx context.Context, conversationKey, viewerID string) (int64, error) {
	at := uc.now().UTC()
	// A partial failure still reports the writes that landed.
	updated, err := uc.messageRepo.MarkConversationRead(ctx, conversationKey, viewerID, at)

	if updated > 0 {
		if low, high, _, err := service.ParseConversationKey(conversationKey); err == nil {
			counterpart := low
			if counterpart == viewerID {
				counterpart = high
			}
			uc.notifier.Notify(counterpart, ws.EventMessagesRead, ws.MessagesReadData{
				ConversationKey: conversationKey,
				ReaderID:        viewerID,
				Count:           updated,
				ReadAt:          at.Format(time.RFC3339),
			})
		}
	}
	if err != nil {
		return updated, err
	}
	return updated, nil
}

// MarkMessageRead marks a single message read. Only its receiver may do so.
func (uc *MessageUseCase) MarkMessageRead(ctx context.Context, viewerID, messageID string) error {
	message, err := uc.messageRepo.GetByID(ctx, messageID)
	if err != nil {
		return err
	}
	if message.ReceiverID != viewerID {
		return errors.Forbidden("Not authorized", nil)
	}
	if message.IsRead {
		return nil
	}

	at := uc.now().UTC()
	if err := uc.messageRepo.MarkRead(ctx, messageID, at); err != nil {
		return err
	}

	uc.notifier.Notify(message.SenderID, ws.EventMessagesRead, ws.MessagesReadData{
		ConversationKey: message.ConversationKey,
		ReaderID:        viewerID,
		MessageID:       messageID,
		Count:           1,
		ReadAt:          at.Format(time.RFC3339),
	})
	return nil
}

// DeleteMessage hides the message from the viewer only.
func (uc *MessageUseCase) DeleteMessage(ctx context.Context, viewerID, messageID string) error {
	message, err := uc.messageRepo.GetByID(ctx, messageID)
	if err != nil {
		return err
	}
	if !message.IsParticipant(viewerID) {
		return errors.Forbidden("Not authorized", nil)
	}
	if message.IsDeletedFor(viewerID) {
		return nil
	}
	return uc.messageRepo.AddDeletedBy(ctx, messageID, viewerID)
}

func (uc *MessageUseCase) ListConversations(ctx context.Context, userID string, limit int) ([]*entity.ConversationSummary, error) {
	if limit < 1 || limit > utils.MaxPageSize {
		return nil, errors.Validation("limit must be between 1 and 100")
	}

	summaries, err := uc.messageRepo.ListConversations(ctx, userID, limit)
	if err != nil {
		return nil, err
	}

	users := newUserCache(uc.userRepo)
	items := newItemCache(uc.itemRepo)
	now := uc.now()
	for _, s := range summaries {
		s.Counterpart = users.profile(ctx, s.LastMessage.Counterpart(userID))
		s.Item = items.preview(ctx, s.ItemID)
		s.LastMessage = withEffectiveOffer(s.LastMessage, now)
	}
	return summaries, nil
}

func (uc *MessageUseCase) authorizeConversation(conversationKey, viewerID string) error {
	ok, err := service.ConversationIncludes(conversationKey, viewerID)
	if err != nil {
		return err
	}
	if !ok {
		return errors.Forbidden("Not a participant of this conversation", nil)
	}
	return nil
}

func (uc *MessageUseCase) hydrate(ctx context.Context, messages []*entity.Message) []*MessageView {
	users := newUserCache(uc.userRepo)
	items := newItemCache(uc.itemRepo)
	now := uc.now()

	views := make([]*MessageView, 0, len(messages))
	for _, m := range messages {
		views = append(views, &MessageView{
			Message:  withEffectiveOffer(m, now),
			Sender:   users.profile(ctx, m.SenderID),
			Receiver: users.profile(ctx, m.ReceiverID),
			Item:     items.preview(ctx, m.ItemID),
		})
	}
	return views
}

// withEffectiveOffer reports lapsed pending offers as expired without
// touching the stored record.
func withEffectiveOffer(m *entity.Message, now time.Time) *entity.Message {
	if m == nil || m.Offer == nil {
		return m
	}
	status := m.Offer.EffectiveStatus(now)
	if status == m.Offer.Status {
		return m
	}
	c := *m
	offer := *m.Offer
	offer.Status = status
	c.Offer = &offer
	return &c
}

// userCache and itemCache resolve references once per request. Missing
// documents resolve to nil rather than failing the read.
type userCache struct {
	repo  repository.UserRepository
	cache map[string]*entity.UserProfile
}

func newUserCache(repo repository.UserRepository) *userCache {
	return &userCache{repo: repo, cache: make(map[string]*entity.UserProfile)}
}

func (c *userCache) profile(ctx context.Context, id string) *entity.UserProfile {
	if p, ok := c.cache[id]; ok {
		return p
	}
	user, err := c.repo.GetByID(ctx, id)
	if err != nil && !errors.Is(err, errors.CodeNotFound) {
		logger.Warn("could not load user %s: %v", id, err)
	}
	p := user.Profile()
	c.cache[id] = p
	return p
}

type itemCache struct {
	repo  repository.ItemRepository
	cache map[string]*entity.ItemPreview
}

func newItemCache(repo repository.ItemRepository) *itemCache {
	return &itemCache{repo: repo, cache: make(map[string]*entity.ItemPreview)}
}

func (c *itemCache) preview(ctx context.Context, id string) *entity.ItemPreview {
	if p, ok := c.cache[id]; ok {
		return p
	}
	item, err := c.repo.GetByID(ctx, id)
	if err != nil && !errors.Is(err, errors.CodeNotFound) {
		logger.Warn("could not load item %s: %v", id, err)
	}
	p := item.Preview()
	c.cache[id] = p
	return p
}
