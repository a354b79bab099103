package usecase

import (
	"context"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"droplink/internal/domain/entity"
	ws "droplink/internal/infrastructure/websocket"
	"droplink/pkg/errors"
)

func send(t *testing.T, uc *MessageUseCase, from, to, item, content string) *MessageView {
	t.Helper()
	view, err := uc.SendMessage(context.Background(), from, SendMessageInput{
		ReceiverID: to,
		ItemID:     item,
		Content:    content,
	})
	require.NoError(t, err)
	return view
}

func TestSendMessage(t *testing.T) {
	f := newFixture(t)
	uc := f.messageUseCase()

	view := send(t, uc, "zed", "amy", "item1", "  is it still available?  ")

	assert.Equal(t, "amy_zed_item1", view.ConversationKey)
	assert.Equal(t, "is it still available?", view.Content)
	assert.Equal(t, entity.MessageTypeText, view.Type)
	assert.False(t, view.IsRead)
	assert.NotEmpty(t, view.ID)
	require.NotNil(t, view.Sender)
	assert.Equal(t, "Zed", view.Sender.Name)
	require.NotNil(t, view.Item)
	assert.Equal(t, "Vintage camera", view.Item.Title)

	events := f.notifier.sent()
	require.Len(t, events, 1)
	assert.Equal(t, "amy", events[0].UserID)
	assert.Equal(t, ws.EventMessageReceived, events[0].Type)
}

func TestSendMessage_Rejects(t *testing.T) {
	past := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		input SendMessageInput
		code  string
	}{
		{"blank content", SendMessageInput{ReceiverID: "amy", ItemID: "item1", Content: "   "}, errors.CodeValidation},
		{"too long", SendMessageInput{ReceiverID: "amy", ItemID: "item1", Content: strings.Repeat("x", 1001)}, errors.CodeValidation},
		{"system type", SendMessageInput{ReceiverID: "amy", ItemID: "item1", Content: "hi", Type: entity.MessageTypeSystem}, errors.CodeValidation},
		{"offer without amount", SendMessageInput{ReceiverID: "amy", ItemID: "item1", Content: "deal?", Type: entity.MessageTypeOffer}, errors.CodeValidation},
		{"expired offer", SendMessageInput{ReceiverID: "amy", ItemID: "item1", Content: "deal?", Type: entity.MessageTypeOffer, Offer: &OfferInput{Amount: 10, ExpiresAt: &past}}, errors.CodeValidation},
		{"offer on text", SendMessageInput{ReceiverID: "amy", ItemID: "item1", Content: "deal?", Offer: &OfferInput{Amount: 10}}, errors.CodeValidation},
		{"image without attachment", SendMessageInput{ReceiverID: "amy", ItemID: "item1", Content: "pic", Type: entity.MessageTypeImage}, errors.CodeValidation},
		{"self message", SendMessageInput{ReceiverID: "zed", ItemID: "item1", Content: "hi"}, errors.CodeInvalidArgument},
		{"unknown item", SendMessageInput{ReceiverID: "amy", ItemID: "nope", Content: "hi"}, errors.CodeNotFound},
		{"unknown receiver", SendMessageInput{ReceiverID: "ghost", ItemID: "item1", Content: "hi"}, errors.CodeNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			_, err := f.messageUseCase().SendMessage(context.Background(), "zed", tt.input)
			assert.True(t, errors.Is(err, tt.code), "got %v", err)
			assert.Empty(t, f.notifier.sent())
		})
	}
}

func TestSendMessage_Offer(t *testing.T) {
	f := newFixture(t)
	uc := f.messageUseCase()
	expires := f.clock.now.Add(time.Hour)

	view, err := uc.SendMessage(context.Background(), "amy", SendMessageInput{
		ReceiverID: "zed",
		ItemID:     "item1",
		Content:    "200?",
		Type:       entity.MessageTypeOffer,
		Offer:      &OfferInput{Amount: 200, ExpiresAt: &expires},
	})
	require.NoError(t, err)
	require.NotNil(t, view.Offer)
	assert.Equal(t, entity.OfferStatusPending, view.Offer.Status)
	assert.Equal(t, 200.0, view.Offer.Amount)

	// Two hours later the stored offer is still pending but reads as expired.
	f.clock.now = f.clock.now.Add(2 * time.Hour)
	page, err := uc.GetConversation(context.Background(), "zed", view.ConversationKey, 1, 20)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, entity.OfferStatusExpired, page[0].Offer.Status)

	stored, err := f.messages.GetByID(context.Background(), view.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.OfferStatusPending, stored.Offer.Status)
}

func TestSendMessage_RateLimited(t *testing.T) {
	f := newFixture(t)
	f.limiter.deny = true
	f.limiter.wait = 20 * time.Second

	_, err := f.messageUseCase().SendMessage(context.Background(), "zed", SendMessageInput{
		ReceiverID: "amy", ItemID: "item1", Content: "hi",
	})
	assert.True(t, errors.Is(err, errors.CodeTooManyRequests))
}

func TestGetConversation_MarksReadAfterReturning(t *testing.T) {
	f := newFixture(t)
	uc := f.messageUseCase()
	ctx := context.Background()

	send(t, uc, "zed", "amy", "item1", "hello")
	send(t, uc, "zed", "amy", "item1", "still there?")
	send(t, uc, "amy", "zed", "item1", "yes")

	page, err := uc.GetConversation(ctx, "amy", "amy_zed_item1", 1, 50)
	require.NoError(t, err)
	require.Len(t, page, 3)
	assert.Equal(t, "yes", page[0].Content)
	assert.False(t, page[1].IsRead, "page reflects state before the read")

	again, err := uc.GetConversation(ctx, "amy", "amy_zed_item1", 1, 50)
	require.NoError(t, err)
	assert.True(t, again[1].IsRead)
	assert.True(t, again[2].IsRead)
	assert.False(t, again[0].IsRead, "amy's own message is unread by zed")

	var readEvents []sentEvent
	for _, e := range f.notifier.sent() {
		if e.Type == ws.EventMessagesRead {
			readEvents = append(readEvents, e)
		}
	}
	require.Len(t, readEvents, 1)
	assert.Equal(t, "zed", readEvents[0].UserID)
	data := readEvents[0].Data.(ws.MessagesReadData)
	assert.Equal(t, int64(2), data.Count)
	assert.Equal(t, "amy", data.ReaderID)
}

func TestGetConversation_Rejects(t *testing.T) {
	f := newFixture(t)
	uc := f.messageUseCase()
	ctx := context.Background()

	_, err := uc.GetConversation(ctx, "bob", "amy_zed_item1", 1, 50)
	assert.True(t, errors.Is(err, errors.CodeForbidden))

	_, err = uc.GetConversation(ctx, "amy", "not-a-key", 1, 50)
	assert.True(t, errors.Is(err, errors.CodeInvalidArgument))

	_, err = uc.GetConversation(ctx, "amy", "amy_zed_item1", 0, 50)
	assert.True(t, errors.Is(err, errors.CodeValidation))

	_, err = uc.GetConversation(ctx, "amy", "amy_zed_item1", 1, 101)
	assert.True(t, errors.Is(err, errors.CodeValidation))
}

func TestGetConversation_PastLastPage(t *testing.T) {
	f := newFixture(t)
	uc := f.messageUseCase()

	send(t, uc, "zed", "amy", "item1", "hello")

	page, err := uc.GetConversation(context.Background(), "amy", "amy_zed_item1", math.MaxInt64, 100)
	require.NoError(t, err)
	assert.Empty(t, page)
}

func TestMarkMessageRead(t *testing.T) {
	f := newFixture(t)
	uc := f.messageUseCase()
	ctx := context.Background()
	msg := send(t, uc, "zed", "amy", "item1", "hello")

	err := uc.MarkMessageRead(ctx, "zed", msg.ID)
	assert.True(t, errors.Is(err, errors.CodeForbidden), "sender cannot mark read")

	require.NoError(t, uc.MarkMessageRead(ctx, "amy", msg.ID))
	stored, err := f.messages.GetByID(ctx, msg.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsRead)
	require.NotNil(t, stored.ReadAt)

	// Idempotent and silent the second time.
	before := len(f.notifier.sent())
	require.NoError(t, uc.MarkMessageRead(ctx, "amy", msg.ID))
	assert.Len(t, f.notifier.sent(), before)

	err = uc.MarkMessageRead(ctx, "amy", "missing")
	assert.True(t, errors.Is(err, errors.CodeNotFound))
}

func TestMarkConversationRead(t *testing.T) {
	f := newFixture(t)
	uc := f.messageUseCase()
	ctx := context.Background()
	send(t, uc, "zed", "amy", "item1", "one")
	send(t, uc, "zed", "amy", "item1", "two")

	n, err := uc.MarkConversationRead(ctx, "amy", "amy_zed_item1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	n, err = uc.MarkConversationRead(ctx, "amy", "amy_zed_item1")
	require.NoError(t, err)
	assert.Zero(t, n)

	_, err = uc.MarkConversationRead(ctx, "bob", "amy_zed_item1")
	assert.True(t, errors.Is(err, errors.CodeForbidden))
}

func TestMarkConversationRead_PartialFailure(t *testing.T) {
	f := newFixture(t)
	uc := f.messageUseCase()
	ctx := context.Background()
	send(t, uc, "zed", "amy", "item1", "one")
	send(t, uc, "zed", "amy", "item1", "two")

	uc.messageRepo = partialReadRepo{f.messages}
	n, err := uc.MarkConversationRead(ctx, "amy", "amy_zed_item1")
	assert.True(t, errors.Is(err, errors.CodeInternal))
	assert.Equal(t, int64(1), n)

	events := f.notifier.sent()
	last := events[len(events)-1]
	require.Equal(t, ws.EventMessagesRead, last.Type)
	assert.Equal(t, int64(1), last.Data.(ws.MessagesReadData).Count)

	_, err = uc.GetConversation(ctx, "amy", "amy_zed_item1", 1, 50)
	assert.True(t, errors.Is(err, errors.CodeInternal))
}

func TestDeleteMessage_HidesForViewerOnly(t *testing.T) {
	f := newFixture(t)
	uc := f.messageUseCase()
	ctx := context.Background()
	first := send(t, uc, "zed", "amy", "item1", "hello")
	send(t, uc, "amy", "zed", "item1", "hi")

	err := uc.DeleteMessage(ctx, "bob", first.ID)
	assert.True(t, errors.Is(err, errors.CodeForbidden))

	require.NoError(t, uc.DeleteMessage(ctx, "amy", first.ID))
	require.NoError(t, uc.DeleteMessage(ctx, "amy", first.ID))

	stored, err := f.messages.GetByID(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"amy"}, stored.DeletedBy)

	amyView, err := uc.GetConversation(ctx, "amy", "amy_zed_item1", 1, 50)
	require.NoError(t, err)
	assert.Len(t, amyView, 1)

	zedView, err := uc.GetConversation(ctx, "zed", "amy_zed_item1", 1, 50)
	require.NoError(t, err)
	assert.Len(t, zedView, 2)
}

func TestListConversations(t *testing.T) {
	f := newFixture(t)
	uc := f.messageUseCase()
	ctx := context.Background()

	send(t, uc, "zed", "amy", "item1", "camera?")
	send(t, uc, "amy", "zed", "item1", "yes")
	send(t, uc, "zed", "amy", "item1", "ok thanks")
	send(t, uc, "bob", "amy", "item2", "bag?")

	summaries, err := uc.ListConversations(ctx, "amy", DefaultConversationLimit)
	require.NoError(t, err)
	require.Len(t, summaries, 2)

	newest := summaries[0]
	assert.Equal(t, "amy_bob_item2", newest.ConversationKey)
	require.NotNil(t, newest.Counterpart)
	assert.Equal(t, "Bob", newest.Counterpart.Name)
	require.NotNil(t, newest.Item)
	assert.Equal(t, entity.ItemStatusSold, newest.Item.Status)
	assert.Equal(t, 1, newest.UnreadCount)

	camera := summaries[1]
	assert.Equal(t, "ok thanks", camera.LastMessage.Content)
	assert.Equal(t, 2, camera.UnreadCount)
	assert.Equal(t, "Zed", camera.Counterpart.Name)

	limited, err := uc.ListConversations(ctx, "amy", 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)

	_, err = uc.ListConversations(ctx, "amy", 0)
	assert.True(t, errors.Is(err, errors.CodeValidation))
}

func TestListConversations_MissingReferences(t *testing.T) {
	f := newFixture(t)
	uc := f.messageUseCase()
	ctx := context.Background()

	// The counterpart and item are gone from the store, the summary stays.
	require.NoError(t, f.messages.Create(ctx, &entity.Message{
		ID:              "m1",
		ConversationKey: "amy_ghost_gone",
		SenderID:        "ghost",
		ReceiverID:      "amy",
		ItemID:          "gone",
		Type:            entity.MessageTypeText,
		Content:         "orphan",
		CreatedAt:       f.clock.Now(),
	}))

	summaries, err := uc.ListConversations(ctx, "amy", 10)
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Nil(t, summaries[0].Counterpart)
	assert.Nil(t, summaries[0].Item)
}
