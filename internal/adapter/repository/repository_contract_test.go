package repository

import (
	"context"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"droplink/internal/domain/entity"
	"droplink/internal/domain/repository"
	"droplink/internal/domain/service"
	"droplink/pkg/errors"
)

var epoch = time.Date(2026, 5, 4, 9, 0, 0, 0, time.UTC)

func newMessage(t *testing.T, id, sender, receiver, item, content string, offset time.Duration) *entity.Message {
	t.Helper()
	key, err := service.DeriveConversationKey(sender, receiver, item)
	require.NoError(t, err)
	return &entity.Message{
		ID:              id,
		ConversationKey: key,
		SenderID:        sender,
		ReceiverID:      receiver,
		ItemID:          item,
		Type:            entity.MessageTypeText,
		Content:         content,
		Attachments:     []entity.Attachment{},
		DeletedBy:       []string{},
		CreatedAt:       epoch.Add(offset),
	}
}

// testMessageRepository exercises the behaviour every message store must share.
func testMessageRepository(t *testing.T, repo repository.MessageRepository) {
	ctx := context.Background()

	m1 := newMessage(t, "0190f000-0000-7000-8000-000000000001", "u1", "u2", "x", "hi", time.Minute)
	m2 := newMessage(t, "0190f000-0000-7000-8000-000000000002", "u1", "u2", "x", "still available?", 2*time.Minute)
	m3 := newMessage(t, "0190f000-0000-7000-8000-000000000003", "u1", "u2", "x", "ok thanks", 3*time.Minute)
	other := newMessage(t, "0190f000-0000-7000-8000-000000000004", "u3", "u2", "y", "price?", 90*time.Second)
	for _, m := range []*entity.Message{m1, m2, m3, other} {
		require.NoError(t, repo.Create(ctx, m))
	}

	t.Run("get by id", func(t *testing.T) {
		got, err := repo.GetByID(ctx, m2.ID)
		require.NoError(t, err)
		assert.Equal(t, "still available?", got.Content)

		_, err = repo.GetByID(ctx, "missing")
		assert.True(t, errors.Is(err, errors.CodeNotFound))
	})

	t.Run("list conversations", func(t *testing.T) {
		summaries, err := repo.ListConversations(ctx, "u2", 20)
		require.NoError(t, err)
		require.Len(t, summaries, 2)

		assert.Equal(t, m3.ConversationKey, summaries[0].ConversationKey)
		assert.Equal(t, "ok thanks", summaries[0].LastMessage.Content)
		assert.Equal(t, 3, summaries[0].UnreadCount)
		assert.Equal(t, "x", summaries[0].ItemID)
		assert.Equal(t, 1, summaries[1].UnreadCount)

		limited, err := repo.ListConversations(ctx, "u2", 1)
		require.NoError(t, err)
		assert.Len(t, limited, 1)
	})

	t.Run("list by conversation newest first", func(t *testing.T) {
		page, err := repo.ListByConversation(ctx, m1.ConversationKey, "u2", 2, 0)
		require.NoError(t, err)
		require.Len(t, page, 2)
		assert.Equal(t, m3.ID, page[0].ID)
		assert.Equal(t, m2.ID, page[1].ID)

		page, err = repo.ListByConversation(ctx, m1.ConversationKey, "u2", 2, 2)
		require.NoError(t, err)
		require.Len(t, page, 1)
		assert.Equal(t, m1.ID, page[0].ID)
	})

	t.Run("soft delete is per user and idempotent", func(t *testing.T) {
		require.NoError(t, repo.AddDeletedBy(ctx, m3.ID, "u1"))
		require.NoError(t, repo.AddDeletedBy(ctx, m3.ID, "u1"))

		got, err := repo.GetByID(ctx, m3.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{"u1"}, got.DeletedBy)

		page, err := repo.ListByConversation(ctx, m1.ConversationKey, "u1", 50, 0)
		require.NoError(t, err)
		assert.Len(t, page, 2)

		page, err = repo.ListByConversation(ctx, m1.ConversationKey, "u2", 50, 0)
		require.NoError(t, err)
		assert.Len(t, page, 3)

		summaries, err := repo.ListConversations(ctx, "u1", 20)
		require.NoError(t, err)
		require.Len(t, summaries, 1)
		assert.Equal(t, "still available?", summaries[0].LastMessage.Content)

		assert.True(t, errors.Is(repo.AddDeletedBy(ctx, "missing", "u1"), errors.CodeNotFound))
	})

	t.Run("concurrent soft deletes add the viewer once", func(t *testing.T) {
		var wg sync.WaitGroup
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				assert.NoError(t, repo.AddDeletedBy(ctx, m1.ID, "u1"))
			}()
		}
		wg.Wait()

		got, err := repo.GetByID(ctx, m1.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{"u1"}, got.DeletedBy)
	})

	t.Run("mark read", func(t *testing.T) {
		at := epoch.Add(time.Hour)

		n, err := repo.MarkConversationRead(ctx, m1.ConversationKey, "u1", at)
		require.NoError(t, err)
		assert.Zero(t, n, "u1 sent everything")

		n, err = repo.MarkConversationRead(ctx, m1.ConversationKey, "u2", at)
		require.NoError(t, err)
		assert.Equal(t, int64(3), n)

		n, err = repo.MarkConversationRead(ctx, m1.ConversationKey, "u2", at)
		require.NoError(t, err)
		assert.Zero(t, n)

		got, err := repo.GetByID(ctx, m1.ID)
		require.NoError(t, err)
		assert.True(t, got.IsRead)
		require.NotNil(t, got.ReadAt)
		assert.True(t, got.ReadAt.Equal(at))

		require.NoError(t, repo.MarkRead(ctx, other.ID, at))
		summaries, err := repo.ListConversations(ctx, "u2", 20)
		require.NoError(t, err)
		for _, s := range summaries {
			assert.Zero(t, s.UnreadCount)
		}

		assert.True(t, errors.Is(repo.MarkRead(ctx, "missing", at), errors.CodeNotFound))
	})
}

func newItem(id, title string, price float64, offset time.Duration) *entity.Item {
	return &entity.Item{
		ID:        id,
		SellerID:  "seller",
		Title:     title,
		Price:     price,
		Currency:  "USD",
		Category:  "electronics",
		Condition: "Good",
		Status:    entity.ItemStatusActive,
		Images:    []entity.ItemImage{},
		Tags:      []string{},
		Location:  entity.ItemLocation{Province: "Phnom Penh", City: "Phnom Penh"},
		CreatedAt: epoch.Add(offset),
	}
}

func testItemRepository(t *testing.T, repo repository.ItemRepository) {
	ctx := context.Background()

	items := []*entity.Item{
		newItem("i1", "Desk lamp", 50, time.Hour),
		newItem("i2", "Vintage Camera", 120, 2*time.Hour),
		newItem("i3", "Camera Bag", 280, 3*time.Hour),
		newItem("i4", "Sofa", 320, 4*time.Hour),
	}
	sold := newItem("i5", "Sold camera", 150, 5*time.Hour)
	sold.Status = entity.ItemStatusSold
	other := newItem("i6", "Camera strap", 15, 6*time.Hour)
	other.SellerID = "other"
	other.Status = entity.ItemStatusPending
	items = append(items, sold, other)
	for _, item := range items {
		require.NoError(t, repo.Create(ctx, item))
	}

	t.Run("get and increment views", func(t *testing.T) {
		require.NoError(t, repo.IncrementViews(ctx, "i2"))
		require.NoError(t, repo.IncrementViews(ctx, "i2"))

		got, err := repo.GetByID(ctx, "i2")
		require.NoError(t, err)
		assert.Equal(t, int64(2), got.Views)

		_, err = repo.GetByID(ctx, "missing")
		assert.True(t, errors.Is(err, errors.CodeNotFound))
	})

	t.Run("price range", func(t *testing.T) {
		min, max := 100.0, 300.0
		got, total, err := repo.Search(ctx, entity.ItemQuery{
			MinPrice: &min, MaxPrice: &max, Sort: entity.SortPriceLow, Page: 1, PageSize: 20,
		})
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
		require.Len(t, got, 2)
		assert.Equal(t, 120.0, got[0].Price)
		assert.Equal(t, 280.0, got[1].Price)
	})

	t.Run("text ranking", func(t *testing.T) {
		got, total, err := repo.Search(ctx, entity.ItemQuery{TextQuery: "vintage camera", Page: 1, PageSize: 20})
		require.NoError(t, err)
		assert.Equal(t, int64(2), total, "sold items never match")
		require.Len(t, got, 2)
		assert.Equal(t, "i2", got[0].ID)
	})

	t.Run("paging past the end", func(t *testing.T) {
		got, total, err := repo.Search(ctx, entity.ItemQuery{Page: 9, PageSize: 2})
		require.NoError(t, err)
		assert.Equal(t, int64(4), total)
		assert.Empty(t, got)
	})

	t.Run("huge page number", func(t *testing.T) {
		got, total, err := repo.Search(ctx, entity.ItemQuery{Page: math.MaxInt64, PageSize: 100})
		require.NoError(t, err)
		assert.Equal(t, int64(4), total)
		assert.Empty(t, got)
	})

	t.Run("seller listing", func(t *testing.T) {
		got, total, err := repo.Search(ctx, entity.ItemQuery{SellerID: "seller", Sort: entity.SortNewest, Page: 1, PageSize: 2})
		require.NoError(t, err)
		assert.Equal(t, int64(4), total)
		require.Len(t, got, 2)
		assert.Equal(t, "i4", got[0].ID)
		assert.Equal(t, "i3", got[1].ID)

		got, total, err = repo.Search(ctx, entity.ItemQuery{SellerID: "seller", Status: entity.ItemStatusSold, Page: 1, PageSize: 20})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		require.Len(t, got, 1)
		assert.Equal(t, "i5", got[0].ID)

		got, total, err = repo.Search(ctx, entity.ItemQuery{SellerID: "other", Page: 1, PageSize: 20})
		require.NoError(t, err)
		assert.Zero(t, total, "pending listings need an explicit status")
		assert.Empty(t, got)

		got, _, err = repo.Search(ctx, entity.ItemQuery{SellerID: "other", Status: entity.ItemStatusPending, Page: 1, PageSize: 20})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "i6", got[0].ID)
	})

	t.Run("trending", func(t *testing.T) {
		got, err := repo.Trending(ctx, 2)
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "i2", got[0].ID)
	})
}

func TestMemoryMessageRepository(t *testing.T) {
	testMessageRepository(t, NewMemoryMessageRepository())
}

func TestMemoryItemRepository(t *testing.T) {
	testItemRepository(t, NewMemoryItemRepository())
}

func TestMemoryUserRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryUserRepository()

	require.NoError(t, repo.Create(ctx, &entity.User{ID: "u1", Name: "Sokha"}))

	got, err := repo.GetByID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "Sokha", got.Name)

	got.Name = "changed"
	again, err := repo.GetByID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "Sokha", again.Name)

	_, err = repo.GetByID(ctx, "u2")
	assert.True(t, errors.Is(err, errors.CodeNotFound))
}
