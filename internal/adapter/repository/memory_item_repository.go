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

type memoryItemRepository struct {
	mu    sync.RWMutex
	items map[string]*entity.Item
}

func NewMemoryItemRepository() repository.ItemRepository {
	return &memoryItemRepository{
		items: make(map[string]*entity.Item),
	}
}

func (r *memoryItemRepository) Create(ctx context.Context, item *entity.Item) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	if item.CreatedAt.IsZero() {
		item.CreatedAt = now
	}
	item.UpdatedAt = now

	r.items[item.ID] = cloneItem(item)
	return nil
}

func (r *memoryItemRepository) GetByID(ctx context.Context, id string) (*entity.Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[id]
	if !ok {
		return nil, errors.NotFound("Item", nil)
	}
	return cloneItem(item), nil
}

func (r *memoryItemRepository) IncrementViews(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.items[id]
	if !ok {
		return errors.NotFound("Item", nil)
	}
	item.Views++
	return nil
}

func (r *memoryItemRepository) Search(ctx context.Context, query entity.ItemQuery) ([]*entity.Item, int64, error) {
	page, total := service.ApplyItemQuery(r.snapshot(), query)
	return page, total, nil
}

func (r *memoryItemRepository) Trending(ctx context.Context, limit int) ([]*entity.Item, error) {
	return service.RankTrending(r.snapshot(), limit), nil
}

func (r *memoryItemRepository) snapshot() []*entity.Item {
	r.mu.RLock()
	defer r.mu.RUnlock()

	items := make([]*entity.Item, 0, len(r.items))
	for _, item := range r.items {
		items = append(items, cloneItem(item))
	}
	return items
}

func cloneItem(item *entity.Item) *entity.Item {
	c := *item
	c.Images = append([]entity.ItemImage(nil), item.Images...)
	c.Tags = append([]string(nil), item.Tags...)
	return &c
}
