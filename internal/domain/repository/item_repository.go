package repository

import (
	"context"

	"droplink/internal/domain/entity"
)

type ItemRepository interface {
	Create(ctx context.Context, item *entity.Item) error
	GetByID(ctx context.Context, id string) (*entity.Item, error)
	IncrementViews(ctx context.Context, id string) error
	Search(ctx context.Context, query entity.ItemQuery) ([]*entity.Item, int64, error)
	Trending(ctx context.Context, limit int) ([]*entity.Item, error)
}
