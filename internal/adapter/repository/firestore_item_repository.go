package repository

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"droplink/internal/domain/entity"
	"droplink/internal/domain/repository"
	"droplink/internal/domain/service"
	"droplink/pkg/errors"
)

const itemsCollection = "items"

type firestoreItemRepository struct {
	client *firestore.Client
}

func NewFirestoreItemRepository(client *firestore.Client) repository.ItemRepository {
	return &firestoreItemRepository{
		client: client,
	}
}

func (r *firestoreItemRepository) Create(ctx context.Context, item *entity.Item) error {
	if item.ID == "" {
		item.ID = r.client.Collection(itemsCollection).NewDoc().ID
	}

	now := time.Now()
	if item.CreatedAt.IsZero() {
		item.CreatedAt = now
	}
	item.UpdatedAt = now

	_, err := r.client.Collection(itemsCollection).Doc(item.ID).Set(ctx, item)
	if err != nil {
		return errors.Internal("Failed to create item", err)
	}
	return nil
}

func (r *firestoreItemRepository) GetByID(ctx context.Context, id string) (*entity.Item, error) {
	doc, err := r.client.Collection(itemsCollection).Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errors.NotFound("Item", err)
		}
		return nil, errors.Internal("Failed to get item", err)
	}

	var item entity.Item
	if err := doc.DataTo(&item); err != nil {
		return nil, errors.Internal("Failed to parse item data", err)
	}
	return &item, nil
}

func (r *firestoreItemRepository) IncrementViews(ctx context.Context, id string) error {
	_, err := r.client.Collection(itemsCollection).Doc(id).Update(ctx, []firestore.Update{
		{Path: "views", Value: firestore.Increment(1)},
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return errors.NotFound("Item", err)
		}
		return errors.Internal("Failed to increment item views", err)
	}
	return nil
}

// Search pushes the equality filters into Firestore and ranks the remainder
// in process, since Firestore has no text index.
func (r *firestoreItemRepository) Search(ctx context.Context, q entity.ItemQuery) ([]*entity.Item, int64, error) {
	items, err := r.collect(ctx, equalityQuery(r.client.Collection(itemsCollection).Query, q))
	if err != nil {
		return nil, 0, err
	}

	page, total := service.ApplyItemQuery(items, q)
	return page, total, nil
}

func (r *firestoreItemRepository) Trending(ctx context.Context, limit int) ([]*entity.Item, error) {
	query := r.client.Collection(itemsCollection).
		Where("status", "==", entity.ItemStatusActive).
		OrderBy("views", firestore.Desc).
		OrderBy("favoriteCount", firestore.Desc).
		OrderBy("createdAt", firestore.Desc).
		Limit(limit)

	items, err := r.collect(ctx, query)
	if err != nil {
		return nil, err
	}
	return service.RankTrending(items, limit), nil
}

func equalityQuery(query firestore.Query, q entity.ItemQuery) firestore.Query {
	query = query.Where("status", "==", q.StatusFilter())

	filters := []struct {
		path  string
		value string
	}{
		{"sellerId", q.SellerID},
		{"category", q.Category},
		{"subcategory", q.Subcategory},
		{"condition", q.Condition},
		{"location.province", q.Province},
		{"location.city", q.City},
		{"location.district", q.District},
	}
	for _, f := range filters {
		if f.value != "" {
			query = query.Where(f.path, "==", f.value)
		}
	}
	return query
}

func (r *firestoreItemRepository) collect(ctx context.Context, query firestore.Query) ([]*entity.Item, error) {
	iter := query.Documents(ctx)
	defer iter.Stop()

	var items []*entity.Item
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, errors.Internal("Failed to iterate items", err)
		}

		var item entity.Item
		if err := doc.DataTo(&item); err != nil {
			return nil, errors.Internal("Failed to parse item data", err)
		}
		items = append(items, &item)
	}
	return items, nil
}
