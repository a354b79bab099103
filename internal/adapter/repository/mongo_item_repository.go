package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"droplink/internal/domain/entity"
	"droplink/internal/domain/repository"
	"droplink/internal/infrastructure/mongodb"
	"droplink/pkg/errors"
)

type mongoItemRepository struct {
	collection *mongo.Collection
}

func NewMongoItemRepository(db *mongo.Database) repository.ItemRepository {
	return &mongoItemRepository{
		collection: db.Collection(mongodb.ItemsCollection),
	}
}

func (r *mongoItemRepository) Create(ctx context.Context, item *entity.Item) error {
	if item.ID == "" {
		item.ID = primitive.NewObjectID().Hex()
	}

	now := time.Now()
	if item.CreatedAt.IsZero() {
		item.CreatedAt = now
	}
	item.UpdatedAt = now

	if _, err := r.collection.InsertOne(ctx, item); err != nil {
		return errors.Internal("Failed to create item", err)
	}
	return nil
}

func (r *mongoItemRepository) GetByID(ctx context.Context, id string) (*entity.Item, error) {
	var item entity.Item
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&item)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, errors.NotFound("Item", err)
		}
		return nil, errors.Internal("Failed to get item", err)
	}
	return &item, nil
}

func (r *mongoItemRepository) IncrementViews(ctx context.Context, id string) error {
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$inc": bson.M{"views": 1}})
	if err != nil {
		return errors.Internal("Failed to increment item views", err)
	}
	if result.MatchedCount == 0 {
		return errors.NotFound("Item", nil)
	}
	return nil
}

func (r *mongoItemRepository) Search(ctx context.Context, q entity.ItemQuery) ([]*entity.Item, int64, error) {
	filter := itemFilter(q)

	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, errors.Internal("Failed to count items", err)
	}
	offset := q.Offset()
	if offset < 0 || int64(offset) >= total {
		return []*entity.Item{}, total, nil
	}

	opts := options.Find().
		SetSort(itemSort(q)).
		SetSkip(int64(offset)).
		SetLimit(int64(q.PageSize))
	if q.TextQuery != "" {
		opts.SetProjection(bson.M{"score": bson.M{"$meta": "textScore"}})
	}

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, errors.Internal("Failed to search items", err)
	}
	defer cursor.Close(ctx)

	items := []*entity.Item{}
	if err := cursor.All(ctx, &items); err != nil {
		return nil, 0, errors.Internal("Failed to decode items", err)
	}
	return items, total, nil
}

func (r *mongoItemRepository) Trending(ctx context.Context, limit int) ([]*entity.Item, error) {
	opts := options.Find().
		SetSort(bson.D{
			{Key: "views", Value: -1},
			{Key: "favoriteCount", Value: -1},
			{Key: "createdAt", Value: -1},
			{Key: "_id", Value: 1},
		}).
		SetLimit(int64(limit))

	cursor, err := r.collection.Find(ctx, bson.M{"status": entity.ItemStatusActive}, opts)
	if err != nil {
		return nil, errors.Internal("Failed to load trending items", err)
	}
	defer cursor.Close(ctx)

	items := []*entity.Item{}
	if err := cursor.All(ctx, &items); err != nil {
		return nil, errors.Internal("Failed to decode items", err)
	}
	return items, nil
}

func itemFilter(q entity.ItemQuery) bson.M {
	filter := bson.M{"status": q.StatusFilter()}

	if q.TextQuery != "" {
		filter["$text"] = bson.M{"$search": q.TextQuery}
	}

	equals := map[string]string{
		"sellerId":          q.SellerID,
		"category":          q.Category,
		"subcategory":       q.Subcategory,
		"condition":         q.Condition,
		"location.province": q.Province,
		"location.city":     q.City,
		"location.district": q.District,
	}
	for field, value := range equals {
		if value != "" {
			filter[field] = value
		}
	}

	if q.MinPrice != nil || q.MaxPrice != nil {
		price := bson.M{}
		if q.MinPrice != nil {
			price["$gte"] = *q.MinPrice
		}
		if q.MaxPrice != nil {
			price["$lte"] = *q.MaxPrice
		}
		filter["price"] = price
	}
	return filter
}

// itemSort ranks by text score first when searching, then by the requested
// key, and finally by id so pages are stable.
func itemSort(q entity.ItemQuery) bson.D {
	var sort bson.D
	if q.TextQuery != "" {
		sort = append(sort, bson.E{Key: "score", Value: bson.M{"$meta": "textScore"}})
	}

	switch q.Sort {
	case entity.SortOldest:
		sort = append(sort, bson.E{Key: "createdAt", Value: 1})
	case entity.SortPriceLow:
		sort = append(sort, bson.E{Key: "price", Value: 1})
	case entity.SortPriceHigh:
		sort = append(sort, bson.E{Key: "price", Value: -1})
	case entity.SortPopular:
		sort = append(sort, bson.E{Key: "views", Value: -1}, bson.E{Key: "favoriteCount", Value: -1})
	default:
		sort = append(sort, bson.E{Key: "createdAt", Value: -1})
	}

	return append(sort, bson.E{Key: "_id", Value: 1})
}
