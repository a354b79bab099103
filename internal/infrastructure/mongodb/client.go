// Package mongodb connects to MongoDB and prepares the collections the
// message and catalog stores rely on.
package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	MessagesCollection = "messages"
	ItemsCollection    = "items"
	UsersCollection    = "users"

	attachmentsBucket = "attachments"
)

type Client struct {
	Client   *mongo.Client
	Database *mongo.Database
	GridFS   *gridfs.Bucket
}

func Connect(ctx context.Context, uri, database string) (*Client, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	db := client.Database(database)
	bucket, err := gridfs.NewBucket(db, options.GridFSBucket().SetName(attachmentsBucket))
	if err != nil {
		return nil, fmt.Errorf("failed to create GridFS bucket: %w", err)
	}

	return &Client{
		Client:   client,
		Database: db,
		GridFS:   bucket,
	}, nil
}

func (c *Client) Close(ctx context.Context) error {
	return c.Client.Disconnect(ctx)
}

// EnsureIndexes creates the indexes backing conversation reads, unread
// counts and catalog search. It is safe to call on every start.
func (c *Client) EnsureIndexes(ctx context.Context) error {
	for collection, models := range IndexModels() {
		if _, err := c.Database.Collection(collection).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("failed to create %s indexes: %w", collection, err)
		}
	}
	return nil
}

// IndexModels lists the indexes per collection.
func IndexModels() map[string][]mongo.IndexModel {
	return map[string][]mongo.IndexModel{
		MessagesCollection: {
			{Keys: bson.D{{Key: "conversation", Value: 1}, {Key: "createdAt", Value: -1}}},
			{Keys: bson.D{{Key: "sender", Value: 1}, {Key: "createdAt", Value: -1}}},
			{Keys: bson.D{{Key: "receiver", Value: 1}, {Key: "isRead", Value: 1}}},
		},
		ItemsCollection: {
			{
				Keys: bson.D{{Key: "title", Value: "text"}, {Key: "description", Value: "text"}, {Key: "tags", Value: "text"}},
				Options: options.Index().
					SetName("item_text").
					SetWeights(bson.D{{Key: "title", Value: 3}, {Key: "tags", Value: 2}, {Key: "description", Value: 1}}),
			},
			{Keys: bson.D{{Key: "status", Value: 1}, {Key: "category", Value: 1}, {Key: "price", Value: 1}}},
			{Keys: bson.D{{Key: "status", Value: 1}, {Key: "location.province", Value: 1}, {Key: "location.city", Value: 1}}},
			{Keys: bson.D{{Key: "status", Value: 1}, {Key: "views", Value: -1}, {Key: "favoriteCount", Value: -1}}},
			{Keys: bson.D{{Key: "sellerId", Value: 1}, {Key: "status", Value: 1}, {Key: "createdAt", Value: -1}}},
		},
	}
}
