package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"droplink/internal/domain/entity"
	"droplink/internal/domain/repository"
	"droplink/internal/infrastructure/mongodb"
	"droplink/pkg/errors"
)

type mongoMessageRepository struct {
	collection *mongo.Collection
}

func NewMongoMessageRepository(db *mongo.Database) repository.MessageRepository {
	return &mongoMessageRepository{
		collection: db.Collection(mongodb.MessagesCollection),
	}
}

func (r *mongoMessageRepository) Create(ctx context.Context, message *entity.Message) error {
	if _, err := r.collection.InsertOne(ctx, message); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return errors.BadRequest("Message already exists", err)
		}
		return errors.Internal("Failed to create message", err)
	}
	return nil
}

func (r *mongoMessageRepository) GetByID(ctx context.Context, id string) (*entity.Message, error) {
	var message entity.Message
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&message)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, errors.NotFound("Message", err)
		}
		return nil, errors.Internal("Failed to get message", err)
	}
	return &message, nil
}

func (r *mongoMessageRepository) ListByConversation(ctx context.Context, conversationKey, viewerID string, limit, offset int) ([]*entity.Message, error) {
	if offset < 0 {
		return []*entity.Message{}, nil
	}
	opts := options.Find().
		SetSort(newestFirst).
		SetSkip(int64(offset))
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	cursor, err := r.collection.Find(ctx, conversationFilter(conversationKey, viewerID), opts)
	if err != nil {
		return nil, errors.Internal("Failed to list messages", err)
	}
	defer cursor.Close(ctx)

	messages := []*entity.Message{}
	if err := cursor.All(ctx, &messages); err != nil {
		return nil, errors.Internal("Failed to decode messages", err)
	}
	return messages, nil
}

func (r *mongoMessageRepository) MarkConversationRead(ctx context.Context, conversationKey, receiverID string, at time.Time) (int64, error) {
	result, err := r.collection.UpdateMany(ctx,
		bson.M{"conversation": conversationKey, "receiver": receiverID, "isRead": false},
		bson.M{"$set": bson.M{"isRead": true, "readAt": at}},
	)
	if err != nil {
		return 0, errors.Internal("Failed to mark conversation as read", err)
	}
	return result.ModifiedCount, nil
}

func (r *mongoMessageRepository) MarkRead(ctx context.Context, id string, at time.Time) error {
	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"isRead": true, "readAt": at}},
	)
	if err != nil {
		return errors.Internal("Failed to mark message as read", err)
	}
	if result.MatchedCount == 0 {
		return errors.NotFound("Message", nil)
	}
	return nil
}

func (r *mongoMessageRepository) AddDeletedBy(ctx context.Context, id, userID string) error {
	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$addToSet": bson.M{"deletedBy": userID}},
	)
	if err != nil {
		return errors.Internal("Failed to delete message", err)
	}
	if result.MatchedCount == 0 {
		return errors.NotFound("Message", nil)
	}
	return nil
}

type conversationGroup struct {
	Key         string         `bson:"_id"`
	LastMessage entity.Message `bson:"lastMessage"`
	UnreadCount int            `bson:"unreadCount"`
}

func (r *mongoMessageRepository) ListConversations(ctx context.Context, userID string, limit int) ([]*entity.ConversationSummary, error) {
	cursor, err := r.collection.Aggregate(ctx, conversationPipeline(userID, limit))
	if err != nil {
		return nil, errors.Internal("Failed to aggregate conversations", err)
	}
	defer cursor.Close(ctx)

	var groups []conversationGroup
	if err := cursor.All(ctx, &groups); err != nil {
		return nil, errors.Internal("Failed to decode conversations", err)
	}

	summaries := make([]*entity.ConversationSummary, 0, len(groups))
	for i := range groups {
		last := groups[i].LastMessage
		summaries = append(summaries, &entity.ConversationSummary{
			ConversationKey: groups[i].Key,
			Participants:    entity.Participants{SenderID: last.SenderID, ReceiverID: last.ReceiverID},
			ItemID:          last.ItemID,
			LastMessage:     &last,
			UnreadCount:     groups[i].UnreadCount,
		})
	}
	return summaries, nil
}

// newestFirst breaks createdAt ties on the UUIDv7 id.
var newestFirst = bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}

func conversationFilter(conversationKey, viewerID string) bson.M {
	return bson.M{
		"conversation": conversationKey,
		"deletedBy":    bson.M{"$ne": viewerID},
	}
}

func conversationPipeline(userID string, limit int) mongo.Pipeline {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"$or":       bson.A{bson.M{"sender": userID}, bson.M{"receiver": userID}},
			"deletedBy": bson.M{"$ne": userID},
		}}},
		{{Key: "$sort", Value: newestFirst}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$conversation"},
			{Key: "lastMessage", Value: bson.M{"$first": "$$ROOT"}},
			{Key: "unreadCount", Value: bson.M{"$sum": bson.M{"$cond": bson.A{
				bson.M{"$and": bson.A{
					bson.M{"$eq": bson.A{"$receiver", userID}},
					bson.M{"$eq": bson.A{"$isRead", false}},
				}},
				1,
				0,
			}}}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "lastMessage.createdAt", Value: -1}, {Key: "lastMessage._id", Value: -1}}}},
	}
	if limit > 0 {
		pipeline = append(pipeline, bson.D{{Key: "$limit", Value: limit}})
	}
	return pipeline
}
