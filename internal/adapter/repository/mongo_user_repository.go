package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"droplink/internal/domain/entity"
	"droplink/internal/domain/repository"
	"droplink/internal/infrastructure/mongodb"
	"droplink/pkg/errors"
)

type mongoUserRepository struct {
	collection *mongo.Collection
}

func NewMongoUserRepository(db *mongo.Database) repository.UserRepository {
	return &mongoUserRepository{
		collection: db.Collection(mongodb.UsersCollection),
	}
}

func (r *mongoUserRepository) Create(ctx context.Context, user *entity.User) error {
	_, err := r.collection.ReplaceOne(ctx, bson.M{"_id": user.ID}, user, options.Replace().SetUpsert(true))
	if err != nil {
		return errors.Internal("Failed to create user", err)
	}
	return nil
}

func (r *mongoUserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	var user entity.User
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, errors.NotFound("User", err)
		}
		return nil, errors.Internal("Failed to get user", err)
	}
	return &user, nil
}
