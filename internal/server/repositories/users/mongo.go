package users

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/festreg/internal/common"
	"github.com/dmitrijs2005/festreg/internal/server/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CollectionName is the MongoDB collection holding users.
const CollectionName = "users"

type MongoRepository struct {
	coll *mongo.Collection
}

func NewMongoRepository(db *mongo.Database) *MongoRepository {
	return &MongoRepository{coll: db.Collection(CollectionName)}
}

// Indexes are created by the repository manager at startup.
func Indexes() []mongo.IndexModel {
	return []mongo.IndexModel{{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("email_unique"),
	}}
}

func (r *MongoRepository) Upsert(ctx context.Context, user *models.User) (*models.User, error) {
	out, err := r.upsert(ctx, user)
	// Two concurrent upserts of a new email can both try to insert; the
	// loser sees a duplicate key and the retry turns into an update.
	if mongo.IsDuplicateKeyError(err) {
		out, err = r.upsert(ctx, user)
	}
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return out, nil
}

func (r *MongoRepository) upsert(ctx context.Context, user *models.User) (*models.User, error) {
	now := time.Now().UTC()

	filter := bson.D{{Key: "email", Value: user.Email}}
	update := bson.D{
		{Key: "$set", Value: bson.D{{Key: "name", Value: user.Name}, {Key: "updatedAt", Value: now}}},
		{Key: "$setOnInsert", Value: bson.D{{Key: "createdAt", Value: now}}},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	out := &models.User{}
	if err := r.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *MongoRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	user := &models.User{}
	err := r.coll.FindOne(ctx, bson.D{{Key: "email", Value: email}}).Decode(user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return user, nil
}
