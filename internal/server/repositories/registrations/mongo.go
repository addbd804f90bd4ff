package registrations

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

// CollectionName is the MongoDB collection holding registrations.
const CollectionName = "registrations"

type MongoRepository struct {
	coll *mongo.Collection
}

func NewMongoRepository(db *mongo.Database) *MongoRepository {
	return &MongoRepository{coll: db.Collection(CollectionName)}
}

// Indexes are created by the repository manager at startup. The unique index
// on rollNumber is what makes concurrent Create calls safe.
func Indexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "rollNumber", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("rollNumber_unique"),
		},
		{
			Keys:    bson.D{{Key: "createdAt", Value: 1}},
			Options: options.Index().SetName("createdAt"),
		},
	}
}

func (r *MongoRepository) Create(ctx context.Context, reg *models.Registration) (*models.Registration, error) {
	now := time.Now().UTC().Truncate(time.Millisecond)
	reg.CreatedAt = now
	reg.UpdatedAt = now

	if _, err := r.coll.InsertOne(ctx, reg); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, common.ErrDuplicateRegistration
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return reg, nil
}

func (r *MongoRepository) GetByRollNumber(ctx context.Context, rollNumber string) (*models.Registration, error) {
	reg := &models.Registration{}
	err := r.coll.FindOne(ctx, bson.D{{Key: "rollNumber", Value: rollNumber}}).Decode(reg)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return reg, nil
}

func (r *MongoRepository) List(ctx context.Context) ([]*models.Registration, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "rollNumber", Value: 1}})

	cur, err := r.coll.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to select registrations: %w", err)
	}

	var result []*models.Registration
	if err := cur.All(ctx, &result); err != nil {
		return nil, fmt.Errorf("failed to read registrations: %w", err)
	}
	return result, nil
}
