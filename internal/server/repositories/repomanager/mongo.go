package repomanager

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/festreg/internal/server/repositories/registrations"
	"github.com/dmitrijs2005/festreg/internal/server/repositories/users"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// MongoRepositoryManager vends MongoDB-backed repositories of one database.
type MongoRepositoryManager struct {
	client        *mongo.Client
	db            *mongo.Database
	users         *users.MongoRepository
	registrations *registrations.MongoRepository
}

// NewMongoRepositoryManager connects to uri, checks the primary is reachable
// and makes sure the unique indexes exist.
func NewMongoRepositoryManager(ctx context.Context, uri, database string) (*MongoRepositoryManager, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo connect error: %w", err)
	}

	m := NewMongoRepositoryManagerFromDatabase(client.Database(database))

	if err := m.Ping(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("mongo ping error: %w", err)
	}

	if err := m.EnsureIndexes(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("mongo index error: %w", err)
	}

	return m, nil
}

// NewMongoRepositoryManagerFromDatabase wraps an existing database handle.
func NewMongoRepositoryManagerFromDatabase(db *mongo.Database) *MongoRepositoryManager {
	return &MongoRepositoryManager{
		client:        db.Client(),
		db:            db,
		users:         users.NewMongoRepository(db),
		registrations: registrations.NewMongoRepository(db),
	}
}

func (m *MongoRepositoryManager) Users() users.Repository {
	return m.users
}

func (m *MongoRepositoryManager) Registrations() registrations.Repository {
	return m.registrations
}

func (m *MongoRepositoryManager) Ping(ctx context.Context) error {
	return m.client.Ping(ctx, readpref.Primary())
}

func (m *MongoRepositoryManager) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}

// EnsureIndexes creates the unique indexes on users.email and
// registrations.rollNumber. Creating an existing index is a no-op.
func (m *MongoRepositoryManager) EnsureIndexes(ctx context.Context) error {
	if _, err := m.db.Collection(users.CollectionName).Indexes().CreateMany(ctx, users.Indexes()); err != nil {
		return fmt.Errorf("users: %w", err)
	}
	if _, err := m.db.Collection(registrations.CollectionName).Indexes().CreateMany(ctx, registrations.Indexes()); err != nil {
		return fmt.Errorf("registrations: %w", err)
	}
	return nil
}
