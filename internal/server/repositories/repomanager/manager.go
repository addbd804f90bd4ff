// Package repomanager opens the configured storage backend and vends its
// repositories.
package repomanager

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/festreg/internal/server/config"
	"github.com/dmitrijs2005/festreg/internal/server/repositories/registrations"
	"github.com/dmitrijs2005/festreg/internal/server/repositories/users"
)

// RepositoryManager owns a storage connection. Close releases it.
type RepositoryManager interface {
	Users() users.Repository
	Registrations() registrations.Repository
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

// Open connects to the backend named by cfg.Storage and prepares its schema
// (migrations for PostgreSQL, indexes for MongoDB).
func Open(ctx context.Context, cfg *config.Config) (RepositoryManager, error) {
	switch cfg.Storage {
	case config.StoragePostgres:
		return NewPostgresRepositoryManager(ctx, cfg.DatabaseDSN)
	case config.StorageMongo:
		return NewMongoRepositoryManager(ctx, cfg.MongoURI, cfg.MongoDatabase)
	case config.StorageMemory:
		return NewMemoryRepositoryManager(), nil
	default:
		return nil, fmt.Errorf("unknown storage %q", cfg.Storage)
	}
}
