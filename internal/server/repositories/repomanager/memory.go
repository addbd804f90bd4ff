package repomanager

import (
	"context"

	"github.com/dmitrijs2005/festreg/internal/server/repositories/registrations"
	"github.com/dmitrijs2005/festreg/internal/server/repositories/users"
)

// MemoryRepositoryManager keeps everything in process memory. Data is lost on
// restart; meant for local development and tests.
type MemoryRepositoryManager struct {
	users         *users.MemoryRepository
	registrations *registrations.MemoryRepository
}

func NewMemoryRepositoryManager() *MemoryRepositoryManager {
	return &MemoryRepositoryManager{
		users:         users.NewMemoryRepository(),
		registrations: registrations.NewMemoryRepository(),
	}
}

func (m *MemoryRepositoryManager) Users() users.Repository {
	return m.users
}

func (m *MemoryRepositoryManager) Registrations() registrations.Repository {
	return m.registrations
}

func (m *MemoryRepositoryManager) Ping(context.Context) error  { return nil }
func (m *MemoryRepositoryManager) Close(context.Context) error { return nil }
