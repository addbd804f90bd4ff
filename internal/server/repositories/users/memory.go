package users

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/festreg/internal/common"
	"github.com/dmitrijs2005/festreg/internal/server/models"
)

// MemoryRepository keeps users in a map. It is used by the memory storage
// backend and in tests.
type MemoryRepository struct {
	mu    sync.Mutex
	users map[string]models.User
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{users: make(map[string]models.User)}
}

func (r *MemoryRepository) Upsert(_ context.Context, user *models.User) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	stored, ok := r.users[user.Email]
	if !ok {
		stored = models.User{Email: user.Email, CreatedAt: now}
	}
	stored.Name = user.Name
	stored.UpdatedAt = now
	r.users[user.Email] = stored

	out := stored
	return &out, nil
}

func (r *MemoryRepository) GetByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[email]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &u, nil
}

// Len returns the number of stored users.
func (r *MemoryRepository) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.users)
}
