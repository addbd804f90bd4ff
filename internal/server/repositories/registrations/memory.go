package registrations

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/dmitrijs2005/festreg/internal/common"
	"github.com/dmitrijs2005/festreg/internal/server/models"
)

// MemoryRepository keeps registrations in a map keyed by roll number. The
// check and the insert happen under one lock.
type MemoryRepository struct {
	mu     sync.Mutex
	byRoll map[string]models.Registration
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{byRoll: make(map[string]models.Registration)}
}

func (r *MemoryRepository) Create(_ context.Context, reg *models.Registration) (*models.Registration, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.byRoll[reg.RollNumber]; taken {
		return nil, common.ErrDuplicateRegistration
	}

	now := time.Now().UTC()
	reg.CreatedAt = now
	reg.UpdatedAt = now

	stored := *reg
	stored.Events = append(models.EventSet(nil), reg.Events...)
	r.byRoll[reg.RollNumber] = stored

	return reg, nil
}

func (r *MemoryRepository) GetByRollNumber(_ context.Context, rollNumber string) (*models.Registration, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	reg, ok := r.byRoll[rollNumber]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &reg, nil
}

func (r *MemoryRepository) List(_ context.Context) ([]*models.Registration, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*models.Registration, 0, len(r.byRoll))
	for _, reg := range r.byRoll {
		reg := reg
		out = append(out, &reg)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].RollNumber < out[j].RollNumber
	})
	return out, nil
}
