package services

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/festreg/internal/common"
	"github.com/dmitrijs2005/festreg/internal/server/auth"
	"github.com/dmitrijs2005/festreg/internal/server/config"
	"github.com/dmitrijs2005/festreg/internal/server/models"
	"github.com/dmitrijs2005/festreg/internal/server/repositories/registrations"
	"github.com/dmitrijs2005/festreg/internal/server/repositories/users"
)

const testSecret = "test-secret"

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.SessionSecretKey = testSecret
	cfg.GoogleClientID = "client-id"
	return cfg
}

type fakeVerifier struct {
	id    *auth.Identity
	err   error
	calls int
}

func (f *fakeVerifier) Verify(context.Context, string) (*auth.Identity, error) {
	f.calls++
	return f.id, f.err
}

type fakeRepoManager struct {
	u users.Repository
	r registrations.Repository
}

func (m *fakeRepoManager) Users() users.Repository                 { return m.u }
func (m *fakeRepoManager) Registrations() registrations.Repository { return m.r }
func (m *fakeRepoManager) Ping(context.Context) error              { return nil }
func (m *fakeRepoManager) Close(context.Context) error             { return nil }

type fakeUsersRepo struct {
	upsertErr error
	upserts   int
}

func (f *fakeUsersRepo) Upsert(_ context.Context, u *models.User) (*models.User, error) {
	f.upserts++
	if f.upsertErr != nil {
		return nil, f.upsertErr
	}
	out := *u
	return &out, nil
}

func (f *fakeUsersRepo) GetByEmail(context.Context, string) (*models.User, error) {
	return nil, common.ErrorNotFound
}

type fakeRegsRepo struct {
	mu        sync.Mutex
	getErr    error
	createErr error
	listErr   error
	existing  *models.Registration
	created   []*models.Registration
	list      []*models.Registration
}

func (f *fakeRegsRepo) Create(_ context.Context, r *models.Registration) (*models.Registration, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.created = append(f.created, r)
	return r, nil
}

func (f *fakeRegsRepo) GetByRollNumber(context.Context, string) (*models.Registration, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	if f.existing != nil {
		return f.existing, nil
	}
	return nil, common.ErrorNotFound
}

func (f *fakeRegsRepo) List(context.Context) ([]*models.Registration, error) {
	return f.list, f.listErr
}
