// Package users stores people who signed in with Google, keyed by email.
package users

import (
	"context"

	"github.com/dmitrijs2005/festreg/internal/server/models"
)

type Repository interface {
	// Upsert inserts the user or, when the email is already known, replaces
	// its name. The stored record is returned.
	Upsert(ctx context.Context, user *models.User) (*models.User, error)
	// GetByEmail returns common.ErrorNotFound for unknown emails.
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}
