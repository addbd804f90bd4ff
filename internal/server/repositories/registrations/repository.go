// Package registrations stores fest registrations. Roll numbers are unique;
// every backend enforces that at write time.
package registrations

import (
	"context"

	"github.com/dmitrijs2005/festreg/internal/server/models"
)

type Repository interface {
	// Create inserts reg unless its roll number is taken, in which case it
	// returns common.ErrDuplicateRegistration and writes nothing. CreatedAt
	// and UpdatedAt are filled from the store.
	Create(ctx context.Context, reg *models.Registration) (*models.Registration, error)
	// GetByRollNumber expects a normalised roll number and returns
	// common.ErrorNotFound when there is none.
	GetByRollNumber(ctx context.Context, rollNumber string) (*models.Registration, error)
	// List returns every registration, oldest first.
	List(ctx context.Context) ([]*models.Registration, error)
}
