// Package common defines sentinel errors shared by the storage, service and
// transport layers of the registration server. Callers should use errors.Is
// (or errors.As for ValidationError) to match these values.
package common

import (
	"errors"
	"strings"
)

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors.
	ErrorInternal = errors.New("internal error")

	// Auth errors (identity token or session token failed verification).
	ErrInvalidToken = errors.New("invalid token")

	// A registration with the same roll number already exists.
	ErrDuplicateRegistration = errors.New("already registered")

	// Input failed validation; see ValidationError for the offending fields.
	ErrValidation = errors.New("validation error")
)

// ValidationError lists the request fields that are missing or invalid.
// It matches ErrValidation through errors.Is.
type ValidationError struct {
	Fields []string
}

func NewValidationError(fields ...string) *ValidationError {
	return &ValidationError{Fields: fields}
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return ErrValidation.Error()
	}
	return ErrValidation.Error() + ": " + strings.Join(e.Fields, ", ")
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}
