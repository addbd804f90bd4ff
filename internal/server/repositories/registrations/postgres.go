package registrations

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/festreg/internal/common"
	"github.com/dmitrijs2005/festreg/internal/dbx"
	"github.com/dmitrijs2005/festreg/internal/server/models"
)

// rollNumberConstraint is declared in migration 00002.
const rollNumberConstraint = "registrations_roll_number_key"

// PostgresRepository implements registration storage over a dbx.DBTX
// (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create relies on the unique constraint on roll_number: a conflicting insert
// affects no row and is reported as a duplicate.
func (r *PostgresRepository) Create(ctx context.Context, reg *models.Registration) (*models.Registration, error) {
	events, err := json.Marshal(reg.Events)
	if err != nil {
		return nil, fmt.Errorf("encode events: %w", err)
	}

	query :=
		`INSERT INTO registrations (id, name, roll_number, year, section, events, transaction_id, email, logged_email)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 ON CONFLICT (roll_number) DO NOTHING
		 RETURNING created_at, updated_at
		 `

	err = r.db.QueryRowContext(ctx, query,
		reg.ID, reg.Name, reg.RollNumber, reg.Year, reg.Section, string(events),
		reg.TransactionID, reg.Email, reg.LoggedEmail).Scan(&reg.CreatedAt, &reg.UpdatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) || dbx.IsUniqueViolation(err, rollNumberConstraint) {
			return nil, common.ErrDuplicateRegistration
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return reg, nil
}

const selectColumns = `id, name, roll_number, year, section, events, transaction_id, email, logged_email, created_at, updated_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanRegistration(s scanner) (*models.Registration, error) {
	var (
		reg    models.Registration
		events []byte
	)
	if err := s.Scan(&reg.ID, &reg.Name, &reg.RollNumber, &reg.Year, &reg.Section, &events,
		&reg.TransactionID, &reg.Email, &reg.LoggedEmail, &reg.CreatedAt, &reg.UpdatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(events, &reg.Events); err != nil {
		return nil, fmt.Errorf("decode events of %s: %w", reg.ID, err)
	}
	return &reg, nil
}

func (r *PostgresRepository) GetByRollNumber(ctx context.Context, rollNumber string) (*models.Registration, error) {
	query := `SELECT ` + selectColumns + ` FROM registrations WHERE roll_number = $1`

	reg, err := scanRegistration(r.db.QueryRowContext(ctx, query, rollNumber))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return reg, nil
}

func (r *PostgresRepository) List(ctx context.Context) ([]*models.Registration, error) {
	query := `SELECT ` + selectColumns + ` FROM registrations ORDER BY created_at, roll_number`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to select registrations: %w", err)
	}
	defer rows.Close()

	var result []*models.Registration
	for rows.Next() {
		reg, err := scanRegistration(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, reg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
