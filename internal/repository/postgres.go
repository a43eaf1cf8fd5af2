// internal/repository/postgres.go
package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS registered_emails (
    email TEXT PRIMARY KEY,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

// PostgresRegistry stores registered emails in postgres. Emails are kept
// lowercase so lookups are case-insensitive.
type PostgresRegistry struct {
	db *pgxpool.Pool
}

func NewPostgresRegistry(db *pgxpool.Pool) *PostgresRegistry {
	return &PostgresRegistry{db: db}
}

// Migrate creates the table and inserts the seed emails.
func (r *PostgresRegistry) Migrate(ctx context.Context, seed ...string) error {
	if _, err := r.db.Exec(ctx, postgresSchema); err != nil {
		return fmt.Errorf("create registered_emails: %w", err)
	}
	for _, email := range seed {
		if err := r.Add(ctx, email); err != nil {
			return fmt.Errorf("seed %s: %w", email, err)
		}
	}
	return nil
}

func (r *PostgresRegistry) Contains(ctx context.Context, email string) (bool, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return false, nil
	}
	var exists bool
	err = r.db.QueryRow(ctx,
		"SELECT EXISTS (SELECT 1 FROM registered_emails WHERE email = $1)", email).
		Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	return exists, nil
}

func (r *PostgresRegistry) Add(ctx context.Context, email string) error {
	email, err := normalizeEmail(email)
	if err != nil {
		return err
	}
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx,
		"INSERT INTO registered_emails (email) VALUES ($1) ON CONFLICT (email) DO NOTHING",
		email)
	if err != nil {
		return fmt.Errorf("insert email: %w", err)
	}

	return tx.Commit(ctx)
}
