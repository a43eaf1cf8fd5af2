// internal/repository/sqlite.go
package repository

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS registered_emails (
    email TEXT PRIMARY KEY,
    created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);
`

// SQLiteRegistry is the embedded registry used when no postgres is configured
// but registrations should survive a restart.
type SQLiteRegistry struct {
	db *sql.DB
}

func OpenSQLiteRegistry(path string, seed ...string) (*SQLiteRegistry, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database %s: %w", path, err)
	}
	// A single connection keeps ":memory:" databases shared.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	r := &SQLiteRegistry{db: db}
	for _, email := range seed {
		if err := r.Add(context.Background(), email); err != nil {
			db.Close()
			return nil, fmt.Errorf("seed %s: %w", email, err)
		}
	}
	return r, nil
}

func (r *SQLiteRegistry) Contains(ctx context.Context, email string) (bool, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return false, nil
	}
	var n int
	err = r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM registered_emails WHERE email = ?", email).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	return n > 0, nil
}

func (r *SQLiteRegistry) Add(ctx context.Context, email string) error {
	email, err := normalizeEmail(email)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, "INSERT OR IGNORE INTO registered_emails (email) VALUES (?)", email)
	if err != nil {
		return fmt.Errorf("insert email: %w", err)
	}
	return nil
}

func (r *SQLiteRegistry) Close() error {
	return r.db.Close()
}

func (r *SQLiteRegistry) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}
