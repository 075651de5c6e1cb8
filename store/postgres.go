// store/postgres.go
package store

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrations embed.FS

// PostgresStore keeps session entries in a shared PostgreSQL table so that
// several terminals can share one operator profile.
type PostgresStore struct {
	db        *sql.DB // Holds the database connection
	namespace string  // Profile the entries belong to
}

// NewPostgresStore connects to connStr, applies pending migrations and
// scopes every entry to namespace.
func NewPostgresStore(connStr, namespace string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres db: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping postgres db: %w", err)
	}
	if err := Migrate(db); err != nil {
		db.Close()
		return nil, err
	}
	return NewPostgresStoreWithDB(db, namespace), nil
}

// NewPostgresStoreWithDB wraps an open, migrated database.
func NewPostgresStoreWithDB(db *sql.DB, namespace string) *PostgresStore {
	if namespace == "" {
		namespace = "default"
	}
	return &PostgresStore{db: db, namespace: namespace}
}

// Migrate applies the embedded schema migrations.
func Migrate(db *sql.DB) error {
	goose.SetBaseFS(migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}
	if err := goose.Up(db, "migrations"); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, key string) (string, bool, error) {
	query := `SELECT value FROM client_state WHERE namespace = $1 AND key = $2`

	var value string
	err := s.db.QueryRowContext(ctx, query, s.namespace, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read %q: %w", key, err)
	}
	return value, true, nil
}

// Save upserts every entry inside one transaction.
func (s *PostgresStore) Save(ctx context.Context, entries map[string]string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
        INSERT INTO client_state (namespace, key, value, updated_at)
        VALUES ($1, $2, $3, NOW())
        ON CONFLICT (namespace, key)
        DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()`

	for k, v := range entries {
		if _, err := tx.ExecContext(ctx, query, s.namespace, k, v); err != nil {
			return fmt.Errorf("failed to save %q: %w", k, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit session entries: %w", err)
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, keys ...string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, k := range keys {
		if _, err := tx.ExecContext(ctx, `DELETE FROM client_state WHERE namespace = $1 AND key = $2`, s.namespace, k); err != nil {
			return fmt.Errorf("failed to delete %q: %w", k, err)
		}
	}
	return tx.Commit()
}

// Close closes the database connection
func (s *PostgresStore) Close() error {
	return s.db.Close()
}
