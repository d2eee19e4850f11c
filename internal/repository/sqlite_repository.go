package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/devrep/reputation-registry/internal/registry"
)

type sqliteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository returns a SQLite-backed state repository.
// The registry_state table must already exist.
func NewSQLiteRepository(db *sql.DB) StateRepository {
	return &sqliteRepository{db: db}
}

func (r *sqliteRepository) Get(ctx context.Context, key string) ([]byte, bool, error) {
	const query = `SELECT value FROM registry_state WHERE key = ?`

	var value []byte
	err := r.db.QueryRowContext(ctx, query, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("sqlite get %q: %w", key, err)
	}
	return value, true, nil
}

func (r *sqliteRepository) Commit(ctx context.Context, writes []registry.Write) (err error) {
	const query = `
        INSERT INTO registry_state (key, value, updated_at)
        VALUES (?, ?, CURRENT_TIMESTAMP)
        ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite begin: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("sqlite prepare: %w", err)
	}
	defer stmt.Close()

	for _, w := range writes {
		if _, err = stmt.ExecContext(ctx, w.Key, w.Value); err != nil {
			return fmt.Errorf("sqlite put %q: %w", w.Key, err)
		}
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("sqlite commit: %w", err)
	}
	return nil
}

func (r *sqliteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}
