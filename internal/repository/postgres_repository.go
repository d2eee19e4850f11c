package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/devrep/reputation-registry/internal/registry"
)

type postgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository returns a Postgres-backed state repository.
func NewPostgresRepository(pool *pgxpool.Pool) StateRepository {
	return &postgresRepository{pool: pool}
}

func (r *postgresRepository) Get(ctx context.Context, key string) ([]byte, bool, error) {
	const query = `SELECT value FROM registry_state WHERE key = $1`

	var value []byte
	err := r.pool.QueryRow(ctx, query, key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("postgres get %q: %w", key, err)
	}
	return value, true, nil
}

// Commit upserts the batch in one transaction, pipelined as a pgx batch.
func (r *postgresRepository) Commit(ctx context.Context, writes []registry.Write) error {
	const query = `
        INSERT INTO registry_state (key, value, updated_at)
        VALUES ($1, $2, NOW())
        ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()`

	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		for _, w := range writes {
			batch.Queue(query, w.Key, w.Value)
		}
		results := tx.SendBatch(ctx, batch)
		for _, w := range writes {
			if _, err := results.Exec(); err != nil {
				_ = results.Close()
				return fmt.Errorf("postgres put %q: %w", w.Key, err)
			}
		}
		return results.Close()
	})
}

func (r *postgresRepository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}
