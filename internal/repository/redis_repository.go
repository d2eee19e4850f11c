package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/devrep/reputation-registry/internal/registry"
)

type redisRepository struct {
	client *redis.Client
	hash   string
}

// NewRedisRepository keeps all state in a single hash named prefix+"state".
func NewRedisRepository(client *redis.Client, prefix string) StateRepository {
	return &redisRepository{client: client, hash: prefix + "state"}
}

func (r *redisRepository) Get(ctx context.Context, key string) ([]byte, bool, error) {
	value, err := r.client.HGet(ctx, r.hash, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis hget %q: %w", key, err)
	}
	return value, true, nil
}

// Commit wraps the batch in MULTI/EXEC so readers never see half of it.
func (r *redisRepository) Commit(ctx context.Context, writes []registry.Write) error {
	if len(writes) == 0 {
		return nil
	}
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, w := range writes {
			pipe.HSet(ctx, r.hash, w.Key, w.Value)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis commit: %w", err)
	}
	return nil
}

func (r *redisRepository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
