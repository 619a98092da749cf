package repositories

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/you/dairyshell/domain"
)

// RedisKeyValueStore implements domain.KeyValueStore using Redis
type RedisKeyValueStore struct {
	client *redis.Client
	prefix string
}

// NewRedisKeyValueStore creates a new Redis-backed key-value store.
// Every key is namespaced with prefix.
func NewRedisKeyValueStore(client *redis.Client, prefix string) domain.KeyValueStore {
	return &RedisKeyValueStore{
		client: client,
		prefix: prefix,
	}
}

// Get implements domain.KeyValueStore
func (r *RedisKeyValueStore) Get(ctx context.Context, key string) (string, error) {
	val, err := r.client.Get(ctx, r.prefix+key).Result()
	if err != nil {
		if err == redis.Nil {
			return "", domain.ErrKeyNotFound
		}
		return "", fmt.Errorf("failed to read %q: %w", key, err)
	}
	return val, nil
}

// Set implements domain.KeyValueStore with a MULTI/EXEC transaction
func (r *RedisKeyValueStore) Set(ctx context.Context, entries map[string]string) error {
	if len(entries) == 0 {
		return nil
	}

	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for k, v := range entries {
			pipe.Set(ctx, r.prefix+k, v, 0)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to write entries: %w", err)
	}
	return nil
}

// Delete implements domain.KeyValueStore
func (r *RedisKeyValueStore) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}

	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = r.prefix + k
	}
	if err := r.client.Del(ctx, full...).Err(); err != nil {
		return fmt.Errorf("failed to delete entries: %w", err)
	}
	return nil
}

// Close implements domain.KeyValueStore
func (r *RedisKeyValueStore) Close() error {
	return r.client.Close()
}
