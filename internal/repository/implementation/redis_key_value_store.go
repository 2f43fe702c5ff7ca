package implementation

import (
	"context"
	"errors"
	"fmt"

	"storefront-admin/internal/repository/contract"

	"github.com/redis/go-redis/v9"
)

const defaultRedisPrefix = "storefront-admin:"

type redisKeyValueStore struct {
	client *redis.Client
	prefix string
}

func NewRedisKeyValueStore(client *redis.Client) contract.KeyValueStore {
	return &redisKeyValueStore{
		client: client,
		prefix: defaultRedisPrefix,
	}
}

func (r *redisKeyValueStore) key(k string) string {
	return r.prefix + k
}

func (r *redisKeyValueStore) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := r.client.Get(ctx, r.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redis get %s: %w", key, err)
	}
	return val, true, nil
}

func (r *redisKeyValueStore) Set(ctx context.Context, key, value string) error {
	if err := r.client.Set(ctx, r.key(key), value, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

func (r *redisKeyValueStore) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, r.key(key)).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", key, err)
	}
	return nil
}
