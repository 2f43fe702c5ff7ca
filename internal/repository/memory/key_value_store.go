package memory

import (
	"context"

	"github.com/patrickmn/go-cache"
)

// KeyValueStore keeps values for the lifetime of the process. Used by tests
// and by deployments that accept losing the session on restart.
type KeyValueStore struct {
	cache *cache.Cache
}

func NewKeyValueStore() *KeyValueStore {
	return &KeyValueStore{
		cache: cache.New(cache.NoExpiration, 0),
	}
}

func (r *KeyValueStore) Get(ctx context.Context, key string) (string, bool, error) {
	if x, found := r.cache.Get(key); found {
		return x.(string), true, nil
	}
	return "", false, nil
}

func (r *KeyValueStore) Set(ctx context.Context, key, value string) error {
	r.cache.Set(key, value, cache.NoExpiration)
	return nil
}

func (r *KeyValueStore) Delete(ctx context.Context, key string) error {
	r.cache.Delete(key)
	return nil
}
