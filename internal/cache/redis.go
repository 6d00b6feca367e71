package cache

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
)

// Redis is a PageCache backed by a shared Redis instance, so cached pages
// survive restarts and are shared across replicas. Expiry is delegated to
// Redis key TTLs.
type Redis struct {
	client *redis.Client
}

// NewRedis creates a Redis-backed page cache.
func NewRedis(client *redis.Client) *Redis {
	return &Redis{client: client}
}

func (r *Redis) Get(ctx context.Context, key string) ([]byte, bool, error) {
	val, err := r.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return val, true, nil
}

func (r *Redis) Set(ctx context.Context, key string, val []byte, ttl time.Duration) error {
	return r.client.Set(ctx, key, val, ttl).Err()
}

func (r *Redis) Invalidate(ctx context.Context, key string) error {
	return r.client.Del(ctx, key).Err()
}
