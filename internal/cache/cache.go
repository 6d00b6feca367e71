package cache

import (
	"context"
	"time"
)

// PageCache stores rendered page bytes for a fixed TTL. It is deliberately
// tiny: the only consumer is the global feed route, which caches one key.
type PageCache interface {
	// Get returns the cached bytes for key and whether an unexpired entry exists.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores val under key, expiring after ttl.
	Set(ctx context.Context, key string, val []byte, ttl time.Duration) error
	// Invalidate evicts key early. Evicting an absent key is a no-op.
	Invalidate(ctx context.Context, key string) error
}

// GetOrRender returns the cached bytes for key if present, otherwise calls
// render, stores the result and returns it. Concurrent writers racing to
// repopulate an expired key may both render; last write wins, which is fine
// since both render from the same data at that instant. Cache backend errors
// degrade to a plain render rather than failing the request.
func GetOrRender(ctx context.Context, c PageCache, key string, ttl time.Duration, render func() ([]byte, error)) ([]byte, error) {
	if cached, ok, err := c.Get(ctx, key); err == nil && ok {
		return cached, nil
	}

	rendered, err := render()
	if err != nil {
		return nil, err
	}

	_ = c.Set(ctx, key, rendered, ttl)
	return rendered, nil
}
