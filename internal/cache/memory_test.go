package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryExpiry(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	c := NewMemoryWithClock(func() time.Time { return now })
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", []byte("v"), 20*time.Second))

	val, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("v"), val)

	// One tick before expiry the entry is still served.
	now = now.Add(19 * time.Second)
	_, ok, err = c.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)

	// At the expiry instant the entry is gone.
	now = now.Add(1 * time.Second)
	_, ok, err = c.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryInvalidate(t *testing.T) {
	c := NewMemory()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Minute))
	require.NoError(t, c.Invalidate(ctx, "k"))

	_, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)

	// Invalidating an absent key is a no-op.
	require.NoError(t, c.Invalidate(ctx, "missing"))
}

func TestGetOrRenderPopulatesOnMiss(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	c := NewMemoryWithClock(func() time.Time { return now })
	ctx := context.Background()

	renders := 0
	render := func() ([]byte, error) {
		renders++
		return []byte("rendered"), nil
	}

	out, err := GetOrRender(ctx, c, "page", 20*time.Second, render)
	require.NoError(t, err)
	assert.Equal(t, []byte("rendered"), out)
	assert.Equal(t, 1, renders)

	// Within the TTL the render function is not called again.
	out, err = GetOrRender(ctx, c, "page", 20*time.Second, render)
	require.NoError(t, err)
	assert.Equal(t, []byte("rendered"), out)
	assert.Equal(t, 1, renders)

	// Past the TTL it re-renders.
	now = now.Add(21 * time.Second)
	_, err = GetOrRender(ctx, c, "page", 20*time.Second, render)
	require.NoError(t, err)
	assert.Equal(t, 2, renders)
}

func TestGetOrRenderPropagatesRenderError(t *testing.T) {
	c := NewMemory()
	boom := errors.New("boom")

	_, err := GetOrRender(context.Background(), c, "page", time.Minute, func() ([]byte, error) {
		return nil, boom
	})
	assert.ErrorIs(t, err, boom)

	// A failed render must not poison the cache.
	_, ok, getErr := c.Get(context.Background(), "page")
	require.NoError(t, getErr)
	assert.False(t, ok)
}
