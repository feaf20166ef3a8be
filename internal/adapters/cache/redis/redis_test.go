package redis

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/nulzo/model-radar/internal/core/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestCache connects to RADAR_TEST_REDIS_ADDR and skips when it is unset.
func newTestCache(t *testing.T) *Cache {
	t.Helper()
	addr := os.Getenv("RADAR_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("RADAR_TEST_REDIS_ADDR not set")
	}
	c, err := New(context.Background(), addr, "", 15)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestCache_RoundTrip(t *testing.T) {
	ctx := context.Background()
	c := newTestCache(t)

	type doc struct{ Rank int }
	require.NoError(t, c.Set(ctx, "test:doc", doc{Rank: 3}, time.Minute))

	var got doc
	require.NoError(t, c.Get(ctx, "test:doc", &got))
	assert.Equal(t, 3, got.Rank)

	require.NoError(t, c.Delete(ctx, "test:doc"))
	assert.ErrorIs(t, c.Get(ctx, "test:doc", &got), ports.ErrCacheMiss)
}

func TestNew_Unreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	_, err := New(ctx, "127.0.0.1:1", "", 0)
	assert.Error(t, err)
}
