package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-kit/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBackendSelection(t *testing.T) {
	cfg := Config{}
	cfg.RegisterFlagsAndApplyDefaults("", nil)

	c, err := New(cfg, log.NewNopLogger())
	require.NoError(t, err)
	assert.IsType(t, &memoryCache{}, c)

	cfg.Backend = BackendNone
	c, err = New(cfg, log.NewNopLogger())
	require.NoError(t, err)
	_, ok := c.Get(context.Background(), "anything")
	assert.False(t, ok)

	cfg.Backend = "postgres"
	_, err = New(cfg, log.NewNopLogger())
	require.Error(t, err)
}

func TestMemoryCache(t *testing.T) {
	c := newMemoryCache(2, time.Minute)
	ctx := context.Background()

	_, ok := c.Get(ctx, "missing")
	assert.False(t, ok)

	c.Set(ctx, "a", []byte("1"))
	val, ok := c.Get(ctx, "a")
	require.True(t, ok)
	assert.Equal(t, []byte("1"), val)

	// oldest entry is evicted once the bound is hit
	c.Set(ctx, "b", []byte("2"))
	c.Set(ctx, "c", []byte("3"))
	_, ok = c.Get(ctx, "a")
	assert.False(t, ok)
}

func TestMemoryCacheExpiry(t *testing.T) {
	c := newMemoryCache(10, 50*time.Millisecond)
	ctx := context.Background()

	c.Set(ctx, "a", []byte("1"))
	time.Sleep(80 * time.Millisecond)
	_, ok := c.Get(ctx, "a")
	assert.False(t, ok)
}

func TestRedisCache(t *testing.T) {
	srv := miniredis.RunT(t)

	cfg := RedisConfig{}
	cfg.RegisterFlagsAndApplyDefaults("", nil)
	cfg.Endpoint = srv.Addr()
	cfg.KeyPrefix = "fathom:"

	c := newRedisCache(cfg, time.Minute, log.NewNopLogger())
	defer c.Stop()
	ctx := context.Background()

	_, ok := c.Get(ctx, "missing")
	assert.False(t, ok)

	c.Set(ctx, "a", []byte("payload"))
	val, ok := c.Get(ctx, "a")
	require.True(t, ok)
	assert.Equal(t, []byte("payload"), val)

	assert.True(t, srv.Exists("fathom:a"))

	srv.FastForward(2 * time.Minute)
	_, ok = c.Get(ctx, "a")
	assert.False(t, ok)
}
