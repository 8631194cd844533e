package database

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// setupTestRedis starts a miniredis instance and a client pointed at it.
func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
	t.Cleanup(func() { _ = client.Close() })

	return mr, client
}

func TestRedisKVStore_RoundTrip(t *testing.T) {
	mr, client := setupTestRedis(t)
	store := NewRedisKVStore(client, time.Hour)
	ctx := context.Background()

	_, ok, err := store.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Set(ctx, "k", "v"))
	val, ok, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v", val)
	assert.Equal(t, time.Hour, mr.TTL("k"))

	require.NoError(t, store.Remove(ctx, "k"))
	assert.False(t, mr.Exists("k"))
}

func TestRedisKVStore_ExpiresAfterTTL(t *testing.T) {
	mr, client := setupTestRedis(t)
	store := NewRedisKVStore(client, time.Minute)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "k", "v"))
	mr.FastForward(2 * time.Minute)

	_, ok, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisKVStore_GetFailsWhenServerDown(t *testing.T) {
	mr, client := setupTestRedis(t)
	store := NewRedisKVStore(client, 0)
	mr.Close()

	_, _, err := store.Get(context.Background(), "k")
	assert.Error(t, err)
}

func TestMemoryKVStore_RoundTrip(t *testing.T) {
	store := NewMemoryKVStore()
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "k", "v"))
	val, ok, _ := store.Get(ctx, "k")
	assert.True(t, ok)
	assert.Equal(t, "v", val)

	require.NoError(t, store.Remove(ctx, "k"))
	require.NoError(t, store.Remove(ctx, "k"))
	_, ok, _ = store.Get(ctx, "k")
	assert.False(t, ok)
}

func TestNewRedisClient(t *testing.T) {
	mr, _ := setupTestRedis(t)

	client, err := NewRedisClient(context.Background(), "redis://"+mr.Addr(), zap.NewNop())
	require.NoError(t, err)
	defer client.Close()

	_, err = NewRedisClient(context.Background(), "not-a-url", zap.NewNop())
	assert.Error(t, err)
}

func TestOpenKVStore(t *testing.T) {
	ctx := context.Background()
	mr, _ := setupTestRedis(t)

	store, closeFn, err := OpenKVStore(ctx, "redis", "redis://"+mr.Addr(), time.Hour, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, store.Set(ctx, "k", "v"))
	got, err := mr.Get("k")
	require.NoError(t, err)
	assert.Equal(t, "v", got)
	require.NoError(t, closeFn())

	store, closeFn, err = OpenKVStore(ctx, "memory", "", 0, zap.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &MemoryKVStore{}, store)
	require.NoError(t, closeFn())

	_, _, err = OpenKVStore(ctx, "etcd", "", 0, zap.NewNop())
	assert.Error(t, err)
}
