package storage

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client, err := NewRedisClient(context.Background(), mr.Addr(), "", 0)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestNewRedisClient_Unreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := NewRedisClient(context.Background(), addr, "", 0)
	assert.Error(t, err)
}

func TestRedisSessionStore(t *testing.T) {
	mr, client := newTestRedis(t)
	store := NewRedisSessionStore(client, "session:")
	ctx := context.Background()

	_, ok, err := store.Get(ctx, KeyAccessToken)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Set(ctx, KeyAccessToken, "tok-123", time.Minute))
	assert.True(t, mr.Exists("session:"+KeyAccessToken))

	val, ok, err := store.Get(ctx, KeyAccessToken)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "tok-123", val)

	mr.FastForward(2 * time.Minute)
	_, ok, err = store.Get(ctx, KeyAccessToken)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Set(ctx, "user_data", `{"id":1}`, 0))
	require.NoError(t, store.Delete(ctx, "user_data"))
	_, ok, err = store.Get(ctx, "user_data")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisWishlistStore(t *testing.T) {
	_, client := newTestRedis(t)
	store := NewRedisWishlistStore(client)
	ctx := context.Background()

	require.NoError(t, store.Add(ctx, "u1", "v2"))
	require.NoError(t, store.Add(ctx, "u1", "v1"))
	require.NoError(t, store.Add(ctx, "u1", "v1"))
	require.NoError(t, store.Add(ctx, "u2", "v3"))

	ids, err := store.List(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"v1", "v2"}, ids)

	on, err := store.Contains(ctx, "u1", "v3")
	require.NoError(t, err)
	assert.False(t, on)

	require.NoError(t, store.Remove(ctx, "u1", "v2"))
	ids, err = store.List(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"v1"}, ids)

	ids, err = store.List(ctx, "nobody")
	require.NoError(t, err)
	assert.Empty(t, ids)
}
