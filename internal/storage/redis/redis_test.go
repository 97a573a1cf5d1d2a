package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vxsahu/urban-threadz/pkg/logger"
)

func setupTestRedis(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return New(client, 24*time.Hour, logger.Discard()), mr
}

func TestStore_SetGet(t *testing.T) {
	s, mr := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "session:a:cart", `[{"id":"p1"}]`))

	got, err := mr.Get("session:a:cart")
	require.NoError(t, err)
	assert.Equal(t, `[{"id":"p1"}]`, got)
	assert.Equal(t, 24*time.Hour, mr.TTL("session:a:cart"))

	v, ok, err := s.Get(ctx, "session:a:cart")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `[{"id":"p1"}]`, v)
}

func TestStore_GetMissing(t *testing.T) {
	s, _ := setupTestRedis(t)

	v, ok, err := s.Get(context.Background(), "nope")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, v)
}

func TestStore_Remove(t *testing.T) {
	s, mr := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, mr.Set("k", "v"))
	require.NoError(t, s.Remove(ctx, "k"))
	assert.False(t, mr.Exists("k"))

	assert.NoError(t, s.Remove(ctx, "k"))
}

func TestStore_TTLExpiry(t *testing.T) {
	s, mr := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "k", "v"))
	mr.FastForward(25 * time.Hour)

	_, ok, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStore_NoTTL(t *testing.T) {
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	s := New(client, 0, logger.Discard())

	require.NoError(t, s.Set(context.Background(), "k", "v"))
	assert.Zero(t, mr.TTL("k"))
}

func TestStore_ConnectionError(t *testing.T) {
	s, mr := setupTestRedis(t)
	mr.Close()

	ctx := context.Background()
	_, _, err := s.Get(ctx, "k")
	assert.Error(t, err)
	assert.Error(t, s.Set(ctx, "k", "v"))
	assert.Error(t, s.Remove(ctx, "k"))
	assert.Error(t, s.Ping(ctx))
}

func TestStore_WatchReceivesChanges(t *testing.T) {
	s, _ := setupTestRedis(t)
	ctx := context.Background()

	keys := make(chan string, 4)
	stop := s.Watch(func(key string) { keys <- key })
	defer stop()

	require.NoError(t, s.Set(ctx, "session:a:cart", "[]"))
	require.NoError(t, s.Remove(ctx, "session:a:cart"))

	for range 2 {
		select {
		case k := <-keys:
			assert.Equal(t, "session:a:cart", k)
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for change notification")
		}
	}
}

func TestStore_WatchAcrossClients(t *testing.T) {
	mr := miniredis.RunT(t)
	c1 := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	c2 := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { c1.Close(); c2.Close() })

	writer := New(c1, time.Hour, logger.Discard())
	reader := New(c2, time.Hour, logger.Discard())

	keys := make(chan string, 1)
	stop := reader.Watch(func(key string) { keys <- key })
	defer stop()

	require.NoError(t, writer.Set(context.Background(), "session:b:wishlist", `["p1"]`))

	select {
	case k := <-keys:
		assert.Equal(t, "session:b:wishlist", k)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for change notification")
	}
}

func TestStore_WithChannel(t *testing.T) {
	s, mr := setupTestRedis(t)
	s = New(s.client, time.Hour, logger.Discard(), WithChannel("custom"))

	keys := make(chan string, 1)
	stop := s.Watch(func(key string) { keys <- key })
	defer stop()

	assert.Equal(t, 1, mr.Publish("custom", "x"))
	select {
	case k := <-keys:
		assert.Equal(t, "x", k)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out")
	}
}

func TestNewClient(t *testing.T) {
	mr := miniredis.RunT(t)

	addr := mr.Addr()
	client, err := NewClient(context.Background(), Config{Addr: addr})
	require.NoError(t, err)
	defer client.Close()

	mr.Close()
	_, err = NewClient(context.Background(), Config{Addr: addr})
	assert.Error(t, err)
}
