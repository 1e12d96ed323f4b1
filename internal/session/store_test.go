package session

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exerciseStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	_, err := s.Load(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Save(ctx, "abc", []byte(`{"state":"intake"}`)))
	got, err := s.Load(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, `{"state":"intake"}`, string(got))

	err = s.Save(ctx, "abc", bytes.Repeat([]byte("x"), 2048))
	assert.True(t, errors.Is(err, ErrTooLarge))
	got, err = s.Load(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, `{"state":"intake"}`, string(got), "oversized save leaves the old blob")

	require.NoError(t, s.Delete(ctx, "abc"))
	_, err = s.Load(ctx, "abc")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemoryStore(time.Hour, 1024))
}

func TestMemoryStore_Expiry(t *testing.T) {
	now := time.Date(2026, 10, 19, 10, 0, 0, 0, time.UTC)
	s := NewMemoryStore(time.Minute, 0)
	s.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, "a", []byte("1")))
	require.NoError(t, s.Save(ctx, "b", []byte("2")))
	now = now.Add(2 * time.Minute)
	require.NoError(t, s.Save(ctx, "c", []byte("3")))

	_, err := s.Load(ctx, "a")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, 1, s.Sweep())
	_, err = s.Load(ctx, "c")
	assert.NoError(t, err)
}

func TestMemoryStore_CopiesBlobs(t *testing.T) {
	s := NewMemoryStore(time.Hour, 0)
	blob := []byte("abc")
	require.NoError(t, s.Save(context.Background(), "id", blob))
	blob[0] = 'z'
	got, err := s.Load(context.Background(), "id")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(got))
}

func TestRedisStore(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	s := NewRedisStore(client, 30*time.Minute, 1024)
	exerciseStore(t, s)

	require.NoError(t, s.Save(context.Background(), "ttl", []byte("x")))
	assert.Equal(t, 30*time.Minute, mr.TTL("session:ttl"))

	mr.FastForward(31 * time.Minute)
	_, err := s.Load(context.Background(), "ttl")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedisStore_Unavailable(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })
	mr.Close()

	_, err := NewRedisStore(client, 0, 0).Load(context.Background(), "x")
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrNotFound))
}
