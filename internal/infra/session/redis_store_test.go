package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisStore(client), mr
}

func TestRedisStore_SaveAndGet(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	err := store.Save(ctx, "tok-1", Data{
		UserID:    "user-1",
		Email:     "ann@example.com",
		ExpiresAt: time.Now().Add(time.Hour),
	})
	require.NoError(t, err)

	got, err := store.Get(ctx, "tok-1")
	require.NoError(t, err)
	assert.Equal(t, "user-1", got.UserID)
	assert.Equal(t, "ann@example.com", got.Email)

	// raw token is never used as a key
	assert.False(t, mr.Exists("session:tok-1"))
	assert.Len(t, mr.Keys(), 1)
	assert.True(t, mr.TTL(mr.Keys()[0]) > 0)
}

func TestRedisStore_GetUnknown(t *testing.T) {
	store, _ := newTestStore(t)

	_, err := store.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedisStore_Expired(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "tok-2", Data{UserID: "u", ExpiresAt: time.Now().Add(time.Minute)}))

	mr.FastForward(2 * time.Minute)

	_, err := store.Get(ctx, "tok-2")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedisStore_SaveRejectsInvalid(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	assert.Error(t, store.Save(ctx, "t", Data{ExpiresAt: time.Now().Add(time.Hour)}))
	assert.Error(t, store.Save(ctx, "t", Data{UserID: "u", ExpiresAt: time.Now().Add(-time.Hour)}))
}

func TestRedisStore_Delete(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "tok-3", Data{UserID: "u", ExpiresAt: time.Now().Add(time.Hour)}))
	require.NoError(t, store.Delete(ctx, "tok-3"))

	_, err := store.Get(ctx, "tok-3")
	assert.ErrorIs(t, err, ErrNotFound)
}
