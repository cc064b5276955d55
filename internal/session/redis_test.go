package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avykov/multiauth/internal/config"
	"github.com/avykov/multiauth/internal/logger"
)

func newTestRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	store, err := NewRedisStore(config.Session{
		RedisURL: "redis://" + mr.Addr(),
		TTL:      time.Minute,
	}, logger.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	return store, mr
}

func TestNewRedisStore_InvalidURL(t *testing.T) {
	_, err := NewRedisStore(config.Session{RedisURL: "not-a-url"}, logger.Nop())
	require.Error(t, err)
}

func TestRedisSession_RoundTrip(t *testing.T) {
	store, _ := newTestRedisStore(t)
	sess := store.Session("sid-1", nil)

	ctx := context.Background()

	_, ok, err := sess.Get(ctx, "auth_user")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, sess.Set(ctx, "auth_user", []byte("alice")))

	value, ok, err := sess.Get(ctx, "auth_user")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte("alice"), value)

	require.NoError(t, sess.Delete(ctx, "auth_user"))
	_, ok, err = sess.Get(ctx, "auth_user")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisSession_SetAppliesTTL(t *testing.T) {
	store, mr := newTestRedisStore(t)
	sess := store.Session("sid-1", nil)

	require.NoError(t, sess.Set(context.Background(), "auth_user", []byte("alice")))

	ttl := mr.TTL(redisKeyPrefix + "sid-1")
	assert.Equal(t, time.Minute, ttl)
}

func TestRedisSession_RegenerateMovesHash(t *testing.T) {
	store, mr := newTestRedisStore(t)

	var ids []string
	sess := store.Session("sid-1", func(newID string) { ids = append(ids, newID) })

	ctx := context.Background()
	require.NoError(t, sess.Set(ctx, "auth_user", []byte("alice")))
	require.NoError(t, sess.RegenerateID(ctx))

	require.Len(t, ids, 1)
	assert.NotEqual(t, "sid-1", ids[0])

	assert.False(t, mr.Exists(redisKeyPrefix+"sid-1"), "old key must be gone")

	value, ok, err := sess.Get(ctx, "auth_user")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte("alice"), value)
}

func TestRedisSession_RegenerateOnEmptySession(t *testing.T) {
	store, _ := newTestRedisStore(t)
	sess := store.Session("sid-empty", nil)

	// no hash exists yet; the rename miss is tolerated
	require.NoError(t, sess.RegenerateID(context.Background()))
}

func TestRedisSession_Destroy(t *testing.T) {
	store, mr := newTestRedisStore(t)

	var last = "sentinel"
	sess := store.Session("sid-1", func(newID string) { last = newID })

	ctx := context.Background()
	require.NoError(t, sess.Set(ctx, "auth_user", []byte("alice")))
	require.NoError(t, sess.Destroy(ctx))

	assert.Empty(t, last)
	assert.False(t, mr.Exists(redisKeyPrefix+"sid-1"))
}
