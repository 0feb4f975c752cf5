package verification

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

// redisStore connects to TEST_REDIS_ADDR and skips the test when it is unset.
func redisStore(t *testing.T) (*RedisStore, redis.UniversalClient) {
	t.Helper()
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR is not set")
	}
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { _ = rdb.Close() })
	require.NoError(t, rdb.Ping(context.Background()).Err())
	return NewRedisStore(rdb), rdb
}

func TestRedisStore_CheckAndMisses(t *testing.T) {
	ctx := context.Background()
	store, rdb := redisStore(t)
	svc := NewService(store)
	subject := uuid.NewString() + "@example.com"

	require.NoError(t, store.Save(ctx, PurposeSignup, subject, "123456", TTL))
	for range MaxAttempts - 1 {
		require.ErrorIs(t, svc.Check(ctx, PurposeSignup, subject, "654321"), ErrMismatch)
	}

	ttl, err := rdb.TTL(ctx, missKey(PurposeSignup, subject)).Result()
	require.NoError(t, err)
	require.Greater(t, ttl, time.Duration(0))

	// A fresh code starts a fresh count.
	require.NoError(t, store.Save(ctx, PurposeSignup, subject, "111111", TTL))
	require.ErrorIs(t, svc.Check(ctx, PurposeSignup, subject, "654321"), ErrMismatch)
	require.NoError(t, svc.Check(ctx, PurposeSignup, subject, "111111"))
	require.ErrorIs(t, svc.Check(ctx, PurposeSignup, subject, "111111"), ErrNoCode)

	require.NoError(t, store.Save(ctx, PurposeSignup, subject, "222222", TTL))
	for range MaxAttempts - 1 {
		require.ErrorIs(t, svc.Check(ctx, PurposeSignup, subject, "654321"), ErrMismatch)
	}
	require.ErrorIs(t, svc.Check(ctx, PurposeSignup, subject, "654321"), ErrTooManyAttempts)
	require.ErrorIs(t, svc.Check(ctx, PurposeSignup, subject, "222222"), ErrNoCode)

	n, err := rdb.Exists(ctx, key(PurposeSignup, subject), missKey(PurposeSignup, subject)).Result()
	require.NoError(t, err)
	require.Zero(t, n)
}
