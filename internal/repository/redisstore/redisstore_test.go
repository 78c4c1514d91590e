package redisstore

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestDeliveryGuard_ClaimOnce(t *testing.T) {
	mr, client := setupRedis(t)
	guard := NewDeliveryGuard(client, time.Minute)
	ctx := context.Background()

	first, err := guard.Claim(ctx, "task-1")
	require.NoError(t, err)
	assert.True(t, first)

	again, err := guard.Claim(ctx, "task-1")
	require.NoError(t, err)
	assert.False(t, again, "redelivery must be detected")

	other, err := guard.Claim(ctx, "retry-task-1-1")
	require.NoError(t, err)
	assert.True(t, other, "retry copies carry their own id")

	assert.Equal(t, time.Minute, mr.TTL("publish:delivered:task-1"))

	mr.FastForward(time.Minute + time.Second)
	afterTTL, err := guard.Claim(ctx, "task-1")
	require.NoError(t, err)
	assert.True(t, afterTTL)
}

func TestDeliveryGuard_Release(t *testing.T) {
	_, client := setupRedis(t)
	guard := NewDeliveryGuard(client, 0)
	ctx := context.Background()

	ok, err := guard.Claim(ctx, "m")
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, guard.Release(ctx, "m"))
	ok, err = guard.Claim(ctx, "m")
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = guard.Claim(ctx, "")
	require.Error(t, err)
}

func TestRateLimiter_FixedWindow(t *testing.T) {
	_, client := setupRedis(t)
	limiter := NewRateLimiter(client, map[string]Limit{
		"tiktok": {Max: 2, Window: time.Hour},
	})
	now := time.Date(2025, 3, 1, 10, 15, 0, 0, time.UTC)
	limiter.now = func() time.Time { return now }
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		ok, err := limiter.Allow(ctx, "TIKTOK")
		require.NoError(t, err)
		assert.True(t, ok)
	}
	ok, err := limiter.Allow(ctx, "tiktok")
	require.NoError(t, err)
	assert.False(t, ok, "third request in the window is throttled")

	now = now.Add(time.Hour)
	ok, err = limiter.Allow(ctx, "tiktok")
	require.NoError(t, err)
	assert.True(t, ok, "next window starts fresh")

	ok, err = limiter.Allow(ctx, "tiktok")
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = limiter.Allow(ctx, "tiktok")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRateLimiter_UnknownPlatformUnlimited(t *testing.T) {
	_, client := setupRedis(t)
	limiter := NewRateLimiter(client, nil)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		ok, err := limiter.Allow(ctx, "telegram")
		require.NoError(t, err)
		assert.True(t, ok)
	}
	assert.Equal(t, int64(100), DefaultLimits["tiktok"].Max)
	assert.Equal(t, 24*time.Hour, DefaultLimits["youtube"].Window)
}
