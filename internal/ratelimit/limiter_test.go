package ratelimit

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFallbackOnlyLimiter(limit int) *RateLimiter {
	cfg := DefaultConfig()
	cfg.IPLimitPerMin = limit
	return NewRateLimiter(&RedisClient{enabled: false}, cfg, nil)
}

func TestRateLimiter_FallbackAllowsWithinLimit(t *testing.T) {
	rl := newFallbackOnlyLimiter(10)

	result, err := rl.AllowIP(context.Background(), "10.0.0.1")
	require.NoError(t, err)
	assert.True(t, result.Allowed)
	assert.Equal(t, 10, result.Limit)
}

func TestRateLimiter_FallbackExhaustsBurst(t *testing.T) {
	rl := newFallbackOnlyLimiter(2)

	// Burst is limit * multiplier with a floor of 5.
	allowed := 0
	var last *Result
	for i := 0; i < 20; i++ {
		result, err := rl.AllowIP(context.Background(), "10.0.0.2")
		require.NoError(t, err)
		if result.Allowed {
			allowed++
		}
		last = result
	}

	assert.GreaterOrEqual(t, allowed, 5)
	assert.Less(t, allowed, 20)
	require.NotNil(t, last)
	assert.False(t, last.Allowed)
	assert.Greater(t, last.RetryAfter.Seconds(), 0.0)
}

func TestRateLimiter_FallbackIsolatesClients(t *testing.T) {
	rl := newFallbackOnlyLimiter(2)

	for i := 0; i < 20; i++ {
		rl.AllowIP(context.Background(), "10.0.0.3")
	}

	result, err := rl.AllowIP(context.Background(), "10.0.0.4")
	require.NoError(t, err)
	assert.True(t, result.Allowed)
}

func TestRateLimiter_Close(t *testing.T) {
	rl := newFallbackOnlyLimiter(10)

	// Idempotent, and limit checks keep working afterwards.
	rl.Close()
	rl.Close()

	result, err := rl.AllowIP(context.Background(), "10.0.0.6")
	require.NoError(t, err)
	assert.True(t, result.Allowed)

	select {
	case <-rl.done:
	default:
		t.Fatal("janitor stop channel still open after Close")
	}
}

func TestRateLimiter_Stats(t *testing.T) {
	rl := newFallbackOnlyLimiter(10)
	rl.AllowIP(context.Background(), "10.0.0.5")

	stats := rl.GetStats()
	assert.Equal(t, false, stats["redis_enabled"])
	assert.Equal(t, 1, stats["fallback_limiters"])
}
