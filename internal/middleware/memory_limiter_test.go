package middleware

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"messagely/internal/redis"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLimits() redis.RateLimitConfig {
	return redis.RateLimitConfig{
		MessageLimit:  3,
		MessageWindow: time.Hour,
		AuthLimit:     2,
		AuthWindow:    time.Hour,
	}
}

func TestMemoryLimiterMessages(t *testing.T) {
	m := NewMemoryLimiter(testLimits())
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		res, err := m.AllowMessage(ctx, "alice")
		require.NoError(t, err)
		assert.True(t, res.Allowed)
		assert.Equal(t, 2-i, res.Remaining)
		assert.Equal(t, 3, res.Limit)
	}

	res, err := m.AllowMessage(ctx, "alice")
	require.NoError(t, err)
	assert.False(t, res.Allowed)
	assert.Equal(t, 0, res.Remaining)
	assert.Equal(t, 20*time.Minute, res.ResetIn)

	res, err = m.AllowMessage(ctx, "bob")
	require.NoError(t, err)
	assert.True(t, res.Allowed)
}

func TestMemoryLimiterResetAuth(t *testing.T) {
	m := NewMemoryLimiter(testLimits())
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		res, _ := m.AllowAuth(ctx, "10.0.0.1")
		require.True(t, res.Allowed)
	}
	res, _ := m.AllowAuth(ctx, "10.0.0.1")
	assert.False(t, res.Allowed)

	require.NoError(t, m.ResetAuth(ctx, "10.0.0.1"))
	res, _ = m.AllowAuth(ctx, "10.0.0.1")
	assert.True(t, res.Allowed)
}

func TestMemoryLimiterCleanup(t *testing.T) {
	m := NewMemoryLimiter(testLimits())
	m.maxKeys = 1
	ctx := context.Background()

	_, _ = m.AllowMessage(ctx, "alice")
	_, _ = m.AllowMessage(ctx, "bob")
	m.Cleanup()
	assert.Empty(t, m.messages)
}

func TestMemoryLimiterConcurrentCleanup(t *testing.T) {
	m := NewMemoryLimiter(testLimits())
	m.maxKeys = 0
	ctx := context.Background()

	var wg sync.WaitGroup
	for w := 0; w < 4; w++ {
		wg.Add(2)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				_, _ = m.AllowAuth(ctx, fmt.Sprintf("10.0.%d.%d", w, i))
				_, _ = m.AllowMessage(ctx, fmt.Sprintf("user-%d-%d", w, i))
			}
		}(w)
		go func() {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				m.Cleanup()
			}
		}()
	}
	wg.Wait()

	// a bucket created after the last cleanup lives in the current map
	res, err := m.AllowAuth(ctx, "10.9.9.9")
	require.NoError(t, err)
	assert.True(t, res.Allowed)
	m.mu.Lock()
	_, ok := m.auth["10.9.9.9"]
	m.mu.Unlock()
	assert.True(t, ok)
}

func TestStartCleanupRejectsBadSchedule(t *testing.T) {
	m := NewMemoryLimiter(testLimits())

	_, err := m.StartCleanup("not a schedule")
	assert.Error(t, err)

	c, err := m.StartCleanup("@every 1h")
	require.NoError(t, err)
	c.Stop()
}
