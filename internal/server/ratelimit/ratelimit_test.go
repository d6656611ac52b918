package ratelimit

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLimiter(ratePerMinute, burst int) (*Limiter, *time.Time) {
	cfg := DefaultConfig(ratePerMinute, burst)
	cfg.CleanupInterval = 0
	l := NewLimiter(cfg)
	clock := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return clock }
	return l, &clock
}

func TestLimiter_BurstThenDeny(t *testing.T) {
	l, _ := newTestLimiter(60, 3)

	for i := 0; i < 3; i++ {
		ok, info := l.Allow("Jack")
		require.True(t, ok, "request %d", i+1)
		assert.Equal(t, 3, info.Limit)
		assert.Equal(t, 2-i, info.Remaining)
	}

	ok, info := l.Allow("Jack")
	assert.False(t, ok)
	assert.Greater(t, info.RetryAfter, time.Duration(0))
	assert.LessOrEqual(t, info.RetryAfter, time.Second)
}

func TestLimiter_Refill(t *testing.T) {
	l, clock := newTestLimiter(60, 1)

	ok, _ := l.Allow("Jill")
	require.True(t, ok)
	ok, _ = l.Allow("Jill")
	require.False(t, ok)

	*clock = clock.Add(time.Second)
	ok, _ = l.Allow("Jill")
	assert.True(t, ok)
}

func TestLimiter_KeysAreIndependent(t *testing.T) {
	l, _ := newTestLimiter(60, 1)

	ok, _ := l.Allow("Jack")
	require.True(t, ok)
	ok, _ = l.Allow("Scout")
	assert.True(t, ok)
	ok, _ = l.Allow("Jack")
	assert.False(t, ok)
}

func TestLimiter_Disabled(t *testing.T) {
	l := NewLimiter(nil)
	for i := 0; i < 100; i++ {
		ok, info := l.Allow("Jack")
		require.True(t, ok)
		assert.Zero(t, info.Limit)
	}
	l.Stop()

	assert.False(t, DefaultConfig(0, 5).Enabled)
}

func TestLimiter_BurstDefaultsToRate(t *testing.T) {
	l, _ := newTestLimiter(5, 0)
	for i := 0; i < 5; i++ {
		ok, _ := l.Allow("Jack")
		require.True(t, ok)
	}
	ok, _ := l.Allow("Jack")
	assert.False(t, ok)
}

func TestLimiter_Cleanup(t *testing.T) {
	l, clock := newTestLimiter(60, 1)
	l.Allow("Jack")
	*clock = clock.Add(30 * time.Minute)
	l.Allow("Jill")

	*clock = clock.Add(45 * time.Minute)
	l.cleanupBuckets()

	l.mu.Lock()
	defer l.mu.Unlock()
	assert.NotContains(t, l.buckets, "Jack")
	assert.Contains(t, l.buckets, "Jill")
}

func TestLimiter_ConcurrentAccess(t *testing.T) {
	cfg := DefaultConfig(6000, 50)
	l := NewLimiter(cfg)
	defer l.Stop()

	var wg sync.WaitGroup
	var mu sync.Mutex
	allowed := 0
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if ok, _ := l.Allow("Jack"); ok {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.GreaterOrEqual(t, allowed, 50)

	l.Stop()
}
