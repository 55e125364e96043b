package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func newTestBucket(t *testing.T, rate, capacity float64) (*TokenBucket, *time.Time) {
	t.Helper()
	tb := NewTokenBucket(rate, capacity)
	t.Cleanup(tb.Close)

	clock := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	tb.now = func() time.Time { return clock }
	return tb, &clock
}

func TestTokenBucket_AllowsUpToCapacity(t *testing.T) {
	tb, _ := newTestBucket(t, 1, 3)

	for i := range 3 {
		assert.True(t, tb.Allow("k"), "request %d", i+1)
	}
	assert.False(t, tb.Allow("k"))
}

func TestTokenBucket_KeysAreIndependent(t *testing.T) {
	tb, _ := newTestBucket(t, 1, 1)

	assert.True(t, tb.Allow("ip-a"))
	assert.False(t, tb.Allow("ip-a"))
	assert.True(t, tb.Allow("ip-b"))
}

func TestTokenBucket_Refills(t *testing.T) {
	tb, clock := newTestBucket(t, 2, 2)

	assert.True(t, tb.Allow("k"))
	assert.True(t, tb.Allow("k"))
	assert.False(t, tb.Allow("k"))

	*clock = clock.Add(500 * time.Millisecond)
	assert.True(t, tb.Allow("k"))
	assert.False(t, tb.Allow("k"))

	*clock = clock.Add(time.Hour)
	assert.True(t, tb.Allow("k"))
	assert.True(t, tb.Allow("k"))
	assert.False(t, tb.Allow("k"), "refill is capped at capacity")
}

func TestTokenBucket_ZeroRateNeverRefills(t *testing.T) {
	tb, clock := newTestBucket(t, 0, 1)

	assert.True(t, tb.Allow("k"))
	*clock = clock.Add(time.Hour)
	assert.False(t, tb.Allow("k"))
}

func TestTokenBucket_PrunesIdleBuckets(t *testing.T) {
	tb, clock := newTestBucket(t, 1, 1)

	tb.Allow("old")
	*clock = clock.Add(bucketIdleTTL + time.Second)
	tb.Allow("fresh")
	tb.prune()

	tb.mu.Lock()
	defer tb.mu.Unlock()
	assert.NotContains(t, tb.buckets, "old")
	assert.Contains(t, tb.buckets, "fresh")
}

func TestTokenBucket_CloseTwice(t *testing.T) {
	tb := NewTokenBucket(1, 1)
	tb.Close()
	tb.Close()
}
