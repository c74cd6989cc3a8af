package cache

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Set(t time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = t
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}

func newTestCache(t *testing.T, clock *fakeClock) *Cache {
	t.Helper()
	c := New(WithClock(clock.Now), WithSweepInterval(time.Hour))
	t.Cleanup(c.Close)
	return c
}

func TestCache_TTLBoundary(t *testing.T) {
	t.Parallel()

	clock := newFakeClock()
	start := clock.Now()
	ttl := 30 * time.Minute
	expiresAt := start.Add(ttl)

	c := newTestCache(t, clock)
	c.Set("detail_https://example.com/a", "value", ttl)

	clock.Set(expiresAt.Add(-time.Millisecond))
	got, ok := c.Get("detail_https://example.com/a")
	require.True(t, ok)
	assert.Equal(t, "value", got)

	clock.Set(expiresAt.Add(time.Millisecond))
	_, ok = c.Get("detail_https://example.com/a")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Size(), "expired entry is removed on read")
}

func TestCache_ExpiresExactlyAtDeadline(t *testing.T) {
	t.Parallel()

	clock := newFakeClock()
	c := newTestCache(t, clock)
	c.Set("k", 1, time.Second)

	clock.Advance(time.Second)
	_, ok := c.Get("k")
	assert.False(t, ok)
}

func TestCache_OverwriteUsesLatestValueAndTTL(t *testing.T) {
	t.Parallel()

	clock := newFakeClock()
	c := newTestCache(t, clock)

	c.Set("k", "v1", time.Hour)
	c.Set("k", "v2", time.Minute)

	got, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, "v2", got)

	clock.Advance(time.Minute + time.Millisecond)
	_, ok = c.Get("k")
	assert.False(t, ok, "expiry follows the second ttl, not the first")
}

func TestCache_MissHasNoSideEffect(t *testing.T) {
	t.Parallel()

	clock := newFakeClock()
	c := newTestCache(t, clock)
	c.Set("present", 1, time.Hour)

	_, ok := c.Get("absent")
	assert.False(t, ok)
	assert.Equal(t, 1, c.Size())
}

func TestCache_DeleteAndClear(t *testing.T) {
	t.Parallel()

	clock := newFakeClock()
	c := newTestCache(t, clock)
	c.Set("a", 1, time.Hour)
	c.Set("b", 2, time.Hour)

	c.Delete("a")
	c.Delete("missing")
	_, ok := c.Get("a")
	assert.False(t, ok)
	assert.Equal(t, 1, c.Size())

	c.Clear()
	assert.Equal(t, 0, c.Size())
}

func TestCache_SweepRemovesOnlyExpired(t *testing.T) {
	t.Parallel()

	clock := newFakeClock()
	c := newTestCache(t, clock)
	c.Set("short", 1, time.Minute)
	c.Set("exact", 2, 2*time.Minute)
	c.Set("long", 3, time.Hour)

	clock.Advance(2 * time.Minute)
	assert.Equal(t, 3, c.Size(), "size counts unswept expired entries")

	removed := c.Sweep()
	assert.Equal(t, 2, removed)
	assert.Equal(t, 1, c.Size())

	got, ok := c.Get("long")
	require.True(t, ok)
	assert.Equal(t, 3, got)
}

func TestCache_BackgroundSweep(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	c := New(WithSweepInterval(10 * time.Millisecond))
	c.Set("k", "v", time.Millisecond)

	assert.Eventually(t, func() bool {
		return c.Size() == 0
	}, time.Second, 5*time.Millisecond)

	c.Close()
	c.Close()
}

func TestCache_Stats(t *testing.T) {
	t.Parallel()

	clock := newFakeClock()
	c := newTestCache(t, clock)
	c.Set("a", 1, time.Minute)
	c.Set("b", 2, time.Hour)
	clock.Advance(time.Minute)

	stats := c.Stats()
	assert.Equal(t, 2, stats["entries"])
	assert.Equal(t, 1, stats["expired"])
	assert.Equal(t, "1h0m0s", stats["sweep_interval"])
}

func TestGetAs(t *testing.T) {
	t.Parallel()

	clock := newFakeClock()
	c := newTestCache(t, clock)
	c.Set("s", "text", time.Hour)

	s, ok := GetAs[string](c, "s")
	require.True(t, ok)
	assert.Equal(t, "text", s)

	_, ok = GetAs[int](c, "s")
	assert.False(t, ok)

	_, ok = GetAs[string](c, "missing")
	assert.False(t, ok)
}

func TestCache_ConcurrentAccess(t *testing.T) {
	t.Parallel()

	clock := newFakeClock()
	c := newTestCache(t, clock)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				c.Set("shared", n, time.Minute)
				c.Get("shared")
				c.Sweep()
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, c.Size())
}
