package cache

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
)

const DefaultSweepInterval = 5 * time.Minute

type entry struct {
	value     any
	expiresAt time.Time
}

// Cache is an in-memory key/value store where every entry carries its own
// expiry. Expired entries are dropped when read and by a periodic sweep.
type Cache struct {
	mu      sync.Mutex
	entries map[string]entry

	clock         func() time.Time
	sweepInterval time.Duration
	logger        zerolog.Logger

	cleanupTicker *time.Ticker
	stopChan      chan struct{}
	doneChan      chan struct{}
	closeOnce     sync.Once
}

// Option mutates cache configuration.
type Option func(*Cache)

// WithSweepInterval sets how often expired entries are swept.
func WithSweepInterval(interval time.Duration) Option {
	return func(c *Cache) {
		if interval > 0 {
			c.sweepInterval = interval
		}
	}
}

// WithClock replaces the time source. Intended for tests.
func WithClock(clock func() time.Time) Option {
	return func(c *Cache) {
		if clock != nil {
			c.clock = clock
		}
	}
}

// WithLogger injects a logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Cache) {
		c.logger = logger
	}
}

// New creates a cache and starts its sweeper. Call Close to stop it.
func New(options ...Option) *Cache {
	c := &Cache{
		entries:       make(map[string]entry),
		clock:         time.Now,
		sweepInterval: DefaultSweepInterval,
		logger:        zerolog.Nop(),
		stopChan:      make(chan struct{}),
		doneChan:      make(chan struct{}),
	}
	for _, option := range options {
		option(c)
	}

	c.cleanupTicker = time.NewTicker(c.sweepInterval)
	go c.cleanup()

	return c
}

// Get returns the value stored under key. An expired entry is removed and
// reported as absent.
func (c *Cache) Get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	item, exists := c.entries[key]
	if !exists {
		return nil, false
	}
	if !c.clock().Before(item.expiresAt) {
		delete(c.entries, key)
		return nil, false
	}

	return item.value, true
}

// Set stores value under key for ttl, replacing any previous entry.
func (c *Cache) Set(key string, value any, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = entry{
		value:     value,
		expiresAt: c.clock().Add(ttl),
	}
}

// Delete removes key. Missing keys are ignored.
func (c *Cache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, key)
}

// Clear removes every entry.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]entry)
}

// Sweep removes every entry whose expiry is at or before now and returns how
// many were removed.
func (c *Cache) Sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.clock()
	removed := 0
	for key, item := range c.entries {
		if !item.expiresAt.After(now) {
			delete(c.entries, key)
			removed++
		}
	}

	return removed
}

// Size counts stored entries, including expired ones not yet swept.
func (c *Cache) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.entries)
}

// Stats reports cache state for the stats endpoint.
func (c *Cache) Stats() map[string]any {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.clock()
	expired := 0
	for _, item := range c.entries {
		if !item.expiresAt.After(now) {
			expired++
		}
	}

	return map[string]any{
		"entries":        len(c.entries),
		"expired":        expired,
		"sweep_interval": c.sweepInterval.String(),
	}
}

// Close stops the sweeper and waits for it to exit. Safe to call twice.
func (c *Cache) Close() {
	c.closeOnce.Do(func() {
		c.cleanupTicker.Stop()
		close(c.stopChan)
		<-c.doneChan
	})
}

func (c *Cache) cleanup() {
	defer close(c.doneChan)

	for {
		select {
		case <-c.cleanupTicker.C:
			if removed := c.Sweep(); removed > 0 {
				c.logger.Debug().Int("removed", removed).Msg("swept expired cache entries")
			}
		case <-c.stopChan:
			return
		}
	}
}

// GetAs reads key and asserts the stored value to T. A value of another type
// is reported as absent.
func GetAs[T any](c *Cache, key string) (T, bool) {
	var zero T

	value, ok := c.Get(key)
	if !ok {
		return zero, false
	}
	typed, ok := value.(T)
	if !ok {
		return zero, false
	}

	return typed, true
}
