package gate

import (
	"membership-dashboard/app/server/metrics"
	"sync"
	"time"
)

type cacheEntry struct {
	authenticated bool
	storedAt      time.Time
}

// Cache remembers session validation results for a short window.
// It holds at most maxSize entries; when full, expired entries go first,
// then the oldest one.
type Cache struct {
	mu      sync.Mutex
	entries map[string]cacheEntry
	ttl     time.Duration
	maxSize int
	now     func() time.Time
}

func NewCache(ttl time.Duration, maxSize int, now func() time.Time) *Cache {
	if now == nil {
		now = time.Now
	}
	if maxSize <= 0 {
		maxSize = 1
	}
	return &Cache{
		entries: make(map[string]cacheEntry),
		ttl:     ttl,
		maxSize: maxSize,
		now:     now,
	}
}

// Get returns the cached flag when the entry is younger than the window.
func (c *Cache) Get(key string) (authenticated bool, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, found := c.entries[key]
	if !found || !c.fresh(e) {
		return false, false
	}
	return e.authenticated, true
}

func (c *Cache) Put(key string, authenticated bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; !exists && len(c.entries) >= c.maxSize {
		if removed := c.sweepLocked(); removed > 0 {
			metrics.GateCacheEvictionsTotal.WithLabelValues("expired").Add(float64(removed))
		}
		if len(c.entries) >= c.maxSize {
			c.evictOldestLocked()
			metrics.GateCacheEvictionsTotal.WithLabelValues("capacity").Inc()
		}
	}

	c.entries[key] = cacheEntry{
		authenticated: authenticated,
		storedAt:      c.now(),
	}
}

func (c *Cache) Forget(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, key)
}

// Sweep drops every entry at or past the window and reports how many went.
func (c *Cache) Sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := c.sweepLocked()
	if removed > 0 {
		metrics.GateCacheEvictionsTotal.WithLabelValues("expired").Add(float64(removed))
	}
	return removed
}

func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.entries)
}

func (c *Cache) fresh(e cacheEntry) bool {
	return c.now().Sub(e.storedAt) < c.ttl
}

func (c *Cache) sweepLocked() int {
	removed := 0
	for key, e := range c.entries {
		if !c.fresh(e) {
			delete(c.entries, key)
			removed++
		}
	}
	return removed
}

func (c *Cache) evictOldestLocked() {
	var (
		oldestKey string
		oldestAt  time.Time
		first     = true
	)
	for key, e := range c.entries {
		if first || e.storedAt.Before(oldestAt) {
			oldestKey, oldestAt, first = key, e.storedAt, false
		}
	}
	if !first {
		delete(c.entries, oldestKey)
	}
}
