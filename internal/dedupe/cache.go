package dedupe

import (
	"sync"
	"time"
)

type stamped struct {
	key string
	ts  time.Time
}

// Cache is a fixed-capacity set of recently seen keys with a TTL. The
// collector keys it by URL to avoid revisiting movie pages; the worker keys
// it by document ID to suppress duplicate indexing.
type Cache struct {
	mu       sync.Mutex
	items    map[string]time.Time
	order    []stamped
	capacity int
	ttl      time.Duration
}

// NewCache creates a cache with the provided capacity and ttl.
func NewCache(capacity int, ttl time.Duration) *Cache {
	if capacity <= 0 {
		capacity = 1
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Cache{
		items:    make(map[string]time.Time, capacity),
		order:    make([]stamped, 0, capacity),
		capacity: capacity,
		ttl:      ttl,
	}
}

// IsSeen reports whether the key was recorded inside the ttl window. It does
// not record the key; use MarkSeen for that.
func (c *Cache) IsSeen(key string) bool {
	now := time.Now()

	c.mu.Lock()
	defer c.mu.Unlock()

	ts, ok := c.items[key]
	return ok && now.Sub(ts) <= c.ttl
}

// MarkSeen records that a key has been processed.
func (c *Cache) MarkSeen(key string) {
	now := time.Now()

	c.mu.Lock()
	defer c.mu.Unlock()

	c.items[key] = now
	c.order = append(c.order, stamped{key: key, ts: now})
	c.evict(now)
}

// Len returns the number of live entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

func (c *Cache) evict(now time.Time) {
	cutoff := now.Add(-c.ttl)

	for len(c.order) > 0 && (len(c.items) > c.capacity || c.order[0].ts.Before(cutoff)) {
		oldest := c.order[0]
		c.order = c.order[1:]

		// A newer MarkSeen for the same key supersedes this record.
		if ts, ok := c.items[oldest.key]; ok && ts == oldest.ts {
			delete(c.items, oldest.key)
		}
	}
}
