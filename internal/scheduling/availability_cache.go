package scheduling

import (
	"sync"
	"time"
)

// AvailabilityCache is an advisory read cache of slot occupancy. It is never
// consulted by Book.
type AvailabilityCache interface {
	Lookup(date, clock string) (available, ok bool)
	Store(date, clock string, available bool)
	Invalidate(date, clock string)
	// Evict drops expired entries and reports how many were removed.
	Evict() int
}

type slotKey struct {
	date  string
	clock string
}

type cacheEntry struct {
	checkedAt time.Time
	available bool
}

// MemoryAvailabilityCache holds entries for ttl behind a single mutex.
type MemoryAvailabilityCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[slotKey]cacheEntry
	now     func() time.Time
}

// DefaultAvailabilityTTL is used when a non-positive ttl is supplied.
const DefaultAvailabilityTTL = time.Minute

func NewMemoryAvailabilityCache(ttl time.Duration) *MemoryAvailabilityCache {
	if ttl <= 0 {
		ttl = DefaultAvailabilityTTL
	}
	return &MemoryAvailabilityCache{
		ttl:     ttl,
		entries: make(map[slotKey]cacheEntry),
		now:     time.Now,
	}
}

func (c *MemoryAvailabilityCache) Lookup(date, clock string) (bool, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	key := slotKey{date, clock}
	entry, ok := c.entries[key]
	if !ok {
		return false, false
	}
	if c.now().Sub(entry.checkedAt) >= c.ttl {
		delete(c.entries, key)
		return false, false
	}
	return entry.available, true
}

func (c *MemoryAvailabilityCache) Store(date, clock string, available bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[slotKey{date, clock}] = cacheEntry{checkedAt: c.now(), available: available}
}

func (c *MemoryAvailabilityCache) Invalidate(date, clock string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, slotKey{date, clock})
}

func (c *MemoryAvailabilityCache) Evict() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	removed := 0
	for key, entry := range c.entries {
		if now.Sub(entry.checkedAt) >= c.ttl {
			delete(c.entries, key)
			removed++
		}
	}
	return removed
}

// Len reports the number of entries, expired or not.
func (c *MemoryAvailabilityCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

var _ AvailabilityCache = (*MemoryAvailabilityCache)(nil)
