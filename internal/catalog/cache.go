package catalog

import (
	"sync"
	"time"

	"github.com/mbertelsen/citypulse/internal/event"
)

// Cache is an explicit result cache with an injected clock. Scrape cycles
// and curation actions invalidate it; nothing expires implicitly behind the
// caller's back beyond the TTL.
type Cache struct {
	mu      sync.Mutex
	entries map[string]cacheEntry
	ttl     time.Duration
	clock   func() time.Time
}

type cacheEntry struct {
	events  []event.Event
	expires time.Time
}

// NewCache creates a cache. A nil clock defaults to time.Now.
func NewCache(ttl time.Duration, clock func() time.Time) *Cache {
	if clock == nil {
		clock = time.Now
	}
	return &Cache{
		entries: make(map[string]cacheEntry),
		ttl:     ttl,
		clock:   clock,
	}
}

// Get returns a cached result if present and fresh.
func (c *Cache) Get(key string) ([]event.Event, bool) {
	if c == nil {
		return nil, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok || c.clock().After(entry.expires) {
		delete(c.entries, key)
		return nil, false
	}
	out := make([]event.Event, len(entry.events))
	copy(out, entry.events)
	return out, true
}

// Put stores a result under key.
func (c *Cache) Put(key string, events []event.Event) {
	if c == nil {
		return
	}
	stored := make([]event.Event, len(events))
	copy(stored, events)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = cacheEntry{events: stored, expires: c.clock().Add(c.ttl)}
}

// Invalidate drops every cached result.
func (c *Cache) Invalidate() {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]cacheEntry)
}
