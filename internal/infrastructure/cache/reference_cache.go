package cache

import (
	"sync"
	"time"

	"github.com/erp/pos/internal/domain/pos"
)

type referenceEntry struct {
	items     []pos.NamedRef
	expiresAt time.Time
}

// ReferenceCache holds master-data lists (payment methods, branches,
// points of sale) for a TTL
type ReferenceCache struct {
	mu      sync.RWMutex
	entries map[string]referenceEntry
	now     func() time.Time
}

// NewReferenceCache creates an empty cache
func NewReferenceCache() *ReferenceCache {
	return &ReferenceCache{
		entries: make(map[string]referenceEntry),
		now:     time.Now,
	}
}

// Get returns a copy of the cached list when present and fresh
func (c *ReferenceCache) Get(key string) ([]pos.NamedRef, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok || !c.now().Before(e.expiresAt) {
		return nil, false
	}
	out := make([]pos.NamedRef, len(e.items))
	copy(out, e.items)
	return out, true
}

// Set stores a copy of value for ttl; a non-positive ttl stores nothing
func (c *ReferenceCache) Set(key string, value []pos.NamedRef, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	items := make([]pos.NamedRef, len(value))
	copy(items, value)

	c.mu.Lock()
	c.entries[key] = referenceEntry{items: items, expiresAt: c.now().Add(ttl)}
	c.mu.Unlock()
}

// Invalidate drops every entry
func (c *ReferenceCache) Invalidate() {
	c.mu.Lock()
	c.entries = make(map[string]referenceEntry)
	c.mu.Unlock()
}
