// Package app provides application services that orchestrate domain logic.
package app

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/slavayosome/seriously-ai-sub000/ports"
)

// CacheStats is a point-in-time view of one cache.
type CacheStats struct {
	Name   string `json:"name"`
	Size   int    `json:"size"`
	Hits   int64  `json:"hits"`
	Misses int64  `json:"misses"`
}

// TTLCache is a per-key cache with time-based expiry, used for wallet and
// plan-tier lookups. Entries for different users are independent keys;
// no coordination is needed between them. Safe for concurrent use.
type TTLCache[V any] struct {
	name     string
	lru      *expirable.LRU[string, V]
	recorder ports.CacheRecorder
	hits     atomic.Int64
	misses   atomic.Int64
}

// NewTTLCache creates a TTL cache. Entries expire ttl after insertion;
// size bounds worst-case memory.
func NewTTLCache[V any](name string, size int, ttl time.Duration, recorder ports.CacheRecorder) *TTLCache[V] {
	if size <= 0 {
		size = 10000
	}
	if recorder == nil {
		recorder = ports.NopCacheRecorder{}
	}
	return &TTLCache[V]{
		name:     name,
		lru:      expirable.NewLRU[string, V](size, nil, ttl),
		recorder: recorder,
	}
}

// Get returns the cached value for key if present and fresh.
func (c *TTLCache[V]) Get(key string) (V, bool) {
	v, ok := c.lru.Get(key)
	if ok {
		c.hits.Add(1)
		c.recorder.RecordCacheHit(c.name)
	} else {
		c.misses.Add(1)
		c.recorder.RecordCacheMiss(c.name)
	}
	return v, ok
}

// Set stores a value under key, refreshing its TTL.
func (c *TTLCache[V]) Set(key string, value V) {
	c.lru.Add(key, value)
}

// Invalidate drops one key. External mutators call this right after a
// successful write so reads are not stale for the remainder of the TTL.
func (c *TTLCache[V]) Invalidate(key string) {
	c.lru.Remove(key)
}

// Clear drops every entry.
func (c *TTLCache[V]) Clear() {
	c.lru.Purge()
}

// Stats returns current cache statistics.
func (c *TTLCache[V]) Stats() CacheStats {
	return CacheStats{
		Name:   c.name,
		Size:   c.lru.Len(),
		Hits:   c.hits.Load(),
		Misses: c.misses.Load(),
	}
}

// FIFOCache is a size-bounded memoization cache with batch eviction: when
// an insert would exceed capacity, the oldest half of the entries is
// dropped in one pass. That bounds memory without per-access bookkeeping.
// Safe for concurrent use.
type FIFOCache[V any] struct {
	name     string
	capacity int
	recorder ports.CacheRecorder

	mu      sync.Mutex
	entries map[string]V
	order   []string // Insertion order, oldest first

	hits   atomic.Int64
	misses atomic.Int64
}

// NewFIFOCache creates a FIFO cache with the given capacity.
func NewFIFOCache[V any](name string, capacity int, recorder ports.CacheRecorder) *FIFOCache[V] {
	if capacity <= 0 {
		capacity = 500
	}
	if recorder == nil {
		recorder = ports.NopCacheRecorder{}
	}
	return &FIFOCache[V]{
		name:     name,
		capacity: capacity,
		recorder: recorder,
		entries:  make(map[string]V),
	}
}

// Get returns the cached value for key.
func (c *FIFOCache[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	v, ok := c.entries[key]
	c.mu.Unlock()
	if ok {
		c.hits.Add(1)
		c.recorder.RecordCacheHit(c.name)
	} else {
		c.misses.Add(1)
		c.recorder.RecordCacheMiss(c.name)
	}
	return v, ok
}

// Set stores a value, evicting the oldest half when over capacity.
func (c *FIFOCache[V]) Set(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; !exists {
		if len(c.entries) >= c.capacity {
			drop := len(c.order) / 2
			for _, old := range c.order[:drop] {
				delete(c.entries, old)
			}
			c.order = append(c.order[:0], c.order[drop:]...)
		}
		c.order = append(c.order, key)
	}
	c.entries[key] = value
}

// Size returns the current entry count.
func (c *FIFOCache[V]) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Clear drops every entry (test determinism).
func (c *FIFOCache[V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]V)
	c.order = c.order[:0]
}

// Stats returns current cache statistics.
func (c *FIFOCache[V]) Stats() CacheStats {
	return CacheStats{
		Name:   c.name,
		Size:   c.Size(),
		Hits:   c.hits.Load(),
		Misses: c.misses.Load(),
	}
}
