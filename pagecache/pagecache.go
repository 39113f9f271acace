// Package pagecache provides a bounded cache for rendered page buffers,
// keyed by (page index, zoom percent).
//
// The cache is bounded by entry count, not byte size: page buffers at a
// given render budget are of comparable size, so counting entries keeps
// memory predictable without weighing every buffer.
//
// Eviction picks the entry whose page is farthest from the anchor page
// (the page the viewer is currently on, see SetAnchor), with ties broken
// by least-recent access. Pages far from the reading position are the
// least likely to be needed again.
package pagecache

import (
	"sync"
	"sync/atomic"
)

// Key identifies a cached render: page index plus the exact zoom percent
// it was rendered at. Two keys are equal iff both fields are equal.
type Key struct {
	Page int
	Zoom int
}

// DefaultCapacity is the default maximum entry count.
const DefaultCapacity = 16

// Cache is a bounded, thread-safe page cache.
//
// The lock guards only the map and bookkeeping; it is never held across
// decode or render work. Cache is safe for concurrent use and must not
// be copied after creation.
type Cache[V any] struct {
	mu       sync.Mutex
	entries  map[Key]*entry[V]
	capacity int
	anchor   int   // current page, used for distance eviction
	tick     int64 // monotonic access counter

	// Statistics (atomic for lock-free reads)
	hits      atomic.Uint64
	misses    atomic.Uint64
	evictions atomic.Uint64
}

// entry holds a cached value with its access time.
type entry[V any] struct {
	value V
	atime int64
}

// New creates a cache bounded to capacity entries.
// If capacity <= 0, DefaultCapacity is used.
func New[V any](capacity int) *Cache[V] {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Cache[V]{
		entries:  make(map[Key]*entry[V]),
		capacity: capacity,
	}
}

// Get retrieves a cached value by key.
// Returns (value, true) if found, (zero, false) otherwise.
// Get has no side effects beyond access-time bookkeeping.
func (c *Cache[V]) Get(key Key) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		c.misses.Add(1)
		var zero V
		return zero, false
	}

	c.tick++
	e.atime = c.tick
	c.hits.Add(1)
	return e.value, true
}

// Set stores a value in the cache. Inserting an existing key overwrites
// it, so there is at most one entry per key. If the cache exceeds its
// capacity after insertion, the entry farthest from the anchor page is
// evicted.
//
// The value is stored as-is (not copied). Callers must not modify it
// after caching.
func (c *Cache[V]) Set(key Key, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.tick++
	c.entries[key] = &entry[V]{value: value, atime: c.tick}

	for len(c.entries) > c.capacity {
		c.evictFarthest()
	}
}

// Delete removes an entry from the cache.
// Returns true if the entry was found and removed.
func (c *Cache[V]) Delete(key Key) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.entries[key]; ok {
		delete(c.entries, key)
		return true
	}
	return false
}

// DropPage removes every entry for the given page index, regardless of
// zoom. Returns the number of entries removed.
func (c *Cache[V]) DropPage(page int) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := 0
	for key := range c.entries {
		if key.Page == page {
			delete(c.entries, key)
			n++
		}
	}
	return n
}

// Clear removes all entries from the cache.
func (c *Cache[V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[Key]*entry[V])
	c.tick = 0
}

// SetAnchor records the page the viewer is currently on. Eviction
// removes entries farthest from the anchor first.
func (c *Cache[V]) SetAnchor(page int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.anchor = page
}

// Len returns the number of entries in the cache.
func (c *Cache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.entries)
}

// Capacity returns the entry bound of the cache.
func (c *Cache[V]) Capacity() int {
	return c.capacity
}

// evictFarthest removes the entry whose page is farthest from the
// anchor, breaking ties by least-recent access.
// Caller must hold c.mu.
func (c *Cache[V]) evictFarthest() {
	var (
		victim   Key
		found    bool
		bestDist int
		bestTime int64
	)

	for key, e := range c.entries {
		dist := key.Page - c.anchor
		if dist < 0 {
			dist = -dist
		}
		if !found || dist > bestDist || (dist == bestDist && e.atime < bestTime) {
			victim = key
			bestDist = dist
			bestTime = e.atime
			found = true
		}
	}

	if found {
		delete(c.entries, victim)
		c.evictions.Add(1)
	}
}

// Stats contains cache statistics.
type Stats struct {
	// Len is the current number of entries.
	Len int
	// Capacity is the cache entry bound.
	Capacity int
	// Hits is the number of cache hits.
	Hits uint64
	// Misses is the number of cache misses.
	Misses uint64
	// HitRate is the cache hit rate 0.0 to 1.0.
	HitRate float64
	// Evictions is the number of evicted entries.
	Evictions uint64
}

// Stats returns current cache statistics.
// The counters are read atomically without taking the cache lock.
func (c *Cache[V]) Stats() Stats {
	hits := c.hits.Load()
	misses := c.misses.Load()
	evictions := c.evictions.Load()

	var hitRate float64
	total := hits + misses
	if total > 0 {
		hitRate = float64(hits) / float64(total)
	}

	return Stats{
		Len:       c.Len(),
		Capacity:  c.capacity,
		Hits:      hits,
		Misses:    misses,
		HitRate:   hitRate,
		Evictions: evictions,
	}
}

// ResetStats resets all statistics counters to zero.
func (c *Cache[V]) ResetStats() {
	c.hits.Store(0)
	c.misses.Store(0)
	c.evictions.Store(0)
}
