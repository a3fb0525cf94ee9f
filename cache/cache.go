// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package cache

import (
	"sync"
	"time"
)

// DefaultMaxEntries bounds the cache when no explicit bound is given.
const DefaultMaxEntries = 1024

type entry struct {
	value     any
	expiresAt time.Time
	seq       uint64
}

type queued struct {
	key string
	seq uint64
}

// Cache is a process-wide, mutex-guarded key/value store with per-entry
// TTLs. Expired entries are evicted lazily on access; when the size
// bound is exceeded the oldest-inserted entry is evicted first. Entries
// are advisory copies of derived aggregates - losing one is never a
// correctness issue.
type Cache struct {
	mu         sync.Mutex
	entries    map[string]entry
	queue      []queued // insertion order; stale markers skipped on pop
	seq        uint64
	maxEntries int

	// now is replaceable in tests
	now func() time.Time
}

// New creates a cache bounded to maxEntries. Zero or negative means
// DefaultMaxEntries.
func New(maxEntries int) *Cache {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &Cache{
		entries:    make(map[string]entry),
		maxEntries: maxEntries,
		now:        time.Now,
	}
}

// Get returns the value for key, or false if the key is absent or its
// TTL has passed. An expired entry is removed in place.
func (c *Cache) Get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if c.now().After(e.expiresAt) {
		delete(c.entries, key)
		return nil, false
	}
	return e.value, true
}

// Set stores value under key with the given TTL, replacing any previous
// entry. Re-setting a key refreshes its insertion recency.
func (c *Cache) Set(key string, value any, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.seq++
	c.entries[key] = entry{value: value, expiresAt: c.now().Add(ttl), seq: c.seq}
	c.queue = append(c.queue, queued{key: key, seq: c.seq})
	if len(c.queue) > 2*len(c.entries) && len(c.queue) > c.maxEntries {
		c.compactQueue()
	}
	c.evictOverflow()
}

// Delete removes key if present.
func (c *Cache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// Clear drops every entry.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]entry)
	c.queue = nil
}

// Len reports the number of live (possibly expired, not yet collected)
// entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// evictOverflow pops oldest-inserted entries until the bound holds.
// Queue markers whose seq no longer matches the live entry are leftovers
// from deletes or re-sets and are skipped. Caller holds c.mu.
func (c *Cache) evictOverflow() {
	for len(c.entries) > c.maxEntries && len(c.queue) > 0 {
		head := c.queue[0]
		c.queue = c.queue[1:]
		if e, ok := c.entries[head.key]; ok && e.seq == head.seq {
			delete(c.entries, head.key)
		}
	}
}

// compactQueue drops markers superseded by re-sets or deletes,
// preserving insertion order for the live ones. Re-setting a small hot
// key set never pushes the map over its bound, so without compaction
// the queue would grow one stale marker per Set for the life of the
// process. Caller holds c.mu.
func (c *Cache) compactQueue() {
	live := c.queue[:0]
	for _, q := range c.queue {
		if e, ok := c.entries[q.key]; ok && e.seq == q.seq {
			live = append(live, q)
		}
	}
	c.queue = live
}
