// Package cache implements a content-addressed cache of compiled views.
// The dev server uses it to skip recompiling sources that have not changed
// between file-watcher events.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"
)

// Cache stores compiled artifacts keyed by a content hash.
type Cache struct {
	mu         sync.RWMutex
	entries    map[string]*entry
	maxEntries int
	stats      Stats
}

type entry struct {
	value       any
	created     time.Time
	lastAccess  time.Time
	accessCount int
}

// Stats tracks cache performance metrics.
type Stats struct {
	Hits       int64
	Misses     int64
	Evictions  int64
	EntryCount int
}

// Config holds cache configuration.
type Config struct {
	// MaxEntries caps the number of cached artifacts. Zero means unbounded.
	MaxEntries int
}

// DefaultConfig returns the default cache configuration.
func DefaultConfig() Config {
	return Config{MaxEntries: 256}
}

// New creates a cache.
func New(config Config) *Cache {
	return &Cache{
		entries:    make(map[string]*entry),
		maxEntries: config.MaxEntries,
	}
}

// Get retrieves a cached artifact.
func (c *Cache) Get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		c.stats.Misses++
		return nil, false
	}
	e.lastAccess = time.Now()
	e.accessCount++
	c.stats.Hits++
	return e.value, true
}

// Put stores an artifact, evicting the least recently used entry when full.
func (c *Cache) Put(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.entries[key]; !ok && c.maxEntries > 0 && len(c.entries) >= c.maxEntries {
		c.evictOldestLocked()
	}
	now := time.Now()
	c.entries[key] = &entry{value: value, created: now, lastAccess: now}
	c.stats.EntryCount = len(c.entries)
}

// Delete removes an entry.
func (c *Cache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
	c.stats.EntryCount = len(c.entries)
}

// Clear removes all cached entries.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*entry)
	c.stats.EntryCount = 0
}

// GetStats returns a snapshot of the cache metrics.
func (c *Cache) GetStats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	stats := c.stats
	stats.EntryCount = len(c.entries)
	return stats
}

func (c *Cache) evictOldestLocked() {
	var oldestKey string
	var oldest time.Time
	for key, e := range c.entries {
		if oldestKey == "" || e.lastAccess.Before(oldest) {
			oldestKey = key
			oldest = e.lastAccess
		}
	}
	if oldestKey != "" {
		delete(c.entries, oldestKey)
		c.stats.Evictions++
	}
}

// Key generates a cache key from inputs.
func Key(inputs ...string) string {
	h := sha256.New()
	for _, input := range inputs {
		h.Write([]byte(input))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}
