// Package cache provides the shared response cache for text-generation
// calls: a thread-safe LRU with per-entry TTL. Entries are immutable once
// written, so concurrent readers and writers need only the map lock.
package cache

import (
	"container/list"
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"
)

// CacheEntry holds a cached value with its expiration time.
type CacheEntry struct {
	Value     any
	ExpiresAt time.Time
}

// LRUCache is a thread-safe LRU cache with TTL support. Expired entries are
// evicted lazily on the next access.
type LRUCache struct {
	mu       sync.RWMutex
	capacity int
	ttl      time.Duration
	items    map[string]*list.Element
	lru      *list.List
}

type lruItem struct {
	key   string
	value CacheEntry
}

// NewLRUCache creates a cache with the given capacity and time-to-live.
func NewLRUCache(capacity int, ttl time.Duration) *LRUCache {
	if capacity <= 0 {
		capacity = 128
	}
	return &LRUCache{
		capacity: capacity,
		ttl:      ttl,
		items:    make(map[string]*list.Element, capacity),
		lru:      list.New(),
	}
}

// Get retrieves a value, evicting it first if the TTL has lapsed.
func (c *LRUCache) Get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.items[key]
	if !ok {
		return nil, false
	}

	item := elem.Value.(*lruItem)
	if time.Now().After(item.value.ExpiresAt) {
		c.lru.Remove(elem)
		delete(c.items, key)
		return nil, false
	}

	c.lru.MoveToFront(elem)
	return item.value.Value, true
}

// Set adds or overwrites a value, refreshing its TTL.
func (c *LRUCache) Set(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()

	expiresAt := time.Now().Add(c.ttl)

	if elem, ok := c.items[key]; ok {
		c.lru.MoveToFront(elem)
		elem.Value.(*lruItem).value = CacheEntry{Value: value, ExpiresAt: expiresAt}
		return
	}

	elem := c.lru.PushFront(&lruItem{key: key, value: CacheEntry{Value: value, ExpiresAt: expiresAt}})
	c.items[key] = elem

	if c.lru.Len() > c.capacity {
		c.evictOldest()
	}
}

func (c *LRUCache) evictOldest() {
	oldest := c.lru.Back()
	if oldest == nil {
		return
	}
	c.lru.Remove(oldest)
	delete(c.items, oldest.Value.(*lruItem).key)
}

// Clear removes all entries.
func (c *LRUCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[string]*list.Element, c.capacity)
	c.lru.Init()
}

// Len returns the number of cached entries, including not-yet-evicted
// expired ones.
func (c *LRUCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lru.Len()
}

// HashKey derives a cache key from an input string.
func HashKey(input string) string {
	h := sha256.Sum256([]byte(input))
	return hex.EncodeToString(h[:])
}

// Dump snapshots the cache entries for persistence.
func (c *LRUCache) Dump() map[string]CacheEntry {
	c.mu.RLock()
	defer c.mu.RUnlock()

	dump := make(map[string]CacheEntry, len(c.items))
	for k, elem := range c.items {
		dump[k] = elem.Value.(*lruItem).value
	}
	return dump
}

// Restore repopulates the cache from a dump, skipping expired entries and
// enforcing capacity.
func (c *LRUCache) Restore(dump map[string]CacheEntry) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.lru.Init()
	c.items = make(map[string]*list.Element, c.capacity)

	now := time.Now()
	for k, v := range dump {
		if now.After(v.ExpiresAt) {
			continue
		}
		elem := c.lru.PushFront(&lruItem{key: k, value: v})
		c.items[k] = elem
	}

	for c.lru.Len() > c.capacity {
		c.evictOldest()
	}
}
