package cache

import (
	"crypto/md5"
	"fmt"
	"sync"
	"time"
)

// Item is a cached value with expiration.
type Item struct {
	Data      []byte
	ExpiresAt time.Time
}

// IsExpired checks whether the item has expired.
func (i *Item) IsExpired() bool {
	return time.Now().After(i.ExpiresAt)
}

// Cache provides thread-safe byte caching with TTL, used for scorecard
// and leaderboard responses.
type Cache struct {
	mu        sync.RWMutex
	items     map[string]*Item
	ttl       time.Duration
	done      chan struct{}
	closeOnce sync.Once
}

// NewCache creates a cache with the given TTL and starts its janitor.
func NewCache(ttl time.Duration) *Cache {
	c := &Cache{
		items: make(map[string]*Item),
		ttl:   ttl,
		done:  make(chan struct{}),
	}
	go c.cleanup()
	return c
}

func (c *Cache) cleanup() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			c.mu.Lock()
			for key, item := range c.items {
				if item.IsExpired() {
					delete(c.items, key)
				}
			}
			c.mu.Unlock()
		}
	}
}

// Close stops the janitor. The cache itself stays usable; expired items
// are still filtered on Get.
func (c *Cache) Close() {
	c.closeOnce.Do(func() { close(c.done) })
}

// Key builds a consistent cache key from request parts.
func Key(parts ...string) string {
	joined := ""
	for _, p := range parts {
		joined += p + "|"
	}
	return fmt.Sprintf("%x", md5.Sum([]byte(joined)))
}

// Get retrieves an item, reporting whether it was present and fresh.
func (c *Cache) Get(key string) ([]byte, bool) {
	c.mu.RLock()
	item, exists := c.items[key]
	c.mu.RUnlock()

	if !exists || item.IsExpired() {
		return nil, false
	}
	return item.Data, true
}

// Set stores an item with the cache's TTL.
func (c *Cache) Set(key string, data []byte) {
	c.mu.Lock()
	c.items[key] = &Item{
		Data:      data,
		ExpiresAt: time.Now().Add(c.ttl),
	}
	c.mu.Unlock()
}

// Invalidate removes one key.
func (c *Cache) Invalidate(key string) {
	c.mu.Lock()
	delete(c.items, key)
	c.mu.Unlock()
}

// Flush removes every cached item, used after a scoring pass supersedes
// the snapshots the responses were built from.
func (c *Cache) Flush() {
	c.mu.Lock()
	c.items = make(map[string]*Item)
	c.mu.Unlock()
}

// Len returns the number of cached items, expired or not.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}
