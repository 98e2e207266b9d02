package bridge

import "time"

type cacheEntry struct {
	data      any
	createdAt time.Time
	ttl       time.Duration
}

func (e cacheEntry) validAt(now time.Time) bool {
	return now.Sub(e.createdAt) < e.ttl
}

// resultCache is not safe for concurrent use; the bridge guards it with its mutex.
type resultCache struct {
	entries map[string]cacheEntry
	order   []string // tracks use order for LRU eviction
	maxSize int      // zero means unbounded
}

func newResultCache(maxSize int) *resultCache {
	return &resultCache{
		entries: make(map[string]cacheEntry),
		order:   make([]string, 0, maxSize),
		maxSize: maxSize,
	}
}

// get returns the entry's data if present and unexpired.
func (c *resultCache) get(key string, now time.Time) (any, bool) {
	entry, exists := c.entries[key]
	if !exists || !entry.validAt(now) {
		return nil, false
	}
	c.moveToEnd(key)
	return entry.data, true
}

// set replaces the entry for key and returns how many entries were evicted.
func (c *resultCache) set(key string, entry cacheEntry) int {
	if _, exists := c.entries[key]; exists {
		c.entries[key] = entry
		c.moveToEnd(key)
		return 0
	}

	evicted := 0
	for c.maxSize > 0 && len(c.order) >= c.maxSize {
		c.evictOldest()
		evicted++
	}

	c.entries[key] = entry
	c.order = append(c.order, key)
	return evicted
}

func (c *resultCache) remove(key string) {
	if _, exists := c.entries[key]; !exists {
		return
	}
	delete(c.entries, key)
	for i, k := range c.order {
		if k == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			return
		}
	}
}

func (c *resultCache) reset() {
	c.entries = make(map[string]cacheEntry)
	c.order = c.order[:0]
}

func (c *resultCache) len() int {
	return len(c.entries)
}

func (c *resultCache) moveToEnd(key string) {
	for i, k := range c.order {
		if k == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			c.order = append(c.order, key)
			return
		}
	}
}

func (c *resultCache) evictOldest() {
	if len(c.order) == 0 {
		return
	}

	oldest := c.order[0]
	c.order = c.order[1:]
	delete(c.entries, oldest)
}
