package assets

import "sync"

// Cache is a reference counted store of loaded assets. An entry lives while
// at least one reference is held.
type Cache struct {
	entries map[string]*cacheEntry
	mu      sync.Mutex

	// Stats
	hits   int
	misses int
}

type cacheEntry struct {
	value any
	refs  int
}

// NewCache creates a new cache.
func NewCache() *Cache {
	return &Cache{
		entries: make(map[string]*cacheEntry),
	}
}

// Ref returns the value stored under key and takes a reference to it. On a
// miss load is called and its result stored; a failed load stores nothing.
func (c *Cache) Ref(key string, load func() (any, error)) (any, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok {
		e.refs++
		c.hits++
		return e.value, nil
	}
	c.misses++

	v, err := load()
	if err != nil {
		return nil, err
	}
	c.entries[key] = &cacheEntry{value: v, refs: 1}
	return v, nil
}

// Unref drops a reference to key and reports whether the entry was evicted.
func (c *Cache) Unref(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return false
	}
	e.refs--
	if e.refs > 0 {
		return false
	}
	delete(c.entries, key)
	return true
}

// Refs returns the number of references held on key.
func (c *Cache) Refs(key string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[key]; ok {
		return e.refs
	}
	return 0
}

// Len returns the number of live entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Clear drops every entry regardless of references.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*cacheEntry)
	c.hits = 0
	c.misses = 0
}

// Stats returns cache statistics.
func (c *Cache) Stats() (hits, misses int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}
