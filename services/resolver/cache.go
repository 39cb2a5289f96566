package resolver

import (
	"container/list"
	"sync"
	"time"

	"github.com/upb/skillboard/backend/models"
)

// CacheKey represents a unique key for caching resolved references
type CacheKey struct {
	Kind models.EntityKind
	ID   string
}

// String returns a string representation of the cache key
func (k CacheKey) String() string {
	return string(k.Kind) + ":" + k.ID
}

// cacheEntry represents a single cache entry with TTL
type cacheEntry struct {
	key        CacheKey
	ref        models.EntityReference
	insertedAt time.Time
	element    *list.Element // For LRU tracking
}

// isExpired checks if the cache entry has expired
func (e *cacheEntry) isExpired(ttl time.Duration) bool {
	return time.Since(e.insertedAt) > ttl
}

// ReferenceCache is an in-memory LRU cache with TTL for resolved entity
// references. Thread-safe implementation using sync.Mutex.
type ReferenceCache struct {
	mu      sync.Mutex
	entries map[string]*cacheEntry // Key: CacheKey.String()
	lruList *list.List             // Doubly linked list for LRU tracking
	maxSize int                    // Maximum number of entries
	ttl     time.Duration          // Time-to-live for entries
	hits    uint64                 // Cache hit counter
	misses  uint64                 // Cache miss counter
}

// NewReferenceCache creates a new ReferenceCache with specified max size and TTL
func NewReferenceCache(maxSize int, ttl time.Duration) *ReferenceCache {
	return &ReferenceCache{
		entries: make(map[string]*cacheEntry),
		lruList: list.New(),
		maxSize: maxSize,
		ttl:     ttl,
	}
}

// Get retrieves a resolved reference from cache.
// Returns false if not found or expired.
func (c *ReferenceCache) Get(key CacheKey) (models.EntityReference, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	keyStr := key.String()
	entry, exists := c.entries[keyStr]

	// Check if entry exists and is not expired
	if !exists || entry.isExpired(c.ttl) {
		c.misses++
		if exists {
			// Remove expired entry
			c.removeEntry(keyStr)
		}
		return models.EntityReference{}, false
	}

	// Move to front (most recently used)
	c.lruList.MoveToFront(entry.element)
	c.hits++

	return entry.ref, true
}

// Set stores a resolved reference in cache
func (c *ReferenceCache) Set(key CacheKey, ref models.EntityReference) {
	c.mu.Lock()
	defer c.mu.Unlock()

	keyStr := key.String()

	// Check if entry already exists
	if entry, exists := c.entries[keyStr]; exists {
		// Update existing entry
		entry.ref = ref
		entry.insertedAt = time.Now()
		c.lruList.MoveToFront(entry.element)
		return
	}

	// Evict least recently used entry if cache is full
	if c.lruList.Len() >= c.maxSize {
		c.evictLRU()
	}

	// Create new entry
	entry := &cacheEntry{
		key:        key,
		ref:        ref,
		insertedAt: time.Now(),
	}

	// Add to front of LRU list
	entry.element = c.lruList.PushFront(keyStr)
	c.entries[keyStr] = entry
}

// InvalidateKind removes all cache entries for an entity kind.
// Called after each snapshot refresh so stale resolutions don't outlive the
// data they were derived from.
func (c *ReferenceCache) InvalidateKind(kind models.EntityKind) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for keyStr, entry := range c.entries {
		if entry.key.Kind == kind {
			c.removeEntry(keyStr)
		}
	}
}

// Clear removes all entries from the cache
func (c *ReferenceCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]*cacheEntry)
	c.lruList.Init()
}

// Stats returns cache statistics
func (c *ReferenceCache) Stats() CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()

	return CacheStats{
		Size:    c.lruList.Len(),
		MaxSize: c.maxSize,
		Hits:    c.hits,
		Misses:  c.misses,
		HitRate: c.calculateHitRate(),
	}
}

// CacheStats represents cache statistics
type CacheStats struct {
	Size    int
	MaxSize int
	Hits    uint64
	Misses  uint64
	HitRate float64
}

// calculateHitRate calculates the cache hit rate (must be called with lock held)
func (c *ReferenceCache) calculateHitRate() float64 {
	total := c.hits + c.misses
	if total == 0 {
		return 0
	}
	return float64(c.hits) / float64(total)
}

// removeEntry removes an entry from the cache (must be called with lock held)
func (c *ReferenceCache) removeEntry(keyStr string) {
	if entry, exists := c.entries[keyStr]; exists {
		c.lruList.Remove(entry.element)
		delete(c.entries, keyStr)
	}
}

// evictLRU evicts the least recently used entry (must be called with lock held)
func (c *ReferenceCache) evictLRU() {
	if c.lruList.Len() == 0 {
		return
	}

	// Remove from back (least recently used)
	backElement := c.lruList.Back()
	if backElement != nil {
		keyStr := backElement.Value.(string)
		c.lruList.Remove(backElement)
		delete(c.entries, keyStr)
	}
}
