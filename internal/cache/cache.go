// internal/cache/cache.go
package cache

import (
	"container/list"
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Snapshot is one rendered page kept for reuse. Re-running a prompt
// against recently fetched targets skips the browser entirely.
type Snapshot struct {
	URL       string
	HTML      string
	FetchedAt time.Time
}

// Cache defines the interface for snapshot caching implementations.
//
// Implementations should provide efficient retrieval and eviction strategies.
// Common implementations include:
//   - MemoryCache: In-memory cache with LRU eviction
type Cache interface {
	// Get retrieves a cached snapshot by URL.
	// Returns the Snapshot and a boolean indicating if the URL was found.
	Get(url string) (*Snapshot, bool)

	// Set stores a snapshot with the specified TTL.
	// If the URL already exists, it should be updated.
	// Implementations may evict entries based on their eviction strategy.
	Set(url string, snap *Snapshot, ttl time.Duration) error

	// Delete removes a cached snapshot by URL.
	// Should not error if the URL doesn't exist.
	Delete(url string) error

	// Clear removes all cached snapshots.
	Clear() error

	// Close performs cleanup and closes the cache.
	// Implementations must ensure background goroutines are stopped.
	Close()
}

// cacheEntry represents a cached snapshot with metadata
type cacheEntry struct {
	Snap      *Snapshot
	ExpiresAt time.Time
	Key       string // For LRU tracking
}

// MemoryCache implements in-memory snapshot caching with LRU eviction
type MemoryCache struct {
	store   map[string]*list.Element // Map key to list element
	lruList *list.List               // Doubly-linked list for LRU ordering
	mu      sync.RWMutex
	maxSize int64 // Maximum cache size in bytes
	size    int64 // Current size in bytes
	ctx     context.Context
	cancel  context.CancelFunc
	hits    uint64 // Cache hit counter
	misses  uint64 // Cache miss counter
}

// NewMemoryCache creates a new in-memory cache with LRU eviction
func NewMemoryCache(maxSizeBytes int64) *MemoryCache {
	if maxSizeBytes <= 0 {
		maxSizeBytes = 100 * 1024 * 1024 // Default: 100MB
	}

	ctx, cancel := context.WithCancel(context.Background())

	cache := &MemoryCache{
		store:   make(map[string]*list.Element),
		lruList: list.New(),
		maxSize: maxSizeBytes,
		size:    0,
		ctx:     ctx,
		cancel:  cancel,
	}

	// Start background cleanup routine with context
	go cache.cleanupExpired()

	return cache
}

func entrySize(snap *Snapshot) int64 {
	// Rough approximation plus ~1KB struct overhead
	return int64(len(snap.HTML)+len(snap.URL)) + 1024
}

// Get retrieves a cached snapshot, moving it to the front of the LRU list
func (mc *MemoryCache) Get(url string) (*Snapshot, bool) {
	mc.mu.Lock() // Need write lock for LRU update
	element, exists := mc.store[url]
	if !exists {
		mc.misses++
		mc.mu.Unlock()
		return nil, false
	}

	entry := element.Value.(*cacheEntry)

	// Check if expired
	if time.Now().After(entry.ExpiresAt) {
		mc.misses++
		mc.mu.Unlock()
		// Expired, delete it
		go mc.Delete(url)
		return nil, false
	}

	// Move to front (most recently used)
	mc.lruList.MoveToFront(element)
	mc.hits++
	mc.mu.Unlock()

	log.Debug().Str("url", url).Msg("Snapshot cache hit")
	return entry.Snap, true
}

// Set stores a snapshot with TTL, evicting least recently used entries
// when the size cap would be exceeded
func (mc *MemoryCache) Set(url string, snap *Snapshot, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = 5 * time.Minute // Default: 5 minutes
	}

	mc.mu.Lock()
	defer mc.mu.Unlock()

	size := entrySize(snap)

	// Check if key already exists - update it
	if element, exists := mc.store[url]; exists {
		oldEntry := element.Value.(*cacheEntry)
		mc.size -= entrySize(oldEntry.Snap)

		entry := &cacheEntry{
			Snap:      snap,
			ExpiresAt: time.Now().Add(ttl),
			Key:       url,
		}
		element.Value = entry
		mc.lruList.MoveToFront(element)
		mc.size += size

		log.Debug().
			Str("url", url).
			Dur("ttl", ttl).
			Int64("size_bytes", size).
			Msg("Updated cached snapshot")

		return nil
	}

	// Evict until the new entry fits
	for mc.size+size > mc.maxSize && mc.lruList.Len() > 0 {
		mc.evictLRU()
	}

	entry := &cacheEntry{
		Snap:      snap,
		ExpiresAt: time.Now().Add(ttl),
		Key:       url,
	}

	// Add to front of list (most recently used)
	element := mc.lruList.PushFront(entry)
	mc.store[url] = element
	mc.size += size

	log.Debug().
		Str("url", url).
		Dur("ttl", ttl).
		Int64("size_bytes", size).
		Msg("Cached snapshot")

	return nil
}

// Delete removes a cached snapshot
func (mc *MemoryCache) Delete(url string) error {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	if element, exists := mc.store[url]; exists {
		entry := element.Value.(*cacheEntry)
		mc.lruList.Remove(element)
		delete(mc.store, url)
		mc.size -= entrySize(entry.Snap)
		log.Debug().Str("url", url).Msg("Deleted from cache")
	}

	return nil
}

// Clear removes all cached snapshots
func (mc *MemoryCache) Clear() error {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	mc.store = make(map[string]*list.Element)
	mc.lruList = list.New()
	mc.size = 0
	mc.hits = 0
	mc.misses = 0

	log.Debug().Msg("Cache cleared")
	return nil
}

// Close stops the background cleanup goroutine
func (mc *MemoryCache) Close() {
	mc.cancel()
	log.Debug().Msg("Cache closed")
}

// evictLRU removes the least recently used entry (must be called with lock held)
func (mc *MemoryCache) evictLRU() {
	element := mc.lruList.Back()
	if element == nil {
		return
	}

	entry := element.Value.(*cacheEntry)

	mc.lruList.Remove(element)
	delete(mc.store, entry.Key)
	mc.size -= entrySize(entry.Snap)

	log.Debug().Str("url", entry.Key).Msg("Evicted from cache (LRU)")
}

// cleanupExpired periodically removes expired entries
func (mc *MemoryCache) cleanupExpired() {
	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			mc.mu.Lock()
			now := time.Now()

			var next *list.Element
			for element := mc.lruList.Front(); element != nil; element = next {
				next = element.Next()
				entry := element.Value.(*cacheEntry)

				if now.After(entry.ExpiresAt) {
					mc.lruList.Remove(element)
					delete(mc.store, entry.Key)
					mc.size -= entrySize(entry.Snap)
				}
			}
			mc.mu.Unlock()
		case <-mc.ctx.Done():
			log.Debug().Msg("Cache cleanup routine stopped")
			return
		}
	}
}

// Stats returns cache statistics including hit rate
func (mc *MemoryCache) Stats() map[string]interface{} {
	mc.mu.RLock()
	defer mc.mu.RUnlock()

	hitRate := 0.0
	total := mc.hits + mc.misses
	if total > 0 {
		hitRate = float64(mc.hits) / float64(total) * 100
	}

	return map[string]interface{}{
		"entries":     mc.lruList.Len(),
		"size_bytes":  mc.size,
		"max_size":    mc.maxSize,
		"utilization": float64(mc.size) / float64(mc.maxSize) * 100,
		"hits":        mc.hits,
		"misses":      mc.misses,
		"hit_rate":    hitRate,
	}
}
