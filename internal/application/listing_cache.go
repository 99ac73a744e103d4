package application

import (
	"sync"
	"time"
)

// listingCache keeps decoded collections for read-only listings between
// mutations. Writes never consult it; every mutation the service performs
// clears it and advances the generation, so a load that overlapped a
// mutation cannot be stored afterwards.
type listingCache struct {
	mu         sync.RWMutex
	now        func() time.Time
	ttl        time.Duration
	maxEntries int
	generation uint64
	entries    map[string]listingCacheEntry
}

type listingCacheEntry struct {
	sessions  []Session
	expiresAt time.Time
}

func newListingCache(ttl time.Duration, maxEntries int, now func() time.Time) *listingCache {
	if ttl <= 0 {
		return nil
	}
	if maxEntries <= 0 {
		maxEntries = 256
	}
	if now == nil {
		now = time.Now
	}
	return &listingCache{
		now:        now,
		ttl:        ttl,
		maxEntries: maxEntries,
		entries:    make(map[string]listingCacheEntry),
	}
}

func listingCacheKey(collection, ownerKey string) string {
	return collection + "|" + ownerKey
}

func (c *listingCache) Get(key string) ([]Session, bool) {
	if c == nil {
		return nil, false
	}
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if !c.now().Before(entry.expiresAt) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return nil, false
	}
	return cloneSessions(entry.sessions), true
}

// Generation is read before loading from the store and passed to Store.
func (c *listingCache) Generation() uint64 {
	if c == nil {
		return 0
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.generation
}

// Store keeps sessions under key unless an Invalidate happened since generation was read.
func (c *listingCache) Store(key string, sessions []Session, generation uint64) {
	if c == nil {
		return
	}
	cloned := cloneSessions(sessions)
	expiry := c.now().Add(c.ttl)

	c.mu.Lock()
	defer c.mu.Unlock()

	if generation != c.generation {
		return
	}
	c.cleanupLocked()
	if len(c.entries) >= c.maxEntries {
		c.evictOneLocked()
	}
	c.entries[key] = listingCacheEntry{sessions: cloned, expiresAt: expiry}
}

func (c *listingCache) Invalidate() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.generation++
	c.entries = make(map[string]listingCacheEntry)
	c.mu.Unlock()
}

func (c *listingCache) Len() int {
	if c == nil {
		return 0
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *listingCache) cleanupLocked() {
	now := c.now()
	for key, entry := range c.entries {
		if !now.Before(entry.expiresAt) {
			delete(c.entries, key)
		}
	}
}

func (c *listingCache) evictOneLocked() {
	var (
		oldestKey string
		oldest    time.Time
	)
	for key, entry := range c.entries {
		if oldestKey == "" || entry.expiresAt.Before(oldest) {
			oldestKey, oldest = key, entry.expiresAt
		}
	}
	delete(c.entries, oldestKey)
}
