package application

import (
	"testing"
	"time"
)

func TestListingCacheStoresAndReturnsCopies(t *testing.T) {
	fixed := time.Date(2025, 2, 3, 9, 0, 0, 0, time.UTC)
	current := fixed
	cache := newListingCache(time.Minute, 4, func() time.Time { return current })

	original := []Session{{ID: "s-1", Subject: "Hadith"}}
	cache.Store("key", original, cache.Generation())

	original[0].Subject = "mutated"

	cached, ok := cache.Get("key")
	if !ok {
		t.Fatalf("expected cache hit")
	}
	if cached[0].Subject != "Hadith" {
		t.Fatalf("expected cached subject to remain unchanged, got %s", cached[0].Subject)
	}

	cached[0].Subject = "changed"
	cachedAgain, ok := cache.Get("key")
	if !ok {
		t.Fatalf("expected cache hit on second read")
	}
	if cachedAgain[0].Subject != "Hadith" {
		t.Fatalf("expected cache to return independent copy, got %s", cachedAgain[0].Subject)
	}
}

func TestListingCacheExpiresEntries(t *testing.T) {
	current := time.Date(2025, 2, 3, 9, 0, 0, 0, time.UTC)
	cache := newListingCache(time.Second, 4, func() time.Time { return current })

	cache.Store("key", []Session{{ID: "s-1"}}, cache.Generation())
	if _, ok := cache.Get("key"); !ok {
		t.Fatalf("expected cache hit before expiry")
	}

	current = current.Add(2 * time.Second)
	if _, ok := cache.Get("key"); ok {
		t.Fatalf("expected cache entry to expire")
	}
}

func TestListingCacheInvalidate(t *testing.T) {
	cache := newListingCache(time.Minute, 4, time.Now)
	cache.Store("key", []Session{{ID: "s-1"}}, cache.Generation())
	cache.Invalidate()
	if _, ok := cache.Get("key"); ok {
		t.Fatalf("expected cache to be empty after invalidation")
	}
}

func TestListingCacheEvictsOldestWhenFull(t *testing.T) {
	current := time.Date(2025, 2, 3, 9, 0, 0, 0, time.UTC)
	cache := newListingCache(time.Minute, 2, func() time.Time { return current })

	cache.Store("first", nil, cache.Generation())
	current = current.Add(time.Second)
	cache.Store("second", nil, cache.Generation())
	current = current.Add(time.Second)
	cache.Store("third", nil, cache.Generation())

	if cache.Len() != 2 {
		t.Fatalf("expected 2 entries, got %d", cache.Len())
	}
	if _, ok := cache.Get("first"); ok {
		t.Fatalf("expected oldest entry to be evicted")
	}
	if _, ok := cache.Get("third"); !ok {
		t.Fatalf("expected newest entry to be present")
	}
}

func TestListingCacheDisabled(t *testing.T) {
	cache := newListingCache(0, 4, time.Now)
	if cache != nil {
		t.Fatalf("expected zero ttl to disable the cache")
	}
	cache.Store("key", []Session{{ID: "s-1"}}, cache.Generation())
	if _, ok := cache.Get("key"); ok {
		t.Fatalf("disabled cache must never hit")
	}
	cache.Invalidate()
}

func TestListingCacheSkipsStoreAfterInvalidate(t *testing.T) {
	current := time.Date(2025, 2, 3, 9, 0, 0, 0, time.UTC)
	cache := newListingCache(time.Minute, 4, func() time.Time { return current })

	generation := cache.Generation()
	cache.Invalidate()
	cache.Store("key", []Session{{ID: "stale"}}, generation)

	if _, ok := cache.Get("key"); ok {
		t.Fatalf("expected load that overlapped an invalidation to be dropped")
	}

	cache.Store("key", []Session{{ID: "fresh"}}, cache.Generation())
	cached, ok := cache.Get("key")
	if !ok || cached[0].ID != "fresh" {
		t.Fatalf("expected fresh entry to be cached, got %v", cached)
	}
}
