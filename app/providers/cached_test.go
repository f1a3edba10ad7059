package providers

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/citypulse/citypulse/app/database"
	"github.com/citypulse/citypulse/app/happening"
)

type memoryCache struct {
	entries map[string]*database.CacheEntry
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: make(map[string]*database.CacheEntry)}
}

func (m *memoryCache) Get(key string) (*database.CacheEntry, error) {
	return m.entries[key], nil
}

func (m *memoryCache) Set(key string, items []happening.RawItem) error {
	m.entries[key] = &database.CacheEntry{Items: items, FetchedAt: time.Now()}
	return nil
}

func (m *memoryCache) Purge(olderThan time.Duration) (int64, error) {
	return 0, nil
}

type countingProvider struct {
	name  string
	items []happening.RawItem
	err   error
	calls int
}

func (p *countingProvider) Name() string  { return p.name }
func (p *countingProvider) Enabled() bool { return true }

func (p *countingProvider) FetchItems(ctx context.Context, q Query) ([]happening.RawItem, error) {
	p.calls++
	if p.err != nil {
		return nil, p.err
	}
	return p.items, nil
}

func testQuery() Query {
	return Query{
		City:  "Berlin",
		Start: time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2025, 6, 12, 0, 0, 0, 0, time.UTC),
	}
}

func TestCached_FreshHitShortCircuits(t *testing.T) {
	inner := &countingProvider{name: "p", items: []happening.RawItem{{ExternalID: "1", Source: "p"}}}
	cached := NewCached(inner, newMemoryCache(), time.Hour)

	for i := 0; i < 3; i++ {
		items, err := cached.FetchItems(context.Background(), testQuery())
		if err != nil {
			t.Fatal(err)
		}
		if len(items) != 1 {
			t.Fatalf("Expected 1 item, got %d", len(items))
		}
	}

	if inner.calls != 1 {
		t.Errorf("Expected a single upstream call, got %d", inner.calls)
	}
}

func TestCached_StaleServedOnFailure(t *testing.T) {
	cache := newMemoryCache()
	inner := &countingProvider{name: "p", items: []happening.RawItem{{ExternalID: "1", Source: "p", Title: "Stale But Gold"}}}
	cached := NewCached(inner, cache, time.Hour)

	// Populate the cache, then age the entry past the TTL
	if _, err := cached.FetchItems(context.Background(), testQuery()); err != nil {
		t.Fatal(err)
	}
	for _, entry := range cache.entries {
		entry.FetchedAt = time.Now().Add(-2 * time.Hour)
	}

	inner.err = errors.New("upstream down")

	items, err := cached.FetchItems(context.Background(), testQuery())
	if err != nil {
		t.Fatalf("Stale entry should mask the failure: %v", err)
	}
	if len(items) != 1 || items[0].Title != "Stale But Gold" {
		t.Errorf("Expected stale payload, got %+v", items)
	}
}

func TestCached_FailureWithoutEntryPropagates(t *testing.T) {
	inner := &countingProvider{name: "p", err: errors.New("upstream down")}
	cached := NewCached(inner, newMemoryCache(), time.Hour)

	_, err := cached.FetchItems(context.Background(), testQuery())
	if err == nil {
		t.Error("Expected failure to propagate without any cache entry")
	}
}

func TestCached_ExpiredEntryRefetches(t *testing.T) {
	cache := newMemoryCache()
	inner := &countingProvider{name: "p", items: []happening.RawItem{{ExternalID: "1", Source: "p"}}}
	cached := NewCached(inner, cache, time.Hour)

	if _, err := cached.FetchItems(context.Background(), testQuery()); err != nil {
		t.Fatal(err)
	}
	for _, entry := range cache.entries {
		entry.FetchedAt = time.Now().Add(-2 * time.Hour)
	}

	if _, err := cached.FetchItems(context.Background(), testQuery()); err != nil {
		t.Fatal(err)
	}
	if inner.calls != 2 {
		t.Errorf("Expired entry should trigger a refetch, got %d calls", inner.calls)
	}
}

func TestQuery_CacheKey(t *testing.T) {
	q := testQuery()
	key := q.CacheKey("citylife")

	if key != "citylife|berlin|2025-06-10T00:00:00Z|2025-06-12T00:00:00Z" {
		t.Errorf("Unexpected cache key: %q", key)
	}

	q.City = "BERLIN"
	if q.CacheKey("citylife") != key {
		t.Error("Cache key must be case-insensitive on city")
	}
}
