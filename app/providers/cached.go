package providers

import (
	"context"
	"log/slog"
	"time"

	"github.com/citypulse/citypulse/app/database"
	"github.com/citypulse/citypulse/app/happening"
)

var _ Provider = (*Cached)(nil)

// Cached decorates a provider with a TTL response cache. A fresh cache
// hit short-circuits the network call; on fetch failure a stale entry is
// served instead of propagating the failure, and only absent any cached
// entry does the failure reach the caller.
type Cached struct {
	inner Provider
	cache database.ResponseCache
	ttl   time.Duration
}

func NewCached(inner Provider, cache database.ResponseCache, ttl time.Duration) *Cached {
	return &Cached{inner: inner, cache: cache, ttl: ttl}
}

func (c *Cached) Name() string { return c.inner.Name() }

func (c *Cached) Enabled() bool { return c.inner.Enabled() }

func (c *Cached) FetchItems(ctx context.Context, q Query) ([]happening.RawItem, error) {
	key := q.CacheKey(c.inner.Name())

	entry, err := c.cache.Get(key)
	if err != nil {
		// A broken cache must not block fetching
		slog.Warn("Cache read failed", "provider", c.inner.Name(), "key", key, "error", err)
		entry = nil
	}

	if entry != nil && entry.FreshWithin(c.ttl) {
		slog.Debug("Cache hit", "provider", c.inner.Name(), "key", key, "items", len(entry.Items))
		return entry.Items, nil
	}

	items, err := c.inner.FetchItems(ctx, q)
	if err != nil {
		if entry != nil {
			slog.Warn("Fetch failed, serving stale cache entry", "provider", c.inner.Name(), "key", key, "age", time.Since(entry.FetchedAt).String(), "error", err)
			return entry.Items, nil
		}
		return nil, err
	}

	if err := c.cache.Set(key, items); err != nil {
		slog.Warn("Cache write failed", "provider", c.inner.Name(), "key", key, "error", err)
	}

	return items, nil
}
