package database

import (
	"time"

	"github.com/citypulse/citypulse/app/happening"
)

// ResponseCache persists provider payloads keyed by provider + query.
type ResponseCache interface {
	Get(key string) (*CacheEntry, error)
	Set(key string, items []happening.RawItem) error
	Purge(olderThan time.Duration) (int64, error)
}

// CacheEntry is a cached provider payload with its fetch timestamp.
type CacheEntry struct {
	Items     []happening.RawItem
	FetchedAt time.Time
}

// FreshWithin reports whether the entry is younger than the TTL.
func (e *CacheEntry) FreshWithin(ttl time.Duration) bool {
	return time.Since(e.FetchedAt) < ttl
}
