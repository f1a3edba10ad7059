package database

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/citypulse/citypulse/app/happening"
)

var _ ResponseCache = (*ResponseCacheRepository)(nil)

// ResponseCacheRepository stores provider responses in sqlite so caches
// survive restarts. Expiry is decided by the caller against FetchedAt;
// stale entries stay readable so a failing refresh can fall back to them.
type ResponseCacheRepository struct {
	db *DB
}

func NewResponseCacheRepository(db *DB) *ResponseCacheRepository {
	return &ResponseCacheRepository{db: db}
}

// Get returns the cached entry for key, or nil when absent.
func (r *ResponseCacheRepository) Get(key string) (*CacheEntry, error) {
	var payload, fetchedAt string

	err := r.db.QueryRow(
		`SELECT payload, fetched_at FROM provider_cache WHERE key = ?`, key,
	).Scan(&payload, &fetchedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cache entry: %w", err)
	}

	var items []happening.RawItem
	if err := json.Unmarshal([]byte(payload), &items); err != nil {
		return nil, fmt.Errorf("failed to decode cache payload: %w", err)
	}

	ts, err := time.Parse(time.RFC3339Nano, fetchedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse cache timestamp: %w", err)
	}

	return &CacheEntry{Items: items, FetchedAt: ts}, nil
}

// Set stores items under key, replacing any previous entry.
func (r *ResponseCacheRepository) Set(key string, items []happening.RawItem) error {
	payload, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("failed to encode cache payload: %w", err)
	}

	_, err = r.db.Exec(`
		INSERT INTO provider_cache (key, payload, fetched_at)
		VALUES (?, ?, ?)
		ON CONFLICT (key) DO UPDATE SET
			payload = excluded.payload,
			fetched_at = excluded.fetched_at
	`, key, string(payload), time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("failed to write cache entry: %w", err)
	}

	return nil
}

// Purge removes entries older than the given age and returns the number
// of rows deleted.
func (r *ResponseCacheRepository) Purge(olderThan time.Duration) (int64, error) {
	cutoff := time.Now().UTC().Add(-olderThan).Format(time.RFC3339Nano)

	result, err := r.db.Exec(`DELETE FROM provider_cache WHERE fetched_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to purge cache: %w", err)
	}

	return result.RowsAffected()
}
