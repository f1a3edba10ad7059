package database

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/citypulse/citypulse/app/happening"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := NewConnection(filepath.Join(t.TempDir(), "cache.db"))
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if _, _, err := RunMigrations(db); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	return db
}

func TestResponseCache_GetMissing(t *testing.T) {
	repo := NewResponseCacheRepository(newTestDB(t))

	entry, err := repo.Get("citylife|berlin|x")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if entry != nil {
		t.Errorf("Expected nil entry for missing key, got %+v", entry)
	}
}

func TestResponseCache_SetAndGet(t *testing.T) {
	repo := NewResponseCacheRepository(newTestDB(t))

	items := []happening.RawItem{
		{ExternalID: "1", Source: "citylife", Title: "Jazz Night", URL: "https://example.com/1"},
		{ExternalID: "2", Source: "citylife", Title: "Pottery Workshop", URL: "https://example.com/2"},
	}

	if err := repo.Set("citylife|berlin|x", items); err != nil {
		t.Fatalf("Failed to set cache entry: %v", err)
	}

	entry, err := repo.Get("citylife|berlin|x")
	if err != nil {
		t.Fatalf("Failed to get cache entry: %v", err)
	}
	if entry == nil {
		t.Fatal("Expected cache entry, got nil")
	}
	if len(entry.Items) != 2 {
		t.Errorf("Expected 2 cached items, got %d", len(entry.Items))
	}
	if entry.Items[0].Title != "Jazz Night" {
		t.Errorf("Unexpected first item title: %q", entry.Items[0].Title)
	}
	if !entry.FreshWithin(time.Minute) {
		t.Error("Just-written entry should be fresh within a minute")
	}
	if entry.FreshWithin(0) {
		t.Error("Entry cannot be fresh within a zero TTL")
	}
}

func TestResponseCache_SetReplaces(t *testing.T) {
	repo := NewResponseCacheRepository(newTestDB(t))

	key := "citylife|berlin|x"
	if err := repo.Set(key, []happening.RawItem{{ExternalID: "1", Source: "s", Title: "Old"}}); err != nil {
		t.Fatal(err)
	}
	if err := repo.Set(key, []happening.RawItem{{ExternalID: "2", Source: "s", Title: "New"}}); err != nil {
		t.Fatal(err)
	}

	entry, err := repo.Get(key)
	if err != nil {
		t.Fatal(err)
	}
	if len(entry.Items) != 1 || entry.Items[0].Title != "New" {
		t.Errorf("Expected replaced payload, got %+v", entry.Items)
	}
}

func TestResponseCache_Purge(t *testing.T) {
	repo := NewResponseCacheRepository(newTestDB(t))

	if err := repo.Set("a", []happening.RawItem{{ExternalID: "1", Source: "s"}}); err != nil {
		t.Fatal(err)
	}

	deleted, err := repo.Purge(time.Hour)
	if err != nil {
		t.Fatalf("Purge failed: %v", err)
	}
	if deleted != 0 {
		t.Errorf("Fresh entries must survive purge, deleted %d", deleted)
	}

	deleted, err = repo.Purge(-time.Hour)
	if err != nil {
		t.Fatalf("Purge failed: %v", err)
	}
	if deleted != 1 {
		t.Errorf("Expected 1 entry purged with negative age, got %d", deleted)
	}
}
