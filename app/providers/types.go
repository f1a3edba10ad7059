package providers

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/citypulse/citypulse/app/geo"
	"github.com/citypulse/citypulse/app/happening"
)

// Provider fetches happenings for a city from one external data source.
// FetchItems must return an empty slice (not an error) for no-data
// conditions; errors are reserved for adapter-level failure.
type Provider interface {
	Name() string
	Enabled() bool
	FetchItems(ctx context.Context, q Query) ([]happening.RawItem, error)
}

// Query carries the resolved search parameters handed to each adapter.
type Query struct {
	City  string
	BBox  *geo.BoundingBox
	Start time.Time
	End   time.Time
}

// CacheKey derives the provider-response cache key for this query.
func (q Query) CacheKey(provider string) string {
	return fmt.Sprintf("%s|%s|%s|%s",
		provider,
		strings.ToLower(q.City),
		q.Start.UTC().Format(time.RFC3339),
		q.End.UTC().Format(time.RFC3339))
}

// Configuration types

type Config struct {
	Name     string         // Derived from filename (without .yml extension)
	URL      string         `yaml:"url"`
	Settings ConfigSettings `yaml:"settings"`
}

type ConfigSettings struct {
	Enabled  bool `yaml:"enabled"`
	CacheTTL int  `yaml:"cache_ttl"` // minutes
	Timeout  int  `yaml:"timeout"`   // seconds
	MaxItems int  `yaml:"max_items"`
}

// mapCategory folds a provider's free-form category label onto one of
// the known categories. Unrecognized labels default to event.
func mapCategory(label string) happening.Category {
	l := strings.ToLower(label)
	switch {
	case strings.Contains(l, "exhibit"):
		return happening.CategoryExhibition
	case strings.Contains(l, "museum"), strings.Contains(l, "attraction"), strings.Contains(l, "landmark"), strings.Contains(l, "sight"):
		return happening.CategoryAttraction
	case strings.Contains(l, "seminar"), strings.Contains(l, "lecture"), strings.Contains(l, "talk"), strings.Contains(l, "workshop"), strings.Contains(l, "conference"):
		return happening.CategorySeminar
	case strings.Contains(l, "tour"), strings.Contains(l, "walk"):
		return happening.CategoryTour
	default:
		return happening.CategoryEvent
	}
}

func mapCategories(labels []string) []happening.Category {
	if len(labels) == 0 {
		return []happening.Category{happening.CategoryEvent}
	}

	seen := make(map[happening.Category]bool, len(labels))
	cats := make([]happening.Category, 0, len(labels))
	for _, label := range labels {
		c := mapCategory(label)
		if !seen[c] {
			seen[c] = true
			cats = append(cats, c)
		}
	}
	return cats
}
