package happening

import (
	"time"

	"github.com/araddon/dateparse"
)

// Category classifies a happening.
type Category string

const (
	CategoryEvent      Category = "event"
	CategoryExhibition Category = "exhibition"
	CategoryAttraction Category = "attraction"
	CategorySeminar    Category = "seminar"
	CategoryTour       Category = "tour"
)

// Categories lists all known categories in presentation order.
var Categories = []Category{
	CategoryEvent,
	CategoryExhibition,
	CategoryAttraction,
	CategorySeminar,
	CategoryTour,
}

// ValidCategory reports whether s names a known category.
func ValidCategory(s string) bool {
	for _, c := range Categories {
		if string(c) == s {
			return true
		}
	}
	return false
}

// RawItem is an unnormalized record as emitted by a provider adapter.
// Timestamps are ISO-8601 strings in the provider's local convention.
type RawItem struct {
	ExternalID  string     `json:"external_id"`
	Source      string     `json:"source"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Categories  []Category `json:"categories"`

	StartTime string `json:"start_time,omitempty"`
	EndTime   string `json:"end_time,omitempty"`
	Timezone  string `json:"timezone,omitempty"`

	Venue     string   `json:"venue,omitempty"`
	Address   string   `json:"address,omitempty"`
	City      string   `json:"city,omitempty"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`

	PriceMin *float64 `json:"price_min,omitempty"`
	PriceMax *float64 `json:"price_max,omitempty"`
	Currency string   `json:"currency,omitempty"`

	URL      string   `json:"url"`
	ImageURL string   `json:"image_url,omitempty"`
	Tags     []string `json:"tags,omitempty"`

	FamilyFriendly *bool  `json:"family_friendly,omitempty"`
	Indoor         *bool  `json:"indoor,omitempty"`
	Language       string `json:"language,omitempty"`

	UpdatedAt  string   `json:"updated_at,omitempty"`
	Popularity *float64 `json:"popularity,omitempty"`
	Attendees  *int     `json:"attendees,omitempty"`
}

// HasCategory reports whether the item carries the given category tag.
func (r *RawItem) HasCategory(c Category) bool {
	for _, tag := range r.Categories {
		if tag == c {
			return true
		}
	}
	return false
}

// Item is a normalized happening with a stable identifier and a
// comparison-ready title key.
type Item struct {
	RawItem

	ID              string `json:"id"`
	NormalizedTitle string `json:"-"`
}

// StartAt returns the parsed start time, or nil if absent or unparseable.
func (i *Item) StartAt() *time.Time {
	return parseTime(i.StartTime)
}

// EndAt returns the parsed end time, or nil if absent or unparseable.
func (i *Item) EndAt() *time.Time {
	return parseTime(i.EndTime)
}

// ScoredItem is an Item annotated with a ranking score. Scores are only
// meaningful relative to other items ranked in the same pass.
type ScoredItem struct {
	Item
	Score float64 `json:"score"`
}

func parseTime(s string) *time.Time {
	if s == "" {
		return nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return &t
	}
	if t, err := dateparse.ParseAny(s); err == nil {
		return &t
	}
	return nil
}
