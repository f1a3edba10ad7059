package providers

import (
	"fmt"
	"time"

	"github.com/citypulse/citypulse/app/happening"
)

// SampleItems is the built-in placeholder dataset substituted when the
// combined provider fetch yields nothing, so downstream stages and the
// UI stay exercised. Times are anchored to the query window start.
func SampleItems(city string, anchor time.Time) []happening.RawItem {
	evening := time.Date(anchor.Year(), anchor.Month(), anchor.Day(), 19, 0, 0, 0, anchor.Location()).Add(24 * time.Hour)
	pop := func(f float64) *float64 { return &f }
	price := func(f float64) *float64 { return &f }

	return []happening.RawItem{
		{
			ExternalID:  "sample-jazz",
			Source:      "sample",
			Title:       fmt.Sprintf("Jazz Evening in %s", city),
			Description: "An intimate live jazz session with a rotating lineup of local musicians.",
			Categories:  []happening.Category{happening.CategoryEvent},
			StartTime:   evening.Format(time.RFC3339),
			Venue:       "Blue Door Club",
			City:        city,
			PriceMin:    price(15),
			Currency:    "EUR",
			URL:         "https://example.org/sample/jazz-evening",
			Popularity:  pop(0.7),
		},
		{
			ExternalID:  "sample-museum",
			Source:      "sample",
			Title:       fmt.Sprintf("%s City Museum", city),
			Description: "Permanent collection covering the city's history from its founding to today.",
			Categories:  []happening.Category{happening.CategoryAttraction},
			Venue:       fmt.Sprintf("%s City Museum", city),
			City:        city,
			URL:         "https://example.org/sample/city-museum",
			Popularity:  pop(0.6),
		},
		{
			ExternalID:  "sample-walk",
			Source:      "sample",
			Title:       "Old Town Walking Tour",
			Description: "Two-hour guided walk through the historic center.",
			Categories:  []happening.Category{happening.CategoryTour},
			StartTime:   evening.Add(-8 * time.Hour).Format(time.RFC3339),
			City:        city,
			PriceMin:    price(0),
			URL:         "https://example.org/sample/walking-tour",
			Popularity:  pop(0.5),
		},
		{
			ExternalID:  "sample-exhibit",
			Source:      "sample",
			Title:       "Light & Shadow Photography Exhibition",
			Description: "Contemporary photography from emerging artists.",
			Categories:  []happening.Category{happening.CategoryExhibition},
			StartTime:   evening.Add(-5 * time.Hour).Format(time.RFC3339),
			EndTime:     evening.Add(72 * time.Hour).Format(time.RFC3339),
			City:        city,
			URL:         "https://example.org/sample/light-and-shadow",
			Popularity:  pop(0.4),
		},
		{
			ExternalID: "sample-seminar",
			Source:     "sample",
			Title:      "Urban Futures Seminar",
			Categories: []happening.Category{happening.CategorySeminar},
			StartTime:  evening.Add(48 * time.Hour).Format(time.RFC3339),
			City:       city,
			PriceMin:   price(0),
			URL:        "https://example.org/sample/urban-futures",
		},
	}
}
