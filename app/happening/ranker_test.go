package happening

import (
	"testing"
	"time"
)

var rankNow = time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)

func newTestRanker() *Ranker {
	r := NewRanker()
	r.now = func() time.Time { return rankNow }
	return r
}

func intPtr(i int) *int { return &i }

func TestRanker_PreservesSet(t *testing.T) {
	items := normalized(t,
		RawItem{ExternalID: "1", Source: "s", Title: "A", Categories: []Category{CategoryEvent}, Popularity: floatPtr(0.1)},
		RawItem{ExternalID: "2", Source: "s", Title: "B", Categories: []Category{CategoryEvent}, Popularity: floatPtr(0.9)},
		RawItem{ExternalID: "3", Source: "s", Title: "C", Categories: []Category{CategoryEvent}},
	)

	scored := newTestRanker().Run(items, StrategyRecommended, nil)

	if len(scored) != len(items) {
		t.Fatalf("Ranker dropped items: %d != %d", len(scored), len(items))
	}

	before := make(map[string]int)
	for _, item := range items {
		before[item.ID]++
	}
	for _, s := range scored {
		before[s.ID]--
	}
	for id, count := range before {
		if count != 0 {
			t.Errorf("Identifier multiset changed for %s (delta %d)", id, count)
		}
	}
}

func TestRanker_SortedDescending(t *testing.T) {
	items := normalized(t,
		RawItem{ExternalID: "1", Source: "s", Title: "A", Categories: []Category{CategoryEvent}, Popularity: floatPtr(0.2)},
		RawItem{ExternalID: "2", Source: "s", Title: "B", Categories: []Category{CategoryEvent}, Popularity: floatPtr(0.8)},
		RawItem{ExternalID: "3", Source: "s", Title: "C", Categories: []Category{CategoryEvent}, Popularity: floatPtr(0.5)},
	)

	scored := newTestRanker().Run(items, StrategyRecommended, nil)

	for i := 1; i < len(scored); i++ {
		if scored[i].Score > scored[i-1].Score {
			t.Errorf("Scores not descending at %d: %f > %f", i, scored[i].Score, scored[i-1].Score)
		}
	}
}

func TestRanker_RecommendedPopularityMonotonic(t *testing.T) {
	base := RawItem{
		Source:     "s",
		Title:      "Jazz Night",
		Categories: []Category{CategoryEvent},
		StartTime:  rankNow.Add(48 * time.Hour).Format(time.RFC3339),
		UpdatedAt:  rankNow.Add(-2 * time.Hour).Format(time.RFC3339),
	}

	low := base
	low.ExternalID = "low"
	low.Popularity = floatPtr(0.2)

	high := base
	high.ExternalID = "high"
	high.Popularity = floatPtr(0.8)

	items := normalized(t, low, high)
	scored := newTestRanker().Run(items, StrategyRecommended, nil)

	if scored[0].ExternalID != "high" {
		t.Fatalf("Expected high-popularity item first, got %s", scored[0].ExternalID)
	}
	if scored[0].Score <= scored[1].Score {
		t.Errorf("Expected strictly greater score, got %f vs %f", scored[0].Score, scored[1].Score)
	}
}

func TestRanker_Soonest(t *testing.T) {
	items := normalized(t,
		RawItem{ExternalID: "later", Source: "s", Title: "A", Categories: []Category{CategoryEvent}, StartTime: rankNow.Add(72 * time.Hour).Format(time.RFC3339)},
		RawItem{ExternalID: "sooner", Source: "s", Title: "B", Categories: []Category{CategoryEvent}, StartTime: rankNow.Add(2 * time.Hour).Format(time.RFC3339)},
		RawItem{ExternalID: "untimed", Source: "s", Title: "C", Categories: []Category{CategoryAttraction}},
	)

	scored := newTestRanker().Run(items, StrategySoonest, nil)

	if scored[0].ExternalID != "sooner" {
		t.Errorf("Expected soonest item first, got %s", scored[0].ExternalID)
	}
	if scored[2].ExternalID != "untimed" || scored[2].Score != 0 {
		t.Errorf("Untimed item should score 0 and sort last, got %s with %f", scored[2].ExternalID, scored[2].Score)
	}
}

func TestRanker_Closest(t *testing.T) {
	center := &Center{Lat: 40.0, Lng: -73.0}

	items := normalized(t,
		RawItem{ExternalID: "far", Source: "s", Title: "A", Categories: []Category{CategoryEvent}, Latitude: floatPtr(41.0), Longitude: floatPtr(-73.0)},
		RawItem{ExternalID: "near", Source: "s", Title: "B", Categories: []Category{CategoryEvent}, Latitude: floatPtr(40.001), Longitude: floatPtr(-73.0)},
		RawItem{ExternalID: "nowhere", Source: "s", Title: "C", Categories: []Category{CategoryEvent}},
	)

	scored := newTestRanker().Run(items, StrategyClosest, center)

	if scored[0].ExternalID != "near" {
		t.Errorf("Expected nearest item first, got %s", scored[0].ExternalID)
	}
	if scored[2].ExternalID != "nowhere" || scored[2].Score != 0 {
		t.Errorf("Item without coordinates should score 0, got %s with %f", scored[2].ExternalID, scored[2].Score)
	}
}

func TestRanker_Price(t *testing.T) {
	items := normalized(t,
		RawItem{ExternalID: "pricey", Source: "s", Title: "A", Categories: []Category{CategoryEvent}, PriceMin: floatPtr(50)},
		RawItem{ExternalID: "cheap", Source: "s", Title: "B", Categories: []Category{CategoryEvent}, PriceMin: floatPtr(5)},
		RawItem{ExternalID: "free", Source: "s", Title: "C", Categories: []Category{CategoryEvent}},
	)

	scored := newTestRanker().Run(items, StrategyPrice, nil)

	if scored[0].ExternalID != "free" || scored[0].Score != 1 {
		t.Errorf("Unpriced item should score maximal 1, got %s with %f", scored[0].ExternalID, scored[0].Score)
	}
	if scored[1].ExternalID != "cheap" {
		t.Errorf("Expected cheap before pricey, got %s", scored[1].ExternalID)
	}
}

func TestParseStrategy(t *testing.T) {
	if s, ok := ParseStrategy(""); !ok || s != StrategyRecommended {
		t.Errorf("Empty strategy should default to recommended, got %q (%v)", s, ok)
	}
	if _, ok := ParseStrategy("bogus"); ok {
		t.Error("Unknown strategy should be rejected")
	}
	if s, ok := ParseStrategy("price"); !ok || s != StrategyPrice {
		t.Errorf("Expected price strategy, got %q (%v)", s, ok)
	}
}
