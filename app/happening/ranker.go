package happening

import (
	"math"
	"sort"
	"time"

	"github.com/citypulse/citypulse/app/geo"
)

// Strategy selects the scoring function applied by the Ranker.
type Strategy string

const (
	StrategyRecommended Strategy = "recommended"
	StrategySoonest     Strategy = "soonest"
	StrategyClosest     Strategy = "closest"
	StrategyPrice       Strategy = "price"
)

// ParseStrategy maps a request string onto a Strategy. Empty input
// selects the default.
func ParseStrategy(s string) (Strategy, bool) {
	switch Strategy(s) {
	case StrategyRecommended, StrategySoonest, StrategyClosest, StrategyPrice:
		return Strategy(s), true
	case "":
		return StrategyRecommended, true
	default:
		return "", false
	}
}

// Center is the geographic reference point for proximity scoring.
type Center struct {
	Lat float64
	Lng float64
}

var categoryWeights = map[Category]float64{
	CategoryEvent:      1.0,
	CategoryExhibition: 1.2,
	CategoryAttraction: 1.1,
	CategorySeminar:    1.3,
	CategoryTour:       1.2,
}

// Ranker scores items under a selectable strategy and sorts them
// descending by score.
type Ranker struct {
	now func() time.Time
}

func NewRanker() *Ranker {
	return &Ranker{now: time.Now}
}

// Run annotates every item with a score and returns them sorted
// descending. No items are dropped; ties keep input order.
func (r *Ranker) Run(items []Item, strategy Strategy, center *Center) []ScoredItem {
	now := r.now()

	scored := make([]ScoredItem, 0, len(items))
	for _, item := range items {
		var score float64
		switch strategy {
		case StrategySoonest:
			score = r.soonestScore(&item, now)
		case StrategyClosest:
			score = r.closestScore(&item, center)
		case StrategyPrice:
			score = r.priceScore(&item)
		default:
			score = r.recommendedScore(&item, now, center)
		}
		scored = append(scored, ScoredItem{Item: item, Score: score})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	return scored
}

func (r *Ranker) soonestScore(item *Item, now time.Time) float64 {
	start := item.StartAt()
	if start == nil {
		return 0
	}
	hoursUntil := start.Sub(now).Hours()
	if hoursUntil < 0 {
		hoursUntil = 0
	}
	return 1 / (1 + hoursUntil)
}

func (r *Ranker) closestScore(item *Item, center *Center) float64 {
	if center == nil || item.Latitude == nil || item.Longitude == nil {
		return 0
	}
	meters := geo.Distance(center.Lat, center.Lng, *item.Latitude, *item.Longitude)
	return 1 / (1 + meters)
}

func (r *Ranker) priceScore(item *Item) float64 {
	if item.PriceMin == nil {
		// No price information is treated as free
		return 1
	}
	return 1 / (1 + *item.PriceMin)
}

// recommendedScore is a weighted sum of independent, individually capped
// sub-scores. No single term can suppress another.
func (r *Ranker) recommendedScore(item *Item, now time.Time, center *Center) float64 {
	var score float64

	if item.Popularity != nil {
		score += *item.Popularity * 30
	}

	if item.Attendees != nil && *item.Attendees > 0 {
		score += math.Min(10, math.Log10(float64(*item.Attendees)+1)*2)
	}

	if updated := parseTime(item.UpdatedAt); updated != nil {
		hoursSince := now.Sub(*updated).Hours()
		if hoursSince < 0 {
			hoursSince = 0
		}
		score += math.Max(0, 20-hoursSince/24)
	}

	if center != nil && item.Latitude != nil && item.Longitude != nil {
		distanceKm := geo.Distance(center.Lat, center.Lng, *item.Latitude, *item.Longitude) / 1000
		score += math.Max(0, 20-distanceKm)
	}

	score += r.completenessScore(item)
	score += r.categoryScore(item)
	score += r.urgencyScore(item, now)

	return score
}

func (r *Ranker) completenessScore(item *Item) float64 {
	var score float64
	if item.Description != "" {
		score += 3
	}
	if item.ImageURL != "" {
		score += 3
	}
	if item.Venue != "" {
		score += 3
	}
	if item.Address != "" {
		score += 3
	}
	if item.PriceMin != nil {
		score += 3
	}
	return score
}

func (r *Ranker) categoryScore(item *Item) float64 {
	var sum float64
	for _, c := range item.Categories {
		if w, ok := categoryWeights[c]; ok {
			sum += w
		} else {
			sum += 1
		}
	}
	return math.Min(10, sum*2)
}

func (r *Ranker) urgencyScore(item *Item, now time.Time) float64 {
	start := item.StartAt()
	if start == nil {
		return 0
	}

	daysUntil := start.Sub(now).Hours() / 24
	switch {
	case daysUntil < 0:
		return 0
	case daysUntil <= 1:
		return 5
	case daysUntil <= 3:
		return 3
	case daysUntil <= 7:
		return 1
	default:
		return 0
	}
}
