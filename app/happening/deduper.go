package happening

import (
	"log/slog"
	"time"

	"github.com/citypulse/citypulse/app/geo"
	"github.com/citypulse/citypulse/app/textutil"
)

const (
	strongTitleThreshold = 0.90
	weakTitleThreshold   = 0.80
	timeProximity        = 30 * time.Minute
	locationProximityM   = 200.0
)

// Deduper merges near-duplicate normalized items, keeping the most
// informative representative. The pairwise scan is O(n²), which is
// acceptable for result sets capped at a few hundred items.
type Deduper struct{}

func NewDeduper() *Deduper {
	return &Deduper{}
}

// Run returns items with near-duplicates merged, preserving first-seen
// order of surviving representatives.
func (d *Deduper) Run(items []Item) []Item {
	kept := make([]Item, 0, len(items))

	for _, item := range items {
		matched := false

		for i := range kept {
			if !d.isDuplicate(&item, &kept[i]) {
				continue
			}

			if d.moreInformative(&item, &kept[i]) {
				// The incoming item absorbs the representative's slot
				// but the original identifier survives.
				replacement := item
				replacement.ID = kept[i].ID
				kept[i] = replacement
			}

			matched = true
			break
		}

		if !matched {
			kept = append(kept, item)
		}
	}

	if len(kept) < len(items) {
		slog.Debug("Deduplicated items", "before", len(items), "after", len(kept))
	}

	return kept
}

func (d *Deduper) isDuplicate(a, b *Item) bool {
	similarity := textutil.Similarity(a.NormalizedTitle, b.NormalizedTitle)

	if similarity > strongTitleThreshold && d.timeProximate(a, b) {
		return true
	}
	if similarity > weakTitleThreshold && d.locationProximate(a, b) && d.timeProximate(a, b) {
		return true
	}
	return false
}

func (d *Deduper) timeProximate(a, b *Item) bool {
	startA, startB := a.StartAt(), b.StartAt()
	if startA == nil || startB == nil {
		return false
	}

	diff := startA.Sub(*startB)
	if diff < 0 {
		diff = -diff
	}
	return diff < timeProximity
}

func (d *Deduper) locationProximate(a, b *Item) bool {
	if a.Latitude == nil || a.Longitude == nil || b.Latitude == nil || b.Longitude == nil {
		return false
	}
	return geo.Distance(*a.Latitude, *a.Longitude, *b.Latitude, *b.Longitude) < locationProximityM
}

// moreInformative reports whether the incoming item strictly improves on
// the kept representative.
func (d *Deduper) moreInformative(incoming, rep *Item) bool {
	if rep.Description == "" && incoming.Description != "" {
		return true
	}
	if rep.ImageURL == "" && incoming.ImageURL != "" {
		return true
	}
	if incoming.Popularity != nil {
		if rep.Popularity == nil || *incoming.Popularity > *rep.Popularity {
			return true
		}
	}
	return false
}
