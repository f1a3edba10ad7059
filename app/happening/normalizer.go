package happening

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	"github.com/araddon/dateparse"
	"github.com/citypulse/citypulse/app/textutil"
)

// Normalizer converts raw provider records into the canonical Item shape.
type Normalizer struct {
	now func() time.Time
}

func NewNormalizer() *Normalizer {
	return &Normalizer{now: time.Now}
}

// Run normalizes raw items into the target timezone, dropping items that
// do not match the category filter. A nil or empty filter keeps
// everything. Output order follows input order.
func (n *Normalizer) Run(raw []RawItem, loc *time.Location, categories []Category) []Item {
	items := make([]Item, 0, len(raw))

	for _, r := range raw {
		if !matchesCategories(&r, categories) {
			continue
		}

		item := Item{
			RawItem:         r,
			ID:              generateID(r.Source, r.ExternalID),
			NormalizedTitle: textutil.NormalizeTitle(r.Title),
		}

		item.StartTime = n.convertTimestamp(r.StartTime, r.Timezone, loc)
		item.EndTime = n.convertTimestamp(r.EndTime, r.Timezone, loc)

		if item.UpdatedAt == "" {
			item.UpdatedAt = n.now().UTC().Format(time.RFC3339)
		}

		items = append(items, item)
	}

	return items
}

// generateID derives a stable identifier from source and external ID
// only. The digest is truncated to 16 hex characters; collisions are
// tolerated at per-search scope.
func generateID(source, externalID string) string {
	hash := sha256.Sum256([]byte(fmt.Sprintf("%s:%s", source, externalID)))
	return hex.EncodeToString(hash[:])[:16]
}

// convertTimestamp reinterprets ts in the item's own timezone and
// re-expresses it in the target timezone. On any parse failure the
// original string is kept unchanged.
func (n *Normalizer) convertTimestamp(ts, itemTZ string, loc *time.Location) string {
	if ts == "" || loc == nil {
		return ts
	}
	if itemTZ == "" || itemTZ == loc.String() {
		return ts
	}

	itemLoc, err := time.LoadLocation(itemTZ)
	if err != nil {
		slog.Debug("Unknown item timezone, keeping original timestamp", "timezone", itemTZ, "timestamp", ts)
		return ts
	}

	parsed, err := time.Parse(time.RFC3339, ts)
	if err != nil {
		// Provider-local timestamps often omit the offset entirely
		parsed, err = dateparse.ParseIn(ts, itemLoc)
		if err != nil {
			slog.Debug("Unparseable timestamp, keeping original", "timestamp", ts, "error", err)
			return ts
		}
	}

	return parsed.In(loc).Format(time.RFC3339)
}

func matchesCategories(r *RawItem, categories []Category) bool {
	if len(categories) == 0 {
		return true
	}
	for _, want := range categories {
		if r.HasCategory(want) {
			return true
		}
	}
	return false
}
