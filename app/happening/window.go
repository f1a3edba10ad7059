package happening

import "time"

// Window is an inclusive query time range.
type Window struct {
	Start time.Time
	End   time.Time
}

// FilterByWindow retains items overlapping the inclusive [start, end]
// window. Untimed items tagged as attractions are treated as perpetually
// available and always retained; untimed items without the attraction
// tag are dropped.
func FilterByWindow(items []Item, window Window) []Item {
	filtered := make([]Item, 0, len(items))

	for _, item := range items {
		itemStart := item.StartAt()

		if itemStart == nil {
			if item.HasCategory(CategoryAttraction) {
				filtered = append(filtered, item)
			}
			continue
		}

		itemEnd := item.EndAt()
		if itemEnd == nil {
			itemEnd = itemStart
		}

		if !itemStart.After(window.End) && !itemEnd.Before(window.Start) {
			filtered = append(filtered, item)
		}
	}

	return filtered
}
