package providers

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/citypulse/citypulse/app/happening"
)

var _ Provider = (*EventFeed)(nil)

// EventFeed adapts RSS/Atom event calendars. The configured URL carries
// a {city} placeholder substituted per query; no credentials required.
type EventFeed struct {
	config  *Config
	fetcher *Fetcher
	parser  *gofeed.Parser
}

func NewEventFeed(config *Config, fetcher *Fetcher) *EventFeed {
	return &EventFeed{
		config:  config,
		fetcher: fetcher,
		parser:  gofeed.NewParser(),
	}
}

func (p *EventFeed) Name() string { return p.config.Name }

func (p *EventFeed) Enabled() bool { return p.config.Settings.Enabled }

func (p *EventFeed) FetchItems(ctx context.Context, q Query) ([]happening.RawItem, error) {
	feedURL := strings.ReplaceAll(p.config.URL, "{city}", url.QueryEscape(strings.ToLower(q.City)))

	data, err := p.fetcher.Get(ctx, feedURL)
	if err != nil {
		return nil, fmt.Errorf("eventfeed fetch failed: %w", err)
	}

	feed, err := p.parser.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("eventfeed parse failed: %w", err)
	}

	items := make([]happening.RawItem, 0, len(feed.Items))
	for _, entry := range feed.Items {
		if len(items) >= p.config.Settings.MaxItems {
			break
		}

		raw := happening.RawItem{
			ExternalID:  coalesce(entry.GUID, entry.Link),
			Source:      p.Name(),
			Title:       entry.Title,
			Description: entry.Description,
			Categories:  mapCategories(entry.Categories),
			City:        q.City,
			URL:         entry.Link,
		}

		// Event calendars publish the happening's own date as the
		// entry date
		if entry.PublishedParsed != nil {
			raw.StartTime = entry.PublishedParsed.Format(time.RFC3339)
		}
		if entry.UpdatedParsed != nil {
			raw.UpdatedAt = entry.UpdatedParsed.Format(time.RFC3339)
		}
		if entry.Image != nil {
			raw.ImageURL = entry.Image.URL
		}

		items = append(items, raw)
	}

	return items, nil
}

// coalesce returns the first non-empty string from the provided values.
func coalesce(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
