// Package search orchestrates the aggregation pipeline: provider
// fan-out, normalization, date filtering, deduplication, and ranking.
package search

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/citypulse/citypulse/app/geocoder"
	"github.com/citypulse/citypulse/app/happening"
	"github.com/citypulse/citypulse/app/providers"
)

// MaxResults caps the number of items returned to the caller.
const MaxResults = 200

// Request is a validated search over one city and date window.
type Request struct {
	City       string
	Window     happening.Window
	Categories []happening.Category
	Strategy   happening.Strategy
}

// Result is the ranked, deduplicated answer for one request.
type Result struct {
	Location  *geocoder.Location
	Total     int
	Items     []happening.ScoredItem
	Providers []string
}

// Enricher fills missing fields on ranked items; optional.
type Enricher interface {
	Run(ctx context.Context, items []happening.ScoredItem)
}

// Geocoder resolves city names; satisfied by geocoder.Geocoder.
type Geocoder interface {
	Resolve(ctx context.Context, city string) (*geocoder.Location, error)
}

// Aggregator fans out to all enabled providers and runs the pipeline
// over the merged result set. The fan-out semaphore is shared across
// requests so unrelated searches compete for the same outbound budget.
type Aggregator struct {
	geocoder   Geocoder
	registry   *providers.Registry
	normalizer *happening.Normalizer
	deduper    *happening.Deduper
	ranker     *happening.Ranker
	enricher   Enricher
	sem        chan struct{}
}

func NewAggregator(g Geocoder, registry *providers.Registry, enricher Enricher, maxConcurrent int) *Aggregator {
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	return &Aggregator{
		geocoder:   g,
		registry:   registry,
		normalizer: happening.NewNormalizer(),
		deduper:    happening.NewDeduper(),
		ranker:     happening.NewRanker(),
		enricher:   enricher,
		sem:        make(chan struct{}, maxConcurrent),
	}
}

// Run executes a search end to end. Provider failures are absorbed;
// only geocoding errors propagate.
func (a *Aggregator) Run(ctx context.Context, req Request) (*Result, error) {
	started := time.Now()

	location, err := a.geocoder.Resolve(ctx, req.City)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve city: %w", err)
	}

	query := providers.Query{
		City:  req.City,
		BBox:  &location.BBox,
		Start: req.Window.Start,
		End:   req.Window.End,
	}

	enabled := a.registry.Enabled()
	raw := a.fetchAll(ctx, enabled, query)

	if len(raw) == 0 {
		slog.Info("No provider data, substituting sample dataset", "city", req.City)
		raw = providers.SampleItems(location.City, req.Window.Start)
	}

	tz := location.TimezoneLocation()
	items := a.normalizer.Run(raw, tz, req.Categories)
	items = happening.FilterByWindow(items, req.Window)
	items = a.deduper.Run(items)

	center := &happening.Center{Lat: location.Lat, Lng: location.Lng}
	scored := a.ranker.Run(items, req.Strategy, center)

	total := len(scored)
	if len(scored) > MaxResults {
		scored = scored[:MaxResults]
	}

	if a.enricher != nil {
		a.enricher.Run(ctx, scored)
	}

	slog.Info("Search completed",
		"city", req.City,
		"providers", len(enabled),
		"raw", len(raw),
		"total", total,
		"returned", len(scored),
		"strategy", string(req.Strategy),
		"duration", time.Since(started).String())

	return &Result{
		Location:  location,
		Total:     total,
		Items:     scored,
		Providers: a.registry.Names(),
	}, nil
}

// fetchAll invokes every enabled provider concurrently, bounded by the
// shared semaphore, and joins before returning. The union preserves
// provider registration order, then each provider's emission order. A
// failing provider contributes zero items and never aborts the search.
func (a *Aggregator) fetchAll(ctx context.Context, enabled []providers.Provider, query providers.Query) []happening.RawItem {
	results := make([][]happening.RawItem, len(enabled))

	var wg sync.WaitGroup
	for i, provider := range enabled {
		wg.Add(1)
		go func(idx int, p providers.Provider) {
			defer wg.Done()

			select {
			case a.sem <- struct{}{}:
				defer func() { <-a.sem }()
			case <-ctx.Done():
				return
			}

			items, err := p.FetchItems(ctx, query)
			if err != nil {
				slog.Warn("Provider fetch failed", "provider", p.Name(), "city", query.City, "error", err)
				return
			}

			slog.Debug("Provider fetch succeeded", "provider", p.Name(), "items", len(items))
			results[idx] = items
		}(i, provider)
	}
	wg.Wait()

	var union []happening.RawItem
	for _, items := range results {
		union = append(union, items...)
	}
	return union
}
