package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/citypulse/citypulse/app/happening"
	"github.com/citypulse/citypulse/app/search"
)

// warmWindowDays is the lookahead window kept warm per city.
const warmWindowDays = 7

// RefreshCityTask runs a full search for a city so the provider and
// geocoding caches stay populated for interactive requests.
type RefreshCityTask struct {
	Task
	aggregator *search.Aggregator
}

func NewRefreshCityTask(city string, aggregator *search.Aggregator) *RefreshCityTask {
	return &RefreshCityTask{
		Task:       NewTask(TaskTypeRefreshCity, city),
		aggregator: aggregator,
	}
}

func (t *RefreshCityTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	now := time.Now().UTC()
	req := search.Request{
		City: t.City,
		Window: happening.Window{
			Start: now,
			End:   now.Add(warmWindowDays * 24 * time.Hour),
		},
		Strategy: happening.StrategyRecommended,
	}

	result, err := t.aggregator.Run(ctx, req)
	if err != nil {
		return fmt.Errorf("failed to refresh city: %w", err)
	}

	slog.Info("Task completed",
		"type", "RefreshCity",
		"city", t.City,
		"duration", t.GetDuration().String(),
		"total", result.Total)

	return nil
}
