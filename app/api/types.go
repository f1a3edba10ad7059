package api

import (
	"context"

	"github.com/citypulse/citypulse/app/geo"
	"github.com/citypulse/citypulse/app/happening"
	"github.com/citypulse/citypulse/app/providers"
	"github.com/citypulse/citypulse/app/search"
)

// SearchRunner is the query boundary into the aggregation pipeline.
type SearchRunner interface {
	Run(ctx context.Context, req search.Request) (*search.Result, error)
}

type Handler struct {
	aggregator SearchRunner
	registry   *providers.Registry
	version    string
}

// searchParams are the raw query parameters of GET /search.
type searchParams struct {
	City       string `form:"city"`
	Start      string `form:"start"`
	End        string `form:"end"`
	Categories string `form:"categories"`
	Sort       string `form:"sort"`
}

type cityPayload struct {
	Name        string          `json:"name"`
	DisplayName string          `json:"display_name"`
	Country     string          `json:"country"`
	Lat         float64         `json:"lat"`
	Lng         float64         `json:"lng"`
	Timezone    string          `json:"timezone"`
	BoundingBox geo.BoundingBox `json:"bounding_box"`
}

type searchResponse struct {
	City      cityPayload             `json:"city"`
	Count     int                     `json:"count"`
	Items     []happening.ScoredItem  `json:"items"`
	Providers []string                `json:"providers"`
}
