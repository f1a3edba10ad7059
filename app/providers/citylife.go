package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/citypulse/citypulse/app/happening"
)

var _ Provider = (*CityLife)(nil)

// CityLife adapts the CityLife events API, a JSON feed of scheduled
// happenings with venues, prices, and popularity signals.
type CityLife struct {
	config  *Config
	fetcher *Fetcher
	apiKey  string
}

func NewCityLife(config *Config, fetcher *Fetcher, apiKey string) *CityLife {
	return &CityLife{config: config, fetcher: fetcher, apiKey: apiKey}
}

func (p *CityLife) Name() string { return p.config.Name }

func (p *CityLife) Enabled() bool {
	return p.config.Settings.Enabled && p.apiKey != ""
}

type cityLifeEvent struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Description    string   `json:"description"`
	Categories     []string `json:"categories"`
	StartsAt       string   `json:"starts_at"`
	EndsAt         string   `json:"ends_at"`
	Timezone       string   `json:"timezone"`
	Venue          string   `json:"venue"`
	Address        string   `json:"address"`
	City           string   `json:"city"`
	Latitude       *float64 `json:"latitude"`
	Longitude      *float64 `json:"longitude"`
	PriceMin       *float64 `json:"price_min"`
	PriceMax       *float64 `json:"price_max"`
	Currency       string   `json:"currency"`
	URL            string   `json:"url"`
	ImageURL       string   `json:"image_url"`
	Tags           []string `json:"tags"`
	FamilyFriendly *bool    `json:"family_friendly"`
	Indoor         *bool    `json:"indoor"`
	Language       string   `json:"language"`
	UpdatedAt      string   `json:"updated_at"`
	Popularity     *float64 `json:"popularity"`
	AttendeeCount  *int     `json:"attendee_count"`
}

type cityLifeResponse struct {
	Events []cityLifeEvent `json:"events"`
}

func (p *CityLife) FetchItems(ctx context.Context, q Query) ([]happening.RawItem, error) {
	endpoint, err := url.Parse(p.config.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid provider URL: %w", err)
	}

	params := url.Values{}
	params.Set("city", q.City)
	params.Set("start", q.Start.UTC().Format(time.RFC3339))
	params.Set("end", q.End.UTC().Format(time.RFC3339))
	params.Set("api_key", p.apiKey)
	if q.BBox != nil {
		params.Set("bbox", fmt.Sprintf("%f,%f,%f,%f", q.BBox.West, q.BBox.South, q.BBox.East, q.BBox.North))
	}
	endpoint.RawQuery = params.Encode()

	data, err := p.fetcher.Get(ctx, endpoint.String())
	if err != nil {
		return nil, fmt.Errorf("citylife fetch failed: %w", err)
	}

	var resp cityLifeResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("citylife response decode failed: %w", err)
	}

	items := make([]happening.RawItem, 0, len(resp.Events))
	for _, e := range resp.Events {
		if len(items) >= p.config.Settings.MaxItems {
			break
		}

		items = append(items, happening.RawItem{
			ExternalID:     e.ID,
			Source:         p.Name(),
			Title:          e.Name,
			Description:    e.Description,
			Categories:     mapCategories(e.Categories),
			StartTime:      e.StartsAt,
			EndTime:        e.EndsAt,
			Timezone:       e.Timezone,
			Venue:          e.Venue,
			Address:        e.Address,
			City:           e.City,
			Latitude:       e.Latitude,
			Longitude:      e.Longitude,
			PriceMin:       e.PriceMin,
			PriceMax:       e.PriceMax,
			Currency:       e.Currency,
			URL:            e.URL,
			ImageURL:       e.ImageURL,
			Tags:           e.Tags,
			FamilyFriendly: e.FamilyFriendly,
			Indoor:         e.Indoor,
			Language:       e.Language,
			UpdatedAt:      e.UpdatedAt,
			Popularity:     e.Popularity,
			Attendees:      e.AttendeeCount,
		})
	}

	return items, nil
}
