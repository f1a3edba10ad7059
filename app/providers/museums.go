package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/citypulse/citypulse/app/happening"
)

var _ Provider = (*Museums)(nil)

// Museums adapts a museums-and-galleries directory API. Entries are
// mostly untimed attractions; temporary exhibitions carry date ranges.
type Museums struct {
	config  *Config
	fetcher *Fetcher
	apiKey  string
}

func NewMuseums(config *Config, fetcher *Fetcher, apiKey string) *Museums {
	return &Museums{config: config, fetcher: fetcher, apiKey: apiKey}
}

func (p *Museums) Name() string { return p.config.Name }

func (p *Museums) Enabled() bool {
	return p.config.Settings.Enabled && p.apiKey != ""
}

type museumPlace struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Summary     string   `json:"summary"`
	Kind        string   `json:"kind"` // museum, gallery, exhibition
	OpensAt     string   `json:"opens_at,omitempty"`
	ClosesAt    string   `json:"closes_at,omitempty"`
	Address     string   `json:"address"`
	City        string   `json:"city"`
	Latitude    *float64 `json:"latitude"`
	Longitude   *float64 `json:"longitude"`
	TicketPrice *float64 `json:"ticket_price"`
	Currency    string   `json:"currency"`
	Website     string   `json:"website"`
	PhotoURL    string   `json:"photo_url"`
	Indoor      *bool    `json:"indoor"`
	UpdatedAt   string   `json:"updated_at"`
	Rating      *float64 `json:"rating"` // [0,1]
}

func (p *Museums) FetchItems(ctx context.Context, q Query) ([]happening.RawItem, error) {
	endpoint, err := url.Parse(p.config.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid provider URL: %w", err)
	}

	params := url.Values{}
	params.Set("city", q.City)
	params.Set("api_key", p.apiKey)
	endpoint.RawQuery = params.Encode()

	data, err := p.fetcher.Get(ctx, endpoint.String())
	if err != nil {
		return nil, fmt.Errorf("museums fetch failed: %w", err)
	}

	var places []museumPlace
	if err := json.Unmarshal(data, &places); err != nil {
		return nil, fmt.Errorf("museums response decode failed: %w", err)
	}

	items := make([]happening.RawItem, 0, len(places))
	for _, place := range places {
		if len(items) >= p.config.Settings.MaxItems {
			break
		}

		category := happening.CategoryAttraction
		if place.Kind == "exhibition" {
			category = happening.CategoryExhibition
		}

		items = append(items, happening.RawItem{
			ExternalID:  place.ID,
			Source:      p.Name(),
			Title:       place.Name,
			Description: place.Summary,
			Categories:  []happening.Category{category},
			StartTime:   place.OpensAt,
			EndTime:     place.ClosesAt,
			Venue:       place.Name,
			Address:     place.Address,
			City:        place.City,
			Latitude:    place.Latitude,
			Longitude:   place.Longitude,
			PriceMin:    place.TicketPrice,
			Currency:    place.Currency,
			URL:         place.Website,
			ImageURL:    place.PhotoURL,
			Indoor:      place.Indoor,
			UpdatedAt:   place.UpdatedAt,
			Popularity:  place.Rating,
		})
	}

	return items, nil
}
