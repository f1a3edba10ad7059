// Package geocoder resolves city names to coordinates, timezone, and a
// derived bounding box, with an in-process TTL cache.
package geocoder

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/citypulse/citypulse/app/geo"
)

// ErrNotFound indicates the geocoding service had no match for the city.
var ErrNotFound = errors.New("city not found")

// Bounding boxes are derived from the resolved center point since the
// geocoding endpoint returns no extent.
const boxDelta = 0.25

// Location is a resolved city.
type Location struct {
	Lat         float64         `json:"lat"`
	Lng         float64         `json:"lng"`
	BBox        geo.BoundingBox `json:"bounding_box"`
	Timezone    string          `json:"timezone"`
	DisplayName string          `json:"display_name"`
	City        string          `json:"city"`
	Country     string          `json:"country"`
}

// TimezoneLocation loads the IANA timezone of the resolved location,
// falling back to UTC when it cannot be loaded.
func (l *Location) TimezoneLocation() *time.Location {
	if l.Timezone != "" {
		if loc, err := time.LoadLocation(l.Timezone); err == nil {
			return loc
		}
		slog.Debug("Unknown geocoder timezone, falling back to UTC", "timezone", l.Timezone)
	}
	return time.UTC
}

// Geocoder resolves city names against an open-meteo style geocoding
// endpoint and caches results by lowercased city name.
type Geocoder struct {
	endpoint  string
	client    *http.Client
	userAgent string
	cache     *lru.LRU[string, *Location]
}

func New(endpoint, userAgent string, timeout time.Duration, cacheTTL time.Duration) *Geocoder {
	return &Geocoder{
		endpoint:  endpoint,
		client:    &http.Client{Timeout: timeout},
		userAgent: userAgent,
		cache:     lru.NewLRU[string, *Location](512, nil, cacheTTL),
	}
}

type geocodeResult struct {
	Name        string  `json:"name"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	Timezone    string  `json:"timezone"`
	Country     string  `json:"country"`
	Admin1      string  `json:"admin1"`
	CountryCode string  `json:"country_code"`
}

type geocodeResponse struct {
	Results []geocodeResult `json:"results"`
}

// Resolve returns the location for a city name, consulting the cache
// first. Unresolvable cities yield ErrNotFound.
func (g *Geocoder) Resolve(ctx context.Context, city string) (*Location, error) {
	key := strings.ToLower(strings.TrimSpace(city))

	if loc, ok := g.cache.Get(key); ok {
		return loc, nil
	}

	loc, err := g.lookup(ctx, city)
	if err != nil {
		return nil, err
	}

	g.cache.Add(key, loc)
	return loc, nil
}

func (g *Geocoder) lookup(ctx context.Context, city string) (*Location, error) {
	endpoint, err := url.Parse(g.endpoint)
	if err != nil {
		return nil, fmt.Errorf("invalid geocoder endpoint: %w", err)
	}

	params := url.Values{}
	params.Set("name", city)
	params.Set("count", "1")
	params.Set("format", "json")
	endpoint.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, "GET", endpoint.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create geocoding request: %w", err)
	}
	req.Header.Set("User-Agent", g.userAgent)

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("geocoding request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("geocoding HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read geocoding response: %w", err)
	}

	var decoded geocodeResponse
	if err := json.Unmarshal(data, &decoded); err != nil {
		return nil, fmt.Errorf("failed to decode geocoding response: %w", err)
	}

	if len(decoded.Results) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, city)
	}

	r := decoded.Results[0]
	displayName := r.Name
	if r.Admin1 != "" {
		displayName = fmt.Sprintf("%s, %s", r.Name, r.Admin1)
	}
	if r.Country != "" {
		displayName = fmt.Sprintf("%s, %s", displayName, r.Country)
	}

	return &Location{
		Lat:         r.Latitude,
		Lng:         r.Longitude,
		BBox:        geo.BoxAround(r.Latitude, r.Longitude, boxDelta),
		Timezone:    r.Timezone,
		DisplayName: displayName,
		City:        r.Name,
		Country:     r.Country,
	}, nil
}
