package geocoder

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestGeocoder_Resolve(t *testing.T) {
	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		if r.URL.Query().Get("name") != "Berlin" {
			t.Errorf("Unexpected city parameter: %q", r.URL.Query().Get("name"))
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"results":[{"name":"Berlin","latitude":52.52,"longitude":13.405,"timezone":"Europe/Berlin","country":"Germany","admin1":"Berlin"}]}`))
	}))
	defer server.Close()

	g := New(server.URL, "test-agent", 2*time.Second, time.Minute)

	loc, err := g.Resolve(context.Background(), "Berlin")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	if loc.Lat != 52.52 || loc.Lng != 13.405 {
		t.Errorf("Unexpected coordinates: %f, %f", loc.Lat, loc.Lng)
	}
	if loc.Timezone != "Europe/Berlin" {
		t.Errorf("Unexpected timezone: %q", loc.Timezone)
	}
	if loc.DisplayName != "Berlin, Berlin, Germany" {
		t.Errorf("Unexpected display name: %q", loc.DisplayName)
	}
	if loc.BBox.West >= loc.BBox.East || loc.BBox.South >= loc.BBox.North {
		t.Errorf("Degenerate bounding box: %+v", loc.BBox)
	}

	tz := loc.TimezoneLocation()
	if tz.String() != "Europe/Berlin" {
		t.Errorf("Unexpected loaded timezone: %s", tz)
	}
}

func TestGeocoder_CacheHit(t *testing.T) {
	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.Write([]byte(`{"results":[{"name":"Berlin","latitude":52.52,"longitude":13.405,"timezone":"Europe/Berlin","country":"Germany"}]}`))
	}))
	defer server.Close()

	g := New(server.URL, "test-agent", 2*time.Second, time.Minute)

	for _, city := range []string{"Berlin", "berlin", " BERLIN "} {
		if _, err := g.Resolve(context.Background(), city); err != nil {
			t.Fatalf("Resolve(%q) failed: %v", city, err)
		}
	}

	if requests != 1 {
		t.Errorf("Expected 1 upstream request for case-variant lookups, got %d", requests)
	}
}

func TestGeocoder_NotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"results":[]}`))
	}))
	defer server.Close()

	g := New(server.URL, "test-agent", 2*time.Second, time.Minute)

	_, err := g.Resolve(context.Background(), "Atlantis")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestGeocoder_NotFoundNotCached(t *testing.T) {
	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.Write([]byte(`{"results":[]}`))
	}))
	defer server.Close()

	g := New(server.URL, "test-agent", 2*time.Second, time.Minute)

	g.Resolve(context.Background(), "Atlantis")
	g.Resolve(context.Background(), "Atlantis")

	if requests != 2 {
		t.Errorf("Failed lookups must not be cached, got %d requests", requests)
	}
}

func TestLocation_TimezoneFallback(t *testing.T) {
	loc := &Location{Timezone: "Not/AZone"}
	if tz := loc.TimezoneLocation(); tz != time.UTC {
		t.Errorf("Expected UTC fallback, got %s", tz)
	}
}
