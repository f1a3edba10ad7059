package providers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/citypulse/citypulse/app/happening"
)

const museumsPayload = `[
	{
		"id": "m-1",
		"name": "Natural History Museum",
		"summary": "Dinosaur skeletons and more",
		"kind": "museum",
		"city": "Berlin",
		"latitude": 52.53,
		"longitude": 13.379,
		"ticket_price": 11.0,
		"currency": "EUR",
		"rating": 0.9
	},
	{
		"id": "m-2",
		"name": "Impressionists on Loan",
		"kind": "exhibition",
		"opens_at": "2025-06-01T09:00:00Z",
		"closes_at": "2025-08-31T18:00:00Z",
		"city": "Berlin"
	}
]`

func TestMuseums_FetchItems(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("api_key") != "museum-key" {
			t.Error("Expected api_key query parameter to be set")
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(museumsPayload))
	}))
	defer server.Close()

	config := &Config{
		Name: "museums",
		URL:  server.URL,
		Settings: ConfigSettings{
			Enabled:  true,
			MaxItems: 100,
		},
	}
	provider := NewMuseums(config, newTestFetcher(), "museum-key")

	items, err := provider.FetchItems(context.Background(), testQuery())
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 2 {
		t.Fatalf("Expected 2 items, got %d", len(items))
	}

	museum := items[0]
	if len(museum.Categories) != 1 || museum.Categories[0] != happening.CategoryAttraction {
		t.Errorf("Expected museum to map onto attraction, got %v", museum.Categories)
	}
	if museum.StartTime != "" {
		t.Errorf("Expected untimed attraction, got start %q", museum.StartTime)
	}
	if museum.Popularity == nil || *museum.Popularity != 0.9 {
		t.Error("Expected rating to map onto popularity")
	}

	exhibition := items[1]
	if len(exhibition.Categories) != 1 || exhibition.Categories[0] != happening.CategoryExhibition {
		t.Errorf("Expected exhibition category, got %v", exhibition.Categories)
	}
	if exhibition.StartTime != "2025-06-01T09:00:00Z" || exhibition.EndTime != "2025-08-31T18:00:00Z" {
		t.Errorf("Expected exhibition date range, got %q .. %q", exhibition.StartTime, exhibition.EndTime)
	}
}
