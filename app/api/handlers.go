package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/citypulse/citypulse/app/geocoder"
	"github.com/citypulse/citypulse/app/happening"
	"github.com/citypulse/citypulse/app/providers"
	"github.com/citypulse/citypulse/app/search"
)

// maxWindowDays bounds the requested date range.
const maxWindowDays = 60

func NewHandler(aggregator SearchRunner, registry *providers.Registry, version string) *Handler {
	return &Handler{
		aggregator: aggregator,
		registry:   registry,
		version:    version,
	}
}

func (h *Handler) GetSearch(c *gin.Context) {
	var params searchParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters"})
		return
	}

	req, fields := validateSearch(params)
	if len(fields) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":  "Validation failed",
			"fields": fields,
		})
		return
	}

	result, err := h.aggregator.Run(c.Request.Context(), *req)
	if err != nil {
		if errors.Is(err, geocoder.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "City not found", "city": req.City})
			return
		}
		slog.Error("Search failed", "city", req.City, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, searchResponse{
		City: cityPayload{
			Name:        result.Location.City,
			DisplayName: result.Location.DisplayName,
			Country:     result.Location.Country,
			Lat:         result.Location.Lat,
			Lng:         result.Location.Lng,
			Timezone:    result.Location.Timezone,
			BoundingBox: result.Location.BBox,
		},
		Count:     result.Total,
		Items:     result.Items,
		Providers: result.Providers,
	})
}

// validateSearch checks all query parameters before any I/O and returns
// field-level detail for everything that is wrong.
func validateSearch(params searchParams) (*search.Request, map[string]string) {
	fields := make(map[string]string)

	city := strings.TrimSpace(params.City)
	if len(city) < 1 || len(city) > 100 {
		fields["city"] = "must be between 1 and 100 characters"
	}

	start, err := time.Parse(time.RFC3339, params.Start)
	if err != nil {
		fields["start"] = "must be an ISO-8601 datetime"
	}
	end, err := time.Parse(time.RFC3339, params.End)
	if err != nil {
		fields["end"] = "must be an ISO-8601 datetime"
	}

	if _, ok := fields["start"]; !ok {
		if _, ok := fields["end"]; !ok {
			if !end.After(start) {
				fields["end"] = "must be after start"
			} else if end.Sub(start) > maxWindowDays*24*time.Hour {
				fields["end"] = "date range must not exceed 60 days"
			}
		}
	}

	var categories []happening.Category
	if params.Categories != "" {
		for _, part := range strings.Split(params.Categories, ",") {
			name := strings.TrimSpace(part)
			if name == "" {
				continue
			}
			if !happening.ValidCategory(name) {
				fields["categories"] = "unknown category: " + name
				break
			}
			categories = append(categories, happening.Category(name))
		}
	}

	strategy, ok := happening.ParseStrategy(params.Sort)
	if !ok {
		fields["sort"] = "unknown sort strategy: " + params.Sort
	}

	if len(fields) > 0 {
		return nil, fields
	}

	return &search.Request{
		City:       city,
		Window:     happening.Window{Start: start, End: end},
		Categories: categories,
		Strategy:   strategy,
	}, nil
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := map[string]interface{}{
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
		"version":   h.version,
		"providers": len(h.registry.Names()),
	}

	c.JSON(http.StatusOK, health)
}

func (h *Handler) APIListProviders(c *gin.Context) {
	names := h.registry.Names()

	providerList := make([]map[string]interface{}, 0, len(names))
	for _, name := range names {
		providerList = append(providerList, map[string]interface{}{
			"name":    name,
			"enabled": true,
		})
	}

	c.JSON(http.StatusOK, map[string]interface{}{
		"providers": providerList,
		"total":     len(providerList),
	})
}
