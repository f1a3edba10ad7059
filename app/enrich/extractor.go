// Package enrich fills missing happening descriptions by extracting
// readable text from the happening's own page.
package enrich

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"unicode"

	readability "codeberg.org/readeck/go-readability"

	"github.com/citypulse/citypulse/app/happening"
)

const (
	// maxEnriched bounds the number of network calls per search.
	maxEnriched   = 5
	maxSummaryLen = 400
)

type Extractor struct {
	client    *http.Client
	userAgent string
}

func NewExtractor(client *http.Client, userAgent string) *Extractor {
	return &Extractor{client: client, userAgent: userAgent}
}

// Run fills descriptions for the first few ranked items lacking one.
// Every failure is silent per-item; enrichment never fails a search.
func (e *Extractor) Run(ctx context.Context, items []happening.ScoredItem) {
	enriched := 0
	for i := range items {
		if enriched >= maxEnriched {
			return
		}
		if items[i].Description != "" || items[i].URL == "" {
			continue
		}

		summary, err := e.extract(ctx, items[i].URL)
		if err != nil {
			slog.Debug("Description enrichment failed", "url", items[i].URL, "error", err)
			continue
		}

		items[i].Description = summary
		enriched++
	}
}

func (e *Extractor) extract(ctx context.Context, pageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", pageURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", e.userAgent)

	resp, err := e.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("failed to read page: %w", err)
	}

	article, err := readability.FromReader(strings.NewReader(string(data)), nil)
	if err != nil {
		return "", fmt.Errorf("failed to extract content: %w", err)
	}

	summary := Summarize(article.TextContent, maxSummaryLen)
	if summary == "" {
		return "", fmt.Errorf("no text extracted from %s", pageURL)
	}

	return summary, nil
}

// Summarize collapses whitespace and truncates text at a word boundary.
func Summarize(text string, limit int) string {
	fields := strings.FieldsFunc(text, unicode.IsSpace)
	joined := strings.Join(fields, " ")

	if len(joined) <= limit {
		return joined
	}

	cut := joined[:limit]
	if idx := strings.LastIndex(cut, " "); idx > 0 {
		cut = cut[:idx]
	}
	return cut + "…"
}
