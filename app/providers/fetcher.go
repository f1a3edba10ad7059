package providers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"net/http"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"
)

const (
	maxAttempts          = 3
	maxRateLimitAttempts = 5
	backoffBase          = 500 * time.Millisecond
)

// HTTPError is a non-2xx response from a provider endpoint.
type HTTPError struct {
	StatusCode int
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP error: %d %s", e.StatusCode, http.StatusText(e.StatusCode))
}

// retryable reports whether the response class is worth another attempt.
func (e *HTTPError) retryable() bool {
	return e.StatusCode >= 500
}

// Fetcher performs provider HTTP calls with an outbound rate limiter, a
// circuit breaker, and retry with exponential backoff. HTTP 429 gets its
// own attempt budget with jittered backoff; 5xx and transport failures
// share the ordinary budget without jitter.
type Fetcher struct {
	client    *http.Client
	limiter   *rate.Limiter
	breaker   *gobreaker.CircuitBreaker
	userAgent string
	timeout   time.Duration
}

func NewFetcher(name string, timeout time.Duration, userAgent string) *Fetcher {
	return &Fetcher{
		client:    &http.Client{},
		limiter:   rate.NewLimiter(rate.Every(300*time.Millisecond), 2),
		userAgent: userAgent,
		timeout:   timeout,
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    name,
			Timeout: 30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 5
			},
			IsSuccessful: func(err error) bool {
				// Being throttled is not an endpoint failure
				var httpErr *HTTPError
				if errors.As(err, &httpErr) && httpErr.StatusCode == http.StatusTooManyRequests {
					return true
				}
				return err == nil
			},
		}),
	}
}

// Get fetches url, retrying transient failures. The last error is
// returned once the attempt budget is exhausted.
func (f *Fetcher) Get(ctx context.Context, url string) ([]byte, error) {
	attempts := 0
	rateLimitHits := 0

	for {
		if err := f.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter wait: %w", err)
		}

		data, err := f.do(ctx, url)
		if err == nil {
			return data, nil
		}

		var httpErr *HTTPError
		switch {
		case errors.As(err, &httpErr) && httpErr.StatusCode == http.StatusTooManyRequests:
			rateLimitHits++
			if rateLimitHits > maxRateLimitAttempts {
				return nil, fmt.Errorf("rate limit retries exhausted: %w", err)
			}
			delay := f.backoff(rateLimitHits) + time.Duration(rand.Int63n(int64(backoffBase)))
			slog.Debug("Provider throttled, backing off", "url", url, "attempt", rateLimitHits, "delay", delay.String())
			if err := sleep(ctx, delay); err != nil {
				return nil, err
			}

		case errors.As(err, &httpErr) && !httpErr.retryable():
			// Client errors other than 429 are not retried
			return nil, err

		default:
			attempts++
			if attempts >= maxAttempts {
				return nil, fmt.Errorf("retries exhausted after %d attempts: %w", attempts, err)
			}
			delay := f.backoff(attempts)
			slog.Debug("Provider fetch failed, retrying", "url", url, "attempt", attempts, "delay", delay.String(), "error", err)
			if err := sleep(ctx, delay); err != nil {
				return nil, err
			}
		}
	}
}

func (f *Fetcher) do(ctx context.Context, url string) ([]byte, error) {
	result, err := f.breaker.Execute(func() (interface{}, error) {
		timeoutCtx, cancel := context.WithTimeout(ctx, f.timeout)
		defer cancel()

		req, err := http.NewRequestWithContext(timeoutCtx, "GET", url, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}

		req.Header.Set("User-Agent", f.userAgent)
		req.Header.Set("Accept", "application/json, application/xml, text/xml, */*")

		resp, err := f.client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("request failed: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return nil, &HTTPError{StatusCode: resp.StatusCode}
		}

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to read response body: %w", err)
		}

		return data, nil
	})
	if err != nil {
		return nil, err
	}

	return result.([]byte), nil
}

func (f *Fetcher) backoff(attempt int) time.Duration {
	return backoffBase * time.Duration(1<<uint(attempt-1))
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
