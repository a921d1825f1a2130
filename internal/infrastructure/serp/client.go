// Package serp implements the visual search backend client. Every request
// passes through the shared dual-window rate limiter and bumps a
// process-wide call counter used for the end-of-run report.
package serp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"sync/atomic"
	"time"

	"github.com/pricelens/backend/internal/domain"
	"github.com/pricelens/backend/internal/infrastructure/ratelimit"
)

const (
	requestTimeout = 20 * time.Second
	maxAttempts    = 3
	retryBaseDelay = 500 * time.Millisecond
)

// Client handles communication with the visual search API.
type Client struct {
	httpClient *http.Client
	apiKey     string
	baseURL    string
	country    string
	language   string
	limiter    *ratelimit.DualWindow
	calls      atomic.Int64
	debug      bool
}

// NewClient creates a search client sharing the given rate limiter.
func NewClient(apiKey, baseURL, country, language string, limiter *ratelimit.DualWindow) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: requestTimeout},
		apiKey:     apiKey,
		baseURL:    baseURL,
		country:    country,
		language:   language,
		limiter:    limiter,
	}
}

// SetDebug toggles per-request logging.
func (c *Client) SetDebug(debug bool) { c.debug = debug }

// Calls returns the number of API requests issued so far, across all
// goroutines.
func (c *Client) Calls() int64 { return c.calls.Load() }

// SearchByImage runs a pure visual similarity search for an image.
func (c *Client) SearchByImage(ctx context.Context, imageURL string) (*domain.SearchResponse, error) {
	return c.search(ctx, imageURL, "")
}

// SearchByImageWithQuery runs a visual search narrowed by a text query,
// typically a site:-scoped second-pass query.
func (c *Client) SearchByImageWithQuery(ctx context.Context, imageURL, query string) (*domain.SearchResponse, error) {
	return c.search(ctx, imageURL, query)
}

func (c *Client) search(ctx context.Context, imageURL, query string) (*domain.SearchResponse, error) {
	if c.apiKey == "" {
		return nil, domain.ErrMissingCredentials
	}

	params := url.Values{}
	params.Set("engine", "google_lens")
	params.Set("url", imageURL)
	if query != "" {
		params.Set("q", query)
	}
	params.Set("api_key", c.apiKey)
	params.Set("country", c.country)
	params.Set("hl", c.language)
	params.Set("no_cache", "false")

	reqURL := fmt.Sprintf("%s/search?%s", c.baseURL, params.Encode())

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := c.limiter.Acquire(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter: %w", err)
		}

		body, status, err := c.doRequest(ctx, reqURL)
		if err != nil {
			if c.debug {
				log.Printf("[SEARCH] Request error (attempt %d): %v", attempt, err)
			}
			lastErr = fmt.Errorf("%w: %v", domain.ErrSearchFailure, err)
			sleepBackoff(ctx, attempt)
			continue
		}

		if retryableStatus(status) {
			if c.debug {
				log.Printf("[SEARCH] API error (attempt %d) - status: %d", attempt, status)
			}
			lastErr = fmt.Errorf("%w: status %d", domain.ErrSearchFailure, status)
			sleepBackoff(ctx, attempt)
			continue
		}
		if status != http.StatusOK {
			return nil, fmt.Errorf("%w: status %d", domain.ErrSearchFailure, status)
		}

		var resp domain.SearchResponse
		if err := json.Unmarshal(body, &resp); err != nil {
			return nil, fmt.Errorf("failed to decode response: %w", err)
		}
		if c.debug {
			log.Printf("[SEARCH] %d visual matches for %q", len(resp.VisualMatches), imageURL)
		}
		return &resp, nil
	}

	return nil, lastErr
}

func (c *Client) doRequest(ctx context.Context, reqURL string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "pricelens/1.0")

	c.calls.Add(1)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, err
	}
	return body, resp.StatusCode, nil
}

func retryableStatus(status int) bool {
	switch status {
	case http.StatusTooManyRequests, http.StatusInternalServerError,
		http.StatusBadGateway, http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}

// sleepBackoff waits attempt*base between retries, bailing early on
// context cancellation.
func sleepBackoff(ctx context.Context, attempt int) {
	timer := time.NewTimer(time.Duration(attempt) * retryBaseDelay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
