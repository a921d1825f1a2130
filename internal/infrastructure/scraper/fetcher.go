// Package scraper implements page fetching with retry/backoff and a
// globally capped rendering backend. The rendering service is unstable
// under parallel load, so all rendered fetches across all workers share one
// counting semaphore.
package scraper

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/pricelens/backend/internal/domain"
)

// userAgents are rotated per direct request to look like ordinary browsers.
var userAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:121.0) Gecko/20100101 Firefox/121.0",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.1 Safari/605.1.15",
}

// Config holds fetcher tuning knobs.
type Config struct {
	RenderAPIKey  string
	RenderBaseURL string
	Timeout       time.Duration
	RenderTimeout time.Duration
	MaxRetries    int
	RetryDelay    time.Duration
	// RenderParallel caps concurrent calls to the rendering backend.
	RenderParallel int64
	// MinRenderBytes rejects rendered responses too small to be a real page.
	MinRenderBytes int
}

// Fetcher retrieves page documents. Direct fetches retry transient
// failures with multiplicative backoff; rendered fetches additionally hold
// a shared semaphore for the duration of the network call only, so backoff
// sleeps never occupy a concurrency slot.
type Fetcher struct {
	httpClient     *http.Client
	renderClient   *http.Client
	renderKey      string
	renderBase     string
	maxRetries     int
	retryDelay     time.Duration
	sem            *semaphore.Weighted
	minRenderBytes int
}

// NewFetcher creates a fetcher from config, applying defaults for unset
// fields.
func NewFetcher(cfg Config) *Fetcher {
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.RenderTimeout == 0 {
		cfg.RenderTimeout = 60 * time.Second
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = 2 * time.Second
	}
	if cfg.RenderParallel <= 0 {
		cfg.RenderParallel = 3
	}
	if cfg.MinRenderBytes <= 0 {
		cfg.MinRenderBytes = 5000
	}
	return &Fetcher{
		httpClient:     &http.Client{Timeout: cfg.Timeout},
		renderClient:   &http.Client{Timeout: cfg.RenderTimeout},
		renderKey:      cfg.RenderAPIKey,
		renderBase:     cfg.RenderBaseURL,
		maxRetries:     cfg.MaxRetries,
		retryDelay:     cfg.RetryDelay,
		sem:            semaphore.NewWeighted(cfg.RenderParallel),
		minRenderBytes: cfg.MinRenderBytes,
	}
}

// Fetch retrieves a page directly with a rotating User-Agent. Transient
// failures (transport errors, 429/5xx) are retried with backoff doubling
// each attempt; other client errors fail immediately.
func (f *Fetcher) Fetch(ctx context.Context, pageURL string) (string, error) {
	pageURL = encodeSpaces(pageURL)

	var lastErr error
	delay := f.retryDelay
	for attempt := 1; attempt <= f.maxRetries; attempt++ {
		body, err := f.doFetch(ctx, f.httpClient, pageURL, randomUserAgent())
		if err == nil {
			return body, nil
		}
		if !retryable(err) {
			return "", err
		}
		lastErr = err
		if attempt < f.maxRetries {
			if err := sleepCtx(ctx, delay); err != nil {
				return "", err
			}
			delay *= 2
		}
	}
	return "", fmt.Errorf("%w: %v", domain.ErrFetchFailure, lastErr)
}

// FetchRendered retrieves a page through the JS-rendering backend. The
// shared semaphore is acquired for the network call itself and released
// before any backoff sleep. A response below the minimum plausible size is
// treated like a transient failure and retried with linear backoff.
func (f *Fetcher) FetchRendered(ctx context.Context, pageURL string) (string, error) {
	if f.renderKey == "" {
		return "", domain.ErrMissingCredentials
	}

	params := url.Values{}
	params.Set("api_key", f.renderKey)
	params.Set("url", pageURL)
	params.Set("render", "true")
	reqURL := fmt.Sprintf("%s/?%s", strings.TrimSuffix(f.renderBase, "/"), params.Encode())

	var lastErr error
	for attempt := 1; attempt <= f.maxRetries; attempt++ {
		body, err := f.renderOnce(ctx, reqURL)
		if err == nil {
			return body, nil
		}
		if !retryable(err) {
			return "", err
		}
		lastErr = err
		if attempt < f.maxRetries {
			if err := sleepCtx(ctx, time.Duration(attempt)*f.retryDelay); err != nil {
				return "", err
			}
		}
	}
	return "", fmt.Errorf("%w: %v", domain.ErrFetchFailure, lastErr)
}

// renderOnce performs one semaphore-gated render call. Release happens on
// every exit path so a failed call never leaks a slot.
func (f *Fetcher) renderOnce(ctx context.Context, reqURL string) (string, error) {
	if err := f.sem.Acquire(ctx, 1); err != nil {
		return "", err
	}
	defer f.sem.Release(1)

	body, err := f.doFetch(ctx, f.renderClient, reqURL, "")
	if err != nil {
		return "", err
	}
	if len(body) < f.minRenderBytes {
		return "", fmt.Errorf("%w: %d bytes", domain.ErrContentTooSmall, len(body))
	}
	return body, nil
}

func (f *Fetcher) doFetch(ctx context.Context, client *http.Client, reqURL, userAgent string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	if userAgent != "" {
		req.Header.Set("User-Agent", userAgent)
	}

	resp, err := client.Do(req)
	if err != nil {
		return "", &transientError{err}
	}
	defer resp.Body.Close()

	if retryableStatus(resp.StatusCode) {
		return "", &transientError{fmt.Errorf("status %d", resp.StatusCode)}
	}
	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("%w: status %d", domain.ErrFetchFailure, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &transientError{err}
	}
	return string(body), nil
}

// transientError marks failures eligible for retry.
type transientError struct{ err error }

func (e *transientError) Error() string { return e.err.Error() }
func (e *transientError) Unwrap() error { return e.err }

func retryable(err error) bool {
	var te *transientError
	if errors.As(err, &te) {
		return true
	}
	return errors.Is(err, domain.ErrContentTooSmall)
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

// encodeSpaces percent-encodes literal spaces, which some storefront links
// carry in their paths. Re-serializing through url.URL escapes them.
func encodeSpaces(raw string) string {
	if !strings.Contains(raw, " ") {
		return raw
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return strings.ReplaceAll(raw, " ", "%20")
	}
	return parsed.String()
}

func randomUserAgent() string {
	return userAgents[rand.Intn(len(userAgents))]
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
