package scraper

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pricelens/backend/internal/domain"
)

func fastConfig() Config {
	return Config{
		RenderAPIKey:  "render-key",
		RetryDelay:    time.Millisecond,
		Timeout:       5 * time.Second,
		RenderTimeout: 5 * time.Second,
	}
}

func TestFetch(t *testing.T) {
	t.Run("returns page body on success", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.NotEmpty(t, r.Header.Get("User-Agent"))
			w.Write([]byte("<html>product page</html>"))
		}))
		defer server.Close()

		f := NewFetcher(fastConfig())
		body, err := f.Fetch(context.Background(), server.URL)

		require.NoError(t, err)
		assert.Contains(t, body, "product page")
	})

	t.Run("retries transient errors then succeeds", func(t *testing.T) {
		var hits atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if hits.Add(1) < 3 {
				w.WriteHeader(http.StatusTooManyRequests)
				return
			}
			w.Write([]byte("ok"))
		}))
		defer server.Close()

		f := NewFetcher(fastConfig())
		body, err := f.Fetch(context.Background(), server.URL)

		require.NoError(t, err)
		assert.Equal(t, "ok", body)
		assert.Equal(t, int32(3), hits.Load())
	})

	t.Run("client errors fail without retry", func(t *testing.T) {
		var hits atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hits.Add(1)
			w.WriteHeader(http.StatusNotFound)
		}))
		defer server.Close()

		f := NewFetcher(fastConfig())
		_, err := f.Fetch(context.Background(), server.URL)

		assert.ErrorIs(t, err, domain.ErrFetchFailure)
		assert.Equal(t, int32(1), hits.Load())
	})

	t.Run("exhausted retries surface fetch failure", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer server.Close()

		f := NewFetcher(fastConfig())
		_, err := f.Fetch(context.Background(), server.URL)

		assert.ErrorIs(t, err, domain.ErrFetchFailure)
	})
}

func TestFetchRendered(t *testing.T) {
	bigPage := "<html>" + strings.Repeat("x", 6000) + "</html>"

	t.Run("passes URL and render flag to the backend", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "render-key", r.URL.Query().Get("api_key"))
			assert.Equal(t, "true", r.URL.Query().Get("render"))
			assert.Equal(t, "https://www.slikk.club/product/123", r.URL.Query().Get("url"))
			w.Write([]byte(bigPage))
		}))
		defer server.Close()

		cfg := fastConfig()
		cfg.RenderBaseURL = server.URL
		f := NewFetcher(cfg)

		body, err := f.FetchRendered(context.Background(), "https://www.slikk.club/product/123")
		require.NoError(t, err)
		assert.Equal(t, bigPage, body)
	})

	t.Run("missing render key fails fast", func(t *testing.T) {
		cfg := fastConfig()
		cfg.RenderAPIKey = ""
		f := NewFetcher(cfg)

		_, err := f.FetchRendered(context.Background(), "https://www.slikk.club/product/123")
		assert.ErrorIs(t, err, domain.ErrMissingCredentials)
	})

	t.Run("undersized responses are retried", func(t *testing.T) {
		var hits atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if hits.Add(1) < 2 {
				w.Write([]byte("<html>blocked</html>"))
				return
			}
			w.Write([]byte(bigPage))
		}))
		defer server.Close()

		cfg := fastConfig()
		cfg.RenderBaseURL = server.URL
		f := NewFetcher(cfg)

		body, err := f.FetchRendered(context.Background(), "https://www.slikk.club/product/123")
		require.NoError(t, err)
		assert.Equal(t, bigPage, body)
		assert.Equal(t, int32(2), hits.Load())
	})

	t.Run("persistently undersized responses fail", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("tiny"))
		}))
		defer server.Close()

		cfg := fastConfig()
		cfg.RenderBaseURL = server.URL
		f := NewFetcher(cfg)

		_, err := f.FetchRendered(context.Background(), "https://www.slikk.club/product/123")
		assert.ErrorIs(t, err, domain.ErrFetchFailure)
	})

	t.Run("render calls never exceed the parallel cap", func(t *testing.T) {
		var inFlight, peak atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cur := inFlight.Add(1)
			for {
				p := peak.Load()
				if cur <= p || peak.CompareAndSwap(p, cur) {
					break
				}
			}
			time.Sleep(20 * time.Millisecond)
			inFlight.Add(-1)
			w.Write([]byte(bigPage))
		}))
		defer server.Close()

		cfg := fastConfig()
		cfg.RenderBaseURL = server.URL
		cfg.RenderParallel = 2
		f := NewFetcher(cfg)

		done := make(chan error, 6)
		for i := 0; i < 6; i++ {
			go func() {
				_, err := f.FetchRendered(context.Background(), "https://www.slikk.club/product/123")
				done <- err
			}()
		}
		for i := 0; i < 6; i++ {
			require.NoError(t, <-done)
		}
		assert.LessOrEqual(t, peak.Load(), int32(2))
	})
}

func TestEncodeSpaces(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{raw: "https://shop.com/product/black tee", want: "https://shop.com/product/black%20tee"},
		{raw: "https://shop.com/product/black-tee", want: "https://shop.com/product/black-tee"},
	}
	for _, tt := range tests {
		if got := encodeSpaces(tt.raw); got != tt.want {
			t.Errorf("encodeSpaces(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}
