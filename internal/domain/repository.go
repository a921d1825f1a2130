package domain

import (
	"context"
	"time"
)

// SearchClient defines the interface for the visual search backend.
// Both calls are idempotent and safe to retry.
type SearchClient interface {
	SearchByImage(ctx context.Context, imageURL string) (*SearchResponse, error)
	SearchByImageWithQuery(ctx context.Context, imageURL, query string) (*SearchResponse, error)
}

// PageFetcher defines the interface for retrieving raw page documents.
// FetchRendered goes through the JS-rendering backend and is subject to a
// global concurrency cap.
type PageFetcher interface {
	Fetch(ctx context.Context, pageURL string) (string, error)
	FetchRendered(ctx context.Context, pageURL string) (string, error)
}

// CacheRepository defines the interface for caching scraped prices by URL.
type CacheRepository interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}
