package domain

import "errors"

var (
	// ErrNoMatchFound is returned when every candidate is filtered out.
	// Expected steady-state outcome, recorded as "Not Found".
	ErrNoMatchFound = errors.New("no matching candidate for site")

	// ErrInvalidRequest is returned when request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrMissingCredentials is returned when no search API key is configured;
	// the operation short-circuits instead of aborting the run
	ErrMissingCredentials = errors.New("search API key not configured")

	// ErrSearchFailure is returned when the search backend request fails
	ErrSearchFailure = errors.New("search API request failed")

	// ErrFetchFailure is returned when a page fetch exhausts its retries
	ErrFetchFailure = errors.New("page fetch failed")

	// ErrContentTooSmall is returned when a rendered response is too small
	// to be a fully rendered page; retried like a transient network error
	ErrContentTooSmall = errors.New("rendered page implausibly small")

	// ErrCacheMiss is returned when data is not found in cache
	ErrCacheMiss = errors.New("cache miss")
)
