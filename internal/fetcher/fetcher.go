// Package fetcher provides the HTTP capability used by the ingestion sources,
// with retry, backoff and per-host rate limiting.
package fetcher

import (
	"context"
	"net/http"
)

// Fetcher defines the interface for fetching remote documents.
type Fetcher interface {
	// Get issues a GET request with the configured identifying headers.
	// Transport failures and retryable statuses are retried; the final
	// response is returned with its status code intact so callers decide
	// how to treat non-200s.
	Get(ctx context.Context, url string) (*http.Response, error)
}
