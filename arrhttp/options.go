package arrhttp

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithTimeout sets the per-request timeout. The default of 120s is
// intentionally generous: upstream release searches fan out to indexers
// and are slow.
func WithTimeout(timeout time.Duration) Option {
	return func(f *Fetcher) {
		if timeout > 0 {
			f.timeout = timeout
		}
	}
}

// WithCacheTTL sets how long GET responses are served from cache.
func WithCacheTTL(ttl time.Duration) Option {
	return func(f *Fetcher) {
		if ttl > 0 {
			f.cacheTTL = ttl
		}
	}
}

// WithCacheSize sets the maximum number of cached responses.
func WithCacheSize(size int) Option {
	return func(f *Fetcher) {
		if size > 0 {
			f.cacheSize = size
		}
	}
}

// WithMaxAttempts sets the total number of attempts per logical request,
// including the first.
func WithMaxAttempts(attempts int) Option {
	return func(f *Fetcher) {
		f.maxAttempts = attempts
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(f *Fetcher) {
		f.httpClient = client
	}
}

// WithLogger sets the logger used for retry and failure logging.
func WithLogger(logger zerolog.Logger) Option {
	return func(f *Fetcher) {
		f.logger = logger
	}
}
