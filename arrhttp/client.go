package arrhttp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/failsafe-go/failsafe-go"
	"github.com/failsafe-go/failsafe-go/retrypolicy"
	"github.com/rs/zerolog"
)

const (
	defaultTimeout     = 120 * time.Second
	defaultCacheTTL    = 300 * time.Second
	defaultCacheSize   = 1024
	defaultMaxAttempts = 3

	backoffInitial = 1 * time.Second
	backoffMax     = 10 * time.Second
)

// Fetcher is a resilient, caching HTTP client for one Radarr or Sonarr
// instance. It only issues GET requests. Each Fetcher owns its cache and
// connection state end to end; nothing is shared across instances.
type Fetcher struct {
	baseURL     string
	apiKey      string
	timeout     time.Duration
	cacheTTL    time.Duration
	cacheSize   int
	maxAttempts int

	httpClient *http.Client
	retry      retrypolicy.RetryPolicy[[]byte]
	cache      *responseCache
	logger     zerolog.Logger
}

// NewFetcher creates a Fetcher for the given instance. The API key is sent
// as the X-Api-Key header and never appears in URLs, logs or errors.
func NewFetcher(baseURL, apiKey string, opts ...Option) (*Fetcher, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("base URL is required")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	f := &Fetcher{
		baseURL:     strings.TrimRight(baseURL, "/"),
		apiKey:      apiKey,
		timeout:     defaultTimeout,
		cacheTTL:    defaultCacheTTL,
		cacheSize:   defaultCacheSize,
		maxAttempts: defaultMaxAttempts,
		logger:      zerolog.Nop(),
	}

	for _, opt := range opts {
		opt(f)
	}

	if f.maxAttempts < 1 {
		return nil, fmt.Errorf("max attempts must be at least 1, got %d", f.maxAttempts)
	}

	if f.httpClient == nil {
		f.httpClient = &http.Client{Timeout: f.timeout}
	}

	f.cache = newResponseCache(f.cacheSize, f.cacheTTL)
	f.retry = f.newRetryPolicy()

	return f, nil
}

// newRetryPolicy builds the shared retry policy: exponential backoff
// starting at 1s, doubling, capped at 10s, with no delay before the first
// attempt. Transport failures and 429/5xx responses retry; 401 and 404
// are definitive and fail immediately.
func (f *Fetcher) newRetryPolicy() retrypolicy.RetryPolicy[[]byte] {
	return retrypolicy.Builder[[]byte]().
		HandleIf(func(_ []byte, err error) bool {
			return isRetryable(err)
		}).
		WithBackoff(backoffInitial, backoffMax).
		WithMaxRetries(f.maxAttempts - 1).
		OnRetry(func(e failsafe.ExecutionEvent[[]byte]) {
			f.logger.Warn().
				Err(e.LastError()).
				Int("attempt", e.Attempts()).
				Msg("Retrying request after transient failure")
		}).
		ReturnLastFailure().
		Build()
}

// isRetryable decides whether one attempt's failure is transient. A
// cancelled context is never retried; client-side timeouts are.
func isRetryable(err error) bool {
	var se *statusError
	if errors.As(err, &se) {
		return retryableStatus(se.code)
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	return true
}

// Get performs a cached GET against path and decodes the JSON body into
// out. Two calls with the same parameters in different order share one
// cache entry; concurrent misses for the same key trigger one upstream
// fetch.
func (f *Fetcher) Get(ctx context.Context, path string, params url.Values, out any) error {
	key := cacheKey(path, params)
	body, err := f.cache.getOrFetch(key, func() ([]byte, error) {
		return f.do(ctx, path, params)
	})
	if err != nil {
		return err
	}
	return f.decode(path, body, out)
}

// GetFresh performs a GET that bypasses the cache. The response is not
// stored.
func (f *Fetcher) GetFresh(ctx context.Context, path string, params url.Values, out any) error {
	body, err := f.do(ctx, path, params)
	if err != nil {
		return err
	}
	return f.decode(path, body, out)
}

// ClearCache drops every cached response.
func (f *Fetcher) ClearCache() {
	f.cache.purge()
}

// CacheLen returns the number of live cache entries.
func (f *Fetcher) CacheLen() int {
	return f.cache.len()
}

// BaseURL returns the instance URL this Fetcher talks to.
func (f *Fetcher) BaseURL() string {
	return f.baseURL
}

// do runs one logical request: up to maxAttempts HTTP attempts behind the
// retry policy, classified into the public taxonomy at the exit boundary.
func (f *Fetcher) do(ctx context.Context, path string, params url.Values) ([]byte, error) {
	executor := failsafe.NewExecutor[[]byte](f.retry).WithContext(ctx)
	body, err := executor.Get(func() ([]byte, error) {
		return f.fetchOnce(ctx, path, params)
	})
	if err != nil {
		cerr := classify(path, err)
		f.logger.Debug().
			Str("path", path).
			Str("kind", KindOf(cerr).String()).
			Msg("Request failed")
		return nil, cerr
	}
	return body, nil
}

// fetchOnce performs a single HTTP attempt. Non-200 statuses surface as
// statusError so the retry policy can decide; the body is drained to keep
// the connection reusable.
func (f *Fetcher) fetchOnce(ctx context.Context, path string, params url.Values) ([]byte, error) {
	u := f.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-Api-Key", f.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, &statusError{code: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	return body, nil
}

func (f *Fetcher) decode(op string, body []byte, out any) error {
	if err := json.Unmarshal(body, out); err != nil {
		return &Error{Kind: KindMalformedResponse, Op: op, Err: err}
	}
	return nil
}

// classify converts the retry loop's terminal error into the public
// taxonomy.
func classify(op string, err error) error {
	var se *statusError
	if errors.As(err, &se) {
		kind := KindUpstreamServer
		switch {
		case se.code == http.StatusUnauthorized, se.code == http.StatusForbidden:
			kind = KindUnauthorized
		case se.code == http.StatusNotFound:
			kind = KindNotFound
		case se.code == http.StatusTooManyRequests:
			kind = KindRateLimited
		}
		return &Error{Kind: kind, StatusCode: se.code, Op: op, Err: se}
	}
	return &Error{Kind: KindUnreachable, Op: op, Err: err}
}
