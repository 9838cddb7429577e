// Package arrhttp provides the resilient, caching HTTP layer shared by the
// Radarr and Sonarr adapters.
//
// A Fetcher wraps idempotent GET calls against one *arr instance with:
//
//   - Retry with exponential backoff (1s doubling, capped at 10s) for
//     transport failures and 429/5xx responses; 401 and 404 fail fast.
//   - A per-instance TTL cache keyed by endpoint and sorted query
//     parameters, with single-flight collapsing of concurrent misses.
//   - A terminal error taxonomy (Unreachable, Unauthorized, NotFound,
//     RateLimited, UpstreamServer, MalformedResponse) matched via
//     errors.Is against the package sentinels.
//
// Callers observe one successful decoded response or one classified error
// per logical call, never the retry internals.
//
// Usage:
//
//	fetcher, err := arrhttp.NewFetcher("http://localhost:7878", apiKey,
//		arrhttp.WithTimeout(2*time.Minute),
//		arrhttp.WithCacheTTL(5*time.Minute),
//		arrhttp.WithLogger(logger),
//	)
//	if err != nil {
//		return err
//	}
//
//	var releases []releaseResource
//	params := url.Values{"movieId": []string{"42"}}
//	if err := fetcher.Get(ctx, "/api/v3/release", params, &releases); err != nil {
//		if errors.Is(err, arrhttp.ErrNotFound) {
//			// movie does not exist upstream
//		}
//	}
package arrhttp
