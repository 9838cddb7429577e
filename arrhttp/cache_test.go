package arrhttp

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCountingServer(t *testing.T, body string) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server, &calls
}

func TestCacheKey_ParamOrderIndependent(t *testing.T) {
	a := url.Values{}
	a.Set("seriesId", "7")
	a.Set("seasonNumber", "2")

	b := url.Values{}
	b.Set("seasonNumber", "2")
	b.Set("seriesId", "7")

	assert.Equal(t, cacheKey("/api/v3/episode", a), cacheKey("/api/v3/episode", b))
}

func TestCacheKey_DistinguishesPathAndParams(t *testing.T) {
	params := url.Values{"movieId": []string{"1"}}

	assert.NotEqual(t,
		cacheKey("/api/v3/release", params),
		cacheKey("/api/v3/movie", params))
	assert.NotEqual(t,
		cacheKey("/api/v3/release", params),
		cacheKey("/api/v3/release", url.Values{"movieId": []string{"2"}}))
}

func TestGet_CachesSuccessfulResponses(t *testing.T) {
	server, calls := newCountingServer(t, `{"id":1}`)

	f, err := NewFetcher(server.URL, "key")
	require.NoError(t, err)

	params := url.Values{"movieId": []string{"1"}}
	for i := 0; i < 3; i++ {
		var out map[string]int
		require.NoError(t, f.Get(context.Background(), "/api/v3/release", params, &out))
		assert.Equal(t, 1, out["id"])
	}

	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, 1, f.CacheLen())
}

func TestGetFresh_BypassesCache(t *testing.T) {
	server, calls := newCountingServer(t, `{}`)

	f, err := NewFetcher(server.URL, "key")
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, f.Get(context.Background(), "/api/v3/movie", nil, &out))
	require.NoError(t, f.GetFresh(context.Background(), "/api/v3/movie", nil, &out))
	require.NoError(t, f.Get(context.Background(), "/api/v3/movie", nil, &out))

	// One fetch to fill the cache, one forced fresh fetch, then a hit.
	assert.Equal(t, int32(2), calls.Load())
}

func TestGet_TTLExpiry(t *testing.T) {
	server, calls := newCountingServer(t, `{}`)

	f, err := NewFetcher(server.URL, "key", WithCacheTTL(30*time.Millisecond))
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, f.Get(context.Background(), "/api/v3/series", nil, &out))
	time.Sleep(80 * time.Millisecond)
	require.NoError(t, f.Get(context.Background(), "/api/v3/series", nil, &out))

	assert.Equal(t, int32(2), calls.Load(), "expired entries refetch")
}

func TestGet_FailuresNotCached(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	f, err := NewFetcher(server.URL, "key", WithMaxAttempts(1))
	require.NoError(t, err)

	var out map[string]any
	require.Error(t, f.Get(context.Background(), "/api/v3/movie", nil, &out))
	require.NoError(t, f.Get(context.Background(), "/api/v3/movie", nil, &out))

	assert.Equal(t, int32(2), calls.Load())
}

func TestGet_ConcurrentMissesCollapse(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		time.Sleep(20 * time.Millisecond)
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	f, err := NewFetcher(server.URL, "key")
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make([]error, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			var out map[string]any
			errs[i] = f.Get(context.Background(), "/api/v3/series", nil, &out)
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		require.NoError(t, err)
	}
	assert.Equal(t, int32(1), calls.Load(), "concurrent identical lookups share one fetch")
}

func TestClearCache(t *testing.T) {
	server, calls := newCountingServer(t, `{}`)

	f, err := NewFetcher(server.URL, "key")
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, f.Get(context.Background(), "/api/v3/movie", nil, &out))
	f.ClearCache()
	assert.Equal(t, 0, f.CacheLen())
	require.NoError(t, f.Get(context.Background(), "/api/v3/movie", nil, &out))

	assert.Equal(t, int32(2), calls.Load())
}

func TestFetchers_DoNotShareCaches(t *testing.T) {
	server, calls := newCountingServer(t, `{}`)

	a, err := NewFetcher(server.URL, "key-a")
	require.NoError(t, err)
	b, err := NewFetcher(server.URL, "key-b")
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, a.Get(context.Background(), "/api/v3/movie", nil, &out))
	require.NoError(t, b.Get(context.Background(), "/api/v3/movie", nil, &out))

	assert.Equal(t, int32(2), calls.Load())
}
