package arrhttp

import (
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/sync/singleflight"
)

// responseCache memoizes successful GET bodies for one Fetcher instance.
// Lookups are keyed per endpoint+params; concurrent misses for the same
// key collapse into a single upstream fetch. Locking is per key, so
// unrelated lookups never serialize behind each other.
type responseCache struct {
	entries *expirable.LRU[string, []byte]
	group   singleflight.Group
}

func newResponseCache(size int, ttl time.Duration) *responseCache {
	return &responseCache{
		entries: expirable.NewLRU[string, []byte](size, nil, ttl),
	}
}

// getOrFetch returns the cached body for key, fetching it at most once
// across concurrent callers. Failures are not cached.
func (c *responseCache) getOrFetch(key string, fetch func() ([]byte, error)) ([]byte, error) {
	if body, ok := c.entries.Get(key); ok {
		return body, nil
	}

	v, err, _ := c.group.Do(key, func() (any, error) {
		// A concurrent caller may have populated the entry while we
		// waited on the flight group.
		if body, ok := c.entries.Get(key); ok {
			return body, nil
		}
		body, err := fetch()
		if err != nil {
			return nil, err
		}
		c.entries.Add(key, body)
		return body, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}

func (c *responseCache) purge() {
	c.entries.Purge()
}

func (c *responseCache) len() int {
	return c.entries.Len()
}

// cacheKey derives a deterministic key from the endpoint path and query
// parameters. url.Values.Encode sorts by key, so insertion order of the
// parameters does not change the key.
func cacheKey(path string, params url.Values) string {
	sum := sha256.Sum256([]byte(path + "?" + params.Encode()))
	return hex.EncodeToString(sum[:])
}
