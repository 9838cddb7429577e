// Package radarr adapts the Radarr v3 API into the media domain models.
// All calls route through a shared arrhttp.Fetcher, which provides retry,
// caching and error classification.
package radarr

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/s0up4200/findarr/arrhttp"
	"github.com/s0up4200/findarr/criteria"
	"github.com/s0up4200/findarr/media"
)

// Client is the movie source adapter.
type Client struct {
	fetcher *arrhttp.Fetcher
	logger  zerolog.Logger
}

// NewClient creates a Radarr adapter around an existing fetcher.
func NewClient(fetcher *arrhttp.Fetcher, logger zerolog.Logger) *Client {
	return &Client{
		fetcher: fetcher,
		logger:  logger,
	}
}

// ClearCache drops the fetcher's cached responses so the next calls hit
// the instance directly.
func (c *Client) ClearCache() {
	c.fetcher.ClearCache()
}

// GetMovieReleases searches indexers for releases of the given movie.
// An empty result is a valid outcome, not an error.
func (c *Client) GetMovieReleases(ctx context.Context, movieID int64) ([]media.Release, error) {
	params := url.Values{}
	params.Set("movieId", strconv.FormatInt(movieID, 10))

	var resources []releaseResource
	if err := c.fetcher.Get(ctx, "/api/v3/release", params, &resources); err != nil {
		return nil, err
	}

	c.logger.Debug().
		Int64("movie_id", movieID).
		Int("count", len(resources)).
		Msg("Retrieved movie releases")
	return toReleases(resources), nil
}

// HasQualifyingRelease reports whether any release for the movie matches
// the given criteria.
func (c *Client) HasQualifyingRelease(ctx context.Context, movieID int64, match criteria.Matcher) (bool, error) {
	releases, err := c.GetMovieReleases(ctx, movieID)
	if err != nil {
		return false, err
	}
	for _, r := range releases {
		if match(r) {
			return true, nil
		}
	}
	return false, nil
}

// GetAllMovies fetches the whole movie library. The response is cached, so
// repeated name searches within the TTL cost one upstream call.
func (c *Client) GetAllMovies(ctx context.Context) ([]media.Movie, error) {
	var resources []movieResource
	if err := c.fetcher.Get(ctx, "/api/v3/movie", nil, &resources); err != nil {
		return nil, err
	}

	movies := make([]media.Movie, 0, len(resources))
	for _, m := range resources {
		movies = append(movies, m.toMovie())
	}

	c.logger.Debug().Int("count", len(movies)).Msg("Retrieved movies from Radarr")
	return movies, nil
}

// FindMovieByName returns every library movie whose title contains the
// query, case-insensitively. Zero, one or many matches are all valid;
// the caller decides how to present ambiguity.
func (c *Client) FindMovieByName(ctx context.Context, query string) ([]media.Movie, error) {
	movies, err := c.GetAllMovies(ctx)
	if err != nil {
		return nil, err
	}

	q := strings.ToLower(query)
	var matches []media.Movie
	for _, m := range movies {
		if strings.Contains(strings.ToLower(m.Title), q) {
			matches = append(matches, m)
		}
	}
	return matches, nil
}
