// Package sonarr adapts the Sonarr v3 API into the media domain models.
// All calls route through a shared arrhttp.Fetcher, which provides retry,
// caching and error classification.
package sonarr

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/s0up4200/findarr/arrhttp"
	"github.com/s0up4200/findarr/media"
)

// Client is the series source adapter.
type Client struct {
	fetcher *arrhttp.Fetcher
	logger  zerolog.Logger

	// now is replaceable in tests; "aired" means air date <= now().
	now func() time.Time
}

// NewClient creates a Sonarr adapter around an existing fetcher.
func NewClient(fetcher *arrhttp.Fetcher, logger zerolog.Logger) *Client {
	return &Client{
		fetcher: fetcher,
		logger:  logger,
		now:     time.Now,
	}
}

// ClearCache drops the fetcher's cached responses so the next calls hit
// the instance directly.
func (c *Client) ClearCache() {
	c.fetcher.ClearCache()
}

// GetSeries fetches one series with its season inventory.
func (c *Client) GetSeries(ctx context.Context, seriesID int64) (media.Series, error) {
	var resource seriesResource
	path := fmt.Sprintf("/api/v3/series/%d", seriesID)
	if err := c.fetcher.Get(ctx, path, nil, &resource); err != nil {
		return media.Series{}, err
	}
	return resource.toSeries(), nil
}

// GetAllSeries fetches the whole series library. Cached, so repeated name
// searches within the TTL cost one upstream call.
func (c *Client) GetAllSeries(ctx context.Context) ([]media.Series, error) {
	var resources []seriesResource
	if err := c.fetcher.Get(ctx, "/api/v3/series", nil, &resources); err != nil {
		return nil, err
	}

	series := make([]media.Series, 0, len(resources))
	for _, s := range resources {
		series = append(series, s.toSeries())
	}

	c.logger.Debug().Int("count", len(series)).Msg("Retrieved series from Sonarr")
	return series, nil
}

// FindSeriesByName returns every library series whose title contains the
// query, case-insensitively.
func (c *Client) FindSeriesByName(ctx context.Context, query string) ([]media.Series, error) {
	series, err := c.GetAllSeries(ctx)
	if err != nil {
		return nil, err
	}

	q := strings.ToLower(query)
	var matches []media.Series
	for _, s := range series {
		if strings.Contains(strings.ToLower(s.Title), q) {
			matches = append(matches, s)
		}
	}
	return matches, nil
}

// GetEpisodes fetches the episodes of a series, optionally filtered to one
// season. Pass a negative seasonNumber for all seasons.
func (c *Client) GetEpisodes(ctx context.Context, seriesID int64, seasonNumber int) ([]media.Episode, error) {
	params := url.Values{}
	params.Set("seriesId", strconv.FormatInt(seriesID, 10))
	if seasonNumber >= 0 {
		params.Set("seasonNumber", strconv.Itoa(seasonNumber))
	}

	var resources []episodeResource
	if err := c.fetcher.Get(ctx, "/api/v3/episode", params, &resources); err != nil {
		return nil, err
	}

	episodes := make([]media.Episode, 0, len(resources))
	for _, e := range resources {
		episodes = append(episodes, e.toEpisode())
	}
	return episodes, nil
}

// GetEpisodeReleases searches indexers for releases of one episode.
// An empty result is a valid outcome, not an error.
func (c *Client) GetEpisodeReleases(ctx context.Context, episodeID int64) ([]media.Release, error) {
	params := url.Values{}
	params.Set("episodeId", strconv.FormatInt(episodeID, 10))

	var resources []releaseResource
	if err := c.fetcher.Get(ctx, "/api/v3/release", params, &resources); err != nil {
		return nil, err
	}

	c.logger.Debug().
		Int64("episode_id", episodeID).
		Int("count", len(resources)).
		Msg("Retrieved episode releases")

	releases := make([]media.Release, 0, len(resources))
	for _, r := range resources {
		releases = append(releases, r.toRelease())
	}
	return releases, nil
}

// GetLatestAiredEpisode returns the episode with the most recent air date
// not in the future, or nil when nothing has aired yet.
func (c *Client) GetLatestAiredEpisode(ctx context.Context, seriesID int64) (*media.Episode, error) {
	episodes, err := c.GetEpisodes(ctx, seriesID, -1)
	if err != nil {
		return nil, err
	}

	today := c.now()
	var latest *media.Episode
	for i := range episodes {
		e := episodes[i]
		if !e.Aired(today) {
			continue
		}
		if latest == nil || e.AirDate.After(latest.AirDate) {
			latest = &episodes[i]
		}
	}
	return latest, nil
}
