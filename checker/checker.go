package checker

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/s0up4200/findarr/arrhttp"
	"github.com/s0up4200/findarr/criteria"
	"github.com/s0up4200/findarr/media"
)

const defaultSeasonsToCheck = 3

// Checker evaluates release availability across Radarr and Sonarr. Either
// source may be nil when that side is not configured; evaluations against
// a missing source fail with a configuration error.
type Checker struct {
	movies MovieSource
	series SeriesSource
	logger zerolog.Logger

	// now is replaceable in tests; "aired" means air date <= now().
	now func() time.Time
}

// New creates a Checker over the configured sources.
func New(movies MovieSource, series SeriesSource, logger zerolog.Logger) *Checker {
	return &Checker{
		movies: movies,
		series: series,
		logger: logger,
		now:    time.Now,
	}
}

// SeriesOptions tunes a series evaluation. The zero value means strategy
// RECENT over 3 seasons with the 4K matcher.
type SeriesOptions struct {
	Strategy       Strategy
	SeasonsToCheck int
	Match          criteria.Matcher
}

// EvaluateMovie runs one release search for the movie and classifies the
// results. Errors are fatal here: with no data there is nothing to
// classify.
func (c *Checker) EvaluateMovie(ctx context.Context, movieID int64, match criteria.Matcher) (Result, error) {
	if c.movies == nil {
		return Result{}, fmt.Errorf("radarr is not configured")
	}
	if match == nil {
		match = criteria.FourK
	}

	result := Result{ItemID: movieID, ItemType: ItemTypeMovie}

	releases, err := c.movies.GetMovieReleases(ctx, movieID)
	if err != nil {
		return result, err
	}

	result.MatchingReleases = matchingReleases(releases, match)
	result.Qualifies = len(result.MatchingReleases) > 0

	c.logger.Debug().
		Int64("movie_id", movieID).
		Int("releases", len(releases)).
		Int("matching", len(result.MatchingReleases)).
		Msg("Evaluated movie")
	return result, nil
}

// EvaluateSeries decides whether the series has a qualifying release by
// probing a bounded sample of episodes.
//
// The single latest-aired episode across the whole series is probed first:
// indexers most reliably carry the newest content, so it maximizes the
// chance of an early short-circuit regardless of strategy. If it does not
// qualify, the strategy selects seasons (number > 0, at least one aired
// episode) and the latest-aired episode of each is probed in descending
// season order, stopping at the first match.
//
// A probe whose release fetch fails with a classified error counts as "no
// qualifying release here": the error is recorded in ProbeErrors and the
// scan continues. A single indexer hiccup must not abort the whole
// evaluation.
func (c *Checker) EvaluateSeries(ctx context.Context, seriesID int64, opts SeriesOptions) (Result, error) {
	if c.series == nil {
		return Result{}, fmt.Errorf("sonarr is not configured")
	}

	strategy := opts.Strategy
	if strategy == "" {
		strategy = StrategyRecent
	}
	seasonsToCheck := opts.SeasonsToCheck
	if seasonsToCheck < 1 {
		seasonsToCheck = defaultSeasonsToCheck
	}
	match := opts.Match
	if match == nil {
		match = criteria.FourK
	}

	result := Result{ItemID: seriesID, ItemType: ItemTypeSeries, Strategy: strategy}

	series, err := c.series.GetSeries(ctx, seriesID)
	if err != nil {
		return result, err
	}
	result.ItemName = series.Title

	episodes, err := c.series.GetEpisodes(ctx, seriesID, -1)
	if err != nil {
		return result, err
	}

	today := c.now()
	bySeason := map[int][]media.Episode{}
	var globalLatest *media.Episode
	for i := range episodes {
		e := episodes[i]
		if !e.Aired(today) {
			continue
		}
		bySeason[e.SeasonNumber] = append(bySeason[e.SeasonNumber], e)
		if globalLatest == nil || e.AirDate.After(globalLatest.AirDate) {
			globalLatest = &episodes[i]
		}
	}

	if globalLatest == nil {
		c.logger.Debug().Int64("series_id", seriesID).Msg("No aired episodes, nothing to probe")
		return result, nil
	}

	// Probe the newest episode of the whole series before any
	// strategy-selected candidates.
	if done := c.probe(ctx, *globalLatest, match, &result); done {
		return result, nil
	}

	eligible := make([]int, 0, len(bySeason))
	for season := range bySeason {
		if season > 0 {
			eligible = append(eligible, season)
		}
	}

	selected := SelectSeasons(eligible, strategy, seasonsToCheck)
	sort.Sort(sort.Reverse(sort.IntSlice(selected)))

	for _, season := range selected {
		rep := latestAired(bySeason[season])
		result.SeasonsChecked = append(result.SeasonsChecked, season)

		if rep.ID == globalLatest.ID {
			// Already probed as the global latest; record the season
			// without re-probing.
			continue
		}
		if done := c.probe(ctx, rep, match, &result); done {
			return result, nil
		}
	}

	c.logger.Info().
		Int64("series_id", seriesID).
		Str("strategy", string(strategy)).
		Ints("seasons", result.SeasonsChecked).
		Int("probe_errors", len(result.ProbeErrors)).
		Bool("qualifies", result.Qualifies).
		Msg("Series evaluation complete")
	return result, nil
}

// probe fetches releases for one episode, records the outcome on result,
// and reports whether the scan can stop.
func (c *Checker) probe(ctx context.Context, episode media.Episode, match criteria.Matcher, result *Result) bool {
	result.EpisodesChecked = append(result.EpisodesChecked, episode.ID)

	releases, err := c.series.GetEpisodeReleases(ctx, episode.ID)
	if err != nil {
		c.logger.Warn().
			Int64("episode_id", episode.ID).
			Int("season", episode.SeasonNumber).
			Str("kind", arrhttp.KindOf(err).String()).
			Msg("Probe failed, continuing scan")
		result.ProbeErrors = append(result.ProbeErrors, ProbeError{
			EpisodeID:    episode.ID,
			SeasonNumber: episode.SeasonNumber,
			Kind:         arrhttp.KindOf(err),
			Err:          err,
		})
		return false
	}

	matches := matchingReleases(releases, match)
	result.MatchingReleases = append(result.MatchingReleases, matches...)
	if len(matches) > 0 {
		result.Qualifies = true
		return true
	}
	return false
}

// FindMovieByName resolves a query against the Radarr library.
func (c *Checker) FindMovieByName(ctx context.Context, query string) ([]media.Movie, error) {
	if c.movies == nil {
		return nil, fmt.Errorf("radarr is not configured")
	}
	return c.movies.FindMovieByName(ctx, query)
}

// FindSeriesByName resolves a query against the Sonarr library.
func (c *Checker) FindSeriesByName(ctx context.Context, query string) ([]media.Series, error) {
	if c.series == nil {
		return nil, fmt.Errorf("sonarr is not configured")
	}
	return c.series.FindSeriesByName(ctx, query)
}

func latestAired(episodes []media.Episode) media.Episode {
	latest := episodes[0]
	for _, e := range episodes[1:] {
		if e.AirDate.After(latest.AirDate) {
			latest = e
		}
	}
	return latest
}

func matchingReleases(releases []media.Release, match criteria.Matcher) []media.Release {
	var matches []media.Release
	for _, r := range releases {
		if match(r) {
			matches = append(matches, r)
		}
	}
	return matches
}
