package checker

import (
	"context"

	"github.com/s0up4200/findarr/media"
)

// MovieSource is the slice of the Radarr adapter the checker consumes.
type MovieSource interface {
	GetMovieReleases(ctx context.Context, movieID int64) ([]media.Release, error)
	FindMovieByName(ctx context.Context, query string) ([]media.Movie, error)
}

// SeriesSource is the slice of the Sonarr adapter the checker consumes.
type SeriesSource interface {
	GetSeries(ctx context.Context, seriesID int64) (media.Series, error)
	GetEpisodes(ctx context.Context, seriesID int64, seasonNumber int) ([]media.Episode, error)
	GetEpisodeReleases(ctx context.Context, episodeID int64) ([]media.Release, error)
	FindSeriesByName(ctx context.Context, query string) ([]media.Series, error)
}
