package sonarr

import (
	"time"

	"github.com/s0up4200/findarr/media"
)

// Wire structs mirroring the Sonarr v3 API JSON.

type seriesResource struct {
	ID      int64            `json:"id"`
	Title   string           `json:"title"`
	Year    int              `json:"year"`
	Seasons []seasonResource `json:"seasons"`
}

type seasonResource struct {
	SeasonNumber int              `json:"seasonNumber"`
	Monitored    bool             `json:"monitored"`
	Statistics   seasonStatistics `json:"statistics"`
}

type seasonStatistics struct {
	EpisodeCount     int `json:"episodeCount"`
	EpisodeFileCount int `json:"episodeFileCount"`
}

type episodeResource struct {
	ID            int64  `json:"id"`
	SeriesID      int64  `json:"seriesId"`
	SeasonNumber  int    `json:"seasonNumber"`
	EpisodeNumber int    `json:"episodeNumber"`
	Title         string `json:"title"`
	AirDateUtc    string `json:"airDateUtc"`
	AirDate       string `json:"airDate"`
	HasFile       bool   `json:"hasFile"`
	Monitored     bool   `json:"monitored"`
}

type releaseResource struct {
	GUID    string       `json:"guid"`
	Title   string       `json:"title"`
	Indexer string       `json:"indexer"`
	Size    int64        `json:"size"`
	Seeders int          `json:"seeders"`
	Age     int          `json:"age"`
	Quality qualityModel `json:"quality"`
}

type qualityModel struct {
	Quality qualityResource `json:"quality"`
}

type qualityResource struct {
	ID         int    `json:"id"`
	Name       string `json:"name"`
	Resolution int    `json:"resolution"`
}

func (s seriesResource) toSeries() media.Series {
	seasons := make([]media.Season, 0, len(s.Seasons))
	for _, season := range s.Seasons {
		seasons = append(seasons, media.Season{
			SeasonNumber:     season.SeasonNumber,
			Monitored:        season.Monitored,
			EpisodeCount:     season.Statistics.EpisodeCount,
			EpisodeFileCount: season.Statistics.EpisodeFileCount,
		})
	}
	return media.Series{
		ID:      s.ID,
		Title:   s.Title,
		Year:    s.Year,
		Seasons: seasons,
	}
}

// toEpisode parses the air date, preferring the UTC timestamp and falling
// back to the date-only field. Unparseable dates map to the zero time,
// which the checker treats as never aired.
func (e episodeResource) toEpisode() media.Episode {
	var airDate time.Time
	if e.AirDateUtc != "" {
		if t, err := time.Parse(time.RFC3339, e.AirDateUtc); err == nil {
			airDate = t
		}
	}
	if airDate.IsZero() && e.AirDate != "" {
		if t, err := time.Parse("2006-01-02", e.AirDate); err == nil {
			airDate = t
		}
	}
	return media.Episode{
		ID:            e.ID,
		SeriesID:      e.SeriesID,
		SeasonNumber:  e.SeasonNumber,
		EpisodeNumber: e.EpisodeNumber,
		Title:         e.Title,
		AirDate:       airDate,
		HasFile:       e.HasFile,
		Monitored:     e.Monitored,
	}
}

func (r releaseResource) toRelease() media.Release {
	indexer := r.Indexer
	if indexer == "" {
		indexer = "Unknown"
	}
	return media.Release{
		GUID:    r.GUID,
		Title:   r.Title,
		Indexer: indexer,
		Size:    r.Size,
		Seeders: r.Seeders,
		AgeDays: r.Age,
		Quality: media.Quality{
			ID:         r.Quality.Quality.ID,
			Name:       r.Quality.Quality.Name,
			Resolution: r.Quality.Quality.Resolution,
		},
	}
}
