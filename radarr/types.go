package radarr

import "github.com/s0up4200/findarr/media"

// Wire structs mirroring the Radarr v3 API JSON. Mapping into the media
// types is lossless for every field the checker consumes.

type movieResource struct {
	ID     int64  `json:"id"`
	Title  string `json:"title"`
	Year   int    `json:"year"`
	TmdbID int64  `json:"tmdbId"`
	ImdbID string `json:"imdbId"`
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

// qualityModel is the nested quality envelope both *arr APIs use:
// {"quality": {"quality": {"id": ..., "name": ..., "resolution": ...}}}.
type qualityModel struct {
	Quality qualityResource `json:"quality"`
}

type qualityResource struct {
	ID         int    `json:"id"`
	Name       string `json:"name"`
	Resolution int    `json:"resolution"`
}

func (m movieResource) toMovie() media.Movie {
	return media.Movie{
		ID:     m.ID,
		Title:  m.Title,
		Year:   m.Year,
		TmdbID: m.TmdbID,
		ImdbID: m.ImdbID,
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

func toReleases(resources []releaseResource) []media.Release {
	releases := make([]media.Release, 0, len(resources))
	for _, r := range resources {
		releases = append(releases, r.toRelease())
	}
	return releases
}
