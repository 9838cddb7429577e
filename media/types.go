// Package media defines the domain models shared by the Radarr and Sonarr
// adapters. Every value is a point-in-time snapshot of an upstream query
// and is never mutated after construction.
package media

import "time"

// Quality describes the quality tier Radarr/Sonarr parsed for a release.
// Resolution is the vertical pixel count (360, 480, 576, 720, 1080, 2160);
// zero means the upstream did not report one and the name must be inspected.
type Quality struct {
	ID         int
	Name       string
	Resolution int
}

// Release is a single indexer search result. The GUID is unique within one
// search response but not stable across searches.
type Release struct {
	GUID    string
	Title   string
	Indexer string
	Size    int64
	Seeders int
	AgeDays int
	Quality Quality
}

// Movie is a Radarr library entry.
type Movie struct {
	ID     int64
	Title  string
	Year   int
	TmdbID int64
	ImdbID string
}

// Episode is a Sonarr episode. A zero AirDate means the air date is unknown;
// such episodes are never considered aired.
type Episode struct {
	ID            int64
	SeriesID      int64
	SeasonNumber  int
	EpisodeNumber int
	Title         string
	AirDate       time.Time
	HasFile       bool
	Monitored     bool
}

// Aired reports whether the episode aired on or before the given day.
func (e Episode) Aired(today time.Time) bool {
	return !e.AirDate.IsZero() && !e.AirDate.After(today)
}

// Season summarizes one season of a series. Season 0 holds specials.
type Season struct {
	SeasonNumber     int
	Monitored        bool
	EpisodeCount     int
	EpisodeFileCount int
}

// Series is a Sonarr library entry with its season inventory.
type Series struct {
	ID      int64
	Title   string
	Year    int
	Seasons []Season
}

// SeasonCount returns the number of regular seasons, excluding specials.
func (s Series) SeasonCount() int {
	count := 0
	for _, season := range s.Seasons {
		if season.SeasonNumber > 0 {
			count++
		}
	}
	return count
}
