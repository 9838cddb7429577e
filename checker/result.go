package checker

import (
	"github.com/s0up4200/findarr/arrhttp"
	"github.com/s0up4200/findarr/media"
)

// ItemType distinguishes the two evaluation subjects.
type ItemType string

const (
	ItemTypeMovie  ItemType = "movie"
	ItemTypeSeries ItemType = "series"
)

// ProbeError records one release-search probe that failed with a
// classified error. Probe failures never abort a series evaluation; they
// are surfaced here so callers can tell "checked, not found" apart from
// "could not check".
type ProbeError struct {
	EpisodeID    int64
	SeasonNumber int
	Kind         arrhttp.Kind
	Err          error
}

// Result is the outcome of one evaluation. It is created fresh per call
// and never mutated after return.
type Result struct {
	ItemID   int64
	ItemType ItemType
	ItemName string

	// Qualifies is true when at least one probed release matched.
	Qualifies bool
	// MatchingReleases holds only the releases that matched, in probe
	// order.
	MatchingReleases []media.Release

	// EpisodesChecked lists the episode IDs probed, in probe order.
	// Empty for movies.
	EpisodesChecked []int64
	// SeasonsChecked lists the seasons probed by the sampling strategy,
	// in probe order. Empty when the global latest-aired probe
	// short-circuited the scan.
	SeasonsChecked []int
	// Strategy is the sampling strategy used. Empty for movies.
	Strategy Strategy

	ProbeErrors []ProbeError
}

// Undetermined reports whether the evaluation could not establish an
// answer: nothing qualified and every probe that was attempted failed.
func (r Result) Undetermined() bool {
	if r.Qualifies || len(r.ProbeErrors) == 0 {
		return false
	}
	return len(r.ProbeErrors) == len(r.EpisodesChecked)
}
