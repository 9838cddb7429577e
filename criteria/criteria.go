// Package criteria decides whether a release matches a target tier.
//
// The primary matcher is FourK, which classifies a release as 2160p using
// cascading checks over the parsed quality and the raw release title. The
// title fallback exists because indexer naming conventions defeat upstream
// quality parsing often enough to matter; it accepts a small false-positive
// rate (a group name containing "4k" matches).
package criteria

import (
	"fmt"
	"sort"
	"strings"

	"github.com/s0up4200/findarr/media"
)

// Matcher reports whether a release matches some criteria. Matchers are
// pure functions: no I/O, no state.
type Matcher func(media.Release) bool

// FourK reports whether a release is 2160p. The checks cascade: a parsed
// resolution of 2160 wins regardless of any text, then the quality name is
// checked for "2160p", then the title for "2160p", "4k" or "uhd". All text
// checks are case-insensitive.
func FourK(r media.Release) bool {
	if r.Quality.Resolution == 2160 {
		return true
	}
	if strings.Contains(strings.ToLower(r.Quality.Name), "2160p") {
		return true
	}
	title := strings.ToLower(r.Title)
	return strings.Contains(title, "2160p") ||
		strings.Contains(title, "4k") ||
		strings.Contains(title, "uhd")
}

// HDR matches HDR releases by title.
func HDR(r media.Release) bool {
	title := strings.ToLower(r.Title)
	return strings.Contains(title, "hdr")
}

// DolbyVision matches Dolby Vision releases by title.
func DolbyVision(r media.Release) bool {
	title := strings.ToLower(r.Title)
	return strings.Contains(title, "dolby vision") ||
		strings.Contains(title, "dolbyvision") ||
		containsToken(title, "dv")
}

// DirectorsCut matches director's cut editions.
func DirectorsCut(r media.Release) bool {
	title := strings.ToLower(r.Title)
	return strings.Contains(title, "director") && strings.Contains(title, "cut")
}

// Extended matches extended editions.
func Extended(r media.Release) bool {
	return strings.Contains(strings.ToLower(r.Title), "extended")
}

// Remaster matches remastered releases.
func Remaster(r media.Release) bool {
	return strings.Contains(strings.ToLower(r.Title), "remaster")
}

// Imax matches IMAX releases.
func Imax(r media.Release) bool {
	return strings.Contains(strings.ToLower(r.Title), "imax")
}

var named = map[string]Matcher{
	"4k":            FourK,
	"hdr":           HDR,
	"dolby_vision":  DolbyVision,
	"directors_cut": DirectorsCut,
	"extended":      Extended,
	"remaster":      Remaster,
	"imax":          Imax,
}

// movieOnly criteria describe editions, which have no meaning for episodes.
var movieOnly = map[string]bool{
	"directors_cut": true,
	"extended":      true,
	"remaster":      true,
	"imax":          true,
}

// ForName returns the matcher registered under the given name.
func ForName(name string) (Matcher, error) {
	m, ok := named[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("unknown criteria %q (known: %s)", name, strings.Join(Names(), ", "))
	}
	return m, nil
}

// MovieOnly reports whether the named criteria applies only to movies.
func MovieOnly(name string) bool {
	return movieOnly[strings.ToLower(name)]
}

// Names returns the registered criteria names, sorted.
func Names() []string {
	names := make([]string, 0, len(named))
	for name := range named {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// containsToken matches tok only when delimited, so "dv" does not match
// every title containing those two letters mid-word.
func containsToken(s, tok string) bool {
	for _, part := range strings.FieldsFunc(s, func(r rune) bool {
		return r == '.' || r == ' ' || r == '-' || r == '_' || r == '[' || r == ']'
	}) {
		if part == tok {
			return true
		}
	}
	return false
}
