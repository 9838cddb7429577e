package checker

import (
	"fmt"
	"sort"
)

// Strategy selects which seasons of a series get probed.
type Strategy string

const (
	// StrategyRecent probes the most recent N eligible seasons.
	StrategyRecent Strategy = "recent"
	// StrategyDistributed probes the first, middle and last eligible
	// seasons.
	StrategyDistributed Strategy = "distributed"
	// StrategyAll probes every eligible season.
	StrategyAll Strategy = "all"
)

// ParseStrategy converts a user-supplied string into a Strategy.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(s) {
	case StrategyRecent, StrategyDistributed, StrategyAll:
		return Strategy(s), nil
	}
	return "", fmt.Errorf("unknown strategy %q (want recent, distributed or all)", s)
}

// SelectSeasons picks which season numbers to probe. The input is the set
// of eligible season numbers (number > 0, at least one aired episode) in
// any order; the result is ascending and deduplicated.
//
// RECENT takes the highest min(maxSeasons, len) numbers; asking for more
// seasons than exist selects them all, never an error. DISTRIBUTED takes
// first, middle (integer-division midpoint) and last; fewer than three
// eligible seasons yield however many are distinct. ALL takes everything.
func SelectSeasons(eligible []int, strategy Strategy, maxSeasons int) []int {
	if len(eligible) == 0 {
		return nil
	}

	sorted := make([]int, len(eligible))
	copy(sorted, eligible)
	sort.Ints(sorted)

	switch strategy {
	case StrategyRecent:
		if maxSeasons < 1 {
			maxSeasons = 1
		}
		if maxSeasons >= len(sorted) {
			return sorted
		}
		return sorted[len(sorted)-maxSeasons:]

	case StrategyDistributed:
		first := sorted[0]
		middle := sorted[len(sorted)/2]
		last := sorted[len(sorted)-1]

		seen := map[int]bool{}
		var picked []int
		for _, n := range []int{first, middle, last} {
			if !seen[n] {
				seen[n] = true
				picked = append(picked, n)
			}
		}
		sort.Ints(picked)
		return picked

	default:
		return sorted
	}
}
