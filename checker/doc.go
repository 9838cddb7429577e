// Package checker is the facade over the Radarr and Sonarr adapters and
// the home of the episode sampling engine.
//
// Movie evaluation is one release search, classified. Series evaluation
// bounds its cost with sampling: the globally newest aired episode is
// probed first, then the latest-aired episode of each strategy-selected
// season in descending season order, short-circuiting at the first
// qualifying release. Specials (season 0) never count toward sampling
// bounds.
//
// Each evaluation is a short-circuiting linear scan over a
// strategy-ordered candidate list: no backtracking, no re-probing, and
// deterministic given the same upstream data. Per-probe fetch failures
// are downgraded to "not found at this probe" and recorded in
// Result.ProbeErrors; only movie evaluations and series metadata fetches
// propagate errors to the caller.
package checker
