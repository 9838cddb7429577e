// Package scheduler periodically rechecks items the state file records as
// unavailable, on the theory that a release absent today may surface on
// indexers later.
package scheduler

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/s0up4200/findarr/checker"
	"github.com/s0up4200/findarr/state"
)

// Scheduler drives the periodic recheck loop.
type Scheduler struct {
	checks  *checker.Checker
	records *state.Manager
	logger  zerolog.Logger

	interval       time.Duration
	recheckDays    int
	strategy       checker.Strategy
	seasonsToCheck int
}

// Options configures a Scheduler.
type Options struct {
	Interval       time.Duration
	RecheckDays    int
	Strategy       checker.Strategy
	SeasonsToCheck int
}

// New creates a scheduler over the checker and state manager.
func New(checks *checker.Checker, records *state.Manager, opts Options, logger zerolog.Logger) *Scheduler {
	return &Scheduler{
		checks:         checks,
		records:        records,
		logger:         logger,
		interval:       opts.Interval,
		recheckDays:    opts.RecheckDays,
		strategy:       opts.Strategy,
		seasonsToCheck: opts.SeasonsToCheck,
	}
}

// Run executes one recheck pass per interval until the context is
// cancelled. A pass already in flight finishes before shutdown completes.
func (s *Scheduler) Run(ctx context.Context) {
	s.logger.Info().
		Dur("interval", s.interval).
		Int("recheck_days", s.recheckDays).
		Msg("Scheduler started")

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("Scheduler stopped")
			return
		case <-ticker.C:
			s.runPass(ctx)
		}
	}
}

// runPass rechecks every stale unavailable item once.
func (s *Scheduler) runPass(ctx context.Context) {
	stale := s.records.StaleUnavailable(s.recheckDays)
	if len(stale) == 0 {
		s.logger.Debug().Msg("No stale items to recheck")
		return
	}

	s.logger.Info().Int("count", len(stale)).Msg("Rechecking stale items")

	for _, item := range stale {
		if ctx.Err() != nil {
			return
		}

		var qualifies bool
		var err error
		switch item.Type {
		case "movie":
			var result checker.Result
			result, err = s.checks.EvaluateMovie(ctx, item.ID, nil)
			qualifies = result.Qualifies
		case "series":
			var result checker.Result
			result, err = s.checks.EvaluateSeries(ctx, item.ID, checker.SeriesOptions{
				Strategy:       s.strategy,
				SeasonsToCheck: s.seasonsToCheck,
			})
			qualifies = result.Qualifies
		default:
			continue
		}

		if err != nil {
			s.logger.Warn().
				Err(err).
				Str("type", item.Type).
				Int64("id", item.ID).
				Msg("Scheduled recheck failed")
			continue
		}

		if err := s.records.RecordCheck(item, qualifies); err != nil {
			s.logger.Warn().Err(err).Msg("Failed to record recheck result")
		}
		if qualifies {
			s.logger.Info().
				Str("type", item.Type).
				Int64("id", item.ID).
				Msg("Previously unavailable item now has a qualifying release")
		}
	}
}
