package cmd

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/s0up4200/findarr/checker"
	"github.com/s0up4200/findarr/criteria"
	"github.com/s0up4200/findarr/state"
)

var (
	batchMovies      bool
	batchSeries      bool
	batchResume      bool
	batchConcurrency int
	batchCriteria    string
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Check the whole library for qualifying releases",
	Long: `Check every movie and/or series in your library for a qualifying
release. Results are recorded in the state file so interrupted runs can
be resumed with --resume and items already confirmed available are
skipped on later runs.`,
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().BoolVar(&batchMovies, "movies", false, "check all movies")
	batchCmd.Flags().BoolVar(&batchSeries, "series", false, "check all series")
	batchCmd.Flags().BoolVar(&batchResume, "resume", false, "resume an interrupted batch run")
	batchCmd.Flags().IntVar(&batchConcurrency, "concurrency", 3, "number of items checked in parallel")
	batchCmd.Flags().StringVar(&batchCriteria, "criteria", "4k", "named criteria to match releases against")
}

func runBatch(cmd *cobra.Command, args []string) error {
	if !batchMovies && !batchSeries {
		return fmt.Errorf("nothing to do, pass --movies and/or --series")
	}
	if records == nil {
		return fmt.Errorf("batch runs require state.path to be configured")
	}
	if batchConcurrency < 1 {
		batchConcurrency = 1
	}

	ctx := context.Background()

	if batchMovies {
		if err := runBatchMovies(ctx); err != nil {
			return err
		}
	}
	if batchSeries {
		if err := runBatchSeries(ctx); err != nil {
			return err
		}
	}
	return nil
}

func runBatchMovies(ctx context.Context) error {
	if radarrClient == nil {
		return fmt.Errorf("radarr is not configured")
	}
	match, err := criteria.ForName(batchCriteria)
	if err != nil {
		return err
	}

	movies, err := radarrClient.GetAllMovies(ctx)
	if err != nil {
		return fmt.Errorf("failed to list movies: %w", err)
	}

	progress, err := openBatch("movie", len(movies))
	if err != nil {
		return err
	}

	var found, failed atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(batchConcurrency)

	for _, movie := range movies {
		if progress != nil && progress.Processed(movie.ID) {
			continue
		}
		if skipRecorded(state.Item{Type: "movie", ID: movie.ID}) {
			continue
		}

		g.Go(func() error {
			result, err := checks.EvaluateMovie(gctx, movie.ID, match)
			if err != nil {
				failed.Add(1)
				logger.Warn().Err(err).Int64("movie_id", movie.ID).Str("title", movie.Title).
					Msg("Movie check failed, continuing batch")
				return nil
			}
			if result.Qualifies {
				found.Add(1)
				logger.Info().Int64("movie_id", movie.ID).Str("title", movie.Title).
					Msg("Qualifying release available")
			}
			recordResult(state.Item{Type: "movie", ID: movie.ID}, result.Qualifies)
			if err := records.MarkProcessed(movie.ID); err != nil {
				logger.Warn().Err(err).Msg("Failed to update batch progress")
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	if err := records.ClearBatch(); err != nil {
		logger.Warn().Err(err).Msg("Failed to clear batch progress")
	}

	fmt.Printf("Movies: %d checked, %d with a qualifying release, %d failed\n",
		len(movies), found.Load(), failed.Load())
	return nil
}

func runBatchSeries(ctx context.Context) error {
	if sonarrClient == nil {
		return fmt.Errorf("sonarr is not configured")
	}
	if criteria.MovieOnly(batchCriteria) {
		return fmt.Errorf("criteria %q applies only to movies", batchCriteria)
	}
	match, err := criteria.ForName(batchCriteria)
	if err != nil {
		return err
	}
	strategy, err := checker.ParseStrategy(cfg.Check.Strategy)
	if err != nil {
		return err
	}
	opts := checker.SeriesOptions{
		Strategy:       strategy,
		SeasonsToCheck: cfg.Check.SeasonsToCheck,
		Match:          match,
	}

	allSeries, err := sonarrClient.GetAllSeries(ctx)
	if err != nil {
		return fmt.Errorf("failed to list series: %w", err)
	}

	progress, err := openBatch("series", len(allSeries))
	if err != nil {
		return err
	}

	var found, failed atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(batchConcurrency)

	for _, series := range allSeries {
		if progress != nil && progress.Processed(series.ID) {
			continue
		}
		if skipRecorded(state.Item{Type: "series", ID: series.ID}) {
			continue
		}

		g.Go(func() error {
			result, err := checks.EvaluateSeries(gctx, series.ID, opts)
			if err != nil {
				failed.Add(1)
				logger.Warn().Err(err).Int64("series_id", series.ID).Str("title", series.Title).
					Msg("Series check failed, continuing batch")
				return nil
			}
			if result.Qualifies {
				found.Add(1)
				logger.Info().Int64("series_id", series.ID).Str("title", series.Title).
					Msg("Qualifying release available")
			}
			recordResult(state.Item{Type: "series", ID: series.ID}, result.Qualifies)
			if err := records.MarkProcessed(series.ID); err != nil {
				logger.Warn().Err(err).Msg("Failed to update batch progress")
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	if err := records.ClearBatch(); err != nil {
		logger.Warn().Err(err).Msg("Failed to clear batch progress")
	}

	fmt.Printf("Series: %d checked, %d with a qualifying release, %d failed\n",
		len(allSeries), found.Load(), failed.Load())
	return nil
}

// openBatch resumes a compatible in-progress batch or starts a fresh one.
// The returned progress is non-nil only when resuming.
func openBatch(itemType string, total int) (*state.BatchProgress, error) {
	if batchResume {
		if progress := records.BatchInProgress(); progress != nil && progress.ItemType == itemType {
			logger.Info().Str("batch_id", progress.BatchID).
				Int("processed", len(progress.ProcessedIDs)).Int("total", progress.TotalItems).
				Msg("Resuming batch run")
			return progress, nil
		}
	}

	batchID := fmt.Sprintf("%s-%d", itemType, time.Now().Unix())
	if err := records.StartBatch(batchID, itemType, total); err != nil {
		return nil, fmt.Errorf("failed to start batch: %w", err)
	}
	return nil, nil
}

// skipRecorded reports whether a previous check makes this item skippable:
// already available, or unavailable but checked too recently to retry.
func skipRecorded(item state.Item) bool {
	record, ok := records.GetCheck(item)
	if !ok {
		return false
	}
	if record.Result == state.ResultAvailable {
		return true
	}
	cutoff := time.Now().UTC().AddDate(0, 0, -cfg.State.RecheckDays)
	return !record.LastChecked.Before(cutoff)
}
