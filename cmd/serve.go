package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/s0up4200/findarr/checker"
	"github.com/s0up4200/findarr/scheduler"
	"github.com/s0up4200/findarr/webhook"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the webhook receiver and the periodic recheck loop",
	Long: `Run findarr as a long-lived process. The webhook receiver reacts to
Radarr/Sonarr import notifications by checking the affected item, and
the scheduler periodically rechecks items that were last seen without a
qualifying release. Both are enabled per the configuration file.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	if !cfg.Webhook.Enabled && !cfg.Scheduler.Enabled {
		return fmt.Errorf("nothing to serve, enable webhook and/or scheduler in the configuration")
	}
	if cfg.Scheduler.Enabled && records == nil {
		return fmt.Errorf("the scheduler requires state.path to be configured")
	}

	strategy, err := checker.ParseStrategy(cfg.Check.Strategy)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	if cfg.Webhook.Enabled {
		server := webhook.NewServer(checks, records, webhook.Options{
			Host:           cfg.Webhook.Host,
			Port:           cfg.Webhook.Port,
			APIKey:         cfg.Webhook.APIKey,
			Strategy:       strategy,
			SeasonsToCheck: cfg.Check.SeasonsToCheck,
		}, logger)
		g.Go(func() error {
			return server.Run(gctx)
		})
	}

	if cfg.Scheduler.Enabled {
		recheck := scheduler.New(checks, records, scheduler.Options{
			Interval:       time.Duration(cfg.Scheduler.IntervalMinutes) * time.Minute,
			RecheckDays:    cfg.State.RecheckDays,
			Strategy:       strategy,
			SeasonsToCheck: cfg.Check.SeasonsToCheck,
		}, logger)
		g.Go(func() error {
			recheck.Run(gctx)
			return nil
		})
	}

	logger.Info().Bool("webhook", cfg.Webhook.Enabled).Bool("scheduler", cfg.Scheduler.Enabled).
		Msg("Serving, press Ctrl+C to stop")
	if err := g.Wait(); err != nil && ctx.Err() == nil {
		return err
	}
	logger.Info().Msg("Shut down cleanly")
	return nil
}
