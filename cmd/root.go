package cmd

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/s0up4200/findarr/arrhttp"
	"github.com/s0up4200/findarr/checker"
	"github.com/s0up4200/findarr/config"
	"github.com/s0up4200/findarr/radarr"
	"github.com/s0up4200/findarr/sonarr"
	"github.com/s0up4200/findarr/state"
)

var (
	cfgFile      string
	logLevel     string
	cfg          *config.Config
	logger       zerolog.Logger
	radarrClient *radarr.Client
	sonarrClient *sonarr.Client
	checks       *checker.Checker
	records      *state.Manager

	version   = "dev"
	buildTime = "unknown"
)

// Exit codes for check commands: a qualifying release was found, confirmed
// absent after a full scan, or errors prevented a determination.
const (
	exitFound        = 0
	exitNotFound     = 1
	exitUndetermined = 2
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "findarr",
	Short: "Check 4K availability for movies and TV shows via Radarr/Sonarr",
	Long: `findarr queries your Radarr and Sonarr instances for indexer releases
and reports whether a usable high-resolution release exists, without
downloading anything. Series are sampled (a bounded subset of episodes
is probed) to keep indexer load reasonable.`,
	PersistentPreRunE: initializeApp,
}

// SetVersion stores build metadata injected by the linker.
func SetVersion(v, bt string) {
	version = v
	buildTime = bt
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level override (debug, info, warn, error)")
}

// initializeApp initializes the configuration and clients
func initializeApp(cmd *cobra.Command, args []string) error {
	// Load configuration
	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Setup logger
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	logger = setupLogger(cfg.Logging)

	// Create one fetcher per configured instance; each owns its cache and
	// retry state end to end.
	if cfg.Radarr.Configured() {
		fetcher, err := newFetcher(cfg.Radarr)
		if err != nil {
			return fmt.Errorf("failed to create Radarr client: %w", err)
		}
		radarrClient = radarr.NewClient(fetcher, logger)
	}
	if cfg.Sonarr.Configured() {
		fetcher, err := newFetcher(cfg.Sonarr)
		if err != nil {
			return fmt.Errorf("failed to create Sonarr client: %w", err)
		}
		sonarrClient = sonarr.NewClient(fetcher, logger)
	}

	checks = newChecker(radarrClient, sonarrClient)

	if cfg.State.Path != "" {
		records = state.NewManager(cfg.State.Path, logger)
	}

	return nil
}

// newChecker builds the facade without handing it typed nils.
func newChecker(movies *radarr.Client, series *sonarr.Client) *checker.Checker {
	var movieSource checker.MovieSource
	var seriesSource checker.SeriesSource
	if movies != nil {
		movieSource = movies
	}
	if series != nil {
		seriesSource = series
	}
	return checker.New(movieSource, seriesSource, logger)
}

func newFetcher(arr config.ArrConfig) (*arrhttp.Fetcher, error) {
	return arrhttp.NewFetcher(arr.URL, arr.APIKey,
		arrhttp.WithTimeout(time.Duration(cfg.Check.TimeoutSeconds)*time.Second),
		arrhttp.WithCacheTTL(time.Duration(cfg.Check.CacheTTLSeconds)*time.Second),
		arrhttp.WithMaxAttempts(cfg.Check.MaxAttempts),
		arrhttp.WithLogger(logger),
	)
}

// setupLogger configures the zerolog logger
func setupLogger(cfg config.LoggingConfig) zerolog.Logger {
	// Set log level
	level := zerolog.InfoLevel
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = zerolog.DebugLevel
	case "warn":
		level = zerolog.WarnLevel
	case "error":
		level = zerolog.ErrorLevel
	}

	zerolog.SetGlobalLevel(level)

	// Configure output format
	if cfg.Format == "json" {
		return zerolog.New(os.Stderr).With().Timestamp().Logger()
	}

	// Console format; color only when stderr is a real terminal
	output := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
		NoColor:    !cfg.Color || !isatty.IsTerminal(os.Stderr.Fd()),
	}

	return zerolog.New(output).With().Timestamp().Logger()
}

// versionCmd prints build metadata
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	// No clients needed for version output
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("findarr %s (built %s)\n", version, buildTime)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
