package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Search the Radarr and Sonarr libraries by name",
}

var searchMovieCmd = &cobra.Command{
	Use:   "movie <name>",
	Short: "Find movies matching a name",
	Args:  cobra.ExactArgs(1),
	RunE:  runSearchMovie,
}

var searchSeriesCmd = &cobra.Command{
	Use:   "series <name>",
	Short: "Find series matching a name",
	Args:  cobra.ExactArgs(1),
	RunE:  runSearchSeries,
}

func init() {
	rootCmd.AddCommand(searchCmd)
	searchCmd.AddCommand(searchMovieCmd)
	searchCmd.AddCommand(searchSeriesCmd)
}

func runSearchMovie(cmd *cobra.Command, args []string) error {
	matches, err := checks.FindMovieByName(context.Background(), args[0])
	if err != nil {
		return fmt.Errorf("failed to search movies: %w", err)
	}
	if len(matches) == 0 {
		fmt.Printf("No movies found matching %q\n", args[0])
		os.Exit(exitNotFound)
	}

	fmt.Printf("Found %d movie(s):\n", len(matches))
	for _, m := range matches {
		fmt.Printf("  %6d  %s (%d)\n", m.ID, m.Title, m.Year)
	}
	return nil
}

func runSearchSeries(cmd *cobra.Command, args []string) error {
	matches, err := checks.FindSeriesByName(context.Background(), args[0])
	if err != nil {
		return fmt.Errorf("failed to search series: %w", err)
	}
	if len(matches) == 0 {
		fmt.Printf("No series found matching %q\n", args[0])
		os.Exit(exitNotFound)
	}

	fmt.Printf("Found %d series:\n", len(matches))
	for _, s := range matches {
		fmt.Printf("  %6d  %s (%d), %d season(s)\n", s.ID, s.Title, s.Year, s.SeasonCount())
	}
	return nil
}
