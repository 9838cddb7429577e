package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/s0up4200/findarr/checker"
	"github.com/s0up4200/findarr/criteria"
	"github.com/s0up4200/findarr/media"
	"github.com/s0up4200/findarr/state"
)

var (
	outputFormat string
	strategyFlag string
	seasonsFlag  int
	criteriaFlag string
	exprFlag     string
	freshFlag    bool
)

// checkCmd groups the movie and series checks
var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check release availability for media items",
}

var checkMovieCmd = &cobra.Command{
	Use:   "movie <id|name>",
	Short: "Check whether a movie has a qualifying release",
	Long: `Check whether a movie has a qualifying release available on your indexers.

Accepts a numeric Radarr movie ID or a movie name. A name matching several
movies lists the candidates so you can re-run with the numeric ID.

Exit codes: 0 release found, 1 confirmed absent, 2 could not determine.`,
	Args: cobra.ExactArgs(1),
	RunE: runCheckMovie,
}

var checkSeriesCmd = &cobra.Command{
	Use:   "series <id|name>",
	Short: "Check whether a series has a qualifying release",
	Long: `Check whether a series has a qualifying release available on your indexers.

A bounded sample of episodes is probed: the newest aired episode first,
then one representative episode per strategy-selected season.

Exit codes: 0 release found, 1 confirmed absent, 2 could not determine.`,
	Args: cobra.ExactArgs(1),
	RunE: runCheckSeries,
}

func init() {
	rootCmd.AddCommand(checkCmd)
	checkCmd.AddCommand(checkMovieCmd)
	checkCmd.AddCommand(checkSeriesCmd)

	for _, c := range []*cobra.Command{checkMovieCmd, checkSeriesCmd} {
		c.Flags().StringVarP(&outputFormat, "format", "f", "table", "output format (json, table, simple)")
		c.Flags().StringVar(&criteriaFlag, "criteria", "4k", "named criteria to match releases against")
		c.Flags().StringVar(&exprFlag, "expr", "", "custom matching expression (overrides --criteria)")
		c.Flags().BoolVar(&freshFlag, "fresh", false, "drop cached responses before checking")
	}
	checkSeriesCmd.Flags().StringVar(&strategyFlag, "strategy", "", "season sampling strategy (recent, distributed, all)")
	checkSeriesCmd.Flags().IntVar(&seasonsFlag, "seasons", 0, "max seasons to probe for the recent strategy")
}

func runCheckMovie(cmd *cobra.Command, args []string) error {
	match, err := buildMatcher(false)
	if err != nil {
		return err
	}

	if freshFlag && radarrClient != nil {
		radarrClient.ClearCache()
	}

	ctx := context.Background()
	movieID, name, err := resolveMovie(ctx, args[0])
	if err != nil {
		return err
	}

	result, err := checks.EvaluateMovie(ctx, movieID, match)
	if err != nil {
		fmt.Fprintf(os.Stderr, "could not check movie %d: %v\n", movieID, err)
		os.Exit(exitUndetermined)
	}
	result.ItemName = name

	recordResult(state.Item{Type: "movie", ID: movieID}, result.Qualifies)
	printResult(result)
	os.Exit(exitCodeFor(result))
	return nil
}

func runCheckSeries(cmd *cobra.Command, args []string) error {
	match, err := buildMatcher(true)
	if err != nil {
		return err
	}

	opts := checker.SeriesOptions{
		SeasonsToCheck: cfg.Check.SeasonsToCheck,
		Match:          match,
	}
	if seasonsFlag > 0 {
		opts.SeasonsToCheck = seasonsFlag
	}
	strategyValue := cfg.Check.Strategy
	if strategyFlag != "" {
		strategyValue = strategyFlag
	}
	strategy, err := checker.ParseStrategy(strategyValue)
	if err != nil {
		return err
	}
	opts.Strategy = strategy

	if freshFlag && sonarrClient != nil {
		sonarrClient.ClearCache()
	}

	ctx := context.Background()
	seriesID, err := resolveSeries(ctx, args[0])
	if err != nil {
		return err
	}

	result, err := checks.EvaluateSeries(ctx, seriesID, opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "could not check series %d: %v\n", seriesID, err)
		os.Exit(exitUndetermined)
	}

	recordResult(state.Item{Type: "series", ID: seriesID}, result.Qualifies)
	printResult(result)
	os.Exit(exitCodeFor(result))
	return nil
}

// buildMatcher combines the --criteria and --expr flags into one matcher.
func buildMatcher(forSeries bool) (criteria.Matcher, error) {
	if exprFlag != "" {
		return criteria.FromExpression(exprFlag)
	}
	if forSeries && criteria.MovieOnly(criteriaFlag) {
		return nil, fmt.Errorf("criteria %q applies only to movies", criteriaFlag)
	}
	return criteria.ForName(criteriaFlag)
}

// resolveMovie turns a numeric ID or a name into a movie ID.
func resolveMovie(ctx context.Context, arg string) (int64, string, error) {
	if id, err := strconv.ParseInt(arg, 10, 64); err == nil {
		return id, "", nil
	}

	matches, err := checks.FindMovieByName(ctx, arg)
	if err != nil {
		return 0, "", fmt.Errorf("failed to search movies: %w", err)
	}
	switch len(matches) {
	case 0:
		return 0, "", fmt.Errorf("no movie found matching %q", arg)
	case 1:
		return matches[0].ID, matches[0].Title, nil
	}

	fmt.Fprintln(os.Stderr, "Multiple movies found:")
	for _, m := range matches {
		fmt.Fprintf(os.Stderr, "  %d: %s (%d)\n", m.ID, m.Title, m.Year)
	}
	return 0, "", fmt.Errorf("ambiguous name %q, re-run with the numeric ID", arg)
}

// resolveSeries turns a numeric ID or a name into a series ID.
func resolveSeries(ctx context.Context, arg string) (int64, error) {
	if id, err := strconv.ParseInt(arg, 10, 64); err == nil {
		return id, nil
	}

	matches, err := checks.FindSeriesByName(ctx, arg)
	if err != nil {
		return 0, fmt.Errorf("failed to search series: %w", err)
	}
	switch len(matches) {
	case 0:
		return 0, fmt.Errorf("no series found matching %q", arg)
	case 1:
		return matches[0].ID, nil
	}

	fmt.Fprintln(os.Stderr, "Multiple series found:")
	for _, s := range matches {
		fmt.Fprintf(os.Stderr, "  %d: %s (%d)\n", s.ID, s.Title, s.Year)
	}
	return 0, fmt.Errorf("ambiguous name %q, re-run with the numeric ID", arg)
}

func recordResult(item state.Item, available bool) {
	if records == nil {
		return
	}
	if err := records.RecordCheck(item, available); err != nil {
		logger.Warn().Err(err).Msg("Failed to record check result")
	}
}

func exitCodeFor(result checker.Result) int {
	switch {
	case result.Qualifies:
		return exitFound
	case result.Undetermined():
		return exitUndetermined
	default:
		return exitNotFound
	}
}

// printResult renders a result in the selected output format.
func printResult(result checker.Result) {
	switch outputFormat {
	case "json":
		printResultJSON(result)
	case "simple":
		printResultSimple(result)
	default:
		printResultTable(result)
	}
}

type jsonResult struct {
	ItemID          int64    `json:"item_id"`
	ItemType        string   `json:"item_type"`
	ItemName        string   `json:"item_name,omitempty"`
	Qualifies       bool     `json:"qualifies"`
	MatchCount      int      `json:"match_count"`
	EpisodesChecked []int64  `json:"episodes_checked,omitempty"`
	SeasonsChecked  []int    `json:"seasons_checked,omitempty"`
	Strategy        string   `json:"strategy,omitempty"`
	ProbeErrors     []string `json:"probe_errors,omitempty"`
	Undetermined    bool     `json:"undetermined,omitempty"`
}

func printResultJSON(result checker.Result) {
	out := jsonResult{
		ItemID:          result.ItemID,
		ItemType:        string(result.ItemType),
		ItemName:        result.ItemName,
		Qualifies:       result.Qualifies,
		MatchCount:      len(result.MatchingReleases),
		EpisodesChecked: result.EpisodesChecked,
		SeasonsChecked:  result.SeasonsChecked,
		Strategy:        string(result.Strategy),
		Undetermined:    result.Undetermined(),
	}
	for _, pe := range result.ProbeErrors {
		out.ProbeErrors = append(out.ProbeErrors, fmt.Sprintf("episode %d: %s", pe.EpisodeID, pe.Kind))
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return
	}
	fmt.Println(string(data))
}

func printResultSimple(result checker.Result) {
	status := "no qualifying release"
	if result.Qualifies {
		status = "qualifying release available"
	} else if result.Undetermined() {
		status = "could not determine"
	}
	fmt.Printf("%s:%d: %s\n", result.ItemType, result.ItemID, status)
}

func printResultTable(result checker.Result) {
	title := fmt.Sprintf("%s %d", result.ItemType, result.ItemID)
	if result.ItemName != "" {
		title = fmt.Sprintf("%s (%s %d)", result.ItemName, result.ItemType, result.ItemID)
	}
	fmt.Printf("\nCheck: %s\n", title)
	fmt.Println(strings.Repeat("-", 60))

	verdict := "No"
	if result.Qualifies {
		verdict = "Yes"
	} else if result.Undetermined() {
		verdict = "Unknown (all probes failed)"
	}
	fmt.Printf("%-20s %s\n", "Qualifying release:", verdict)
	fmt.Printf("%-20s %d\n", "Matching releases:", len(result.MatchingReleases))

	if result.Strategy != "" {
		fmt.Printf("%-20s %s\n", "Strategy:", result.Strategy)
	}
	if len(result.SeasonsChecked) > 0 {
		fmt.Printf("%-20s %s\n", "Seasons probed:", joinInts(result.SeasonsChecked))
	}
	if len(result.EpisodesChecked) > 0 {
		fmt.Printf("%-20s %d\n", "Episodes probed:", len(result.EpisodesChecked))
	}
	if len(result.ProbeErrors) > 0 {
		fmt.Printf("%-20s %d\n", "Probe errors:", len(result.ProbeErrors))
		for _, pe := range result.ProbeErrors {
			fmt.Printf("  • episode %d (season %d): %s\n", pe.EpisodeID, pe.SeasonNumber, pe.Kind)
		}
	}

	for _, r := range topReleases(result.MatchingReleases, 5) {
		fmt.Printf("  • %s [%s, %s]\n", r.Title, r.Quality.Name, r.Indexer)
	}
}

func topReleases(releases []media.Release, n int) []media.Release {
	if len(releases) <= n {
		return releases
	}
	return releases[:n]
}

func joinInts(values []int) string {
	parts := make([]string, 0, len(values))
	for _, v := range values {
		parts = append(parts, strconv.Itoa(v))
	}
	return strings.Join(parts, ", ")
}
