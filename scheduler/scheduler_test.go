package scheduler

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/s0up4200/findarr/arrhttp"
	"github.com/s0up4200/findarr/checker"
	"github.com/s0up4200/findarr/radarr"
	"github.com/s0up4200/findarr/sonarr"
	"github.com/s0up4200/findarr/state"
)

// staleStateFile writes a state file whose records are old enough to be
// rechecked.
func staleStateFile(t *testing.T) string {
	t.Helper()
	old := time.Now().UTC().AddDate(0, 0, -30).Format(time.RFC3339)
	content := fmt.Sprintf(`{
		"version": 1,
		"checks": {
			"movie:42": {"last_checked": %q, "result": "unavailable"},
			"movie:43": {"last_checked": %q, "result": "available"},
			"series:7": {"last_checked": %q, "result": "unavailable"}
		}
	}`, old, old, old)

	path := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func newTestScheduler(t *testing.T, releasesBody string) (*Scheduler, *state.Manager) {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v3/release", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(releasesBody))
	})
	mux.HandleFunc("/api/v3/series/7", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id": 7, "title": "Some Show", "year": 2020, "seasons": []}`))
	})
	mux.HandleFunc("/api/v3/episode", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[
			{"id": 100, "seriesId": 7, "seasonNumber": 1, "episodeNumber": 1,
			 "airDateUtc": "2020-01-01T00:00:00Z", "hasFile": true, "monitored": true}
		]`))
	})
	upstream := httptest.NewServer(mux)
	t.Cleanup(upstream.Close)

	fetcher, err := arrhttp.NewFetcher(upstream.URL, "key", arrhttp.WithMaxAttempts(1))
	require.NoError(t, err)

	checks := checker.New(
		radarr.NewClient(fetcher, zerolog.Nop()),
		sonarr.NewClient(fetcher, zerolog.Nop()),
		zerolog.Nop(),
	)
	records := state.NewManager(staleStateFile(t), zerolog.Nop())

	s := New(checks, records, Options{
		Interval:       time.Hour,
		RecheckDays:    7,
		Strategy:       checker.StrategyRecent,
		SeasonsToCheck: 3,
	}, zerolog.Nop())
	return s, records
}

func TestRunPass_RechecksStaleUnavailable(t *testing.T) {
	s, records := newTestScheduler(t, `[
		{"guid": "rel-1", "title": "Item.2160p.WEB-DL", "indexer": "Idx",
		 "quality": {"quality": {"id": 18, "name": "WEBDL-2160p", "resolution": 2160}}}
	]`)

	s.runPass(context.Background())

	movie, ok := records.GetCheck(state.Item{Type: "movie", ID: 42})
	require.True(t, ok)
	assert.Equal(t, state.ResultAvailable, movie.Result, "newly available release recorded")

	series, ok := records.GetCheck(state.Item{Type: "series", ID: 7})
	require.True(t, ok)
	assert.Equal(t, state.ResultAvailable, series.Result)

	// Nothing is stale anymore after a fresh pass.
	assert.Empty(t, records.StaleUnavailable(7))
}

func TestRunPass_StillUnavailableStaysRecorded(t *testing.T) {
	s, records := newTestScheduler(t, `[]`)

	s.runPass(context.Background())

	movie, ok := records.GetCheck(state.Item{Type: "movie", ID: 42})
	require.True(t, ok)
	assert.Equal(t, state.ResultUnavailable, movie.Result)
	assert.WithinDuration(t, time.Now().UTC(), movie.LastChecked, 5*time.Second,
		"recheck refreshes the timestamp")
}

func TestRun_StopsOnContextCancel(t *testing.T) {
	s, _ := newTestScheduler(t, `[]`)
	s.interval = 10 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	time.Sleep(30 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop after context cancellation")
	}
}
