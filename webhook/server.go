// Package webhook receives Radarr and Sonarr webhook events and triggers
// availability checks for the media they reference. Event handling is
// asynchronous: the webhook responds immediately so the upstream never
// retries, and the evaluation outcome lands in the state file.
package webhook

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/s0up4200/findarr/checker"
	"github.com/s0up4200/findarr/state"
)

// payload is the envelope both *arr webhook bodies share. Only the fields
// the receiver routes on are decoded.
type payload struct {
	EventType string `json:"eventType"`
	Movie     *struct {
		ID    int64  `json:"id"`
		Title string `json:"title"`
	} `json:"movie"`
	Series *struct {
		ID    int64  `json:"id"`
		Title string `json:"title"`
	} `json:"series"`
}

// Options configures the server.
type Options struct {
	Host           string
	Port           int
	APIKey         string // empty disables auth
	Strategy       checker.Strategy
	SeasonsToCheck int
}

// Server is the webhook receiver.
type Server struct {
	checks  *checker.Checker
	records *state.Manager
	opts    Options
	logger  zerolog.Logger

	wg sync.WaitGroup
}

// NewServer creates a webhook server. records may be nil when no state
// file is configured.
func NewServer(checks *checker.Checker, records *state.Manager, opts Options, logger zerolog.Logger) *Server {
	return &Server{
		checks:  checks,
		records: records,
		opts:    opts,
		logger:  logger,
	}
}

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /status", s.requireKey(s.handleStatus))
	mux.HandleFunc("POST /webhook/radarr", s.requireKey(s.handleRadarr))
	mux.HandleFunc("POST /webhook/sonarr", s.requireKey(s.handleSonarr))
	return mux
}

// Run serves until the context is cancelled, then shuts down gracefully
// and waits for in-flight checks to finish.
func (s *Server) Run(ctx context.Context) error {
	addr := net.JoinHostPort(s.opts.Host, strconv.Itoa(s.opts.Port))
	server := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", addr).Msg("Webhook server listening")
		errc <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		err := server.Shutdown(shutdownCtx)
		s.wg.Wait()
		return err
	case err := <-errc:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}

// requireKey rejects requests without the configured X-Api-Key header.
func (s *Server) requireKey(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.opts.APIKey != "" && r.Header.Get("X-Api-Key") != s.opts.APIKey {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid or missing API key"})
			return
		}
		next(w, r)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":          "ok",
		"strategy":        string(s.opts.Strategy),
		"seasonsToCheck":  s.opts.SeasonsToCheck,
		"stateConfigured": s.records != nil,
	})
}

func (s *Server) handleRadarr(w http.ResponseWriter, r *http.Request) {
	p, err := decodePayload(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	if p.EventType == "Test" {
		writeJSON(w, http.StatusOK, map[string]string{"status": "test ok"})
		return
	}
	if p.Movie == nil || p.Movie.ID == 0 {
		// Unknown or irrelevant events are acknowledged, not errored, so
		// the upstream never retries them.
		writeJSON(w, http.StatusOK, map[string]string{"status": "ignored"})
		return
	}

	movieID := p.Movie.ID
	title := p.Movie.Title
	s.logger.Info().
		Str("event", p.EventType).
		Int64("movie_id", movieID).
		Str("title", title).
		Msg("Radarr webhook received, scheduling check")

	s.async(func(ctx context.Context) {
		result, err := s.checks.EvaluateMovie(ctx, movieID, nil)
		if err != nil {
			s.logger.Error().Err(err).Int64("movie_id", movieID).Msg("Webhook-triggered movie check failed")
			return
		}
		s.record(state.Item{Type: "movie", ID: movieID}, result.Qualifies)
	})

	writeJSON(w, http.StatusOK, map[string]string{"status": "check scheduled"})
}

func (s *Server) handleSonarr(w http.ResponseWriter, r *http.Request) {
	p, err := decodePayload(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	if p.EventType == "Test" {
		writeJSON(w, http.StatusOK, map[string]string{"status": "test ok"})
		return
	}
	if p.Series == nil || p.Series.ID == 0 {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ignored"})
		return
	}

	seriesID := p.Series.ID
	title := p.Series.Title
	s.logger.Info().
		Str("event", p.EventType).
		Int64("series_id", seriesID).
		Str("title", title).
		Msg("Sonarr webhook received, scheduling check")

	s.async(func(ctx context.Context) {
		result, err := s.checks.EvaluateSeries(ctx, seriesID, checker.SeriesOptions{
			Strategy:       s.opts.Strategy,
			SeasonsToCheck: s.opts.SeasonsToCheck,
		})
		if err != nil {
			s.logger.Error().Err(err).Int64("series_id", seriesID).Msg("Webhook-triggered series check failed")
			return
		}
		s.record(state.Item{Type: "series", ID: seriesID}, result.Qualifies)
	})

	writeJSON(w, http.StatusOK, map[string]string{"status": "check scheduled"})
}

func (s *Server) async(fn func(context.Context)) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()
		fn(ctx)
	}()
}

func (s *Server) record(item state.Item, available bool) {
	if s.records == nil {
		return
	}
	if err := s.records.RecordCheck(item, available); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to record check result")
	}
}

func decodePayload(r *http.Request) (payload, error) {
	var p payload
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		return p, fmt.Errorf("invalid webhook payload: %w", err)
	}
	return p, nil
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
