package radarr

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/s0up4200/findarr/arrhttp"
	"github.com/s0up4200/findarr/criteria"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	fetcher, err := arrhttp.NewFetcher(server.URL, "test-key", arrhttp.WithMaxAttempts(1))
	require.NoError(t, err)
	return NewClient(fetcher, zerolog.Nop())
}

const releasesBody = `[
	{
		"guid": "rel-1",
		"title": "Inception.2010.2160p.UHD.BluRay.x265",
		"indexer": "NZBIndexer",
		"size": 30000000000,
		"seeders": 45,
		"age": 120,
		"quality": {"quality": {"id": 19, "name": "Bluray-2160p", "resolution": 2160}}
	},
	{
		"guid": "rel-2",
		"title": "Inception.2010.1080p.BluRay.x264",
		"indexer": "",
		"size": 9000000000,
		"seeders": 210,
		"age": 3650,
		"quality": {"quality": {"id": 7, "name": "Bluray-1080p", "resolution": 1080}}
	}
]`

func TestGetMovieReleases(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v3/release", r.URL.Path)
		assert.Equal(t, "42", r.URL.Query().Get("movieId"))
		w.Write([]byte(releasesBody))
	})

	releases, err := client.GetMovieReleases(context.Background(), 42)
	require.NoError(t, err)
	require.Len(t, releases, 2)

	assert.Equal(t, "rel-1", releases[0].GUID)
	assert.Equal(t, "NZBIndexer", releases[0].Indexer)
	assert.Equal(t, 2160, releases[0].Quality.Resolution)
	assert.Equal(t, "Bluray-2160p", releases[0].Quality.Name)
	assert.Equal(t, 120, releases[0].AgeDays)

	assert.Equal(t, "Unknown", releases[1].Indexer, "missing indexer names default")
}

func TestGetMovieReleases_Empty(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	})

	releases, err := client.GetMovieReleases(context.Background(), 42)
	require.NoError(t, err)
	assert.Empty(t, releases)
}

func TestGetMovieReleases_MovieNotFound(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	_, err := client.GetMovieReleases(context.Background(), 999)
	require.Error(t, err)
	assert.ErrorIs(t, err, arrhttp.ErrNotFound)
}

func TestHasQualifyingRelease(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(releasesBody))
	})

	ok, err := client.HasQualifyingRelease(context.Background(), 42, criteria.FourK)
	require.NoError(t, err)
	assert.True(t, ok)
}

const moviesBody = `[
	{"id": 1, "title": "The Matrix", "year": 1999, "tmdbId": 603, "imdbId": "tt0133093"},
	{"id": 2, "title": "The Matrix Reloaded", "year": 2003, "tmdbId": 604, "imdbId": "tt0234215"},
	{"id": 3, "title": "Inception", "year": 2010, "tmdbId": 27205, "imdbId": "tt1375666"}
]`

func TestGetAllMovies(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v3/movie", r.URL.Path)
		w.Write([]byte(moviesBody))
	})

	movies, err := client.GetAllMovies(context.Background())
	require.NoError(t, err)
	require.Len(t, movies, 3)
	assert.Equal(t, int64(1), movies[0].ID)
	assert.Equal(t, "The Matrix", movies[0].Title)
	assert.Equal(t, 1999, movies[0].Year)
	assert.Equal(t, int64(603), movies[0].TmdbID)
}

func TestFindMovieByName(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(moviesBody))
	})

	tests := []struct {
		query string
		want  int
	}{
		{"matrix", 2},
		{"MATRIX RELOADED", 1},
		{"inception", 1},
		{"alien", 0},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			matches, err := client.FindMovieByName(context.Background(), tt.query)
			require.NoError(t, err)
			assert.Len(t, matches, tt.want)
		})
	}
}
