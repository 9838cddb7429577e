package media

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEpisodeAired(t *testing.T) {
	today := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	assert.True(t, Episode{AirDate: today.AddDate(0, 0, -1)}.Aired(today))
	assert.True(t, Episode{AirDate: today}.Aired(today), "airing today counts as aired")
	assert.False(t, Episode{AirDate: today.AddDate(0, 0, 1)}.Aired(today))
	assert.False(t, Episode{}.Aired(today), "unknown air date never counts as aired")
}

func TestSeriesSeasonCount(t *testing.T) {
	s := Series{Seasons: []Season{
		{SeasonNumber: 0},
		{SeasonNumber: 1},
		{SeasonNumber: 2},
	}}
	assert.Equal(t, 2, s.SeasonCount())
	assert.Equal(t, 0, Series{}.SeasonCount())
}
