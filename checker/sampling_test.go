package checker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStrategy(t *testing.T) {
	for _, valid := range []string{"recent", "distributed", "all"} {
		s, err := ParseStrategy(valid)
		require.NoError(t, err)
		assert.Equal(t, Strategy(valid), s)
	}

	_, err := ParseStrategy("newest")
	require.Error(t, err)
	_, err = ParseStrategy("")
	require.Error(t, err)
}

func TestSelectSeasons_Recent(t *testing.T) {
	tests := []struct {
		name       string
		eligible   []int
		maxSeasons int
		want       []int
	}{
		{"takes highest n", []int{1, 2, 3, 4, 5}, 3, []int{3, 4, 5}},
		{"unordered input", []int{4, 1, 5, 3, 2}, 2, []int{4, 5}},
		{"n larger than set selects all", []int{1, 2}, 5, []int{1, 2}},
		{"n equal to set", []int{1, 2, 3}, 3, []int{1, 2, 3}},
		{"zero clamps to one", []int{1, 2, 3}, 0, []int{3}},
		{"single season", []int{7}, 3, []int{7}},
		{"empty", nil, 3, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SelectSeasons(tt.eligible, StrategyRecent, tt.maxSeasons))
		})
	}
}

func TestSelectSeasons_Distributed(t *testing.T) {
	tests := []struct {
		name     string
		eligible []int
		want     []int
	}{
		{"first middle last", []int{1, 2, 3, 4, 5}, []int{1, 3, 5}},
		{"even count uses integer midpoint", []int{1, 2, 3, 4}, []int{1, 3, 4}},
		{"two seasons", []int{1, 2}, []int{1, 2}},
		{"one season collapses", []int{4}, []int{4}},
		{"gaps in numbering", []int{2, 5, 9}, []int{2, 5, 9}},
		{"empty", nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SelectSeasons(tt.eligible, StrategyDistributed, 3))
		})
	}
}

func TestSelectSeasons_All(t *testing.T) {
	assert.Equal(t, []int{1, 2, 3, 4}, SelectSeasons([]int{3, 1, 4, 2}, StrategyAll, 2))
}
