package state

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	path := filepath.Join(t.TempDir(), "state.json")
	return NewManager(path, zerolog.Nop())
}

func TestRecordAndGetCheck(t *testing.T) {
	m := newTestManager(t)
	item := Item{Type: "movie", ID: 42}

	_, ok := m.GetCheck(item)
	assert.False(t, ok)

	require.NoError(t, m.RecordCheck(item, true))

	record, ok := m.GetCheck(item)
	require.True(t, ok)
	assert.Equal(t, ResultAvailable, record.Result)
	assert.WithinDuration(t, time.Now().UTC(), record.LastChecked, 5*time.Second)
}

func TestRecordCheck_PersistsAcrossManagers(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "state.json")

	first := NewManager(path, zerolog.Nop())
	require.NoError(t, first.RecordCheck(Item{Type: "series", ID: 7}, false))

	second := NewManager(path, zerolog.Nop())
	record, ok := second.GetCheck(Item{Type: "series", ID: 7})
	require.True(t, ok)
	assert.Equal(t, ResultUnavailable, record.Result)
}

func TestLoad_CorruptFileStartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	m := NewManager(path, zerolog.Nop())
	_, ok := m.GetCheck(Item{Type: "movie", ID: 1})
	assert.False(t, ok)

	// Writes still work after recovering from corruption.
	require.NoError(t, m.RecordCheck(Item{Type: "movie", ID: 1}, true))
}

func TestSave_WritesVersionedJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	m := NewManager(path, zerolog.Nop())
	require.NoError(t, m.RecordCheck(Item{Type: "movie", ID: 5}, false))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var parsed File
	require.NoError(t, json.Unmarshal(data, &parsed))
	assert.Equal(t, stateVersion, parsed.Version)
	assert.Contains(t, parsed.Checks, "movie:5")
}

func TestStaleUnavailable(t *testing.T) {
	m := newTestManager(t)

	require.NoError(t, m.RecordCheck(Item{Type: "movie", ID: 1}, false))
	require.NoError(t, m.RecordCheck(Item{Type: "movie", ID: 2}, true))
	require.NoError(t, m.RecordCheck(Item{Type: "series", ID: 3}, false))

	// Fresh records are never stale.
	assert.Empty(t, m.StaleUnavailable(7))

	// Backdate every record past the recheck window.
	m.mu.Lock()
	for key, record := range m.state.Checks {
		record.LastChecked = time.Now().UTC().AddDate(0, 0, -30)
		m.state.Checks[key] = record
	}
	m.mu.Unlock()

	stale := m.StaleUnavailable(7)
	assert.Len(t, stale, 2, "available items are not rechecked")
	for _, item := range stale {
		assert.NotEqual(t, int64(2), item.ID)
	}
}

func TestBatchProgress(t *testing.T) {
	m := newTestManager(t)

	assert.Nil(t, m.BatchInProgress())

	require.NoError(t, m.StartBatch("movie-123", "movie", 10))
	progress := m.BatchInProgress()
	require.NotNil(t, progress)
	assert.Equal(t, "movie-123", progress.BatchID)
	assert.Equal(t, 10, progress.TotalItems)

	require.NoError(t, m.MarkProcessed(4))
	require.NoError(t, m.MarkProcessed(4)) // idempotent
	require.NoError(t, m.MarkProcessed(9))

	progress = m.BatchInProgress()
	assert.Equal(t, []int64{4, 9}, progress.ProcessedIDs)
	assert.True(t, progress.Processed(4))
	assert.False(t, progress.Processed(5))

	require.NoError(t, m.ClearBatch())
	assert.Nil(t, m.BatchInProgress())
}

func TestMarkProcessed_NoOpenBatch(t *testing.T) {
	m := newTestManager(t)
	require.NoError(t, m.MarkProcessed(1))
	assert.Nil(t, m.BatchInProgress())
}
