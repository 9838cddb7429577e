// Package state persists a small JSON record of past check results so
// batch runs can skip, resume, and recheck stale items. The checker core
// does not depend on this package; it only ever sees the resulting "skip
// this subject" decisions.
package state

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

const stateVersion = 1

// Result values recorded per check.
const (
	ResultAvailable   = "available"
	ResultUnavailable = "unavailable"
)

// CheckRecord is the stored outcome of one evaluation.
type CheckRecord struct {
	LastChecked time.Time `json:"last_checked"`
	Result      string    `json:"result"`
}

// BatchProgress tracks a batch run for resume.
type BatchProgress struct {
	BatchID      string    `json:"batch_id"`
	ItemType     string    `json:"item_type"`
	TotalItems   int       `json:"total_items"`
	ProcessedIDs []int64   `json:"processed_ids"`
	StartedAt    time.Time `json:"started_at"`
}

// Processed reports whether the item was already handled in this batch.
func (b *BatchProgress) Processed(itemID int64) bool {
	for _, id := range b.ProcessedIDs {
		if id == itemID {
			return true
		}
	}
	return false
}

// File is the on-disk state layout.
type File struct {
	Version       int                    `json:"version"`
	Checks        map[string]CheckRecord `json:"checks"`
	BatchProgress *BatchProgress         `json:"batch_progress,omitempty"`
}

// Item identifies a checked subject.
type Item struct {
	Type string // "movie" or "series"
	ID   int64
}

func (i Item) key() string {
	return fmt.Sprintf("%s:%d", i.Type, i.ID)
}

// Manager loads and saves the state file. Safe for concurrent use within
// one process.
type Manager struct {
	path   string
	logger zerolog.Logger

	mu    sync.Mutex
	state *File
}

// NewManager creates a manager for the given state file path.
func NewManager(path string, logger zerolog.Logger) *Manager {
	return &Manager{path: path, logger: logger}
}

// load reads the file lazily. A missing or corrupt file yields empty
// state; corruption is logged, not fatal.
func (m *Manager) load() *File {
	if m.state != nil {
		return m.state
	}

	m.state = &File{Version: stateVersion, Checks: map[string]CheckRecord{}}

	data, err := os.ReadFile(m.path)
	if err != nil {
		if !os.IsNotExist(err) {
			m.logger.Warn().Err(err).Str("path", m.path).Msg("Failed to read state file, starting empty")
		}
		return m.state
	}

	var parsed File
	if err := json.Unmarshal(data, &parsed); err != nil {
		m.logger.Warn().Err(err).Str("path", m.path).Msg("Corrupt state file, starting empty")
		return m.state
	}
	if parsed.Checks == nil {
		parsed.Checks = map[string]CheckRecord{}
	}
	if parsed.Version == 0 {
		parsed.Version = stateVersion
	}
	m.state = &parsed
	return m.state
}

func (m *Manager) save() error {
	if err := os.MkdirAll(filepath.Dir(m.path), 0o755); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}
	data, err := json.MarshalIndent(m.state, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode state: %w", err)
	}
	if err := os.WriteFile(m.path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write state file: %w", err)
	}
	return nil
}

// RecordCheck stores the outcome of one evaluation and saves.
func (m *Manager) RecordCheck(item Item, available bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	result := ResultUnavailable
	if available {
		result = ResultAvailable
	}
	state := m.load()
	state.Checks[item.key()] = CheckRecord{
		LastChecked: time.Now().UTC(),
		Result:      result,
	}
	return m.save()
}

// GetCheck returns the stored record for an item, if any.
func (m *Manager) GetCheck(item Item) (CheckRecord, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	record, ok := m.load().Checks[item.key()]
	return record, ok
}

// StaleUnavailable returns items recorded unavailable whose last check is
// older than recheckDays.
func (m *Manager) StaleUnavailable(recheckDays int) []Item {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := time.Now().UTC().AddDate(0, 0, -recheckDays)
	var stale []Item
	for key, record := range m.load().Checks {
		if record.Result != ResultUnavailable || !record.LastChecked.Before(cutoff) {
			continue
		}
		var item Item
		if _, err := fmt.Sscanf(key, "movie:%d", &item.ID); err == nil {
			item.Type = "movie"
		} else if _, err := fmt.Sscanf(key, "series:%d", &item.ID); err == nil {
			item.Type = "series"
		} else {
			continue
		}
		stale = append(stale, item)
	}
	return stale
}

// StartBatch begins tracking a new batch run.
func (m *Manager) StartBatch(batchID, itemType string, totalItems int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	state := m.load()
	state.BatchProgress = &BatchProgress{
		BatchID:    batchID,
		ItemType:   itemType,
		TotalItems: totalItems,
		StartedAt:  time.Now().UTC(),
	}
	return m.save()
}

// BatchInProgress returns the current batch progress, if a batch is open.
func (m *Manager) BatchInProgress() *BatchProgress {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.load().BatchProgress
}

// MarkProcessed records one processed item in the open batch.
func (m *Manager) MarkProcessed(itemID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	state := m.load()
	if state.BatchProgress == nil {
		return nil
	}
	if !state.BatchProgress.Processed(itemID) {
		state.BatchProgress.ProcessedIDs = append(state.BatchProgress.ProcessedIDs, itemID)
	}
	return m.save()
}

// ClearBatch drops batch progress after successful completion.
func (m *Manager) ClearBatch() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	state := m.load()
	state.BatchProgress = nil
	return m.save()
}
