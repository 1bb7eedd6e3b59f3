package storage

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MockRepository is an in-memory implementation of Repository for testing.
// It stores all data in maps and slices, making tests fast and isolated.
type MockRepository struct {
	mu      sync.Mutex
	runs    map[string]*Run
	records map[string][]Record // Keyed by run ID

	// Hooks for test assertions
	StartRunCalled    bool
	CompleteRunCalled bool
	FailRunCalled     bool
	SaveRecordsCalled bool
	LastFailMessage   string

	// Error injection for testing error paths
	StartRunErr    error
	CompleteRunErr error
	FailRunErr     error
	SaveRecordsErr error
	GetRunErr      error
	ListRunsErr    error
	ListRecordsErr error
}

// NewMockRepository creates a new mock repository for testing
func NewMockRepository() *MockRepository {
	return &MockRepository{
		runs:    make(map[string]*Run),
		records: make(map[string][]Record),
	}
}

// Compile-time check that MockRepository implements Repository
var _ Repository = (*MockRepository)(nil)

// Close does nothing for mock
func (m *MockRepository) Close() error {
	return nil
}

// StartRun stores a copy of the run
func (m *MockRepository) StartRun(run *Run) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.StartRunCalled = true
	if m.StartRunErr != nil {
		return m.StartRunErr
	}

	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now().UTC()
	}
	run.Status = RunStatusRunning

	copied := *run
	m.runs[run.ID] = &copied
	return nil
}

// CompleteRun marks a run as complete
func (m *MockRepository) CompleteRun(runID string, counts RunCounts) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.CompleteRunCalled = true
	if m.CompleteRunErr != nil {
		return m.CompleteRunErr
	}

	run, ok := m.runs[runID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	now := time.Now().UTC()
	run.Status = RunStatusCompleted
	run.CompletedAt = &now
	run.RunCounts = counts
	return nil
}

// FailRun marks a run as failed
func (m *MockRepository) FailRun(runID string, message string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.FailRunCalled = true
	m.LastFailMessage = message
	if m.FailRunErr != nil {
		return m.FailRunErr
	}

	run, ok := m.runs[runID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	now := time.Now().UTC()
	run.Status = RunStatusFailed
	run.CompletedAt = &now
	run.ErrorMessage = message
	return nil
}

// SaveRecords appends records to the run
func (m *MockRepository) SaveRecords(runID string, records []Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.SaveRecordsCalled = true
	if m.SaveRecordsErr != nil {
		return m.SaveRecordsErr
	}
	if _, ok := m.runs[runID]; !ok {
		return fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}

	for _, rec := range records {
		rec.RunID = runID
		rec.Fields = append([]string(nil), rec.Fields...)
		m.records[runID] = append(m.records[runID], rec)
	}
	return nil
}

// GetRun retrieves a run from the in-memory map
func (m *MockRepository) GetRun(runID string) (*Run, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.GetRunErr != nil {
		return nil, m.GetRunErr
	}
	run, ok := m.runs[runID]
	if !ok {
		return nil, nil
	}
	copied := *run
	return &copied, nil
}

// ListRuns returns runs newest first
func (m *MockRepository) ListRuns(limit int) ([]*Run, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.ListRunsErr != nil {
		return nil, m.ListRunsErr
	}
	if limit <= 0 {
		limit = DefaultListLimit
	}

	runs := make([]*Run, 0, len(m.runs))
	for _, run := range m.runs {
		copied := *run
		runs = append(runs, &copied)
	}
	sort.Slice(runs, func(i, j int) bool {
		if runs[i].StartedAt.Equal(runs[j].StartedAt) {
			return runs[i].ID < runs[j].ID
		}
		return runs[i].StartedAt.After(runs[j].StartedAt)
	})
	if len(runs) > limit {
		runs = runs[:limit]
	}
	return runs, nil
}

// ListRecords returns matching records, side A first, in row order
func (m *MockRepository) ListRecords(runID string, filter RecordFilter) ([]Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.ListRecordsErr != nil {
		return nil, m.ListRecordsErr
	}

	result := make([]Record, 0)
	for _, rec := range m.records[runID] {
		if filter.Side != "" && !strings.EqualFold(rec.Side, filter.Side) {
			continue
		}
		if filter.Status != "" && !strings.EqualFold(rec.Status, filter.Status) {
			continue
		}
		result = append(result, rec)
	}
	sort.SliceStable(result, func(i, j int) bool {
		if result[i].Side != result[j].Side {
			return result[i].Side < result[j].Side
		}
		return result[i].RowIndex < result[j].RowIndex
	})
	return result, nil
}
