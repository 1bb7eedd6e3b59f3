package storage

// Repository defines the complete storage interface.
// This interface allows swapping implementations (SQLite, in-memory mock)
// and makes testing the service layer straightforward.
type Repository interface {
	RunRepository
	Close() error
}

// RunRepository handles reconciliation runs and their per-row results
type RunRepository interface {
	// StartRun inserts a run in the running state. ID and StartedAt are
	// filled in when empty.
	StartRun(run *Run) error

	// CompleteRun marks a run completed and stores its counts
	CompleteRun(runID string, counts RunCounts) error

	// FailRun marks a run failed with the given message
	FailRun(runID string, message string) error

	// SaveRecords stores the annotated rows of a run in one transaction
	SaveRecords(runID string, records []Record) error

	// GetRun retrieves a run by ID. Returns nil, nil when it does not exist.
	GetRun(runID string) (*Run, error)

	// ListRuns returns the most recent runs first
	ListRuns(limit int) ([]*Run, error)

	// ListRecords returns the rows of a run in ledger order, side A first
	ListRecords(runID string, filter RecordFilter) ([]Record, error)
}

// RecordFilter narrows ListRecords results
type RecordFilter struct {
	Side   string // "a", "b" or empty for both
	Status string // "FOUND", "MISSING" or empty for both
}

// DefaultListLimit is used when a non-positive limit is passed to ListRuns
const DefaultListLimit = 50
