package storage

import "time"

// RunStatus is the lifecycle state of a reconciliation run
type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

// Run is one reconciliation of two ledgers
type Run struct {
	ID            string     `json:"id"`
	SourceA       string     `json:"source_a"`
	SourceB       string     `json:"source_b"`
	Status        RunStatus  `json:"status"`
	DateTolerance int        `json:"date_tolerance_days"`
	StartedAt     time.Time  `json:"started_at"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`
	ErrorMessage  string     `json:"error_message,omitempty"`
	RunCounts
}

// RunCounts holds the outcome totals of a run
type RunCounts struct {
	RowsA    int `json:"rows_a"`
	RowsB    int `json:"rows_b"`
	FoundA   int `json:"found_a"`
	FoundB   int `json:"found_b"`
	MissingA int `json:"missing_a"`
	MissingB int `json:"missing_b"`
	Matched  int `json:"matched"`
}

// Record is one annotated ledger row of a run
type Record struct {
	RunID      string   `json:"run_id"`
	Side       string   `json:"side"`
	RowIndex   int      `json:"row_index"`
	Fields     []string `json:"fields"` // Original fields without status
	Status     string   `json:"status"`
	MatchIndex int      `json:"match_index"` // Row index in the other ledger, -1 when unmatched
	DayDelta   int      `json:"day_delta"`
}
