package dto

import "time"

// HealthResponse is returned by the health check endpoint. Storage is
// "enabled" when runs can be persisted and "disabled" otherwise.
type HealthResponse struct {
	Status    string   `json:"status"`
	Timestamp string   `json:"timestamp"`
	Storage   string   `json:"storage"`
	Formats   []string `json:"formats"`
}

// NewHealthResponse creates a healthy response stamped with the current time.
func NewHealthResponse(storageEnabled bool, formats []string) HealthResponse {
	storage := "disabled"
	if storageEnabled {
		storage = "enabled"
	}
	return HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Storage:   storage,
		Formats:   formats,
	}
}

// PairResponse links a row of ledger A to its partner in ledger B.
type PairResponse struct {
	A        int `json:"a"`
	B        int `json:"b"`
	DayDelta int `json:"day_delta"`
}

// SideSummaryResponse holds per-ledger totals. Amounts are decimal strings.
type SideSummaryResponse struct {
	Total           int    `json:"total"`
	Found           int    `json:"found"`
	Missing         int    `json:"missing"`
	MissingAmount   string `json:"missing_amount"`
	UnparsedAmounts int    `json:"unparsed_amounts"`
}

// SummaryResponse describes a reconciliation at a glance.
type SummaryResponse struct {
	A             SideSummaryResponse `json:"a"`
	B             SideSummaryResponse `json:"b"`
	Matched       int                 `json:"matched"`
	DateTolerance int                 `json:"date_tolerance_days"`
	Balanced      bool                `json:"balanced"`
}

// ReconcileResponse is returned by POST /api/reconcile.
type ReconcileResponse struct {
	RunID   string          `json:"run_id,omitempty"`
	SourceA string          `json:"source_a"`
	SourceB string          `json:"source_b"`
	LedgerA [][]string      `json:"ledger_a"`
	LedgerB [][]string      `json:"ledger_b"`
	Pairs   []PairResponse  `json:"pairs"`
	Summary SummaryResponse `json:"summary"`
}

// RunResponse represents a stored reconciliation run.
type RunResponse struct {
	ID            string     `json:"id"`
	SourceA       string     `json:"source_a"`
	SourceB       string     `json:"source_b"`
	Status        string     `json:"status"`
	DateTolerance int        `json:"date_tolerance_days"`
	StartedAt     time.Time  `json:"started_at"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`
	ErrorMessage  string     `json:"error_message,omitempty"`
	RowsA         int        `json:"rows_a"`
	RowsB         int        `json:"rows_b"`
	FoundA        int        `json:"found_a"`
	FoundB        int        `json:"found_b"`
	MissingA      int        `json:"missing_a"`
	MissingB      int        `json:"missing_b"`
	Matched       int        `json:"matched"`
}

// RunListResponse wraps a list of runs.
type RunListResponse struct {
	Runs  []RunResponse `json:"runs"`
	Count int           `json:"count"`
}

// RecordResponse is one stored row of a run.
type RecordResponse struct {
	Side       string   `json:"side"`
	RowIndex   int      `json:"row_index"`
	Fields     []string `json:"fields"`
	Status     string   `json:"status"`
	MatchIndex int      `json:"match_index"`
	DayDelta   int      `json:"day_delta"`
}

// RecordListResponse wraps the rows of a run.
type RecordListResponse struct {
	RunID   string           `json:"run_id"`
	Records []RecordResponse `json:"records"`
	Count   int              `json:"count"`
}
