package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// ErrRunNotFound is returned when updating a run that does not exist
var ErrRunNotFound = errors.New("run not found")

// Storage provides SQLite database access for reconciliation runs.
// It implements the Repository interface.
type Storage struct {
	db *sql.DB
}

// Compile-time check that Storage implements Repository
var _ Repository = (*Storage)(nil)

// NewStorage creates a new storage instance with SQLite database
func NewStorage(dbPath string) (*Storage, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	// PRAGMAs are per connection; a single connection keeps them in force
	db.SetMaxOpenConns(1)

	// Enable foreign key constraints (SQLite-specific)
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	if err := runMigrations(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Storage{db: db}, nil
}

// Close closes the database connection
func (s *Storage) Close() error {
	return s.db.Close()
}

// StartRun inserts a new run in the running state
func (s *Storage) StartRun(run *Run) error {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now().UTC()
	}
	run.Status = RunStatusRunning

	_, err := s.db.Exec(`
		INSERT INTO reconciliation_runs (id, source_a, source_b, status, date_tolerance_days, started_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, run.ID, run.SourceA, run.SourceB, string(run.Status), run.DateTolerance, run.StartedAt)
	if err != nil {
		return fmt.Errorf("failed to start run: %w", err)
	}
	return nil
}

// CompleteRun marks a run completed and stores its counts
func (s *Storage) CompleteRun(runID string, counts RunCounts) error {
	res, err := s.db.Exec(`
		UPDATE reconciliation_runs
		SET status = ?, completed_at = ?,
			rows_a = ?, rows_b = ?, found_a = ?, found_b = ?,
			missing_a = ?, missing_b = ?, matched = ?
		WHERE id = ?
	`, string(RunStatusCompleted), time.Now().UTC(),
		counts.RowsA, counts.RowsB, counts.FoundA, counts.FoundB,
		counts.MissingA, counts.MissingB, counts.Matched, runID)
	if err != nil {
		return fmt.Errorf("failed to complete run: %w", err)
	}
	return requireOneRow(res, runID)
}

// FailRun marks a run failed
func (s *Storage) FailRun(runID string, message string) error {
	res, err := s.db.Exec(`
		UPDATE reconciliation_runs
		SET status = ?, completed_at = ?, error_message = ?
		WHERE id = ?
	`, string(RunStatusFailed), time.Now().UTC(), message, runID)
	if err != nil {
		return fmt.Errorf("failed to mark run failed: %w", err)
	}
	return requireOneRow(res, runID)
}

// SaveRecords stores all records of a run in one transaction
func (s *Storage) SaveRecords(runID string, records []Record) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.Prepare(`
		INSERT INTO reconciliation_records (run_id, side, row_index, fields_json, status, match_index, day_delta)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, rec := range records {
		fields := rec.Fields
		if fields == nil {
			fields = []string{}
		}
		fieldsJSON, err := json.Marshal(fields)
		if err != nil {
			return fmt.Errorf("failed to marshal fields: %w", err)
		}

		if _, err := stmt.Exec(runID, rec.Side, rec.RowIndex, string(fieldsJSON), rec.Status, rec.MatchIndex, rec.DayDelta); err != nil {
			return fmt.Errorf("failed to save record %s/%d: %w", rec.Side, rec.RowIndex, err)
		}
	}

	return tx.Commit()
}

// GetRun retrieves a run by ID
func (s *Storage) GetRun(runID string) (*Run, error) {
	row := s.db.QueryRow(runSelect+` WHERE id = ?`, runID)
	run, err := scanRun(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return run, nil
}

// ListRuns returns the most recent runs first
func (s *Storage) ListRuns(limit int) ([]*Run, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	rows, err := s.db.Query(runSelect+` ORDER BY started_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	runs := make([]*Run, 0)
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// ListRecords returns the records of a run, side A first, in row order
func (s *Storage) ListRecords(runID string, filter RecordFilter) ([]Record, error) {
	where := []string{"run_id = ?"}
	args := []any{runID}
	if filter.Side != "" {
		where = append(where, "side = ?")
		args = append(args, strings.ToLower(filter.Side))
	}
	if filter.Status != "" {
		where = append(where, "status = ?")
		args = append(args, strings.ToUpper(filter.Status))
	}

	query := `
		SELECT run_id, side, row_index, fields_json, status, match_index, day_delta
		FROM reconciliation_records
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY side, row_index`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}
	defer func() { _ = rows.Close() }()

	records := make([]Record, 0)
	for rows.Next() {
		var rec Record
		var fieldsJSON string
		if err := rows.Scan(&rec.RunID, &rec.Side, &rec.RowIndex, &fieldsJSON, &rec.Status, &rec.MatchIndex, &rec.DayDelta); err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		if err := json.Unmarshal([]byte(fieldsJSON), &rec.Fields); err != nil {
			return nil, fmt.Errorf("failed to decode fields of %s/%d: %w", rec.Side, rec.RowIndex, err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

const runSelect = `
	SELECT id, source_a, source_b, status, date_tolerance_days, started_at, completed_at, error_message,
		rows_a, rows_b, found_a, found_b, missing_a, missing_b, matched
	FROM reconciliation_runs`

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (*Run, error) {
	var run Run
	var status string
	var completedAt sql.NullTime
	err := sc.Scan(&run.ID, &run.SourceA, &run.SourceB, &status, &run.DateTolerance,
		&run.StartedAt, &completedAt, &run.ErrorMessage,
		&run.RowsA, &run.RowsB, &run.FoundA, &run.FoundB, &run.MissingA, &run.MissingB, &run.Matched)
	if err != nil {
		return nil, err
	}
	run.Status = RunStatus(status)
	if completedAt.Valid {
		t := completedAt.Time
		run.CompletedAt = &t
	}
	return &run, nil
}

func requireOneRow(res sql.Result, runID string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	return nil
}
