package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/eshaffer321/ledger-reconcile/internal/adapters/ledgers"
	"github.com/eshaffer321/ledger-reconcile/internal/domain/reconciler"
	"github.com/eshaffer321/ledger-reconcile/internal/infrastructure/config"
	"github.com/eshaffer321/ledger-reconcile/internal/infrastructure/storage"
)

// ErrStorageUnavailable is returned when persistence is requested without a repository
var ErrStorageUnavailable = errors.New("storage not configured")

// Request holds the inputs of one reconciliation
type Request struct {
	SourceA string // Label for ledger A (file name, system name)
	SourceB string
	A       reconciler.Ledger
	B       reconciler.Ledger
	Persist bool // Record the run and its rows in storage
}

// Report is the outcome of a reconciliation
type Report struct {
	RunID    string            `json:"run_id,omitempty"`
	SourceA  string            `json:"source_a"`
	SourceB  string            `json:"source_b"`
	A        reconciler.Ledger `json:"ledger_a"`
	B        reconciler.Ledger `json:"ledger_b"`
	Pairs    []reconciler.Pair `json:"pairs"`
	Summary  Summary           `json:"summary"`
	Duration time.Duration     `json:"-"`
}

// ReconcileService runs reconciliations and keeps their history.
type ReconcileService struct {
	cfg        *config.Config
	reconciler *reconciler.Reconciler
	registry   *ledgers.Registry
	storage    storage.Repository
	logger     *slog.Logger
}

// NewReconcileService creates a service from config. repo may be nil when
// runs are never persisted.
func NewReconcileService(cfg *config.Config, registry *ledgers.Registry, repo storage.Repository, logger *slog.Logger) (*ReconcileService, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if registry == nil {
		registry = ledgers.NewDefaultRegistry(ledgers.OptionsFromConfig(cfg.Input), logger)
	}

	r, err := reconciler.New(cfg.ReconcilerConfig())
	if err != nil {
		return nil, err
	}

	return &ReconcileService{
		cfg:        cfg,
		reconciler: r,
		registry:   registry,
		storage:    repo,
		logger:     logger,
	}, nil
}

// StorageEnabled reports whether runs can be persisted
func (s *ReconcileService) StorageEnabled() bool {
	return s.storage != nil
}

// Registry returns the ledger loader registry used by the service
func (s *ReconcileService) Registry() *ledgers.Registry {
	return s.registry
}

// Reconcile matches two in-memory ledgers
func (s *ReconcileService) Reconcile(ctx context.Context, req Request) (*Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if req.Persist && s.storage == nil {
		return nil, ErrStorageUnavailable
	}

	start := time.Now()
	tolerance := s.reconciler.Config().DateTolerance

	var run *storage.Run
	if req.Persist {
		run = &storage.Run{SourceA: req.SourceA, SourceB: req.SourceB, DateTolerance: tolerance}
		if err := s.storage.StartRun(run); err != nil {
			return nil, fmt.Errorf("failed to record run: %w", err)
		}
	}

	result, err := s.reconciler.Match(req.A, req.B)
	if err != nil {
		s.logger.Warn("reconciliation rejected input",
			slog.String("source_a", req.SourceA),
			slog.String("source_b", req.SourceB),
			slog.String("error", err.Error()),
		)
		s.failRun(run, err)
		return nil, err
	}

	report := &Report{
		SourceA: req.SourceA,
		SourceB: req.SourceB,
		A:       result.A,
		B:       result.B,
		Pairs:   result.Pairs,
		Summary: Summarize(result, tolerance),
	}
	if report.Pairs == nil {
		report.Pairs = []reconciler.Pair{}
	}

	if run != nil {
		if err := s.persist(run, result, report.Summary); err != nil {
			s.failRun(run, err)
			return nil, err
		}
		report.RunID = run.ID
	}

	report.Duration = time.Since(start)
	s.logger.Info("reconciliation complete",
		slog.String("run_id", report.RunID),
		slog.Int("rows_a", report.Summary.A.Total),
		slog.Int("rows_b", report.Summary.B.Total),
		slog.Int("matched", report.Summary.Matched),
		slog.Int("missing_a", report.Summary.A.Missing),
		slog.Int("missing_b", report.Summary.B.Missing),
		slog.Duration("duration", report.Duration),
	)

	return report, nil
}

// ReconcileFiles loads both ledgers through the registry and reconciles them
func (s *ReconcileService) ReconcileFiles(ctx context.Context, pathA, pathB string, persist bool) (*Report, error) {
	a, err := s.registry.LoadFile(pathA)
	if err != nil {
		return nil, fmt.Errorf("ledger a: %w", err)
	}
	b, err := s.registry.LoadFile(pathB)
	if err != nil {
		return nil, fmt.Errorf("ledger b: %w", err)
	}

	return s.Reconcile(ctx, Request{
		SourceA: pathA,
		SourceB: pathB,
		A:       a,
		B:       b,
		Persist: persist,
	})
}

// GetRun returns a stored run, or nil when it does not exist
func (s *ReconcileService) GetRun(runID string) (*storage.Run, error) {
	if s.storage == nil {
		return nil, ErrStorageUnavailable
	}
	return s.storage.GetRun(runID)
}

// ListRuns returns the most recent runs first
func (s *ReconcileService) ListRuns(limit int) ([]*storage.Run, error) {
	if s.storage == nil {
		return nil, ErrStorageUnavailable
	}
	return s.storage.ListRuns(limit)
}

// ListRecords returns the stored rows of a run
func (s *ReconcileService) ListRecords(runID string, filter storage.RecordFilter) ([]storage.Record, error) {
	if s.storage == nil {
		return nil, ErrStorageUnavailable
	}
	return s.storage.ListRecords(runID, filter)
}

func (s *ReconcileService) persist(run *storage.Run, result *reconciler.Result, summary Summary) error {
	if err := s.storage.SaveRecords(run.ID, buildRecords(result)); err != nil {
		return fmt.Errorf("failed to save records: %w", err)
	}

	counts := storage.RunCounts{
		RowsA:    summary.A.Total,
		RowsB:    summary.B.Total,
		FoundA:   summary.A.Found,
		FoundB:   summary.B.Found,
		MissingA: summary.A.Missing,
		MissingB: summary.B.Missing,
		Matched:  summary.Matched,
	}
	if err := s.storage.CompleteRun(run.ID, counts); err != nil {
		return fmt.Errorf("failed to complete run: %w", err)
	}
	return nil
}

func (s *ReconcileService) failRun(run *storage.Run, cause error) {
	if run == nil {
		return
	}
	if err := s.storage.FailRun(run.ID, cause.Error()); err != nil {
		s.logger.Error("failed to mark run failed",
			slog.String("run_id", run.ID),
			slog.String("error", err.Error()),
		)
	}
}

// buildRecords flattens an engine result into storage rows
func buildRecords(result *reconciler.Result) []storage.Record {
	matchA := make(map[int]reconciler.Pair, len(result.Pairs))
	matchB := make(map[int]reconciler.Pair, len(result.Pairs))
	for _, p := range result.Pairs {
		matchA[p.A] = p
		matchB[p.B] = p
	}

	records := make([]storage.Record, 0, len(result.A)+len(result.B))
	for i, row := range result.A {
		rec := newRecord(reconciler.SideA, i, row)
		if p, ok := matchA[i]; ok {
			rec.MatchIndex = p.B
			rec.DayDelta = p.DayDelta
		}
		records = append(records, rec)
	}
	for j, row := range result.B {
		rec := newRecord(reconciler.SideB, j, row)
		if p, ok := matchB[j]; ok {
			rec.MatchIndex = p.A
			rec.DayDelta = p.DayDelta
		}
		records = append(records, rec)
	}
	return records
}

func newRecord(side reconciler.Side, index int, row reconciler.Row) storage.Record {
	return storage.Record{
		Side:       string(side),
		RowIndex:   index,
		Fields:     append([]string(nil), reconciler.Fields(row)...),
		Status:     string(reconciler.StatusOf(row)),
		MatchIndex: -1,
	}
}
