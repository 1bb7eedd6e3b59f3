package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/eshaffer321/ledger-reconcile/internal/api/dto"
	"github.com/eshaffer321/ledger-reconcile/internal/application/service"
	"github.com/eshaffer321/ledger-reconcile/internal/domain/reconciler"
	"github.com/eshaffer321/ledger-reconcile/internal/infrastructure/storage"
)

// RunsHandler handles reconciliation run history requests.
type RunsHandler struct {
	*Base
}

// NewRunsHandler creates a new runs handler.
func NewRunsHandler(svc *service.ReconcileService) *RunsHandler {
	return &RunsHandler{
		Base: NewBase(svc),
	}
}

// List handles GET /api/runs - returns the most recent runs.
func (h *RunsHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := ParseIntParam(r, "limit", dto.DefaultRunListLimit)

	runs, err := h.svc.ListRuns(limit)
	if err != nil {
		h.writeServiceError(w, "run history", err)
		return
	}

	response := dto.RunListResponse{
		Runs:  make([]dto.RunResponse, 0, len(runs)),
		Count: len(runs),
	}
	for _, run := range runs {
		response.Runs = append(response.Runs, toRunResponse(run))
	}

	h.WriteJSON(w, http.StatusOK, response)
}

// Get handles GET /api/runs/{id} - returns a single run by ID.
func (h *RunsHandler) Get(w http.ResponseWriter, r *http.Request) {
	run, ok := h.lookupRun(w, r)
	if !ok {
		return
	}
	h.WriteJSON(w, http.StatusOK, toRunResponse(run))
}

// Records handles GET /api/runs/{id}/records - returns the stored rows of a run.
// Optional side (a|b) and status (FOUND|MISSING) query parameters filter the rows.
func (h *RunsHandler) Records(w http.ResponseWriter, r *http.Request) {
	filter := storage.RecordFilter{
		Side:   r.URL.Query().Get("side"),
		Status: r.URL.Query().Get("status"),
	}
	if !validSide(filter.Side) {
		h.WriteError(w, http.StatusBadRequest, dto.BadRequestError("side must be a or b"))
		return
	}
	if !validStatus(filter.Status) {
		h.WriteError(w, http.StatusBadRequest, dto.BadRequestError("status must be FOUND or MISSING"))
		return
	}

	run, ok := h.lookupRun(w, r)
	if !ok {
		return
	}

	records, err := h.svc.ListRecords(run.ID, filter)
	if err != nil {
		h.writeServiceError(w, "run history", err)
		return
	}

	response := dto.RecordListResponse{
		RunID:   run.ID,
		Records: make([]dto.RecordResponse, 0, len(records)),
		Count:   len(records),
	}
	for _, rec := range records {
		response.Records = append(response.Records, dto.RecordResponse{
			Side:       rec.Side,
			RowIndex:   rec.RowIndex,
			Fields:     rec.Fields,
			Status:     rec.Status,
			MatchIndex: rec.MatchIndex,
			DayDelta:   rec.DayDelta,
		})
	}

	h.WriteJSON(w, http.StatusOK, response)
}

func (h *RunsHandler) lookupRun(w http.ResponseWriter, r *http.Request) (*storage.Run, bool) {
	id := chi.URLParam(r, "id")
	if id == "" {
		h.WriteError(w, http.StatusBadRequest, dto.BadRequestError("run ID is required"))
		return nil, false
	}

	run, err := h.svc.GetRun(id)
	if err != nil {
		h.writeServiceError(w, "run history", err)
		return nil, false
	}
	if run == nil {
		h.WriteError(w, http.StatusNotFound, dto.NotFoundError("run"))
		return nil, false
	}
	return run, true
}

func validSide(side string) bool {
	switch reconciler.Side(side) {
	case "", reconciler.SideA, reconciler.SideB:
		return true
	}
	return false
}

func validStatus(status string) bool {
	switch reconciler.Status(status) {
	case "", reconciler.StatusFound, reconciler.StatusMissing:
		return true
	}
	return false
}

// toRunResponse converts a storage Run to an API response.
func toRunResponse(run *storage.Run) dto.RunResponse {
	return dto.RunResponse{
		ID:            run.ID,
		SourceA:       run.SourceA,
		SourceB:       run.SourceB,
		Status:        string(run.Status),
		DateTolerance: run.DateTolerance,
		StartedAt:     run.StartedAt,
		CompletedAt:   run.CompletedAt,
		ErrorMessage:  run.ErrorMessage,
		RowsA:         run.RowsA,
		RowsB:         run.RowsB,
		FoundA:        run.FoundA,
		FoundB:        run.FoundB,
		MissingA:      run.MissingA,
		MissingB:      run.MissingB,
		Matched:       run.Matched,
	}
}
