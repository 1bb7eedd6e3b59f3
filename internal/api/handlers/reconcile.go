package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/eshaffer321/ledger-reconcile/internal/api/dto"
	"github.com/eshaffer321/ledger-reconcile/internal/application/service"
	"github.com/eshaffer321/ledger-reconcile/internal/domain/reconciler"
)

// DefaultMaxUploadBytes caps request bodies when no limit is configured
const DefaultMaxUploadBytes int64 = 10 << 20

// ReconcileHandler handles reconciliation requests.
type ReconcileHandler struct {
	*Base
	maxUploadBytes int64
}

// NewReconcileHandler creates a new reconcile handler.
func NewReconcileHandler(svc *service.ReconcileService, maxUploadBytes int64) *ReconcileHandler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = DefaultMaxUploadBytes
	}
	return &ReconcileHandler{
		Base:           NewBase(svc),
		maxUploadBytes: maxUploadBytes,
	}
}

// errBadUpload marks request problems that map to 400.
type errBadUpload struct{ msg string }

func (e *errBadUpload) Error() string { return e.msg }

// Reconcile handles POST /api/reconcile. It accepts either a JSON body with
// both ledgers inline or a multipart upload with ledger_a and ledger_b files.
func (h *ReconcileHandler) Reconcile(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)

	var req service.Request
	var err error

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		req, err = h.decodeMultipart(r)
	} else {
		req, err = h.decodeJSON(r)
	}
	if err != nil {
		h.writeDecodeError(w, err)
		return
	}

	report, err := h.svc.Reconcile(r.Context(), req)
	if err != nil {
		if reconciler.IsInputError(err) {
			h.WriteError(w, http.StatusUnprocessableEntity, dto.ValidationError(err.Error()))
			return
		}
		h.writeServiceError(w, "persisting runs", err)
		return
	}

	h.WriteJSON(w, http.StatusOK, toReconcileResponse(report))
}

func (h *ReconcileHandler) decodeJSON(r *http.Request) (service.Request, error) {
	var body dto.ReconcileRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		return service.Request{}, err
	}
	if body.LedgerA == nil || body.LedgerB == nil {
		return service.Request{}, &errBadUpload{msg: "ledger_a and ledger_b are required"}
	}

	return service.Request{
		SourceA: body.SourceA,
		SourceB: body.SourceB,
		A:       toLedger(body.LedgerA),
		B:       toLedger(body.LedgerB),
		Persist: body.Persist,
	}, nil
}

func (h *ReconcileHandler) decodeMultipart(r *http.Request) (service.Request, error) {
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		return service.Request{}, err
	}
	if r.MultipartForm != nil {
		defer func() { _ = r.MultipartForm.RemoveAll() }()
	}

	a, nameA, err := h.loadUpload(r, "ledger_a")
	if err != nil {
		return service.Request{}, err
	}
	b, nameB, err := h.loadUpload(r, "ledger_b")
	if err != nil {
		return service.Request{}, err
	}

	return service.Request{
		SourceA: firstNonEmpty(r.FormValue("source_a"), nameA),
		SourceB: firstNonEmpty(r.FormValue("source_b"), nameB),
		A:       a,
		B:       b,
		Persist: ParseBoolParam(r.FormValue("persist"), false),
	}, nil
}

func (h *ReconcileHandler) loadUpload(r *http.Request, field string) (reconciler.Ledger, string, error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		return nil, "", &errBadUpload{msg: fmt.Sprintf("missing file %s", field)}
	}
	defer file.Close()

	registry := h.svc.Registry()
	format := registry.FormatForFilename(header.Filename)
	ledger, err := registry.Load(format, file)
	if err != nil {
		return nil, "", &errBadUpload{msg: fmt.Sprintf("%s: %v", field, err)}
	}
	return ledger, header.Filename, nil
}

func (h *ReconcileHandler) writeDecodeError(w http.ResponseWriter, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) || strings.Contains(err.Error(), "request body too large") {
		h.WriteError(w, http.StatusRequestEntityTooLarge, dto.TooLargeError(h.maxUploadBytes))
		return
	}

	var bad *errBadUpload
	switch {
	case errors.As(err, &bad):
		h.WriteError(w, http.StatusBadRequest, dto.BadRequestError(bad.msg))
	case errors.Is(err, io.EOF):
		h.WriteError(w, http.StatusBadRequest, dto.BadRequestError("request body is empty"))
	default:
		h.WriteError(w, http.StatusBadRequest, dto.BadRequestError("invalid request body: "+err.Error()))
	}
}

func toLedger(rows [][]string) reconciler.Ledger {
	ledger := make(reconciler.Ledger, len(rows))
	for i, row := range rows {
		ledger[i] = reconciler.Row(row)
	}
	return ledger
}

func toRows(ledger reconciler.Ledger) [][]string {
	rows := make([][]string, len(ledger))
	for i, row := range ledger {
		rows[i] = []string(row)
	}
	return rows
}

// toReconcileResponse converts a service report to an API response.
func toReconcileResponse(report *service.Report) dto.ReconcileResponse {
	pairs := make([]dto.PairResponse, len(report.Pairs))
	for i, p := range report.Pairs {
		pairs[i] = dto.PairResponse{A: p.A, B: p.B, DayDelta: p.DayDelta}
	}

	return dto.ReconcileResponse{
		RunID:   report.RunID,
		SourceA: report.SourceA,
		SourceB: report.SourceB,
		LedgerA: toRows(report.A),
		LedgerB: toRows(report.B),
		Pairs:   pairs,
		Summary: dto.SummaryResponse{
			A:             toSideSummary(report.Summary.A),
			B:             toSideSummary(report.Summary.B),
			Matched:       report.Summary.Matched,
			DateTolerance: report.Summary.DateTolerance,
			Balanced:      report.Summary.Balanced(),
		},
	}
}

func toSideSummary(s service.SideSummary) dto.SideSummaryResponse {
	return dto.SideSummaryResponse{
		Total:           s.Total,
		Found:           s.Found,
		Missing:         s.Missing,
		MissingAmount:   s.MissingAmount.String(),
		UnparsedAmounts: s.UnparsedAmounts,
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
