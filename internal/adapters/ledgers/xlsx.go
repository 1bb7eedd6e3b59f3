package ledgers

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/eshaffer321/ledger-reconcile/internal/domain/reconciler"
)

// XLSXLoader reads ledgers from an Excel workbook. Cells are read as their
// displayed text, so date cells must be formatted as the configured layout.
type XLSXLoader struct {
	opts Options
}

// NewXLSXLoader creates a loader for .xlsx files
func NewXLSXLoader(opts Options) *XLSXLoader {
	return &XLSXLoader{opts: opts}
}

func (l *XLSXLoader) Name() string         { return "xlsx" }
func (l *XLSXLoader) Extensions() []string { return []string{".xlsx", ".xlsm"} }

// Load reads the configured sheet (or the first one). Blank rows are
// dropped, so row indexes in the ledger (and in reconciler errors) count
// non-blank rows after the header, not spreadsheet line numbers.
//
// Spreadsheets do not record trailing empty cells, so rows shorter than
// reconciler.RequiredFields are padded with "" to match what a CSV export
// with empty trailing columns would yield.
func (l *XLSXLoader) Load(r io.Reader) (reconciler.Ledger, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheet := l.opts.Sheet
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("workbook has no sheets")
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}

	ledger := reconciler.Ledger{}
	headerSkipped := !l.opts.HasHeader
	for _, cells := range rows {
		if isBlank(cells) {
			continue
		}
		if !headerSkipped {
			headerSkipped = true
			continue
		}
		ledger = append(ledger, toRow(padCells(cells, reconciler.RequiredFields), l.opts.TrimSpace))
	}

	return ledger, nil
}

func padCells(cells []string, width int) []string {
	for len(cells) < width {
		cells = append(cells, "")
	}
	return cells
}

func isBlank(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
