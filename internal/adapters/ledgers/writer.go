package ledgers

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/eshaffer321/ledger-reconcile/internal/domain/reconciler"
)

// DefaultSheet is the sheet name used for written workbooks
const DefaultSheet = "Reconciled"

// WriteCSV writes ledger rows (usually annotated) as delimited text
func WriteCSV(w io.Writer, ledger reconciler.Ledger, delimiter rune) error {
	cw := csv.NewWriter(w)
	if delimiter != 0 {
		cw.Comma = delimiter
	}
	for _, row := range ledger {
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteXLSX writes ledger rows to a new workbook at path
func WriteXLSX(path, sheet string, ledger reconciler.Ledger) error {
	f, err := buildWorkbook(sheet, ledger)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

// WriteXLSXTo streams a workbook with the ledger rows to w
func WriteXLSXTo(w io.Writer, sheet string, ledger reconciler.Ledger) error {
	f, err := buildWorkbook(sheet, ledger)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func buildWorkbook(sheet string, ledger reconciler.Ledger) (*excelize.File, error) {
	if sheet == "" {
		sheet = DefaultSheet
	}

	f := excelize.NewFile()
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}

	for i, row := range ledger {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			f.Close()
			return nil, err
		}
		values := []string(row)
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to write row %d: %w", i, err)
		}
	}
	return f, nil
}

// WriteFile writes ledger to path, picking the format from the extension.
// Anything that is not .xlsx is written as CSV.
func WriteFile(path string, ledger reconciler.Ledger, opts Options) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return WriteXLSX(path, opts.Sheet, ledger)
	case ".tsv", ".tab":
		opts.Delimiter = '\t'
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := WriteCSV(f, ledger, opts.Delimiter); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
