package cli

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/olekukonko/tablewriter"

	"github.com/eshaffer321/ledger-reconcile/internal/application/service"
	"github.com/eshaffer321/ledger-reconcile/internal/domain/reconciler"
	"github.com/eshaffer321/ledger-reconcile/internal/infrastructure/storage"
)

// Format is an output format of the CLI
type Format string

const (
	FormatTable Format = "table"
	FormatCSV   Format = "csv"
	FormatJSON  Format = "json"
)

// ParseFormat converts a flag value to a Format. Empty picks table on a
// terminal and json when stdout is piped.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatTable, FormatCSV, FormatJSON:
		return f, nil
	case "":
		if isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd()) {
			return FormatTable, nil
		}
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unknown format %q (want table, csv or json)", s)
	}
}

// PrintReport writes a reconciliation report in the given format
func PrintReport(w io.Writer, report *service.Report, format Format) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, report)
	case FormatCSV:
		return writeReportCSV(w, report)
	default:
		return writeReportTable(w, report)
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// writeReportCSV writes one line per row: side, row, fields..., status, match
func writeReportCSV(w io.Writer, report *service.Report) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"side", "row", "date", "department", "amount", "beneficiary", "status", "match"}); err != nil {
		return err
	}

	matches := matchIndexes(report.Pairs)
	for _, side := range []reconciler.Side{reconciler.SideA, reconciler.SideB} {
		for i, row := range ledgerFor(report, side) {
			fields := reconciler.Fields(row)
			record := []string{string(side), strconv.Itoa(i)}
			for c := 0; c < reconciler.RequiredFields; c++ {
				record = append(record, fields[c])
			}
			record = append(record, string(reconciler.StatusOf(row)), matches.label(side, i))
			if err := cw.Write(record); err != nil {
				return err
			}
		}
	}

	cw.Flush()
	return cw.Error()
}

func writeReportTable(w io.Writer, report *service.Report) error {
	matches := matchIndexes(report.Pairs)
	for _, side := range []reconciler.Side{reconciler.SideA, reconciler.SideB} {
		source := report.SourceA
		if side == reconciler.SideB {
			source = report.SourceB
		}
		if _, err := fmt.Fprintf(w, "Ledger %s: %s\n", strings.ToUpper(string(side)), source); err != nil {
			return err
		}

		rows := make([][]string, 0)
		for i, row := range ledgerFor(report, side) {
			fields := reconciler.Fields(row)
			rows = append(rows, []string{
				strconv.Itoa(i),
				fields[reconciler.ColDate],
				fields[reconciler.ColDepartment],
				fields[reconciler.ColAmount],
				fields[reconciler.ColBeneficiary],
				string(reconciler.StatusOf(row)),
				matches.label(side, i),
			})
		}
		if err := renderTable(w, []string{"#", "Date", "Department", "Amount", "Beneficiary", "Status", "Match"}, rows); err != nil {
			return err
		}
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
	}

	s := report.Summary
	_, err := fmt.Fprintf(w, "Summary: Matched=%d | A: %d rows, %d missing (%s) | B: %d rows, %d missing (%s) | tolerance=%dd\n",
		s.Matched,
		s.A.Total, s.A.Missing, s.A.MissingAmount.StringFixed(2),
		s.B.Total, s.B.Missing, s.B.MissingAmount.StringFixed(2),
		s.DateTolerance)
	return err
}

// PrintRuns writes a run list
func PrintRuns(w io.Writer, runs []*storage.Run, format Format) error {
	if format == FormatJSON {
		return writeJSON(w, runs)
	}

	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		rows = append(rows, []string{
			run.ID,
			run.StartedAt.Local().Format(time.DateTime),
			run.SourceA,
			run.SourceB,
			string(run.Status),
			strconv.Itoa(run.Matched),
			strconv.Itoa(run.MissingA),
			strconv.Itoa(run.MissingB),
		})
	}
	headers := []string{"ID", "Started", "Ledger A", "Ledger B", "Status", "Matched", "Missing A", "Missing B"}

	if format == FormatCSV {
		return writeCSV(w, headers, rows)
	}
	return renderTable(w, headers, rows)
}

// PrintRun writes one run with its stored records
func PrintRun(w io.Writer, run *storage.Run, records []storage.Record, format Format) error {
	if format == FormatJSON {
		return writeJSON(w, struct {
			Run     *storage.Run     `json:"run"`
			Records []storage.Record `json:"records"`
		}{run, records})
	}

	headers := []string{"Side", "#", "Fields", "Status", "Match", "Days"}
	rows := make([][]string, 0, len(records))
	for _, rec := range records {
		match := "-"
		days := ""
		if rec.MatchIndex >= 0 {
			match = strconv.Itoa(rec.MatchIndex)
			days = strconv.Itoa(rec.DayDelta)
		}
		rows = append(rows, []string{
			strings.ToUpper(rec.Side),
			strconv.Itoa(rec.RowIndex),
			strings.Join(rec.Fields, " | "),
			rec.Status,
			match,
			days,
		})
	}

	if format == FormatCSV {
		return writeCSV(w, headers, rows)
	}

	if _, err := fmt.Fprintf(w, "Run %s (%s)\n", run.ID, run.Status); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Ledger A: %s | Ledger B: %s | tolerance=%dd | started %s\n",
		run.SourceA, run.SourceB, run.DateTolerance, run.StartedAt.Local().Format(time.DateTime)); err != nil {
		return err
	}
	if run.ErrorMessage != "" {
		if _, err := fmt.Fprintf(w, "Error: %s\n", run.ErrorMessage); err != nil {
			return err
		}
	}
	return renderTable(w, headers, rows)
}

func renderTable(w io.Writer, headers []string, rows [][]string) error {
	table := tablewriter.NewTable(w)

	header := make([]any, len(headers))
	for i, h := range headers {
		header[i] = h
	}
	table.Header(header...)

	for _, row := range rows {
		cells := make([]any, len(row))
		for i, cell := range row {
			cells[i] = cell
		}
		if err := table.Append(cells...); err != nil {
			return err
		}
	}

	return table.Render()
}

func writeCSV(w io.Writer, headers []string, rows [][]string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(headers); err != nil {
		return err
	}
	if err := cw.WriteAll(rows); err != nil {
		return err
	}
	return cw.Error()
}

func ledgerFor(report *service.Report, side reconciler.Side) reconciler.Ledger {
	if side == reconciler.SideB {
		return report.B
	}
	return report.A
}

// pairIndex maps each matched row to its partner in the other ledger
type pairIndex struct {
	a map[int]reconciler.Pair
	b map[int]reconciler.Pair
}

func matchIndexes(pairs []reconciler.Pair) pairIndex {
	idx := pairIndex{a: make(map[int]reconciler.Pair), b: make(map[int]reconciler.Pair)}
	for _, p := range pairs {
		idx.a[p.A] = p
		idx.b[p.B] = p
	}
	return idx
}

// label renders a partner as "B3 (+1d)" or "-" when unmatched
func (p pairIndex) label(side reconciler.Side, row int) string {
	if side == reconciler.SideA {
		if pair, ok := p.a[row]; ok {
			return fmt.Sprintf("B%d (%+dd)", pair.B, pair.DayDelta)
		}
		return "-"
	}
	if pair, ok := p.b[row]; ok {
		return fmt.Sprintf("A%d (%+dd)", pair.A, -pair.DayDelta)
	}
	return "-"
}
