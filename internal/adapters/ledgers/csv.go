package ledgers

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/eshaffer321/ledger-reconcile/internal/domain/reconciler"
)

const utf8BOM = "\ufeff"

// CSVLoader reads delimited text ledgers
type CSVLoader struct {
	name       string
	extensions []string
	opts       Options
}

// NewCSVLoader creates a loader for .csv files
func NewCSVLoader(opts Options) *CSVLoader {
	if opts.Delimiter == 0 {
		opts.Delimiter = ','
	}
	return &CSVLoader{name: "csv", extensions: []string{".csv"}, opts: opts}
}

// NewTSVLoader creates a tab separated variant registered for .tsv and .tab files
func NewTSVLoader(opts Options) *CSVLoader {
	opts.Delimiter = '\t'
	return &CSVLoader{name: "tsv", extensions: []string{".tsv", ".tab"}, opts: opts}
}

func (l *CSVLoader) Name() string         { return l.name }
func (l *CSVLoader) Extensions() []string { return l.extensions }

// Load parses every record of r. Records may have any number of fields.
func (l *CSVLoader) Load(r io.Reader) (reconciler.Ledger, error) {
	reader := csv.NewReader(r)
	reader.Comma = l.opts.Delimiter
	reader.FieldsPerRecord = -1
	reader.ReuseRecord = false

	ledger := reconciler.Ledger{}
	first := true
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read %s ledger: %w", l.name, err)
		}

		if first {
			first = false
			if len(record) > 0 {
				record[0] = strings.TrimPrefix(record[0], utf8BOM)
			}
			if l.opts.HasHeader {
				continue
			}
		}

		ledger = append(ledger, toRow(record, l.opts.TrimSpace))
	}

	return ledger, nil
}

func toRow(fields []string, trim bool) reconciler.Row {
	row := make(reconciler.Row, len(fields))
	for i, f := range fields {
		if trim {
			f = strings.TrimSpace(f)
		}
		row[i] = f
	}
	return row
}
