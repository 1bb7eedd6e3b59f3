// Package ledgers reads and writes ledger files.
//
// A ledger file holds one transaction per row with at least four columns:
// date, department, amount, beneficiary. Loaders return rows exactly as
// written (apart from optional trimming). Validating dates and row shape is
// left to the reconciler so that errors carry the row index.
package ledgers

import (
	"errors"
	"io"

	"github.com/eshaffer321/ledger-reconcile/internal/domain/reconciler"
	"github.com/eshaffer321/ledger-reconcile/internal/infrastructure/config"
)

// ErrUnsupportedFormat is returned when no loader handles a file extension or name.
var ErrUnsupportedFormat = errors.New("unsupported ledger format")

// Loader is the interface that every ledger file format implements
type Loader interface {
	Name() string         // "csv", "xlsx", etc.
	Extensions() []string // lower-case, with leading dot
	Load(r io.Reader) (reconciler.Ledger, error)
}

// Options configures how ledger files are parsed
type Options struct {
	Delimiter rune   // CSV field separator (default ',')
	HasHeader bool   // Skip the first row
	Sheet     string // XLSX sheet name, empty = first sheet
	TrimSpace bool   // Trim surrounding whitespace from every field
}

// DefaultOptions returns options for a plain headerless CSV file
func DefaultOptions() Options {
	return Options{Delimiter: ','}
}

// OptionsFromConfig converts the input config section to loader options
func OptionsFromConfig(cfg config.InputConfig) Options {
	opts := DefaultOptions()
	if r := []rune(cfg.Delimiter); len(r) == 1 {
		opts.Delimiter = r[0]
	}
	opts.HasHeader = cfg.HasHeader
	opts.Sheet = cfg.Sheet
	opts.TrimSpace = cfg.TrimSpace
	return opts
}
