package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/eshaffer321/ledger-reconcile/internal/infrastructure/config"
)

// RunFlags are the flags of the run command. Unset flags keep config values.
type RunFlags struct {
	Tolerance     int
	DateLayout    string
	Header        bool
	Delimiter     string
	Sheet         string
	Trim          bool
	Format        string
	OutA          string
	OutB          string
	Persist       bool
	FailOnMissing bool
}

func (f *RunFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.IntVar(&f.Tolerance, "tolerance", 1, "maximum days between matching dates")
	fs.StringVar(&f.DateLayout, "date-layout", "2006-01-02", "Go time layout of the date column")
	fs.BoolVar(&f.Header, "header", false, "skip the first row of each ledger")
	fs.StringVar(&f.Delimiter, "delimiter", ",", "CSV field delimiter")
	fs.StringVar(&f.Sheet, "sheet", "", "XLSX sheet name (default first sheet)")
	fs.BoolVar(&f.Trim, "trim", false, "trim whitespace around fields")
	fs.StringVarP(&f.Format, "format", "f", "", "output format: table, csv or json (default table on a terminal, json otherwise)")
	fs.StringVar(&f.OutA, "out-a", "", "write annotated ledger A to this file (.csv, .tsv or .xlsx)")
	fs.StringVar(&f.OutB, "out-b", "", "write annotated ledger B to this file (.csv, .tsv or .xlsx)")
	fs.BoolVar(&f.Persist, "persist", false, "record the run in the database")
	fs.BoolVar(&f.FailOnMissing, "fail-on-missing", false, "exit non-zero when any row is MISSING")
}

// ApplyTo overrides config values with the flags the user actually set
func (f *RunFlags) ApplyTo(cmd *cobra.Command, cfg *config.Config) error {
	fs := cmd.Flags()
	if fs.Changed("tolerance") {
		cfg.Reconcile.DateToleranceDays = f.Tolerance
	}
	if fs.Changed("date-layout") {
		cfg.Reconcile.DateLayout = f.DateLayout
	}
	if fs.Changed("header") {
		cfg.Input.HasHeader = f.Header
	}
	if fs.Changed("delimiter") {
		cfg.Input.Delimiter = f.Delimiter
	}
	if fs.Changed("sheet") {
		cfg.Input.Sheet = f.Sheet
	}
	if fs.Changed("trim") {
		cfg.Input.TrimSpace = f.Trim
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid flags: %w", err)
	}
	return nil
}
