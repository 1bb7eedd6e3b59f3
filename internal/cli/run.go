package cli

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/eshaffer321/ledger-reconcile/internal/adapters/ledgers"
	"github.com/eshaffer321/ledger-reconcile/internal/application/service"
	"github.com/eshaffer321/ledger-reconcile/internal/infrastructure/storage"
)

// ErrUnbalanced is returned by run --fail-on-missing when a row is MISSING
var ErrUnbalanced = errors.New("ledgers do not balance")

func newRunCommand(a *app) *cobra.Command {
	flags := &RunFlags{}

	cmd := &cobra.Command{
		Use:   "run <ledger-a> <ledger-b>",
		Short: "Reconcile two ledger files",
		Long: `Reconcile two ledger files (.csv, .tsv or .xlsx) with columns
date, department, amount, beneficiary and report the status of every row.`,
		Example: `  reconcile run books.csv bank.csv
  reconcile run books.csv bank.xlsx --header --format csv
  reconcile run books.csv bank.csv --out-a books.out.csv --out-b bank.out.csv --persist`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runReconcile(cmd, flags, args[0], args[1])
		},
	}

	flags.register(cmd)
	return cmd
}

func (a *app) runReconcile(cmd *cobra.Command, flags *RunFlags, pathA, pathB string) error {
	if err := flags.ApplyTo(cmd, a.cfg); err != nil {
		return err
	}
	format, err := ParseFormat(flags.Format)
	if err != nil {
		return err
	}

	opts := ledgers.OptionsFromConfig(a.cfg.Input)
	registry := ledgers.NewDefaultRegistry(opts, a.logger)

	var repo storage.Repository
	if flags.Persist {
		store, err := storage.NewStorage(a.cfg.Storage.DatabasePath)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer func() { _ = store.Close() }()
		repo = store
	}

	svc, err := service.NewReconcileService(a.cfg, registry, repo, a.logger)
	if err != nil {
		return err
	}

	report, err := svc.ReconcileFiles(cmd.Context(), pathA, pathB, flags.Persist)
	if err != nil {
		return err
	}

	if flags.OutA != "" {
		if err := ledgers.WriteFile(flags.OutA, report.A, opts); err != nil {
			return err
		}
		a.logger.Info("wrote annotated ledger", slog.String("side", "a"), slog.String("path", flags.OutA))
	}
	if flags.OutB != "" {
		if err := ledgers.WriteFile(flags.OutB, report.B, opts); err != nil {
			return err
		}
		a.logger.Info("wrote annotated ledger", slog.String("side", "b"), slog.String("path", flags.OutB))
	}

	if err := PrintReport(cmd.OutOrStdout(), report, format); err != nil {
		return err
	}

	if flags.FailOnMissing && !report.Summary.Balanced() {
		return fmt.Errorf("%w: %d missing in A, %d missing in B", ErrUnbalanced, report.Summary.A.Missing, report.Summary.B.Missing)
	}
	return nil
}
