package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/eshaffer321/ledger-reconcile/internal/infrastructure/storage"
)

func newRunsCommand(a *app) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Inspect stored reconciliation runs",
	}
	cmd.PersistentFlags().StringVarP(&format, "format", "f", "", "output format: table, csv or json")

	var limit int
	list := &cobra.Command{
		Use:   "list",
		Short: "List recent runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := ParseFormat(format)
			if err != nil {
				return err
			}
			return a.withStorage(func(store storage.Repository) error {
				runs, err := store.ListRuns(limit)
				if err != nil {
					return err
				}
				return PrintRuns(cmd.OutOrStdout(), runs, f)
			})
		},
	}
	list.Flags().IntVarP(&limit, "limit", "n", 20, "maximum number of runs")

	var filter storage.RecordFilter
	show := &cobra.Command{
		Use:   "show <run-id>",
		Short: "Show a run and its rows",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := ParseFormat(format)
			if err != nil {
				return err
			}
			return a.withStorage(func(store storage.Repository) error {
				run, err := store.GetRun(args[0])
				if err != nil {
					return err
				}
				if run == nil {
					return fmt.Errorf("run %s not found", args[0])
				}
				records, err := store.ListRecords(run.ID, filter)
				if err != nil {
					return err
				}
				return PrintRun(cmd.OutOrStdout(), run, records, f)
			})
		},
	}
	show.Flags().StringVar(&filter.Side, "side", "", "only rows of ledger a or b")
	show.Flags().StringVar(&filter.Status, "status", "", "only FOUND or MISSING rows")

	cmd.AddCommand(list, show)
	return cmd
}

func (a *app) withStorage(fn func(storage.Repository) error) error {
	store, err := storage.NewStorage(a.cfg.Storage.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() { _ = store.Close() }()
	return fn(store)
}
