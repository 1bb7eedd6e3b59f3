// Package cli implements the reconcile command line interface.
//
//	reconcile run books.csv bank.xlsx     # reconcile two ledger files
//	reconcile serve --port 8080           # start the HTTP API
//	reconcile runs list                   # show stored runs
//	reconcile runs show <id> --status MISSING
package cli

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/eshaffer321/ledger-reconcile/internal/infrastructure/config"
	"github.com/eshaffer321/ledger-reconcile/internal/infrastructure/logging"
)

// app holds state shared by all subcommands after the root pre-run
type app struct {
	cfgFile string
	verbose bool
	version string

	cfg    *config.Config
	logger *slog.Logger
}

// NewRootCommand builds the command tree
func NewRootCommand(version string) *cobra.Command {
	a := &app{version: version}

	root := &cobra.Command{
		Use:   "reconcile",
		Short: "Reconcile two transaction ledgers",
		Long: `reconcile pairs the transactions of two independently recorded ledgers,
such as internal books and a bank statement, and marks every row FOUND or MISSING.

Two rows match when department, amount and beneficiary are identical and their
dates are at most one day apart. Each row of ledger A takes the first unmatched
row of ledger B that qualifies.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	root.PersistentFlags().StringVar(&a.cfgFile, "config", "config.yaml", "path to config file")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(
		newRunCommand(a),
		newServeCommand(a),
		newRunsCommand(a),
		newVersionCommand(a),
	)

	return root
}

// Execute runs the CLI with the given args and returns any command error
func Execute(version string, args []string, stdout, stderr io.Writer) error {
	root := NewRootCommand(version)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	return root.Execute()
}

// init loads configuration and builds the logger. An explicitly passed
// config file must load; a missing default file falls back to the environment.
func (a *app) init(cmd *cobra.Command) error {
	load := config.LoadOrEnvWithPath
	if cmd.Flags().Changed("config") {
		load = config.Load
	}
	cfg, err := load(a.cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	a.cfg = cfg

	loggingCfg := a.cfg.Observability.Logging
	if a.verbose {
		loggingCfg.Level = "debug"
	}
	// Logs go to stderr so stdout stays clean for csv and json output
	a.logger = logging.NewLoggerTo(cmd.ErrOrStderr(), loggingCfg).With("system", "cli")
	return nil
}
