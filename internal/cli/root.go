// Package cli implements the robolab command line.
package cli

import (
	"context"

	"github.com/rpggio/robolab/internal/telemetry"
	"github.com/spf13/cobra"
)

type globalOptions struct {
	configPath string
	dbPath     string
	jsonOutput bool
	verbose    bool

	logFile *telemetry.LogFile
}

// Execute runs the root command
func Execute(ctx context.Context, version string) error {
	rootCmd, opts := newRootCommand(version)
	return execute(ctx, rootCmd, opts)
}

func execute(ctx context.Context, rootCmd *cobra.Command, opts *globalOptions) error {
	// Post-run hooks are skipped when a command fails.
	defer opts.closeLog()
	return rootCmd.ExecuteContext(ctx)
}

// NewRootCommand builds the command tree.
func NewRootCommand(version string) *cobra.Command {
	rootCmd, _ := newRootCommand(version)
	return rootCmd
}

func newRootCommand(version string) (*cobra.Command, *globalOptions) {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:   "robolab",
		Short: "robolab - robot catalogue stores",
		Long: `robolab manages a catalogue of robots (name, label, year, type).

Two stores are available:
  - a SQLite store with migrations, search, paging, archiving and export
  - an in-memory store persisted as a snapshot (see "robolab state")

"robolab serve" exposes the SQLite store as MCP tools.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			opts.closeLog()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "config file path (default $ROBOLAB_CONFIG_PATH)")
	rootCmd.PersistentFlags().StringVar(&opts.dbPath, "db", "", "database path (overrides config)")
	rootCmd.PersistentFlags().BoolVar(&opts.jsonOutput, "json", false, "output in JSON format")
	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(newMigrateCommand(opts))
	rootCmd.AddCommand(newListCommand(opts))
	rootCmd.AddCommand(newGetCommand(opts))
	rootCmd.AddCommand(newCreateCommand(opts))
	rootCmd.AddCommand(newUpdateCommand(opts))
	rootCmd.AddCommand(newArchiveCommand(opts))
	rootCmd.AddCommand(newUnarchiveCommand(opts))
	rootCmd.AddCommand(newDeleteCommand(opts))
	rootCmd.AddCommand(newExportCommand(opts))
	rootCmd.AddCommand(newStateCommand(opts))
	rootCmd.AddCommand(newServeCommand(opts))

	return rootCmd, opts
}
