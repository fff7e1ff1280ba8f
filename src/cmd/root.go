// backend/src/cmd/root.go
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/username/expensetracker/backend/src/config"
	"github.com/username/expensetracker/backend/src/logger"
)

// NewRootCmd builds the command tree. Running it without a subcommand serves the API.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "expensetracker",
		Short: "Expense tracker backend: HTTP API and data tools",
		Long: `expensetracker records purchases per user and serves them over a JSON API.

Subcommands:
  serve     start the HTTP API (default)
  migrate   apply database migrations and exit
  import    load purchases for a user from a CSV, JSON or XLSX file
  export    write a user's purchases to a CSV, JSON or XLSX file
  version   print build information`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if cmd.Name() == "version" {
				return
			}
			config.LoadConfig()
			logger.InitLogger(config.Cfg.LogLevel)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), config.Cfg)
		},
	}

	rootCmd.AddCommand(
		newServeCmd(),
		newMigrateCmd(),
		newImportCmd(),
		newExportCmd(),
		newVersionCmd(),
	)
	return rootCmd
}

// Execute runs the CLI. It is called by main.main().
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
