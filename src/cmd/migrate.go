// backend/src/cmd/migrate.go
package cmd

import (
	"github.com/spf13/cobra"
	"github.com/username/expensetracker/backend/src/config"
	"github.com/username/expensetracker/backend/src/database"
	"github.com/username/expensetracker/backend/src/logger"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := database.OpenAndMigrate(config.Cfg.DatabasePath)
			if err != nil {
				return err
			}
			defer db.Close()
			logger.L.Info("Database is up to date", "path", config.Cfg.DatabasePath)
			return nil
		},
	}
}
