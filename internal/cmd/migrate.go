package cmd

import (
	"fmt"

	"github.com/SAP-F-2025/suggestibility-service/pkg"
	"github.com/spf13/cobra"
)

// NewMigrateCommand creates the 'suggestibility migrate' command
func NewMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig()
			if err != nil {
				return err
			}

			db, err := pkg.InitDatabase(cfg)
			if err != nil {
				return err
			}
			defer pkg.CloseDatabase(db)

			if err := pkg.MigrateDatabase(db); err != nil {
				return err
			}

			logger.Info("Database migrated")
			fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
			return nil
		},
	}
}
