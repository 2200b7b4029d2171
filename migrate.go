package main

import (
	"log/slog"

	"github.com/spf13/cobra"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the todos table if it does not exist",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			//opening the repo creates the table
			db, _, err := initDB(cmd, cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			slog.Info("migration_success")
			return nil
		},
	}
}
