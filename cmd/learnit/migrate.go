package main

import (
	"github.com/spf13/cobra"

	"github.com/yungbote/learnit-backend/internal/app"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the schema and indexes",
	RunE: func(cmd *cobra.Command, args []string) error {
		log, cfg, err := bootstrap()
		if err != nil {
			return err
		}
		defer log.Sync()

		database, err := app.Open(cfg, log)
		if err != nil {
			return err
		}
		defer database.Close()
		log.Info("migration complete", "driver", database.Driver())
		return nil
	},
}
