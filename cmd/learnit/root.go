package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yungbote/learnit-backend/internal/app"
	"github.com/yungbote/learnit-backend/internal/platform/envutil"
	"github.com/yungbote/learnit-backend/internal/platform/logger"
)

var rootCmd = &cobra.Command{
	Use:           "learnit",
	Short:         "Learning platform API",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(createAdminCmd)
}

// bootstrap loads .env and config and builds the logger every command shares.
func bootstrap() (*logger.Logger, app.Config, error) {
	mode := envutil.String("LOG_MODE", "development")
	log, err := logger.New(mode)
	if err != nil {
		return nil, app.Config{}, fmt.Errorf("init logger: %w", err)
	}
	app.LoadEnv(log)
	cfg, err := app.LoadConfig(log)
	if err != nil {
		log.Sync()
		return nil, app.Config{}, err
	}
	return log, cfg, nil
}
