package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/yungbote/learnit-backend/internal/app"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd)
	},
}

func runServe(cmd *cobra.Command) error {
	log, cfg, err := bootstrap()
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, log)
	if err != nil {
		log.Error("app init failed", "error", err)
		log.Sync()
		return err
	}
	defer a.Close()

	if err := a.Start(ctx); err != nil {
		log.Error("app start failed", "error", err)
		return err
	}
	return a.Run(ctx)
}
