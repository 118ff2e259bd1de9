package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yungbote/learnit-backend/internal/app"
	"github.com/yungbote/learnit-backend/internal/data/repos"
	"github.com/yungbote/learnit-backend/internal/data/seed"
	"github.com/yungbote/learnit-backend/internal/platform/dbctx"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Upsert subscription tiers and the demo catalog",
	RunE: func(cmd *cobra.Command, args []string) error {
		log, cfg, err := bootstrap()
		if err != nil {
			return err
		}
		defer log.Sync()

		catalog, err := seed.Load()
		if err != nil {
			return err
		}
		database, err := app.Open(cfg, log)
		if err != nil {
			return err
		}
		defer database.Close()

		gdb := database.DB()
		seeder := seed.NewSeeder(gdb, log, repos.NewSet(gdb, log))
		res, err := seeder.Run(dbctx.New(cmd.Context()), catalog)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "seeded %d tiers, %d modules, %d paths\n", res.Tiers, res.Modules, res.Paths)
		return nil
	},
}
