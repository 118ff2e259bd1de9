package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yungbote/learnit-backend/internal/app"
	"github.com/yungbote/learnit-backend/internal/services"
)

var createAdminCmd = &cobra.Command{
	Use:   "create-admin",
	Short: "Create an ADMIN account, or promote an existing one by email",
	RunE: func(cmd *cobra.Command, args []string) error {
		email, _ := cmd.Flags().GetString("email")
		username, _ := cmd.Flags().GetString("username")
		password, _ := cmd.Flags().GetString("password")

		log, cfg, err := bootstrap()
		if err != nil {
			return err
		}
		a, err := app.New(cmd.Context(), cfg, log)
		if err != nil {
			log.Sync()
			return err
		}
		defer a.Close()

		u, err := a.Services.Auth.CreateAdmin(cmd.Context(), services.RegisterInput{
			Email:    email,
			Username: username,
			Password: password,
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "admin ready: %s (%s)\n", u.Email, u.ID)
		return nil
	},
}

func init() {
	createAdminCmd.Flags().String("email", "", "admin email")
	createAdminCmd.Flags().String("username", "", "admin username")
	createAdminCmd.Flags().String("password", "", "admin password (min 6 chars)")
	_ = createAdminCmd.MarkFlagRequired("email")
	_ = createAdminCmd.MarkFlagRequired("password")
}
