package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fieldnotes-app/fieldnotes/internal/api"
	"github.com/fieldnotes-app/fieldnotes/internal/config"
	"github.com/fieldnotes-app/fieldnotes/internal/identity"
)

var whoamiCmd = &cobra.Command{
	Use:   "whoami [uid]",
	Short: "Show the profile the backend has for a user id",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		if cfg.APIBaseURL == "" {
			return fmt.Errorf("api_base_url is not configured; edit %s", configPath)
		}

		ident := identity.NewService(cfg.Firebase.Project, cfg.Firebase.APIKey, zap.NewNop())
		client := api.NewClient(cfg.APIBaseURL, ident, zap.NewNop())

		uid := args[0]
		profile := client.FetchUserData(context.Background(), uid)
		if profile == nil {
			fmt.Printf("No profile found for %s\n", uid)
			fmt.Printf("Creator name resolves to: %s\n", client.FetchCreatorName(context.Background(), uid))
			return nil
		}

		fmt.Printf("uid:   %s\n", profile.UID)
		fmt.Printf("name:  %s\n", profile.Name)
		fmt.Printf("email: %s\n", profile.Email)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(whoamiCmd)
}
