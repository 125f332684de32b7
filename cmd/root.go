package cmd

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/relist-app/relist/internal/config"
)

func NewRootCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "relist",
		Short: "Photo-to-listing automation client",
		Long: `Relist is the command line client for the relist listing-automation service.

Upload photos to have them analyzed into draft listings, then review, filter,
and bulk-publish the drafts to your marketplace.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()
		},
	}

	cmd.PersistentFlags().StringVar(&configPath, "config", "relist.yaml", "Path to the config file")

	// Add subcommands
	cmd.AddCommand(newUploadCmd(&configPath))
	cmd.AddCommand(newDraftsCmd(&configPath))
	cmd.AddCommand(newServeCmd(&configPath))

	return cmd
}

func loadConfig(configPath *string) (config.Config, error) {
	cfg, err := config.Load(*configPath)
	if err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}
