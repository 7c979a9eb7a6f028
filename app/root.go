// Package app implements the main application commands.
package app

import (
	"github.com/spf13/cobra"

	"github.com/GoBlogAdmin/GoBlogAdmin/internal/config"
)

var (
	configPath string // Path to the configuration directory
	cfg        config.Config
)

var rootCmd = &cobra.Command{
	Use:   "go-blog-admin",
	Short: "GoBlogAdmin is a blog administration service with role based access",
	Long: `GoBlogAdmin is a blog administration service with role based access.
It serves a JSON REST API secured with bearer tokens and a server rendered
browser client for writing posts and managing accounts.`,
	Args:          cobra.OnlyValidArgs,
	SilenceUsage:  true,
	SilenceErrors: false,
}

func init() { //nolint: gochecknoinits
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "./etc/", "directory holding main.toml")
}

// readConfig loads the configuration for a command.
func readConfig(_ *cobra.Command, _ []string) error {
	var err error

	cfg, err = config.ReadConfig(configPath)

	return err //nolint:wrapcheck
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
