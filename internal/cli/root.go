// Package cli wires configuration, storage and services into the examhall
// commands.
package cli

import (
	"os"

	"github.com/spf13/cobra"
)

// Execute runs the CLI.
func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:           "examhall",
		Short:         "Quiz authoring, attempts and scoring over HTTP",
		SilenceUsage:  true,
	}
	cmd.PersistentFlags().StringVar(&configPath, "config", os.Getenv("CONFIG_PATH"), "path to YAML config (optional)")
	cmd.AddCommand(newServeCmd(&configPath))
	cmd.AddCommand(newMigrateCmd(&configPath))
	cmd.AddCommand(newInitAdminCmd(&configPath))
	return cmd
}
