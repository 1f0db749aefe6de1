package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:          "optica-api",
		Short:        "Optica admin REST API",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ./config.yml)")

	serve := newServeCmd(&configPath)
	root.AddCommand(serve, newMigrateCmd(&configPath), newCreateUserCmd(&configPath))
	root.RunE = serve.RunE
	return root
}
