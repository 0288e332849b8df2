package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/meghashyamc/buscador/config"
	"github.com/spf13/cobra"
)

func execute() int {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", err)
		return 1
	}
	return 0
}

func newRootCmd() *cobra.Command {
	var env string

	cmd := &cobra.Command{
		Use:   "buscador",
		Short: "Search a PostgreSQL database and a documents directory for a term",
		Long: `buscador scans every text, JSON and numeric column of a PostgreSQL schema and every
document in a directory for a case-insensitive term. Without a subcommand it serves
the HTTP API.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			godotenv.Load()
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, env)
		},
	}

	cmd.PersistentFlags().StringVar(&env, "env", "", "Configuration environment, selects config/config.<env>.yaml (default $ENV or local)")

	cmd.AddCommand(newServeCmd(&env))
	cmd.AddCommand(newSearchCmd(&env))

	return cmd
}

func loadConfig(env string) (*config.Config, error) {
	cfg, err := config.Load(env)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}
