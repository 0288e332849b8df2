package main

import (
	"github.com/meghashyamc/buscador/api"
	"github.com/spf13/cobra"
)

func newServeCmd(env *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the search HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, *env)
		},
	}
}

func runServe(cmd *cobra.Command, env string) error {
	cfg, err := loadConfig(env)
	if err != nil {
		return err
	}
	return api.Run(cmd.Context(), cfg)
}
