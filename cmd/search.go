package main

import (
	"encoding/json"
	"fmt"

	"github.com/meghashyamc/buscador/api"
	"github.com/meghashyamc/buscador/api/handlers"
	"github.com/meghashyamc/buscador/logger"
	"github.com/spf13/cobra"
)

func newSearchCmd(env *string) *cobra.Command {
	var noDB bool

	cmd := &cobra.Command{
		Use:   "search <term>",
		Short: "Run one search and print the result as JSON",
		Example: `  # Search the database and the documents directory
  buscador search "budget"

  # Search documents only
  buscador search "budget" --no-db`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(cmd, *env, args[0], noDB)
		},
	}

	cmd.Flags().BoolVar(&noDB, "no-db", false, "Skip the database and search documents only")

	return cmd
}

func runSearch(cmd *cobra.Command, env string, term string, noDB bool) error {
	cfg, err := loadConfig(env)
	if err != nil {
		return err
	}
	log := logger.New(cfg.GetLogLevel())

	deps, err := api.NewDependencies(cmd.Context(), log, cfg, !noDB)
	if err != nil {
		return err
	}
	defer deps.Close()

	hits, err := deps.Search.Search(cmd.Context(), term)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	return encoder.Encode(handlers.NewSearchResponse(term, hits))
}
