package api

import (
	"context"
	"database/sql"
	"os"

	"github.com/meghashyamc/buscador/config"
	"github.com/meghashyamc/buscador/db/relationaldb"
	"github.com/meghashyamc/buscador/logger"
	"github.com/meghashyamc/buscador/metrics"
	"github.com/meghashyamc/buscador/services/extract"
	"github.com/meghashyamc/buscador/services/search"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Dependencies is everything a search needs, built once from configuration and
// shared by the HTTP server and the one-shot CLI search.
type Dependencies struct {
	DB       *sql.DB
	Registry *prometheus.Registry
	Metrics  *metrics.Metrics
	Search   *search.Service
}

// NewDependencies creates the documents directory if needed, opens the database
// pool unless withDatabase is false and wires the search service.
func NewDependencies(ctx context.Context, logger logger.Logger, cfg *config.Config, withDatabase bool) (*Dependencies, error) {
	deps := &Dependencies{Registry: prometheus.NewRegistry()}
	deps.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	deps.Metrics = metrics.New(deps.Registry)

	documentsDir := cfg.GetDocumentsDir()
	if err := os.MkdirAll(documentsDir, 0755); err != nil {
		logger.Warn("could not create documents directory", "dir", documentsDir, "err", err.Error())
	}

	var relational search.RelationalScanner
	if withDatabase {
		db, err := relationaldb.Open(ctx, relationaldb.ConnectionConfig{
			URL:          cfg.GetDatabaseURL(),
			MaxOpenConns: cfg.GetDBMaxOpenConns(),
		})
		if err != nil {
			logger.Error("could not connect to database", "err", err.Error())
			return nil, err
		}
		deps.DB = db
		metrics.RegisterDBStats(deps.Registry, db, "buscador")
		relational = relationaldb.NewScanner(logger, db, cfg.GetDBSchema())
	}

	options := extract.Options{
		MaxFileSize: cfg.GetMaxFileSize(),
		Timeout:     cfg.GetExtractionTimeout(),
	}
	office, err := extract.NewOfficeCommand(logger, cfg.GetOfficeExtractorCommand(), cfg.GetOfficeExtractorTimeout())
	if err != nil {
		logger.Warn("office extraction disabled", "err", err.Error())
	} else {
		options.Office = office
	}

	deps.Search = search.New(logger, relational, extract.New(logger, options), documentsDir, deps.Metrics)
	return deps, nil
}

func (d *Dependencies) Close() error {
	if d.DB == nil {
		return nil
	}
	return d.DB.Close()
}
