// Package metrics holds the prometheus collectors of the search service.
package metrics

import (
	"database/sql"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const namespace = "buscador"

// Status label values of SearchRequestsTotal.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

type Metrics struct {
	SearchRequestsTotal     *prometheus.CounterVec
	SearchDuration          prometheus.Histogram
	SearchHitsTotal         *prometheus.CounterVec
	ExtractionFailuresTotal *prometheus.CounterVec
}

// New creates the collectors and registers them with registry. All methods are
// safe to call on a nil *Metrics, which records nothing.
func New(registry prometheus.Registerer) *Metrics {
	m := &Metrics{
		SearchRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "search_requests_total",
				Help:      "Total number of searches",
			},
			[]string{"status"},
		),
		SearchDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "search_duration_seconds",
				Help:      "Search duration in seconds",
				Buckets:   []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
			},
		),
		SearchHitsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "search_hits_total",
				Help:      "Total number of hits returned, by source",
			},
			[]string{"source"},
		),
		ExtractionFailuresTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "extraction_failures_total",
				Help:      "Total number of documents skipped because their text could not be extracted",
			},
			[]string{"extension"},
		),
	}

	registry.MustRegister(
		m.SearchRequestsTotal,
		m.SearchDuration,
		m.SearchHitsTotal,
		m.ExtractionFailuresTotal,
	)

	return m
}

// RegisterDBStats exposes the connection pool statistics of db.
func RegisterDBStats(registry prometheus.Registerer, db *sql.DB, name string) {
	registry.MustRegister(collectors.NewDBStatsCollector(db, name))
}

// ObserveSearch records one finished search. hits maps a source to its number
// of hits.
func (m *Metrics) ObserveSearch(status string, duration time.Duration, hits map[string]int) {
	if m == nil {
		return
	}
	m.SearchRequestsTotal.WithLabelValues(status).Inc()
	m.SearchDuration.Observe(duration.Seconds())
	for source, count := range hits {
		m.SearchHitsTotal.WithLabelValues(source).Add(float64(count))
	}
}

func (m *Metrics) ExtractionFailed(extension string) {
	if m == nil {
		return
	}
	if extension == "" {
		extension = "none"
	}
	m.ExtractionFailuresTotal.WithLabelValues(extension).Inc()
}
