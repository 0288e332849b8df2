// Package search merges database and document matches for one term into a
// single ordered list of hits.
package search

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/meghashyamc/buscador/db/relationaldb"
	"github.com/meghashyamc/buscador/logger"
	"github.com/meghashyamc/buscador/metrics"
	"github.com/meghashyamc/buscador/services/extract"
	"golang.org/x/sync/errgroup"
)

const (
	SourceDatabase = "database"
	SourceDocument = "document"

	FieldFilename = "filename"
	FieldContent  = "content"
)

type SearchHit struct {
	Source      string `json:"source"`
	TableOrFile string `json:"table_or_file"`
	Field       string `json:"field"`
	Excerpt     string `json:"excerpt"`
	Location    string `json:"location,omitempty"`
}

type RelationalScanner interface {
	Scan(ctx context.Context, term string) ([]relationaldb.Row, error)
}

type DocumentExtractor interface {
	Extract(ctx context.Context, path string, term string) (*extract.Document, error)
}

type Service struct {
	logger       logger.Logger
	relational   RelationalScanner
	extractor    DocumentExtractor
	documentsDir string
	metrics      *metrics.Metrics
}

// New builds the aggregator. A nil relational scanner turns the database branch
// off; metrics may be nil.
func New(logger logger.Logger, relational RelationalScanner, extractor DocumentExtractor, documentsDir string, metrics *metrics.Metrics) *Service {
	return &Service{
		logger:       logger,
		relational:   relational,
		extractor:    extractor,
		documentsDir: documentsDir,
		metrics:      metrics,
	}
}

// Search returns database hits followed by document hits. A failing database
// branch fails the whole call; a failing document only loses that document's
// hits. A blank term returns no hits and touches nothing.
func (s *Service) Search(ctx context.Context, term string) ([]SearchHit, error) {
	if strings.TrimSpace(term) == "" {
		return []SearchHit{}, nil
	}

	start := time.Now()
	var databaseHits, documentHits []SearchHit

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		databaseHits, err = s.searchDatabase(gctx, term)
		return err
	})
	g.Go(func() error {
		var err error
		documentHits, err = s.searchDocuments(gctx, term)
		return err
	})

	if err := g.Wait(); err != nil {
		s.logger.Error("search failed", "term", term, "err", err.Error())
		s.metrics.ObserveSearch(metrics.StatusError, time.Since(start), nil)
		return nil, err
	}

	hits := make([]SearchHit, 0, len(databaseHits)+len(documentHits))
	hits = append(hits, databaseHits...)
	hits = append(hits, documentHits...)

	s.metrics.ObserveSearch(metrics.StatusOK, time.Since(start), map[string]int{
		SourceDatabase: len(databaseHits),
		SourceDocument: len(documentHits),
	})
	s.logger.Info("search complete", "term", term, "database_hits", len(databaseHits), "document_hits", len(documentHits), "duration", time.Since(start).String())
	return hits, nil
}

func (s *Service) searchDatabase(ctx context.Context, term string) ([]SearchHit, error) {
	if s.relational == nil {
		return nil, nil
	}

	rows, err := s.relational.Scan(ctx, term)
	if err != nil {
		return nil, err
	}

	hits := make([]SearchHit, 0, len(rows))
	for _, row := range rows {
		hits = append(hits, SearchHit{
			Source:      SourceDatabase,
			TableOrFile: row.Table,
			Field:       row.Column,
			Excerpt:     row.Value,
		})
	}
	return hits, nil
}

// searchDocuments processes one file at a time in listing order. It only returns
// an error when ctx is done.
func (s *Service) searchDocuments(ctx context.Context, term string) ([]SearchHit, error) {
	documents, err := listDocuments(s.documentsDir)
	if err != nil {
		s.logger.Warn("could not list documents directory, skipping documents", "dir", s.documentsDir, "err", err.Error())
		return nil, nil
	}

	var hits []SearchHit
	for _, document := range documents {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		hits = append(hits, s.searchDocument(ctx, document, term)...)
	}
	return hits, nil
}

func (s *Service) searchDocument(ctx context.Context, document documentFile, term string) []SearchHit {
	var hits []SearchHit
	if document.nameContains(term) {
		hits = append(hits, SearchHit{
			Source:      SourceDocument,
			TableOrFile: document.Name,
			Field:       FieldFilename,
			Excerpt:     document.Name,
		})
	}

	doc, err := s.extractor.Extract(ctx, document.Path, term)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			s.metrics.ExtractionFailed(document.extension())
		}
		s.logger.Warn("could not extract document, skipping its content", "path", document.Path, "err", err.Error())
		return hits
	}

	for _, excerpt := range doc.Excerpts(term) {
		hits = append(hits, SearchHit{
			Source:      SourceDocument,
			TableOrFile: document.Name,
			Field:       FieldContent,
			Excerpt:     excerpt.Text,
			Location:    excerpt.Location,
		})
	}
	return hits
}
