// Package extract turns documents of many formats into plain text. Each format
// family has its own Extractor; the extension of a file selects the family.
package extract

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/meghashyamc/buscador/logger"
	"github.com/meghashyamc/buscador/services/occurrence"
)

type Family string

const (
	FamilyText         Family = "text"
	FamilyPDF          Family = "pdf"
	FamilyWord         Family = "word"
	FamilySpreadsheet  Family = "spreadsheet"
	FamilyPresentation Family = "presentation"
	FamilyGeneric      Family = "generic"
)

const defaultMaxFileSize = 10 * 1024 * 1024 // 10MB

var familiesByExtension = map[string]Family{
	".txt": FamilyText, ".md": FamilyText, ".csv": FamilyText, ".tsv": FamilyText,
	".log": FamilyText, ".json": FamilyText, ".yaml": FamilyText, ".yml": FamilyText,
	".ini": FamilyText, ".conf": FamilyText, ".sql": FamilyText,

	".pdf": FamilyPDF,

	".docx": FamilyWord, ".odt": FamilyWord,

	".xlsx": FamilySpreadsheet, ".xls": FamilySpreadsheet,

	".pptx": FamilyPresentation, ".ppt": FamilyPresentation,
}

// Extractor produces the plain text of the file at path.
type Extractor interface {
	Extract(ctx context.Context, path string) (string, error)
}

// QueryExtractor is implemented by extractors that can locate a term themselves.
type QueryExtractor interface {
	Extractor
	ExtractForQuery(ctx context.Context, path string, term string) (*OfficeResult, error)
}

// ExtractorFunc adapts a function to the Extractor interface.
type ExtractorFunc func(ctx context.Context, path string) (string, error)

func (f ExtractorFunc) Extract(ctx context.Context, path string) (string, error) {
	return f(ctx, path)
}

// Chain tries each extractor in order and returns the first success. If all of
// them fail the errors are joined.
type Chain []Extractor

func (c Chain) Extract(ctx context.Context, path string) (string, error) {
	var errs []error
	for i, extractor := range c {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		text, err := extractor.Extract(ctx, path)
		if err == nil {
			return text, nil
		}
		errs = append(errs, fmt.Errorf("extractor %d: %w", i, err))
	}
	if len(errs) == 0 {
		return "", errors.New("no extractors configured")
	}
	return "", errors.Join(errs...)
}

// Document is the text of one file, alive only while that file is processed.
// When Precomputed is set the extractor already located the term and Matches
// replaces a scan of Text.
type Document struct {
	Path        string
	FileName    string
	Text        string
	Matches     []occurrence.Excerpt
	Precomputed bool
}

// Excerpts returns the precomputed matches or scans Text for term.
func (d *Document) Excerpts(term string) []occurrence.Excerpt {
	if d.Precomputed {
		return d.Matches
	}
	return occurrence.All(d.Text, term)
}

type Options struct {
	MaxFileSize int64
	// Timeout bounds the extraction of a single file. Zero means no bound.
	Timeout time.Duration
	Office  OfficeRunner
}

type Service struct {
	logger     logger.Logger
	extractors map[Family]Extractor
	timeout    time.Duration
}

func New(logger logger.Logger, options Options) *Service {
	maxFileSize := options.MaxFileSize
	if maxFileSize <= 0 {
		maxFileSize = defaultMaxFileSize
	}

	s := &Service{
		logger:     logger,
		extractors: make(map[Family]Extractor),
		timeout:    options.Timeout,
	}

	s.Register(FamilyText, &TextExtractor{MaxFileSize: maxFileSize})
	s.Register(FamilyPDF, &PDFExtractor{MaxFileSize: maxFileSize})
	s.Register(FamilyWord, Chain{
		&WordExtractor{MaxFileSize: maxFileSize},
		&RawXMLExtractor{MaxFileSize: maxFileSize},
	})
	s.Register(FamilyGeneric, &GenericExtractor{MaxFileSize: maxFileSize})
	if options.Office != nil {
		s.Register(FamilySpreadsheet, &OfficeExtractor{Runner: options.Office})
		s.Register(FamilyPresentation, &OfficeExtractor{Runner: options.Office})
	}

	return s
}

// Register replaces the extractor used for a family.
func (s *Service) Register(family Family, extractor Extractor) {
	s.extractors[family] = extractor
}

// FamilyOf maps a file name to its format family.
func FamilyOf(path string) Family {
	if family, ok := familiesByExtension[strings.ToLower(filepath.Ext(path))]; ok {
		return family
	}
	return FamilyGeneric
}

// Extract returns the text of the file at path. A non-empty term lets query aware
// extractors return their own matches. Every failure is an *ExtractionError.
func (s *Service) Extract(ctx context.Context, path string, term string) (*Document, error) {
	family := FamilyOf(path)
	extractor, ok := s.extractors[family]
	if !ok {
		return nil, &ExtractionError{Path: path, Family: family, Err: ErrUnsupportedFormat}
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	doc := &Document{Path: path, FileName: filepath.Base(path)}

	if queryExtractor, ok := extractor.(QueryExtractor); ok && term != "" {
		result, err := queryExtractor.ExtractForQuery(ctx, path, term)
		if err != nil {
			return nil, &ExtractionError{Path: path, Family: family, Err: err}
		}
		doc.Text = result.Text
		if result.Kind == PrecomputedMatches {
			doc.Precomputed = true
			doc.Matches = keepMatching(result.Matches, term)
		}
		return doc, nil
	}

	text, err := extractor.Extract(ctx, path)
	if err != nil {
		return nil, &ExtractionError{Path: path, Family: family, Err: err}
	}
	doc.Text = text

	s.logger.Debug("extracted document", "path", path, "family", family, "characters", len(text))
	return doc, nil
}

// keepMatching drops precomputed matches whose excerpt does not contain term.
func keepMatching(matches []occurrence.Excerpt, term string) []occurrence.Excerpt {
	kept := make([]occurrence.Excerpt, 0, len(matches))
	for _, match := range matches {
		if occurrence.Contains(match.Text, term) {
			kept = append(kept, match)
		}
	}
	return kept
}
