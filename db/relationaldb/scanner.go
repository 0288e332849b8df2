package relationaldb

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/meghashyamc/buscador/logger"
)

// Row is one matching cell.
type Row struct {
	Table  string
	Column string
	Value  string
}

type Scanner struct {
	db      Querier
	catalog *Catalog
	logger  logger.Logger
}

func NewScanner(logger logger.Logger, db Querier, schema string) *Scanner {
	return &Scanner{
		db:      db,
		catalog: NewCatalog(logger, db, schema),
		logger:  logger,
	}
}

// Scan lists the searchable columns, runs one scan over all of them and maps every
// returned row back to its table and column. Any failure fails the whole scan.
func (s *Scanner) Scan(ctx context.Context, term string) ([]Row, error) {
	columns, err := s.catalog.ListSearchableColumns(ctx)
	if err != nil {
		return nil, err
	}

	plan := BuildScanQuery(columns, term)
	if plan.IsEmpty() {
		s.logger.Info("no searchable columns found, skipping database scan")
		return nil, nil
	}

	return s.execute(ctx, plan)
}

func (s *Scanner) execute(ctx context.Context, plan QueryPlan) ([]Row, error) {
	rows, err := s.db.QueryContext(ctx, plan.SQL, plan.Args...)
	if err != nil {
		s.logger.Error("database scan failed", "columns", len(plan.Columns), "err", err.Error())
		return nil, &QueryExecutionError{Columns: len(plan.Columns), Err: err}
	}
	defer rows.Close()

	var results []Row
	for rows.Next() {
		var index int
		var value sql.NullString
		if err := rows.Scan(&index, &value); err != nil {
			s.logger.Error("could not scan result row", "err", err.Error())
			return nil, &QueryExecutionError{Columns: len(plan.Columns), Err: err}
		}
		if index < 0 || index >= len(plan.Columns) {
			return nil, &QueryExecutionError{
				Columns: len(plan.Columns),
				Err:     fmt.Errorf("column index %d out of range", index),
			}
		}

		column := plan.Columns[index]
		results = append(results, Row{
			Table:  column.Table,
			Column: column.Column,
			Value:  value.String,
		})
	}
	if err := rows.Err(); err != nil {
		s.logger.Error("could not iterate result rows", "err", err.Error())
		return nil, &QueryExecutionError{Columns: len(plan.Columns), Err: err}
	}

	s.logger.Info("database scan complete", "columns", len(plan.Columns), "matches", len(results))
	return results, nil
}
