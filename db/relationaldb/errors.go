package relationaldb

import (
	"errors"
	"fmt"
)

var (
	ErrCatalog        = errors.New("catalog error")
	ErrQueryExecution = errors.New("query execution error")
)

// CatalogError means the schema could not be introspected.
type CatalogError struct {
	Schema string
	Err    error
}

// QueryExecutionError means the synthesized scan query failed.
type QueryExecutionError struct {
	Columns int
	Err     error
}

func (e *CatalogError) Error() string {
	return fmt.Sprintf("could not read columns of schema %s: %s", e.Schema, e.Err)
}

func (e *CatalogError) Unwrap() error {
	return e.Err
}

func (e *CatalogError) Is(target error) bool {
	return target == ErrCatalog
}

func (e *QueryExecutionError) Error() string {
	return fmt.Sprintf("scan over %d columns failed: %s", e.Columns, e.Err)
}

func (e *QueryExecutionError) Unwrap() error {
	return e.Err
}

func (e *QueryExecutionError) Is(target error) bool {
	return target == ErrQueryExecution
}
