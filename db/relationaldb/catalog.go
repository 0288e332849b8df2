package relationaldb

import (
	"context"
	"strings"

	"github.com/meghashyamc/buscador/logger"
)

type TypeBucket string

const (
	TypeText    TypeBucket = "text-like"
	TypeJSON    TypeBucket = "json-like"
	TypeNumeric TypeBucket = "numeric-like"
	TypeOther   TypeBucket = "other"
)

const listColumnsQuery = `SELECT table_name, column_name, data_type
FROM information_schema.columns
WHERE table_schema = $1
ORDER BY table_name, ordinal_position`

type ColumnDescriptor struct {
	Schema  string
	Table   string
	Column  string
	SQLType TypeBucket
}

type Catalog struct {
	db     Querier
	schema string
	logger logger.Logger
}

func NewCatalog(logger logger.Logger, db Querier, schema string) *Catalog {
	return &Catalog{db: db, schema: schema, logger: logger}
}

// ListSearchableColumns reads the schema afresh on every call. Columns whose type
// falls into the "other" bucket are left out.
func (c *Catalog) ListSearchableColumns(ctx context.Context) ([]ColumnDescriptor, error) {
	rows, err := c.db.QueryContext(ctx, listColumnsQuery, c.schema)
	if err != nil {
		c.logger.Error("could not list columns", "schema", c.schema, "err", err.Error())
		return nil, &CatalogError{Schema: c.schema, Err: err}
	}
	defer rows.Close()

	var columns []ColumnDescriptor
	skipped := 0
	for rows.Next() {
		var table, column, dataType string
		if err := rows.Scan(&table, &column, &dataType); err != nil {
			c.logger.Error("could not scan column row", "schema", c.schema, "err", err.Error())
			return nil, &CatalogError{Schema: c.schema, Err: err}
		}

		bucket := ClassifyType(dataType)
		if bucket == TypeOther {
			skipped++
			continue
		}
		columns = append(columns, ColumnDescriptor{
			Schema:  c.schema,
			Table:   table,
			Column:  column,
			SQLType: bucket,
		})
	}
	if err := rows.Err(); err != nil {
		c.logger.Error("could not iterate column rows", "schema", c.schema, "err", err.Error())
		return nil, &CatalogError{Schema: c.schema, Err: err}
	}

	c.logger.Debug("listed searchable columns", "schema", c.schema, "searchable", len(columns), "skipped", skipped)
	return columns, nil
}

// ClassifyType maps an information_schema data_type onto a TypeBucket.
func ClassifyType(dataType string) TypeBucket {
	dataType = strings.ToLower(strings.TrimSpace(dataType))

	switch dataType {
	case "text", "character varying", "varchar", "character", "char", "bpchar", "name", "citext":
		return TypeText
	case "json", "jsonb":
		return TypeJSON
	case "smallint", "integer", "bigint", "decimal", "real", "double precision",
		"int", "int2", "int4", "int8", "float4", "float8":
		return TypeNumeric
	}

	if strings.HasPrefix(dataType, "numeric") || strings.HasPrefix(dataType, "decimal") {
		return TypeNumeric
	}

	return TypeOther
}
