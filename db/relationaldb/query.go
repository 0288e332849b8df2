package relationaldb

import (
	"strconv"
	"strings"

	"github.com/lib/pq"
)

// QueryPlan is one UNION ALL scan. Every branch selects its position in Columns
// as column_index, so table and column names never travel as SQL literals.
// Branches read FROM ONLY: inheritance children and partitions are listed in the
// catalog on their own, so a parent must not return their rows again.
type QueryPlan struct {
	SQL     string
	Args    []any
	Columns []ColumnDescriptor
}

func (p QueryPlan) IsEmpty() bool {
	return len(p.Columns) == 0
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// BuildScanQuery returns an empty plan when there is nothing to scan.
func BuildScanQuery(columns []ColumnDescriptor, term string) QueryPlan {
	if len(columns) == 0 {
		return QueryPlan{}
	}

	var sb strings.Builder
	for i, column := range columns {
		if i > 0 {
			sb.WriteString("\nUNION ALL\n")
		}
		expr := textExpression(column)
		sb.WriteString("SELECT ")
		sb.WriteString(strconv.Itoa(i))
		sb.WriteString(" AS column_index, ")
		sb.WriteString(expr)
		sb.WriteString(" AS value FROM ONLY ")
		sb.WriteString(qualifiedTable(column))
		sb.WriteString(" WHERE ")
		sb.WriteString(expr)
		sb.WriteString(" ILIKE $1")
	}
	sb.WriteString("\nORDER BY 1, 2")

	return QueryPlan{
		SQL:     sb.String(),
		Args:    []any{containsPattern(term)},
		Columns: columns,
	}
}

func textExpression(column ColumnDescriptor) string {
	identifier := pq.QuoteIdentifier(column.Column)

	switch column.SQLType {
	case TypeJSON:
		return identifier + "::jsonb #>> '{}'"
	case TypeNumeric:
		return "CAST(" + identifier + " AS TEXT)"
	default:
		return identifier
	}
}

func qualifiedTable(column ColumnDescriptor) string {
	if column.Schema == "" {
		return pq.QuoteIdentifier(column.Table)
	}
	return pq.QuoteIdentifier(column.Schema) + "." + pq.QuoteIdentifier(column.Table)
}

// containsPattern turns term into an ILIKE pattern that matches it literally.
func containsPattern(term string) string {
	return "%" + likeEscaper.Replace(term) + "%"
}
