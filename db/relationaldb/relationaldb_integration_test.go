//go:build integration

package relationaldb

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

const integrationFixture = `
CREATE TABLE invoices (
	id serial PRIMARY KEY,
	concept text,
	total numeric(10,2),
	meta jsonb,
	issued_at date
);
CREATE TABLE "Odd Table" ("weird ""col""" varchar(64));
INSERT INTO invoices (concept, total, meta, issued_at) VALUES
	('Budget office supplies', 1500.00, '{"note": "budget approved"}', '2024-01-10'),
	('Travel', 320.50, '{"note": "no match"}', '2024-02-11'),
	('100% budget overrun', 99.99, NULL, NULL);
INSERT INTO "Odd Table" VALUES ('budget in an odd place'), ('nothing');
CREATE TABLE memos (body text);
CREATE TABLE archived_memos () INHERITS (memos);
INSERT INTO memos VALUES ('memo current');
INSERT INTO archived_memos VALUES ('memo archived');
CREATE TABLE events (id integer, note text) PARTITION BY RANGE (id);
CREATE TABLE events_low PARTITION OF events FOR VALUES FROM (0) TO (100);
INSERT INTO events VALUES (1, 'memo partitioned');
`

func setupPostgres(t *testing.T) *sql.DB {
	t.Helper()
	ctx := context.Background()

	container, err := postgres.Run(ctx, "postgres:15-alpine",
		postgres.WithDatabase("buscador_test"),
		postgres.WithUsername("buscador"),
		postgres.WithPassword("secret"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err, "could not start postgres container")
	t.Cleanup(func() {
		cleanupCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := container.Terminate(cleanupCtx); err != nil {
			t.Logf("could not terminate container: %v", err)
		}
	})

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := Open(ctx, ConnectionConfig{URL: connStr, MaxOpenConns: 2})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	_, err = db.ExecContext(ctx, integrationFixture)
	require.NoError(t, err, "could not load fixture")
	return db
}

func TestScanAgainstPostgres(t *testing.T) {
	db := setupPostgres(t)
	scanner := NewScanner(newTestLogger(), db, "public")

	type testCase struct {
		name     string
		term     string
		expected []Row
	}

	testCases := []testCase{
		{
			name: "text json and quoted identifiers",
			term: "BUDGET",
			expected: []Row{
				{Table: "invoices", Column: "concept", Value: "Budget office supplies"},
				{Table: "invoices", Column: "concept", Value: "100% budget overrun"},
				{Table: "invoices", Column: "meta", Value: `{"note": "budget approved"}`},
				{Table: "Odd Table", Column: `weird "col"`, Value: "budget in an odd place"},
			},
		},
		{
			name: "numeric cast",
			term: "1500",
			expected: []Row{
				{Table: "invoices", Column: "total", Value: "1500.00"},
			},
		},
		{
			name: "wildcards are literal",
			term: "%",
			expected: []Row{
				{Table: "invoices", Column: "concept", Value: "100% budget overrun"},
			},
		},
		{
			name: "inherited and partitioned rows reported once",
			term: "memo",
			expected: []Row{
				{Table: "memos", Column: "body", Value: "memo current"},
				{Table: "archived_memos", Column: "body", Value: "memo archived"},
				{Table: "events_low", Column: "note", Value: "memo partitioned"},
			},
		},
		{
			name:     "injection attempt matches nothing",
			term:     "'; DROP TABLE invoices; --",
			expected: nil,
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			assert := require.New(t)

			rows, err := scanner.Scan(context.Background(), testCase.term)
			assert.NoError(err)
			assert.ElementsMatch(testCase.expected, rows)
		})
	}

	var count int
	require.NoError(t, db.QueryRow("SELECT count(*) FROM invoices").Scan(&count))
	require.Equal(t, 3, count)
}

func TestScanIsDeterministic(t *testing.T) {
	assert := require.New(t)
	db := setupPostgres(t)
	scanner := NewScanner(newTestLogger(), db, "public")

	first, err := scanner.Scan(context.Background(), "budget")
	assert.NoError(err)
	second, err := scanner.Scan(context.Background(), "budget")
	assert.NoError(err)
	assert.Equal(first, second)
}
