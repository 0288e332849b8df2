package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
)

const catalogQueryPattern = `FROM information_schema\.columns`

func expectCatalog(mock sqlmock.Sqlmock, rows ...[3]string) {
	catalogRows := sqlmock.NewRows([]string{"table_name", "column_name", "data_type"})
	for _, row := range rows {
		catalogRows.AddRow(row[0], row[1], row[2])
	}
	mock.ExpectQuery(catalogQueryPattern).WithArgs("public").WillReturnRows(catalogRows)
}

var searchHandlerTestCases = []testCase{
	{
		name:           "NoQuery",
		queryParams:    url.Values{},
		expectedStatus: http.StatusBadRequest,
		expectedResponse: map[string]any{
			"error": "missing required field 'q'",
			"usage": searchUsage,
		},
	},
	{
		name:           "EmptyQuery",
		queryParams:    url.Values{"q": {""}},
		expectedStatus: http.StatusBadRequest,
		expectedResponse: map[string]any{
			"error": "missing required field 'q'",
			"usage": searchUsage,
		},
	},
	{
		name:           "BlankQuery",
		queryParams:    url.Values{"q": {"   "}},
		expectedStatus: http.StatusBadRequest,
		expectedResponse: map[string]any{
			"error": "invalid query",
			"usage": searchUsage,
		},
	},
	{
		name:           "QueryTooLong",
		queryParams:    url.Values{"q": {strings.Repeat("a", 1001)}},
		expectedStatus: http.StatusBadRequest,
	},
	{
		name:        "DatabaseAndDocuments",
		queryParams: url.Values{"q": {"budget"}},
		setupMock: func(mock sqlmock.Sqlmock) {
			expectCatalog(mock, [3]string{"invoices", "concept", "text"}, [3]string{"invoices", "total", "numeric"})
			mock.ExpectQuery(`UNION ALL`).
				WithArgs("%budget%").
				WillReturnRows(sqlmock.NewRows([]string{"column_index", "value"}).AddRow(0, "Budget office supplies"))
		},
		expectedStatus: http.StatusOK,
		expectedResponse: map[string]any{
			"query": "budget",
			"total": float64(5),
			"resultados": []any{
				map[string]any{"source": "database", "table_or_file": "invoices", "field": "concept", "excerpt": "Budget office supplies"},
				map[string]any{"source": "document", "table_or_file": "budget_2024.txt", "field": "filename", "excerpt": "budget_2024.txt"},
				map[string]any{"source": "document", "table_or_file": "budget_2024.txt", "field": "content", "excerpt": "Draft budget for 2024"},
				map[string]any{"source": "document", "table_or_file": "minutes.md", "field": "content", "excerpt": "# Minutes\n\nThe committee discussed the budget twice: budget."},
				map[string]any{"source": "document", "table_or_file": "minutes.md", "field": "content", "excerpt": "# Minutes\n\nThe committee discussed the budget twice: budget."},
			},
		},
	},
	{
		name:        "NoResults",
		queryParams: url.Values{"q": {"nonexistent"}},
		setupMock: func(mock sqlmock.Sqlmock) {
			expectCatalog(mock)
		},
		expectedStatus: http.StatusOK,
		expectedResponse: map[string]any{
			"query":      "nonexistent",
			"total":      float64(0),
			"resultados": []any{},
		},
	},
	{
		name:        "CaseInsensitiveDocumentsOnly",
		queryParams: url.Values{"q": {"NOTHING"}},
		setupMock: func(mock sqlmock.Sqlmock) {
			expectCatalog(mock, [3]string{"users", "avatar", "bytea"})
		},
		expectedStatus: http.StatusOK,
		expectedResponse: map[string]any{
			"query": "NOTHING",
			"total": float64(1),
			"resultados": []any{
				map[string]any{"source": "document", "table_or_file": "readme.txt", "field": "content", "excerpt": "Nothing to see here"},
			},
		},
	},
	{
		name:        "CatalogFailure",
		queryParams: url.Values{"q": {"budget"}},
		setupMock: func(mock sqlmock.Sqlmock) {
			mock.ExpectQuery(catalogQueryPattern).WillReturnError(errors.New("permission denied"))
		},
		expectedStatus: http.StatusInternalServerError,
		expectedResponse: map[string]any{
			"error":   "search failed",
			"mensaje": "could not read columns of schema public: permission denied",
		},
	},
	{
		name:        "ScanFailure",
		queryParams: url.Values{"q": {"budget"}},
		setupMock: func(mock sqlmock.Sqlmock) {
			expectCatalog(mock, [3]string{"invoices", "concept", "text"})
			mock.ExpectQuery(`ILIKE \$1`).WithArgs("%budget%").WillReturnError(errors.New("canceling statement due to statement timeout"))
		},
		expectedStatus: http.StatusInternalServerError,
		expectedResponse: map[string]any{
			"error":   "search failed",
			"mensaje": "scan over 1 columns failed: canceling statement due to statement timeout",
		},
	},
}

func TestHandleSearch(t *testing.T) {
	for _, testCase := range searchHandlerTestCases {
		t.Run(testCase.name, func(t *testing.T) {
			assert := require.New(t)
			router, mock := setupTestServer(t, assert)
			if testCase.setupMock != nil {
				testCase.setupMock(mock)
			}

			w := makeTestHTTPRequest(router, assert, http.MethodGet, "/search", testCase.queryParams)
			responseBytes := w.Body.Bytes()
			assert.Equal(testCase.expectedStatus, w.Code, fmt.Sprintf("response gotten was %s", string(responseBytes)))
			assert.NoError(mock.ExpectationsWereMet())

			if testCase.expectedResponse == nil {
				return
			}
			var responseMap map[string]any
			assert.NoError(json.Unmarshal(responseBytes, &responseMap))
			assert.Equal(testCase.expectedResponse, responseMap)
		})
	}
}

func TestNewSearchResponseRendersNilAsEmptyList(t *testing.T) {
	assert := require.New(t)

	body, err := json.Marshal(NewSearchResponse("budget", nil))
	assert.NoError(err)
	assert.JSONEq(`{"query": "budget", "total": 0, "resultados": []}`, string(body))
}
