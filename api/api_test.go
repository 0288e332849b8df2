package api

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/meghashyamc/buscador/config"
	"github.com/meghashyamc/buscador/logger"
	"github.com/meghashyamc/buscador/services/search"
	"github.com/meghashyamc/buscador/validation"
	"github.com/stretchr/testify/require"
)

func newTestLogger() logger.Logger {

	opts := &slog.HandlerOptions{
		Level:     slog.LevelDebug,
		AddSource: true,
	}
	handler := slog.NewJSONHandler(os.Stderr, opts)
	return slog.New(handler)
}

func setupTestRouter(t *testing.T, assert *require.Assertions, documentsDir string) *gin.Engine {
	t.Setenv("ENV", "test")
	t.Setenv("DOCUMENTS_DIR", documentsDir)

	cfg, err := config.Load("")
	assert.NoError(err)

	testLogger := newTestLogger()
	deps, err := NewDependencies(context.Background(), testLogger, cfg, false)
	assert.NoError(err)
	t.Cleanup(func() { deps.Close() })

	validator, err := validation.New(testLogger)
	assert.NoError(err)

	gin.SetMode(gin.TestMode)
	router := newRouter(testLogger)
	setupRoutes(router, testLogger, deps.Search, validator, deps.Registry)
	return router
}

func TestRoutes(t *testing.T) {
	type testCase struct {
		name             string
		method           string
		path             string
		expectedStatus   int
		expectedContains string
	}

	testCases := []testCase{
		{name: "Health", method: http.MethodGet, path: "/health", expectedStatus: http.StatusOK, expectedContains: "OK"},
		{name: "Banner", method: http.MethodGet, path: "/", expectedStatus: http.StatusOK, expectedContains: "GET /search?q=<term>"},
		{name: "Preflight", method: http.MethodOptions, path: "/search", expectedStatus: http.StatusNoContent},
		{name: "SearchWithoutDatabase", method: http.MethodGet, path: "/search?q=budget", expectedStatus: http.StatusOK, expectedContains: `"table_or_file":"budget.txt"`},
		{name: "MetricsAfterSearch", method: http.MethodGet, path: "/metrics", expectedStatus: http.StatusOK, expectedContains: `buscador_search_requests_total{status="ok"} 1`},
		{name: "UnknownRoute", method: http.MethodGet, path: "/index", expectedStatus: http.StatusNotFound},
	}

	assert := require.New(t)
	documentsDir := filepath.Join(t.TempDir(), "documents")
	router := setupTestRouter(t, assert, documentsDir)
	assert.DirExists(documentsDir, "documents directory should be created on startup")
	assert.NoError(os.WriteFile(filepath.Join(documentsDir, "budget.txt"), []byte("quarterly budget"), 0644))

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			assert := require.New(t)
			req, err := http.NewRequest(testCase.method, testCase.path, nil)
			assert.NoError(err)

			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(testCase.expectedStatus, w.Code, w.Body.String())
			assert.Contains(w.Body.String(), testCase.expectedContains)
			assert.NotEmpty(w.Header().Get(HeaderRequestID))
			assert.Equal("*", w.Header().Get("Access-Control-Allow-Origin"))
		})
	}
}

func TestRequestIDIsEchoed(t *testing.T) {
	assert := require.New(t)
	router := setupTestRouter(t, assert, t.TempDir())

	req, err := http.NewRequest(http.MethodGet, "/health", nil)
	assert.NoError(err)
	req.Header.Set(HeaderRequestID, "req-123")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal("req-123", w.Header().Get(HeaderRequestID))
}

func TestNewDependenciesWithoutDatabase(t *testing.T) {
	assert := require.New(t)
	t.Setenv("ENV", "test")
	documentsDir := t.TempDir()
	t.Setenv("DOCUMENTS_DIR", documentsDir)
	assert.NoError(os.WriteFile(filepath.Join(documentsDir, "notes.md"), []byte("the budget"), 0644))

	cfg, err := config.Load("")
	assert.NoError(err)

	deps, err := NewDependencies(context.Background(), newTestLogger(), cfg, false)
	assert.NoError(err)
	assert.Nil(deps.DB)
	assert.NoError(deps.Close())

	hits, err := deps.Search.Search(context.Background(), "budget")
	assert.NoError(err)
	assert.Equal([]search.SearchHit{
		{Source: search.SourceDocument, TableOrFile: "notes.md", Field: search.FieldContent, Excerpt: "the budget"},
	}, hits)
}
