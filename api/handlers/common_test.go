// Common test helpers
package handlers

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/meghashyamc/buscador/config"
	"github.com/meghashyamc/buscador/db/relationaldb"
	"github.com/meghashyamc/buscador/logger"
	"github.com/meghashyamc/buscador/services/extract"
	"github.com/meghashyamc/buscador/services/search"
	"github.com/meghashyamc/buscador/validation"
	"github.com/stretchr/testify/require"
)

var testFiles = map[string]string{
	"budget_2024.txt": "Draft budget for 2024",
	"minutes.md":      "# Minutes\n\nThe committee discussed the budget twice: budget.",
	"readme.txt":      "Nothing to see here",
}

type testCase struct {
	name             string
	queryParams      url.Values
	setupMock        func(mock sqlmock.Sqlmock)
	expectedStatus   int
	expectedResponse map[string]any
}

func newTestLogger() logger.Logger {

	opts := &slog.HandlerOptions{
		Level:     slog.LevelDebug,
		AddSource: true,
	}
	handler := slog.NewJSONHandler(os.Stderr, opts)
	return slog.New(handler)
}

func setupTestServer(t *testing.T, assert *require.Assertions) (*gin.Engine, sqlmock.Sqlmock) {

	t.Setenv("ENV", "test")

	cfg, err := config.Load("")
	assert.NoError(err, "could not load config")

	documentsDir := t.TempDir()
	for name, content := range testFiles {
		err := os.WriteFile(filepath.Join(documentsDir, name), []byte(content), 0644)
		assert.NoError(err, "could not write test file")
	}

	db, mock, err := sqlmock.New()
	assert.NoError(err, "could not create mock database")
	t.Cleanup(func() { db.Close() })

	testLogger := newTestLogger()
	validator, err := validation.New(testLogger)
	assert.NoError(err, "could not create validator")

	extractor := extract.New(testLogger, extract.Options{
		MaxFileSize: cfg.GetMaxFileSize(),
		Timeout:     cfg.GetExtractionTimeout(),
	})
	service := search.New(testLogger, relationaldb.NewScanner(testLogger, db, cfg.GetDBSchema()), extractor, documentsDir, nil)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	SetupSearch(router, testLogger, service, validator)

	return router, mock
}

func makeTestHTTPRequest(router *gin.Engine, assert *require.Assertions, method string, endpoint string, queryParams url.Values) *httptest.ResponseRecorder {

	w := httptest.NewRecorder()

	if len(queryParams) > 0 {
		endpoint = endpoint + "?" + queryParams.Encode()
	}

	slog.Info("Making test request", "method", method, "endpoint", endpoint)

	req, err := http.NewRequest(method, endpoint, nil)
	assert.NoError(err)

	router.ServeHTTP(w, req)

	return w
}
