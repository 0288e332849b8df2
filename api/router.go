package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/meghashyamc/buscador/api/handlers"
	"github.com/meghashyamc/buscador/logger"
	"github.com/meghashyamc/buscador/validation"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const banner = `buscador: searches every text column of the database and every document in the documents directory.

Usage: GET /search?q=<term>
`

func setupRoutes(router *gin.Engine, logger logger.Logger, searcher handlers.Searcher, validator *validation.Validator, registry *prometheus.Registry) {
	router.GET("/health", health())
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))
	router.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, banner)
	})

	handlers.SetupSearch(router, logger, searcher, validator)
}

func health() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	}
}

func newRouter(logger logger.Logger) *gin.Engine {
	router := gin.New()
	router.UseRawPath = true
	router.Use(gin.Recovery())
	router.Use(_CORSMiddleware())
	router.Use(loggingMiddleware(logger))

	return router
}
