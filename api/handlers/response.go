package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/meghashyamc/buscador/services/search"
)

const searchUsage = "GET /search?q=<term>"

type SearchResponse struct {
	Query      string             `json:"query"`
	Total      int                `json:"total"`
	Resultados []search.SearchHit `json:"resultados"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Usage   string `json:"usage,omitempty"`
	Mensaje string `json:"mensaje,omitempty"`
}

func writeResponse(c *gin.Context, data any, statusCode int) {

	if statusCode == http.StatusNoContent {
		c.JSON(statusCode, nil)
		return

	}

	c.JSON(statusCode, data)
}

func writeError(c *gin.Context, statusCode int, response errorResponse) {
	c.Abort()
	writeResponse(c, response, statusCode)
}
