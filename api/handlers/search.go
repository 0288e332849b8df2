package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/meghashyamc/buscador/logger"
	"github.com/meghashyamc/buscador/services/search"
	"github.com/meghashyamc/buscador/validation"
)

type SearchRequest struct {
	Query string `form:"q" json:"q" validate:"required,valid_query,max=1000"`
}

type Searcher interface {
	Search(ctx context.Context, term string) ([]search.SearchHit, error)
}

func SetupSearch(router *gin.Engine, logger logger.Logger, service Searcher, validator *validation.Validator) {
	router.GET("/search", handleSearch(service, logger, validator))
}

func handleSearch(service Searcher, logger logger.Logger, validator *validation.Validator) gin.HandlerFunc {
	return func(c *gin.Context) {
		request := SearchRequest{}
		if err := c.ShouldBindQuery(&request); err != nil {
			logger.Warn("could not extract expected params from search request", "err", err.Error())
			writeError(c, http.StatusBadRequest, errorResponse{Error: "failed to extract query parameters", Usage: searchUsage})
			return
		}

		if err := validator.Validate(request); err != nil {
			logger.Warn("could not validate search request", "err", err.Error())
			writeError(c, http.StatusBadRequest, errorResponse{Error: err.Error(), Usage: searchUsage})
			return
		}

		hits, err := service.Search(c.Request.Context(), request.Query)
		if err != nil {
			logger.Error("search failed", "query", request.Query, "err", err.Error())
			writeError(c, http.StatusInternalServerError, errorResponse{Error: "search failed", Mensaje: err.Error()})
			return
		}

		writeResponse(c, NewSearchResponse(request.Query, hits), http.StatusOK)
	}
}

// NewSearchResponse builds the body returned for a successful search. A nil hit
// list is rendered as an empty array.
func NewSearchResponse(query string, hits []search.SearchHit) SearchResponse {
	if hits == nil {
		hits = []search.SearchHit{}
	}
	return SearchResponse{Query: query, Total: len(hits), Resultados: hits}
}
