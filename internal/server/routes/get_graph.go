package routes

import (
	"net/http"
	"strings"

	"github.com/OFFIS-RIT/kgraph/backend/internal/util"
	"github.com/OFFIS-RIT/kgraph/backend/pkg/common"
	"github.com/OFFIS-RIT/kgraph/backend/pkg/logger"
	"github.com/OFFIS-RIT/kgraph/backend/pkg/store"

	"github.com/labstack/echo/v4"
)

type sessionParams struct {
	SessionID string `param:"session" validate:"required"`
}

func bindSession(c echo.Context) (string, bool) {
	params := new(sessionParams)
	if err := c.Bind(params); err != nil {
		return "", false
	}
	if err := c.Validate(params); err != nil {
		return "", false
	}
	if !util.IsID(params.SessionID) {
		return "", false
	}
	return params.SessionID, true
}

// GetVisualizationHandler returns the nodes and edges of a session.
func GetVisualizationHandler(c echo.Context) error {
	sessionID, ok := bindSession(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, messageResponse{Message: "Invalid request params"})
	}

	vis, err := app(c).Store.GetVisualization(c.Request().Context(), sessionID)
	if err != nil {
		return storeError(c, sessionID, err)
	}
	return c.JSON(http.StatusOK, vis)
}

// GetInsightsHandler returns summary statistics of a session graph.
func GetInsightsHandler(c echo.Context) error {
	sessionID, ok := bindSession(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, messageResponse{Message: "Invalid request params"})
	}

	insights, err := app(c).Store.GetInsights(c.Request().Context(), sessionID)
	if err != nil {
		return storeError(c, sessionID, err)
	}
	return c.JSON(http.StatusOK, insights)
}

// GetSimilarHandler returns the entities closest to the query text.
func GetSimilarHandler(c echo.Context) error {
	type similarQuery struct {
		Query string `query:"q" validate:"required"`
		Limit int    `query:"limit" validate:"omitempty,min=1,max=100"`
	}

	type similarResponse struct {
		Message  string                 `json:"message,omitempty"`
		Entities []common.SimilarEntity `json:"entities,omitempty"`
	}

	sessionID, ok := bindSession(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, similarResponse{Message: "Invalid request params"})
	}
	q := new(similarQuery)
	if err := (&echo.DefaultBinder{}).BindQueryParams(c, q); err != nil {
		return c.JSON(http.StatusBadRequest, similarResponse{Message: "Invalid request params"})
	}
	q.Query = strings.TrimSpace(q.Query)
	if err := c.Validate(q); err != nil {
		return c.JSON(http.StatusBadRequest, similarResponse{Message: "Invalid request params"})
	}

	searcher, ok := app(c).Store.(store.SimilaritySearcher)
	if !ok {
		return c.JSON(http.StatusNotImplemented, similarResponse{Message: "Similarity search needs the postgres store"})
	}

	entities, err := searcher.SimilarEntities(c.Request().Context(), sessionID, q.Query, q.Limit)
	if err != nil {
		logger.Error("[API] Similarity search failed", "session", sessionID, "err", err)
		return c.JSON(http.StatusInternalServerError, similarResponse{Message: "Internal server error"})
	}
	return c.JSON(http.StatusOK, similarResponse{Entities: nonNil(entities)})
}
