package server

import (
	"github.com/OFFIS-RIT/kgraph/backend/internal/server/routes"

	"github.com/labstack/echo/v4"
)

func RegisterRoutes(e *echo.Echo) {
	// Health check route
	e.GET("/health", func(c echo.Context) error {
		return c.String(200, "OK")
	})

	apiRoutes := e.Group("/api")

	// Graph build routes
	apiRoutes.POST("/graph/build", routes.BuildGraphHandler)
	apiRoutes.POST("/graph/upload", routes.UploadGraphHandler)
	apiRoutes.POST("/graph/url", routes.URLGraphHandler)
	apiRoutes.POST("/graph/jobs", routes.CreateJobHandler)

	// Session routes
	apiRoutes.GET("/graph/:session/visualize", routes.GetVisualizationHandler)
	apiRoutes.GET("/graph/:session/insights", routes.GetInsightsHandler)
	apiRoutes.GET("/graph/:session/similar", routes.GetSimilarHandler)
	apiRoutes.DELETE("/graph/:session", routes.DeleteSessionHandler)
}
