package routes

import (
	"net/http"

	"github.com/OFFIS-RIT/kgraph/backend/internal/storage"
	"github.com/OFFIS-RIT/kgraph/backend/pkg/logger"

	"github.com/labstack/echo/v4"
)

// DeleteSessionHandler removes the graph and the archived uploads of a
// session.
func DeleteSessionHandler(c echo.Context) error {
	sessionID, ok := bindSession(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, messageResponse{Message: "Invalid request params"})
	}

	ctx := c.Request().Context()
	a := app(c)
	if err := a.Store.ClearSession(ctx, sessionID); err != nil {
		logger.Error("[API] Failed to clear session", "session", sessionID, "err", err)
		return c.JSON(http.StatusInternalServerError, messageResponse{Message: "Internal server error"})
	}
	if a.S3 != nil {
		if err := storage.DeleteFolder(ctx, a.S3, storage.SessionPrefix(sessionID)); err != nil {
			logger.Warn("[API] Failed to delete session uploads", "session", sessionID, "err", err)
		}
	}

	logger.Info("[API] Cleared session", "session", sessionID)
	return c.JSON(http.StatusOK, messageResponse{Message: "Session cleared"})
}
