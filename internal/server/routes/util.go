package routes

import (
	"errors"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/OFFIS-RIT/kgraph/backend/internal/server/middleware"
	"github.com/OFFIS-RIT/kgraph/backend/internal/util"
	"github.com/OFFIS-RIT/kgraph/backend/pkg/common"
	"github.com/OFFIS-RIT/kgraph/backend/pkg/logger"
	"github.com/OFFIS-RIT/kgraph/backend/pkg/store"

	"github.com/labstack/echo/v4"
)

type messageResponse struct {
	Message string `json:"message"`
}

type buildResponse struct {
	SessionID     string                `json:"session_id"`
	DocumentID    string                `json:"document_id"`
	Entities      []common.Entity       `json:"entities"`
	Relationships []common.Relationship `json:"relationships"`
	Events        []common.Event        `json:"events"`
	Summary       common.Summary        `json:"summary"`
	Message       string                `json:"message"`
}

var errInvalidSession = errors.New("invalid session id")

func app(c echo.Context) *middleware.App {
	return c.(*middleware.AppContext).App
}

// resolveSession returns the given session id or a new one when empty.
func resolveSession(sessionID string) (string, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return util.NewID(), nil
	}
	if !util.IsID(sessionID) {
		return "", errInvalidSession
	}
	return sessionID, nil
}

func textTooLong(c echo.Context, text string) bool {
	return utf8.RuneCountInString(text) > app(c).MaxTextChars
}

// runBuild processes text as a new document of the session, saves the
// result and writes the build response.
func runBuild(c echo.Context, sessionID, text string) error {
	a := app(c)
	if textTooLong(c, text) {
		return c.JSON(http.StatusRequestEntityTooLarge, messageResponse{Message: "Text too long"})
	}

	ctx := c.Request().Context()
	documentID := util.NewID()
	res, err := a.Graph.Process(ctx, text, documentID)
	if err != nil {
		logger.Error("[API] Failed to process document", "session", sessionID, "document", documentID, "err", err)
		return c.JSON(http.StatusInternalServerError, messageResponse{Message: "Internal server error"})
	}

	if len(res.Entities) > 0 {
		if err := a.Store.SaveBatch(ctx, common.NewBatch(sessionID, res)); err != nil {
			logger.Error("[API] Failed to save graph", "session", sessionID, "document", documentID, "err", err)
			return c.JSON(http.StatusInternalServerError, messageResponse{Message: "Internal server error"})
		}
	}

	return c.JSON(http.StatusOK, buildResponse{
		SessionID:     sessionID,
		DocumentID:    documentID,
		Entities:      nonNil(res.Entities),
		Relationships: nonNil(res.Relationships),
		Events:        nonNil(res.Events),
		Summary:       res.Summary,
		Message:       res.Summary.Message,
	})
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

// storeError maps read errors of the store to responses.
func storeError(c echo.Context, sessionID string, err error) error {
	if errors.Is(err, store.ErrSessionNotFound) {
		return c.JSON(http.StatusNotFound, messageResponse{Message: "Session not found"})
	}
	logger.Error("[API] Store request failed", "session", sessionID, "err", err)
	return c.JSON(http.StatusInternalServerError, messageResponse{Message: "Internal server error"})
}
