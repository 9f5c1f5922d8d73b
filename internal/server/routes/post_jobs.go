package routes

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/OFFIS-RIT/kgraph/backend/internal/queue"
	"github.com/OFFIS-RIT/kgraph/backend/internal/util"
	"github.com/OFFIS-RIT/kgraph/backend/pkg/logger"

	"github.com/labstack/echo/v4"
)

// CreateJobHandler queues a build job for the worker and answers 202.
func CreateJobHandler(c echo.Context) error {
	type createJobBody struct {
		Text      string `json:"text"`
		URL       string `json:"url" validate:"omitempty,url"`
		SessionID string `json:"session_id"`
	}

	type createJobResponse struct {
		Message    string `json:"message"`
		JobID      string `json:"job_id,omitempty"`
		SessionID  string `json:"session_id,omitempty"`
		DocumentID string `json:"document_id,omitempty"`
	}

	data := new(createJobBody)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, createJobResponse{Message: "Invalid request body"})
	}
	if err := c.Validate(data); err != nil {
		return c.JSON(http.StatusBadRequest, createJobResponse{Message: "Invalid request body"})
	}
	hasText := strings.TrimSpace(data.Text) != ""
	if hasText == (data.URL != "") {
		return c.JSON(http.StatusBadRequest, createJobResponse{Message: "Either text or url is required"})
	}
	if textTooLong(c, data.Text) {
		return c.JSON(http.StatusRequestEntityTooLarge, createJobResponse{Message: "Text too long"})
	}

	sessionID, err := resolveSession(data.SessionID)
	if err != nil {
		return c.JSON(http.StatusBadRequest, createJobResponse{Message: "Invalid session id"})
	}

	publisher := app(c).Queue
	if publisher == nil {
		return c.JSON(http.StatusServiceUnavailable, createJobResponse{Message: "Job queue is not configured"})
	}

	msg := queue.BuildJobMsg{
		JobID:      util.NewID(),
		SessionID:  sessionID,
		DocumentID: util.NewID(),
		Source:     queue.SourceText,
		Text:       data.Text,
	}
	if !hasText {
		msg.Source = queue.SourceURL
		msg.Text = ""
		msg.URL = data.URL
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, createJobResponse{Message: "Internal server error"})
	}
	if err := publisher.Publish(c.Request().Context(), queue.BuildQueue, body); err != nil {
		logger.Error("[API] Failed to queue job", "job", msg.JobID, "err", err)
		return c.JSON(http.StatusInternalServerError, createJobResponse{Message: "Internal server error"})
	}

	logger.Info("[API] Queued build job", "job", msg.JobID, "session", sessionID, "source", msg.Source)
	return c.JSON(http.StatusAccepted, createJobResponse{
		Message:    "Job queued",
		JobID:      msg.JobID,
		SessionID:  msg.SessionID,
		DocumentID: msg.DocumentID,
	})
}
