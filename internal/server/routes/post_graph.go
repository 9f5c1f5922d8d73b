package routes

import (
	"bytes"
	"io"
	"net/http"
	"path"
	"strings"
	"unicode/utf8"

	"github.com/OFFIS-RIT/kgraph/backend/internal/storage"
	"github.com/OFFIS-RIT/kgraph/backend/internal/util"
	"github.com/OFFIS-RIT/kgraph/backend/pkg/loader"
	"github.com/OFFIS-RIT/kgraph/backend/pkg/loader/pdf"
	"github.com/OFFIS-RIT/kgraph/backend/pkg/logger"

	"github.com/labstack/echo/v4"
)

// BuildGraphHandler extracts a graph from the text in the request body.
func BuildGraphHandler(c echo.Context) error {
	type buildGraphBody struct {
		Text      string `json:"text" validate:"required"`
		SessionID string `json:"session_id"`
	}

	data := new(buildGraphBody)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, messageResponse{Message: "Invalid request body"})
	}
	if err := c.Validate(data); err != nil {
		return c.JSON(http.StatusBadRequest, messageResponse{Message: "Invalid request body"})
	}

	sessionID, err := resolveSession(data.SessionID)
	if err != nil {
		return c.JSON(http.StatusBadRequest, messageResponse{Message: "Invalid session id"})
	}

	return runBuild(c, sessionID, data.Text)
}

// UploadGraphHandler extracts a graph from an uploaded PDF or text file.
func UploadGraphHandler(c echo.Context) error {
	sessionID, err := resolveSession(c.FormValue("session_id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, messageResponse{Message: "Invalid session id"})
	}

	upload, err := c.FormFile("file")
	if err != nil {
		return c.JSON(http.StatusBadRequest, messageResponse{Message: "Invalid request body"})
	}
	src, err := upload.Open()
	if err != nil {
		return c.JSON(http.StatusBadRequest, messageResponse{Message: "Invalid request body"})
	}
	defer src.Close()

	content, err := io.ReadAll(src)
	if err != nil {
		return c.JSON(http.StatusBadRequest, messageResponse{Message: "Invalid request body"})
	}

	isPDF := strings.EqualFold(path.Ext(upload.Filename), ".pdf") ||
		upload.Header.Get("Content-Type") == "application/pdf" ||
		bytes.HasPrefix(content, []byte("%PDF-"))

	var text string
	switch {
	case isPDF:
		text, err = pdf.ExtractText(content)
		if err != nil {
			logger.Warn("[API] Failed to read pdf", "file", upload.Filename, "err", err)
			return c.JSON(http.StatusUnprocessableEntity, messageResponse{Message: "Could not read document"})
		}
	case utf8.Valid(content):
		text = string(content)
	default:
		return c.JSON(http.StatusUnsupportedMediaType, messageResponse{Message: "Unsupported file type"})
	}

	if s3Client := app(c).S3; s3Client != nil {
		key := storage.DocumentKey(sessionID, util.NewID(), upload.Filename)
		if err := storage.PutFile(c.Request().Context(), s3Client, key, bytes.NewReader(content)); err != nil {
			logger.Warn("[API] Failed to archive upload", "key", key, "err", err)
		}
	}

	return runBuild(c, sessionID, text)
}

// URLGraphHandler extracts a graph from the article at a URL.
func URLGraphHandler(c echo.Context) error {
	type urlGraphBody struct {
		URL       string `json:"url" validate:"required,url"`
		SessionID string `json:"session_id"`
	}

	data := new(urlGraphBody)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, messageResponse{Message: "Invalid request body"})
	}
	if err := c.Validate(data); err != nil {
		return c.JSON(http.StatusBadRequest, messageResponse{Message: "Invalid request body"})
	}

	sessionID, err := resolveSession(data.SessionID)
	if err != nil {
		return c.JSON(http.StatusBadRequest, messageResponse{Message: "Invalid session id"})
	}

	web := app(c).Web
	if web == nil {
		return c.JSON(http.StatusServiceUnavailable, messageResponse{Message: "Web loading is not configured"})
	}

	file := loader.NewGraphWebFile(loader.NewGraphFileParams{
		ID:       util.NewID(),
		FilePath: data.URL,
		Loader:   web,
	})
	text, err := file.GetText(c.Request().Context())
	if err != nil {
		logger.Warn("[API] Failed to load url", "url", data.URL, "err", err)
		return c.JSON(http.StatusUnprocessableEntity, messageResponse{Message: "Could not read document"})
	}

	return runBuild(c, sessionID, string(text))
}
