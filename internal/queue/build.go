package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/OFFIS-RIT/kgraph/backend/pkg/graph"
	"github.com/OFFIS-RIT/kgraph/backend/pkg/loader"
	loaderio "github.com/OFFIS-RIT/kgraph/backend/pkg/loader/io"
	"github.com/OFFIS-RIT/kgraph/backend/pkg/loader/pdf"
	"github.com/OFFIS-RIT/kgraph/backend/pkg/logger"
	"github.com/OFFIS-RIT/kgraph/backend/pkg/store"
)

const (
	SourceText   = "text"
	SourceObject = "object"
	SourceURL    = "url"
)

// BuildJobMsg is the body of a build_queue message. Exactly one of Text,
// ObjectKey and URL is used, selected by Source.
type BuildJobMsg struct {
	JobID      string `json:"job_id"`
	SessionID  string `json:"session_id"`
	DocumentID string `json:"document_id"`
	Source     string `json:"source"`
	Text       string `json:"text,omitempty"`
	ObjectKey  string `json:"object_key,omitempty"`
	URL        string `json:"url,omitempty"`
}

// BuildDeps are the collaborators of the build handler. Objects loads
// uploaded documents from S3 and Web fetches URLs; either may be nil when
// the worker runs without that source.
type BuildDeps struct {
	Graph   *graph.GraphClient
	Store   store.GraphStorage
	Objects loader.GraphFileLoader
	Web     loader.GraphFileLoader
}

// ErrInvalidJob marks messages that can never succeed. They are not retried.
var ErrInvalidJob = errors.New("invalid build job")

// BuildFile turns a job into the loader file the pipeline reads.
func BuildFile(msg BuildJobMsg, deps BuildDeps) (loader.GraphFile, error) {
	params := loader.NewGraphFileParams{ID: msg.DocumentID}

	switch msg.Source {
	case SourceText, "":
		params.Loader = loaderio.NewBytesGraphFileLoader(msg.DocumentID, []byte(msg.Text))
		return loader.NewGraphTextFile(params), nil
	case SourceObject:
		if deps.Objects == nil {
			return loader.GraphFile{}, fmt.Errorf("%w: object storage is not configured", ErrInvalidJob)
		}
		params.FilePath = msg.ObjectKey
		if strings.HasSuffix(strings.ToLower(msg.ObjectKey), ".pdf") {
			params.Loader = pdf.NewPDFGraphLoader(deps.Objects)
			return loader.NewGraphPDFFile(params), nil
		}
		params.Loader = deps.Objects
		return loader.NewGraphTextFile(params), nil
	case SourceURL:
		if deps.Web == nil {
			return loader.GraphFile{}, fmt.Errorf("%w: web loading is not configured", ErrInvalidJob)
		}
		params.FilePath = msg.URL
		params.Loader = deps.Web
		return loader.NewGraphWebFile(params), nil
	default:
		return loader.GraphFile{}, fmt.Errorf("%w: unknown source %q", ErrInvalidJob, msg.Source)
	}
}

// ProcessBuildMessage runs the pipeline for one job and saves the result
// into the job's session.
func ProcessBuildMessage(ctx context.Context, deps BuildDeps, body []byte) error {
	var msg BuildJobMsg
	if err := json.Unmarshal(body, &msg); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidJob, err)
	}
	if msg.SessionID == "" || msg.DocumentID == "" {
		return fmt.Errorf("%w: missing session or document id", ErrInvalidJob)
	}

	file, err := BuildFile(msg, deps)
	if err != nil {
		return err
	}

	results, err := deps.Graph.ProcessDocuments(ctx, []loader.GraphFile{file}, msg.SessionID, deps.Store)
	if err != nil {
		return fmt.Errorf("failed to build job %s: %w", msg.JobID, err)
	}

	res := results[0]
	logger.Info("[Queue][Build] Job finished",
		"job", msg.JobID,
		"session", msg.SessionID,
		"document", msg.DocumentID,
		"entities", len(res.Entities),
		"relationships", len(res.Relationships),
		"events", len(res.Events),
	)
	return nil
}
