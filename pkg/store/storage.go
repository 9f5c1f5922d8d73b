package store

import (
	"context"
	"errors"

	"github.com/OFFIS-RIT/kgraph/backend/pkg/common"
)

// ErrSessionNotFound is returned by read operations for a session without
// any stored entity.
var ErrSessionNotFound = errors.New("session not found")

// GraphStorage defines the interface for persisting and querying knowledge
// graphs. Batches arrive validated and deduplicated, so implementations
// merge them unconditionally: entities by (session, name, type),
// relationships by (session, source, type, target) and events by
// (session, event type, name).
type GraphStorage interface {
	SaveBatch(ctx context.Context, batch common.Batch) error
	GetVisualization(ctx context.Context, sessionID string) (*common.Visualization, error)
	GetInsights(ctx context.Context, sessionID string) (*common.Insights, error)
	ClearSession(ctx context.Context, sessionID string) error
	Close(ctx context.Context) error
}

// SimilaritySearcher is implemented by stores that keep entity embeddings.
type SimilaritySearcher interface {
	SimilarEntities(ctx context.Context, sessionID string, query string, limit int) ([]common.SimilarEntity, error)
}
