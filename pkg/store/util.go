package store

import (
	"context"
	"fmt"
	"math"

	"github.com/OFFIS-RIT/kgraph/backend/pkg/ai"
	"github.com/OFFIS-RIT/kgraph/backend/pkg/common"

	"golang.org/x/sync/errgroup"
)

const defaultNodeColor = "#6b7280"

var nodeColors = map[common.EntityType]string{
	common.EntityPerson:       "#3b82f6",
	common.EntityCompany:      "#10b981",
	common.EntityOrganization: "#22c55e",
	common.EntityLocation:     "#f59e0b",
	common.EntityProduct:      "#8b5cf6",
	common.EntityEvent:        "#ec4899",
	common.EntityFacility:     "#06b6d4",
	common.EntityWorkOfArt:    "#a855f7",
}

// ChunkRange calls fn for consecutive [start, end) windows of at most
// chunkSize elements.
func ChunkRange(total, chunkSize int, fn func(start, end int) error) error {
	if total <= 0 {
		return nil
	}
	if chunkSize <= 0 {
		chunkSize = total
	}
	for start := 0; start < total; start += chunkSize {
		end := min(start+chunkSize, total)
		if err := fn(start, end); err != nil {
			return err
		}
	}
	return nil
}

// NodeColor returns the display colour of an entity type.
func NodeColor(t common.EntityType) string {
	if c, ok := nodeColors[t]; ok {
		return c
	}
	return defaultNodeColor
}

// NodeID is the stable identifier of an entity node inside a session.
func NodeID(key common.EntityKey) string {
	return key.String()
}

// NewNode projects a stored entity onto a visualization node.
func NewNode(key common.EntityKey, label string) common.VisualizationNode {
	if label == "" {
		label = key.Name
	}
	return common.VisualizationNode{
		ID:    NodeID(key),
		Label: label,
		Group: string(key.Type),
		Color: NodeColor(key.Type),
		Title: fmt.Sprintf("%s (%s)", label, key.Type),
	}
}

// NewEdge projects a stored relationship onto a visualization edge. Width
// and opacity follow the confidence; a missing confidence counts as 1.
func NewEdge(source, target common.EntityKey, relation common.RelationType, confidence float64, reason string) common.VisualizationEdge {
	if confidence <= 0 {
		confidence = 1
	}
	return common.VisualizationEdge{
		From:  NodeID(source),
		To:    NodeID(target),
		Label: string(relation),
		Title: reason,
		Width: max(1, confidence*3),
		Color: common.EdgeColor{Opacity: confidence},
	}
}

// RoundConfidence rounds an average confidence to two decimals.
func RoundConfidence(v float64) float64 {
	return math.Round(v*100) / 100
}

// EntityEmbeddingInput is the text embedded for an entity.
func EntityEmbeddingInput(e common.Entity) []byte {
	if e.Context == "" {
		return fmt.Appendf(nil, "%s (%s)", e.Text, e.Type)
	}
	return fmt.Appendf(nil, "%s (%s): %s", e.Text, e.Type, e.Context)
}

type embeddingBatcher interface {
	GenerateEmbeddings(ctx context.Context, inputs [][]byte) ([][]float32, error)
}

// GenerateEmbeddings embeds all inputs, using a single batched request
// when the client supports it and one request per input otherwise.
func GenerateEmbeddings(
	ctx context.Context,
	client ai.GraphAIClient,
	inputs [][]byte,
) ([][]float32, error) {
	if client == nil {
		return nil, fmt.Errorf("ai client is nil")
	}
	if len(inputs) == 0 {
		return nil, nil
	}
	if b, ok := client.(embeddingBatcher); ok {
		return b.GenerateEmbeddings(ctx, inputs)
	}

	out := make([][]float32, len(inputs))

	eg, ectx := errgroup.WithContext(ctx)
	for i, in := range inputs {
		eg.Go(func() error {
			emb, err := client.GenerateEmbedding(ectx, in)
			if err != nil {
				return err
			}
			out[i] = emb
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	return out, nil
}
