package pgx

import (
	"context"
	"errors"
	"fmt"

	"github.com/OFFIS-RIT/kgraph/backend/pkg/common"
	"github.com/OFFIS-RIT/kgraph/backend/pkg/store"

	pgxv5 "github.com/jackc/pgx/v5"
	"github.com/pgvector/pgvector-go"
)

const (
	defaultSimilarLimit = 10
	maxSimilarLimit     = 100
)

// GetVisualization returns the node and edge projection of a session.
func (s *GraphDBStorage) GetVisualization(ctx context.Context, sessionID string) (*common.Visualization, error) {
	rows, err := s.conn.Query(ctx, `
SELECT key, type, name FROM entities
WHERE session_id = $1
ORDER BY type, key`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query nodes: %w", err)
	}
	nodes, err := pgxv5.CollectRows(rows, func(row pgxv5.CollectableRow) (common.VisualizationNode, error) {
		var key, typ, name string
		if err := row.Scan(&key, &typ, &name); err != nil {
			return common.VisualizationNode{}, err
		}
		return store.NewNode(common.EntityKey{Name: key, Type: common.EntityType(typ)}, name), nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan nodes: %w", err)
	}
	if len(nodes) == 0 {
		return nil, store.ErrSessionNotFound
	}

	rows, err = s.conn.Query(ctx, `
SELECT source_key, source_type, target_key, target_type, type, confidence, reason
FROM relationships
WHERE session_id = $1
ORDER BY type, source_key, target_key`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query edges: %w", err)
	}
	edges, err := pgxv5.CollectRows(rows, func(row pgxv5.CollectableRow) (common.VisualizationEdge, error) {
		var (
			srcKey, srcType, dstKey, dstType, rel, reason string
			confidence                                    float64
		)
		if err := row.Scan(&srcKey, &srcType, &dstKey, &dstType, &rel, &confidence, &reason); err != nil {
			return common.VisualizationEdge{}, err
		}
		return store.NewEdge(
			common.EntityKey{Name: srcKey, Type: common.EntityType(srcType)},
			common.EntityKey{Name: dstKey, Type: common.EntityType(dstType)},
			common.RelationType(rel),
			confidence,
			reason,
		), nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan edges: %w", err)
	}

	return &common.Visualization{Nodes: nodes, Edges: edges}, nil
}

// GetInsights returns counts, the type distribution, the average
// relationship confidence and the entity with the most relationships.
func (s *GraphDBStorage) GetInsights(ctx context.Context, sessionID string) (*common.Insights, error) {
	var (
		entities, relationships, events int64
		avg                             float64
	)
	err := s.conn.QueryRow(ctx, `
SELECT
    (SELECT count(*) FROM entities WHERE session_id = $1),
    (SELECT count(*) FROM relationships WHERE session_id = $1),
    (SELECT count(*) FROM events WHERE session_id = $1),
    (SELECT coalesce(avg(confidence), 0) FROM relationships WHERE session_id = $1)`,
		sessionID,
	).Scan(&entities, &relationships, &events, &avg)
	if err != nil {
		return nil, fmt.Errorf("failed to query stats: %w", err)
	}
	if entities == 0 {
		return nil, store.ErrSessionNotFound
	}

	insights := &common.Insights{
		TotalEntities:      int(entities),
		TotalRelationships: int(relationships),
		TotalEvents:        int(events),
		EntityTypes:        map[string]int{},
		AvgConfidence:      store.RoundConfidence(avg),
	}

	rows, err := s.conn.Query(ctx, `
SELECT type, count(*) FROM entities
WHERE session_id = $1
GROUP BY type`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query entity types: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			t string
			n int64
		)
		if err := rows.Scan(&t, &n); err != nil {
			return nil, fmt.Errorf("failed to scan entity types: %w", err)
		}
		insights.EntityTypes[t] = int(n)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	err = s.conn.QueryRow(ctx, `
SELECT e.name
FROM entities e
JOIN relationships r
  ON r.session_id = e.session_id
 AND ((r.source_key = e.key AND r.source_type = e.type)
   OR (r.target_key = e.key AND r.target_type = e.type))
WHERE e.session_id = $1
GROUP BY e.id, e.name
ORDER BY count(r.id) DESC, e.name
LIMIT 1`, sessionID).Scan(&insights.MostConnectedEntity)
	if err != nil && !errors.Is(err, pgxv5.ErrNoRows) {
		return nil, fmt.Errorf("failed to query most connected entity: %w", err)
	}

	return insights, nil
}

// SimilarEntities embeds the query and returns the session's entities
// ordered by cosine distance to it.
func (s *GraphDBStorage) SimilarEntities(
	ctx context.Context,
	sessionID string,
	query string,
	limit int,
) ([]common.SimilarEntity, error) {
	if s.aiClient == nil {
		return nil, errors.New("pgx: similarity search needs an ai client")
	}
	embedding, err := s.aiClient.GenerateEmbedding(ctx, []byte(query))
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	rows, err := s.conn.Query(ctx, `
SELECT name, type, embedding <=> $2 AS distance
FROM entities
WHERE session_id = $1 AND embedding IS NOT NULL
ORDER BY distance
LIMIT $3`, sessionID, pgvector.NewVector(embedding), similarLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to query similar entities: %w", err)
	}
	return pgxv5.CollectRows(rows, func(row pgxv5.CollectableRow) (common.SimilarEntity, error) {
		var (
			e   common.SimilarEntity
			typ string
		)
		err := row.Scan(&e.Name, &typ, &e.Distance)
		e.Type = common.EntityType(typ)
		return e, err
	})
}

func similarLimit(limit int) int {
	if limit <= 0 {
		return defaultSimilarLimit
	}
	return min(limit, maxSimilarLimit)
}
