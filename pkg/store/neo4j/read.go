package neo4j

import (
	"context"
	"fmt"

	"github.com/OFFIS-RIT/kgraph/backend/pkg/common"
	"github.com/OFFIS-RIT/kgraph/backend/pkg/store"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

const (
	queryNodes = `
MATCH (n:Entity {session_id: $session_id})
RETURN n.key AS key, n.type AS type, n.name AS name
ORDER BY n.type, n.key
`
	queryEdges = `
MATCH (a:Entity {session_id: $session_id})-[r]->(b:Entity {session_id: $session_id})
RETURN a.key AS source_key, a.type AS source_type,
       b.key AS target_key, b.type AS target_type,
       type(r) AS relation, r.confidence AS confidence, r.reason AS reason
ORDER BY relation, source_key, target_key
`
	queryStats = `
MATCH (n:Entity {session_id: $session_id})
WITH count(DISTINCT n) AS node_count
OPTIONAL MATCH (:Entity {session_id: $session_id})-[r]->(:Entity {session_id: $session_id})
WITH node_count, count(DISTINCT r) AS rel_count, avg(r.confidence) AS avg_conf
OPTIONAL MATCH (ev:Event {session_id: $session_id})
RETURN node_count, rel_count, avg_conf, count(DISTINCT ev) AS event_count
`
	queryTypes = `
MATCH (n:Entity {session_id: $session_id})
RETURN n.type AS type, count(n) AS count
`
	queryMostConnected = `
MATCH (n:Entity {session_id: $session_id})-[r]-(:Entity {session_id: $session_id})
RETURN n.name AS name, count(r) AS degree
ORDER BY degree DESC, name
LIMIT 1
`
)

// GetVisualization returns the node and edge projection of a session.
func (s *GraphNeo4jStorage) GetVisualization(ctx context.Context, sessionID string) (*common.Visualization, error) {
	params := map[string]any{"session_id": sessionID}

	nodes, err := s.read(ctx, queryNodes, params)
	if err != nil {
		return nil, fmt.Errorf("failed to query nodes: %w", err)
	}
	if len(nodes.Records) == 0 {
		return nil, store.ErrSessionNotFound
	}

	vis := &common.Visualization{
		Nodes: make([]common.VisualizationNode, 0, len(nodes.Records)),
		Edges: []common.VisualizationEdge{},
	}
	for _, rec := range nodes.Records {
		key, err := recordKey(rec, "key", "type")
		if err != nil {
			return nil, err
		}
		name, _, _ := neo4j.GetRecordValue[string](rec, "name")
		vis.Nodes = append(vis.Nodes, store.NewNode(key, name))
	}

	edges, err := s.read(ctx, queryEdges, params)
	if err != nil {
		return nil, fmt.Errorf("failed to query edges: %w", err)
	}
	for _, rec := range edges.Records {
		source, err := recordKey(rec, "source_key", "source_type")
		if err != nil {
			return nil, err
		}
		target, err := recordKey(rec, "target_key", "target_type")
		if err != nil {
			return nil, err
		}
		relation, _, err := neo4j.GetRecordValue[string](rec, "relation")
		if err != nil {
			return nil, err
		}
		confidence, _, _ := neo4j.GetRecordValue[float64](rec, "confidence")
		reason, _, _ := neo4j.GetRecordValue[string](rec, "reason")
		vis.Edges = append(vis.Edges, store.NewEdge(source, target, common.RelationType(relation), confidence, reason))
	}
	return vis, nil
}

// GetInsights returns counts, the type distribution, the average
// relationship confidence and the entity with the most relationships.
func (s *GraphNeo4jStorage) GetInsights(ctx context.Context, sessionID string) (*common.Insights, error) {
	params := map[string]any{"session_id": sessionID}

	stats, err := s.read(ctx, queryStats, params)
	if err != nil {
		return nil, fmt.Errorf("failed to query stats: %w", err)
	}
	if len(stats.Records) == 0 {
		return nil, store.ErrSessionNotFound
	}
	rec := stats.Records[0]
	nodeCount, _, _ := neo4j.GetRecordValue[int64](rec, "node_count")
	if nodeCount == 0 {
		return nil, store.ErrSessionNotFound
	}
	relCount, _, _ := neo4j.GetRecordValue[int64](rec, "rel_count")
	eventCount, _, _ := neo4j.GetRecordValue[int64](rec, "event_count")
	avgConf, _, _ := neo4j.GetRecordValue[float64](rec, "avg_conf")

	insights := &common.Insights{
		TotalEntities:      int(nodeCount),
		TotalRelationships: int(relCount),
		TotalEvents:        int(eventCount),
		EntityTypes:        map[string]int{},
		AvgConfidence:      store.RoundConfidence(avgConf),
	}

	types, err := s.read(ctx, queryTypes, params)
	if err != nil {
		return nil, fmt.Errorf("failed to query entity types: %w", err)
	}
	for _, rec := range types.Records {
		t, _, _ := neo4j.GetRecordValue[string](rec, "type")
		n, _, _ := neo4j.GetRecordValue[int64](rec, "count")
		insights.EntityTypes[t] = int(n)
	}

	top, err := s.read(ctx, queryMostConnected, params)
	if err != nil {
		return nil, fmt.Errorf("failed to query most connected entity: %w", err)
	}
	if len(top.Records) > 0 {
		insights.MostConnectedEntity, _, _ = neo4j.GetRecordValue[string](top.Records[0], "name")
	}
	return insights, nil
}

func recordKey(rec *neo4j.Record, nameField, typeField string) (common.EntityKey, error) {
	name, _, err := neo4j.GetRecordValue[string](rec, nameField)
	if err != nil {
		return common.EntityKey{}, err
	}
	t, _, err := neo4j.GetRecordValue[string](rec, typeField)
	if err != nil {
		return common.EntityKey{}, err
	}
	return common.EntityKey{Name: name, Type: common.EntityType(t)}, nil
}
