package neo4j

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/OFFIS-RIT/kgraph/backend/pkg/common"
	"github.com/OFFIS-RIT/kgraph/backend/pkg/logger"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

const mergeEntities = `
UNWIND $entities AS row
MERGE (e:Entity {session_id: $session_id, key: row.key, type: row.type})
ON CREATE SET e.created_at = $now,
              e.name = row.name,
              e.category = row.category,
              e.context = row.context,
              e.source_sentence = row.source_sentence,
              e.document_id = row.document_id
SET e.updated_at = $now
`

const mergeEvents = `
UNWIND $events AS row
MERGE (ev:Event {session_id: $session_id, event_type: row.event_type, name: row.name})
ON CREATE SET ev.created_at = $now
SET ev.date = row.date,
    ev.location = row.location,
    ev.amount = row.amount,
    ev.context = row.context,
    ev.confidence = row.confidence,
    ev.document_id = row.document_id,
    ev.updated_at = $now
WITH ev, row
UNWIND row.participants AS p
MATCH (e:Entity {session_id: $session_id, key: p.key, type: p.type})
MERGE (ev)-[:INVOLVES]->(e)
`

// mergeRelationshipsQuery returns the merge statement for one relationship
// type. Relationship types cannot be parameters, so callers must only pass
// types that passed RelationType.Valid.
func mergeRelationshipsQuery(t common.RelationType) string {
	return fmt.Sprintf(`
UNWIND $rels AS row
MATCH (a:Entity {session_id: $session_id, key: row.source_key, type: row.source_type})
MATCH (b:Entity {session_id: $session_id, key: row.target_key, type: row.target_type})
MERGE (a)-[r:%s]->(b)
ON CREATE SET r.created_at = $now, r.session_id = $session_id
WITH r, row, coalesce(r.confidence, -1.0) < row.confidence AS better
SET r.confidence = CASE WHEN better THEN row.confidence ELSE r.confidence END,
    r.reason = CASE WHEN better THEN row.reason ELSE r.reason END,
    r.verb = CASE WHEN better THEN row.verb ELSE r.verb END,
    r.source_sentence = CASE WHEN better THEN row.source_sentence ELSE r.source_sentence END,
    r.document_id = CASE WHEN better THEN row.document_id ELSE r.document_id END,
    r.updated_at = $now
SET r += row.metadata
`, t)
}

func entityRows(entities []common.Entity) []map[string]any {
	rows := make([]map[string]any, 0, len(entities))
	for _, e := range entities {
		key := e.Key()
		rows = append(rows, map[string]any{
			"key":             key.Name,
			"type":            string(key.Type),
			"name":            e.Text,
			"category":        string(e.Category),
			"context":         e.Context,
			"source_sentence": e.SourceSentence,
			"document_id":     e.DocumentID,
		})
	}
	return rows
}

// relationshipRows groups relationships by type. Unknown types are dropped.
func relationshipRows(rels []common.Relationship) (map[common.RelationType][]map[string]any, []common.RelationType) {
	byType := make(map[common.RelationType][]map[string]any)
	var order []common.RelationType
	for _, r := range rels {
		if !r.Type.Valid() {
			logger.Warn("[Neo4j] Skipping relationship with unknown type", "type", r.Type)
			continue
		}
		metadata := make(map[string]any, len(r.Metadata))
		for k, v := range r.Metadata {
			metadata[k] = v
		}
		if _, ok := byType[r.Type]; !ok {
			order = append(order, r.Type)
		}
		byType[r.Type] = append(byType[r.Type], map[string]any{
			"source_key":      r.Source.Name,
			"source_type":     string(r.Source.Type),
			"target_key":      r.Target.Name,
			"target_type":     string(r.Target.Type),
			"confidence":      r.Confidence,
			"reason":          r.Reason,
			"verb":            r.Verb,
			"source_sentence": r.SourceSentence,
			"document_id":     r.DocumentID,
			"metadata":        metadata,
		})
	}
	slices.Sort(order)
	return byType, order
}

func eventRows(events []common.Event) []map[string]any {
	rows := make([]map[string]any, 0, len(events))
	for _, ev := range events {
		participants := make([]map[string]any, 0, len(ev.Participants))
		for _, p := range ev.Participants {
			participants = append(participants, map[string]any{"key": p.Name, "type": string(p.Type)})
		}
		rows = append(rows, map[string]any{
			"event_type":   string(ev.EventType),
			"name":         ev.Name,
			"date":         ev.Date,
			"location":     ev.Location,
			"amount":       ev.Amount,
			"context":      ev.Context,
			"confidence":   ev.Confidence,
			"document_id":  ev.DocumentID,
			"participants": participants,
		})
	}
	return rows
}

// SaveBatch merges one document's entities, relationships and events into
// the session graph in a single write transaction.
func (s *GraphNeo4jStorage) SaveBatch(ctx context.Context, batch common.Batch) error {
	if batch.SessionID == "" {
		return fmt.Errorf("neo4j: batch without session id")
	}
	if len(batch.Entities) == 0 {
		return nil
	}

	now := time.Now().UTC().Format(time.RFC3339Nano)
	entities := entityRows(batch.Entities)
	rels, relTypes := relationshipRows(batch.Relationships)
	events := eventRows(batch.Events)

	session := s.driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   neo4j.AccessModeWrite,
		DatabaseName: s.database,
	})
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		run := func(cypher string, params map[string]any) error {
			params["session_id"] = batch.SessionID
			params["now"] = now
			res, err := tx.Run(ctx, cypher, params)
			if err != nil {
				return err
			}
			_, err = res.Consume(ctx)
			return err
		}

		if err := run(mergeEntities, map[string]any{"entities": entities}); err != nil {
			return nil, fmt.Errorf("failed to merge entities: %w", err)
		}
		for _, t := range relTypes {
			if err := run(mergeRelationshipsQuery(t), map[string]any{"rels": rels[t]}); err != nil {
				return nil, fmt.Errorf("failed to merge %s relationships: %w", t, err)
			}
		}
		if len(events) > 0 {
			if err := run(mergeEvents, map[string]any{"events": events}); err != nil {
				return nil, fmt.Errorf("failed to merge events: %w", err)
			}
		}
		return nil, nil
	})
	if err != nil {
		return err
	}

	logger.Debug("[Neo4j][SaveBatch] Saved batch",
		"session", batch.SessionID,
		"document", batch.DocumentID,
		"entities", len(batch.Entities),
		"relationships", len(batch.Relationships),
		"events", len(batch.Events),
	)
	return nil
}

// ClearSession detach-deletes every node of the session.
func (s *GraphNeo4jStorage) ClearSession(ctx context.Context, sessionID string) error {
	_, err := s.write(ctx, `MATCH (n {session_id: $session_id}) DETACH DELETE n`, map[string]any{"session_id": sessionID})
	if err != nil {
		return fmt.Errorf("failed to clear session %s: %w", sessionID, err)
	}
	return nil
}
