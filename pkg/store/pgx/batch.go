package pgx

import (
	"context"
	"fmt"

	"github.com/OFFIS-RIT/kgraph/backend/internal/util"
	"github.com/OFFIS-RIT/kgraph/backend/pkg/common"
	"github.com/OFFIS-RIT/kgraph/backend/pkg/logger"
	"github.com/OFFIS-RIT/kgraph/backend/pkg/store"

	pgxv5 "github.com/jackc/pgx/v5"
	"github.com/pgvector/pgvector-go"
)

const batchChunkSize = 500

const upsertEntity = `
INSERT INTO entities (session_id, key, type, name, category, context, source_sentence, document_id, embedding)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
ON CONFLICT (session_id, key, type) DO UPDATE
SET embedding = COALESCE(entities.embedding, EXCLUDED.embedding),
    updated_at = now()
`

const upsertRelationship = `
INSERT INTO relationships (session_id, source_key, source_type, target_key, target_type, type,
                           confidence, reason, verb, source_sentence, document_id, metadata)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
ON CONFLICT (session_id, source_key, source_type, type, target_key, target_type) DO UPDATE
SET confidence = GREATEST(relationships.confidence, EXCLUDED.confidence),
    reason = CASE WHEN EXCLUDED.confidence > relationships.confidence THEN EXCLUDED.reason ELSE relationships.reason END,
    verb = CASE WHEN EXCLUDED.confidence > relationships.confidence THEN EXCLUDED.verb ELSE relationships.verb END,
    source_sentence = CASE WHEN EXCLUDED.confidence > relationships.confidence THEN EXCLUDED.source_sentence ELSE relationships.source_sentence END,
    document_id = CASE WHEN EXCLUDED.confidence > relationships.confidence THEN EXCLUDED.document_id ELSE relationships.document_id END,
    metadata = relationships.metadata || EXCLUDED.metadata,
    updated_at = now()
`

const upsertEvent = `
INSERT INTO events (session_id, event_type, name, date, location, amount, context, confidence, document_id)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
ON CONFLICT (session_id, event_type, name) DO UPDATE
SET date = EXCLUDED.date,
    location = EXCLUDED.location,
    amount = EXCLUDED.amount,
    context = EXCLUDED.context,
    confidence = EXCLUDED.confidence,
    document_id = EXCLUDED.document_id,
    updated_at = now()
RETURNING id
`

const insertParticipant = `
INSERT INTO event_participants (event_id, entity_key, entity_type)
VALUES ($1, $2, $3)
ON CONFLICT DO NOTHING
`

// SaveBatch upserts one document's entities, relationships and events into
// the session. Relationship conflicts keep the higher confidence together
// with its reason and verb; metadata maps are merged.
func (s *GraphDBStorage) SaveBatch(ctx context.Context, batch common.Batch) error {
	if batch.SessionID == "" {
		return fmt.Errorf("pgx: batch without session id")
	}
	if len(batch.Entities) == 0 {
		return nil
	}

	embeddings, err := s.entityEmbeddings(ctx, batch.Entities)
	if err != nil {
		return fmt.Errorf("failed to embed entities: %w", err)
	}

	s.dbLock.Lock()
	defer s.dbLock.Unlock()

	lease, err := s.leaseSession(ctx, batch.SessionID)
	if err != nil {
		return err
	}
	defer lease.release()
	ctx = lease.ctx

	tx, err := s.conn.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(context.WithoutCancel(ctx))

	err = store.ChunkRange(len(batch.Entities), batchChunkSize, func(start, end int) error {
		b := &pgxv5.Batch{}
		for i := start; i < end; i++ {
			b.Queue(upsertEntity, entityArgs(batch.SessionID, batch.Entities[i], embeddings[i])...)
		}
		return tx.SendBatch(ctx, b).Close()
	})
	if err != nil {
		return fmt.Errorf("failed to upsert entities: %w", err)
	}

	rels := validRelationships(batch.Relationships)
	err = store.ChunkRange(len(rels), batchChunkSize, func(start, end int) error {
		b := &pgxv5.Batch{}
		for _, r := range rels[start:end] {
			b.Queue(upsertRelationship, relationshipArgs(batch.SessionID, r)...)
		}
		return tx.SendBatch(ctx, b).Close()
	})
	if err != nil {
		return fmt.Errorf("failed to upsert relationships: %w", err)
	}

	for _, ev := range batch.Events {
		var id int64
		if err := tx.QueryRow(ctx, upsertEvent, eventArgs(batch.SessionID, ev)...).Scan(&id); err != nil {
			return fmt.Errorf("failed to upsert event %q: %w", ev.Name, err)
		}
		for _, p := range ev.Participants {
			if _, err := tx.Exec(ctx, insertParticipant, id, p.Name, string(p.Type)); err != nil {
				return fmt.Errorf("failed to link participant %s: %w", p, err)
			}
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit batch: %w", err)
	}

	logger.Debug("[Postgres][SaveBatch] Saved batch",
		"session", batch.SessionID,
		"document", batch.DocumentID,
		"entities", len(batch.Entities),
		"relationships", len(rels),
		"events", len(batch.Events),
	)
	return nil
}

// entityEmbeddings returns one vector per entity, or nil vectors when the
// store has no AI client.
func (s *GraphDBStorage) entityEmbeddings(ctx context.Context, entities []common.Entity) ([]*pgvector.Vector, error) {
	out := make([]*pgvector.Vector, len(entities))
	if s.aiClient == nil {
		return out, nil
	}

	inputs := make([][]byte, len(entities))
	for i, e := range entities {
		inputs[i] = store.EntityEmbeddingInput(e)
	}
	embeddings, err := store.GenerateEmbeddings(ctx, s.aiClient, inputs)
	if err != nil {
		return nil, err
	}
	for i, emb := range embeddings {
		if len(emb) == 0 {
			continue
		}
		v := pgvector.NewVector(emb)
		out[i] = &v
	}
	return out, nil
}

func entityArgs(sessionID string, e common.Entity, embedding *pgvector.Vector) []any {
	key := e.Key()
	return []any{
		sessionID,
		util.SanitizePostgresText(key.Name),
		string(key.Type),
		util.SanitizePostgresText(e.Text),
		string(e.Category),
		util.SanitizePostgresText(e.Context),
		util.SanitizePostgresText(e.SourceSentence),
		e.DocumentID,
		embedding,
	}
}

func relationshipArgs(sessionID string, r common.Relationship) []any {
	metadata := make(map[string]string, len(r.Metadata))
	for k, v := range r.Metadata {
		metadata[k] = util.SanitizePostgresText(v)
	}
	return []any{
		sessionID,
		util.SanitizePostgresText(r.Source.Name),
		string(r.Source.Type),
		util.SanitizePostgresText(r.Target.Name),
		string(r.Target.Type),
		string(r.Type),
		r.Confidence,
		util.SanitizePostgresText(r.Reason),
		r.Verb,
		util.SanitizePostgresText(r.SourceSentence),
		r.DocumentID,
		metadata,
	}
}

func eventArgs(sessionID string, ev common.Event) []any {
	return []any{
		sessionID,
		string(ev.EventType),
		util.SanitizePostgresText(ev.Name),
		ev.Date,
		ev.Location,
		ev.Amount,
		util.SanitizePostgresText(ev.Context),
		ev.Confidence,
		ev.DocumentID,
	}
}

func validRelationships(rels []common.Relationship) []common.Relationship {
	out := make([]common.Relationship, 0, len(rels))
	for _, r := range rels {
		if !r.Type.Valid() {
			logger.Warn("[Postgres] Skipping relationship with unknown type", "type", r.Type)
			continue
		}
		out = append(out, r)
	}
	return out
}

// ClearSession removes every entity, relationship and event of the session.
// It waits for the session lease like SaveBatch.
func (s *GraphDBStorage) ClearSession(ctx context.Context, sessionID string) error {
	s.dbLock.Lock()
	defer s.dbLock.Unlock()

	lease, err := s.leaseSession(ctx, sessionID)
	if err != nil {
		return err
	}
	defer lease.release()
	ctx = lease.ctx

	tx, err := s.conn.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(context.WithoutCancel(ctx))

	for _, q := range []string{
		`DELETE FROM events WHERE session_id = $1`,
		`DELETE FROM relationships WHERE session_id = $1`,
		`DELETE FROM entities WHERE session_id = $1`,
	} {
		if _, err := tx.Exec(ctx, q, sessionID); err != nil {
			return fmt.Errorf("failed to clear session %s: %w", sessionID, err)
		}
	}
	return tx.Commit(ctx)
}
