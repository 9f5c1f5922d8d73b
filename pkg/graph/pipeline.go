package graph

import (
	"context"
	"fmt"
	"strings"

	"github.com/OFFIS-RIT/kgraph/backend/pkg/common"
	"github.com/OFFIS-RIT/kgraph/backend/pkg/logger"

	"golang.org/x/sync/errgroup"
)

// Process runs the full pipeline over one document: tagging, normalization,
// metadata collection, relationship inference and event detection per
// sentence, and a single validation pass over all candidates.
//
// Empty input yields an empty result. A tagging failure fails the whole
// document; no partial result is returned.
func (c *GraphClient) Process(ctx context.Context, text string, documentID string) (*common.Result, error) {
	if c == nil || c.tagger == nil {
		return nil, ErrNoTagger
	}
	if strings.TrimSpace(text) == "" {
		return newResult(documentID, nil, nil, nil, common.Metadata{}), nil
	}

	doc, err := c.tagger.Tag(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("failed to tag document %s: %w", documentID, err)
	}

	norm := Normalize(c.rules, doc, documentID)
	sentences := documentSentences(doc)
	metadata := CollectMetadata(norm.Metadata, len(sentences))

	mentions := make([][]common.Mention, len(sentences))
	for _, m := range norm.Mentions {
		if m.Sentence >= 0 && m.Sentence < len(sentences) {
			mentions[m.Sentence] = append(mentions[m.Sentence], m)
		}
	}

	candidates := make([][]common.Relationship, len(sentences))
	events := make([][]common.Event, len(sentences))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(c.parallelSentences)
	for i := range sentences {
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			in := SentenceInput{
				Index:      i,
				Sentence:   sentences[i],
				Mentions:   mentions[i],
				Metadata:   metadata[i],
				DocumentID: documentID,
			}
			candidates[i] = Infer(c.strategies, in)
			events[i] = DetectEvents(c.rules, in)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var allCandidates []common.Relationship
	var allEvents []common.Event
	for i := range sentences {
		allCandidates = append(allCandidates, candidates[i]...)
		allEvents = append(allEvents, events[i]...)
	}

	relationships := c.validator.Validate(norm.Entities, allCandidates)
	validEvents := c.validator.ValidateEvents(norm.Entities, allEvents)

	logger.Debug(
		"[Graph] Processed document",
		"document", documentID,
		"sentences", len(sentences),
		"entities", len(norm.Entities),
		"candidates", len(allCandidates),
		"relationships", len(relationships),
		"events", len(validEvents),
	)

	return newResult(documentID, norm.Entities, relationships, validEvents, DocumentMetadata(metadata)), nil
}

func newResult(
	documentID string,
	entities []common.Entity,
	relationships []common.Relationship,
	events []common.Event,
	metadata common.Metadata,
) *common.Result {
	if entities == nil {
		entities = []common.Entity{}
	}
	if relationships == nil {
		relationships = []common.Relationship{}
	}
	if events == nil {
		events = []common.Event{}
	}
	return &common.Result{
		DocumentID:    documentID,
		Entities:      entities,
		Relationships: relationships,
		Events:        events,
		Metadata:      metadata,
		Summary: common.Summary{
			Entities:      len(entities),
			Relationships: len(relationships),
			Events:        len(events),
			Message: fmt.Sprintf(
				"Extracted %d entities, %d relationships and %d events",
				len(entities), len(relationships), len(events),
			),
		},
	}
}
