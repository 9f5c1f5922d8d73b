package graph

import (
	"maps"

	"github.com/OFFIS-RIT/kgraph/backend/pkg/common"
	"github.com/OFFIS-RIT/kgraph/backend/pkg/logger"
	"github.com/OFFIS-RIT/kgraph/backend/pkg/rules"
)

// Validator is the gate between candidate relationships and storage.
type Validator struct {
	rules         *rules.Set
	minConfidence float64
}

type ValidatorOption func(*Validator)

// WithMinConfidence overrides the confidence threshold of the rule set.
func WithMinConfidence(v float64) ValidatorOption {
	return func(val *Validator) {
		val.minConfidence = v
	}
}

func NewValidator(r *rules.Set, opts ...ValidatorOption) *Validator {
	if r == nil {
		r = rules.Default()
	}
	v := &Validator{
		rules:         r,
		minConfidence: r.MinConfidence,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

func (v *Validator) MinConfidence() float64 {
	return v.minConfidence
}

type relationKey struct {
	source   common.EntityKey
	relation common.RelationType
	target   common.EntityKey
}

// Validate filters candidates and collapses duplicates.
//
// A candidate survives when both endpoints resolve to one of entities, its
// type triple is in the semantic rule table and its confidence reaches the
// threshold. Survivors sharing (source, type, target) collapse into the one
// with the highest confidence, the earliest on a tie; their metadata is
// merged in candidate order so later values win. Output order is the order
// of first appearance.
func (v *Validator) Validate(entities []common.Entity, candidates []common.Relationship) []common.Relationship {
	known := make(map[common.EntityKey]common.Entity, len(entities))
	for _, e := range entities {
		known[e.Key()] = e
	}

	out := make([]common.Relationship, 0, len(candidates))
	index := make(map[relationKey]int)
	for _, c := range candidates {
		src, ok := known[c.Source]
		if !ok {
			logger.Debug("[Validator] Rejected relationship", "reason", "unknown source", "source", c.Source.String(), "type", c.Type)
			continue
		}
		dst, ok := known[c.Target]
		if !ok {
			logger.Debug("[Validator] Rejected relationship", "reason", "unknown target", "target", c.Target.String(), "type", c.Type)
			continue
		}
		if !c.Type.Valid() {
			logger.Debug("[Validator] Rejected relationship", "reason", "unknown type", "type", c.Type)
			continue
		}
		if !v.rules.Allowed(src.Type, c.Type, dst.Type) {
			logger.Debug("[Validator] Rejected relationship", "reason", "semantic rule", "source", src.Type, "type", c.Type, "target", dst.Type)
			continue
		}
		if c.Confidence < v.minConfidence {
			logger.Debug("[Validator] Rejected relationship", "reason", "confidence", "type", c.Type, "confidence", c.Confidence)
			continue
		}

		key := relationKey{source: c.Source, relation: c.Type, target: c.Target}
		i, ok := index[key]
		if !ok {
			c.Metadata = maps.Clone(c.Metadata)
			index[key] = len(out)
			out = append(out, c)
			continue
		}

		merged := out[i].Metadata
		if merged == nil && len(c.Metadata) > 0 {
			merged = make(map[string]string, len(c.Metadata))
		}
		maps.Copy(merged, c.Metadata)
		if c.Confidence > out[i].Confidence {
			c.Metadata = merged
			out[i] = c
		} else {
			out[i].Metadata = merged
		}
	}
	return out
}

// ValidateEvents removes participants that do not resolve to an entity and
// discards events left without participants.
func (v *Validator) ValidateEvents(entities []common.Entity, events []common.Event) []common.Event {
	known := make(map[common.EntityKey]struct{}, len(entities))
	for _, e := range entities {
		known[e.Key()] = struct{}{}
	}

	out := make([]common.Event, 0, len(events))
	for _, ev := range events {
		participants := make([]common.EntityKey, 0, len(ev.Participants))
		for _, p := range ev.Participants {
			if _, ok := known[p]; ok {
				participants = append(participants, p)
			}
		}
		if len(participants) == 0 {
			logger.Debug("[Validator] Rejected event", "type", ev.EventType, "name", ev.Name)
			continue
		}
		ev.Participants = participants
		out = append(out, ev)
	}
	return out
}
