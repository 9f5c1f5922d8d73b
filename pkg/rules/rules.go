// Package rules holds the configuration tables that drive relationship
// inference, event detection and semantic validation.
//
// A Set is built once at start-up (Default, LoadFile or a literal) and then
// shared read-only between pipeline runs. Its lookup indexes are built on
// first use; edits to the tables after that are not seen.
package rules

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/OFFIS-RIT/kgraph/backend/pkg/common"
)

var (
	ErrUnknownRelation   = errors.New("unknown relation type")
	ErrUnknownEntityType = errors.New("unknown entity type")
)

// Triple is one allowed (source type, relation, target type) combination.
type Triple struct {
	Source   common.EntityType   `yaml:"source"`
	Relation common.RelationType `yaml:"relation"`
	Target   common.EntityType   `yaml:"target"`
}

// RoleIndicator maps a role phrase such as "ceo of" to a relation. Former
// is used instead of Relation when a past-tense copula sits between the
// subject and the phrase. Reversed phrases ("founded by") name the target
// first.
type RoleIndicator struct {
	Phrase   string              `yaml:"phrase"`
	Relation common.RelationType `yaml:"relation"`
	Former   common.RelationType `yaml:"former,omitempty"`
	Reversed bool                `yaml:"reversed,omitempty"`
	Score    float64             `yaml:"score"`
}

// LocationProductPattern links the nearest entity of a source type before
// the phrase with the nearest entity of a target type after it.
type LocationProductPattern struct {
	Phrase      string              `yaml:"phrase"`
	Relation    common.RelationType `yaml:"relation"`
	SourceTypes []common.EntityType `yaml:"source_types"`
	TargetTypes []common.EntityType `yaml:"target_types"`
	Reversed    bool                `yaml:"reversed,omitempty"`
	Score       float64             `yaml:"score"`
}

// ListPattern expands "X <trigger> A, B and C" into one candidate per item.
type ListPattern struct {
	Trigger  string              `yaml:"trigger"`
	Relation common.RelationType `yaml:"relation"`
	Reversed bool                `yaml:"reversed,omitempty"`
	Score    float64             `yaml:"score"`
}

// VerbRule maps a verb, optionally followed by a preposition ("competes
// with"), to a relation. Reversed verbs have the object as source
// ("Apple employs Cook").
type VerbRule struct {
	Verb     string              `yaml:"verb"`
	Relation common.RelationType `yaml:"relation"`
	Score    float64             `yaml:"score"`
	Reversed bool                `yaml:"reversed,omitempty"`
}

// EventTrigger lists the trigger phrases of an event type and the entity
// types of which at least one must be present in the sentence.
type EventTrigger struct {
	Type     common.EventType    `yaml:"type"`
	Phrases  []string            `yaml:"phrases"`
	Requires []common.EntityType `yaml:"requires"`
}

// Set is a complete rule configuration.
type Set struct {
	MinConfidence   float64 `yaml:"min_confidence"`
	DistancePenalty float64 `yaml:"distance_penalty"`
	ScoreFloor      float64 `yaml:"score_floor"`

	SemanticRules           []Triple                 `yaml:"semantic_rules"`
	RoleIndicators          []RoleIndicator          `yaml:"role_indicators"`
	LocationProductPatterns []LocationProductPattern `yaml:"location_product_patterns"`
	ListPatterns            []ListPattern            `yaml:"list_patterns"`
	Verbs                   []VerbRule               `yaml:"verbs"`
	EventTriggers           []EventTrigger           `yaml:"event_triggers"`
	PastCopulas             []string                 `yaml:"past_copulas"`

	StructuralLabels      map[string]common.EntityType   `yaml:"structural_labels"`
	MetadataLabels        map[string]common.MetadataKind `yaml:"metadata_labels"`
	KnownCompanies        []string                       `yaml:"known_companies"`
	KnownProducts         []string                       `yaml:"known_products"`
	ForceDetect           []string                       `yaml:"force_detect"`
	OrgSuffixes           []string                       `yaml:"org_suffixes"`
	LocationAbbreviations map[string]string              `yaml:"location_abbreviations"`
	OrganizationWords     []string                       `yaml:"organization_words"`

	once     sync.Once
	buildErr error

	allowed   map[Triple]struct{}
	verbs     map[string]VerbRule
	companies map[string]struct{}
	products  map[string]struct{}
	orgWords  map[string]struct{}
}

// Build validates the tables and builds the lookup indexes. It runs once;
// later calls return the first result. Sets returned by Default and Parse
// are already built, and the lookup methods build a literal Set on demand.
func (s *Set) Build() error {
	s.once.Do(func() {
		s.buildErr = s.index()
	})
	return s.buildErr
}

// Allowed reports whether the triple is in the semantic rule table.
func (s *Set) Allowed(source common.EntityType, relation common.RelationType, target common.EntityType) bool {
	s.Build()
	_, ok := s.allowed[Triple{Source: source, Relation: relation, Target: target}]
	return ok
}

// Verb looks up a verb key such as "founded" or "competes with".
func (s *Set) Verb(key string) (VerbRule, bool) {
	s.Build()
	v, ok := s.verbs[strings.ToLower(key)]
	return v, ok
}

func (s *Set) IsKnownCompany(name string) bool {
	s.Build()
	_, ok := s.companies[strings.ToLower(name)]
	return ok
}

func (s *Set) IsKnownProduct(name string) bool {
	s.Build()
	_, ok := s.products[strings.ToLower(name)]
	return ok
}

// IsOrganizationWord reports whether w marks a non-commercial institution
// ("University", "Foundation").
func (s *Set) IsOrganizationWord(w string) bool {
	s.Build()
	_, ok := s.orgWords[strings.ToLower(w)]
	return ok
}

// StructuralType maps a raw tagger label to a structural entity type.
func (s *Set) StructuralType(label string) (common.EntityType, bool) {
	t, ok := s.StructuralLabels[strings.ToUpper(label)]
	return t, ok
}

// MetadataKind maps a raw tagger label to a metadata kind.
func (s *Set) MetadataKind(label string) (common.MetadataKind, bool) {
	k, ok := s.MetadataLabels[strings.ToUpper(label)]
	return k, ok
}

func (s *Set) index() error {
	allowed := make(map[Triple]struct{}, len(s.SemanticRules))
	for _, t := range s.SemanticRules {
		if !t.Relation.Valid() {
			return fmt.Errorf("%w: %s", ErrUnknownRelation, t.Relation)
		}
		if !t.Source.Valid() {
			return fmt.Errorf("%w: %s", ErrUnknownEntityType, t.Source)
		}
		if !t.Target.Valid() {
			return fmt.Errorf("%w: %s", ErrUnknownEntityType, t.Target)
		}
		allowed[t] = struct{}{}
	}

	verbs := make(map[string]VerbRule, len(s.Verbs))
	for _, v := range s.Verbs {
		if !v.Relation.Valid() {
			return fmt.Errorf("%w: %s (verb %q)", ErrUnknownRelation, v.Relation, v.Verb)
		}
		verbs[strings.ToLower(v.Verb)] = v
	}

	for _, r := range s.RoleIndicators {
		if !r.Relation.Valid() || (r.Former != "" && !r.Former.Valid()) {
			return fmt.Errorf("%w: role indicator %q", ErrUnknownRelation, r.Phrase)
		}
	}
	for _, p := range s.LocationProductPatterns {
		if !p.Relation.Valid() {
			return fmt.Errorf("%w: pattern %q", ErrUnknownRelation, p.Phrase)
		}
	}
	for _, p := range s.ListPatterns {
		if !p.Relation.Valid() {
			return fmt.Errorf("%w: list trigger %q", ErrUnknownRelation, p.Trigger)
		}
	}
	for label, t := range s.StructuralLabels {
		if !t.Valid() {
			return fmt.Errorf("%w: label %s maps to %s", ErrUnknownEntityType, label, t)
		}
	}

	s.allowed = allowed
	s.verbs = verbs
	s.companies = lowerSet(s.KnownCompanies)
	s.products = lowerSet(s.KnownProducts)
	s.orgWords = lowerSet(s.OrganizationWords)
	return nil
}

func lowerSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[strings.ToLower(v)] = struct{}{}
	}
	return set
}
