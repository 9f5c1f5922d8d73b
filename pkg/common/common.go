package common

import (
	"fmt"
	"strings"
)

// EntityType is the structural type of a graph node.
type EntityType string

const (
	EntityPerson       EntityType = "PERSON"
	EntityCompany      EntityType = "COMPANY"
	EntityProduct      EntityType = "PRODUCT"
	EntityOrganization EntityType = "ORGANIZATION"
	EntityLocation     EntityType = "LOCATION"
	EntityEvent        EntityType = "EVENT"
	EntityFacility     EntityType = "FACILITY"
	EntityWorkOfArt    EntityType = "WORK_OF_ART"
)

// EntityTypes lists every structural type in a stable order.
var EntityTypes = []EntityType{
	EntityPerson,
	EntityCompany,
	EntityProduct,
	EntityOrganization,
	EntityLocation,
	EntityEvent,
	EntityFacility,
	EntityWorkOfArt,
}

// Valid reports whether t is one of the structural entity types.
func (t EntityType) Valid() bool {
	for _, et := range EntityTypes {
		if et == t {
			return true
		}
	}
	return false
}

// Category separates node-worthy entities from spans that only ever become
// properties.
type Category string

const (
	CategoryStructural Category = "STRUCTURAL"
	CategoryMetadata   Category = "METADATA"
)

// RelationType is the semantic type of a relationship edge.
type RelationType string

const (
	RelationFounded          RelationType = "FOUNDED"
	RelationCEOOf            RelationType = "CEO_OF"
	RelationFormerCEOOf      RelationType = "FORMER_CEO_OF"
	RelationEmployedBy       RelationType = "EMPLOYED_BY"
	RelationProduces         RelationType = "PRODUCES"
	RelationReleased         RelationType = "RELEASED"
	RelationDevelops         RelationType = "DEVELOPS"
	RelationOperates         RelationType = "OPERATES"
	RelationAcquired         RelationType = "ACQUIRED"
	RelationCompetesWith     RelationType = "COMPETES_WITH"
	RelationCollaboratesWith RelationType = "COLLABORATES_WITH"
	RelationLocatedIn        RelationType = "LOCATED_IN"
	RelationHeadquarteredIn  RelationType = "HEADQUARTERED_IN"
	RelationInvestedIn       RelationType = "INVESTED_IN"
	RelationSubsidiaryOf     RelationType = "SUBSIDIARY_OF"
)

// RelationTypes is the closed set of relationship types the pipeline may
// ever emit. There is no generic catch-all member.
var RelationTypes = []RelationType{
	RelationFounded,
	RelationCEOOf,
	RelationFormerCEOOf,
	RelationEmployedBy,
	RelationProduces,
	RelationReleased,
	RelationDevelops,
	RelationOperates,
	RelationAcquired,
	RelationCompetesWith,
	RelationCollaboratesWith,
	RelationLocatedIn,
	RelationHeadquarteredIn,
	RelationInvestedIn,
	RelationSubsidiaryOf,
}

// Valid reports whether r is a member of RelationTypes.
func (r RelationType) Valid() bool {
	for _, rt := range RelationTypes {
		if rt == r {
			return true
		}
	}
	return false
}

// EventType is the kind of a detected event.
type EventType string

const (
	EventAcquisition      EventType = "ACQUISITION"
	EventProductLaunch    EventType = "PRODUCT_LAUNCH"
	EventLeadershipChange EventType = "LEADERSHIP_CHANGE"
	EventConference       EventType = "CONFERENCE"
	EventFundingRound     EventType = "FUNDING_ROUND"
)

// EntityKey identifies an entity within a document. Name is always lower
// case so that two keys compare equal with ==.
type EntityKey struct {
	Name string     `json:"name"`
	Type EntityType `json:"type"`
}

// NewEntityKey builds the identity key for a canonical display name.
func NewEntityKey(name string, t EntityType) EntityKey {
	return EntityKey{Name: strings.ToLower(name), Type: t}
}

func (k EntityKey) String() string {
	return fmt.Sprintf("%s:%s", k.Name, k.Type)
}

// Entity represents a node in the graph. An entity is created once per
// document from its first mention; later mentions with the same key are
// dropped and do not change context or offsets.
type Entity struct {
	Text           string     `json:"text"`
	Type           EntityType `json:"type"`
	Category       Category   `json:"category"`
	SourceSentence string     `json:"source_sentence"`
	DocumentID     string     `json:"document_id"`
	StartChar      int        `json:"start_char"`
	EndChar        int        `json:"end_char"`
	Context        string     `json:"context,omitempty"`
}

// Key returns the identity key of the entity.
func (e Entity) Key() EntityKey {
	return NewEntityKey(e.Text, e.Type)
}

// Mention is a single occurrence of a structural entity in the text.
type Mention struct {
	Key      EntityKey
	Text     string
	Start    int
	End      int
	Sentence int
}

// Relationship represents a directed edge between two entities. Candidates
// produced by the inference strategies and validated relationships share
// this type.
type Relationship struct {
	Source         EntityKey         `json:"source"`
	Target         EntityKey         `json:"target"`
	Type           RelationType      `json:"type"`
	Confidence     float64           `json:"confidence"`
	Reason         string            `json:"reason"`
	Verb           string            `json:"verb,omitempty"`
	Metadata       map[string]string `json:"metadata,omitempty"`
	SourceSentence string            `json:"source_sentence"`
	DocumentID     string            `json:"document_id"`
}

// Event is a temporal or transactional fact linking one or more entities.
type Event struct {
	EventType    EventType   `json:"event_type"`
	Name         string      `json:"name"`
	Participants []EntityKey `json:"participants"`
	Date         string      `json:"date,omitempty"`
	Location     string      `json:"location,omitempty"`
	Amount       string      `json:"amount,omitempty"`
	Context      string      `json:"context"`
	Confidence   float64     `json:"confidence"`
	DocumentID   string      `json:"document_id"`
}

// Summary holds the counts reported back to the caller.
type Summary struct {
	Entities      int    `json:"entities"`
	Relationships int    `json:"relationships"`
	Events        int    `json:"events"`
	Message       string `json:"message"`
}

// Result is the validated output of one pipeline run over one document.
type Result struct {
	DocumentID    string         `json:"document_id"`
	Entities      []Entity       `json:"entities"`
	Relationships []Relationship `json:"relationships"`
	Events        []Event        `json:"events"`
	Metadata      Metadata       `json:"metadata"`
	Summary       Summary        `json:"summary"`
}

// Batch is what the persistence layer receives for one document. It is
// already validated and deduplicated, so stores may merge unconditionally.
type Batch struct {
	SessionID     string
	DocumentID    string
	Entities      []Entity
	Relationships []Relationship
	Events        []Event
}

// NewBatch wraps a pipeline result for the given session.
func NewBatch(sessionID string, result *Result) Batch {
	return Batch{
		SessionID:     sessionID,
		DocumentID:    result.DocumentID,
		Entities:      result.Entities,
		Relationships: result.Relationships,
		Events:        result.Events,
	}
}
