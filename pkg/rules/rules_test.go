package rules

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/OFFIS-RIT/kgraph/backend/pkg/common"
)

func TestDefault_SemanticRules(t *testing.T) {
	s := Default()

	tests := []struct {
		name     string
		source   common.EntityType
		relation common.RelationType
		target   common.EntityType
		want     bool
	}{
		{"founded person company", common.EntityPerson, common.RelationFounded, common.EntityCompany, true},
		{"founded company person", common.EntityCompany, common.RelationFounded, common.EntityPerson, false},
		{"founded person organization", common.EntityPerson, common.RelationFounded, common.EntityOrganization, false},
		{"produces company product", common.EntityCompany, common.RelationProduces, common.EntityProduct, true},
		{"produces person product", common.EntityPerson, common.RelationProduces, common.EntityProduct, false},
		{"competes company company", common.EntityCompany, common.RelationCompetesWith, common.EntityCompany, true},
		{"employed by organization", common.EntityPerson, common.RelationEmployedBy, common.EntityOrganization, true},
		{"located in location", common.EntityOrganization, common.RelationLocatedIn, common.EntityLocation, true},
		{"unknown relation", common.EntityPerson, common.RelationType("RELATED_TO"), common.EntityCompany, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := s.Allowed(tt.source, tt.relation, tt.target); got != tt.want {
				t.Errorf("Allowed(%s, %s, %s) = %v, want %v", tt.source, tt.relation, tt.target, got, tt.want)
			}
		})
	}
}

func TestDefault_EveryRelationHasARule(t *testing.T) {
	s := Default()
	seen := make(map[common.RelationType]bool)
	for _, r := range s.SemanticRules {
		seen[r.Relation] = true
	}
	for _, rt := range common.RelationTypes {
		if !seen[rt] {
			t.Errorf("relation %s has no semantic rule", rt)
		}
	}
}

func TestDefault_VerbTable(t *testing.T) {
	s := Default()
	if len(s.Verbs) < 70 {
		t.Fatalf("got %d verb entries, want at least 70", len(s.Verbs))
	}

	v, ok := s.Verb("Acquired")
	if !ok {
		t.Fatal("expected acquired to be mapped")
	}
	if v.Relation != common.RelationAcquired || v.Score < 0.9 {
		t.Errorf("got %s %.2f, want ACQUIRED >= 0.9", v.Relation, v.Score)
	}

	has, ok := s.Verb("has")
	if !ok || has.Score > 0.5 {
		t.Errorf("expected weak indicator has <= 0.5, got %.2f (ok=%v)", has.Score, ok)
	}

	if _, ok := s.Verb("said"); ok {
		t.Error("did not expect said to be mapped")
	}
}

func TestDefault_Gazetteers(t *testing.T) {
	s := Default()
	if !s.IsKnownCompany("Apple") {
		t.Error("expected Apple to be a known company")
	}
	if s.IsKnownCompany("Beats") {
		t.Error("did not expect Beats to be a known company")
	}
	if !s.IsKnownProduct("iPhone") {
		t.Error("expected iPhone to be a known product")
	}
	if !s.IsOrganizationWord("University") {
		t.Error("expected University to be an organization word")
	}
	if got, ok := s.StructuralType("gpe"); !ok || got != common.EntityLocation {
		t.Errorf("StructuralType(gpe) = %s, %v; want LOCATION, true", got, ok)
	}
	if got, ok := s.MetadataKind("MONEY"); !ok || got != common.MetadataAmount {
		t.Errorf("MetadataKind(MONEY) = %s, %v; want amount, true", got, ok)
	}
	if _, ok := s.StructuralType("NORP"); ok {
		t.Error("did not expect NORP to be mapped")
	}
}

func TestDefault_ReturnsIndependentCopies(t *testing.T) {
	a := Default()
	b := Default()
	a.SemanticRules = a.SemanticRules[:1]
	a.MinConfidence = 0.1
	if len(b.SemanticRules) == 1 || b.MinConfidence != 0.6 {
		t.Fatal("Default returned shared state")
	}
}

func TestLoadFile_OverridesSections(t *testing.T) {
	content := `
min_confidence: 0.8
semantic_rules:
  - source: PERSON
    relation: FOUNDED
    target: ORGANIZATION
verbs:
  - verb: started
    relation: FOUNDED
    score: 0.9
`
	path := filepath.Join(t.TempDir(), "rules.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write rules file: %v", err)
	}

	s, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}

	if s.MinConfidence != 0.8 {
		t.Errorf("got min confidence %v, want 0.8", s.MinConfidence)
	}
	if len(s.SemanticRules) != 1 {
		t.Fatalf("got %d semantic rules, want 1", len(s.SemanticRules))
	}
	if !s.Allowed(common.EntityPerson, common.RelationFounded, common.EntityOrganization) {
		t.Error("expected overridden triple to be allowed")
	}
	if s.Allowed(common.EntityPerson, common.RelationFounded, common.EntityCompany) {
		t.Error("expected default triple to be replaced")
	}
	if _, ok := s.Verb("acquired"); ok {
		t.Error("expected verb table to be replaced")
	}
	if len(s.RoleIndicators) == 0 {
		t.Error("expected role indicators to keep their defaults")
	}
	if s.DistancePenalty != 0.004 {
		t.Errorf("got distance penalty %v, want default 0.004", s.DistancePenalty)
	}
}

func TestParse_RejectsUnknownRelation(t *testing.T) {
	_, err := Parse([]byte(`
verbs:
  - verb: knows
    relation: RELATED_TO
    score: 0.9
`))
	if !errors.Is(err, ErrUnknownRelation) {
		t.Fatalf("got error %v, want ErrUnknownRelation", err)
	}
}

func TestParse_RejectsUnknownEntityType(t *testing.T) {
	_, err := Parse([]byte(`
semantic_rules:
  - source: ANIMAL
    relation: FOUNDED
    target: COMPANY
`))
	if !errors.Is(err, ErrUnknownEntityType) {
		t.Fatalf("got error %v, want ErrUnknownEntityType", err)
	}
}

func TestYAML_RoundTripsThroughParse(t *testing.T) {
	data, err := Default().YAML()
	if err != nil {
		t.Fatalf("YAML() error = %v", err)
	}
	s, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(s.Verbs) != len(Default().Verbs) {
		t.Errorf("got %d verbs, want %d", len(s.Verbs), len(Default().Verbs))
	}
}

func TestSet_LiteralIndexedOnFirstUse(t *testing.T) {
	s := &Set{
		MinConfidence:  0.6,
		SemanticRules:  []Triple{{Source: common.EntityPerson, Relation: common.RelationFounded, Target: common.EntityCompany}},
		Verbs:          []VerbRule{{Verb: "Founded", Relation: common.RelationFounded, Score: 0.9}},
		KnownCompanies: []string{"Apple"},
	}

	if got := s.Allowed(common.EntityPerson, common.RelationFounded, common.EntityCompany); !got {
		t.Errorf("Allowed(PERSON, FOUNDED, COMPANY) = %v, want true", got)
	}
	if got := s.Allowed(common.EntityCompany, common.RelationFounded, common.EntityPerson); got {
		t.Errorf("Allowed(COMPANY, FOUNDED, PERSON) = %v, want false", got)
	}
	v, ok := s.Verb("founded")
	if !ok || v.Relation != common.RelationFounded {
		t.Errorf("Verb(founded) = %+v, %v, want FOUNDED, true", v, ok)
	}
	if !s.IsKnownCompany("apple") {
		t.Errorf("IsKnownCompany(apple) = false, want true")
	}
}

func TestSet_BuildRejectsInvalidLiteral(t *testing.T) {
	s := &Set{
		SemanticRules: []Triple{{Source: common.EntityPerson, Relation: common.RelationType("RELATED_TO"), Target: common.EntityCompany}},
	}
	if err := s.Build(); !errors.Is(err, ErrUnknownRelation) {
		t.Fatalf("Build() error = %v, want %v", err, ErrUnknownRelation)
	}
	if s.Allowed(common.EntityPerson, common.RelationType("RELATED_TO"), common.EntityCompany) {
		t.Errorf("Allowed() = true on a set that failed to build, want false")
	}
}
