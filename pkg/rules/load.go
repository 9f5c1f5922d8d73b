package rules

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/OFFIS-RIT/kgraph/backend/pkg/common"
)

// overlay mirrors Set with optional fields. A section that is present in
// the file replaces the default section entirely.
type overlay struct {
	MinConfidence   *float64 `yaml:"min_confidence"`
	DistancePenalty *float64 `yaml:"distance_penalty"`
	ScoreFloor      *float64 `yaml:"score_floor"`

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
}

// LoadFile reads a YAML rule file and applies it on top of Default.
func LoadFile(path string) (*Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rules file: %w", err)
	}
	return Parse(data)
}

// Parse applies YAML rule overrides on top of Default.
func Parse(data []byte) (*Set, error) {
	var o overlay
	if err := yaml.Unmarshal(data, &o); err != nil {
		return nil, fmt.Errorf("failed to parse rules: %w", err)
	}

	s := defaultSet()
	if o.MinConfidence != nil {
		s.MinConfidence = *o.MinConfidence
	}
	if o.DistancePenalty != nil {
		s.DistancePenalty = *o.DistancePenalty
	}
	if o.ScoreFloor != nil {
		s.ScoreFloor = *o.ScoreFloor
	}
	if o.MinConfidence != nil && (s.MinConfidence < 0 || s.MinConfidence > 1) {
		return nil, fmt.Errorf("min_confidence must be within [0,1], got %v", s.MinConfidence)
	}

	replace(&s.SemanticRules, o.SemanticRules)
	replace(&s.RoleIndicators, o.RoleIndicators)
	replace(&s.LocationProductPatterns, o.LocationProductPatterns)
	replace(&s.ListPatterns, o.ListPatterns)
	replace(&s.Verbs, o.Verbs)
	replace(&s.EventTriggers, o.EventTriggers)
	replace(&s.PastCopulas, o.PastCopulas)
	replace(&s.KnownCompanies, o.KnownCompanies)
	replace(&s.KnownProducts, o.KnownProducts)
	replace(&s.ForceDetect, o.ForceDetect)
	replace(&s.OrgSuffixes, o.OrgSuffixes)
	replace(&s.OrganizationWords, o.OrganizationWords)
	if o.StructuralLabels != nil {
		s.StructuralLabels = o.StructuralLabels
	}
	if o.MetadataLabels != nil {
		s.MetadataLabels = o.MetadataLabels
	}
	if o.LocationAbbreviations != nil {
		s.LocationAbbreviations = o.LocationAbbreviations
	}

	if err := s.Build(); err != nil {
		return nil, err
	}
	return s, nil
}

// YAML renders the effective rule set in the same format LoadFile reads.
func (s *Set) YAML() ([]byte, error) {
	return yaml.Marshal(s)
}

func replace[T any](dst *[]T, src []T) {
	if src != nil {
		*dst = src
	}
}
