package rules

import "github.com/OFFIS-RIT/kgraph/backend/pkg/common"

const (
	person  = common.EntityPerson
	company = common.EntityCompany
	product = common.EntityProduct
	org     = common.EntityOrganization
	loc     = common.EntityLocation
	event   = common.EntityEvent
	fac     = common.EntityFacility

	founded      = common.RelationFounded
	ceoOf        = common.RelationCEOOf
	formerCEOOf  = common.RelationFormerCEOOf
	employedBy   = common.RelationEmployedBy
	produces     = common.RelationProduces
	released     = common.RelationReleased
	develops     = common.RelationDevelops
	operates     = common.RelationOperates
	acquired     = common.RelationAcquired
	competes     = common.RelationCompetesWith
	collaborates = common.RelationCollaboratesWith
	locatedIn    = common.RelationLocatedIn
	hqIn         = common.RelationHeadquarteredIn
	investedIn   = common.RelationInvestedIn
	subsidiaryOf = common.RelationSubsidiaryOf
)

// Default returns a fresh copy of the built-in rule set.
func Default() *Set {
	s := defaultSet()
	if err := s.Build(); err != nil {
		panic(err)
	}
	return s
}

func defaultSet() *Set {
	return &Set{
		MinConfidence:   0.6,
		DistancePenalty: 0.004,
		ScoreFloor:      0.3,

		SemanticRules: []Triple{
			{person, founded, company},
			{person, ceoOf, company},
			{person, formerCEOOf, company},
			{person, employedBy, company},
			{person, employedBy, org},
			{company, produces, product},
			{company, released, product},
			{company, develops, product},
			{company, operates, org},
			{company, operates, fac},
			{company, acquired, company},
			{company, competes, company},
			{company, collaborates, company},
			{company, collaborates, org},
			{company, locatedIn, loc},
			{org, locatedIn, loc},
			{company, hqIn, loc},
			{org, hqIn, loc},
			{company, investedIn, company},
			{person, investedIn, company},
			{company, subsidiaryOf, company},
		},

		RoleIndicators: []RoleIndicator{
			{Phrase: "ceo of", Relation: ceoOf, Former: formerCEOOf, Score: 0.9},
			{Phrase: "chief executive of", Relation: ceoOf, Former: formerCEOOf, Score: 0.9},
			{Phrase: "chief executive officer of", Relation: ceoOf, Former: formerCEOOf, Score: 0.9},
			{Phrase: "former ceo of", Relation: formerCEOOf, Score: 0.9},
			{Phrase: "founder of", Relation: founded, Score: 0.95},
			{Phrase: "co-founder of", Relation: founded, Score: 0.95},
			{Phrase: "cofounder of", Relation: founded, Score: 0.95},
			{Phrase: "founded by", Relation: founded, Reversed: true, Score: 0.95},
			{Phrase: "co-founded by", Relation: founded, Reversed: true, Score: 0.95},
			{Phrase: "works at", Relation: employedBy, Score: 0.8},
			{Phrase: "works for", Relation: employedBy, Score: 0.8},
			{Phrase: "worked at", Relation: employedBy, Score: 0.75},
			{Phrase: "worked for", Relation: employedBy, Score: 0.75},
			{Phrase: "employee of", Relation: employedBy, Score: 0.8},
			{Phrase: "engineer at", Relation: employedBy, Score: 0.7},
			{Phrase: "president of", Relation: employedBy, Score: 0.7},
			{Phrase: "acquired by", Relation: acquired, Reversed: true, Score: 0.9},
			{Phrase: "subsidiary of", Relation: subsidiaryOf, Score: 0.9},
			{Phrase: "investor in", Relation: investedIn, Score: 0.85},
		},

		LocationProductPatterns: []LocationProductPattern{
			{Phrase: "headquartered in", Relation: hqIn, SourceTypes: []common.EntityType{company, org}, TargetTypes: []common.EntityType{loc}, Score: 0.9},
			{Phrase: "headquarters in", Relation: hqIn, SourceTypes: []common.EntityType{company, org}, TargetTypes: []common.EntityType{loc}, Score: 0.85},
			{Phrase: "based in", Relation: locatedIn, SourceTypes: []common.EntityType{company, org}, TargetTypes: []common.EntityType{loc}, Score: 0.8},
			{Phrase: "located in", Relation: locatedIn, SourceTypes: []common.EntityType{company, org}, TargetTypes: []common.EntityType{loc}, Score: 0.85},
			{Phrase: "offices in", Relation: locatedIn, SourceTypes: []common.EntityType{company, org}, TargetTypes: []common.EntityType{loc}, Score: 0.7},
			{Phrase: "produces", Relation: produces, SourceTypes: []common.EntityType{company}, TargetTypes: []common.EntityType{product}, Score: 0.85},
			{Phrase: "manufactures", Relation: produces, SourceTypes: []common.EntityType{company}, TargetTypes: []common.EntityType{product}, Score: 0.9},
			{Phrase: "makes", Relation: produces, SourceTypes: []common.EntityType{company}, TargetTypes: []common.EntityType{product}, Score: 0.7},
			{Phrase: "made by", Relation: produces, SourceTypes: []common.EntityType{company}, TargetTypes: []common.EntityType{product}, Reversed: true, Score: 0.8},
			{Phrase: "released", Relation: released, SourceTypes: []common.EntityType{company}, TargetTypes: []common.EntityType{product}, Score: 0.85},
			{Phrase: "released by", Relation: released, SourceTypes: []common.EntityType{company}, TargetTypes: []common.EntityType{product}, Reversed: true, Score: 0.85},
			{Phrase: "launched", Relation: released, SourceTypes: []common.EntityType{company}, TargetTypes: []common.EntityType{product}, Score: 0.8},
			{Phrase: "unveiled", Relation: released, SourceTypes: []common.EntityType{company}, TargetTypes: []common.EntityType{product}, Score: 0.8},
			{Phrase: "develops", Relation: develops, SourceTypes: []common.EntityType{company}, TargetTypes: []common.EntityType{product}, Score: 0.85},
			{Phrase: "developed by", Relation: develops, SourceTypes: []common.EntityType{company}, TargetTypes: []common.EntityType{product}, Reversed: true, Score: 0.85},
			{Phrase: "operates", Relation: operates, SourceTypes: []common.EntityType{company}, TargetTypes: []common.EntityType{org, fac}, Score: 0.75},
		},

		ListPatterns: []ListPattern{
			{Trigger: "competes with", Relation: competes, Score: 0.9},
			{Trigger: "competing with", Relation: competes, Score: 0.85},
			{Trigger: "rivals such as", Relation: competes, Score: 0.85},
			{Trigger: "rivals like", Relation: competes, Score: 0.85},
			{Trigger: "competitors such as", Relation: competes, Score: 0.9},
			{Trigger: "competitors like", Relation: competes, Score: 0.9},
			{Trigger: "competitors include", Relation: competes, Score: 0.9},
			{Trigger: "partners such as", Relation: collaborates, Score: 0.8},
			{Trigger: "partnered with", Relation: collaborates, Score: 0.85},
			{Trigger: "collaborates with", Relation: collaborates, Score: 0.85},
			{Trigger: "products such as", Relation: produces, Score: 0.85},
			{Trigger: "products like", Relation: produces, Score: 0.85},
			{Trigger: "products include", Relation: produces, Score: 0.85},
			{Trigger: "devices such as", Relation: produces, Score: 0.8},
			{Trigger: "acquired companies such as", Relation: acquired, Score: 0.85},
			{Trigger: "subsidiaries such as", Relation: subsidiaryOf, Reversed: true, Score: 0.85},
			{Trigger: "subsidiaries include", Relation: subsidiaryOf, Reversed: true, Score: 0.85},
			{Trigger: "offices in", Relation: locatedIn, Score: 0.7},
		},

		Verbs: defaultVerbs(),

		EventTriggers: []EventTrigger{
			{
				Type:     common.EventAcquisition,
				Phrases:  []string{"acquired", "bought", "purchased", "acquisition of", "acquires", "buying"},
				Requires: []common.EntityType{company, org},
			},
			{
				Type:     common.EventProductLaunch,
				Phrases:  []string{"launched", "released", "introduced", "unveiled", "announced"},
				Requires: []common.EntityType{product, company, org},
			},
			{
				Type:     common.EventLeadershipChange,
				Phrases:  []string{"appointed", "named", "became ceo", "stepped down", "resigned", "hired as"},
				Requires: []common.EntityType{person, company, org},
			},
			{
				Type:     common.EventConference,
				Phrases:  []string{"conference", "summit", "keynote", "presentation at", "speaking at"},
				Requires: []common.EntityType{event},
			},
			{
				Type:     common.EventFundingRound,
				Phrases:  []string{"raised", "funding round", "investment", "series a", "series b", "venture capital"},
				Requires: []common.EntityType{company, org},
			},
		},

		PastCopulas: []string{"was", "were", "had been", "former", "formerly", "previously"},

		StructuralLabels: map[string]common.EntityType{
			"PERSON":       person,
			"PER":          person,
			"ORG":          company,
			"COMPANY":      company,
			"ORGANIZATION": org,
			"GPE":          loc,
			"LOC":          loc,
			"LOCATION":     loc,
			"PRODUCT":      product,
			"EVENT":        event,
			"FAC":          fac,
			"FACILITY":     fac,
			"WORK_OF_ART":  common.EntityWorkOfArt,
		},
		MetadataLabels: map[string]common.MetadataKind{
			"DATE":       common.MetadataDate,
			"TIME":       common.MetadataDate,
			"MONEY":      common.MetadataAmount,
			"PERCENT":    common.MetadataPercentage,
			"CARDINAL":   common.MetadataQuantity,
			"QUANTITY":   common.MetadataQuantity,
			"ORDINAL":    common.MetadataOrdinal,
			"AMOUNT":     common.MetadataAmount,
			"PERCENTAGE": common.MetadataPercentage,
		},

		KnownCompanies: []string{
			"alibaba", "amazon", "google", "microsoft", "apple", "facebook", "meta",
			"tesla", "spacex", "twitter", "x", "netflix", "uber", "airbnb",
			"samsung", "sony", "intel", "amd", "nvidia", "oracle", "ibm",
			"tencent", "baidu", "salesforce", "cisco", "huawei", "xiaomi",
		},
		KnownProducts: []string{
			"kindle", "echo", "fire tv", "fire stick", "alexa", "prime",
			"iphone", "ipad", "macbook", "airpods", "apple watch", "imac", "mac",
			"windows", "xbox", "surface", "office", "azure",
			"android", "chrome", "gmail", "google maps", "pixel",
			"playstation", "ps5", "nintendo switch", "tesla model s", "tesla model 3",
		},
		ForceDetect: []string{"echo", "alexa", "siri", "cortana"},
		OrgSuffixes: []string{
			" Inc.", " Inc", " LLC", " Corp.", " Corporation", " Ltd.", " Limited", " Co.",
		},
		LocationAbbreviations: map[string]string{
			"U.S.":   "United States",
			"U.S.A.": "United States",
			"US":     "United States",
			"USA":    "United States",
			"U.K.":   "United Kingdom",
			"UK":     "United Kingdom",
		},
		OrganizationWords: []string{
			"university", "institute", "foundation", "agency", "association",
			"committee", "commission", "council", "ministry", "department",
			"school", "college", "society", "union", "federation",
		},
	}
}

func defaultVerbs() []VerbRule {
	return []VerbRule{
		{Verb: "founded", Relation: founded, Score: 0.95},
		{Verb: "co-founded", Relation: founded, Score: 0.95},
		{Verb: "cofounded", Relation: founded, Score: 0.95},
		{Verb: "founds", Relation: founded, Score: 0.9},
		{Verb: "established", Relation: founded, Score: 0.85},
		{Verb: "establishes", Relation: founded, Score: 0.85},
		{Verb: "started", Relation: founded, Score: 0.65},
		{Verb: "created", Relation: founded, Score: 0.6},

		{Verb: "acquired", Relation: acquired, Score: 0.95},
		{Verb: "acquires", Relation: acquired, Score: 0.95},
		{Verb: "acquire", Relation: acquired, Score: 0.9},
		{Verb: "bought", Relation: acquired, Score: 0.9},
		{Verb: "buys", Relation: acquired, Score: 0.9},
		{Verb: "purchased", Relation: acquired, Score: 0.9},
		{Verb: "purchases", Relation: acquired, Score: 0.9},
		{Verb: "took over", Relation: acquired, Score: 0.85},
		{Verb: "takes over", Relation: acquired, Score: 0.85},
		{Verb: "absorbed", Relation: acquired, Score: 0.7},

		{Verb: "competes with", Relation: competes, Score: 0.85},
		{Verb: "competed with", Relation: competes, Score: 0.85},
		{Verb: "compete with", Relation: competes, Score: 0.85},
		{Verb: "competes against", Relation: competes, Score: 0.85},
		{Verb: "rivals", Relation: competes, Score: 0.8},
		{Verb: "challenges", Relation: competes, Score: 0.6},
		{Verb: "sued", Relation: competes, Score: 0.55},
		{Verb: "beat", Relation: competes, Score: 0.5},

		{Verb: "collaborates with", Relation: collaborates, Score: 0.85},
		{Verb: "collaborated with", Relation: collaborates, Score: 0.85},
		{Verb: "partnered with", Relation: collaborates, Score: 0.85},
		{Verb: "partners with", Relation: collaborates, Score: 0.85},
		{Verb: "teamed with", Relation: collaborates, Score: 0.8},
		{Verb: "cooperates with", Relation: collaborates, Score: 0.8},
		{Verb: "allied with", Relation: collaborates, Score: 0.75},
		{Verb: "works with", Relation: collaborates, Score: 0.5},

		{Verb: "works at", Relation: employedBy, Score: 0.8},
		{Verb: "works for", Relation: employedBy, Score: 0.8},
		{Verb: "worked at", Relation: employedBy, Score: 0.75},
		{Verb: "worked for", Relation: employedBy, Score: 0.75},
		{Verb: "joined", Relation: employedBy, Score: 0.7},
		{Verb: "joins", Relation: employedBy, Score: 0.7},
		{Verb: "employs", Relation: employedBy, Score: 0.85, Reversed: true},
		{Verb: "employed", Relation: employedBy, Score: 0.8, Reversed: true},
		{Verb: "hired", Relation: employedBy, Score: 0.8, Reversed: true},
		{Verb: "hires", Relation: employedBy, Score: 0.8, Reversed: true},

		{Verb: "leads", Relation: ceoOf, Score: 0.65},
		{Verb: "heads", Relation: ceoOf, Score: 0.65},
		{Verb: "runs", Relation: ceoOf, Score: 0.6},
		{Verb: "led", Relation: formerCEOOf, Score: 0.6},
		{Verb: "headed", Relation: formerCEOOf, Score: 0.6},

		{Verb: "produces", Relation: produces, Score: 0.85},
		{Verb: "produced", Relation: produces, Score: 0.8},
		{Verb: "manufactures", Relation: produces, Score: 0.9},
		{Verb: "manufactured", Relation: produces, Score: 0.85},
		{Verb: "makes", Relation: produces, Score: 0.7},
		{Verb: "made", Relation: produces, Score: 0.65},
		{Verb: "builds", Relation: produces, Score: 0.75},
		{Verb: "built", Relation: produces, Score: 0.7},
		{Verb: "sells", Relation: produces, Score: 0.7},
		{Verb: "offers", Relation: produces, Score: 0.6},

		{Verb: "released", Relation: released, Score: 0.85},
		{Verb: "releases", Relation: released, Score: 0.85},
		{Verb: "launched", Relation: released, Score: 0.85},
		{Verb: "launches", Relation: released, Score: 0.85},
		{Verb: "unveiled", Relation: released, Score: 0.85},
		{Verb: "unveils", Relation: released, Score: 0.85},
		{Verb: "introduced", Relation: released, Score: 0.8},
		{Verb: "introduces", Relation: released, Score: 0.8},
		{Verb: "debuted", Relation: released, Score: 0.8},
		{Verb: "shipped", Relation: released, Score: 0.7},
		{Verb: "announced", Relation: released, Score: 0.6},

		{Verb: "develops", Relation: develops, Score: 0.85},
		{Verb: "developed", Relation: develops, Score: 0.85},
		{Verb: "designs", Relation: develops, Score: 0.75},
		{Verb: "designed", Relation: develops, Score: 0.75},
		{Verb: "engineered", Relation: develops, Score: 0.75},

		{Verb: "operates", Relation: operates, Score: 0.75},
		{Verb: "operated", Relation: operates, Score: 0.7},
		{Verb: "manages", Relation: operates, Score: 0.6},
		{Verb: "has", Relation: operates, Score: 0.45},
		{Verb: "have", Relation: operates, Score: 0.45},

		{Verb: "headquartered in", Relation: hqIn, Score: 0.9},
		{Verb: "based in", Relation: locatedIn, Score: 0.8},
		{Verb: "located in", Relation: locatedIn, Score: 0.85},
		{Verb: "operates in", Relation: locatedIn, Score: 0.7},
		{Verb: "moved to", Relation: locatedIn, Score: 0.6},
		{Verb: "relocated to", Relation: locatedIn, Score: 0.7},

		{Verb: "invested in", Relation: investedIn, Score: 0.85},
		{Verb: "invests in", Relation: investedIn, Score: 0.85},
		{Verb: "backed", Relation: investedIn, Score: 0.7},
		{Verb: "funded", Relation: investedIn, Score: 0.75},
		{Verb: "financed", Relation: investedIn, Score: 0.75},

		{Verb: "owns", Relation: subsidiaryOf, Score: 0.75, Reversed: true},
		{Verb: "owned", Relation: subsidiaryOf, Score: 0.7, Reversed: true},
	}
}
