package graph

import (
	"strings"
	"testing"

	"github.com/OFFIS-RIT/kgraph/backend/pkg/common"
	"github.com/OFFIS-RIT/kgraph/backend/pkg/rules"
)

// taggedDoc builds a single-sentence document. labels alternates span text
// and label; each span is searched after the end of the previous one.
func taggedDoc(t *testing.T, text string, labels ...string) *common.TaggedDocument {
	t.Helper()
	doc := &common.TaggedDocument{Text: text}
	cursor := 0
	for i := 0; i+1 < len(labels); i += 2 {
		at := strings.Index(text[cursor:], labels[i])
		if at < 0 {
			t.Fatalf("span %q not found in %q", labels[i], text)
		}
		start := cursor + at
		end := start + len(labels[i])
		doc.Spans = append(doc.Spans, common.Span{Text: labels[i], Start: start, End: end, Label: labels[i+1]})
		cursor = end
	}
	return doc
}

func entitySet(n Normalized) map[common.EntityKey]string {
	out := make(map[common.EntityKey]string, len(n.Entities))
	for _, e := range n.Entities {
		out[e.Key()] = e.Text
	}
	return out
}

func TestNormalize_Corrections(t *testing.T) {
	r := rules.Default()

	tests := []struct {
		name  string
		text  string
		spans []string
		want  common.EntityKey
		label string
	}{
		{"suffix stripped", "Beats Electronics LLC was sold.", []string{"Beats Electronics LLC", "ORG"}, key("Beats Electronics", common.EntityCompany), "Beats Electronics"},
		{"stacked suffixes", "Acme Holdings, Inc. grew.", []string{"Acme Holdings, Inc.", "ORG"}, key("Acme Holdings", common.EntityCompany), "Acme Holdings"},
		{"known company tagged as place", "Amazon expanded.", []string{"Amazon", "GPE"}, key("Amazon", common.EntityCompany), "Amazon"},
		{"known product tagged as org", "The iPhone sold well.", []string{"iPhone", "ORG"}, key("iPhone", common.EntityProduct), "iPhone"},
		{"institution", "Stanford University hired her.", []string{"Stanford University", "ORG"}, key("Stanford University", common.EntityOrganization), "Stanford University"},
		{"abbreviated location", "Sales in the U.S. rose.", []string{"U.S.", "GPE"}, key("United States", common.EntityLocation), "United States"},
		{"lowercase name", "we met steve jobs.", []string{"steve jobs", "PERSON"}, key("Steve Jobs", common.EntityPerson), "Steve Jobs"},
		{"mixed case kept", "eBay grew.", []string{"eBay", "ORG"}, key("eBay", common.EntityCompany), "eBay"},
		{"whitespace collapsed", "Tim  Cook spoke.", []string{"Tim  Cook", "PERSON"}, key("Tim Cook", common.EntityPerson), "Tim Cook"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(r, taggedDoc(t, tt.text, tt.spans...), "doc-1")
			if len(got.Entities) != 1 {
				t.Fatalf("expected 1 entity, got %+v", got.Entities)
			}
			e := got.Entities[0]
			if e.Key() != tt.want {
				t.Errorf("key = %v, want %v", e.Key(), tt.want)
			}
			if e.Text != tt.label {
				t.Errorf("text = %q, want %q", e.Text, tt.label)
			}
			if e.Category != common.CategoryStructural {
				t.Errorf("category = %q", e.Category)
			}
		})
	}
}

func TestNormalize_MergesVariants(t *testing.T) {
	text := "Apple said Apple Inc. and apple grew."
	got := Normalize(rules.Default(), taggedDoc(t, text,
		"Apple", "ORG",
		"Apple Inc.", "ORG",
		"apple", "ORG",
	), "doc-1")

	if len(got.Entities) != 1 {
		t.Fatalf("expected 1 entity, got %+v", got.Entities)
	}
	if len(got.Mentions) != 3 {
		t.Fatalf("expected 3 mentions, got %d", len(got.Mentions))
	}
	e := got.Entities[0]
	if e.Text != "Apple" || e.StartChar != 0 || e.EndChar != 5 {
		t.Errorf("entity = %q %d:%d, want the first mention", e.Text, e.StartChar, e.EndChar)
	}
	if e.SourceSentence != text || e.DocumentID != "doc-1" {
		t.Errorf("provenance = %q / %q", e.SourceSentence, e.DocumentID)
	}
	for _, m := range got.Mentions {
		if m.Key != e.Key() || m.Text != "Apple" {
			t.Errorf("mention %+v does not resolve to %v", m, e.Key())
		}
	}
}

func TestNormalize_LabelsRouting(t *testing.T) {
	text := "Apple paid $3 billion on May 5, 2020 to Danish investors."
	got := Normalize(rules.Default(), taggedDoc(t, text,
		"Apple", "ORG",
		"$3 billion", "MONEY",
		"May 5, 2020", "DATE",
		"Danish", "NORP",
	), "doc-1")

	if len(got.Entities) != 1 || got.Entities[0].Text != "Apple" {
		t.Fatalf("entities = %+v, want only Apple", got.Entities)
	}
	want := []MetadataSpan{
		{Kind: common.MetadataAmount, Text: "$3 billion", Start: 11, End: 21},
		{Kind: common.MetadataDate, Text: "May 5, 2020", Start: 25, End: 36},
	}
	if len(got.Metadata) != len(want) {
		t.Fatalf("metadata = %+v, want %+v", got.Metadata, want)
	}
	for i := range want {
		if got.Metadata[i] != want[i] {
			t.Errorf("metadata[%d] = %+v, want %+v", i, got.Metadata[i], want[i])
		}
	}
}

func TestNormalize_ForceDetect(t *testing.T) {
	text := "Amazon sells the echo and Alexa."
	got := Normalize(rules.Default(), taggedDoc(t, text,
		"Amazon", "ORG",
		"Alexa", "PRODUCT",
	), "doc-1")

	entities := entitySet(got)
	if entities[key("Echo", common.EntityProduct)] != "Echo" {
		t.Errorf("expected forced Echo product, got %v", entities)
	}
	if len(got.Entities) != 3 {
		t.Fatalf("expected 3 entities, got %v", entities)
	}
	if got.Entities[1].Text != "Echo" {
		t.Errorf("entities not in text order: %v", got.Entities)
	}
}

func TestNormalize_SentenceAssignment(t *testing.T) {
	doc := taggedDoc(t, "Apple grew. Google shrank.",
		"Apple", "ORG",
		"Google", "ORG",
	)
	doc.Sentences = []common.Sentence{
		{Text: "Apple grew.", Start: 0, End: 11},
		{Text: "Google shrank.", Start: 12, End: 26},
	}

	got := Normalize(rules.Default(), doc, "doc-1")
	if len(got.Mentions) != 2 {
		t.Fatalf("expected 2 mentions, got %d", len(got.Mentions))
	}
	if got.Mentions[0].Sentence != 0 || got.Mentions[1].Sentence != 1 {
		t.Errorf("sentences = %d, %d", got.Mentions[0].Sentence, got.Mentions[1].Sentence)
	}
	if got.Entities[1].SourceSentence != "Google shrank." {
		t.Errorf("source sentence = %q", got.Entities[1].SourceSentence)
	}
}

func TestNormalize_Empty(t *testing.T) {
	got := Normalize(rules.Default(), &common.TaggedDocument{}, "doc-1")
	if len(got.Entities) != 0 || len(got.Mentions) != 0 || len(got.Metadata) != 0 {
		t.Fatalf("expected empty output, got %+v", got)
	}
	got = Normalize(rules.Default(), nil, "doc-1")
	if len(got.Entities) != 0 {
		t.Fatalf("expected empty output for nil document")
	}
}

func TestMentionContext(t *testing.T) {
	long := strings.Repeat("a", 300) + " Apple " + strings.Repeat("b", 300)
	start := strings.Index(long, "Apple")

	got := mentionContext(long, start, start+5)
	if len(got) > contextWindow {
		t.Fatalf("context length = %d, want <= %d", len(got), contextWindow)
	}
	if !strings.Contains(got, "Apple") {
		t.Errorf("context %q does not contain the mention", got)
	}

	short := "Apple grew."
	if got := mentionContext(short, 0, 5); got != short {
		t.Errorf("mentionContext() = %q, want %q", got, short)
	}

	multi := strings.Repeat("é", 150) + "Apple" + strings.Repeat("ü", 150)
	start = strings.Index(multi, "Apple")
	got = mentionContext(multi, start, start+5)
	if !strings.Contains(got, "Apple") || strings.ContainsRune(got, '�') {
		t.Errorf("context not cut at rune boundaries: %q", got)
	}
}

func TestCollectMetadata(t *testing.T) {
	spans := []MetadataSpan{
		{Kind: common.MetadataDate, Text: "1976", Sentence: 0},
		{Kind: common.MetadataAmount, Text: "$3 billion", Sentence: 2},
		{Kind: common.MetadataDate, Text: "2014", Sentence: 2},
		{Kind: common.MetadataDate, Text: "May 2014", Sentence: 2},
	}

	got := CollectMetadata(spans, 3)
	if len(got) != 3 {
		t.Fatalf("expected 3 sentences, got %d", len(got))
	}
	if got[1] == nil || len(got[1]) != 0 {
		t.Errorf("sentence without metadata = %v, want empty non-nil map", got[1])
	}
	if got[0].First(common.MetadataDate) != "1976" {
		t.Errorf("sentence 0 date = %q", got[0].First(common.MetadataDate))
	}
	if dates := got[2][common.MetadataDate]; len(dates) != 2 || dates[0] != "2014" || dates[1] != "May 2014" {
		t.Errorf("sentence 2 dates = %v", dates)
	}

	doc := DocumentMetadata(got)
	if dates := doc[common.MetadataDate]; len(dates) != 3 || dates[0] != "1976" {
		t.Errorf("document dates = %v", dates)
	}
	if doc.First(common.MetadataAmount) != "$3 billion" {
		t.Errorf("document amount = %q", doc.First(common.MetadataAmount))
	}
}
