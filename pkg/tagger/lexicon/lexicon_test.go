package lexicon

import (
	"context"
	"reflect"
	"testing"

	"github.com/OFFIS-RIT/kgraph/backend/pkg/common"
)

func tagText(t *testing.T, text string) *common.TaggedDocument {
	t.Helper()
	doc, err := New(nil).Tag(context.Background(), text)
	if err != nil {
		t.Fatalf("Tag() error = %v", err)
	}
	return doc
}

func spanLabels(doc *common.TaggedDocument) []string {
	var out []string
	for _, s := range doc.Spans {
		out = append(out, s.Text+"/"+s.Label)
	}
	return out
}

func findToken(t *testing.T, s common.Sentence, text string) int {
	t.Helper()
	for i, tok := range s.Tokens {
		if tok.Text == text {
			return i
		}
	}
	t.Fatalf("token %q not found", text)
	return -1
}

func TestTag_Spans(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "founder sentence",
			text: "Steve Jobs founded Apple in 1976.",
			want: []string{"Steve Jobs/PERSON", "Apple/ORG", "1976/DATE"},
		},
		{
			name: "acquisition with money",
			text: "Apple acquired Beats for $3 billion in 2014.",
			want: []string{"Apple/ORG", "Beats/ORG", "$3 billion/MONEY", "2014/DATE"},
		},
		{
			name: "only a date",
			text: "It happened on May 5, 2020.",
			want: []string{"May 5, 2020/DATE"},
		},
		{
			name: "role noun is not an entity",
			text: "Tim Cook is CEO of Apple.",
			want: []string{"Tim Cook/PERSON", "Apple/ORG"},
		},
		{
			name: "company followed by product",
			text: "Amazon Echo sold well.",
			want: []string{"Amazon/ORG", "Echo/PRODUCT"},
		},
		{
			name: "multi word product keeps its number",
			text: "Tesla Model 3 sold well.",
			want: []string{"Tesla Model 3/PRODUCT"},
		},
		{
			name: "institution and location",
			text: "Stanford University is located in California.",
			want: []string{"Stanford University/ORG", "California/GPE"},
		},
		{
			name: "corporate suffix",
			text: "Beats Electronics LLC makes headphones.",
			want: []string{"Beats Electronics LLC/ORG"},
		},
		{
			name: "funding series designator",
			text: "Stripe raised $600 million in a Series B round.",
			want: []string{"Stripe/ORG", "$600 million/MONEY"},
		},
		{
			name: "location abbreviation",
			text: "Apple expanded in the U.S. market.",
			want: []string{"Apple/ORG", "U.S./GPE"},
		},
		{
			name: "percent",
			text: "Netflix grew 12% last year.",
			want: []string{"Netflix/ORG", "12%/PERCENT", "last year/DATE"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := spanLabels(tagText(t, tt.text))
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("spans = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestTag_Offsets(t *testing.T) {
	doc := tagText(t, "Apple acquired Beats for $3 billion in 2014.")
	want := []common.Span{
		{Text: "Apple", Start: 0, End: 5, Label: "ORG"},
		{Text: "Beats", Start: 15, End: 20, Label: "ORG"},
		{Text: "$3 billion", Start: 25, End: 35, Label: "MONEY"},
		{Text: "2014", Start: 39, End: 43, Label: "DATE"},
	}
	if !reflect.DeepEqual(doc.Spans, want) {
		t.Fatalf("spans = %#v, want %#v", doc.Spans, want)
	}
	for _, s := range doc.Spans {
		if doc.Text[s.Start:s.End] != s.Text {
			t.Errorf("span %q does not match text %q", s.Text, doc.Text[s.Start:s.End])
		}
	}
}

func TestTag_Sentences(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "two sentences",
			text: "Tim Cook is CEO of Apple. Steve Jobs was CEO of Apple.",
			want: []string{"Tim Cook is CEO of Apple.", "Steve Jobs was CEO of Apple."},
		},
		{
			name: "title does not split",
			text: "Dr. Smith joined Apple. It grew.",
			want: []string{"Dr. Smith joined Apple.", "It grew."},
		},
		{
			name: "lower case continuation does not split",
			text: "He moved to the U.S. in 2010.",
			want: []string{"He moved to the U.S. in 2010."},
		},
		{
			name: "whitespace is collapsed",
			text: "Apple grew.\n\n  Google   grew too!",
			want: []string{"Apple grew.", "Google grew too!"},
		},
		{
			name: "no terminator",
			text: "Apple grew",
			want: []string{"Apple grew"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := tagText(t, tt.text)
			var got []string
			for _, s := range doc.Sentences {
				got = append(got, s.Text)
				if doc.Text[s.Start:s.End] != s.Text {
					t.Errorf("sentence offsets %d:%d do not match %q", s.Start, s.End, s.Text)
				}
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("sentences = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestTag_EmptyInput(t *testing.T) {
	doc := tagText(t, "  \n\t ")
	if doc.Text != "" || len(doc.Sentences) != 0 || len(doc.Spans) != 0 {
		t.Fatalf("expected empty document, got %#v", doc)
	}
}

func TestTag_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := New(nil).Tag(ctx, "Apple grew."); err == nil {
		t.Fatal("expected error for cancelled context")
	}
}

func TestParse_ListObject(t *testing.T) {
	doc := tagText(t, "Amazon competes with Microsoft, Google, Alibaba.")
	s := doc.Sentences[0]

	verb := findToken(t, s, "competes")
	with := findToken(t, s, "with")
	microsoft := findToken(t, s, "Microsoft")
	google := findToken(t, s, "Google")
	alibaba := findToken(t, s, "Alibaba")
	amazon := findToken(t, s, "Amazon")

	checks := []struct {
		token int
		dep   string
		head  int
	}{
		{verb, "ROOT", verb},
		{amazon, "nsubj", verb},
		{with, "prep", verb},
		{microsoft, "pobj", with},
		{google, "conj", microsoft},
		{alibaba, "conj", google},
	}
	for _, c := range checks {
		tok := s.Tokens[c.token]
		if tok.Dep != c.dep || tok.Head != c.head {
			t.Errorf("%s: got %s->%d, want %s->%d", tok.Text, tok.Dep, tok.Head, c.dep, c.head)
		}
	}
	if s.Tokens[verb].POS != "VERB" || s.Tokens[verb].Lemma != "compete" {
		t.Errorf("competes: got %s/%s, want VERB/compete", s.Tokens[verb].POS, s.Tokens[verb].Lemma)
	}
}

func TestParse_DirectObject(t *testing.T) {
	doc := tagText(t, "Steve Jobs founded Apple in 1976.")
	s := doc.Sentences[0]

	verb := findToken(t, s, "founded")
	jobs := findToken(t, s, "Jobs")
	steve := findToken(t, s, "Steve")
	apple := findToken(t, s, "Apple")
	in := findToken(t, s, "in")
	year := findToken(t, s, "1976")

	checks := []struct {
		token int
		dep   string
		head  int
	}{
		{verb, "ROOT", verb},
		{jobs, "nsubj", verb},
		{steve, "compound", jobs},
		{apple, "dobj", verb},
		{in, "prep", verb},
		{year, "pobj", in},
	}
	for _, c := range checks {
		tok := s.Tokens[c.token]
		if tok.Dep != c.dep || tok.Head != c.head {
			t.Errorf("%s: got %s->%d, want %s->%d", tok.Text, tok.Dep, tok.Head, c.dep, c.head)
		}
	}
}

func TestParse_Passive(t *testing.T) {
	doc := tagText(t, "Apple was founded by Steve Jobs.")
	s := doc.Sentences[0]

	verb := findToken(t, s, "founded")
	was := findToken(t, s, "was")
	by := findToken(t, s, "by")
	apple := findToken(t, s, "Apple")
	jobs := findToken(t, s, "Jobs")

	checks := []struct {
		token int
		dep   string
		head  int
	}{
		{apple, "nsubjpass", verb},
		{was, "auxpass", verb},
		{by, "agent", verb},
		{jobs, "pobj", by},
	}
	for _, c := range checks {
		tok := s.Tokens[c.token]
		if tok.Dep != c.dep || tok.Head != c.head {
			t.Errorf("%s: got %s->%d, want %s->%d", tok.Text, tok.Dep, tok.Head, c.dep, c.head)
		}
	}
}

func TestParse_Copula(t *testing.T) {
	doc := tagText(t, "Tim Cook is CEO of Apple.")
	s := doc.Sentences[0]

	is := findToken(t, s, "is")
	cook := findToken(t, s, "Cook")
	if s.Tokens[is].Dep != "ROOT" || s.Tokens[is].POS != "AUX" {
		t.Errorf("is: got %s/%s, want ROOT/AUX", s.Tokens[is].Dep, s.Tokens[is].POS)
	}
	if s.Tokens[cook].Dep != "nsubj" || s.Tokens[cook].Head != is {
		t.Errorf("Cook: got %s->%d, want nsubj->%d", s.Tokens[cook].Dep, s.Tokens[cook].Head, is)
	}
	for _, tok := range s.Tokens {
		if tok.POS == "VERB" {
			t.Errorf("did not expect a verb, got %q", tok.Text)
		}
	}
}

func TestParse_TwoClauses(t *testing.T) {
	doc := tagText(t, "Apple acquired Beats and Google bought Nest.")
	s := doc.Sentences[0]

	acquired := findToken(t, s, "acquired")
	bought := findToken(t, s, "bought")
	google := findToken(t, s, "Google")
	beats := findToken(t, s, "Beats")
	nest := findToken(t, s, "Nest")

	if s.Tokens[beats].Dep != "dobj" || s.Tokens[beats].Head != acquired {
		t.Errorf("Beats: got %s->%d, want dobj->%d", s.Tokens[beats].Dep, s.Tokens[beats].Head, acquired)
	}
	if s.Tokens[google].Dep != "nsubj" || s.Tokens[google].Head != bought {
		t.Errorf("Google: got %s->%d, want nsubj->%d", s.Tokens[google].Dep, s.Tokens[google].Head, bought)
	}
	if s.Tokens[nest].Dep != "dobj" || s.Tokens[nest].Head != bought {
		t.Errorf("Nest: got %s->%d, want dobj->%d", s.Tokens[nest].Dep, s.Tokens[nest].Head, bought)
	}
}

func TestLemmatize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"founded", "found"},
		{"acquired", "acquire"},
		{"competes", "compete"},
		{"launches", "launch"},
		{"stepped", "step"},
		{"partnered", "partner"},
		{"was", "be"},
		{"has", "have"},
	}
	for _, tt := range tests {
		if got := lemmatize(tt.in, "VERB"); got != tt.want {
			t.Errorf("lemmatize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
