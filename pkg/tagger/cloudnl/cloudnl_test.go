package cloudnl

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"cloud.google.com/go/language/apiv1/languagepb"
	"github.com/googleapis/gax-go/v2"

	"github.com/OFFIS-RIT/kgraph/backend/pkg/common"
	"github.com/OFFIS-RIT/kgraph/backend/pkg/graph"
)

// fakeAnnotator returns a canned response and records requests.
type fakeAnnotator struct {
	mu       sync.Mutex
	resp     *languagepb.AnnotateTextResponse
	failures int
	err      error
	requests []*languagepb.AnnotateTextRequest
}

func (f *fakeAnnotator) AnnotateText(ctx context.Context, req *languagepb.AnnotateTextRequest, opts ...gax.CallOption) (*languagepb.AnnotateTextResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	if f.failures > 0 {
		f.failures--
		return nil, f.err
	}
	if f.resp == nil {
		return nil, f.err
	}
	return f.resp, nil
}

func span(text string, begin int) *languagepb.TextSpan {
	return &languagepb.TextSpan{Content: text, BeginOffset: int32(begin)}
}

func token(text string, begin int, tag languagepb.PartOfSpeech_Tag, proper bool, label languagepb.DependencyEdge_Label, head int, lemma string) *languagepb.Token {
	pos := &languagepb.PartOfSpeech{Tag: tag}
	if proper {
		pos.Proper = languagepb.PartOfSpeech_PROPER
	}
	if lemma == "" {
		lemma = text
	}
	return &languagepb.Token{
		Text:           span(text, begin),
		PartOfSpeech:   pos,
		DependencyEdge: &languagepb.DependencyEdge{HeadTokenIndex: int32(head), Label: label},
		Lemma:          lemma,
	}
}

func entity(name string, typ languagepb.Entity_Type, begin int) *languagepb.Entity {
	return &languagepb.Entity{
		Name: name,
		Type: typ,
		Mentions: []*languagepb.EntityMention{
			{Text: span(name, begin), Type: languagepb.EntityMention_PROPER},
		},
	}
}

const passiveText = "Beats was bought by Apple in 2014. Tim Cook leads it."

func passiveResponse() *languagepb.AnnotateTextResponse {
	return &languagepb.AnnotateTextResponse{
		Sentences: []*languagepb.Sentence{
			{Text: span("Beats was bought by Apple in 2014.", 0)},
			{Text: span("Tim Cook leads it.", 35)},
		},
		Tokens: []*languagepb.Token{
			token("Beats", 0, languagepb.PartOfSpeech_NOUN, true, languagepb.DependencyEdge_NSUBJPASS, 2, ""),
			token("was", 6, languagepb.PartOfSpeech_VERB, false, languagepb.DependencyEdge_AUXPASS, 2, "be"),
			token("bought", 10, languagepb.PartOfSpeech_VERB, false, languagepb.DependencyEdge_ROOT, 2, "buy"),
			token("by", 17, languagepb.PartOfSpeech_ADP, false, languagepb.DependencyEdge_PREP, 2, ""),
			token("Apple", 20, languagepb.PartOfSpeech_NOUN, true, languagepb.DependencyEdge_POBJ, 3, ""),
			token("in", 26, languagepb.PartOfSpeech_ADP, false, languagepb.DependencyEdge_PREP, 2, ""),
			token("2014", 29, languagepb.PartOfSpeech_NUM, false, languagepb.DependencyEdge_POBJ, 5, ""),
			token(".", 33, languagepb.PartOfSpeech_PUNCT, false, languagepb.DependencyEdge_P, 2, ""),
			token("Tim", 35, languagepb.PartOfSpeech_NOUN, true, languagepb.DependencyEdge_NN, 9, ""),
			token("Cook", 39, languagepb.PartOfSpeech_NOUN, true, languagepb.DependencyEdge_NSUBJ, 10, ""),
			token("leads", 44, languagepb.PartOfSpeech_VERB, false, languagepb.DependencyEdge_ROOT, 10, "lead"),
			token("it", 50, languagepb.PartOfSpeech_PRON, false, languagepb.DependencyEdge_DOBJ, 10, ""),
			token(".", 52, languagepb.PartOfSpeech_PUNCT, false, languagepb.DependencyEdge_P, 10, ""),
		},
		Entities: []*languagepb.Entity{
			entity("Beats", languagepb.Entity_ORGANIZATION, 0),
			entity("Apple", languagepb.Entity_ORGANIZATION, 20),
			entity("2014", languagepb.Entity_DATE, 29),
			entity("Tim Cook", languagepb.Entity_PERSON, 35),
			{
				Name:     "company",
				Type:     languagepb.Entity_ORGANIZATION,
				Mentions: []*languagepb.EntityMention{{Text: span("it", 50), Type: languagepb.EntityMention_COMMON}},
			},
		},
	}
}

func TestTag_UsesAnnotations(t *testing.T) {
	client := &fakeAnnotator{resp: passiveResponse()}
	doc, err := New(client, nil, WithBackoff(0)).Tag(context.Background(), passiveText)
	if err != nil {
		t.Fatalf("Tag() error = %v", err)
	}

	want := []common.Span{
		{Text: "Beats", Start: 0, End: 5, Label: "ORG"},
		{Text: "Apple", Start: 20, End: 25, Label: "ORG"},
		{Text: "2014", Start: 29, End: 33, Label: "DATE"},
		{Text: "Tim Cook", Start: 35, End: 43, Label: "PERSON"},
	}
	if len(doc.Spans) != len(want) {
		t.Fatalf("got %d spans %+v, want %d", len(doc.Spans), doc.Spans, len(want))
	}
	for i := range want {
		if doc.Spans[i] != want[i] {
			t.Errorf("span[%d] = %+v, want %+v", i, doc.Spans[i], want[i])
		}
	}

	if len(doc.Sentences) != 2 {
		t.Fatalf("expected 2 sentences, got %d", len(doc.Sentences))
	}
	second := doc.Sentences[1]
	if second.Start != 35 || len(second.Tokens) != 5 {
		t.Fatalf("second sentence = start %d, %d tokens", second.Start, len(second.Tokens))
	}

	tests := []struct {
		sentence int
		token    int
		pos      string
		dep      string
		head     int
	}{
		{0, 0, "PROPN", "nsubjpass", 2},
		{0, 1, "AUX", "auxpass", 2},
		{0, 2, "VERB", "ROOT", 2},
		{0, 3, "ADP", "agent", 2},
		{0, 5, "ADP", "prep", 2},
		{0, 7, "PUNCT", "punct", 2},
		{1, 0, "PROPN", "compound", 1},
		{1, 2, "VERB", "ROOT", 2},
		{1, 3, "PRON", "dobj", 2},
	}
	for _, tt := range tests {
		tok := doc.Sentences[tt.sentence].Tokens[tt.token]
		if tok.POS != tt.pos || tok.Dep != tt.dep || tok.Head != tt.head {
			t.Errorf("token %q = %s/%s/%d, want %s/%s/%d", tok.Text, tok.POS, tok.Dep, tok.Head, tt.pos, tt.dep, tt.head)
		}
	}

	req := client.requests[0]
	if !req.GetFeatures().GetExtractSyntax() || !req.GetFeatures().GetExtractEntities() {
		t.Errorf("features = %+v, want syntax and entities", req.GetFeatures())
	}
	if req.GetEncodingType() != languagepb.EncodingType_UTF8 {
		t.Errorf("encoding = %s, want UTF8", req.GetEncodingType())
	}
}

func TestTag_FeedsRelationshipStrategies(t *testing.T) {
	client, err := graph.NewGraphClient(graph.NewGraphClientParams{
		Tagger: New(&fakeAnnotator{resp: passiveResponse()}, nil, WithBackoff(0)),
	})
	if err != nil {
		t.Fatalf("NewGraphClient() error = %v", err)
	}
	res, err := client.Process(context.Background(), passiveText, "doc-1")
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	apple := common.NewEntityKey("Apple", common.EntityCompany)
	beats := common.NewEntityKey("Beats", common.EntityCompany)
	for _, r := range res.Relationships {
		if r.Source == apple && r.Type == common.RelationAcquired && r.Target == beats {
			if r.Metadata["date"] != "2014" {
				t.Errorf("metadata = %v, want date 2014", r.Metadata)
			}
			return
		}
	}
	t.Fatalf("missing Apple ACQUIRED Beats in %+v", res.Relationships)
}

func TestTag_Retries(t *testing.T) {
	client := &fakeAnnotator{resp: passiveResponse(), failures: 2, err: errors.New("unavailable")}
	if _, err := New(client, nil, WithRetries(3), WithBackoff(0)).Tag(context.Background(), passiveText); err != nil {
		t.Fatalf("Tag() error = %v", err)
	}
	if len(client.requests) != 3 {
		t.Errorf("requests = %d, want 3", len(client.requests))
	}

	client = &fakeAnnotator{err: errors.New("permission denied")}
	_, err := New(client, nil, WithRetries(2), WithBackoff(0)).Tag(context.Background(), passiveText)
	if err == nil || !strings.Contains(err.Error(), "permission denied") {
		t.Fatalf("Tag() error = %v, want permission denied", err)
	}
}

func TestTag_EmptyTextSkipsRequest(t *testing.T) {
	client := &fakeAnnotator{resp: passiveResponse()}
	doc, err := New(client, nil).Tag(context.Background(), "   ")
	if err != nil {
		t.Fatalf("Tag() error = %v", err)
	}
	if doc.Text != "" || len(client.requests) != 0 {
		t.Errorf("text = %q, requests = %d", doc.Text, len(client.requests))
	}
}
