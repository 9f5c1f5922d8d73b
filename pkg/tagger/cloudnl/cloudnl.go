// Package cloudnl implements a tagger backed by the Google Cloud Natural
// Language API. One AnnotateText call per document returns sentences,
// tokens with dependency edges and entity mentions; metadata literals
// (dates, amounts, percentages) still come from the lexicon tagger.
package cloudnl

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	language "cloud.google.com/go/language/apiv1"
	"cloud.google.com/go/language/apiv1/languagepb"
	"github.com/googleapis/gax-go/v2"
	"google.golang.org/api/option"

	"github.com/OFFIS-RIT/kgraph/backend/internal/util"
	"github.com/OFFIS-RIT/kgraph/backend/pkg/common"
	"github.com/OFFIS-RIT/kgraph/backend/pkg/logger"
	"github.com/OFFIS-RIT/kgraph/backend/pkg/rules"
	"github.com/OFFIS-RIT/kgraph/backend/pkg/tagger/lexicon"
)

// Annotator is the part of the language client the tagger uses.
// *language.Client satisfies it.
type Annotator interface {
	AnnotateText(ctx context.Context, req *languagepb.AnnotateTextRequest, opts ...gax.CallOption) (*languagepb.AnnotateTextResponse, error)
}

// entityLabels maps API entity types onto raw tagger labels. Types that
// are literals (DATE, NUMBER, PRICE) or contact data are left to the
// lexicon or dropped.
var entityLabels = map[languagepb.Entity_Type]string{
	languagepb.Entity_PERSON:        "PERSON",
	languagepb.Entity_ORGANIZATION:  "ORG",
	languagepb.Entity_LOCATION:      "GPE",
	languagepb.Entity_EVENT:         "EVENT",
	languagepb.Entity_CONSUMER_GOOD: "PRODUCT",
	languagepb.Entity_WORK_OF_ART:   "WORK_OF_ART",
}

var partsOfSpeech = map[languagepb.PartOfSpeech_Tag]string{
	languagepb.PartOfSpeech_ADJ:   "ADJ",
	languagepb.PartOfSpeech_ADP:   "ADP",
	languagepb.PartOfSpeech_ADV:   "ADV",
	languagepb.PartOfSpeech_CONJ:  "CCONJ",
	languagepb.PartOfSpeech_DET:   "DET",
	languagepb.PartOfSpeech_NOUN:  "NOUN",
	languagepb.PartOfSpeech_NUM:   "NUM",
	languagepb.PartOfSpeech_PRON:  "PRON",
	languagepb.PartOfSpeech_PRT:   "PART",
	languagepb.PartOfSpeech_PUNCT: "PUNCT",
	languagepb.PartOfSpeech_VERB:  "VERB",
	languagepb.PartOfSpeech_AFFIX: "X",
	languagepb.PartOfSpeech_X:     "X",
}

// Tagger is safe for concurrent use.
type Tagger struct {
	client    Annotator
	structure *lexicon.Tagger
	rules     *rules.Set

	language string
	retries  int
	backoff  time.Duration
}

type Option func(*Tagger)

// WithLanguage sets the document language sent with every request. Empty
// lets the API detect it.
func WithLanguage(code string) Option {
	return func(t *Tagger) {
		t.language = code
	}
}

// WithRetries sets how often a failing request is tried.
func WithRetries(n int) Option {
	return func(t *Tagger) {
		if n > 0 {
			t.retries = n
		}
	}
}

// WithBackoff sets the delay before the first retry; it doubles after
// every failure.
func WithBackoff(d time.Duration) Option {
	return func(t *Tagger) {
		if d >= 0 {
			t.backoff = d
		}
	}
}

// NewClient connects to the Natural Language API. credentialsJSON holds a
// service account key; when empty the application default credentials are
// used.
func NewClient(ctx context.Context, credentialsJSON []byte) (*language.Client, error) {
	var opts []option.ClientOption
	if len(credentialsJSON) > 0 {
		opts = append(opts, option.WithCredentialsJSON(credentialsJSON))
	}
	client, err := language.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create natural language client: %w", err)
	}
	return client, nil
}

// New creates a tagger. The rule set seeds the lexicon tagger that cleans
// the text and finds metadata literals.
func New(client Annotator, r *rules.Set, opts ...Option) *Tagger {
	if r == nil {
		r = rules.Default()
	}
	t := &Tagger{
		client:    client,
		structure: lexicon.New(r),
		rules:     r,
		language:  "en",
		retries:   3,
		backoff:   time.Second,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Tag annotates the cleaned text. Sentences, tokens and entity spans come
// from the API; metadata spans from the lexicon.
func (t *Tagger) Tag(ctx context.Context, text string) (*common.TaggedDocument, error) {
	doc, err := t.structure.Tag(ctx, text)
	if err != nil {
		return nil, err
	}
	if doc.Text == "" {
		return doc, nil
	}

	start := time.Now()
	req := &languagepb.AnnotateTextRequest{
		Document: &languagepb.Document{
			Source:   &languagepb.Document_Content{Content: doc.Text},
			Type:     languagepb.Document_PLAIN_TEXT,
			Language: t.language,
		},
		Features: &languagepb.AnnotateTextRequest_Features{
			ExtractSyntax:   true,
			ExtractEntities: true,
		},
		EncodingType: languagepb.EncodingType_UTF8,
	}
	resp, err := util.RetryWithBackoff(ctx, t.retries, t.backoff, func(ctx context.Context) (*languagepb.AnnotateTextResponse, error) {
		return t.client.AnnotateText(ctx, req)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to annotate text: %w", err)
	}

	if sentences := buildSentences(doc.Text, resp); len(sentences) > 0 {
		doc.Sentences = sentences
	}

	var spans []common.Span
	for _, s := range doc.Spans {
		if _, ok := t.rules.MetadataKind(s.Label); ok {
			spans = append(spans, s)
		}
	}
	doc.Spans = append(spans, entitySpans(doc.Text, resp.GetEntities(), spans)...)
	sort.SliceStable(doc.Spans, func(i, j int) bool { return doc.Spans[i].Start < doc.Spans[j].Start })

	logger.Debug("[CloudNL Tagger] Tagged document", "sentences", len(doc.Sentences), "spans", len(doc.Spans), "duration", time.Since(start))
	return doc, nil
}

// buildSentences groups the response tokens into their sentences and
// rewrites document wide head indices into sentence local ones.
func buildSentences(text string, resp *languagepb.AnnotateTextResponse) []common.Sentence {
	var sentences []common.Sentence
	for _, s := range resp.GetSentences() {
		begin := int(s.GetText().GetBeginOffset())
		end := begin + len(s.GetText().GetContent())
		if begin < 0 || end > len(text) {
			logger.Warn("[CloudNL Tagger] Sentence outside of text", "begin", begin, "end", end)
			return nil
		}
		sentences = append(sentences, common.Sentence{Text: text[begin:end], Start: begin, End: end})
	}
	if len(sentences) == 0 {
		return nil
	}

	tokens := resp.GetTokens()
	first := make([]int, len(sentences))
	owner := make([]int, len(tokens))
	k := 0
	for i, tok := range tokens {
		begin := int(tok.GetText().GetBeginOffset())
		for k < len(sentences)-1 && begin >= sentences[k].End {
			k++
		}
		if len(sentences[k].Tokens) == 0 {
			first[k] = i
		}
		owner[i] = k
		sentences[k].Tokens = append(sentences[k].Tokens, convertToken(tok))
	}

	for i, tok := range tokens {
		s := &sentences[owner[i]]
		local := i - first[owner[i]]
		head := int(tok.GetDependencyEdge().GetHeadTokenIndex())
		if head < 0 || head >= len(tokens) || owner[head] != owner[i] {
			head = i
		}
		s.Tokens[local].Head = head - first[owner[i]]
	}
	for i := range sentences {
		markAgents(&sentences[i])
	}
	return sentences
}

func convertToken(tok *languagepb.Token) common.Token {
	begin := int(tok.GetText().GetBeginOffset())
	content := tok.GetText().GetContent()

	pos := partsOfSpeech[tok.GetPartOfSpeech().GetTag()]
	if pos == "" {
		pos = "X"
	}
	if pos == "NOUN" && tok.GetPartOfSpeech().GetProper() == languagepb.PartOfSpeech_PROPER {
		pos = "PROPN"
	}

	label := tok.GetDependencyEdge().GetLabel()
	dep := strings.ToLower(label.String())
	switch label {
	case languagepb.DependencyEdge_ROOT:
		dep = "ROOT"
	case languagepb.DependencyEdge_NN:
		dep = "compound"
	case languagepb.DependencyEdge_P:
		dep = "punct"
	case languagepb.DependencyEdge_AUX, languagepb.DependencyEdge_AUXPASS:
		pos = "AUX"
	}

	lemma := strings.ToLower(tok.GetLemma())
	if lemma == "" {
		lemma = strings.ToLower(content)
	}
	return common.Token{
		Text:  content,
		Start: begin,
		End:   begin + len(content),
		Lemma: lemma,
		POS:   pos,
		Dep:   dep,
	}
}

// markAgents relabels "by" under a passive verb as the agent arc.
func markAgents(s *common.Sentence) {
	for i, tok := range s.Tokens {
		if tok.Dep != "prep" || !strings.EqualFold(tok.Text, "by") {
			continue
		}
		if len(s.Children(tok.Head, "auxpass", "nsubjpass")) > 0 {
			s.Tokens[i].Dep = "agent"
		}
	}
}

// entitySpans turns proper mentions into spans. Mentions overlapping a
// kept span or an earlier mention are dropped.
func entitySpans(text string, entities []*languagepb.Entity, kept []common.Span) []common.Span {
	var out []common.Span
	overlaps := func(start, end int) bool {
		for _, group := range [][]common.Span{kept, out} {
			for _, s := range group {
				if start < s.End && s.Start < end {
					return true
				}
			}
		}
		return false
	}

	for _, e := range entities {
		label, ok := entityLabels[e.GetType()]
		if !ok {
			continue
		}
		for _, m := range e.GetMentions() {
			if m.GetType() != languagepb.EntityMention_PROPER {
				continue
			}
			start := int(m.GetText().GetBeginOffset())
			end := start + len(m.GetText().GetContent())
			if start < 0 || end > len(text) || start == end || overlaps(start, end) {
				continue
			}
			out = append(out, common.Span{Text: text[start:end], Start: start, End: end, Label: label})
		}
	}
	return out
}
