// Package llm implements a tagger that asks a language model for entity
// and metadata spans. Sentence boundaries and dependency arcs come from the
// lexicon tagger, so the relationship strategies see the same structure
// regardless of which tagger produced the spans.
package llm

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/OFFIS-RIT/kgraph/backend/internal/util"
	"github.com/OFFIS-RIT/kgraph/backend/pkg/ai"
	"github.com/OFFIS-RIT/kgraph/backend/pkg/common"
	"github.com/OFFIS-RIT/kgraph/backend/pkg/logger"
	"github.com/OFFIS-RIT/kgraph/backend/pkg/rules"
	"github.com/OFFIS-RIT/kgraph/backend/pkg/tagger/lexicon"

	"github.com/pkoukk/tiktoken-go"
	"golang.org/x/sync/errgroup"
)

// DefaultLabels are the span labels requested from the model.
var DefaultLabels = []string{
	"PERSON", "ORG", "ORGANIZATION", "GPE", "LOC", "PRODUCT", "EVENT", "FAC",
	"WORK_OF_ART", "DATE", "MONEY", "PERCENT", "CARDINAL", "ORDINAL",
}

type taggedSpan struct {
	Text  string `json:"text" jsonschema_description:"The exact span as it appears in the text, same spelling and casing"`
	Label string `json:"label" jsonschema_description:"One of the provided labels"`
}

type tagResponse struct {
	Spans []taggedSpan `json:"spans" jsonschema_description:"Every named entity and literal found in the text, in order of appearance"`
}

// Tagger is safe for concurrent use.
type Tagger struct {
	client    ai.GraphAIClient
	structure *lexicon.Tagger

	labels        []string
	encoding      string
	maxUnitTokens int
	parallel      int
	retries       int
	backoff       time.Duration
	countTokens   func(string) (int, error)
}

type Option func(*Tagger)

// WithLabels replaces the labels offered to the model.
func WithLabels(labels ...string) Option {
	return func(t *Tagger) {
		if len(labels) > 0 {
			t.labels = labels
		}
	}
}

// WithEncoding sets the tiktoken encoding used to size units.
func WithEncoding(encoding string) Option {
	return func(t *Tagger) {
		if encoding != "" {
			t.encoding = encoding
		}
	}
}

// WithMaxUnitTokens bounds the size of the text sent in one request.
func WithMaxUnitTokens(n int) Option {
	return func(t *Tagger) {
		if n > 0 {
			t.maxUnitTokens = n
		}
	}
}

// WithParallel bounds the number of units tagged concurrently.
func WithParallel(n int) Option {
	return func(t *Tagger) {
		if n > 0 {
			t.parallel = n
		}
	}
}

// WithRetries sets how often a failing unit is retried.
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

// WithTokenCounter replaces the tiktoken based token counter.
func WithTokenCounter(fn func(string) (int, error)) Option {
	return func(t *Tagger) {
		if fn != nil {
			t.countTokens = fn
		}
	}
}

// New creates an LLM tagger. The rule set seeds the lexicon tagger that
// provides sentence and dependency structure.
func New(client ai.GraphAIClient, r *rules.Set, opts ...Option) *Tagger {
	t := &Tagger{
		client:        client,
		structure:     lexicon.New(r),
		labels:        DefaultLabels,
		encoding:      ai.DefaultEncoding,
		maxUnitTokens: 1000,
		parallel:      4,
		retries:       3,
		backoff:       time.Second,
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.countTokens == nil {
		encoding := t.encoding
		t.countTokens = func(s string) (int, error) {
			enc, err := tiktoken.GetEncoding(encoding)
			if err != nil {
				return 0, err
			}
			return len(enc.Encode(s, nil, nil)), nil
		}
	}
	return t
}

// Tag cleans the text, derives sentence structure and replaces the lexicon
// spans with the spans returned by the model. Any unit that still fails
// after the configured retries fails the whole document.
func (t *Tagger) Tag(ctx context.Context, text string) (*common.TaggedDocument, error) {
	doc, err := t.structure.Tag(ctx, text)
	if err != nil {
		return nil, err
	}
	if doc.Text == "" {
		return doc, nil
	}

	units, err := t.units(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to split document into units: %w", err)
	}

	start := time.Now()
	results := make([][]common.Span, len(units))
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(t.parallel)
	for i, u := range units {
		g.Go(func() error {
			res, err := util.RetryWithBackoff(gCtx, t.retries, t.backoff, func(ctx context.Context) (tagResponse, error) {
				var res tagResponse
				err := t.client.GenerateCompletionWithFormat(
					ctx,
					"tag_entities",
					"Tag named entities and literals in a text.",
					u.text,
					&res,
					ai.WithSystemPrompts(t.systemPrompt()),
					ai.WithTemperature(0),
				)
				return res, err
			})
			if err != nil {
				return fmt.Errorf("failed to tag unit %d: %w", i, err)
			}
			results[i] = locate(u, res.Spans)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	doc.Spans = doc.Spans[:0]
	for _, spans := range results {
		doc.Spans = append(doc.Spans, spans...)
	}
	sort.SliceStable(doc.Spans, func(i, j int) bool { return doc.Spans[i].Start < doc.Spans[j].Start })

	logger.Debug("[LLM Tagger] Tagged document", "units", len(units), "spans", len(doc.Spans), "duration", time.Since(start))
	return doc, nil
}

func (t *Tagger) systemPrompt() string {
	return fmt.Sprintf(`You tag named entities and literals in business news text.
Use only these labels: %s.
ORG is a company, ORGANIZATION a non-commercial institution, GPE a country, state or city.
Return every occurrence in order of appearance and copy each span exactly as written.
Do not tag pronouns or generic nouns. Return an empty list when nothing matches.`,
		strings.Join(t.labels, ", "))
}

// unit is a run of whole sentences sent to the model in one request.
type unit struct {
	start int
	end   int
	text  string
}

// units groups consecutive sentences while the group stays within the
// token budget. A single sentence above the budget forms its own unit.
func (t *Tagger) units(doc *common.TaggedDocument) ([]unit, error) {
	sentences := doc.Sentences
	if len(sentences) == 0 {
		return []unit{{start: 0, end: len(doc.Text), text: doc.Text}}, nil
	}

	var units []unit
	cur := unit{start: -1}
	for _, s := range sentences {
		if cur.start < 0 {
			cur = unit{start: s.Start, end: s.End}
			continue
		}
		tokens, err := t.countTokens(doc.Text[cur.start:s.End])
		if err != nil {
			return nil, err
		}
		if tokens <= t.maxUnitTokens {
			cur.end = s.End
			continue
		}
		cur.text = doc.Text[cur.start:cur.end]
		units = append(units, cur)
		cur = unit{start: s.Start, end: s.End}
	}
	cur.text = doc.Text[cur.start:cur.end]
	return append(units, cur), nil
}

// locate maps the model's spans onto byte offsets of the document. Spans
// are searched in order, each after the previous match; a span that cannot
// be found from there is searched again from the unit start. Spans that
// would overlap an earlier match or cannot be found are dropped.
func locate(u unit, spans []taggedSpan) []common.Span {
	var out []common.Span
	cursor := 0
	for _, s := range spans {
		needle := strings.TrimSpace(s.Text)
		label := strings.ToUpper(strings.TrimSpace(s.Label))
		if needle == "" || label == "" {
			continue
		}

		at := findWord(u.text, needle, cursor)
		for at >= 0 && overlapsFound(out, u.start+at, u.start+at+len(needle)) {
			at = findWord(u.text, needle, at+1)
		}
		if at < 0 {
			at = findWord(u.text, needle, 0)
			for at >= 0 && overlapsFound(out, u.start+at, u.start+at+len(needle)) {
				at = findWord(u.text, needle, at+1)
			}
		}
		if at < 0 {
			logger.Debug("[LLM Tagger] Span not found in text", "text", needle, "label", label)
			continue
		}

		out = append(out, common.Span{
			Text:  u.text[at : at+len(needle)],
			Start: u.start + at,
			End:   u.start + at + len(needle),
			Label: label,
		})
		cursor = at + len(needle)
	}
	return out
}

// findWord returns the first index >= from where needle occurs with word
// boundaries on both sides, or -1.
func findWord(text, needle string, from int) int {
	for from <= len(text)-len(needle) {
		i := strings.Index(text[from:], needle)
		if i < 0 {
			return -1
		}
		i += from
		end := i + len(needle)
		if (i == 0 || !isWordByte(text[i-1])) && (end == len(text) || !isWordByte(text[end])) {
			return i
		}
		from = i + 1
	}
	return -1
}

func isWordByte(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c >= 0x80
}

func overlapsFound(spans []common.Span, start, end int) bool {
	for _, s := range spans {
		if start < s.End && s.Start < end {
			return true
		}
	}
	return false
}
