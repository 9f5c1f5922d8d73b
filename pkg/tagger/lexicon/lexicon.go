// Package lexicon implements an offline, deterministic tagger built from
// gazetteers, regular expressions and a shallow dependency heuristic. It is
// the default tagging capability and needs no model or network access.
package lexicon

import (
	"context"
	"sort"
	"strings"

	"github.com/OFFIS-RIT/kgraph/backend/internal/util"
	"github.com/OFFIS-RIT/kgraph/backend/pkg/common"
	"github.com/OFFIS-RIT/kgraph/backend/pkg/rules"
)

// Tagger is safe for concurrent use; it holds no mutable state after New.
type Tagger struct {
	rules      *rules.Set
	multiwords []multiword
	verbs      map[string]struct{}
}

// New creates a lexicon tagger whose gazetteers and verb vocabulary are
// seeded from the rule set. A nil set falls back to rules.Default().
func New(r *rules.Set) *Tagger {
	if r == nil {
		r = rules.Default()
	}
	t := &Tagger{
		rules: r,
		verbs: make(map[string]struct{}),
	}
	for _, v := range r.Verbs {
		first, _, _ := strings.Cut(strings.ToLower(v.Verb), " ")
		t.verbs[first] = struct{}{}
	}
	for v := range commonVerbs {
		t.verbs[v] = struct{}{}
	}
	t.buildMultiwords()
	return t
}

// Tag cleans the text and returns spans, sentences and dependency arcs.
// Offsets refer to the cleaned text.
func (t *Tagger) Tag(ctx context.Context, text string) (*common.TaggedDocument, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	clean := util.CleanText(text)
	doc := &common.TaggedDocument{Text: clean}
	if clean == "" {
		return doc, nil
	}

	for _, b := range splitSentences(clean) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		sentence, spans := t.tagSentence(clean[b.start:b.end], b.start)
		doc.Sentences = append(doc.Sentences, sentence)
		doc.Spans = append(doc.Spans, spans...)
	}

	sort.SliceStable(doc.Spans, func(i, j int) bool { return doc.Spans[i].Start < doc.Spans[j].Start })
	return doc, nil
}

func (t *Tagger) tagSentence(text string, offset int) (common.Sentence, []common.Span) {
	words := tokenize(text, offset)

	chunks := t.matchMultiwords(words)
	taken := make([]boundary, 0, len(chunks))
	for _, c := range chunks {
		taken = append(taken, boundary{start: words[c.first].start, end: words[c.last].end})
	}

	metaSpans := findMetadata(text, offset, taken)
	for i := range words {
		for m, s := range metaSpans {
			if words[i].start >= s.Start && words[i].end <= s.End {
				words[i].meta = m
				break
			}
		}
	}

	chunks = t.chunkCapitalized(words, chunks)

	spans := make([]common.Span, 0, len(chunks)+len(metaSpans))
	for _, c := range chunks {
		start, end := words[c.first].start, words[c.last].end
		spans = append(spans, common.Span{
			Text:  text[start-offset : end-offset],
			Start: start,
			End:   end,
			Label: c.label,
		})
	}
	spans = append(spans, metaSpans...)

	sentence := common.Sentence{
		Text:   text,
		Start:  offset,
		End:    offset + len(text),
		Tokens: t.parse(words, chunks),
	}
	return sentence, spans
}
