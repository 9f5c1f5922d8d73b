package graph

import (
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/OFFIS-RIT/kgraph/backend/internal/util"
	"github.com/OFFIS-RIT/kgraph/backend/pkg/common"
	"github.com/OFFIS-RIT/kgraph/backend/pkg/logger"
	"github.com/OFFIS-RIT/kgraph/backend/pkg/rules"
)

const contextWindow = 200

// MetadataSpan is a metadata literal together with the sentence it occurs in.
type MetadataSpan struct {
	Kind     common.MetadataKind
	Text     string
	Start    int
	End      int
	Sentence int
}

// Normalized is the output of Normalize. Entities are unique by key and in
// order of first mention; Mentions hold every occurrence.
type Normalized struct {
	Entities []common.Entity
	Mentions []common.Mention
	Metadata []MetadataSpan
}

// Normalize maps the raw spans of a tagged document onto structural entities
// and metadata spans.
//
// Spans with a label that maps to neither are dropped. Display names are
// cleaned, organisational suffixes are removed and type corrections from the
// rule set are applied before the identity key is computed, so "Apple",
// "Apple Inc." and "apple" collapse into one COMPANY entity. The first
// mention of a key defines offsets and context.
func Normalize(r *rules.Set, doc *common.TaggedDocument, documentID string) Normalized {
	var out Normalized
	if doc == nil || doc.Text == "" {
		return out
	}

	sentences := documentSentences(doc)
	spans := append([]common.Span(nil), doc.Spans...)
	spans = append(spans, forceDetect(r, doc.Text, spans)...)
	sort.SliceStable(spans, func(i, j int) bool { return spans[i].Start < spans[j].Start })

	seen := make(map[common.EntityKey]struct{})
	for _, span := range spans {
		sentence := sentenceIndex(sentences, span.Start)

		if kind, ok := r.MetadataKind(span.Label); ok {
			out.Metadata = append(out.Metadata, MetadataSpan{
				Kind:     kind,
				Text:     util.CleanText(span.Text),
				Start:    span.Start,
				End:      span.End,
				Sentence: sentence,
			})
			continue
		}

		t, ok := r.StructuralType(span.Label)
		if !ok {
			logger.Debug("[Normalizer] Dropped span with unknown label", "text", span.Text, "label", span.Label)
			continue
		}

		name, t := canonicalName(r, span.Text, t)
		if name == "" {
			continue
		}
		key := common.NewEntityKey(name, t)
		out.Mentions = append(out.Mentions, common.Mention{
			Key:      key,
			Text:     name,
			Start:    span.Start,
			End:      span.End,
			Sentence: sentence,
		})

		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}

		source := ""
		if sentence >= 0 && sentence < len(sentences) {
			source = sentences[sentence].Text
		}
		out.Entities = append(out.Entities, common.Entity{
			Text:           name,
			Type:           t,
			Category:       common.CategoryStructural,
			SourceSentence: source,
			DocumentID:     documentID,
			StartChar:      span.Start,
			EndChar:        span.End,
			Context:        mentionContext(doc.Text, span.Start, span.End),
		})
	}

	return out
}

// canonicalName returns the display form of a span and its corrected type.
func canonicalName(r *rules.Set, text string, t common.EntityType) (string, common.EntityType) {
	name := util.CleanText(text)

	if t == common.EntityLocation {
		if expanded, ok := r.LocationAbbreviations[name]; ok {
			name = expanded
		}
	}

	if t == common.EntityCompany || t == common.EntityOrganization {
		name = stripSuffixes(name, r.OrgSuffixes)
	}

	switch {
	case r.IsKnownProduct(name):
		t = common.EntityProduct
	case t == common.EntityLocation && r.IsKnownCompany(name):
		t = common.EntityCompany
	case t == common.EntityCompany && !r.IsKnownCompany(name) && hasOrganizationWord(r, name):
		t = common.EntityOrganization
	}

	if name == strings.ToLower(name) {
		name = titleCase(name)
	}
	return name, t
}

func stripSuffixes(name string, suffixes []string) string {
	for changed := true; changed; {
		changed = false
		lower := strings.ToLower(name)
		for _, suffix := range suffixes {
			if suffix == "" || len(suffix) >= len(name) {
				continue
			}
			if strings.HasSuffix(lower, strings.ToLower(suffix)) {
				name = strings.TrimRight(name[:len(name)-len(suffix)], ", ")
				changed = true
				break
			}
		}
	}
	return name
}

func hasOrganizationWord(r *rules.Set, name string) bool {
	for _, w := range strings.Fields(name) {
		if r.IsOrganizationWord(strings.Trim(w, ".,")) {
			return true
		}
	}
	return false
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToUpper(r)) + w[size:]
	}
	return strings.Join(words, " ")
}

// forceDetect adds PRODUCT spans for listed names the tagger did not cover.
func forceDetect(r *rules.Set, text string, spans []common.Span) []common.Span {
	var added []common.Span
	for _, name := range r.ForceDetect {
		if name == "" {
			continue
		}
		re, err := regexp.Compile(`(?i)\b` + regexp.QuoteMeta(name) + `\b`)
		if err != nil {
			continue
		}
		for _, loc := range re.FindAllStringIndex(text, -1) {
			if overlaps(loc[0], loc[1], spans) || overlaps(loc[0], loc[1], added) {
				continue
			}
			added = append(added, common.Span{
				Text:  titleCase(strings.ToLower(text[loc[0]:loc[1]])),
				Start: loc[0],
				End:   loc[1],
				Label: "PRODUCT",
			})
		}
	}
	return added
}

func overlaps(start, end int, spans []common.Span) bool {
	for _, s := range spans {
		if start < s.End && s.Start < end {
			return true
		}
	}
	return false
}

// documentSentences returns the sentence segmentation of doc. A document
// without one is treated as a single sentence.
func documentSentences(doc *common.TaggedDocument) []common.Sentence {
	if len(doc.Sentences) > 0 || doc.Text == "" {
		return doc.Sentences
	}
	return []common.Sentence{{Text: doc.Text, Start: 0, End: len(doc.Text)}}
}

// sentenceIndex returns the index of the sentence containing offset, or the
// nearest preceding sentence when offset falls between two.
func sentenceIndex(sentences []common.Sentence, offset int) int {
	i := sort.Search(len(sentences), func(i int) bool { return sentences[i].End > offset })
	if i == len(sentences) {
		return len(sentences) - 1
	}
	if offset < sentences[i].Start && i > 0 {
		return i - 1
	}
	return i
}

// mentionContext returns at most contextWindow bytes of text centred on the
// mention, cut at rune boundaries.
func mentionContext(text string, start, end int) string {
	pad := max(0, (contextWindow-(end-start))/2)
	from := max(0, start-pad)
	to := min(len(text), end+pad)
	if to-from > contextWindow {
		to = from + contextWindow
	}
	for from > 0 && !utf8.RuneStart(text[from]) {
		from++
	}
	for to < len(text) && !utf8.RuneStart(text[to]) {
		to--
	}
	return strings.TrimSpace(text[from:to])
}
