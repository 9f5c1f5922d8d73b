package graph

import (
	"regexp"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/OFFIS-RIT/kgraph/backend/pkg/common"
	"github.com/OFFIS-RIT/kgraph/backend/pkg/rules"
)

// SentenceInput is everything a strategy may look at. Mentions are the
// structural entity mentions inside the sentence, ordered by offset.
type SentenceInput struct {
	Index      int
	Sentence   common.Sentence
	Mentions   []common.Mention
	Metadata   common.Metadata
	DocumentID string
}

// Strategy proposes candidate relationships for one sentence. Run must be
// a pure function of its input.
type Strategy struct {
	Name string
	Run  func(in SentenceInput) []common.Relationship
}

// DefaultStrategies returns the built-in strategies in their fixed order:
// role patterns, location and product patterns, list expansion and
// subject-verb-object extraction.
func DefaultStrategies(r *rules.Set) []Strategy {
	return []Strategy{
		{Name: "role", Run: func(in SentenceInput) []common.Relationship { return rolePatterns(r, in) }},
		{Name: "location_product", Run: func(in SentenceInput) []common.Relationship { return locationProductPatterns(r, in) }},
		{Name: "list_expansion", Run: func(in SentenceInput) []common.Relationship { return listPatterns(r, in) }},
		{Name: "svo", Run: func(in SentenceInput) []common.Relationship { return subjectVerbObject(r, in) }},
	}
}

// Infer runs every strategy over the sentence and returns all candidates.
// Strategies do not suppress each other; duplicates are resolved by the
// validator.
func Infer(strategies []Strategy, in SentenceInput) []common.Relationship {
	var out []common.Relationship
	for _, s := range strategies {
		out = append(out, s.Run(in)...)
	}
	return out
}

func candidate(
	r *rules.Set,
	in SentenceInput,
	source, target common.Mention,
	relation common.RelationType,
	base float64,
	reason, verb string,
) (common.Relationship, bool) {
	if source.Key == target.Key {
		return common.Relationship{}, false
	}
	return common.Relationship{
		Source:         source.Key,
		Target:         target.Key,
		Type:           relation,
		Confidence:     score(r, base, gap(source, target)),
		Reason:         reason,
		Verb:           verb,
		Metadata:       in.Metadata.Properties(),
		SourceSentence: in.Sentence.Text,
		DocumentID:     in.DocumentID,
	}, true
}

func rolePatterns(r *rules.Set, in SentenceInput) []common.Relationship {
	text := asciiLower(in.Sentence.Text)
	var out []common.Relationship

	for _, ind := range r.RoleIndicators {
		for _, pos := range findPhrase(text, ind.Phrase) {
			before, ok := mentionBefore(in, pos, nil)
			if !ok {
				continue
			}
			after, ok := mentionAfter(in, pos+len(ind.Phrase), nil)
			if !ok {
				continue
			}

			relation := ind.Relation
			between := text[min(pos, max(0, before.End-in.Sentence.Start)):pos]
			if negated(between) {
				continue
			}
			if ind.Former != "" && formerRole(between, r.PastCopulas) {
				relation = ind.Former
			}

			source, target := before, after
			if ind.Reversed {
				source, target = after, before
			}
			if c, ok := candidate(r, in, source, target, relation, ind.Score, "role pattern: "+ind.Phrase, ""); ok {
				out = append(out, c)
			}
		}
	}
	return out
}

// formerRole reports whether the text between a person and a role noun
// ends in a past copula, allowing a trailing determiner. "was the CEO of"
// and "the former CEO of" qualify; "was named CEO of" does not.
func formerRole(between string, copulas []string) bool {
	words := strings.FieldsFunc(between, func(r rune) bool {
		return unicode.IsSpace(r) || r == ',' || r == ';'
	})
	for len(words) > 0 && isDeterminer(words[len(words)-1]) {
		words = words[:len(words)-1]
	}
	if len(words) == 0 {
		return false
	}
	tail := " " + strings.Join(words, " ")
	for _, c := range copulas {
		if strings.HasSuffix(tail, " "+strings.ToLower(c)) {
			return true
		}
	}
	return false
}

func isDeterminer(w string) bool {
	switch w {
	case "the", "a", "an", "its", "his", "her", "their":
		return true
	}
	return false
}

func locationProductPatterns(r *rules.Set, in SentenceInput) []common.Relationship {
	text := asciiLower(in.Sentence.Text)
	var out []common.Relationship

	for _, p := range r.LocationProductPatterns {
		beforeTypes, afterTypes := p.SourceTypes, p.TargetTypes
		if p.Reversed {
			beforeTypes, afterTypes = p.TargetTypes, p.SourceTypes
		}
		for _, pos := range findPhrase(text, p.Phrase) {
			before, ok := mentionBefore(in, pos, beforeTypes)
			if !ok {
				continue
			}
			after, ok := mentionAfter(in, pos+len(p.Phrase), afterTypes)
			if !ok {
				continue
			}
			if negated(text[min(pos, max(0, before.End-in.Sentence.Start)):pos]) {
				continue
			}
			source, target := before, after
			if p.Reversed {
				source, target = after, before
			}
			if c, ok := candidate(r, in, source, target, p.Relation, p.Score, "pattern: "+p.Phrase, ""); ok {
				out = append(out, c)
			}
		}
	}
	return out
}

// listSeparator matches what may stand between two list items or between a
// trigger and the first item.
var listSeparator = regexp.MustCompile(`^[\s,;:]*(?:(?:and|or|&|as well as)\s+)?(?:(?:the|a|an)\s+)?$`)

// listBridge matches a generic noun phrase introducing the list after a
// trigger, as in "competes with companies such as".
var listBridge = regexp.MustCompile(`^\s+(?:other\s+)?[a-z][a-z-]*(?:\s+[a-z][a-z-]*)?,?\s+(?:such as|like|including)\b`)

func listPatterns(r *rules.Set, in SentenceInput) []common.Relationship {
	text := asciiLower(in.Sentence.Text)
	var out []common.Relationship

	for _, p := range r.ListPatterns {
		for _, pos := range findPhrase(text, p.Trigger) {
			source, ok := mentionBefore(in, pos, nil)
			if !ok || negated(text[min(pos, max(0, source.End-in.Sentence.Start)):pos]) {
				continue
			}

			cursor := pos + len(p.Trigger)
			if loc := listBridge.FindStringIndex(text[cursor:]); loc != nil && !mentionWithin(in, cursor, cursor+loc[1]) {
				cursor += loc[1]
			}
			for _, m := range in.Mentions {
				start := m.Start - in.Sentence.Start
				if start < cursor {
					continue
				}
				if !listSeparator.MatchString(text[cursor:start]) {
					break
				}
				cursor = m.End - in.Sentence.Start

				from, to := source, m
				if p.Reversed {
					from, to = m, source
				}
				if c, ok := candidate(r, in, from, to, p.Relation, p.Score, "list pattern: "+p.Trigger, ""); ok {
					out = append(out, c)
				}
			}
		}
	}
	return out
}

// mentionWithin reports whether a mention starts in [from, to), relative to
// the sentence.
func mentionWithin(in SentenceInput, from, to int) bool {
	for _, m := range in.Mentions {
		if start := m.Start - in.Sentence.Start; start >= from && start < to {
			return true
		}
	}
	return false
}

// mentionBefore returns the mention that ends closest before pos, relative
// to the sentence. With types set, only mentions of those types qualify.
func mentionBefore(in SentenceInput, pos int, types []common.EntityType) (common.Mention, bool) {
	for i := len(in.Mentions) - 1; i >= 0; i-- {
		m := in.Mentions[i]
		if m.End-in.Sentence.Start > pos {
			continue
		}
		if types == nil || slices.Contains(types, m.Key.Type) {
			return m, true
		}
	}
	return common.Mention{}, false
}

// mentionAfter returns the mention that starts closest after pos.
func mentionAfter(in SentenceInput, pos int, types []common.EntityType) (common.Mention, bool) {
	for _, m := range in.Mentions {
		if m.Start-in.Sentence.Start < pos {
			continue
		}
		if types == nil || slices.Contains(types, m.Key.Type) {
			return m, true
		}
	}
	return common.Mention{}, false
}

// asciiLower lower-cases ASCII letters only, so byte offsets stay valid.
func asciiLower(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + 'a' - 'A'
		}
	}
	return string(b)
}

// findPhrase returns the start offsets of phrase in text where it is not
// part of a longer word.
func findPhrase(text, phrase string) []int {
	if phrase == "" {
		return nil
	}
	phrase = asciiLower(phrase)
	var out []int
	for from := 0; from <= len(text)-len(phrase); {
		i := strings.Index(text[from:], phrase)
		if i < 0 {
			break
		}
		i += from
		end := i + len(phrase)
		if !wordAt(text, i-1, true) && !wordAt(text, end, false) {
			out = append(out, i)
		}
		from = i + 1
	}
	return out
}

// wordAt reports whether the rune touching position i is a letter or digit.
// backwards selects the rune ending at i+1 instead of the one starting at i.
func wordAt(text string, i int, backwards bool) bool {
	if i < 0 || i >= len(text) {
		return false
	}
	var r rune
	if backwards {
		r, _ = utf8.DecodeLastRuneInString(text[:i+1])
	} else {
		r, _ = utf8.DecodeRuneInString(text[i:])
	}
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

var negations = []string{"not", "never", "no longer", "cannot"}

// negated reports whether text, the stretch between an argument and its
// predicate, negates the predicate.
func negated(text string) bool {
	return strings.Contains(text, "n't") || strings.Contains(text, "n’t") || containsAny(text, negations)
}

func containsAny(text string, phrases []string) bool {
	for _, p := range phrases {
		if len(findPhrase(text, p)) > 0 {
			return true
		}
	}
	return false
}
