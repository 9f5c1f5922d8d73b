package lexicon

import (
	"regexp"
	"sort"

	"github.com/OFFIS-RIT/kgraph/backend/pkg/common"
)

const (
	month = `(?:January|February|March|April|May|June|July|August|September|October|November|December|Jan|Feb|Mar|Apr|Jun|Jul|Aug|Sept|Sep|Oct|Nov|Dec)\.?`
	day   = `\d{1,2}(?:st|nd|rd|th)?`
	scale = `(?:thousand|million|billion|trillion)`
)

type metadataPattern struct {
	label string
	re    *regexp.Regexp
}

// metadataPatterns are tried in order; a later pattern never claims text an
// earlier one matched.
var metadataPatterns = []metadataPattern{
	{"MONEY", regexp.MustCompile(`(?i)(?:[$€£¥]\s?\d[\d,]*(?:\.\d+)?(?:\s?(?:` + scale + `|bn|mn|[mbk])\b)?)|(?:\b\d[\d,]*(?:\.\d+)?\s?` + scale + `?\s?(?:dollars|euros|pounds|usd|eur|gbp)\b)`)},
	{"PERCENT", regexp.MustCompile(`(?i)\b\d+(?:\.\d+)?\s?(?:%|percent\b|per cent\b)`)},
	{"DATE", regexp.MustCompile(`\b(?:` +
		month + `\s+` + day + `(?:,?\s+\d{4})?` +
		`|` + day + `\s+` + month + `(?:,?\s+\d{4})?` +
		`|` + month + `,?\s+\d{4}` +
		`|\d{4}-\d{2}-\d{2}` +
		`|\d{1,2}/\d{1,2}/\d{2,4}` +
		`|Q[1-4]\s+\d{4}` +
		`|(?:1[5-9]|20)\d{2}s` +
		`|(?:1[5-9]|20)\d{2}` +
		`|(?:Monday|Tuesday|Wednesday|Thursday|Friday|Saturday|Sunday)` +
		`|(?i:yesterday|today|tomorrow|(?:last|next|this) (?:year|month|week|quarter))` +
		`)\b`)},
	{"ORDINAL", regexp.MustCompile(`(?i)\b(?:\d+(?:st|nd|rd|th)|first|second|third|fourth|fifth|sixth|seventh|eighth|ninth|tenth)\b`)},
	{"CARDINAL", regexp.MustCompile(`(?i)\b(?:\d[\d,]*(?:\.\d+)?(?:\s` + scale + `)?|two|three|four|five|six|seven|eight|nine|ten|eleven|twelve|dozens?|hundreds?|thousands?|millions?|billions?)\b`)},
}

// findMetadata returns the metadata spans of one sentence. offset is the
// position of the sentence in the document, taken holds document ranges
// that are already claimed.
func findMetadata(sentence string, offset int, taken []boundary) []common.Span {
	claimed := append([]boundary(nil), taken...)
	var spans []common.Span

	for _, p := range metadataPatterns {
		for _, loc := range p.re.FindAllStringIndex(sentence, -1) {
			b := boundary{start: offset + loc[0], end: offset + loc[1]}
			if overlapsAny(b, claimed) {
				continue
			}
			claimed = append(claimed, b)
			spans = append(spans, common.Span{
				Text:  sentence[loc[0]:loc[1]],
				Start: b.start,
				End:   b.end,
				Label: p.label,
			})
		}
	}

	sort.SliceStable(spans, func(i, j int) bool { return spans[i].Start < spans[j].Start })
	return spans
}

func overlapsAny(b boundary, others []boundary) bool {
	for _, o := range others {
		if b.start < o.end && o.start < b.end {
			return true
		}
	}
	return false
}
