package lexicon

import (
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

var tokenPattern = regexp.MustCompile(`(?:\p{L}\.){2,}|[\p{L}\p{N}]+(?:[-&][\p{L}\p{N}]+)*|\S`)

type word struct {
	text  string
	lower string
	start int
	end   int
	pos   string
	ent   int
	meta  int
}

// chunk is an entity candidate covering words[first..last].
type chunk struct {
	first int
	last  int
	label string
}

type multiword struct {
	parts []string
	label string
}

func tokenize(sentence string, offset int) []word {
	locs := tokenPattern.FindAllStringIndex(sentence, -1)
	words := make([]word, 0, len(locs))
	for _, loc := range locs {
		text := sentence[loc[0]:loc[1]]
		words = append(words, word{
			text:  text,
			lower: strings.ToLower(text),
			start: offset + loc[0],
			end:   offset + loc[1],
			ent:   -1,
			meta:  -1,
		})
	}
	return words
}

// capitalized reports whether w looks like part of a name: "Apple", "IBM",
// "iPhone", "3M".
func capitalized(w string) bool {
	r, _ := utf8.DecodeRuneInString(w)
	if unicode.IsUpper(r) {
		return true
	}
	if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
		return false
	}
	for _, c := range w {
		if unicode.IsUpper(c) {
			return true
		}
	}
	return false
}

func isPunct(w string) bool {
	for _, c := range w {
		if unicode.IsLetter(c) || unicode.IsDigit(c) {
			return false
		}
	}
	return true
}

func (t *Tagger) buildMultiwords() {
	add := func(name, label string) {
		parts := tokenize(name, 0)
		if len(parts) < 2 {
			return
		}
		m := multiword{label: label}
		for _, p := range parts {
			m.parts = append(m.parts, p.lower)
		}
		t.multiwords = append(t.multiwords, m)
	}

	for _, p := range t.rules.KnownProducts {
		add(p, "PRODUCT")
	}
	for _, c := range t.rules.KnownCompanies {
		add(c, "ORG")
	}
	for l := range locations {
		add(l, "GPE")
	}

	sort.SliceStable(t.multiwords, func(i, j int) bool {
		if len(t.multiwords[i].parts) != len(t.multiwords[j].parts) {
			return len(t.multiwords[i].parts) > len(t.multiwords[j].parts)
		}
		return strings.Join(t.multiwords[i].parts, " ") < strings.Join(t.multiwords[j].parts, " ")
	})
}

// matchMultiwords claims known multi word names before metadata patterns
// run, so that "Tesla Model 3" is not split into a name and a number.
func (t *Tagger) matchMultiwords(words []word) []chunk {
	var chunks []chunk
	for i := 0; i < len(words); i++ {
		if !capitalized(words[i].text) {
			continue
		}
		for _, m := range t.multiwords {
			if i+len(m.parts) > len(words) {
				continue
			}
			ok := true
			for k, p := range m.parts {
				if words[i+k].lower != p {
					ok = false
					break
				}
			}
			if !ok {
				continue
			}
			c := chunk{first: i, last: i + len(m.parts) - 1, label: m.label}
			for k := c.first; k <= c.last; k++ {
				words[k].ent = len(chunks)
			}
			chunks = append(chunks, c)
			i = c.last
			break
		}
	}
	return chunks
}

// chunkCapitalized groups runs of capitalized words into entity chunks and
// appends them to chunks.
func (t *Tagger) chunkCapitalized(words []word, chunks []chunk) []chunk {
	for i := 0; i < len(words); i++ {
		w := words[i]
		if w.ent >= 0 || w.meta >= 0 || !capitalized(w.text) || isPunct(w.text) {
			continue
		}
		if has(stopwords, w.lower) || has(nonEntityWords, w.lower) {
			continue
		}

		last := i
		for j := i + 1; j < len(words); j++ {
			n := words[j]
			if n.ent >= 0 || n.meta >= 0 {
				break
			}
			if t.startsNewName(words, i, last, j) {
				break
			}
			if capitalized(n.text) && !isPunct(n.text) {
				if has(orgSuffixWords, n.lower) || (!has(nonEntityWords, n.lower) && !has(stopwords, n.lower)) {
					last = j
					continue
				}
				break
			}
			if has(connectors, n.lower) && j+1 < len(words) && words[j+1].ent < 0 && words[j+1].meta < 0 &&
				capitalized(words[j+1].text) && !has(nonEntityWords, words[j+1].lower) {
				last = j + 1
				j++
				continue
			}
			break
		}

		c := chunk{first: i, last: last}
		c.label = t.classify(words, c)
		if c.label == "" {
			i = last
			continue
		}
		for k := c.first; k <= c.last; k++ {
			words[k].ent = len(chunks)
		}
		chunks = append(chunks, c)
		i = last
	}
	return chunks
}

// startsNewName reports whether words[j] begins a separate name even though
// it directly follows words[first..last], as in "Amazon Echo".
func (t *Tagger) startsNewName(words []word, first, last, j int) bool {
	current := joinLower(words, first, last)
	if !t.rules.IsKnownCompany(current) && !t.rules.IsKnownProduct(current) && !has(locations, current) {
		return false
	}
	next := words[j].lower
	return t.rules.IsKnownProduct(next) || t.rules.IsKnownCompany(next) || has(locations, next) || has(firstNames, next)
}

func joinText(words []word, first, last int) string {
	parts := make([]string, 0, last-first+1)
	for k := first; k <= last; k++ {
		parts = append(parts, words[k].text)
	}
	return strings.Join(parts, " ")
}

func joinLower(words []word, first, last int) string {
	parts := make([]string, 0, last-first+1)
	for k := first; k <= last; k++ {
		parts = append(parts, words[k].lower)
	}
	return strings.Join(parts, " ")
}

// classify assigns a raw tagger label to a capitalized chunk. An empty
// label means the chunk is not a name at all: a lone letter or the
// designator in "Series B".
func (t *Tagger) classify(words []word, c chunk) string {
	if _, ok := t.rules.LocationAbbreviations[joinText(words, c.first, c.last)]; ok {
		return "GPE"
	}
	if c.first > 0 && has(designatorWords, words[c.first-1].lower) {
		return ""
	}

	name := joinLower(words, c.first, c.last)
	base := name
	lastWord := words[c.last].lower
	hasSuffix := has(orgSuffixWords, lastWord) && c.last > c.first
	if hasSuffix {
		base = joinLower(words, c.first, c.last-1)
	}

	switch {
	case t.rules.IsKnownProduct(name) || t.rules.IsKnownProduct(base):
		return "PRODUCT"
	case t.rules.IsKnownCompany(base):
		return "ORG"
	case has(locations, name):
		return "GPE"
	case hasSuffix:
		return "ORG"
	case c.first == c.last && utf8.RuneCountInString(words[c.first].text) == 1:
		return ""
	}

	for k := c.first; k <= c.last; k++ {
		if has(orgInstitutionWords, words[k].lower) {
			return "ORG"
		}
	}
	if has(eventWords, lastWord) {
		return "EVENT"
	}
	if has(facilityWords, lastWord) {
		return "FAC"
	}
	if c.first > 0 && precededByHonorific(words, c.first) {
		return "PERSON"
	}
	if has(firstNames, words[c.first].lower) {
		return "PERSON"
	}
	if has(companyWords, lastWord) {
		return "ORG"
	}
	if c.last > c.first && allTitleCase(words, c) {
		return "PERSON"
	}
	return "ORG"
}

func precededByHonorific(words []word, first int) bool {
	k := first - 1
	if words[k].text == "." && k > 0 {
		k--
	}
	return has(honorifics, words[k].lower)
}

func allTitleCase(words []word, c chunk) bool {
	for k := c.first; k <= c.last; k++ {
		w := words[k].text
		r, size := utf8.DecodeRuneInString(w)
		if !unicode.IsUpper(r) {
			return false
		}
		for _, rest := range w[size:] {
			if !unicode.IsLower(rest) {
				return false
			}
		}
	}
	return true
}
