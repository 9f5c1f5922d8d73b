package lexicon

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// titles never end a sentence.
var titles = map[string]struct{}{
	"mr": {}, "mrs": {}, "ms": {}, "dr": {}, "prof": {}, "st": {}, "sr": {}, "jr": {},
	"vs": {}, "no": {}, "approx": {}, "dept": {}, "gen": {}, "sen": {}, "rep": {}, "gov": {},
}

// boundary is a half-open byte range of a sentence.
type boundary struct {
	start int
	end   int
}

// splitSentences splits a single-line text into sentences. A terminator
// only ends a sentence when it is followed by whitespace (or the end of the
// text) and the next word does not start in lower case. Titles, single
// letter initials and numbered list markers do not end sentences.
func splitSentences(text string) []boundary {
	var out []boundary
	start := skipSpace(text, 0)

	for i := start; i < len(text); i++ {
		c := text[i]
		if c != '.' && c != '!' && c != '?' {
			continue
		}

		j := i + 1
		for j < len(text) && (text[j] == '.' || text[j] == '!' || text[j] == '?') {
			j++
		}
		for j < len(text) && (text[j] == '"' || text[j] == '\'' || text[j] == ')' ||
			text[j] == ']' || text[j] == '}') {
			j++
		}
		if j < len(text) && !isSpace(text[j]) {
			continue
		}

		if c == '.' && j-i == 1 {
			word := previousWord(text, i)
			if _, ok := titles[strings.ToLower(word)]; ok {
				continue
			}
			if isInitial(word) {
				continue
			}
			if isListMarker(text, start, word, i) {
				continue
			}
		}

		next := skipSpace(text, j)
		if next < len(text) {
			r, _ := utf8.DecodeRuneInString(text[next:])
			if unicode.IsLower(r) {
				continue
			}
		}

		out = append(out, boundary{start: start, end: j})
		start = next
		i = next - 1
	}

	if start < len(text) {
		end := len(text)
		for end > start && isSpace(text[end-1]) {
			end--
		}
		if end > start {
			out = append(out, boundary{start: start, end: end})
		}
	}
	return out
}

func previousWord(text string, dot int) string {
	k := dot
	for k > 0 {
		r, size := utf8.DecodeLastRuneInString(text[:k])
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '.' {
			break
		}
		k -= size
	}
	return text[k:dot]
}

// isInitial matches "J" in "J. Smith" and "U.S" in "U.S.".
func isInitial(word string) bool {
	if word == "" {
		return false
	}
	parts := strings.Split(word, ".")
	for _, p := range parts {
		if utf8.RuneCountInString(p) != 1 {
			return false
		}
		r, _ := utf8.DecodeRuneInString(p)
		if !unicode.IsUpper(r) {
			return false
		}
	}
	return true
}

// isListMarker matches "1." or "12." at the start of a sentence.
func isListMarker(text string, sentenceStart int, word string, dot int) bool {
	if len(word) == 0 || len(word) > 2 {
		return false
	}
	for i := 0; i < len(word); i++ {
		if word[i] < '0' || word[i] > '9' {
			return false
		}
	}
	return dot-len(word) == sentenceStart
}

func skipSpace(text string, i int) int {
	for i < len(text) && isSpace(text[i]) {
		i++
	}
	return i
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}
