package common

// Span is a tagged region of text as returned by a tagger. Offsets are byte
// offsets into TaggedDocument.Text, End is exclusive.
type Span struct {
	Text  string `json:"text"`
	Start int    `json:"start"`
	End   int    `json:"end"`
	Label string `json:"label"`
}

// Token is one word of a sentence with its dependency arc. Head is the index
// of the governing token inside the same sentence; the root points to
// itself.
type Token struct {
	Text  string `json:"text"`
	Start int    `json:"start"`
	End   int    `json:"end"`
	Lemma string `json:"lemma"`
	POS   string `json:"pos"`
	Dep   string `json:"dep"`
	Head  int    `json:"head"`
}

// Sentence is a sentence boundary plus its tokens.
type Sentence struct {
	Text   string  `json:"text"`
	Start  int     `json:"start"`
	End    int     `json:"end"`
	Tokens []Token `json:"tokens"`
}

// Children returns the indices of the tokens whose head is i and whose
// dependency label is one of deps. With no deps every child is returned.
func (s Sentence) Children(i int, deps ...string) []int {
	var out []int
	for j, tok := range s.Tokens {
		if j == i || tok.Head != i {
			continue
		}
		if len(deps) == 0 {
			out = append(out, j)
			continue
		}
		for _, d := range deps {
			if tok.Dep == d {
				out = append(out, j)
				break
			}
		}
	}
	return out
}

// TaggedDocument is the full output of a tagger for one text.
type TaggedDocument struct {
	Text      string     `json:"text"`
	Sentences []Sentence `json:"sentences"`
	Spans     []Span     `json:"spans"`
}
