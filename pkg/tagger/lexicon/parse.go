package lexicon

import (
	"strings"

	"github.com/OFFIS-RIT/kgraph/backend/pkg/common"
)

// parse assigns part of speech tags and a shallow dependency tree. The tree
// only has to support subject, object and preposition lookups, so each
// clause is reduced to a predicate with its nearest nominal arguments.
func (t *Tagger) parse(words []word, chunks []chunk) []common.Token {
	n := len(words)
	if n == 0 {
		return nil
	}

	p := &parser{
		tagger:   t,
		words:    words,
		tokens:   make([]common.Token, n),
		attached: make([]bool, n),
		unitHead: make([]int, n),
	}
	p.tagParts(chunks)
	p.attachUnits()
	p.attachModifiers()
	p.attachClauses()
	return p.tokens
}

type parser struct {
	tagger   *Tagger
	words    []word
	tokens   []common.Token
	attached []bool
	unitHead []int
	root     int
}

func (p *parser) tagParts(chunks []chunk) {
	metaLast := make(map[int]int)
	for i, w := range p.words {
		if w.meta >= 0 {
			metaLast[w.meta] = i
		}
	}

	for i, w := range p.words {
		p.unitHead[i] = i
		pos := ""
		switch {
		case w.ent >= 0:
			pos = "PROPN"
			p.unitHead[i] = chunks[w.ent].last
		case w.meta >= 0:
			pos = "NUM"
			p.unitHead[i] = metaLast[w.meta]
		case isPunct(w.text):
			pos = "PUNCT"
		case has(determiners, w.lower):
			pos = "DET"
		case has(pronouns, w.lower):
			pos = "PRON"
		case has(conjunctions, w.lower):
			pos = "CCONJ"
		case has(prepositions, w.lower):
			pos = "ADP"
		case has(auxiliaries, w.lower):
			pos = "AUX"
		case has(adverbs, w.lower) || (strings.HasSuffix(w.lower, "ly") && len(w.lower) > 4):
			pos = "ADV"
		case p.isVerb(i):
			pos = "VERB"
		default:
			pos = "NOUN"
		}
		p.words[i].pos = pos
		p.tokens[i] = common.Token{
			Text:  w.text,
			Start: w.start,
			End:   w.end,
			Lemma: lemmatize(w.lower, pos),
			POS:   pos,
			Dep:   "dep",
			Head:  -1,
		}
	}

	// An auxiliary without a following verb is the main verb of its clause
	// when the verb table knows it ("Apple has offices"); otherwise it stays
	// a copula.
	for i := range p.words {
		if p.words[i].pos != "AUX" {
			continue
		}
		j := p.nextContent(i + 1)
		if j >= 0 && p.words[j].pos == "VERB" {
			continue
		}
		if _, ok := p.tagger.rules.Verb(p.words[i].lower); ok && !has(beForms, p.words[i].lower) {
			p.setPOS(i, "VERB")
		}
	}
}

func (p *parser) setPOS(i int, pos string) {
	p.words[i].pos = pos
	p.tokens[i].POS = pos
	p.tokens[i].Lemma = lemmatize(p.words[i].lower, pos)
}

func (p *parser) isVerb(i int) bool {
	w := p.words[i]
	if _, ok := p.tagger.verbs[w.lower]; ok {
		return true
	}
	if !strings.HasSuffix(w.lower, "ed") || len(w.lower) <= 4 || capitalized(w.text) {
		return false
	}
	for k := i - 1; k >= 0; k-- {
		switch p.words[k].pos {
		case "ADV":
			continue
		case "AUX", "PROPN", "PRON", "NOUN":
			return true
		}
		return false
	}
	return false
}

// nextContent returns the next index at or after i that is not an adverb.
func (p *parser) nextContent(i int) int {
	for ; i < len(p.words); i++ {
		if p.words[i].pos != "ADV" {
			return i
		}
	}
	return -1
}

func (p *parser) attach(i, head int, dep string) {
	p.tokens[i].Head = head
	p.tokens[i].Dep = dep
	p.attached[i] = true
}

func (p *parser) attachUnits() {
	for i := range p.words {
		if h := p.unitHead[i]; h != i {
			p.attach(i, h, "compound")
		} else if p.words[i].pos == "PUNCT" {
			p.attached[i] = true
			p.tokens[i].Dep = "punct"
		}
	}
}

func (p *parser) isNominal(i int) bool {
	if p.unitHead[i] != i {
		return false
	}
	switch p.words[i].pos {
	case "PROPN", "NOUN", "NUM", "PRON":
		return true
	}
	return false
}

// attachModifiers folds a run of directly adjacent nominals into its last
// member: "new iPhone", "Amazon CEO Andy Jassy".
func (p *parser) attachModifiers() {
	prev := -1
	for i := range p.words {
		if p.unitHead[i] != i {
			continue
		}
		if !p.isNominal(i) || p.words[i].pos == "PRON" {
			prev = -1
			continue
		}
		if prev >= 0 {
			p.attach(prev, i, "compound")
		}
		prev = i
	}
}

type clause struct {
	verb    int
	zone    int
	passive bool
	copula  bool
	subject int
}

func (p *parser) attachClauses() {
	var clauses []clause
	for i, w := range p.words {
		if w.pos == "VERB" {
			clauses = append(clauses, clause{verb: i, subject: -1})
		}
	}
	if len(clauses) == 0 {
		root := -1
		for i, w := range p.words {
			if w.pos == "AUX" {
				root = i
				break
			}
		}
		if root < 0 {
			root = p.firstContent()
		}
		clauses = append(clauses, clause{verb: root, subject: -1, copula: p.words[root].pos == "AUX"})
	}

	p.root = clauses[0].verb
	for k := range clauses {
		c := &clauses[k]
		if k == 0 {
			p.attach(c.verb, c.verb, "ROOT")
		} else {
			p.attach(c.verb, clauses[k-1].verb, "conj")
		}
		p.attachAuxiliaries(c)
	}

	for k := range clauses {
		lower := 0
		if k > 0 {
			lower = clauses[k-1].verb + 1
		}
		p.attachSubject(&clauses[k], k == 0, lower)
	}

	for k := range clauses {
		limit := len(p.words)
		if k+1 < len(clauses) {
			limit = clauses[k+1].zone
		}
		p.attachObjects(clauses[k], limit)
	}

	for i := range p.words {
		if !p.attached[i] {
			p.tokens[i].Head = p.root
		} else if p.tokens[i].Head < 0 {
			p.tokens[i].Head = p.root
		}
	}
}

func (p *parser) firstContent() int {
	for i, w := range p.words {
		if w.pos != "PUNCT" {
			return i
		}
	}
	return 0
}

func (p *parser) attachAuxiliaries(c *clause) {
	c.zone = c.verb
	if c.copula {
		return
	}
	participle := isParticiple(p.words[c.verb].lower)
	for k := c.verb - 1; k >= 0; k-- {
		w := p.words[k]
		if w.pos == "ADV" {
			continue
		}
		if w.pos != "AUX" {
			break
		}
		dep := "aux"
		if participle && has(beForms, w.lower) {
			c.passive = true
			dep = "auxpass"
		}
		p.attach(k, c.verb, dep)
		c.zone = k
	}
}

func (p *parser) attachSubject(c *clause, first bool, lower int) {
	k := c.zone - 1
	for k >= lower && p.words[k].pos == "ADV" {
		k--
	}
	if k < lower {
		return
	}
	if !first && (p.words[k].pos == "CCONJ" || p.words[k].text == ",") {
		c.zone = k
		return
	}

	for ; k >= lower; k-- {
		if p.words[k].pos == "VERB" {
			return
		}
		if !p.attached[k] && p.isNominal(k) {
			break
		}
	}
	if k < lower {
		return
	}

	dep := "nsubj"
	if c.passive {
		dep = "nsubjpass"
	}
	p.attach(k, c.verb, dep)
	c.subject = k
	c.zone = p.unitStart(k)
	if !first {
		return
	}

	// "Apple and Google compete"
	for {
		sep := c.zone - 1
		for sep >= lower && (p.words[sep].pos == "CCONJ" || p.words[sep].text == ",") {
			sep--
		}
		if sep == c.zone-1 || sep < lower || p.attached[sep] || !p.isNominal(sep) {
			return
		}
		for s := sep + 1; s < c.zone; s++ {
			if p.words[s].pos == "CCONJ" {
				p.attach(s, k, "cc")
			}
		}
		p.attach(sep, k, "conj")
		c.zone = p.unitStart(sep)
	}
}

// unitStart returns the first token of the unit or modifier run headed by i.
func (p *parser) unitStart(i int) int {
	start := i
	for k := i - 1; k >= 0; k-- {
		if !p.compoundOf(k, i) {
			break
		}
		start = k
	}
	return start
}

// compoundOf reports whether k reaches target through compound arcs only.
func (p *parser) compoundOf(k, target int) bool {
	for range p.tokens {
		if p.tokens[k].Dep != "compound" {
			return false
		}
		k = p.tokens[k].Head
		if k == target {
			return true
		}
		if k < 0 {
			return false
		}
	}
	return false
}

func (p *parser) attachObjects(c clause, limit int) {
	prep := -1
	prepFilled := false
	lastItem := -1
	haveObject := false

	for i := c.verb + 1; i < limit; i++ {
		if p.attached[i] {
			continue
		}
		w := p.words[i]

		switch {
		case w.pos == "ADP":
			dep := "prep"
			if c.passive && w.lower == "by" {
				dep = "agent"
			}
			p.attach(i, c.verb, dep)
			prep, prepFilled, lastItem = i, false, -1

		case w.pos == "CCONJ":
			if lastItem >= 0 {
				p.attach(i, lastItem, "cc")
			}

		case w.pos == "DET":
			if h := p.nextNominal(i+1, limit); h >= 0 {
				p.attach(i, h, "det")
			}

		case w.pos == "ADV":
			p.attach(i, c.verb, "advmod")

		case p.isNominal(i):
			switch {
			case lastItem >= 0 && p.onlySeparators(lastItem, i):
				p.attach(i, lastItem, "conj")
				lastItem = i
			case prep >= 0 && !prepFilled:
				p.attach(i, prep, "pobj")
				prepFilled = true
				lastItem = i
			case !haveObject && !c.passive && !c.copula:
				p.attach(i, c.verb, "dobj")
				haveObject = true
				lastItem = i
			case !haveObject && c.copula:
				p.attach(i, c.verb, "attr")
				haveObject = true
				lastItem = i
			default:
				p.attach(i, c.verb, "npadvmod")
				lastItem = -1
			}
		}
	}
}

func (p *parser) nextNominal(from, limit int) int {
	for k := from; k < limit; k++ {
		if p.isNominal(k) && !p.attached[k] {
			return k
		}
		if p.words[k].pos == "VERB" || p.words[k].pos == "ADP" {
			return -1
		}
	}
	return -1
}

// onlySeparators reports whether only commas, conjunctions and determiners
// separate the units headed by a and b.
func (p *parser) onlySeparators(a, b int) bool {
	found := false
	for k := a + 1; k < b; k++ {
		if p.tokens[k].Dep == "compound" && p.tokens[k].Head >= k {
			continue
		}
		switch {
		case p.words[k].text == ",", p.words[k].pos == "CCONJ":
			found = true
		case p.words[k].pos == "DET":
		default:
			return false
		}
	}
	return found
}

func isParticiple(w string) bool {
	return strings.HasSuffix(w, "ed") || strings.HasSuffix(w, "en") || has(irregularParticiples, w)
}

func lemmatize(w, pos string) string {
	if pos != "VERB" && pos != "AUX" {
		return w
	}
	switch {
	case has(beForms, w):
		return "be"
	case w == "has" || w == "had":
		return "have"
	case len(w) > 4 && strings.HasSuffix(w, "ied"):
		return w[:len(w)-3] + "y"
	case len(w) > 4 && strings.HasSuffix(w, "ies"):
		return w[:len(w)-3] + "y"
	case len(w) > 4 && strings.HasSuffix(w, "ed"):
		base := w[:len(w)-2]
		if n := len(base); n >= 2 && base[n-1] == base[n-2] && !strings.ContainsRune("aeiouls", rune(base[n-1])) {
			return base[:n-1]
		}
		if needsE(base) {
			return base + "e"
		}
		return base
	case len(w) > 4 && (strings.HasSuffix(w, "ches") || strings.HasSuffix(w, "shes") ||
		strings.HasSuffix(w, "sses") || strings.HasSuffix(w, "xes")):
		return w[:len(w)-2]
	case len(w) > 3 && strings.HasSuffix(w, "s") && !strings.HasSuffix(w, "ss"):
		return w[:len(w)-1]
	}
	return w
}

// needsE restores the silent e of stems like "acquir", "releas", "produc".
func needsE(base string) bool {
	n := len(base)
	if n < 3 {
		return false
	}
	last := base[n-1]
	prev := base[n-2]
	vowel := func(c byte) bool { return strings.IndexByte("aeiou", c) >= 0 }
	switch last {
	case 'v', 'z', 'c', 'g', 'u':
		return true
	case 'r', 's':
		return vowel(prev) && prev != 'e'
	}
	return false
}
