package graph

import (
	"strings"

	"github.com/OFFIS-RIT/kgraph/backend/pkg/common"
	"github.com/OFFIS-RIT/kgraph/backend/pkg/rules"
)

// subjectVerbObject walks the dependency arcs of the sentence. For every
// verb it pairs the subjects with the direct and prepositional objects that
// resolve to entity mentions and looks the verb up in the verb table. Verbs
// missing from the table produce nothing.
func subjectVerbObject(r *rules.Set, in SentenceInput) []common.Relationship {
	s := in.Sentence
	if len(s.Tokens) == 0 || len(in.Mentions) == 0 {
		return nil
	}

	var out []common.Relationship
	for v, tok := range s.Tokens {
		if tok.POS != "VERB" {
			continue
		}

		if verbNegated(in, v) {
			continue
		}

		verb := strings.ToLower(tok.Text)
		lemma := strings.ToLower(tok.Lemma)
		passive := len(s.Children(v, "auxpass", "nsubjpass")) > 0

		var subjects, objects []int
		var prepObjects []prepObject
		if passive {
			for _, a := range s.Children(v, "agent") {
				for _, p := range s.Children(a, "pobj") {
					subjects = append(subjects, conjuncts(s, p)...)
				}
			}
			patients := expand(s, s.Children(v, "nsubjpass"))
			if len(subjects) > 0 {
				objects = patients
			} else {
				subjects = patients
			}
		} else {
			subjects = verbSubjects(s, v)
			objects = expand(s, s.Children(v, "dobj"))
		}
		for _, p := range s.Children(v, "prep") {
			prep := strings.ToLower(s.Tokens[p].Text)
			var pobjs []int
			for _, o := range s.Children(p, "pobj") {
				items := conjuncts(s, o)
				// "acquired Beats in 2014 and Shazam in 2018"
				if _, ok := tokenMention(in, o); !ok && len(objects) > 0 {
					objects = append(objects, items[1:]...)
					items = items[:1]
				}
				pobjs = append(pobjs, items...)
			}
			prepObjects = append(prepObjects, prepObject{prep: prep, objects: pobjs})
		}

		emit := func(keys []string, objs []int) {
			rule, key, ok := lookupVerb(r, keys)
			if !ok {
				return
			}
			for _, si := range subjects {
				subj, ok := tokenMention(in, si)
				if !ok {
					continue
				}
				for _, oi := range objs {
					obj, ok := tokenMention(in, oi)
					if !ok {
						continue
					}
					source, target := subj, obj
					if rule.Reversed {
						source, target = obj, subj
					}
					if c, ok := candidate(r, in, source, target, rule.Relation, rule.Score, "svo: "+key, key); ok {
						out = append(out, c)
					}
				}
			}
		}

		if len(objects) > 0 {
			emit([]string{verb, lemma}, objects)
		}
		for _, po := range prepObjects {
			keys := []string{verb + " " + po.prep, lemma + " " + po.prep}
			if len(objects) == 0 {
				keys = append(keys, verb, lemma)
			}
			emit(keys, po.objects)
		}
	}
	return out
}

// verbNegated reports whether a negation stands between verb v and the
// closest preceding argument or verb.
func verbNegated(in SentenceInput, v int) bool {
	toks := in.Sentence.Tokens
	from := 0
	for k := v - 1; k >= 0; k-- {
		if _, ok := tokenMention(in, k); ok || toks[k].POS == "VERB" {
			from = toks[k].End - in.Sentence.Start
			break
		}
	}
	to := toks[v].Start - in.Sentence.Start
	if from < 0 || to > len(in.Sentence.Text) || from >= to {
		return false
	}
	return negated(asciiLower(in.Sentence.Text[from:to]))
}

type prepObject struct {
	prep    string
	objects []int
}

func lookupVerb(r *rules.Set, keys []string) (rules.VerbRule, string, bool) {
	for _, k := range keys {
		if rule, ok := r.Verb(k); ok {
			return rule, k, true
		}
	}
	return rules.VerbRule{}, "", false
}

// verbSubjects returns the subjects of verb v. A conjoined verb without a
// subject of its own shares the subjects of the verb it is conjoined to.
func verbSubjects(s common.Sentence, v int) []int {
	for depth := 0; depth < len(s.Tokens); depth++ {
		if subj := expand(s, s.Children(v, "nsubj", "nsubjpass")); len(subj) > 0 {
			return subj
		}
		if s.Tokens[v].Dep != "conj" || s.Tokens[v].Head == v {
			return nil
		}
		v = s.Tokens[v].Head
	}
	return nil
}

func expand(s common.Sentence, heads []int) []int {
	var out []int
	for _, h := range heads {
		out = append(out, conjuncts(s, h)...)
	}
	return out
}

// conjuncts returns i and every token reachable from it over conj arcs.
func conjuncts(s common.Sentence, i int) []int {
	out := []int{i}
	for k := 0; k < len(out); k++ {
		out = append(out, s.Children(out[k], "conj")...)
	}
	return out
}

// tokenMention resolves a token to the entity mention covering it.
func tokenMention(in SentenceInput, i int) (common.Mention, bool) {
	tok := in.Sentence.Tokens[i]
	for _, m := range in.Mentions {
		if tok.Start >= m.Start && tok.Start < m.End {
			return m, true
		}
	}
	return common.Mention{}, false
}
