package search

import (
	"regexp"
	"strings"
)

var nonLetter = regexp.MustCompile(`[^a-zA-Z0-9\p{Han}]+`)

var stopwords = map[string]struct{}{
	"the": {}, "and": {}, "a": {}, "an": {}, "of": {}, "to": {}, "in": {},
	"is": {}, "are": {}, "for": {}, "on": {}, "with": {}, "that": {},
	"this": {}, "it": {}, "as": {}, "at": {}, "be": {}, "by": {}, "from": {},
}

// tokenizeAll lowercases and strips punctuation, keeping stopwords.
func tokenizeAll(s string) []string {
	s = strings.ToLower(s)
	s = nonLetter.ReplaceAllString(s, " ")
	return strings.Fields(s)
}

// tokenize lowercases, strips punctuation and drops stopwords.
func tokenize(s string) []string {
	parts := tokenizeAll(s)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if _, ok := stopwords[p]; ok {
			continue
		}
		out = append(out, p)
	}
	return out
}

// tokenSetOf returns the distinct tokens as a set.
func tokenSetOf(tokens []string) map[string]struct{} {
	set := make(map[string]struct{}, len(tokens))
	for _, tok := range tokens {
		set[tok] = struct{}{}
	}
	return set
}
