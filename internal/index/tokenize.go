package index

import (
	"strings"
	"unicode"
)

// stopwords are excluded from the index and from queries. The set is
// deliberately tiny: hymn titles lean on words like "thee" and "lord"
// that a general-purpose list would throw away.
var stopwords = map[string]struct{}{
	"a":   {},
	"an":  {},
	"and": {},
	"in":  {},
	"of":  {},
	"the": {},
	"to":  {},
}

// Tokenize lowercases text and splits it on non-letter, non-digit
// boundaries, dropping stopwords. Indexing and querying share this
// function so both sides normalize identically.
func Tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	out := make([]string, 0, len(fields))
	for _, field := range fields {
		if _, ok := stopwords[field]; ok {
			continue
		}
		out = append(out, field)
	}
	return out
}
