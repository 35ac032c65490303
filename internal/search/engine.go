// Package search answers number lookups and free-text queries.
package search

import (
	"sort"

	"hymnal/internal/corpus"
	"hymnal/internal/index"
	"hymnal/internal/model"
)

// Engine serves read-only queries against the loaded corpus and its index.
type Engine struct {
	store *corpus.Store
	idx   *index.Index
}

// New builds an engine over a loaded store.
func New(store *corpus.Store) *Engine {
	return &Engine{
		store: store,
		idx:   index.Build(store.All()),
	}
}

// ByNumber returns the hymn with the given number or corpus.ErrNotFound.
func (e *Engine) ByNumber(n int) (model.Hymn, error) {
	return e.store.ByNumber(n)
}

// All returns the full corpus ordered by hymn number.
func (e *Engine) All() []model.Hymn {
	return e.store.All()
}

// Search tokenizes the query like the index and returns matches ordered by
// matched-token count, then title hits, then hymn number. Any token match
// qualifies a record; an empty result is valid and is not an error.
func (e *Engine) Search(query string) []model.Match {
	tokens := index.Tokenize(query)
	if len(tokens) == 0 {
		return nil
	}

	counts := map[int]int{}
	titleHits := map[int]bool{}
	for _, token := range tokens {
		for n := range e.idx.Postings(token) {
			counts[n]++
		}
		for n := range e.idx.TitlePostings(token) {
			titleHits[n] = true
		}
	}

	matches := make([]model.Match, 0, len(counts))
	for n, count := range counts {
		h, ok := e.idx.Hymn(n)
		if !ok {
			continue
		}
		matches = append(matches, model.Match{
			Hymn:          h,
			TokensMatched: count,
			TitleHit:      titleHits[n],
		})
	}
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].TokensMatched != matches[j].TokensMatched {
			return matches[i].TokensMatched > matches[j].TokensMatched
		}
		if matches[i].TitleHit != matches[j].TitleHit {
			return matches[i].TitleHit
		}
		return matches[i].Hymn.Number < matches[j].Hymn.Number
	})
	return matches
}
