// Package index derives search structures from the hymn corpus.
package index

import (
	"hymnal/internal/model"
)

// Index maps normalized tokens to the hymn numbers that contain them.
// It is a pure function of the corpus: identical input always yields
// identical postings, and it is rebuilt rather than edited.
type Index struct {
	postings      map[string]map[int]struct{}
	titlePostings map[string]map[int]struct{}
	byNumber      map[int]model.Hymn
}

// Build tokenizes title, verses, chorus, author, and composer of every
// hymn and produces the posting maps. Cost is linear in total text size.
func Build(hymns []model.Hymn) *Index {
	idx := &Index{
		postings:      map[string]map[int]struct{}{},
		titlePostings: map[string]map[int]struct{}{},
		byNumber:      make(map[int]model.Hymn, len(hymns)),
	}
	for _, h := range hymns {
		idx.byNumber[h.Number] = h
		for _, token := range Tokenize(h.Title) {
			addPosting(idx.postings, token, h.Number)
			addPosting(idx.titlePostings, token, h.Number)
		}
		for _, verse := range h.Verses {
			idx.addText(verse, h.Number)
		}
		idx.addText(h.Chorus, h.Number)
		idx.addText(h.Author, h.Number)
		idx.addText(h.Composer, h.Number)
	}
	return idx
}

func (idx *Index) addText(text string, number int) {
	for _, token := range Tokenize(text) {
		addPosting(idx.postings, token, number)
	}
}

func addPosting(postings map[string]map[int]struct{}, token string, number int) {
	set, ok := postings[token]
	if !ok {
		set = map[int]struct{}{}
		postings[token] = set
	}
	set[number] = struct{}{}
}

// Postings returns the set of hymn numbers containing the token.
func (idx *Index) Postings(token string) map[int]struct{} {
	return idx.postings[token]
}

// TitlePostings returns the set of hymn numbers whose title contains the token.
func (idx *Index) TitlePostings(token string) map[int]struct{} {
	return idx.titlePostings[token]
}

// Hymn returns the indexed record for a number.
func (idx *Index) Hymn(n int) (model.Hymn, bool) {
	h, ok := idx.byNumber[n]
	return h, ok
}

// Tokens returns the number of distinct indexed tokens.
func (idx *Index) Tokens() int {
	return len(idx.postings)
}
