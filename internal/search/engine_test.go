package search

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"hymnal/internal/corpus"
	"hymnal/internal/model"
)

func testEngine(t *testing.T) *Engine {
	t.Helper()
	hymns := []model.Hymn{
		{
			Number: 7,
			Title:  "Sweet Hour of Prayer",
			Verses: []string{"Sweet hour of prayer, sweet hour of prayer\nThat calls me from a world of care"},
		},
		{
			Number:   42,
			Title:    "Amazing Grace",
			Verses:   []string{"Amazing grace! How sweet the sound\nThat saved a wretch like me!"},
			Author:   "John Newton",
			Category: "Salvation",
		},
		{
			Number: 100,
			Title:  "Marvelous Grace",
			Verses: []string{"Marvelous grace of our loving Lord"},
		},
		{
			Number: 200,
			Title:  "Day by Day",
			Verses: []string{"Grace for trials, grace for sorrow"},
		},
	}

	path := filepath.Join(t.TempDir(), "corpus.db")
	store, err := corpus.Create(path)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	t.Cleanup(func() {
		if cerr := store.Close(); cerr != nil {
			t.Errorf("Close failed: %v", cerr)
		}
	})
	if err := store.ReplaceAll(context.Background(), hymns); err != nil {
		t.Fatalf("ReplaceAll failed: %v", err)
	}
	if err := store.Load(context.Background()); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	return New(store)
}

func TestByNumber(t *testing.T) {
	engine := testEngine(t)
	h, err := engine.ByNumber(42)
	if err != nil {
		t.Fatalf("ByNumber failed: %v", err)
	}
	if h.Number != 42 {
		t.Fatalf("expected number 42, got %d", h.Number)
	}
	if _, err := engine.ByNumber(999); !errors.Is(err, corpus.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSearchEmptyQuery(t *testing.T) {
	engine := testEngine(t)
	for _, query := range []string{"", "   ", "the and of"} {
		if matches := engine.Search(query); len(matches) != 0 {
			t.Fatalf("Search(%q) returned %d matches, want 0", query, len(matches))
		}
	}
}

func TestSearchCaseInsensitive(t *testing.T) {
	engine := testEngine(t)
	for _, query := range []string{"amazing", "Amazing", "AMAZING GRACE"} {
		matches := engine.Search(query)
		if len(matches) == 0 {
			t.Fatalf("Search(%q) returned no matches", query)
		}
		if matches[0].Hymn.Number != 42 {
			t.Fatalf("Search(%q) first match is %d, want 42", query, matches[0].Hymn.Number)
		}
	}
}

func TestSearchRanksMoreMatchedTokensFirst(t *testing.T) {
	engine := testEngine(t)
	matches := engine.Search("amazing grace")
	if len(matches) == 0 {
		t.Fatalf("expected matches")
	}
	// Hymn 42 matches both tokens; the others match only "grace".
	if matches[0].Hymn.Number != 42 {
		t.Fatalf("expected hymn 42 first, got %d", matches[0].Hymn.Number)
	}
	if matches[0].TokensMatched != 2 {
		t.Fatalf("expected 2 matched tokens, got %d", matches[0].TokensMatched)
	}
}

func TestSearchRanksTitleHitsAboveLyricsOnly(t *testing.T) {
	engine := testEngine(t)
	matches := engine.Search("grace")
	if len(matches) != 3 {
		t.Fatalf("expected 3 matches, got %d", len(matches))
	}
	// 42 and 100 have "grace" in the title; 200 does not. Ties break by
	// ascending hymn number.
	wantOrder := []int{42, 100, 200}
	for i, want := range wantOrder {
		if matches[i].Hymn.Number != want {
			t.Fatalf("match %d is hymn %d, want %d", i, matches[i].Hymn.Number, want)
		}
	}
	if !matches[0].TitleHit || !matches[1].TitleHit {
		t.Fatalf("expected title hits for hymns 42 and 100")
	}
	if matches[2].TitleHit {
		t.Fatalf("hymn 200 must not be a title hit")
	}
}

func TestSearchOrSemantics(t *testing.T) {
	engine := testEngine(t)
	matches := engine.Search("prayer wretch")
	numbers := map[int]bool{}
	for _, match := range matches {
		numbers[match.Hymn.Number] = true
	}
	if !numbers[7] || !numbers[42] {
		t.Fatalf("expected hymns 7 and 42 in results, got %v", numbers)
	}
}
