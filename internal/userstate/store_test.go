package userstate

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"hymnal/internal/corpus"
)

func validNumbers(numbers ...int) func(int) bool {
	set := map[int]struct{}{}
	for _, n := range numbers {
		set[n] = struct{}{}
	}
	return func(n int) bool {
		_, ok := set[n]
		return ok
	}
}

func openTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "state.json")
	store, err := Open(path, 3, validNumbers(1, 2, 3, 4, 5))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	return store, path
}

func TestToggleFavoriteInvolution(t *testing.T) {
	store, _ := openTestStore(t)

	on, err := store.ToggleFavorite(2)
	if err != nil {
		t.Fatalf("ToggleFavorite failed: %v", err)
	}
	if !on {
		t.Fatalf("expected favorite to be on after first toggle")
	}
	if !store.IsFavorite(2) {
		t.Fatalf("expected 2 to be favorite")
	}

	on, err = store.ToggleFavorite(2)
	if err != nil {
		t.Fatalf("ToggleFavorite failed: %v", err)
	}
	if on {
		t.Fatalf("expected favorite to be off after second toggle")
	}
	if store.IsFavorite(2) {
		t.Fatalf("expected 2 to not be favorite")
	}
	if got := store.Favorites(); len(got) != 0 {
		t.Fatalf("expected empty favorites, got %v", got)
	}
}

func TestToggleFavoriteUnknownNumber(t *testing.T) {
	store, _ := openTestStore(t)
	if _, err := store.ToggleFavorite(99); !errors.Is(err, corpus.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if store.Dirty() {
		t.Fatalf("failed toggle must not dirty the store")
	}
}

func TestRecordViewMovesToFrontWithoutDuplicates(t *testing.T) {
	store, _ := openTestStore(t)

	for _, n := range []int{1, 2, 3, 2} {
		if err := store.RecordView(n); err != nil {
			t.Fatalf("RecordView(%d) failed: %v", n, err)
		}
	}
	want := []int{2, 3, 1}
	if got := store.Recent(); !reflect.DeepEqual(got, want) {
		t.Fatalf("Recent = %v, want %v", got, want)
	}
	if got := store.ViewCount(2); got != 2 {
		t.Fatalf("ViewCount(2) = %d, want 2", got)
	}
	if got := store.ViewCount(1); got != 1 {
		t.Fatalf("ViewCount(1) = %d, want 1", got)
	}
	if got := store.ViewCount(5); got != 0 {
		t.Fatalf("ViewCount(5) = %d, want 0", got)
	}
}

func TestRecordViewTrimsToBound(t *testing.T) {
	store, _ := openTestStore(t)
	for _, n := range []int{1, 2, 3, 4, 5} {
		if err := store.RecordView(n); err != nil {
			t.Fatalf("RecordView(%d) failed: %v", n, err)
		}
	}
	want := []int{5, 4, 3}
	if got := store.Recent(); !reflect.DeepEqual(got, want) {
		t.Fatalf("Recent = %v, want %v", got, want)
	}
}

func TestRecordViewUnknownNumber(t *testing.T) {
	store, _ := openTestStore(t)
	if err := store.RecordView(42); !errors.Is(err, corpus.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	store, path := openTestStore(t)
	if _, err := store.ToggleFavorite(1); err != nil {
		t.Fatalf("ToggleFavorite failed: %v", err)
	}
	if _, err := store.ToggleFavorite(3); err != nil {
		t.Fatalf("ToggleFavorite failed: %v", err)
	}
	for _, n := range []int{5, 4, 5} {
		if err := store.RecordView(n); err != nil {
			t.Fatalf("RecordView(%d) failed: %v", n, err)
		}
	}

	reloaded, err := Open(path, 3, validNumbers(1, 2, 3, 4, 5))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if got, want := reloaded.Favorites(), []int{1, 3}; !reflect.DeepEqual(got, want) {
		t.Fatalf("Favorites = %v, want %v", got, want)
	}
	if got, want := reloaded.Recent(), []int{5, 4}; !reflect.DeepEqual(got, want) {
		t.Fatalf("Recent = %v, want %v", got, want)
	}
	if got := reloaded.ViewCount(5); got != 2 {
		t.Fatalf("ViewCount(5) = %d, want 2", got)
	}
	if got := reloaded.ViewCount(4); got != 1 {
		t.Fatalf("ViewCount(4) = %d, want 1", got)
	}
}

func TestLoadMissingFileIsFreshStart(t *testing.T) {
	store, _ := openTestStore(t)
	if len(store.Favorites()) != 0 || len(store.Recent()) != 0 {
		t.Fatalf("expected empty state on first run")
	}
	if store.Dirty() {
		t.Fatalf("fresh state must not be dirty")
	}
}

func TestLoadCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	if err := os.WriteFile(path, []byte(`{"schema_version": 1, "favo`), 0o644); err != nil {
		t.Fatalf("failed to write corrupt state: %v", err)
	}

	store, err := Open(path, 3, validNumbers(1))
	var perr *PersistenceError
	if !errors.As(err, &perr) {
		t.Fatalf("expected PersistenceError, got %v", err)
	}
	// The store stays usable with empty in-memory state.
	if store == nil {
		t.Fatalf("expected usable store despite load failure")
	}
	if _, err := store.ToggleFavorite(1); err != nil {
		t.Fatalf("ToggleFavorite after failed load: %v", err)
	}
	if !store.IsFavorite(1) {
		t.Fatalf("expected in-memory favorite")
	}
}

func TestLoadUnsupportedSchemaVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	if err := os.WriteFile(path, []byte(`{"schema_version": 99}`), 0o644); err != nil {
		t.Fatalf("failed to write state: %v", err)
	}
	_, err := Open(path, 3, validNumbers(1))
	var perr *PersistenceError
	if !errors.As(err, &perr) {
		t.Fatalf("expected PersistenceError, got %v", err)
	}
}

func TestInterruptedWriteLeavesPersistedFileIntact(t *testing.T) {
	store, path := openTestStore(t)
	if _, err := store.ToggleFavorite(1); err != nil {
		t.Fatalf("ToggleFavorite failed: %v", err)
	}
	persisted, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read persisted state: %v", err)
	}

	// A crash between mutation and rename leaves only a stray temp file
	// behind; the persisted file must stay byte-identical and loadable.
	stray := filepath.Join(filepath.Dir(path), "state-123456.json")
	if err := os.WriteFile(stray, []byte(`{"schema_version": 1, "trunc`), 0o644); err != nil {
		t.Fatalf("failed to write stray temp file: %v", err)
	}

	after, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to re-read persisted state: %v", err)
	}
	if !reflect.DeepEqual(persisted, after) {
		t.Fatalf("persisted file changed")
	}
	reloaded, err := Open(path, 3, validNumbers(1))
	if err != nil {
		t.Fatalf("Open after simulated crash failed: %v", err)
	}
	if !reloaded.IsFavorite(1) {
		t.Fatalf("expected favorite to survive simulated crash")
	}
}

func TestSaveFailureKeepsInMemoryState(t *testing.T) {
	dir := t.TempDir()
	// The state path's parent is a regular file, so every save fails.
	blocker := filepath.Join(dir, "blocked")
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatalf("failed to create blocker file: %v", err)
	}
	store, err := Open(filepath.Join(blocker, "state.json"), 3, validNumbers(1))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	_, err = store.ToggleFavorite(1)
	var perr *PersistenceError
	if !errors.As(err, &perr) {
		t.Fatalf("expected PersistenceError, got %v", err)
	}
	if !store.IsFavorite(1) {
		t.Fatalf("expected toggle to stay applied in memory")
	}
	if !store.Dirty() {
		t.Fatalf("expected store to stay dirty after failed save")
	}
}
