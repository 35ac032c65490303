// Package userstate persists favorites, recents, and view counters.
package userstate

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"hymnal/internal/corpus"
)

// SchemaVersion is the persisted state layout this build reads and writes.
const SchemaVersion = 1

// DefaultRecentLimit bounds the recently-viewed list.
const DefaultRecentLimit = 20

// PersistenceError reports that user state could not be read or written.
// It is non-fatal: the in-memory state stays usable and the process keeps
// running.
type PersistenceError struct {
	Op  string
	Err error
}

// Error implements the error interface.
func (e *PersistenceError) Error() string {
	return fmt.Sprintf("user state %s failed: %v", e.Op, e.Err)
}

// Unwrap returns the underlying cause.
func (e *PersistenceError) Unwrap() error {
	return e.Err
}

type stateFile struct {
	SchemaVersion  int         `json:"schema_version"`
	Favorites      []int       `json:"favorites"`
	RecentlyViewed []int       `json:"recently_viewed"`
	ViewCounts     map[int]int `json:"view_counts"`
}

// Store owns the mutable user state. All access is serialized by an
// internal mutex so foreground UI actions and background callers cannot
// observe partially-updated state.
type Store struct {
	mu          sync.Mutex
	path        string
	valid       func(int) bool
	recentLimit int

	favorites  map[int]struct{}
	recent     []int
	viewCounts map[int]int
	dirty      bool
}

// Open constructs a store bound to path and loads any persisted state.
// valid reports whether a hymn number exists in the corpus. A missing
// state file is a fresh start, not an error; an unreadable or corrupt
// file yields a PersistenceError alongside a usable empty store.
func Open(path string, recentLimit int, valid func(int) bool) (*Store, error) {
	if recentLimit <= 0 {
		recentLimit = DefaultRecentLimit
	}
	s := &Store{
		path:        path,
		valid:       valid,
		recentLimit: recentLimit,
		favorites:   map[int]struct{}{},
		viewCounts:  map[int]int{},
	}
	return s, s.Load()
}

// Load replaces the in-memory state with the persisted file contents.
func (s *Store) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			s.reset()
			return nil
		}
		s.reset()
		return &PersistenceError{Op: "load", Err: err}
	}
	var file stateFile
	if err := json.Unmarshal(data, &file); err != nil {
		s.reset()
		return &PersistenceError{Op: "load", Err: err}
	}
	if file.SchemaVersion != SchemaVersion {
		s.reset()
		return &PersistenceError{Op: "load", Err: fmt.Errorf("unsupported schema version %d (want %d)", file.SchemaVersion, SchemaVersion)}
	}

	s.reset()
	for _, n := range file.Favorites {
		s.favorites[n] = struct{}{}
	}
	s.recent = append(s.recent, file.RecentlyViewed...)
	if len(s.recent) > s.recentLimit {
		s.recent = s.recent[:s.recentLimit]
	}
	for n, count := range file.ViewCounts {
		if count > 0 {
			s.viewCounts[n] = count
		}
	}
	return nil
}

func (s *Store) reset() {
	s.favorites = map[int]struct{}{}
	s.recent = nil
	s.viewCounts = map[int]int{}
	s.dirty = false
}

// Save writes the state to a temp file in the target directory and
// atomically renames it into place, so an interrupted write never
// corrupts the previously persisted file.
func (s *Store) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveLocked()
}

func (s *Store) saveLocked() error {
	file := stateFile{
		SchemaVersion:  SchemaVersion,
		Favorites:      s.favoritesLocked(),
		RecentlyViewed: append([]int(nil), s.recent...),
		ViewCounts:     s.viewCounts,
	}
	data, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return &PersistenceError{Op: "save", Err: err}
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &PersistenceError{Op: "save", Err: err}
	}
	tmpFile, err := os.CreateTemp(dir, "state-*.json")
	if err != nil {
		return &PersistenceError{Op: "save", Err: err}
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()

	if _, err := tmpFile.Write(data); err != nil {
		return &PersistenceError{Op: "save", Err: err}
	}
	if err := tmpFile.Sync(); err != nil {
		return &PersistenceError{Op: "save", Err: err}
	}
	if err := tmpFile.Close(); err != nil {
		return &PersistenceError{Op: "save", Err: err}
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		return &PersistenceError{Op: "save", Err: err}
	}
	s.dirty = false
	return nil
}

// Close flushes pending state. Safe to call when nothing is dirty.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.dirty {
		return nil
	}
	return s.saveLocked()
}

// ToggleFavorite flips membership of n in the favorites set and persists.
// It returns the new membership. Unknown numbers fail with
// corpus.ErrNotFound; a failed save returns a PersistenceError while the
// in-memory toggle stays applied.
func (s *Store) ToggleFavorite(n int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.valid(n) {
		return false, fmt.Errorf("hymn %d: %w", n, corpus.ErrNotFound)
	}
	_, isFavorite := s.favorites[n]
	if isFavorite {
		delete(s.favorites, n)
	} else {
		s.favorites[n] = struct{}{}
	}
	s.dirty = true
	return !isFavorite, s.saveLocked()
}

// RecordView increments the view counter for n, moves it to the front of
// the recently-viewed list without duplicating it, and persists.
func (s *Store) RecordView(n int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.valid(n) {
		return fmt.Errorf("hymn %d: %w", n, corpus.ErrNotFound)
	}
	s.viewCounts[n]++
	s.recent = moveToFront(s.recent, n, s.recentLimit)
	s.dirty = true
	return s.saveLocked()
}

func moveToFront(recent []int, n, limit int) []int {
	out := make([]int, 0, len(recent)+1)
	out = append(out, n)
	for _, existing := range recent {
		if existing == n {
			continue
		}
		out = append(out, existing)
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// IsFavorite reports whether n is a favorite.
func (s *Store) IsFavorite(n int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.favorites[n]
	return ok
}

// Favorites returns the favorite hymn numbers in ascending order.
func (s *Store) Favorites() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.favoritesLocked()
}

func (s *Store) favoritesLocked() []int {
	out := make([]int, 0, len(s.favorites))
	for n := range s.favorites {
		out = append(out, n)
	}
	sort.Ints(out)
	return out
}

// Recent returns the recently-viewed hymn numbers, most recent first.
func (s *Store) Recent() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]int(nil), s.recent...)
}

// ViewCount returns how many times n was viewed.
func (s *Store) ViewCount(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewCounts[n]
}

// ViewCounts returns a copy of all view counters.
func (s *Store) ViewCounts() map[int]int {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[int]int, len(s.viewCounts))
	for n, count := range s.viewCounts {
		out[n] = count
	}
	return out
}

// Dirty reports whether there are unsaved mutations.
func (s *Store) Dirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dirty
}
