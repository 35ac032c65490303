// Package corpus handles SQLite-backed hymn storage.
package corpus

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"hymnal/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// SchemaVersion is the corpus database layout this build reads and writes.
const SchemaVersion = 1

const verseSeparator = "\n\n"

// Store wraps SQLite access to the hymn corpus. After a successful Load the
// corpus is held in memory and is read-only; callers may share it freely.
type Store struct {
	db       *sql.DB
	hymns    []model.Hymn
	byNumber map[int]model.Hymn
}

// Open opens an existing corpus database.
func Open(path string) (*Store, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("failed to stat corpus: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open corpus: %w", err)
	}
	return &Store{db: db}, nil
}

// Create creates (or opens) a corpus database and applies the schema.
func Create(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create corpus dir: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open corpus: %w", err)
	}
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS hymns (
			number INTEGER PRIMARY KEY,
			title TEXT NOT NULL,
			verses TEXT NOT NULL,
			chorus TEXT NOT NULL DEFAULT '',
			author TEXT NOT NULL DEFAULT '',
			composer TEXT NOT NULL DEFAULT '',
			category TEXT NOT NULL DEFAULT ''
		);`,
		`CREATE INDEX IF NOT EXISTS idx_hymns_title ON hymns(title);`,
		`CREATE INDEX IF NOT EXISTS idx_hymns_category ON hymns(category);`,
		`CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to apply corpus schema: %w", err)
		}
	}
	_, err := s.db.Exec(
		`INSERT INTO meta (key, value) VALUES ('schema_version', ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		strconv.Itoa(SchemaVersion),
	)
	if err != nil {
		return fmt.Errorf("failed to write schema version: %w", err)
	}
	return nil
}

// ReplaceAll rewrites the full hymn set in a single transaction.
func (s *Store) ReplaceAll(ctx context.Context, hymns []model.Hymn) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin corpus tx: %w", err)
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM hymns`); err != nil {
		return fmt.Errorf("failed to clear hymns: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO hymns (number, title, verses, chorus, author, composer, category)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare hymn insert: %w", err)
	}
	defer func() {
		if cerr := stmt.Close(); cerr != nil {
			// Best-effort statement close.
			_ = cerr
		}
	}()
	for _, h := range hymns {
		verses := strings.Join(h.Verses, verseSeparator)
		if _, err = stmt.ExecContext(ctx, h.Number, h.Title, verses, h.Chorus, h.Author, h.Composer, h.Category); err != nil {
			return fmt.Errorf("failed to insert hymn %d: %w", h.Number, err)
		}
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit corpus tx: %w", err)
	}
	return nil
}

// Load reads the whole corpus into memory. Loading is all-or-nothing:
// missing required fields or colliding numbers fail with a CorruptError
// and leave the store without any records.
func (s *Store) Load(ctx context.Context) error {
	if err := s.checkSchemaVersion(ctx); err != nil {
		return err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT number, title, verses, chorus, author, composer, category
		 FROM hymns ORDER BY number ASC`)
	if err != nil {
		return &CorruptError{Reason: "failed to read hymns", Err: err}
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var hymns []model.Hymn
	byNumber := map[int]model.Hymn{}
	for rows.Next() {
		var h model.Hymn
		var verses string
		if err := rows.Scan(&h.Number, &h.Title, &verses, &h.Chorus, &h.Author, &h.Composer, &h.Category); err != nil {
			return &CorruptError{Reason: "failed to scan hymn", Err: err}
		}
		if h.Number <= 0 {
			return &CorruptError{Reason: fmt.Sprintf("hymn number %d is not positive", h.Number)}
		}
		if strings.TrimSpace(h.Title) == "" {
			return &CorruptError{Reason: fmt.Sprintf("hymn %d has no title", h.Number)}
		}
		h.Verses = splitVerses(verses)
		if len(h.Verses) == 0 {
			return &CorruptError{Reason: fmt.Sprintf("hymn %d has no verses", h.Number)}
		}
		if _, ok := byNumber[h.Number]; ok {
			return &CorruptError{Reason: fmt.Sprintf("duplicate hymn number %d", h.Number)}
		}
		hymns = append(hymns, h)
		byNumber[h.Number] = h
	}
	if err := rows.Err(); err != nil {
		return &CorruptError{Reason: "failed to iterate hymns", Err: err}
	}
	if len(hymns) == 0 {
		return &CorruptError{Reason: "corpus is empty"}
	}

	s.hymns = hymns
	s.byNumber = byNumber
	return nil
}

func (s *Store) checkSchemaVersion(ctx context.Context) error {
	var value string
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM meta WHERE key = 'schema_version'`).Scan(&value)
	if err != nil {
		return &CorruptError{Reason: "missing schema version", Err: err}
	}
	version, err := strconv.Atoi(value)
	if err != nil {
		return &CorruptError{Reason: fmt.Sprintf("bad schema version %q", value), Err: err}
	}
	if version != SchemaVersion {
		return &CorruptError{Reason: fmt.Sprintf("unsupported schema version %d (want %d)", version, SchemaVersion)}
	}
	return nil
}

// ByNumber returns the hymn with the given number or ErrNotFound.
func (s *Store) ByNumber(n int) (model.Hymn, error) {
	h, ok := s.byNumber[n]
	if !ok {
		return model.Hymn{}, fmt.Errorf("hymn %d: %w", n, ErrNotFound)
	}
	return h, nil
}

// Contains reports whether the corpus has the given hymn number.
func (s *Store) Contains(n int) bool {
	_, ok := s.byNumber[n]
	return ok
}

// All returns the loaded corpus ordered by hymn number.
func (s *Store) All() []model.Hymn {
	return s.hymns
}

// Len returns the number of loaded hymns.
func (s *Store) Len() int {
	return len(s.hymns)
}

// Categories returns the distinct category names present in the corpus.
func (s *Store) Categories() []string {
	seen := map[string]struct{}{}
	var names []string
	for _, h := range s.hymns {
		if h.Category == "" {
			continue
		}
		if _, ok := seen[h.Category]; ok {
			continue
		}
		seen[h.Category] = struct{}{}
		names = append(names, h.Category)
	}
	sort.Strings(names)
	return names
}

func splitVerses(verses string) []string {
	parts := strings.Split(verses, verseSeparator)
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		out = append(out, part)
	}
	return out
}
