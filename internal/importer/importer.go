// Package importer builds the corpus database from hymnal JSON bundles.
package importer

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"hymnal/internal/corpus"
	"hymnal/internal/model"
)

// BundleHymn is one entry of a hymnal JSON bundle. Content carries the
// full hymn text with verse blocks separated by blank lines.
type BundleHymn struct {
	Number   int    `json:"number"`
	Title    string `json:"title"`
	Content  string `json:"content"`
	Author   string `json:"author"`
	Composer string `json:"composer"`
	Category string `json:"category"`
}

// DecodeBundle parses a hymnal JSON bundle.
func DecodeBundle(data []byte) ([]BundleHymn, error) {
	var hymns []BundleHymn
	if err := json.Unmarshal(data, &hymns); err != nil {
		return nil, fmt.Errorf("failed to decode bundle: %w", err)
	}
	if len(hymns) == 0 {
		return nil, fmt.Errorf("bundle contains no hymns")
	}
	return hymns, nil
}

// Convert validates a bundle entry and turns it into a corpus record.
func Convert(bh BundleHymn) (model.Hymn, error) {
	if bh.Number <= 0 {
		return model.Hymn{}, fmt.Errorf("hymn %q has number %d", bh.Title, bh.Number)
	}
	title := StripNumberPrefix(bh.Title, bh.Number)
	if title == "" {
		return model.Hymn{}, fmt.Errorf("hymn %d has no title", bh.Number)
	}
	verses, chorus := SplitContent(bh.Content)
	if len(verses) == 0 {
		return model.Hymn{}, fmt.Errorf("hymn %d has no content", bh.Number)
	}
	category := bh.Category
	if category == "" {
		category = ClassifyCategory(title, bh.Content)
	}
	return model.Hymn{
		Number:   bh.Number,
		Title:    title,
		Verses:   verses,
		Chorus:   chorus,
		Author:   strings.TrimSpace(bh.Author),
		Composer: strings.TrimSpace(bh.Composer),
		Category: category,
	}, nil
}

// StripNumberPrefix removes a leading "N – " or "N. " from a bundle title.
func StripNumberPrefix(title string, number int) string {
	title = strings.TrimSpace(title)
	prefix := fmt.Sprintf("%d", number)
	rest, ok := strings.CutPrefix(title, prefix)
	if !ok {
		return title
	}
	trimmed := strings.TrimSpace(rest)
	for _, sep := range []string{"–", "-", ".", ":"} {
		if stripped, ok := strings.CutPrefix(trimmed, sep); ok {
			return strings.TrimSpace(stripped)
		}
	}
	// Without a separator the number must be its own word, so "100 Years"
	// is left alone for hymn 1.
	if trimmed == "" || !strings.HasPrefix(rest, " ") {
		return title
	}
	return trimmed
}

// SplitContent splits hymn content into verse blocks on blank lines and
// pulls out a chorus block when one is labeled.
func SplitContent(content string) (verses []string, chorus string) {
	content = strings.ReplaceAll(content, "\r\n", "\n")
	for _, block := range strings.Split(content, "\n\n") {
		lines := make([]string, 0, 8)
		for _, line := range strings.Split(block, "\n") {
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			lines = append(lines, line)
		}
		if len(lines) == 0 {
			continue
		}
		if chorus == "" && isChorusLabel(lines[0]) && len(lines) > 1 {
			chorus = strings.Join(lines[1:], "\n")
			continue
		}
		verses = append(verses, strings.Join(lines, "\n"))
	}
	return verses, chorus
}

func isChorusLabel(line string) bool {
	line = strings.ToLower(strings.TrimRight(line, ":."))
	return line == "chorus" || line == "refrain"
}

// Import builds the corpus database at corpusPath from raw bundle bytes.
// Bundles with colliding hymn numbers are rejected before anything is
// written.
func Import(ctx context.Context, data []byte, corpusPath string) (int, error) {
	bundle, err := DecodeBundle(data)
	if err != nil {
		return 0, err
	}
	hymns := make([]model.Hymn, 0, len(bundle))
	seen := map[int]struct{}{}
	for _, bh := range bundle {
		h, err := Convert(bh)
		if err != nil {
			return 0, fmt.Errorf("invalid bundle entry: %w", err)
		}
		if _, ok := seen[h.Number]; ok {
			return 0, fmt.Errorf("bundle has duplicate hymn number %d", h.Number)
		}
		seen[h.Number] = struct{}{}
		hymns = append(hymns, h)
	}
	sort.Slice(hymns, func(i, j int) bool { return hymns[i].Number < hymns[j].Number })

	store, err := corpus.Create(corpusPath)
	if err != nil {
		return 0, err
	}
	defer func() {
		if cerr := store.Close(); cerr != nil {
			// Best-effort close.
			_ = cerr
		}
	}()
	if err := store.ReplaceAll(ctx, hymns); err != nil {
		return 0, err
	}
	return len(hymns), nil
}

// ImportFile builds the corpus database from a bundle file on disk.
func ImportFile(ctx context.Context, bundlePath, corpusPath string) (int, error) {
	data, err := os.ReadFile(bundlePath)
	if err != nil {
		return 0, fmt.Errorf("failed to read bundle: %w", err)
	}
	return Import(ctx, data, corpusPath)
}
