// Package model defines shared data structures.
package model

import "strings"

// Hymn is one entry of the hymnal corpus. The corpus is loaded once at
// startup and never mutated afterwards; Number is the stable identity.
type Hymn struct {
	Number   int
	Title    string
	Verses   []string
	Chorus   string
	Author   string
	Composer string
	Category string
}

// FullText joins verses and chorus into a single displayable block.
func (h Hymn) FullText() string {
	var b strings.Builder
	for i, verse := range h.Verses {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(verse)
	}
	if h.Chorus != "" {
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString("Chorus:\n")
		b.WriteString(h.Chorus)
	}
	return b.String()
}

// Match is one ranked search hit.
type Match struct {
	Hymn          Hymn
	TokensMatched int
	TitleHit      bool
}

// BrowseConfig defines browse TUI settings.
type BrowseConfig struct {
	RecentLimit int
	Category    string
}

// StatsConfig defines filters for usage reporting.
type StatsConfig struct {
	Top      int
	Category string
}
