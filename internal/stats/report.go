// Package stats contains usage calculations and reporting.
package stats

import (
	"fmt"
	"io"

	"hymnal/internal/corpus"
	"hymnal/internal/model"
	"hymnal/internal/userstate"
)

// HymnUsage pairs a hymn with its view counter.
type HymnUsage struct {
	Hymn  model.Hymn
	Views int
}

// Report contains precomputed data for usage rendering.
type Report struct {
	TotalHymns  int
	TotalViews  int
	TopViewed   []HymnUsage
	Favorites   []model.Hymn
	Recent      []model.Hymn
	CategoryUse map[string]int
}

// BuildReport prepares usage data from the corpus and the user state.
func BuildReport(store *corpus.Store, state *userstate.Store, cfg model.StatsConfig) Report {
	report := Report{
		TotalHymns:  store.Len(),
		CategoryUse: map[string]int{},
	}

	counts := state.ViewCounts()
	usages := make([]HymnUsage, 0, len(counts))
	for n, views := range counts {
		h, err := store.ByNumber(n)
		if err != nil {
			// Counter for a hymn no longer in the corpus; skip it.
			continue
		}
		if cfg.Category != "" && h.Category != cfg.Category {
			continue
		}
		report.TotalViews += views
		if h.Category != "" {
			report.CategoryUse[h.Category] += views
		}
		usages = append(usages, HymnUsage{Hymn: h, Views: views})
	}
	report.TopViewed = TopViewed(usages, cfg.Top)

	for _, n := range state.Favorites() {
		h, err := store.ByNumber(n)
		if err != nil {
			continue
		}
		if cfg.Category != "" && h.Category != cfg.Category {
			continue
		}
		report.Favorites = append(report.Favorites, h)
	}
	for _, n := range state.Recent() {
		h, err := store.ByNumber(n)
		if err != nil {
			continue
		}
		report.Recent = append(report.Recent, h)
	}
	return report
}

// RenderReport prints the usage report as plain-text tables.
func RenderReport(w io.Writer, report Report) error {
	if _, err := fmt.Fprintf(w, "Hymns: %d\n", report.TotalHymns); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Views: %d\n", report.TotalViews); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Favorites: %d\n\n", len(report.Favorites)); err != nil {
		return err
	}

	if len(report.TopViewed) == 0 {
		_, err := fmt.Fprintln(w, "No views recorded yet.")
		return err
	}

	if _, err := fmt.Fprintln(w, "Most Viewed"); err != nil {
		return err
	}
	headers := []string{"No.", "Title", "Category", "Views"}
	rows := make([][]string, 0, len(report.TopViewed))
	for _, usage := range report.TopViewed {
		rows = append(rows, []string{
			fmt.Sprintf("%d", usage.Hymn.Number),
			usage.Hymn.Title,
			usage.Hymn.Category,
			fmt.Sprintf("%d", usage.Views),
		})
	}
	for _, line := range formatTable(headers, rows, map[int]bool{0: true, 3: true}) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}

	if len(report.Favorites) > 0 {
		if _, err := fmt.Fprintln(w, "\nFavorites"); err != nil {
			return err
		}
		for _, h := range report.Favorites {
			if _, err := fmt.Fprintf(w, "%4d  %s\n", h.Number, h.Title); err != nil {
				return err
			}
		}
	}
	return nil
}
