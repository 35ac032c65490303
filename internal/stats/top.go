package stats

import "sort"

// TopViewed returns the n most viewed hymns, ties broken by hymn number.
func TopViewed(usages []HymnUsage, n int) []HymnUsage {
	if len(usages) == 0 {
		return nil
	}
	sorted := make([]HymnUsage, len(usages))
	copy(sorted, usages)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Views == sorted[j].Views {
			return sorted[i].Hymn.Number < sorted[j].Hymn.Number
		}
		return sorted[i].Views > sorted[j].Views
	})
	if n <= 0 || n > len(sorted) {
		n = len(sorted)
	}
	return sorted[:n]
}
