package report

import (
	"sort"
)

// Count is one institution and its number of occurrences.
type Count struct {
	Institution string `json:"institution"`
	Count       int    `json:"count"`
}

// sortCounts flattens counts, most frequent first. Ties are ordered by name
// so output is stable.
func sortCounts(counts map[string]int) []Count {
	out := make([]Count, 0, len(counts))
	for inst, n := range counts {
		out = append(out, Count{Institution: inst, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Institution < out[j].Institution
	})
	return out
}

// sortedYears returns the keys of a year-keyed map in ascending order
func sortedYears[V any](m map[string]V) []string {
	years := make([]string, 0, len(m))
	for y := range m {
		years = append(years, y)
	}
	sort.Strings(years)
	return years
}
