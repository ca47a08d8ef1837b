package report

import (
	"sort"

	"github.com/antzucaro/matchr"
)

// SimilarityThreshold is the minimum Jaro-Winkler score for two institution
// names to be reported as possible spellings of the same institution.
const SimilarityThreshold = 0.95

// Similar is a pair of distinct institution names that probably refer to the
// same institution.
type Similar struct {
	A     string  `json:"a"`
	B     string  `json:"b"`
	Score float64 `json:"score"`
}

// SimilarInstitutions returns the pairs of distinct names found in any of
// counts that score at least threshold, best match first. Counts are never merged;
// the pairs are a hint for the reader.
func SimilarInstitutions(threshold float64, counts ...map[string]int) []Similar {
	seen := make(map[string]bool)
	var names []string
	for _, c := range counts {
		for name := range c {
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		}
	}
	sort.Strings(names)

	var pairs []Similar
	for i, a := range names {
		for _, b := range names[i+1:] {
			score := matchr.JaroWinkler(a, b, false)
			if score >= threshold {
				pairs = append(pairs, Similar{A: a, B: b, Score: score})
			}
		}
	}

	sort.SliceStable(pairs, func(i, j int) bool {
		return pairs[i].Score > pairs[j].Score
	})
	return pairs
}
