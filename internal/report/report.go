// Package report compares author sets across years and renders the
// cross-reference and affiliation reports.
package report

import (
	"github.com/pfrederiksen/conf-authors/internal/author"
)

// Overlap is the set of authors shared by a group of years.
type Overlap struct {
	Years   []string    `json:"years"`
	Authors []author.ID `json:"authors"`
	Count   int         `json:"count"`
}

func newOverlap(years []string, s author.Set) *Overlap {
	return &Overlap{
		Years:   years,
		Authors: s.Sorted(),
		Count:   s.Len(),
	}
}

// CrossReference holds the author overlaps between a target year and its
// baseline years.
type CrossReference struct {
	Conference string   `json:"conference"`
	Target     string   `json:"target"`
	Baselines  []string `json:"baselines"`
	// Pairs holds one overlap per baseline, in baseline order.
	Pairs []*Overlap `json:"pairs"`
	// Combined is the union of all baselines intersected with the target.
	// Nil with fewer than two baselines.
	Combined *Overlap `json:"combined,omitempty"`
	// AllYears is the intersection of every baseline and the target. Nil
	// with fewer than two baselines.
	AllYears   *Overlap `json:"all_years,omitempty"`
	ProfileURL string   `json:"profile_url"`
}

// CrossReferenceAuthors computes the overlaps of target with each baseline
// year. Years missing from idx count as empty.
func CrossReferenceAuthors(idx author.Index, conference, target string, baselines []string, profileURL string) *CrossReference {
	cr := &CrossReference{
		Conference: conference,
		Target:     target,
		Baselines:  baselines,
		Pairs:      make([]*Overlap, 0, len(baselines)),
		ProfileURL: profileURL,
	}

	targetSet := idx.Get(target)
	union := author.NewSet()
	all := targetSet

	for _, year := range baselines {
		base := idx.Get(year)
		cr.Pairs = append(cr.Pairs, newOverlap([]string{year, target}, base.Intersect(targetSet)))
		union = union.Union(base)
		all = all.Intersect(base)
	}

	if len(baselines) >= 2 {
		years := append(append([]string{}, baselines...), target)
		cr.Combined = newOverlap(years, union.Intersect(targetSet))
		cr.AllYears = newOverlap(years, all)
	}

	return cr
}
