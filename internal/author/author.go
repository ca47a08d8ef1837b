package author

import (
	"encoding/json"
	"sort"
)

// ID is an author identifier taken from the digital library byline.
type ID string

// Set is a set of unique, non-empty author identifiers.
type Set map[ID]struct{}

// NewSet creates a set holding ids
func NewSet(ids ...ID) Set {
	s := make(Set, len(ids))
	s.Add(ids...)
	return s
}

// Add inserts ids into the set. Empty identifiers are ignored.
func (s Set) Add(ids ...ID) {
	for _, id := range ids {
		if id == "" {
			continue
		}
		s[id] = struct{}{}
	}
}

// Has reports whether id is in the set
func (s Set) Has(id ID) bool {
	_, ok := s[id]
	return ok
}

// Len returns the number of identifiers
func (s Set) Len() int {
	return len(s)
}

// Sorted returns the identifiers in ascending order.
func (s Set) Sorted() []ID {
	ids := make([]ID, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Intersect returns the identifiers present in both s and other.
func (s Set) Intersect(other Set) Set {
	out := make(Set)
	for id := range s {
		if other.Has(id) {
			out[id] = struct{}{}
		}
	}
	return out
}

// Union returns the identifiers present in either s or other.
func (s Set) Union(other Set) Set {
	out := make(Set, len(s)+len(other))
	for id := range s {
		out[id] = struct{}{}
	}
	for id := range other {
		out[id] = struct{}{}
	}
	return out
}

// Equal reports whether both sets hold the same identifiers
func (s Set) Equal(other Set) bool {
	if len(s) != len(other) {
		return false
	}
	for id := range s {
		if !other.Has(id) {
			return false
		}
	}
	return true
}

// MarshalJSON encodes the set as a sorted array so output files are stable.
func (s Set) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Sorted())
}

// UnmarshalJSON decodes an array of identifiers. Duplicates collapse.
func (s *Set) UnmarshalJSON(data []byte) error {
	var ids []ID
	if err := json.Unmarshal(data, &ids); err != nil {
		return err
	}
	*s = NewSet(ids...)
	return nil
}

// Index maps a conference year to the authors of its accepted papers.
type Index map[string]Set

// Get returns the set for year, or an empty set if the year is absent.
func (idx Index) Get(year string) Set {
	if s, ok := idx[year]; ok && s != nil {
		return s
	}
	return make(Set)
}
