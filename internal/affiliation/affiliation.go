// Package affiliation classifies and counts author institution names.
package affiliation

import (
	"strings"
)

// Bucket is the classification of an institution name
type Bucket string

const (
	Academic Bucket = "academic"
	Other    Bucket = "other"
)

// academicKeywords mark an institution as academic when found anywhere in
// its lowercased name.
var academicKeywords = []string{
	"university",
	"college",
	"institute of technology",
}

// Classify returns the bucket for an institution name.
func Classify(inst string) Bucket {
	inst = strings.ToLower(inst)
	for _, kw := range academicKeywords {
		if strings.Contains(inst, kw) {
			return Academic
		}
	}
	return Other
}

// Record counts institution occurrences for one year.
type Record struct {
	Academic map[string]int `json:"academic"`
	Other    map[string]int `json:"other"`
}

// NewRecord creates an empty record
func NewRecord() *Record {
	return &Record{
		Academic: make(map[string]int),
		Other:    make(map[string]int),
	}
}

// Add classifies inst, increments its count in the matching bucket and
// returns the bucket and the new count. Names are lowercased before counting.
func (r *Record) Add(inst string) (Bucket, int) {
	inst = strings.ToLower(inst)
	bucket := Classify(inst)

	counts := r.Other
	if bucket == Academic {
		counts = r.Academic
	}
	counts[inst]++
	return bucket, counts[inst]
}

// Report holds the per-year records of an affiliation run and the profile
// pages that could not be parsed.
type Report struct {
	Years       map[string]*Record `json:"years"`
	ManualCheck []string           `json:"manual_check"`
}

// NewReport creates an empty report
func NewReport() *Report {
	return &Report{
		Years:       make(map[string]*Record),
		ManualCheck: make([]string, 0),
	}
}

// Year returns the record for year, creating it on first use.
func (r *Report) Year(year string) *Record {
	rec, ok := r.Years[year]
	if !ok {
		rec = NewRecord()
		r.Years[year] = rec
	}
	return rec
}

// Bucket returns the counts of one bucket keyed by year.
func (r *Report) Bucket(b Bucket) map[string]map[string]int {
	out := make(map[string]map[string]int, len(r.Years))
	for year, rec := range r.Years {
		if b == Academic {
			out[year] = rec.Academic
		} else {
			out[year] = rec.Other
		}
	}
	return out
}

// FromBuckets rebuilds a report from persisted bucket maps.
func FromBuckets(academic, other map[string]map[string]int, manual []string) *Report {
	r := NewReport()
	for year, counts := range academic {
		rec := r.Year(year)
		for inst, n := range counts {
			rec.Academic[inst] = n
		}
	}
	for year, counts := range other {
		rec := r.Year(year)
		for inst, n := range counts {
			rec.Other[inst] = n
		}
	}
	if manual != nil {
		r.ManualCheck = manual
	}
	return r
}
