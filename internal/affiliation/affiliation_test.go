package affiliation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		inst string
		want Bucket
	}{
		{"stanford university", Academic},
		{"University of Cambridge", Academic},
		{"imperial college london", Academic},
		{"massachusetts institute of technology", Academic},
		{"google inc", Other},
		{"at&t labs - research", Other},
		{"institute for infocomm research", Other},
		{"", Other},
	}

	for _, tt := range tests {
		t.Run(tt.inst, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.inst))
		})
	}
}

func TestRecord_Add(t *testing.T) {
	rec := NewRecord()

	bucket, n := rec.Add("stanford university")
	assert.Equal(t, Academic, bucket)
	assert.Equal(t, 1, n)

	bucket, n = rec.Add("google inc")
	assert.Equal(t, Other, bucket)
	assert.Equal(t, 1, n)

	bucket, n = rec.Add("Stanford University")
	assert.Equal(t, Academic, bucket)
	assert.Equal(t, 2, n)

	_, n = rec.Add("google inc")
	assert.Equal(t, 2, n)

	assert.Equal(t, map[string]int{"stanford university": 2}, rec.Academic)
	assert.Equal(t, map[string]int{"google inc": 2}, rec.Other)
}

func TestReport_Buckets(t *testing.T) {
	r := NewReport()
	r.Year("2002").Add("mit college")
	r.Year("2021").Add("microsoft research")
	r.Year("2021").Add("microsoft research")

	academic := r.Bucket(Academic)
	other := r.Bucket(Other)

	assert.Equal(t, map[string]int{"mit college": 1}, academic["2002"])
	assert.Empty(t, academic["2021"])
	assert.Equal(t, map[string]int{"microsoft research": 2}, other["2021"])

	rebuilt := FromBuckets(academic, other, []string{"https://dl.acm.org/profile/1"})
	assert.Equal(t, r.Years, rebuilt.Years)
	assert.Equal(t, []string{"https://dl.acm.org/profile/1"}, rebuilt.ManualCheck)
}
