package domain

import (
	"fmt"
	"strconv"
)

// DefaultBucketBounds yields 0-15, 15-30, 30-45, 45-60, 60-75, 75-90 and 90+.
var DefaultBucketBounds = []int{0, 15, 30, 45, 60, 75, 90}

// Bucket is a day range. Min is inclusive; Max is exclusive unless IncludeMax is set.
// An Open bucket has no upper bound and holds ages strictly greater than Min.
type Bucket struct {
	Label      string
	Min        int
	Max        int
	IncludeMax bool
	Open       bool
}

func (b Bucket) Contains(days int) bool {
	if b.Open {
		return days > b.Min
	}
	if days < b.Min {
		return false
	}
	if b.IncludeMax {
		return days <= b.Max
	}
	return days < b.Max
}

// BucketSet is an ordered, contiguous list of buckets covering every non-negative age.
type BucketSet []Bucket

// NewBucketSet derives buckets from ascending boundaries. Every pair of neighbours forms a
// half-open range, the last bounded range also holds its upper bound, and a final open
// bucket holds everything above the last boundary.
func NewBucketSet(bounds []int) (BucketSet, error) {
	if len(bounds) < 2 {
		return nil, fmt.Errorf("at least two bucket boundaries are required, got %d", len(bounds))
	}
	if bounds[0] != 0 {
		return nil, fmt.Errorf("first bucket boundary must be 0, got %d", bounds[0])
	}
	for i := 1; i < len(bounds); i++ {
		if bounds[i] <= bounds[i-1] {
			return nil, fmt.Errorf("bucket boundaries must be strictly increasing: %d after %d", bounds[i], bounds[i-1])
		}
	}

	set := make(BucketSet, 0, len(bounds))
	for i := 0; i < len(bounds)-1; i++ {
		set = append(set, Bucket{
			Label:      fmt.Sprintf("%d-%d", bounds[i], bounds[i+1]),
			Min:        bounds[i],
			Max:        bounds[i+1],
			IncludeMax: i == len(bounds)-2,
		})
	}
	last := bounds[len(bounds)-1]
	set = append(set, Bucket{
		Label: strconv.Itoa(last) + "+",
		Min:   last,
		Open:  true,
	})
	return set, nil
}

// Assign returns the index of the bucket holding days, or -1.
func (s BucketSet) Assign(days int) int {
	for i, b := range s {
		if b.Contains(days) {
			return i
		}
	}
	return -1
}

func (s BucketSet) Labels() []string {
	labels := make([]string, len(s))
	for i, b := range s {
		labels[i] = b.Label
	}
	return labels
}

type PivotKey struct {
	Drug   string
	Status string
	Reason string
	CaseID string
}

// PivotRow holds per-bucket record counts for one grouping key.
type PivotRow struct {
	PivotKey
	Counts []int
}

func (r PivotRow) Total() int {
	total := 0
	for _, c := range r.Counts {
		total += c
	}
	return total
}

type AgingPivot struct {
	Buckets       BucketSet
	GroupByCaseID bool
	Rows          []PivotRow
}

// BucketTotals sums every bucket column across all rows.
func (p *AgingPivot) BucketTotals() []int {
	totals := make([]int, len(p.Buckets))
	for _, row := range p.Rows {
		for i, c := range row.Counts {
			totals[i] += c
		}
	}
	return totals
}
