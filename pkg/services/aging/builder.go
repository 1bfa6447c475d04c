package aging

import (
	"cmp"
	"fmt"
	"slices"
	"time"

	"github.com/de-tools/case-atlas/pkg/models/domain"
	"github.com/de-tools/case-atlas/pkg/services/normalize"
)

type Options struct {
	Columns       domain.ColumnMapping
	Buckets       domain.BucketSet
	GroupByCaseID bool
	DaysColumn    string
	// Now defaults to time.Now; its location is the calendar used for ages.
	Now func() time.Time
}

func OptionsFromProfile(p domain.ReportProfile) (Options, error) {
	buckets, err := domain.NewBucketSet(p.Buckets)
	if err != nil {
		return Options{}, fmt.Errorf("profile %s: %w", p.Name, err)
	}
	return Options{
		Columns:       p.Columns,
		Buckets:       buckets,
		GroupByCaseID: p.GroupByCaseID,
		DaysColumn:    p.DaysColumn,
	}, nil
}

// Builder assigns every case to an age bucket and pivots bucket counts by
// drug, status and reason (and case id when configured).
type Builder struct {
	name string
	opts Options
}

func NewBuilder(name string, opts Options) (*Builder, error) {
	if len(opts.Buckets) == 0 {
		buckets, err := domain.NewBucketSet(domain.DefaultBucketBounds)
		if err != nil {
			return nil, err
		}
		opts.Buckets = buckets
	}
	if opts.DaysColumn == "" {
		opts.DaysColumn = domain.DefaultDaysColumn
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Builder{name: name, opts: opts}, nil
}

// Case is one source row with its computed age.
type Case struct {
	Row     []string
	Key     domain.PivotKey
	Days    int
	Defined bool
	Bucket  int // -1 when the age is undefined
}

type Result struct {
	Columns    []string
	DaysColumn string
	Mapping    domain.ColumnMapping
	Cases      []Case
	Pivot      *domain.AgingPivot
}

type columns struct {
	drug, status, reason, receipt, eligibility, caseID int
}

func (b *Builder) resolve(ds *domain.Dataset) (columns, error) {
	c := b.opts.Columns
	required := []string{c.Drug, c.Status, c.Reason, c.Receipt, c.Eligibility}
	if b.opts.GroupByCaseID {
		required = append(required, c.CaseID)
	}
	if err := ds.Require(b.name, required...); err != nil {
		return columns{}, err
	}

	cols := columns{caseID: -1}
	cols.drug, _ = ds.ColumnIndex(c.Drug)
	cols.status, _ = ds.ColumnIndex(c.Status)
	cols.reason, _ = ds.ColumnIndex(c.Reason)
	cols.receipt, _ = ds.ColumnIndex(c.Receipt)
	cols.eligibility, _ = ds.ColumnIndex(c.Eligibility)
	if b.opts.GroupByCaseID {
		cols.caseID, _ = ds.ColumnIndex(c.CaseID)
	}
	return cols, nil
}

func (b *Builder) Build(ds *domain.Dataset) (*Result, error) {
	cols, err := b.resolve(ds)
	if err != nil {
		return nil, err
	}

	today := Midnight(b.opts.Now())
	loc := today.Location()

	result := &Result{
		Columns:    ds.Columns,
		DaysColumn: b.opts.DaysColumn,
		Mapping:    b.opts.Columns,
		Cases:      make([]Case, 0, len(ds.Rows)),
	}
	counts := make(map[domain.PivotKey][]int)

	for _, row := range ds.Rows {
		c := Case{Row: row, Bucket: -1}
		// Drug and case id are grouping keys, not labels: a blank drug stays its own "" group
		// and is never folded into Unknown.
		c.Key = domain.PivotKey{
			Drug:   normalize.Key(ds.Value(row, cols.drug)),
			Status: normalize.Text(ds.Value(row, cols.status)),
			Reason: normalize.Text(ds.Value(row, cols.reason)),
		}
		if cols.caseID >= 0 {
			c.Key.CaseID = normalize.Key(ds.Value(row, cols.caseID))
		}

		if date, ok := EffectiveDate(loc, ds.Value(row, cols.receipt), ds.Value(row, cols.eligibility)); ok {
			c.Days = Age(today, date)
			c.Defined = true
			c.Bucket = b.opts.Buckets.Assign(c.Days)
		}

		bucketCounts, ok := counts[c.Key]
		if !ok {
			bucketCounts = make([]int, len(b.opts.Buckets))
			counts[c.Key] = bucketCounts
		}
		if c.Bucket >= 0 {
			bucketCounts[c.Bucket]++
		}
		result.Cases = append(result.Cases, c)
	}

	pivot := &domain.AgingPivot{
		Buckets:       b.opts.Buckets,
		GroupByCaseID: b.opts.GroupByCaseID,
		Rows:          make([]domain.PivotRow, 0, len(counts)),
	}
	for key, c := range counts {
		pivot.Rows = append(pivot.Rows, domain.PivotRow{PivotKey: key, Counts: c})
	}
	slices.SortFunc(pivot.Rows, func(a, b domain.PivotRow) int {
		return compareKeys(a.PivotKey, b.PivotKey)
	})
	result.Pivot = pivot
	return result, nil
}

func compareKeys(a, b domain.PivotKey) int {
	if c := cmp.Compare(a.Drug, b.Drug); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Status, b.Status); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Reason, b.Reason); c != 0 {
		return c
	}
	return cmp.Compare(a.CaseID, b.CaseID)
}

// EffectiveDate returns the first of the given cells that parses as a date.
func EffectiveDate(loc *time.Location, cells ...string) (time.Time, bool) {
	for _, cell := range cells {
		if t, ok := normalize.Date(cell, loc); ok {
			return t, true
		}
	}
	return time.Time{}, false
}

// Midnight truncates t to the start of its calendar day in its own location.
func Midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// Age is the number of whole days from date until today (a midnight), floored and clamped
// at zero. Calendar days are counted so daylight-saving shifts do not lose a day.
func Age(today, date time.Time) int {
	date = date.In(today.Location())
	ty, tm, td := today.Date()
	dy, dm, dd := date.Date()
	days := int(time.Date(ty, tm, td, 0, 0, 0, 0, time.UTC).
		Sub(time.Date(dy, dm, dd, 0, 0, 0, 0, time.UTC)).Hours() / 24)
	if !date.Equal(Midnight(date)) {
		days--
	}
	if days < 0 {
		return 0
	}
	return days
}
