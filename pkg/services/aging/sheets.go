package aging

import "github.com/de-tools/case-atlas/pkg/models/domain"

// CaseSheet copies the source rows and appends the age in days and one column per bucket
// holding 1 for the bucket the case falls in.
func (r *Result) CaseSheet(name string) domain.Sheet {
	labels := r.Pivot.Buckets.Labels()
	header := make([]string, 0, len(r.Columns)+1+len(labels))
	header = append(header, r.Columns...)
	header = append(header, r.DaysColumn)
	header = append(header, labels...)

	sheet := domain.Sheet{Name: name, Header: header, Rows: make([][]any, 0, len(r.Cases))}
	for _, c := range r.Cases {
		out := make([]any, len(header))
		for i := range r.Columns {
			if i < len(c.Row) && c.Row[i] != "" {
				out[i] = c.Row[i]
			}
		}
		if c.Defined {
			out[len(r.Columns)] = c.Days
		}
		if c.Bucket >= 0 {
			out[len(r.Columns)+1+c.Bucket] = 1
		}
		sheet.Rows = append(sheet.Rows, out)
	}
	return sheet
}

// PivotSheet renders the pivot with the grouping columns first, then bucket counts.
func (r *Result) PivotSheet(name string) domain.Sheet {
	header := []string{r.Mapping.Drug, r.Mapping.Status, r.Mapping.Reason}
	if r.Pivot.GroupByCaseID {
		header = append(header, r.Mapping.CaseID)
	}
	keys := len(header)
	header = append(header, r.Pivot.Buckets.Labels()...)

	sheet := domain.Sheet{Name: name, Header: header, Rows: make([][]any, 0, len(r.Pivot.Rows))}
	for _, row := range r.Pivot.Rows {
		out := make([]any, 0, len(header))
		out = append(out, row.Drug, row.Status, row.Reason)
		if r.Pivot.GroupByCaseID {
			out = append(out, row.CaseID)
		}
		for _, c := range row.Counts {
			out = append(out, c)
		}
		for i := 0; i < keys; i++ {
			if out[i] == "" {
				out[i] = nil
			}
		}
		sheet.Rows = append(sheet.Rows, out)
	}
	return sheet
}

// Aged counts the cases that landed in a bucket.
func (r *Result) Aged() int {
	n := 0
	for _, c := range r.Cases {
		if c.Bucket >= 0 {
			n++
		}
	}
	return n
}
