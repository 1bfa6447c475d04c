package domain

import (
	"github.com/samber/lo"
)

// Dataset is a tabular source held in memory: a header row and string cells.
type Dataset struct {
	Columns []string
	Rows    [][]string
	index   map[string]int
}

// NewDataset indexes the header of a dataset. When a header name repeats, the first
// occurrence wins.
func NewDataset(columns []string, rows [][]string) *Dataset {
	index := make(map[string]int, len(columns))
	for i, c := range columns {
		if _, exists := index[c]; !exists {
			index[c] = i
		}
	}
	return &Dataset{
		Columns: columns,
		Rows:    rows,
		index:   index,
	}
}

// ColumnIndex returns the position of a named column.
func (d *Dataset) ColumnIndex(name string) (int, bool) {
	i, ok := d.index[name]
	return i, ok
}

// Value returns the cell of row at position col, or "" for short rows and unknown columns.
func (d *Dataset) Value(row []string, col int) string {
	if col < 0 || col >= len(row) {
		return ""
	}
	return row[col]
}

func (d *Dataset) Len() int {
	return len(d.Rows)
}

// Require fails with a SchemaError naming every absent column.
func (d *Dataset) Require(report string, columns ...string) error {
	missing := lo.Filter(lo.Uniq(columns), func(c string, _ int) bool {
		_, ok := d.index[c]
		return !ok
	})
	if len(missing) == 0 {
		return nil
	}
	return &SchemaError{
		Report:  report,
		Missing: missing,
		Found:   append([]string(nil), d.Columns...),
	}
}
