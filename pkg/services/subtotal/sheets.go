package subtotal

import (
	"math"

	"github.com/de-tools/case-atlas/pkg/models/domain"
	"github.com/de-tools/case-atlas/pkg/services/normalize"
	"github.com/shopspring/decimal"
)

// SourceSheet copies ds with the drug and reason cells trimmed and the count column coerced
// to numbers, the way the report read them.
func (b *Builder) SourceSheet(name string, ds *domain.Dataset) (domain.Sheet, error) {
	cols, err := b.resolve(ds)
	if err != nil {
		return domain.Sheet{}, err
	}

	sheet := domain.Sheet{
		Name:   name,
		Header: append([]string(nil), ds.Columns...),
		Rows:   make([][]any, 0, len(ds.Rows)),
	}
	for _, row := range ds.Rows {
		out := make([]any, len(ds.Columns))
		for i := range ds.Columns {
			v := ds.Value(row, i)
			switch i {
			case cols.group, cols.sub:
				out[i] = normalize.Key(v)
			case cols.value:
				out[i] = Number(normalize.Count(v))
			default:
				out[i] = cell(v)
			}
		}
		sheet.Rows = append(sheet.Rows, out)
	}
	return sheet, nil
}

// ReportSheet lays a report out as three columns named after the source columns.
// The Grand Total row is emphasised.
func ReportSheet(name string, report *domain.SubtotalReport) domain.Sheet {
	sheet := domain.Sheet{
		Name:   name,
		Header: []string{report.GroupColumn, report.SubColumn, report.ValueColumn},
		Rows:   make([][]any, 0, len(report.Rows)),
	}
	for i, r := range report.Rows {
		var value any
		if !r.Blank {
			value = Number(r.Value)
		}
		sheet.Rows = append(sheet.Rows, []any{cell(r.Group), cell(r.Sub), value})
		if r.IsGrandTotal() {
			sheet.Emphasis = append(sheet.Emphasis, i)
		}
	}
	return sheet
}

var maxInt = decimal.NewFromInt(math.MaxInt64)

// Number renders whole decimals that fit an int64 as integers and everything else as float64.
func Number(d decimal.Decimal) any {
	if d.IsInteger() && d.Abs().LessThanOrEqual(maxInt) {
		return d.IntPart()
	}
	return d.InexactFloat64()
}

func cell(s string) any {
	if s == "" {
		return nil
	}
	return s
}
