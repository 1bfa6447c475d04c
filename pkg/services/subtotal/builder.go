package subtotal

import (
	"cmp"
	"slices"

	"github.com/de-tools/case-atlas/pkg/models/domain"
	"github.com/de-tools/case-atlas/pkg/services/normalize"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

type Options struct {
	Columns          domain.ColumnMapping
	ReasonOrder      domain.SortOrder
	GroupOrder       domain.SortOrder
	NormalizeReasons bool
}

func OptionsFromProfile(p domain.ReportProfile) Options {
	return Options{
		Columns:          p.Columns,
		ReasonOrder:      p.ReasonOrder,
		GroupOrder:       p.GroupOrder,
		NormalizeReasons: p.NormalizeReasons,
	}
}

// Builder produces drug -> reason subtotal reports.
type Builder struct {
	name string
	opts Options
}

func NewBuilder(name string, opts Options) *Builder {
	if opts.ReasonOrder == "" {
		opts.ReasonOrder = domain.SortByName
	}
	if opts.GroupOrder == "" {
		opts.GroupOrder = domain.SortByName
	}
	return &Builder{name: name, opts: opts}
}

type columns struct {
	group, sub, value int
}

func (b *Builder) resolve(ds *domain.Dataset) (columns, error) {
	c := b.opts.Columns
	if err := ds.Require(b.name, c.Drug, c.Reason, c.Count); err != nil {
		return columns{}, err
	}
	group, _ := ds.ColumnIndex(c.Drug)
	sub, _ := ds.ColumnIndex(c.Reason)
	value, _ := ds.ColumnIndex(c.Count)
	return columns{group: group, sub: sub, value: value}, nil
}

func (b *Builder) subKey(raw string) string {
	if b.opts.NormalizeReasons {
		return normalize.Text(raw)
	}
	return normalize.Key(raw)
}

// Build groups ds by drug and reason and lays the sums out as total rows, indented detail
// rows and separators, closed by a Grand Total row.
func (b *Builder) Build(ds *domain.Dataset) (*domain.SubtotalReport, error) {
	cols, err := b.resolve(ds)
	if err != nil {
		return nil, err
	}

	totals := make(map[string]decimal.Decimal)
	details := make(map[string]map[string]decimal.Decimal)
	for _, row := range ds.Rows {
		group := normalize.Key(ds.Value(row, cols.group))
		sub := b.subKey(ds.Value(row, cols.sub))
		value := normalize.Count(ds.Value(row, cols.value))

		totals[group] = totals[group].Add(value)
		if details[group] == nil {
			details[group] = make(map[string]decimal.Decimal)
		}
		details[group][sub] = details[group][sub].Add(value)
	}

	groups := order(lo.Keys(totals), totals, b.opts.GroupOrder)
	report := &domain.SubtotalReport{
		GroupColumn: b.opts.Columns.Drug,
		SubColumn:   b.opts.Columns.Reason,
		ValueColumn: b.opts.Columns.Count,
		Rows:        make([]domain.ReportRow, 0, len(ds.Rows)+2*len(groups)+1),
		GrandTotal:  decimal.Zero,
		Groups:      len(groups),
	}

	for _, group := range groups {
		report.Rows = append(report.Rows, domain.ReportRow{Group: group, Value: totals[group]})

		subs := details[group]
		for _, sub := range order(lo.Keys(subs), subs, b.opts.ReasonOrder) {
			report.Rows = append(report.Rows, domain.ReportRow{
				Sub:   domain.SubIndent + sub,
				Value: subs[sub],
			})
		}
		report.Rows = append(report.Rows, domain.ReportRow{Blank: true})

		report.GrandTotal = report.GrandTotal.Add(totals[group])
	}

	report.Rows = append(report.Rows, domain.ReportRow{
		Group: domain.GrandTotalLabel,
		Value: report.GrandTotal,
	})
	return report, nil
}

// order sorts keys by name, or by value descending with ties broken by name.
func order(keys []string, values map[string]decimal.Decimal, by domain.SortOrder) []string {
	slices.SortFunc(keys, func(a, b string) int {
		if by == domain.SortByValue {
			if c := values[b].Cmp(values[a]); c != 0 {
				return c
			}
		}
		return cmp.Compare(a, b)
	})
	return keys
}
