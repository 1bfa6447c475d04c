package subtotal

import (
	"fmt"
	"math"
	"math/rand"
	"testing"

	"github.com/de-tools/case-atlas/pkg/models/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var header = []string{"drug", "case_sub_status_reason_code", "case_count"}

func dataset(rows ...[]string) *domain.Dataset {
	return domain.NewDataset(header, rows)
}

type row struct {
	group string
	sub   string
	value string
}

func flatten(report *domain.SubtotalReport) []row {
	out := make([]row, 0, len(report.Rows))
	for _, r := range report.Rows {
		value := ""
		if !r.Blank {
			value = r.Value.String()
		}
		out = append(out, row{group: r.Group, sub: r.Sub, value: value})
	}
	return out
}

func TestBuilder_Build_Example(t *testing.T) {
	// Given
	ds := dataset(
		[]string{"A", "x", "3"},
		[]string{"A", "y", "2"},
		[]string{"B", "x", "5"},
	)
	b := NewBuilder("cumulative", Options{Columns: domain.DefaultColumns(), NormalizeReasons: true})

	// When
	report, err := b.Build(ds)

	// Then
	require.NoError(t, err)
	assert.Equal(t, []row{
		{"A", "", "5"},
		{"", "  X", "3"},
		{"", "  Y", "2"},
		{"", "", ""},
		{"B", "", "5"},
		{"", "  X", "5"},
		{"", "", ""},
		{"Grand Total", "", "10"},
	}, flatten(report))
	assert.Equal(t, 2, report.Groups)
	assert.True(t, report.GrandTotal.Equal(decimal.NewFromInt(10)))
}

func TestBuilder_Build_NormalizesReasons(t *testing.T) {
	ds := dataset(
		[]string{" A ", "  missing   INFO", "1"},
		[]string{"A", "Missing info", "2"},
		[]string{"A", "", "4"},
	)

	t.Run("normalized", func(t *testing.T) {
		report, err := NewBuilder("r", Options{Columns: domain.DefaultColumns(), NormalizeReasons: true}).Build(ds)
		require.NoError(t, err)
		assert.Equal(t, []row{
			{"A", "", "7"},
			{"", "  Missing Info", "3"},
			{"", "  Unknown", "4"},
			{"", "", ""},
			{"Grand Total", "", "7"},
		}, flatten(report))
	})

	t.Run("trimmed only", func(t *testing.T) {
		report, err := NewBuilder("r", Options{Columns: domain.DefaultColumns()}).Build(ds)
		require.NoError(t, err)
		assert.Equal(t, []row{
			{"A", "", "7"},
			{"", "  ", "4"},
			{"", "  Missing info", "2"},
			{"", "  missing   INFO", "1"},
			{"", "", ""},
			{"Grand Total", "", "7"},
		}, flatten(report))
	})
}

func TestBuilder_Build_ValueOrder(t *testing.T) {
	ds := dataset(
		[]string{"B", "a", "1"},
		[]string{"B", "b", "9"},
		[]string{"B", "c", "9"},
		[]string{"A", "z", "2"},
	)

	t.Run("reasons by value descending", func(t *testing.T) {
		report, err := NewBuilder("r", Options{
			Columns:     domain.DefaultColumns(),
			ReasonOrder: domain.SortByValue,
		}).Build(ds)
		require.NoError(t, err)
		assert.Equal(t, []row{
			{"A", "", "2"},
			{"", "  z", "2"},
			{"", "", ""},
			{"B", "", "19"},
			{"", "  b", "9"},
			{"", "  c", "9"},
			{"", "  a", "1"},
			{"", "", ""},
			{"Grand Total", "", "21"},
		}, flatten(report))
	})

	t.Run("groups by total descending", func(t *testing.T) {
		report, err := NewBuilder("r", Options{
			Columns:    domain.DefaultColumns(),
			GroupOrder: domain.SortByValue,
		}).Build(ds)
		require.NoError(t, err)
		assert.Equal(t, "B", report.Rows[0].Group)
		assert.Equal(t, "A", report.Rows[5].Group)
	})
}

func TestBuilder_Build_CoercesValues(t *testing.T) {
	ds := dataset(
		[]string{"A", "x", "abc"},
		[]string{"A", "x", ""},
		[]string{"A", "x", "2.5"},
		[]string{"A"},
	)

	report, err := NewBuilder("r", Options{Columns: domain.DefaultColumns(), NormalizeReasons: true}).Build(ds)
	require.NoError(t, err)
	assert.Equal(t, []row{
		{"A", "", "2.5"},
		{"", "  Unknown", "0"},
		{"", "  X", "2.5"},
		{"", "", ""},
		{"Grand Total", "", "2.5"},
	}, flatten(report))
}

func TestBuilder_Build_EmptyDataset(t *testing.T) {
	report, err := NewBuilder("r", Options{Columns: domain.DefaultColumns()}).Build(dataset())
	require.NoError(t, err)
	assert.Equal(t, []row{{"Grand Total", "", "0"}}, flatten(report))
}

func TestBuilder_Build_MissingColumns(t *testing.T) {
	ds := domain.NewDataset([]string{"drug", "other"}, nil)

	_, err := NewBuilder("cumulative", Options{Columns: domain.DefaultColumns()}).Build(ds)

	var schemaErr *domain.SchemaError
	require.ErrorAs(t, err, &schemaErr)
	assert.Equal(t, "cumulative", schemaErr.Report)
	assert.Equal(t, []string{"case_sub_status_reason_code", "case_count"}, schemaErr.Missing)
	assert.Equal(t, []string{"drug", "other"}, schemaErr.Found)
}

func TestBuilder_Build_GrandTotalInvariant(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	values := []string{"1", "0.1", "0.2", "7", "x", "", "1000000.01", "-3"}

	for i := 0; i < 50; i++ {
		var rows [][]string
		sum := decimal.Zero
		n := rng.Intn(40)
		for j := 0; j < n; j++ {
			v := values[rng.Intn(len(values))]
			if d, err := decimal.NewFromString(v); err == nil {
				sum = sum.Add(d)
			}
			rows = append(rows, []string{
				fmt.Sprintf("drug-%d", rng.Intn(4)),
				fmt.Sprintf("reason-%d", rng.Intn(5)),
				v,
			})
		}

		report, err := NewBuilder("r", Options{Columns: domain.DefaultColumns()}).Build(dataset(rows...))
		require.NoError(t, err)

		last := report.Rows[len(report.Rows)-1]
		require.True(t, last.IsGrandTotal())
		assert.True(t, sum.Equal(last.Value), "expected %s, got %s", sum, last.Value)

		groupSum := decimal.Zero
		for _, r := range report.Rows {
			if r.Group != "" && !r.IsGrandTotal() {
				groupSum = groupSum.Add(r.Value)
			}
		}
		assert.True(t, groupSum.Equal(last.Value))
	}
}

func TestReportSheet(t *testing.T) {
	ds := dataset(
		[]string{"A", "x", "3"},
		[]string{"A", "y", "1.5"},
	)
	report, err := NewBuilder("r", Options{Columns: domain.DefaultColumns(), NormalizeReasons: true}).Build(ds)
	require.NoError(t, err)

	sheet := ReportSheet("Summary", report)

	assert.Equal(t, "Summary", sheet.Name)
	assert.Equal(t, header, sheet.Header)
	assert.Equal(t, [][]any{
		{"A", nil, 4.5},
		{nil, "  X", int64(3)},
		{nil, "  Y", 1.5},
		{nil, nil, nil},
		{"Grand Total", nil, 4.5},
	}, sheet.Rows)
	assert.Equal(t, []int{4}, sheet.Emphasis)
}

func TestSourceSheet(t *testing.T) {
	ds := domain.NewDataset(
		[]string{"drug", "case_sub_status_reason_code", "case_count", "note"},
		[][]string{{" A ", " x ", "oops", "keep"}, {"B", "y", "2"}},
	)
	b := NewBuilder("r", Options{Columns: domain.DefaultColumns()})

	sheet, err := b.SourceSheet("Source", ds)

	require.NoError(t, err)
	assert.Equal(t, [][]any{
		{"A", "x", int64(0), "keep"},
		{"B", "y", int64(2), nil},
	}, sheet.Rows)
}

func TestReportSheet_ValuesBeyondInt64(t *testing.T) {
	ds := dataset(
		[]string{"A", "x", "1e20"},
		[]string{"A", "y", "9223372036854775808"},
		[]string{"B", "z", "-9223372036854775807"},
	)
	report, err := NewBuilder("r", Options{Columns: domain.DefaultColumns(), NormalizeReasons: true}).Build(ds)
	require.NoError(t, err)
	assert.Equal(t, "109223372036854775808", report.Rows[0].Value.String())
	assert.Equal(t, "100000000000000000001", report.GrandTotal.String())

	sheet := ReportSheet("Summary", report)

	assert.Equal(t, report.Rows[0].Value.InexactFloat64(), sheet.Rows[0][2])
	assert.Greater(t, sheet.Rows[0][2], 1e20)
	assert.Equal(t, 1e20, sheet.Rows[1][2])
	assert.Equal(t, math.Pow(2, 63), sheet.Rows[2][2])
	assert.Equal(t, int64(-9223372036854775807), sheet.Rows[5][2])

	last := sheet.Rows[len(sheet.Rows)-1]
	assert.Equal(t, "Grand Total", last[0])
	assert.Equal(t, 1e20, last[2])
	assert.Equal(t, int64(math.MaxInt64), Number(decimal.NewFromInt(math.MaxInt64)))
}
