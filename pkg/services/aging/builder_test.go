package aging

import (
	"testing"
	"time"

	"github.com/de-tools/case-atlas/pkg/models/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	now    = time.Date(2026, 10, 16, 14, 30, 0, 0, time.UTC)
	header = []string{
		"drug", "case_sub_status", "case_sub_status_reason_code",
		"file_receipt_date_time", "eligibility_start_date", "case_id",
	}
)

func daysAgo(n int) string {
	return now.AddDate(0, 0, -n).Format("2006-01-02")
}

func newBuilder(t *testing.T, byCaseID bool) *Builder {
	t.Helper()
	b, err := NewBuilder("aging", Options{
		Columns:       domain.DefaultColumns(),
		GroupByCaseID: byCaseID,
		Now:           func() time.Time { return now },
	})
	require.NoError(t, err)
	return b
}

func TestBuilder_Build_BucketBoundaries(t *testing.T) {
	tests := []struct {
		days   int
		bucket string
	}{
		{days: 0, bucket: "0-15"},
		{days: 14, bucket: "0-15"},
		{days: 15, bucket: "15-30"},
		{days: 29, bucket: "15-30"},
		{days: 30, bucket: "30-45"},
		{days: 45, bucket: "45-60"},
		{days: 60, bucket: "60-75"},
		{days: 75, bucket: "75-90"},
		{days: 89, bucket: "75-90"},
		{days: 90, bucket: "75-90"},
		{days: 91, bucket: "90+"},
		{days: 400, bucket: "90+"},
	}

	b := newBuilder(t, false)
	for _, tt := range tests {
		t.Run(tt.bucket, func(t *testing.T) {
			ds := domain.NewDataset(header, [][]string{{"A", "open", "x", daysAgo(tt.days), "", ""}})

			result, err := b.Build(ds)

			require.NoError(t, err)
			require.Len(t, result.Cases, 1)
			c := result.Cases[0]
			assert.True(t, c.Defined)
			assert.Equal(t, tt.days, c.Days)
			assert.Equal(t, tt.bucket, result.Pivot.Buckets[c.Bucket].Label)
		})
	}
}

func TestBuilder_Build_Exclusivity(t *testing.T) {
	b := newBuilder(t, false)
	rows := [][]string{
		{"A", "open", "x", "", "", ""},
		{"A", "open", "x", "garbage", "also garbage", ""},
	}
	for d := 0; d <= 120; d++ {
		rows = append(rows, []string{"A", "open", "x", daysAgo(d), "", ""})
	}

	result, err := b.Build(domain.NewDataset(header, rows))
	require.NoError(t, err)

	for _, c := range result.Cases {
		members := 0
		for _, bucket := range result.Pivot.Buckets {
			if c.Defined && bucket.Contains(c.Days) {
				members++
			}
		}
		if c.Defined {
			assert.Equal(t, 1, members, "age %d", c.Days)
		} else {
			assert.Equal(t, 0, members)
			assert.Equal(t, -1, c.Bucket)
		}
	}

	require.Len(t, result.Pivot.Rows, 1)
	assert.Equal(t, 121, result.Pivot.Rows[0].Total())
	assert.Equal(t, 121, result.Aged())
	assert.Equal(t, []int{15, 15, 15, 15, 15, 16, 30}, result.Pivot.BucketTotals())
}

func TestBuilder_Build_EffectiveDate(t *testing.T) {
	b := newBuilder(t, false)
	ds := domain.NewDataset(header, [][]string{
		{"A", "s", "r", daysAgo(3), daysAgo(40), ""},
		{"A", "s", "r", "", daysAgo(40), ""},
		{"A", "s", "r", "n/a", daysAgo(20), ""},
		{"A", "s", "r", daysAgo(-5), "", ""},
		{"A", "s", "r", "2026-10-15 09:00:00", "", ""},
	})

	result, err := b.Build(ds)
	require.NoError(t, err)

	days := make([]int, 0, len(result.Cases))
	for _, c := range result.Cases {
		require.True(t, c.Defined)
		days = append(days, c.Days)
	}
	assert.Equal(t, []int{3, 40, 20, 0, 0}, days)
}

func TestBuilder_Build_GroupsAndSorts(t *testing.T) {
	ds := domain.NewDataset(header, [][]string{
		{" B ", "pending", "missing info", daysAgo(1), "", "c3"},
		{"A", "  PENDING ", "Missing   INFO", daysAgo(20), "", "c1"},
		{"A", "pending", "missing info", daysAgo(2), "", "c2"},
		{"A", "", "", "", "", "c4"},
		{"A", "closed", "zz", daysAgo(100), "", " c1 "},
	})

	t.Run("by drug status reason", func(t *testing.T) {
		result, err := newBuilder(t, false).Build(ds)
		require.NoError(t, err)

		keys := make([]domain.PivotKey, 0)
		for _, r := range result.Pivot.Rows {
			keys = append(keys, r.PivotKey)
		}
		assert.Equal(t, []domain.PivotKey{
			{Drug: "A", Status: "Closed", Reason: "Zz"},
			{Drug: "A", Status: "Pending", Reason: "Missing Info"},
			{Drug: "A", Status: "Unknown", Reason: "Unknown"},
			{Drug: "B", Status: "Pending", Reason: "Missing Info"},
		}, keys)
		assert.Equal(t, []int{0, 0, 0, 0, 0, 0, 1}, result.Pivot.Rows[0].Counts)
		assert.Equal(t, []int{1, 1, 0, 0, 0, 0, 0}, result.Pivot.Rows[1].Counts)
		assert.Equal(t, []int{0, 0, 0, 0, 0, 0, 0}, result.Pivot.Rows[2].Counts)
	})

	t.Run("by case id", func(t *testing.T) {
		result, err := newBuilder(t, true).Build(ds)
		require.NoError(t, err)

		require.Len(t, result.Pivot.Rows, 5)
		assert.Equal(t, "c1", result.Pivot.Rows[0].CaseID)
		assert.Equal(t, "Closed", result.Pivot.Rows[0].Status)
		assert.Equal(t, "c1", result.Pivot.Rows[1].CaseID)
		assert.Equal(t, "c2", result.Pivot.Rows[2].CaseID)
	})
}

func TestBuilder_Build_MissingMarkersAndBlankDrug(t *testing.T) {
	ds := domain.NewDataset(header, [][]string{
		{"A", "N/A", "NULL", daysAgo(1), "", "c1"},
		{"A", "", "None", daysAgo(2), "", "c2"},
		{"A", "#N/A", "<NA>", daysAgo(3), "", "c3"},
		{"  ", "open", "MISSING_INFO", daysAgo(4), "", "c4"},
		{"", "open", "missing_info", daysAgo(5), "", "c5"},
	})

	result, err := newBuilder(t, false).Build(ds)
	require.NoError(t, err)

	require.Len(t, result.Pivot.Rows, 2)
	assert.Equal(t, domain.PivotKey{Drug: "", Status: "Open", Reason: "Missing_Info"}, result.Pivot.Rows[0].PivotKey)
	assert.Equal(t, []int{2, 0, 0, 0, 0, 0, 0}, result.Pivot.Rows[0].Counts)
	assert.Equal(t, domain.PivotKey{Drug: "A", Status: "Unknown", Reason: "Unknown"}, result.Pivot.Rows[1].PivotKey)
	assert.Equal(t, []int{3, 0, 0, 0, 0, 0, 0}, result.Pivot.Rows[1].Counts)

	sheet := result.PivotSheet("Pivot")
	assert.Nil(t, sheet.Rows[0][0])
}

func TestBuilder_Build_MissingColumns(t *testing.T) {
	ds := domain.NewDataset([]string{"drug", "case_sub_status", "case_sub_status_reason_code"}, nil)

	_, err := newBuilder(t, true).Build(ds)

	var schemaErr *domain.SchemaError
	require.ErrorAs(t, err, &schemaErr)
	assert.Equal(t, []string{"file_receipt_date_time", "eligibility_start_date", "case_id"}, schemaErr.Missing)
}

func TestAge(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skip("timezone database unavailable")
	}
	today := time.Date(2026, 11, 3, 0, 0, 0, 0, loc)

	assert.Equal(t, 5, Age(today, time.Date(2026, 10, 29, 0, 0, 0, 0, loc)), "across DST change")
	assert.Equal(t, 4, Age(today, time.Date(2026, 10, 29, 15, 0, 0, 0, loc)), "partial day floors")
	assert.Equal(t, 0, Age(today, time.Date(2026, 11, 10, 0, 0, 0, 0, loc)), "future clamps")
}

func TestResult_Sheets(t *testing.T) {
	ds := domain.NewDataset(header, [][]string{
		{"A", "open", "x", daysAgo(16), "", "c1"},
		{"A", "open", "x", "", "", ""},
	})
	result, err := newBuilder(t, true).Build(ds)
	require.NoError(t, err)

	cases := result.CaseSheet("All Pending Cases by Case ID")
	assert.Equal(t, append(append([]string{}, header...),
		"File Receipt Date Until Today", "0-15", "15-30", "30-45", "45-60", "60-75", "75-90", "90+"),
		cases.Header)
	assert.Equal(t, []any{"A", "open", "x", daysAgo(16), nil, "c1", 16, nil, 1, nil, nil, nil, nil, nil}, cases.Rows[0])
	assert.Equal(t, []any{"A", "open", "x", nil, nil, nil, nil, nil, nil, nil, nil, nil, nil, nil}, cases.Rows[1])

	pivot := result.PivotSheet("Aging by Status & Drug")
	assert.Equal(t, []string{
		"drug", "case_sub_status", "case_sub_status_reason_code", "case_id",
		"0-15", "15-30", "30-45", "45-60", "60-75", "75-90", "90+",
	}, pivot.Header)
	assert.Equal(t, [][]any{
		{"A", "Open", "X", nil, 0, 0, 0, 0, 0, 0, 0},
		{"A", "Open", "X", "c1", 0, 1, 0, 0, 0, 0, 0},
	}, pivot.Rows)
}
