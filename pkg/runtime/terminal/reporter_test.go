package terminal

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/de-tools/case-atlas/pkg/models/domain"
)

func TestReporter_HandleHistory(t *testing.T) {
	var buf bytes.Buffer
	r := NewReporter(&buf)

	err := r.HandleHistory([]*domain.Run{{
		ID:        "run-1",
		StartedAt: time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC),
		Output:    "final_output.xlsx",
		Profiles:  []string{"daily", "aging"},
		Sheets:    []domain.SheetSummary{{Sheet: "Pivot_Summary", Rows: 4, Total: "12.5"}},
		Status:    domain.RunStatusPublished,
		Location:  "s3://reports/final_output.xlsx",
	}})

	require.NoError(t, err)
	out := buf.String()
	assert.Contains(t, out, "2026-03-02 09:30  run-1  published")
	assert.Contains(t, out, "final_output.xlsx -> s3://reports/final_output.xlsx")
	assert.Contains(t, out, "profiles: daily, aging")
	assert.Contains(t, out, "- Pivot_Summary: 4 rows, total 12.5")
}

func TestReporter_HandleHistory_Empty(t *testing.T) {
	var buf bytes.Buffer

	require.NoError(t, NewReporter(&buf).HandleHistory(nil))
	assert.Contains(t, buf.String(), "No runs recorded.")
}
