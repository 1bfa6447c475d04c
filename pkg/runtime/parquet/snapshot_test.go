package parquet

import (
	"path/filepath"
	"testing"

	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/de-tools/case-atlas/pkg/models/store"
)

func TestExporter_Export(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshots", "run-1.parquet")
	records := []store.SnapshotRecord{
		{RunID: "run-1", Profile: "aging", Drug: "Drug A", Status: "Open", Reason: "Pending", Bucket: "0-15", Count: 3},
		{RunID: "run-1", Profile: "aging", Drug: "Drug B", Status: "Open", Reason: "Pending", CaseID: "C-7", Bucket: "90+", Count: 1},
	}

	require.NoError(t, NewExporter().Export(path, records))

	rows, err := parquet.ReadFile[SnapshotRow](path)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, FromRecord(records[0]), rows[0])
	assert.Equal(t, "C-7", rows[1].CaseID)
	assert.Equal(t, int64(1), rows[1].Count)
}

func TestSnapshotWriter_Count(t *testing.T) {
	w, err := NewSnapshotWriter(filepath.Join(t.TempDir(), "out.parquet"))
	require.NoError(t, err)

	require.NoError(t, w.Write(SnapshotRow{RunID: "r", Bucket: "0-15", Count: 2}))
	require.NoError(t, w.Write(SnapshotRow{RunID: "r", Bucket: "15-30", Count: 1}))
	assert.Equal(t, 2, w.Count())
	require.NoError(t, w.Close())
}

func TestExporter_EmptySnapshot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.parquet")

	require.NoError(t, NewExporter().Export(path, nil))

	rows, err := parquet.ReadFile[SnapshotRow](path)
	require.NoError(t, err)
	assert.Empty(t, rows)
}
