package duckdb

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDB_CreatesSchema(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "duckdb-test-*")
	require.NoError(t, err)

	defer func() {
		err := os.RemoveAll(tmpDir)
		if err != nil {
			t.Errorf("failed to cleanup test directory: %v", err)
		}
	}()

	dbPath := filepath.Join(tmpDir, "test.db")
	db, err := NewDB(Settings{
		DbPath: dbPath,
	})
	require.NoError(t, err)
	require.NotNil(t, db)

	defer func() {
		err := db.Close()
		if err != nil {
			t.Errorf("failed to close database connection: %v", err)
		}
	}()

	_, err = db.Exec(
		`INSERT INTO report_runs (id, started_at, output, status, profiles, sheets) VALUES (?, now(), ?, ?, ?, ?)`,
		"run-001", "out.xlsx", "finished", "[]", "[]",
	)
	require.NoError(t, err)

	var count int
	err = db.QueryRow("SELECT COUNT(*) FROM report_runs WHERE id = ?", "run-001").Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestInTransaction(t *testing.T) {
	db, err := NewDB(Settings{DbPath: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	ctx := context.Background()

	insert := func(ctx context.Context, id string) error {
		_, err := Conn(ctx, db).ExecContext(ctx,
			`INSERT INTO report_runs (id, started_at, output, status, profiles, sheets) VALUES (?, now(), 'o', 's', '[]', '[]')`, id)
		return err
	}

	t.Run("commits", func(t *testing.T) {
		err := InTransaction(ctx, db, func(ctx context.Context) error {
			require.NotNil(t, GetTransaction(ctx))
			return insert(ctx, "committed")
		})
		require.NoError(t, err)

		var count int
		require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM report_runs WHERE id = 'committed'").Scan(&count))
		assert.Equal(t, 1, count)
	})

	t.Run("rolls back", func(t *testing.T) {
		boom := errors.New("boom")
		err := InTransaction(ctx, db, func(ctx context.Context) error {
			require.NoError(t, insert(ctx, "rolled-back"))
			return boom
		})
		assert.ErrorIs(t, err, boom)

		var count int
		require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM report_runs WHERE id = 'rolled-back'").Scan(&count))
		assert.Equal(t, 0, count)
	})
}

func TestNewDB_Threads(t *testing.T) {
	tests := []struct {
		name     string
		threads  int
		expected int64
	}{
		{name: "configured", threads: 2, expected: 2},
		{name: "default", threads: 0, expected: 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, err := NewDB(Settings{DbPath: ":memory:", Threads: tt.threads})
			require.NoError(t, err)
			t.Cleanup(func() { db.Close() })

			var threads int64
			require.NoError(t, db.QueryRow("SELECT current_setting('threads')").Scan(&threads))
			assert.Equal(t, tt.expected, threads)
		})
	}
}
