package runs

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/de-tools/case-atlas/pkg/models/store"
	"github.com/de-tools/case-atlas/pkg/store/duckdb"
)

const defaultListLimit = 20

// Store keeps the history of report runs and the aging snapshots they produced.
type Store interface {
	AddRun(ctx context.Context, run *store.RunRecord) error
	ListRuns(ctx context.Context, limit int) ([]*store.RunRecord, error)
	AddSnapshot(ctx context.Context, records []store.SnapshotRecord) error
	GetSnapshot(ctx context.Context, runID string) ([]store.SnapshotRecord, error)
	// SaveRun stores a run and its snapshot in one transaction.
	SaveRun(ctx context.Context, run *store.RunRecord, snapshot []store.SnapshotRecord) error
}

type defaultStore struct {
	db *sql.DB
}

func NewStore(db *sql.DB) (Store, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}
	return &defaultStore{
		db: db,
	}, nil
}

func (s *defaultStore) AddRun(ctx context.Context, run *store.RunRecord) error {
	if run == nil || run.ID == "" {
		return fmt.Errorf("run id is required")
	}

	profiles, err := json.Marshal(run.Profiles)
	if err != nil {
		return fmt.Errorf("marshal profiles: %w", err)
	}
	sheets, err := json.Marshal(run.Sheets)
	if err != nil {
		return fmt.Errorf("marshal sheets: %w", err)
	}

	_, err = duckdb.Conn(ctx, s.db).ExecContext(ctx, `
		INSERT INTO report_runs (id, started_at, output, status, profiles, sheets, location)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		run.ID,
		run.StartedAt,
		run.Output,
		run.Status,
		string(profiles),
		string(sheets),
		nullString(run.Location),
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

func (s *defaultStore) ListRuns(ctx context.Context, limit int) ([]*store.RunRecord, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, started_at, output, status, profiles, sheets, location
		FROM report_runs
		ORDER BY started_at DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := make([]*store.RunRecord, 0)
	for rows.Next() {
		var (
			run              store.RunRecord
			profiles, sheets string
			location         sql.NullString
		)
		if err := rows.Scan(&run.ID, &run.StartedAt, &run.Output, &run.Status, &profiles, &sheets, &location); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		if err := json.Unmarshal([]byte(profiles), &run.Profiles); err != nil {
			return nil, fmt.Errorf("unmarshal profiles of run %s: %w", run.ID, err)
		}
		if err := json.Unmarshal([]byte(sheets), &run.Sheets); err != nil {
			return nil, fmt.Errorf("unmarshal sheets of run %s: %w", run.ID, err)
		}
		run.Location = location.String
		runs = append(runs, &run)
	}
	return runs, rows.Err()
}

func (s *defaultStore) AddSnapshot(ctx context.Context, records []store.SnapshotRecord) error {
	if len(records) == 0 {
		return nil
	}

	return duckdb.InTransaction(ctx, s.db, func(ctx context.Context) error {
		stmt, err := duckdb.Conn(ctx, s.db).PrepareContext(ctx, `
			INSERT INTO aging_snapshots (run_id, profile, drug, status, reason, case_id, bucket, count)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("prepare statement: %w", err)
		}
		defer stmt.Close()

		for _, r := range records {
			_, err := stmt.ExecContext(ctx, r.RunID, r.Profile, r.Drug, r.Status, r.Reason, r.CaseID, r.Bucket, r.Count)
			if err != nil {
				return fmt.Errorf("insert snapshot record: %w", err)
			}
		}
		return nil
	})
}

func (s *defaultStore) SaveRun(ctx context.Context, run *store.RunRecord, snapshot []store.SnapshotRecord) error {
	return duckdb.InTransaction(ctx, s.db, func(ctx context.Context) error {
		if err := s.AddRun(ctx, run); err != nil {
			return err
		}
		return s.AddSnapshot(ctx, snapshot)
	})
}

func (s *defaultStore) GetSnapshot(ctx context.Context, runID string) ([]store.SnapshotRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT run_id, profile, drug, status, reason, case_id, bucket, count
		FROM aging_snapshots
		WHERE run_id = ?
		ORDER BY profile, drug, status, reason, case_id, bucket`, runID)
	if err != nil {
		return nil, fmt.Errorf("query snapshot: %w", err)
	}
	defer rows.Close()

	records := make([]store.SnapshotRecord, 0)
	for rows.Next() {
		var r store.SnapshotRecord
		if err := rows.Scan(&r.RunID, &r.Profile, &r.Drug, &r.Status, &r.Reason, &r.CaseID, &r.Bucket, &r.Count); err != nil {
			return nil, fmt.Errorf("scan snapshot record: %w", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
