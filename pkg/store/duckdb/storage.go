package duckdb

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"

	"github.com/marcboeker/go-duckdb/v2"
)

const ReportRunsSchema = `
	CREATE TABLE IF NOT EXISTS report_runs (
		id VARCHAR PRIMARY KEY,
		started_at TIMESTAMP NOT NULL,
		output VARCHAR NOT NULL,
		status VARCHAR NOT NULL,
		profiles VARCHAR NOT NULL,
		sheets VARCHAR NOT NULL,
		location VARCHAR
	);
`

const AgingSnapshotsSchema = `
	CREATE TABLE IF NOT EXISTS aging_snapshots (
		run_id VARCHAR NOT NULL,
		profile VARCHAR NOT NULL,
		drug VARCHAR NOT NULL,
		status VARCHAR NOT NULL,
		reason VARCHAR NOT NULL,
		case_id VARCHAR NOT NULL,
		bucket VARCHAR NOT NULL,
		count BIGINT NOT NULL
	);
`

var bootQueries = []string{
	ReportRunsSchema,
	AgingSnapshotsSchema,
}

type Settings struct {
	DbPath  string
	Threads int
}

func NewDB(settings Settings) (*sql.DB, error) {
	threads := settings.Threads
	if threads <= 0 {
		threads = 4
	}
	c, err := duckdb.NewConnector(fmt.Sprintf("%s?threads=%d", settings.DbPath, threads), func(exec driver.ExecerContext) error {
		for _, query := range bootQueries {
			_, err := exec.ExecContext(context.Background(), query, nil)
			if err != nil {
				return err
			}
		}
		return nil
	})

	if err != nil {
		return nil, err
	}

	db := sql.OpenDB(c)
	return db, nil
}
