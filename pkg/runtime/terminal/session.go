package terminal

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/de-tools/case-atlas/pkg/runtime/parquet"
	"github.com/de-tools/case-atlas/pkg/runtime/workbook"
	"github.com/de-tools/case-atlas/pkg/services/config"
	"github.com/de-tools/case-atlas/pkg/services/report"
	"github.com/de-tools/case-atlas/pkg/store/duckdb"
	"github.com/de-tools/case-atlas/pkg/store/duckdb/runs"
	"github.com/de-tools/case-atlas/pkg/store/s3"
	"github.com/de-tools/case-atlas/pkg/store/source"
)

// Session opens the stores a command needs on first use and closes them when the command ends.
type Session struct {
	cfg *config.Config
	db  *sql.DB
}

func NewSession(cfg *config.Config) *Session {
	return &Session{cfg: cfg}
}

func (s *Session) Config() *config.Config {
	return s.cfg
}

// Archive returns the run history store, or nil when no history database is configured.
func (s *Session) Archive(ctx context.Context) (runs.Store, error) {
	if s.cfg.History.DBPath == "" {
		return nil, nil
	}
	if s.db == nil {
		db, err := duckdb.NewDB(duckdb.Settings{
			DbPath:  s.cfg.History.DBPath,
			Threads: s.cfg.History.Threads,
		})
		if err != nil {
			return nil, fmt.Errorf("open history database: %w", err)
		}
		zerolog.Ctx(ctx).Debug().Str("path", s.cfg.History.DBPath).Msg("history database opened")
		s.db = db
	}
	return runs.NewStore(s.db)
}

func (s *Session) Runner(ctx context.Context) (*report.Runner, error) {
	opts := report.Options{
		Loader: source.NewLoader(),
		Writer: workbook.NewWriterWithConfig(WorkbookConfig(s.cfg)),
	}

	archive, err := s.Archive(ctx)
	if err != nil {
		return nil, err
	}
	if archive != nil {
		opts.Archive = archive
	}

	if s.cfg.Parquet.Dir != "" {
		opts.Exporter = parquet.NewExporter()
		opts.SnapshotDir = s.cfg.Parquet.Dir
	}

	if pub := s.cfg.Publish; pub.Enabled() {
		awsCfg, err := s3.LoadConfig(ctx, pub.AWSProfile, pub.Region)
		if err != nil {
			return nil, err
		}
		publisher, err := s3.NewPublisherFromConfig(*awsCfg, pub.Bucket, pub.Prefix)
		if err != nil {
			return nil, err
		}
		opts.Publisher = publisher
	}

	return report.NewRunner(opts)
}

func (s *Session) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// WorkbookConfig applies the configured column widths over the writer defaults.
func WorkbookConfig(cfg *config.Config) workbook.Config {
	wc := workbook.DefaultConfig()
	if cfg.Workbook.MaxColumnWidth > 0 {
		wc.MaxColumnWidth = cfg.Workbook.MaxColumnWidth
	}
	if cfg.Workbook.ColumnPadding > 0 {
		wc.ColumnPadding = cfg.Workbook.ColumnPadding
	}
	return wc
}
