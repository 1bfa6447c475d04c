package report

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/samber/lo"

	"github.com/de-tools/case-atlas/pkg/adapters"
	"github.com/de-tools/case-atlas/pkg/models/domain"
	"github.com/de-tools/case-atlas/pkg/models/store"
	"github.com/de-tools/case-atlas/pkg/runtime/parquet"
	"github.com/de-tools/case-atlas/pkg/services/aging"
	"github.com/de-tools/case-atlas/pkg/services/subtotal"
	"github.com/de-tools/case-atlas/pkg/store/duckdb/runs"
)

type Loader interface {
	Load(ctx context.Context, path, encoding string) (*domain.Dataset, error)
}

type Writer interface {
	Write(ctx context.Context, path string, sheets []domain.Sheet) error
}

type Publisher interface {
	Publish(ctx context.Context, path string) (string, error)
}

type Options struct {
	Loader Loader
	Writer Writer
	// Optional sinks, skipped when nil.
	Archive     runs.Store
	Exporter    parquet.Exporter
	Publisher   Publisher
	SnapshotDir string
	Now         func() time.Time
}

type Request struct {
	Profiles []domain.ReportProfile
	Output   string
}

// Runner builds the reports of a set of profiles into one workbook.
type Runner struct {
	opts Options
}

func NewRunner(opts Options) (*Runner, error) {
	if opts.Loader == nil || opts.Writer == nil {
		return nil, fmt.Errorf("loader and writer are required")
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Runner{opts: opts}, nil
}

type built struct {
	profile  domain.ReportProfile
	sheets   []domain.Sheet
	summary  []domain.SheetSummary
	snapshot *domain.AgingPivot
}

// Run builds every profile before touching the output, so a failing profile leaves no
// partial workbook behind. Archive and publish errors are returned after the workbook exists.
func (r *Runner) Run(ctx context.Context, req Request) (*domain.Run, error) {
	logger := zerolog.Ctx(ctx)
	if len(req.Profiles) == 0 {
		return nil, fmt.Errorf("no report profiles to run")
	}
	if req.Output == "" {
		return nil, fmt.Errorf("output path is required")
	}

	startedAt := r.opts.Now()
	results := make([]built, 0, len(req.Profiles))
	for _, p := range req.Profiles {
		res, err := r.build(ctx, p)
		if err != nil {
			return nil, err
		}
		results = append(results, res)
	}

	sheets := lo.FlatMap(results, func(b built, _ int) []domain.Sheet { return b.sheets })
	if dup := lo.FindDuplicates(lo.Map(sheets, func(s domain.Sheet, _ int) string { return s.Name })); len(dup) > 0 {
		return nil, fmt.Errorf("sheet names used by more than one report: %v", dup)
	}

	if err := r.opts.Writer.Write(ctx, req.Output, sheets); err != nil {
		return nil, fmt.Errorf("write workbook %s: %w", req.Output, err)
	}

	run := &domain.Run{
		ID:        uuid.NewString(),
		StartedAt: startedAt,
		Output:    req.Output,
		Profiles:  lo.Map(results, func(b built, _ int) string { return b.profile.Name }),
		Sheets:    lo.FlatMap(results, func(b built, _ int) []domain.SheetSummary { return b.summary }),
		Status:    domain.RunStatusFinished,
	}
	logger.Info().Str("run", run.ID).Str("output", run.Output).Int("sheets", len(sheets)).Msg("workbook written")

	snapshot := make([]store.SnapshotRecord, 0)
	for _, b := range results {
		if b.snapshot != nil {
			snapshot = append(snapshot, adapters.MapAgingPivotToSnapshot(run.ID, b.profile.Name, b.snapshot)...)
		}
	}

	if r.opts.Exporter != nil && r.opts.SnapshotDir != "" && len(snapshot) > 0 {
		path := filepath.Join(r.opts.SnapshotDir, run.ID+".parquet")
		if err := r.opts.Exporter.Export(path, snapshot); err != nil {
			return run, fmt.Errorf("export snapshot: %w", err)
		}
		run.Snapshot = path
	}

	if r.opts.Publisher != nil {
		location, err := r.opts.Publisher.Publish(ctx, req.Output)
		if err != nil {
			return run, fmt.Errorf("publish workbook: %w", err)
		}
		run.Location = location
		run.Status = domain.RunStatusPublished
	}

	if r.opts.Archive != nil {
		if err := r.opts.Archive.SaveRun(ctx, adapters.MapDomainRunToStore(run), snapshot); err != nil {
			return run, fmt.Errorf("archive run: %w", err)
		}
	}

	return run, nil
}

func (r *Runner) build(ctx context.Context, p domain.ReportProfile) (built, error) {
	if err := p.Validate(); err != nil {
		return built{}, err
	}

	ds, err := r.opts.Loader.Load(ctx, p.Source, p.Encoding)
	if err != nil {
		return built{}, err
	}

	switch p.Kind {
	case domain.ReportKindSubtotal:
		return r.buildSubtotal(p, ds)
	case domain.ReportKindAging:
		return r.buildAging(p, ds)
	default:
		return built{}, fmt.Errorf("profile %s: unknown report kind %q", p.Name, p.Kind)
	}
}

func (r *Runner) buildSubtotal(p domain.ReportProfile, ds *domain.Dataset) (built, error) {
	b := subtotal.NewBuilder(p.Name, subtotal.OptionsFromProfile(p))
	report, err := b.Build(ds)
	if err != nil {
		return built{}, err
	}
	source, err := b.SourceSheet(p.SourceSheet, ds)
	if err != nil {
		return built{}, err
	}
	pivot := subtotal.ReportSheet(p.PivotSheet, report)

	return built{
		profile: p,
		sheets:  []domain.Sheet{source, pivot},
		summary: []domain.SheetSummary{
			{Profile: p.Name, Sheet: source.Name, Rows: len(source.Rows)},
			{Profile: p.Name, Sheet: pivot.Name, Rows: len(pivot.Rows), Total: report.GrandTotal.String()},
		},
	}, nil
}

func (r *Runner) buildAging(p domain.ReportProfile, ds *domain.Dataset) (built, error) {
	opts, err := aging.OptionsFromProfile(p)
	if err != nil {
		return built{}, err
	}
	opts.Now = r.opts.Now

	b, err := aging.NewBuilder(p.Name, opts)
	if err != nil {
		return built{}, err
	}
	res, err := b.Build(ds)
	if err != nil {
		return built{}, err
	}
	cases := res.CaseSheet(p.SourceSheet)
	pivot := res.PivotSheet(p.PivotSheet)

	return built{
		profile: p,
		sheets:  []domain.Sheet{cases, pivot},
		summary: []domain.SheetSummary{
			{Profile: p.Name, Sheet: cases.Name, Rows: len(cases.Rows)},
			{Profile: p.Name, Sheet: pivot.Name, Rows: len(pivot.Rows), Total: strconv.Itoa(res.Aged())},
		},
		snapshot: res.Pivot,
	}, nil
}
