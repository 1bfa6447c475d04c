package commands

import (
	"context"
	"time"

	"github.com/de-tools/case-atlas/pkg/models/domain"
	"github.com/de-tools/case-atlas/pkg/services/config"
	"github.com/de-tools/case-atlas/pkg/services/report"
	"github.com/de-tools/case-atlas/pkg/store/duckdb/runs"
)

const commandTimeout = 5 * time.Minute

// Session gives commands access to the loaded config and the stores behind it.
type Session interface {
	Config() *config.Config
	Runner(ctx context.Context) (*report.Runner, error)
	Archive(ctx context.Context) (runs.Store, error)
}

type SessionProvider interface {
	Session() Session
}

type RunReporter interface {
	HandleRun(run *domain.Run) error
}

type HistoryReporter interface {
	HandleHistory(runs []*domain.Run) error
}

// execute runs the given profiles and prints the summary, even when a late archive or
// publish step failed after the workbook was written.
func execute(
	ctx context.Context,
	provider SessionProvider,
	reporter RunReporter,
	profiles []domain.ReportProfile,
	output string,
) error {
	ctx, cancel := context.WithTimeout(ctx, commandTimeout)
	defer cancel()

	session := provider.Session()
	if output == "" {
		output = session.Config().Output
	}

	runner, err := session.Runner(ctx)
	if err != nil {
		return err
	}

	run, err := runner.Run(ctx, report.Request{Profiles: profiles, Output: output})
	if run != nil {
		if rerr := reporter.HandleRun(run); rerr != nil && err == nil {
			err = rerr
		}
	}
	return err
}
