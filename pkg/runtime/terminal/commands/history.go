package commands

import (
	"context"
	"fmt"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/de-tools/case-atlas/pkg/adapters"
	"github.com/de-tools/case-atlas/pkg/models/domain"
	"github.com/de-tools/case-atlas/pkg/models/store"
)

type HistoryCmd struct {
	limit    int
	provider SessionProvider
	reporter HistoryReporter
}

func NewHistoryCmd(provider SessionProvider, reporter HistoryReporter) *cobra.Command {
	hc := &HistoryCmd{provider: provider, reporter: reporter}
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent report runs",
		RunE:  hc.run,
	}

	cmd.Flags().IntVar(&hc.limit, "limit", 20, "Number of runs to show")

	return cmd
}

func (hc *HistoryCmd) run(cmd *cobra.Command, _ []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), commandTimeout)
	defer cancel()

	archive, err := hc.provider.Session().Archive(ctx)
	if err != nil {
		return err
	}
	if archive == nil {
		return fmt.Errorf("run history is disabled; set history.db_path")
	}

	records, err := archive.ListRuns(ctx, hc.limit)
	if err != nil {
		return err
	}

	return hc.reporter.HandleHistory(lo.Map(records, func(r *store.RunRecord, _ int) *domain.Run {
		return adapters.MapStoreRunToDomain(r)
	}))
}
