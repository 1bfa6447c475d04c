package commands

import (
	"slices"

	"github.com/spf13/cobra"

	"github.com/de-tools/case-atlas/pkg/models/domain"
)

type AgingCmd struct {
	source        string
	output        string
	encoding      string
	groupByCaseID bool
	buckets       []int
	provider      SessionProvider
	reporter      RunReporter
}

func NewAgingCmd(provider SessionProvider, reporter RunReporter) *cobra.Command {
	ac := &AgingCmd{provider: provider, reporter: reporter}
	cmd := &cobra.Command{
		Use:   "aging",
		Short: "Build the pending case aging pivot",
		RunE:  ac.run,
	}

	cmd.Flags().StringVar(&ac.source, "source", "", "Path to the pending cases CSV export")
	cmd.Flags().StringVar(&ac.output, "output", "", "Path to the output workbook")
	cmd.Flags().StringVar(&ac.encoding, "encoding", "utf-8", "Source file encoding")
	cmd.Flags().BoolVar(&ac.groupByCaseID, "group-by-case-id", false, "Add the case id to the pivot key")
	cmd.Flags().IntSliceVar(&ac.buckets, "buckets", slices.Clone(domain.DefaultBucketBounds), "Bucket boundaries in days")

	_ = cmd.MarkFlagRequired("source")

	return cmd
}

func (ac *AgingCmd) run(cmd *cobra.Command, _ []string) error {
	p := domain.DefaultProfile("aging", domain.ReportKindAging)
	p.Source = ac.source
	p.Encoding = ac.encoding
	p.GroupByCaseID = ac.groupByCaseID
	p.Buckets = ac.buckets

	return execute(cmd.Context(), ac.provider, ac.reporter, []domain.ReportProfile{p}, ac.output)
}
