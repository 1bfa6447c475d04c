package commands

import (
	"github.com/spf13/cobra"

	"github.com/de-tools/case-atlas/pkg/models/domain"
)

type SubtotalCmd struct {
	source           string
	output           string
	encoding         string
	reasonOrder      string
	groupOrder       string
	normalizeReasons bool
	provider         SessionProvider
	reporter         RunReporter
}

func NewSubtotalCmd(provider SessionProvider, reporter RunReporter) *cobra.Command {
	sc := &SubtotalCmd{provider: provider, reporter: reporter}
	cmd := &cobra.Command{
		Use:   "subtotal",
		Short: "Build the drug by reason subtotal report",
		RunE:  sc.run,
	}

	cmd.Flags().StringVar(&sc.source, "source", "", "Path to the case CSV export")
	cmd.Flags().StringVar(&sc.output, "output", "", "Path to the output workbook")
	cmd.Flags().StringVar(&sc.encoding, "encoding", "utf-8", "Source file encoding")
	cmd.Flags().StringVar(&sc.reasonOrder, "reason-order", string(domain.SortByName), "Order of reasons within a drug (name, value)")
	cmd.Flags().StringVar(&sc.groupOrder, "group-order", string(domain.SortByName), "Order of drugs (name, value)")
	cmd.Flags().BoolVar(&sc.normalizeReasons, "normalize-reasons", true, "Title-case and clean reason labels")

	_ = cmd.MarkFlagRequired("source")

	return cmd
}

func (sc *SubtotalCmd) run(cmd *cobra.Command, _ []string) error {
	p := domain.DefaultProfile("subtotal", domain.ReportKindSubtotal)
	p.Source = sc.source
	p.Encoding = sc.encoding
	p.ReasonOrder = domain.SortOrder(sc.reasonOrder)
	p.GroupOrder = domain.SortOrder(sc.groupOrder)
	p.NormalizeReasons = sc.normalizeReasons

	return execute(cmd.Context(), sc.provider, sc.reporter, []domain.ReportProfile{p}, sc.output)
}
