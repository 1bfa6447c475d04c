package domain

import "github.com/shopspring/decimal"

const GrandTotalLabel = "Grand Total"

// SubIndent prefixes sub-key labels so they read as nested under their group.
const SubIndent = "  "

// ReportRow is one line of a two-level subtotal report.
type ReportRow struct {
	Group string
	Sub   string
	Value decimal.Decimal
	// Blank marks a separator row with no value.
	Blank bool
}

func (r ReportRow) IsGrandTotal() bool {
	return r.Group == GrandTotalLabel && r.Sub == ""
}

// SubtotalReport represents a complete group/sub-key report
type SubtotalReport struct {
	GroupColumn string
	SubColumn   string
	ValueColumn string
	Rows        []ReportRow
	GrandTotal  decimal.Decimal
	Groups      int
}
