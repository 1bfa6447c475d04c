package domain

import (
	"fmt"
	"slices"
)

type ReportKind string

const (
	ReportKindSubtotal ReportKind = "subtotal"
	ReportKindAging    ReportKind = "aging"
)

type SortOrder string

const (
	SortByName  SortOrder = "name"
	SortByValue SortOrder = "value"
)

const (
	DefaultDaysColumn = "File Receipt Date Until Today"
	maxSheetName      = 31
)

// ColumnMapping names the source columns read by the builders.
type ColumnMapping struct {
	Drug        string
	Reason      string
	Count       string
	Status      string
	Receipt     string
	Eligibility string
	CaseID      string
}

func DefaultColumns() ColumnMapping {
	return ColumnMapping{
		Drug:        "drug",
		Reason:      "case_sub_status_reason_code",
		Count:       "case_count",
		Status:      "case_sub_status",
		Receipt:     "file_receipt_date_time",
		Eligibility: "eligibility_start_date",
		CaseID:      "case_id",
	}
}

// ReportProfile is the full configuration of one report.
type ReportProfile struct {
	Name             string
	Kind             ReportKind
	Source           string
	Encoding         string
	SourceSheet      string
	PivotSheet       string
	Columns          ColumnMapping
	ReasonOrder      SortOrder
	GroupOrder       SortOrder
	NormalizeReasons bool
	GroupByCaseID    bool
	Buckets          []int
	DaysColumn       string
}

func DefaultProfile(name string, kind ReportKind) ReportProfile {
	p := ReportProfile{
		Name:             name,
		Kind:             kind,
		Encoding:         "utf-8",
		Columns:          DefaultColumns(),
		ReasonOrder:      SortByName,
		GroupOrder:       SortByName,
		NormalizeReasons: true,
		Buckets:          slices.Clone(DefaultBucketBounds),
		DaysColumn:       DefaultDaysColumn,
	}
	switch kind {
	case ReportKindAging:
		p.SourceSheet = "All Pending Cases by Case ID"
		p.PivotSheet = "Aging by Status & Drug"
	default:
		p.SourceSheet = "Source"
		p.PivotSheet = "Pivot_Summary"
	}
	return p
}

func (p ReportProfile) String() string {
	return fmt.Sprintf("%s:%s", p.Kind, p.Name)
}

// Sheets lists the output sheet names of the profile.
func (p ReportProfile) Sheets() []string {
	return []string{p.SourceSheet, p.PivotSheet}
}

func (p ReportProfile) Validate() error {
	switch p.Kind {
	case ReportKindSubtotal, ReportKindAging:
	default:
		return fmt.Errorf("profile %s: unknown report kind %q", p.Name, p.Kind)
	}
	if p.Source == "" {
		return fmt.Errorf("profile %s: source path is required", p.Name)
	}
	for _, order := range []SortOrder{p.ReasonOrder, p.GroupOrder} {
		if order != SortByName && order != SortByValue {
			return fmt.Errorf("profile %s: unknown sort order %q", p.Name, order)
		}
	}
	for _, sheet := range p.Sheets() {
		if sheet == "" || len([]rune(sheet)) > maxSheetName {
			return fmt.Errorf("profile %s: sheet name %q must have 1 to %d characters", p.Name, sheet, maxSheetName)
		}
	}
	if p.SourceSheet == p.PivotSheet {
		return fmt.Errorf("profile %s: source and pivot sheets share the name %q", p.Name, p.SourceSheet)
	}
	if p.Kind == ReportKindAging {
		if _, err := NewBucketSet(p.Buckets); err != nil {
			return fmt.Errorf("profile %s: %w", p.Name, err)
		}
	}
	return nil
}
