package config

import (
	"context"
	"fmt"

	"github.com/de-tools/case-atlas/pkg/models/domain"
	"gopkg.in/ini.v1"
)

// Registry serves report profiles from an ini file where every non-empty section is a
// profile named after the section.
type Registry interface {
	GetProfiles(ctx context.Context) ([]string, error)
	GetProfile(ctx context.Context, name string) (domain.ReportProfile, error)
}

type iniProfile struct {
	Kind             string `ini:"kind"`
	Source           string `ini:"source"`
	Encoding         string `ini:"encoding"`
	SourceSheet      string `ini:"source_sheet"`
	PivotSheet       string `ini:"pivot_sheet"`
	ColDrug          string `ini:"col_drug"`
	ColReason        string `ini:"col_reason"`
	ColCount         string `ini:"col_count"`
	ColStatus        string `ini:"col_status"`
	ColReceipt       string `ini:"col_receipt"`
	ColEligibility   string `ini:"col_eligibility"`
	ColCaseID        string `ini:"col_case_id"`
	ReasonOrder      string `ini:"reason_order"`
	GroupOrder       string `ini:"group_order"`
	NormalizeReasons bool   `ini:"normalize_reasons"`
	GroupByCaseID    bool   `ini:"group_by_case_id"`
	Buckets          []int  `ini:"buckets" delim:","`
	DaysColumn       string `ini:"days_column"`
}

func fromProfile(p domain.ReportProfile) iniProfile {
	return iniProfile{
		Kind:             string(p.Kind),
		Source:           p.Source,
		Encoding:         p.Encoding,
		SourceSheet:      p.SourceSheet,
		PivotSheet:       p.PivotSheet,
		ColDrug:          p.Columns.Drug,
		ColReason:        p.Columns.Reason,
		ColCount:         p.Columns.Count,
		ColStatus:        p.Columns.Status,
		ColReceipt:       p.Columns.Receipt,
		ColEligibility:   p.Columns.Eligibility,
		ColCaseID:        p.Columns.CaseID,
		ReasonOrder:      string(p.ReasonOrder),
		GroupOrder:       string(p.GroupOrder),
		NormalizeReasons: p.NormalizeReasons,
		GroupByCaseID:    p.GroupByCaseID,
		Buckets:          p.Buckets,
		DaysColumn:       p.DaysColumn,
	}
}

func (ip iniProfile) toProfile(name string) domain.ReportProfile {
	return domain.ReportProfile{
		Name:        name,
		Kind:        domain.ReportKind(ip.Kind),
		Source:      ip.Source,
		Encoding:    ip.Encoding,
		SourceSheet: ip.SourceSheet,
		PivotSheet:  ip.PivotSheet,
		Columns: domain.ColumnMapping{
			Drug:        ip.ColDrug,
			Reason:      ip.ColReason,
			Count:       ip.ColCount,
			Status:      ip.ColStatus,
			Receipt:     ip.ColReceipt,
			Eligibility: ip.ColEligibility,
			CaseID:      ip.ColCaseID,
		},
		ReasonOrder:      domain.SortOrder(ip.ReasonOrder),
		GroupOrder:       domain.SortOrder(ip.GroupOrder),
		NormalizeReasons: ip.NormalizeReasons,
		GroupByCaseID:    ip.GroupByCaseID,
		Buckets:          ip.Buckets,
		DaysColumn:       ip.DaysColumn,
	}
}

type cfgRegistry struct {
	cfg *ini.File
}

func NewRegistry(path string) (Registry, error) {
	cfg, err := ini.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load profiles: %w", err)
	}
	return &cfgRegistry{cfg: cfg}, nil
}

func (cr *cfgRegistry) GetProfiles(_ context.Context) ([]string, error) {
	var profiles []string
	for _, section := range cr.cfg.Sections() {
		if len(section.Keys()) > 0 {
			profiles = append(profiles, section.Name())
		}
	}
	return profiles, nil
}

// GetProfile maps a section over the defaults of its report kind and validates the result.
func (cr *cfgRegistry) GetProfile(_ context.Context, name string) (domain.ReportProfile, error) {
	section, err := cr.cfg.GetSection(name)
	if err != nil || len(section.Keys()) == 0 {
		return domain.ReportProfile{}, fmt.Errorf("profile %s not found", name)
	}

	kind := domain.ReportKind(section.Key("kind").MustString(string(domain.ReportKindSubtotal)))
	raw := fromProfile(domain.DefaultProfile(name, kind))
	if err := section.MapTo(&raw); err != nil {
		return domain.ReportProfile{}, fmt.Errorf("failed to parse profile %s: %w", name, err)
	}

	profile := raw.toProfile(name)
	if err := profile.Validate(); err != nil {
		return domain.ReportProfile{}, err
	}
	return profile, nil
}
