package adapters

import (
	"github.com/samber/lo"

	"github.com/de-tools/case-atlas/pkg/models/api"
	"github.com/de-tools/case-atlas/pkg/models/domain"
	"github.com/de-tools/case-atlas/pkg/models/store"
)

func MapStoreRunToDomain(r *store.RunRecord) *domain.Run {
	if r == nil {
		return nil
	}

	return &domain.Run{
		ID:        r.ID,
		StartedAt: r.StartedAt,
		Output:    r.Output,
		Profiles:  r.Profiles,
		Sheets: lo.Map(r.Sheets, func(s store.SheetRecord, _ int) domain.SheetSummary {
			return domain.SheetSummary{Profile: s.Profile, Sheet: s.Sheet, Rows: s.Rows, Total: s.Total}
		}),
		Status:   domain.RunStatus(r.Status),
		Location: r.Location,
	}
}

func MapDomainRunToStore(r *domain.Run) *store.RunRecord {
	return &store.RunRecord{
		ID:        r.ID,
		StartedAt: r.StartedAt,
		Output:    r.Output,
		Status:    string(r.Status),
		Profiles:  r.Profiles,
		Sheets: lo.Map(r.Sheets, func(s domain.SheetSummary, _ int) store.SheetRecord {
			return store.SheetRecord{Profile: s.Profile, Sheet: s.Sheet, Rows: s.Rows, Total: s.Total}
		}),
		Location: r.Location,
	}
}

func MapDomainRunToApi(r *domain.Run) api.Run {
	return api.Run{
		ID:        r.ID,
		StartedAt: r.StartedAt,
		Output:    r.Output,
		Status:    string(r.Status),
		Profiles:  r.Profiles,
		Sheets: lo.Map(r.Sheets, func(s domain.SheetSummary, _ int) api.SheetSummary {
			return api.SheetSummary{Profile: s.Profile, Sheet: s.Sheet, Rows: s.Rows, Total: s.Total}
		}),
		Location: r.Location,
	}
}
