package adapters

import (
	"github.com/de-tools/case-atlas/pkg/models/api"
	"github.com/de-tools/case-atlas/pkg/models/domain"
	"github.com/de-tools/case-atlas/pkg/models/store"
)

func MapSubtotalReportDomainToApi(r *domain.SubtotalReport) api.SubtotalReport {
	rows := make([]api.ReportRow, 0, len(r.Rows))
	for _, row := range r.Rows {
		out := api.ReportRow{Group: row.Group, Sub: row.Sub}
		if !row.Blank {
			v := row.Value.String()
			out.Value = &v
		}
		rows = append(rows, out)
	}
	return api.SubtotalReport{
		Rows:       rows,
		GrandTotal: r.GrandTotal.String(),
	}
}

func MapAgingPivotDomainToApi(p *domain.AgingPivot) api.AgingPivot {
	rows := make([]api.PivotRow, 0, len(p.Rows))
	for _, row := range p.Rows {
		rows = append(rows, api.PivotRow{
			Drug:   row.Drug,
			Status: row.Status,
			Reason: row.Reason,
			CaseID: row.CaseID,
			Counts: row.Counts,
		})
	}
	return api.AgingPivot{
		Buckets: p.Buckets.Labels(),
		Rows:    rows,
	}
}

// MapAgingPivotToSnapshot flattens the pivot into one record per non-zero bucket count.
func MapAgingPivotToSnapshot(runID, profile string, p *domain.AgingPivot) []store.SnapshotRecord {
	labels := p.Buckets.Labels()
	records := make([]store.SnapshotRecord, 0)
	for _, row := range p.Rows {
		for i, count := range row.Counts {
			if count == 0 {
				continue
			}
			records = append(records, store.SnapshotRecord{
				RunID:   runID,
				Profile: profile,
				Drug:    row.Drug,
				Status:  row.Status,
				Reason:  row.Reason,
				CaseID:  row.CaseID,
				Bucket:  labels[i],
				Count:   int64(count),
			})
		}
	}
	return records
}
