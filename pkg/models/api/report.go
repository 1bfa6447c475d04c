package api

import "time"

type ReportRow struct {
	Group string  `json:"group"`
	Sub   string  `json:"sub"`
	Value *string `json:"value"`
}

type SubtotalReport struct {
	Rows       []ReportRow `json:"rows"`
	GrandTotal string      `json:"grand_total"`
}

type PivotRow struct {
	Drug   string `json:"drug"`
	Status string `json:"status"`
	Reason string `json:"reason"`
	CaseID string `json:"case_id,omitempty"`
	Counts []int  `json:"counts"`
}

type AgingPivot struct {
	Buckets []string   `json:"buckets"`
	Rows    []PivotRow `json:"rows"`
}

type Profile struct {
	Name string `json:"name"`
}

type SheetSummary struct {
	Profile string `json:"profile"`
	Sheet   string `json:"sheet"`
	Rows    int    `json:"rows"`
	Total   string `json:"total,omitempty"`
}

type Run struct {
	ID        string         `json:"id"`
	StartedAt time.Time      `json:"started_at"`
	Output    string         `json:"output"`
	Status    string         `json:"status"`
	Profiles  []string       `json:"profiles"`
	Sheets    []SheetSummary `json:"sheets"`
	Location  string         `json:"location,omitempty"`
}

type Error struct {
	Message string   `json:"message"`
	Missing []string `json:"missing,omitempty"`
	Found   []string `json:"found,omitempty"`
}
