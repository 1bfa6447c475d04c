package store

import "time"

type RunRecord struct {
	ID        string
	StartedAt time.Time
	Output    string
	Status    string
	Profiles  []string
	Sheets    []SheetRecord
	Location  string
}

type SheetRecord struct {
	Profile string `json:"profile"`
	Sheet   string `json:"sheet"`
	Rows    int    `json:"rows"`
	Total   string `json:"total,omitempty"`
}

// SnapshotRecord is one non-empty aging bucket cell of a run, in long format.
type SnapshotRecord struct {
	RunID   string
	Profile string
	Drug    string
	Status  string
	Reason  string
	CaseID  string
	Bucket  string
	Count   int64
}
