package domain

import "time"

type RunStatus string

const (
	RunStatusFinished  RunStatus = "finished"
	RunStatusPublished RunStatus = "published"
)

// SheetSummary describes one written sheet. Total is the report grand total for subtotal
// pivot sheets and the number of aged records for aging pivot sheets; empty otherwise.
type SheetSummary struct {
	Profile string
	Sheet   string
	Rows    int
	Total   string
}

type Run struct {
	ID        string
	StartedAt time.Time
	Output    string
	Profiles  []string
	Sheets    []SheetSummary
	Status    RunStatus
	Location  string // published object URI, if any
	Snapshot  string // parquet snapshot path, if any
}
