package domain

import (
	"fmt"
	"strings"
)

// SourceNotFoundError is returned when a report source path does not exist.
type SourceNotFoundError struct {
	Path string
}

func (e *SourceNotFoundError) Error() string {
	return fmt.Sprintf("source file not found: %s", e.Path)
}

// SchemaError is returned when required columns are absent from a source dataset.
type SchemaError struct {
	Report  string
	Missing []string
	Found   []string
}

func (e *SchemaError) Error() string {
	msg := fmt.Sprintf("missing columns: [%s]. found: [%s]",
		strings.Join(e.Missing, ", "),
		strings.Join(e.Found, ", "))
	if e.Report == "" {
		return msg
	}
	return fmt.Sprintf("[%s] %s", e.Report, msg)
}
