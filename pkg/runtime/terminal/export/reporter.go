package export

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/template"

	"github.com/de-tools/case-atlas/pkg/models/domain"
)

type TableConfig struct {
	ProfileWidth int
	SheetWidth   int
	RowsWidth    int
	TotalWidth   int
}

func DefaultTableConfig() TableConfig {
	return TableConfig{
		ProfileWidth: 20,
		SheetWidth:   31,
		RowsWidth:    8,
		TotalWidth:   16,
	}
}

// Reporter prints the summary of a finished run as a table.
type Reporter struct {
	writer io.Writer
	config TableConfig
}

func NewReporter(writer io.Writer) *Reporter {
	if writer == nil {
		writer = os.Stdout
	}
	return &Reporter{
		writer: writer,
		config: DefaultTableConfig(),
	}
}

func (c *Reporter) HandleRun(run *domain.Run) error {
	funcMap := template.FuncMap{
		"formatRow": func(profile, sheet string, rows interface{}, total string) string {
			return fmt.Sprintf("| %-*s | %-*s | %*v | %*s |",
				c.config.ProfileWidth, profile,
				c.config.SheetWidth, sheet,
				c.config.RowsWidth, rows,
				c.config.TotalWidth, total)
		},
		"separator": func() string {
			return fmt.Sprintf("+%s+%s+%s+%s+",
				strings.Repeat("-", c.config.ProfileWidth+2),
				strings.Repeat("-", c.config.SheetWidth+2),
				strings.Repeat("-", c.config.RowsWidth+2),
				strings.Repeat("-", c.config.TotalWidth+2))
		},
	}

	tmpl := `
Run {{.ID}} ({{.Status}})
Started: {{.StartedAt.Format "2006-01-02 15:04:05"}}
Output: {{.Output}}
{{- if .Location}}
Published: {{.Location}}{{end}}
{{- if .Snapshot}}
Snapshot: {{.Snapshot}}{{end}}

{{separator}}
{{formatRow "Profile" "Sheet" "Rows" "Total"}}
{{separator}}
{{range .Sheets}}{{formatRow .Profile .Sheet .Rows .Total}}
{{end}}{{separator}}
`

	t, err := template.New("run").Funcs(funcMap).Parse(tmpl)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}

	return t.Execute(c.writer, run)
}
