package terminal

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/template"

	"github.com/de-tools/case-atlas/pkg/models/domain"
)

// Reporter outputs the run history to the console in a formatted text form
type Reporter struct {
	writer io.Writer
}

// NewReporter creates a new console reporter
func NewReporter(writer io.Writer) *Reporter {
	if writer == nil {
		writer = os.Stdout
	}
	return &Reporter{writer: writer}
}

func (c *Reporter) HandleHistory(runs []*domain.Run) error {
	tmpl := `{{if not .}}No runs recorded.
{{end}}{{range .}}
{{.StartedAt.Format "2006-01-02 15:04"}}  {{.ID}}  {{.Status}}
  output: {{.Output}}{{if .Location}} -> {{.Location}}{{end}}
  profiles: {{join .Profiles ", "}}
{{range .Sheets}}  - {{.Sheet}}: {{.Rows}} rows{{if .Total}}, total {{.Total}}{{end}}
{{end}}{{end}}`

	t, err := template.New("history").Funcs(template.FuncMap{"join": strings.Join}).Parse(tmpl)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}

	return t.Execute(c.writer, runs)
}
