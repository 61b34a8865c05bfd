package export

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/template"

	"github.com/de-tools/viability/pkg/models/domain"
)

type TableConfig struct {
	HeadingWidth int
	StatusWidth  int
}

func DefaultTableConfig() TableConfig {
	return TableConfig{
		HeadingWidth: 24,
		StatusWidth:  10,
	}
}

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

type view struct {
	*domain.Report
	Artifact *domain.Artifact
}

// Handle prints the report. artifact is nil when the report was not persisted.
func (c *Reporter) Handle(report *domain.Report, artifact *domain.Artifact) error {
	funcMap := template.FuncMap{
		"formatRow": func(heading, status string) string {
			return fmt.Sprintf("| %-*s | %-*s |",
				c.config.HeadingWidth, heading,
				c.config.StatusWidth, status)
		},
		"separator": func() string {
			return fmt.Sprintf("+%s+%s+",
				strings.Repeat("-", c.config.HeadingWidth+2),
				strings.Repeat("-", c.config.StatusWidth+2))
		},
		"status": func(s domain.Section) string {
			if s.Failed {
				return "failed"
			}
			return "ok"
		},
	}

	tmpl := `
{{.Title}}
Generated: {{.GeneratedAt.Format "2006-01-02 15:04:05"}}
{{if .Artifact}}Saved to: {{.Artifact.Reference}}
{{end}}
{{separator}}
{{formatRow "Section" "Status"}}
{{separator}}
{{range .Sections}}{{formatRow .Heading (status .)}}
{{end}}{{separator}}
{{if .Summary}}
=== Executive Summary ===
{{.Summary}}
{{end}}{{range .Sections}}
=== {{.Heading}} ===
{{.Body}}
{{end}}`

	t, err := template.New("report").Funcs(funcMap).Parse(tmpl)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}

	return t.Execute(c.writer, view{Report: report, Artifact: artifact})
}
