package sink

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/de-tools/viability/pkg/models/domain"
)

type MarkdownRenderer struct{}

func (MarkdownRenderer) Format() string {
	return "md"
}

func (MarkdownRenderer) ContentType() string {
	return "text/markdown; charset=utf-8"
}

func (MarkdownRenderer) Render(doc domain.Document) ([]byte, error) {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "# %s\n\n", doc.Title)
	if doc.Subtitle != "" {
		fmt.Fprintf(&buf, "_%s_\n\n", doc.Subtitle)
	}
	for _, s := range doc.Preamble {
		writeSection(&buf, s)
	}
	for _, s := range doc.Sections {
		writeSection(&buf, s)
	}
	return buf.Bytes(), nil
}

func writeSection(buf *bytes.Buffer, s domain.Section) {
	fmt.Fprintf(buf, "## %s\n\n", s.Heading)
	body := strings.TrimSpace(s.Body)
	if s.Failed {
		body = "**" + body + "**"
	}
	// hard line breaks keep the numeric bodies one value per line
	buf.WriteString(strings.ReplaceAll(body, "\n", "  \n"))
	buf.WriteString("\n\n")
}
