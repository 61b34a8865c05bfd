package domain

import "time"

const (
	ReportTitle            = "Investment Analysis Report"
	SummaryHeading         = "Executive Summary"
	RecommendationsHeading = "Recommendations"
)

// Section is one (heading, body) pair of a report.
type Section struct {
	Heading string
	Body    string
	Failed  bool
}

// Report is the assembled document handed to the sink. Sections follow the fixed
// pipeline order.
type Report struct {
	ID              string
	Title           string
	GeneratedAt     time.Time
	Summary         string
	Recommendations []string
	Sections        []Section
}

// FailedSections returns the headings of sections whose stage failed.
func (r *Report) FailedSections() []string {
	var failed []string
	for _, s := range r.Sections {
		if s.Failed {
			failed = append(failed, s.Heading)
		}
	}
	return failed
}

// Document is what a sink renders: a title, front matter that is not part of
// the pipeline (generation time, executive summary) and the ordered sections.
type Document struct {
	Name     string // unique artifact name without extension
	ReportID string
	Title    string
	Subtitle string
	Preamble []Section
	Sections []Section
}

// Artifact references a persisted document.
type Artifact struct {
	ReportID  string
	Name      string // file name including extension
	Reference string // path or URL
	Format    string
	CreatedAt time.Time
}
