package adapters

import (
	"fmt"
	"strings"

	"github.com/de-tools/viability/pkg/models/domain"
	"github.com/de-tools/viability/pkg/models/store"
)

const (
	GeneratedOnLayout = "2006-01-02 15:04:05"
	artifactLayout    = "20060102_150405"
)

// ArtifactName is unique per report: generation time plus a short report id.
func ArtifactName(r domain.Report) string {
	return fmt.Sprintf("investment_analysis_%s_%s", r.GeneratedAt.Format(artifactLayout), shortID(r.ID))
}

func shortID(id string) string {
	id = strings.ReplaceAll(id, "-", "")
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func MapReportDomainToDocument(r domain.Report) domain.Document {
	doc := domain.Document{
		Name:     ArtifactName(r),
		ReportID: r.ID,
		Title:    r.Title,
		Subtitle: "Generated on: " + r.GeneratedAt.Format(GeneratedOnLayout),
		Sections: r.Sections,
	}
	if r.Summary != "" {
		doc.Preamble = append(doc.Preamble, domain.Section{Heading: domain.SummaryHeading, Body: r.Summary})
	}
	if len(r.Recommendations) > 0 {
		doc.Preamble = append(doc.Preamble, domain.Section{
			Heading: domain.RecommendationsHeading,
			Body:    "- " + strings.Join(r.Recommendations, "\n- "),
		})
	}
	return doc
}

func MapReportDomainToStore(r domain.Report, a domain.Artifact) store.Report {
	return store.Report{
		ID:             r.ID,
		Title:          r.Title,
		Name:           a.Name,
		Reference:      a.Reference,
		Format:         a.Format,
		Sections:       len(r.Sections),
		FailedSections: r.FailedSections(),
		CreatedAt:      a.CreatedAt,
	}
}
