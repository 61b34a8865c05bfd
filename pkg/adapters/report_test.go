package adapters

import (
	"testing"
	"time"

	"github.com/de-tools/viability/pkg/models/domain"
	"github.com/stretchr/testify/assert"
)

func TestArtifactName(t *testing.T) {
	r := domain.Report{
		ID:          "0b7c6f2e-1111-2222-3333-444455556666",
		GeneratedAt: time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC),
	}
	assert.Equal(t, "investment_analysis_20260314_092653_0b7c6f2e", ArtifactName(r))

	other := r
	other.ID = "ffffffff-1111-2222-3333-444455556666"
	assert.NotEqual(t, ArtifactName(r), ArtifactName(other), "same second, different reports")
}

func TestMapReportDomainToDocument(t *testing.T) {
	r := domain.Report{
		ID:              "abc",
		Title:           domain.ReportTitle,
		GeneratedAt:     time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC),
		Summary:         "Viable.",
		Recommendations: []string{"Proceed", "Hedge"},
		Sections:        []domain.Section{{Heading: "Market Analysis", Body: "ok"}},
	}

	doc := MapReportDomainToDocument(r)

	assert.Equal(t, "Generated on: 2026-03-14 09:26:53", doc.Subtitle)
	assert.Equal(t, []domain.Section{
		{Heading: domain.SummaryHeading, Body: "Viable."},
		{Heading: domain.RecommendationsHeading, Body: "- Proceed\n- Hedge"},
	}, doc.Preamble)
	assert.Equal(t, r.Sections, doc.Sections)
}

func TestMapReportDomainToDocument_NoSummary(t *testing.T) {
	doc := MapReportDomainToDocument(domain.Report{ID: "abc"})
	assert.Empty(t, doc.Preamble)
}

func TestMapAnalysisDomainToApi(t *testing.T) {
	r := domain.Report{
		ID:       "abc",
		Summary:  "Viable.",
		Sections: []domain.Section{{Heading: "Market Analysis", Body: "ok"}, {Heading: "Investment Analysis", Failed: true}},
	}

	res := MapAnalysisDomainToApi(r, domain.Artifact{Reference: "/reports/a.pdf"})

	assert.Equal(t, "success", res.Status)
	assert.Equal(t, "/reports/a.pdf", res.ReportURL)
	assert.Len(t, res.Sections, 2)
	assert.True(t, res.Sections[1].Failed)
	assert.NotNil(t, res.Recommendations)
}
