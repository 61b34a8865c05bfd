package adapters

import (
	"github.com/de-tools/viability/pkg/models/api"
	"github.com/de-tools/viability/pkg/models/domain"
	"github.com/de-tools/viability/pkg/models/store"
)

const StatusSuccess = "success"

func MapSectionDomainToApi(s domain.Section) api.Section {
	return api.Section{Heading: s.Heading, Body: s.Body, Failed: s.Failed}
}

func MapAnalysisDomainToApi(r domain.Report, a domain.Artifact) api.AnalyzeResponse {
	res := api.AnalyzeResponse{
		Status:          StatusSuccess,
		ReportID:        r.ID,
		ReportURL:       a.Reference,
		Summary:         r.Summary,
		Recommendations: make([]string, 0, len(r.Recommendations)),
		Sections:        make([]api.Section, 0, len(r.Sections)),
	}
	res.Recommendations = append(res.Recommendations, r.Recommendations...)
	for _, s := range r.Sections {
		res.Sections = append(res.Sections, MapSectionDomainToApi(s))
	}
	return res
}

func MapReportStoreToApi(r store.Report) api.Report {
	failed := r.FailedSections
	if failed == nil {
		failed = []string{}
	}
	return api.Report{
		ID:             r.ID,
		Title:          r.Title,
		Name:           r.Name,
		Reference:      r.Reference,
		Format:         r.Format,
		Sections:       r.Sections,
		FailedSections: failed,
		CreatedAt:      r.CreatedAt,
	}
}
