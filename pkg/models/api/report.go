package api

import "time"

type Section struct {
	Heading string `json:"heading"`
	Body    string `json:"body"`
	Failed  bool   `json:"failed"`
}

type AnalyzeResponse struct {
	Status          string    `json:"status"`
	ReportID        string    `json:"reportId"`
	ReportURL       string    `json:"reportUrl"`
	Summary         string    `json:"summary"`
	Recommendations []string  `json:"recommendations"`
	Sections        []Section `json:"sections"`
}

type ValidateRequest struct {
	InputText string `json:"input_text"`
}

type ValidateResponse struct {
	IsValid  bool   `json:"isValid"`
	Feedback string `json:"feedback"`
}

type Report struct {
	ID             string    `json:"id"`
	Title          string    `json:"title"`
	Name           string    `json:"name"`
	Reference      string    `json:"reference"`
	Format         string    `json:"format"`
	Sections       int       `json:"sections"`
	FailedSections []string  `json:"failed_sections"`
	CreatedAt      time.Time `json:"created_at"`
}

type ErrorResponse struct {
	Detail string `json:"detail"`
}
