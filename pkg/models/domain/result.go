package domain

import "time"

type StageStatus string

const (
	StageStatusSucceeded StageStatus = "succeeded"
	StageStatusFailed    StageStatus = "failed"
)

// StageResult is the tagged outcome of one stage. A failed result carries the
// diagnostic in Message and an empty Body.
type StageResult struct {
	Heading  string
	Status   StageStatus
	Body     string
	Message  string
	Duration time.Duration
}

func Success(heading, body string) StageResult {
	return StageResult{Heading: heading, Status: StageStatusSucceeded, Body: body}
}

func Failure(heading, message string) StageResult {
	return StageResult{Heading: heading, Status: StageStatusFailed, Message: message}
}

func (r StageResult) Failed() bool {
	return r.Status == StageStatusFailed
}

// Text is what the report shows for the section: the body, or an inline error marker.
func (r StageResult) Text() string {
	if r.Failed() {
		return "An error occurred while processing: " + r.Message
	}
	return r.Body
}
