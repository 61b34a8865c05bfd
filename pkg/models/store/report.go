package store

import "time"

// Report is one row of the report catalog.
type Report struct {
	ID             string
	Title          string
	Name           string
	Reference      string
	Format         string
	Sections       int
	FailedSections []string
	CreatedAt      time.Time
}
