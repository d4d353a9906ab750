package domain

import "time"

// JobType describes the engagement.
type JobType string

const (
	JobTypeFullTime JobType = "full-time"
	JobTypePartTime JobType = "part-time"
	JobTypeContract JobType = "contract"
)

// Valid reports whether t is a known job type.
func (t JobType) Valid() bool {
	switch t {
	case JobTypeFullTime, JobTypePartTime, JobTypeContract:
		return true
	}
	return false
}

// JobStatus enumerates posting visibility.
type JobStatus string

const (
	JobStatusActive JobStatus = "active"
	JobStatusClosed JobStatus = "closed"
	JobStatusDraft  JobStatus = "draft"
)

// Valid reports whether s is a known job status.
func (s JobStatus) Valid() bool {
	switch s {
	case JobStatusActive, JobStatusClosed, JobStatusDraft:
		return true
	}
	return false
}

// Job is a tutoring position posted by a teacher or admin.
type Job struct {
	ID           string
	PosterID     string
	Title        string
	Description  string
	Requirements string
	SalaryMin    *float64
	SalaryMax    *float64
	Type         JobType
	Status       JobStatus
	CreatedAt    time.Time
	UpdatedAt    time.Time

	// PosterName is populated on reads.
	PosterName string
}
