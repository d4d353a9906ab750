package domain

import "time"

// ApplicationStatus enumerates the application lifecycle.
type ApplicationStatus string

const (
	ApplicationPending   ApplicationStatus = "pending"
	ApplicationAccepted  ApplicationStatus = "accepted"
	ApplicationRejected  ApplicationStatus = "rejected"
	ApplicationWithdrawn ApplicationStatus = "withdrawn"
)

// Valid reports whether s is a known application status.
func (s ApplicationStatus) Valid() bool {
	return s == ApplicationPending || s.Terminal()
}

// Terminal reports whether no further transition is allowed.
func (s ApplicationStatus) Terminal() bool {
	return s == ApplicationAccepted || s == ApplicationRejected || s == ApplicationWithdrawn
}

// Decision is the outcome a job owner records on an application.
type Decision string

const (
	DecisionAccept Decision = "accept"
	DecisionReject Decision = "reject"
)

// Status maps a decision to the resulting application status.
func (d Decision) Status() (ApplicationStatus, bool) {
	switch d {
	case DecisionAccept:
		return ApplicationAccepted, true
	case DecisionReject:
		return ApplicationRejected, true
	}
	return "", false
}

// JobApplication is a student's request to be matched to a job.
type JobApplication struct {
	ID          string
	JobID       string
	StudentID   string
	CoverLetter string
	ResumeURL   *string
	Status      ApplicationStatus
	AppliedAt   time.Time
	UpdatedAt   time.Time
	DecidedAt   *time.Time
	DecidedBy   *string

	// Populated on reads.
	JobTitle      string
	JobPosterID   string
	ApplicantName string
}
