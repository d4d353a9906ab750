package dto

import (
	"time"

	"github.com/tutorconnect/tutor-connect/internal/domain"
)

// ApplyRequest payload.
type ApplyRequest struct {
	JobID       string  `json:"job_id"`
	CoverLetter string  `json:"cover_letter"`
	ResumeURL   *string `json:"resume_url"`
}

// DecisionRequest payload.
type DecisionRequest struct {
	Decision domain.Decision `json:"decision"`
}

// ApplicationResponse describes an application with its job and applicant.
type ApplicationResponse struct {
	ID            string                   `json:"id"`
	JobID         string                   `json:"job_id"`
	JobTitle      string                   `json:"job_title"`
	StudentID     string                   `json:"student_id"`
	ApplicantName string                   `json:"applicant_name"`
	CoverLetter   string                   `json:"cover_letter"`
	ResumeURL     *string                  `json:"resume_url,omitempty"`
	Status        domain.ApplicationStatus `json:"status"`
	AppliedAt     time.Time                `json:"applied_at"`
	DecidedAt     *time.Time               `json:"decided_at,omitempty"`
}
