package dto

import (
	"time"

	"github.com/tutorconnect/tutor-connect/internal/domain"
)

// CreateJobRequest payload.
type CreateJobRequest struct {
	Title        string           `json:"title"`
	Description  string           `json:"description"`
	Requirements string           `json:"requirements"`
	SalaryMin    *float64         `json:"salary_min"`
	SalaryMax    *float64         `json:"salary_max"`
	JobType      domain.JobType   `json:"job_type"`
	Status       domain.JobStatus `json:"status"`
}

// UpdateJobStatusRequest payload.
type UpdateJobStatusRequest struct {
	Status domain.JobStatus `json:"status"`
}

// JobResponse describes a posting.
type JobResponse struct {
	ID           string           `json:"id"`
	PosterID     string           `json:"posted_by"`
	PosterName   string           `json:"poster_name"`
	Title        string           `json:"title"`
	Description  string           `json:"description"`
	Requirements string           `json:"requirements,omitempty"`
	SalaryMin    *float64         `json:"salary_min,omitempty"`
	SalaryMax    *float64         `json:"salary_max,omitempty"`
	JobType      domain.JobType   `json:"job_type"`
	Status       domain.JobStatus `json:"status"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
}
