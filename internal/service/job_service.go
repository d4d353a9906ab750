package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/tutorconnect/tutor-connect/internal/domain"
	"github.com/tutorconnect/tutor-connect/internal/repository"
	apperrors "github.com/tutorconnect/tutor-connect/pkg/util/errorutil"
)

// JobInput carries the fields of a new posting.
type JobInput struct {
	Title        string
	Description  string
	Requirements string
	SalaryMin    *float64
	SalaryMax    *float64
	Type         domain.JobType
	Status       domain.JobStatus
}

// JobQuery filters job listings. An empty Status means active.
type JobQuery struct {
	Status   domain.JobStatus
	PosterID string
	Limit    int
	Offset   int
}

// JobService manages job postings.
type JobService struct {
	store repository.Store
}

// NewJobService builds the service.
func NewJobService(store repository.Store) *JobService {
	return &JobService{store: store}
}

// CreateJob publishes a posting on behalf of an approved teacher or admin.
func (s *JobService) CreateJob(ctx context.Context, posterID string, in JobInput) (*domain.Job, error) {
	if err := requireID("poster_id", posterID); err != nil {
		return nil, err
	}
	job := &domain.Job{
		PosterID:     posterID,
		Title:        strings.TrimSpace(in.Title),
		Description:  strings.TrimSpace(in.Description),
		Requirements: strings.TrimSpace(in.Requirements),
		SalaryMin:    in.SalaryMin,
		SalaryMax:    in.SalaryMax,
		Type:         in.Type,
		Status:       in.Status,
	}
	if job.Type == "" {
		job.Type = domain.JobTypeFullTime
	}
	if job.Status == "" {
		job.Status = domain.JobStatusActive
	}
	if err := validateJob(job); err != nil {
		return nil, err
	}

	err := s.store.WithinTx(ctx, func(repos repository.Repositories) error {
		poster, err := repos.Users.GetByID(ctx, posterID)
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewValidationError("a valid poster is required", map[string]any{"field": "poster_id"})
		}
		if err != nil {
			return fmt.Errorf("load poster: %w", err)
		}
		if poster.Status != domain.UserStatusApproved || (poster.Role != domain.RoleTeacher && poster.Role != domain.RoleAdmin) {
			return apperrors.NewValidationError("a valid poster is required", map[string]any{"field": "poster_id"})
		}

		if err := repos.Jobs.Create(ctx, job); err != nil {
			return fmt.Errorf("create job: %w", err)
		}
		if err := appendActivity(ctx, repos, &posterID, domain.ActionJobCreated, domain.TargetJob, job.ID, map[string]any{
			"title":  job.Title,
			"status": job.Status,
		}); err != nil {
			return fmt.Errorf("append activity: %w", err)
		}
		stored, err := repos.Jobs.GetByID(ctx, job.ID)
		if err != nil {
			return fmt.Errorf("reload job: %w", err)
		}
		job = stored
		return nil
	})
	if err != nil {
		return nil, err
	}
	return job, nil
}

func validateJob(job *domain.Job) error {
	if job.Title == "" {
		return apperrors.NewValidationError("title is required", map[string]any{"field": "title"})
	}
	if job.Description == "" {
		return apperrors.NewValidationError("description is required", map[string]any{"field": "description"})
	}
	if !job.Type.Valid() {
		return apperrors.NewValidationError("job type must be full-time, part-time or contract", map[string]any{"field": "job_type"})
	}
	if job.Status != domain.JobStatusActive && job.Status != domain.JobStatusDraft {
		return apperrors.NewValidationError("new jobs must be active or draft", map[string]any{"field": "status"})
	}
	if (job.SalaryMin != nil && *job.SalaryMin < 0) || (job.SalaryMax != nil && *job.SalaryMax < 0) {
		return apperrors.NewValidationError("salary cannot be negative", map[string]any{"field": "salary"})
	}
	if job.SalaryMin != nil && job.SalaryMax != nil && *job.SalaryMin > *job.SalaryMax {
		return apperrors.NewValidationError("salary_min cannot exceed salary_max", map[string]any{"field": "salary"})
	}
	return nil
}

// ListJobs returns postings newest first.
func (s *JobService) ListJobs(ctx context.Context, q JobQuery) ([]domain.Job, error) {
	status := q.Status
	if status == "" {
		status = domain.JobStatusActive
	}
	if !status.Valid() {
		return nil, apperrors.NewValidationError("unknown job status", map[string]any{"field": "status"})
	}
	filter := repository.JobFilter{Status: &status, Limit: q.Limit, Offset: q.Offset}
	if q.PosterID != "" {
		if err := requireID("poster_id", q.PosterID); err != nil {
			return nil, err
		}
		filter.PosterID = &q.PosterID
	}
	jobs, err := s.store.Repos().Jobs.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	return jobs, nil
}

// GetJob loads a single posting. Drafts are reported as not found unless
// viewer is their poster or an admin; viewer is nil for anonymous callers.
func (s *JobService) GetJob(ctx context.Context, viewer *Actor, id string) (*domain.Job, error) {
	job, err := s.loadJob(ctx, id)
	if err != nil {
		return nil, err
	}
	if job.Status == domain.JobStatusDraft && !canSeeDraft(viewer, job) {
		return nil, apperrors.NewNotFound("job", map[string]any{"job_id": id})
	}
	return job, nil
}

func canSeeDraft(viewer *Actor, job *domain.Job) bool {
	return viewer != nil && (viewer.ID == job.PosterID || viewer.IsAdmin())
}

func (s *JobService) loadJob(ctx context.Context, id string) (*domain.Job, error) {
	if err := requireID("id", id); err != nil {
		return nil, err
	}
	job, err := s.store.Repos().Jobs.GetByID(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NewNotFound("job", map[string]any{"job_id": id})
	}
	if err != nil {
		return nil, fmt.Errorf("load job: %w", err)
	}
	return job, nil
}

// UpdateJobStatus opens, closes or drafts a posting. Only its poster or an admin may.
func (s *JobService) UpdateJobStatus(ctx context.Context, actor Actor, jobID string, status domain.JobStatus) (*domain.Job, error) {
	if !status.Valid() {
		return nil, apperrors.NewValidationError("status must be active, closed or draft", map[string]any{"field": "status"})
	}
	job, err := s.loadJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job.PosterID != actor.ID && !actor.IsAdmin() {
		return nil, apperrors.NewForbidden("only the job poster or an admin can change this job")
	}
	if job.Status == status {
		return job, nil
	}
	if err := s.store.Repos().Jobs.UpdateStatus(ctx, jobID, status); err != nil {
		return nil, fmt.Errorf("update job status: %w", err)
	}
	return s.loadJob(ctx, jobID)
}
