package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/tutorconnect/tutor-connect/internal/api/dto"
	"github.com/tutorconnect/tutor-connect/internal/domain"
	"github.com/tutorconnect/tutor-connect/internal/service"
	apperrors "github.com/tutorconnect/tutor-connect/pkg/util/errorutil"
)

// JobsHandler manages job postings.
type JobsHandler struct {
	jobs *service.JobService
}

// NewJobsHandler constructs handler.
func NewJobsHandler(jobs *service.JobService) *JobsHandler {
	return &JobsHandler{jobs: jobs}
}

// ListJobs GET /jobs. Drafts are only listed through /jobs/mine.
func (h *JobsHandler) ListJobs(c *fiber.Ctx) error {
	status := domain.JobStatus(c.Query("status"))
	if status == domain.JobStatusDraft {
		return apperrors.NewValidationError("draft jobs are only visible to their poster", map[string]any{"field": "status"})
	}
	limit, offset := pagination(c)
	jobs, err := h.jobs.ListJobs(c.UserContext(), service.JobQuery{
		Status:   status,
		PosterID: c.Query("poster_id"),
		Limit:    limit,
		Offset:   offset,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": jobResponses(jobs)})
}

// ListMyJobs GET /jobs/mine.
func (h *JobsHandler) ListMyJobs(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	limit, offset := pagination(c)
	jobs, err := h.jobs.ListJobs(c.UserContext(), service.JobQuery{
		Status:   domain.JobStatus(c.Query("status")),
		PosterID: actor.ID,
		Limit:    limit,
		Offset:   offset,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": jobResponses(jobs)})
}

// GetJob GET /jobs/:id. Drafts are only returned to their poster or an admin.
func (h *JobsHandler) GetJob(c *fiber.Ctx) error {
	job, err := h.jobs.GetJob(c.UserContext(), optionalActor(c), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": jobResponse(job)})
}

// CreateJob POST /jobs.
func (h *JobsHandler) CreateJob(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	var req dto.CreateJobRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	job, err := h.jobs.CreateJob(c.UserContext(), actor.ID, service.JobInput{
		Title:        req.Title,
		Description:  req.Description,
		Requirements: req.Requirements,
		SalaryMin:    req.SalaryMin,
		SalaryMax:    req.SalaryMax,
		Type:         req.JobType,
		Status:       req.Status,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": jobResponse(job)})
}

// UpdateJobStatus PATCH /jobs/:id/status.
func (h *JobsHandler) UpdateJobStatus(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	var req dto.UpdateJobStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	job, err := h.jobs.UpdateJobStatus(c.UserContext(), actor, c.Params("id"), req.Status)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": jobResponse(job)})
}

func jobResponses(jobs []domain.Job) []dto.JobResponse {
	items := make([]dto.JobResponse, 0, len(jobs))
	for i := range jobs {
		items = append(items, jobResponse(&jobs[i]))
	}
	return items
}
