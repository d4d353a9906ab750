package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/tutorconnect/tutor-connect/internal/api/dto"
	"github.com/tutorconnect/tutor-connect/internal/domain"
	"github.com/tutorconnect/tutor-connect/internal/service"
	apperrors "github.com/tutorconnect/tutor-connect/pkg/util/errorutil"
)

// ApplicationsHandler manages job applications.
type ApplicationsHandler struct {
	applications *service.ApplicationService
}

// NewApplicationsHandler constructs handler.
func NewApplicationsHandler(applications *service.ApplicationService) *ApplicationsHandler {
	return &ApplicationsHandler{applications: applications}
}

// Apply POST /applications.
func (h *ApplicationsHandler) Apply(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	var req dto.ApplyRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	app, err := h.applications.Apply(c.UserContext(), actor.ID, service.ApplyInput{
		JobID:       req.JobID,
		CoverLetter: req.CoverLetter,
		ResumeURL:   req.ResumeURL,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": applicationResponse(app)})
}

// List GET /applications.
func (h *ApplicationsHandler) List(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	limit, offset := pagination(c)
	apps, err := h.applications.ListApplications(c.UserContext(), actor, service.ApplicationQuery{
		JobID:  c.Query("job_id"),
		Status: domain.ApplicationStatus(c.Query("status")),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		return err
	}
	items := make([]dto.ApplicationResponse, 0, len(apps))
	for i := range apps {
		items = append(items, applicationResponse(&apps[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Decide POST /applications/:id/decision.
func (h *ApplicationsHandler) Decide(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	var req dto.DecisionRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	app, err := h.applications.Decide(c.UserContext(), actor, c.Params("id"), req.Decision)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": applicationResponse(app)})
}

// Withdraw POST /applications/:id/withdraw.
func (h *ApplicationsHandler) Withdraw(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	app, err := h.applications.Withdraw(c.UserContext(), actor.ID, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": applicationResponse(app)})
}
