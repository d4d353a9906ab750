package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/tutorconnect/tutor-connect/internal/api/dto"
	"github.com/tutorconnect/tutor-connect/internal/domain"
	"github.com/tutorconnect/tutor-connect/internal/service"
	apperrors "github.com/tutorconnect/tutor-connect/pkg/util/errorutil"
)

// AdminHandler exposes teacher review, suspension and dashboard endpoints.
// The acting admin always comes from the verified token.
type AdminHandler struct {
	admin *service.AdminService
}

// NewAdminHandler constructs handler.
func NewAdminHandler(admin *service.AdminService) *AdminHandler {
	return &AdminHandler{admin: admin}
}

func (h *AdminHandler) userAction(c *fiber.Ctx, run func(actor service.Actor, req dto.UserActionRequest) (*domain.User, error)) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	var req dto.UserActionRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.UserID == "" {
		return apperrors.NewValidationError("user_id required", map[string]any{"field": "user_id"})
	}
	user, err := run(actor, req)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": userResponse(user)})
}

// ApproveTeacher POST /admin/approve-teacher.
func (h *AdminHandler) ApproveTeacher(c *fiber.Ctx) error {
	return h.userAction(c, func(actor service.Actor, req dto.UserActionRequest) (*domain.User, error) {
		return h.admin.ApproveTeacher(c.UserContext(), actor.ID, req.UserID)
	})
}

// RejectTeacher POST /admin/reject-teacher.
func (h *AdminHandler) RejectTeacher(c *fiber.Ctx) error {
	return h.userAction(c, func(actor service.Actor, req dto.UserActionRequest) (*domain.User, error) {
		return h.admin.RejectTeacher(c.UserContext(), actor.ID, req.UserID, req.Reason)
	})
}

// SuspendUser POST /admin/suspend-user.
func (h *AdminHandler) SuspendUser(c *fiber.Ctx) error {
	return h.userAction(c, func(actor service.Actor, req dto.UserActionRequest) (*domain.User, error) {
		return h.admin.SuspendUser(c.UserContext(), actor.ID, req.UserID)
	})
}

// Stats GET /admin/stats.
func (h *AdminHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.admin.Stats(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.StatsResponse{
		TotalUsers:          stats.TotalUsers,
		Students:            stats.Students,
		Teachers:            stats.Teachers,
		Admins:              stats.Admins,
		PendingTeachers:     stats.PendingTeachers,
		SuspendedUsers:      stats.SuspendedUsers,
		ActiveJobs:          stats.ActiveJobs,
		TotalJobs:           stats.TotalJobs,
		TotalApplications:   stats.TotalApplications,
		PendingApplications: stats.PendingApplications,
	}})
}

// PendingTeachers GET /admin/pending-teachers.
func (h *AdminHandler) PendingTeachers(c *fiber.Ctx) error {
	limit, offset := pagination(c)
	reviews, err := h.admin.PendingTeachers(c.UserContext(), limit, offset)
	if err != nil {
		return err
	}
	items := make([]dto.PendingTeacherResponse, 0, len(reviews))
	for i := range reviews {
		items = append(items, dto.PendingTeacherResponse{
			User:      userResponse(&reviews[i].User),
			Profile:   profileResponse(reviews[i].Profile),
			Documents: documentResponses(reviews[i].Documents),
		})
	}
	return c.JSON(fiber.Map{"data": items})
}

// ActivityLogs GET /admin/logs.
func (h *AdminHandler) ActivityLogs(c *fiber.Ctx) error {
	limit, offset := pagination(c)
	logs, err := h.admin.ActivityLogs(c.UserContext(), limit, offset)
	if err != nil {
		return err
	}
	items := make([]dto.ActivityLogResponse, 0, len(logs))
	for i := range logs {
		items = append(items, activityResponse(&logs[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}
