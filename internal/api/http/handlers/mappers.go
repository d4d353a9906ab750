package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/tutorconnect/tutor-connect/internal/api/dto"
	"github.com/tutorconnect/tutor-connect/internal/auth"
	"github.com/tutorconnect/tutor-connect/internal/domain"
	"github.com/tutorconnect/tutor-connect/internal/service"
	apperrors "github.com/tutorconnect/tutor-connect/pkg/util/errorutil"
)

func actorFrom(c *fiber.Ctx) (service.Actor, error) {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return service.Actor{}, apperrors.NewUnauthorized("authentication required")
	}
	return service.Actor{ID: principal.UserID, Role: principal.Role}, nil
}

// optionalActor is nil for anonymous requests.
func optionalActor(c *fiber.Ctx) *service.Actor {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return nil
	}
	return &service.Actor{ID: principal.UserID, Role: principal.Role}
}

func pagination(c *fiber.Ctx) (int, int) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	offset, _ := strconv.Atoi(c.Query("offset"))
	return limit, offset
}

func userResponse(u *domain.User) dto.UserResponse {
	return dto.UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		Role:      u.Role,
		Status:    u.Status,
		CreatedAt: u.CreatedAt,
	}
}

func profileResponse(p *domain.UserProfile) *dto.ProfileResponse {
	if p == nil {
		return nil
	}
	return &dto.ProfileResponse{
		FirstName:   p.FirstName,
		MiddleName:  p.MiddleName,
		LastName:    p.LastName,
		DisplayName: p.DisplayName(),
		Phone:       p.Phone,
		Bio:         p.Bio,
		AvatarURL:   p.AvatarURL,
	}
}

func documentResponses(docs []domain.TeacherDocument) []dto.DocumentResponse {
	out := make([]dto.DocumentResponse, 0, len(docs))
	for _, d := range docs {
		out = append(out, dto.DocumentResponse{
			ID:              d.ID,
			Type:            d.Type,
			FileURL:         d.FileURL,
			FileName:        d.FileName,
			Status:          d.Status,
			RejectionReason: d.RejectionReason,
			CreatedAt:       d.CreatedAt,
		})
	}
	return out
}

func jobResponse(j *domain.Job) dto.JobResponse {
	return dto.JobResponse{
		ID:           j.ID,
		PosterID:     j.PosterID,
		PosterName:   j.PosterName,
		Title:        j.Title,
		Description:  j.Description,
		Requirements: j.Requirements,
		SalaryMin:    j.SalaryMin,
		SalaryMax:    j.SalaryMax,
		JobType:      j.Type,
		Status:       j.Status,
		CreatedAt:    j.CreatedAt,
		UpdatedAt:    j.UpdatedAt,
	}
}

func applicationResponse(a *domain.JobApplication) dto.ApplicationResponse {
	return dto.ApplicationResponse{
		ID:            a.ID,
		JobID:         a.JobID,
		JobTitle:      a.JobTitle,
		StudentID:     a.StudentID,
		ApplicantName: a.ApplicantName,
		CoverLetter:   a.CoverLetter,
		ResumeURL:     a.ResumeURL,
		Status:        a.Status,
		AppliedAt:     a.AppliedAt,
		DecidedAt:     a.DecidedAt,
	}
}

func activityResponse(l *domain.ActivityLog) dto.ActivityLogResponse {
	return dto.ActivityLogResponse{
		ID:         l.ID,
		ActorID:    l.ActorID,
		ActorEmail: l.ActorEmail,
		Action:     l.Action,
		TargetType: l.TargetType,
		TargetID:   l.TargetID,
		Details:    l.Details,
		CreatedAt:  l.CreatedAt,
	}
}
