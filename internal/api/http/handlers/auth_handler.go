package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/tutorconnect/tutor-connect/internal/api/dto"
	"github.com/tutorconnect/tutor-connect/internal/service"
	apperrors "github.com/tutorconnect/tutor-connect/pkg/util/errorutil"
)

// AuthHandler exposes registration, login and self-service account endpoints.
type AuthHandler struct {
	accounts *service.AccountService
}

// NewAuthHandler constructs handler.
func NewAuthHandler(accounts *service.AccountService) *AuthHandler {
	return &AuthHandler{accounts: accounts}
}

func registerInput(req dto.RegisterRequest) service.RegisterInput {
	return service.RegisterInput{
		Email:      req.Email,
		Password:   req.Password,
		FirstName:  req.FirstName,
		MiddleName: req.MiddleName,
		LastName:   req.LastName,
		Phone:      req.Phone,
		Bio:        req.Bio,
	}
}

// RegisterStudent handles POST /auth/students/register.
func (h *AuthHandler) RegisterStudent(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	res, err := h.accounts.RegisterStudent(c.UserContext(), registerInput(req))
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": registrationResponse(res)})
}

// RegisterTeacher handles POST /auth/teachers/register.
func (h *AuthHandler) RegisterTeacher(c *fiber.Ctx) error {
	var req dto.TeacherRegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	in := registerInput(req.RegisterRequest)
	for _, d := range req.Documents {
		in.Documents = append(in.Documents, service.DocumentInput{Type: d.Type, FileURL: d.FileURL, FileName: d.FileName})
	}
	res, err := h.accounts.RegisterTeacher(c.UserContext(), in)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": registrationResponse(res)})
}

// SetupAdmin handles POST /auth/admin/setup.
func (h *AuthHandler) SetupAdmin(c *fiber.Ctx) error {
	var req dto.AdminSetupRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	res, err := h.accounts.SetupAdmin(c.UserContext(), registerInput(req.RegisterRequest), req.SetupKey)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": registrationResponse(res)})
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Email == "" || req.Password == "" {
		return apperrors.NewValidationError("email and password required", nil)
	}
	res, err := h.accounts.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.LoginResponse{
		User:    userResponse(res.User),
		Profile: profileResponse(res.Profile),
		Auth:    dto.AuthResponse{Token: res.Token, ExpiresAt: res.ExpiresAt},
	}})
}

// Me handles GET /auth/me.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	view, err := h.accounts.Me(c.UserContext(), actor.ID)
	if err != nil {
		return err
	}
	resp := dto.MeResponse{
		User:    userResponse(view.User),
		Profile: profileResponse(view.Profile),
	}
	if len(view.Documents) > 0 {
		resp.Documents = documentResponses(view.Documents)
	}
	for _, r := range view.AdminRoles {
		resp.AdminRoles = append(resp.AdminRoles, r.RoleName)
	}
	return c.JSON(fiber.Map{"data": resp})
}

// ChangePassword handles POST /auth/password/change.
func (h *AuthHandler) ChangePassword(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	var req dto.ChangePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	res, err := h.accounts.ChangePassword(c.UserContext(), actor.ID, req.CurrentPassword, req.NewPassword)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.PasswordChangedResponse{
		Message: "password updated",
		Auth:    dto.AuthResponse{Token: res.Token, ExpiresAt: res.ExpiresAt},
	}})
}

func registrationResponse(res *service.RegistrationResult) dto.RegistrationResponse {
	resp := dto.RegistrationResponse{
		User:    userResponse(res.User),
		Profile: profileResponse(res.Profile),
		Message: res.Message,
	}
	if len(res.Documents) > 0 {
		resp.Documents = documentResponses(res.Documents)
	}
	if res.Token != "" {
		resp.Auth = &dto.AuthResponse{Token: res.Token, ExpiresAt: res.ExpiresAt}
	}
	return resp
}
