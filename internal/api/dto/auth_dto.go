package dto

import (
	"time"

	"github.com/tutorconnect/tutor-connect/internal/domain"
)

// RegisterRequest payload shared by the student and admin registration forms.
type RegisterRequest struct {
	Email      string  `json:"email"`
	Password   string  `json:"password"`
	FirstName  string  `json:"first_name"`
	MiddleName string  `json:"middle_name"`
	LastName   string  `json:"last_name"`
	Phone      *string `json:"phone"`
	Bio        string  `json:"bio"`
}

// TeacherRegisterRequest adds verification documents.
type TeacherRegisterRequest struct {
	RegisterRequest
	Documents []DocumentRequest `json:"documents"`
}

// AdminSetupRequest adds the optional setup key.
type AdminSetupRequest struct {
	RegisterRequest
	SetupKey string `json:"setup_key"`
}

// DocumentRequest references an uploaded file.
type DocumentRequest struct {
	Type     domain.DocumentType `json:"document_type"`
	FileURL  string              `json:"file_url"`
	FileName string              `json:"file_name"`
}

// LoginRequest payload for login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ChangePasswordRequest payload.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// AuthResponse standard response for auth endpoints.
type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// UserResponse is the public view of an account.
type UserResponse struct {
	ID        string            `json:"id"`
	Email     string            `json:"email"`
	Role      domain.Role       `json:"role"`
	Status    domain.UserStatus `json:"status"`
	CreatedAt time.Time         `json:"created_at"`
}

// ProfileResponse is the public view of a profile.
type ProfileResponse struct {
	FirstName   string  `json:"first_name"`
	MiddleName  string  `json:"middle_name,omitempty"`
	LastName    string  `json:"last_name"`
	DisplayName string  `json:"display_name"`
	Phone       *string `json:"phone,omitempty"`
	Bio         string  `json:"bio,omitempty"`
	AvatarURL   *string `json:"avatar_url,omitempty"`
}

// DocumentResponse describes a verification document.
type DocumentResponse struct {
	ID              string                    `json:"id"`
	Type            domain.DocumentType       `json:"document_type"`
	FileURL         string                    `json:"file_url"`
	FileName        string                    `json:"file_name"`
	Status          domain.VerificationStatus `json:"verification_status"`
	RejectionReason *string                   `json:"rejection_reason,omitempty"`
	CreatedAt       time.Time                 `json:"created_at"`
}

// RegistrationResponse is returned by every registration endpoint. Auth is
// omitted for teachers.
type RegistrationResponse struct {
	User      UserResponse       `json:"user"`
	Profile   *ProfileResponse   `json:"profile,omitempty"`
	Documents []DocumentResponse `json:"documents,omitempty"`
	Auth      *AuthResponse      `json:"auth,omitempty"`
	Message   string             `json:"message,omitempty"`
}

// LoginResponse is returned by POST /auth/login.
type LoginResponse struct {
	User    UserResponse     `json:"user"`
	Profile *ProfileResponse `json:"profile,omitempty"`
	Auth    AuthResponse     `json:"auth"`
}

// PasswordChangedResponse carries the token that replaces every earlier one.
type PasswordChangedResponse struct {
	Message string       `json:"message"`
	Auth    AuthResponse `json:"auth"`
}

// MeResponse is the caller's own account.
type MeResponse struct {
	User       UserResponse       `json:"user"`
	Profile    *ProfileResponse   `json:"profile,omitempty"`
	Documents  []DocumentResponse `json:"documents,omitempty"`
	AdminRoles []string           `json:"admin_roles,omitempty"`
}
