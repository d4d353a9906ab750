package domain

import (
	"strings"
	"time"
)

// Role identifies what an account may do.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleTeacher Role = "teacher"
	RoleStudent Role = "student"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleTeacher, RoleStudent:
		return true
	}
	return false
}

// UserStatus represents lifecycle states for an account.
type UserStatus string

const (
	UserStatusPending   UserStatus = "pending"
	UserStatusApproved  UserStatus = "approved"
	UserStatusRejected  UserStatus = "rejected"
	UserStatusSuspended UserStatus = "suspended"
)

// InitialStatus returns the status a freshly registered account starts in.
// Only teachers wait for verification.
func InitialStatus(role Role) UserStatus {
	if role == RoleTeacher {
		return UserStatusPending
	}
	return UserStatusApproved
}

// User is the identity record shared by every role.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	Role         Role
	Status       UserStatus
	// PasswordChangedAt is nil until the first password change. Tokens issued
	// before it are no longer accepted.
	PasswordChangedAt *time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// UserProfile holds the personal details of a user.
type UserProfile struct {
	UserID     string
	FirstName  string
	MiddleName string
	LastName   string
	Phone      *string
	Bio        string
	AvatarURL  *string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// DisplayName joins first and last name.
func (p *UserProfile) DisplayName() string {
	if p == nil {
		return ""
	}
	return DisplayName(p.FirstName, p.LastName)
}

// DisplayName joins non-empty name parts with a single space.
func DisplayName(first, last string) string {
	return strings.TrimSpace(strings.TrimSpace(first) + " " + strings.TrimSpace(last))
}

// AdminRole records the privileges granted to an admin account.
type AdminRole struct {
	UserID    string
	RoleName  string
	GrantedAt time.Time
}

const AdminRoleSuper = "super_admin"
