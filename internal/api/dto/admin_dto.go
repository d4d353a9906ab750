package dto

import (
	"time"

	"github.com/tutorconnect/tutor-connect/internal/domain"
)

// UserActionRequest targets an account for an admin action.
type UserActionRequest struct {
	UserID string `json:"user_id"`
	Reason string `json:"reason"`
}

// StatsResponse holds dashboard counters.
type StatsResponse struct {
	TotalUsers          int64 `json:"total_users"`
	Students            int64 `json:"students"`
	Teachers            int64 `json:"teachers"`
	Admins              int64 `json:"admins"`
	PendingTeachers     int64 `json:"pending_teachers"`
	SuspendedUsers      int64 `json:"suspended_users"`
	ActiveJobs          int64 `json:"active_jobs"`
	TotalJobs           int64 `json:"total_jobs"`
	TotalApplications   int64 `json:"total_applications"`
	PendingApplications int64 `json:"pending_applications"`
}

// PendingTeacherResponse is a teacher awaiting review.
type PendingTeacherResponse struct {
	User      UserResponse       `json:"user"`
	Profile   *ProfileResponse   `json:"profile,omitempty"`
	Documents []DocumentResponse `json:"documents"`
}

// ActivityLogResponse is one audit entry.
type ActivityLogResponse struct {
	ID         string                `json:"id"`
	ActorID    *string               `json:"actor_id,omitempty"`
	ActorEmail *string               `json:"actor_email,omitempty"`
	Action     domain.ActivityAction `json:"action"`
	TargetType string                `json:"target_type"`
	TargetID   string                `json:"target_id"`
	Details    map[string]any        `json:"details"`
	CreatedAt  time.Time             `json:"created_at"`
}

// UploadResponse describes a stored upload.
type UploadResponse struct {
	URL          string `json:"url"`
	FileName     string `json:"file_name"`
	OriginalName string `json:"original_name"`
	ContentType  string `json:"content_type"`
	Size         int64  `json:"size"`
}
