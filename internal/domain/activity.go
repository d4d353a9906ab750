package domain

import "time"

// ActivityAction names an audited action.
type ActivityAction string

const (
	ActionStudentRegistered  ActivityAction = "student_registered"
	ActionTeacherRegistered  ActivityAction = "teacher_registered"
	ActionAdminInitialized   ActivityAction = "admin_initialized"
	ActionTeacherApproved    ActivityAction = "teacher_approved"
	ActionTeacherRejected    ActivityAction = "teacher_rejected"
	ActionUserSuspended      ActivityAction = "user_suspended"
	ActionJobCreated         ActivityAction = "job_created"
	ActionApplicationDecided ActivityAction = "application_decided"
	ActionPasswordChanged    ActivityAction = "password_changed"
)

// Target types referenced by activity entries.
const (
	TargetUser        = "user"
	TargetJob         = "job"
	TargetApplication = "application"
)

// ActivityLog is an immutable audit trail entry.
type ActivityLog struct {
	ID         string
	ActorID    *string
	Action     ActivityAction
	TargetType string
	TargetID   string
	Details    map[string]any
	CreatedAt  time.Time

	// ActorEmail is populated on reads when an actor is recorded.
	ActorEmail *string
}

// AdminStats summarizes the dashboard counters.
type AdminStats struct {
	TotalUsers          int64
	Students            int64
	Teachers            int64
	Admins              int64
	PendingTeachers     int64
	SuspendedUsers      int64
	ActiveJobs          int64
	TotalJobs           int64
	TotalApplications   int64
	PendingApplications int64
}
