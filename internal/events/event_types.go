package events

import (
	"time"

	"github.com/tutorconnect/tutor-connect/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTeacherRegistered    EventType = "teacher_registered"
	EventTeacherApproved      EventType = "teacher_approved"
	EventTeacherRejected      EventType = "teacher_rejected"
	EventUserSuspended        EventType = "user_suspended"
	EventApplicationSubmitted EventType = "application_submitted"
	EventApplicationDecided   EventType = "application_decided"
)

// Event represents a domain event emitted by services after commit.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	ActorID   *string     `json:"actor_id,omitempty"`
	SubjectID string      `json:"subject_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TeacherReviewPayload accompanies teacher registration and review events.
type TeacherReviewPayload struct {
	Email  string            `json:"email"`
	Status domain.UserStatus `json:"status"`
	Reason string            `json:"reason,omitempty"`
}

// ApplicationPayload accompanies application events.
type ApplicationPayload struct {
	JobID     string                   `json:"job_id"`
	JobTitle  string                   `json:"job_title"`
	StudentID string                   `json:"student_id"`
	Status    domain.ApplicationStatus `json:"status"`
}
