package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/tutorconnect/tutor-connect/internal/domain"
	"github.com/tutorconnect/tutor-connect/internal/events"
	"github.com/tutorconnect/tutor-connect/internal/repository"
	apperrors "github.com/tutorconnect/tutor-connect/pkg/util/errorutil"
)

// DefaultRejectionReason is recorded on documents when an admin gives none.
const DefaultRejectionReason = "Documents could not be verified"

// TeacherReview bundles a teacher awaiting review with what they submitted.
type TeacherReview struct {
	User      domain.User
	Profile   *domain.UserProfile
	Documents []domain.TeacherDocument
}

// AdminService implements teacher verification, suspension and the admin read side.
type AdminService struct {
	store      repository.Store
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewAdminService builds the service.
func NewAdminService(store repository.Store, dispatcher events.Dispatcher, logger *zap.Logger) *AdminService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AdminService{store: store, dispatcher: dispatcher, logger: logger}
}

// ApproveTeacher marks a pending or rejected teacher and all their documents approved.
// Approving an approved teacher is a no-op.
func (s *AdminService) ApproveTeacher(ctx context.Context, adminID, userID string) (*domain.User, error) {
	if err := requireID("user_id", userID); err != nil {
		return nil, err
	}
	var (
		user    *domain.User
		changed bool
	)
	err := s.store.WithinTx(ctx, func(repos repository.Repositories) error {
		u, err := lockTeacher(ctx, repos, userID)
		if err != nil {
			return err
		}
		user = u
		switch u.Status {
		case domain.UserStatusApproved:
			return nil
		case domain.UserStatusSuspended:
			return apperrors.NewInvalidState("suspended accounts cannot be approved", map[string]any{"status": u.Status})
		}

		previous := u.Status
		if err := repos.Users.UpdateStatus(ctx, userID, domain.UserStatusApproved); err != nil {
			return fmt.Errorf("update status: %w", err)
		}
		docs, err := repos.Documents.SetStatusForUser(ctx, userID, domain.VerificationApproved, nil)
		if err != nil {
			return fmt.Errorf("update documents: %w", err)
		}
		if err := appendActivity(ctx, repos, &adminID, domain.ActionTeacherApproved, domain.TargetUser, userID, map[string]any{
			"previous_status": previous,
			"documents":       docs,
		}); err != nil {
			return fmt.Errorf("append activity: %w", err)
		}
		u.Status = domain.UserStatusApproved
		changed = true
		return nil
	})
	if err != nil {
		return nil, err
	}
	if changed {
		s.logger.Info("teacher approved", zap.String("user_id", userID), zap.String("admin_id", adminID))
		publish(ctx, s.dispatcher, s.logger, events.Event{
			Type:      events.EventTeacherApproved,
			ActorID:   &adminID,
			SubjectID: userID,
			Payload:   events.TeacherReviewPayload{Email: user.Email, Status: user.Status},
		})
	}
	return user, nil
}

// RejectTeacher marks a teacher and their documents rejected. The account is
// kept. Rejecting a rejected teacher is a no-op.
func (s *AdminService) RejectTeacher(ctx context.Context, adminID, userID, reason string) (*domain.User, error) {
	if err := requireID("user_id", userID); err != nil {
		return nil, err
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		reason = DefaultRejectionReason
	}
	var (
		user    *domain.User
		changed bool
	)
	err := s.store.WithinTx(ctx, func(repos repository.Repositories) error {
		u, err := lockTeacher(ctx, repos, userID)
		if err != nil {
			return err
		}
		user = u
		switch u.Status {
		case domain.UserStatusRejected:
			return nil
		case domain.UserStatusSuspended:
			return apperrors.NewInvalidState("suspended accounts cannot be rejected", map[string]any{"status": u.Status})
		}

		previous := u.Status
		if err := repos.Users.UpdateStatus(ctx, userID, domain.UserStatusRejected); err != nil {
			return fmt.Errorf("update status: %w", err)
		}
		docs, err := repos.Documents.SetStatusForUser(ctx, userID, domain.VerificationRejected, stringPtr(reason))
		if err != nil {
			return fmt.Errorf("update documents: %w", err)
		}
		if err := appendActivity(ctx, repos, &adminID, domain.ActionTeacherRejected, domain.TargetUser, userID, map[string]any{
			"previous_status": previous,
			"documents":       docs,
			"reason":          reason,
		}); err != nil {
			return fmt.Errorf("append activity: %w", err)
		}
		u.Status = domain.UserStatusRejected
		changed = true
		return nil
	})
	if err != nil {
		return nil, err
	}
	if changed {
		s.logger.Info("teacher rejected", zap.String("user_id", userID), zap.String("admin_id", adminID))
		publish(ctx, s.dispatcher, s.logger, events.Event{
			Type:      events.EventTeacherRejected,
			ActorID:   &adminID,
			SubjectID: userID,
			Payload:   events.TeacherReviewPayload{Email: user.Email, Status: user.Status, Reason: reason},
		})
	}
	return user, nil
}

func lockTeacher(ctx context.Context, repos repository.Repositories, userID string) (*domain.User, error) {
	u, err := repos.Users.GetByIDForUpdate(ctx, userID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NewNotFound("user", map[string]any{"user_id": userID})
	}
	if err != nil {
		return nil, fmt.Errorf("lock user: %w", err)
	}
	if u.Role != domain.RoleTeacher {
		return nil, apperrors.NewInvalidState("user is not a teacher", map[string]any{"role": u.Role})
	}
	return u, nil
}

// SuspendUser blocks a student or teacher account. Suspending twice is a no-op.
func (s *AdminService) SuspendUser(ctx context.Context, adminID, userID string) (*domain.User, error) {
	if err := requireID("user_id", userID); err != nil {
		return nil, err
	}
	var (
		user    *domain.User
		changed bool
	)
	err := s.store.WithinTx(ctx, func(repos repository.Repositories) error {
		u, err := repos.Users.GetByIDForUpdate(ctx, userID)
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("user", map[string]any{"user_id": userID})
		}
		if err != nil {
			return fmt.Errorf("lock user: %w", err)
		}
		user = u
		if u.Role == domain.RoleAdmin {
			return apperrors.NewInvalidState("admin accounts cannot be suspended", nil)
		}
		if u.Status == domain.UserStatusSuspended {
			return nil
		}

		previous := u.Status
		if err := repos.Users.UpdateStatus(ctx, userID, domain.UserStatusSuspended); err != nil {
			return fmt.Errorf("update status: %w", err)
		}
		if err := appendActivity(ctx, repos, &adminID, domain.ActionUserSuspended, domain.TargetUser, userID, map[string]any{
			"previous_status": previous,
			"role":            u.Role,
		}); err != nil {
			return fmt.Errorf("append activity: %w", err)
		}
		u.Status = domain.UserStatusSuspended
		changed = true
		return nil
	})
	if err != nil {
		return nil, err
	}
	if changed {
		s.logger.Info("user suspended", zap.String("user_id", userID), zap.String("admin_id", adminID))
		publish(ctx, s.dispatcher, s.logger, events.Event{
			Type:      events.EventUserSuspended,
			ActorID:   &adminID,
			SubjectID: userID,
			Payload:   events.TeacherReviewPayload{Email: user.Email, Status: user.Status},
		})
	}
	return user, nil
}

// Stats gathers the dashboard counters.
func (s *AdminService) Stats(ctx context.Context) (*domain.AdminStats, error) {
	repos := s.store.Repos()
	var stats domain.AdminStats

	roles := map[domain.Role]*int64{
		domain.RoleStudent: &stats.Students,
		domain.RoleTeacher: &stats.Teachers,
		domain.RoleAdmin:   &stats.Admins,
	}
	for role, dst := range roles {
		r := role
		n, err := repos.Users.Count(ctx, repository.UserFilter{Role: &r})
		if err != nil {
			return nil, fmt.Errorf("count %s users: %w", role, err)
		}
		*dst = n
		stats.TotalUsers += n
	}

	teacher, pending, suspended := domain.RoleTeacher, domain.UserStatusPending, domain.UserStatusSuspended
	var err error
	if stats.PendingTeachers, err = repos.Users.Count(ctx, repository.UserFilter{Role: &teacher, Status: &pending}); err != nil {
		return nil, fmt.Errorf("count pending teachers: %w", err)
	}
	if stats.SuspendedUsers, err = repos.Users.Count(ctx, repository.UserFilter{Status: &suspended}); err != nil {
		return nil, fmt.Errorf("count suspended users: %w", err)
	}

	active := domain.JobStatusActive
	if stats.ActiveJobs, err = repos.Jobs.Count(ctx, &active); err != nil {
		return nil, fmt.Errorf("count active jobs: %w", err)
	}
	if stats.TotalJobs, err = repos.Jobs.Count(ctx, nil); err != nil {
		return nil, fmt.Errorf("count jobs: %w", err)
	}

	pendingApp := domain.ApplicationPending
	if stats.TotalApplications, err = repos.Applications.Count(ctx, nil); err != nil {
		return nil, fmt.Errorf("count applications: %w", err)
	}
	if stats.PendingApplications, err = repos.Applications.Count(ctx, &pendingApp); err != nil {
		return nil, fmt.Errorf("count pending applications: %w", err)
	}
	return &stats, nil
}

// PendingTeachers lists teachers awaiting review, newest first.
func (s *AdminService) PendingTeachers(ctx context.Context, limit, offset int) ([]TeacherReview, error) {
	repos := s.store.Repos()
	teacher, pending := domain.RoleTeacher, domain.UserStatusPending
	users, err := repos.Users.List(ctx, repository.UserFilter{Role: &teacher, Status: &pending, Limit: limit, Offset: offset})
	if err != nil {
		return nil, fmt.Errorf("list pending teachers: %w", err)
	}

	reviews := make([]TeacherReview, 0, len(users))
	for _, u := range users {
		review := TeacherReview{User: u}
		if review.Profile, err = repos.Profiles.GetByUserID(ctx, u.ID); err != nil && !errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("load profile: %w", err)
		}
		if review.Documents, err = repos.Documents.ListByUser(ctx, u.ID); err != nil {
			return nil, fmt.Errorf("load documents: %w", err)
		}
		reviews = append(reviews, review)
	}
	return reviews, nil
}

// ActivityLogs returns audit entries newest first.
func (s *AdminService) ActivityLogs(ctx context.Context, limit, offset int) ([]domain.ActivityLog, error) {
	logs, err := s.store.Repos().Activity.List(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list activity: %w", err)
	}
	return logs, nil
}
