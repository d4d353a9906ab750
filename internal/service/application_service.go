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

// ApplyInput is a student's application to a job.
type ApplyInput struct {
	JobID       string
	CoverLetter string
	ResumeURL   *string
}

// ApplicationQuery filters application listings. Scope is narrowed further
// by the caller's role.
type ApplicationQuery struct {
	JobID  string
	Status domain.ApplicationStatus
	Limit  int
	Offset int
}

// ApplicationService matches students to jobs.
type ApplicationService struct {
	store      repository.Store
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewApplicationService builds the service.
func NewApplicationService(store repository.Store, dispatcher events.Dispatcher, logger *zap.Logger) *ApplicationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ApplicationService{store: store, dispatcher: dispatcher, logger: logger}
}

// Apply records a pending application. A student may apply to a job once.
func (s *ApplicationService) Apply(ctx context.Context, studentID string, in ApplyInput) (*domain.JobApplication, error) {
	if err := requireID("job_id", in.JobID); err != nil {
		return nil, err
	}
	coverLetter := strings.TrimSpace(in.CoverLetter)
	if coverLetter == "" {
		return nil, apperrors.NewValidationError("cover letter is required", map[string]any{"field": "cover_letter"})
	}

	repos := s.store.Repos()
	student, err := repos.Users.GetByID(ctx, studentID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NewUnauthorized("account not found")
	}
	if err != nil {
		return nil, fmt.Errorf("load student: %w", err)
	}
	if student.Role != domain.RoleStudent {
		return nil, apperrors.NewForbidden("only students can apply to jobs")
	}

	job, err := repos.Jobs.GetByID(ctx, in.JobID)
	if errors.Is(err, pgx.ErrNoRows) || (err == nil && job.Status == domain.JobStatusDraft) {
		return nil, apperrors.NewNotFound("job", map[string]any{"job_id": in.JobID})
	}
	if err != nil {
		return nil, fmt.Errorf("load job: %w", err)
	}
	if job.Status != domain.JobStatusActive {
		return nil, apperrors.NewInvalidState("job is not accepting applications", map[string]any{"status": job.Status})
	}

	if _, err := repos.Applications.FindByJobAndStudent(ctx, in.JobID, studentID); err == nil {
		return nil, apperrors.NewDuplicateApplication(in.JobID)
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("check existing application: %w", err)
	}

	app := &domain.JobApplication{
		JobID:       in.JobID,
		StudentID:   studentID,
		CoverLetter: coverLetter,
		ResumeURL:   in.ResumeURL,
		Status:      domain.ApplicationPending,
	}
	if err := repos.Applications.Create(ctx, app); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.NewDuplicateApplication(in.JobID)
		}
		return nil, fmt.Errorf("create application: %w", err)
	}

	stored, err := repos.Applications.GetByID(ctx, app.ID)
	if err != nil {
		return nil, fmt.Errorf("reload application: %w", err)
	}
	publish(ctx, s.dispatcher, s.logger, events.Event{
		Type:      events.EventApplicationSubmitted,
		ActorID:   &studentID,
		SubjectID: stored.ID,
		Payload: events.ApplicationPayload{
			JobID:     job.ID,
			JobTitle:  job.Title,
			StudentID: studentID,
			Status:    stored.Status,
		},
	})
	return stored, nil
}

// ListApplications returns applications visible to the actor, newest first.
// Students see their own, teachers see those sent to their jobs and admins see all.
func (s *ApplicationService) ListApplications(ctx context.Context, actor Actor, q ApplicationQuery) ([]domain.JobApplication, error) {
	filter := repository.ApplicationFilter{Limit: q.Limit, Offset: q.Offset}
	switch actor.Role {
	case domain.RoleStudent:
		filter.StudentID = &actor.ID
	case domain.RoleTeacher:
		filter.TeacherID = &actor.ID
	case domain.RoleAdmin:
	default:
		return nil, apperrors.NewForbidden("unknown role")
	}
	if q.JobID != "" {
		if err := requireID("job_id", q.JobID); err != nil {
			return nil, err
		}
		filter.JobID = &q.JobID
	}
	if q.Status != "" {
		if !q.Status.Valid() {
			return nil, apperrors.NewValidationError("unknown application status", map[string]any{"field": "status"})
		}
		status := q.Status
		filter.Status = &status
	}
	apps, err := s.store.Repos().Applications.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}
	return apps, nil
}

// Decide accepts or rejects a pending application. A decision is final.
func (s *ApplicationService) Decide(ctx context.Context, actor Actor, applicationID string, decision domain.Decision) (*domain.JobApplication, error) {
	if err := requireID("application_id", applicationID); err != nil {
		return nil, err
	}
	target, ok := decision.Status()
	if !ok {
		return nil, apperrors.NewValidationError("decision must be accept or reject", map[string]any{"field": "decision"})
	}

	var decided *domain.JobApplication
	err := s.store.WithinTx(ctx, func(repos repository.Repositories) error {
		app, err := repos.Applications.GetByID(ctx, applicationID)
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("application", map[string]any{"application_id": applicationID})
		}
		if err != nil {
			return fmt.Errorf("load application: %w", err)
		}
		if app.JobPosterID != actor.ID && !actor.IsAdmin() {
			return apperrors.NewForbidden("only the job poster or an admin can decide this application")
		}
		if app.Status != domain.ApplicationPending {
			return apperrors.NewInvalidState("application has already been decided", map[string]any{"status": app.Status})
		}

		moved, err := repos.Applications.TransitionStatus(ctx, applicationID, domain.ApplicationPending, target, &actor.ID)
		if err != nil {
			return fmt.Errorf("update application: %w", err)
		}
		if !moved {
			return apperrors.NewInvalidState("application has already been decided", nil)
		}
		if err := appendActivity(ctx, repos, &actor.ID, domain.ActionApplicationDecided, domain.TargetApplication, applicationID, map[string]any{
			"decision": decision,
			"job_id":   app.JobID,
		}); err != nil {
			return fmt.Errorf("append activity: %w", err)
		}
		if decided, err = repos.Applications.GetByID(ctx, applicationID); err != nil {
			return fmt.Errorf("reload application: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	publish(ctx, s.dispatcher, s.logger, events.Event{
		Type:      events.EventApplicationDecided,
		ActorID:   &actor.ID,
		SubjectID: decided.ID,
		Payload: events.ApplicationPayload{
			JobID:     decided.JobID,
			JobTitle:  decided.JobTitle,
			StudentID: decided.StudentID,
			Status:    decided.Status,
		},
	})
	return decided, nil
}

// Withdraw lets the applicant retract a pending application.
func (s *ApplicationService) Withdraw(ctx context.Context, studentID, applicationID string) (*domain.JobApplication, error) {
	if err := requireID("application_id", applicationID); err != nil {
		return nil, err
	}
	repos := s.store.Repos()
	app, err := repos.Applications.GetByID(ctx, applicationID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NewNotFound("application", map[string]any{"application_id": applicationID})
	}
	if err != nil {
		return nil, fmt.Errorf("load application: %w", err)
	}
	if app.StudentID != studentID {
		return nil, apperrors.NewForbidden("only the applicant can withdraw this application")
	}
	if app.Status != domain.ApplicationPending {
		return nil, apperrors.NewInvalidState("only pending applications can be withdrawn", map[string]any{"status": app.Status})
	}
	moved, err := repos.Applications.TransitionStatus(ctx, applicationID, domain.ApplicationPending, domain.ApplicationWithdrawn, nil)
	if err != nil {
		return nil, fmt.Errorf("withdraw application: %w", err)
	}
	if !moved {
		return nil, apperrors.NewInvalidState("only pending applications can be withdrawn", nil)
	}
	return repos.Applications.GetByID(ctx, applicationID)
}
