package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tutorconnect/tutor-connect/internal/domain"
	"github.com/tutorconnect/tutor-connect/internal/events"
	"github.com/tutorconnect/tutor-connect/internal/repository"
	apperrors "github.com/tutorconnect/tutor-connect/pkg/util/errorutil"
)

// Actor identifies the authenticated caller of an operation. It is always
// built from verified token claims.
type Actor struct {
	ID   string
	Role domain.Role
}

// IsAdmin reports whether the actor holds the admin role.
func (a Actor) IsAdmin() bool {
	return a.Role == domain.RoleAdmin
}

func requireID(field, value string) error {
	if _, err := uuid.Parse(value); err != nil {
		return apperrors.NewValidationError(field+" must be a valid id", map[string]any{"field": field})
	}
	return nil
}

func appendActivity(ctx context.Context, repos repository.Repositories, actorID *string, action domain.ActivityAction, targetType, targetID string, details map[string]any) error {
	return repos.Activity.Create(ctx, &domain.ActivityLog{
		ActorID:    actorID,
		Action:     action,
		TargetType: targetType,
		TargetID:   targetID,
		Details:    details,
	})
}

func publish(ctx context.Context, dispatcher events.Dispatcher, logger *zap.Logger, event events.Event) {
	if dispatcher == nil {
		return
	}
	event.ID = uuid.NewString()
	event.Timestamp = time.Now().UTC()
	if err := dispatcher.Publish(ctx, event); err != nil {
		logger.Warn("event handler failed", zap.String("event_type", string(event.Type)), zap.Error(err))
	}
}

func stringPtr(s string) *string {
	return &s
}
