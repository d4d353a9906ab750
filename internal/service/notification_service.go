package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/tutorconnect/tutor-connect/internal/config"
	"github.com/tutorconnect/tutor-connect/internal/events"
)

// NotificationService turns lifecycle events into outbound notifications.
// Delivery is stubbed: each notification is logged.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	cfg        config.NotificationConfig
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	return &NotificationService{
		dispatcher: dispatcher,
		logger:     logger,
		cfg:        cfg,
	}
}

// RegisterHandlers subscribes to every account and application event and
// returns the event types it now listens to.
func (n *NotificationService) RegisterHandlers() []events.EventType {
	if n.dispatcher == nil {
		return nil
	}
	handlers := []struct {
		event   events.EventType
		handler events.EventHandler
	}{
		{events.EventTeacherRegistered, n.handleTeacherRegistered},
		{events.EventTeacherApproved, n.handleTeacherReviewed},
		{events.EventTeacherRejected, n.handleTeacherReviewed},
		{events.EventUserSuspended, n.handleUserSuspended},
		{events.EventApplicationSubmitted, n.handleApplicationSubmitted},
		{events.EventApplicationDecided, n.handleApplicationDecided},
	}
	subscribed := make([]events.EventType, 0, len(handlers))
	for _, h := range handlers {
		n.dispatcher.Subscribe(h.event, h.handler)
		subscribed = append(subscribed, h.event)
	}
	return subscribed
}

func (n *NotificationService) handleTeacherRegistered(ctx context.Context, event events.Event) error {
	n.logger.Info("TeacherRegistered", zap.String("user_id", event.SubjectID), zap.Any("payload", event.Payload))
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleTeacherReviewed(ctx context.Context, event events.Event) error {
	payload, _ := event.Payload.(events.TeacherReviewPayload)
	n.logger.Info("TeacherReviewed",
		zap.String("user_id", event.SubjectID),
		zap.String("status", string(payload.Status)))
	n.sendEmailNotificationStub(ctx, event, payload.Email)
	return nil
}

func (n *NotificationService) handleUserSuspended(ctx context.Context, event events.Event) error {
	payload, _ := event.Payload.(events.TeacherReviewPayload)
	n.logger.Info("UserSuspended", zap.String("user_id", event.SubjectID))
	n.sendEmailNotificationStub(ctx, event, payload.Email)
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleApplicationSubmitted(ctx context.Context, event events.Event) error {
	n.logger.Info("ApplicationSubmitted", zap.String("application_id", event.SubjectID), zap.Any("payload", event.Payload))
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleApplicationDecided(ctx context.Context, event events.Event) error {
	n.logger.Info("ApplicationDecided", zap.String("application_id", event.SubjectID), zap.Any("payload", event.Payload))
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) sendEmailNotificationStub(_ context.Context, event events.Event, to string) {
	if strings.TrimSpace(n.cfg.EmailFrom) == "" || to == "" {
		return
	}
	n.logger.Debug("sendEmailNotificationStub",
		zap.String("from", n.cfg.EmailFrom),
		zap.String("to", to),
		zap.String("subject_id", event.SubjectID),
		zap.String("event_type", string(event.Type)))
}

func (n *NotificationService) sendWebhookNotificationStub(_ context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.WebhookURL) == "" {
		return
	}
	n.logger.Debug("sendWebhookNotificationStub",
		zap.String("url", n.cfg.WebhookURL),
		zap.String("subject_id", event.SubjectID),
		zap.String("event_type", string(event.Type)))
}
