package worker

import (
	"go.uber.org/zap"

	"github.com/tutorconnect/tutor-connect/internal/service"
)

// StartNotificationWorker subscribes the notification service to account and
// application events. Delivery runs on the publishing goroutine after commit.
func StartNotificationWorker(notifications *service.NotificationService, logger *zap.Logger) {
	if notifications == nil {
		return
	}
	subscribed := notifications.RegisterHandlers()
	if logger == nil {
		return
	}
	names := make([]string, 0, len(subscribed))
	for _, et := range subscribed {
		names = append(names, string(et))
	}
	logger.Info("notification worker started", zap.Strings("events", names))
}
