package notify

import (
	"context"

	"coffee-with-me/internal/domain/notifications"
	"coffee-with-me/internal/platform/logger"
)

// LogSink deja constancia de cada notificación en el log. Útil en dev y como auditoría mínima.
type LogSink struct {
	log logger.Logger
}

func NewLogSink(log logger.Logger) *LogSink {
	if log == nil {
		log = logger.Nop()
	}
	return &LogSink{log: log.With(map[string]any{"sink": "log"})}
}

func (s *LogSink) Name() string { return "log" }

func (s *LogSink) Deliver(_ context.Context, n notifications.Notification) error {
	s.log.Info("notification", map[string]any{
		"notification_id": n.ID,
		"recipient_id":    n.RecipientID,
		"kind":            string(n.Kind),
		"event_id":        n.EventID,
		"actor_id":        n.Actor.ID,
		"message":         n.Message,
	})
	return nil
}
