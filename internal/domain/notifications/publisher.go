package notifications

import (
	"context"

	"coffee-with-me/internal/platform/logger"
)

// Discard descarta todo. Útil cuando un servicio no tiene dispatcher (tests, scripts).
var Discard Publisher = discard{}

type discard struct{}

func (discard) Publish(context.Context, Event) error { return nil }

// PublishBestEffort publica un evento ya construido y sólo loguea si falla.
// Se llama después de que la escritura de dominio terminó bien; su error nunca vuelve al caller.
func PublishBestEffort(ctx context.Context, p Publisher, log logger.Logger, e Event) {
	if p == nil {
		return
	}
	if err := p.Publish(ctx, e); err != nil && log != nil {
		log.Warn("event publish failed", map[string]any{
			"event_id":   e.ID(),
			"kind":       string(e.Kind()),
			"subject_id": e.SubjectID(),
			"error":      err,
		})
	}
}
