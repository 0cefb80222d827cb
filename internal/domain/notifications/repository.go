package notifications

import "context"

type Repository interface {
	Create(ctx context.Context, n Notification) error
	GetByID(ctx context.Context, id string) (Notification, error)
	// ListByRecipient devuelve las más nuevas primero.
	ListByRecipient(ctx context.Context, recipientID int64, limit int) ([]Notification, error)
	MarkSeen(ctx context.Context, id string) error
	DeleteByRecipient(ctx context.Context, recipientID int64) error
}

// Sink es un canal de entrega (log, redis, websocket, webhook).
type Sink interface {
	Name() string
	Deliver(ctx context.Context, n Notification) error
}

// Stream expone las notificaciones nuevas de un usuario mientras ctx siga vivo.
type Stream interface {
	Subscribe(ctx context.Context, recipientID int64) <-chan Envelope
}
