package notifications

import (
	"errors"
	"time"
)

var (
	ErrNotFound     = errors.New("notification not found")
	ErrForbidden    = errors.New("notification belongs to another user")
	ErrInvalidInput = errors.New("invalid input")
)

// Notification es la entrada del inbox de un destinatario, derivada de un Event.
type Notification struct {
	ID          string
	RecipientID int64

	EventID   string
	Kind      Kind
	SubjectID int64
	Actor     UserDetails
	Message   string

	// Sólo para COFFEE_BREAK_CREATED.
	CoffeeBreak *CoffeeBreakDetails

	Seen      bool
	CreatedAt time.Time
}

// Envelope es la forma en que una notificación sale del proceso (JSON).
type Envelope struct {
	ID          string              `json:"id"`
	RecipientID int64               `json:"recipient_id"`
	EventID     string              `json:"event_id"`
	Kind        Kind                `json:"kind"`
	SubjectID   int64               `json:"subject_id"`
	Actor       UserDetails         `json:"actor"`
	Message     string              `json:"message"`
	CoffeeBreak *CoffeeBreakDetails `json:"coffee_break,omitempty"`
	Seen        bool                `json:"seen"`
	CreatedAt   time.Time           `json:"created_at"`
}

func (n Notification) Envelope() Envelope {
	return Envelope{
		ID:          n.ID,
		RecipientID: n.RecipientID,
		EventID:     n.EventID,
		Kind:        n.Kind,
		SubjectID:   n.SubjectID,
		Actor:       n.Actor,
		Message:     n.Message,
		CoffeeBreak: n.CoffeeBreak,
		Seen:        n.Seen,
		CreatedAt:   n.CreatedAt,
	}
}
