package notifications

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/oklog/ulid/v2"
	"github.com/sourcegraph/conc/panics"

	"coffee-with-me/internal/platform/logger"
	"coffee-with-me/internal/platform/metrics"
)

const storeSinkName = "store"

type NotifierOptions struct {
	Resolver Resolver
	Repo     Repository
	Sinks    []Sink

	// Reintentos por (destinatario, sink).
	MaxAttempts  int
	RetryInitial time.Duration

	Logger logger.Logger
}

// Notifier es el consumer que convierte eventos en notificaciones por destinatario.
type Notifier struct {
	resolver Resolver
	repo     Repository
	sinks    []Sink
	log      logger.Logger

	maxAttempts  int
	retryInitial time.Duration

	now   func() time.Time
	newID func() string
}

func NewNotifier(opts NotifierOptions) *Notifier {
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 3
	}
	if opts.RetryInitial <= 0 {
		opts.RetryInitial = 200 * time.Millisecond
	}
	if opts.Logger == nil {
		opts.Logger = logger.Nop()
	}
	if opts.Resolver == nil {
		opts.Resolver = NewDomainResolver(nil)
	}

	return &Notifier{
		resolver:     opts.Resolver,
		repo:         opts.Repo,
		sinks:        append([]Sink(nil), opts.Sinks...),
		log:          opts.Logger.With(map[string]any{"component": "notifier"}),
		maxAttempts:  opts.MaxAttempts,
		retryInitial: opts.RetryInitial,
		now:          func() time.Time { return time.Now().UTC() },
		newID:        func() string { return ulid.Make().String() },
	}
}

func (n *Notifier) Name() string { return "notifier" }

// Consume sólo devuelve error si no se pudo resolver el sujeto del evento; en ese punto nadie fue
// notificado todavía, así que el reintento del dispatcher no duplica entregas.
// Un destinatario cuyo lookup siguió fallando se descarta sólo a él.
func (n *Notifier) Consume(ctx context.Context, e Event) error {
	recipients, err := n.resolver.Resolve(ctx, e)
	var skipped *SkippedRecipientsError
	switch {
	case errors.As(err, &skipped):
		n.dropRecipients(e, skipped)
	case err != nil:
		return fmt.Errorf("resolve recipients: %w", err)
	}
	metrics.ObserveRecipients(string(e.Kind()), len(recipients))

	for _, r := range recipients {
		n.notify(ctx, e, r)
	}
	return nil
}

func (n *Notifier) dropRecipients(e Event, skipped *SkippedRecipientsError) {
	metrics.IncRecipientsDropped(string(e.Kind()), len(skipped.Failed))
	for id, cause := range skipped.Failed {
		n.log.Error("recipient dropped", map[string]any{
			"event_id":     e.ID(),
			"kind":         string(e.Kind()),
			"recipient_id": id,
			"error":        cause,
		})
	}
}

func (n *Notifier) notify(ctx context.Context, e Event, to UserDetails) {
	note := n.build(e, to)
	log := n.log.With(map[string]any{
		"event_id":     e.ID(),
		"kind":         string(e.Kind()),
		"recipient_id": to.ID,
	})

	if n.repo != nil {
		err := n.retry(ctx, func() error { return n.repo.Create(ctx, note) })
		metrics.IncDelivery(storeSinkName, err == nil)
		if err != nil {
			log.Error("notification not stored", map[string]any{"error": err})
		}
	}

	for _, s := range n.sinks {
		err := n.retry(ctx, func() error { return deliverSafe(ctx, s, note) })
		metrics.IncDelivery(s.Name(), err == nil)
		if err != nil {
			log.Error("notification delivery failed", map[string]any{"sink": s.Name(), "error": err})
		}
	}
}

func (n *Notifier) build(e Event, to UserDetails) Notification {
	note := Notification{
		ID:          n.newID(),
		RecipientID: to.ID,
		EventID:     e.ID(),
		Kind:        e.Kind(),
		SubjectID:   e.SubjectID(),
		Actor:       e.Actor(),
		CreatedAt:   n.now(),
	}
	if d, ok := e.CoffeeBreakDetails(); ok {
		note.CoffeeBreak = &d
	}
	note.Message = RenderMessage(e)
	return note
}

func (n *Notifier) retry(ctx context.Context, op func() error) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = n.retryInitial
	b.MaxInterval = 50 * n.retryInitial

	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		return struct{}{}, op()
	}, backoff.WithBackOff(b), backoff.WithMaxTries(uint(n.maxAttempts)))
	return err
}

func deliverSafe(ctx context.Context, s Sink, note Notification) (err error) {
	if r := panics.Try(func() { err = s.Deliver(ctx, note) }); r != nil {
		return backoff.Permanent(r.AsError())
	}
	return err
}

// RenderMessage arma el texto que ve el destinatario.
func RenderMessage(e Event) string {
	who := e.Actor().DisplayName
	if who == "" {
		who = fmt.Sprintf("User %d", e.Actor().ID)
	}

	switch e.Kind() {
	case KindFriendRequest:
		return fmt.Sprintf("%s sent you a friend request", who)
	case KindFriendRequestAccepted:
		return fmt.Sprintf("%s accepted your friend request", who)
	case KindCoffeeBreakCreated:
		d, _ := e.CoffeeBreakDetails()
		when := d.ScheduledTo.Format("Mon 2 Jan 15:04")
		if d.Location == "" {
			return fmt.Sprintf("%s invited you to a coffee break on %s", who, when)
		}
		return fmt.Sprintf("%s invited you to a coffee break at %s on %s", who, d.Location, when)
	default:
		return fmt.Sprintf("New activity from %s", who)
	}
}
