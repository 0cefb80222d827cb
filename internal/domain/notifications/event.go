package notifications

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrMissingSubject = errors.New("event subject is required")
	ErrMissingActor   = errors.New("event actor is required")
	ErrInvalidEvent   = errors.New("invalid event")
)

// Kind discrimina las variantes de evento.
type Kind string

const (
	KindFriendRequest         Kind = "FRIEND_REQUEST"
	KindFriendRequestAccepted Kind = "FRIEND_REQUEST_ACCEPTED"
	KindCoffeeBreakCreated    Kind = "COFFEE_BREAK_CREATED"
)

// Domain es el tag que decide qué resolver de destinatarios aplica.
type Domain string

const (
	DomainFriendship  Domain = "FriendshipEvent"
	DomainCoffeeBreak Domain = "CoffeeBreakEvent"
)

func (k Kind) Domain() Domain {
	switch k {
	case KindFriendRequest, KindFriendRequestAccepted:
		return DomainFriendship
	case KindCoffeeBreakCreated:
		return DomainCoffeeBreak
	default:
		return ""
	}
}

// UserDetails es un snapshot del usuario al momento de crear el evento.
type UserDetails struct {
	ID          int64  `json:"id"`
	DisplayName string `json:"display_name"`
}

type CoffeeBreakDetails struct {
	Location     string    `json:"location"`
	ScheduledTo  time.Time `json:"scheduled_to"`
	Participants []int64   `json:"participants"`
}

func (d CoffeeBreakDetails) clone() CoffeeBreakDetails {
	out := d
	out.Participants = append([]int64(nil), d.Participants...)
	return out
}

// Event es inmutable: sólo se construye con los New*Event y se lee por accessors.
// El zero value no es publicable.
type Event struct {
	id         string
	kind       Kind
	subjectID  int64
	actor      UserDetails
	occurredAt time.Time

	coffeeBreak *CoffeeBreakDetails
}

// now es reemplazable en tests del paquete.
var now = func() time.Time { return time.Now().UTC() }

func newEvent(kind Kind, subjectID int64, actor UserDetails) (Event, error) {
	if subjectID == 0 {
		return Event{}, ErrMissingSubject
	}
	if actor.ID == 0 {
		return Event{}, ErrMissingActor
	}
	return Event{
		id:         newEventID(),
		kind:       kind,
		subjectID:  subjectID,
		actor:      actor,
		occurredAt: now(),
	}, nil
}

// NewFriendRequestEvent: actor = quien pide, subject = usuario invitado.
func NewFriendRequestEvent(subjectID int64, actor UserDetails) (Event, error) {
	return newEvent(KindFriendRequest, subjectID, actor)
}

// NewFriendRequestAcceptedEvent: actor = quien acepta, subject = quien había pedido.
func NewFriendRequestAcceptedEvent(subjectID int64, actor UserDetails) (Event, error) {
	return newEvent(KindFriendRequestAccepted, subjectID, actor)
}

// NewCoffeeBreakCreatedEvent: subject = id del coffee break.
func NewCoffeeBreakCreatedEvent(details CoffeeBreakDetails, subjectID int64, actor UserDetails) (Event, error) {
	e, err := newEvent(KindCoffeeBreakCreated, subjectID, actor)
	if err != nil {
		return Event{}, err
	}
	d := details.clone()
	e.coffeeBreak = &d
	return e, nil
}

func (e Event) ID() string            { return e.id }
func (e Event) Kind() Kind            { return e.kind }
func (e Event) Domain() Domain        { return e.kind.Domain() }
func (e Event) SubjectID() int64      { return e.subjectID }
func (e Event) Actor() UserDetails    { return e.actor }
func (e Event) OccurredAt() time.Time { return e.occurredAt }

// CoffeeBreakDetails devuelve una copia del payload (ok=false si el evento no lo trae).
func (e Event) CoffeeBreakDetails() (CoffeeBreakDetails, bool) {
	if e.coffeeBreak == nil {
		return CoffeeBreakDetails{}, false
	}
	return e.coffeeBreak.clone(), true
}

// Valid reporta si el evento salió de un constructor.
func (e Event) Valid() bool {
	return e.id != "" && e.kind.Domain() != "" && e.subjectID != 0 && e.actor.ID != 0
}

func newEventID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
