package friendships

import (
	"errors"
	"time"
)

var (
	ErrNotFound            = errors.New("friendship not found")
	ErrDuplicate           = errors.New("friendship already exists")
	ErrInvalidInput        = errors.New("invalid input")
	ErrUserNotFound        = errors.New("user not found")
	ErrForbidden           = errors.New("not a party of this friendship")
	ErrInvalidStatusChange = errors.New("invalid status change")
)

// Status del vínculo.
// @Enum REQUESTED, ACCEPTED, DECLINED, BLOCKED
type Status string

const (
	StatusRequested Status = "REQUESTED"
	StatusAccepted  Status = "ACCEPTED"
	StatusDeclined  Status = "DECLINED"
	StatusBlocked   Status = "BLOCKED"
)

func (s Status) Valid() bool {
	switch s {
	case StatusRequested, StatusAccepted, StatusDeclined, StatusBlocked:
		return true
	default:
		return false
	}
}

// Friendship es dirigida: Requester pidió, Addressee recibe.
// Entre dos usuarios existe a lo sumo una, en cualquiera de las dos direcciones.
type Friendship struct {
	RequesterID int64
	AddresseeID int64
	Status      Status

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (f Friendship) Involves(userID int64) bool {
	return f.RequesterID == userID || f.AddresseeID == userID
}

// Other devuelve la contraparte de userID.
func (f Friendship) Other(userID int64) int64 {
	if f.RequesterID == userID {
		return f.AddresseeID
	}
	return f.RequesterID
}
