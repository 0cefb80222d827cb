package coffeebreaks

import (
	"errors"
	"time"
)

var (
	ErrNotFound     = errors.New("coffee break not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFriends   = errors.New("addressee is not a friend")
	ErrForbidden    = errors.New("only the requester can do this")
)

// CoffeeBreak es una invitación a tomar café de un usuario a uno o más amigos.
type CoffeeBreak struct {
	ID           int64
	RequesterID  int64
	AddresseeIDs []int64

	ScheduledTo time.Time
	CampusID    *int64
	Location    string

	CreatedAt time.Time
}

// Participants = requester + addressees, en ese orden.
func (c CoffeeBreak) Participants() []int64 {
	out := make([]int64, 0, len(c.AddresseeIDs)+1)
	out = append(out, c.RequesterID)
	return append(out, c.AddresseeIDs...)
}

func (c CoffeeBreak) Involves(userID int64) bool {
	for _, id := range c.Participants() {
		if id == userID {
			return true
		}
	}
	return false
}
