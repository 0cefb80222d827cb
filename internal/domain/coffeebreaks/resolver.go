package coffeebreaks

import (
	"context"
	"errors"

	"coffee-with-me/internal/domain/notifications"
)

// Resolver: destinatarios de CoffeeBreakEvent = participantes actuales menos el actor.
type Resolver struct {
	repo  Repository
	users notifications.UserDirectory
}

func NewResolver(repo Repository, users notifications.UserDirectory) *Resolver {
	return &Resolver{repo: repo, users: users}
}

func (r *Resolver) Resolve(ctx context.Context, e notifications.Event) ([]notifications.UserDetails, error) {
	if e.Kind() != notifications.KindCoffeeBreakCreated {
		return nil, nil
	}

	c, err := r.repo.GetByID(ctx, e.SubjectID())
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	ids := make([]int64, 0, len(c.AddresseeIDs)+1)
	for _, id := range c.Participants() {
		if id != e.Actor().ID {
			ids = append(ids, id)
		}
	}
	return notifications.LookupRecipients(ctx, r.users, ids)
}
