package friendships

import (
	"context"
	"errors"

	"coffee-with-me/internal/domain/notifications"
)

// Resolver decide los destinatarios de los eventos FriendshipEvent.
type Resolver struct {
	repo  Repository
	users notifications.UserDirectory
}

func NewResolver(repo Repository, users notifications.UserDirectory) *Resolver {
	return &Resolver{repo: repo, users: users}
}

func (r *Resolver) Resolve(ctx context.Context, e notifications.Event) ([]notifications.UserDetails, error) {
	var requesterID, addresseeID int64

	switch e.Kind() {
	case notifications.KindFriendRequest:
		// subject = addressee, actor = requester
		requesterID, addresseeID = e.Actor().ID, e.SubjectID()
	case notifications.KindFriendRequestAccepted:
		// subject = requester, actor = addressee
		requesterID, addresseeID = e.SubjectID(), e.Actor().ID
	default:
		return nil, nil
	}

	// Si el vínculo ya no existe (borrado, cuenta eliminada) no hay a quién avisar.
	if _, err := r.repo.Get(ctx, requesterID, addresseeID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return notifications.LookupRecipients(ctx, r.users, []int64{e.SubjectID()})
}
