package friendships

import (
	"context"
	"errors"
	"time"

	"coffee-with-me/internal/domain/notifications"
	"coffee-with-me/internal/platform/logger"
)

type Service struct {
	repo   Repository
	users  notifications.UserDirectory
	events notifications.Publisher
	log    logger.Logger
	now    func() time.Time
}

func NewService(repo Repository, users notifications.UserDirectory, events notifications.Publisher, log logger.Logger) *Service {
	if events == nil {
		events = notifications.Discard
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Service{
		repo:   repo,
		users:  users,
		events: events,
		log:    log.With(map[string]any{"component": "friendships"}),
		now:    time.Now,
	}
}

// Request crea el vínculo REQUESTED y avisa al addressee.
func (s *Service) Request(ctx context.Context, requesterID, addresseeID int64) (Friendship, error) {
	if requesterID <= 0 || addresseeID <= 0 || requesterID == addresseeID {
		return Friendship{}, ErrInvalidInput
	}

	actor, err := s.lookup(ctx, requesterID)
	if err != nil {
		return Friendship{}, err
	}
	if _, err := s.lookup(ctx, addresseeID); err != nil {
		return Friendship{}, err
	}

	if _, err := s.repo.Find(ctx, requesterID, addresseeID); err == nil {
		return Friendship{}, ErrDuplicate
	} else if !errors.Is(err, ErrNotFound) {
		return Friendship{}, err
	}

	now := s.now()
	f := Friendship{
		RequesterID: requesterID,
		AddresseeID: addresseeID,
		Status:      StatusRequested,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Create(ctx, f); err != nil {
		return Friendship{}, err
	}

	s.publish(ctx, func() (notifications.Event, error) {
		return notifications.NewFriendRequestEvent(addresseeID, actor)
	})
	return f, nil
}

// UpdateStatus aplica una transición pedida por actorID.
//
//	REQUESTED -> ACCEPTED | DECLINED   sólo el addressee
//	REQUESTED -> BLOCKED               cualquiera de los dos
//	ACCEPTED  -> BLOCKED               cualquiera de los dos
//
// Aceptar avisa al requester.
func (s *Service) UpdateStatus(ctx context.Context, actorID, requesterID, addresseeID int64, to Status) (Friendship, error) {
	if !to.Valid() || actorID <= 0 {
		return Friendship{}, ErrInvalidInput
	}

	f, err := s.repo.Get(ctx, requesterID, addresseeID)
	if err != nil {
		return Friendship{}, err
	}
	if !f.Involves(actorID) {
		return Friendship{}, ErrForbidden
	}
	if !canTransition(f, actorID, to) {
		return Friendship{}, ErrInvalidStatusChange
	}

	var actor notifications.UserDetails
	if to == StatusAccepted {
		if actor, err = s.lookup(ctx, actorID); err != nil {
			return Friendship{}, err
		}
	}

	f.Status = to
	f.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, f); err != nil {
		return Friendship{}, err
	}

	if to == StatusAccepted {
		s.publish(ctx, func() (notifications.Event, error) {
			return notifications.NewFriendRequestAcceptedEvent(f.RequesterID, actor)
		})
	}
	return f, nil
}

func canTransition(f Friendship, actorID int64, to Status) bool {
	switch f.Status {
	case StatusRequested:
		switch to {
		case StatusAccepted, StatusDeclined:
			return actorID == f.AddresseeID
		case StatusBlocked:
			return true
		}
	case StatusAccepted:
		return to == StatusBlocked
	}
	return false
}

// Remove borra el vínculo entre actor y other (cualquier estado, cualquier dirección).
func (s *Service) Remove(ctx context.Context, actorID, otherID int64) error {
	if actorID <= 0 || otherID <= 0 || actorID == otherID {
		return ErrInvalidInput
	}
	return s.repo.Delete(ctx, actorID, otherID)
}

func (s *Service) ListByStatus(ctx context.Context, userID int64, status Status) ([]Friendship, error) {
	if userID <= 0 {
		return nil, ErrInvalidInput
	}
	if status != "" && !status.Valid() {
		return nil, ErrInvalidInput
	}
	return s.repo.ListByUser(ctx, userID, status)
}

func (s *Service) FriendsCount(ctx context.Context, userID int64) (int, error) {
	if userID <= 0 {
		return 0, ErrInvalidInput
	}
	return s.repo.CountByUser(ctx, userID, StatusAccepted)
}

// AreFriends lo usa coffeebreaks para validar invitados.
func (s *Service) AreFriends(ctx context.Context, a, b int64) (bool, error) {
	f, err := s.repo.Find(ctx, a, b)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return f.Status == StatusAccepted, nil
}

func (s *Service) lookup(ctx context.Context, id int64) (notifications.UserDetails, error) {
	u, err := s.users.UserDetails(ctx, id)
	if errors.Is(err, notifications.ErrSubjectNotFound) {
		return notifications.UserDetails{}, ErrUserNotFound
	}
	return u, err
}

// publish corre después de una escritura exitosa; ningún error sale de acá.
func (s *Service) publish(ctx context.Context, build func() (notifications.Event, error)) {
	e, err := build()
	if err != nil {
		s.log.Warn("event not built", map[string]any{"error": err})
		return
	}
	notifications.PublishBestEffort(ctx, s.events, s.log, e)
}

// DeleteUserData borra los vínculos de una cuenta que se elimina.
func (s *Service) DeleteUserData(ctx context.Context, userID int64) error {
	return s.repo.DeleteByUser(ctx, userID)
}
