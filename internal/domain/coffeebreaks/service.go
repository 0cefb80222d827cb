package coffeebreaks

import (
	"context"
	"fmt"
	"strings"
	"time"

	"coffee-with-me/internal/domain/notifications"
	"coffee-with-me/internal/platform/logger"
)

type Deps struct {
	Repo     Repository
	Friends  FriendChecker
	Campuses CampusDirectory
	Users    notifications.UserDirectory
	Events   notifications.Publisher
	Logger   logger.Logger
}

type Service struct {
	repo     Repository
	friends  FriendChecker
	campuses CampusDirectory
	users    notifications.UserDirectory
	events   notifications.Publisher
	log      logger.Logger
	now      func() time.Time
}

func NewService(d Deps) *Service {
	if d.Events == nil {
		d.Events = notifications.Discard
	}
	if d.Logger == nil {
		d.Logger = logger.Nop()
	}
	return &Service{
		repo:     d.Repo,
		friends:  d.Friends,
		campuses: d.Campuses,
		users:    d.Users,
		events:   d.Events,
		log:      d.Logger.With(map[string]any{"component": "coffeebreaks"}),
		now:      time.Now,
	}
}

type CreateInput struct {
	AddresseeIDs []int64
	ScheduledTo  time.Time
	CampusID     *int64
	Location     string
}

// Create valida que todos los invitados sean amigos aceptados, persiste y avisa a los invitados.
func (s *Service) Create(ctx context.Context, requesterID int64, in CreateInput) (CoffeeBreak, error) {
	if requesterID <= 0 {
		return CoffeeBreak{}, ErrInvalidInput
	}
	if in.ScheduledTo.IsZero() {
		return CoffeeBreak{}, fmt.Errorf("%w: scheduled_to is required", ErrInvalidInput)
	}

	addressees := normalizeAddressees(requesterID, in.AddresseeIDs)
	if len(addressees) == 0 {
		return CoffeeBreak{}, fmt.Errorf("%w: at least one addressee is required", ErrInvalidInput)
	}

	for _, id := range addressees {
		ok, err := s.friends.AreFriends(ctx, requesterID, id)
		if err != nil {
			return CoffeeBreak{}, err
		}
		if !ok {
			return CoffeeBreak{}, fmt.Errorf("%w: %d", ErrNotFriends, id)
		}
	}

	location := strings.TrimSpace(in.Location)
	if in.CampusID != nil {
		name, err := s.campuses.CampusName(ctx, *in.CampusID)
		if err != nil {
			return CoffeeBreak{}, fmt.Errorf("%w: unknown campus %d", ErrInvalidInput, *in.CampusID)
		}
		if location == "" {
			location = name
		}
	}

	actor, err := s.users.UserDetails(ctx, requesterID)
	if err != nil {
		return CoffeeBreak{}, err
	}

	c, err := s.repo.Create(ctx, CoffeeBreak{
		RequesterID:  requesterID,
		AddresseeIDs: addressees,
		ScheduledTo:  in.ScheduledTo.UTC(),
		CampusID:     in.CampusID,
		Location:     location,
		CreatedAt:    s.now(),
	})
	if err != nil {
		return CoffeeBreak{}, err
	}

	e, err := notifications.NewCoffeeBreakCreatedEvent(notifications.CoffeeBreakDetails{
		Location:     c.Location,
		ScheduledTo:  c.ScheduledTo,
		Participants: c.Participants(),
	}, c.ID, actor)
	if err != nil {
		s.log.Warn("event not built", map[string]any{"coffee_break_id": c.ID, "error": err})
		return c, nil
	}
	notifications.PublishBestEffort(ctx, s.events, s.log, e)

	return c, nil
}

// GetByID sólo para participantes.
func (s *Service) GetByID(ctx context.Context, userID, id int64) (CoffeeBreak, error) {
	if id <= 0 {
		return CoffeeBreak{}, ErrNotFound
	}
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return CoffeeBreak{}, err
	}
	if !c.Involves(userID) {
		// no revelamos que existe
		return CoffeeBreak{}, ErrNotFound
	}
	return c, nil
}

func (s *Service) ListForUser(ctx context.Context, userID int64) ([]CoffeeBreak, error) {
	if userID <= 0 {
		return nil, ErrInvalidInput
	}
	return s.repo.ListForUser(ctx, userID)
}

// Cancel borra el coffee break. Sólo el requester.
func (s *Service) Cancel(ctx context.Context, userID, id int64) error {
	c, err := s.GetByID(ctx, userID, id)
	if err != nil {
		return err
	}
	if c.RequesterID != userID {
		return ErrForbidden
	}
	return s.repo.Delete(ctx, id)
}

// normalizeAddressees quita duplicados, ids inválidos y al propio requester. Mantiene el orden.
func normalizeAddressees(requesterID int64, ids []int64) []int64 {
	out := make([]int64, 0, len(ids))
	seen := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		if id <= 0 || id == requesterID {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// DeleteUserData borra lo que creó una cuenta que se elimina y la saca de las invitaciones ajenas.
func (s *Service) DeleteUserData(ctx context.Context, userID int64) error {
	return s.repo.DeleteByUser(ctx, userID)
}
