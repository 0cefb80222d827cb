package coffeebreaks

import "context"

type Repository interface {
	// Create asigna el ID.
	Create(ctx context.Context, c CoffeeBreak) (CoffeeBreak, error)
	GetByID(ctx context.Context, id int64) (CoffeeBreak, error)
	// ListForUser: donde el usuario es requester o addressee, por fecha agendada asc.
	ListForUser(ctx context.Context, userID int64) ([]CoffeeBreak, error)
	Delete(ctx context.Context, id int64) error
	// DeleteByUser borra los que creó el usuario y lo saca de los ajenos; un coffee break
	// que queda sin invitados también se borra.
	DeleteByUser(ctx context.Context, userID int64) error
}

// FriendChecker lo implementa friendships.
type FriendChecker interface {
	AreFriends(ctx context.Context, a, b int64) (bool, error)
}

// CampusDirectory lo implementa universities.
type CampusDirectory interface {
	CampusName(ctx context.Context, campusID int64) (string, error)
}
