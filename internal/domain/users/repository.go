package users

import "context"

type Repository interface {
	// Create asigna el ID. Email/username repetidos => ErrDuplicate.
	Create(ctx context.Context, u User) (User, error)
	Update(ctx context.Context, u User) error
	Delete(ctx context.Context, id int64) error

	GetByID(ctx context.Context, id int64) (User, error)
	GetByEmail(ctx context.Context, email string) (User, error)

	// Search busca por nombre, username o email (case-insensitive).
	Search(ctx context.Context, query string, limit int) ([]User, error)
}

// UniversityChecker lo implementa el módulo universities.
type UniversityChecker interface {
	Exists(ctx context.Context, id int64) (bool, error)
}

// AccountCleaner lo implementan friendships, coffeebreaks y notifications.
type AccountCleaner interface {
	DeleteUserData(ctx context.Context, userID int64) error
}
