package friendships

import "context"

type Repository interface {
	// Create => ErrDuplicate si ya hay vínculo en cualquier dirección.
	Create(ctx context.Context, f Friendship) error
	Update(ctx context.Context, f Friendship) error

	// Get busca la dirección exacta requester -> addressee.
	Get(ctx context.Context, requesterID, addresseeID int64) (Friendship, error)
	// Find busca entre a y b sin importar la dirección.
	Find(ctx context.Context, a, b int64) (Friendship, error)
	// Delete borra entre a y b sin importar la dirección.
	Delete(ctx context.Context, a, b int64) error

	// status vacío = todos.
	ListByUser(ctx context.Context, userID int64, status Status) ([]Friendship, error)
	CountByUser(ctx context.Context, userID int64, status Status) (int, error)
	// DeleteByUser borra todos los vínculos del usuario, en cualquier dirección y estado.
	DeleteByUser(ctx context.Context, userID int64) error
}
