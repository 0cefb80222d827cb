package postgres

import (
	"context"
	"database/sql"
	"errors"

	"coffee-with-me/internal/domain/friendships"
)

type FriendshipsRepo struct {
	db *sql.DB
}

func NewFriendshipsRepo(db *sql.DB) *FriendshipsRepo {
	return &FriendshipsRepo{db: db}
}

const friendshipColumns = `requester_id, addressee_id, status, created_at, updated_at`

func (r *FriendshipsRepo) Create(ctx context.Context, f friendships.Friendship) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO friendships (`+friendshipColumns+`)
		VALUES ($1,$2,$3,$4,$5)
	`,
		f.RequesterID,
		f.AddresseeID,
		string(f.Status),
		f.CreatedAt,
		f.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return friendships.ErrDuplicate
	}
	return err
}

func (r *FriendshipsRepo) Update(ctx context.Context, f friendships.Friendship) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE friendships
		SET status = $3, updated_at = $4
		WHERE requester_id = $1 AND addressee_id = $2
	`, f.RequesterID, f.AddresseeID, string(f.Status), f.UpdatedAt)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return friendships.ErrNotFound
	}
	return nil
}

func (r *FriendshipsRepo) Get(ctx context.Context, requesterID, addresseeID int64) (friendships.Friendship, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+friendshipColumns+`
		FROM friendships
		WHERE requester_id = $1 AND addressee_id = $2
	`, requesterID, addresseeID)
	return scanFriendship(row)
}

func (r *FriendshipsRepo) Find(ctx context.Context, a, b int64) (friendships.Friendship, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+friendshipColumns+`
		FROM friendships
		WHERE (requester_id = $1 AND addressee_id = $2)
		   OR (requester_id = $2 AND addressee_id = $1)
	`, a, b)
	return scanFriendship(row)
}

func (r *FriendshipsRepo) Delete(ctx context.Context, a, b int64) error {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM friendships
		WHERE (requester_id = $1 AND addressee_id = $2)
		   OR (requester_id = $2 AND addressee_id = $1)
	`, a, b)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return friendships.ErrNotFound
	}
	return nil
}

func (r *FriendshipsRepo) DeleteByUser(ctx context.Context, userID int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM friendships WHERE requester_id = $1 OR addressee_id = $1`, userID)
	return err
}

func (r *FriendshipsRepo) ListByUser(ctx context.Context, userID int64, status friendships.Status) ([]friendships.Friendship, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+friendshipColumns+`
		FROM friendships
		WHERE (requester_id = $1 OR addressee_id = $1)
		  AND ($2 = '' OR status = $2)
		ORDER BY updated_at DESC
	`, userID, string(status))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]friendships.Friendship, 0)
	for rows.Next() {
		f, err := scanFriendship(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

func (r *FriendshipsRepo) CountByUser(ctx context.Context, userID int64, status friendships.Status) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM friendships
		WHERE (requester_id = $1 OR addressee_id = $1)
		  AND ($2 = '' OR status = $2)
	`, userID, string(status)).Scan(&n)
	return n, err
}

func scanFriendship(row rowScanner) (friendships.Friendship, error) {
	var (
		f      friendships.Friendship
		status string
	)
	err := row.Scan(&f.RequesterID, &f.AddresseeID, &status, &f.CreatedAt, &f.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return friendships.Friendship{}, friendships.ErrNotFound
	}
	if err != nil {
		return friendships.Friendship{}, err
	}
	f.Status = friendships.Status(status)
	return f, nil
}
