package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"coffee-with-me/internal/domain/users"
)

type UsersRepo struct {
	db *sql.DB
}

func NewUsersRepo(db *sql.DB) *UsersRepo {
	return &UsersRepo{db: db}
}

const userColumns = `id, name, username, email, password_hash, university_id, created_at, updated_at, last_login_at`

func (r *UsersRepo) Create(ctx context.Context, u users.User) (users.User, error) {
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO users (
			name, username, email, password_hash, university_id,
			created_at, updated_at, last_login_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		RETURNING id
	`,
		u.Name,
		u.Username,
		u.Email,
		u.PasswordHash,
		nullInt64(u.UniversityID),
		u.CreatedAt,
		u.UpdatedAt,
		nullTime(u.LastLoginAt),
	).Scan(&u.ID)
	if isUniqueViolation(err) {
		return users.User{}, users.ErrDuplicate
	}
	if err != nil {
		return users.User{}, err
	}
	return u, nil
}

func (r *UsersRepo) Update(ctx context.Context, u users.User) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE users
		SET
			name = $2,
			username = $3,
			email = $4,
			password_hash = $5,
			university_id = $6,
			updated_at = $7,
			last_login_at = $8
		WHERE id = $1
	`,
		u.ID,
		u.Name,
		u.Username,
		u.Email,
		u.PasswordHash,
		nullInt64(u.UniversityID),
		u.UpdatedAt,
		nullTime(u.LastLoginAt),
	)
	if isUniqueViolation(err) {
		return users.ErrDuplicate
	}
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return users.ErrNotFound
	}
	return nil
}

func (r *UsersRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return users.ErrNotFound
	}
	return nil
}

func (r *UsersRepo) GetByID(ctx context.Context, id int64) (users.User, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

func (r *UsersRepo) GetByEmail(ctx context.Context, email string) (users.User, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE lower(email) = lower($1)`, strings.TrimSpace(email))
	return scanUser(row)
}

func (r *UsersRepo) Search(ctx context.Context, query string, limit int) ([]users.User, error) {
	pattern := "%" + escapeLike(strings.ToLower(strings.TrimSpace(query))) + "%"
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE lower(name) LIKE $1 OR lower(username) LIKE $1 OR lower(email) LIKE $1
		ORDER BY id
		LIMIT $2
	`, pattern, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]users.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (users.User, error) {
	var (
		u         users.User
		uni       sql.NullInt64
		lastLogin sql.NullTime
	)
	err := row.Scan(
		&u.ID,
		&u.Name,
		&u.Username,
		&u.Email,
		&u.PasswordHash,
		&uni,
		&u.CreatedAt,
		&u.UpdatedAt,
		&lastLogin,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return users.User{}, users.ErrNotFound
	}
	if err != nil {
		return users.User{}, err
	}
	u.UniversityID = int64Ptr(uni)
	u.LastLoginAt = timePtr(lastLogin)
	return u, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
