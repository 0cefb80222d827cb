package postgres

import (
	"context"
	"database/sql"
	"errors"

	"coffee-with-me/internal/domain/universities"
)

type UniversitiesRepo struct {
	db *sql.DB
}

func NewUniversitiesRepo(db *sql.DB) *UniversitiesRepo {
	return &UniversitiesRepo{db: db}
}

func (r *UniversitiesRepo) ListWithoutCampuses(ctx context.Context) ([]universities.University, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name FROM universities ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]universities.University, 0)
	for rows.Next() {
		var u universities.University
		if err := rows.Scan(&u.ID, &u.Name); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (r *UniversitiesRepo) GetByID(ctx context.Context, id int64) (universities.University, error) {
	var u universities.University
	err := r.db.QueryRowContext(ctx, `SELECT id, name FROM universities WHERE id = $1`, id).Scan(&u.ID, &u.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return universities.University{}, universities.ErrNotFound
	}
	if err != nil {
		return universities.University{}, err
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, university_id, name
		FROM campuses
		WHERE university_id = $1
		ORDER BY id
	`, id)
	if err != nil {
		return universities.University{}, err
	}
	defer rows.Close()

	u.Campuses = make([]universities.Campus, 0)
	for rows.Next() {
		var c universities.Campus
		if err := rows.Scan(&c.ID, &c.UniversityID, &c.Name); err != nil {
			return universities.University{}, err
		}
		u.Campuses = append(u.Campuses, c)
	}
	return u, rows.Err()
}

func (r *UniversitiesRepo) GetCampus(ctx context.Context, id int64) (universities.Campus, error) {
	var c universities.Campus
	err := r.db.QueryRowContext(ctx, `
		SELECT id, university_id, name FROM campuses WHERE id = $1
	`, id).Scan(&c.ID, &c.UniversityID, &c.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return universities.Campus{}, universities.ErrNotFound
	}
	return c, err
}
