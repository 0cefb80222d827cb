package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"coffee-with-me/internal/domain/coffeebreaks"
)

type CoffeeBreaksRepo struct {
	db *sql.DB
}

func NewCoffeeBreaksRepo(db *sql.DB) *CoffeeBreaksRepo {
	return &CoffeeBreaksRepo{db: db}
}

// Los addressees viajan como lista "id,id,..." ordenada por position.
const coffeeBreakSelect = `
	SELECT
		cb.id, cb.requester_id, cb.scheduled_to, cb.campus_id, cb.location, cb.created_at,
		COALESCE(string_agg(a.user_id::text, ',' ORDER BY a.position), '')
	FROM coffee_breaks cb
	LEFT JOIN coffee_break_addressees a ON a.coffee_break_id = cb.id
`

func (r *CoffeeBreaksRepo) Create(ctx context.Context, c coffeebreaks.CoffeeBreak) (coffeebreaks.CoffeeBreak, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return coffeebreaks.CoffeeBreak{}, err
	}
	defer func() { _ = tx.Rollback() }()

	err = tx.QueryRowContext(ctx, `
		INSERT INTO coffee_breaks (requester_id, scheduled_to, campus_id, location, created_at)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING id
	`,
		c.RequesterID,
		c.ScheduledTo,
		nullInt64(c.CampusID),
		c.Location,
		c.CreatedAt,
	).Scan(&c.ID)
	if err != nil {
		return coffeebreaks.CoffeeBreak{}, err
	}

	for i, uid := range c.AddresseeIDs {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO coffee_break_addressees (coffee_break_id, user_id, position)
			VALUES ($1,$2,$3)
		`, c.ID, uid, i); err != nil {
			return coffeebreaks.CoffeeBreak{}, fmt.Errorf("insert addressee %d: %w", uid, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return coffeebreaks.CoffeeBreak{}, err
	}
	return c, nil
}

func (r *CoffeeBreaksRepo) GetByID(ctx context.Context, id int64) (coffeebreaks.CoffeeBreak, error) {
	row := r.db.QueryRowContext(ctx, coffeeBreakSelect+`
		WHERE cb.id = $1
		GROUP BY cb.id
	`, id)
	return scanCoffeeBreak(row)
}

func (r *CoffeeBreaksRepo) ListForUser(ctx context.Context, userID int64) ([]coffeebreaks.CoffeeBreak, error) {
	rows, err := r.db.QueryContext(ctx, coffeeBreakSelect+`
		WHERE cb.requester_id = $1
		   OR cb.id IN (SELECT coffee_break_id FROM coffee_break_addressees WHERE user_id = $1)
		GROUP BY cb.id
		ORDER BY cb.scheduled_to, cb.id
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]coffeebreaks.CoffeeBreak, 0)
	for rows.Next() {
		c, err := scanCoffeeBreak(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *CoffeeBreaksRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM coffee_breaks WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return coffeebreaks.ErrNotFound
	}
	return nil
}

func (r *CoffeeBreaksRepo) DeleteByUser(ctx context.Context, userID int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM coffee_breaks WHERE requester_id = $1`, userID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM coffee_break_addressees WHERE user_id = $1`, userID); err != nil {
		return err
	}
	// los que quedaron sin invitados
	if _, err := tx.ExecContext(ctx, `
		DELETE FROM coffee_breaks cb
		WHERE NOT EXISTS (SELECT 1 FROM coffee_break_addressees a WHERE a.coffee_break_id = cb.id)
	`); err != nil {
		return err
	}
	return tx.Commit()
}

func scanCoffeeBreak(row rowScanner) (coffeebreaks.CoffeeBreak, error) {
	var (
		c          coffeebreaks.CoffeeBreak
		campus     sql.NullInt64
		addressees string
	)
	err := row.Scan(&c.ID, &c.RequesterID, &c.ScheduledTo, &campus, &c.Location, &c.CreatedAt, &addressees)
	if errors.Is(err, sql.ErrNoRows) {
		return coffeebreaks.CoffeeBreak{}, coffeebreaks.ErrNotFound
	}
	if err != nil {
		return coffeebreaks.CoffeeBreak{}, err
	}

	c.CampusID = int64Ptr(campus)
	c.AddresseeIDs, err = parseIDList(addressees)
	if err != nil {
		return coffeebreaks.CoffeeBreak{}, err
	}
	return c, nil
}

func parseIDList(s string) ([]int64, error) {
	out := make([]int64, 0)
	if s == "" {
		return out, nil
	}
	for _, part := range strings.Split(s, ",") {
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parse id %q: %w", part, err)
		}
		out = append(out, id)
	}
	return out, nil
}
