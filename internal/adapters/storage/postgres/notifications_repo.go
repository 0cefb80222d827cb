package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"coffee-with-me/internal/domain/notifications"
)

type NotificationsRepo struct {
	db *sql.DB
}

func NewNotificationsRepo(db *sql.DB) *NotificationsRepo {
	return &NotificationsRepo{db: db}
}

const notificationColumns = `id, recipient_id, event_id, kind, subject_id, actor_id, actor_name, message, coffee_break, seen, created_at`

func (r *NotificationsRepo) Create(ctx context.Context, n notifications.Notification) error {
	var details sql.NullString
	if n.CoffeeBreak != nil {
		b, err := json.Marshal(n.CoffeeBreak)
		if err != nil {
			return fmt.Errorf("encode coffee break details: %w", err)
		}
		details = sql.NullString{String: string(b), Valid: true}
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO notifications (`+notificationColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
	`,
		n.ID,
		n.RecipientID,
		n.EventID,
		string(n.Kind),
		n.SubjectID,
		n.Actor.ID,
		n.Actor.DisplayName,
		n.Message,
		details,
		n.Seen,
		n.CreatedAt,
	)
	return err
}

func (r *NotificationsRepo) GetByID(ctx context.Context, id string) (notifications.Notification, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+notificationColumns+` FROM notifications WHERE id = $1`, id)
	return scanNotification(row)
}

func (r *NotificationsRepo) ListByRecipient(ctx context.Context, recipientID int64, limit int) ([]notifications.Notification, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+notificationColumns+`
		FROM notifications
		WHERE recipient_id = $1
		ORDER BY id DESC
		LIMIT $2
	`, recipientID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]notifications.Notification, 0)
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func (r *NotificationsRepo) MarkSeen(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE notifications SET seen = TRUE WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return notifications.ErrNotFound
	}
	return nil
}

func (r *NotificationsRepo) DeleteByRecipient(ctx context.Context, recipientID int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM notifications WHERE recipient_id = $1`, recipientID)
	return err
}

func scanNotification(row rowScanner) (notifications.Notification, error) {
	var (
		n       notifications.Notification
		kind    string
		details sql.NullString
	)
	err := row.Scan(
		&n.ID,
		&n.RecipientID,
		&n.EventID,
		&kind,
		&n.SubjectID,
		&n.Actor.ID,
		&n.Actor.DisplayName,
		&n.Message,
		&details,
		&n.Seen,
		&n.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return notifications.Notification{}, notifications.ErrNotFound
	}
	if err != nil {
		return notifications.Notification{}, err
	}

	n.Kind = notifications.Kind(kind)
	if details.Valid {
		var d notifications.CoffeeBreakDetails
		if err := json.Unmarshal([]byte(details.String), &d); err != nil {
			return notifications.Notification{}, fmt.Errorf("decode coffee break details: %w", err)
		}
		n.CoffeeBreak = &d
	}
	return n, nil
}
