package repository

import (
	"context"
	"database/sql"

	"github.com/openbid/auction-marketplace/internal/model"
)

// NotificationRepo provides data access to the notifications table.
// Rows are written by the queue consumer and read through the
// notification endpoints.
type NotificationRepo struct{ DB *sql.DB }

func NewNotificationRepo(db *sql.DB) *NotificationRepo { return &NotificationRepo{DB: db} }

// Create inserts a delivered notification.
func (r *NotificationRepo) Create(ctx context.Context, n model.Notification) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		`INSERT INTO notifications (account_id, title, message, severity) VALUES (?,?,?,?)`,
		n.AccountID, n.Title, n.Message, n.Severity)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// ListByAccount returns the newest notifications for an account, plus the
// unread count.
func (r *NotificationRepo) ListByAccount(ctx context.Context, accountID uint64, limit int) ([]model.Notification, int64, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT id, account_id, title, message, severity, is_read, created_at
		 FROM notifications WHERE account_id = ? ORDER BY created_at DESC LIMIT ?`,
		accountID, limit)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var out []model.Notification
	for rows.Next() {
		var n model.Notification
		if err := rows.Scan(&n.ID, &n.AccountID, &n.Title, &n.Message, &n.Severity, &n.IsRead, &n.CreatedAt); err != nil {
			return nil, 0, err
		}
		out = append(out, n)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	var unread int64
	err = r.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM notifications WHERE account_id = ? AND is_read = 0`, accountID).Scan(&unread)
	return out, unread, err
}

// MarkRead flags one notification read. The account id guards against
// reading someone else's notification.
func (r *NotificationRepo) MarkRead(ctx context.Context, id, accountID uint64) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE notifications SET is_read = 1 WHERE id = ? AND account_id = ?`, id, accountID)
	if err != nil {
		return err
	}
	return oneRow(res)
}

// MarkAllRead flags every unread notification of an account read.
func (r *NotificationRepo) MarkAllRead(ctx context.Context, accountID uint64) error {
	_, err := r.DB.ExecContext(ctx,
		`UPDATE notifications SET is_read = 1 WHERE account_id = ? AND is_read = 0`, accountID)
	return err
}

// Delete removes one notification owned by the account.
func (r *NotificationRepo) Delete(ctx context.Context, id, accountID uint64) error {
	res, err := r.DB.ExecContext(ctx,
		`DELETE FROM notifications WHERE id = ? AND account_id = ?`, id, accountID)
	if err != nil {
		return err
	}
	return oneRow(res)
}
