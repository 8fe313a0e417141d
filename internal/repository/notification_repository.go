package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/drive-in-checkout/internal/model"
)

// NotificationRepo writes notification rows.  Rows are never updated; an
// external delivery collaborator reads them.
type NotificationRepo struct {
	db *sql.DB
}

// NewNotificationRepo returns a NotificationRepo bound to db.
func NewNotificationRepo(db *sql.DB) *NotificationRepo { return &NotificationRepo{db: db} }

// CreateTx inserts n in the caller's transaction and sets its ID.  A
// broadcast must not name an account.
func (r *NotificationRepo) CreateTx(ctx context.Context, tx *sql.Tx, n *model.Notification) error {
	if n.Broadcast && n.AccountID != nil {
		return errors.New("broadcast notification with an account")
	}
	const q = `INSERT INTO notifications (account_id, broadcast, title, message, type, created_at) VALUES (?, ?, ?, ?, ?, ?)`
	result, err := tx.ExecContext(ctx, q, nullableID(n.AccountID), n.Broadcast, n.Title, n.Message, n.Type, n.CreatedAt)
	if err != nil {
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	n.ID = uint64(id)
	return nil
}

// ListForAccount returns the newest notifications addressed to accountID
// together with broadcasts.  Guest checkout rows are never included.
func (r *NotificationRepo) ListForAccount(ctx context.Context, accountID uint64, limit int) ([]model.Notification, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, account_id, broadcast, title, message, type, created_at
         FROM notifications
         WHERE account_id = ? OR broadcast = 1
         ORDER BY created_at DESC, id DESC
         LIMIT ?`, accountID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Notification{}
	for rows.Next() {
		var (
			n         model.Notification
			accountID sql.NullInt64
		)
		if err := rows.Scan(&n.ID, &accountID, &n.Broadcast, &n.Title, &n.Message, &n.Type, &n.CreatedAt); err != nil {
			return nil, err
		}
		n.AccountID = idFromNull(accountID)
		out = append(out, n)
	}
	return out, rows.Err()
}
