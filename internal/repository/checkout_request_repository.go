package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// CheckoutRequestRepo stores idempotency keys for checkout.  The key is
// the primary key of checkout_requests, so a concurrent duplicate blocks on
// the row lock of the first transaction and then fails with a duplicate
// key once it commits.
type CheckoutRequestRepo struct {
	db *sql.DB
}

// NewCheckoutRequestRepo returns a CheckoutRequestRepo bound to db.
func NewCheckoutRequestRepo(db *sql.DB) *CheckoutRequestRepo { return &CheckoutRequestRepo{db: db} }

// ClaimTx inserts the key inside the checkout transaction.  It returns
// ErrDuplicateRequest if the key already exists.
func (r *CheckoutRequestRepo) ClaimTx(ctx context.Context, tx *sql.Tx, key string, accountID *uint64) error {
	const q = `INSERT INTO checkout_requests (idempotency_key, account_id, created_at) VALUES (?, ?, ?)`
	_, err := tx.ExecContext(ctx, q, key, nullableID(accountID), time.Now().UTC())
	if isDuplicateKey(err) {
		return ErrDuplicateRequest
	}
	return err
}

// SaveReceiptTx stores the serialized receipt for a claimed key.
func (r *CheckoutRequestRepo) SaveReceiptTx(ctx context.Context, tx *sql.Tx, key string, receipt []byte) error {
	_, err := tx.ExecContext(ctx, `UPDATE checkout_requests SET receipt = ? WHERE idempotency_key = ?`, receipt, key)
	return err
}

// Lookup returns the receipt stored for key.  found is false when no
// committed row exists.
func (r *CheckoutRequestRepo) Lookup(ctx context.Context, key string) ([]byte, *uint64, bool, error) {
	var (
		receipt   []byte
		accountID sql.NullInt64
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT receipt, account_id FROM checkout_requests WHERE idempotency_key = ?`, key).Scan(&receipt, &accountID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil, false, nil
	}
	if err != nil {
		return nil, nil, false, err
	}
	return receipt, idFromNull(accountID), true, nil
}
