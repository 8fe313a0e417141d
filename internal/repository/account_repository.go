package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/drive-in-checkout/internal/model"
)

// AccountRepo owns the loyalty ledger: one points balance per account.
// Balances are only written inside a checkout transaction, after the row
// has been locked with LockTx.
type AccountRepo struct {
	db *sql.DB
}

// NewAccountRepo returns an AccountRepo bound to db.
func NewAccountRepo(db *sql.DB) *AccountRepo { return &AccountRepo{db: db} }

const accountColumns = `id, email, points_balance, created_at`

// GetByID reads an account without locking it.
func (r *AccountRepo) GetByID(ctx context.Context, id uint64) (*model.Account, error) {
	return scanAccount(r.db.QueryRowContext(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id = ?`, id))
}

// LockTx reads the account with SELECT ... FOR UPDATE.  Concurrent
// checkouts of the same account queue on this lock, which serializes
// ledger updates per account.
func (r *AccountRepo) LockTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.Account, error) {
	return scanAccount(tx.QueryRowContext(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id = ? FOR UPDATE`, id))
}

// ApplyDeltaTx adds delta (which may be negative) to the balance.  The
// UPDATE only matches while the result stays non-negative; when it does not
// match the balance is left unchanged and ErrInsufficientPoints is
// returned.
func (r *AccountRepo) ApplyDeltaTx(ctx context.Context, tx *sql.Tx, id uint64, delta int64) error {
	const q = `UPDATE accounts SET points_balance = points_balance + ? WHERE id = ? AND points_balance + ? >= 0`
	result, err := tx.ExecContext(ctx, q, delta, id, delta)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrInsufficientPoints
	}
	return nil
}

func scanAccount(row *sql.Row) (*model.Account, error) {
	var a model.Account
	err := row.Scan(&a.ID, &a.Email, &a.PointsBalance, &a.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAccountNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}
