// Package repository contains data access logic for the checkout core.  This
// file reads screenings: the checkout treats the shows table as the
// screening collaborator that supplies the base ticket price and the slot
// grid of the lot.
package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/drive-in-checkout/internal/model"
)

// ShowRepo reads shows.
type ShowRepo struct {
	db *sql.DB
}

// NewShowRepo constructs a ShowRepo with the given DB handle.
func NewShowRepo(db *sql.DB) *ShowRepo {
	return &ShowRepo{db: db}
}

const showColumns = `id, movie_title, show_date, show_time, base_price, slot_rows, slot_cols, vip_rows, status`

// GetByID retrieves a show by its ID.  It returns ErrShowNotFound if
// there is no matching row.
func (r *ShowRepo) GetByID(ctx context.Context, id uint64) (*model.Show, error) {
	return getShow(ctx, r.db, id)
}

// GetByIDTx is GetByID inside the caller's transaction, so the base price
// used for a checkout is the one visible to that transaction.
func (r *ShowRepo) GetByIDTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.Show, error) {
	return getShow(ctx, tx, id)
}

func getShow(ctx context.Context, q querier, id uint64) (*model.Show, error) {
	const sel = `SELECT ` + showColumns + ` FROM shows WHERE id = ?`
	var s model.Show
	err := q.QueryRowContext(ctx, sel, id).Scan(
		&s.ID, &s.MovieTitle, &s.ShowDate, &s.ShowTime, &s.BasePrice,
		&s.SlotRows, &s.SlotCols, &s.VIPRows, &s.Status,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrShowNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}
