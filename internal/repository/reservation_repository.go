package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/iliyamo/drive-in-checkout/internal/model"
)

// ReservationRepo provides access to reservations.  The reservations table
// carries a stored generated column that is only non-NULL for active rows
// and a unique key over it, so the database itself refuses a second active
// reservation for the same (show, slot).  All timestamps are UTC.
type ReservationRepo struct {
	db *sql.DB
}

// NewReservationRepo returns a new ReservationRepo bound to the given database.
func NewReservationRepo(db *sql.DB) *ReservationRepo { return &ReservationRepo{db: db} }

const reservationColumns = `id, checkout_id, account_id, show_id, slot_id, vehicle_class, tier, attendee_count, price, status, created_at`

// ActiveExistsTx is the fast pre-check run before inserting.  It only
// produces an early, friendly rejection; two transactions can both pass it
// and the unique key decides between them.
func (r *ReservationRepo) ActiveExistsTx(ctx context.Context, tx *sql.Tx, showID uint64, slotID string) (bool, error) {
	const q = `SELECT COUNT(*) FROM reservations WHERE show_id = ? AND slot_id = ? AND status = 'active'`
	var n int
	if err := tx.QueryRowContext(ctx, q, showID, slotID).Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}

// CreateTx inserts an active reservation within the caller's transaction and
// populates the generated ID.  A duplicate key on the active-slot unique
// index is reported as ErrSlotTaken.  So is a deadlock: two checkouts
// waiting on each other's slot locks both want a slot the other holds.
func (r *ReservationRepo) CreateTx(ctx context.Context, tx *sql.Tx, res *model.Reservation) error {
	const q = `INSERT INTO reservations (checkout_id, account_id, show_id, slot_id, vehicle_class, tier, attendee_count, price, status, created_at)
               VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	result, err := tx.ExecContext(ctx, q,
		res.CheckoutID, nullableID(res.AccountID), res.ShowID, res.SlotID, res.VehicleClass,
		string(res.Tier), res.AttendeeCount, res.Price, string(res.Status), res.CreatedAt,
	)
	if err != nil {
		if isDuplicateKey(err) || isDeadlock(err) {
			return fmt.Errorf("show %d slot %s: %w", res.ShowID, res.SlotID, ErrSlotTaken)
		}
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	res.ID = uint64(id)
	return nil
}

// TransitionTx moves a reservation from one status to another.  The
// UPDATE is conditional on the prior status, so concurrent operators
// cannot both succeed.  It returns ErrReservationNotFound for unknown IDs
// and ErrStatusMismatch when the row is in a different status.
func (r *ReservationRepo) TransitionTx(ctx context.Context, tx *sql.Tx, id uint64, from, to model.ReservationStatus) (*model.Reservation, error) {
	const upd = `UPDATE reservations SET status = ? WHERE id = ? AND status = ?`
	result, err := tx.ExecContext(ctx, upd, string(to), id, string(from))
	if err != nil {
		return nil, err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return nil, err
	}
	res, err := getReservation(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return res, ErrStatusMismatch
	}
	return res, nil
}

// GetByID loads a single reservation.
func (r *ReservationRepo) GetByID(ctx context.Context, id uint64) (*model.Reservation, error) {
	return getReservation(ctx, r.db, id)
}

// OccupiedSlots returns the set of slot IDs held by active reservations of
// a show.  Used for the availability view only; checkout never relies on
// it.
func (r *ReservationRepo) OccupiedSlots(ctx context.Context, showID uint64) (map[string]bool, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT slot_id FROM reservations WHERE show_id = ? AND status = 'active'`, showID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make(map[string]bool)
	for rows.Next() {
		var slot string
		if err := rows.Scan(&slot); err != nil {
			return nil, err
		}
		out[slot] = true
	}
	return out, rows.Err()
}

// ListByShow returns all reservations of a show ordered by slot.
func (r *ReservationRepo) ListByShow(ctx context.Context, showID uint64) ([]model.Reservation, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+reservationColumns+` FROM reservations WHERE show_id = ? ORDER BY slot_id, id`, showID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Reservation{}
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *res)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func getReservation(ctx context.Context, q querier, id uint64) (*model.Reservation, error) {
	row := q.QueryRowContext(ctx, `SELECT `+reservationColumns+` FROM reservations WHERE id = ?`, id)
	res, err := scanReservation(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrReservationNotFound
	}
	return res, err
}

func scanReservation(s rowScanner) (*model.Reservation, error) {
	var (
		res       model.Reservation
		accountID sql.NullInt64
		tier      string
		status    string
	)
	if err := s.Scan(
		&res.ID, &res.CheckoutID, &accountID, &res.ShowID, &res.SlotID, &res.VehicleClass,
		&tier, &res.AttendeeCount, &res.Price, &status, &res.CreatedAt,
	); err != nil {
		return nil, err
	}
	res.AccountID = idFromNull(accountID)
	res.Tier = model.Tier(tier)
	res.Status = model.ReservationStatus(status)
	return &res, nil
}

// nullableID converts an optional account ID into a driver value.
func nullableID(id *uint64) any {
	if id == nil {
		return nil
	}
	return *id
}

func idFromNull(v sql.NullInt64) *uint64 {
	if !v.Valid {
		return nil
	}
	id := uint64(v.Int64)
	return &id
}
