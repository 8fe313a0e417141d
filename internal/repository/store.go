package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/iliyamo/drive-in-checkout/internal/model"
)

// Tx is the set of operations available inside one checkout transaction.
// Every read goes to the database through the open transaction; nothing
// is cached across calls.
type Tx interface {
	ClaimRequest(ctx context.Context, key string, accountID *uint64) error
	SaveReceipt(ctx context.Context, key string, receipt []byte) error

	GetShow(ctx context.Context, id uint64) (*model.Show, error)
	ActiveReservationExists(ctx context.Context, showID uint64, slotID string) (bool, error)
	InsertReservation(ctx context.Context, r *model.Reservation) error
	TransitionReservation(ctx context.Context, id uint64, from, to model.ReservationStatus) (*model.Reservation, error)

	ProductsByID(ctx context.Context, ids []uint64) (map[uint64]model.Product, error)
	InsertOrder(ctx context.Context, o *model.Order) error

	LockAccount(ctx context.Context, id uint64) (*model.Account, error)
	ApplyPointsDelta(ctx context.Context, id uint64, delta int64) error

	InsertNotification(ctx context.Context, n *model.Notification) error
}

// Store runs units of work.  InTx commits when fn returns nil and rolls
// back on any error, panic or context cancellation.
type Store interface {
	InTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
	// LookupReceipt returns the stored receipt for an idempotency key.
	// found is false when the key was never committed.
	LookupReceipt(ctx context.Context, key string) (receipt []byte, accountID *uint64, found bool, err error)
}

// querier is satisfied by both *sql.DB and *sql.Tx so that read helpers
// can be shared between transactional and plain access.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// MySQLStore wires the repositories to one *sql.DB and implements Store.
type MySQLStore struct {
	db            *sql.DB
	Shows         *ShowRepo
	Reservations  *ReservationRepo
	Products      *ProductRepo
	Orders        *OrderRepo
	Accounts      *AccountRepo
	Notifications *NotificationRepo
	Requests      *CheckoutRequestRepo
}

// NewMySQLStore constructs the repositories around db.
func NewMySQLStore(db *sql.DB) *MySQLStore {
	return &MySQLStore{
		db:            db,
		Shows:         NewShowRepo(db),
		Reservations:  NewReservationRepo(db),
		Products:      NewProductRepo(db),
		Orders:        NewOrderRepo(db),
		Accounts:      NewAccountRepo(db),
		Notifications: NewNotificationRepo(db),
		Requests:      NewCheckoutRequestRepo(db),
	}
}

// InTx begins a transaction, hands fn a Tx bound to it and commits when fn
// succeeds.  Nothing fn wrote is visible to other transactions unless the
// commit succeeds.
func (s *MySQLStore) InTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	committed := false
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if err := fn(ctx, &mysqlTx{tx: tx, s: s}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	committed = true
	return nil
}

// LookupReceipt implements Store.
func (s *MySQLStore) LookupReceipt(ctx context.Context, key string) ([]byte, *uint64, bool, error) {
	return s.Requests.Lookup(ctx, key)
}

// GetShow reads a show outside of any transaction.
func (s *MySQLStore) GetShow(ctx context.Context, id uint64) (*model.Show, error) {
	return s.Shows.GetByID(ctx, id)
}

// SearchShows lists scheduled shows matching q.
func (s *MySQLStore) SearchShows(ctx context.Context, q ShowSearchQuery) ([]model.Show, int64, error) {
	return s.Shows.SearchScheduled(ctx, q)
}

// OccupiedSlots lists the slots of a show held by active reservations.
func (s *MySQLStore) OccupiedSlots(ctx context.Context, showID uint64) (map[string]bool, error) {
	return s.Reservations.OccupiedSlots(ctx, showID)
}

// ListProducts lists the active catalog.
func (s *MySQLStore) ListProducts(ctx context.Context) ([]model.Product, error) {
	return s.Products.ListActive(ctx)
}

// GetAccount reads an account without locking it.
func (s *MySQLStore) GetAccount(ctx context.Context, id uint64) (*model.Account, error) {
	return s.Accounts.GetByID(ctx, id)
}

// ListNotifications returns the newest notifications visible to an account.
func (s *MySQLStore) ListNotifications(ctx context.Context, accountID uint64, limit int) ([]model.Notification, error) {
	return s.Notifications.ListForAccount(ctx, accountID, limit)
}

// ListShowReservations lists every reservation of a show.
func (s *MySQLStore) ListShowReservations(ctx context.Context, showID uint64) ([]model.Reservation, error) {
	return s.Reservations.ListByShow(ctx, showID)
}

// mysqlTx adapts the repositories' Tx methods to the Tx interface.
type mysqlTx struct {
	tx *sql.Tx
	s  *MySQLStore
}

func (t *mysqlTx) ClaimRequest(ctx context.Context, key string, accountID *uint64) error {
	return t.s.Requests.ClaimTx(ctx, t.tx, key, accountID)
}

func (t *mysqlTx) SaveReceipt(ctx context.Context, key string, receipt []byte) error {
	return t.s.Requests.SaveReceiptTx(ctx, t.tx, key, receipt)
}

func (t *mysqlTx) GetShow(ctx context.Context, id uint64) (*model.Show, error) {
	return t.s.Shows.GetByIDTx(ctx, t.tx, id)
}

func (t *mysqlTx) ActiveReservationExists(ctx context.Context, showID uint64, slotID string) (bool, error) {
	return t.s.Reservations.ActiveExistsTx(ctx, t.tx, showID, slotID)
}

func (t *mysqlTx) InsertReservation(ctx context.Context, r *model.Reservation) error {
	return t.s.Reservations.CreateTx(ctx, t.tx, r)
}

func (t *mysqlTx) TransitionReservation(ctx context.Context, id uint64, from, to model.ReservationStatus) (*model.Reservation, error) {
	return t.s.Reservations.TransitionTx(ctx, t.tx, id, from, to)
}

func (t *mysqlTx) ProductsByID(ctx context.Context, ids []uint64) (map[uint64]model.Product, error) {
	return t.s.Products.ByIDsTx(ctx, t.tx, ids)
}

func (t *mysqlTx) InsertOrder(ctx context.Context, o *model.Order) error {
	return t.s.Orders.CreateTx(ctx, t.tx, o)
}

func (t *mysqlTx) LockAccount(ctx context.Context, id uint64) (*model.Account, error) {
	return t.s.Accounts.LockTx(ctx, t.tx, id)
}

func (t *mysqlTx) ApplyPointsDelta(ctx context.Context, id uint64, delta int64) error {
	return t.s.Accounts.ApplyDeltaTx(ctx, t.tx, id, delta)
}

func (t *mysqlTx) InsertNotification(ctx context.Context, n *model.Notification) error {
	return t.s.Notifications.CreateTx(ctx, t.tx, n)
}
