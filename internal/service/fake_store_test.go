package service

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/iliyamo/drive-in-checkout/internal/model"
	"github.com/iliyamo/drive-in-checkout/internal/repository"
)

type storedRequest struct {
	accountID *uint64
	receipt   []byte
}

type fakeState struct {
	shows         map[uint64]model.Show
	products      map[uint64]model.Product
	accounts      map[uint64]model.Account
	reservations  []model.Reservation
	orders        []model.Order
	notifications []model.Notification
	requests      map[string]storedRequest
	nextID        uint64
}

func (st fakeState) clone() fakeState {
	c := st
	c.shows = make(map[uint64]model.Show, len(st.shows))
	for k, v := range st.shows {
		c.shows[k] = v
	}
	c.products = make(map[uint64]model.Product, len(st.products))
	for k, v := range st.products {
		c.products[k] = v
	}
	c.accounts = make(map[uint64]model.Account, len(st.accounts))
	for k, v := range st.accounts {
		c.accounts[k] = v
	}
	c.requests = make(map[string]storedRequest, len(st.requests))
	for k, v := range st.requests {
		c.requests[k] = v
	}
	c.reservations = append([]model.Reservation(nil), st.reservations...)
	c.orders = append([]model.Order(nil), st.orders...)
	c.notifications = append([]model.Notification(nil), st.notifications...)
	return c
}

// fakeStore is an in-memory repository.Store.  Transactions are serialized
// by mu and roll back by restoring a snapshot.
type fakeStore struct {
	mu sync.Mutex
	st fakeState

	// skipPrecheck makes ActiveReservationExists always report false so
	// the insert-time uniqueness check is the one that fires.
	skipPrecheck bool
	// hiddenLookups makes the next n LookupReceipt calls miss.
	hiddenLookups int
	// failNotification makes InsertNotification fail.
	failNotification error
}

func newFakeStore() *fakeStore {
	return &fakeStore{st: fakeState{
		shows:    map[uint64]model.Show{},
		products: map[uint64]model.Product{},
		accounts: map[uint64]model.Account{},
		requests: map[string]storedRequest{},
	}}
}

func (s *fakeStore) InTx(ctx context.Context, fn func(ctx context.Context, tx repository.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	snapshot := s.st.clone()
	if err := fn(ctx, &fakeTx{s: s}); err != nil {
		s.st = snapshot
		return err
	}
	if err := ctx.Err(); err != nil {
		s.st = snapshot
		return err
	}
	return nil
}

func (s *fakeStore) LookupReceipt(_ context.Context, key string) ([]byte, *uint64, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.hiddenLookups > 0 {
		s.hiddenLookups--
		return nil, nil, false, nil
	}
	r, ok := s.st.requests[key]
	return r.receipt, r.accountID, ok, nil
}

func (s *fakeStore) GetShow(_ context.Context, id uint64) (*model.Show, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	show, ok := s.st.shows[id]
	if !ok {
		return nil, repository.ErrShowNotFound
	}
	return &show, nil
}

func (s *fakeStore) SearchShows(_ context.Context, q repository.ShowSearchQuery) ([]model.Show, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []model.Show{}
	for _, show := range s.st.shows {
		if show.Status != "SCHEDULED" {
			continue
		}
		if q.Date != "" && show.ShowDate != q.Date {
			continue
		}
		if q.Title != "" && !strings.Contains(strings.ToLower(show.MovieTitle), strings.ToLower(q.Title)) {
			continue
		}
		out = append(out, show)
	}
	return out, int64(len(out)), nil
}

func (s *fakeStore) OccupiedSlots(_ context.Context, showID uint64) (map[string]bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := map[string]bool{}
	for _, r := range s.st.reservations {
		if r.ShowID == showID && r.Status == model.ReservationActive {
			out[r.SlotID] = true
		}
	}
	return out, nil
}

func (s *fakeStore) ListShowReservations(_ context.Context, showID uint64) ([]model.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []model.Reservation{}
	for _, r := range s.st.reservations {
		if r.ShowID == showID {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SlotID != out[j].SlotID {
			return out[i].SlotID < out[j].SlotID
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *fakeStore) ListProducts(context.Context) ([]model.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []model.Product{}
	for _, p := range s.st.products {
		if p.IsActive {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *fakeStore) GetAccount(_ context.Context, id uint64) (*model.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.st.accounts[id]
	if !ok {
		return nil, repository.ErrAccountNotFound
	}
	return &a, nil
}

func (s *fakeStore) ListNotifications(_ context.Context, accountID uint64, limit int) ([]model.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []model.Notification{}
	for i := len(s.st.notifications) - 1; i >= 0 && len(out) < limit; i-- {
		n := s.st.notifications[i]
		if n.Broadcast || (n.AccountID != nil && *n.AccountID == accountID) {
			out = append(out, n)
		}
	}
	return out, nil
}

func (s *fakeStore) account(id uint64) model.Account {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.accounts[id]
}

func (s *fakeStore) snapshot() fakeState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.clone()
}

func (s *fakeStore) id() uint64 {
	s.st.nextID++
	return s.st.nextID
}

type fakeTx struct {
	s *fakeStore
}

func (t *fakeTx) ClaimRequest(_ context.Context, key string, accountID *uint64) error {
	if _, ok := t.s.st.requests[key]; ok {
		return repository.ErrDuplicateRequest
	}
	t.s.st.requests[key] = storedRequest{accountID: accountID}
	return nil
}

func (t *fakeTx) SaveReceipt(_ context.Context, key string, receipt []byte) error {
	r := t.s.st.requests[key]
	r.receipt = receipt
	t.s.st.requests[key] = r
	return nil
}

func (t *fakeTx) GetShow(_ context.Context, id uint64) (*model.Show, error) {
	show, ok := t.s.st.shows[id]
	if !ok {
		return nil, repository.ErrShowNotFound
	}
	return &show, nil
}

func (t *fakeTx) ActiveReservationExists(_ context.Context, showID uint64, slotID string) (bool, error) {
	if t.s.skipPrecheck {
		return false, nil
	}
	for _, r := range t.s.st.reservations {
		if r.ShowID == showID && r.SlotID == slotID && r.Status == model.ReservationActive {
			return true, nil
		}
	}
	return false, nil
}

func (t *fakeTx) InsertReservation(_ context.Context, res *model.Reservation) error {
	for _, r := range t.s.st.reservations {
		if r.ShowID == res.ShowID && r.SlotID == res.SlotID && r.Status == model.ReservationActive {
			return repository.ErrSlotTaken
		}
	}
	res.ID = t.s.id()
	t.s.st.reservations = append(t.s.st.reservations, *res)
	return nil
}

func (t *fakeTx) TransitionReservation(_ context.Context, id uint64, from, to model.ReservationStatus) (*model.Reservation, error) {
	for i := range t.s.st.reservations {
		r := &t.s.st.reservations[i]
		if r.ID != id {
			continue
		}
		cp := *r
		if r.Status != from {
			return &cp, repository.ErrStatusMismatch
		}
		r.Status = to
		cp.Status = to
		return &cp, nil
	}
	return nil, repository.ErrReservationNotFound
}

func (t *fakeTx) ProductsByID(_ context.Context, ids []uint64) (map[uint64]model.Product, error) {
	out := map[uint64]model.Product{}
	for _, id := range ids {
		if p, ok := t.s.st.products[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

func (t *fakeTx) InsertOrder(_ context.Context, o *model.Order) error {
	o.ID = t.s.id()
	t.s.st.orders = append(t.s.st.orders, *o)
	return nil
}

func (t *fakeTx) LockAccount(_ context.Context, id uint64) (*model.Account, error) {
	a, ok := t.s.st.accounts[id]
	if !ok {
		return nil, repository.ErrAccountNotFound
	}
	return &a, nil
}

func (t *fakeTx) ApplyPointsDelta(_ context.Context, id uint64, delta int64) error {
	a, ok := t.s.st.accounts[id]
	if !ok || a.PointsBalance+delta < 0 {
		return repository.ErrInsufficientPoints
	}
	a.PointsBalance += delta
	t.s.st.accounts[id] = a
	return nil
}

func (t *fakeTx) InsertNotification(_ context.Context, n *model.Notification) error {
	if t.s.failNotification != nil {
		return t.s.failNotification
	}
	n.ID = t.s.id()
	t.s.st.notifications = append(t.s.st.notifications, *n)
	return nil
}
