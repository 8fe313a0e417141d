package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/drive-in-checkout/internal/model"
	"github.com/iliyamo/drive-in-checkout/internal/repository"
)

func TestCatalogService_Quote(t *testing.T) {
	f := newFixture(t)
	svc := NewCatalogService(f.store)
	ctx := context.Background()

	q, err := svc.Quote(ctx, 1, "C-3", 4)
	require.NoError(t, err)
	assert.Equal(t, int64(700), q.Amount)
	assert.Equal(t, model.TierStandard, q.Tier)

	q, err = svc.Quote(ctx, 1, "a-3", 2)
	require.NoError(t, err)
	assert.Equal(t, int64(500), q.Amount)
	assert.Equal(t, "A-3", q.SlotID)

	_, err = svc.Quote(ctx, 1, "C-3", 5)
	var ve *ValidationError
	assert.ErrorAs(t, err, &ve)

	_, err = svc.Quote(ctx, 1, "Q-1", 1)
	assert.ErrorAs(t, err, &ve)

	_, err = svc.Quote(ctx, 77, "A-3", 1)
	var nf *ItemNotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "show", nf.Kind)
}

func TestCatalogService_SlotMap(t *testing.T) {
	f := newFixture(t)
	svc := NewCatalogService(f.store)
	ctx := context.Background()

	_, err := f.svc.Checkout(ctx, CheckoutRequest{Items: []CartItem{seat("B-3", 1)}, Payment: card(goodCard)})
	require.NoError(t, err)

	m, err := svc.SlotMap(ctx, 1)
	require.NoError(t, err)
	require.Len(t, m.Slots, 5*6)

	byID := map[string]SlotView{}
	for _, s := range m.Slots {
		byID[s.SlotID] = s
	}
	assert.Equal(t, SlotView{SlotID: "A-1", Tier: model.TierEconomy, UnitPrice: 200}, byID["A-1"])
	assert.Equal(t, SlotView{SlotID: "B-3", Tier: model.TierVIP, UnitPrice: 250, Occupied: true}, byID["B-3"])
	assert.Equal(t, SlotView{SlotID: "C-3", Tier: model.TierStandard, UnitPrice: 200}, byID["C-3"])
	assert.Equal(t, SlotView{SlotID: "E-3", Tier: model.TierEconomy, UnitPrice: 200}, byID["E-3"])
}

func TestCatalogService_ProductsHidesInactive(t *testing.T) {
	f := newFixture(t)
	products, err := NewCatalogService(f.store).Products(context.Background())
	require.NoError(t, err)
	assert.Len(t, products, 2)
	for _, p := range products {
		assert.NotEqual(t, uint64(12), p.ID)
	}
}

type accountReaderStub struct {
	account *model.Account
	err     error
	notes   []model.Notification
	limit   int
}

func (s *accountReaderStub) GetAccount(context.Context, uint64) (*model.Account, error) {
	return s.account, s.err
}

func (s *accountReaderStub) ListNotifications(_ context.Context, _ uint64, limit int) ([]model.Notification, error) {
	s.limit = limit
	return s.notes, nil
}

func TestAccountService(t *testing.T) {
	ctx := context.Background()

	stub := &accountReaderStub{account: &model.Account{ID: 7, PointsBalance: 1200}}
	a, err := NewAccountService(stub).Account(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, int64(1200), a.PointsBalance)

	_, err = NewAccountService(&accountReaderStub{err: repository.ErrAccountNotFound}).Account(ctx, 8)
	assert.ErrorIs(t, err, ErrNotFound)

	stub.notes = []model.Notification{{ID: 1, Title: "Checkout confirmed"}}
	notes, err := NewAccountService(stub).Notifications(ctx, 7, 20)
	require.NoError(t, err)
	assert.Len(t, notes, 1)
	assert.Equal(t, 20, stub.limit)
}

func TestCatalogService_Shows(t *testing.T) {
	f := newFixture(t)
	svc := NewCatalogService(f.store)
	ctx := context.Background()

	page, err := svc.Shows(ctx, repository.ShowSearchQuery{})
	require.NoError(t, err)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 20, page.PageSize)
	require.Len(t, page.Shows, 1)
	assert.Equal(t, uint64(1), page.Shows[0].ID)

	page, err = svc.Shows(ctx, repository.ShowSearchQuery{Title: "comet", Date: "2026-03-20"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.Total)

	page, err = svc.Shows(ctx, repository.ShowSearchQuery{Title: "them"})
	require.NoError(t, err)
	assert.Empty(t, page.Shows)

	_, err = svc.Shows(ctx, repository.ShowSearchQuery{Date: "20/03/2026"})
	var ve *ValidationError
	assert.ErrorAs(t, err, &ve)
}
