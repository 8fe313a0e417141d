package service

import (
	"context"
	"testing"

	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/drive-in-checkout/internal/model"
)

func TestReservationService_Transitions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	logger, _ := logtest.NewNullLogger()
	svc := NewReservationService(f.store, logger)

	r, err := f.svc.Checkout(ctx, CheckoutRequest{
		AccountID: account(7),
		Items:     []CartItem{seat("C-3", 1), seat("C-4", 1)},
		Payment:   card(goodCard),
	})
	require.NoError(t, err)
	used, cancelled := r.ReservationIDs[0], r.ReservationIDs[1]

	res, err := svc.CheckIn(ctx, used)
	require.NoError(t, err)
	assert.Equal(t, model.ReservationUsed, res.Status)

	res, err = svc.Cancel(ctx, cancelled)
	require.NoError(t, err)
	assert.Equal(t, model.ReservationCancelled, res.Status)

	// both states are terminal
	_, err = svc.Cancel(ctx, used)
	assert.ErrorIs(t, err, ErrInvalidState)
	_, err = svc.CheckIn(ctx, cancelled)
	assert.ErrorIs(t, err, ErrInvalidState)

	_, err = svc.CheckIn(ctx, 9999)
	assert.ErrorIs(t, err, ErrNotFound)

	st := f.store.snapshot()
	var kinds []string
	for _, n := range st.notifications {
		kinds = append(kinds, n.Type)
		require.NotNil(t, n.AccountID)
		assert.Equal(t, uint64(7), *n.AccountID)
	}
	assert.Equal(t, []string{"checkout", "check_in", "cancellation"}, kinds)
}

func TestReservationService_CheckInLeavesActiveState(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	r, err := f.svc.Checkout(ctx, CheckoutRequest{Items: []CartItem{seat("C-3", 1)}, Payment: card(goodCard)})
	require.NoError(t, err)
	_, err = NewReservationService(f.store, nil).CheckIn(ctx, r.ReservationIDs[0])
	require.NoError(t, err)

	// a used reservation no longer counts as active
	occupied, err := f.store.OccupiedSlots(ctx, 1)
	require.NoError(t, err)
	assert.False(t, occupied["C-3"])
}

func TestReservationService_Roster(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := NewReservationService(f.store, nil)

	r, err := f.svc.Checkout(ctx, CheckoutRequest{Items: []CartItem{seat("C-4", 2), seat("C-3", 1)}, Payment: card(goodCard)})
	require.NoError(t, err)
	// Reservations are written in slot order, so C-4 is the second ID.
	_, err = svc.Cancel(ctx, r.ReservationIDs[1])
	require.NoError(t, err)

	roster, err := svc.Roster(ctx, 1)
	require.NoError(t, err)
	require.Len(t, roster, 2)
	assert.Equal(t, "C-3", roster[0].SlotID)
	assert.Equal(t, model.ReservationActive, roster[0].Status)
	assert.Equal(t, "C-4", roster[1].SlotID)
	assert.Equal(t, model.ReservationCancelled, roster[1].Status)

	_, err = svc.Roster(ctx, 77)
	assert.ErrorIs(t, err, ErrNotFound)
}
