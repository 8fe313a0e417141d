package payment

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedAuthorizer() *Authorizer {
	return &Authorizer{now: func() time.Time {
		return time.Date(2026, time.March, 15, 12, 0, 0, 0, time.UTC)
	}}
}

func card(number string) Instrument {
	return Instrument{CardNumber: number, Expiry: "12/28", CVC: "123", HolderName: "Ada Guest"}
}

func declineReason(t *testing.T, err error) DeclineReason {
	t.Helper()
	var declined *DeclinedError
	require.True(t, errors.As(err, &declined), "expected decline, got %v", err)
	return declined.Reason
}

func TestAuthorize_Accepts(t *testing.T) {
	a := fixedAuthorizer()
	tests := []struct {
		number  string
		network Network
	}{
		{"4111111111111111", Visa},
		{"4111 1111 1111 1111", Visa},
		{"4222222222222", Visa},
		{"5555555555554444", Mastercard},
		{"2223-0031-2200-3222", Mastercard},
		{"378282246310005", Amex},
		{"6011111111111117", Discover},
	}
	for _, tt := range tests {
		attempt, err := a.Authorize(context.Background(), card(tt.number))
		require.NoError(t, err, tt.number)
		assert.Equal(t, Authorized, attempt.Outcome)
		assert.Equal(t, tt.network, attempt.Network)
		assert.Empty(t, attempt.Reason)
	}
}

func TestAuthorize_MasksNumber(t *testing.T) {
	attempt, err := fixedAuthorizer().Authorize(context.Background(), card("4111111111111111"))
	require.NoError(t, err)
	assert.Equal(t, "************1111", attempt.MaskedNumber)
}

func TestAuthorize_SingleDigitChangeFailsLuhn(t *testing.T) {
	a := fixedAuthorizer()
	valid := "4111111111111111"
	for i := 0; i < len(valid); i++ {
		b := []byte(valid)
		b[i] = '0' + (b[i]-'0'+1)%10
		_, err := a.Authorize(context.Background(), card(string(b)))
		assert.Equal(t, InvalidNumber, declineReason(t, err), "position %d", i)
	}
}

func TestAuthorize_DeclineOrder(t *testing.T) {
	a := fixedAuthorizer()
	tests := []struct {
		name   string
		number string
		reason DeclineReason
	}{
		{"bad checksum", "4111111111111112", InvalidNumber},
		{"letters", "4111abcd11111111", InvalidNumber},
		{"too short", "42424242", UnsupportedNetwork},
		{"too long", "42424242424242424242", UnsupportedNetwork},
		{"unknown network", "3530111333300000", UnsupportedNetwork},
		{"visa wrong length", "411111111111116", UnsupportedNetwork},
		{"visa ending 0000", "4111111111090000", InsufficientFunds},
		{"mastercard ending 0000", "5555555555000000", InsufficientFunds},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			attempt, err := a.Authorize(context.Background(), card(tt.number))
			assert.Equal(t, tt.reason, declineReason(t, err))
			assert.Equal(t, Declined, attempt.Outcome)
			assert.Equal(t, tt.reason, attempt.Reason)
		})
	}
}

func TestAuthorize_InvalidFields(t *testing.T) {
	a := fixedAuthorizer()
	base := card("4111111111111111")

	noHolder := base
	noHolder.HolderName = "  "
	badCVC := base
	badCVC.CVC = "12a"
	badExpiry := base
	badExpiry.Expiry = "13/28"
	expired := base
	expired.Expiry = "02/26"
	noNumber := base
	noNumber.CardNumber = ""

	for _, in := range []Instrument{noHolder, badCVC, badExpiry, expired, noNumber} {
		_, err := a.Authorize(context.Background(), in)
		assert.ErrorIs(t, err, ErrInvalidInstrument)
	}

	thisMonth := base
	thisMonth.Expiry = "03/2026"
	_, err := a.Authorize(context.Background(), thisMonth)
	assert.NoError(t, err)
}

func TestAuthorize_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := fixedAuthorizer().Authorize(ctx, card("4111111111111111"))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDetectNetwork(t *testing.T) {
	n, ok := DetectNetwork("6011000990139424")
	assert.True(t, ok)
	assert.Equal(t, Discover, n)

	_, ok = DetectNetwork("601100099013942")
	assert.False(t, ok)
	_, ok = DetectNetwork("2721000000000000")
	assert.False(t, ok)
}
