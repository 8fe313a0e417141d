// Package payment is a stand-in for an external card gateway.  It checks a
// card structurally and simulates an accept or decline without any network
// I/O.  Card data is never persisted; only the masked digits leave this
// package.
package payment

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DeclineReason explains why an otherwise well formed card was refused.
type DeclineReason string

const (
	InvalidNumber      DeclineReason = "InvalidNumber"
	UnsupportedNetwork DeclineReason = "UnsupportedNetwork"
	InsufficientFunds  DeclineReason = "InsufficientFunds"
)

// Outcome of an authorization attempt.
type Outcome string

const (
	Authorized Outcome = "authorized"
	Declined   Outcome = "declined"
)

// declineSuffix makes a card decline deterministically so tests and demos
// can exercise the failure path with otherwise valid numbers.
const declineSuffix = "0000"

// ErrInvalidInstrument marks malformed payment fields.  These are caller
// errors and are reported before any authorization is attempted.
var ErrInvalidInstrument = errors.New("invalid payment instrument")

// DeclinedError is returned by Authorize when the card is refused.
type DeclinedError struct {
	Reason DeclineReason
}

func (e *DeclinedError) Error() string { return "payment declined: " + string(e.Reason) }

// Instrument is the card a guest submits at checkout.
type Instrument struct {
	CardNumber string `json:"card_number"`
	Expiry     string `json:"expiry"` // MM/YY or MM/YYYY
	CVC        string `json:"cvc"`
	HolderName string `json:"holder_name"`
}

// Attempt is the ephemeral record of one authorization.
type Attempt struct {
	MaskedNumber string        `json:"masked_number"`
	Network      Network       `json:"network,omitempty"`
	Outcome      Outcome       `json:"outcome"`
	Reason       DeclineReason `json:"reason,omitempty"`
}

// Authorizer validates and authorizes card instruments.
type Authorizer struct {
	now func() time.Time
}

// NewAuthorizer returns an Authorizer that checks expiry against the wall
// clock.
func NewAuthorizer() *Authorizer {
	return &Authorizer{now: time.Now}
}

// Validate checks the fields a gateway would reject outright: holder name,
// expiry and CVC.  The card number itself is judged by Authorize.
func (a *Authorizer) Validate(in Instrument) error {
	if strings.TrimSpace(in.HolderName) == "" {
		return fmt.Errorf("%w: holder_name is required", ErrInvalidInstrument)
	}
	if strings.TrimSpace(in.CardNumber) == "" {
		return fmt.Errorf("%w: card_number is required", ErrInvalidInstrument)
	}
	cvc := strings.TrimSpace(in.CVC)
	if (len(cvc) != 3 && len(cvc) != 4) || !allDigits(cvc) {
		return fmt.Errorf("%w: cvc must be 3 or 4 digits", ErrInvalidInstrument)
	}
	month, year, err := parseExpiry(in.Expiry)
	if err != nil {
		return err
	}
	// cards are valid through the last day of the expiry month
	now := a.now().UTC()
	firstOfNextMonth := time.Date(year, time.Month(month)+1, 1, 0, 0, 0, 0, time.UTC)
	if !now.Before(firstOfNextMonth) {
		return fmt.Errorf("%w: card expired", ErrInvalidInstrument)
	}
	return nil
}

// Authorize runs the validation and authorization steps in order; the
// first failing step decides the result.  A *DeclinedError is returned for
// refused cards and a wrapped ErrInvalidInstrument for malformed fields.
// The returned Attempt is populated in both the authorized and declined
// cases.
func (a *Authorizer) Authorize(ctx context.Context, in Instrument) (Attempt, error) {
	if err := ctx.Err(); err != nil {
		return Attempt{}, err
	}
	if err := a.Validate(in); err != nil {
		return Attempt{}, err
	}
	digits, ok := cleanNumber(in.CardNumber)
	attempt := Attempt{MaskedNumber: Mask(digits), Outcome: Declined}
	if !ok || !Luhn(digits) {
		return a.decline(attempt, InvalidNumber)
	}
	network, ok := DetectNetwork(digits)
	if !ok {
		return a.decline(attempt, UnsupportedNetwork)
	}
	attempt.Network = network
	if strings.HasSuffix(digits, declineSuffix) {
		return a.decline(attempt, InsufficientFunds)
	}
	attempt.Outcome = Authorized
	return attempt, nil
}

func (a *Authorizer) decline(attempt Attempt, reason DeclineReason) (Attempt, error) {
	attempt.Outcome = Declined
	attempt.Reason = reason
	return attempt, &DeclinedError{Reason: reason}
}

// Luhn reports whether digits passes the mod 10 checksum.  Every second
// digit from the right is doubled, 9 is subtracted from doubles above 9 and
// the sum must be divisible by 10.
func Luhn(digits string) bool {
	if digits == "" {
		return false
	}
	sum := 0
	double := false
	for i := len(digits) - 1; i >= 0; i-- {
		c := digits[i]
		if c < '0' || c > '9' {
			return false
		}
		d := int(c - '0')
		if double {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		double = !double
	}
	return sum%10 == 0
}

// Mask keeps the last four digits.
func Mask(digits string) string {
	if len(digits) <= 4 {
		return strings.Repeat("*", len(digits))
	}
	return strings.Repeat("*", len(digits)-4) + digits[len(digits)-4:]
}

// cleanNumber drops spaces and dashes.  ok is false when anything other
// than digits remains.  Length is judged by DetectNetwork.
func cleanNumber(raw string) (string, bool) {
	var b strings.Builder
	for _, r := range raw {
		if r == ' ' || r == '-' {
			continue
		}
		b.WriteRune(r)
	}
	digits := b.String()
	if !allDigits(digits) {
		return digits, false
	}
	return digits, true
}

func parseExpiry(raw string) (month, year int, err error) {
	mm, yy, ok := strings.Cut(strings.TrimSpace(raw), "/")
	if !ok || len(mm) != 2 || !allDigits(mm) || !allDigits(yy) {
		return 0, 0, fmt.Errorf("%w: expiry must be MM/YY", ErrInvalidInstrument)
	}
	month, _ = strconv.Atoi(mm)
	if month < 1 || month > 12 {
		return 0, 0, fmt.Errorf("%w: expiry month out of range", ErrInvalidInstrument)
	}
	switch len(yy) {
	case 2:
		y, _ := strconv.Atoi(yy)
		year = 2000 + y
	case 4:
		year, _ = strconv.Atoi(yy)
	default:
		return 0, 0, fmt.Errorf("%w: expiry must be MM/YY", ErrInvalidInstrument)
	}
	return month, year, nil
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
