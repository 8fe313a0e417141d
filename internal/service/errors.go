package service

import (
	"errors"
	"fmt"

	"github.com/iliyamo/drive-in-checkout/internal/payment"
)

// ValidationError reports a malformed cart or payment field.  Msg is safe
// to show to the caller as is.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func invalidf(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// PaymentDeclinedError is returned when the authorizer refuses the card.
// Nothing has been written when it is returned.
type PaymentDeclinedError struct {
	Reason payment.DeclineReason
}

func (e *PaymentDeclinedError) Error() string {
	return "payment declined: " + string(e.Reason)
}

// SlotConflictError is returned when a slot in the cart is already held by
// an active reservation.  The whole checkout has been rolled back.
type SlotConflictError struct {
	ShowID uint64
	SlotID string
}

func (e *SlotConflictError) Error() string {
	return fmt.Sprintf("slot %s of show %d is no longer available", e.SlotID, e.ShowID)
}

// ItemNotFoundError is returned when a cart references a product, show or
// account that does not resolve.
type ItemNotFoundError struct {
	Kind string
	ID   uint64
}

func (e *ItemNotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Kind, e.ID)
}

// InternalError wraps unexpected failures.  Its message is never shown to
// callers.
type InternalError struct {
	Err error
}

func (e *InternalError) Error() string { return "internal error: " + e.Err.Error() }
func (e *InternalError) Unwrap() error { return e.Err }

// ErrInvalidState is returned by operator actions on a reservation that
// is not active.
var ErrInvalidState = errors.New("reservation is not in the required state")

// ErrNotFound is returned by lookups of unknown records.
var ErrNotFound = errors.New("not found")

// ErrForbidden is returned when the authenticated account may not act on
// the requested resource.
var ErrForbidden = errors.New("forbidden")

// internal wraps err unless it already belongs to the checkout taxonomy.
func internal(err error) error {
	if err == nil || isKnown(err) {
		return err
	}
	return &InternalError{Err: err}
}

func isKnown(err error) bool {
	var (
		ve *ValidationError
		pd *PaymentDeclinedError
		sc *SlotConflictError
		nf *ItemNotFoundError
		ie *InternalError
	)
	return errors.As(err, &ve) || errors.As(err, &pd) || errors.As(err, &sc) ||
		errors.As(err, &nf) || errors.As(err, &ie) ||
		errors.Is(err, ErrInvalidState) || errors.Is(err, ErrNotFound) || errors.Is(err, ErrForbidden)
}
