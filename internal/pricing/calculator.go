// Package pricing computes ticket prices for drive-in slots.  Everything
// here is pure: the same inputs always yield the same amount, so callers
// can recompute a quote inside a checkout transaction and compare.
package pricing

import (
	"errors"
	"fmt"

	"github.com/iliyamo/drive-in-checkout/internal/model"
)

const (
	MinAttendees = 1
	MaxAttendees = 4

	// GroupSize attendees in one vehicle get GroupDiscount off the total.
	GroupSize     = 4
	GroupDiscount = 100

	// VIPSurcharge is added per attendee on VIP slots.
	VIPSurcharge = 50
)

// ErrAttendeeCount is returned for attendee counts outside 1..4.  Larger
// parties must book more than one slot.
var ErrAttendeeCount = fmt.Errorf("attendee count must be between %d and %d", MinAttendees, MaxAttendees)

// ErrNegativeBase is returned when a show carries a negative base price.
var ErrNegativeBase = errors.New("base price must not be negative")

// Price returns the amount due for attendees on a slot of the given tier.
//
//	amount = base × attendees
//	attendees == 4 → base×4 − 100
//	VIP            → + 50 × attendees
func Price(base int64, attendees int, tier model.Tier) (int64, error) {
	if base < 0 {
		return 0, ErrNegativeBase
	}
	if attendees < MinAttendees || attendees > MaxAttendees {
		return 0, ErrAttendeeCount
	}
	amount := base * int64(attendees)
	if attendees == GroupSize {
		amount = base*GroupSize - GroupDiscount
	}
	if tier == model.TierVIP {
		amount += VIPSurcharge * int64(attendees)
	}
	return amount, nil
}

// Quote is a priced slot.
type Quote struct {
	ShowID        uint64     `json:"show_id"`
	SlotID        string     `json:"slot_id"`
	Tier          model.Tier `json:"tier"`
	AttendeeCount int        `json:"attendee_count"`
	BasePrice     int64      `json:"base_price"`
	Amount        int64      `json:"amount"`
}

// QuoteSlot prices slotID of show for the given party size using the
// show's current base price.
func QuoteSlot(show model.Show, slotID string, attendees int) (Quote, error) {
	layout := LayoutOf(show)
	slot, err := layout.Resolve(slotID)
	if err != nil {
		return Quote{}, err
	}
	tier := layout.TierOf(slot)
	amount, err := Price(show.BasePrice, attendees, tier)
	if err != nil {
		return Quote{}, err
	}
	return Quote{
		ShowID:        show.ID,
		SlotID:        slot.String(),
		Tier:          tier,
		AttendeeCount: attendees,
		BasePrice:     show.BasePrice,
		Amount:        amount,
	}, nil
}
