package model

import "time"

// ReservationStatus is the lifecycle state of a reservation.  Active is the
// only non-terminal state; used and cancelled are final.
type ReservationStatus string

const (
	ReservationActive    ReservationStatus = "active"
	ReservationUsed      ReservationStatus = "used"
	ReservationCancelled ReservationStatus = "cancelled"
)

// Reservation grants admission to one slot of one show.  Rows are only
// created by a committed checkout.  At most one row per (ShowID, SlotID)
// may be active at any instant; the reservations table enforces this with a
// unique key over a generated column.
//
// Fields:
//
//	ID            – primary key identifier.
//	CheckoutID    – checkout that created the reservation.
//	AccountID     – owning account, nil for guest checkouts.
//	ShowID        – screening being attended (movie + date + time).
//	SlotID        – slot label such as "A-3".
//	VehicleClass  – vehicle declared by the guest (car, suv, van, motorbike).
//	Tier          – pricing tier derived from the slot position.
//	AttendeeCount – number of people admitted (1..4).
//	Price         – amount charged, recomputed server side.
//	Status        – active, used or cancelled.
//	CreatedAt     – creation timestamp.
type Reservation struct {
	ID            uint64            `json:"id"`             // reservations.id
	CheckoutID    string            `json:"checkout_id"`    // reservations.checkout_id
	AccountID     *uint64           `json:"account_id"`     // reservations.account_id (nullable)
	ShowID        uint64            `json:"show_id"`        // reservations.show_id
	SlotID        string            `json:"slot_id"`        // reservations.slot_id
	VehicleClass  string            `json:"vehicle_class"`  // reservations.vehicle_class
	Tier          Tier              `json:"tier"`           // reservations.tier
	AttendeeCount int               `json:"attendee_count"` // reservations.attendee_count
	Price         int64             `json:"price"`          // reservations.price
	Status        ReservationStatus `json:"status"`         // reservations.status
	CreatedAt     time.Time         `json:"created_at"`     // reservations.created_at
}
