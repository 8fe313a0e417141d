package model

import "time"

// Account holds a guest's loyalty balance.  PointsBalance is never negative;
// it only changes as part of a committed checkout.
type Account struct {
	ID            uint64    `json:"id"`             // accounts.id
	Email         string    `json:"email"`          // accounts.email
	PointsBalance int64     `json:"points_balance"` // accounts.points_balance (>= 0)
	CreatedAt     time.Time `json:"created_at"`     // accounts.created_at
}
