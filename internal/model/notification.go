package model

import "time"

// Notification is an immutable message row consumed by an external
// delivery collaborator.  Broadcast rows have no AccountID and reach every
// account.  A row with neither belongs to a guest checkout and is only
// delivered out of band.
type Notification struct {
	ID        uint64    `json:"id"`         // notifications.id
	AccountID *uint64   `json:"account_id"` // notifications.account_id (nullable)
	Broadcast bool      `json:"broadcast"`  // notifications.broadcast
	Title     string    `json:"title"`      // notifications.title
	Message   string    `json:"message"`    // notifications.message
	Type      string    `json:"type"`       // notifications.type
	CreatedAt time.Time `json:"created_at"` // notifications.created_at
}
