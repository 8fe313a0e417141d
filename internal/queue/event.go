// Package queue carries committed notifications over RabbitMQ to the
// delivery side.
package queue

import (
	"time"

	"github.com/iliyamo/drive-in-checkout/internal/model"
)

// NotificationQueue is the durable queue notifications are published to.
const NotificationQueue = "notification.created"

// NotificationCreatedEvent is published after a checkout or operator
// action commits.  It carries the whole row so consumers never need to
// query the primary database.
type NotificationCreatedEvent struct {
	NotificationID uint64  `json:"notification_id"`
	AccountID      *uint64 `json:"account_id"`
	Broadcast      bool    `json:"broadcast"`
	Title          string  `json:"title"`
	Message        string  `json:"message"`
	Type           string  `json:"type"`
	CreatedAt      string  `json:"created_at"`
}

// EventFromNotification converts a stored notification into its event.
func EventFromNotification(n model.Notification) NotificationCreatedEvent {
	return NotificationCreatedEvent{
		NotificationID: n.ID,
		AccountID:      n.AccountID,
		Broadcast:      n.Broadcast,
		Title:          n.Title,
		Message:        n.Message,
		Type:           n.Type,
		CreatedAt:      n.CreatedAt.UTC().Format(time.RFC3339),
	}
}
