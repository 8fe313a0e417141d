package model

import "time"

// OrderStatus is the fulfilment state of a concession order.  It is a
// separate vocabulary from ReservationStatus and must not be mixed with it.
type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderPreparing OrderStatus = "preparing"
	OrderDelivered OrderStatus = "delivered"
	OrderCancelled OrderStatus = "cancelled"
)

// Order groups the concession items bought in one checkout.  TotalAmount
// always equals the sum of Price × Quantity over Items, where Price is the
// catalog price at the time of the checkout.
type Order struct {
	ID          uint64      `json:"id"`           // orders.id
	CheckoutID  string      `json:"checkout_id"`  // orders.checkout_id
	AccountID   *uint64     `json:"account_id"`   // orders.account_id (nullable, guest)
	Items       []OrderItem `json:"items"`        // order_items rows
	TotalAmount int64       `json:"total_amount"` // orders.total_amount
	Status      OrderStatus `json:"status"`       // orders.status
	Location    *string     `json:"location"`     // orders.location (nullable)
	CreatedAt   time.Time   `json:"created_at"`   // orders.created_at
}

// OrderItem is one product line of an order.  Name and Price are snapshots
// taken from the catalog during checkout.
type OrderItem struct {
	ProductID uint64 `json:"product_id"` // order_items.product_id
	Name      string `json:"name"`       // order_items.name
	Price     int64  `json:"price"`      // order_items.price
	Quantity  int    `json:"quantity"`   // order_items.quantity (>= 1)
}

// LineTotal returns Price × Quantity.
func (i OrderItem) LineTotal() int64 { return i.Price * int64(i.Quantity) }
