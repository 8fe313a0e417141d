package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iliyamo/drive-in-checkout/internal/model"
)

// OrderRepo persists concession orders and their items.
type OrderRepo struct {
	db *sql.DB
}

// NewOrderRepo returns an OrderRepo bound to db.
func NewOrderRepo(db *sql.DB) *OrderRepo { return &OrderRepo{db: db} }

// CreateTx inserts the order row and all of its items in the caller's
// transaction and populates the generated order ID.  An order without items
// is rejected.
func (r *OrderRepo) CreateTx(ctx context.Context, tx *sql.Tx, o *model.Order) error {
	if len(o.Items) == 0 {
		return errors.New("order has no items")
	}
	const q = `INSERT INTO orders (checkout_id, account_id, total_amount, status, location, created_at) VALUES (?, ?, ?, ?, ?, ?)`
	var location any
	if o.Location != nil {
		location = *o.Location
	}
	result, err := tx.ExecContext(ctx, q,
		o.CheckoutID, nullableID(o.AccountID), o.TotalAmount, string(o.Status), location, o.CreatedAt)
	if err != nil {
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	o.ID = uint64(id)
	return r.createItemsTx(ctx, tx, o.ID, o.Items)
}

// createItemsTx inserts all items of an order in a single statement.
func (r *OrderRepo) createItemsTx(ctx context.Context, tx *sql.Tx, orderID uint64, items []model.OrderItem) error {
	var b strings.Builder
	b.WriteString(`INSERT INTO order_items (order_id, product_id, name, price, quantity) VALUES `)
	args := make([]any, 0, len(items)*5)
	for i, it := range items {
		if i > 0 {
			b.WriteString(",")
		}
		b.WriteString("(?, ?, ?, ?, ?)")
		args = append(args, orderID, it.ProductID, it.Name, it.Price, it.Quantity)
	}
	_, err := tx.ExecContext(ctx, b.String(), args...)
	return err
}
