package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/iliyamo/drive-in-checkout/internal/model"
)

// ProductRepo is the catalog price resolver.  Checkout resolves every cart
// product through ByIDsTx so that names and prices come from the catalog
// row visible to the transaction, never from the client.
type ProductRepo struct {
	db *sql.DB
}

// NewProductRepo returns a ProductRepo bound to db.
func NewProductRepo(db *sql.DB) *ProductRepo { return &ProductRepo{db: db} }

// ListActive returns the purchasable catalog ordered by name.
func (r *ProductRepo) ListActive(ctx context.Context) ([]model.Product, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, price, is_active FROM products WHERE is_active = 1 ORDER BY name, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Product{}
	for rows.Next() {
		var p model.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Price, &p.IsActive); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// ByIDsTx loads the given products inside tx with a shared lock so their
// prices cannot change before the checkout commits.  Unknown IDs are simply
// absent from the result; inactive products are returned with IsActive
// false and callers decide what to do with them.
func (r *ProductRepo) ByIDsTx(ctx context.Context, tx *sql.Tx, ids []uint64) (map[uint64]model.Product, error) {
	out := make(map[uint64]model.Product, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, 0, len(ids))
	for _, id := range ids {
		args = append(args, id)
	}
	q := `SELECT id, name, price, is_active FROM products WHERE id IN (` + placeholders + `) FOR SHARE`
	rows, err := tx.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var p model.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Price, &p.IsActive); err != nil {
			return nil, err
		}
		out[p.ID] = p
	}
	return out, rows.Err()
}
