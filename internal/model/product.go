package model

// Product is a concession catalog entry.  Price is authoritative; client
// submitted prices are never used.
type Product struct {
	ID       uint64 `json:"id"`    // products.id
	Name     string `json:"name"`  // products.name
	Price    int64  `json:"price"` // products.price
	IsActive bool   `json:"-"`     // products.is_active
}
