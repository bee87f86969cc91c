package product

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a requested product does not exist.
var ErrNotFound = errors.New("product not found")

// Product represents a catalog item available for purchase. Price and stock
// are authoritative on the server; clients never supply them.
type Product struct {
	ID          int64
	Name        string
	Description string
	Price       decimal.Decimal
	Stock       int
	Category    string
	ImageURL    string
}

// Repository defines read operations for the product catalog. The order flow
// never mutates products; seeding happens out of band via cmd/seed-db.
type Repository interface {
	List(ctx context.Context) ([]Product, error)
	GetByID(ctx context.Context, id int64) (*Product, error)
	GetByIDs(ctx context.Context, ids []int64) ([]Product, error)
	// Search returns products whose name, description, or category contains
	// the query, case-insensitively. An empty query returns the full catalog.
	Search(ctx context.Context, query string) ([]Product, error)
}
