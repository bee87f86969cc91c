package order

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Status enumerates the lifecycle states of an order. With no payment
// collaborator in this system, checkout is terminal and orders are recorded
// as StatusCompleted; StatusPending remains the extension point for a future
// payment confirmation flow.
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
)

// Order is an immutable record of a purchase: a priced header plus the line
// items it exclusively owns.
type Order struct {
	ID        int64
	UserID    string
	Total     decimal.Decimal
	Status    Status
	CreatedAt time.Time
	Items     []LineItem
}

// LineItem is one product/quantity row of an order. UnitPrice is the catalog
// price captured at order-creation time and never re-read later.
type LineItem struct {
	ProductID int64
	Quantity  int
	UnitPrice decimal.Decimal
}

// LineRequest is a client-submitted (product, quantity) pair. Prices are
// deliberately absent: the service re-prices every line from the catalog.
type LineRequest struct {
	ProductID int64
	Quantity  int
}

// Repository defines persistence operations for orders.
type Repository interface {
	// Create persists the order header and all of its line items atomically.
	// On success it fills in o.ID and o.CreatedAt. On failure no partial
	// state remains.
	Create(ctx context.Context, o *Order) error

	// ListByUser returns all orders owned by userID with their line items,
	// oldest first (created_at ascending, id as tie-breaker).
	ListByUser(ctx context.Context, userID string) ([]Order, error)
}
