package order

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/endulzarte/patisserie-api/internal/domain/product"
)

// Sentinel errors for order validation.
var (
	ErrEmptyItems = fmt.Errorf("items required")
	ErrEmptyUser  = fmt.Errorf("user required")
)

// ProductNotFoundError indicates a requested product does not exist. Any
// unresolved product id voids the whole request; lines are never silently
// dropped.
type ProductNotFoundError struct {
	ProductID int64
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("product %d not found", e.ProductID)
}

// InvalidQuantityError indicates a line request has a non-positive quantity.
type InvalidQuantityError struct {
	ProductID int64
}

func (e *InvalidQuantityError) Error() string {
	return fmt.Sprintf("quantity must be greater than 0 for product %d", e.ProductID)
}

// Service converts client-submitted carts into persisted, correctly priced
// orders. It never trusts client-supplied prices.
type Service struct {
	products product.Repository
	orders   Repository
}

// NewService creates an order Service with the required domain dependencies.
func NewService(products product.Repository, orders Repository) *Service {
	return &Service{
		products: products,
		orders:   orders,
	}
}

// PlaceOrder validates the line requests, re-prices each line from the
// catalog, and persists the order header together with its line items in a
// single transaction via the repository. The returned order carries the
// computed total and the price snapshots.
//
// Stock is read-only here: no check or decrement happens. Adding one later
// must join the same transaction as the order writes.
func (s *Service) PlaceOrder(ctx context.Context, userID string, lines []LineRequest) (*Order, error) {
	if userID == "" {
		return nil, ErrEmptyUser
	}
	if len(lines) == 0 {
		return nil, ErrEmptyItems
	}

	// Validate quantities and collect product IDs for a single batch fetch.
	ids := make([]int64, len(lines))
	for i, line := range lines {
		if line.Quantity <= 0 {
			return nil, &InvalidQuantityError{ProductID: line.ProductID}
		}
		ids[i] = line.ProductID
	}

	fetched, err := s.products.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("get products: %w", err)
	}

	byID := make(map[int64]product.Product, len(fetched))
	for _, p := range fetched {
		byID[p.ID] = p
	}

	// Price every line from the authoritative catalog. A missing product
	// fails the whole request.
	items := make([]LineItem, len(lines))
	total := decimal.Zero
	for i, line := range lines {
		p, ok := byID[line.ProductID]
		if !ok {
			return nil, &ProductNotFoundError{ProductID: line.ProductID}
		}

		items[i] = LineItem{
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			UnitPrice: p.Price,
		}
		total = total.Add(p.Price.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}

	o := &Order{
		UserID: userID,
		Total:  total.Round(2),
		Status: StatusCompleted,
		Items:  items,
	}
	if err := s.orders.Create(ctx, o); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	return o, nil
}

// Orders returns all orders owned by userID, oldest first.
func (s *Service) Orders(ctx context.Context, userID string) ([]Order, error) {
	if userID == "" {
		return nil, ErrEmptyUser
	}

	orders, err := s.orders.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return orders, nil
}
