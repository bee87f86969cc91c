// Package cart implements the client-side shopping cart: an ordered set of
// product lines persisted through a Store on every mutation, so a reopened
// client resumes where it left off.
package cart

import (
	"context"
	"sync"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// Item is one cart line: a product snapshot plus the desired quantity.
type Item struct {
	ProductID int64           `json:"productId"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Quantity  int             `json:"quantity"`
}

// Subtotal is the line total, unit price times quantity.
func (i Item) Subtotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity))).Round(2)
}

// ErrInvalidQuantity is returned by Add for quantities below one.
var ErrInvalidQuantity = errors.New("quantity must be at least 1")

// OrderPlacer submits the cart contents as an order. Checkout uses it to
// decouple the cart from the transport placing the order.
type OrderPlacer interface {
	PlaceOrder(ctx context.Context, items []Item) error
}

// Cart holds the lines, keyed by product id, in insertion order. All methods
// are safe for concurrent use; every mutation is written through to the store
// before it is considered applied.
type Cart struct {
	store Store

	mu    sync.Mutex
	items []Item
}

// New loads the persisted cart state from the store.
func New(store Store) (*Cart, error) {
	items, err := store.Load()
	if err != nil {
		return nil, errors.Wrap(err, "load cart")
	}
	return &Cart{store: store, items: items}, nil
}

// Add puts the item in the cart. Adding a product already present merges the
// quantities into the existing line; the stored price snapshot is kept.
func (c *Cart) Add(item Item) error {
	if item.Quantity < 1 {
		return ErrInvalidQuantity
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	merged := false
	for i := range c.items {
		if c.items[i].ProductID == item.ProductID {
			c.items[i].Quantity += item.Quantity
			merged = true
			break
		}
	}
	if !merged {
		c.items = append(c.items, item)
	}
	return c.persist()
}

// UpdateQuantity sets the quantity for a product line. A quantity of zero or
// less removes the line. Updating an absent product is a no-op.
func (c *Cart) UpdateQuantity(productID int64, quantity int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.items {
		if c.items[i].ProductID != productID {
			continue
		}
		if quantity <= 0 {
			c.items = append(c.items[:i], c.items[i+1:]...)
		} else {
			c.items[i].Quantity = quantity
		}
		return c.persist()
	}
	return nil
}

// Remove deletes the product line from the cart.
func (c *Cart) Remove(productID int64) error {
	return c.UpdateQuantity(productID, 0)
}

// Clear empties the cart.
func (c *Cart) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = nil
	return c.persist()
}

// Items returns a copy of the cart lines in insertion order.
func (c *Cart) Items() []Item {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]Item, len(c.items))
	copy(out, c.items)
	return out
}

// Len reports the number of distinct product lines.
func (c *Cart) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Total is the sum of all line subtotals, rounded to cents.
func (c *Cart) Total() decimal.Decimal {
	c.mu.Lock()
	defer c.mu.Unlock()

	total := decimal.Zero
	for _, item := range c.items {
		total = total.Add(item.Subtotal())
	}
	return total.Round(2)
}

// Checkout submits the cart through the placer. The cart is cleared only when
// the order succeeds; on failure the lines stay intact so the client can
// retry or amend.
func (c *Cart) Checkout(ctx context.Context, placer OrderPlacer) error {
	items := c.Items()
	if len(items) == 0 {
		return errors.New("cart is empty")
	}

	if err := placer.PlaceOrder(ctx, items); err != nil {
		return errors.Wrap(err, "place order")
	}
	return c.Clear()
}

// persist writes the current lines through to the store. Callers hold c.mu.
func (c *Cart) persist() error {
	return errors.Wrap(c.store.Save(c.items), "save cart")
}
