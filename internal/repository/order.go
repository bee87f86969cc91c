package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/endulzarte/patisserie-api/internal/domain/order"
)

const (
	insertOrderSQL = `INSERT INTO orders (user_id, total, status)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`

	insertOrderItemSQL = `INSERT INTO order_items (order_id, product_id, quantity, price)
		VALUES ($1, $2, $3, $4)`

	listOrdersByUserSQL = `SELECT id, user_id, total, status, created_at
		FROM orders WHERE user_id = $1
		ORDER BY created_at, id`

	listOrderItemsSQL = `SELECT order_id, product_id, quantity, price
		FROM order_items WHERE order_id = ANY($1)
		ORDER BY id`
)

var _ order.Repository = (*OrderRepository)(nil)

// OrderRepository implements order.Repository backed by PostgreSQL.
type OrderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository returns an OrderRepository that uses the given pool.
func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// Create persists the order header and every line item inside one
// transaction. Any failed insert rolls the whole order back, so a reader can
// never observe a header with a partial line-item set.
func (r *OrderRepository) Create(ctx context.Context, o *order.Order) error {
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, insertOrderSQL, o.UserID, o.Total, string(o.Status)).
			Scan(&o.ID, &o.CreatedAt)
		if err != nil {
			return fmt.Errorf("inserting order header: %w", err)
		}

		for _, item := range o.Items {
			_, err := tx.Exec(ctx, insertOrderItemSQL,
				o.ID, item.ProductID, item.Quantity, item.UnitPrice,
			)
			if err != nil {
				return fmt.Errorf("inserting line item for product %d: %w", item.ProductID, err)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("creating order for user %q: %w", o.UserID, err)
	}
	return nil
}

// ListByUser returns all orders owned by userID with their line items,
// created_at ascending with id as tie-breaker.
func (r *OrderRepository) ListByUser(ctx context.Context, userID string) ([]order.Order, error) {
	rows, err := r.pool.Query(ctx, listOrdersByUserSQL, userID)
	if err != nil {
		return nil, fmt.Errorf("listing orders for user %q: %w", userID, err)
	}
	orders, err := pgx.CollectRows(rows, scanOrder)
	if err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return orders, nil
	}

	ids := make([]int64, len(orders))
	byID := make(map[int64]*order.Order, len(orders))
	for i := range orders {
		ids[i] = orders[i].ID
		byID[orders[i].ID] = &orders[i]
	}

	itemRows, err := r.pool.Query(ctx, listOrderItemsSQL, ids)
	if err != nil {
		return nil, fmt.Errorf("listing line items for user %q: %w", userID, err)
	}
	defer itemRows.Close()

	for itemRows.Next() {
		var (
			orderID int64
			item    order.LineItem
		)
		if err := itemRows.Scan(&orderID, &item.ProductID, &item.Quantity, &item.UnitPrice); err != nil {
			return nil, fmt.Errorf("scanning line item: %w", err)
		}
		if o := byID[orderID]; o != nil {
			o.Items = append(o.Items, item)
		}
	}
	if err := itemRows.Err(); err != nil {
		return nil, fmt.Errorf("reading line items: %w", err)
	}
	return orders, nil
}

func scanOrder(row pgx.CollectableRow) (order.Order, error) {
	var (
		o      order.Order
		status string
	)
	err := row.Scan(&o.ID, &o.UserID, &o.Total, &status, &o.CreatedAt)
	o.Status = order.Status(status)
	return o, err
}
