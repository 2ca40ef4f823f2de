package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

const orderColumns = `id, user_id, customer_name, customer_phone, customer_address, delivery_method, items_text, total_price, currency_code, status, created_at`

// SettleOrder persists the draft as a new order and clears the user's cart in
// one transaction, so a confirmed payment cannot leave a paid order alongside
// a stale cart.
func (r *PostgresRepository) SettleOrder(ctx context.Context, draft OrderDraft) (*Order, error) {
	const q = `
INSERT INTO orders (user_id, customer_name, customer_phone, customer_address, delivery_method, items_text, total_price, currency_code, status)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
RETURNING ` + orderColumns + `;
`
	var order Order
	err := r.WithTx(ctx, func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx, q,
			draft.UserID,
			draft.CustomerName,
			draft.CustomerPhone,
			draft.CustomerAddr,
			draft.DeliveryMethod,
			draft.ItemsText,
			draft.TotalPrice,
			draft.CurrencyCode,
			draft.Status,
		)
		if err := scanOrder(row, &order); err != nil {
			return fmt.Errorf("insert order: %w", err)
		}
		if _, err := tx.Exec(ctx, `DELETE FROM cart_lines WHERE user_id = $1;`, draft.UserID); err != nil {
			return fmt.Errorf("clear cart on settle: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// GetOrder retrieves an order by id.
func (r *PostgresRepository) GetOrder(ctx context.Context, orderID int64) (*Order, error) {
	const q = `
SELECT ` + orderColumns + `
FROM orders
WHERE id = $1
LIMIT 1;
`
	var order Order
	err := scanOrder(r.pool.QueryRow(ctx, q, orderID), &order)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("get order %d: %w", orderID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	return &order, nil
}

// UpdateOrderStatus applies an admin decision. The transition only happens
// while the order is still decidable, so re-applying a decision is a no-op;
// the returned bool reports whether a row actually changed.
func (r *PostgresRepository) UpdateOrderStatus(ctx context.Context, orderID int64, status OrderStatus) (bool, error) {
	const q = `
UPDATE orders
SET status = $2
WHERE id = $1 AND status IN ('pending', 'paid');
`
	ct, err := r.pool.Exec(ctx, q, orderID, status)
	if err != nil {
		return false, fmt.Errorf("update order status: %w", err)
	}
	return ct.RowsAffected() > 0, nil
}

// ListOrders returns the most recent orders, newest first.
func (r *PostgresRepository) ListOrders(ctx context.Context, limit int) ([]Order, error) {
	if limit <= 0 {
		limit = 10
	}
	const q = `
SELECT ` + orderColumns + `
FROM orders
ORDER BY id DESC
LIMIT $1;
`
	return r.queryOrders(ctx, q, limit)
}

// ListUserOrders returns all orders belonging to one user, newest first.
func (r *PostgresRepository) ListUserOrders(ctx context.Context, userID int64) ([]Order, error) {
	const q = `
SELECT ` + orderColumns + `
FROM orders
WHERE user_id = $1
ORDER BY id DESC;
`
	return r.queryOrders(ctx, q, userID)
}

func (r *PostgresRepository) queryOrders(ctx context.Context, q string, args ...any) ([]Order, error) {
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}
	defer rows.Close()

	var orders []Order
	for rows.Next() {
		var order Order
		if err := scanOrder(rows, &order); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate orders: %w", err)
	}
	return orders, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner, order *Order) error {
	return row.Scan(
		&order.ID,
		&order.UserID,
		&order.CustomerName,
		&order.CustomerPhone,
		&order.CustomerAddr,
		&order.DeliveryMethod,
		&order.ItemsText,
		&order.TotalPrice,
		&order.CurrencyCode,
		&order.Status,
		&order.CreatedAt,
	)
}
