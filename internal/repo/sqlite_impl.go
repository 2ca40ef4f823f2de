package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// -- Users --

func (r *SQLiteRepository) EnsureUser(ctx context.Context, userID int64) error {
	const q = `INSERT OR IGNORE INTO users (user_id) VALUES (?);`
	if _, err := r.db.ExecContext(ctx, q, userID); err != nil {
		return fmt.Errorf("ensure user: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) GetUserSettings(ctx context.Context, userID int64) (string, string, error) {
	const q = `SELECT language, currency FROM users WHERE user_id = ? LIMIT 1;`
	var lang, currency string
	err := r.db.QueryRowContext(ctx, q, userID).Scan(&lang, &currency)
	if errors.Is(err, sql.ErrNoRows) {
		return "ua", "UAH", nil
	}
	if err != nil {
		return "", "", fmt.Errorf("get user settings: %w", err)
	}
	return lang, currency, nil
}

func (r *SQLiteRepository) SetUserLanguage(ctx context.Context, userID int64, lang string) error {
	const q = `
INSERT INTO users (user_id, language)
VALUES (?, ?)
ON CONFLICT (user_id) DO UPDATE SET language = excluded.language;
`
	if _, err := r.db.ExecContext(ctx, q, userID, lang); err != nil {
		return fmt.Errorf("set user language: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) SetUserCurrency(ctx context.Context, userID int64, currency string) error {
	const q = `
INSERT INTO users (user_id, currency)
VALUES (?, ?)
ON CONFLICT (user_id) DO UPDATE SET currency = excluded.currency;
`
	if _, err := r.db.ExecContext(ctx, q, userID, currency); err != nil {
		return fmt.Errorf("set user currency: %w", err)
	}
	return nil
}

// -- Products --

func (r *SQLiteRepository) ListCategories(ctx context.Context) ([]string, error) {
	const q = `SELECT DISTINCT category FROM products ORDER BY category;`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var categories []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate categories: %w", err)
	}
	return categories, nil
}

func (r *SQLiteRepository) ListProducts(ctx context.Context) ([]Product, error) {
	const q = `SELECT id, name, description, price, category FROM products ORDER BY id;`
	return r.queryProducts(ctx, q)
}

func (r *SQLiteRepository) ListProductsByCategory(ctx context.Context, category string) ([]Product, error) {
	const q = `SELECT id, name, description, price, category FROM products WHERE category = ? ORDER BY id;`
	return r.queryProducts(ctx, q, category)
}

func (r *SQLiteRepository) GetProduct(ctx context.Context, productID int64) (*Product, error) {
	const q = `SELECT id, name, description, price, category FROM products WHERE id = ? LIMIT 1;`
	var p Product
	err := r.db.QueryRowContext(ctx, q, productID).Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Category)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get product %d: %w", productID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	return &p, nil
}

func (r *SQLiteRepository) InsertProduct(ctx context.Context, p Product) (*Product, error) {
	const q = `INSERT INTO products (name, description, price, category) VALUES (?, ?, ?, ?);`
	res, err := r.db.ExecContext(ctx, q, p.Name, p.Description, p.Price, p.Category)
	if err != nil {
		return nil, fmt.Errorf("insert product: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("insert product id: %w", err)
	}
	p.ID = id
	return &p, nil
}

func (r *SQLiteRepository) DeleteProduct(ctx context.Context, productID int64) error {
	return r.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM cart_lines WHERE product_id = ?;`, productID); err != nil {
			return fmt.Errorf("delete cart lines for product: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM products WHERE id = ?;`, productID); err != nil {
			return fmt.Errorf("delete product: %w", err)
		}
		return nil
	})
}

func (r *SQLiteRepository) queryProducts(ctx context.Context, q string, args ...any) ([]Product, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	var products []Product
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Category); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate products: %w", err)
	}
	return products, nil
}

// -- Cart --

func (r *SQLiteRepository) AddToCart(ctx context.Context, userID, productID int64) error {
	const q = `
INSERT INTO cart_lines (user_id, product_id, quantity)
VALUES (?, ?, 1)
ON CONFLICT (user_id, product_id) DO UPDATE SET quantity = quantity + 1;
`
	if _, err := r.db.ExecContext(ctx, q, userID, productID); err != nil {
		return fmt.Errorf("add to cart: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) GetCart(ctx context.Context, userID int64) ([]CartLine, error) {
	const q = `
SELECT c.id, c.user_id, c.product_id, p.name, p.price, c.quantity
FROM cart_lines c
JOIN products p ON c.product_id = p.id
WHERE c.user_id = ?
ORDER BY c.id;
`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, fmt.Errorf("get cart: %w", err)
	}
	defer rows.Close()

	var lines []CartLine
	for rows.Next() {
		var l CartLine
		if err := rows.Scan(&l.ID, &l.UserID, &l.ProductID, &l.Name, &l.Price, &l.Quantity); err != nil {
			return nil, fmt.Errorf("scan cart line: %w", err)
		}
		lines = append(lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cart lines: %w", err)
	}
	return lines, nil
}

func (r *SQLiteRepository) RemoveCartLine(ctx context.Context, lineID int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM cart_lines WHERE id = ?;`, lineID); err != nil {
		return fmt.Errorf("remove cart line: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) ClearCart(ctx context.Context, userID int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM cart_lines WHERE user_id = ?;`, userID); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}

// -- Orders --

func (r *SQLiteRepository) SettleOrder(ctx context.Context, draft OrderDraft) (*Order, error) {
	const q = `
INSERT INTO orders (user_id, customer_name, customer_phone, customer_address, delivery_method, items_text, total_price, currency_code, status)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?);
`
	var orderID int64
	err := r.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, q,
			draft.UserID,
			draft.CustomerName,
			draft.CustomerPhone,
			draft.CustomerAddr,
			draft.DeliveryMethod,
			draft.ItemsText,
			draft.TotalPrice,
			draft.CurrencyCode,
			string(draft.Status),
		)
		if err != nil {
			return fmt.Errorf("insert order: %w", err)
		}
		orderID, err = res.LastInsertId()
		if err != nil {
			return fmt.Errorf("insert order id: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM cart_lines WHERE user_id = ?;`, draft.UserID); err != nil {
			return fmt.Errorf("clear cart on settle: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return r.GetOrder(ctx, orderID)
}

func (r *SQLiteRepository) GetOrder(ctx context.Context, orderID int64) (*Order, error) {
	const q = `
SELECT id, user_id, customer_name, customer_phone, customer_address, delivery_method, items_text, total_price, currency_code, status, created_at
FROM orders
WHERE id = ?
LIMIT 1;
`
	var order Order
	err := scanOrder(r.db.QueryRowContext(ctx, q, orderID), &order)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get order %d: %w", orderID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	return &order, nil
}

func (r *SQLiteRepository) UpdateOrderStatus(ctx context.Context, orderID int64, status OrderStatus) (bool, error) {
	const q = `
UPDATE orders
SET status = ?
WHERE id = ? AND status IN ('pending', 'paid');
`
	res, err := r.db.ExecContext(ctx, q, string(status), orderID)
	if err != nil {
		return false, fmt.Errorf("update order status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("update order status rows: %w", err)
	}
	return n > 0, nil
}

func (r *SQLiteRepository) ListOrders(ctx context.Context, limit int) ([]Order, error) {
	if limit <= 0 {
		limit = 10
	}
	const q = `
SELECT id, user_id, customer_name, customer_phone, customer_address, delivery_method, items_text, total_price, currency_code, status, created_at
FROM orders
ORDER BY id DESC
LIMIT ?;
`
	return r.queryOrders(ctx, q, limit)
}

func (r *SQLiteRepository) ListUserOrders(ctx context.Context, userID int64) ([]Order, error) {
	const q = `
SELECT id, user_id, customer_name, customer_phone, customer_address, delivery_method, items_text, total_price, currency_code, status, created_at
FROM orders
WHERE user_id = ?
ORDER BY id DESC;
`
	return r.queryOrders(ctx, q, userID)
}

func (r *SQLiteRepository) queryOrders(ctx context.Context, q string, args ...any) ([]Order, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
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

// -- Helpers --

func (r *SQLiteRepository) withTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			r.logger.Warn("rollback failed", "error", rbErr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}
