package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// ListCategories returns the distinct catalog categories.
func (r *PostgresRepository) ListCategories(ctx context.Context) ([]string, error) {
	const q = `SELECT DISTINCT category FROM products ORDER BY category;`
	rows, err := r.pool.Query(ctx, q)
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

// ListProducts returns the whole catalog.
func (r *PostgresRepository) ListProducts(ctx context.Context) ([]Product, error) {
	const q = `
SELECT id, name, description, price, category
FROM products
ORDER BY id;
`
	return r.queryProducts(ctx, q)
}

// ListProductsByCategory returns products in one category.
func (r *PostgresRepository) ListProductsByCategory(ctx context.Context, category string) ([]Product, error) {
	const q = `
SELECT id, name, description, price, category
FROM products
WHERE category = $1
ORDER BY id;
`
	return r.queryProducts(ctx, q, category)
}

// GetProduct retrieves a product by id.
func (r *PostgresRepository) GetProduct(ctx context.Context, productID int64) (*Product, error) {
	const q = `
SELECT id, name, description, price, category
FROM products
WHERE id = $1
LIMIT 1;
`
	var p Product
	err := r.pool.QueryRow(ctx, q, productID).Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Category)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("get product %d: %w", productID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	return &p, nil
}

// InsertProduct creates a new catalog item and returns it with its id.
func (r *PostgresRepository) InsertProduct(ctx context.Context, p Product) (*Product, error) {
	const q = `
INSERT INTO products (name, description, price, category)
VALUES ($1, $2, $3, $4)
RETURNING id;
`
	if err := r.pool.QueryRow(ctx, q, p.Name, p.Description, p.Price, p.Category).Scan(&p.ID); err != nil {
		return nil, fmt.Errorf("insert product: %w", err)
	}
	return &p, nil
}

// DeleteProduct removes a product and every cart line referencing it.
// Historical orders keep their text snapshot and are untouched.
func (r *PostgresRepository) DeleteProduct(ctx context.Context, productID int64) error {
	return r.WithTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM cart_lines WHERE product_id = $1;`, productID); err != nil {
			return fmt.Errorf("delete cart lines for product: %w", err)
		}
		if _, err := tx.Exec(ctx, `DELETE FROM products WHERE id = $1;`, productID); err != nil {
			return fmt.Errorf("delete product: %w", err)
		}
		return nil
	})
}

func (r *PostgresRepository) queryProducts(ctx context.Context, q string, args ...any) ([]Product, error) {
	rows, err := r.pool.Query(ctx, q, args...)
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
