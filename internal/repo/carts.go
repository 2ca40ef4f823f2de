package repo

import (
	"context"
	"fmt"
)

// AddToCart adds one unit of the product to the user's cart. Re-adding the
// same product increments the existing line rather than duplicating it.
func (r *PostgresRepository) AddToCart(ctx context.Context, userID, productID int64) error {
	const q = `
INSERT INTO cart_lines (user_id, product_id, quantity)
VALUES ($1, $2, 1)
ON CONFLICT (user_id, product_id) DO UPDATE SET quantity = cart_lines.quantity + 1;
`
	if _, err := r.pool.Exec(ctx, q, userID, productID); err != nil {
		return fmt.Errorf("add to cart: %w", err)
	}
	return nil
}

// GetCart returns the user's cart lines joined with product name and price.
func (r *PostgresRepository) GetCart(ctx context.Context, userID int64) ([]CartLine, error) {
	const q = `
SELECT c.id, c.user_id, c.product_id, p.name, p.price, c.quantity
FROM cart_lines c
JOIN products p ON c.product_id = p.id
WHERE c.user_id = $1
ORDER BY c.id;
`
	rows, err := r.pool.Query(ctx, q, userID)
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

// RemoveCartLine deletes one cart line by its id.
func (r *PostgresRepository) RemoveCartLine(ctx context.Context, lineID int64) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM cart_lines WHERE id = $1;`, lineID); err != nil {
		return fmt.Errorf("remove cart line: %w", err)
	}
	return nil
}

// ClearCart removes every cart line belonging to the user.
func (r *PostgresRepository) ClearCart(ctx context.Context, userID int64) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM cart_lines WHERE user_id = $1;`, userID); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}
