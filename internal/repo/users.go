package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// EnsureUser creates the user row with default settings on first contact.
func (r *PostgresRepository) EnsureUser(ctx context.Context, userID int64) error {
	const q = `
INSERT INTO users (user_id)
VALUES ($1)
ON CONFLICT (user_id) DO NOTHING;
`
	if _, err := r.pool.Exec(ctx, q, userID); err != nil {
		return fmt.Errorf("ensure user: %w", err)
	}
	return nil
}

// GetUserSettings returns the user's language and currency preferences,
// falling back to defaults when the user is unknown.
func (r *PostgresRepository) GetUserSettings(ctx context.Context, userID int64) (string, string, error) {
	const q = `
SELECT language, currency
FROM users
WHERE user_id = $1
LIMIT 1;
`
	var lang, currency string
	err := r.pool.QueryRow(ctx, q, userID).Scan(&lang, &currency)
	if errors.Is(err, pgx.ErrNoRows) {
		return "ua", "UAH", nil
	}
	if err != nil {
		return "", "", fmt.Errorf("get user settings: %w", err)
	}
	return lang, currency, nil
}

// SetUserLanguage stores the language preference, creating the user if needed.
func (r *PostgresRepository) SetUserLanguage(ctx context.Context, userID int64, lang string) error {
	const q = `
INSERT INTO users (user_id, language)
VALUES ($1, $2)
ON CONFLICT (user_id) DO UPDATE SET language = EXCLUDED.language;
`
	if _, err := r.pool.Exec(ctx, q, userID, lang); err != nil {
		return fmt.Errorf("set user language: %w", err)
	}
	return nil
}

// SetUserCurrency stores the currency preference, creating the user if needed.
func (r *PostgresRepository) SetUserCurrency(ctx context.Context, userID int64, currency string) error {
	const q = `
INSERT INTO users (user_id, currency)
VALUES ($1, $2)
ON CONFLICT (user_id) DO UPDATE SET currency = EXCLUDED.currency;
`
	if _, err := r.pool.Exec(ctx, q, userID, currency); err != nil {
		return fmt.Errorf("set user currency: %w", err)
	}
	return nil
}
