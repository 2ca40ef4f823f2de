package repo

import "time"

// OrderStatus is the lifecycle state of a persisted order.
type OrderStatus string

const (
	StatusPending  OrderStatus = "pending"
	StatusPaid     OrderStatus = "paid"
	StatusApproved OrderStatus = "approved"
	StatusRejected OrderStatus = "rejected"
)

// Decidable reports whether an admin may still approve or reject the order.
func (s OrderStatus) Decidable() bool {
	return s == StatusPending || s == StatusPaid
}

// User represents the users table row.
type User struct {
	ID        int64
	Language  string
	Currency  string
	CreatedAt time.Time
}

// Product represents a catalog item. Price is an integer amount in UAH.
type Product struct {
	ID          int64
	Name        string
	Description string
	Price       int64
	Category    string
}

// CartLine is one (user, product) cart row joined with product data.
type CartLine struct {
	ID        int64
	UserID    int64
	ProductID int64
	Name      string
	Price     int64
	Quantity  int64
}

// OrderDraft carries the data accumulated during checkout; it becomes an
// Order only when a confirmed payment settles it.
type OrderDraft struct {
	UserID         int64
	CustomerName   string
	CustomerPhone  string
	CustomerAddr   string
	DeliveryMethod string
	ItemsText      string
	TotalPrice     float64
	CurrencyCode   string
	Status         OrderStatus
}

// Order represents a row in the orders table. Everything except Status is
// immutable once written; ItemsText is the authoritative snapshot of what
// was bought even if the catalog changes later.
type Order struct {
	ID             int64
	UserID         int64
	CustomerName   string
	CustomerPhone  string
	CustomerAddr   string
	DeliveryMethod string
	ItemsText      string
	TotalPrice     float64
	CurrencyCode   string
	Status         OrderStatus
	CreatedAt      time.Time
}
