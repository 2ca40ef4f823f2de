package repo

import (
	"context"
	"io/fs"
)

// Repository defines the interface for data persistence.
type Repository interface {
	// Lifecycle
	Close()
	Ping(ctx context.Context) error
	RunMigrations(ctx context.Context, filesystem fs.FS) error

	// Users
	EnsureUser(ctx context.Context, userID int64) error
	GetUserSettings(ctx context.Context, userID int64) (lang, currency string, err error)
	SetUserLanguage(ctx context.Context, userID int64, lang string) error
	SetUserCurrency(ctx context.Context, userID int64, currency string) error

	// Products
	ListCategories(ctx context.Context) ([]string, error)
	ListProducts(ctx context.Context) ([]Product, error)
	ListProductsByCategory(ctx context.Context, category string) ([]Product, error)
	GetProduct(ctx context.Context, productID int64) (*Product, error)
	InsertProduct(ctx context.Context, p Product) (*Product, error)
	DeleteProduct(ctx context.Context, productID int64) error

	// Cart
	AddToCart(ctx context.Context, userID, productID int64) error
	GetCart(ctx context.Context, userID int64) ([]CartLine, error)
	RemoveCartLine(ctx context.Context, lineID int64) error
	ClearCart(ctx context.Context, userID int64) error

	// Orders
	SettleOrder(ctx context.Context, draft OrderDraft) (*Order, error)
	GetOrder(ctx context.Context, orderID int64) (*Order, error)
	UpdateOrderStatus(ctx context.Context, orderID int64, status OrderStatus) (bool, error)
	ListOrders(ctx context.Context, limit int) ([]Order, error)
	ListUserOrders(ctx context.Context, userID int64) ([]Order, error)
}
