package service

import (
	"context"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ProductStore interface {
	GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error)
	ProductsByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Product, error)
	DecrementStock(ctx context.Context, id uuid.UUID, qty int) error
	IncrementStock(ctx context.Context, id uuid.UUID, qty int) error
}

type OrderStore interface {
	CreateOrder(ctx context.Context, order *models.Order) error
	GetOrder(ctx context.Context, orderID string) (*models.Order, error)
	ListOrdersByUser(ctx context.Context, userID uuid.UUID) ([]models.Order, error)
	ListOrders(ctx context.Context, limit int) ([]models.Order, error)
	UpdateOrderStatus(ctx context.Context, orderID string, patch models.StatusPatch) (*models.Order, error)
}

type TxRunner interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type UserLookup interface {
	UsersByIDs(ctx context.Context, ids []uuid.UUID) ([]models.User, error)
}

type OrderRepo interface {
	ProductStore
	OrderStore
	UserLookup
	TxRunner
}

type CatalogRepo interface {
	GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error)
	ListProducts(ctx context.Context, f repo.ProductFilter) (int64, []models.Product, error)
	Categories(ctx context.Context) ([]string, error)
	CreateProduct(ctx context.Context, prod *models.Product) error
	UpdateProduct(ctx context.Context, id uuid.UUID, fields map[string]any) (*models.Product, error)
	DeleteProduct(ctx context.Context, id uuid.UUID) error
}

type DashboardRepo interface {
	CountProducts(ctx context.Context) (int64, error)
	CountOrders(ctx context.Context, status models.OrderStatus) (int64, error)
	Revenue(ctx context.Context, payment models.PaymentStatus) (decimal.Decimal, error)
	ListOrders(ctx context.Context, limit int) ([]models.Order, error)
	ProductsByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Product, error)
	UserLookup
}

type UserRepo interface {
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	CreateUser(ctx context.Context, user *models.User) error
}

// EventPublisher delivers domain events to the message bus.
type EventPublisher interface {
	Publish(ctx context.Context, topic, key, eventType string, payload any) error
}

// StatusCache holds the latest status of recently touched orders. GetStatus returns nil on a miss.
type StatusCache interface {
	SetStatus(ctx context.Context, view models.OrderStatusView) error
	GetStatus(ctx context.Context, orderID string) (*models.OrderStatusView, error)
}

// IdempotencyStore remembers checkout keys. Reserve returns reserved=false when the key is
// already taken, together with the order id once that checkout has completed.
type IdempotencyStore interface {
	Reserve(ctx context.Context, key string) (orderID string, reserved bool, err error)
	Complete(ctx context.Context, key, orderID string) error
	Release(ctx context.Context, key string) error
}

type ProductIndex interface {
	IndexProduct(ctx context.Context, p models.Product) error
	DeleteProduct(ctx context.Context, id uuid.UUID) error
	Search(ctx context.Context, query string, from, size int) (int64, []models.Product, error)
}
