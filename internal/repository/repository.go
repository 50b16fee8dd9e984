package repository

import (
	"context"
	"time"

	"storefront/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ProductRepository defines the interface for product catalogue access.
type ProductRepository interface {
	// GetAll retrieves all products with pagination support.
	GetAll(ctx context.Context, limit, offset int) ([]model.Product, error)

	// GetByID retrieves a single product by its ID. Returns nil when absent.
	GetByID(ctx context.Context, id string) (*model.Product, error)

	// GetByIDs retrieves every product whose ID is in ids. Unknown IDs are ignored.
	GetByIDs(ctx context.Context, ids []string) ([]model.Product, error)
}

// OrderRepository defines the interface for order data access operations.
type OrderRepository interface {
	// BeginTx starts a new database transaction.
	BeginTx(ctx context.Context) (pgx.Tx, error)

	// CreateOrder inserts a new order within the provided transaction.
	CreateOrder(ctx context.Context, tx pgx.Tx, order *model.Order) error

	// CreateOrderItems inserts multiple order items within the provided transaction.
	CreateOrderItems(ctx context.Context, tx pgx.Tx, items []model.OrderItem) error

	// GetByID retrieves an order by its ID along with its items.
	// Returns nil, nil, nil when the order does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Order, []model.OrderItem, error)

	// GetByCode retrieves an order by its customer-facing code along with its items.
	GetByCode(ctx context.Context, code string) (*model.Order, []model.OrderItem, error)

	// List returns orders newest first, optionally narrowed to one status.
	List(ctx context.Context, filter model.OrderFilter) ([]model.Order, error)

	// FindDeadlineCandidates returns pending, unwarned orders whose deadline
	// falls in (now, now+window].
	FindDeadlineCandidates(ctx context.Context, now time.Time, window time.Duration) ([]model.Order, error)

	// UpdateContact persists edited contact fields while the order is still
	// pending and its deadline is after now. Returns model.ErrEditWindowClosed otherwise.
	UpdateContact(ctx context.Context, order *model.Order, now time.Time) error

	// UpdateStatus moves an order from one status to another. Returns
	// model.ErrStatusConflict when the stored status is no longer from.
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to model.Status, updatedAt time.Time) error

	// MarkDeadlineWarningSent sets the warning flag if it is still false and
	// reports whether this call flipped it. updated_at is set only on a flip.
	MarkDeadlineWarningSent(ctx context.Context, id uuid.UUID, updatedAt time.Time) (bool, error)
}
