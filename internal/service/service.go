package service

import (
	"context"

	"storefront/internal/model"

	"github.com/google/uuid"
)

// ProductService defines read operations on the product catalogue.
type ProductService interface {
	// GetAll retrieves all products with pagination.
	GetAll(ctx context.Context, limit, offset int) ([]model.Product, error)

	// GetByID retrieves a single product by ID.
	GetByID(ctx context.Context, id string) (*model.Product, error)
}

// OrderService defines the order lifecycle operations.
type OrderService interface {
	// Checkout places a new pending order with price snapshots and an edit deadline.
	Checkout(ctx context.Context, req *model.CheckoutRequest) (*model.OrderResponse, error)

	// GetByID retrieves an order with its items and current deadline state.
	GetByID(ctx context.Context, id uuid.UUID) (*model.OrderResponse, error)

	// Lookup finds an order by code for the customer whose phone matches.
	Lookup(ctx context.Context, code, phone string) (*model.OrderResponse, error)

	// Deadline evaluates the edit window of an order at the current time.
	Deadline(ctx context.Context, id uuid.UUID) (*model.DeadlineState, error)

	// Edit applies customer contact changes while the edit window is open.
	// phone must match the phone currently stored on the order.
	Edit(ctx context.Context, id uuid.UUID, phone string, fields map[string]any) (*model.OrderResponse, error)

	// UpdateStatus moves an order to a new status and notifies the customer.
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*model.OrderResponse, error)

	// List returns orders for the admin console.
	List(ctx context.Context, filter model.OrderFilter) ([]model.Order, error)
}

// StatusNotifier sends the customer notifications that follow a status change.
type StatusNotifier interface {
	StatusUpdate(ctx context.Context, order *model.Order, from, to model.Status) error
	ReviewRequest(ctx context.Context, order *model.Order) error
}
