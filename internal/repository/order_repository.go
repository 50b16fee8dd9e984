package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"storefront/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

const orderColumns = `id, order_code, customer_name, customer_phone, customer_email,
	delivery_address, total_amount, status, order_deadline, deadline_warning_sent,
	created_at, updated_at`

// orderRepository implements the OrderRepository interface using PostgreSQL.
type orderRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewOrderRepository creates a new PostgreSQL-backed order repository.
func NewOrderRepository(pool *pgxpool.Pool, logger zerolog.Logger) OrderRepository {
	return &orderRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "order").Logger(),
	}
}

// scanOrder reads one orders row selected with orderColumns. Statuses are
// normalised here so the rest of the code only sees the closed enum.
func scanOrder(row pgx.Row) (*model.Order, error) {
	var (
		order  model.Order
		status string
	)
	err := row.Scan(
		&order.ID,
		&order.OrderCode,
		&order.CustomerName,
		&order.CustomerPhone,
		&order.CustomerEmail,
		&order.DeliveryAddress,
		&order.TotalAmount,
		&status,
		&order.OrderDeadline,
		&order.DeadlineWarningSent,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	order.Status, err = model.ParseStatus(status)
	if err != nil {
		return nil, fmt.Errorf("order %s has unknown status %q: %w", order.ID, status, err)
	}

	return &order, nil
}

// BeginTx starts a new database transaction.
func (r *orderRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return tx, nil
}

// CreateOrder inserts a new order within the provided transaction.
func (r *orderRepository) CreateOrder(ctx context.Context, tx pgx.Tx, order *model.Order) error {
	query := `
		INSERT INTO orders (id, order_code, customer_name, customer_phone, customer_email,
			delivery_address, total_amount, status, order_deadline, deadline_warning_sent,
			created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := tx.Exec(ctx, query,
		order.ID,
		order.OrderCode,
		order.CustomerName,
		order.CustomerPhone,
		order.CustomerEmail,
		order.DeliveryAddress,
		order.TotalAmount,
		order.Status.String(),
		order.OrderDeadline,
		order.DeadlineWarningSent,
		order.CreatedAt,
		order.UpdatedAt,
	)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("order_id", order.ID.String()).
			Str("order_code", order.OrderCode).
			Msg("failed to create order")
		return fmt.Errorf("failed to create order: %w", err)
	}

	r.logger.Debug().
		Str("order_id", order.ID.String()).
		Str("order_code", order.OrderCode).
		Msg("order created")

	return nil
}

// CreateOrderItems inserts multiple order items within the provided transaction.
func (r *orderRepository) CreateOrderItems(ctx context.Context, tx pgx.Tx, items []model.OrderItem) error {
	if len(items) == 0 {
		return nil
	}

	query := `
		INSERT INTO order_items (id, order_id, product_id, product_name, product_price, quantity, subtotal)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	batch := &pgx.Batch{}
	for _, item := range items {
		batch.Queue(query,
			item.ID,
			item.OrderID,
			item.ProductID,
			item.ProductName,
			item.ProductPrice,
			item.Quantity,
			item.Subtotal,
		)
	}

	results := tx.SendBatch(ctx, batch)
	defer results.Close()

	for i := range items {
		if _, err := results.Exec(); err != nil {
			r.logger.Error().
				Err(err).
				Str("order_id", items[i].OrderID.String()).
				Str("product_id", items[i].ProductID).
				Msg("failed to create order item")
			return fmt.Errorf("failed to create order item: %w", err)
		}
	}

	r.logger.Debug().
		Int("count", len(items)).
		Msg("order items created")

	return nil
}

// GetByID retrieves an order by its ID along with its items.
func (r *orderRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Order, []model.OrderItem, error) {
	return r.getOne(ctx, "id", id, id.String())
}

// GetByCode retrieves an order by its order code along with its items.
func (r *orderRepository) GetByCode(ctx context.Context, code string) (*model.Order, []model.OrderItem, error) {
	return r.getOne(ctx, "order_code", code, code)
}

// getOne loads a single order keyed on column. column is always a literal from this file.
func (r *orderRepository) getOne(ctx context.Context, column string, key any, logKey string) (*model.Order, []model.OrderItem, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE ` + column + ` = $1`

	order, err := scanOrder(r.pool.QueryRow(ctx, query, key))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Str("order_key", logKey).Msg("order not found")
			return nil, nil, nil
		}
		r.logger.Error().Err(err).Str("order_key", logKey).Msg("failed to query order")
		return nil, nil, fmt.Errorf("failed to query order: %w", err)
	}

	items, err := r.getItems(ctx, order.ID)
	if err != nil {
		return nil, nil, err
	}

	return order, items, nil
}

func (r *orderRepository) getItems(ctx context.Context, orderID uuid.UUID) ([]model.OrderItem, error) {
	query := `
		SELECT id, order_id, product_id, product_name, product_price, quantity, subtotal
		FROM order_items
		WHERE order_id = $1
		ORDER BY product_name, id
	`

	rows, err := r.pool.Query(ctx, query, orderID)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("order_id", orderID.String()).
			Msg("failed to query order items")
		return nil, fmt.Errorf("failed to query order items: %w", err)
	}
	defer rows.Close()

	var items []model.OrderItem
	for rows.Next() {
		var item model.OrderItem
		err := rows.Scan(
			&item.ID,
			&item.OrderID,
			&item.ProductID,
			&item.ProductName,
			&item.ProductPrice,
			&item.Quantity,
			&item.Subtotal,
		)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan order item row")
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating order item rows")
		return nil, fmt.Errorf("error iterating order items: %w", err)
	}

	return items, nil
}

// List returns orders newest first, optionally narrowed to one status.
func (r *orderRepository) List(ctx context.Context, filter model.OrderFilter) ([]model.Order, error) {
	query := `SELECT ` + orderColumns + `
		FROM orders
		WHERE ($1::text IS NULL OR LOWER(status) = $1)
		ORDER BY created_at DESC, id
		LIMIT $2 OFFSET $3
	`

	var status *string
	if filter.Status != nil {
		s := filter.Status.String()
		status = &s
	}

	rows, err := r.pool.Query(ctx, query, status, filter.Limit, filter.Offset)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to list orders")
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}

	return r.collect(rows)
}

// FindDeadlineCandidates returns pending, unwarned orders due within window of now.
func (r *orderRepository) FindDeadlineCandidates(ctx context.Context, now time.Time, window time.Duration) ([]model.Order, error) {
	query := `SELECT ` + orderColumns + `
		FROM orders
		WHERE LOWER(status) = 'pending'
			AND deadline_warning_sent = FALSE
			AND order_deadline IS NOT NULL
			AND order_deadline > $1
			AND order_deadline <= $2
		ORDER BY order_deadline
	`

	rows, err := r.pool.Query(ctx, query, now, now.Add(window))
	if err != nil {
		r.logger.Error().Err(err).Time("now", now).Msg("failed to query deadline candidates")
		return nil, fmt.Errorf("failed to query deadline candidates: %w", err)
	}

	return r.collect(rows)
}

func (r *orderRepository) collect(rows pgx.Rows) ([]model.Order, error) {
	defer rows.Close()

	orders := []model.Order{}
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan order row")
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, *order)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating order rows")
		return nil, fmt.Errorf("error iterating orders: %w", err)
	}

	return orders, nil
}

// UpdateContact writes the editable contact fields if the edit window is still open at now.
func (r *orderRepository) UpdateContact(ctx context.Context, order *model.Order, now time.Time) error {
	query := `
		UPDATE orders
		SET customer_name = $2, customer_phone = $3, delivery_address = $4, updated_at = $5
		WHERE id = $1
			AND LOWER(status) = 'pending'
			AND order_deadline IS NOT NULL
			AND order_deadline > $5
	`

	tag, err := r.pool.Exec(ctx, query,
		order.ID,
		order.CustomerName,
		order.CustomerPhone,
		order.DeliveryAddress,
		now,
	)
	if err != nil {
		r.logger.Error().Err(err).Str("order_id", order.ID.String()).Msg("failed to update order contact")
		return fmt.Errorf("failed to update order contact: %w", err)
	}

	if tag.RowsAffected() == 0 {
		r.logger.Info().
			Str("order_id", order.ID.String()).
			Msg("contact update rejected, edit window closed")
		return model.ErrEditWindowClosed
	}

	return nil
}

// UpdateStatus compares the stored status with from and swaps it to to.
func (r *orderRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to model.Status, updatedAt time.Time) error {
	query := `
		UPDATE orders
		SET status = $3, updated_at = $4
		WHERE id = $1 AND LOWER(status) = $2
	`

	tag, err := r.pool.Exec(ctx, query, id, from.String(), to.String(), updatedAt)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("order_id", id.String()).
			Str("to", to.String()).
			Msg("failed to update order status")
		return fmt.Errorf("failed to update order status: %w", err)
	}

	if tag.RowsAffected() == 0 {
		r.logger.Warn().
			Str("order_id", id.String()).
			Str("from", from.String()).
			Str("to", to.String()).
			Msg("order status changed concurrently")
		return model.ErrStatusConflict
	}

	return nil
}

// MarkDeadlineWarningSent flips the warning flag from false to true and
// stamps updated_at with the scan instant.
func (r *orderRepository) MarkDeadlineWarningSent(ctx context.Context, id uuid.UUID, updatedAt time.Time) (bool, error) {
	query := `
		UPDATE orders
		SET deadline_warning_sent = TRUE, updated_at = $2
		WHERE id = $1 AND deadline_warning_sent = FALSE
	`

	tag, err := r.pool.Exec(ctx, query, id, updatedAt)
	if err != nil {
		r.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to mark deadline warning sent")
		return false, fmt.Errorf("failed to mark deadline warning sent: %w", err)
	}

	return tag.RowsAffected() == 1, nil
}
