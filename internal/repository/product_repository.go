package repository

import (
	"context"
	"errors"
	"fmt"

	"storefront/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// productSelect lists columns matching model.Product's db tags.
const productSelect = `SELECT id, name, price, category, created_at FROM products`

// productRepository reads the catalogue from PostgreSQL.
type productRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewProductRepository creates a new PostgreSQL-backed product repository.
func NewProductRepository(pool *pgxpool.Pool, logger zerolog.Logger) ProductRepository {
	return &productRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "product").Logger(),
	}
}

// GetAll returns one page of the catalogue ordered by name.
func (r *productRepository) GetAll(ctx context.Context, limit, offset int) ([]model.Product, error) {
	products, err := r.query(ctx, productSelect+` ORDER BY name, id LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		r.logger.Error().Err(err).Int("limit", limit).Int("offset", offset).Msg("failed to list products")
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	return products, nil
}

// GetByID returns the product, or nil when no product has that ID.
func (r *productRepository) GetByID(ctx context.Context, id string) (*model.Product, error) {
	rows, _ := r.pool.Query(ctx, productSelect+` WHERE id = $1`, id)
	product, err := pgx.CollectExactlyOneRow(rows, pgx.RowToAddrOfStructByName[model.Product])
	if errors.Is(err, pgx.ErrNoRows) {
		r.logger.Debug().Str("product_id", id).Msg("product not found")
		return nil, nil
	}
	if err != nil {
		r.logger.Error().Err(err).Str("product_id", id).Msg("failed to query product")
		return nil, fmt.Errorf("failed to query product: %w", err)
	}
	return product, nil
}

// GetByIDs returns every listed product that exists. Missing IDs are
// silently absent from the result; callers compare lengths.
func (r *productRepository) GetByIDs(ctx context.Context, ids []string) ([]model.Product, error) {
	if len(ids) == 0 {
		return []model.Product{}, nil
	}

	products, err := r.query(ctx, productSelect+` WHERE id = ANY($1) ORDER BY name, id`, ids)
	if err != nil {
		r.logger.Error().Err(err).Strs("product_ids", ids).Msg("failed to query products by IDs")
		return nil, fmt.Errorf("failed to query products by IDs: %w", err)
	}
	return products, nil
}

func (r *productRepository) query(ctx context.Context, sql string, args ...any) ([]model.Product, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToStructByName[model.Product])
}
