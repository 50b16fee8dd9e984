package service

import (
	"context"
	"fmt"
	"strings"

	"storefront/internal/model"
	"storefront/internal/repository"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

type productService struct {
	productRepo repository.ProductRepository
	lookups     singleflight.Group
	logger      zerolog.Logger
}

// NewProductService returns the read-only catalog service. Concurrent
// lookups of the same product share one repository call.
func NewProductService(productRepo repository.ProductRepository, logger zerolog.Logger) ProductService {
	return &productService{
		productRepo: productRepo,
		logger:      logger.With().Str("service", "catalog").Logger(),
	}
}

func clampPage(limit, offset int) (int, int) {
	switch {
	case limit <= 0:
		limit = defaultPageSize
	case limit > maxPageSize:
		limit = maxPageSize
	}
	return limit, max(offset, 0)
}

func (s *productService) GetAll(ctx context.Context, limit, offset int) ([]model.Product, error) {
	limit, offset = clampPage(limit, offset)
	log := s.logger.With().Int("limit", limit).Int("offset", offset).Logger()

	products, err := s.productRepo.GetAll(ctx, limit, offset)
	if err != nil {
		log.Error().Err(err).Msg("catalog page query failed")
		return nil, fmt.Errorf("failed to list catalog: %w", err)
	}

	log.Debug().Int("count", len(products)).Msg("catalog page served")
	return products, nil
}

func (s *productService) GetByID(ctx context.Context, id string) (*model.Product, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, model.ErrProductNotFound
	}

	v, err, shared := s.lookups.Do(id, func() (any, error) {
		return s.productRepo.GetByID(ctx, id)
	})
	if err != nil {
		s.logger.Error().Err(err).Str("product_id", id).Msg("catalog lookup failed")
		return nil, fmt.Errorf("failed to get product %s: %w", id, err)
	}

	product, _ := v.(*model.Product)
	if product == nil {
		return nil, model.ErrProductNotFound
	}
	if shared {
		cp := *product
		product = &cp
	}
	return product, nil
}
