package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"storefront/internal/clock"
	"storefront/internal/lifecycle"
	"storefront/internal/model"
	"storefront/internal/repository"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// orderService implements OrderService.
type orderService struct {
	orderRepo   repository.OrderRepository
	productRepo repository.ProductRepository
	notifier    StatusNotifier
	clock       clock.Clock
	editWindow  time.Duration
	validate    *validator.Validate
	logger      zerolog.Logger
}

// NewOrderService creates a new order service. Orders stay editable for
// editWindow after checkout.
func NewOrderService(
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	notifier StatusNotifier,
	clk clock.Clock,
	editWindow time.Duration,
	logger zerolog.Logger,
) OrderService {
	return &orderService{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		notifier:    notifier,
		clock:       clk,
		editWindow:  editWindow,
		validate:    validator.New(),
		logger:      logger.With().Str("service", "order").Logger(),
	}
}

// Checkout places a new pending order.
func (s *orderService) Checkout(ctx context.Context, req *model.CheckoutRequest) (*model.OrderResponse, error) {
	req = normaliseCheckout(req)
	if err := s.validateCheckout(req); err != nil {
		return nil, err
	}

	productIDs := uniqueProductIDs(req.Items)
	products, err := s.productRepo.GetByIDs(ctx, productIDs)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to load products for checkout")
		return nil, fmt.Errorf("failed to load products: %w", err)
	}

	catalogue := make(map[string]model.Product, len(products))
	for _, p := range products {
		catalogue[p.ID] = p
	}
	if len(catalogue) != len(productIDs) {
		s.logger.Warn().
			Int("expected", len(productIDs)).
			Int("found", len(catalogue)).
			Msg("checkout references unknown products")
		return nil, model.ErrProductNotFound
	}

	code, err := newOrderCode()
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	deadline := now.Add(s.editWindow)
	order := &model.Order{
		ID:              uuid.New(),
		OrderCode:       code,
		CustomerName:    req.CustomerName,
		CustomerPhone:   req.CustomerPhone,
		CustomerEmail:   req.CustomerEmail,
		DeliveryAddress: req.DeliveryAddress,
		Status:          model.StatusPending,
		OrderDeadline:   &deadline,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	items := make([]model.OrderItem, len(req.Items))
	total := decimal.Zero
	for i, line := range req.Items {
		product := catalogue[line.ProductID]
		subtotal := product.Price.Mul(decimal.NewFromInt(int64(line.Quantity)))
		items[i] = model.OrderItem{
			ID:           uuid.New(),
			OrderID:      order.ID,
			ProductID:    product.ID,
			ProductName:  product.Name,
			ProductPrice: product.Price,
			Quantity:     line.Quantity,
			Subtotal:     subtotal,
		}
		total = total.Add(subtotal)
	}
	order.TotalAmount = total

	if err := order.VerifyTotals(items); err != nil {
		s.logger.Error().Err(err).Str("order_code", order.OrderCode).Msg("order totals inconsistent")
		return nil, err
	}

	if err := s.persist(ctx, order, items); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("order_id", order.ID.String()).
		Str("order_code", order.OrderCode).
		Int("item_count", len(items)).
		Str("total", order.TotalAmount.StringFixed(2)).
		Time("deadline", deadline).
		Msg("order placed")

	return s.response(order, items, now), nil
}

// persist writes the order and its items in one transaction.
func (s *orderService) persist(ctx context.Context, order *model.Order, items []model.OrderItem) (err error) {
	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}

	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	if err = s.orderRepo.CreateOrder(ctx, tx, order); err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}

	if err = s.orderRepo.CreateOrderItems(ctx, tx, items); err != nil {
		return fmt.Errorf("failed to create order items: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		s.logger.Error().Err(err).Str("order_id", order.ID.String()).Msg("failed to commit transaction")
		return fmt.Errorf("failed to create order: %w", err)
	}

	return nil
}

// GetByID retrieves an order with its items and current deadline state.
func (s *orderService) GetByID(ctx context.Context, id uuid.UUID) (*model.OrderResponse, error) {
	order, items, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.response(order, items, s.clock.Now()), nil
}

// Lookup finds an order by code for the customer whose phone matches.
func (s *orderService) Lookup(ctx context.Context, code, phone string) (*model.OrderResponse, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" || strings.TrimSpace(phone) == "" {
		return nil, model.ErrOrderNotFound
	}

	order, items, err := s.orderRepo.GetByCode(ctx, code)
	if err != nil {
		s.logger.Error().Err(err).Str("order_code", code).Msg("failed to look up order")
		return nil, fmt.Errorf("failed to look up order: %w", err)
	}

	if order == nil || !samePhone(order.CustomerPhone, phone) {
		s.logger.Debug().Str("order_code", code).Msg("order lookup did not match")
		return nil, model.ErrOrderNotFound
	}

	return s.response(order, items, s.clock.Now()), nil
}

// Deadline evaluates the edit window of an order at the current time.
func (s *orderService) Deadline(ctx context.Context, id uuid.UUID) (*model.DeadlineState, error) {
	order, _, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	state := lifecycle.Evaluate(order, s.clock.Now())
	return &state, nil
}

// Edit applies customer contact changes while the edit window is open.
func (s *orderService) Edit(ctx context.Context, id uuid.UUID, phone string, fields map[string]any) (*model.OrderResponse, error) {
	order, items, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	if !samePhone(order.CustomerPhone, phone) {
		s.logger.Warn().Str("order_id", id.String()).Msg("edit attempted with non-matching phone")
		return nil, model.ErrOrderNotFound
	}

	now := s.clock.Now()
	edited, err := lifecycle.AttemptEdit(*order, fields, now)
	if err != nil {
		s.logEditRejection(order, fields, err)
		return nil, err
	}

	if err := s.orderRepo.UpdateContact(ctx, &edited, now); err != nil {
		if errors.Is(err, model.ErrEditWindowClosed) {
			s.logger.Info().Str("order_code", order.OrderCode).Msg("edit window closed before write")
			return nil, err
		}
		return nil, fmt.Errorf("failed to update order: %w", err)
	}

	s.logger.Info().
		Str("order_id", edited.ID.String()).
		Str("order_code", edited.OrderCode).
		Int("fields", len(fields)).
		Msg("order contact details updated")

	return s.response(&edited, items, now), nil
}

func (s *orderService) logEditRejection(order *model.Order, fields map[string]any, err error) {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}

	if errors.Is(err, model.ErrForbiddenField) {
		s.logger.Error().
			Str("order_id", order.ID.String()).
			Str("order_code", order.OrderCode).
			Strs("fields", keys).
			Msg("edit attempted on protected order fields")
		return
	}

	s.logger.Info().
		Err(err).
		Str("order_code", order.OrderCode).
		Strs("fields", keys).
		Msg("order edit rejected")
}

// UpdateStatus moves an order to a new status and notifies the customer.
func (s *orderService) UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*model.OrderResponse, error) {
	order, items, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	updated, err := lifecycle.Transition(*order, model.Status(status), now)
	if err != nil {
		s.logger.Info().
			Err(err).
			Str("order_code", order.OrderCode).
			Str("from", order.Status.String()).
			Str("requested", status).
			Msg("status transition rejected")
		return nil, err
	}

	if err := s.orderRepo.UpdateStatus(ctx, order.ID, order.Status, updated.Status, updated.UpdatedAt); err != nil {
		if errors.Is(err, model.ErrStatusConflict) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}

	s.logger.Info().
		Str("order_id", order.ID.String()).
		Str("order_code", order.OrderCode).
		Str("from", order.Status.String()).
		Str("to", updated.Status.String()).
		Msg("order status changed")

	s.notifyTransition(ctx, &updated, order.Status)

	return s.response(&updated, items, now), nil
}

// notifyTransition performs the transition's effects. The status change is
// already committed, so failures are only logged.
func (s *orderService) notifyTransition(ctx context.Context, order *model.Order, from model.Status) {
	log := s.logger.With().Str("order_code", order.OrderCode).Logger()

	if !order.HasEmail() {
		log.Debug().Msg("order has no customer email, skipping status notifications")
		return
	}

	for _, effect := range lifecycle.Effects(order.Status) {
		var err error
		switch effect {
		case lifecycle.EffectStatusUpdate:
			err = s.notifier.StatusUpdate(ctx, order, from, order.Status)
		case lifecycle.EffectReviewRequest:
			err = s.notifier.ReviewRequest(ctx, order)
		}
		if err != nil {
			log.Error().Err(err).Str("effect", effect.String()).Msg("failed to notify customer")
		}
	}
}

// List returns orders for the admin console.
func (s *orderService) List(ctx context.Context, filter model.OrderFilter) ([]model.Order, error) {
	filter.Limit, filter.Offset = clampPage(filter.Limit, filter.Offset)

	orders, err := s.orderRepo.List(ctx, filter)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list orders")
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}

func (s *orderService) load(ctx context.Context, id uuid.UUID) (*model.Order, []model.OrderItem, error) {
	order, items, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to get order")
		return nil, nil, fmt.Errorf("failed to get order: %w", err)
	}
	if order == nil {
		return nil, nil, model.ErrOrderNotFound
	}
	return order, items, nil
}

func (s *orderService) response(order *model.Order, items []model.OrderItem, now time.Time) *model.OrderResponse {
	if items == nil {
		items = []model.OrderItem{}
	}
	return &model.OrderResponse{
		Order:    *order,
		Items:    items,
		Deadline: lifecycle.Evaluate(order, now),
	}
}

func (s *orderService) validateCheckout(req *model.CheckoutRequest) error {
	if req == nil {
		return model.NewDomainError(model.ErrCodeValidation, "checkout request is required")
	}

	for i, item := range req.Items {
		if item.Quantity <= 0 {
			s.logger.Warn().
				Int("item_index", i).
				Str("product_id", item.ProductID).
				Int("quantity", item.Quantity).
				Msg("invalid quantity")
			return model.ErrInvalidQuantity
		}
	}

	if err := s.validate.Struct(req); err != nil {
		return model.NewDomainError(model.ErrCodeValidation, validationMessage(err))
	}

	return nil
}

// validationMessage turns validator field errors into a short readable message.
func validationMessage(err error) string {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err.Error()
	}

	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, fmt.Sprintf("%s failed on %s", fe.Namespace(), fe.Tag()))
	}
	return strings.Join(msgs, "; ")
}

func uniqueProductIDs(items []model.OrderItemRequest) []string {
	seen := make(map[string]struct{}, len(items))
	ids := make([]string, 0, len(items))
	for _, item := range items {
		if _, ok := seen[item.ProductID]; ok {
			continue
		}
		seen[item.ProductID] = struct{}{}
		ids = append(ids, item.ProductID)
	}
	return ids
}

// normaliseCheckout returns a trimmed copy of req so that validation sees
// the values that will be stored. A blank email becomes nil.
func normaliseCheckout(req *model.CheckoutRequest) *model.CheckoutRequest {
	if req == nil {
		return nil
	}
	out := *req
	out.CustomerName = strings.TrimSpace(req.CustomerName)
	out.CustomerPhone = strings.TrimSpace(req.CustomerPhone)
	out.CustomerEmail = normaliseEmail(req.CustomerEmail)
	out.DeliveryAddress = strings.TrimSpace(req.DeliveryAddress)
	if req.Items != nil {
		out.Items = make([]model.OrderItemRequest, len(req.Items))
		for i, item := range req.Items {
			item.ProductID = strings.TrimSpace(item.ProductID)
			out.Items[i] = item
		}
	}
	return &out
}

func normaliseEmail(email *string) *string {
	if email == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*email)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func samePhone(stored, supplied string) bool {
	return strings.TrimSpace(stored) == strings.TrimSpace(supplied)
}
