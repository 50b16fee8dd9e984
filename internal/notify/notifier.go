package notify

import (
	"context"
	"fmt"
	"strings"

	"storefront/internal/model"

	"github.com/rs/zerolog"
)

// Notifier composes and dispatches order notifications to the customer.
type Notifier struct {
	dispatcher Dispatcher
	composer   *Composer
	logger     zerolog.Logger
}

// NewNotifier creates a Notifier.
func NewNotifier(dispatcher Dispatcher, composer *Composer, logger zerolog.Logger) *Notifier {
	return &Notifier{
		dispatcher: dispatcher,
		composer:   composer,
		logger:     logger.With().Str("service", "notify").Logger(),
	}
}

// DeadlineWarning tells the customer their edit window is about to close.
func (n *Notifier) DeadlineWarning(ctx context.Context, order *model.Order, minutesRemaining int) error {
	msg, err := n.composer.DeadlineWarning(order, minutesRemaining)
	if err != nil {
		return err
	}
	return n.send(ctx, order, msg, "deadline_warning")
}

// StatusUpdate tells the customer their order moved from one status to another.
func (n *Notifier) StatusUpdate(ctx context.Context, order *model.Order, from, to model.Status) error {
	msg, err := n.composer.StatusUpdate(order, from, to)
	if err != nil {
		return err
	}
	return n.send(ctx, order, msg, "status_update")
}

// ReviewRequest asks the customer to review a delivered order.
func (n *Notifier) ReviewRequest(ctx context.Context, order *model.Order) error {
	msg, err := n.composer.ReviewRequest(order)
	if err != nil {
		return err
	}
	return n.send(ctx, order, msg, "review_request")
}

func (n *Notifier) send(ctx context.Context, order *model.Order, msg Message, kind string) error {
	if !order.HasEmail() {
		return model.ErrMissingRecipient
	}

	recipients := []Recipient{{
		Name:  order.CustomerName,
		Email: strings.TrimSpace(*order.CustomerEmail),
	}}

	if err := n.dispatcher.Send(ctx, recipients, msg.Subject, msg.HTMLBody); err != nil {
		return fmt.Errorf("%w: %w", model.ErrDispatchFailed, err)
	}

	n.logger.Debug().
		Str("order_code", order.OrderCode).
		Str("kind", kind).
		Msg("notification dispatched")

	return nil
}
