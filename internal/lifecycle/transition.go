package lifecycle

import (
	"time"

	"storefront/internal/model"
)

// Effect is a side effect the caller of Transition is expected to perform.
type Effect int

const (
	// EffectStatusUpdate tells the customer about the new status.
	EffectStatusUpdate Effect = iota
	// EffectReviewRequest invites the customer to review a delivered order.
	EffectReviewRequest
)

func (e Effect) String() string {
	switch e {
	case EffectStatusUpdate:
		return "status_update"
	case EffectReviewRequest:
		return "review_request"
	default:
		return "unknown"
	}
}

// Transition moves order to next. Any move between the five statuses is
// allowed except out of a terminal status; the deadline and warning flag are
// left alone.
func Transition(order model.Order, next model.Status, now time.Time) (model.Order, error) {
	if order.Status.IsTerminal() {
		return order, model.ErrTerminalState
	}

	parsed, err := model.ParseStatus(string(next))
	if err != nil {
		return order, err
	}

	if parsed == order.Status {
		return order, model.ErrNoStatusChange
	}

	order.Status = parsed
	order.UpdatedAt = now
	return order, nil
}

// Effects lists the notifications owed to the customer after a successful
// transition into to.
func Effects(to model.Status) []Effect {
	effects := []Effect{EffectStatusUpdate}
	if to == model.StatusDelivered {
		effects = append(effects, EffectReviewRequest)
	}
	return effects
}
