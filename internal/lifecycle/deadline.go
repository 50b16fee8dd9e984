// Package lifecycle holds the pure rules of the order lifecycle: the edit
// window, the status state machine and the customer edit gate. Nothing here
// reads a clock or touches storage; callers pass the current time in.
package lifecycle

import (
	"fmt"
	"time"

	"storefront/internal/model"
)

// WarningWindow is how far ahead of an order's deadline the customer is warned.
const WarningWindow = 15 * time.Minute

// Remaining returns the time left until deadline, truncated to whole
// milliseconds and never negative. A nil deadline has no active window.
func Remaining(deadline *time.Time, now time.Time) time.Duration {
	if deadline == nil {
		return 0
	}
	d := deadline.Sub(now).Truncate(time.Millisecond)
	if d <= 0 {
		return 0
	}
	return d
}

// IsEditable reports whether the customer may still change contact details.
func IsEditable(status model.Status, deadline *time.Time, now time.Time) bool {
	return status == model.StatusPending && deadline != nil && Remaining(deadline, now) > 0
}

// IsExpired reports whether an order's edit window existed and has run out.
func IsExpired(deadline *time.Time, now time.Time) bool {
	return deadline != nil && Remaining(deadline, now) == 0
}

// FormatRemaining renders d as "1h 02m 03s", or "02m 03s" below one hour.
// Values are floored to whole seconds.
func FormatRemaining(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	ms := d.Milliseconds()
	hours := ms / 3_600_000
	minutes := (ms % 3_600_000) / 60_000
	seconds := (ms % 60_000) / 1_000

	if hours >= 1 {
		return fmt.Sprintf("%dh %02dm %02ds", hours, minutes, seconds)
	}
	return fmt.Sprintf("%02dm %02ds", minutes, seconds)
}

// Evaluate bundles the deadline checks for display.
func Evaluate(order *model.Order, now time.Time) model.DeadlineState {
	remaining := Remaining(order.OrderDeadline, now)
	return model.DeadlineState{
		RemainingMs: remaining.Milliseconds(),
		Display:     FormatRemaining(remaining),
		Editable:    IsEditable(order.Status, order.OrderDeadline, now),
		Expired:     IsExpired(order.OrderDeadline, now),
	}
}

// MinutesRemaining rounds the time to deadline to the nearest minute, floored at zero.
func MinutesRemaining(deadline time.Time, now time.Time) int {
	d := deadline.Sub(now)
	if d <= 0 {
		return 0
	}
	return int(d.Round(time.Minute) / time.Minute)
}

// InWarningWindow reports whether deadline is still ahead of now but no
// further than WarningWindow away.
func InWarningWindow(deadline *time.Time, now time.Time) bool {
	if deadline == nil {
		return false
	}
	return deadline.After(now) && !deadline.After(now.Add(WarningWindow))
}
