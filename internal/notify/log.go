package notify

import (
	"context"

	"storefront/internal/model"

	"github.com/rs/zerolog"
)

// LogDispatcher writes notifications to the log instead of sending them.
// Used for local development and when no mail transport is configured.
type LogDispatcher struct {
	logger zerolog.Logger
}

// NewLogDispatcher creates a LogDispatcher.
func NewLogDispatcher(logger zerolog.Logger) *LogDispatcher {
	return &LogDispatcher{logger: logger.With().Str("dispatcher", "log").Logger()}
}

func (d *LogDispatcher) Send(ctx context.Context, recipients []Recipient, subject, htmlBody string) error {
	if len(recipients) == 0 {
		return model.ErrMissingRecipient
	}

	to := make([]string, 0, len(recipients))
	for _, r := range recipients {
		to = append(to, r.Address())
	}

	d.logger.Info().
		Strs("to", to).
		Str("subject", subject).
		Int("body_bytes", len(htmlBody)).
		Msg("notification")
	d.logger.Debug().Str("body", htmlBody).Msg("notification body")

	return nil
}
