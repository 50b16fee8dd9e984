package notify

import (
	"context"
	"fmt"

	"storefront/internal/config"

	"github.com/rs/zerolog"
)

// NewDispatcher builds the transport selected by cfg.Driver. Anything other
// than "ses" falls back to the log dispatcher.
func NewDispatcher(ctx context.Context, cfg config.NotifyConfig, logger zerolog.Logger) (Dispatcher, error) {
	switch cfg.Driver {
	case "ses":
		client, err := NewSESClient(ctx, cfg.SESRegion)
		if err != nil {
			return nil, fmt.Errorf("failed to initialise SES client: %w", err)
		}
		logger.Info().Str("region", cfg.SESRegion).Msg("sending notifications via SES")
		return NewSESDispatcher(client, cfg.FromAddress, logger), nil
	default:
		logger.Warn().Msg("notifications are logged, not delivered")
		return NewLogDispatcher(logger), nil
	}
}

// Setup wires the configured dispatcher and the email templates into a Notifier.
func Setup(ctx context.Context, cfg config.NotifyConfig, baseURL string, logger zerolog.Logger) (*Notifier, error) {
	dispatcher, err := NewDispatcher(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	composer, err := NewComposer(baseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to load email templates: %w", err)
	}
	return NewNotifier(dispatcher, composer, logger), nil
}
