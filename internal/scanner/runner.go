package scanner

import (
	"context"
	"errors"
	"time"

	"storefront/internal/clock"
	"storefront/internal/model"

	"github.com/rs/zerolog"
	"go.uber.org/atomic"
)

// ErrScanInProgress is returned when a scan is requested while another one
// started by the same Runner is still running.
var ErrScanInProgress = errors.New("deadline scan already in progress")

// Runner schedules scans on a fixed interval and serialises on-demand triggers.
type Runner struct {
	scanner  *Scanner
	clock    clock.Clock
	interval time.Duration
	running  *atomic.Bool
	logger   zerolog.Logger
}

// NewRunner creates a Runner. An interval of zero disables the ticker;
// Trigger still works.
func NewRunner(scanner *Scanner, clk clock.Clock, interval time.Duration, logger zerolog.Logger) *Runner {
	return &Runner{
		scanner:  scanner,
		clock:    clk,
		interval: interval,
		running:  atomic.NewBool(false),
		logger:   logger.With().Str("component", "scan_runner").Logger(),
	}
}

// Trigger runs one scan now unless a scan is already running.
func (r *Runner) Trigger(ctx context.Context) (*model.ScanResult, error) {
	if !r.running.CAS(false, true) {
		return nil, ErrScanInProgress
	}
	defer r.running.Store(false)

	return r.scanner.Scan(ctx, r.clock.Now())
}

// Run blocks, scanning every interval until ctx is cancelled.
func (r *Runner) Run(ctx context.Context) {
	if r.interval <= 0 {
		r.logger.Info().Msg("scan interval not set, scheduled scans disabled")
		<-ctx.Done()
		return
	}

	r.logger.Info().Dur("interval", r.interval).Msg("deadline scan scheduler started")

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.Info().Msg("deadline scan scheduler stopped")
			return
		case <-ticker.C:
			result, err := r.Trigger(ctx)
			switch {
			case errors.Is(err, ErrScanInProgress):
				r.logger.Warn().Msg("previous deadline scan still running, skipping tick")
			case err != nil:
				r.logger.Error().Err(err).Msg("scheduled deadline scan failed")
			case len(result.Errors) > 0:
				r.logger.Warn().Strs("errors", result.Errors).Msg("scheduled deadline scan finished with errors")
			}
		}
	}
}
