// Package scanner warns customers shortly before their order edit window closes.
package scanner

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"storefront/internal/lifecycle"
	"storefront/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// OrderStore is the persistence the scanner needs.
type OrderStore interface {
	FindDeadlineCandidates(ctx context.Context, now time.Time, window time.Duration) ([]model.Order, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.Order, []model.OrderItem, error)
	MarkDeadlineWarningSent(ctx context.Context, id uuid.UUID, updatedAt time.Time) (bool, error)
}

// WarningNotifier sends the deadline warning for one order.
type WarningNotifier interface {
	DeadlineWarning(ctx context.Context, order *model.Order, minutesRemaining int) error
}

// Scanner finds pending orders inside the warning window and notifies each
// customer at most once.
type Scanner struct {
	store       OrderStore
	notifier    WarningNotifier
	concurrency int
	logger      zerolog.Logger
}

// New creates a Scanner processing up to concurrency orders at a time.
func New(store OrderStore, notifier WarningNotifier, concurrency int, logger zerolog.Logger) *Scanner {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Scanner{
		store:       store,
		notifier:    notifier,
		concurrency: concurrency,
		logger:      logger.With().Str("service", "deadline_scanner").Logger(),
	}
}

type outcome int

const (
	outcomeProcessed outcome = iota
	outcomeSkipped
	outcomeNoRecipient
	outcomeDuplicate
	outcomeFailed
)

// Scan runs one pass at the given instant. Per-order failures are reported in
// the result; only a failed candidate selection aborts the pass.
func (s *Scanner) Scan(ctx context.Context, now time.Time) (*model.ScanResult, error) {
	candidates, err := s.store.FindDeadlineCandidates(ctx, now, lifecycle.WarningWindow)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to select deadline candidates")
		return nil, fmt.Errorf("failed to select deadline candidates: %w", err)
	}

	result := &model.ScanResult{Errors: []string{}}
	if len(candidates) == 0 {
		s.logger.Debug().Time("now", now).Msg("no orders approaching their deadline")
		return result, nil
	}

	var (
		mu sync.Mutex
		g  errgroup.Group
	)
	g.SetLimit(s.concurrency)

	for i := range candidates {
		if ctx.Err() != nil {
			break
		}
		order := candidates[i]
		g.Go(func() error {
			out, msg := s.process(ctx, &order, now)

			mu.Lock()
			defer mu.Unlock()
			switch out {
			case outcomeProcessed:
				result.Processed++
			case outcomeSkipped:
				result.Skipped++
			case outcomeNoRecipient:
				result.NoRecipient++
			case outcomeDuplicate:
				result.Duplicates++
			case outcomeFailed:
				result.Errors = append(result.Errors, msg)
			}
			return nil
		})
	}
	_ = g.Wait()

	sort.Strings(result.Errors)

	s.logger.Info().
		Int("candidates", len(candidates)).
		Int("processed", result.Processed).
		Int("skipped", result.Skipped).
		Int("no_recipient", result.NoRecipient).
		Int("duplicates", result.Duplicates).
		Int("errors", len(result.Errors)).
		Msg("deadline scan finished")

	if err := ctx.Err(); err != nil {
		return result, fmt.Errorf("deadline scan interrupted: %w", err)
	}
	return result, nil
}

// process handles one candidate and returns its outcome plus an error entry on failure.
func (s *Scanner) process(ctx context.Context, candidate *model.Order, now time.Time) (outcome, string) {
	log := s.logger.With().
		Str("order_id", candidate.ID.String()).
		Str("order_code", candidate.OrderCode).
		Logger()

	// Another scan may have warned this order since selection.
	order, _, err := s.store.GetByID(ctx, candidate.ID)
	if err != nil {
		log.Error().Err(err).Msg("failed to reload order")
		return outcomeFailed, fmt.Sprintf("%s: failed to reload order: %v", candidate.OrderCode, err)
	}
	if order == nil || order.DeadlineWarningSent ||
		order.Status != model.StatusPending || !lifecycle.InWarningWindow(order.OrderDeadline, now) {
		log.Debug().Msg("order no longer needs a warning")
		return outcomeSkipped, ""
	}

	if !order.HasEmail() {
		log.Warn().Msg("skipping deadline warning, order has no customer email")
		return outcomeNoRecipient, ""
	}

	minutes := lifecycle.MinutesRemaining(*order.OrderDeadline, now)

	if err := s.notifier.DeadlineWarning(ctx, order, minutes); err != nil {
		if errors.Is(err, model.ErrMissingRecipient) {
			log.Warn().Msg("skipping deadline warning, order has no customer email")
			return outcomeNoRecipient, ""
		}
		log.Error().Err(err).Int("minutes_remaining", minutes).Msg("failed to send deadline warning")
		return outcomeFailed, fmt.Sprintf("%s: %v", order.OrderCode, err)
	}

	flipped, err := s.store.MarkDeadlineWarningSent(ctx, order.ID, now)
	if err != nil {
		// The customer was notified; the next scan may notify again.
		log.Error().Err(err).Msg("deadline warning sent but flag not recorded")
		return outcomeFailed, fmt.Sprintf("%s: failed to record deadline warning: %v", order.OrderCode, err)
	}
	if !flipped {
		log.Warn().Msg("deadline warning flag was already set by a concurrent scan")
		return outcomeDuplicate, ""
	}

	log.Info().Int("minutes_remaining", minutes).Msg("deadline warning sent")
	return outcomeProcessed, ""
}
