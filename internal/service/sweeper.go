package service

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"escrow-settlement/internal/core/ports"
	"escrow-settlement/internal/metrics"
	"escrow-settlement/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// SettlementSweeper periodically drives the engine's time-based entry points:
// auto-completion, escrow release and return expiry. Every entry point is
// idempotent, so overlapping sweeps or a manual sweep are harmless.
type SettlementSweeper struct {
	engine    ports.SettlementEngine
	orders    ports.OrderRepository
	policy    SettlementPolicy
	interval  time.Duration
	batchSize int
	now       func() time.Time
	log       zerolog.Logger
	stop      chan struct{}
	running   atomic.Bool
}

// NewSettlementSweeper creates a new sweeper.
func NewSettlementSweeper(
	engine ports.SettlementEngine,
	orders ports.OrderRepository,
	policy SettlementPolicy,
	interval time.Duration,
	batchSize int,
	log zerolog.Logger,
) *SettlementSweeper {
	if interval <= 0 {
		interval = time.Minute
	}
	if batchSize <= 0 {
		batchSize = 100
	}
	return &SettlementSweeper{
		engine:    engine,
		orders:    orders,
		policy:    policy,
		interval:  interval,
		batchSize: batchSize,
		now:       func() time.Time { return time.Now().UTC() },
		log:       log,
		stop:      make(chan struct{}),
	}
}

// Running reports whether the sweep loop is active.
func (s *SettlementSweeper) Running() bool {
	return s.running.Load()
}

// Start runs the loop until ctx is done or Stop is called. Call in a goroutine.
func (s *SettlementSweeper) Start(ctx context.Context) {
	s.running.Store(true)
	defer s.running.Store(false)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stop:
			return
		case <-ticker.C:
			s.safeSweep(ctx)
		}
	}
}

// Stop signals the loop to exit.
func (s *SettlementSweeper) Stop() {
	select {
	case s.stop <- struct{}{}:
	default:
	}
}

func (s *SettlementSweeper) safeSweep(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error().Str("panic", fmt.Sprint(r)).Msg("panic in settlement sweeper")
		}
	}()
	if _, err := s.Sweep(ctx); err != nil {
		s.log.Warn().Err(err).Msg("settlement sweep failed")
	}
}

// Sweep runs one pass over every due order.
func (s *SettlementSweeper) Sweep(ctx context.Context) (*ports.SweepReport, error) {
	start := time.Now()
	now := s.now()
	report := &ports.SweepReport{}

	passes := []struct {
		action string
		list   func() ([]uuid.UUID, error)
		run    func(ctx context.Context, id uuid.UUID) (*ports.TransitionResult, error)
		count  *int
	}{
		{
			action: "auto_complete",
			list:   func() ([]uuid.UUID, error) { return s.orders.ListDueForAutoCompletion(ctx, now, s.batchSize) },
			run:    s.engine.AttemptAutoComplete,
			count:  &report.AutoCompleted,
		},
		{
			action: "release_escrow",
			list: func() ([]uuid.UUID, error) {
				return s.orders.ListDueForRelease(ctx, now.Add(-s.policy.ClearingPeriod), s.batchSize)
			},
			run:   s.engine.ReleaseEscrow,
			count: &report.Released,
		},
		{
			action: "expire_return",
			list: func() ([]uuid.UUID, error) {
				return s.orders.ListExpiredReturns(ctx, now.Add(-s.policy.ReturnDeadline), s.batchSize)
			},
			run:   s.engine.AttemptExpireReturn,
			count: &report.ReturnsExpired,
		},
	}

	for _, p := range passes {
		ids, err := p.list()
		if err != nil {
			return nil, fmt.Errorf("list %s candidates: %w", p.action, err)
		}
		for _, id := range ids {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			res, err := p.run(ctx, id)
			switch {
			case err == nil && !res.Replayed:
				*p.count++
				metrics.SweepActionsTotal.WithLabelValues(p.action, "ok").Inc()
			case err == nil || isSkippable(err):
				report.Skipped++
				metrics.SweepActionsTotal.WithLabelValues(p.action, "skipped").Inc()
			default:
				report.Failed++
				metrics.SweepActionsTotal.WithLabelValues(p.action, "failed").Inc()
				s.log.Warn().Err(err).Str("action", p.action).Str("order_id", id.String()).Msg("sweep action failed")
			}
		}
	}

	report.DurationSeconds = time.Since(start).Seconds()
	metrics.SweepDuration.Observe(report.DurationSeconds)
	if report.AutoCompleted+report.Released+report.ReturnsExpired+report.Failed > 0 {
		s.log.Info().
			Int("auto_completed", report.AutoCompleted).
			Int("released", report.Released).
			Int("returns_expired", report.ReturnsExpired).
			Int("skipped", report.Skipped).
			Int("failed", report.Failed).
			Msg("settlement sweep finished")
	}
	return report, nil
}

// isSkippable reports errors that mean the order moved on since it was listed.
func isSkippable(err error) bool {
	switch apperror.KindOf(err) {
	case apperror.KindInvalidTransition, apperror.KindAlreadyProcessed, apperror.KindResourceLocked:
		return true
	}
	return false
}
