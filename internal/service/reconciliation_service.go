package service

import (
	"context"
	"fmt"
	"time"

	"escrow-settlement/internal/core/domain"
	"escrow-settlement/internal/core/ports"
	"escrow-settlement/internal/metrics"
	"escrow-settlement/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ReconciliationRecorder flags operations whose processor call succeeded but whose
// local commit did not. Cases are never retried automatically.
type ReconciliationRecorder struct {
	repo ports.ReconciliationRepository
	log  zerolog.Logger
}

// NewReconciliationRecorder creates a new ReconciliationRecorder.
func NewReconciliationRecorder(repo ports.ReconciliationRepository, log zerolog.Logger) *ReconciliationRecorder {
	return &ReconciliationRecorder{repo: repo, log: log}
}

// Record stores c and returns the ReconciliationRequired error for the caller.
func (r *ReconciliationRecorder) Record(ctx context.Context, c *domain.ReconciliationCase, cause error) error {
	c.ID = uuid.New()
	c.Status = domain.ReconciliationOpen
	c.CreatedAt = time.Now().UTC()
	if cause != nil {
		c.Error = cause.Error()
	}

	metrics.ReconciliationCasesTotal.WithLabelValues(c.Operation).Inc()

	evt := r.log.Error().
		Err(cause).
		Str("case_id", c.ID.String()).
		Str("op", c.Operation).
		Str("external_ref", c.ExternalRef).
		Str("idempotency_key", c.IdempotencyKey).
		Int64("amount", c.AmountCents)
	if c.OrderID != nil {
		evt = evt.Str("order_id", c.OrderID.String())
	}
	if c.SellerID != nil {
		evt = evt.Str("seller_id", c.SellerID.String())
	}
	evt.Msg("processor call succeeded but local commit failed, reconciliation required")

	// The request context may already be cancelled; the case must still land.
	if err := r.repo.Create(context.WithoutCancel(ctx), c); err != nil {
		r.log.Error().Err(err).Str("case_id", c.ID.String()).Msg("failed to persist reconciliation case")
	}
	return apperror.ErrReconciliationRequired(c.ID.String(), cause)
}

// reconciliationService implements ports.ReconciliationService.
type reconciliationService struct {
	repo ports.ReconciliationRepository
	log  zerolog.Logger
}

// NewReconciliationService creates the operator side of reconciliation.
func NewReconciliationService(repo ports.ReconciliationRepository, log zerolog.Logger) ports.ReconciliationService {
	return &reconciliationService{repo: repo, log: log}
}

func (s *reconciliationService) ListOpen(ctx context.Context, limit int) ([]domain.ReconciliationCase, error) {
	if limit < 1 || limit > 500 {
		limit = 100
	}
	cases, err := s.repo.ListOpen(ctx, limit)
	if err != nil {
		return nil, apperror.InternalError(err)
	}
	if cases == nil {
		cases = []domain.ReconciliationCase{}
	}
	return cases, nil
}

// Resolve closes a case after an operator has corrected the records by hand.
func (s *reconciliationService) Resolve(ctx context.Context, actor ports.Actor, caseID uuid.UUID, notes string) error {
	if !actor.IsAdmin {
		return apperror.ErrForbidden("only admins can resolve reconciliation cases")
	}
	if notes == "" {
		return apperror.Validation("notes are required")
	}
	ok, err := s.repo.Resolve(ctx, caseID, actor.UserID, notes)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("resolve case: %w", err))
	}
	if !ok {
		return apperror.ErrNotFound("open reconciliation case")
	}
	s.log.Info().Str("case_id", caseID.String()).Str("admin_id", actor.UserID.String()).Msg("reconciliation case resolved")
	return nil
}
