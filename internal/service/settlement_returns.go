package service

import (
	"context"

	"escrow-settlement/internal/core/domain"
	"escrow-settlement/internal/core/ports"
	"escrow-settlement/pkg/apperror"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// StartReturn opens a return while the escrow is still held.
func (e *SettlementEngine) StartReturn(ctx context.Context, actor ports.Actor, orderID uuid.UUID, reason string) (*ports.TransitionResult, error) {
	if reason == "" {
		return nil, apperror.Validation("reason is required")
	}
	return e.transition(ctx, transition{
		op:      "start_return",
		orderID: orderID,
		actor:   &actor,
		check:   authorizer(actor, roleBuyer),
		from: []domain.OrderStatus{
			domain.OrderStatusDelivered,
			domain.OrderStatusIssueReported,
			domain.OrderStatusCompleted,
		},
		guard: func(o *domain.Order) error {
			if o.EscrowStatus.IsSettled() {
				return apperror.ErrEscrowSettled(string(o.EscrowStatus))
			}
			return nil
		},
		to: domain.OrderStatusReturnStarted,
		apply: func(_ context.Context, _ pgx.Tx, o *domain.Order) error {
			o.ReturnReason = &reason
			o.ReturnStartedAt = ptr(e.now())
			return nil
		},
		event: domain.EventReturnStarted,
	})
}

// SubmitReturnTracking records the buyer's return shipment.
func (e *SettlementEngine) SubmitReturnTracking(ctx context.Context, actor ports.Actor, orderID uuid.UUID, trackingRef string) (*ports.TransitionResult, error) {
	if trackingRef == "" {
		return nil, apperror.Validation("tracking reference is required")
	}
	return e.transition(ctx, transition{
		op:      "submit_return_tracking",
		orderID: orderID,
		actor:   &actor,
		check:   authorizer(actor, roleBuyer),
		from:    []domain.OrderStatus{domain.OrderStatusReturnStarted},
		to:      domain.OrderStatusReturnProcessing,
		apply: func(_ context.Context, _ pgx.Tx, o *domain.Order) error {
			o.ReturnTrackingRef = &trackingRef
			o.ReturnShippedAt = ptr(e.now())
			return nil
		},
		event: domain.EventReturnShipped,
	})
}

// ConfirmReturnReceived refunds the buyer once the seller has the item back.
// A credited seller has the same net reversed out of pending in the same transaction.
func (e *SettlementEngine) ConfirmReturnReceived(ctx context.Context, actor ports.Actor, orderID uuid.UUID) (*ports.TransitionResult, error) {
	return e.settle(ctx, transition{
		op:      "confirm_return_received",
		orderID: orderID,
		actor:   &actor,
		check:   authorizer(actor, roleSeller),
		from:    []domain.OrderStatus{domain.OrderStatusReturnProcessing},
		to:      domain.OrderStatusReturned,
		apply: func(ctx context.Context, tx pgx.Tx, o *domain.Order) error {
			if err := e.reverseCredit(ctx, tx, o); err != nil {
				return err
			}
			o.ReturnReceived = true
			return nil
		},
		event: domain.EventReturnCompleted,
	}, e.refundMove())
}

// AttemptExpireReturn closes a return the buyer never shipped and completes the
// order, crediting the seller if that has not happened yet. Safe to call repeatedly.
func (e *SettlementEngine) AttemptExpireReturn(ctx context.Context, orderID uuid.UUID) (*ports.TransitionResult, error) {
	return e.transition(ctx, transition{
		op:      "expire_return",
		orderID: orderID,
		check: func(o *domain.Order) error {
			if o.Status == domain.OrderStatusCompleted && o.ReturnStartedAt != nil {
				return errReplay
			}
			return nil
		},
		from: []domain.OrderStatus{domain.OrderStatusReturnStarted},
		guard: func(o *domain.Order) error {
			if o.ReturnStartedAt == nil || e.now().Before(o.ReturnStartedAt.Add(e.policy.ReturnDeadline)) {
				return apperror.ErrInvalidTransition("expire_return before deadline", string(o.Status))
			}
			return nil
		},
		to:     domain.OrderStatusCompleted,
		apply:  e.complete,
		event:  domain.EventOrderCompleted,
		amount: sellerNet,
	})
}
