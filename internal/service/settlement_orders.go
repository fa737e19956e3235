package service

import (
	"context"
	"fmt"

	"escrow-settlement/internal/core/domain"
	"escrow-settlement/internal/core/ports"
	"escrow-settlement/pkg/apperror"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// CreateOrder registers a checkout that is waiting for the payment event.
func (e *SettlementEngine) CreateOrder(ctx context.Context, req ports.CreateOrderRequest) (*domain.Order, error) {
	switch {
	case req.BuyerID == uuid.Nil || req.SellerID == uuid.Nil:
		return nil, apperror.Validation("buyer and seller are required")
	case req.BuyerID == req.SellerID:
		return nil, apperror.Validation("buyer and seller must differ")
	case req.ItemPriceCents <= 0 || req.SellerNetCents <= 0:
		return nil, apperror.ErrInvalidAmount()
	case req.ShippingCents < 0 || req.TaxCents < 0 || req.BuyerFeeCents < 0:
		return nil, apperror.ErrInvalidAmount()
	}

	id := req.ID
	if id == uuid.Nil {
		id = uuid.New()
	}
	if existing, err := e.orders.GetByID(ctx, id); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get order: %w", err))
	} else if existing != nil {
		return nil, apperror.ErrAlreadyProcessed("order already exists")
	}

	display := req.DisplayNumber
	if display == "" {
		display = "ORD-" + id.String()[:8]
	}
	now := e.now()
	order := &domain.Order{
		ID:             id,
		DisplayNumber:  display,
		ListingID:      req.ListingID,
		OfferID:        req.OfferID,
		BuyerID:        req.BuyerID,
		SellerID:       req.SellerID,
		ItemPriceCents: req.ItemPriceCents,
		ShippingCents:  req.ShippingCents,
		TaxCents:       req.TaxCents,
		BuyerFeeCents:  req.BuyerFeeCents,
		SellerNetCents: req.SellerNetCents,
		Status:         domain.OrderStatusPendingPayment,
		EscrowStatus:   domain.EscrowHeld,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := e.orders.Create(ctx, nil, order); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("create order: %w", err))
	}

	e.log.Info().
		Str("order_id", order.ID.String()).
		Str("seller_id", order.SellerID.String()).
		Int64("seller_net", order.SellerNetCents).
		Msg("order created")
	return order, nil
}

// GetOrder returns the order to a party or an admin.
func (e *SettlementEngine) GetOrder(ctx context.Context, actor ports.Actor, orderID uuid.UUID) (*domain.Order, error) {
	o, err := e.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, apperror.InternalError(err)
	}
	if o == nil {
		return nil, apperror.ErrNotFound("order")
	}
	if err := authorize(actor, o, roleBuyer|roleSeller|roleAdmin); err != nil {
		return nil, err
	}
	return o, nil
}

// ConfirmPayment moves the order to paid on the processor's payment event.
// Events are delivered at least once; any delivery after the first is a replay.
func (e *SettlementEngine) ConfirmPayment(ctx context.Context, orderID uuid.UUID, chargeRef string) (*ports.TransitionResult, error) {
	if chargeRef == "" {
		return nil, apperror.Validation("charge reference is required")
	}
	key := paymentEventKey(orderID, chargeRef)
	if res := e.replayFromCache(ctx, orderID, key); res != nil {
		return res, nil
	}

	res, err := e.transition(ctx, transition{
		op:      "confirm_payment",
		orderID: orderID,
		check: func(o *domain.Order) error {
			switch o.Status {
			case domain.OrderStatusPendingPayment:
				return nil
			case domain.OrderStatusCancelledPayment:
				e.log.Warn().Str("order_id", o.ID.String()).Str("charge_ref", chargeRef).
					Msg("payment confirmed for a cancelled order, charge needs a refund")
				return apperror.ErrInvalidTransition("confirm_payment", string(o.Status))
			}
			if o.ProcessorChargeRef != chargeRef {
				e.log.Warn().Str("order_id", o.ID.String()).Str("charge_ref", chargeRef).
					Str("recorded_charge_ref", o.ProcessorChargeRef).
					Msg("payment event carries a different charge for a paid order")
			}
			return errReplay
		},
		to: domain.OrderStatusPaid,
		apply: func(ctx context.Context, tx pgx.Tx, o *domain.Order) error {
			o.ProcessorChargeRef = chargeRef
			o.EscrowStatus = domain.EscrowHeld
			expired, err := e.offers.ExpireOtherPending(ctx, tx, o.ListingID, o.OfferID)
			if err != nil {
				return apperror.InternalError(fmt.Errorf("expire offers: %w", err))
			}
			if expired > 0 {
				e.log.Debug().Str("listing_id", o.ListingID.String()).Int64("expired", expired).Msg("expired competing offers")
			}
			return nil
		},
		event: domain.EventOrderPaid,
		amount: func(o *domain.Order) int64 {
			return o.RefundableCents() + o.BuyerFeeCents
		},
	})
	if err != nil {
		return nil, err
	}

	if e.events != nil {
		if err := e.events.Remember(ctx, key, e.policy.PaymentEventTTL); err != nil {
			e.log.Warn().Err(err).Str("key", key).Msg("failed to cache payment event in redis")
		}
	}
	return res, nil
}

func paymentEventKey(orderID uuid.UUID, chargeRef string) string {
	return "payment:" + orderID.String() + ":" + chargeRef
}

// replayFromCache answers a replayed payment event without opening a transaction.
// The order row stays authoritative; a cache hit is only trusted once the row agrees.
func (e *SettlementEngine) replayFromCache(ctx context.Context, orderID uuid.UUID, key string) *ports.TransitionResult {
	if e.events == nil {
		return nil
	}
	seen, err := e.events.Seen(ctx, key)
	if err != nil {
		e.log.Warn().Err(err).Str("key", key).Msg("redis payment event check failed, falling through to DB")
		return nil
	}
	if !seen {
		return nil
	}
	o, err := e.orders.GetByID(ctx, orderID)
	if err != nil || o == nil {
		return nil
	}
	if o.InStatus(domain.OrderStatusPendingPayment, domain.OrderStatusCancelledPayment) {
		return nil
	}
	res := &ports.TransitionResult{Order: o, Replayed: true}
	e.observe("confirm_payment", res, nil)
	return res
}

// CancelPendingPayment abandons a checkout. If the payment already landed the
// cancel is skipped and the current order is returned as a replay.
func (e *SettlementEngine) CancelPendingPayment(ctx context.Context, actor ports.Actor, orderID uuid.UUID) (*ports.TransitionResult, error) {
	return e.transition(ctx, transition{
		op:      "cancel_pending_payment",
		orderID: orderID,
		actor:   &actor,
		check: func(o *domain.Order) error {
			if err := authorize(actor, o, roleBuyer|roleAdmin); err != nil {
				return err
			}
			if o.Status != domain.OrderStatusPendingPayment {
				return errReplay
			}
			return nil
		},
		to:    domain.OrderStatusCancelledPayment,
		event: domain.EventOrderPaymentCanceled,
	})
}

// MarkShipped records the seller's shipment.
func (e *SettlementEngine) MarkShipped(ctx context.Context, actor ports.Actor, orderID uuid.UUID, trackingRef string) (*ports.TransitionResult, error) {
	if trackingRef == "" {
		return nil, apperror.Validation("tracking reference is required")
	}
	return e.transition(ctx, transition{
		op:      "mark_shipped",
		orderID: orderID,
		actor:   &actor,
		check:   authorizer(actor, roleSeller),
		from:    []domain.OrderStatus{domain.OrderStatusPaid},
		to:      domain.OrderStatusShipped,
		apply: func(_ context.Context, _ pgx.Tx, o *domain.Order) error {
			o.ShippingTrackingRef = &trackingRef
			o.ShippedAt = ptr(e.now())
			return nil
		},
		event: domain.EventOrderShipped,
	})
}

// MarkDelivered records delivery and opens the buyer's inspection window.
func (e *SettlementEngine) MarkDelivered(ctx context.Context, actor ports.Actor, orderID uuid.UUID) (*ports.TransitionResult, error) {
	return e.transition(ctx, transition{
		op:      "mark_delivered",
		orderID: orderID,
		actor:   &actor,
		check:   authorizer(actor, roleSeller|roleAdmin),
		from:    []domain.OrderStatus{domain.OrderStatusShipped},
		to:      domain.OrderStatusDelivered,
		apply: func(_ context.Context, _ pgx.Tx, o *domain.Order) error {
			now := e.now()
			o.DeliveredAt = &now
			o.InspectionEndsAt = ptr(now.Add(e.policy.InspectionWindow))
			return nil
		},
		event: domain.EventOrderDelivered,
	})
}

// BuyerConfirmCompletion completes the order and credits the seller's pending balance
// in the same transaction.
func (e *SettlementEngine) BuyerConfirmCompletion(ctx context.Context, actor ports.Actor, orderID uuid.UUID) (*ports.TransitionResult, error) {
	return e.transition(ctx, transition{
		op:      "buyer_confirm_completion",
		orderID: orderID,
		actor:   &actor,
		check: func(o *domain.Order) error {
			if err := authorize(actor, o, roleBuyer); err != nil {
				return err
			}
			if o.Status == domain.OrderStatusCompleted {
				return apperror.ErrAlreadyProcessed("order already completed")
			}
			return nil
		},
		from:   []domain.OrderStatus{domain.OrderStatusDelivered, domain.OrderStatusIssueReported},
		to:     domain.OrderStatusCompleted,
		apply:  e.complete,
		event:  domain.EventOrderCompleted,
		amount: sellerNet,
	})
}

// AttemptAutoComplete completes a delivered order whose inspection window ran out.
// Safe to call repeatedly.
func (e *SettlementEngine) AttemptAutoComplete(ctx context.Context, orderID uuid.UUID) (*ports.TransitionResult, error) {
	return e.transition(ctx, transition{
		op:      "auto_complete",
		orderID: orderID,
		check: func(o *domain.Order) error {
			if o.Status == domain.OrderStatusCompleted {
				return errReplay
			}
			return nil
		},
		from: []domain.OrderStatus{domain.OrderStatusDelivered},
		guard: func(o *domain.Order) error {
			if o.InspectionEndsAt == nil || e.now().Before(*o.InspectionEndsAt) {
				return apperror.ErrInspectionWindowOpen()
			}
			return nil
		},
		to:     domain.OrderStatusCompleted,
		apply:  e.complete,
		event:  domain.EventOrderCompleted,
		amount: sellerNet,
	})
}

// ReportIssue pauses auto-completion while the buyer raises a problem.
func (e *SettlementEngine) ReportIssue(ctx context.Context, actor ports.Actor, orderID uuid.UUID, reason string) (*ports.TransitionResult, error) {
	if reason == "" {
		return nil, apperror.Validation("reason is required")
	}
	return e.transition(ctx, transition{
		op:      "report_issue",
		orderID: orderID,
		actor:   &actor,
		check:   authorizer(actor, roleBuyer),
		from:    []domain.OrderStatus{domain.OrderStatusShipped, domain.OrderStatusDelivered},
		to:      domain.OrderStatusIssueReported,
		apply: func(_ context.Context, _ pgx.Tx, o *domain.Order) error {
			o.IssueReason = &reason
			return nil
		},
		event: domain.EventOrderIssueReported,
	})
}

// complete credits the seller once and stamps the completion time.
func (e *SettlementEngine) complete(ctx context.Context, tx pgx.Tx, o *domain.Order) error {
	if !o.WalletCredited {
		if err := e.ledger.CreditPending(ctx, tx, o.SellerID, o.SellerNetCents, o.ID); err != nil {
			return err
		}
		o.WalletCredited = true
	}
	if o.CompletedAt == nil {
		o.CompletedAt = ptr(e.now())
	}
	return nil
}

func sellerNet(o *domain.Order) int64 { return o.SellerNetCents }
