package service

import (
	"context"
	"fmt"

	"escrow-settlement/internal/core/domain"
	"escrow-settlement/internal/core/ports"
	"escrow-settlement/internal/tracing"
	"escrow-settlement/pkg/apperror"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Order states an admin may settle from. Disputed orders settle through ResolveDispute.
var adminSettleStates = []domain.OrderStatus{
	domain.OrderStatusPaid,
	domain.OrderStatusShipped,
	domain.OrderStatusDelivered,
	domain.OrderStatusIssueReported,
	domain.OrderStatusReturnStarted,
	domain.OrderStatusReturnProcessing,
	domain.OrderStatusCompleted,
}

// refundMove returns item, shipping and tax to the buyer. The buyer fee is kept.
func (e *SettlementEngine) refundMove() moneyMove {
	return moneyMove{
		escrow: domain.EscrowRefunded,
		amount: func(o *domain.Order) int64 { return o.RefundableCents() },
		key:    func(o *domain.Order) string { return settlementKey(domain.RefundKeyPrefix, o) },
		wallet: func(o *domain.Order) bool { return o.WalletCredited },
		call: func(ctx context.Context, o *domain.Order, amount int64, key string) (string, error) {
			var refundID string
			err := observeLedger(ctx, "refund", func(ctx context.Context) error {
				res, err := e.processor.Refund(ctx, ports.LedgerRefundRequest{
					ChargeRef:      o.ProcessorChargeRef,
					AmountCents:    amount,
					IdempotencyKey: key,
				})
				if err != nil {
					return err
				}
				if !refundAccepted(res.Status) {
					return rejectedStatus("refund", res.RefundID, res.Status)
				}
				refundID = res.RefundID
				return nil
			}, tracing.OrderID(o.ID.String()), tracing.AmountCents(amount), tracing.IdempotencyKey(key))
			if err != nil {
				return "", apperror.ErrExternalLedger("refund", err)
			}
			return refundID, nil
		},
	}
}

// releaseMove transfers the seller's net from the charge to their connected account.
func (e *SettlementEngine) releaseMove() moneyMove {
	return moneyMove{
		escrow: domain.EscrowReleased,
		amount: sellerNet,
		key:    func(o *domain.Order) string { return settlementKey(domain.ReleaseKeyPrefix, o) },
		wallet: func(*domain.Order) bool { return true },
		call: func(ctx context.Context, o *domain.Order, amount int64, key string) (string, error) {
			wallet, err := e.wallets.GetBySellerID(ctx, o.SellerID)
			if err != nil {
				return "", apperror.InternalError(fmt.Errorf("get wallet: %w", err))
			}
			if wallet == nil || wallet.PayoutDestination == nil || *wallet.PayoutDestination == "" {
				return "", apperror.ErrMissingProcessorRef("seller payout destination")
			}

			var transferID string
			err = observeLedger(ctx, "transfer", func(ctx context.Context) error {
				res, err := e.processor.Transfer(ctx, ports.LedgerTransferRequest{
					AmountCents:           amount,
					DestinationAccountRef: *wallet.PayoutDestination,
					SourceRef:             o.ProcessorChargeRef,
					IdempotencyKey:        key,
				})
				if err != nil {
					return err
				}
				transferID = res.TransferID
				return nil
			}, tracing.OrderID(o.ID.String()), tracing.AmountCents(amount), tracing.IdempotencyKey(key))
			if err != nil {
				return "", apperror.ErrExternalLedger("transfer", err)
			}
			return transferID, nil
		},
	}
}

// reverseCredit takes back the seller's pending credit if the order had one.
// The flag flip and the reversal row commit together.
func (e *SettlementEngine) reverseCredit(ctx context.Context, tx pgx.Tx, o *domain.Order) error {
	if !o.WalletCredited {
		return nil
	}
	if err := e.ledger.ReversePending(ctx, tx, o.SellerID, o.SellerNetCents, o.ID); err != nil {
		return err
	}
	o.WalletCredited = false
	return nil
}

// creditAndRelease makes the seller's net available, crediting pending first
// when the order never completed normally.
func (e *SettlementEngine) creditAndRelease(ctx context.Context, tx pgx.Tx, o *domain.Order) error {
	if err := e.complete(ctx, tx, o); err != nil {
		return err
	}
	return e.ledger.MoveToAvailable(ctx, tx, o.SellerID, o.SellerNetCents, o.ID)
}

// AdminRefund refunds a held escrow outside the dispute flow.
func (e *SettlementEngine) AdminRefund(ctx context.Context, actor ports.Actor, orderID uuid.UUID, notes string) (*ports.TransitionResult, error) {
	res, err := e.settle(ctx, transition{
		op:      "admin_refund",
		orderID: orderID,
		actor:   &actor,
		check:   authorizer(actor, roleAdmin),
		from:    adminSettleStates,
		to:      domain.OrderStatusRefunded,
		apply:   e.reverseCredit,
		event:   domain.EventOrderRefunded,
	}, e.refundMove())
	if err != nil {
		return nil, err
	}
	e.log.Info().Str("order_id", orderID.String()).Str("admin_id", actor.UserID.String()).Str("notes", notes).Msg("admin refund")
	return res, nil
}

// AdminRelease releases a held escrow to the seller and completes the order.
func (e *SettlementEngine) AdminRelease(ctx context.Context, actor ports.Actor, orderID uuid.UUID, notes string) (*ports.TransitionResult, error) {
	res, err := e.settle(ctx, transition{
		op:      "admin_release",
		orderID: orderID,
		actor:   &actor,
		check:   authorizer(actor, roleAdmin),
		from:    adminSettleStates,
		to:      domain.OrderStatusCompleted,
		apply:   e.creditAndRelease,
		event:   domain.EventEscrowReleased,
	}, e.releaseMove())
	if err != nil {
		return nil, err
	}
	e.log.Info().Str("order_id", orderID.String()).Str("admin_id", actor.UserID.String()).Str("notes", notes).Msg("admin release")
	return res, nil
}

// ReleaseEscrow pays out a completed order once its clearing period is over.
// Called by the scheduler; a released order reports AlreadyProcessed.
func (e *SettlementEngine) ReleaseEscrow(ctx context.Context, orderID uuid.UUID) (*ports.TransitionResult, error) {
	return e.settle(ctx, transition{
		op:      "release_escrow",
		orderID: orderID,
		from:    []domain.OrderStatus{domain.OrderStatusCompleted},
		guard: func(o *domain.Order) error {
			if o.CompletedAt == nil || e.now().Before(o.CompletedAt.Add(e.policy.ClearingPeriod)) {
				return apperror.ErrInvalidTransition("release_escrow during clearing period", string(o.Status))
			}
			return nil
		},
		apply: e.creditAndRelease,
		event: domain.EventEscrowReleased,
	}, e.releaseMove())
}
