package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"escrow-settlement/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const orderColumns = `id, display_number, listing_id, offer_id, buyer_id, seller_id,
	item_price_cents, shipping_cents, tax_cents, buyer_fee_cents, seller_net_cents,
	status, escrow_status, dispute_flag,
	processor_charge_ref, processor_transfer_ref, processor_refund_ref,
	shipping_tracking_ref, shipped_at, delivered_at, inspection_ends_at, completed_at, issue_reason,
	return_reason, return_started_at, return_tracking_ref, return_shipped_at, return_received,
	wallet_credited, settlement_key, settlement_attempts, settlement_tried_at,
	created_at, updated_at`

// OrderRepo implements ports.OrderRepository.
type OrderRepo struct {
	pool Pool
}

// NewOrderRepo creates a new OrderRepo.
func NewOrderRepo(pool Pool) *OrderRepo {
	return &OrderRepo{pool: pool}
}

func scanOrder(row pgx.Row) (*domain.Order, error) {
	o := &domain.Order{}
	err := row.Scan(
		&o.ID, &o.DisplayNumber, &o.ListingID, &o.OfferID, &o.BuyerID, &o.SellerID,
		&o.ItemPriceCents, &o.ShippingCents, &o.TaxCents, &o.BuyerFeeCents, &o.SellerNetCents,
		&o.Status, &o.EscrowStatus, &o.DisputeFlag,
		&o.ProcessorChargeRef, &o.ProcessorTransferRef, &o.ProcessorRefundRef,
		&o.ShippingTrackingRef, &o.ShippedAt, &o.DeliveredAt, &o.InspectionEndsAt, &o.CompletedAt, &o.IssueReason,
		&o.ReturnReason, &o.ReturnStartedAt, &o.ReturnTrackingRef, &o.ReturnShippedAt, &o.ReturnReceived,
		&o.WalletCredited, &o.SettlementKey, &o.SettlementAttempts, &o.SettlementTriedAt,
		&o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return o, nil
}

// Create inserts a new order. tx may be nil.
func (r *OrderRepo) Create(ctx context.Context, tx pgx.Tx, o *domain.Order) error {
	query := `INSERT INTO orders (` + orderColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16,
			$17, $18, $19, $20, $21, $22, $23, $24, $25, $26, $27, $28, $29, $30, $31,
			$32, $33, $34)`

	_, err := conn(r.pool, tx).Exec(ctx, query,
		o.ID, o.DisplayNumber, o.ListingID, o.OfferID, o.BuyerID, o.SellerID,
		o.ItemPriceCents, o.ShippingCents, o.TaxCents, o.BuyerFeeCents, o.SellerNetCents,
		o.Status, o.EscrowStatus, o.DisputeFlag,
		o.ProcessorChargeRef, o.ProcessorTransferRef, o.ProcessorRefundRef,
		o.ShippingTrackingRef, o.ShippedAt, o.DeliveredAt, o.InspectionEndsAt, o.CompletedAt, o.IssueReason,
		o.ReturnReason, o.ReturnStartedAt, o.ReturnTrackingRef, o.ReturnShippedAt, o.ReturnReceived,
		o.WalletCredited, o.SettlementKey, o.SettlementAttempts, o.SettlementTriedAt,
		o.CreatedAt, o.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

// GetByID fetches an order without locking.
func (r *OrderRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

	o, err := scanOrder(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get order by id: %w", err)
	}
	return o, nil
}

// GetByIDForUpdate fetches an order and locks its row until tx ends.
// This MUST be called within a transaction.
func (r *OrderRepo) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1 FOR UPDATE`

	o, err := scanOrder(tx.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get order for update: %w", err)
	}
	return o, nil
}

// Update writes every mutable column of the order.
func (r *OrderRepo) Update(ctx context.Context, tx pgx.Tx, o *domain.Order) error {
	query := `UPDATE orders SET
		status = $2, escrow_status = $3, dispute_flag = $4,
		processor_charge_ref = $5, processor_transfer_ref = $6, processor_refund_ref = $7,
		shipping_tracking_ref = $8, shipped_at = $9, delivered_at = $10, inspection_ends_at = $11,
		completed_at = $12, issue_reason = $13,
		return_reason = $14, return_started_at = $15, return_tracking_ref = $16,
		return_shipped_at = $17, return_received = $18,
		wallet_credited = $19,
		settlement_key = $20, settlement_attempts = $21, settlement_tried_at = $22,
		updated_at = $23
		WHERE id = $1`

	tag, err := conn(r.pool, tx).Exec(ctx, query,
		o.ID, o.Status, o.EscrowStatus, o.DisputeFlag,
		o.ProcessorChargeRef, o.ProcessorTransferRef, o.ProcessorRefundRef,
		o.ShippingTrackingRef, o.ShippedAt, o.DeliveredAt, o.InspectionEndsAt,
		o.CompletedAt, o.IssueReason,
		o.ReturnReason, o.ReturnStartedAt, o.ReturnTrackingRef,
		o.ReturnShippedAt, o.ReturnReceived,
		o.WalletCredited,
		o.SettlementKey, o.SettlementAttempts, o.SettlementTriedAt,
		o.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update order: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("order not found: %s", o.ID)
	}
	return nil
}

// ListDueForAutoCompletion returns delivered orders whose inspection window ended by before.
func (r *OrderRepo) ListDueForAutoCompletion(ctx context.Context, before time.Time, limit int) ([]uuid.UUID, error) {
	query := `SELECT id FROM orders
		WHERE status = $1 AND inspection_ends_at <= $2
		ORDER BY created_at LIMIT $3`
	return r.listIDs(ctx, "auto-completion", query, domain.OrderStatusDelivered, before, limitArg(limit))
}

// ListDueForRelease returns completed orders still holding escrow that completed
// by completedBefore and whose seller can receive a transfer. Orders claimed by
// a refund are skipped. Orders never tried come first, then the ones tried
// longest ago, so a failing order cannot pin a batch.
func (r *OrderRepo) ListDueForRelease(ctx context.Context, completedBefore time.Time, limit int) ([]uuid.UUID, error) {
	query := `SELECT o.id FROM orders o
		JOIN wallets w ON w.seller_id = o.seller_id
		WHERE o.status = $1 AND o.escrow_status = $2 AND o.completed_at <= $3
			AND COALESCE(w.payout_destination, '') <> ''
			AND (o.settlement_key IS NULL OR o.settlement_key LIKE $4)
		ORDER BY o.settlement_tried_at NULLS FIRST, o.completed_at LIMIT $5`
	return r.listIDs(ctx, "release", query,
		domain.OrderStatusCompleted, domain.EscrowHeld, completedBefore,
		domain.ReleaseKeyPrefix+"%", limitArg(limit))
}

// ListExpiredReturns returns return_started orders whose return began by startedBefore.
func (r *OrderRepo) ListExpiredReturns(ctx context.Context, startedBefore time.Time, limit int) ([]uuid.UUID, error) {
	query := `SELECT id FROM orders
		WHERE status = $1 AND return_started_at <= $2
		ORDER BY created_at LIMIT $3`
	return r.listIDs(ctx, "expired returns", query, domain.OrderStatusReturnStarted, startedBefore, limitArg(limit))
}

func (r *OrderRepo) listIDs(ctx context.Context, what, query string, args ...any) ([]uuid.UUID, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list orders due for %s: %w", what, err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan order id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order rows: %w", err)
	}
	return ids, nil
}

// OfferRepo implements ports.OfferRepository against the shared offers table.
type OfferRepo struct {
	pool Pool
}

// NewOfferRepo creates a new OfferRepo.
func NewOfferRepo(pool Pool) *OfferRepo {
	return &OfferRepo{pool: pool}
}

// ExpireOtherPending expires every pending offer on the listing except keep.
func (r *OfferRepo) ExpireOtherPending(ctx context.Context, tx pgx.Tx, listingID uuid.UUID, keep *uuid.UUID) (int64, error) {
	query := `UPDATE offers SET status = $1, updated_at = NOW()
		WHERE listing_id = $2 AND status = $3 AND ($4::uuid IS NULL OR id <> $4)`

	tag, err := conn(r.pool, tx).Exec(ctx, query,
		domain.OfferStatusExpired, listingID, domain.OfferStatusPending, keep)
	if err != nil {
		return 0, fmt.Errorf("expire competing offers: %w", err)
	}
	return tag.RowsAffected(), nil
}
