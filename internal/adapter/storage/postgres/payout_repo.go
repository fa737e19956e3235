package postgres

import (
	"context"
	"fmt"

	"escrow-settlement/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const payoutColumns = `id, wallet_id, seller_id, gross_cents, fee_cents, net_cents,
	method, external_payout_ref, fee_transfer_ref, status, created_at`

// PayoutRepo implements ports.PayoutRepository.
type PayoutRepo struct {
	pool Pool
}

// NewPayoutRepo creates a new PayoutRepo.
func NewPayoutRepo(pool Pool) *PayoutRepo {
	return &PayoutRepo{pool: pool}
}

// Create inserts a payout record.
func (r *PayoutRepo) Create(ctx context.Context, tx pgx.Tx, p *domain.Payout) error {
	query := `INSERT INTO payouts (` + payoutColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err := conn(r.pool, tx).Exec(ctx, query,
		p.ID, p.WalletID, p.SellerID, p.GrossCents, p.FeeCents, p.NetCents,
		p.Method, p.ExternalPayoutRef, p.FeeTransferRef, p.Status, p.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert payout: %w", err)
	}
	return nil
}

// ListBySellerID returns the seller's most recent payouts first.
func (r *PayoutRepo) ListBySellerID(ctx context.Context, sellerID uuid.UUID, limit int) ([]domain.Payout, error) {
	query := `SELECT ` + payoutColumns + ` FROM payouts
		WHERE seller_id = $1 ORDER BY created_at DESC LIMIT $2`

	rows, err := r.pool.Query(ctx, query, sellerID, limitArg(limit))
	if err != nil {
		return nil, fmt.Errorf("list payouts: %w", err)
	}
	defer rows.Close()

	var out []domain.Payout
	for rows.Next() {
		p := domain.Payout{}
		err := rows.Scan(
			&p.ID, &p.WalletID, &p.SellerID, &p.GrossCents, &p.FeeCents, &p.NetCents,
			&p.Method, &p.ExternalPayoutRef, &p.FeeTransferRef, &p.Status, &p.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan payout row: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate payout rows: %w", err)
	}
	return out, nil
}
