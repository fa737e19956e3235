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

const walletColumns = `id, seller_id, available_cents, pending_cents, lifetime_earnings_cents,
	payout_locked, payout_locked_at, payout_destination, version, created_at, updated_at`

// WalletRepo implements ports.WalletRepository.
type WalletRepo struct {
	pool Pool
}

// NewWalletRepo creates a new WalletRepo.
func NewWalletRepo(pool Pool) *WalletRepo {
	return &WalletRepo{pool: pool}
}

func scanWallet(row pgx.Row) (*domain.Wallet, error) {
	w := &domain.Wallet{}
	err := row.Scan(
		&w.ID, &w.SellerID, &w.AvailableCents, &w.PendingCents, &w.LifetimeEarningsCents,
		&w.PayoutLocked, &w.PayoutLockedAt, &w.PayoutDestination, &w.Version, &w.CreatedAt, &w.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return w, nil
}

// Create inserts the wallet; a seller that already has one keeps it.
func (r *WalletRepo) Create(ctx context.Context, tx pgx.Tx, w *domain.Wallet) error {
	query := `INSERT INTO wallets (` + walletColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (seller_id) DO NOTHING`

	_, err := conn(r.pool, tx).Exec(ctx, query,
		w.ID, w.SellerID, w.AvailableCents, w.PendingCents, w.LifetimeEarningsCents,
		w.PayoutLocked, w.PayoutLockedAt, w.PayoutDestination, w.Version, w.CreatedAt, w.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert wallet: %w", err)
	}
	return nil
}

// GetBySellerID fetches a wallet without locking.
func (r *WalletRepo) GetBySellerID(ctx context.Context, sellerID uuid.UUID) (*domain.Wallet, error) {
	query := `SELECT ` + walletColumns + ` FROM wallets WHERE seller_id = $1`

	w, err := scanWallet(r.pool.QueryRow(ctx, query, sellerID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get wallet by seller: %w", err)
	}
	return w, nil
}

// GetBySellerIDForUpdate fetches a wallet with pessimistic locking.
// This MUST be called within a transaction.
func (r *WalletRepo) GetBySellerIDForUpdate(ctx context.Context, tx pgx.Tx, sellerID uuid.UUID) (*domain.Wallet, error) {
	query := `SELECT ` + walletColumns + ` FROM wallets WHERE seller_id = $1 FOR UPDATE`

	w, err := scanWallet(tx.QueryRow(ctx, query, sellerID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get wallet for update: %w", err)
	}
	return w, nil
}

// UpdateBalances writes balances and version within a transaction.
func (r *WalletRepo) UpdateBalances(ctx context.Context, tx pgx.Tx, w *domain.Wallet) error {
	query := `UPDATE wallets
		SET available_cents = $1, pending_cents = $2, lifetime_earnings_cents = $3, version = $4, updated_at = $5
		WHERE seller_id = $6`

	tag, err := conn(r.pool, tx).Exec(ctx, query,
		w.AvailableCents, w.PendingCents, w.LifetimeEarningsCents, w.Version, w.UpdatedAt, w.SellerID)
	if err != nil {
		return fmt.Errorf("update wallet balances: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("wallet not found for seller: %s", w.SellerID)
	}
	return nil
}

// LockForPayout sets payout_locked only if it is clear, so exactly one caller wins.
// The winner gets the row as it was locked; a loser gets nil.
func (r *WalletRepo) LockForPayout(ctx context.Context, sellerID uuid.UUID, at time.Time) (*domain.Wallet, error) {
	query := `UPDATE wallets SET payout_locked = TRUE, payout_locked_at = $1
		WHERE seller_id = $2 AND payout_locked = FALSE
		RETURNING ` + walletColumns

	w, err := scanWallet(r.pool.QueryRow(ctx, query, at, sellerID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("lock wallet for payout: %w", err)
	}
	return w, nil
}

// Unlock clears the payout lock. tx may be nil.
func (r *WalletRepo) Unlock(ctx context.Context, tx pgx.Tx, sellerID uuid.UUID) error {
	query := `UPDATE wallets SET payout_locked = FALSE, payout_locked_at = NULL WHERE seller_id = $1`

	tag, err := conn(r.pool, tx).Exec(ctx, query, sellerID)
	if err != nil {
		return fmt.Errorf("unlock wallet: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("wallet not found for seller: %s", sellerID)
	}
	return nil
}

// SetPayoutDestination stores the processor account, creating an empty wallet if needed.
func (r *WalletRepo) SetPayoutDestination(ctx context.Context, sellerID uuid.UUID, destination string) error {
	query := `INSERT INTO wallets (id, seller_id, payout_destination, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $4)
		ON CONFLICT (seller_id) DO UPDATE
		SET payout_destination = EXCLUDED.payout_destination, updated_at = EXCLUDED.updated_at`

	_, err := r.pool.Exec(ctx, query, uuid.New(), sellerID, destination, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("set payout destination: %w", err)
	}
	return nil
}
