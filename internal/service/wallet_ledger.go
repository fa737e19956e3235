package service

import (
	"context"
	"fmt"
	"time"

	"escrow-settlement/internal/core/domain"
	"escrow-settlement/internal/core/ports"
	"escrow-settlement/pkg/apperror"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// WalletLedger applies balance mutations inside a transaction owned by the caller,
// so the balance write and its log rows commit together with the order update.
type WalletLedger struct {
	wallets ports.WalletRepository
	txns    ports.WalletTransactionRepository
	log     zerolog.Logger
}

// NewWalletLedger creates a new WalletLedger.
func NewWalletLedger(wallets ports.WalletRepository, txns ports.WalletTransactionRepository, log zerolog.Logger) *WalletLedger {
	return &WalletLedger{wallets: wallets, txns: txns, log: log}
}

type ledgerEntry struct {
	kind        domain.WalletTxKind
	bucket      domain.Bucket
	direction   domain.Direction
	description string
}

// CreditPending adds a completed order's seller net to pending and lifetime earnings.
// The wallet is created on first credit.
func (l *WalletLedger) CreditPending(ctx context.Context, tx pgx.Tx, sellerID uuid.UUID, amountCents int64, orderID uuid.UUID) error {
	return l.apply(ctx, tx, sellerID, amountCents, mutation{
		create:  true,
		orderID: &orderID,
		entries: []ledgerEntry{{
			kind: domain.WalletTxCredit, bucket: domain.BucketPending, direction: domain.DirectionCredit,
			description: fmt.Sprintf("sale credited for order %s", orderID),
		}},
	})
}

// ReversePending takes back a pending credit after a refund.
// Callers flip the order's WalletCredited flag in the same transaction.
func (l *WalletLedger) ReversePending(ctx context.Context, tx pgx.Tx, sellerID uuid.UUID, amountCents int64, orderID uuid.UUID) error {
	return l.apply(ctx, tx, sellerID, amountCents, mutation{
		orderID: &orderID,
		entries: []ledgerEntry{{
			kind: domain.WalletTxReversal, bucket: domain.BucketPending, direction: domain.DirectionDebit,
			description: fmt.Sprintf("refund reversal for order %s", orderID),
		}},
	})
}

// MoveToAvailable shifts a released order's net from pending to available.
func (l *WalletLedger) MoveToAvailable(ctx context.Context, tx pgx.Tx, sellerID uuid.UUID, amountCents int64, orderID uuid.UUID) error {
	desc := fmt.Sprintf("escrow released for order %s", orderID)
	return l.apply(ctx, tx, sellerID, amountCents, mutation{
		orderID: &orderID,
		entries: []ledgerEntry{
			{kind: domain.WalletTxRelease, bucket: domain.BucketPending, direction: domain.DirectionDebit, description: desc},
			{kind: domain.WalletTxRelease, bucket: domain.BucketAvailable, direction: domain.DirectionCredit, description: desc},
		},
	})
}

// Withdraw debits available for a payout. The caller must own the payout lock.
func (l *WalletLedger) Withdraw(ctx context.Context, tx pgx.Tx, sellerID uuid.UUID, amountCents int64, payoutID uuid.UUID) error {
	return l.apply(ctx, tx, sellerID, amountCents, mutation{
		payoutID:  &payoutID,
		holdsLock: true,
		entries: []ledgerEntry{{
			kind: domain.WalletTxWithdrawal, bucket: domain.BucketAvailable, direction: domain.DirectionDebit,
			description: fmt.Sprintf("payout %s", payoutID),
		}},
	})
}

type mutation struct {
	create    bool
	holdsLock bool
	orderID   *uuid.UUID
	payoutID  *uuid.UUID
	entries   []ledgerEntry
}

func (l *WalletLedger) apply(ctx context.Context, tx pgx.Tx, sellerID uuid.UUID, amountCents int64, m mutation) error {
	if amountCents <= 0 {
		return apperror.ErrInvalidAmount()
	}

	wallet, err := l.wallets.GetBySellerIDForUpdate(ctx, tx, sellerID)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("lock wallet: %w", err))
	}
	if wallet == nil {
		if !m.create {
			return apperror.ErrNotFound("wallet")
		}
		if wallet, err = l.createWallet(ctx, tx, sellerID); err != nil {
			return err
		}
	}

	// A payout in flight owns the balances until it unlocks.
	if wallet.PayoutLocked != m.holdsLock {
		if wallet.PayoutLocked {
			return apperror.ErrWalletBusy()
		}
		return apperror.InternalError(fmt.Errorf("withdraw from wallet %s without payout lock", wallet.ID))
	}

	for _, e := range m.entries {
		delta := amountCents
		if e.direction == domain.DirectionDebit {
			delta = -amountCents
		}
		switch e.bucket {
		case domain.BucketPending:
			wallet.PendingCents += delta
		case domain.BucketAvailable:
			wallet.AvailableCents += delta
		}
		if e.kind == domain.WalletTxCredit {
			wallet.LifetimeEarningsCents += amountCents
		}
	}
	if wallet.PendingCents < 0 || wallet.AvailableCents < 0 {
		return apperror.ErrInsufficientFunds()
	}

	now := time.Now().UTC()
	wallet.Version++
	wallet.UpdatedAt = now
	if err := l.wallets.UpdateBalances(ctx, tx, wallet); err != nil {
		return apperror.InternalError(fmt.Errorf("update balances: %w", err))
	}

	for _, e := range m.entries {
		row := &domain.WalletTransaction{
			ID:          uuid.New(),
			WalletID:    wallet.ID,
			SellerID:    sellerID,
			Kind:        e.kind,
			Bucket:      e.bucket,
			Direction:   e.direction,
			AmountCents: amountCents,
			Status:      domain.WalletTxStatusCompleted,
			Description: e.description,
			OrderID:     m.orderID,
			PayoutID:    m.payoutID,
			CreatedAt:   now,
		}
		if err := l.txns.Create(ctx, tx, row); err != nil {
			return apperror.InternalError(fmt.Errorf("append wallet transaction: %w", err))
		}
	}

	l.log.Debug().
		Str("seller_id", sellerID.String()).
		Str("kind", string(m.entries[0].kind)).
		Int64("amount", amountCents).
		Int64("version", wallet.Version).
		Msg("wallet updated")
	return nil
}

func (l *WalletLedger) createWallet(ctx context.Context, tx pgx.Tx, sellerID uuid.UUID) (*domain.Wallet, error) {
	now := time.Now().UTC()
	if err := l.wallets.Create(ctx, tx, &domain.Wallet{
		ID:        uuid.New(),
		SellerID:  sellerID,
		CreatedAt: now,
		UpdatedAt: now,
	}); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("create wallet: %w", err))
	}
	// Re-read under lock; a concurrent first credit may have won the insert.
	wallet, err := l.wallets.GetBySellerIDForUpdate(ctx, tx, sellerID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("lock wallet: %w", err))
	}
	if wallet == nil {
		return nil, apperror.InternalError(fmt.Errorf("wallet for seller %s missing after create", sellerID))
	}
	return wallet, nil
}

// walletService implements ports.WalletService.
type walletService struct {
	wallets ports.WalletRepository
	txns    ports.WalletTransactionRepository
	payouts ports.PayoutRepository
}

// NewWalletService creates the read side of the wallet ledger.
func NewWalletService(
	wallets ports.WalletRepository,
	txns ports.WalletTransactionRepository,
	payouts ports.PayoutRepository,
) ports.WalletService {
	return &walletService{wallets: wallets, txns: txns, payouts: payouts}
}

const recentPayoutsLimit = 10

// Summary returns balances and recent payouts. Sellers without a wallet get zero balances.
func (s *walletService) Summary(ctx context.Context, sellerID uuid.UUID) (*ports.WalletSummary, error) {
	wallet, err := s.wallets.GetBySellerID(ctx, sellerID)
	if err != nil {
		return nil, apperror.InternalError(err)
	}
	summary := &ports.WalletSummary{SellerID: sellerID, RecentPayouts: []domain.Payout{}}
	if wallet == nil {
		return summary, nil
	}
	summary.Balances = wallet.Balances()
	summary.PayoutLocked = wallet.PayoutLocked
	summary.HasPayoutDest = wallet.PayoutDestination != nil && *wallet.PayoutDestination != ""

	payouts, err := s.payouts.ListBySellerID(ctx, sellerID, recentPayoutsLimit)
	if err != nil {
		return nil, apperror.InternalError(err)
	}
	if payouts != nil {
		summary.RecentPayouts = payouts
	}
	return summary, nil
}

// ListTransactions returns a page of the seller's log, newest first.
func (s *walletService) ListTransactions(ctx context.Context, params ports.WalletTxListParams) ([]domain.WalletTransaction, int64, error) {
	if params.Page < 1 {
		params.Page = 1
	}
	if params.PageSize < 1 || params.PageSize > 100 {
		params.PageSize = 20
	}
	txns, total, err := s.txns.List(ctx, params)
	if err != nil {
		return nil, 0, apperror.InternalError(err)
	}
	return txns, total, nil
}

// Verify folds the transaction log and compares it with the stored balances.
func (s *walletService) Verify(ctx context.Context, sellerID uuid.UUID) (*ports.LedgerCheck, error) {
	wallet, err := s.wallets.GetBySellerID(ctx, sellerID)
	if err != nil {
		return nil, apperror.InternalError(err)
	}
	if wallet == nil {
		return nil, apperror.ErrNotFound("wallet")
	}
	txns, err := s.txns.ListAll(ctx, sellerID)
	if err != nil {
		return nil, apperror.InternalError(err)
	}
	folded := domain.FoldTransactions(txns)
	stored := wallet.Balances()
	return &ports.LedgerCheck{
		SellerID:      sellerID,
		Stored:        stored,
		Reconstructed: folded,
		Entries:       len(txns),
		Consistent:    stored == folded,
	}, nil
}

// SetPayoutDestination records the seller's processor connected account.
func (s *walletService) SetPayoutDestination(ctx context.Context, sellerID uuid.UUID, destination string) error {
	if destination == "" {
		return apperror.Validation("destination is required")
	}
	if err := s.wallets.SetPayoutDestination(ctx, sellerID, destination); err != nil {
		return apperror.InternalError(err)
	}
	return nil
}
