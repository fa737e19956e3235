package ports

import (
	"context"
	"time"

	"escrow-settlement/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// OrderRepository defines persistence operations for orders.
// Methods accepting pgx.Tx are used inside transaction blocks for pessimistic locking.
type OrderRepository interface {
	Create(ctx context.Context, tx pgx.Tx, order *domain.Order) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Order, error)
	Update(ctx context.Context, tx pgx.Tx, order *domain.Order) error
	// Scheduler queries. Each returns at most limit order IDs.
	ListDueForAutoCompletion(ctx context.Context, before time.Time, limit int) ([]uuid.UUID, error)
	ListDueForRelease(ctx context.Context, completedBefore time.Time, limit int) ([]uuid.UUID, error)
	ListExpiredReturns(ctx context.Context, startedBefore time.Time, limit int) ([]uuid.UUID, error)
}

// OfferRepository touches the listing offers owned by the offers collaborator.
type OfferRepository interface {
	// ExpireOtherPending expires pending offers on listingID except keep. Returns rows affected.
	ExpireOtherPending(ctx context.Context, tx pgx.Tx, listingID uuid.UUID, keep *uuid.UUID) (int64, error)
}

// DisputeRepository defines persistence operations for disputes.
type DisputeRepository interface {
	Create(ctx context.Context, tx pgx.Tx, dispute *domain.Dispute) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Dispute, error)
	GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Dispute, error)
	// GetOpenByOrderID returns the unresolved dispute for the order, or nil.
	GetOpenByOrderID(ctx context.Context, tx pgx.Tx, orderID uuid.UUID) (*domain.Dispute, error)
	ListByOrderID(ctx context.Context, orderID uuid.UUID) ([]domain.Dispute, error)
	Update(ctx context.Context, tx pgx.Tx, dispute *domain.Dispute) error
}

// WalletRepository defines persistence operations for seller wallets.
type WalletRepository interface {
	// Create inserts the wallet unless the seller already has one.
	Create(ctx context.Context, tx pgx.Tx, wallet *domain.Wallet) error
	GetBySellerID(ctx context.Context, sellerID uuid.UUID) (*domain.Wallet, error)
	GetBySellerIDForUpdate(ctx context.Context, tx pgx.Tx, sellerID uuid.UUID) (*domain.Wallet, error)
	// UpdateBalances writes balances and version.
	UpdateBalances(ctx context.Context, tx pgx.Tx, wallet *domain.Wallet) error
	// LockForPayout flips payout_locked false->true and returns the row as locked.
	// Returns nil if the wallet is missing or already locked.
	LockForPayout(ctx context.Context, sellerID uuid.UUID, at time.Time) (*domain.Wallet, error)
	// Unlock clears payout_locked. tx may be nil to run outside a transaction.
	Unlock(ctx context.Context, tx pgx.Tx, sellerID uuid.UUID) error
	SetPayoutDestination(ctx context.Context, sellerID uuid.UUID, destination string) error
}

// WalletTransactionRepository is the append-only wallet ledger.
type WalletTransactionRepository interface {
	Create(ctx context.Context, tx pgx.Tx, txn *domain.WalletTransaction) error
	List(ctx context.Context, params WalletTxListParams) ([]domain.WalletTransaction, int64, error)
	ListAll(ctx context.Context, sellerID uuid.UUID) ([]domain.WalletTransaction, error)
}

// WalletTxListParams holds filter + pagination for listing ledger rows.
type WalletTxListParams struct {
	SellerID uuid.UUID
	Kind     *domain.WalletTxKind
	Page     int
	PageSize int
}

// PayoutRepository defines persistence for payout records.
type PayoutRepository interface {
	Create(ctx context.Context, tx pgx.Tx, payout *domain.Payout) error
	ListBySellerID(ctx context.Context, sellerID uuid.UUID, limit int) ([]domain.Payout, error)
}

// ReconciliationRepository stores cases needing operator review.
// Writes happen outside any transaction because the transaction is what failed.
type ReconciliationRepository interface {
	Create(ctx context.Context, c *domain.ReconciliationCase) error
	ListOpen(ctx context.Context, limit int) ([]domain.ReconciliationCase, error)
	// Resolve closes an open case. Returns false if no open case has that id.
	Resolve(ctx context.Context, id uuid.UUID, resolvedBy uuid.UUID, notes string) (bool, error)
}

// AuditRepository persists audit entries.
type AuditRepository interface {
	Create(ctx context.Context, log *domain.AuditLog) error
}

// DBTransactor provides database transaction management.
type DBTransactor interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}
