package domain

import (
	"time"

	"github.com/google/uuid"
)

// Wallet holds a seller's balances. All amounts are non-negative cents.
type Wallet struct {
	ID                    uuid.UUID  `json:"id"`
	SellerID              uuid.UUID  `json:"seller_id"`
	AvailableCents        int64      `json:"available_cents"`
	PendingCents          int64      `json:"pending_cents"`
	LifetimeEarningsCents int64      `json:"lifetime_earnings_cents"`
	PayoutLocked          bool       `json:"payout_locked"`
	PayoutLockedAt        *time.Time `json:"payout_locked_at,omitempty"`
	PayoutDestination     *string    `json:"-"` // processor connected account
	Version               int64      `json:"version"`
	CreatedAt             time.Time  `json:"created_at"`
	UpdatedAt             time.Time  `json:"updated_at"`
}

// Balances returns the wallet's stored balances.
func (w *Wallet) Balances() Balances {
	return Balances{
		AvailableCents:        w.AvailableCents,
		PendingCents:          w.PendingCents,
		LifetimeEarningsCents: w.LifetimeEarningsCents,
	}
}

// Clone returns a deep copy.
func (w *Wallet) Clone() *Wallet {
	c := *w
	c.PayoutLockedAt = clonePtr(w.PayoutLockedAt)
	c.PayoutDestination = clonePtr(w.PayoutDestination)
	return &c
}

// WalletTxKind is the business reason for a ledger entry.
type WalletTxKind string

const (
	WalletTxCredit     WalletTxKind = "credit"
	WalletTxReversal   WalletTxKind = "reversal"
	WalletTxRelease    WalletTxKind = "release"
	WalletTxWithdrawal WalletTxKind = "withdrawal"
)

// Bucket is the balance a ledger entry applies to.
type Bucket string

const (
	BucketPending   Bucket = "pending"
	BucketAvailable Bucket = "available"
)

// Direction is the sign of a ledger entry.
type Direction string

const (
	DirectionCredit Direction = "credit"
	DirectionDebit  Direction = "debit"
)

const WalletTxStatusCompleted = "completed"

// WalletTransaction is an append-only ledger row. Never mutated after insert.
type WalletTransaction struct {
	ID          uuid.UUID    `json:"id"`
	WalletID    uuid.UUID    `json:"wallet_id"`
	SellerID    uuid.UUID    `json:"seller_id"`
	Kind        WalletTxKind `json:"kind"`
	Bucket      Bucket       `json:"bucket"`
	Direction   Direction    `json:"direction"`
	AmountCents int64        `json:"amount_cents"`
	Status      string       `json:"status"`
	Description string       `json:"description"`
	OrderID     *uuid.UUID   `json:"order_id,omitempty"`
	PayoutID    *uuid.UUID   `json:"payout_id,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
}

// Balances is a wallet's three balances, either stored or folded from the log.
type Balances struct {
	AvailableCents        int64 `json:"available_cents"`
	PendingCents          int64 `json:"pending_cents"`
	LifetimeEarningsCents int64 `json:"lifetime_earnings_cents"`
}

// FoldTransactions rebuilds balances from a wallet's ledger rows.
// Lifetime earnings count every credit-kind row; buckets net credits against debits.
func FoldTransactions(txns []WalletTransaction) Balances {
	var b Balances
	for _, t := range txns {
		amount := t.AmountCents
		if t.Direction == DirectionDebit {
			amount = -amount
		}
		switch t.Bucket {
		case BucketPending:
			b.PendingCents += amount
		case BucketAvailable:
			b.AvailableCents += amount
		}
		if t.Kind == WalletTxCredit {
			b.LifetimeEarningsCents += t.AmountCents
		}
	}
	return b
}
