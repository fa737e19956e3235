package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PayoutMethod selects how fast funds reach the seller.
type PayoutMethod string

const (
	PayoutMethodStandard PayoutMethod = "standard"
	PayoutMethodInstant  PayoutMethod = "instant"
)

// Valid reports whether m is a known method.
func (m PayoutMethod) Valid() bool {
	return m == PayoutMethodStandard || m == PayoutMethodInstant
}

// Payout is one execution of the payout executor. Immutable once written.
type Payout struct {
	ID                uuid.UUID    `json:"id"`
	WalletID          uuid.UUID    `json:"wallet_id"`
	SellerID          uuid.UUID    `json:"seller_id"`
	GrossCents        int64        `json:"gross_cents"`
	FeeCents          int64        `json:"fee_cents"`
	NetCents          int64        `json:"net_cents"`
	Method            PayoutMethod `json:"method"`
	ExternalPayoutRef string       `json:"external_payout_ref"`
	FeeTransferRef    *string      `json:"fee_transfer_ref,omitempty"`
	Status            string       `json:"status"`
	CreatedAt         time.Time    `json:"created_at"`
}

// FeePolicy prices instant payouts. Standard payouts are free.
type FeePolicy struct {
	InstantRate     decimal.Decimal
	InstantMinCents int64
	InstantMaxCents int64
}

// DefaultFeePolicy is 3% with a 75 cent floor and a 25 dollar cap.
func DefaultFeePolicy() FeePolicy {
	return FeePolicy{
		InstantRate:     decimal.RequireFromString("0.03"),
		InstantMinCents: 75,
		InstantMaxCents: 2500,
	}
}

// Fee returns the fee charged for moving amountCents with method.
func (p FeePolicy) Fee(method PayoutMethod, amountCents int64) int64 {
	if method != PayoutMethodInstant {
		return 0
	}
	fee := decimal.NewFromInt(amountCents).Mul(p.InstantRate).Round(0).IntPart()
	if fee < p.InstantMinCents {
		fee = p.InstantMinCents
	}
	if p.InstantMaxCents > 0 && fee > p.InstantMaxCents {
		fee = p.InstantMaxCents
	}
	return fee
}
