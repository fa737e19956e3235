package ports

import (
	"context"
	"errors"

	"escrow-settlement/internal/core/domain"
)

// ErrLedgerDeclined marks a definite rejection: the processor refused the request
// and moved no money. A declined request replays its refusal for the same
// idempotency key, so a retry needs a new key.
var ErrLedgerDeclined = errors.New("declined by payment processor")

// LedgerClient is the payment processor. A call may succeed, be declined, or
// leave an ambiguous state. Errors not wrapping ErrLedgerDeclined are ambiguous
// and may only be retried with the same idempotency key.
type LedgerClient interface {
	Refund(ctx context.Context, req LedgerRefundRequest) (*LedgerRefundResult, error)
	Transfer(ctx context.Context, req LedgerTransferRequest) (*LedgerTransferResult, error)
	Payout(ctx context.Context, req LedgerPayoutRequest) (*LedgerPayoutResult, error)
}

// LedgerRefundRequest refunds part or all of a captured charge.
type LedgerRefundRequest struct {
	ChargeRef      string
	AmountCents    int64
	IdempotencyKey string
}

// LedgerRefundResult is the processor's answer to a refund.
type LedgerRefundResult struct {
	RefundID string
	Status   string
}

// LedgerTransferRequest moves funds between the platform and a connected account.
type LedgerTransferRequest struct {
	AmountCents           int64
	DestinationAccountRef string
	SourceRef             string // charge the funds came from, optional
	FromAccountRef        string // connected account to debit; empty debits the platform
	IdempotencyKey        string
}

// LedgerTransferResult is the processor's answer to a transfer.
type LedgerTransferResult struct {
	TransferID string
}

// LedgerPayoutRequest pays a connected account's balance out to its bank or card.
type LedgerPayoutRequest struct {
	AmountCents           int64
	DestinationAccountRef string
	Method                domain.PayoutMethod
	IdempotencyKey        string
}

// LedgerPayoutResult is the processor's answer to a payout.
type LedgerPayoutResult struct {
	PayoutID string
	Status   string
}
