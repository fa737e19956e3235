package ports

import (
	"context"
	"time"

	"escrow-settlement/internal/core/domain"

	"github.com/google/uuid"
)

// Actor is the verified caller supplied by the identity collaborator.
type Actor struct {
	UserID  uuid.UUID
	IsAdmin bool
}

// TransitionResult is returned by every settlement operation.
// Replayed is set when the request matched a transition that had already happened.
type TransitionResult struct {
	Order    *domain.Order   `json:"order"`
	Dispute  *domain.Dispute `json:"dispute,omitempty"`
	Replayed bool            `json:"replayed"`
}

// CreateOrderRequest registers a checkout awaiting payment.
type CreateOrderRequest struct {
	ID             uuid.UUID
	DisplayNumber  string
	ListingID      uuid.UUID
	OfferID        *uuid.UUID
	BuyerID        uuid.UUID
	SellerID       uuid.UUID
	ItemPriceCents int64
	ShippingCents  int64
	TaxCents       int64
	BuyerFeeCents  int64
	SellerNetCents int64
}

// OpenDisputeRequest holds input for opening a dispute.
type OpenDisputeRequest struct {
	OrderID     uuid.UUID
	Reason      string
	Description string
	Evidence    []string
}

// SettlementEngine is the order/escrow state machine.
type SettlementEngine interface {
	CreateOrder(ctx context.Context, req CreateOrderRequest) (*domain.Order, error)
	GetOrder(ctx context.Context, actor Actor, orderID uuid.UUID) (*domain.Order, error)
	GetDispute(ctx context.Context, actor Actor, disputeID uuid.UUID) (*domain.Dispute, error)

	ConfirmPayment(ctx context.Context, orderID uuid.UUID, chargeRef string) (*TransitionResult, error)
	CancelPendingPayment(ctx context.Context, actor Actor, orderID uuid.UUID) (*TransitionResult, error)
	MarkShipped(ctx context.Context, actor Actor, orderID uuid.UUID, trackingRef string) (*TransitionResult, error)
	MarkDelivered(ctx context.Context, actor Actor, orderID uuid.UUID) (*TransitionResult, error)
	BuyerConfirmCompletion(ctx context.Context, actor Actor, orderID uuid.UUID) (*TransitionResult, error)
	AttemptAutoComplete(ctx context.Context, orderID uuid.UUID) (*TransitionResult, error)
	ReportIssue(ctx context.Context, actor Actor, orderID uuid.UUID, reason string) (*TransitionResult, error)

	OpenDispute(ctx context.Context, actor Actor, req OpenDisputeRequest) (*TransitionResult, error)
	RespondToDispute(ctx context.Context, actor Actor, disputeID uuid.UUID, response string, evidence []string) (*TransitionResult, error)
	AddDisputeEvidence(ctx context.Context, actor Actor, disputeID uuid.UUID, urls []string) (*TransitionResult, error)
	MarkDisputeUnderReview(ctx context.Context, actor Actor, disputeID uuid.UUID) (*TransitionResult, error)
	ResolveDispute(ctx context.Context, actor Actor, disputeID uuid.UUID, outcome domain.Resolution, notes string) (*TransitionResult, error)

	StartReturn(ctx context.Context, actor Actor, orderID uuid.UUID, reason string) (*TransitionResult, error)
	SubmitReturnTracking(ctx context.Context, actor Actor, orderID uuid.UUID, trackingRef string) (*TransitionResult, error)
	ConfirmReturnReceived(ctx context.Context, actor Actor, orderID uuid.UUID) (*TransitionResult, error)
	AttemptExpireReturn(ctx context.Context, orderID uuid.UUID) (*TransitionResult, error)

	AdminRefund(ctx context.Context, actor Actor, orderID uuid.UUID, notes string) (*TransitionResult, error)
	AdminRelease(ctx context.Context, actor Actor, orderID uuid.UUID, notes string) (*TransitionResult, error)
	ReleaseEscrow(ctx context.Context, orderID uuid.UUID) (*TransitionResult, error)
}

// WalletService is the read and admin side of the wallet ledger.
type WalletService interface {
	Summary(ctx context.Context, sellerID uuid.UUID) (*WalletSummary, error)
	ListTransactions(ctx context.Context, params WalletTxListParams) ([]domain.WalletTransaction, int64, error)
	Verify(ctx context.Context, sellerID uuid.UUID) (*LedgerCheck, error)
	SetPayoutDestination(ctx context.Context, sellerID uuid.UUID, destination string) error
}

// WalletSummary is a seller's balances plus recent payouts.
type WalletSummary struct {
	SellerID      uuid.UUID       `json:"seller_id"`
	Balances      domain.Balances `json:"balances"`
	PayoutLocked  bool            `json:"payout_locked"`
	HasPayoutDest bool            `json:"has_payout_destination"`
	RecentPayouts []domain.Payout `json:"recent_payouts"`
}

// LedgerCheck compares stored balances with the fold of the transaction log.
type LedgerCheck struct {
	SellerID      uuid.UUID       `json:"seller_id"`
	Stored        domain.Balances `json:"stored"`
	Reconstructed domain.Balances `json:"reconstructed"`
	Entries       int             `json:"entries"`
	Consistent    bool            `json:"consistent"`
}

// PayoutService executes seller payouts.
type PayoutService interface {
	RequestPayout(ctx context.Context, actor Actor, req PayoutRequest) (*domain.Payout, error)
}

// PayoutRequest holds validated input for a payout. AmountCents is ignored for instant payouts.
type PayoutRequest struct {
	SellerID    uuid.UUID
	AmountCents int64
	Method      domain.PayoutMethod
}

// ReconciliationService exposes cases that need an operator.
type ReconciliationService interface {
	ListOpen(ctx context.Context, limit int) ([]domain.ReconciliationCase, error)
	Resolve(ctx context.Context, actor Actor, caseID uuid.UUID, notes string) error
}

// Sweeper drives the time-based entry points of the engine.
type Sweeper interface {
	Sweep(ctx context.Context) (*SweepReport, error)
}

// SweepReport counts what one sweep did.
type SweepReport struct {
	AutoCompleted   int     `json:"auto_completed"`
	Released        int     `json:"released"`
	ReturnsExpired  int     `json:"returns_expired"`
	Skipped         int     `json:"skipped"`
	Failed          int     `json:"failed"`
	DurationSeconds float64 `json:"duration_seconds"`
}

// Notifier delivers events to the notification collaborator. Fire-and-forget.
type Notifier interface {
	Notify(ctx context.Context, event domain.Event)
}

// AuditService records audited admin actions asynchronously.
type AuditService interface {
	Log(ctx context.Context, entry *domain.AuditLog)
}

// PaymentEventCache is the Redis fast path for replayed payment events.
// The order row stays the source of truth.
type PaymentEventCache interface {
	Seen(ctx context.Context, key string) (bool, error)
	Remember(ctx context.Context, key string, ttl time.Duration) error
}

// SignatureService handles HMAC-SHA256 signing and verification.
type SignatureService interface {
	Sign(secretKey string, payload string) string
	Verify(secretKey string, payload string, signature string) bool
}

// TokenService handles JWT token operations for the identity collaborator.
type TokenService interface {
	Generate(userID uuid.UUID, isAdmin bool) (string, time.Time, error)
	Validate(tokenString string) (*TokenClaims, error)
}

// TokenClaims holds the parsed JWT claims.
type TokenClaims struct {
	UserID  uuid.UUID
	IsAdmin bool
}
