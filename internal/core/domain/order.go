package domain

import (
	"time"

	"github.com/google/uuid"
)

// OrderStatus is the position of an order in the settlement state machine.
type OrderStatus string

const (
	OrderStatusPendingPayment   OrderStatus = "pending_payment"
	OrderStatusPaid             OrderStatus = "paid"
	OrderStatusShipped          OrderStatus = "shipped"
	OrderStatusDelivered        OrderStatus = "delivered"
	OrderStatusIssueReported    OrderStatus = "issue_reported"
	OrderStatusDisputed         OrderStatus = "disputed"
	OrderStatusReturnStarted    OrderStatus = "return_started"
	OrderStatusReturnProcessing OrderStatus = "return_processing"
	OrderStatusCompleted        OrderStatus = "completed"
	OrderStatusRefunded         OrderStatus = "refunded"
	OrderStatusReturned         OrderStatus = "returned"
	OrderStatusCancelledPayment OrderStatus = "cancelled_payment"
)

// IsTerminal reports whether no buyer or seller action can move the order further.
// A completed order may still see its escrow released or a return started.
func (s OrderStatus) IsTerminal() bool {
	switch s {
	case OrderStatusCompleted, OrderStatusRefunded, OrderStatusReturned, OrderStatusCancelledPayment:
		return true
	}
	return false
}

// EscrowStatus tracks the buyer's captured funds.
type EscrowStatus string

const (
	EscrowHeld     EscrowStatus = "held"
	EscrowReleased EscrowStatus = "released"
	EscrowRefunded EscrowStatus = "refunded"
)

// IsSettled returns true once escrow left the held state. Released and refunded are mutually exclusive.
func (s EscrowStatus) IsSettled() bool {
	return s == EscrowReleased || s == EscrowRefunded
}

// Order is one accepted sale. Orders are never deleted.
type Order struct {
	ID            uuid.UUID  `json:"id"`
	DisplayNumber string     `json:"display_number"`
	ListingID     uuid.UUID  `json:"listing_id"`
	OfferID       *uuid.UUID `json:"offer_id,omitempty"`
	BuyerID       uuid.UUID  `json:"buyer_id"`
	SellerID      uuid.UUID  `json:"seller_id"`

	ItemPriceCents int64 `json:"item_price_cents"`
	ShippingCents  int64 `json:"shipping_cents"`
	TaxCents       int64 `json:"tax_cents"`
	BuyerFeeCents  int64 `json:"buyer_fee_cents"`
	SellerNetCents int64 `json:"seller_net_cents"`

	Status       OrderStatus  `json:"status"`
	EscrowStatus EscrowStatus `json:"escrow_status"`
	DisputeFlag  bool         `json:"dispute_flag"`

	ProcessorChargeRef   string  `json:"processor_charge_ref,omitempty"`
	ProcessorTransferRef *string `json:"processor_transfer_ref,omitempty"`
	ProcessorRefundRef   *string `json:"processor_refund_ref,omitempty"`

	ShippingTrackingRef *string    `json:"shipping_tracking_ref,omitempty"`
	ShippedAt           *time.Time `json:"shipped_at,omitempty"`
	DeliveredAt         *time.Time `json:"delivered_at,omitempty"`
	InspectionEndsAt    *time.Time `json:"inspection_ends_at,omitempty"`
	CompletedAt         *time.Time `json:"completed_at,omitempty"`
	IssueReason         *string    `json:"issue_reason,omitempty"`

	ReturnReason      *string    `json:"return_reason,omitempty"`
	ReturnStartedAt   *time.Time `json:"return_started_at,omitempty"`
	ReturnTrackingRef *string    `json:"return_tracking_ref,omitempty"`
	ReturnShippedAt   *time.Time `json:"return_shipped_at,omitempty"`
	ReturnReceived    bool       `json:"return_received"`

	WalletCredited bool `json:"wallet_credited"`

	// SettlementKey is set while a refund or release is with the processor.
	// Only the holder of the key may settle or otherwise move the order.
	SettlementKey      *string    `json:"settlement_key,omitempty"`
	SettlementAttempts int        `json:"settlement_attempts"`
	SettlementTriedAt  *time.Time `json:"settlement_tried_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Idempotency key prefixes of the two escrow money moves.
const (
	RefundKeyPrefix  = "refund:"
	ReleaseKeyPrefix = "release:"
)

// RefundableCents is what goes back to the buyer on a refund.
// The buyer protection fee is never refunded.
func (o *Order) RefundableCents() int64 {
	return o.ItemPriceCents + o.ShippingCents + o.TaxCents
}

// InStatus reports whether the order is in any of the given states.
func (o *Order) InStatus(states ...OrderStatus) bool {
	for _, s := range states {
		if o.Status == s {
			return true
		}
	}
	return false
}

// IsParty reports whether userID is the buyer or the seller.
func (o *Order) IsParty(userID uuid.UUID) bool {
	return o.BuyerID == userID || o.SellerID == userID
}

// Clone returns a deep copy so callers can mutate without aliasing pointer fields.
func (o *Order) Clone() *Order {
	c := *o
	c.OfferID = clonePtr(o.OfferID)
	c.ProcessorTransferRef = clonePtr(o.ProcessorTransferRef)
	c.ProcessorRefundRef = clonePtr(o.ProcessorRefundRef)
	c.ShippingTrackingRef = clonePtr(o.ShippingTrackingRef)
	c.ShippedAt = clonePtr(o.ShippedAt)
	c.DeliveredAt = clonePtr(o.DeliveredAt)
	c.InspectionEndsAt = clonePtr(o.InspectionEndsAt)
	c.CompletedAt = clonePtr(o.CompletedAt)
	c.IssueReason = clonePtr(o.IssueReason)
	c.ReturnReason = clonePtr(o.ReturnReason)
	c.ReturnStartedAt = clonePtr(o.ReturnStartedAt)
	c.ReturnTrackingRef = clonePtr(o.ReturnTrackingRef)
	c.ReturnShippedAt = clonePtr(o.ReturnShippedAt)
	c.SettlementKey = clonePtr(o.SettlementKey)
	c.SettlementTriedAt = clonePtr(o.SettlementTriedAt)
	return &c
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// OfferStatus mirrors the listing offer lifecycle owned by the offers collaborator.
type OfferStatus string

const (
	OfferStatusPending  OfferStatus = "pending"
	OfferStatusAccepted OfferStatus = "accepted"
	OfferStatusExpired  OfferStatus = "expired"
)
