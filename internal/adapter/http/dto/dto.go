package dto

import (
	"escrow-settlement/internal/core/domain"

	"github.com/google/uuid"
)

// CreateOrderRequest is sent by checkout once an offer is accepted or a listing bought outright.
type CreateOrderRequest struct {
	OrderID        *uuid.UUID `json:"order_id"`
	DisplayNumber  string     `json:"display_number" binding:"omitempty,max=32,safe_id"`
	ListingID      uuid.UUID  `json:"listing_id" binding:"required"`
	OfferID        *uuid.UUID `json:"offer_id"`
	BuyerID        uuid.UUID  `json:"buyer_id" binding:"required"`
	SellerID       uuid.UUID  `json:"seller_id" binding:"required"`
	ItemPriceCents int64      `json:"item_price_cents" binding:"required,gt=0"`
	ShippingCents  int64      `json:"shipping_cents" binding:"gte=0"`
	TaxCents       int64      `json:"tax_cents" binding:"gte=0"`
	BuyerFeeCents  int64      `json:"buyer_fee_cents" binding:"gte=0"`
	SellerNetCents int64      `json:"seller_net_cents" binding:"required,gt=0"`
}

// PaymentConfirmedRequest is the payment collaborator's charge-succeeded event.
type PaymentConfirmedRequest struct {
	OrderID   uuid.UUID `json:"order_id" binding:"required"`
	ChargeRef string    `json:"charge_ref" binding:"required,max=255,safe_id"`
}

// ShipRequest carries the carrier tracking number.
type ShipRequest struct {
	TrackingRef string `json:"tracking_ref" binding:"required,max=100,safe_id"`
}

// IssueRequest reports a problem inside the inspection window.
type IssueRequest struct {
	Reason string `json:"reason" binding:"required,min=3,max=500"`
}

// OpenDisputeRequest opens a dispute on an order.
type OpenDisputeRequest struct {
	Reason      string   `json:"reason" binding:"required,min=3,max=100"`
	Description string   `json:"description" binding:"max=5000"`
	Evidence    []string `json:"evidence" binding:"max=20,dive,required,safe_url"`
}

// RespondDisputeRequest is the seller's answer to a dispute.
type RespondDisputeRequest struct {
	Response string   `json:"response" binding:"required,min=3,max=5000"`
	Evidence []string `json:"evidence" binding:"max=20,dive,required,safe_url"`
}

// EvidenceRequest appends evidence URLs to a dispute.
type EvidenceRequest struct {
	URLs []string `json:"urls" binding:"required,min=1,max=20,dive,required,safe_url"`
}

// StartReturnRequest starts a return for an order.
type StartReturnRequest struct {
	Reason string `json:"reason" binding:"required,min=3,max=500"`
}

// ReturnTrackingRequest carries the buyer's return shipment tracking number.
type ReturnTrackingRequest struct {
	TrackingRef string `json:"tracking_ref" binding:"required,max=100,safe_id"`
}

// ResolveDisputeRequest is an admin's ruling on a dispute.
type ResolveDisputeRequest struct {
	Outcome domain.Resolution `json:"outcome" binding:"required,oneof=refund release"`
	Notes   string            `json:"notes" binding:"required,min=3,max=2000"`
}

// AdminNoteRequest carries the mandatory notes for an admin override.
type AdminNoteRequest struct {
	Notes string `json:"notes" binding:"required,min=3,max=2000"`
}

// PayoutRequest asks for a payout from the caller's wallet. Amount is ignored for instant payouts.
type PayoutRequest struct {
	AmountCents int64               `json:"amount_cents" binding:"gte=0"`
	Method      domain.PayoutMethod `json:"method" binding:"required,oneof=standard instant"`
	SellerID    *uuid.UUID          `json:"seller_id"`
}

// PayoutDestinationRequest sets the processor account payouts are sent to.
type PayoutDestinationRequest struct {
	Destination string `json:"destination" binding:"required,max=255,safe_id"`
}

// WalletTxListQuery is the query string of the transaction log endpoint.
type WalletTxListQuery struct {
	Kind     string `form:"kind" binding:"omitempty,oneof=credit reversal release withdrawal"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// ReconciliationListQuery bounds the open-case listing.
type ReconciliationListQuery struct {
	Limit int `form:"limit" binding:"omitempty,min=1,max=500"`
}

// WalletTxListResponse is a page of the wallet transaction log.
type WalletTxListResponse struct {
	Items      []domain.WalletTransaction `json:"items"`
	Total      int64                      `json:"total"`
	Page       int                        `json:"page"`
	PageSize   int                        `json:"page_size"`
	TotalPages int                        `json:"total_pages"`
}
