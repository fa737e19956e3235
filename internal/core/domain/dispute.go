package domain

import (
	"time"

	"github.com/google/uuid"
)

// DisputeStatus represents the lifecycle of a dispute.
type DisputeStatus string

const (
	DisputeStatusOpen            DisputeStatus = "open"
	DisputeStatusSellerResponded DisputeStatus = "seller_responded" // the counterparty answered, buyer or seller
	DisputeStatusUnderReview     DisputeStatus = "under_review"
	DisputeStatusResolvedBuyer   DisputeStatus = "resolved_buyer"
	DisputeStatusResolvedSeller  DisputeStatus = "resolved_seller"
)

// IsTerminal returns true once the dispute has been resolved.
func (s DisputeStatus) IsTerminal() bool {
	return s == DisputeStatusResolvedBuyer || s == DisputeStatusResolvedSeller
}

// DisputeParty identifies which side of the order opened a dispute.
type DisputeParty string

const (
	DisputePartyBuyer  DisputeParty = "buyer"
	DisputePartySeller DisputeParty = "seller"
)

// Resolution is the money outcome an admin picks when resolving.
type Resolution string

const (
	ResolutionRefund  Resolution = "refund"
	ResolutionRelease Resolution = "release"
)

// Valid reports whether r is a known outcome.
func (r Resolution) Valid() bool {
	return r == ResolutionRefund || r == ResolutionRelease
}

// Dispute is a buyer or seller claim against an order.
type Dispute struct {
	ID              uuid.UUID     `json:"id"`
	OrderID         uuid.UUID     `json:"order_id"`
	OpenedBy        DisputeParty  `json:"opened_by"`
	OpenedByUserID  uuid.UUID     `json:"opened_by_user_id"`
	Reason          string        `json:"reason"`
	Description     string        `json:"description,omitempty"`
	BuyerEvidence   []string      `json:"buyer_evidence"`
	SellerEvidence  []string      `json:"seller_evidence"`
	Evidence        []string      `json:"evidence,omitempty"` // legacy, not scoped to a party
	Status          DisputeStatus `json:"status"`
	Response        *string       `json:"response,omitempty"` // reply of the party that did not open
	RespondedAt     *time.Time    `json:"responded_at,omitempty"`
	Resolution      *Resolution   `json:"resolution,omitempty"`
	ResolvedBy      *uuid.UUID    `json:"resolved_by,omitempty"`
	ResolvedAt      *time.Time    `json:"resolved_at,omitempty"`
	ResolutionNotes *string       `json:"resolution_notes,omitempty"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
}

// AppendEvidence adds urls to the given party's list, never replacing what is there.
func (d *Dispute) AppendEvidence(party DisputeParty, urls []string) {
	if party == DisputePartySeller {
		d.SellerEvidence = append(d.SellerEvidence, urls...)
		return
	}
	d.BuyerEvidence = append(d.BuyerEvidence, urls...)
}

// Clone returns a deep copy.
func (d *Dispute) Clone() *Dispute {
	c := *d
	c.BuyerEvidence = append([]string(nil), d.BuyerEvidence...)
	c.SellerEvidence = append([]string(nil), d.SellerEvidence...)
	c.Evidence = append([]string(nil), d.Evidence...)
	c.Response = clonePtr(d.Response)
	c.RespondedAt = clonePtr(d.RespondedAt)
	c.Resolution = clonePtr(d.Resolution)
	c.ResolvedBy = clonePtr(d.ResolvedBy)
	c.ResolvedAt = clonePtr(d.ResolvedAt)
	c.ResolutionNotes = clonePtr(d.ResolutionNotes)
	return &c
}
