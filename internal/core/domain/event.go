package domain

import (
	"time"

	"github.com/google/uuid"
)

// EventVersion is bumped whenever Event changes shape.
const EventVersion = 1

// EventType names a notification.
type EventType string

const (
	EventOrderPaid            EventType = "order.paid"
	EventOrderPaymentCanceled EventType = "order.payment_cancelled"
	EventOrderShipped         EventType = "order.shipped"
	EventOrderDelivered       EventType = "order.delivered"
	EventOrderCompleted       EventType = "order.completed"
	EventOrderIssueReported   EventType = "order.issue_reported"
	EventOrderRefunded        EventType = "order.refunded"
	EventEscrowReleased       EventType = "escrow.released"
	EventReturnStarted        EventType = "return.started"
	EventReturnShipped        EventType = "return.shipped"
	EventReturnCompleted      EventType = "return.completed"
	EventDisputeOpened        EventType = "dispute.opened"
	EventDisputeResponded     EventType = "dispute.responded"
	EventDisputeEvidence      EventType = "dispute.evidence_added"
	EventDisputeUnderReview   EventType = "dispute.under_review"
	EventDisputeResolved      EventType = "dispute.resolved"
	EventPayoutSent           EventType = "payout.sent"
)

// Event is the payload handed to the notification collaborator.
type Event struct {
	Version     int        `json:"version"`
	Type        EventType  `json:"type"`
	OrderID     *uuid.UUID `json:"order_id,omitempty"`
	DisputeID   *uuid.UUID `json:"dispute_id,omitempty"`
	PayoutID    *uuid.UUID `json:"payout_id,omitempty"`
	ActorID     *uuid.UUID `json:"actor_id,omitempty"`
	RecipientID *uuid.UUID `json:"recipient_id,omitempty"`
	Status      string     `json:"status,omitempty"`
	AmountCents int64      `json:"amount_cents,omitempty"`
	OccurredAt  time.Time  `json:"occurred_at"`
}
