package domain

import (
	"time"

	"github.com/google/uuid"
)

// ReconciliationStatus tracks operator review of a diverged operation.
type ReconciliationStatus string

const (
	ReconciliationOpen     ReconciliationStatus = "open"
	ReconciliationResolved ReconciliationStatus = "resolved"
)

// ReconciliationCase records a processor call that succeeded while the local commit did not.
// Cases are never retried automatically.
type ReconciliationCase struct {
	ID             uuid.UUID            `json:"id"`
	Operation      string               `json:"operation"`
	OrderID        *uuid.UUID           `json:"order_id,omitempty"`
	SellerID       *uuid.UUID           `json:"seller_id,omitempty"`
	ExternalRef    string               `json:"external_ref"`
	IdempotencyKey string               `json:"idempotency_key"`
	AmountCents    int64                `json:"amount_cents"`
	Error          string               `json:"error"`
	Status         ReconciliationStatus `json:"status"`
	ResolvedBy     *uuid.UUID           `json:"resolved_by,omitempty"`
	ResolvedAt     *time.Time           `json:"resolved_at,omitempty"`
	Notes          *string              `json:"notes,omitempty"`
	CreatedAt      time.Time            `json:"created_at"`
}
