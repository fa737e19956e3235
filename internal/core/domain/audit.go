package domain

import (
	"time"

	"github.com/google/uuid"
)

// AuditAction represents the type of audited action.
type AuditAction string

const (
	AuditActionResolveDispute AuditAction = "RESOLVE_DISPUTE"
	AuditActionReviewDispute  AuditAction = "REVIEW_DISPUTE"
	AuditActionAdminRefund    AuditAction = "ADMIN_REFUND"
	AuditActionAdminRelease   AuditAction = "ADMIN_RELEASE"
	AuditActionPayout         AuditAction = "PAYOUT"
	AuditActionReconcile      AuditAction = "RECONCILE"
)

// AuditLog records a single audited action in the system.
type AuditLog struct {
	ID           uuid.UUID   `json:"id"`
	ActorID      *uuid.UUID  `json:"actor_id,omitempty"`
	Action       AuditAction `json:"action"`
	ResourceType string      `json:"resource_type"`
	ResourceID   string      `json:"resource_id,omitempty"`
	Details      string      `json:"details,omitempty"` // JSON string
	IPAddress    string      `json:"ip_address"`
	CreatedAt    time.Time   `json:"created_at"`
}
