package middleware

import (
	"encoding/json"
	"net/http"
	"time"

	"escrow-settlement/internal/core/domain"
	"escrow-settlement/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// AuditLog records successful admin and money-moving writes.
// Routes are matched on their registered template, not the raw path.
func AuditLog(auditSvc ports.AuditService) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Status() < 200 || c.Writer.Status() >= 300 {
			return
		}
		if c.Request.Method != http.MethodPost {
			return
		}

		action, resourceType, param := mapRouteToAction(c.FullPath())
		if action == "" {
			return
		}

		var actorID *uuid.UUID
		if actor, ok := ActorFrom(c); ok {
			actorID = &actor.UserID
		}

		details, _ := json.Marshal(map[string]interface{}{
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"status":     c.Writer.Status(),
			"request_id": c.GetString(CtxRequestID),
		})

		var resourceID string
		if param != "" {
			resourceID = c.Param(param)
		}

		auditSvc.Log(c.Request.Context(), &domain.AuditLog{
			ID:           uuid.New(),
			ActorID:      actorID,
			Action:       action,
			ResourceType: resourceType,
			ResourceID:   resourceID,
			IPAddress:    c.ClientIP(),
			Details:      string(details),
			CreatedAt:    time.Now().UTC(),
		})
	}
}

func mapRouteToAction(route string) (domain.AuditAction, string, string) {
	switch route {
	case "/api/v1/admin/disputes/:id/review":
		return domain.AuditActionReviewDispute, "dispute", "id"
	case "/api/v1/admin/disputes/:id/resolve":
		return domain.AuditActionResolveDispute, "dispute", "id"
	case "/api/v1/admin/orders/:id/refund":
		return domain.AuditActionAdminRefund, "order", "id"
	case "/api/v1/admin/orders/:id/release":
		return domain.AuditActionAdminRelease, "order", "id"
	case "/api/v1/admin/reconciliation/:id/resolve":
		return domain.AuditActionReconcile, "reconciliation_case", "id"
	case "/api/v1/wallet/payouts":
		return domain.AuditActionPayout, "wallet", ""
	}
	return "", "", ""
}
