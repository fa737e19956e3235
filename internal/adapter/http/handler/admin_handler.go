package handler

import (
	"escrow-settlement/internal/adapter/http/dto"
	"escrow-settlement/internal/core/domain"
	"escrow-settlement/internal/core/ports"
	"escrow-settlement/pkg/apperror"
	"escrow-settlement/pkg/response"

	"github.com/gin-gonic/gin"
)

const defaultReconciliationLimit = 100

// AdminHandler exposes dispute rulings, manual overrides and ledger checks.
// Every route is mounted behind RequireAdmin.
type AdminHandler struct {
	engine         ports.SettlementEngine
	wallets        ports.WalletService
	reconciliation ports.ReconciliationService
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(engine ports.SettlementEngine, wallets ports.WalletService, reconciliation ports.ReconciliationService) *AdminHandler {
	return &AdminHandler{engine: engine, wallets: wallets, reconciliation: reconciliation}
}

// ReviewDispute handles POST /api/v1/admin/disputes/:id/review.
func (h *AdminHandler) ReviewDispute(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	res, err := h.engine.MarkDisputeUnderReview(c.Request.Context(), a, id)
	transition(c, res, err)
}

// ResolveDispute handles POST /api/v1/admin/disputes/:id/resolve.
func (h *AdminHandler) ResolveDispute(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req dto.ResolveDisputeRequest
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.engine.ResolveDispute(c.Request.Context(), a, id, req.Outcome, req.Notes)
	transition(c, res, err)
}

// Refund handles POST /api/v1/admin/orders/:id/refund.
func (h *AdminHandler) Refund(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req dto.AdminNoteRequest
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.engine.AdminRefund(c.Request.Context(), a, id, req.Notes)
	transition(c, res, err)
}

// Release handles POST /api/v1/admin/orders/:id/release.
func (h *AdminHandler) Release(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req dto.AdminNoteRequest
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.engine.AdminRelease(c.Request.Context(), a, id, req.Notes)
	transition(c, res, err)
}

// ListReconciliation handles GET /api/v1/admin/reconciliation.
func (h *AdminHandler) ListReconciliation(c *gin.Context) {
	var q dto.ReconciliationListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	if q.Limit == 0 {
		q.Limit = defaultReconciliationLimit
	}

	cases, err := h.reconciliation.ListOpen(c.Request.Context(), q.Limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	if cases == nil {
		cases = []domain.ReconciliationCase{}
	}
	response.OK(c, cases)
}

// ResolveReconciliation handles POST /api/v1/admin/reconciliation/:id/resolve.
func (h *AdminHandler) ResolveReconciliation(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req dto.AdminNoteRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.reconciliation.Resolve(c.Request.Context(), a, id, req.Notes); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"id": id, "status": "resolved"})
}

// VerifyWallet handles GET /api/v1/admin/wallets/:sellerId/verify.
func (h *AdminHandler) VerifyWallet(c *gin.Context) {
	sellerID, ok := idParam(c, "sellerId")
	if !ok {
		return
	}
	check, err := h.wallets.Verify(c.Request.Context(), sellerID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, check)
}
