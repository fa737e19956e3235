package handler

import (
	"escrow-settlement/internal/adapter/http/dto"
	"escrow-settlement/internal/core/ports"
	"escrow-settlement/pkg/response"

	"github.com/gin-gonic/gin"
)

// OrderHandler exposes buyer and seller order transitions.
type OrderHandler struct {
	engine ports.SettlementEngine
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(engine ports.SettlementEngine) *OrderHandler {
	return &OrderHandler{engine: engine}
}

// Get handles GET /api/v1/orders/:id.
func (h *OrderHandler) Get(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	order, err := h.engine.GetOrder(c.Request.Context(), a, id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, order)
}

// Cancel handles POST /api/v1/orders/:id/cancel.
func (h *OrderHandler) Cancel(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	res, err := h.engine.CancelPendingPayment(c.Request.Context(), a, id)
	transition(c, res, err)
}

// Ship handles POST /api/v1/orders/:id/ship.
func (h *OrderHandler) Ship(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req dto.ShipRequest
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.engine.MarkShipped(c.Request.Context(), a, id, req.TrackingRef)
	transition(c, res, err)
}

// Deliver handles POST /api/v1/orders/:id/deliver.
func (h *OrderHandler) Deliver(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	res, err := h.engine.MarkDelivered(c.Request.Context(), a, id)
	transition(c, res, err)
}

// Confirm handles POST /api/v1/orders/:id/confirm.
func (h *OrderHandler) Confirm(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	res, err := h.engine.BuyerConfirmCompletion(c.Request.Context(), a, id)
	transition(c, res, err)
}

// ReportIssue handles POST /api/v1/orders/:id/issue.
func (h *OrderHandler) ReportIssue(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req dto.IssueRequest
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.engine.ReportIssue(c.Request.Context(), a, id, req.Reason)
	transition(c, res, err)
}

// OpenDispute handles POST /api/v1/orders/:id/disputes.
func (h *OrderHandler) OpenDispute(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req dto.OpenDisputeRequest
	if !bindJSON(c, &req) {
		return
	}

	res, err := h.engine.OpenDispute(c.Request.Context(), a, ports.OpenDisputeRequest{
		OrderID:     id,
		Reason:      req.Reason,
		Description: req.Description,
		Evidence:    req.Evidence,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	if res.Replayed {
		response.OK(c, res)
		return
	}
	response.Created(c, res)
}

// StartReturn handles POST /api/v1/orders/:id/returns.
func (h *OrderHandler) StartReturn(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req dto.StartReturnRequest
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.engine.StartReturn(c.Request.Context(), a, id, req.Reason)
	transition(c, res, err)
}

// SubmitReturnTracking handles POST /api/v1/orders/:id/returns/tracking.
func (h *OrderHandler) SubmitReturnTracking(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req dto.ReturnTrackingRequest
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.engine.SubmitReturnTracking(c.Request.Context(), a, id, req.TrackingRef)
	transition(c, res, err)
}

// ConfirmReturnReceived handles POST /api/v1/orders/:id/returns/received.
func (h *OrderHandler) ConfirmReturnReceived(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	res, err := h.engine.ConfirmReturnReceived(c.Request.Context(), a, id)
	transition(c, res, err)
}
