package handler

import (
	"escrow-settlement/internal/adapter/http/dto"
	"escrow-settlement/internal/core/ports"
	"escrow-settlement/pkg/response"

	"github.com/gin-gonic/gin"
)

// DisputeHandler exposes the party-facing dispute endpoints.
type DisputeHandler struct {
	engine ports.SettlementEngine
}

// NewDisputeHandler creates a new DisputeHandler.
func NewDisputeHandler(engine ports.SettlementEngine) *DisputeHandler {
	return &DisputeHandler{engine: engine}
}

// Get handles GET /api/v1/disputes/:id.
func (h *DisputeHandler) Get(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	dispute, err := h.engine.GetDispute(c.Request.Context(), a, id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dispute)
}

// Respond handles POST /api/v1/disputes/:id/respond.
func (h *DisputeHandler) Respond(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req dto.RespondDisputeRequest
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.engine.RespondToDispute(c.Request.Context(), a, id, req.Response, req.Evidence)
	transition(c, res, err)
}

// AddEvidence handles POST /api/v1/disputes/:id/evidence.
func (h *DisputeHandler) AddEvidence(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req dto.EvidenceRequest
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.engine.AddDisputeEvidence(c.Request.Context(), a, id, req.URLs)
	transition(c, res, err)
}
