package handler

import (
	"escrow-settlement/internal/adapter/http/dto"
	"escrow-settlement/internal/core/ports"
	"escrow-settlement/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// InternalHandler serves the service-to-service routes used by checkout,
// the payment processor integration and the scheduler.
type InternalHandler struct {
	engine  ports.SettlementEngine
	wallets ports.WalletService
	sweeper ports.Sweeper
	log     zerolog.Logger
}

// NewInternalHandler creates a new InternalHandler.
func NewInternalHandler(engine ports.SettlementEngine, wallets ports.WalletService, sweeper ports.Sweeper, log zerolog.Logger) *InternalHandler {
	return &InternalHandler{engine: engine, wallets: wallets, sweeper: sweeper, log: log}
}

// CreateOrder handles POST /internal/v1/orders.
func (h *InternalHandler) CreateOrder(c *gin.Context) {
	var req dto.CreateOrderRequest
	if !bindJSON(c, &req) {
		return
	}

	var id uuid.UUID
	if req.OrderID != nil {
		id = *req.OrderID
	}
	order, err := h.engine.CreateOrder(c.Request.Context(), ports.CreateOrderRequest{
		ID:             id,
		DisplayNumber:  req.DisplayNumber,
		ListingID:      req.ListingID,
		OfferID:        req.OfferID,
		BuyerID:        req.BuyerID,
		SellerID:       req.SellerID,
		ItemPriceCents: req.ItemPriceCents,
		ShippingCents:  req.ShippingCents,
		TaxCents:       req.TaxCents,
		BuyerFeeCents:  req.BuyerFeeCents,
		SellerNetCents: req.SellerNetCents,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, order)
}

// PaymentConfirmed handles POST /internal/v1/payments/confirmed.
// Replays of an already applied charge answer 200 with replayed=true.
func (h *InternalHandler) PaymentConfirmed(c *gin.Context) {
	var req dto.PaymentConfirmedRequest
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.engine.ConfirmPayment(c.Request.Context(), req.OrderID, req.ChargeRef)
	transition(c, res, err)
}

// Sweep handles POST /internal/v1/scheduler/sweep.
func (h *InternalHandler) Sweep(c *gin.Context) {
	report, err := h.sweeper.Sweep(c.Request.Context())
	if err != nil {
		h.log.Warn().Err(err).Msg("manual sweep failed")
		response.Error(c, err)
		return
	}
	response.OK(c, report)
}

// SetPayoutDestination handles PUT /internal/v1/wallets/:sellerId/payout-destination.
// Called by processor onboarding once the seller's connected account is verified.
func (h *InternalHandler) SetPayoutDestination(c *gin.Context) {
	sellerID, ok := idParam(c, "sellerId")
	if !ok {
		return
	}
	var req dto.PayoutDestinationRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.wallets.SetPayoutDestination(c.Request.Context(), sellerID, req.Destination); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"seller_id": sellerID, "has_payout_destination": true})
}
