package handler

import (
	"math"

	"escrow-settlement/internal/adapter/http/dto"
	"escrow-settlement/internal/core/domain"
	"escrow-settlement/internal/core/ports"
	"escrow-settlement/pkg/apperror"
	"escrow-settlement/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const defaultPageSize = 20

// WalletHandler handles the seller wallet endpoints.
type WalletHandler struct {
	wallets ports.WalletService
	payouts ports.PayoutService
}

// NewWalletHandler creates a new WalletHandler.
func NewWalletHandler(wallets ports.WalletService, payouts ports.PayoutService) *WalletHandler {
	return &WalletHandler{wallets: wallets, payouts: payouts}
}

// walletOwner resolves whose wallet is being read. Admins may name a seller
// with ?seller_id=; everyone else reads their own.
func walletOwner(c *gin.Context, a ports.Actor) (uuid.UUID, bool) {
	raw := c.Query("seller_id")
	if raw == "" {
		return a.UserID, true
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		response.Error(c, apperror.Validation("seller_id must be a valid UUID"))
		return uuid.Nil, false
	}
	if id != a.UserID && !a.IsAdmin {
		response.Error(c, apperror.ErrForbidden("wallets can only be read by their owner"))
		return uuid.Nil, false
	}
	return id, true
}

// Summary handles GET /api/v1/wallet.
func (h *WalletHandler) Summary(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	sellerID, ok := walletOwner(c, a)
	if !ok {
		return
	}

	summary, err := h.wallets.Summary(c.Request.Context(), sellerID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, summary)
}

// ListTransactions handles GET /api/v1/wallet/transactions.
func (h *WalletHandler) ListTransactions(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	sellerID, ok := walletOwner(c, a)
	if !ok {
		return
	}

	var q dto.WalletTxListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize < 1 {
		q.PageSize = defaultPageSize
	}

	params := ports.WalletTxListParams{
		SellerID: sellerID,
		Page:     q.Page,
		PageSize: q.PageSize,
	}
	if q.Kind != "" {
		kind := domain.WalletTxKind(q.Kind)
		params.Kind = &kind
	}

	items, total, err := h.wallets.ListTransactions(c.Request.Context(), params)
	if err != nil {
		response.Error(c, err)
		return
	}
	if items == nil {
		items = []domain.WalletTransaction{}
	}

	response.OK(c, dto.WalletTxListResponse{
		Items:      items,
		Total:      total,
		Page:       q.Page,
		PageSize:   q.PageSize,
		TotalPages: int(math.Ceil(float64(total) / float64(q.PageSize))),
	})
}

// RequestPayout handles POST /api/v1/wallet/payouts.
func (h *WalletHandler) RequestPayout(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	var req dto.PayoutRequest
	if !bindJSON(c, &req) {
		return
	}

	sellerID := a.UserID
	if req.SellerID != nil {
		sellerID = *req.SellerID
	}

	payout, err := h.payouts.RequestPayout(c.Request.Context(), a, ports.PayoutRequest{
		SellerID:    sellerID,
		AmountCents: req.AmountCents,
		Method:      req.Method,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, payout)
}
