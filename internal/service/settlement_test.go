package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"escrow-settlement/internal/core/domain"
	"escrow-settlement/internal/core/ports"
	"escrow-settlement/internal/core/ports/mocks"
	"escrow-settlement/pkg/apperror"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

// ---------- Payment ----------

func TestConfirmPayment_RepeatedEventsPayOnce(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	o := h.createOrder(t)

	first, err := h.engine.ConfirmPayment(ctx, o.ID, "ch_1")
	require.NoError(t, err)
	assert.False(t, first.Replayed)
	assert.Equal(t, domain.OrderStatusPaid, first.Order.Status)
	assert.Equal(t, domain.EscrowHeld, first.Order.EscrowStatus)
	assert.Equal(t, "ch_1", first.Order.ProcessorChargeRef)

	for i := 0; i < 3; i++ {
		res, err := h.engine.ConfirmPayment(ctx, o.ID, "ch_1")
		require.NoError(t, err)
		assert.True(t, res.Replayed)
		assert.Equal(t, domain.OrderStatusPaid, res.Order.Status)
	}

	// A later event with a different charge does not overwrite the first.
	res, err := h.engine.ConfirmPayment(ctx, o.ID, "ch_2")
	require.NoError(t, err)
	assert.True(t, res.Replayed)
	assert.Equal(t, "ch_1", h.order(t, o.ID).ProcessorChargeRef)
}

func TestConfirmPayment_ExpiresCompetingOffers(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	listing, accepted, competing := uuid.New(), uuid.New(), uuid.New()
	h.store.PutOffer(accepted, listing, domain.OfferStatusPending)
	h.store.PutOffer(competing, listing, domain.OfferStatusPending)

	o, err := h.engine.CreateOrder(ctx, ports.CreateOrderRequest{
		ListingID:      listing,
		OfferID:        &accepted,
		BuyerID:        h.buyer.UserID,
		SellerID:       h.seller.UserID,
		ItemPriceCents: 5000,
		SellerNetCents: 4000,
	})
	require.NoError(t, err)

	_, err = h.engine.ConfirmPayment(ctx, o.ID, "ch_1")
	require.NoError(t, err)

	status, _ := h.store.OfferStatus(accepted)
	assert.Equal(t, domain.OfferStatusPending, status)
	status, _ = h.store.OfferStatus(competing)
	assert.Equal(t, domain.OfferStatusExpired, status)
}

func TestConfirmPayment_AfterCancelIsRejected(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	o := h.createOrder(t)

	res, err := h.engine.CancelPendingPayment(ctx, h.buyer, o.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusCancelledPayment, res.Order.Status)

	_, err = h.engine.ConfirmPayment(ctx, o.ID, "ch_1")
	assert.True(t, apperror.IsKind(err, apperror.KindInvalidTransition))
	assert.Equal(t, domain.OrderStatusCancelledPayment, h.order(t, o.ID).Status)
}

func TestCancelPendingPayment_AfterPaymentIsReplay(t *testing.T) {
	h := newHarness(t)
	o := h.paidOrder(t)

	res, err := h.engine.CancelPendingPayment(context.Background(), h.buyer, o.ID)
	require.NoError(t, err)
	assert.True(t, res.Replayed)
	assert.Equal(t, domain.OrderStatusPaid, h.order(t, o.ID).Status)
}

func TestConfirmPayment_CacheShortCircuitsReplays(t *testing.T) {
	ctrl := gomock.NewController(t)
	cache := mocks.NewMockPaymentEventCache(ctrl)
	h := newHarness(t, func(d *EngineDeps) { d.EventCache = cache })
	ctx := context.Background()
	o := h.createOrder(t)
	key := "payment:" + o.ID.String() + ":ch_1"

	gomock.InOrder(
		cache.EXPECT().Seen(gomock.Any(), key).Return(false, nil),
		cache.EXPECT().Remember(gomock.Any(), key, 72*time.Hour).Return(nil),
		cache.EXPECT().Seen(gomock.Any(), key).Return(true, nil),
	)

	res, err := h.engine.ConfirmPayment(ctx, o.ID, "ch_1")
	require.NoError(t, err)
	assert.False(t, res.Replayed)

	res, err = h.engine.ConfirmPayment(ctx, o.ID, "ch_1")
	require.NoError(t, err)
	assert.True(t, res.Replayed)
	assert.Equal(t, domain.OrderStatusPaid, res.Order.Status)
}

func TestConfirmPayment_CacheErrorFallsThroughToDB(t *testing.T) {
	ctrl := gomock.NewController(t)
	cache := mocks.NewMockPaymentEventCache(ctrl)
	h := newHarness(t, func(d *EngineDeps) { d.EventCache = cache })
	o := h.createOrder(t)

	cache.EXPECT().Seen(gomock.Any(), gomock.Any()).Return(false, errors.New("redis down"))
	cache.EXPECT().Remember(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("redis down"))

	res, err := h.engine.ConfirmPayment(context.Background(), o.ID, "ch_1")
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusPaid, res.Order.Status)
}

// ---------- Fulfilment ----------

func TestFulfilment_CompletionCreditsPendingOnce(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	o := h.deliveredOrder(t)

	require.NotNil(t, o.InspectionEndsAt)
	assert.Equal(t, h.now.Add(72*time.Hour), *o.InspectionEndsAt)

	_, err := h.engine.BuyerConfirmCompletion(ctx, h.seller, o.ID)
	assert.True(t, apperror.IsKind(err, apperror.KindForbidden))

	res, err := h.engine.BuyerConfirmCompletion(ctx, h.buyer, o.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusCompleted, res.Order.Status)
	assert.True(t, res.Order.WalletCredited)
	assert.Equal(t, domain.EscrowHeld, res.Order.EscrowStatus)

	_, err = h.engine.BuyerConfirmCompletion(ctx, h.buyer, o.ID)
	assert.True(t, apperror.IsKind(err, apperror.KindAlreadyProcessed))

	assert.Equal(t, domain.Balances{PendingCents: 4000, LifetimeEarningsCents: 4000}, h.balances(t))
	h.requireConsistentLedger(t)
}

func TestMarkShipped_RequiresSellerAndPaidOrder(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	pending := h.createOrder(t)

	_, err := h.engine.MarkShipped(ctx, h.seller, pending.ID, "TRK")
	assert.True(t, apperror.IsKind(err, apperror.KindInvalidTransition))

	paid := h.paidOrder(t)
	_, err = h.engine.MarkShipped(ctx, h.buyer, paid.ID, "TRK")
	assert.True(t, apperror.IsKind(err, apperror.KindForbidden))

	_, err = h.engine.MarkShipped(ctx, h.seller, paid.ID, "")
	assert.True(t, apperror.IsKind(err, apperror.KindValidation))
}

func TestAttemptAutoComplete(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	o := h.deliveredOrder(t)

	_, err := h.engine.AttemptAutoComplete(ctx, o.ID)
	assert.True(t, errors.Is(err, apperror.ErrInspectionWindowOpen()))

	h.advance(72 * time.Hour)
	res, err := h.engine.AttemptAutoComplete(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusCompleted, res.Order.Status)

	res, err = h.engine.AttemptAutoComplete(ctx, o.ID)
	require.NoError(t, err)
	assert.True(t, res.Replayed)
	assert.Equal(t, int64(4000), h.balances(t).PendingCents)
}

func TestReportIssue_StopsAutoCompletion(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	o := h.deliveredOrder(t)

	_, err := h.engine.ReportIssue(ctx, h.buyer, o.ID, "item damaged")
	require.NoError(t, err)

	h.advance(96 * time.Hour)
	_, err = h.engine.AttemptAutoComplete(ctx, o.ID)
	assert.True(t, apperror.IsKind(err, apperror.KindInvalidTransition))

	// The buyer may still accept the item.
	res, err := h.engine.BuyerConfirmCompletion(ctx, h.buyer, o.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusCompleted, res.Order.Status)
}

func TestCompletion_BlockedWhilePayoutInFlight(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.fundAvailable(t, 1000)
	o := h.deliveredOrder(t)

	locked, err := h.store.Wallets().LockForPayout(ctx, h.seller.UserID, h.now)
	require.NoError(t, err)
	require.NotNil(t, locked)

	_, err = h.engine.BuyerConfirmCompletion(ctx, h.buyer, o.ID)
	assert.True(t, apperror.IsKind(err, apperror.KindResourceLocked))
	assert.Equal(t, domain.OrderStatusDelivered, h.order(t, o.ID).Status)
	assert.Equal(t, int64(0), h.balances(t).PendingCents)
}

func TestGetOrder_OnlyPartiesAndAdmins(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	o := h.createOrder(t)

	for _, actor := range []ports.Actor{h.buyer, h.seller, h.admin} {
		got, err := h.engine.GetOrder(ctx, actor, o.ID)
		require.NoError(t, err)
		assert.Equal(t, o.ID, got.ID)
	}

	_, err := h.engine.GetOrder(ctx, h.stranger, o.ID)
	assert.True(t, apperror.IsKind(err, apperror.KindForbidden))

	_, err = h.engine.GetOrder(ctx, h.admin, uuid.New())
	assert.True(t, apperror.IsKind(err, apperror.KindNotFound))
}

func TestCreateOrder_Validation(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	buyer, seller := h.buyer.UserID, h.seller.UserID

	tests := []struct {
		name string
		req  ports.CreateOrderRequest
		kind apperror.Kind
	}{
		{"missing seller", ports.CreateOrderRequest{BuyerID: buyer, ItemPriceCents: 100, SellerNetCents: 90}, apperror.KindValidation},
		{"self purchase", ports.CreateOrderRequest{BuyerID: buyer, SellerID: buyer, ItemPriceCents: 100, SellerNetCents: 90}, apperror.KindValidation},
		{"zero price", ports.CreateOrderRequest{BuyerID: buyer, SellerID: seller, SellerNetCents: 90}, apperror.KindInvalidAmount},
		{"negative tax", ports.CreateOrderRequest{BuyerID: buyer, SellerID: seller, ItemPriceCents: 100, SellerNetCents: 90, TaxCents: -1}, apperror.KindInvalidAmount},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := h.engine.CreateOrder(ctx, tt.req)
			assert.True(t, apperror.IsKind(err, tt.kind), "got %v", err)
		})
	}

	o := h.createOrder(t)
	assert.Equal(t, "ORD-"+o.ID.String()[:8], o.DisplayNumber)
	_, err := h.engine.CreateOrder(ctx, ports.CreateOrderRequest{
		ID: o.ID, BuyerID: buyer, SellerID: seller, ItemPriceCents: 100, SellerNetCents: 90,
	})
	assert.True(t, apperror.IsKind(err, apperror.KindAlreadyProcessed))
}

// ---------- Escrow release ----------

func TestReleaseEscrow_AfterClearingPeriod(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	o := h.completedOrder(t)
	h.setDestination(t, "acct_seller")

	_, err := h.engine.ReleaseEscrow(ctx, o.ID)
	assert.True(t, apperror.IsKind(err, apperror.KindInvalidTransition))

	h.processor.EXPECT().Transfer(gomock.Any(), ports.LedgerTransferRequest{
		AmountCents:           4000,
		DestinationAccountRef: "acct_seller",
		SourceRef:             o.ProcessorChargeRef,
		IdempotencyKey:        "release:" + o.ID.String(),
	}).Return(&ports.LedgerTransferResult{TransferID: "tr_1"}, nil).Times(1)

	h.advance(48 * time.Hour)
	res, err := h.engine.ReleaseEscrow(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.EscrowReleased, res.Order.EscrowStatus)
	assert.Equal(t, domain.OrderStatusCompleted, res.Order.Status)
	require.NotNil(t, res.Order.ProcessorTransferRef)
	assert.Equal(t, "tr_1", *res.Order.ProcessorTransferRef)

	_, err = h.engine.ReleaseEscrow(ctx, o.ID)
	assert.True(t, errors.Is(err, apperror.ErrEscrowSettled("")))

	assert.Equal(t, domain.Balances{AvailableCents: 4000, LifetimeEarningsCents: 4000}, h.balances(t))
	h.requireConsistentLedger(t)
}

func TestReleaseEscrow_WithoutDestinationMovesNothing(t *testing.T) {
	h := newHarness(t)
	o := h.completedOrder(t)
	h.advance(49 * time.Hour)

	_, err := h.engine.ReleaseEscrow(context.Background(), o.ID)
	assert.True(t, errors.Is(err, apperror.ErrMissingProcessorRef("")))
	got := h.order(t, o.ID)
	assert.Equal(t, domain.EscrowHeld, got.EscrowStatus)
	assert.Nil(t, got.SettlementKey, "nothing reached the processor, so the claim is dropped")
	assert.Zero(t, got.SettlementAttempts)
}

func TestReleaseEscrow_DeclineDropsClaimAndRetriesUnderNewKey(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	o := h.completedOrder(t)
	h.setDestination(t, "acct_seller")
	h.advance(49 * time.Hour)

	gomock.InOrder(
		h.processor.EXPECT().Transfer(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, req ports.LedgerTransferRequest) (*ports.LedgerTransferResult, error) {
				assert.Equal(t, "release:"+o.ID.String(), req.IdempotencyKey)
				return nil, fmt.Errorf("%w: insufficient platform balance", ports.ErrLedgerDeclined)
			}),
		h.processor.EXPECT().Transfer(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, req ports.LedgerTransferRequest) (*ports.LedgerTransferResult, error) {
				assert.Equal(t, "release:"+o.ID.String()+":1", req.IdempotencyKey)
				return &ports.LedgerTransferResult{TransferID: "tr_2"}, nil
			}),
	)

	_, err := h.engine.ReleaseEscrow(ctx, o.ID)
	assert.True(t, apperror.IsKind(err, apperror.KindExternalLedgerFailure))

	got := h.order(t, o.ID)
	assert.Equal(t, domain.EscrowHeld, got.EscrowStatus)
	assert.Nil(t, got.ProcessorTransferRef)
	assert.Nil(t, got.SettlementKey)
	assert.Equal(t, 1, got.SettlementAttempts)
	assert.Equal(t, int64(4000), h.balances(t).PendingCents)
	assert.Empty(t, h.openCases(t))

	res, err := h.engine.ReleaseEscrow(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, "tr_2", *res.Order.ProcessorTransferRef)
	assert.Nil(t, res.Order.SettlementKey)
}

func TestReleaseEscrow_UnknownOutcomeKeepsClaim(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	o := h.completedOrder(t)
	h.setDestination(t, "acct_seller")
	h.advance(49 * time.Hour)
	key := "release:" + o.ID.String()

	gomock.InOrder(
		h.processor.EXPECT().Transfer(gomock.Any(), gomock.Any()).
			Return(nil, errors.New("connection reset by peer")),
		h.processor.EXPECT().Transfer(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, req ports.LedgerTransferRequest) (*ports.LedgerTransferResult, error) {
				assert.Equal(t, key, req.IdempotencyKey, "a retry after an unknown outcome reuses the key")
				return &ports.LedgerTransferResult{TransferID: "tr_1"}, nil
			}),
	)

	_, err := h.engine.ReleaseEscrow(ctx, o.ID)
	assert.True(t, apperror.IsKind(err, apperror.KindExternalLedgerFailure))
	got := h.order(t, o.ID)
	require.NotNil(t, got.SettlementKey)
	assert.Equal(t, key, *got.SettlementKey)

	// The transfer may have gone through, so nothing else may move the order.
	_, err = h.engine.AdminRefund(ctx, h.admin, o.ID, "")
	assert.True(t, apperror.IsKind(err, apperror.KindInvalidTransition), "got %v", err)
	_, err = h.engine.StartReturn(ctx, h.buyer, o.ID, "wrong size")
	assert.True(t, apperror.IsKind(err, apperror.KindInvalidTransition), "got %v", err)

	res, err := h.engine.ReleaseEscrow(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.EscrowReleased, res.Order.EscrowStatus)
	assert.Nil(t, res.Order.SettlementKey)
	h.requireConsistentLedger(t)
}

func TestSettle_RefundInFlightBlocksRelease(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	o := h.completedOrder(t)
	h.setDestination(t, "acct_seller")
	h.advance(49 * time.Hour)

	entered := make(chan struct{})
	proceed := make(chan struct{})
	h.processor.EXPECT().Refund(gomock.Any(), gomock.Any()).DoAndReturn(
		func(context.Context, ports.LedgerRefundRequest) (*ports.LedgerRefundResult, error) {
			close(entered)
			<-proceed
			return &ports.LedgerRefundResult{RefundID: "re_1", Status: "succeeded"}, nil
		}).Times(1)
	h.processor.EXPECT().Transfer(gomock.Any(), gomock.Any()).Times(0)

	done := make(chan error, 1)
	go func() {
		_, err := h.engine.AdminRefund(ctx, h.admin, o.ID, "buyer never got it")
		done <- err
	}()
	<-entered

	_, err := h.engine.ReleaseEscrow(ctx, o.ID)
	assert.True(t, apperror.IsKind(err, apperror.KindInvalidTransition), "got %v", err)
	_, err = h.engine.AdminRelease(ctx, h.admin, o.ID, "")
	assert.True(t, apperror.IsKind(err, apperror.KindInvalidTransition), "got %v", err)

	close(proceed)
	require.NoError(t, <-done)

	got := h.order(t, o.ID)
	assert.Equal(t, domain.EscrowRefunded, got.EscrowStatus)
	assert.Nil(t, got.ProcessorTransferRef)
	assert.Nil(t, got.SettlementKey)
	assert.Empty(t, h.openCases(t))
	assert.Equal(t, int64(0), h.balances(t).PendingCents)
	h.requireConsistentLedger(t)
}

// ---------- Admin settlement ----------

func TestAdminRefund_PaidOrder(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	o := h.paidOrder(t)

	_, err := h.engine.AdminRefund(ctx, h.buyer, o.ID, "")
	assert.True(t, apperror.IsKind(err, apperror.KindForbidden))

	h.processor.EXPECT().Refund(gomock.Any(), ports.LedgerRefundRequest{
		ChargeRef:      o.ProcessorChargeRef,
		AmountCents:    5500,
		IdempotencyKey: "refund:" + o.ID.String(),
	}).Return(&ports.LedgerRefundResult{RefundID: "re_1", Status: "succeeded"}, nil).Times(1)

	res, err := h.engine.AdminRefund(ctx, h.admin, o.ID, "seller unresponsive")
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusRefunded, res.Order.Status)
	assert.Equal(t, domain.EscrowRefunded, res.Order.EscrowStatus)
	assert.Equal(t, "re_1", *res.Order.ProcessorRefundRef)

	// Released and refunded are mutually exclusive.
	_, err = h.engine.AdminRelease(ctx, h.admin, o.ID, "")
	assert.True(t, apperror.IsKind(err, apperror.KindAlreadyProcessed))
}

func TestAdminRefund_FailedRefundStatusIsExternalFailure(t *testing.T) {
	h := newHarness(t)
	o := h.paidOrder(t)

	h.processor.EXPECT().Refund(gomock.Any(), gomock.Any()).
		Return(&ports.LedgerRefundResult{RefundID: "re_1", Status: "failed"}, nil)

	_, err := h.engine.AdminRefund(context.Background(), h.admin, o.ID, "")
	assert.True(t, apperror.IsKind(err, apperror.KindExternalLedgerFailure))
	assert.True(t, errors.Is(err, ports.ErrLedgerDeclined))
	got := h.order(t, o.ID)
	assert.Equal(t, domain.OrderStatusPaid, got.Status)
	assert.Nil(t, got.SettlementKey)
	assert.Equal(t, 1, got.SettlementAttempts)
}

func TestAdminRefund_UnsettledRefundStatusKeepsKey(t *testing.T) {
	h := newHarness(t)
	o := h.paidOrder(t)

	h.processor.EXPECT().Refund(gomock.Any(), gomock.Any()).
		Return(&ports.LedgerRefundResult{RefundID: "re_1", Status: "requires_action"}, nil)

	_, err := h.engine.AdminRefund(context.Background(), h.admin, o.ID, "")
	assert.True(t, apperror.IsKind(err, apperror.KindExternalLedgerFailure))
	assert.False(t, errors.Is(err, ports.ErrLedgerDeclined))
	got := h.order(t, o.ID)
	require.NotNil(t, got.SettlementKey)
	assert.Equal(t, "refund:"+o.ID.String(), *got.SettlementKey)
	assert.Zero(t, got.SettlementAttempts)
}

func TestAdminRefund_DisputedOrderMustGoThroughResolution(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	o := h.paidOrder(t)
	_, err := h.engine.OpenDispute(ctx, h.buyer, ports.OpenDisputeRequest{OrderID: o.ID, Reason: "not received"})
	require.NoError(t, err)

	_, err = h.engine.AdminRefund(ctx, h.admin, o.ID, "")
	assert.True(t, apperror.IsKind(err, apperror.KindInvalidTransition))
}

func TestAdminRelease_CreditsAndReleasesUncompletedOrder(t *testing.T) {
	h := newHarness(t)
	o := h.paidOrder(t)
	h.setDestination(t, "acct_seller")

	h.processor.EXPECT().Transfer(gomock.Any(), gomock.Any()).
		Return(&ports.LedgerTransferResult{TransferID: "tr_9"}, nil)

	res, err := h.engine.AdminRelease(context.Background(), h.admin, o.ID, "buyer confirmed by phone")
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusCompleted, res.Order.Status)
	assert.Equal(t, domain.EscrowReleased, res.Order.EscrowStatus)
	assert.Equal(t, domain.Balances{AvailableCents: 4000, LifetimeEarningsCents: 4000}, h.balances(t))
	h.requireConsistentLedger(t)
}

func TestSettle_CommitFailureAfterProcessorSuccessIsRecorded(t *testing.T) {
	orders := &failingOrders{}
	h := newHarness(t, func(d *EngineDeps) {
		orders.OrderRepository = d.Orders
		d.Orders = orders
	})
	o := h.paidOrder(t)

	// The connection drops after the processor answered.
	h.processor.EXPECT().Refund(gomock.Any(), gomock.Any()).DoAndReturn(
		func(context.Context, ports.LedgerRefundRequest) (*ports.LedgerRefundResult, error) {
			orders.fail.Store(true)
			return &ports.LedgerRefundResult{RefundID: "re_7", Status: "succeeded"}, nil
		})

	_, err := h.engine.AdminRefund(context.Background(), h.admin, o.ID, "")
	orders.fail.Store(false)

	assert.True(t, apperror.IsKind(err, apperror.KindReconciliationRequired))
	got := h.order(t, o.ID)
	assert.Equal(t, domain.OrderStatusPaid, got.Status)
	assert.Equal(t, domain.EscrowHeld, got.EscrowStatus)
	require.NotNil(t, got.SettlementKey, "the claim stays until the refund is reconciled")
	assert.Equal(t, "refund:"+o.ID.String(), *got.SettlementKey)

	cases := h.openCases(t)
	require.Len(t, cases, 1)
	assert.Equal(t, "admin_refund", cases[0].Operation)
	assert.Equal(t, "re_7", cases[0].ExternalRef)
	assert.Equal(t, "refund:"+o.ID.String(), cases[0].IdempotencyKey)
	assert.Equal(t, int64(5500), cases[0].AmountCents)
	assert.Equal(t, o.ID, *cases[0].OrderID)
}

// ---------- Returns ----------

func TestReturnFlow_RefundsBuyerAndReversesCredit(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	o := h.completedOrder(t)
	require.Equal(t, int64(4000), h.balances(t).PendingCents)

	_, err := h.engine.StartReturn(ctx, h.buyer, o.ID, "wrong size")
	require.NoError(t, err)
	_, err = h.engine.SubmitReturnTracking(ctx, h.buyer, o.ID, "RET123")
	require.NoError(t, err)

	_, err = h.engine.ConfirmReturnReceived(ctx, h.buyer, o.ID)
	assert.True(t, apperror.IsKind(err, apperror.KindForbidden))

	h.processor.EXPECT().Refund(gomock.Any(), ports.LedgerRefundRequest{
		ChargeRef:      o.ProcessorChargeRef,
		AmountCents:    5500,
		IdempotencyKey: "refund:" + o.ID.String(),
	}).Return(&ports.LedgerRefundResult{RefundID: "re_1", Status: "pending"}, nil).Times(1)

	res, err := h.engine.ConfirmReturnReceived(ctx, h.seller, o.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusReturned, res.Order.Status)
	assert.Equal(t, domain.EscrowRefunded, res.Order.EscrowStatus)
	assert.True(t, res.Order.ReturnReceived)
	assert.False(t, res.Order.WalletCredited)

	assert.Equal(t, domain.Balances{LifetimeEarningsCents: 4000}, h.balances(t))
	h.requireConsistentLedger(t)
}

func TestStartReturn_AfterReleaseIsRejected(t *testing.T) {
	h := newHarness(t)
	o := h.completedOrder(t)
	h.setDestination(t, "acct_seller")
	h.advance(49 * time.Hour)
	h.processor.EXPECT().Transfer(gomock.Any(), gomock.Any()).Return(&ports.LedgerTransferResult{TransferID: "tr_1"}, nil)
	_, err := h.engine.ReleaseEscrow(context.Background(), o.ID)
	require.NoError(t, err)

	_, err = h.engine.StartReturn(context.Background(), h.buyer, o.ID, "changed my mind")
	assert.True(t, apperror.IsKind(err, apperror.KindAlreadyProcessed))
}

func TestAttemptExpireReturn(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	o := h.completedOrder(t)

	_, err := h.engine.StartReturn(ctx, h.buyer, o.ID, "wrong size")
	require.NoError(t, err)

	_, err = h.engine.AttemptExpireReturn(ctx, o.ID)
	assert.True(t, apperror.IsKind(err, apperror.KindInvalidTransition))

	h.advance(7*24*time.Hour + time.Minute)
	res, err := h.engine.AttemptExpireReturn(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusCompleted, res.Order.Status)
	assert.True(t, res.Order.WalletCredited)

	res, err = h.engine.AttemptExpireReturn(ctx, o.ID)
	require.NoError(t, err)
	assert.True(t, res.Replayed)

	// Credited once, at the original completion.
	assert.Equal(t, domain.Balances{PendingCents: 4000, LifetimeEarningsCents: 4000}, h.balances(t))
}

// ---------- Disputes ----------

func TestDisputeLifecycle_ReleaseToSeller(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	o := h.paidOrder(t)
	h.setDestination(t, "acct_seller")

	opened, err := h.engine.OpenDispute(ctx, h.buyer, ports.OpenDisputeRequest{
		OrderID:  o.ID,
		Reason:   "not as described",
		Evidence: []string{"https://img/1.jpg"},
	})
	require.NoError(t, err)
	require.NotNil(t, opened.Dispute)
	d := opened.Dispute
	assert.Equal(t, domain.OrderStatusDisputed, opened.Order.Status)
	assert.True(t, opened.Order.DisputeFlag)
	assert.Equal(t, domain.DisputePartyBuyer, d.OpenedBy)

	_, err = h.engine.OpenDispute(ctx, h.seller, ports.OpenDisputeRequest{OrderID: o.ID, Reason: "again"})
	assert.True(t, errors.Is(err, apperror.ErrDisputeExists()))

	_, err = h.engine.RespondToDispute(ctx, h.buyer, d.ID, "me too", nil)
	assert.True(t, apperror.IsKind(err, apperror.KindForbidden))

	res, err := h.engine.RespondToDispute(ctx, h.seller, d.ID, "item matched the listing", []string{"https://img/2.jpg"})
	require.NoError(t, err)
	assert.Equal(t, domain.DisputeStatusSellerResponded, res.Dispute.Status)
	assert.Equal(t, []string{"https://img/2.jpg"}, res.Dispute.SellerEvidence)
	require.NotNil(t, res.Dispute.Response)
	assert.Equal(t, "item matched the listing", *res.Dispute.Response)

	_, err = h.engine.AddDisputeEvidence(ctx, h.buyer, d.ID, []string{"https://img/3.jpg"})
	require.NoError(t, err)

	_, err = h.engine.MarkDisputeUnderReview(ctx, h.seller, d.ID)
	assert.True(t, apperror.IsKind(err, apperror.KindForbidden))
	_, err = h.engine.MarkDisputeUnderReview(ctx, h.admin, d.ID)
	require.NoError(t, err)
	again, err := h.engine.MarkDisputeUnderReview(ctx, h.admin, d.ID)
	require.NoError(t, err)
	assert.True(t, again.Replayed)

	h.processor.EXPECT().Transfer(gomock.Any(), gomock.Any()).
		Return(&ports.LedgerTransferResult{TransferID: "tr_1"}, nil).Times(1)

	resolved, err := h.engine.ResolveDispute(ctx, h.admin, d.ID, domain.ResolutionRelease, "evidence favours seller")
	require.NoError(t, err)
	assert.Equal(t, domain.DisputeStatusResolvedSeller, resolved.Dispute.Status)
	assert.Equal(t, domain.OrderStatusCompleted, resolved.Order.Status)
	assert.Equal(t, domain.EscrowReleased, resolved.Order.EscrowStatus)

	stored, err := h.engine.GetDispute(ctx, h.buyer, d.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"https://img/1.jpg", "https://img/3.jpg"}, stored.BuyerEvidence)

	_, err = h.engine.ResolveDispute(ctx, h.admin, d.ID, domain.ResolutionRefund, "")
	assert.True(t, errors.Is(err, apperror.ErrDisputeAlreadyResolved()))
	_, err = h.engine.AddDisputeEvidence(ctx, h.buyer, d.ID, []string{"late"})
	assert.True(t, errors.Is(err, apperror.ErrDisputeAlreadyResolved()))

	assert.Equal(t, domain.Balances{AvailableCents: 4000, LifetimeEarningsCents: 4000}, h.balances(t))
	h.requireConsistentLedger(t)
}

func TestRespondToDispute_BuyerAnswersSellerDispute(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	o := h.paidOrder(t)

	opened, err := h.engine.OpenDispute(ctx, h.seller, ports.OpenDisputeRequest{OrderID: o.ID, Reason: "buyer gave a wrong address"})
	require.NoError(t, err)
	assert.Equal(t, domain.DisputePartySeller, opened.Dispute.OpenedBy)

	_, err = h.engine.RespondToDispute(ctx, h.seller, opened.Dispute.ID, "still wrong", nil)
	assert.True(t, apperror.IsKind(err, apperror.KindForbidden))

	res, err := h.engine.RespondToDispute(ctx, h.buyer, opened.Dispute.ID, "address is correct", []string{"https://img/addr.jpg"})
	require.NoError(t, err)
	require.NotNil(t, res.Dispute.Response)
	assert.Equal(t, "address is correct", *res.Dispute.Response)
	assert.Equal(t, []string{"https://img/addr.jpg"}, res.Dispute.BuyerEvidence)
	assert.Empty(t, res.Dispute.SellerEvidence)
	assert.NotNil(t, res.Dispute.RespondedAt)
}

func TestResolveDispute_RefundReversesCreditFromIssueReported(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	o := h.deliveredOrder(t)
	_, err := h.engine.ReportIssue(ctx, h.buyer, o.ID, "broken")
	require.NoError(t, err)

	opened, err := h.engine.OpenDispute(ctx, h.buyer, ports.OpenDisputeRequest{OrderID: o.ID, Reason: "broken"})
	require.NoError(t, err)

	h.processor.EXPECT().Refund(gomock.Any(), gomock.Any()).
		Return(&ports.LedgerRefundResult{RefundID: "re_1", Status: "succeeded"}, nil)

	res, err := h.engine.ResolveDispute(ctx, h.admin, opened.Dispute.ID, domain.ResolutionRefund, "")
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusRefunded, res.Order.Status)
	assert.Equal(t, domain.DisputeStatusResolvedBuyer, res.Dispute.Status)
	assert.Equal(t, domain.Balances{}, h.balances(t))
}

func TestResolveDispute_ConcurrentResolutionsSettleOnce(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	o := h.paidOrder(t)
	opened, err := h.engine.OpenDispute(ctx, h.buyer, ports.OpenDisputeRequest{OrderID: o.ID, Reason: "not received"})
	require.NoError(t, err)

	// Both callers send the same idempotency key, so the processor refunds once.
	h.processor.EXPECT().Refund(gomock.Any(), gomock.Any()).
		Return(&ports.LedgerRefundResult{RefundID: "re_1", Status: "succeeded"}, nil).
		MinTimes(1).MaxTimes(2)

	const callers = 2
	errs := make([]error, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = h.engine.ResolveDispute(ctx, h.admin, opened.Dispute.ID, domain.ResolutionRefund, "")
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.True(t, errors.Is(err, apperror.ErrDisputeAlreadyResolved()), "got %v", err)
	}
	assert.Equal(t, 1, succeeded)
	assert.Empty(t, h.openCases(t))
	assert.Equal(t, domain.EscrowRefunded, h.order(t, o.ID).EscrowStatus)
}

func TestResolveDispute_Validation(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	_, err := h.engine.ResolveDispute(ctx, h.buyer, uuid.New(), domain.ResolutionRefund, "")
	assert.True(t, apperror.IsKind(err, apperror.KindForbidden))

	_, err = h.engine.ResolveDispute(ctx, h.admin, uuid.New(), "split", "")
	assert.True(t, apperror.IsKind(err, apperror.KindValidation))

	_, err = h.engine.ResolveDispute(ctx, h.admin, uuid.New(), domain.ResolutionRefund, "")
	assert.True(t, apperror.IsKind(err, apperror.KindNotFound))
}

func TestOpenDispute_NotFromTerminalStates(t *testing.T) {
	h := newHarness(t)
	o := h.completedOrder(t)

	_, err := h.engine.OpenDispute(context.Background(), h.buyer, ports.OpenDisputeRequest{OrderID: o.ID, Reason: "late"})
	assert.True(t, apperror.IsKind(err, apperror.KindInvalidTransition))

	_, err = h.engine.OpenDispute(context.Background(), h.stranger, ports.OpenDisputeRequest{OrderID: o.ID, Reason: "late"})
	assert.True(t, apperror.IsKind(err, apperror.KindForbidden))
}
