package service

import (
	"context"
	"errors"
	"fmt"
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

func newTestSweeper(h *harness) *SettlementSweeper {
	s := NewSettlementSweeper(h.engine, h.store.Orders(), DefaultSettlementPolicy(), time.Minute, 50, newTestLogger())
	s.now = func() time.Time { return h.now }
	return s
}

func TestSweep_DrivesEveryTimer(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.setDestination(t, "acct_seller")

	toRelease := h.completedOrder(t)
	returned := h.completedOrder(t)
	_, err := h.engine.StartReturn(ctx, h.buyer, returned.ID, "wrong size")
	require.NoError(t, err)

	h.advance(7 * 24 * time.Hour)
	toComplete := h.deliveredOrder(t)
	h.deliveredOrder(t)
	h.advance(73 * time.Hour)

	h.processor.EXPECT().Transfer(gomock.Any(), gomock.Any()).
		Return(&ports.LedgerTransferResult{TransferID: "tr_1"}, nil).Times(1)

	report, err := newTestSweeper(h).Sweep(ctx)
	require.NoError(t, err)

	assert.Equal(t, 2, report.AutoCompleted, "both delivered orders are past inspection")
	assert.Equal(t, 1, report.Released)
	assert.Equal(t, 1, report.ReturnsExpired)
	assert.Equal(t, 0, report.Failed)

	assert.Equal(t, domain.EscrowReleased, h.order(t, toRelease.ID).EscrowStatus)
	assert.Equal(t, domain.OrderStatusCompleted, h.order(t, returned.ID).Status)
	assert.Equal(t, domain.OrderStatusCompleted, h.order(t, toComplete.ID).Status)
}

func TestSweep_FailingOrdersDoNotStarveReleases(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	// An order from a seller who never set up a destination.
	other := ports.Actor{UserID: uuid.New()}
	stuck, err := h.engine.CreateOrder(ctx, ports.CreateOrderRequest{
		ListingID: uuid.New(), BuyerID: h.buyer.UserID, SellerID: other.UserID,
		ItemPriceCents: 5000, SellerNetCents: 4000,
	})
	require.NoError(t, err)
	_, err = h.engine.ConfirmPayment(ctx, stuck.ID, "ch_stuck")
	require.NoError(t, err)
	_, err = h.engine.MarkShipped(ctx, other, stuck.ID, "1Z999AA10123456784")
	require.NoError(t, err)
	_, err = h.engine.MarkDelivered(ctx, other, stuck.ID)
	require.NoError(t, err)
	_, err = h.engine.BuyerConfirmCompletion(ctx, h.buyer, stuck.ID)
	require.NoError(t, err)

	h.setDestination(t, "acct_seller")
	h.advance(time.Minute)
	declining := h.completedOrder(t)
	h.advance(time.Minute)
	healthy := h.completedOrder(t)
	h.advance(49 * time.Hour)

	h.processor.EXPECT().Transfer(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, req ports.LedgerTransferRequest) (*ports.LedgerTransferResult, error) {
			if req.IdempotencyKey == "release:"+declining.ID.String() {
				return nil, fmt.Errorf("%w: source charge disputed", ports.ErrLedgerDeclined)
			}
			return &ports.LedgerTransferResult{TransferID: "tr_" + req.IdempotencyKey}, nil
		}).AnyTimes()

	s := NewSettlementSweeper(h.engine, h.store.Orders(), DefaultSettlementPolicy(), time.Minute, 1, newTestLogger())
	s.now = func() time.Time { return h.now }

	first, err := s.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, first.Failed, "the oldest payable order is tried first")
	assert.Equal(t, domain.EscrowHeld, h.order(t, healthy.ID).EscrowStatus)

	h.advance(time.Minute)
	second, err := s.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, second.Released)
	assert.Equal(t, domain.EscrowReleased, h.order(t, healthy.ID).EscrowStatus)

	// The declined order comes back under a fresh key.
	h.advance(time.Minute)
	third, err := s.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, third.Released)
	assert.Equal(t, domain.EscrowReleased, h.order(t, declining.ID).EscrowStatus)
	assert.Equal(t, domain.EscrowHeld, h.order(t, stuck.ID).EscrowStatus)
}

func TestSweep_SecondPassIsQuiet(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.deliveredOrder(t)
	h.advance(73 * time.Hour)
	s := newTestSweeper(h)

	first, err := s.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, first.AutoCompleted)

	second, err := s.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, second.AutoCompleted)
	assert.Equal(t, 0, second.Failed)
}

func TestSweep_ClassifiesOutcomes(t *testing.T) {
	ctrl := gomock.NewController(t)
	engine := mocks.NewMockSettlementEngine(ctrl)
	orders := mocks.NewMockOrderRepository(ctrl)
	raced, replayed, broken := uuid.New(), uuid.New(), uuid.New()

	orders.EXPECT().ListDueForAutoCompletion(gomock.Any(), gomock.Any(), 50).Return([]uuid.UUID{raced, replayed}, nil)
	orders.EXPECT().ListDueForRelease(gomock.Any(), gomock.Any(), 50).Return([]uuid.UUID{broken}, nil)
	orders.EXPECT().ListExpiredReturns(gomock.Any(), gomock.Any(), 50).Return(nil, nil)

	engine.EXPECT().AttemptAutoComplete(gomock.Any(), raced).
		Return(nil, apperror.ErrInvalidTransition("auto_complete", "disputed"))
	engine.EXPECT().AttemptAutoComplete(gomock.Any(), replayed).
		Return(&ports.TransitionResult{Replayed: true}, nil)
	engine.EXPECT().ReleaseEscrow(gomock.Any(), broken).
		Return(nil, apperror.ErrExternalLedger("transfer", errors.New("timeout")))

	s := NewSettlementSweeper(engine, orders, DefaultSettlementPolicy(), time.Minute, 50, newTestLogger())
	report, err := s.Sweep(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 0, report.AutoCompleted)
	assert.Equal(t, 2, report.Skipped)
	assert.Equal(t, 1, report.Failed)
}

func TestSweep_ListErrorAborts(t *testing.T) {
	ctrl := gomock.NewController(t)
	orders := mocks.NewMockOrderRepository(ctrl)
	orders.EXPECT().ListDueForAutoCompletion(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, errors.New("db down"))

	s := NewSettlementSweeper(mocks.NewMockSettlementEngine(ctrl), orders, DefaultSettlementPolicy(), 0, 0, newTestLogger())
	_, err := s.Sweep(context.Background())
	assert.Error(t, err)
}

func TestSweeper_StartStop(t *testing.T) {
	ctrl := gomock.NewController(t)
	orders := mocks.NewMockOrderRepository(ctrl)
	orders.EXPECT().ListDueForAutoCompletion(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, nil).AnyTimes()
	orders.EXPECT().ListDueForRelease(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, nil).AnyTimes()
	orders.EXPECT().ListExpiredReturns(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, nil).AnyTimes()

	s := NewSettlementSweeper(mocks.NewMockSettlementEngine(ctrl), orders, DefaultSettlementPolicy(), 5*time.Millisecond, 10, newTestLogger())

	done := make(chan struct{})
	go func() {
		s.Start(context.Background())
		close(done)
	}()

	assert.Eventually(t, s.Running, time.Second, time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	s.Stop()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop")
	}
	assert.False(t, s.Running())
}
