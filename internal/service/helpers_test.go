package service

import (
	"context"
	"errors"
	"io"
	"sync/atomic"
	"testing"
	"time"

	"escrow-settlement/internal/adapter/storage/memory"
	"escrow-settlement/internal/core/domain"
	"escrow-settlement/internal/core/ports"
	"escrow-settlement/internal/core/ports/mocks"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func newTestLogger() zerolog.Logger {
	return zerolog.New(io.Discard)
}

// harness wires the engine to the in-memory store with a mocked processor.
type harness struct {
	store     *memory.Store
	engine    *SettlementEngine
	processor *mocks.MockLedgerClient
	ledger    *WalletLedger
	wallets   ports.WalletService
	recorder  *ReconciliationRecorder
	now       time.Time

	buyer    ports.Actor
	seller   ports.Actor
	admin    ports.Actor
	stranger ports.Actor
}

func newHarness(t *testing.T, opts ...func(*EngineDeps)) *harness {
	t.Helper()
	ctrl := gomock.NewController(t)
	store := memory.NewStore()
	log := newTestLogger()

	notifier := mocks.NewMockNotifier(ctrl)
	notifier.EXPECT().Notify(gomock.Any(), gomock.Any()).AnyTimes()

	h := &harness{
		store:     store,
		processor: mocks.NewMockLedgerClient(ctrl),
		ledger:    NewWalletLedger(store.Wallets(), store.WalletTransactions(), log),
		wallets:   NewWalletService(store.Wallets(), store.WalletTransactions(), store.Payouts()),
		recorder:  NewReconciliationRecorder(store.Reconciliation(), log),
		now:       time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC),
		buyer:     ports.Actor{UserID: uuid.New()},
		seller:    ports.Actor{UserID: uuid.New()},
		admin:     ports.Actor{UserID: uuid.New(), IsAdmin: true},
		stranger:  ports.Actor{UserID: uuid.New()},
	}

	deps := EngineDeps{
		Transactor: store.Transactor(),
		Orders:     store.Orders(),
		Offers:     store.Offers(),
		Disputes:   store.Disputes(),
		Wallets:    store.Wallets(),
		Ledger:     h.ledger,
		Processor:  h.processor,
		Recorder:   h.recorder,
		Notifier:   notifier,
	}
	for _, opt := range opts {
		opt(&deps)
	}
	h.engine = NewSettlementEngine(deps, DefaultSettlementPolicy(), log)
	h.engine.now = func() time.Time { return h.now }
	return h
}

func (h *harness) advance(d time.Duration) { h.now = h.now.Add(d) }

// createOrder registers a 50.00 item with 5.00 shipping, a 2.50 buyer fee and a 40.00 seller net.
func (h *harness) createOrder(t *testing.T) *domain.Order {
	t.Helper()
	o, err := h.engine.CreateOrder(context.Background(), ports.CreateOrderRequest{
		ListingID:      uuid.New(),
		BuyerID:        h.buyer.UserID,
		SellerID:       h.seller.UserID,
		ItemPriceCents: 5000,
		ShippingCents:  500,
		BuyerFeeCents:  250,
		SellerNetCents: 4000,
	})
	require.NoError(t, err)
	return o
}

func (h *harness) paidOrder(t *testing.T) *domain.Order {
	t.Helper()
	o := h.createOrder(t)
	res, err := h.engine.ConfirmPayment(context.Background(), o.ID, "ch_"+o.ID.String()[:8])
	require.NoError(t, err)
	return res.Order
}

func (h *harness) deliveredOrder(t *testing.T) *domain.Order {
	t.Helper()
	ctx := context.Background()
	o := h.paidOrder(t)
	_, err := h.engine.MarkShipped(ctx, h.seller, o.ID, "1Z999AA10123456784")
	require.NoError(t, err)
	res, err := h.engine.MarkDelivered(ctx, h.seller, o.ID)
	require.NoError(t, err)
	return res.Order
}

func (h *harness) completedOrder(t *testing.T) *domain.Order {
	t.Helper()
	o := h.deliveredOrder(t)
	res, err := h.engine.BuyerConfirmCompletion(context.Background(), h.buyer, o.ID)
	require.NoError(t, err)
	return res.Order
}

func (h *harness) order(t *testing.T, id uuid.UUID) *domain.Order {
	t.Helper()
	o, err := h.store.Orders().GetByID(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, o)
	return o
}

func (h *harness) balances(t *testing.T) domain.Balances {
	t.Helper()
	s, err := h.wallets.Summary(context.Background(), h.seller.UserID)
	require.NoError(t, err)
	return s.Balances
}

func (h *harness) requireConsistentLedger(t *testing.T) {
	t.Helper()
	check, err := h.wallets.Verify(context.Background(), h.seller.UserID)
	require.NoError(t, err)
	require.True(t, check.Consistent, "stored %+v, folded %+v", check.Stored, check.Reconstructed)
}

func (h *harness) setDestination(t *testing.T, dest string) {
	t.Helper()
	require.NoError(t, h.wallets.SetPayoutDestination(context.Background(), h.seller.UserID, dest))
}

// fundAvailable credits and releases amount straight into the seller's available balance.
func (h *harness) fundAvailable(t *testing.T, amount int64) {
	t.Helper()
	ctx := context.Background()
	tx, err := h.store.Transactor().Begin(ctx)
	require.NoError(t, err)
	orderID := uuid.New()
	require.NoError(t, h.ledger.CreditPending(ctx, tx, h.seller.UserID, amount, orderID))
	require.NoError(t, h.ledger.MoveToAvailable(ctx, tx, h.seller.UserID, amount, orderID))
	require.NoError(t, tx.Commit(ctx))
}

func (h *harness) openCases(t *testing.T) []domain.ReconciliationCase {
	t.Helper()
	cases, err := h.store.Reconciliation().ListOpen(context.Background(), 0)
	require.NoError(t, err)
	return cases
}

// failingOrders fails order writes on demand, as a lost connection would.
type failingOrders struct {
	ports.OrderRepository
	fail atomic.Bool
}

var errConnReset = errors.New("connection reset by peer")

func (f *failingOrders) Update(ctx context.Context, tx pgx.Tx, o *domain.Order) error {
	if f.fail.Load() {
		return errConnReset
	}
	return f.OrderRepository.Update(ctx, tx, o)
}
