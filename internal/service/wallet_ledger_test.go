package service

import (
	"context"
	"testing"
	"time"

	"escrow-settlement/internal/core/domain"
	"escrow-settlement/internal/core/ports"
	"escrow-settlement/pkg/apperror"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func inTx(t *testing.T, h *harness, fn func(ctx context.Context, tx pgx.Tx) error) error {
	t.Helper()
	ctx := context.Background()
	tx, err := h.store.Transactor().Begin(ctx)
	require.NoError(t, err)
	defer tx.Rollback(ctx) //nolint:errcheck
	if err := fn(ctx, tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func TestWalletLedger_CreditCreatesWalletAndLogsRow(t *testing.T) {
	h := newHarness(t)
	orderID := uuid.New()

	err := inTx(t, h, func(ctx context.Context, tx pgx.Tx) error {
		return h.ledger.CreditPending(ctx, tx, h.seller.UserID, 4000, orderID)
	})
	require.NoError(t, err)

	assert.Equal(t, domain.Balances{PendingCents: 4000, LifetimeEarningsCents: 4000}, h.balances(t))
	txns, total, err := h.wallets.ListTransactions(context.Background(), ports.WalletTxListParams{SellerID: h.seller.UserID})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, domain.WalletTxCredit, txns[0].Kind)
	assert.Equal(t, orderID, *txns[0].OrderID)
}

func TestWalletLedger_RejectsNegativeBalances(t *testing.T) {
	h := newHarness(t)
	h.fundAvailable(t, 1000)

	err := inTx(t, h, func(ctx context.Context, tx pgx.Tx) error {
		return h.ledger.ReversePending(ctx, tx, h.seller.UserID, 1, uuid.New())
	})
	assert.True(t, apperror.IsKind(err, apperror.KindInsufficientFunds))

	err = inTx(t, h, func(ctx context.Context, tx pgx.Tx) error {
		return h.ledger.MoveToAvailable(ctx, tx, h.seller.UserID, 500, uuid.New())
	})
	assert.True(t, apperror.IsKind(err, apperror.KindInsufficientFunds))

	assert.Equal(t, domain.Balances{AvailableCents: 1000, LifetimeEarningsCents: 1000}, h.balances(t))
	h.requireConsistentLedger(t)
}

func TestWalletLedger_RejectsNonPositiveAmounts(t *testing.T) {
	h := newHarness(t)

	for _, amount := range []int64{0, -100} {
		err := inTx(t, h, func(ctx context.Context, tx pgx.Tx) error {
			return h.ledger.CreditPending(ctx, tx, h.seller.UserID, amount, uuid.New())
		})
		assert.True(t, apperror.IsKind(err, apperror.KindInvalidAmount))
	}
}

func TestWalletLedger_PayoutLockGuardsBalances(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.fundAvailable(t, 1000)

	// Withdrawing requires the lock.
	err := inTx(t, h, func(ctx context.Context, tx pgx.Tx) error {
		return h.ledger.Withdraw(ctx, tx, h.seller.UserID, 100, uuid.New())
	})
	assert.True(t, apperror.IsKind(err, apperror.KindInternal))

	locked, err := h.store.Wallets().LockForPayout(ctx, h.seller.UserID, time.Now())
	require.NoError(t, err)
	require.NotNil(t, locked)

	// Crediting while locked is refused.
	err = inTx(t, h, func(ctx context.Context, tx pgx.Tx) error {
		return h.ledger.CreditPending(ctx, tx, h.seller.UserID, 100, uuid.New())
	})
	assert.True(t, apperror.IsKind(err, apperror.KindResourceLocked))

	err = inTx(t, h, func(ctx context.Context, tx pgx.Tx) error {
		return h.ledger.Withdraw(ctx, tx, h.seller.UserID, 400, uuid.New())
	})
	require.NoError(t, err)
	assert.Equal(t, int64(600), h.balances(t).AvailableCents)
	h.requireConsistentLedger(t)
}

func TestWalletLedger_RollbackDiscardsBalanceAndRows(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.fundAvailable(t, 1000)

	tx, err := h.store.Transactor().Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, h.ledger.CreditPending(ctx, tx, h.seller.UserID, 700, uuid.New()))
	require.NoError(t, tx.Rollback(ctx))

	assert.Equal(t, int64(0), h.balances(t).PendingCents)
	h.requireConsistentLedger(t)
}

func TestWalletService_SummaryWithoutWallet(t *testing.T) {
	h := newHarness(t)

	s, err := h.wallets.Summary(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Equal(t, domain.Balances{}, s.Balances)
	assert.False(t, s.HasPayoutDest)
	assert.NotNil(t, s.RecentPayouts)
}

func TestWalletService_VerifyAndDestination(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	_, err := h.wallets.Verify(ctx, h.seller.UserID)
	assert.True(t, apperror.IsKind(err, apperror.KindNotFound))

	err = h.wallets.SetPayoutDestination(ctx, h.seller.UserID, "")
	assert.True(t, apperror.IsKind(err, apperror.KindValidation))

	h.setDestination(t, "acct_seller")
	s, err := h.wallets.Summary(ctx, h.seller.UserID)
	require.NoError(t, err)
	assert.True(t, s.HasPayoutDest)

	check, err := h.wallets.Verify(ctx, h.seller.UserID)
	require.NoError(t, err)
	assert.True(t, check.Consistent)
	assert.Equal(t, 0, check.Entries)
}
