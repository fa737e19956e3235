package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"escrow-settlement/internal/core/domain"
	"escrow-settlement/internal/core/ports"
	"escrow-settlement/internal/metrics"
	"escrow-settlement/internal/tracing"
	"escrow-settlement/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// PayoutExecutor implements ports.PayoutService. The wallet's payout lock is held
// across the processor calls so a concurrent request is rejected, not interleaved.
type PayoutExecutor struct {
	wallets         ports.WalletRepository
	payouts         ports.PayoutRepository
	ledger          *WalletLedger
	processor       ports.LedgerClient
	transactor      ports.DBTransactor
	recorder        *ReconciliationRecorder
	notifier        ports.Notifier
	fees            domain.FeePolicy
	platformAccount string
	log             zerolog.Logger
}

// NewPayoutExecutor creates a new PayoutExecutor.
func NewPayoutExecutor(
	wallets ports.WalletRepository,
	payouts ports.PayoutRepository,
	ledger *WalletLedger,
	processor ports.LedgerClient,
	transactor ports.DBTransactor,
	recorder *ReconciliationRecorder,
	notifier ports.Notifier,
	fees domain.FeePolicy,
	platformAccount string,
	log zerolog.Logger,
) *PayoutExecutor {
	return &PayoutExecutor{
		wallets:         wallets,
		payouts:         payouts,
		ledger:          ledger,
		processor:       processor,
		transactor:      transactor,
		recorder:        recorder,
		notifier:        notifier,
		fees:            fees,
		platformAccount: platformAccount,
		log:             log,
	}
}

// RequestPayout pays out a seller's available balance. Instant payouts take the
// whole available balance and pay the fee to the platform first.
func (s *PayoutExecutor) RequestPayout(ctx context.Context, actor ports.Actor, req ports.PayoutRequest) (payout *domain.Payout, err error) {
	ctx, span := tracing.StartSpan(ctx, "payout.request", tracing.SellerID(req.SellerID.String()))
	defer func() {
		result := "ok"
		if err != nil {
			result = string(apperror.KindOf(err))
		}
		metrics.PayoutsTotal.WithLabelValues(string(req.Method), result).Inc()
		tracing.End(span, err)
	}()

	if actor.UserID != req.SellerID && !actor.IsAdmin {
		return nil, apperror.ErrForbidden("payouts can only be requested by the wallet owner")
	}
	if !req.Method.Valid() {
		return nil, apperror.Validation("method must be standard or instant")
	}

	// Step 1: take the lock. Everything below reads the row returned with it, so
	// no balance change can land between validation and the processor calls.
	wallet, err := s.wallets.LockForPayout(ctx, req.SellerID, time.Now().UTC())
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("lock wallet: %w", err))
	}
	if wallet == nil {
		return nil, s.lockRefused(ctx, req.SellerID)
	}

	// Step 2: validate against the locked balance.
	amount, fee, err := s.quote(wallet, req)
	if err != nil {
		return nil, s.release(ctx, req.SellerID, err)
	}

	// Keys derive from the locked version. A retry from the same balance reuses
	// them; a declined payout bumps the version so the next attempt gets new ones.
	version := "v" + strconv.FormatInt(wallet.Version, 10)
	feeKey := "payout-fee:" + wallet.ID.String() + ":" + version
	payoutKey := "payout:" + wallet.ID.String() + ":" + version
	destination := *wallet.PayoutDestination

	// Steps 3-4: processor calls, lock held.
	var feeRef *string
	if fee > 0 {
		ref, err := s.transferFee(ctx, destination, fee, feeKey)
		if err != nil {
			return nil, s.fail(ctx, req.SellerID, apperror.ErrExternalLedger("fee transfer", err))
		}
		feeRef = &ref
	}
	payoutRef, err := s.sendPayout(ctx, destination, amount-fee, req.Method, payoutKey)
	if err != nil {
		cause := apperror.ErrExternalLedger("payout", err)
		if feeRef != nil && declined(err) {
			// The fee already left the seller's account; keep the wallet locked
			// until an operator refunds it.
			return nil, s.recorder.Record(ctx, &domain.ReconciliationCase{
				Operation:      "payout_fee",
				SellerID:       &req.SellerID,
				ExternalRef:    *feeRef,
				IdempotencyKey: feeKey,
				AmountCents:    fee,
			}, cause)
		}
		return nil, s.fail(ctx, req.SellerID, cause)
	}

	// Step 5: debit, record and unlock in one transaction.
	payout = &domain.Payout{
		ID:                uuid.New(),
		WalletID:          wallet.ID,
		SellerID:          req.SellerID,
		GrossCents:        amount,
		FeeCents:          fee,
		NetCents:          amount - fee,
		Method:            req.Method,
		ExternalPayoutRef: payoutRef,
		FeeTransferRef:    feeRef,
		Status:            "paid",
		CreatedAt:         time.Now().UTC(),
	}
	if err := s.record(ctx, payout); err != nil {
		// Money left the processor; keep the wallet locked until an operator reconciles.
		return nil, s.recorder.Record(ctx, &domain.ReconciliationCase{
			Operation:      "payout",
			SellerID:       &req.SellerID,
			ExternalRef:    payoutRef,
			IdempotencyKey: payoutKey,
			AmountCents:    amount,
		}, err)
	}

	metrics.PayoutFeesCents.Add(float64(fee))
	metrics.MoneyMovedCents.WithLabelValues("payout").Add(float64(amount - fee))
	s.log.Info().
		Str("payout_id", payout.ID.String()).
		Str("seller_id", req.SellerID.String()).
		Str("method", string(req.Method)).
		Int64("gross", amount).
		Int64("fee", fee).
		Msg("payout sent")

	if s.notifier != nil {
		s.notifier.Notify(context.WithoutCancel(ctx), domain.Event{
			Version:     domain.EventVersion,
			Type:        domain.EventPayoutSent,
			PayoutID:    &payout.ID,
			RecipientID: &req.SellerID,
			ActorID:     &actor.UserID,
			Status:      payout.Status,
			AmountCents: payout.NetCents,
			OccurredAt:  payout.CreatedAt,
		})
	}
	return payout, nil
}

func (s *PayoutExecutor) transferFee(ctx context.Context, from string, fee int64, key string) (string, error) {
	var ref string
	err := observeLedger(ctx, "fee_transfer", func(ctx context.Context) error {
		res, err := s.processor.Transfer(ctx, ports.LedgerTransferRequest{
			AmountCents:           fee,
			DestinationAccountRef: s.platformAccount,
			FromAccountRef:        from,
			IdempotencyKey:        key,
		})
		if err != nil {
			return err
		}
		ref = res.TransferID
		return nil
	}, tracing.AmountCents(fee), tracing.IdempotencyKey(key))
	return ref, err
}

func (s *PayoutExecutor) sendPayout(ctx context.Context, destination string, net int64, method domain.PayoutMethod, key string) (string, error) {
	var ref string
	err := observeLedger(ctx, "payout", func(ctx context.Context) error {
		res, err := s.processor.Payout(ctx, ports.LedgerPayoutRequest{
			AmountCents:           net,
			DestinationAccountRef: destination,
			Method:                method,
			IdempotencyKey:        key,
		})
		if err != nil {
			return err
		}
		if !payoutAccepted(res.Status) {
			return fmt.Errorf("payout %s ended with status %q", res.PayoutID, res.Status)
		}
		ref = res.PayoutID
		return nil
	}, tracing.AmountCents(net), tracing.IdempotencyKey(key))
	return ref, err
}

// record writes the debit, the payout row and the unlock atomically.
func (s *PayoutExecutor) record(ctx context.Context, payout *domain.Payout) error {
	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	if err := s.ledger.Withdraw(ctx, dbTx, payout.SellerID, payout.GrossCents, payout.ID); err != nil {
		return fmt.Errorf("withdraw: %w", err)
	}
	if err := s.payouts.Create(ctx, dbTx, payout); err != nil {
		return fmt.Errorf("create payout: %w", err)
	}
	if err := s.wallets.Unlock(ctx, dbTx, payout.SellerID); err != nil {
		return fmt.Errorf("unlock wallet: %w", err)
	}
	if err := dbTx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// quote validates req against the locked wallet and returns the gross amount and fee.
func (s *PayoutExecutor) quote(wallet *domain.Wallet, req ports.PayoutRequest) (amount, fee int64, err error) {
	if wallet.PayoutDestination == nil || *wallet.PayoutDestination == "" {
		return 0, 0, apperror.ErrMissingProcessorRef("seller payout destination")
	}
	amount = req.AmountCents
	if req.Method == domain.PayoutMethodInstant {
		amount = wallet.AvailableCents
	}
	if amount <= 0 {
		return 0, 0, apperror.ErrInvalidAmount()
	}
	if amount > wallet.AvailableCents {
		return 0, 0, apperror.ErrInsufficientFunds()
	}
	fee = s.fees.Fee(req.Method, amount)
	if fee >= amount {
		return 0, 0, apperror.ErrInvalidAmount()
	}
	return amount, fee, nil
}

// lockRefused tells a missing wallet apart from one with a payout in flight.
func (s *PayoutExecutor) lockRefused(ctx context.Context, sellerID uuid.UUID) error {
	wallet, err := s.wallets.GetBySellerID(ctx, sellerID)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("get wallet: %w", err))
	}
	if wallet == nil {
		return apperror.ErrNotFound("wallet")
	}
	return apperror.ErrWalletBusy()
}

// fail ends a payout whose processor call did not go through. A declined call
// moves the wallet to a new version, since the processor replays a refusal for
// a reused idempotency key. Any other failure keeps the keys for a retry.
func (s *PayoutExecutor) fail(ctx context.Context, sellerID uuid.UUID, cause error) error {
	if !declined(cause) {
		return s.release(ctx, sellerID, cause)
	}
	ctx = context.WithoutCancel(ctx)
	if err := s.retire(ctx, sellerID); err != nil {
		s.log.Error().Err(err).Str("seller_id", sellerID.String()).Msg("failed to retire payout keys after decline")
		return s.release(ctx, sellerID, cause)
	}
	s.log.Warn().Err(cause).Str("seller_id", sellerID.String()).Msg("payout declined, balance untouched")
	return cause
}

// retire bumps the wallet version and drops the lock in one transaction.
func (s *PayoutExecutor) retire(ctx context.Context, sellerID uuid.UUID) error {
	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	wallet, err := s.wallets.GetBySellerIDForUpdate(ctx, dbTx, sellerID)
	if err != nil {
		return fmt.Errorf("lock wallet row: %w", err)
	}
	if wallet == nil {
		return fmt.Errorf("wallet for seller %s not found", sellerID)
	}
	wallet.Version++
	wallet.UpdatedAt = time.Now().UTC()
	if err := s.wallets.UpdateBalances(ctx, dbTx, wallet); err != nil {
		return fmt.Errorf("bump wallet version: %w", err)
	}
	if err := s.wallets.Unlock(ctx, dbTx, sellerID); err != nil {
		return fmt.Errorf("unlock wallet: %w", err)
	}
	return dbTx.Commit(ctx)
}

// release drops the payout lock and returns cause.
func (s *PayoutExecutor) release(ctx context.Context, sellerID uuid.UUID, cause error) error {
	if err := s.wallets.Unlock(context.WithoutCancel(ctx), nil, sellerID); err != nil {
		s.log.Error().Err(err).Str("seller_id", sellerID.String()).Msg("failed to unlock wallet after payout failure")
	}
	s.log.Warn().Err(cause).Str("seller_id", sellerID.String()).Msg("payout failed, balance untouched")
	return cause
}
