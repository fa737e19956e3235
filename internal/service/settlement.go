package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"escrow-settlement/internal/core/domain"
	"escrow-settlement/internal/core/ports"
	"escrow-settlement/internal/metrics"
	"escrow-settlement/internal/tracing"
	"escrow-settlement/pkg/apperror"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// SettlementPolicy holds the timers that drive scheduler entry points.
type SettlementPolicy struct {
	InspectionWindow time.Duration
	ClearingPeriod   time.Duration
	ReturnDeadline   time.Duration
	PaymentEventTTL  time.Duration
}

// DefaultSettlementPolicy returns the production timers.
func DefaultSettlementPolicy() SettlementPolicy {
	return SettlementPolicy{
		InspectionWindow: 72 * time.Hour,
		ClearingPeriod:   48 * time.Hour,
		ReturnDeadline:   7 * 24 * time.Hour,
		PaymentEventTTL:  72 * time.Hour,
	}
}

// EngineDeps are the collaborators of the settlement engine.
// EventCache may be nil.
type EngineDeps struct {
	Transactor ports.DBTransactor
	Orders     ports.OrderRepository
	Offers     ports.OfferRepository
	Disputes   ports.DisputeRepository
	Wallets    ports.WalletRepository
	Ledger     *WalletLedger
	Processor  ports.LedgerClient
	Recorder   *ReconciliationRecorder
	Notifier   ports.Notifier
	EventCache ports.PaymentEventCache
}

// SettlementEngine implements ports.SettlementEngine.
type SettlementEngine struct {
	transactor ports.DBTransactor
	orders     ports.OrderRepository
	offers     ports.OfferRepository
	disputes   ports.DisputeRepository
	wallets    ports.WalletRepository
	ledger     *WalletLedger
	processor  ports.LedgerClient
	recorder   *ReconciliationRecorder
	notifier   ports.Notifier
	events     ports.PaymentEventCache
	policy     SettlementPolicy
	now        func() time.Time
	log        zerolog.Logger
}

// NewSettlementEngine creates a new SettlementEngine.
func NewSettlementEngine(deps EngineDeps, policy SettlementPolicy, log zerolog.Logger) *SettlementEngine {
	return &SettlementEngine{
		transactor: deps.Transactor,
		orders:     deps.Orders,
		offers:     deps.Offers,
		disputes:   deps.Disputes,
		wallets:    deps.Wallets,
		ledger:     deps.Ledger,
		processor:  deps.Processor,
		recorder:   deps.Recorder,
		notifier:   deps.Notifier,
		events:     deps.EventCache,
		policy:     policy,
		now:        func() time.Time { return time.Now().UTC() },
		log:        log,
	}
}

// errReplay short-circuits a transition that already happened.
var errReplay = errors.New("transition already applied")

// transition is one guarded state change on an order. Guards run against the
// row read under lock, in order: check, from, guard. apply mutates the order
// and writes any other rows; the order itself is written last.
type transition struct {
	op      string
	orderID uuid.UUID
	actor   *ports.Actor
	from    []domain.OrderStatus
	to      domain.OrderStatus // empty keeps the current status

	check func(o *domain.Order) error
	guard func(o *domain.Order) error
	apply func(ctx context.Context, tx pgx.Tx, o *domain.Order) error

	event  domain.EventType
	amount func(o *domain.Order) int64

	// claim is the settlement key this transition holds. Any other claim on the
	// order blocks the transition.
	claim string
}

// transition runs t in a single database transaction.
func (e *SettlementEngine) transition(ctx context.Context, t transition) (res *ports.TransitionResult, err error) {
	ctx, span := tracing.StartSpan(ctx, "settlement."+t.op, tracing.OrderID(t.orderID.String()))
	defer func() {
		e.observe(t.op, res, err)
		tracing.End(span, err)
	}()

	var order *domain.Order
	replayed := false
	err = e.runInTx(ctx, func(tx pgx.Tx) error {
		o, err := e.orders.GetByIDForUpdate(ctx, tx, t.orderID)
		if err != nil {
			return apperror.InternalError(fmt.Errorf("lock order: %w", err))
		}
		if o == nil {
			return apperror.ErrNotFound("order")
		}
		if err := t.verify(o); err != nil {
			if errors.Is(err, errReplay) {
				order, replayed = o, true
				return nil
			}
			return err
		}
		if o.SettlementKey != nil && *o.SettlementKey != t.claim {
			return apperror.ErrInvalidTransition(t.op+" while "+*o.SettlementKey+" is in flight", string(o.Status))
		}

		if t.apply != nil {
			if err := t.apply(ctx, tx, o); err != nil {
				return err
			}
		}
		if t.to != "" {
			o.Status = t.to
		}
		o.UpdatedAt = e.now()
		if err := e.orders.Update(ctx, tx, o); err != nil {
			return apperror.InternalError(fmt.Errorf("update order: %w", err))
		}
		order = o
		return nil
	})
	if err != nil {
		return nil, err
	}

	if replayed {
		e.log.Info().Str("op", t.op).Str("order_id", order.ID.String()).Msg("transition replayed, no changes")
		return &ports.TransitionResult{Order: order, Replayed: true}, nil
	}

	e.log.Info().
		Str("op", t.op).
		Str("order_id", order.ID.String()).
		Str("status", string(order.Status)).
		Str("escrow", string(order.EscrowStatus)).
		Msg("order transitioned")
	if t.event != "" {
		var amount int64
		if t.amount != nil {
			amount = t.amount(order)
		}
		e.emit(ctx, t.event, order, nil, t.actor, amount)
	}
	return &ports.TransitionResult{Order: order}, nil
}

// verify runs the guards of t against o.
func (t transition) verify(o *domain.Order) error {
	if t.check != nil {
		if err := t.check(o); err != nil {
			return err
		}
	}
	if len(t.from) > 0 && !o.InStatus(t.from...) {
		return apperror.ErrInvalidTransition(t.op, string(o.Status))
	}
	if t.guard != nil {
		return t.guard(o)
	}
	return nil
}

// moneyMove is the processor side of a settling transition.
type moneyMove struct {
	escrow domain.EscrowStatus // escrow status once settled
	amount func(o *domain.Order) int64
	key    func(o *domain.Order) string
	// call performs the processor request and returns its reference.
	call func(ctx context.Context, o *domain.Order, amount int64, key string) (string, error)
	// wallet reports whether settling o mutates the seller's wallet.
	wallet func(o *domain.Order) bool
}

// settlementKey is the idempotency key of a money move on o. A declined attempt
// bumps SettlementAttempts so the next one is not answered with the old refusal.
func settlementKey(prefix string, o *domain.Order) string {
	if o.SettlementAttempts == 0 {
		return prefix + o.ID.String()
	}
	return prefix + o.ID.String() + ":" + strconv.Itoa(o.SettlementAttempts)
}

// settle runs a money-moving transition in three steps. The first claims the
// order under the move's idempotency key, with every guard checked on the
// locked row. The processor call runs outside any lock. The last step is the
// guarded transition, which only the claim holder can commit. While a claim is
// held no other money move or transition on the order can start, so two moves
// can never both reach the processor. A failed commit after a successful call
// is recorded for reconciliation.
func (e *SettlementEngine) settle(ctx context.Context, t transition, m moneyMove) (*ports.TransitionResult, error) {
	settleCheck := t.check
	var lockedEscrow domain.EscrowStatus
	t.check = func(o *domain.Order) error {
		lockedEscrow = o.EscrowStatus
		if settleCheck != nil {
			if err := settleCheck(o); err != nil {
				return err
			}
		}
		if o.EscrowStatus.IsSettled() {
			return apperror.ErrEscrowSettled(string(o.EscrowStatus))
		}
		return nil
	}
	t.amount = m.amount

	claimed, amount, key, err := e.claim(ctx, t, m)
	if err != nil {
		e.observe(t.op, nil, err)
		return nil, err
	}

	ref, err := m.call(ctx, claimed, amount, key)
	if err != nil {
		e.unclaim(ctx, t.op, claimed.ID, key, err)
		e.observe(t.op, nil, err)
		return nil, err
	}

	apply := t.apply
	t.claim = key
	t.apply = func(ctx context.Context, tx pgx.Tx, o *domain.Order) error {
		if o.ProcessorChargeRef == "" {
			return apperror.ErrMissingProcessorRef("processor charge reference")
		}
		if m.amount(o) != amount {
			return apperror.InternalError(fmt.Errorf("order amount changed during %s", t.op))
		}
		if apply != nil {
			if err := apply(ctx, tx, o); err != nil {
				return err
			}
		}
		o.EscrowStatus = m.escrow
		o.SettlementKey = nil
		switch m.escrow {
		case domain.EscrowRefunded:
			o.ProcessorRefundRef = &ref
		case domain.EscrowReleased:
			o.ProcessorTransferRef = &ref
		}
		return nil
	}

	res, err := e.transition(ctx, t)
	if err == nil {
		metrics.MoneyMovedCents.WithLabelValues(t.op).Add(float64(amount))
		return res, nil
	}
	// The same logical operation already settled under the same idempotency key.
	if lockedEscrow == m.escrow && apperror.IsKind(err, apperror.KindAlreadyProcessed) {
		return nil, err
	}

	c := &domain.ReconciliationCase{
		Operation:      t.op,
		OrderID:        &claimed.ID,
		SellerID:       &claimed.SellerID,
		ExternalRef:    ref,
		IdempotencyKey: key,
		AmountCents:    amount,
	}
	return nil, e.recorder.Record(ctx, c, err)
}

// claim locks the order, runs the guards of t and the money guards, and stores
// the move's idempotency key on the order. A claim held under another key means
// a different money move is in flight. A claim under the same key is the same
// move retried after an ambiguous processor error, and may call again.
func (e *SettlementEngine) claim(ctx context.Context, t transition, m moneyMove) (o *domain.Order, amount int64, key string, err error) {
	err = e.runInTx(ctx, func(tx pgx.Tx) error {
		locked, err := e.orders.GetByIDForUpdate(ctx, tx, t.orderID)
		if err != nil {
			return apperror.InternalError(fmt.Errorf("lock order: %w", err))
		}
		if locked == nil {
			return apperror.ErrNotFound("order")
		}
		if err := t.verify(locked); err != nil {
			if errors.Is(err, errReplay) {
				return apperror.ErrAlreadyProcessed(t.op + " already applied")
			}
			return err
		}
		amount = m.amount(locked)
		if err := e.moneyGuards(ctx, locked, amount, m.wallet(locked)); err != nil {
			return err
		}

		key = m.key(locked)
		if locked.SettlementKey != nil && *locked.SettlementKey != key {
			return apperror.ErrInvalidTransition(t.op+" while "+*locked.SettlementKey+" is in flight", string(locked.Status))
		}
		now := e.now()
		locked.SettlementKey = &key
		locked.SettlementTriedAt = &now
		locked.UpdatedAt = now
		if err := e.orders.Update(ctx, tx, locked); err != nil {
			return apperror.InternalError(fmt.Errorf("claim order: %w", err))
		}
		o = locked
		return nil
	})
	return o, amount, key, err
}

// unclaim drops the claim after a failed processor call. A declined call also
// bumps the attempt so the next claim gets a new key. Any other ledger failure
// may have moved money, so the claim stays and only the same move can retry.
func (e *SettlementEngine) unclaim(ctx context.Context, op string, orderID uuid.UUID, key string, cause error) {
	log := e.log.With().Str("op", op).Str("order_id", orderID.String()).Str("idempotency_key", key).Logger()
	rejected := declined(cause)
	if apperror.IsKind(cause, apperror.KindExternalLedgerFailure) && !rejected {
		log.Warn().Err(cause).Msg("processor outcome unknown, settlement claim kept")
		return
	}

	ctx = context.WithoutCancel(ctx)
	err := e.runInTx(ctx, func(tx pgx.Tx) error {
		o, err := e.orders.GetByIDForUpdate(ctx, tx, orderID)
		if err != nil {
			return err
		}
		if o == nil || o.SettlementKey == nil || *o.SettlementKey != key {
			return nil
		}
		o.SettlementKey = nil
		if rejected {
			o.SettlementAttempts++
		}
		o.UpdatedAt = e.now()
		return e.orders.Update(ctx, tx, o)
	})
	if err != nil {
		log.Error().Err(err).Msg("failed to drop settlement claim")
		return
	}
	log.Info().Bool("declined", rejected).Msg("settlement claim dropped")
}

// moneyGuards checks what a processor call needs before it is attempted.
func (e *SettlementEngine) moneyGuards(ctx context.Context, o *domain.Order, amount int64, touchesWallet bool) error {
	if o.ProcessorChargeRef == "" {
		return apperror.ErrMissingProcessorRef("processor charge reference")
	}
	if amount <= 0 {
		return apperror.ErrInvalidAmount()
	}
	if !touchesWallet {
		return nil
	}
	wallet, err := e.wallets.GetBySellerID(ctx, o.SellerID)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("get wallet: %w", err))
	}
	if wallet != nil && wallet.PayoutLocked {
		return apperror.ErrWalletBusy()
	}
	return nil
}

// runInTx begins a transaction, runs fn and commits. Any error rolls back.
func (e *SettlementEngine) runInTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	dbTx, err := e.transactor.Begin(ctx)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	if err := fn(dbTx); err != nil {
		return err
	}
	if err := dbTx.Commit(ctx); err != nil {
		return apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}
	return nil
}

func (e *SettlementEngine) observe(op string, res *ports.TransitionResult, err error) {
	result := "ok"
	switch {
	case err != nil:
		result = string(apperror.KindOf(err))
	case res != nil && res.Replayed:
		result = "replayed"
	}
	metrics.TransitionsTotal.WithLabelValues(op, result).Inc()
}

// emit hands an event to the notifier after commit.
func (e *SettlementEngine) emit(ctx context.Context, typ domain.EventType, o *domain.Order, d *domain.Dispute, actor *ports.Actor, amount int64) {
	if e.notifier == nil {
		return
	}
	ev := domain.Event{
		Version:     domain.EventVersion,
		Type:        typ,
		OrderID:     &o.ID,
		Status:      string(o.Status),
		AmountCents: amount,
		OccurredAt:  e.now(),
	}
	if d != nil {
		ev.DisputeID = &d.ID
		ev.Status = string(d.Status)
	}
	if actor != nil {
		ev.ActorID = &actor.UserID
		switch actor.UserID {
		case o.BuyerID:
			ev.RecipientID = &o.SellerID
		case o.SellerID:
			ev.RecipientID = &o.BuyerID
		}
	}
	e.notifier.Notify(context.WithoutCancel(ctx), ev)
}

// role is a bit set of who may perform an operation.
type role uint8

const (
	roleBuyer role = 1 << iota
	roleSeller
	roleAdmin
)

// authorize checks that actor holds one of the allowed roles on o.
func authorize(actor ports.Actor, o *domain.Order, allowed role) error {
	switch {
	case allowed&roleAdmin != 0 && actor.IsAdmin:
		return nil
	case allowed&roleBuyer != 0 && actor.UserID == o.BuyerID:
		return nil
	case allowed&roleSeller != 0 && actor.UserID == o.SellerID:
		return nil
	}
	return apperror.ErrForbidden("caller may not perform this action on the order")
}

func authorizer(actor ports.Actor, allowed role) func(o *domain.Order) error {
	return func(o *domain.Order) error { return authorize(actor, o, allowed) }
}

func ptr[T any](v T) *T { return &v }
