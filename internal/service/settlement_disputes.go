package service

import (
	"context"
	"errors"
	"fmt"

	"escrow-settlement/internal/core/domain"
	"escrow-settlement/internal/core/ports"
	"escrow-settlement/internal/tracing"
	"escrow-settlement/pkg/apperror"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Order states a dispute may be opened from.
var disputableStates = []domain.OrderStatus{
	domain.OrderStatusPaid,
	domain.OrderStatusShipped,
	domain.OrderStatusDelivered,
	domain.OrderStatusIssueReported,
	domain.OrderStatusReturnStarted,
	domain.OrderStatusReturnProcessing,
}

// GetDispute returns the dispute to a party of its order or an admin.
func (e *SettlementEngine) GetDispute(ctx context.Context, actor ports.Actor, disputeID uuid.UUID) (*domain.Dispute, error) {
	d, err := e.disputes.GetByID(ctx, disputeID)
	if err != nil {
		return nil, apperror.InternalError(err)
	}
	if d == nil {
		return nil, apperror.ErrNotFound("dispute")
	}
	o, err := e.orders.GetByID(ctx, d.OrderID)
	if err != nil {
		return nil, apperror.InternalError(err)
	}
	if o == nil {
		return nil, apperror.ErrNotFound("order")
	}
	if err := authorize(actor, o, roleBuyer|roleSeller|roleAdmin); err != nil {
		return nil, err
	}
	return d, nil
}

// OpenDispute flags the order and opens a dispute. No money moves.
func (e *SettlementEngine) OpenDispute(ctx context.Context, actor ports.Actor, req ports.OpenDisputeRequest) (*ports.TransitionResult, error) {
	if req.Reason == "" {
		return nil, apperror.Validation("reason is required")
	}

	var dispute *domain.Dispute
	res, err := e.transition(ctx, transition{
		op:      "open_dispute",
		orderID: req.OrderID,
		actor:   &actor,
		check: func(o *domain.Order) error {
			if err := authorize(actor, o, roleBuyer|roleSeller); err != nil {
				return err
			}
			if o.Status == domain.OrderStatusDisputed {
				return apperror.ErrDisputeExists()
			}
			return nil
		},
		from: disputableStates,
		to:   domain.OrderStatusDisputed,
		apply: func(ctx context.Context, tx pgx.Tx, o *domain.Order) error {
			open, err := e.disputes.GetOpenByOrderID(ctx, tx, o.ID)
			if err != nil {
				return apperror.InternalError(fmt.Errorf("check open dispute: %w", err))
			}
			if open != nil {
				return apperror.ErrDisputeExists()
			}

			now := e.now()
			party := partyOf(actor, o)
			d := &domain.Dispute{
				ID:             uuid.New(),
				OrderID:        o.ID,
				OpenedBy:       party,
				OpenedByUserID: actor.UserID,
				Reason:         req.Reason,
				Description:    req.Description,
				BuyerEvidence:  []string{},
				SellerEvidence: []string{},
				Status:         domain.DisputeStatusOpen,
				CreatedAt:      now,
				UpdatedAt:      now,
			}
			d.AppendEvidence(party, req.Evidence)
			if err := e.disputes.Create(ctx, tx, d); err != nil {
				return apperror.InternalError(fmt.Errorf("create dispute: %w", err))
			}
			o.DisputeFlag = true
			dispute = d
			return nil
		},
	})
	if err != nil {
		return nil, err
	}

	res.Dispute = dispute
	e.emit(ctx, domain.EventDisputeOpened, res.Order, dispute, &actor, 0)
	return res, nil
}

// RespondToDispute records the other party's answer and appends their evidence.
func (e *SettlementEngine) RespondToDispute(ctx context.Context, actor ports.Actor, disputeID uuid.UUID, response string, evidence []string) (*ports.TransitionResult, error) {
	if response == "" {
		return nil, apperror.Validation("response is required")
	}
	return e.disputeStep(ctx, "respond_to_dispute", disputeID, &actor, domain.EventDisputeResponded,
		func(d *domain.Dispute, o *domain.Order) error {
			if !o.IsParty(actor.UserID) {
				return apperror.ErrForbidden("only a party to the order can respond")
			}
			party := partyOf(actor, o)
			if party == d.OpenedBy {
				return apperror.ErrForbidden("the party that opened the dispute cannot respond to it")
			}
			if d.Status != domain.DisputeStatusOpen && d.Status != domain.DisputeStatusUnderReview {
				return apperror.ErrDisputeNotOpen(string(d.Status))
			}
			d.AppendEvidence(party, evidence)
			d.Response = &response
			d.RespondedAt = ptr(e.now())
			d.Status = domain.DisputeStatusSellerResponded
			return nil
		})
}

// AddDisputeEvidence appends urls to the caller's side of an unresolved dispute.
func (e *SettlementEngine) AddDisputeEvidence(ctx context.Context, actor ports.Actor, disputeID uuid.UUID, urls []string) (*ports.TransitionResult, error) {
	if len(urls) == 0 {
		return nil, apperror.Validation("at least one evidence url is required")
	}
	return e.disputeStep(ctx, "add_dispute_evidence", disputeID, &actor, domain.EventDisputeEvidence,
		func(d *domain.Dispute, o *domain.Order) error {
			if !o.IsParty(actor.UserID) {
				return apperror.ErrForbidden("only a party to the order can add evidence")
			}
			d.AppendEvidence(partyOf(actor, o), urls)
			return nil
		})
}

// MarkDisputeUnderReview hands the dispute to an admin.
func (e *SettlementEngine) MarkDisputeUnderReview(ctx context.Context, actor ports.Actor, disputeID uuid.UUID) (*ports.TransitionResult, error) {
	if !actor.IsAdmin {
		return nil, apperror.ErrForbidden("only admins can review disputes")
	}
	return e.disputeStep(ctx, "review_dispute", disputeID, &actor, domain.EventDisputeUnderReview,
		func(d *domain.Dispute, _ *domain.Order) error {
			if d.Status == domain.DisputeStatusUnderReview {
				return errReplay
			}
			d.Status = domain.DisputeStatusUnderReview
			return nil
		})
}

// disputeStep runs a dispute-only change under the dispute's row lock.
// The order is read for authorization and is not written.
func (e *SettlementEngine) disputeStep(
	ctx context.Context,
	op string,
	disputeID uuid.UUID,
	actor *ports.Actor,
	event domain.EventType,
	fn func(d *domain.Dispute, o *domain.Order) error,
) (res *ports.TransitionResult, err error) {
	ctx, span := tracing.StartSpan(ctx, "settlement."+op, tracing.DisputeID(disputeID.String()))
	defer func() {
		e.observe(op, res, err)
		tracing.End(span, err)
	}()

	var (
		dispute  *domain.Dispute
		order    *domain.Order
		replayed bool
	)
	err = e.runInTx(ctx, func(tx pgx.Tx) error {
		d, err := e.disputes.GetByIDForUpdate(ctx, tx, disputeID)
		if err != nil {
			return apperror.InternalError(fmt.Errorf("lock dispute: %w", err))
		}
		if d == nil {
			return apperror.ErrNotFound("dispute")
		}
		o, err := e.orders.GetByID(ctx, d.OrderID)
		if err != nil {
			return apperror.InternalError(fmt.Errorf("get order: %w", err))
		}
		if o == nil {
			return apperror.ErrNotFound("order")
		}
		dispute, order = d, o
		if d.Status.IsTerminal() {
			return apperror.ErrDisputeAlreadyResolved()
		}

		if err := fn(d, o); err != nil {
			if errors.Is(err, errReplay) {
				replayed = true
				return nil
			}
			return err
		}
		d.UpdatedAt = e.now()
		if err := e.disputes.Update(ctx, tx, d); err != nil {
			return apperror.InternalError(fmt.Errorf("update dispute: %w", err))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	res = &ports.TransitionResult{Order: order, Dispute: dispute, Replayed: replayed}
	if !replayed {
		e.log.Info().Str("op", op).Str("dispute_id", dispute.ID.String()).Str("status", string(dispute.Status)).Msg("dispute updated")
		e.emit(ctx, event, order, dispute, actor, 0)
	}
	return res, nil
}

// ResolveDispute settles a disputed order for one side. The dispute's resolution
// and the order's escrow change commit together, and a resolved dispute cannot
// be resolved again.
func (e *SettlementEngine) ResolveDispute(ctx context.Context, actor ports.Actor, disputeID uuid.UUID, outcome domain.Resolution, notes string) (*ports.TransitionResult, error) {
	if !actor.IsAdmin {
		return nil, apperror.ErrForbidden("only admins can resolve disputes")
	}
	if !outcome.Valid() {
		return nil, apperror.Validation("outcome must be refund or release")
	}

	d, err := e.disputes.GetByID(ctx, disputeID)
	if err != nil {
		return nil, apperror.InternalError(err)
	}
	if d == nil {
		return nil, apperror.ErrNotFound("dispute")
	}
	if d.Status.IsTerminal() {
		err := apperror.ErrDisputeAlreadyResolved()
		e.observe("resolve_dispute", nil, err)
		return nil, err
	}

	var resolved *domain.Dispute
	markResolved := func(ctx context.Context, tx pgx.Tx) error {
		locked, err := e.disputes.GetByIDForUpdate(ctx, tx, disputeID)
		if err != nil {
			return apperror.InternalError(fmt.Errorf("lock dispute: %w", err))
		}
		if locked == nil {
			return apperror.ErrNotFound("dispute")
		}
		if locked.Status.IsTerminal() {
			return apperror.ErrDisputeAlreadyResolved()
		}
		now := e.now()
		locked.Status = domain.DisputeStatusResolvedBuyer
		if outcome == domain.ResolutionRelease {
			locked.Status = domain.DisputeStatusResolvedSeller
		}
		locked.Resolution = &outcome
		locked.ResolvedBy = &actor.UserID
		locked.ResolvedAt = &now
		if notes != "" {
			locked.ResolutionNotes = &notes
		}
		locked.UpdatedAt = now
		if err := e.disputes.Update(ctx, tx, locked); err != nil {
			return apperror.InternalError(fmt.Errorf("update dispute: %w", err))
		}
		resolved = locked
		return nil
	}

	t := transition{
		op:      "resolve_dispute",
		orderID: d.OrderID,
		actor:   &actor,
		check:   authorizer(actor, roleAdmin),
		from:    []domain.OrderStatus{domain.OrderStatusDisputed},
	}
	var m moneyMove
	switch outcome {
	case domain.ResolutionRefund:
		t.to = domain.OrderStatusRefunded
		t.apply = func(ctx context.Context, tx pgx.Tx, o *domain.Order) error {
			if err := markResolved(ctx, tx); err != nil {
				return err
			}
			return e.reverseCredit(ctx, tx, o)
		}
		m = e.refundMove()
	case domain.ResolutionRelease:
		t.to = domain.OrderStatusCompleted
		t.apply = func(ctx context.Context, tx pgx.Tx, o *domain.Order) error {
			if err := markResolved(ctx, tx); err != nil {
				return err
			}
			return e.creditAndRelease(ctx, tx, o)
		}
		m = e.releaseMove()
	}

	res, err := e.settle(ctx, t, m)
	if err != nil {
		// A concurrent resolution with the same outcome won the race.
		if apperror.IsKind(err, apperror.KindAlreadyProcessed) {
			return nil, apperror.ErrDisputeAlreadyResolved()
		}
		return nil, err
	}

	res.Dispute = resolved
	e.log.Info().
		Str("dispute_id", disputeID.String()).
		Str("order_id", res.Order.ID.String()).
		Str("outcome", string(outcome)).
		Str("admin_id", actor.UserID.String()).
		Msg("dispute resolved")
	e.emit(ctx, domain.EventDisputeResolved, res.Order, resolved, &actor, m.amount(res.Order))
	return res, nil
}

func partyOf(actor ports.Actor, o *domain.Order) domain.DisputeParty {
	if actor.UserID == o.SellerID {
		return domain.DisputePartySeller
	}
	return domain.DisputePartyBuyer
}
