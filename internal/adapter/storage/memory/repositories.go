package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"escrow-settlement/internal/core/domain"
	"escrow-settlement/internal/core/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// --- Orders ---

type orderRepo struct{ s *Store }

func (r *orderRepo) Create(_ context.Context, tx pgx.Tx, o *domain.Order) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.orders[o.ID]; ok {
		return fmt.Errorf("order %s already exists", o.ID)
	}
	r.s.orders[o.ID] = o.Clone()
	record(tx, func() { delete(r.s.orders, o.ID) })
	return nil
}

func (r *orderRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Order, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	o, ok := r.s.orders[id]
	if !ok {
		return nil, nil
	}
	return o.Clone(), nil
}

func (r *orderRepo) GetByIDForUpdate(ctx context.Context, _ pgx.Tx, id uuid.UUID) (*domain.Order, error) {
	return r.GetByID(ctx, id)
}

func (r *orderRepo) Update(_ context.Context, tx pgx.Tx, o *domain.Order) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	prev, ok := r.s.orders[o.ID]
	if !ok {
		return fmt.Errorf("order %s not found", o.ID)
	}
	r.s.orders[o.ID] = o.Clone()
	record(tx, func() { r.s.orders[o.ID] = prev })
	return nil
}

func (r *orderRepo) ListDueForAutoCompletion(_ context.Context, before time.Time, limit int) ([]uuid.UUID, error) {
	return r.list(limit, byCreatedAt, func(o *domain.Order) bool {
		return o.Status == domain.OrderStatusDelivered &&
			o.InspectionEndsAt != nil && !o.InspectionEndsAt.After(before)
	}), nil
}

// ListDueForRelease mirrors the postgres query: sellers without a destination
// and orders claimed by a refund are left out, and never-tried orders come
// before the least recently tried.
func (r *orderRepo) ListDueForRelease(_ context.Context, completedBefore time.Time, limit int) ([]uuid.UUID, error) {
	return r.list(limit, byLastTried, func(o *domain.Order) bool {
		if o.Status != domain.OrderStatusCompleted || o.EscrowStatus != domain.EscrowHeld ||
			o.CompletedAt == nil || o.CompletedAt.After(completedBefore) {
			return false
		}
		if o.SettlementKey != nil && !strings.HasPrefix(*o.SettlementKey, domain.ReleaseKeyPrefix) {
			return false
		}
		w, ok := r.s.wallets[o.SellerID]
		return ok && w.PayoutDestination != nil && *w.PayoutDestination != ""
	}), nil
}

func (r *orderRepo) ListExpiredReturns(_ context.Context, startedBefore time.Time, limit int) ([]uuid.UUID, error) {
	return r.list(limit, byCreatedAt, func(o *domain.Order) bool {
		return o.Status == domain.OrderStatusReturnStarted &&
			o.ReturnStartedAt != nil && !o.ReturnStartedAt.After(startedBefore)
	}), nil
}

func byCreatedAt(a, b *domain.Order) bool { return a.CreatedAt.Before(b.CreatedAt) }

func byLastTried(a, b *domain.Order) bool {
	switch {
	case a.SettlementTriedAt == nil && b.SettlementTriedAt == nil:
		return a.CompletedAt.Before(*b.CompletedAt)
	case a.SettlementTriedAt == nil:
		return true
	case b.SettlementTriedAt == nil:
		return false
	case !a.SettlementTriedAt.Equal(*b.SettlementTriedAt):
		return a.SettlementTriedAt.Before(*b.SettlementTriedAt)
	}
	return a.CompletedAt.Before(*b.CompletedAt)
}

// list runs match under the read lock, so match may read other maps of the store.
func (r *orderRepo) list(limit int, less func(a, b *domain.Order) bool, match func(*domain.Order) bool) []uuid.UUID {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var found []*domain.Order
	for _, o := range r.s.orders {
		if match(o) {
			found = append(found, o)
		}
	}
	sort.Slice(found, func(i, j int) bool { return less(found[i], found[j]) })
	ids := make([]uuid.UUID, 0, len(found))
	for _, o := range found {
		if limit > 0 && len(ids) == limit {
			break
		}
		ids = append(ids, o.ID)
	}
	return ids
}

// --- Offers ---

type offerRepo struct{ s *Store }

func (r *offerRepo) ExpireOtherPending(_ context.Context, tx pgx.Tx, listingID uuid.UUID, keep *uuid.UUID) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for _, o := range r.s.offers {
		if o.ListingID != listingID || o.Status != domain.OfferStatusPending {
			continue
		}
		if keep != nil && o.ID == *keep {
			continue
		}
		o := o
		o.Status = domain.OfferStatusExpired
		record(tx, func() { o.Status = domain.OfferStatusPending })
		n++
	}
	return n, nil
}

// --- Disputes ---

type disputeRepo struct{ s *Store }

func (r *disputeRepo) Create(_ context.Context, tx pgx.Tx, d *domain.Dispute) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.disputes[d.ID] = d.Clone()
	record(tx, func() { delete(r.s.disputes, d.ID) })
	return nil
}

func (r *disputeRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Dispute, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	d, ok := r.s.disputes[id]
	if !ok {
		return nil, nil
	}
	return d.Clone(), nil
}

func (r *disputeRepo) GetByIDForUpdate(ctx context.Context, _ pgx.Tx, id uuid.UUID) (*domain.Dispute, error) {
	return r.GetByID(ctx, id)
}

func (r *disputeRepo) GetOpenByOrderID(_ context.Context, _ pgx.Tx, orderID uuid.UUID) (*domain.Dispute, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, d := range r.s.disputes {
		if d.OrderID == orderID && !d.Status.IsTerminal() {
			return d.Clone(), nil
		}
	}
	return nil, nil
}

func (r *disputeRepo) ListByOrderID(_ context.Context, orderID uuid.UUID) ([]domain.Dispute, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []domain.Dispute
	for _, d := range r.s.disputes {
		if d.OrderID == orderID {
			out = append(out, *d.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *disputeRepo) Update(_ context.Context, tx pgx.Tx, d *domain.Dispute) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	prev, ok := r.s.disputes[d.ID]
	if !ok {
		return fmt.Errorf("dispute %s not found", d.ID)
	}
	r.s.disputes[d.ID] = d.Clone()
	record(tx, func() { r.s.disputes[d.ID] = prev })
	return nil
}

// --- Wallets ---

type walletRepo struct{ s *Store }

func (r *walletRepo) Create(_ context.Context, tx pgx.Tx, w *domain.Wallet) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.wallets[w.SellerID]; ok {
		return nil
	}
	r.s.wallets[w.SellerID] = w.Clone()
	record(tx, func() { delete(r.s.wallets, w.SellerID) })
	return nil
}

func (r *walletRepo) GetBySellerID(_ context.Context, sellerID uuid.UUID) (*domain.Wallet, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	w, ok := r.s.wallets[sellerID]
	if !ok {
		return nil, nil
	}
	return w.Clone(), nil
}

func (r *walletRepo) GetBySellerIDForUpdate(ctx context.Context, _ pgx.Tx, sellerID uuid.UUID) (*domain.Wallet, error) {
	return r.GetBySellerID(ctx, sellerID)
}

func (r *walletRepo) UpdateBalances(_ context.Context, tx pgx.Tx, w *domain.Wallet) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.wallets[w.SellerID]
	if !ok {
		return fmt.Errorf("wallet for seller %s not found", w.SellerID)
	}
	prev := cur.Clone()
	cur.AvailableCents = w.AvailableCents
	cur.PendingCents = w.PendingCents
	cur.LifetimeEarningsCents = w.LifetimeEarningsCents
	cur.Version = w.Version
	cur.UpdatedAt = w.UpdatedAt
	record(tx, func() { r.s.wallets[w.SellerID] = prev })
	return nil
}

func (r *walletRepo) LockForPayout(_ context.Context, sellerID uuid.UUID, at time.Time) (*domain.Wallet, error) {
	r.s.txMu.Lock()
	defer r.s.txMu.Unlock()
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	w, ok := r.s.wallets[sellerID]
	if !ok || w.PayoutLocked {
		return nil, nil
	}
	w.PayoutLocked = true
	w.PayoutLockedAt = &at
	return w.Clone(), nil
}

func (r *walletRepo) Unlock(_ context.Context, tx pgx.Tx, sellerID uuid.UUID) error {
	if tx == nil {
		r.s.txMu.Lock()
		defer r.s.txMu.Unlock()
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	w, ok := r.s.wallets[sellerID]
	if !ok {
		return fmt.Errorf("wallet for seller %s not found", sellerID)
	}
	prevLocked, prevAt := w.PayoutLocked, w.PayoutLockedAt
	w.PayoutLocked = false
	w.PayoutLockedAt = nil
	record(tx, func() { w.PayoutLocked, w.PayoutLockedAt = prevLocked, prevAt })
	return nil
}

func (r *walletRepo) SetPayoutDestination(_ context.Context, sellerID uuid.UUID, destination string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	w, ok := r.s.wallets[sellerID]
	if !ok {
		now := time.Now().UTC()
		w = &domain.Wallet{ID: uuid.New(), SellerID: sellerID, CreatedAt: now, UpdatedAt: now}
		r.s.wallets[sellerID] = w
	}
	w.PayoutDestination = &destination
	return nil
}

// --- Wallet transactions ---

type walletTxRepo struct{ s *Store }

func (r *walletTxRepo) Create(_ context.Context, tx pgx.Tx, t *domain.WalletTransaction) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.walletTxns = append(r.s.walletTxns, *t)
	n := len(r.s.walletTxns) - 1
	record(tx, func() { r.s.walletTxns = r.s.walletTxns[:n] })
	return nil
}

func (r *walletTxRepo) List(_ context.Context, params ports.WalletTxListParams) ([]domain.WalletTransaction, int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var matched []domain.WalletTransaction
	// newest first
	for i := len(r.s.walletTxns) - 1; i >= 0; i-- {
		t := r.s.walletTxns[i]
		if t.SellerID != params.SellerID {
			continue
		}
		if params.Kind != nil && t.Kind != *params.Kind {
			continue
		}
		matched = append(matched, t)
	}
	total := int64(len(matched))
	offset := (params.Page - 1) * params.PageSize
	if offset >= len(matched) {
		return []domain.WalletTransaction{}, total, nil
	}
	end := offset + params.PageSize
	if end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], total, nil
}

func (r *walletTxRepo) ListAll(_ context.Context, sellerID uuid.UUID) ([]domain.WalletTransaction, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []domain.WalletTransaction
	for _, t := range r.s.walletTxns {
		if t.SellerID == sellerID {
			out = append(out, t)
		}
	}
	return out, nil
}

// --- Payouts ---

type payoutRepo struct{ s *Store }

func (r *payoutRepo) Create(_ context.Context, tx pgx.Tx, p *domain.Payout) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.payouts = append(r.s.payouts, *p)
	n := len(r.s.payouts) - 1
	record(tx, func() { r.s.payouts = r.s.payouts[:n] })
	return nil
}

func (r *payoutRepo) ListBySellerID(_ context.Context, sellerID uuid.UUID, limit int) ([]domain.Payout, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []domain.Payout
	for i := len(r.s.payouts) - 1; i >= 0; i-- {
		if limit > 0 && len(out) == limit {
			break
		}
		if r.s.payouts[i].SellerID == sellerID {
			out = append(out, r.s.payouts[i])
		}
	}
	return out, nil
}

// --- Reconciliation ---

type reconciliationRepo struct{ s *Store }

func (r *reconciliationRepo) Create(_ context.Context, c *domain.ReconciliationCase) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *c
	r.s.cases[c.ID] = &cp
	return nil
}

func (r *reconciliationRepo) ListOpen(_ context.Context, limit int) ([]domain.ReconciliationCase, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []domain.ReconciliationCase
	for _, c := range r.s.cases {
		if c.Status == domain.ReconciliationOpen {
			out = append(out, *c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *reconciliationRepo) Resolve(_ context.Context, id uuid.UUID, resolvedBy uuid.UUID, notes string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.cases[id]
	if !ok || c.Status != domain.ReconciliationOpen {
		return false, nil
	}
	now := time.Now().UTC()
	c.Status = domain.ReconciliationResolved
	c.ResolvedBy = &resolvedBy
	c.ResolvedAt = &now
	c.Notes = &notes
	return true, nil
}

// --- Audit ---

type auditRepo struct{ s *Store }

func (r *auditRepo) Create(_ context.Context, log *domain.AuditLog) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.audit = append(r.s.audit, *log)
	return nil
}
