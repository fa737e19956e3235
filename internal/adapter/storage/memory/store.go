// Package memory is an in-process implementation of the repository ports.
// Transactions are serialized and rolled back through an undo journal, which
// stands in for row locks. Used by tests and by storage.driver=memory.
package memory

import (
	"context"
	"errors"
	"sync"

	"escrow-settlement/internal/core/domain"
	"escrow-settlement/internal/core/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Store holds all state for the in-memory repositories.
type Store struct {
	txMu sync.Mutex
	mu   sync.RWMutex

	orders     map[uuid.UUID]*domain.Order
	disputes   map[uuid.UUID]*domain.Dispute
	wallets    map[uuid.UUID]*domain.Wallet // keyed by seller
	walletTxns []domain.WalletTransaction
	payouts    []domain.Payout
	offers     map[uuid.UUID]*offer
	cases      map[uuid.UUID]*domain.ReconciliationCase
	audit      []domain.AuditLog
}

type offer struct {
	ID        uuid.UUID
	ListingID uuid.UUID
	Status    domain.OfferStatus
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		orders:   make(map[uuid.UUID]*domain.Order),
		disputes: make(map[uuid.UUID]*domain.Dispute),
		wallets:  make(map[uuid.UUID]*domain.Wallet),
		offers:   make(map[uuid.UUID]*offer),
		cases:    make(map[uuid.UUID]*domain.ReconciliationCase),
	}
}

func (s *Store) Transactor() ports.DBTransactor {
	return &transactor{s: s}
}

func (s *Store) Orders() ports.OrderRepository {
	return &orderRepo{s: s}
}

func (s *Store) Offers() ports.OfferRepository {
	return &offerRepo{s: s}
}

func (s *Store) Disputes() ports.DisputeRepository {
	return &disputeRepo{s: s}
}

func (s *Store) Wallets() ports.WalletRepository {
	return &walletRepo{s: s}
}

func (s *Store) WalletTransactions() ports.WalletTransactionRepository {
	return &walletTxRepo{s: s}
}

func (s *Store) Payouts() ports.PayoutRepository {
	return &payoutRepo{s: s}
}

func (s *Store) Reconciliation() ports.ReconciliationRepository {
	return &reconciliationRepo{s: s}
}

func (s *Store) Audit() ports.AuditRepository {
	return &auditRepo{s: s}
}

// PutOffer seeds a listing offer. Offers are owned by another service.
func (s *Store) PutOffer(id, listingID uuid.UUID, status domain.OfferStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.offers[id] = &offer{ID: id, ListingID: listingID, Status: status}
}

// OfferStatus returns the status of a seeded offer.
func (s *Store) OfferStatus(id uuid.UUID) (domain.OfferStatus, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.offers[id]
	if !ok {
		return "", false
	}
	return o.Status, true
}

// ErrTxDone is returned when a finished transaction is used again.
var ErrTxDone = errors.New("memory: transaction already finished")

type transactor struct {
	s *Store
}

// Begin blocks until no other transaction is running.
func (t *transactor) Begin(ctx context.Context) (pgx.Tx, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	t.s.txMu.Lock()
	return &memTx{s: t.s}, nil
}

// memTx implements pgx.Tx. Only Commit and Rollback are meaningful.
type memTx struct {
	pgx.Tx
	s    *Store
	undo []func()
	done bool
}

func (tx *memTx) Commit(_ context.Context) error {
	if tx.done {
		return ErrTxDone
	}
	tx.done = true
	tx.undo = nil
	tx.s.txMu.Unlock()
	return nil
}

func (tx *memTx) Rollback(_ context.Context) error {
	if tx.done {
		return ErrTxDone
	}
	tx.done = true
	tx.s.mu.Lock()
	for i := len(tx.undo) - 1; i >= 0; i-- {
		tx.undo[i]()
	}
	tx.s.mu.Unlock()
	tx.undo = nil
	tx.s.txMu.Unlock()
	return nil
}

// record registers an undo step. Callers hold s.mu.
func record(tx pgx.Tx, undo func()) {
	if mt, ok := tx.(*memTx); ok && !mt.done {
		mt.undo = append(mt.undo, undo)
	}
}
