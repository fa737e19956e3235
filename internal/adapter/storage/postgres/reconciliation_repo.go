package postgres

import (
	"context"
	"fmt"
	"time"

	"escrow-settlement/internal/core/domain"

	"github.com/google/uuid"
)

const reconciliationColumns = `id, operation, order_id, seller_id, external_ref, idempotency_key,
	amount_cents, error, status, resolved_by, resolved_at, notes, created_at`

// ReconciliationRepo implements ports.ReconciliationRepository. It always
// writes through the pool: the transaction that failed is already gone.
type ReconciliationRepo struct {
	pool Pool
}

// NewReconciliationRepo creates a new ReconciliationRepo.
func NewReconciliationRepo(pool Pool) *ReconciliationRepo {
	return &ReconciliationRepo{pool: pool}
}

// Create inserts an open case.
func (r *ReconciliationRepo) Create(ctx context.Context, c *domain.ReconciliationCase) error {
	query := `INSERT INTO reconciliation_cases (` + reconciliationColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	_, err := r.pool.Exec(ctx, query,
		c.ID, c.Operation, c.OrderID, c.SellerID, c.ExternalRef, c.IdempotencyKey,
		c.AmountCents, c.Error, c.Status, c.ResolvedBy, c.ResolvedAt, c.Notes, c.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert reconciliation case: %w", err)
	}
	return nil
}

// ListOpen returns open cases, oldest first.
func (r *ReconciliationRepo) ListOpen(ctx context.Context, limit int) ([]domain.ReconciliationCase, error) {
	query := `SELECT ` + reconciliationColumns + ` FROM reconciliation_cases
		WHERE status = $1 ORDER BY created_at LIMIT $2`

	rows, err := r.pool.Query(ctx, query, domain.ReconciliationOpen, limitArg(limit))
	if err != nil {
		return nil, fmt.Errorf("list reconciliation cases: %w", err)
	}
	defer rows.Close()

	var out []domain.ReconciliationCase
	for rows.Next() {
		c := domain.ReconciliationCase{}
		err := rows.Scan(
			&c.ID, &c.Operation, &c.OrderID, &c.SellerID, &c.ExternalRef, &c.IdempotencyKey,
			&c.AmountCents, &c.Error, &c.Status, &c.ResolvedBy, &c.ResolvedAt, &c.Notes, &c.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan reconciliation row: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reconciliation rows: %w", err)
	}
	return out, nil
}

// Resolve closes an open case. Returns false if none matched.
func (r *ReconciliationRepo) Resolve(ctx context.Context, id uuid.UUID, resolvedBy uuid.UUID, notes string) (bool, error) {
	query := `UPDATE reconciliation_cases
		SET status = $1, resolved_by = $2, resolved_at = $3, notes = $4
		WHERE id = $5 AND status = $6`

	tag, err := r.pool.Exec(ctx, query,
		domain.ReconciliationResolved, resolvedBy, time.Now().UTC(), notes, id, domain.ReconciliationOpen)
	if err != nil {
		return false, fmt.Errorf("resolve reconciliation case: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}
