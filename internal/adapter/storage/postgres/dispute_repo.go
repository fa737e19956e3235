package postgres

import (
	"context"
	"errors"
	"fmt"

	"escrow-settlement/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const disputeColumns = `id, order_id, opened_by, opened_by_user_id, reason, description,
	buyer_evidence, seller_evidence, evidence, status, response, responded_at,
	resolution, resolved_by, resolved_at, resolution_notes, created_at, updated_at`

// DisputeRepo implements ports.DisputeRepository.
type DisputeRepo struct {
	pool Pool
}

// NewDisputeRepo creates a new DisputeRepo.
func NewDisputeRepo(pool Pool) *DisputeRepo {
	return &DisputeRepo{pool: pool}
}

func scanDispute(row pgx.Row) (*domain.Dispute, error) {
	d := &domain.Dispute{}
	err := row.Scan(
		&d.ID, &d.OrderID, &d.OpenedBy, &d.OpenedByUserID, &d.Reason, &d.Description,
		&d.BuyerEvidence, &d.SellerEvidence, &d.Evidence, &d.Status, &d.Response, &d.RespondedAt,
		&d.Resolution, &d.ResolvedBy, &d.ResolvedAt, &d.ResolutionNotes, &d.CreatedAt, &d.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return d, nil
}

// evidence keeps NOT NULL array columns from receiving NULL.
func evidence(urls []string) []string {
	if urls == nil {
		return []string{}
	}
	return urls
}

// Create inserts a new dispute.
func (r *DisputeRepo) Create(ctx context.Context, tx pgx.Tx, d *domain.Dispute) error {
	query := `INSERT INTO disputes (` + disputeColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`

	_, err := conn(r.pool, tx).Exec(ctx, query,
		d.ID, d.OrderID, d.OpenedBy, d.OpenedByUserID, d.Reason, d.Description,
		evidence(d.BuyerEvidence), evidence(d.SellerEvidence), evidence(d.Evidence),
		d.Status, d.Response, d.RespondedAt,
		d.Resolution, d.ResolvedBy, d.ResolvedAt, d.ResolutionNotes, d.CreatedAt, d.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert dispute: %w", err)
	}
	return nil
}

// GetByID fetches a dispute without locking.
func (r *DisputeRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Dispute, error) {
	query := `SELECT ` + disputeColumns + ` FROM disputes WHERE id = $1`

	d, err := scanDispute(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get dispute by id: %w", err)
	}
	return d, nil
}

// GetByIDForUpdate fetches a dispute and locks its row until tx ends.
func (r *DisputeRepo) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Dispute, error) {
	query := `SELECT ` + disputeColumns + ` FROM disputes WHERE id = $1 FOR UPDATE`

	d, err := scanDispute(tx.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get dispute for update: %w", err)
	}
	return d, nil
}

// GetOpenByOrderID returns the order's unresolved dispute, or nil.
func (r *DisputeRepo) GetOpenByOrderID(ctx context.Context, tx pgx.Tx, orderID uuid.UUID) (*domain.Dispute, error) {
	query := `SELECT ` + disputeColumns + ` FROM disputes
		WHERE order_id = $1 AND status NOT IN ($2, $3)
		ORDER BY created_at DESC LIMIT 1`

	d, err := scanDispute(conn(r.pool, tx).QueryRow(ctx, query,
		orderID, domain.DisputeStatusResolvedBuyer, domain.DisputeStatusResolvedSeller))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get open dispute by order: %w", err)
	}
	return d, nil
}

// ListByOrderID returns every dispute on the order, oldest first.
func (r *DisputeRepo) ListByOrderID(ctx context.Context, orderID uuid.UUID) ([]domain.Dispute, error) {
	query := `SELECT ` + disputeColumns + ` FROM disputes WHERE order_id = $1 ORDER BY created_at`

	rows, err := r.pool.Query(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("list disputes: %w", err)
	}
	defer rows.Close()

	var out []domain.Dispute
	for rows.Next() {
		d, err := scanDispute(rows)
		if err != nil {
			return nil, fmt.Errorf("scan dispute row: %w", err)
		}
		out = append(out, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate dispute rows: %w", err)
	}
	return out, nil
}

// Update writes the mutable columns of a dispute.
func (r *DisputeRepo) Update(ctx context.Context, tx pgx.Tx, d *domain.Dispute) error {
	query := `UPDATE disputes SET
		description = $2, buyer_evidence = $3, seller_evidence = $4, evidence = $5,
		status = $6, response = $7, responded_at = $8,
		resolution = $9, resolved_by = $10, resolved_at = $11, resolution_notes = $12,
		updated_at = $13
		WHERE id = $1`

	tag, err := conn(r.pool, tx).Exec(ctx, query,
		d.ID, d.Description, evidence(d.BuyerEvidence), evidence(d.SellerEvidence), evidence(d.Evidence),
		d.Status, d.Response, d.RespondedAt,
		d.Resolution, d.ResolvedBy, d.ResolvedAt, d.ResolutionNotes,
		d.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update dispute: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("dispute not found: %s", d.ID)
	}
	return nil
}
