package postgres

import (
	"context"
	"fmt"
	"strings"

	"escrow-settlement/internal/core/domain"
	"escrow-settlement/internal/core/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const walletTxColumns = `id, wallet_id, seller_id, kind, bucket, direction, amount_cents,
	status, description, order_id, payout_id, created_at`

// WalletTxRepo implements ports.WalletTransactionRepository. Rows are insert-only.
type WalletTxRepo struct {
	pool Pool
}

// NewWalletTxRepo creates a new WalletTxRepo.
func NewWalletTxRepo(pool Pool) *WalletTxRepo {
	return &WalletTxRepo{pool: pool}
}

// Create appends a ledger row.
func (r *WalletTxRepo) Create(ctx context.Context, tx pgx.Tx, t *domain.WalletTransaction) error {
	query := `INSERT INTO wallet_transactions (` + walletTxColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	_, err := conn(r.pool, tx).Exec(ctx, query,
		t.ID, t.WalletID, t.SellerID, t.Kind, t.Bucket, t.Direction, t.AmountCents,
		t.Status, t.Description, t.OrderID, t.PayoutID, t.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert wallet transaction: %w", err)
	}
	return nil
}

// List returns one page of a seller's ledger, newest first, with the total count.
func (r *WalletTxRepo) List(ctx context.Context, params ports.WalletTxListParams) ([]domain.WalletTransaction, int64, error) {
	var conditions []string
	var args []any
	argIdx := 1

	conditions = append(conditions, fmt.Sprintf("seller_id = $%d", argIdx))
	args = append(args, params.SellerID)
	argIdx++

	if params.Kind != nil {
		conditions = append(conditions, fmt.Sprintf("kind = $%d", argIdx))
		args = append(args, *params.Kind)
		argIdx++
	}

	where := "WHERE " + strings.Join(conditions, " AND ")

	var total int64
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM wallet_transactions %s", where)
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count wallet transactions: %w", err)
	}

	offset := (params.Page - 1) * params.PageSize
	dataQuery := fmt.Sprintf(`SELECT %s FROM wallet_transactions %s
		ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d`, walletTxColumns, where, argIdx, argIdx+1)
	args = append(args, params.PageSize, offset)

	txns, err := r.query(ctx, dataQuery, args...)
	if err != nil {
		return nil, 0, err
	}
	return txns, total, nil
}

// ListAll returns every ledger row of a seller, oldest first.
func (r *WalletTxRepo) ListAll(ctx context.Context, sellerID uuid.UUID) ([]domain.WalletTransaction, error) {
	query := `SELECT ` + walletTxColumns + ` FROM wallet_transactions
		WHERE seller_id = $1 ORDER BY created_at, id`
	return r.query(ctx, query, sellerID)
}

func (r *WalletTxRepo) query(ctx context.Context, query string, args ...any) ([]domain.WalletTransaction, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list wallet transactions: %w", err)
	}
	defer rows.Close()

	txns := []domain.WalletTransaction{}
	for rows.Next() {
		t := domain.WalletTransaction{}
		err := rows.Scan(
			&t.ID, &t.WalletID, &t.SellerID, &t.Kind, &t.Bucket, &t.Direction, &t.AmountCents,
			&t.Status, &t.Description, &t.OrderID, &t.PayoutID, &t.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan wallet transaction row: %w", err)
		}
		txns = append(txns, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate wallet transaction rows: %w", err)
	}
	return txns, nil
}
