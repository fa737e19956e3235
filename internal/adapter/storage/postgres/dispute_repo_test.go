package postgres

import (
	"context"
	"testing"
	"time"

	"escrow-settlement/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDispute(orderID uuid.UUID) *domain.Dispute {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &domain.Dispute{
		ID:             uuid.New(),
		OrderID:        orderID,
		OpenedBy:       domain.DisputePartyBuyer,
		OpenedByUserID: uuid.New(),
		Reason:         "item_not_as_described",
		BuyerEvidence:  []string{"https://cdn.example.com/a.jpg"},
		SellerEvidence: []string{},
		Evidence:       []string{},
		Status:         domain.DisputeStatusOpen,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

func disputeRow(d *domain.Dispute) *pgxmock.Rows {
	cols := []string{
		"id", "order_id", "opened_by", "opened_by_user_id", "reason", "description",
		"buyer_evidence", "seller_evidence", "evidence", "status", "response", "responded_at",
		"resolution", "resolved_by", "resolved_at", "resolution_notes", "created_at", "updated_at",
	}
	return pgxmock.NewRows(cols).AddRow(
		d.ID, d.OrderID, d.OpenedBy, d.OpenedByUserID, d.Reason, d.Description,
		d.BuyerEvidence, d.SellerEvidence, d.Evidence, d.Status, d.Response, d.RespondedAt,
		d.Resolution, d.ResolvedBy, d.ResolvedAt, d.ResolutionNotes, d.CreatedAt, d.UpdatedAt,
	)
}

func TestDisputeRepo_CreateReplacesNilEvidence(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewDisputeRepo(mock)
	d := newTestDispute(uuid.New())
	d.SellerEvidence = nil
	d.Evidence = nil

	mock.ExpectExec("INSERT INTO disputes").
		WithArgs(
			d.ID, d.OrderID, d.OpenedBy, d.OpenedByUserID, d.Reason, d.Description,
			d.BuyerEvidence, []string{}, []string{},
			d.Status, d.Response, d.RespondedAt,
			d.Resolution, d.ResolvedBy, d.ResolvedAt, d.ResolutionNotes, d.CreatedAt, d.UpdatedAt,
		).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, repo.Create(context.Background(), nil, d))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDisputeRepo_GetOpenByOrderID(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewDisputeRepo(mock)
	orderID := uuid.New()
	d := newTestDispute(orderID)

	mock.ExpectQuery("SELECT .+ FROM disputes WHERE order_id").
		WithArgs(orderID, domain.DisputeStatusResolvedBuyer, domain.DisputeStatusResolvedSeller).
		WillReturnRows(disputeRow(d))
	mock.ExpectQuery("SELECT .+ FROM disputes WHERE order_id").
		WithArgs(orderID, domain.DisputeStatusResolvedBuyer, domain.DisputeStatusResolvedSeller).
		WillReturnError(pgx.ErrNoRows)

	got, err := repo.GetOpenByOrderID(context.Background(), nil, orderID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, d.ID, got.ID)
	assert.Equal(t, d.BuyerEvidence, got.BuyerEvidence)

	got, err = repo.GetOpenByOrderID(context.Background(), nil, orderID)
	require.NoError(t, err)
	assert.Nil(t, got)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDisputeRepo_ListByOrderID(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewDisputeRepo(mock)
	orderID := uuid.New()
	first := newTestDispute(orderID)
	first.Status = domain.DisputeStatusResolvedSeller
	second := newTestDispute(orderID)

	rows := disputeRow(first)
	rows.AddRow(
		second.ID, second.OrderID, second.OpenedBy, second.OpenedByUserID, second.Reason, second.Description,
		second.BuyerEvidence, second.SellerEvidence, second.Evidence, second.Status, second.Response, second.RespondedAt,
		second.Resolution, second.ResolvedBy, second.ResolvedAt, second.ResolutionNotes, second.CreatedAt, second.UpdatedAt,
	)
	mock.ExpectQuery("SELECT .+ FROM disputes WHERE order_id = \\$1 ORDER BY created_at").
		WithArgs(orderID).
		WillReturnRows(rows)

	list, err := repo.ListByOrderID(context.Background(), orderID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, domain.DisputeStatusResolvedSeller, list[0].Status)
	assert.Equal(t, second.ID, list[1].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDisputeRepo_UpdateForUpdate(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewDisputeRepo(mock)
	ctx := context.Background()
	d := newTestDispute(uuid.New())

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT .+ FROM disputes WHERE id .+ FOR UPDATE").
		WithArgs(d.ID).
		WillReturnRows(disputeRow(d))
	mock.ExpectExec("UPDATE disputes SET").
		WithArgs(anyArgs(13)...).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectCommit()

	tx, err := mock.Begin(ctx)
	require.NoError(t, err)

	locked, err := repo.GetByIDForUpdate(ctx, tx, d.ID)
	require.NoError(t, err)
	require.NotNil(t, locked)

	resolution := domain.ResolutionRefund
	locked.Status = domain.DisputeStatusResolvedBuyer
	locked.Resolution = &resolution
	require.NoError(t, repo.Update(ctx, tx, locked))
	require.NoError(t, tx.Commit(ctx))

	assert.NoError(t, mock.ExpectationsWereMet())
}
