package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"quantum-bank/internal/core/domain"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func newPendingTransaction() *domain.Transaction {
	ref := uuid.New()
	return &domain.Transaction{
		ID:               uuid.New(),
		OwnerID:          uuid.New(),
		Recipient:        "bob",
		Amount:           decimal.RequireFromString("50.00"),
		ChannelRef:       &ref,
		EncryptedPayload: "3a1f",
		Status:           domain.TransactionStatusPending,
		CreatedAt:        time.Now().UTC().Truncate(time.Microsecond),
	}
}

func txColumns() []string {
	return []string{"id", "owner_id", "recipient", "amount", "channel_ref", "encrypted_payload",
		"status", "cancel_reason", "created_at", "processed_at"}
}

func txRow(rows *pgxmock.Rows, t *domain.Transaction) *pgxmock.Rows {
	var payload *string
	if t.EncryptedPayload != "" {
		payload = strPtr(t.EncryptedPayload)
	}
	return rows.AddRow(
		t.ID, t.OwnerID, t.Recipient, t.Amount,
		t.ChannelRef, payload,
		t.Status, t.CancelReason, t.CreatedAt, t.ProcessedAt,
	)
}

func TestTransactionRepo_Create_Pending(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewTransactionRepo(mock)
	txn := newPendingTransaction()

	mock.ExpectExec("INSERT INTO transactions").
		WithArgs(
			txn.ID, txn.OwnerID, txn.Recipient, txn.Amount,
			txn.ChannelRef, strPtr(txn.EncryptedPayload),
			txn.Status, txn.CancelReason, txn.CreatedAt, txn.ProcessedAt,
		).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	assert.NoError(t, repo.Create(context.Background(), txn))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionRepo_Create_CancelledStoresNullPayload(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewTransactionRepo(mock)
	txn := &domain.Transaction{
		ID:           uuid.New(),
		OwnerID:      uuid.New(),
		Recipient:    "bob",
		Amount:       decimal.RequireFromString("75.00"),
		Status:       domain.TransactionStatusCancelled,
		CancelReason: strPtr("user aborted"),
		CreatedAt:    time.Now().UTC(),
	}

	mock.ExpectExec("INSERT INTO transactions").
		WithArgs(
			txn.ID, txn.OwnerID, txn.Recipient, txn.Amount,
			(*uuid.UUID)(nil), (*string)(nil),
			txn.Status, txn.CancelReason, txn.CreatedAt, (*time.Time)(nil),
		).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	assert.NoError(t, repo.Create(context.Background(), txn))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionRepo_GetByID(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewTransactionRepo(mock)
	txn := newPendingTransaction()

	mock.ExpectQuery("SELECT .+ FROM transactions WHERE id").
		WithArgs(txn.ID).
		WillReturnRows(txRow(pgxmock.NewRows(txColumns()), txn))

	got, err := repo.GetByID(context.Background(), txn.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, txn.ID, got.ID)
	assert.Equal(t, txn.EncryptedPayload, got.EncryptedPayload)
	assert.Equal(t, *txn.ChannelRef, *got.ChannelRef)
	assert.True(t, txn.Amount.Equal(got.Amount))
	assert.Equal(t, domain.TransactionStatusPending, got.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionRepo_GetByID_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewTransactionRepo(mock)

	mock.ExpectQuery("SELECT .+ FROM transactions WHERE id").
		WithArgs(pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows(txColumns()))

	got, err := repo.GetByID(context.Background(), uuid.New())
	assert.NoError(t, err)
	assert.Nil(t, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionRepo_ListByOwner(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewTransactionRepo(mock)
	pending := newPendingTransaction()
	cancelled := &domain.Transaction{
		ID: uuid.New(), OwnerID: pending.OwnerID, Recipient: "carol",
		Amount: decimal.NewFromInt(3), Status: domain.TransactionStatusCancelled,
		CreatedAt: pending.CreatedAt.Add(-time.Minute),
	}

	rows := pgxmock.NewRows(txColumns())
	txRow(rows, pending)
	txRow(rows, cancelled)
	mock.ExpectQuery("SELECT .+ FROM transactions WHERE owner_id = \\$1 ORDER BY created_at DESC").
		WithArgs(pending.OwnerID, 10).
		WillReturnRows(rows)

	list, err := repo.ListByOwner(context.Background(), pending.OwnerID, 10)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, pending.ID, list[0].ID)
	assert.Nil(t, list[1].ChannelRef)
	assert.Empty(t, list[1].EncryptedPayload)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionRepo_ListByOwner_Error(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewTransactionRepo(mock)

	mock.ExpectQuery("SELECT .+ FROM transactions").WillReturnError(errors.New("connection lost"))

	_, err = repo.ListByOwner(context.Background(), uuid.New(), 10)
	assert.Error(t, err)
}

func TestTransactionRepo_CompletePending(t *testing.T) {
	tests := []struct {
		name     string
		affected int64
		want     bool
	}{
		{"won swap", 1, true},
		{"lost swap", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, err := pgxmock.NewPool()
			require.NoError(t, err)
			defer mock.Close()

			repo := NewTransactionRepo(mock)
			id := uuid.New()
			at := time.Now().UTC()

			mock.ExpectBegin()
			mock.ExpectExec("UPDATE transactions SET status").
				WithArgs(domain.TransactionStatusCompleted, at, id, domain.TransactionStatusPending).
				WillReturnResult(pgxmock.NewResult("UPDATE", tt.affected))

			dbTx, err := mock.Begin(context.Background())
			require.NoError(t, err)

			ok, err := repo.CompletePending(context.Background(), dbTx, id, at)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ok)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}
