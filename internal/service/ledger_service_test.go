package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"quantum-bank/internal/core/domain"
	"quantum-bank/internal/core/ports"
	"quantum-bank/internal/core/ports/mocks"
	"quantum-bank/pkg/apperror"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type ledgerTestDeps struct {
	svc         *LedgerServiceImpl
	txRepo      *mocks.MockTransactionRepository
	channelRepo *mocks.MockChannelRepository
	accountRepo *mocks.MockAccountRepository
	processed   *mocks.MockProcessedCache
	transactor  *mocks.MockDBTransactor
	cipher      *XORCipher
}

func setupLedgerService(t *testing.T) *ledgerTestDeps {
	ctrl := gomock.NewController(t)
	d := &ledgerTestDeps{
		txRepo:      mocks.NewMockTransactionRepository(ctrl),
		channelRepo: mocks.NewMockChannelRepository(ctrl),
		accountRepo: mocks.NewMockAccountRepository(ctrl),
		processed:   mocks.NewMockProcessedCache(ctrl),
		transactor:  mocks.NewMockDBTransactor(ctrl),
		cipher:      NewXORCipher(),
	}
	d.svc = NewLedgerService(
		d.txRepo, d.channelRepo, d.accountRepo, d.processed,
		d.cipher, d.transactor, zerolog.Nop(),
	)
	return d
}

// mockTx implements pgx.Tx for testing
type mockTx struct {
	pgx.Tx
	commits int
}

func (m *mockTx) Rollback(_ context.Context) error { return nil }
func (m *mockTx) Commit(_ context.Context) error   { m.commits++; return nil }

func assertAppError(t *testing.T, err error, expectedCode string) {
	t.Helper()
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, expectedCode, appErr.Code)
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func activeChannel(owner uuid.UUID) *domain.QuantumChannel {
	return &domain.QuantumChannel{
		ID:            uuid.New(),
		OwnerID:       owner,
		Key:           testKey(0x5A),
		KeySource:     domain.KeySourceBB84,
		EstablishedAt: time.Now().UTC(),
		Status:        domain.ChannelStatusActive,
	}
}

// sealedPending builds a pending transaction sealed the way Initiate seals it.
func (d *ledgerTestDeps) sealedPending(t *testing.T, owner uuid.UUID, channel *domain.QuantumChannel, amount string) *domain.Transaction {
	t.Helper()
	plaintext, err := json.Marshal(domain.NewTransferDescriptor("alice", "bob", dec(amount), time.Now()))
	require.NoError(t, err)
	ref := channel.ID
	return &domain.Transaction{
		ID:               uuid.New(),
		OwnerID:          owner,
		Recipient:        "bob",
		Amount:           dec(amount),
		ChannelRef:       &ref,
		EncryptedPayload: d.cipher.SealHex(plaintext, channel.Key),
		Status:           domain.TransactionStatusPending,
		CreatedAt:        time.Now().UTC(),
	}
}

// expectOwner makes the owner lookup answer with the sender name sealedPending uses.
func (d *ledgerTestDeps) expectOwner(ctx context.Context, owner uuid.UUID) {
	d.accountRepo.EXPECT().GetByID(ctx, owner).Return(&domain.Account{ID: owner, Username: "alice"}, nil)
}

// ==================== Initiate ====================

func TestLedgerService_Initiate_Success(t *testing.T) {
	d := setupLedgerService(t)
	ctx := context.Background()
	owner := uuid.New()
	channel := activeChannel(owner)

	d.channelRepo.EXPECT().GetByID(ctx, channel.ID).Return(channel, nil)
	d.accountRepo.EXPECT().GetByID(ctx, owner).Return(&domain.Account{ID: owner, Username: "alice", Balance: dec("1000.00")}, nil)
	d.txRepo.EXPECT().Create(ctx, gomock.Any()).Return(nil)

	txn, err := d.svc.Initiate(ctx, ports.InitiateRequest{
		OwnerID: owner, Recipient: "bob", Amount: dec("50.00"), ChannelID: channel.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.TransactionStatusPending, txn.Status)
	require.NotNil(t, txn.ChannelRef)
	assert.Equal(t, channel.ID, *txn.ChannelRef)
	assert.Nil(t, txn.ProcessedAt)

	plaintext, err := d.cipher.OpenHex(txn.EncryptedPayload, channel.Key)
	require.NoError(t, err)
	var desc domain.TransferDescriptor
	require.NoError(t, json.Unmarshal(plaintext, &desc))
	assert.Equal(t, "alice", desc.From)
	assert.Equal(t, "bob", desc.To)
	amount, err := desc.AmountDecimal()
	require.NoError(t, err)
	assert.True(t, amount.Equal(dec("50")))
	_, err = time.Parse(time.RFC3339Nano, desc.Timestamp)
	assert.NoError(t, err)
}

func TestLedgerService_Initiate_RevokedChannel(t *testing.T) {
	d := setupLedgerService(t)
	ctx := context.Background()
	owner := uuid.New()
	channel := activeChannel(owner)
	channel.Status = domain.ChannelStatusRevoked

	d.channelRepo.EXPECT().GetByID(ctx, channel.ID).Return(channel, nil)
	// No Create expected: nothing may be stored.

	txn, err := d.svc.Initiate(ctx, ports.InitiateRequest{
		OwnerID: owner, Recipient: "bob", Amount: dec("10"), ChannelID: channel.ID,
	})
	assert.Nil(t, txn)
	assertAppError(t, err, apperror.CodeChannelInactive)
}

func TestLedgerService_Initiate_ChannelNotFound(t *testing.T) {
	d := setupLedgerService(t)
	ctx := context.Background()
	id := uuid.New()

	d.channelRepo.EXPECT().GetByID(ctx, id).Return(nil, nil)

	_, err := d.svc.Initiate(ctx, ports.InitiateRequest{
		OwnerID: uuid.New(), Recipient: "bob", Amount: dec("10"), ChannelID: id,
	})
	assertAppError(t, err, apperror.CodeChannelNotFound)
}

func TestLedgerService_Initiate_ForeignChannel(t *testing.T) {
	d := setupLedgerService(t)
	ctx := context.Background()
	channel := activeChannel(uuid.New())

	d.channelRepo.EXPECT().GetByID(ctx, channel.ID).Return(channel, nil)

	_, err := d.svc.Initiate(ctx, ports.InitiateRequest{
		OwnerID: uuid.New(), Recipient: "bob", Amount: dec("10"), ChannelID: channel.ID,
	})
	assertAppError(t, err, apperror.CodeChannelNotFound)
}

func TestLedgerService_Initiate_InvalidAmount(t *testing.T) {
	d := setupLedgerService(t)

	for _, amount := range []string{"0", "-5", "1.001", "1e17"} {
		t.Run(amount, func(t *testing.T) {
			_, err := d.svc.Initiate(context.Background(), ports.InitiateRequest{
				OwnerID: uuid.New(), Recipient: "bob", Amount: dec(amount), ChannelID: uuid.New(),
			})
			assertAppError(t, err, apperror.CodeInvalidAmount)
		})
	}
}

func TestLedgerService_Initiate_MissingRecipient(t *testing.T) {
	d := setupLedgerService(t)

	_, err := d.svc.Initiate(context.Background(), ports.InitiateRequest{
		OwnerID: uuid.New(), Recipient: "  ", Amount: dec("1"), ChannelID: uuid.New(),
	})
	assertAppError(t, err, "REQ_001")
}

func TestLedgerService_Initiate_InsufficientBalance(t *testing.T) {
	d := setupLedgerService(t)
	ctx := context.Background()
	owner := uuid.New()
	channel := activeChannel(owner)

	d.channelRepo.EXPECT().GetByID(ctx, channel.ID).Return(channel, nil)
	d.accountRepo.EXPECT().GetByID(ctx, owner).Return(&domain.Account{ID: owner, Username: "alice", Balance: dec("20.00")}, nil)

	_, err := d.svc.Initiate(ctx, ports.InitiateRequest{
		OwnerID: owner, Recipient: "bob", Amount: dec("20.01"), ChannelID: channel.ID,
	})
	assertAppError(t, err, apperror.CodeInsufficientBalance)
}

// ==================== Process ====================

func TestLedgerService_Process_Success(t *testing.T) {
	d := setupLedgerService(t)
	ctx := context.Background()
	owner := uuid.New()
	channel := activeChannel(owner)
	txn := d.sealedPending(t, owner, channel, "50.00")
	tx := &mockTx{}

	d.processed.EXPECT().Get(ctx, txn.ID).Return(nil, nil)
	d.txRepo.EXPECT().GetByID(ctx, txn.ID).Return(txn, nil)
	d.channelRepo.EXPECT().GetByID(ctx, channel.ID).Return(channel, nil)
	d.expectOwner(ctx, owner)
	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.txRepo.EXPECT().CompletePending(ctx, tx, txn.ID, gomock.Any()).Return(true, nil)
	d.accountRepo.EXPECT().Debit(ctx, tx, owner, dec("50.00")).Return(true, nil)
	d.processed.EXPECT().Set(ctx, txn.ID, gomock.Any(), processedCacheTTL).Return(nil)

	res, err := d.svc.Process(ctx, txn.ID)
	require.NoError(t, err)
	assert.False(t, res.AlreadyProcessed)
	assert.Equal(t, domain.TransactionStatusCompleted, res.Transaction.Status)
	require.NotNil(t, res.Transaction.ProcessedAt)
	assert.Equal(t, 1, tx.commits)
}

func TestLedgerService_Process_RevokedChannelStillOpens(t *testing.T) {
	d := setupLedgerService(t)
	ctx := context.Background()
	owner := uuid.New()
	channel := activeChannel(owner)
	txn := d.sealedPending(t, owner, channel, "5")
	channel.Status = domain.ChannelStatusRevoked
	tx := &mockTx{}

	d.processed.EXPECT().Get(ctx, txn.ID).Return(nil, nil)
	d.txRepo.EXPECT().GetByID(ctx, txn.ID).Return(txn, nil)
	d.channelRepo.EXPECT().GetByID(ctx, channel.ID).Return(channel, nil)
	d.expectOwner(ctx, owner)
	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.txRepo.EXPECT().CompletePending(ctx, tx, txn.ID, gomock.Any()).Return(true, nil)
	d.accountRepo.EXPECT().Debit(ctx, tx, owner, dec("5")).Return(true, nil)
	d.processed.EXPECT().Set(ctx, txn.ID, gomock.Any(), processedCacheTTL).Return(nil)

	res, err := d.svc.Process(ctx, txn.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TransactionStatusCompleted, res.Transaction.Status)
}

func TestLedgerService_Process_TwiceDebitsOnce(t *testing.T) {
	d := setupLedgerService(t)
	ctx := context.Background()
	owner := uuid.New()
	channel := activeChannel(owner)
	txn := d.sealedPending(t, owner, channel, "50.00")
	tx := &mockTx{}

	var cached []byte
	gomock.InOrder(
		d.processed.EXPECT().Get(ctx, txn.ID).Return(nil, nil),
		d.processed.EXPECT().Set(ctx, txn.ID, gomock.Any(), processedCacheTTL).DoAndReturn(
			func(_ context.Context, _ uuid.UUID, v []byte, _ time.Duration) error {
				cached = v
				return nil
			}),
		d.processed.EXPECT().Get(ctx, txn.ID).DoAndReturn(func(context.Context, uuid.UUID) ([]byte, error) {
			return cached, nil
		}),
	)
	d.txRepo.EXPECT().GetByID(ctx, txn.ID).Return(txn, nil)
	d.channelRepo.EXPECT().GetByID(ctx, channel.ID).Return(channel, nil)
	d.expectOwner(ctx, owner)
	d.transactor.EXPECT().Begin(ctx).Return(tx, nil).Times(1)
	d.txRepo.EXPECT().CompletePending(ctx, tx, txn.ID, gomock.Any()).Return(true, nil).Times(1)
	d.accountRepo.EXPECT().Debit(ctx, tx, owner, dec("50.00")).Return(true, nil).Times(1)

	first, err := d.svc.Process(ctx, txn.ID)
	require.NoError(t, err)
	assert.False(t, first.AlreadyProcessed)

	second, err := d.svc.Process(ctx, txn.ID)
	require.NoError(t, err)
	assert.True(t, second.AlreadyProcessed)
	assert.Equal(t, txn.ID, second.Transaction.ID)
	assert.Equal(t, domain.TransactionStatusCompleted, second.Transaction.Status)
}

func TestLedgerService_Process_StoredCompleted(t *testing.T) {
	d := setupLedgerService(t)
	ctx := context.Background()
	processedAt := time.Now().UTC()
	txn := &domain.Transaction{ID: uuid.New(), Status: domain.TransactionStatusCompleted, ProcessedAt: &processedAt}

	d.processed.EXPECT().Get(ctx, txn.ID).Return(nil, errors.New("redis down"))
	d.txRepo.EXPECT().GetByID(ctx, txn.ID).Return(txn, nil)

	res, err := d.svc.Process(ctx, txn.ID)
	require.NoError(t, err)
	assert.True(t, res.AlreadyProcessed)
	assert.Same(t, txn, res.Transaction)
}

func TestLedgerService_Process_LostSwap(t *testing.T) {
	d := setupLedgerService(t)
	ctx := context.Background()
	owner := uuid.New()
	channel := activeChannel(owner)
	txn := d.sealedPending(t, owner, channel, "50.00")
	tx := &mockTx{}
	processedAt := time.Now().UTC()
	settled := *txn
	settled.Status = domain.TransactionStatusCompleted
	settled.ProcessedAt = &processedAt

	d.processed.EXPECT().Get(ctx, txn.ID).Return(nil, nil)
	gomock.InOrder(
		d.txRepo.EXPECT().GetByID(ctx, txn.ID).Return(txn, nil),
		d.txRepo.EXPECT().CompletePending(ctx, tx, txn.ID, gomock.Any()).Return(false, nil),
		d.txRepo.EXPECT().GetByID(ctx, txn.ID).Return(&settled, nil),
	)
	d.channelRepo.EXPECT().GetByID(ctx, channel.ID).Return(channel, nil)
	d.expectOwner(ctx, owner)
	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	// No Debit expected.

	res, err := d.svc.Process(ctx, txn.ID)
	require.NoError(t, err)
	assert.True(t, res.AlreadyProcessed)
	assert.Equal(t, domain.TransactionStatusCompleted, res.Transaction.Status)
	assert.Zero(t, tx.commits)
}

func TestLedgerService_Process_InsufficientBalanceKeepsPending(t *testing.T) {
	d := setupLedgerService(t)
	ctx := context.Background()
	owner := uuid.New()
	channel := activeChannel(owner)
	txn := d.sealedPending(t, owner, channel, "900.00")
	tx := &mockTx{}

	d.processed.EXPECT().Get(ctx, txn.ID).Return(nil, nil)
	d.txRepo.EXPECT().GetByID(ctx, txn.ID).Return(txn, nil)
	d.channelRepo.EXPECT().GetByID(ctx, channel.ID).Return(channel, nil)
	d.expectOwner(ctx, owner)
	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.txRepo.EXPECT().CompletePending(ctx, tx, txn.ID, gomock.Any()).Return(true, nil)
	d.accountRepo.EXPECT().Debit(ctx, tx, owner, dec("900.00")).Return(false, nil)

	_, err := d.svc.Process(ctx, txn.ID)
	assertAppError(t, err, apperror.CodeInsufficientBalance)
	assert.Zero(t, tx.commits)
	assert.Equal(t, domain.TransactionStatusPending, txn.Status)
}

func TestLedgerService_Process_Cancelled(t *testing.T) {
	d := setupLedgerService(t)
	ctx := context.Background()
	txn := &domain.Transaction{ID: uuid.New(), Status: domain.TransactionStatusCancelled}

	d.processed.EXPECT().Get(ctx, txn.ID).Return(nil, nil)
	d.txRepo.EXPECT().GetByID(ctx, txn.ID).Return(txn, nil)

	_, err := d.svc.Process(ctx, txn.ID)
	assertAppError(t, err, apperror.CodeTransactionNotPending)
}

func TestLedgerService_Process_NotFound(t *testing.T) {
	d := setupLedgerService(t)
	ctx := context.Background()
	id := uuid.New()

	d.processed.EXPECT().Get(ctx, id).Return(nil, nil)
	d.txRepo.EXPECT().GetByID(ctx, id).Return(nil, nil)

	_, err := d.svc.Process(ctx, id)
	assertAppError(t, err, apperror.CodeTransactionNotFound)
}

func TestLedgerService_Process_MissingChannel(t *testing.T) {
	d := setupLedgerService(t)
	ctx := context.Background()
	owner := uuid.New()
	channel := activeChannel(owner)
	txn := d.sealedPending(t, owner, channel, "1")

	d.processed.EXPECT().Get(ctx, txn.ID).Return(nil, nil)
	d.txRepo.EXPECT().GetByID(ctx, txn.ID).Return(txn, nil)
	d.channelRepo.EXPECT().GetByID(ctx, channel.ID).Return(nil, nil)

	_, err := d.svc.Process(ctx, txn.ID)
	assertAppError(t, err, apperror.CodeChannelNotFound)
}

func TestLedgerService_Process_WrongKeyFailsDecryption(t *testing.T) {
	d := setupLedgerService(t)
	ctx := context.Background()
	owner := uuid.New()
	channel := activeChannel(owner)
	txn := d.sealedPending(t, owner, channel, "50.00")
	other := *channel
	other.Key = testKey(0x01)

	d.processed.EXPECT().Get(ctx, txn.ID).Return(nil, nil)
	d.txRepo.EXPECT().GetByID(ctx, txn.ID).Return(txn, nil)
	d.channelRepo.EXPECT().GetByID(ctx, channel.ID).Return(&other, nil)

	_, err := d.svc.Process(ctx, txn.ID)
	assertAppError(t, err, apperror.CodeDecryptionFailure)
}

func TestLedgerService_Process_TamperedAmount(t *testing.T) {
	d := setupLedgerService(t)
	ctx := context.Background()
	owner := uuid.New()
	channel := activeChannel(owner)
	txn := d.sealedPending(t, owner, channel, "50.00")
	txn.Amount = dec("5.00")

	d.processed.EXPECT().Get(ctx, txn.ID).Return(nil, nil)
	d.txRepo.EXPECT().GetByID(ctx, txn.ID).Return(txn, nil)
	d.channelRepo.EXPECT().GetByID(ctx, channel.ID).Return(channel, nil)

	_, err := d.svc.Process(ctx, txn.ID)
	assertAppError(t, err, apperror.CodeDecryptionFailure)
}

func TestLedgerService_Process_MalformedPayload(t *testing.T) {
	d := setupLedgerService(t)
	ctx := context.Background()
	owner := uuid.New()
	channel := activeChannel(owner)
	txn := d.sealedPending(t, owner, channel, "50.00")
	txn.EncryptedPayload = "not-hex"

	d.processed.EXPECT().Get(ctx, txn.ID).Return(nil, nil)
	d.txRepo.EXPECT().GetByID(ctx, txn.ID).Return(txn, nil)
	d.channelRepo.EXPECT().GetByID(ctx, channel.ID).Return(channel, nil)

	_, err := d.svc.Process(ctx, txn.ID)
	assertAppError(t, err, apperror.CodeEncoding)
}

func TestLedgerService_Process_ForeignSender(t *testing.T) {
	d := setupLedgerService(t)
	ctx := context.Background()
	owner := uuid.New()
	channel := activeChannel(owner)
	txn := d.sealedPending(t, owner, channel, "50.00") // sealed as from "alice"

	d.processed.EXPECT().Get(ctx, txn.ID).Return(nil, nil)
	d.txRepo.EXPECT().GetByID(ctx, txn.ID).Return(txn, nil)
	d.channelRepo.EXPECT().GetByID(ctx, channel.ID).Return(channel, nil)
	d.accountRepo.EXPECT().GetByID(ctx, owner).Return(&domain.Account{ID: owner, Username: "mallory"}, nil)
	// No Begin, no Debit.

	_, err := d.svc.Process(ctx, txn.ID)
	assertAppError(t, err, apperror.CodeDecryptionFailure)
}

func TestLedgerService_Process_OwnerMissing(t *testing.T) {
	d := setupLedgerService(t)
	ctx := context.Background()
	owner := uuid.New()
	channel := activeChannel(owner)
	txn := d.sealedPending(t, owner, channel, "50.00")

	d.processed.EXPECT().Get(ctx, txn.ID).Return(nil, nil)
	d.txRepo.EXPECT().GetByID(ctx, txn.ID).Return(txn, nil)
	d.channelRepo.EXPECT().GetByID(ctx, channel.ID).Return(channel, nil)
	d.accountRepo.EXPECT().GetByID(ctx, owner).Return(nil, nil)

	_, err := d.svc.Process(ctx, txn.ID)
	assertAppError(t, err, "ACC_001")
}

func TestLedgerService_Process_MalformedStoredChannelKey(t *testing.T) {
	d := setupLedgerService(t)
	ctx := context.Background()
	owner := uuid.New()
	channel := activeChannel(owner)
	txn := d.sealedPending(t, owner, channel, "50.00")

	d.processed.EXPECT().Get(ctx, txn.ID).Return(nil, nil)
	d.txRepo.EXPECT().GetByID(ctx, txn.ID).Return(txn, nil)
	d.channelRepo.EXPECT().GetByID(ctx, channel.ID).Return(nil, apperror.ErrEncoding(domain.ErrMalformedKey))

	_, err := d.svc.Process(ctx, txn.ID)
	assertAppError(t, err, apperror.CodeEncoding)
}

// ==================== RecordCancelled ====================

func TestLedgerService_RecordCancelled(t *testing.T) {
	d := setupLedgerService(t)
	ctx := context.Background()
	owner := uuid.New()

	// No account or channel calls are expected.
	d.txRepo.EXPECT().Create(ctx, gomock.Any()).DoAndReturn(func(_ context.Context, txn *domain.Transaction) error {
		assert.Equal(t, domain.TransactionStatusCancelled, txn.Status)
		assert.Nil(t, txn.ChannelRef)
		assert.Empty(t, txn.EncryptedPayload)
		return nil
	})

	txn, err := d.svc.RecordCancelled(ctx, ports.CancelRequest{
		OwnerID: owner, Recipient: "bob", Amount: dec("75.00"), Reason: "user aborted",
	})
	require.NoError(t, err)
	assert.Equal(t, owner, txn.OwnerID)
	require.NotNil(t, txn.CancelReason)
	assert.Equal(t, "user aborted", *txn.CancelReason)
	assert.Nil(t, txn.ProcessedAt)
}

func TestLedgerService_RecordCancelled_InvalidAmount(t *testing.T) {
	tests := []struct {
		name   string
		amount string
	}{
		{"zero", "0"},
		{"negative", "-1"},
		{"three decimals", "1.005"},
		{"exceeds stored precision", "1e17"},
		{"first value past the column", "10000000000000000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := setupLedgerService(t)
			// No Create expected.
			_, err := d.svc.RecordCancelled(context.Background(), ports.CancelRequest{
				OwnerID: uuid.New(), Recipient: "bob", Amount: dec(tt.amount),
			})
			assertAppError(t, err, apperror.CodeInvalidAmount)
		})
	}
}

func TestValidAmount_Bounds(t *testing.T) {
	assert.True(t, validAmount(dec("0.01")))
	assert.True(t, validAmount(dec("9999999999999999.99")))
	assert.False(t, validAmount(dec("10000000000000000")))
	assert.False(t, validAmount(dec("0.001")))
}

// ==================== ListRecent ====================

func TestLedgerService_ListRecent_Limits(t *testing.T) {
	tests := []struct {
		name  string
		limit int
		want  int
	}{
		{"default", 0, defaultRecentLimit},
		{"negative", -3, defaultRecentLimit},
		{"explicit", 25, 25},
		{"capped", 5000, maxRecentLimit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := setupLedgerService(t)
			owner := uuid.New()
			d.txRepo.EXPECT().ListByOwner(gomock.Any(), owner, tt.want).Return([]domain.Transaction{}, nil)

			_, err := d.svc.ListRecent(context.Background(), owner, tt.limit)
			require.NoError(t, err)
		})
	}
}
