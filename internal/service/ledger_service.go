package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"quantum-bank/internal/core/domain"
	"quantum-bank/internal/core/ports"
	"quantum-bank/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

const (
	processedCacheTTL = 24 * time.Hour

	defaultRecentLimit = 10
	maxRecentLimit     = 100

	// amountScale is the number of decimal places the ledger stores.
	amountScale = 2
)

// maxAmount is the exclusive upper bound of a NUMERIC(18,2) column.
var maxAmount = decimal.New(1, 16)

// LedgerServiceImpl implements ports.LedgerService.
type LedgerServiceImpl struct {
	txRepo      ports.TransactionRepository
	channelRepo ports.ChannelRepository
	accountRepo ports.AccountRepository
	processed   ports.ProcessedCache
	cipher      ports.Cipher
	transactor  ports.DBTransactor
	log         zerolog.Logger
}

// NewLedgerService creates a new LedgerServiceImpl.
func NewLedgerService(
	txRepo ports.TransactionRepository,
	channelRepo ports.ChannelRepository,
	accountRepo ports.AccountRepository,
	processed ports.ProcessedCache,
	cipher ports.Cipher,
	transactor ports.DBTransactor,
	log zerolog.Logger,
) *LedgerServiceImpl {
	return &LedgerServiceImpl{
		txRepo:      txRepo,
		channelRepo: channelRepo,
		accountRepo: accountRepo,
		processed:   processed,
		cipher:      cipher,
		transactor:  transactor,
		log:         log,
	}
}

// Initiate seals a transfer descriptor under the channel key and stores it
// as a pending transaction. Nothing is stored when a check fails.
func (s *LedgerServiceImpl) Initiate(ctx context.Context, req ports.InitiateRequest) (*domain.Transaction, error) {
	if !validAmount(req.Amount) {
		return nil, apperror.ErrInvalidAmount()
	}
	recipient := strings.TrimSpace(req.Recipient)
	if recipient == "" {
		return nil, apperror.Validation("recipient is required")
	}

	channel, err := s.channelRepo.GetByID(ctx, req.ChannelID)
	if err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("get channel: %w", err))
	}
	if channel == nil || !channel.OwnedBy(req.OwnerID) {
		return nil, apperror.ErrChannelNotFound()
	}
	if !channel.IsActive() {
		return nil, apperror.ErrChannelInactive()
	}

	account, err := s.accountRepo.GetByID(ctx, req.OwnerID)
	if err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("get account: %w", err))
	}
	if account == nil {
		return nil, apperror.ErrAccountNotFound()
	}
	if !account.CanAfford(req.Amount) {
		return nil, apperror.ErrInsufficientBalance()
	}

	now := time.Now().UTC()
	plaintext, err := json.Marshal(domain.NewTransferDescriptor(account.Username, recipient, req.Amount, now))
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("marshal descriptor: %w", err))
	}

	channelRef := channel.ID
	txn := &domain.Transaction{
		ID:               uuid.New(),
		OwnerID:          req.OwnerID,
		Recipient:        recipient,
		Amount:           req.Amount,
		ChannelRef:       &channelRef,
		EncryptedPayload: s.cipher.SealHex(plaintext, channel.Key),
		Status:           domain.TransactionStatusPending,
		CreatedAt:        now,
	}

	if err := s.txRepo.Create(ctx, txn); err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("create transaction: %w", err))
	}

	s.log.Info().
		Str("tx_id", txn.ID.String()).
		Str("owner_id", req.OwnerID.String()).
		Str("channel_id", channelRef.String()).
		Str("amount", req.Amount.String()).
		Msg("transaction sealed")

	return txn, nil
}

// Process opens a pending transaction and debits the owner exactly once.
//
// The pending -> completed swap and the debit share one database
// transaction. A caller that loses the swap returns the stored record with
// AlreadyProcessed set and never debits.
func (s *LedgerServiceImpl) Process(ctx context.Context, transactionID uuid.UUID) (*ports.ProcessResult, error) {
	// Layer 1: Redis processed cache
	cached, err := s.processed.Get(ctx, transactionID)
	if err != nil {
		s.log.Warn().Err(err).Str("tx_id", transactionID.String()).Msg("redis processed check failed, falling through to DB")
	}
	if cached != nil {
		txn := &domain.Transaction{}
		if err := json.Unmarshal(cached, txn); err == nil {
			return &ports.ProcessResult{Transaction: txn, AlreadyProcessed: true}, nil
		}
		s.log.Warn().Str("tx_id", transactionID.String()).Msg("discarding unreadable processed cache entry")
	}

	// Layer 2: stored status
	txn, err := s.Get(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	switch txn.Status {
	case domain.TransactionStatusCompleted:
		return &ports.ProcessResult{Transaction: txn, AlreadyProcessed: true}, nil
	case domain.TransactionStatusCancelled:
		return nil, apperror.ErrTransactionNotPending()
	}

	if err := s.verifyPayload(ctx, txn); err != nil {
		return nil, err
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	now := time.Now().UTC()
	swapped, err := s.txRepo.CompletePending(ctx, dbTx, transactionID, now)
	if err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("complete transaction: %w", err))
	}
	if !swapped {
		return s.alreadySettled(ctx, transactionID)
	}

	debited, err := s.accountRepo.Debit(ctx, dbTx, txn.OwnerID, txn.Amount)
	if err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("debit account: %w", err))
	}
	if !debited {
		// Rollback leaves the transaction pending.
		return nil, apperror.ErrInsufficientBalance()
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("commit tx: %w", err))
	}

	txn.Status = domain.TransactionStatusCompleted
	txn.ProcessedAt = &now

	// Post-process: cache in Redis (best-effort)
	if data, err := json.Marshal(txn); err == nil {
		if err := s.processed.Set(ctx, transactionID, data, processedCacheTTL); err != nil {
			s.log.Warn().Err(err).Str("tx_id", transactionID.String()).Msg("failed to cache processed transaction in redis")
		}
	}

	s.log.Info().
		Str("tx_id", transactionID.String()).
		Str("owner_id", txn.OwnerID.String()).
		Str("amount", txn.Amount.String()).
		Msg("transaction processed")

	return &ports.ProcessResult{Transaction: txn}, nil
}

// verifyPayload opens the sealed descriptor with the referenced channel's
// key and checks it against the stored record. Channel status is ignored:
// revoking a channel does not strand transactions sealed before it.
func (s *LedgerServiceImpl) verifyPayload(ctx context.Context, txn *domain.Transaction) error {
	if txn.ChannelRef == nil {
		return apperror.ErrChannelNotFound()
	}
	channel, err := s.channelRepo.GetByID(ctx, *txn.ChannelRef)
	if err != nil {
		return apperror.ErrDatabaseError(fmt.Errorf("get channel: %w", err))
	}
	if channel == nil {
		return apperror.ErrChannelNotFound()
	}

	plaintext, err := s.cipher.OpenHex(txn.EncryptedPayload, channel.Key)
	if err != nil {
		return err
	}

	var desc domain.TransferDescriptor
	if err := json.Unmarshal(plaintext, &desc); err != nil {
		return apperror.ErrDecryptionFailure(fmt.Errorf("decode descriptor: %w", err))
	}
	amount, err := desc.AmountDecimal()
	if err != nil {
		return apperror.ErrDecryptionFailure(fmt.Errorf("parse descriptor amount: %w", err))
	}
	if !amount.Equal(txn.Amount) || desc.To != txn.Recipient {
		return apperror.ErrDecryptionFailure(fmt.Errorf("descriptor does not match transaction %s", txn.ID))
	}

	owner, err := s.accountRepo.GetByID(ctx, txn.OwnerID)
	if err != nil {
		return apperror.ErrDatabaseError(fmt.Errorf("get account: %w", err))
	}
	if owner == nil {
		return apperror.ErrAccountNotFound()
	}
	if desc.From != owner.Username {
		return apperror.ErrDecryptionFailure(fmt.Errorf("descriptor sender does not own transaction %s", txn.ID))
	}
	return nil
}

// alreadySettled reports the stored record after a lost swap.
func (s *LedgerServiceImpl) alreadySettled(ctx context.Context, transactionID uuid.UUID) (*ports.ProcessResult, error) {
	current, err := s.Get(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	if current.Status == domain.TransactionStatusCancelled {
		return nil, apperror.ErrTransactionNotPending()
	}

	s.log.Info().Str("tx_id", transactionID.String()).Msg("transaction already processed by a concurrent caller")
	return &ports.ProcessResult{Transaction: current, AlreadyProcessed: true}, nil
}

// RecordCancelled stores a terminal cancellation record. It carries no
// payload and no channel reference and never touches a balance.
func (s *LedgerServiceImpl) RecordCancelled(ctx context.Context, req ports.CancelRequest) (*domain.Transaction, error) {
	if !validAmount(req.Amount) {
		return nil, apperror.ErrInvalidAmount()
	}
	recipient := strings.TrimSpace(req.Recipient)
	if recipient == "" {
		return nil, apperror.Validation("recipient is required")
	}

	txn := &domain.Transaction{
		ID:        uuid.New(),
		OwnerID:   req.OwnerID,
		Recipient: recipient,
		Amount:    req.Amount,
		Status:    domain.TransactionStatusCancelled,
		CreatedAt: time.Now().UTC(),
	}
	if reason := strings.TrimSpace(req.Reason); reason != "" {
		txn.CancelReason = &reason
	}

	if err := s.txRepo.Create(ctx, txn); err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("create cancelled transaction: %w", err))
	}

	s.log.Info().
		Str("tx_id", txn.ID.String()).
		Str("owner_id", req.OwnerID.String()).
		Msg("cancelled transaction recorded")

	return txn, nil
}

// Get returns a transaction or TXN_001.
func (s *LedgerServiceImpl) Get(ctx context.Context, transactionID uuid.UUID) (*domain.Transaction, error) {
	txn, err := s.txRepo.GetByID(ctx, transactionID)
	if err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("get transaction: %w", err))
	}
	if txn == nil {
		return nil, apperror.ErrTransactionNotFound()
	}
	return txn, nil
}

// ListRecent returns the owner's newest transactions.
// limit defaults to 10 and is capped at 100.
func (s *LedgerServiceImpl) ListRecent(ctx context.Context, ownerID uuid.UUID, limit int) ([]domain.Transaction, error) {
	if limit <= 0 {
		limit = defaultRecentLimit
	}
	if limit > maxRecentLimit {
		limit = maxRecentLimit
	}

	txns, err := s.txRepo.ListByOwner(ctx, ownerID, limit)
	if err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("list transactions: %w", err))
	}
	return txns, nil
}

// validAmount accepts positive amounts with at most two decimal places that
// fit the stored precision.
func validAmount(amount decimal.Decimal) bool {
	return amount.IsPositive() &&
		amount.LessThan(maxAmount) &&
		amount.Equal(amount.Truncate(amountScale))
}
