package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionStatus represents the lifecycle state of a transaction.
type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "pending"
	TransactionStatusCompleted TransactionStatus = "completed"
	TransactionStatusCancelled TransactionStatus = "cancelled"
)

// Transaction is a value transfer sealed under a quantum channel key.
// Sealed transfers start pending; cancellation records are created cancelled
// and carry neither payload nor channel reference.
type Transaction struct {
	ID               uuid.UUID         `json:"id"`
	OwnerID          uuid.UUID         `json:"owner_id"`
	Recipient        string            `json:"recipient"`
	Amount           decimal.Decimal   `json:"amount"`
	ChannelRef       *uuid.UUID        `json:"channel_ref,omitempty"`
	EncryptedPayload string            `json:"-"` // lowercase hex ciphertext
	Status           TransactionStatus `json:"status"`
	CancelReason     *string           `json:"cancel_reason,omitempty"`
	CreatedAt        time.Time         `json:"created_at"`
	ProcessedAt      *time.Time        `json:"processed_at,omitempty"`
}

// IsTerminal returns true if the transaction is in a final state.
func (t *Transaction) IsTerminal() bool {
	return t.Status == TransactionStatusCompleted ||
		t.Status == TransactionStatusCancelled
}

// IsPending returns true if the transaction can still be processed.
func (t *Transaction) IsPending() bool {
	return t.Status == TransactionStatusPending
}

// TransferDescriptor is the plaintext sealed into a transaction payload.
type TransferDescriptor struct {
	From      string      `json:"from"`
	To        string      `json:"to"`
	Amount    json.Number `json:"amount"`
	Timestamp string      `json:"timestamp"` // ISO-8601
}

// NewTransferDescriptor builds a descriptor with an RFC 3339 UTC timestamp.
func NewTransferDescriptor(from, to string, amount decimal.Decimal, at time.Time) TransferDescriptor {
	return TransferDescriptor{
		From:      from,
		To:        to,
		Amount:    json.Number(amount.String()),
		Timestamp: at.UTC().Format(time.RFC3339Nano),
	}
}

// AmountDecimal parses the descriptor amount.
func (d TransferDescriptor) AmountDecimal() (decimal.Decimal, error) {
	return decimal.NewFromString(d.Amount.String())
}
