package ports

//go:generate mockgen -source=services.go -destination=mocks/services.go -package=mocks

import (
	"context"
	"time"

	"quantum-bank/internal/core/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// --- Key distribution ---

// EntropySource fills p with random bytes. Remote sources must honour ctx.
type EntropySource interface {
	Fill(ctx context.Context, p []byte) error
}

// RandomSource derives a channel key. Implementations are chosen at
// construction time; callers never branch on which one is wired.
type RandomSource interface {
	Name() string
	Key(ctx context.Context, lengthBits uint) (domain.Key, error)
}

// GeneratedKey is a key together with the source that produced it.
type GeneratedKey struct {
	Key      domain.Key
	Source   string
	Fallback bool // true when the primary source failed
}

// KeyGenerator always yields a well-formed key; failures are absorbed.
type KeyGenerator interface {
	GenerateKey(ctx context.Context, lengthBits uint) GeneratedKey
}

// Cipher seals and opens payloads with a channel key.
type Cipher interface {
	Seal(plaintext []byte, key domain.Key) []byte
	Open(ciphertext []byte, key domain.Key) ([]byte, error)
	SealHex(plaintext []byte, key domain.Key) string
	OpenHex(ciphertextHex string, key domain.Key) ([]byte, error)
}

// KeyVault protects channel keys at rest. It seals the key's 64-character
// hex form; callers parse the unwrapped text with domain.ParseKey.
type KeyVault interface {
	Wrap(channelID uuid.UUID, keyHex string) (string, error)
	Unwrap(channelID uuid.UUID, wrapped string) (string, error)
}

// --- Credentials ---

// HashService handles password hashing (Argon2id).
type HashService interface {
	Hash(password string) (string, error)
	Verify(password string, hash string) (bool, error)
}

// TokenService handles JWT token operations.
type TokenService interface {
	Generate(accountID uuid.UUID, username string) (string, time.Time, error)
	Validate(tokenString string) (*TokenClaims, error)
}

// TokenClaims holds the parsed JWT claims.
type TokenClaims struct {
	AccountID uuid.UUID
	Username  string
}

// --- Redis-backed stores ---

// ProcessedCache remembers processed transactions (fast path for repeats).
type ProcessedCache interface {
	Get(ctx context.Context, transactionID uuid.UUID) ([]byte, error) // nil when absent
	Set(ctx context.Context, transactionID uuid.UUID, value []byte, ttl time.Duration) error
}

// SessionStore tracks the channel most recently established by an account.
type SessionStore interface {
	SetChannel(ctx context.Context, accountID, channelID uuid.UUID, ttl time.Duration) error
	// GetChannel returns uuid.Nil when no channel is recorded.
	GetChannel(ctx context.Context, accountID uuid.UUID) (uuid.UUID, error)
	// ClearChannel forgets the account's channel; absent entries are not an error.
	ClearChannel(ctx context.Context, accountID uuid.UUID) error
}

// --- Service Ports (Business Logic) ---

// ChannelService manages quantum channels.
type ChannelService interface {
	Establish(ctx context.Context, ownerID uuid.UUID) (*domain.QuantumChannel, error)
	Lookup(ctx context.Context, channelID uuid.UUID) (*domain.QuantumChannel, error)
	Revoke(ctx context.Context, channelID, ownerID uuid.UUID) (*domain.QuantumChannel, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]domain.QuantumChannel, error)
}

// LedgerService drives the transaction state machine.
type LedgerService interface {
	Initiate(ctx context.Context, req InitiateRequest) (*domain.Transaction, error)
	Process(ctx context.Context, transactionID uuid.UUID) (*ProcessResult, error)
	RecordCancelled(ctx context.Context, req CancelRequest) (*domain.Transaction, error)
	Get(ctx context.Context, transactionID uuid.UUID) (*domain.Transaction, error)
	ListRecent(ctx context.Context, ownerID uuid.UUID, limit int) ([]domain.Transaction, error)
}

// InitiateRequest holds validated input for sealing a transfer.
type InitiateRequest struct {
	OwnerID   uuid.UUID
	Recipient string
	Amount    decimal.Decimal
	ChannelID uuid.UUID
}

// CancelRequest holds input for a cancellation record.
type CancelRequest struct {
	OwnerID   uuid.UUID
	Recipient string
	Amount    decimal.Decimal
	Reason    string
}

// ProcessResult is the outcome of processing a transaction.
type ProcessResult struct {
	Transaction      *domain.Transaction
	AlreadyProcessed bool
}

// AuthService defines account registration and login.
type AuthService interface {
	Register(ctx context.Context, req RegisterRequest) (*domain.Account, error)
	Login(ctx context.Context, username, password string) (string, time.Time, error) // token, expiry, error
	Profile(ctx context.Context, accountID uuid.UUID) (*domain.Account, error)
}

// RegisterRequest holds input for account registration.
type RegisterRequest struct {
	Username string
	Email    string
	Password string
}
