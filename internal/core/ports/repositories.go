package ports

//go:generate mockgen -source=repositories.go -destination=mocks/repositories.go -package=mocks

import (
	"context"
	"time"

	"quantum-bank/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// AccountRepository defines persistence and balance operations for accounts.
// Debit takes a pgx.Tx so it commits together with the status change
// that caused it.
type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Account, error)
	GetByUsername(ctx context.Context, username string) (*domain.Account, error)
	ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error)
	// Debit subtracts amount only if the balance covers it.
	// Returns false (and changes nothing) when it does not.
	Debit(ctx context.Context, tx pgx.Tx, id uuid.UUID, amount decimal.Decimal) (bool, error)
}

// ChannelRepository defines persistence operations for quantum channels.
type ChannelRepository interface {
	Create(ctx context.Context, channel *domain.QuantumChannel) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.QuantumChannel, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]domain.QuantumChannel, error)
	// Revoke moves an active channel to revoked.
	// Returns false when the channel was not active.
	Revoke(ctx context.Context, id uuid.UUID, revokedAt time.Time) (bool, error)
}

// TransactionRepository defines persistence operations for transactions.
type TransactionRepository interface {
	Create(ctx context.Context, transaction *domain.Transaction) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Transaction, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID, limit int) ([]domain.Transaction, error)
	// CompletePending is a compare-and-swap from pending to completed.
	// Returns false when the stored status was no longer pending.
	CompletePending(ctx context.Context, tx pgx.Tx, id uuid.UUID, processedAt time.Time) (bool, error)
}

// DBTransactor provides database transaction management.
type DBTransactor interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}
