package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"quantum-bank/internal/core/domain"
	"quantum-bank/internal/core/ports"
	"quantum-bank/pkg/apperror"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const channelColumns = `id, owner_id, key_enc, key_source, established_at, status, revoked_at`

// ChannelRepo implements ports.ChannelRepository.
// Keys are wrapped by the vault before they reach the database.
type ChannelRepo struct {
	pool  Pool
	vault ports.KeyVault
}

// NewChannelRepo creates a new ChannelRepo.
func NewChannelRepo(pool Pool, vault ports.KeyVault) *ChannelRepo {
	return &ChannelRepo{pool: pool, vault: vault}
}

// Create inserts a new channel.
func (r *ChannelRepo) Create(ctx context.Context, c *domain.QuantumChannel) error {
	wrapped, err := r.vault.Wrap(c.ID, c.Key.Hex())
	if err != nil {
		return fmt.Errorf("wrap channel key: %w", err)
	}

	query := `INSERT INTO quantum_channels (` + channelColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err = r.pool.Exec(ctx, query,
		c.ID, c.OwnerID, wrapped, c.KeySource,
		c.EstablishedAt, c.Status, c.RevokedAt,
	)
	if err != nil {
		return fmt.Errorf("insert channel: %w", err)
	}
	return nil
}

// GetByID fetches a channel by UUID regardless of status.
func (r *ChannelRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.QuantumChannel, error) {
	query := `SELECT ` + channelColumns + ` FROM quantum_channels WHERE id = $1`

	c, err := r.scanChannel(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return c, nil
}

// ListByOwner returns the owner's channels, newest first.
func (r *ChannelRepo) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]domain.QuantumChannel, error) {
	query := `SELECT ` + channelColumns + ` FROM quantum_channels
		WHERE owner_id = $1 ORDER BY established_at DESC`

	rows, err := r.pool.Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list channels: %w", err)
	}
	defer rows.Close()

	channels := []domain.QuantumChannel{}
	for rows.Next() {
		c, err := r.scanChannel(rows)
		if err != nil {
			return nil, err
		}
		channels = append(channels, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate channel rows: %w", err)
	}
	return channels, nil
}

// Revoke swaps status active -> revoked. It returns false when the stored
// status was not active.
func (r *ChannelRepo) Revoke(ctx context.Context, id uuid.UUID, revokedAt time.Time) (bool, error) {
	query := `UPDATE quantum_channels SET status = $1, revoked_at = $2
		WHERE id = $3 AND status = $4`

	tag, err := r.pool.Exec(ctx, query, domain.ChannelStatusRevoked, revokedAt, id, domain.ChannelStatusActive)
	if err != nil {
		return false, fmt.Errorf("revoke channel: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// scanChannel returns pgx.ErrNoRows unwrapped so callers can detect it.
// A stored key that does not unwrap to 64 hex chars is an EncodingError.
func (r *ChannelRepo) scanChannel(row pgx.Row) (*domain.QuantumChannel, error) {
	c := &domain.QuantumChannel{}
	var wrapped string
	err := row.Scan(
		&c.ID, &c.OwnerID, &wrapped, &c.KeySource,
		&c.EstablishedAt, &c.Status, &c.RevokedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan channel: %w", err)
	}

	keyHex, err := r.vault.Unwrap(c.ID, wrapped)
	if err != nil {
		return nil, fmt.Errorf("unwrap key for channel %s: %w", c.ID, err)
	}
	if c.Key, err = domain.ParseKey(keyHex); err != nil {
		return nil, apperror.ErrEncoding(fmt.Errorf("channel %s: %w", c.ID, err))
	}
	return c, nil
}
