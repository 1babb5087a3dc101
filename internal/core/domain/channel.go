package domain

import (
	"time"

	"github.com/google/uuid"
)

// ChannelStatus represents the lifecycle state of a quantum channel.
// The only transition is active -> revoked.
type ChannelStatus string

const (
	ChannelStatusActive  ChannelStatus = "active"
	ChannelStatusRevoked ChannelStatus = "revoked"
)

// Key sources recorded on a channel.
const (
	KeySourceBB84         = "bb84"
	KeySourceSecureRandom = "secure_random"
)

// QuantumChannel is a logical session record holding a derived symmetric key.
// The key is owned by the channel and outlives revocation so that
// transactions sealed under it can still be opened.
type QuantumChannel struct {
	ID            uuid.UUID     `json:"id"`
	OwnerID       uuid.UUID     `json:"owner_id"`
	Key           Key           `json:"-"`
	KeySource     string        `json:"key_source"`
	EstablishedAt time.Time     `json:"established_at"`
	Status        ChannelStatus `json:"status"`
	RevokedAt     *time.Time    `json:"revoked_at,omitempty"`
}

// IsActive returns true if the channel may seal new transactions.
func (c *QuantumChannel) IsActive() bool {
	return c.Status == ChannelStatusActive
}

// OwnedBy returns true if the channel belongs to the given account.
func (c *QuantumChannel) OwnedBy(owner uuid.UUID) bool {
	return c.OwnerID == owner
}
