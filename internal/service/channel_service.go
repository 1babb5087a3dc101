package service

import (
	"context"
	"fmt"
	"time"

	"quantum-bank/internal/core/domain"
	"quantum-bank/internal/core/ports"
	"quantum-bank/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ChannelServiceImpl implements ports.ChannelService.
type ChannelServiceImpl struct {
	channelRepo ports.ChannelRepository
	keyGen      ports.KeyGenerator
	lengthBits  uint
	log         zerolog.Logger
}

// NewChannelService creates a new ChannelServiceImpl.
// lengthBits is the number of BB84 trials requested per key.
func NewChannelService(
	channelRepo ports.ChannelRepository,
	keyGen ports.KeyGenerator,
	lengthBits uint,
	log zerolog.Logger,
) *ChannelServiceImpl {
	return &ChannelServiceImpl{
		channelRepo: channelRepo,
		keyGen:      keyGen,
		lengthBits:  lengthBits,
		log:         log,
	}
}

// Establish creates a new active channel with a freshly generated key.
// Earlier channels of the same owner are left untouched.
func (s *ChannelServiceImpl) Establish(ctx context.Context, ownerID uuid.UUID) (*domain.QuantumChannel, error) {
	generated := s.keyGen.GenerateKey(ctx, s.lengthBits)

	channel := &domain.QuantumChannel{
		ID:            uuid.New(),
		OwnerID:       ownerID,
		Key:           generated.Key,
		KeySource:     generated.Source,
		EstablishedAt: time.Now().UTC(),
		Status:        domain.ChannelStatusActive,
	}

	if err := s.channelRepo.Create(ctx, channel); err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("create channel: %w", err))
	}

	s.log.Info().
		Str("channel_id", channel.ID.String()).
		Str("owner_id", ownerID.String()).
		Str("key_source", channel.KeySource).
		Bool("fallback", generated.Fallback).
		Msg("quantum channel established")

	return channel, nil
}

// Lookup returns the channel regardless of its status.
func (s *ChannelServiceImpl) Lookup(ctx context.Context, channelID uuid.UUID) (*domain.QuantumChannel, error) {
	channel, err := s.channelRepo.GetByID(ctx, channelID)
	if err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("get channel: %w", err))
	}
	if channel == nil {
		return nil, apperror.ErrChannelNotFound()
	}
	return channel, nil
}

// Revoke moves an active channel owned by ownerID to revoked.
// Revoking an already revoked channel succeeds without changes.
func (s *ChannelServiceImpl) Revoke(ctx context.Context, channelID, ownerID uuid.UUID) (*domain.QuantumChannel, error) {
	channel, err := s.Lookup(ctx, channelID)
	if err != nil {
		return nil, err
	}
	if !channel.OwnedBy(ownerID) {
		return nil, apperror.ErrChannelNotFound()
	}
	if !channel.IsActive() {
		return channel, nil
	}

	now := time.Now().UTC()
	swapped, err := s.channelRepo.Revoke(ctx, channelID, now)
	if err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("revoke channel: %w", err))
	}
	if !swapped {
		// Lost the race to a concurrent revoke; report the stored state.
		return s.Lookup(ctx, channelID)
	}

	channel.Status = domain.ChannelStatusRevoked
	channel.RevokedAt = &now

	s.log.Info().
		Str("channel_id", channelID.String()).
		Str("owner_id", ownerID.String()).
		Msg("quantum channel revoked")

	return channel, nil
}

// ListByOwner returns the owner's channels, newest first.
func (s *ChannelServiceImpl) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]domain.QuantumChannel, error) {
	channels, err := s.channelRepo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("list channels: %w", err))
	}
	return channels, nil
}
