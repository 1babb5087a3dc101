package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"quantum-bank/internal/core/domain"
	"quantum-bank/internal/core/ports"
	"quantum-bank/internal/core/ports/mocks"
	"quantum-bank/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func setupChannelService(t *testing.T) (*ChannelServiceImpl, *mocks.MockChannelRepository, *mocks.MockKeyGenerator) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockChannelRepository(ctrl)
	keyGen := mocks.NewMockKeyGenerator(ctrl)
	return NewChannelService(repo, keyGen, 1024, zerolog.Nop()), repo, keyGen
}

func TestChannelService_Establish(t *testing.T) {
	svc, repo, keyGen := setupChannelService(t)
	ctx := context.Background()
	owner := uuid.New()
	key := testKey(0x33)

	keyGen.EXPECT().GenerateKey(ctx, uint(1024)).Return(ports.GeneratedKey{Key: key, Source: domain.KeySourceBB84})
	repo.EXPECT().Create(ctx, gomock.Any()).DoAndReturn(func(_ context.Context, c *domain.QuantumChannel) error {
		assert.Equal(t, owner, c.OwnerID)
		assert.Equal(t, key, c.Key)
		assert.Equal(t, domain.ChannelStatusActive, c.Status)
		return nil
	})

	ch, err := svc.Establish(ctx, owner)
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, ch.ID)
	assert.Equal(t, domain.KeySourceBB84, ch.KeySource)
	assert.True(t, ch.IsActive())
	assert.False(t, ch.EstablishedAt.IsZero())
	assert.Nil(t, ch.RevokedAt)
}

func TestChannelService_Establish_RecordsFallbackSource(t *testing.T) {
	svc, repo, keyGen := setupChannelService(t)
	ctx := context.Background()

	keyGen.EXPECT().GenerateKey(ctx, uint(1024)).Return(ports.GeneratedKey{
		Key: testKey(1), Source: domain.KeySourceSecureRandom, Fallback: true,
	})
	repo.EXPECT().Create(ctx, gomock.Any()).Return(nil)

	ch, err := svc.Establish(ctx, uuid.New())
	require.NoError(t, err)
	assert.Equal(t, domain.KeySourceSecureRandom, ch.KeySource)
}

func TestChannelService_Establish_FreshKeyEachTime(t *testing.T) {
	svc, repo, keyGen := setupChannelService(t)
	ctx := context.Background()
	owner := uuid.New()

	gomock.InOrder(
		keyGen.EXPECT().GenerateKey(ctx, uint(1024)).Return(ports.GeneratedKey{Key: testKey(1), Source: domain.KeySourceBB84}),
		keyGen.EXPECT().GenerateKey(ctx, uint(1024)).Return(ports.GeneratedKey{Key: testKey(2), Source: domain.KeySourceBB84}),
	)
	repo.EXPECT().Create(ctx, gomock.Any()).Return(nil).Times(2)

	first, err := svc.Establish(ctx, owner)
	require.NoError(t, err)
	second, err := svc.Establish(ctx, owner)
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)
	assert.NotEqual(t, first.Key, second.Key)
	assert.True(t, first.IsActive(), "earlier channel stays active")
}

func TestChannelService_Establish_RepoError(t *testing.T) {
	svc, repo, keyGen := setupChannelService(t)
	ctx := context.Background()

	keyGen.EXPECT().GenerateKey(ctx, uint(1024)).Return(ports.GeneratedKey{Key: testKey(1), Source: domain.KeySourceBB84})
	repo.EXPECT().Create(ctx, gomock.Any()).Return(errors.New("conn reset"))

	ch, err := svc.Establish(ctx, uuid.New())
	assert.Nil(t, ch)
	assertAppError(t, err, "SYS_001")
}

func TestChannelService_Lookup_NotFound(t *testing.T) {
	svc, repo, _ := setupChannelService(t)
	ctx := context.Background()
	id := uuid.New()

	repo.EXPECT().GetByID(ctx, id).Return(nil, nil)

	_, err := svc.Lookup(ctx, id)
	assertAppError(t, err, apperror.CodeChannelNotFound)
}

func TestChannelService_Lookup_MalformedStoredKey(t *testing.T) {
	svc, repo, _ := setupChannelService(t)
	ctx := context.Background()
	id := uuid.New()

	repo.EXPECT().GetByID(ctx, id).Return(nil, apperror.ErrEncoding(domain.ErrMalformedKey))

	_, err := svc.Lookup(ctx, id)
	assertAppError(t, err, apperror.CodeEncoding)
}

func TestChannelService_Lookup_ReturnsRevoked(t *testing.T) {
	svc, repo, _ := setupChannelService(t)
	ctx := context.Background()
	id := uuid.New()

	repo.EXPECT().GetByID(ctx, id).Return(&domain.QuantumChannel{ID: id, Status: domain.ChannelStatusRevoked}, nil)

	ch, err := svc.Lookup(ctx, id)
	require.NoError(t, err)
	assert.False(t, ch.IsActive())
}

func TestChannelService_Revoke(t *testing.T) {
	svc, repo, _ := setupChannelService(t)
	ctx := context.Background()
	owner := uuid.New()
	id := uuid.New()

	repo.EXPECT().GetByID(ctx, id).Return(&domain.QuantumChannel{ID: id, OwnerID: owner, Status: domain.ChannelStatusActive}, nil)
	repo.EXPECT().Revoke(ctx, id, gomock.Any()).Return(true, nil)

	ch, err := svc.Revoke(ctx, id, owner)
	require.NoError(t, err)
	assert.Equal(t, domain.ChannelStatusRevoked, ch.Status)
	require.NotNil(t, ch.RevokedAt)
}

func TestChannelService_Revoke_AlreadyRevokedIsNoop(t *testing.T) {
	svc, repo, _ := setupChannelService(t)
	ctx := context.Background()
	owner := uuid.New()
	id := uuid.New()
	revokedAt := time.Now().Add(-time.Hour).UTC()

	repo.EXPECT().GetByID(ctx, id).Return(&domain.QuantumChannel{
		ID: id, OwnerID: owner, Status: domain.ChannelStatusRevoked, RevokedAt: &revokedAt,
	}, nil)

	ch, err := svc.Revoke(ctx, id, owner)
	require.NoError(t, err)
	assert.Equal(t, domain.ChannelStatusRevoked, ch.Status)
	assert.Equal(t, revokedAt, *ch.RevokedAt)
}

func TestChannelService_Revoke_LostRace(t *testing.T) {
	svc, repo, _ := setupChannelService(t)
	ctx := context.Background()
	owner := uuid.New()
	id := uuid.New()
	revokedAt := time.Now().UTC()

	gomock.InOrder(
		repo.EXPECT().GetByID(ctx, id).Return(&domain.QuantumChannel{ID: id, OwnerID: owner, Status: domain.ChannelStatusActive}, nil),
		repo.EXPECT().Revoke(ctx, id, gomock.Any()).Return(false, nil),
		repo.EXPECT().GetByID(ctx, id).Return(&domain.QuantumChannel{
			ID: id, OwnerID: owner, Status: domain.ChannelStatusRevoked, RevokedAt: &revokedAt,
		}, nil),
	)

	ch, err := svc.Revoke(ctx, id, owner)
	require.NoError(t, err)
	assert.Equal(t, domain.ChannelStatusRevoked, ch.Status)
}

func TestChannelService_Revoke_NotOwner(t *testing.T) {
	svc, repo, _ := setupChannelService(t)
	ctx := context.Background()
	id := uuid.New()

	repo.EXPECT().GetByID(ctx, id).Return(&domain.QuantumChannel{ID: id, OwnerID: uuid.New(), Status: domain.ChannelStatusActive}, nil)

	_, err := svc.Revoke(ctx, id, uuid.New())
	assertAppError(t, err, apperror.CodeChannelNotFound)
}

func TestChannelService_ListByOwner(t *testing.T) {
	svc, repo, _ := setupChannelService(t)
	ctx := context.Background()
	owner := uuid.New()

	repo.EXPECT().ListByOwner(ctx, owner).Return([]domain.QuantumChannel{{ID: uuid.New()}, {ID: uuid.New()}}, nil)

	list, err := svc.ListByOwner(ctx, owner)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}
