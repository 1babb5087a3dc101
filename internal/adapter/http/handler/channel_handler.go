package handler

import (
	"time"

	"quantum-bank/internal/adapter/http/dto"
	"quantum-bank/internal/adapter/http/middleware"
	"quantum-bank/internal/core/ports"
	"quantum-bank/pkg/apperror"
	"quantum-bank/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ChannelHandler handles quantum channel endpoints.
type ChannelHandler struct {
	channelSvc ports.ChannelService
	sessions   ports.SessionStore
	sessionTTL time.Duration
	log        zerolog.Logger
}

// NewChannelHandler creates a new ChannelHandler.
func NewChannelHandler(channelSvc ports.ChannelService, sessions ports.SessionStore, sessionTTL time.Duration, log zerolog.Logger) *ChannelHandler {
	return &ChannelHandler{
		channelSvc: channelSvc,
		sessions:   sessions,
		sessionTTL: sessionTTL,
		log:        log,
	}
}

// Establish handles POST /api/v1/channels. The new channel becomes the
// session's current channel.
func (h *ChannelHandler) Establish(c *gin.Context) {
	accountID, ok := middleware.AccountID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	ch, err := h.channelSvc.Establish(c.Request.Context(), accountID)
	if err != nil {
		response.Error(c, err)
		return
	}

	if err := h.sessions.SetChannel(c.Request.Context(), accountID, ch.ID, h.sessionTTL); err != nil {
		h.log.Warn().Err(err).
			Str("account_id", accountID.String()).
			Str("channel_id", ch.ID.String()).
			Msg("failed to record session channel")
	}

	response.Created(c, toChannelResponse(ch))
}

// List handles GET /api/v1/channels.
func (h *ChannelHandler) List(c *gin.Context) {
	accountID, ok := middleware.AccountID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	channels, err := h.channelSvc.ListByOwner(c.Request.Context(), accountID)
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]dto.ChannelResponse, 0, len(channels))
	for i := range channels {
		items = append(items, toChannelResponse(&channels[i]))
	}
	response.OK(c, items)
}

// Get handles GET /api/v1/channels/:id. Foreign channels are reported as
// missing.
func (h *ChannelHandler) Get(c *gin.Context) {
	accountID, ok := middleware.AccountID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	channelID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.ErrChannelNotFound())
		return
	}

	ch, err := h.channelSvc.Lookup(c.Request.Context(), channelID)
	if err != nil {
		response.Error(c, err)
		return
	}
	if !ch.OwnedBy(accountID) {
		response.Error(c, apperror.ErrChannelNotFound())
		return
	}

	response.OK(c, toChannelResponse(ch))
}

// Revoke handles POST /api/v1/channels/:id/revoke.
func (h *ChannelHandler) Revoke(c *gin.Context) {
	accountID, ok := middleware.AccountID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	channelID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.ErrChannelNotFound())
		return
	}

	ch, err := h.channelSvc.Revoke(c.Request.Context(), channelID, accountID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, toChannelResponse(ch))
}
