package handler

import (
	"strconv"

	"quantum-bank/internal/adapter/http/dto"
	"quantum-bank/internal/adapter/http/middleware"
	"quantum-bank/internal/core/ports"
	"quantum-bank/pkg/apperror"
	"quantum-bank/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// TransactionHandler handles transaction ledger endpoints.
type TransactionHandler struct {
	ledgerSvc ports.LedgerService
	sessions  ports.SessionStore
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(ledgerSvc ports.LedgerService, sessions ports.SessionStore) *TransactionHandler {
	return &TransactionHandler{ledgerSvc: ledgerSvc, sessions: sessions}
}

// Initiate handles POST /api/v1/transactions.
func (h *TransactionHandler) Initiate(c *gin.Context) {
	accountID, ok := middleware.AccountID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	var req dto.InitiateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	channelID, err := h.resolveChannel(c, accountID, req.ChannelID)
	if err != nil {
		response.Error(c, err)
		return
	}

	txn, err := h.ledgerSvc.Initiate(c.Request.Context(), ports.InitiateRequest{
		OwnerID:   accountID,
		Recipient: req.Recipient,
		Amount:    *req.Amount,
		ChannelID: channelID,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, toTransactionResponse(txn))
}

// resolveChannel prefers an explicit channel id and falls back to the
// channel most recently established in this session.
func (h *TransactionHandler) resolveChannel(c *gin.Context, accountID uuid.UUID, explicit string) (uuid.UUID, error) {
	if explicit != "" {
		id, err := uuid.Parse(explicit)
		if err != nil {
			return uuid.Nil, apperror.Validation("channel_id must be a UUID")
		}
		return id, nil
	}

	id, err := h.sessions.GetChannel(c.Request.Context(), accountID)
	if err != nil {
		return uuid.Nil, apperror.InternalError(err)
	}
	if id == uuid.Nil {
		return uuid.Nil, apperror.ErrNoSessionChannel()
	}
	return id, nil
}

// RecordCancelled handles POST /api/v1/transactions/cancelled.
func (h *TransactionHandler) RecordCancelled(c *gin.Context) {
	accountID, ok := middleware.AccountID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	var req dto.CancelTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	txn, err := h.ledgerSvc.RecordCancelled(c.Request.Context(), ports.CancelRequest{
		OwnerID:   accountID,
		Recipient: req.Recipient,
		Amount:    *req.Amount,
		Reason:    req.Reason,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, toTransactionResponse(txn))
}

// Process handles POST /api/v1/transactions/:id/process. Only the owner
// may settle a transaction; anyone else sees it as missing.
func (h *TransactionHandler) Process(c *gin.Context) {
	accountID, ok := middleware.AccountID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	txID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.ErrTransactionNotFound())
		return
	}

	txn, err := h.ledgerSvc.Get(c.Request.Context(), txID)
	if err != nil {
		response.Error(c, err)
		return
	}
	if txn.OwnerID != accountID {
		response.Error(c, apperror.ErrTransactionNotFound())
		return
	}

	result, err := h.ledgerSvc.Process(c.Request.Context(), txID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.ProcessResponse{
		Transaction:      toTransactionResponse(result.Transaction),
		AlreadyProcessed: result.AlreadyProcessed,
	})
}

// List handles GET /api/v1/transactions?limit=N.
func (h *TransactionHandler) List(c *gin.Context) {
	accountID, ok := middleware.AccountID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			response.Error(c, apperror.Validation("limit must be an integer"))
			return
		}
		limit = n
	}

	txns, err := h.ledgerSvc.ListRecent(c.Request.Context(), accountID, limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	items := toTransactionResponses(txns)
	response.OK(c, dto.TransactionListResponse{
		Items: items,
		Count: len(items),
	})
}
