package handler

import (
	"quantum-bank/internal/adapter/http/dto"
	"quantum-bank/internal/adapter/http/middleware"
	"quantum-bank/internal/core/ports"
	"quantum-bank/pkg/apperror"
	"quantum-bank/pkg/response"

	"github.com/gin-gonic/gin"
)

// profileRecentLimit matches the dashboard's "latest transfers" panel.
const profileRecentLimit = 10

// AccountHandler serves the authenticated account's own data.
type AccountHandler struct {
	authSvc   ports.AuthService
	ledgerSvc ports.LedgerService
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(authSvc ports.AuthService, ledgerSvc ports.LedgerService) *AccountHandler {
	return &AccountHandler{authSvc: authSvc, ledgerSvc: ledgerSvc}
}

// Me handles GET /api/v1/accounts/me.
func (h *AccountHandler) Me(c *gin.Context) {
	accountID, ok := middleware.AccountID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	account, err := h.authSvc.Profile(c.Request.Context(), accountID)
	if err != nil {
		response.Error(c, err)
		return
	}

	recent, err := h.ledgerSvc.ListRecent(c.Request.Context(), accountID, profileRecentLimit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.ProfileResponse{
		Account:            toAccountResponse(account),
		RecentTransactions: toTransactionResponses(recent),
	})
}
