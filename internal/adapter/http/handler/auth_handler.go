package handler

import (
	"quantum-bank/internal/adapter/http/dto"
	"quantum-bank/internal/adapter/http/middleware"
	"quantum-bank/internal/core/ports"
	"quantum-bank/pkg/apperror"
	"quantum-bank/pkg/response"

	"github.com/gin-gonic/gin"
)

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	authSvc  ports.AuthService
	sessions ports.SessionStore
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authSvc ports.AuthService, sessions ports.SessionStore) *AuthHandler {
	return &AuthHandler{authSvc: authSvc, sessions: sessions}
}

// Register handles POST /api/v1/auth/register.
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	account, err := h.authSvc.Register(c.Request.Context(), ports.RegisterRequest{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, toAccountResponse(account))
}

// Login handles POST /api/v1/auth/login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	token, expiry, err := h.authSvc.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.LoginResponse{
		Token:  token,
		Expiry: expiry.Unix(),
	})
}

// Logout handles POST /api/v1/auth/logout. It forgets the session's current
// channel so later transfers must name one explicitly. The bearer token
// itself stays valid until it expires.
func (h *AuthHandler) Logout(c *gin.Context) {
	accountID, ok := middleware.AccountID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	if err := h.sessions.ClearChannel(c.Request.Context(), accountID); err != nil {
		response.Error(c, apperror.InternalError(err))
		return
	}

	response.OK(c, dto.LogoutResponse{LoggedOut: true})
}
