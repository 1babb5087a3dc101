package dto

import (
	"github.com/shopspring/decimal"
)

// RegisterRequest is the request body for account registration.
type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=3,max=50,username_chars"`
	Email    string `json:"email" binding:"required,email,max=254"`
	Password string `json:"password" binding:"required,min=8,max=128" sanitize:"-"`
}

// LoginRequest is the request body for login.
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required" sanitize:"-"`
}

// LoginResponse is the response body for successful login.
type LoginResponse struct {
	Token  string `json:"token"`
	Expiry int64  `json:"expiry"` // Unix timestamp
}

// LogoutResponse confirms the session channel was cleared.
type LogoutResponse struct {
	LoggedOut bool `json:"logged_out"`
}

// AccountResponse is the public view of an account.
type AccountResponse struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	Balance   string `json:"balance"`
	CreatedAt string `json:"created_at"`
}

// ProfileResponse is the body of GET /accounts/me.
type ProfileResponse struct {
	Account            AccountResponse       `json:"account"`
	RecentTransactions []TransactionResponse `json:"recent_transactions"`
}

// ChannelResponse is the public view of a quantum channel. Key material
// is never part of it.
type ChannelResponse struct {
	ID            string  `json:"id"`
	Status        string  `json:"status"`
	KeySource     string  `json:"key_source"`
	EstablishedAt string  `json:"established_at"`
	RevokedAt     *string `json:"revoked_at,omitempty"`
}

// InitiateTransactionRequest is the request body for sealing a transfer.
// ChannelID falls back to the session channel when omitted.
type InitiateTransactionRequest struct {
	Recipient string           `json:"recipient" binding:"required,max=100"`
	Amount    *decimal.Decimal `json:"amount" binding:"required"`
	ChannelID string           `json:"channel_id,omitempty" binding:"omitempty,uuid"`
}

// CancelTransactionRequest is the request body for recording a cancelled transfer.
type CancelTransactionRequest struct {
	Recipient string           `json:"recipient" binding:"required,max=100"`
	Amount    *decimal.Decimal `json:"amount" binding:"required"`
	Reason    string           `json:"reason,omitempty" binding:"max=500"`
}

// TransactionResponse is the public view of a transaction.
type TransactionResponse struct {
	ID           string  `json:"id"`
	Recipient    string  `json:"recipient"`
	Amount       string  `json:"amount"`
	Status       string  `json:"status"`
	ChannelRef   *string `json:"channel_ref,omitempty"`
	CancelReason *string `json:"cancel_reason,omitempty"`
	CreatedAt    string  `json:"created_at"`
	ProcessedAt  *string `json:"processed_at,omitempty"`
}

// ProcessResponse is the body of POST /transactions/:id/process.
type ProcessResponse struct {
	Transaction      TransactionResponse `json:"transaction"`
	AlreadyProcessed bool                `json:"already_processed"`
}

// TransactionListResponse wraps the newest transactions of an account.
type TransactionListResponse struct {
	Items []TransactionResponse `json:"items"`
	Count int                   `json:"count"`
}
