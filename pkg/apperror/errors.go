package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError is a structured error that maps to HTTP responses.
type AppError struct {
	Code       string `json:"error_code"`
	Message    string `json:"message"`
	HTTPStatus int    `json:"-"`
	Err        error  `json:"-"` // Wrapped internal error (not exposed to client)
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError.
func New(code string, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// Wrap wraps an internal error with an AppError.
func Wrap(code string, message string, httpStatus int, err error) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}

// HasCode reports whether err carries an AppError with the given code.
func HasCode(err error, code string) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == code
}

// Error codes returned by the core.
const (
	CodeEncoding              = "QKD_001"
	CodeChannelNotFound       = "CHN_001"
	CodeChannelInactive       = "CHN_002"
	CodeDecryptionFailure     = "CRY_001"
	CodeTransactionNotFound   = "TXN_001"
	CodeInsufficientBalance   = "TXN_002"
	CodeInvalidAmount         = "TXN_003"
	CodeTransactionNotPending = "TXN_004"
)

// ---- Key material & cipher (QKD, CRY) ----

func ErrEncoding(err error) *AppError {
	return Wrap(CodeEncoding, "Malformed hex encoding", http.StatusBadRequest, err)
}

func ErrDecryptionFailure(err error) *AppError {
	return Wrap(CodeDecryptionFailure, "Decryption failed", http.StatusUnprocessableEntity, err)
}

// ---- Quantum channels (CHN) ----

func ErrChannelNotFound() *AppError {
	return New(CodeChannelNotFound, "Quantum channel not found", http.StatusNotFound)
}

func ErrChannelInactive() *AppError {
	return New(CodeChannelInactive, "Quantum channel is not active", http.StatusConflict)
}

// ---- Transactions (TXN) ----

func ErrTransactionNotFound() *AppError {
	return New(CodeTransactionNotFound, "Transaction not found", http.StatusNotFound)
}

func ErrInsufficientBalance() *AppError {
	return New(CodeInsufficientBalance, "Insufficient balance", http.StatusPaymentRequired)
}

func ErrInvalidAmount() *AppError {
	return New(CodeInvalidAmount, "Amount must be positive with at most 2 decimals and 16 integer digits", http.StatusBadRequest)
}

func ErrTransactionNotPending() *AppError {
	return New(CodeTransactionNotPending, "Transaction is not pending", http.StatusConflict)
}

// ---- Accounts (ACC) ----

func ErrAccountNotFound() *AppError {
	return New("ACC_001", "Account not found", http.StatusNotFound)
}

// ---- Authentication (AUTH) ----

func ErrInvalidCredentials() *AppError {
	return New("AUTH_001", "Invalid credentials", http.StatusUnauthorized)
}

func ErrUserExists() *AppError {
	return New("AUTH_002", "User already exists", http.StatusConflict)
}

func ErrInvalidToken() *AppError {
	return New("AUTH_003", "Invalid or expired token", http.StatusUnauthorized)
}

func ErrNoSessionChannel() *AppError {
	return New("AUTH_004", "No quantum channel established for this session", http.StatusPreconditionRequired)
}

// ---- Rate Limiting (RATE) ----

func ErrRateLimitExceeded() *AppError {
	return New("RATE_001", "Rate limit exceeded", http.StatusTooManyRequests)
}

// ---- System & Infrastructure (SYS) ----

// ErrDatabaseError wraps a storage failure as SYS_001. A coded error raised
// inside the storage layer is returned as is.
func ErrDatabaseError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return Wrap("SYS_001", "Internal database error", http.StatusInternalServerError, err)
}

// InternalError wraps an internal error as a SYS_001 error.
func InternalError(err error) *AppError {
	return Wrap("SYS_001", "Internal server error", http.StatusInternalServerError, err)
}

// Validation returns a request validation error.
func Validation(message string) *AppError {
	return New("REQ_001", message, http.StatusBadRequest)
}

func ErrPayloadTooLarge() *AppError {
	return New("REQ_002", "Request body too large", http.StatusRequestEntityTooLarge)
}
