// Package errors provides custom error types for the pocketledger API.
// All service-layer errors should use AppError to ensure consistent,
// secure error responses that never leak internal details to clients.
package errors

import (
	"fmt"
	"net/http"
)

// AppError represents a structured application error with an error code,
// human-readable message, HTTP status code, and optional internal error.
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	Internal   error  `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string { return e.Message }

// Unwrap returns the internal error for use with errors.Is/As.
func (e *AppError) Unwrap() error { return e.Internal }

// Is matches AppErrors by code so wrapped copies still compare equal to
// their sentinel.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// Wrap creates a new AppError with the same code/message/status but wraps an internal error.
func Wrap(sentinel *AppError, internal error) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    sentinel.Message,
		StatusCode: sentinel.StatusCode,
		Internal:   internal,
	}
}

// WithMessage creates a new AppError with a custom message.
func WithMessage(sentinel *AppError, message string) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    message,
		StatusCode: sentinel.StatusCode,
		Internal:   sentinel.Internal,
	}
}

// WithCause wraps internal and appends its text to the sentinel message.
// Used where the user is expected to see the underlying cause.
func WithCause(sentinel *AppError, internal error) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    fmt.Sprintf("%s: %v", sentinel.Message, internal),
		StatusCode: sentinel.StatusCode,
		Internal:   internal,
	}
}

// Authentication & authorization errors.
var (
	ErrUnauthorized       = &AppError{Code: "UNAUTHORIZED", Message: "Authentication required", StatusCode: http.StatusUnauthorized}
	ErrInvalidCredentials = &AppError{Code: "INVALID_CREDENTIALS", Message: "Invalid email or password", StatusCode: http.StatusUnauthorized}
	ErrInvalidToken       = &AppError{Code: "INVALID_TOKEN", Message: "Invalid or expired token", StatusCode: http.StatusUnauthorized}
	ErrAccountLocked      = &AppError{Code: "ACCOUNT_LOCKED", Message: "Account is temporarily locked", StatusCode: http.StatusLocked}
	ErrOAuthNotConfigured = &AppError{Code: "OAUTH_NOT_CONFIGURED", Message: "Google sign-in is not configured", StatusCode: http.StatusServiceUnavailable}
	ErrOAuthFailed        = &AppError{Code: "OAUTH_FAILED", Message: "Google sign-in failed", StatusCode: http.StatusBadGateway}
	ErrTooManyRequests    = &AppError{Code: "TOO_MANY_REQUESTS", Message: "Too many requests, slow down", StatusCode: http.StatusTooManyRequests}
)

// General errors.
var (
	ErrInvalidInput   = &AppError{Code: "INVALID_INPUT", Message: "Invalid input", StatusCode: http.StatusBadRequest}
	ErrInternalServer = &AppError{Code: "INTERNAL_ERROR", Message: "An internal error occurred", StatusCode: http.StatusInternalServerError}
)

// User errors.
var (
	ErrUserNotFound   = &AppError{Code: "USER_NOT_FOUND", Message: "User not found", StatusCode: http.StatusNotFound}
	ErrDuplicateEmail = &AppError{Code: "DUPLICATE_EMAIL", Message: "A user with this email already exists", StatusCode: http.StatusConflict}
)

// Transaction store errors. The store is remote; a failed round trip is
// terminal for that attempt and the client retries by re-triggering.
// Rejected input shares the INVALID_INPUT code with request validation.
var (
	ErrStore                  = &AppError{Code: "STORE_ERROR", Message: "Transaction store is unavailable, please try again", StatusCode: http.StatusServiceUnavailable}
	ErrInvalidTransactionType = &AppError{Code: "INVALID_INPUT", Message: "Transaction type must be income or expense", StatusCode: http.StatusBadRequest}
	ErrInvalidAmount          = &AppError{Code: "INVALID_INPUT", Message: "Amount must be a non-negative number below 1000000000000 with at most 2 decimal places", StatusCode: http.StatusBadRequest}
)

// Export errors.
var (
	ErrNothingToExport = &AppError{Code: "NOTHING_TO_EXPORT", Message: "No transactions to export!", StatusCode: http.StatusUnprocessableEntity}
	ErrExportEncoding  = &AppError{Code: "EXPORT_FAILED", Message: "Failed to export transactions", StatusCode: http.StatusInternalServerError}
)
