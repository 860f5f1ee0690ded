package errors

import (
	"fmt"
	"net/http"
)

type ErrorCode string

const (
	ValidationError   ErrorCode = "validation_error"
	NotFound          ErrorCode = "not_found"
	Conflict          ErrorCode = "conflict"
	InsufficientFunds ErrorCode = "insufficient_funds"
	StorageError      ErrorCode = "storage_error"
)

type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Details string    `json:"details,omitempty"`
}

func (e *AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func NewAppError(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

func NewAppErrorf(code ErrorCode, format string, args ...interface{}) *AppError {
	return &AppError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

func (e *AppError) WithDetails(details string) *AppError {
	return &AppError{
		Code:    e.Code,
		Message: e.Message,
		Details: details,
	}
}

// HTTPStatus maps each error kind to its response code.
func (e *AppError) HTTPStatus() int {
	switch e.Code {
	case ValidationError:
		return http.StatusUnprocessableEntity
	case NotFound:
		return http.StatusNotFound
	case Conflict, InsufficientFunds:
		return http.StatusConflict
	case StorageError:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Predefined errors for common cases
var (
	ErrAccountNotFound        = NewAppError(NotFound, "account not found")
	ErrWithdrawalNotFound     = NewAppError(NotFound, "withdrawal transaction not found")
	ErrTransactionNotFound    = NewAppError(NotFound, "transaction not found")
	ErrCurrencyMismatch       = NewAppError(Conflict, "transaction currency must match account currency")
	ErrUUIDReused             = NewAppError(Conflict, "uuid is already used for a different request")
	ErrInsufficientFunds      = NewAppError(InsufficientFunds, "insufficient funds")
	ErrDuplicateUUID          = NewAppError(Conflict, "uuid is already used by another transaction")
	ErrCannotBeginTransaction = NewAppError(StorageError, "cannot begin transaction on a transactional store")
)
