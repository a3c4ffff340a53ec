package errors

import (
	"errors"
	"net/http"
)

// Domain errors
var (
	ErrNotFound        = errors.New("resource not found")
	ErrAlreadyExists   = errors.New("resource already exists")
	ErrInvalidInput    = errors.New("invalid input")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrForbidden       = errors.New("forbidden")
	ErrInvalidState    = errors.New("invalid state")
	ErrQuotaExceeded   = errors.New("monthly lead quota exceeded")
	ErrPaymentFailed   = errors.New("payment failed")
	ErrAlreadyAccepted = errors.New("lead already accepted")
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrConflict        = errors.New("concurrent modification")
)

// Error codes returned to API clients.
const (
	CodeNotFound        = "NOT_FOUND"
	CodeUnauthorized    = "UNAUTHORIZED"
	CodeForbidden       = "FORBIDDEN"
	CodeInvalidState    = "INVALID_STATE"
	CodeValidation      = "VALIDATION_ERROR"
	CodeQuotaExceeded   = "QUOTA_EXCEEDED"
	CodePaymentFailed   = "PAYMENT_FAILED"
	CodeAlreadyAccepted = "ALREADY_ACCEPTED"
	CodeInvalidAmount   = "INVALID_AMOUNT"
	CodeConflict        = "CONFLICT"
	CodeInternalError   = "INTERNAL_ERROR"
)

// AppError represents application error with HTTP status
type AppError struct {
	Status  int                    `json:"-"`
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
	Err     error                  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Code
}

// Unwrap lets errors.Is match the wrapped sentinel.
func (e *AppError) Unwrap() error {
	return e.Err
}

// WithDetails attaches structured details and returns the same error.
func (e *AppError) WithDetails(details map[string]interface{}) *AppError {
	e.Details = details
	return e
}

// NewAppError creates a new app error
func NewAppError(status int, code, message string, err error) *AppError {
	return &AppError{
		Status:  status,
		Code:    code,
		Message: message,
		Err:     err,
	}
}

func NotFound(message string) *AppError {
	return NewAppError(http.StatusNotFound, CodeNotFound, message, ErrNotFound)
}

// Unauthorized is returned when the caller does not own the resource.
func Unauthorized(message string) *AppError {
	return NewAppError(http.StatusForbidden, CodeUnauthorized, message, ErrUnauthorized)
}

func Forbidden(message string) *AppError {
	return NewAppError(http.StatusForbidden, CodeForbidden, message, ErrForbidden)
}

func Validation(message string) *AppError {
	return NewAppError(http.StatusBadRequest, CodeValidation, message, ErrInvalidInput)
}

func InvalidState(message string) *AppError {
	return NewAppError(http.StatusConflict, CodeInvalidState, message, ErrInvalidState)
}

func AlreadyAccepted(message string) *AppError {
	return NewAppError(http.StatusConflict, CodeAlreadyAccepted, message, ErrAlreadyAccepted)
}

func Conflict(message string) *AppError {
	return NewAppError(http.StatusConflict, CodeConflict, message, ErrConflict)
}

// QuotaExceeded reports the provider's current and maximum monthly lead counts.
func QuotaExceeded(current, max int) *AppError {
	return NewAppError(http.StatusTooManyRequests, CodeQuotaExceeded, "monthly lead limit reached", ErrQuotaExceeded).
		WithDetails(map[string]interface{}{
			"currentCount": current,
			"maxLeads":     max,
		})
}

// PaymentFailed carries the gateway message verbatim.
func PaymentFailed(message string, err error) *AppError {
	if err == nil {
		err = ErrPaymentFailed
	}
	return NewAppError(http.StatusPaymentRequired, CodePaymentFailed, message, err)
}

func InvalidAmount(message string) *AppError {
	return NewAppError(http.StatusBadRequest, CodeInvalidAmount, message, ErrInvalidAmount)
}

func InternalError(err error) *AppError {
	return NewAppError(http.StatusInternalServerError, CodeInternalError, "internal server error", err)
}

// FromRepository maps repository sentinels to API errors, falling back to an
// internal error.
func FromRepository(err error, notFoundMessage string) *AppError {
	var appErr *AppError
	switch {
	case errors.As(err, &appErr):
		return appErr
	case errors.Is(err, ErrNotFound):
		return NotFound(notFoundMessage)
	case errors.Is(err, ErrConflict):
		return Conflict("resource was modified concurrently, retry the request")
	case errors.Is(err, ErrAlreadyExists):
		return NewAppError(http.StatusConflict, CodeConflict, "resource already exists", ErrAlreadyExists)
	default:
		return InternalError(err)
	}
}
