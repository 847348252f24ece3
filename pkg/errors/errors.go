package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Standard sentinel errors for common cases.
var (
	ErrNotFound       = errors.New("resource not found")
	ErrInvalidInput   = errors.New("invalid input")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrInternal       = errors.New("internal error")
	ErrConflict       = errors.New("conflict")
	ErrServiceUnavail = errors.New("service unavailable")
)

// Storefront sentinels. Each one names a failure class that callers render
// as a user-facing notice.
var (
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrValidationFailed  = errors.New("validation failed")
	ErrAddFailed         = errors.New("add to cart failed")
	ErrUpdateFailed      = errors.New("cart update failed")
	ErrRemoveFailed      = errors.New("cart removal failed")
)

// AppError represents a structured application error with HTTP status mapping.
type AppError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
	Status  int    `json:"-"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NotFound creates a 404 error.
func NotFound(resource, id string) *AppError {
	return &AppError{
		Code:    "NOT_FOUND",
		Message: fmt.Sprintf("%s with id %s not found", resource, id),
		Status:  http.StatusNotFound,
		Err:     ErrNotFound,
	}
}

// InvalidInput creates a 400 error.
func InvalidInput(message string) *AppError {
	return &AppError{
		Code:    "INVALID_INPUT",
		Message: message,
		Status:  http.StatusBadRequest,
		Err:     ErrInvalidInput,
	}
}

// Unauthorized creates a 401 error.
func Unauthorized(message string) *AppError {
	return &AppError{
		Code:    "UNAUTHORIZED",
		Message: message,
		Status:  http.StatusUnauthorized,
		Err:     ErrUnauthorized,
	}
}

// Forbidden creates a 403 error.
func Forbidden(message string) *AppError {
	return &AppError{
		Code:    "FORBIDDEN",
		Message: message,
		Status:  http.StatusForbidden,
		Err:     ErrForbidden,
	}
}

// Conflict creates a 409 error.
func Conflict(message string) *AppError {
	return &AppError{
		Code:    "CONFLICT",
		Message: message,
		Status:  http.StatusConflict,
		Err:     ErrConflict,
	}
}

// ServiceUnavailable creates a 503 error.
func ServiceUnavailable(message string) *AppError {
	return &AppError{
		Code:    "SERVICE_UNAVAILABLE",
		Message: message,
		Status:  http.StatusServiceUnavailable,
		Err:     ErrServiceUnavail,
	}
}

// Internal creates a 500 error.
func Internal(err error) *AppError {
	return &AppError{
		Code:    "INTERNAL_ERROR",
		Message: "an internal error occurred",
		Status:  http.StatusInternalServerError,
		Err:     err,
	}
}

// InsufficientStock reports a local stock precheck failure. No request was sent.
func InsufficientStock(product string, requested, available int) *AppError {
	return &AppError{
		Code:    "INSUFFICIENT_STOCK",
		Message: fmt.Sprintf("%s: requested %d, only %d in stock", product, requested, available),
		Status:  http.StatusConflict,
		Err:     ErrInsufficientStock,
	}
}

// ValidationFailed reports invalid customer input on the given field.
func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Code:    "VALIDATION_FAILED",
		Message: message,
		Field:   field,
		Status:  http.StatusBadRequest,
		Err:     ErrValidationFailed,
	}
}

// MutationFailed wraps a transport or server error from a cart mutation.
// kind must be one of ErrAddFailed, ErrUpdateFailed or ErrRemoveFailed.
func MutationFailed(kind error, cause error) *AppError {
	code := "CART_MUTATION_FAILED"
	switch kind {
	case ErrAddFailed:
		code = "ADD_FAILED"
	case ErrUpdateFailed:
		code = "UPDATE_FAILED"
	case ErrRemoveFailed:
		code = "REMOVE_FAILED"
	}
	return &AppError{
		Code:    code,
		Message: kind.Error(),
		Status:  HTTPStatus(cause),
		Err:     fmt.Errorf("%w: %w", kind, cause),
	}
}

// Wrap wraps an error with additional context.
func Wrap(err error, message string) error {
	return fmt.Errorf("%s: %w", message, err)
}

// Code returns the AppError code carried by err, or "" if there is none.
func Code(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}

// HTTPStatus returns the HTTP status code for the given error.
func HTTPStatus(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.Status != 0 {
		return appErr.Status
	}

	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrConflict), errors.Is(err, ErrInsufficientStock):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrValidationFailed):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrServiceUnavail):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
