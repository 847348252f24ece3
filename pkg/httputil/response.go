package httputil

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	apperrors "github.com/Wjwesley1/queen-store-frontend/pkg/errors"
	"github.com/Wjwesley1/queen-store-frontend/pkg/logger"
	"github.com/Wjwesley1/queen-store-frontend/pkg/validator"
)

// ErrorEnvelope is the error body written by Go services in this module.
// Successful responses are written bare, matching the store backend.
type ErrorEnvelope struct {
	Error *ErrorResponse `json:"error"`
}

// ErrorResponse represents an error in the standard response format.
type ErrorResponse struct {
	Code      string            `json:"code"`
	Message   string            `json:"message"`
	Fields    map[string]string `json:"fields,omitempty"`
	RequestID string            `json:"request_id,omitempty"`
}

// WriteJSON writes v as JSON with the given status code.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Headers are already sent; nothing meaningful can be done if encoding fails.
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError writes err as an ErrorEnvelope. AppErrors keep their code,
// message and status; anything else maps through apperrors.HTTPStatus and
// 500s are logged with the request-scoped logger when one is present.
func WriteError(w http.ResponseWriter, r *http.Request, err error, fallback *slog.Logger) {
	l := logger.FromContext(r.Context())
	if l == slog.Default() && fallback != nil {
		l = fallback
	}
	requestID := logger.CorrelationIDFromContext(r.Context())

	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		if appErr.Status >= http.StatusInternalServerError {
			logInternal(r, l, err)
		}
		WriteJSON(w, apperrors.HTTPStatus(appErr), ErrorEnvelope{
			Error: &ErrorResponse{Code: appErr.Code, Message: appErr.Message, RequestID: requestID},
		})
		return
	}

	status := apperrors.HTTPStatus(err)
	code, message := "INTERNAL_ERROR", "an internal error occurred"
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		code, message = "NOT_FOUND", "resource not found"
	case errors.Is(err, apperrors.ErrInvalidInput):
		code, message = "INVALID_INPUT", err.Error()
	case errors.Is(err, apperrors.ErrUnauthorized):
		code, message = "UNAUTHORIZED", "authentication required"
	}

	if status == http.StatusInternalServerError {
		logInternal(r, l, err)
	}

	WriteJSON(w, status, ErrorEnvelope{
		Error: &ErrorResponse{Code: code, Message: message, RequestID: requestID},
	})
}

func logInternal(r *http.Request, l *slog.Logger, err error) {
	l.ErrorContext(r.Context(), "internal error",
		slog.String("error", err.Error()),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
	)
}

// WriteValidationError writes a 400 with field-level messages when err is a
// *validator.ValidationError.
func WriteValidationError(w http.ResponseWriter, err error) {
	var valErr *validator.ValidationError
	if errors.As(err, &valErr) {
		WriteJSON(w, http.StatusBadRequest, ErrorEnvelope{
			Error: &ErrorResponse{
				Code:    "VALIDATION_ERROR",
				Message: valErr.Error(),
				Fields:  valErr.Fields(),
			},
		})
		return
	}

	WriteJSON(w, http.StatusBadRequest, ErrorEnvelope{
		Error: &ErrorResponse{Code: "INVALID_INPUT", Message: err.Error()},
	})
}

// ParseID parses a positive integer path parameter. On failure it writes a
// 400 response and returns false.
func ParseID(w http.ResponseWriter, param string) (int, bool) {
	id, err := strconv.Atoi(param)
	if err != nil || id <= 0 {
		WriteJSON(w, http.StatusBadRequest, ErrorEnvelope{
			Error: &ErrorResponse{
				Code:    "INVALID_PARAMETER",
				Message: "invalid id: " + param,
			},
		})
		return 0, false
	}
	return id, true
}
