package httpclient

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	apperrors "github.com/Wjwesley1/queen-store-frontend/pkg/errors"
)

// ErrorBody covers both error envelopes the store backend emits:
// {"erro": "..."} from the Express routes and
// {"error": {"code": "...", "message": "..."}} from the Go dev backend.
type ErrorBody struct {
	Erro  string `json:"erro"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (b ErrorBody) codeAndMessage() (code, message string, ok bool) {
	if b.Error != nil && b.Error.Message != "" {
		return b.Error.Code, b.Error.Message, true
	}
	if b.Erro != "" {
		return "", b.Erro, true
	}
	return "", "", false
}

// ParseResponseError reads a non-2xx response and translates it into an
// *apperrors.AppError. The backend message is preserved when the body uses a
// known envelope; otherwise the raw body is used. The body is consumed and
// closed.
func ParseResponseError(resp *http.Response, source string) error {
	defer func() { _ = resp.Body.Close() }()

	bodyBytes, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("%s returned status %d (failed to read body: %w)", source, resp.StatusCode, err)
	}

	var body ErrorBody
	code, message, ok := "", "", false
	if json.Unmarshal(bodyBytes, &body) == nil {
		code, message, ok = body.codeAndMessage()
	}
	if !ok {
		message = strings.TrimSpace(string(bodyBytes))
		if message == "" {
			message = http.StatusText(resp.StatusCode)
		}
	}

	return mapStatus(resp.StatusCode, code, fmt.Sprintf("%s: %s", source, message))
}

func mapStatus(status int, code, message string) *apperrors.AppError {
	var appErr *apperrors.AppError
	switch {
	case status == http.StatusNotFound:
		appErr = &apperrors.AppError{Code: "NOT_FOUND", Message: message, Status: status, Err: apperrors.ErrNotFound}
	case status == http.StatusBadRequest, status == http.StatusUnprocessableEntity:
		appErr = apperrors.InvalidInput(message)
		appErr.Status = status
	case status == http.StatusConflict:
		appErr = apperrors.Conflict(message)
	case status == http.StatusUnauthorized:
		appErr = apperrors.Unauthorized(message)
	case status == http.StatusForbidden:
		appErr = apperrors.Forbidden(message)
	case status == http.StatusServiceUnavailable, status == http.StatusBadGateway, status == http.StatusGatewayTimeout:
		appErr = apperrors.ServiceUnavailable(message)
		appErr.Status = status
	case status >= 500:
		appErr = &apperrors.AppError{Code: "UPSTREAM_ERROR", Message: message, Status: status, Err: apperrors.ErrInternal}
	default:
		appErr = &apperrors.AppError{Code: "UPSTREAM_ERROR", Message: message, Status: status}
	}
	if code != "" {
		appErr.Code = code
	}
	return appErr
}

// IsClientError reports whether status is a 4xx.
func IsClientError(status int) bool {
	return status >= 400 && status < 500
}
