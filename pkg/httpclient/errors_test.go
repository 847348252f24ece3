package httpclient

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/Wjwesley1/queen-store-frontend/pkg/errors"
)

func makeResponse(statusCode int, body string) *http.Response {
	return &http.Response{
		StatusCode: statusCode,
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

func asAppError(t *testing.T, err error) *apperrors.AppError {
	t.Helper()
	var appErr *apperrors.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %T: %v", err, err)
	return appErr
}

func TestParseResponseError_ErroEnvelope(t *testing.T) {
	err := ParseResponseError(makeResponse(http.StatusBadRequest, `{"erro":"Estoque insuficiente"}`), "store-api")

	appErr := asAppError(t, err)
	assert.Equal(t, "INVALID_INPUT", appErr.Code)
	assert.Equal(t, "store-api: Estoque insuficiente", appErr.Message)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestParseResponseError_StructuredEnvelopeKeepsCode(t *testing.T) {
	body := `{"error":{"code":"CART_LINE_NOT_FOUND","message":"item not in cart"}}`
	err := ParseResponseError(makeResponse(http.StatusNotFound, body), "store-api")

	appErr := asAppError(t, err)
	assert.Equal(t, "CART_LINE_NOT_FOUND", appErr.Code)
	assert.Equal(t, http.StatusNotFound, appErr.Status)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestParseResponseError_StatusMapping(t *testing.T) {
	tests := []struct {
		status   int
		sentinel error
	}{
		{http.StatusUnauthorized, apperrors.ErrUnauthorized},
		{http.StatusForbidden, apperrors.ErrForbidden},
		{http.StatusConflict, apperrors.ErrConflict},
		{http.StatusUnprocessableEntity, apperrors.ErrInvalidInput},
		{http.StatusBadGateway, apperrors.ErrServiceUnavail},
		{http.StatusServiceUnavailable, apperrors.ErrServiceUnavail},
		{http.StatusInternalServerError, apperrors.ErrInternal},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			err := ParseResponseError(makeResponse(tt.status, `{"erro":"x"}`), "store-api")
			assert.ErrorIs(t, err, tt.sentinel)
			assert.Equal(t, tt.status, apperrors.HTTPStatus(err))
		})
	}
}

func TestParseResponseError_UnstructuredBody(t *testing.T) {
	err := ParseResponseError(makeResponse(http.StatusBadGateway, "<html>502 Bad Gateway</html>\n"), "store-api")
	assert.Equal(t, "store-api: <html>502 Bad Gateway</html>", asAppError(t, err).Message)
}

func TestParseResponseError_EmptyBodyUsesStatusText(t *testing.T) {
	err := ParseResponseError(makeResponse(http.StatusTooManyRequests, ""), "store-api")
	appErr := asAppError(t, err)
	assert.Equal(t, "store-api: Too Many Requests", appErr.Message)
	assert.Equal(t, http.StatusTooManyRequests, appErr.Status)
	assert.Equal(t, "UPSTREAM_ERROR", appErr.Code)
}

func TestParseResponseError_NullErrorFallsBackToRawBody(t *testing.T) {
	err := ParseResponseError(makeResponse(http.StatusBadRequest, `{"error":null}`), "store-api")
	assert.Contains(t, err.Error(), `{"error":null}`)
}

func TestIsClientError(t *testing.T) {
	assert.False(t, IsClientError(399))
	assert.True(t, IsClientError(400))
	assert.True(t, IsClientError(499))
	assert.False(t, IsClientError(500))
}
