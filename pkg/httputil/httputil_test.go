package httputil

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/Wjwesley1/queen-store-frontend/pkg/errors"
	"github.com/Wjwesley1/queen-store-frontend/pkg/logger"
	"github.com/Wjwesley1/queen-store-frontend/pkg/validator"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var env ErrorEnvelope
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&env))
	require.NotNil(t, env.Error)
	return *env.Error
}

func TestWriteJSON_BareBody(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteJSON(rec, http.StatusCreated, []map[string]int{{"id": 1}})

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `[{"id":1}]`, rec.Body.String())
}

func TestWriteError_AppErrorKeepsCodeAndStatus(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, httptest.NewRequest(http.MethodPost, "/api/carrinho", nil),
		apperrors.InsufficientStock("Sabonete", 5, 2), testLogger())

	assert.Equal(t, http.StatusConflict, rec.Code)
	body := decodeEnvelope(t, rec)
	assert.Equal(t, "INSUFFICIENT_STOCK", body.Code)
	assert.Contains(t, body.Message, "only 2")
}

func TestWriteError_Sentinels(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   string
	}{
		{apperrors.ErrNotFound, http.StatusNotFound, "NOT_FOUND"},
		{fmt.Errorf("qty: %w", apperrors.ErrInvalidInput), http.StatusBadRequest, "INVALID_INPUT"},
		{apperrors.ErrUnauthorized, http.StatusUnauthorized, "UNAUTHORIZED"},
		{fmt.Errorf("boom"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			rec := httptest.NewRecorder()
			WriteError(rec, httptest.NewRequest(http.MethodGet, "/", nil), tt.err, testLogger())
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.code, decodeEnvelope(t, rec).Code)
		})
	}
}

func TestWriteError_InternalErrorHidesDetails(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, httptest.NewRequest(http.MethodGet, "/", nil), fmt.Errorf("secret dsn"), testLogger())
	assert.NotContains(t, rec.Body.String(), "secret dsn")
}

func TestWriteError_IncludesRequestID(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(logger.WithCorrelationID(context.Background(), "req-123"))

	rec := httptest.NewRecorder()
	WriteError(rec, req, apperrors.ErrNotFound, testLogger())
	assert.Equal(t, "req-123", decodeEnvelope(t, rec).RequestID)
}

func TestWriteValidationError(t *testing.T) {
	type body struct {
		Qty int `json:"quantidade" validate:"gte=1"`
	}
	rec := httptest.NewRecorder()
	WriteValidationError(rec, validator.Validate(body{}))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeEnvelope(t, rec)
	assert.Equal(t, "VALIDATION_ERROR", resp.Code)
	assert.Contains(t, resp.Fields, "quantidade")

	rec = httptest.NewRecorder()
	WriteValidationError(rec, fmt.Errorf("decode body: EOF"))
	assert.Equal(t, "INVALID_INPUT", decodeEnvelope(t, rec).Code)
}

func TestParseID(t *testing.T) {
	rec := httptest.NewRecorder()
	id, ok := ParseID(rec, "42")
	assert.True(t, ok)
	assert.Equal(t, 42, id)

	for _, bad := range []string{"", "abc", "0", "-3"} {
		rec := httptest.NewRecorder()
		_, ok := ParseID(rec, bad)
		assert.False(t, ok, bad)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	}
}
