package health

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func up(context.Context) error { return nil }

func down(msg string) Checker {
	return func(context.Context) error { return fmt.Errorf("%s", msg) }
}

func serveReady(t *testing.T, h *Handler) (int, Response) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ReadinessHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))

	var resp Response
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return rec.Code, resp
}

func TestLivenessHandler_AlwaysUp(t *testing.T) {
	h := NewHandler()
	h.Register("store-api", down("unreachable"))

	rec := httptest.NewRecorder()
	h.LivenessHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/live", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
}

func TestReadiness_AllUp(t *testing.T) {
	h := NewHandler()
	h.RegisterCritical("store-api", up)
	h.RegisterNonCritical("kafka", up)

	code, resp := serveReady(t, h)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, StatusUp, resp.Status)
	assert.Len(t, resp.Checks, 2)
}

func TestReadiness_NonCriticalDownIsDegraded(t *testing.T) {
	h := NewHandler()
	h.RegisterCritical("store-api", up)
	h.RegisterNonCritical("kafka", down("broker unreachable"))

	code, resp := serveReady(t, h)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, StatusDegraded, resp.Status)
	assert.False(t, resp.Checks["kafka"].Critical)
	assert.Equal(t, "broker unreachable", resp.Checks["kafka"].Error)
}

func TestReadiness_CriticalDownIs503(t *testing.T) {
	h := NewHandler()
	h.RegisterCritical("profile", down("redis: connection refused"))
	h.RegisterNonCritical("kafka", down("kafka down"))

	code, resp := serveReady(t, h)
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, StatusDown, resp.Status)
	assert.True(t, resp.Checks["profile"].Critical)
}

func TestRegister_IsCriticalByDefault(t *testing.T) {
	h := NewHandler()
	h.Register("profile", down("fail"))

	code, resp := serveReady(t, h)
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.True(t, resp.Checks["profile"].Critical)
}

func TestRegister_Overwrites(t *testing.T) {
	h := NewHandler()
	h.Register("profile", down("first"))
	h.Register("profile", up)

	assert.Equal(t, []string{"profile"}, h.Names())
	assert.Equal(t, StatusUp, h.Check(context.Background()).Status)
}

func TestCheck_NoCheckersIsUp(t *testing.T) {
	resp := NewHandler().Check(context.Background())
	assert.Equal(t, StatusUp, resp.Status)
	assert.Empty(t, resp.Checks)
}
