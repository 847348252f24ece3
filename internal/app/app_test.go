package app

import (
	"context"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Wjwesley1/queen-store-frontend/internal/config"
	"github.com/Wjwesley1/queen-store-frontend/internal/service"
	"github.com/Wjwesley1/queen-store-frontend/pkg/health"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	t.Chdir(t.TempDir())
	cfg, err := config.Load()
	require.NoError(t, err)
	cfg.ProfileBackend = config.ProfileMemory
	return cfg
}

// startBackend serves a dev backend on a random port.
func startBackend(t *testing.T, cfg *config.Config) string {
	t.Helper()
	backend, err := NewApp(cfg, testLogger())
	require.NoError(t, err)
	srv := httptest.NewServer(backend.Handler())
	t.Cleanup(srv.Close)
	return srv.URL
}

// ============================================================================
// Storefront
// ============================================================================

func TestStorefront_HealthUpAgainstBackend(t *testing.T) {
	cfg := testConfig(t)
	cfg.StoreAPIURL = startBackend(t, cfg)
	ctx := context.Background()

	sf, err := NewStorefront(ctx, cfg, testLogger(), &service.NoticeRecorder{})
	require.NoError(t, err)
	defer func() { assert.NoError(t, sf.Close(ctx)) }()

	resp := sf.Health(ctx)
	assert.Equal(t, health.StatusUp, resp.Status)
	assert.Contains(t, resp.Checks, "store_api")
	assert.Contains(t, resp.Checks, "profile_store")
	assert.NotContains(t, resp.Checks, "kafka")
}

func TestStorefront_HealthDownWithoutBackend(t *testing.T) {
	cfg := testConfig(t)
	cfg.StoreAPIURL = "http://127.0.0.1:1"
	cfg.StoreAPITimeout = 1
	ctx := context.Background()

	sf, err := NewStorefront(ctx, cfg, testLogger(), &service.NoticeRecorder{})
	require.NoError(t, err)
	defer func() { _ = sf.Close(ctx) }()

	resp := sf.Health(ctx)
	assert.Equal(t, health.StatusDown, resp.Status)
	assert.Equal(t, health.StatusDown, resp.Checks["store_api"].Status)
}

func TestStorefront_KafkaIsNonCritical(t *testing.T) {
	cfg := testConfig(t)
	cfg.StoreAPIURL = startBackend(t, cfg)
	cfg.KafkaBrokers = []string{"127.0.0.1:1"}
	ctx := context.Background()

	sf, err := NewStorefront(ctx, cfg, testLogger(), &service.NoticeRecorder{})
	require.NoError(t, err)
	defer func() { _ = sf.Close(ctx) }()

	resp := sf.Health(ctx)
	assert.Equal(t, health.StatusDegraded, resp.Status)
	assert.False(t, resp.Checks["kafka"].Critical)
}

func TestStorefront_CartAgainstBackend(t *testing.T) {
	cfg := testConfig(t)
	cfg.StoreAPIURL = startBackend(t, cfg)
	cfg.CBEnabled = true
	ctx := context.Background()

	notices := &service.NoticeRecorder{}
	sf, err := NewStorefront(ctx, cfg, testLogger(), notices)
	require.NoError(t, err)
	defer func() { _ = sf.Close(ctx) }()

	p, err := sf.Catalog.Lookup(ctx, 3)
	require.NoError(t, err)
	require.NoError(t, sf.Cart.AddItem(ctx, p, 2))

	cart := sf.Cart.List(ctx)
	require.Len(t, cart.Lines, 1)
	assert.Equal(t, 2, cart.Lines[0].Quantity)

	last, ok := notices.Last()
	require.True(t, ok)
	assert.Equal(t, service.NoticeSuccess, last.Level)
}

func TestStorefront_RedisProfile(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := testConfig(t)
	cfg.StoreAPIURL = startBackend(t, cfg)
	cfg.ProfileBackend = config.ProfileRedis
	cfg.RedisAddr = mr.Addr()
	ctx := context.Background()

	sf, err := NewStorefront(ctx, cfg, testLogger(), &service.NoticeRecorder{})
	require.NoError(t, err)

	id := sf.Sessions.GetOrCreate(ctx)
	require.NoError(t, sf.Close(ctx))

	// A new invocation resumes the same cart session.
	sf2, err := NewStorefront(ctx, cfg, testLogger(), &service.NoticeRecorder{})
	require.NoError(t, err)
	defer func() { _ = sf2.Close(ctx) }()
	assert.Equal(t, id, sf2.Sessions.GetOrCreate(ctx))
}

func TestStorefront_RedisUnavailable(t *testing.T) {
	cfg := testConfig(t)
	cfg.ProfileBackend = config.ProfileRedis
	cfg.RedisAddr = "127.0.0.1:1"

	_, err := NewStorefront(context.Background(), cfg, testLogger(), &service.NoticeRecorder{})
	assert.Error(t, err)
}

// ============================================================================
// Dev backend
// ============================================================================

func TestApp_ServeAndShutdown(t *testing.T) {
	cfg := testConfig(t)
	a, err := NewApp(cfg, testLogger())
	require.NoError(t, err)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Serve(ctx, ln) }()

	url := "http://" + ln.Addr().String() + "/health/live"
	require.Eventually(t, func() bool {
		resp, err := http.Get(url)
		if err != nil {
			return false
		}
		_ = resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
