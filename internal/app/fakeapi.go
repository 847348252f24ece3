package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/Wjwesley1/queen-store-frontend/internal/config"
	"github.com/Wjwesley1/queen-store-frontend/internal/fakeapi"
	"github.com/Wjwesley1/queen-store-frontend/pkg/health"
	"github.com/Wjwesley1/queen-store-frontend/pkg/tracing"
)

// App wires together and runs the in-memory dev backend.
type App struct {
	cfg            *config.Config
	logger         *slog.Logger
	store          *fakeapi.Store
	httpServer     *http.Server
	shutdownTracer func(context.Context) error
}

// NewApp creates the dev backend, seeded with the default catalog.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	tcfg := cfg.Tracing
	if tcfg.ServiceName == "" {
		tcfg.ServiceName = "fakeapi"
	}
	shutdownTracer, err := tracing.InitTracer(ctx, tcfg)
	if err != nil {
		return nil, fmt.Errorf("init tracing: %w", err)
	}

	// Build the dependency graph.
	store := fakeapi.NewStore(fakeapi.SeedProducts(), 0)
	tokens := fakeapi.NewTokenSigner(cfg.FakeAPIJWTSecret, cfg.TokenTTL())
	handler := fakeapi.NewHandler(store, tokens, cfg.FakeAPIAutoVerify, logger)

	// Health checks.
	healthHandler := health.NewHandler()
	healthHandler.Register("store", store.Ping)

	router := fakeapi.NewRouter(handler, healthHandler, logger)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.FakeAPIPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &App{
		cfg:            cfg,
		logger:         logger,
		store:          store,
		httpServer:     httpServer,
		shutdownTracer: shutdownTracer,
	}, nil
}

// Handler returns the HTTP handler, for tests that serve it themselves.
func (a *App) Handler() http.Handler {
	return a.httpServer.Handler
}

// Run starts the HTTP server and blocks until the context is canceled.
func (a *App) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", a.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", a.httpServer.Addr, err)
	}
	return a.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (a *App) Serve(ctx context.Context, ln net.Listener) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("starting HTTP server",
			slog.String("addr", ln.Addr().String()),
			slog.Bool("auto_verify", a.cfg.FakeAPIAutoVerify),
		)
		if err := a.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		return err
	}

	return a.Shutdown()
}

// Shutdown gracefully stops all components.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	// Graceful HTTP server shutdown with a 10-second deadline.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
	}
	if err := a.shutdownTracer(shutdownCtx); err != nil {
		a.logger.Error("tracer shutdown error", slog.String("error", err.Error()))
	}

	a.logger.Info("application shutdown complete",
		slog.Int("orders_recorded", a.store.OrderCount()),
	)
	return nil
}
