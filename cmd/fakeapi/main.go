package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/Wjwesley1/queen-store-frontend/internal/app"
	"github.com/Wjwesley1/queen-store-frontend/internal/config"
	"github.com/Wjwesley1/queen-store-frontend/pkg/logger"
)

func main() {
	// Load configuration from environment variables.
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Initialize structured logger.
	log := logger.NewWithFormat("fakeapi", cfg.LogLevel, cfg.LogFormat, os.Stdout)
	log.Info("starting dev store backend",
		slog.String("environment", cfg.Environment),
		slog.Int("http_port", cfg.FakeAPIPort),
	)

	// Create the application with all dependencies wired.
	application, err := app.NewApp(cfg, log)
	if err != nil {
		log.Error("failed to initialize application", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Create a context that is canceled on SIGINT or SIGTERM.
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Run the application. This blocks until shutdown.
	if err := application.Run(ctx); err != nil {
		log.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}

	log.Info("dev store backend stopped")
}
