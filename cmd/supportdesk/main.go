package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/valinor-ai/supportdesk/internal/platform/config"
	"github.com/valinor-ai/supportdesk/internal/platform/metrics"
	"github.com/valinor-ai/supportdesk/internal/platform/server"
	"github.com/valinor-ai/supportdesk/internal/platform/telemetry"
)

const taskDrainTimeout = 30 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Optional .env for local runs; real environment wins.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("loading .env: %w", err)
	}

	// Load configuration
	cfg, err := config.Load("config.yaml")
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	// Setup logging
	logger := telemetry.NewLogger(cfg.Log.Level, cfg.Log.Format)
	telemetry.SetDefault(logger)

	slog.Info("supportdesk starting",
		"version", "1.0.0",
		"port", cfg.Server.Port,
		"command", cfg.Discord.CommandName,
	)

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New()
	}

	handler, err := newInteractionHandler(cfg, logger, m)
	if err != nil {
		return err
	}

	deps := server.Dependencies{
		InteractionHandler: handler.HandleInteraction,
		Logger:             logger,
	}
	if m != nil {
		deps.Metrics = m.Handler()
	}

	addr := net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port))
	srv := server.New(addr, deps)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	serveErr := srv.Start(ctx)

	// Deferred commands may still be sending follow-ups.
	drainCtx, drainCancel := context.WithTimeout(context.Background(), taskDrainTimeout)
	defer drainCancel()
	if err := handler.Tasks().Wait(drainCtx); err != nil {
		slog.Warn("background tasks still running at exit", "error", err)
	}

	return serveErr
}
