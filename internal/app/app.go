// Package app provides the top-level application lifecycle for the
// copy-trading dashboard. It wires together all dependencies (stores, the
// command bus, valuation services, notifications, and the HTTP surface) and
// runs them until the context is cancelled.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Trading-UI-Team/Polymarket-copy-view/internal/config"
	"github.com/Trading-UI-Team/Polymarket-copy-view/internal/domain"
)

// shutdownTimeout bounds how long in-flight requests may run after a
// termination signal.
const shutdownTimeout = 10 * time.Second

// App is the root application object. It owns the configuration, logger, and a
// list of cleanup functions that are called in reverse order on shutdown.
type App struct {
	cfg     *config.Config
	logger  *slog.Logger
	closers []func()
}

// New creates a new App from the given configuration and logger.
func New(cfg *config.Config, logger *slog.Logger) *App {
	return &App{
		cfg:    cfg,
		logger: logger.With(slog.String("component", "app")),
	}
}

// Run is the main entry point. It wires all dependencies, starts the event
// fan-out and the HTTP server, and blocks until the context is cancelled or a
// component fails.
func (a *App) Run(ctx context.Context) error {
	a.logger.InfoContext(ctx, "starting application",
		slog.Int("port", a.cfg.Server.Port),
		slog.String("log_level", a.cfg.LogLevel),
	)

	deps, cleanup, err := Wire(ctx, a.cfg, a.logger)
	if err != nil {
		return fmt.Errorf("app: wire dependencies: %w", err)
	}
	a.closers = append(a.closers, cleanup)

	// Forward worker events to the configured notification channels. Senders
	// do network I/O, so each event is dispatched off the bus goroutine.
	relay, err := deps.Bus.Subscribe(ctx, func(n domain.Notification) {
		go func() {
			nctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()
			if err := deps.Notifier.TaskEvent(nctx, n); err != nil {
				a.logger.Warn("notification dispatch failed",
					slog.String("event", n.Event),
					slog.String("error", err.Error()),
				)
			}
		}()
	})
	if err != nil {
		return fmt.Errorf("app: subscribe notifications: %w", err)
	}
	defer relay.Release()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return deps.Hub.Run(gctx)
	})

	g.Go(func() error {
		return deps.Server.Start()
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return deps.Server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// Close tears down all resources in reverse registration order. It is safe to
// call multiple times; subsequent calls are no-ops.
func (a *App) Close() {
	a.logger.Info("shutting down application")
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
