// Package server assembles the dashboard's HTTP surface: the REST API, the
// WebSocket event stream, and the middleware chain around them.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/Trading-UI-Team/Polymarket-copy-view/internal/domain"
	"github.com/Trading-UI-Team/Polymarket-copy-view/internal/server/handler"
	"github.com/Trading-UI-Team/Polymarket-copy-view/internal/server/middleware"
	"github.com/Trading-UI-Team/Polymarket-copy-view/internal/server/ws"
)

// Config holds the HTTP server configuration.
type Config struct {
	Port        int
	CORSOrigins []string
	APIKey      string // if empty, authentication is disabled

	// RateLimit caps requests per client IP per RateWindow. Zero disables
	// rate limiting.
	RateLimit  int
	RateWindow time.Duration
}

// Handlers aggregates the HTTP handlers the server registers.
type Handlers struct {
	Health  *handler.HealthHandler
	Tasks   *handler.TaskHandler
	Trades  *handler.TradeHandler
	Traders *handler.TraderHandler
}

// Server is the dashboard's HTTP + WebSocket API server.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
}

// NewServer creates a Server with all routes registered and the middleware
// chain (CORS, logging, auth, rate limiting) wired up. limiter may be nil to
// disable rate limiting.
func NewServer(cfg Config, handlers Handlers, wsHub *ws.Hub, limiter domain.RateLimiter, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	// Health check (no auth required).
	mux.HandleFunc("GET /api/health", handlers.Health.HealthCheck)

	// Task read endpoints. recent-trades is registered before the {taskId}
	// wildcard so the literal segment wins.
	mux.HandleFunc("GET /api/tasks", handlers.Tasks.ListTasks)
	mux.HandleFunc("GET /api/tasks/recent-trades", handlers.Trades.RecentTrades)
	mux.HandleFunc("GET /api/tasks/{taskId}", handlers.Tasks.GetTask)
	mux.HandleFunc("GET /api/tasks/{taskId}/trades", handlers.Trades.ListTrades)
	mux.HandleFunc("GET /api/tasks/{taskId}/performance", handlers.Tasks.GetPerformance)

	// Task mutation endpoints; each blocks until the worker confirms.
	mux.HandleFunc("POST /api/traders/create", handlers.Traders.CreateTrader)
	mux.HandleFunc("POST /api/traders/update", handlers.Traders.UpdateTrader)
	mux.HandleFunc("POST /api/traders/stop", handlers.Traders.StopTrader)
	mux.HandleFunc("POST /api/traders/remove", handlers.Traders.RemoveTrader)

	// WebSocket event stream.
	if wsHub != nil {
		mux.HandleFunc("GET /ws", wsHub.HandleWS)
	}

	var h http.Handler = mux
	if limiter != nil && cfg.RateLimit > 0 {
		window := cfg.RateWindow
		if window <= 0 {
			window = time.Minute
		}
		h = middleware.RateLimit(limiter, cfg.RateLimit, window)(h)
	}
	h = middleware.Auth(cfg.APIKey)(h)
	h = middleware.Logging(logger)(h)
	h = middleware.CORS(cfg.CORSOrigins)(h)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      h,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{
		httpServer: srv,
		logger:     logger,
	}
}

// Start begins listening for HTTP requests. It blocks until the server
// encounters an error or is shut down.
func (s *Server) Start() error {
	s.logger.Info("server: starting",
		slog.String("addr", s.httpServer.Addr),
	)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server: listen: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server, waiting for in-flight requests
// to complete within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("server: shutting down")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server: shutdown: %w", err)
	}
	return nil
}
