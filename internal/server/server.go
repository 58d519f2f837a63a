// Package server exposes the analytics engine over HTTP: pure-computation
// endpoints for posted quote sets and books, history endpoints backed by
// the stores, and live-market endpoints backed by the retrieval clients.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/quantara/edgescan/internal/domain"
	"github.com/quantara/edgescan/internal/server/handler"
	"github.com/quantara/edgescan/internal/server/middleware"
	"github.com/quantara/edgescan/internal/server/ws"
)

// Config holds the HTTP server configuration.
type Config struct {
	Port        int
	CORSOrigins []string
	APIKey      string // if empty, authentication is disabled

	// RateLimitPerMin caps requests per client IP per minute; 0 disables.
	RateLimitPerMin int
}

// Handlers aggregates all HTTP handlers that the server needs to register.
type Handlers struct {
	Health    *handler.HealthHandler
	Analytics *handler.AnalyticsHandler
	Arb       *handler.ArbHandler
	Value     *handler.ValueHandler
	Books     *handler.BookHandler
	Markets   *handler.MarketHandler
}

// Server is the headless HTTP + WebSocket API for the quote scanner.
type Server struct {
	httpServer *http.Server
	mux        *http.ServeMux
	logger     *slog.Logger
}

// NewServer creates a Server with all routes registered on the ServeMux and
// the middleware chain (rate limit, auth, logging, CORS) wired up. limiter
// may be nil to disable per-client rate limiting.
func NewServer(cfg Config, handlers Handlers, wsHub *ws.Hub, limiter domain.RateLimiter, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	// Health check (no auth required).
	mux.HandleFunc("GET /api/health", handlers.Health.HealthCheck)

	// Pure-computation analytics endpoints.
	mux.HandleFunc("POST /api/quotes/normalize", handlers.Analytics.Normalize)
	mux.HandleFunc("POST /api/efficiency", handlers.Analytics.Efficiency)
	mux.HandleFunc("POST /api/arbitrage/detect", handlers.Analytics.DetectArbitrage)
	mux.HandleFunc("POST /api/value/scan", handlers.Analytics.ScanValue)

	// Opportunity history.
	mux.HandleFunc("GET /api/arbitrage/recent", handlers.Arb.ListRecent)
	mux.HandleFunc("GET /api/arbitrage/stats", handlers.Arb.Stats)
	mux.HandleFunc("GET /api/arbitrage/{id}", handlers.Arb.GetByID)
	mux.HandleFunc("GET /api/events/{id}/arbitrage", handlers.Arb.ListByEvent)

	// Value flag history.
	mux.HandleFunc("GET /api/value/recent", handlers.Value.ListRecent)

	// Books and liquidity.
	mux.HandleFunc("POST /api/books/merge", handlers.Books.Merge)
	mux.HandleFunc("POST /api/books/impact", handlers.Books.Impact)
	mux.HandleFunc("GET /api/markets/{id}/liquidity", handlers.Books.Liquidity)

	// Market discovery.
	mux.HandleFunc("GET /api/markets", handlers.Markets.ListMarkets)
	mux.HandleFunc("GET /api/markets/{id}", handlers.Markets.GetMarket)

	// WebSocket endpoint.
	if wsHub != nil {
		mux.HandleFunc("GET /ws", wsHub.HandleWS)
	}

	// Build the middleware chain.
	var h http.Handler = mux

	h = middleware.Auth(cfg.APIKey)(h)
	if limiter != nil && cfg.RateLimitPerMin > 0 {
		h = middleware.RateLimit(limiter, cfg.RateLimitPerMin, time.Minute)(h)
	}
	h = middleware.Logging(logger)(h)
	h = middleware.CORS(cfg.CORSOrigins)(h)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      h,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{
		httpServer: srv,
		mux:        mux,
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
