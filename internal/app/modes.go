package app

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/quantara/edgescan/internal/feed"
	"github.com/quantara/edgescan/internal/server"
	"github.com/quantara/edgescan/internal/server/handler"
	"github.com/quantara/edgescan/internal/server/ws"
)

// shutdownTimeout bounds graceful HTTP shutdown after ctx cancellation.
const shutdownTimeout = 5 * time.Second

// ServeMode runs the HTTP and WebSocket API without any background
// scanning. Analytics endpoints compute over posted payloads; history
// endpoints serve whatever previous scan runs persisted.
func (a *App) ServeMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "serve mode: HTTP API only")

	g, ctx := errgroup.WithContext(ctx)
	a.startHTTPServer(ctx, g, deps)
	return g.Wait()
}

// ScanMode runs the periodic scan loop headless. Findings are persisted,
// published, and optionally archived, but no API is exposed.
func (a *App) ScanMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "scan mode: periodic scanning",
		slog.Duration("interval", a.cfg.Scan.Interval.Duration),
		slog.Int("max_markets", a.cfg.Scan.MaxMarkets),
		slog.Int("sports", len(a.cfg.Scan.Sports)),
	)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return deps.ScanService.Run(ctx)
	})
	return g.Wait()
}

// MonitorMode streams live orderbooks for the most active markets over the
// WebSocket feed, keeps the book cache warm, and serves the API on top.
func (a *App) MonitorMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "monitor mode: live book streaming")

	g, ctx := errgroup.WithContext(ctx)
	a.startBookFeed(ctx, g, deps)
	a.startHTTPServer(ctx, g, deps)
	return g.Wait()
}

// FullMode runs everything: the scan loop, the live book feed, and the HTTP
// and WebSocket API.
func (a *App) FullMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "full mode: scanning, streaming, and API")

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return deps.ScanService.Run(ctx)
	})
	a.startBookFeed(ctx, g, deps)
	a.startHTTPServer(ctx, g, deps)
	return g.Wait()
}

// startHTTPServer adds the HTTP server, and the WebSocket hub when the
// signal bus is wired, to the errgroup. The server shuts down gracefully on
// context cancellation.
func (a *App) startHTTPServer(ctx context.Context, g *errgroup.Group, deps *Dependencies) {
	var hub *ws.Hub
	if deps.SignalBus != nil {
		hub = ws.NewHub(deps.SignalBus, a.logger, ws.Config{
			Mode:      a.cfg.Mode,
			StartedAt: time.Now().UTC(),
		})
		g.Go(func() error {
			return hub.Run(ctx)
		})
	}

	handlers := server.Handlers{
		Health:    handler.NewHealthHandler(a.cfg.Mode),
		Analytics: handler.NewAnalyticsHandler(deps.Thresholds, a.logger),
		Arb:       handler.NewArbHandler(deps.Opportunities, a.logger),
		Value:     handler.NewValueHandler(deps.ValueFlags, a.logger),
		Books:     handler.NewBookHandler(deps.BookService, deps.Gamma, deps.Thresholds, a.logger),
		Markets:   handler.NewMarketHandler(deps.Gamma, a.logger),
	}

	srv := server.NewServer(server.Config{
		Port:            a.cfg.Server.Port,
		CORSOrigins:     a.cfg.Server.CORSOrigins,
		APIKey:          a.cfg.Server.APIKey,
		RateLimitPerMin: a.cfg.Server.RateLimitPerMin,
	}, handlers, hub, deps.RateLimiter, a.logger)

	g.Go(func() error {
		return srv.Start()
	})

	g.Go(func() error {
		<-ctx.Done()
		shutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutCtx)
	})
}

// startBookFeed resolves the tokens to watch and adds the live book feed to
// the errgroup. Without a working market listing the feed is skipped rather
// than failing the whole mode.
func (a *App) startBookFeed(ctx context.Context, g *errgroup.Group, deps *Dependencies) {
	assetIDs := a.watchAssetIDs(ctx, deps)
	if len(assetIDs) == 0 {
		a.logger.WarnContext(ctx, "no asset ids to watch, book feed disabled")
		return
	}

	bookFeed := feed.NewBookFeed(a.cfg.Polymarket.WsHost, assetIDs, deps.BookCache, deps.SignalBus, a.logger)
	g.Go(func() error {
		defer bookFeed.Close()
		return bookFeed.Run(ctx)
	})
}

// watchAssetIDs lists the active markets and collects both outcome tokens of
// each, bounded by the scan market cap.
func (a *App) watchAssetIDs(ctx context.Context, deps *Dependencies) []string {
	markets, err := deps.Gamma.GetMarkets(ctx, a.cfg.Scan.MaxMarkets, 0)
	if err != nil {
		a.logger.WarnContext(ctx, "list markets for book feed failed",
			slog.String("error", err.Error()),
		)
		return nil
	}

	assetIDs := make([]string, 0, len(markets)*2)
	for _, m := range markets {
		if m.YesTokenID != "" {
			assetIDs = append(assetIDs, m.YesTokenID)
		}
		if m.NoTokenID != "" {
			assetIDs = append(assetIDs, m.NoTokenID)
		}
	}

	a.logger.InfoContext(ctx, "watching live books",
		slog.Int("markets", len(markets)),
		slog.Int("assets", len(assetIDs)),
	)
	return assetIDs
}
