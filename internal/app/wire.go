package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/quantara/edgescan/internal/analytics"
	s3blob "github.com/quantara/edgescan/internal/blob/s3"
	"github.com/quantara/edgescan/internal/cache/redis"
	"github.com/quantara/edgescan/internal/config"
	"github.com/quantara/edgescan/internal/domain"
	"github.com/quantara/edgescan/internal/platform/oddsapi"
	"github.com/quantara/edgescan/internal/platform/polymarket"
	"github.com/quantara/edgescan/internal/service"
	"github.com/quantara/edgescan/internal/store/postgres"
)

// Dependencies aggregates every wired component. Optional dependencies stay
// nil when their backend is not configured; consumers degrade gracefully.
type Dependencies struct {
	Gamma *polymarket.GammaClient
	Clob  *polymarket.ClobClient
	Odds  *oddsapi.Client

	Opportunities domain.OpportunityStore
	ValueFlags    domain.ValueFlagStore
	QuoteCache    domain.QuoteCache
	BookCache     domain.BookCache
	RateLimiter   domain.RateLimiter
	SignalBus     domain.SignalBus
	BlobWriter    domain.BlobWriter

	Thresholds analytics.Thresholds

	ScanService *service.ScanService
	BookService *service.BookService
}

// Wire builds all dependencies from the configuration. It returns the wired
// components plus a cleanup function that closes every opened connection in
// reverse order. On error the partially opened connections are closed before
// returning.
func Wire(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Dependencies, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	deps := &Dependencies{
		Thresholds: thresholds(cfg.Analytics),
	}

	// Retrieval clients are plain HTTP wrappers; wire them unconditionally.
	deps.Gamma = polymarket.NewGammaClient(cfg.Polymarket.GammaHost)
	deps.Clob = polymarket.NewClobClient(cfg.Polymarket.ClobHost)
	if cfg.OddsAPI.APIKey != "" {
		deps.Odds = oddsapi.NewClient(cfg.OddsAPI.BaseURL, cfg.OddsAPI.APIKey,
			strings.Join(cfg.OddsAPI.Regions, ","))
	} else {
		logger.InfoContext(ctx, "oddsapi.api_key not set, bookmaker scanning disabled")
	}

	// Redis backs the caches, the signal bus, and API rate limiting.
	if cfg.Redis.Addr != "" {
		redisClient, err := redis.New(ctx, redis.ClientConfig{
			Addr:       cfg.Redis.Addr,
			Password:   cfg.Redis.Password,
			DB:         cfg.Redis.DB,
			PoolSize:   cfg.Redis.PoolSize,
			MaxRetries: cfg.Redis.MaxRetries,
			TLSEnabled: cfg.Redis.TLSEnabled,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: redis: %w", err)
		}
		closers = append(closers, func() {
			if err := redisClient.Close(); err != nil {
				logger.Warn("close redis", slog.String("error", err.Error()))
			}
		})

		deps.QuoteCache = redis.NewQuoteCache(redisClient)
		deps.BookCache = redis.NewBookCache(redisClient)
		deps.RateLimiter = redis.NewRateLimiter(redisClient)
		deps.SignalBus = redis.NewSignalBus(redisClient)
	} else {
		logger.InfoContext(ctx, "redis.addr not set, caching and live signals disabled")
	}

	// Postgres persists opportunity and value-flag history.
	if needsPostgres(cfg.Mode) || cfg.Postgres.DSN != "" || cfg.Postgres.Host != "" {
		pgClient, err := postgres.New(ctx, postgres.ClientConfig{
			DSN:      cfg.Postgres.DSN,
			Host:     cfg.Postgres.Host,
			Port:     cfg.Postgres.Port,
			Database: cfg.Postgres.Database,
			User:     cfg.Postgres.User,
			Password: cfg.Postgres.Password,
			SSLMode:  cfg.Postgres.SSLMode,
			MaxConns: cfg.Postgres.PoolMaxConns,
			MinConns: cfg.Postgres.PoolMinConns,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: postgres: %w", err)
		}
		closers = append(closers, pgClient.Close)

		if cfg.Postgres.RunMigrations {
			if err := pgClient.RunMigrations(ctx); err != nil {
				cleanup()
				return nil, nil, fmt.Errorf("wire: run migrations: %w", err)
			}
		}

		deps.Opportunities = postgres.NewOpportunityStore(pgClient.Pool())
		deps.ValueFlags = postgres.NewValueFlagStore(pgClient.Pool())
	}

	// Object storage receives archived scan reports.
	if cfg.Scan.Archive {
		s3Client, err := s3blob.New(ctx, s3blob.ClientConfig{
			Endpoint:       cfg.S3.Endpoint,
			Region:         cfg.S3.Region,
			Bucket:         cfg.S3.Bucket,
			AccessKey:      cfg.S3.AccessKey,
			SecretKey:      cfg.S3.SecretKey,
			ForcePathStyle: cfg.S3.ForcePathStyle,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: s3: %w", err)
		}
		deps.BlobWriter = s3blob.NewWriter(s3Client, cfg.S3.Prefix)
	}

	// Typed-nil guard: only assign the interface when the client exists.
	var oddsSrc service.OddsSource
	if deps.Odds != nil {
		oddsSrc = deps.Odds
	}

	deps.ScanService = service.NewScanService(
		oddsSrc,
		deps.Gamma,
		deps.Clob,
		deps.Opportunities,
		deps.ValueFlags,
		deps.QuoteCache,
		deps.SignalBus,
		deps.BlobWriter,
		deps.RateLimiter,
		service.ScanConfig{
			Interval:   cfg.Scan.Interval.Duration,
			FetchWidth: int64(cfg.Scan.FetchWidth),
			MaxMarkets: cfg.Scan.MaxMarkets,
			Sports:     cfg.Scan.Sports,
			Archive:    cfg.Scan.Archive,
			Thresholds: deps.Thresholds,
			QuoteTTL:   cfg.Scan.QuoteTTL.Duration,
			OddsLimit:  cfg.OddsAPI.RateLimit,
			OddsWindow: cfg.OddsAPI.RateLimitWindow.Duration,
			BookLimit:  cfg.Polymarket.RateLimit,
			BookWindow: cfg.Polymarket.RateLimitWindow.Duration,
		},
		logger,
	)

	deps.BookService = service.NewBookService(deps.Clob, deps.BookCache, deps.Thresholds, logger)

	return deps, cleanup, nil
}

// thresholds applies configured overrides on top of the engine defaults.
func thresholds(cfg config.AnalyticsConfig) analytics.Thresholds {
	th := analytics.DefaultThresholds()
	if cfg.MarginThreshold > 0 {
		th.MarginThreshold = cfg.MarginThreshold
	}
	if cfg.MinEdgePercent > 0 {
		th.MinEdgePercent = cfg.MinEdgePercent
	}
	if cfg.ProbeNotionalUSD > 0 {
		th.ProbeNotionalUSD = cfg.ProbeNotionalUSD
	}
	return th
}

// needsPostgres reports whether a mode persists scan history.
func needsPostgres(mode string) bool {
	switch strings.ToLower(mode) {
	case "scan", "full":
		return true
	default:
		return false
	}
}
