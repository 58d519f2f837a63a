package domain

import (
	"context"
	"time"
)

// QuoteCache holds the most recent normalized quotes per event so repeat
// analytics calls within the staleness window skip upstream fetches.
type QuoteCache interface {
	SetQuotes(ctx context.Context, eventID string, quotes []Quote, ts time.Time) error
	GetQuotes(ctx context.Context, eventID string) ([]Quote, time.Time, error)
	Invalidate(ctx context.Context, eventID string) error
}

// BookCache stores live raw orderbook snapshots keyed by asset.
type BookCache interface {
	SetSnapshot(ctx context.Context, assetID string, snap OrderbookSnapshot) error
	GetSnapshot(ctx context.Context, assetID string) (OrderbookSnapshot, error)
	GetBBO(ctx context.Context, assetID string) (bestBid, bestAsk float64, err error)
}

// RateLimiter gates upstream fetches under per-provider request budgets.
type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
	Wait(ctx context.Context, key string, limit int, window time.Duration) error
}

// SignalBus publishes scan results to downstream consumers.
type SignalBus interface {
	Publish(ctx context.Context, channel string, payload []byte) error
	Subscribe(ctx context.Context, channel string) (<-chan []byte, error)
}
