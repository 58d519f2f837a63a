// Package feed keeps the live orderbook cache warm. BookFeed subscribes to
// the Polymarket CLOB WebSocket for a set of tokens, writes every snapshot
// into the book cache, and republishes best bid/offer updates on the signal
// bus for downstream consumers.
package feed

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/quantara/edgescan/internal/domain"
	"github.com/quantara/edgescan/internal/platform/polymarket"
)

// BookEvent is the JSON shape published to the "books" channel on every
// snapshot, and to "prices" on every incremental level change.
type BookEvent struct {
	Event     string  `json:"event"`
	AssetID   string  `json:"asset_id"`
	BestBid   float64 `json:"best_bid,omitempty"`
	BestAsk   float64 `json:"best_ask,omitempty"`
	MidPrice  float64 `json:"mid_price,omitempty"`
	Side      string  `json:"side,omitempty"`
	Price     float64 `json:"price,omitempty"`
	Size      float64 `json:"size"`
	Timestamp string  `json:"timestamp"`
}

// BookFeed connects to the CLOB WebSocket, subscribes to book and
// price_change for the given asset IDs, and mirrors the stream into the
// cache and bus. It reconnects on disconnect.
type BookFeed struct {
	wsURL     string
	assetIDs  []string
	cache     domain.BookCache
	bus       domain.SignalBus
	logger    *slog.Logger
	closeOnce sync.Once
	done      chan struct{}
}

// NewBookFeed creates a feed for the given asset IDs. bus may be nil, in
// which case events are cached but not republished.
func NewBookFeed(wsURL string, assetIDs []string, cache domain.BookCache, bus domain.SignalBus, logger *slog.Logger) *BookFeed {
	return &BookFeed{
		wsURL:    wsURL,
		assetIDs: assetIDs,
		cache:    cache,
		bus:      bus,
		logger:   logger.With(slog.String("component", "book_feed")),
		done:     make(chan struct{}),
	}
}

// Run connects, subscribes, and runs until ctx is cancelled. Reconnects
// with a fixed delay when the connection drops.
func (f *BookFeed) Run(ctx context.Context) error {
	if len(f.assetIDs) == 0 {
		f.logger.Info("no asset IDs to subscribe, exiting")
		return nil
	}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-f.done:
			return nil
		default:
		}
		err := f.runConnection(ctx)
		if err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		f.logger.Warn("book feed disconnected, reconnecting", slog.String("error", err.Error()))
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(2 * time.Second):
		}
	}
}

func (f *BookFeed) runConnection(ctx context.Context) error {
	client := polymarket.NewWSClient(f.wsURL)
	defer client.Close()

	client.OnBookUpdate(func(snap domain.OrderbookSnapshot) {
		f.handleSnapshot(ctx, snap)
	})
	client.OnPriceChange(func(change domain.PriceChange) {
		f.handlePriceChange(ctx, change)
	})

	connCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	err := client.Connect(connCtx)
	cancel()
	if err != nil {
		return err
	}

	if err := client.Subscribe(ctx, []string{"book", "price_change"}, f.assetIDs); err != nil {
		return err
	}
	f.logger.Info("book feed subscribed", slog.Int("assets", len(f.assetIDs)))

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-f.done:
		return nil
	}
}

func (f *BookFeed) handleSnapshot(ctx context.Context, snap domain.OrderbookSnapshot) {
	if snap.AssetID == "" {
		return
	}
	if f.cache != nil {
		if err := f.cache.SetSnapshot(ctx, snap.AssetID, snap); err != nil {
			f.logger.Debug("cache snapshot failed",
				slog.String("asset_id", snap.AssetID),
				slog.String("error", err.Error()),
			)
		}
	}
	f.publish(ctx, "books", BookEvent{
		Event:     "book_update",
		AssetID:   snap.AssetID,
		BestBid:   snap.BestBid,
		BestAsk:   snap.BestAsk,
		MidPrice:  snap.MidPrice,
		Timestamp: snap.Timestamp.Format(time.RFC3339Nano),
	})
}

func (f *BookFeed) handlePriceChange(ctx context.Context, change domain.PriceChange) {
	if change.AssetID == "" {
		return
	}
	f.publish(ctx, "prices", BookEvent{
		Event:     "price_change",
		AssetID:   change.AssetID,
		Side:      change.Side,
		Price:     change.Price,
		Size:      change.Size,
		Timestamp: change.Timestamp.Format(time.RFC3339Nano),
	})
}

func (f *BookFeed) publish(ctx context.Context, channel string, ev BookEvent) {
	if f.bus == nil {
		return
	}
	payload, err := json.Marshal(ev)
	if err != nil {
		return
	}
	if err := f.bus.Publish(ctx, channel, payload); err != nil {
		f.logger.Debug("publish failed",
			slog.String("channel", channel),
			slog.String("error", err.Error()),
		)
	}
}

// Close stops the feed.
func (f *BookFeed) Close() {
	f.closeOnce.Do(func() { close(f.done) })
}
