package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/quantara/edgescan/internal/domain"
)

// quoteCacheTTL bounds how long a stale quote set can linger; the scan
// service applies its own, shorter freshness window on top.
const quoteCacheTTL = 5 * time.Minute

// QuoteCache implements domain.QuoteCache. Each event's normalized quotes
// are stored as one JSON blob at "quotes:{eventID}" alongside an observation
// timestamp, written atomically in a pipeline.
type QuoteCache struct {
	rdb *redis.Client
}

// NewQuoteCache creates a QuoteCache backed by the given Client.
func NewQuoteCache(c *Client) *QuoteCache {
	return &QuoteCache{rdb: c.Underlying()}
}

func quotesKey(eventID string) string   { return "quotes:" + eventID }
func quotesTsKey(eventID string) string { return "quotes:" + eventID + ":ts" }

type cachedQuotes struct {
	Quotes []domain.Quote `json:"quotes"`
}

// SetQuotes stores the quote set and its observation time for an event.
func (qc *QuoteCache) SetQuotes(ctx context.Context, eventID string, quotes []domain.Quote, ts time.Time) error {
	blob, err := json.Marshal(cachedQuotes{Quotes: quotes})
	if err != nil {
		return fmt.Errorf("redis: encode quotes %s: %w", eventID, err)
	}

	pipe := qc.rdb.TxPipeline()
	pipe.Set(ctx, quotesKey(eventID), blob, quoteCacheTTL)
	pipe.Set(ctx, quotesTsKey(eventID), ts.UnixNano(), quoteCacheTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis: set quotes %s: %w", eventID, err)
	}
	return nil
}

// GetQuotes returns the cached quote set and its observation time, or
// domain.ErrNotFound when the event has no fresh entry.
func (qc *QuoteCache) GetQuotes(ctx context.Context, eventID string) ([]domain.Quote, time.Time, error) {
	blob, err := qc.rdb.Get(ctx, quotesKey(eventID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, time.Time{}, domain.ErrNotFound
		}
		return nil, time.Time{}, fmt.Errorf("redis: get quotes %s: %w", eventID, err)
	}

	var cached cachedQuotes
	if err := json.Unmarshal(blob, &cached); err != nil {
		return nil, time.Time{}, fmt.Errorf("redis: decode quotes %s: %w", eventID, err)
	}

	nanos, err := qc.rdb.Get(ctx, quotesTsKey(eventID)).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, time.Time{}, fmt.Errorf("redis: get quotes ts %s: %w", eventID, err)
	}

	return cached.Quotes, time.Unix(0, nanos), nil
}

// Invalidate removes the cached quotes for an event.
func (qc *QuoteCache) Invalidate(ctx context.Context, eventID string) error {
	if err := qc.rdb.Del(ctx, quotesKey(eventID), quotesTsKey(eventID)).Err(); err != nil {
		return fmt.Errorf("redis: invalidate quotes %s: %w", eventID, err)
	}
	return nil
}

var _ domain.QuoteCache = (*QuoteCache)(nil)
