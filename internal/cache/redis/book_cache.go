package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/quantara/edgescan/internal/domain"
)

// bookCacheTTL evicts books for assets the feed stopped updating.
const bookCacheTTL = 2 * time.Minute

// BookCache implements domain.BookCache. One JSON snapshot per asset at
// "book:{assetID}" plus a small "book:{assetID}:bbo" hash so best-bid/ask
// reads skip decoding the full depth.
type BookCache struct {
	rdb *redis.Client
}

// NewBookCache creates a BookCache backed by the given Client.
func NewBookCache(c *Client) *BookCache {
	return &BookCache{rdb: c.Underlying()}
}

func bookKey(assetID string) string    { return "book:" + assetID }
func bookBBOKey(assetID string) string { return "book:" + assetID + ":bbo" }

// SetSnapshot replaces the whole snapshot for an asset.
func (bc *BookCache) SetSnapshot(ctx context.Context, assetID string, snap domain.OrderbookSnapshot) error {
	blob, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("redis: encode book %s: %w", assetID, err)
	}

	pipe := bc.rdb.TxPipeline()
	pipe.Set(ctx, bookKey(assetID), blob, bookCacheTTL)
	pipe.HSet(ctx, bookBBOKey(assetID), "bid", snap.BestBid, "ask", snap.BestAsk)
	pipe.Expire(ctx, bookBBOKey(assetID), bookCacheTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis: set book %s: %w", assetID, err)
	}
	return nil
}

// GetSnapshot returns the cached snapshot, or domain.ErrNotFound.
func (bc *BookCache) GetSnapshot(ctx context.Context, assetID string) (domain.OrderbookSnapshot, error) {
	blob, err := bc.rdb.Get(ctx, bookKey(assetID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.OrderbookSnapshot{}, domain.ErrNotFound
		}
		return domain.OrderbookSnapshot{}, fmt.Errorf("redis: get book %s: %w", assetID, err)
	}

	var snap domain.OrderbookSnapshot
	if err := json.Unmarshal(blob, &snap); err != nil {
		return domain.OrderbookSnapshot{}, fmt.Errorf("redis: decode book %s: %w", assetID, err)
	}
	return snap, nil
}

// GetBBO returns the best bid and ask without decoding the full book.
func (bc *BookCache) GetBBO(ctx context.Context, assetID string) (float64, float64, error) {
	vals, err := bc.rdb.HGetAll(ctx, bookBBOKey(assetID)).Result()
	if err != nil {
		return 0, 0, fmt.Errorf("redis: get bbo %s: %w", assetID, err)
	}
	if len(vals) == 0 {
		return 0, 0, domain.ErrNotFound
	}

	var bid, ask float64
	if v, ok := vals["bid"]; ok {
		bid, _ = strconv.ParseFloat(v, 64)
	}
	if v, ok := vals["ask"]; ok {
		ask, _ = strconv.ParseFloat(v, 64)
	}
	return bid, ask, nil
}

var _ domain.BookCache = (*BookCache)(nil)
