package domain

import "time"

// LevelOrigin distinguishes native book depth from depth inferred off the
// complementary instrument.
type LevelOrigin string

const (
	OriginDirect    LevelOrigin = "direct"
	OriginSynthetic LevelOrigin = "synthetic"
)

// PriceLevel is a single price+size entry in a raw orderbook.
type PriceLevel struct {
	Price float64 `json:"price"`
	Size  float64 `json:"size"`
}

// OrderLevel is a merged-book entry tagged with its origin. Levels are
// constructed fresh per merge and never mutated afterwards.
type OrderLevel struct {
	Price  float64     `json:"price"`
	Size   float64     `json:"size"`
	Origin LevelOrigin `json:"origin"`
}

// BookView reports which liquidity a merged book reflects.
type BookView string

const (
	// ViewMerged means direct plus synthetic complement liquidity.
	ViewMerged BookView = "merged"
	// ViewRaw means direct liquidity only; the true depth is likely
	// understated because the complement book was unavailable.
	ViewRaw BookView = "raw"
)

// MergedBook combines direct and synthetic levels for one instrument.
// Bids are sorted descending by price, asks ascending; every level price
// lies strictly in (0,1).
type MergedBook struct {
	AssetID string       `json:"asset_id,omitempty"`
	Bids    []OrderLevel `json:"bids"`
	Asks    []OrderLevel `json:"asks"`
	View    BookView     `json:"view"`
}

// LiquidityTier classifies how much size a book absorbs at acceptable cost.
type LiquidityTier string

const (
	LiquidityExcellent LiquidityTier = "excellent"
	LiquidityGood      LiquidityTier = "good"
	LiquidityModerate  LiquidityTier = "moderate"
	LiquidityPoor      LiquidityTier = "poor"
	LiquidityIlliquid  LiquidityTier = "illiquid"
)

// FillSimulation is the result of greedily walking one book side to fill a
// target notional. FilledUSD never exceeds RequestedUSD and CanFill holds
// exactly when the full notional was absorbed.
type FillSimulation struct {
	RequestedUSD    float64       `json:"requested_usd"`
	FilledUSD       float64       `json:"filled_usd"`
	SharesFilled    float64       `json:"shares_filled"`
	AvgPrice        float64       `json:"avg_price"`
	WorstPrice      float64       `json:"worst_price"`
	SlippagePercent float64       `json:"slippage_percent"`
	LevelsConsumed  int           `json:"levels_consumed"`
	CanFill         bool          `json:"can_fill"`
	Liquidity       LiquidityTier `json:"liquidity,omitempty"`
}

// PriceChange is an incremental price-level update from a realtime feed.
// A zero size means the level was removed.
type PriceChange struct {
	AssetID   string    `json:"asset_id"`
	Side      string    `json:"side"`
	Price     float64   `json:"price"`
	Size      float64   `json:"size"`
	Timestamp time.Time `json:"timestamp"`
}

// OrderbookSnapshot is a raw point-in-time book for one asset as delivered
// by a venue feed, before any merging.
type OrderbookSnapshot struct {
	AssetID   string       `json:"asset_id"`
	Bids      []PriceLevel `json:"bids"`
	Asks      []PriceLevel `json:"asks"`
	BestBid   float64      `json:"best_bid"`
	BestAsk   float64      `json:"best_ask"`
	MidPrice  float64      `json:"mid_price"`
	Timestamp time.Time    `json:"timestamp"`
}
