package analytics

import "github.com/quantara/edgescan/internal/domain"

// FillSide is the direction of a simulated order.
type FillSide string

const (
	// FillSideSell walks bids; slippage is how far the achieved average
	// falls below the reference price.
	FillSideSell FillSide = "sell"
	// FillSideBuy walks asks; slippage is how far the achieved average
	// rises above the reference price.
	FillSideBuy FillSide = "buy"
)

// SimulateFill greedily walks levels in book order consuming up to
// requestedUSD of notional value. At each level it takes
// min(remaining, size*price) of value, converting to shares at that level's
// price, until the target is met or the book is exhausted.
//
// levels must already be in fill order: bids descending for a sell, asks
// ascending for a buy. An empty book, a non-positive reference price, or a
// non-positive request short-circuits to the zero-liquidity result
// (slippage 100%, CanFill false) rather than dividing by zero.
func SimulateFill(levels []domain.OrderLevel, requestedUSD, referencePrice float64, side FillSide) domain.FillSimulation {
	if len(levels) == 0 || referencePrice <= 0 || requestedUSD <= 0 {
		return domain.FillSimulation{
			RequestedUSD:    requestedUSD,
			SlippagePercent: 100,
			CanFill:         false,
		}
	}

	remaining := requestedUSD
	var shares, worst float64
	var consumed int
	for _, lvl := range levels {
		if remaining <= 0 {
			break
		}
		if lvl.Price <= 0 || lvl.Size <= 0 {
			continue
		}
		levelValue := lvl.Size * lvl.Price
		take := remaining
		if levelValue < take {
			take = levelValue
		}
		shares += take / lvl.Price
		worst = lvl.Price
		remaining -= take
		consumed++
	}

	filled := requestedUSD - remaining
	var avg float64
	if shares > 0 {
		avg = filled / shares
	}

	var slippage float64
	if avg > 0 {
		switch side {
		case FillSideBuy:
			slippage = (avg - referencePrice) / referencePrice * 100
		default:
			slippage = (referencePrice - avg) / referencePrice * 100
		}
		if slippage < 0 {
			slippage = 0
		}
	} else {
		slippage = 100
	}

	return domain.FillSimulation{
		RequestedUSD:    requestedUSD,
		FilledUSD:       filled,
		SharesFilled:    shares,
		AvgPrice:        avg,
		WorstPrice:      worst,
		SlippagePercent: slippage,
		LevelsConsumed:  consumed,
		CanFill:         remaining <= 0,
	}
}

// ClassifyLiquidity grades a merged book by simulating a buy of the standard
// probe notional against the asks and combining the resulting slippage with
// the quoted spread. A tier requires both its spread and slippage bounds to
// hold; a book that cannot absorb the probe at all is illiquid.
func ClassifyLiquidity(book domain.MergedBook, th Thresholds) domain.LiquidityTier {
	mid := MidPrice(book)
	if mid <= 0 {
		return domain.LiquidityIlliquid
	}
	spreadPercent := (BestAsk(book) - BestBid(book)) / mid * 100

	sim := SimulateFill(book.Asks, th.ProbeNotionalUSD, mid, FillSideBuy)
	if !sim.CanFill {
		return domain.LiquidityIlliquid
	}

	switch {
	case spreadPercent < th.ExcellentSpreadPercent && sim.SlippagePercent < th.ExcellentSlippagePercent:
		return domain.LiquidityExcellent
	case spreadPercent < th.GoodSpreadPercent && sim.SlippagePercent < th.GoodSlippagePercent:
		return domain.LiquidityGood
	case spreadPercent < th.ModerateSpreadPercent && sim.SlippagePercent < th.ModerateSlippagePercent:
		return domain.LiquidityModerate
	default:
		return domain.LiquidityPoor
	}
}
