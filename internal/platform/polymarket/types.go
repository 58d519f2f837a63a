package polymarket

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/quantara/edgescan/internal/domain"
)

// flexBool unmarshals from JSON bool or string ("true"/"false") so Gamma API
// responses work whether "active" is sent as bool or string.
type flexBool bool

func (f *flexBool) UnmarshalJSON(data []byte) error {
	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		*f = flexBool(b)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*f = flexBool(strings.EqualFold(s, "true") || s == "1")
	return nil
}

// APIMarket represents a market as returned by the Gamma API. Token IDs
// arrive as a JSON-encoded string array inside a string field.
type APIMarket struct {
	ID           string   `json:"id"`
	Question     string   `json:"question"`
	ClobTokenIDs string   `json:"clobTokenIds"`
	Active       flexBool `json:"active"`
	Closed       bool     `json:"closed"`
	EndDateISO   string   `json:"endDateIso"`
}

// ToDomainMarket converts an APIMarket to a domain.Market. Markets whose
// token list cannot be decoded into a YES/NO pair come back with empty token
// IDs and are skipped by callers.
func (m *APIMarket) ToDomainMarket() domain.Market {
	market := domain.Market{
		ID:       m.ID,
		Question: m.Question,
		Active:   bool(m.Active) && !m.Closed,
	}

	var tokens []string
	if err := json.Unmarshal([]byte(m.ClobTokenIDs), &tokens); err == nil && len(tokens) == 2 {
		market.YesTokenID = tokens[0]
		market.NoTokenID = tokens[1]
	}

	if m.EndDateISO != "" {
		if t, err := time.Parse(time.RFC3339, m.EndDateISO); err == nil {
			market.EndDate = t
		}
	}

	return market
}

// APIBookLevel is one price level as returned by the CLOB book endpoint,
// with price and size as decimal strings.
type APIBookLevel struct {
	Price string `json:"price"`
	Size  string `json:"size"`
}

// APIBook is the CLOB order book response for one token.
type APIBook struct {
	AssetID   string         `json:"asset_id"`
	Bids      []APIBookLevel `json:"bids"`
	Asks      []APIBookLevel `json:"asks"`
	Timestamp string         `json:"timestamp"`
}

// ToSnapshot converts an APIBook to a domain snapshot. Levels with
// unparsable or non-positive price/size are dropped at this boundary so the
// analytics engine never sees coerced values. Prices are parsed exactly via
// decimal before the float64 conversion so "0.555" never arrives as
// 0.5549999....
func (b *APIBook) ToSnapshot() domain.OrderbookSnapshot {
	snap := domain.OrderbookSnapshot{
		AssetID:   b.AssetID,
		Timestamp: time.Now().UTC(),
	}
	if ms, err := decimal.NewFromString(b.Timestamp); err == nil && ms.IsPositive() {
		snap.Timestamp = time.UnixMilli(ms.IntPart()).UTC()
	}

	snap.Bids = parseLevels(b.Bids)
	snap.Asks = parseLevels(b.Asks)

	if len(snap.Bids) > 0 {
		snap.BestBid = topPrice(snap.Bids, true)
	}
	if len(snap.Asks) > 0 {
		snap.BestAsk = topPrice(snap.Asks, false)
	}
	if snap.BestBid > 0 && snap.BestAsk > 0 {
		snap.MidPrice = (snap.BestBid + snap.BestAsk) / 2
	}

	return snap
}

func parseLevels(raw []APIBookLevel) []domain.PriceLevel {
	levels := make([]domain.PriceLevel, 0, len(raw))
	for _, lvl := range raw {
		price, err := decimal.NewFromString(lvl.Price)
		if err != nil || !price.IsPositive() {
			continue
		}
		size, err := decimal.NewFromString(lvl.Size)
		if err != nil || !size.IsPositive() {
			continue
		}
		levels = append(levels, domain.PriceLevel{
			Price: price.InexactFloat64(),
			Size:  size.InexactFloat64(),
		})
	}
	return levels
}

func topPrice(levels []domain.PriceLevel, highest bool) float64 {
	best := levels[0].Price
	for _, lvl := range levels[1:] {
		if highest && lvl.Price > best {
			best = lvl.Price
		}
		if !highest && lvl.Price < best {
			best = lvl.Price
		}
	}
	return best
}

// APIPrice is the CLOB last-trade or midpoint price response.
type APIPrice struct {
	Price string `json:"price"`
}

// WSCommand is the JSON payload sent to the WebSocket to subscribe or
// unsubscribe.
type WSCommand struct {
	Type    string   `json:"type"`
	Channel string   `json:"channel,omitempty"`
	Assets  []string `json:"assets_ids,omitempty"`
}

// BookMessage is a full orderbook snapshot delivered over the WebSocket
// "book" channel. Levels share the decimal-string encoding of the REST book.
type BookMessage struct {
	AssetID   string         `json:"asset_id"`
	Market    string         `json:"market"`
	Bids      []APIBookLevel `json:"bids"`
	Asks      []APIBookLevel `json:"asks"`
	Timestamp string         `json:"timestamp"`
	Hash      string         `json:"hash"`
}

// ToSnapshot converts a BookMessage to a domain snapshot, applying the same
// level filtering as the REST conversion.
func (b *BookMessage) ToSnapshot() domain.OrderbookSnapshot {
	api := APIBook{
		AssetID:   b.AssetID,
		Bids:      b.Bids,
		Asks:      b.Asks,
		Timestamp: b.Timestamp,
	}
	return api.ToSnapshot()
}

// PriceChangeMessage is an incremental price-level update from the
// "price_change" channel.
type PriceChangeMessage struct {
	AssetID   string `json:"asset_id"`
	Market    string `json:"market"`
	Side      string `json:"side"`
	Price     string `json:"price"`
	Size      string `json:"size"`
	Timestamp string `json:"timestamp"`
}

// ToDomain converts a PriceChangeMessage to a domain.PriceChange. Unparsable
// price or size comes back as zero, which downstream treats as a removed
// level.
func (p *PriceChangeMessage) ToDomain() domain.PriceChange {
	pc := domain.PriceChange{
		AssetID:   p.AssetID,
		Side:      p.Side,
		Timestamp: time.Now().UTC(),
	}
	if d, err := decimal.NewFromString(p.Price); err == nil {
		pc.Price = d.InexactFloat64()
	}
	if d, err := decimal.NewFromString(p.Size); err == nil {
		pc.Size = d.InexactFloat64()
	}
	if ms, err := decimal.NewFromString(p.Timestamp); err == nil && ms.IsPositive() {
		pc.Timestamp = time.UnixMilli(ms.IntPart()).UTC()
	}
	return pc
}
