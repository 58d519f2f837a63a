package polymarket

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/shopspring/decimal"

	"github.com/quantara/edgescan/internal/domain"
)

// ClobClient is the REST client for the Polymarket CLOB (Central Limit
// Order Book) API. Only the public read endpoints are used; order
// placement requires signing and is out of scope here.
type ClobClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewClobClient creates a new CLOB REST client.
//
// baseURL is the CLOB API root, e.g. "https://clob.polymarket.com".
func NewClobClient(baseURL string) *ClobClient {
	return &ClobClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// GetOrderBook fetches the full order book for one token and returns it
// as a domain snapshot with unparsable levels already dropped.
func (c *ClobClient) GetOrderBook(ctx context.Context, tokenID string) (domain.OrderbookSnapshot, error) {
	body, err := c.doGet(ctx, "/book?token_id="+url.QueryEscape(tokenID))
	if err != nil {
		return domain.OrderbookSnapshot{}, fmt.Errorf("polymarket/clob: get book %s: %w", tokenID, err)
	}

	var apiBook APIBook
	if err := json.Unmarshal(body, &apiBook); err != nil {
		return domain.OrderbookSnapshot{}, fmt.Errorf("polymarket/clob: decode book %s: %w", tokenID, err)
	}
	if apiBook.AssetID == "" {
		apiBook.AssetID = tokenID
	}

	return apiBook.ToSnapshot(), nil
}

// GetMidpoint returns the midpoint price for one token.
func (c *ClobClient) GetMidpoint(ctx context.Context, tokenID string) (float64, error) {
	body, err := c.doGet(ctx, "/midpoint?token_id="+url.QueryEscape(tokenID))
	if err != nil {
		return 0, fmt.Errorf("polymarket/clob: get midpoint %s: %w", tokenID, err)
	}
	return parsePrice(body, "midpoint", tokenID)
}

// GetLastTradePrice returns the last traded price for one token.
func (c *ClobClient) GetLastTradePrice(ctx context.Context, tokenID string) (float64, error) {
	body, err := c.doGet(ctx, "/last-trade-price?token_id="+url.QueryEscape(tokenID))
	if err != nil {
		return 0, fmt.Errorf("polymarket/clob: get last trade price %s: %w", tokenID, err)
	}
	return parsePrice(body, "last trade price", tokenID)
}

func parsePrice(body []byte, what, tokenID string) (float64, error) {
	var apiPrice APIPrice
	if err := json.Unmarshal(body, &apiPrice); err != nil {
		return 0, fmt.Errorf("polymarket/clob: decode %s %s: %w", what, tokenID, err)
	}
	price, err := decimal.NewFromString(apiPrice.Price)
	if err != nil {
		return 0, fmt.Errorf("polymarket/clob: parse %s %s: %w", what, tokenID, err)
	}
	return price.InexactFloat64(), nil
}

func (c *ClobClient) doGet(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 16<<20))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, domain.ErrRateLimited
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d: %s", resp.StatusCode, truncate(body, 200))
	}
	return body, nil
}
