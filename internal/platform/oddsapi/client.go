// Package oddsapi provides the REST client for The Odds API, which quotes
// sporting events in decimal odds across many bookmakers. The client flattens
// the per-bookmaker response into raw quote batches keyed by event.
package oddsapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/quantara/edgescan/internal/domain"
)

// Client is the REST client for The Odds API (v4).
type Client struct {
	baseURL    string
	apiKey     string
	regions    string
	httpClient *http.Client
}

// NewClient creates an Odds API client.
//
// baseURL is the API root, e.g. "https://api.the-odds-api.com/v4".
// regions is the comma-separated bookmaker regions filter, e.g. "eu,uk,us".
func NewClient(baseURL, apiKey, regions string) *Client {
	if regions == "" {
		regions = "eu"
	}
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		regions: regions,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// GetSports returns the sport keys currently in season.
func (c *Client) GetSports(ctx context.Context) ([]string, error) {
	body, err := c.doGet(ctx, "/sports", nil)
	if err != nil {
		return nil, fmt.Errorf("oddsapi: get sports: %w", err)
	}

	var apiSports []APISport
	if err := json.Unmarshal(body, &apiSports); err != nil {
		return nil, fmt.Errorf("oddsapi: decode sports: %w", err)
	}

	keys := make([]string, 0, len(apiSports))
	for _, s := range apiSports {
		if s.Active {
			keys = append(keys, s.Key)
		}
	}
	return keys, nil
}

// GetOdds returns every event for one sport together with the flattened
// decimal-odds quotes from all bookmakers that cover it. One RawQuote is
// emitted per (event, bookmaker, outcome) triple; batches preserve the API's
// event order.
func (c *Client) GetOdds(ctx context.Context, sportKey string) ([]EventQuotes, error) {
	params := url.Values{}
	params.Set("regions", c.regions)
	params.Set("markets", "h2h")
	params.Set("oddsFormat", "decimal")

	body, err := c.doGet(ctx, "/sports/"+url.PathEscape(sportKey)+"/odds", params)
	if err != nil {
		return nil, fmt.Errorf("oddsapi: get odds for %s: %w", sportKey, err)
	}

	var apiEvents []APIEvent
	if err := json.Unmarshal(body, &apiEvents); err != nil {
		return nil, fmt.Errorf("oddsapi: decode odds for %s: %w", sportKey, err)
	}

	batches := make([]EventQuotes, 0, len(apiEvents))
	for i := range apiEvents {
		batches = append(batches, apiEvents[i].ToEventQuotes())
	}
	return batches, nil
}

// EventQuotes pairs one bookmaker event with the raw quotes observed for it.
type EventQuotes struct {
	Event  domain.Event
	Quotes []domain.RawQuote
}

func (c *Client) doGet(ctx context.Context, path string, params url.Values) ([]byte, error) {
	if params == nil {
		params = url.Values{}
	}
	params.Set("apiKey", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
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
	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, domain.ErrRateLimited
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, domain.ErrUnauthorized
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("status %d: %s", resp.StatusCode, truncate(body, 200))
	}
	return body, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
