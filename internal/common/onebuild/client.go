// Package onebuild wraps the regional pricing data provider. The provider
// may be slow or unavailable; callers are expected to bound every fetch
// with their own timeout and treat failures as missing data.
package onebuild

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	commonhttp "proposal-workers/internal/common/http"
)

var ErrFetchFailed = errors.New("PRICING_FETCH_FAILED")

// LaborEntry is a single regional labor rate line.
type LaborEntry struct {
	Description string  `json:"description"`
	HourlyRate  float64 `json:"hourlyRate"`
	Unit        string  `json:"unit,omitempty"`
}

// MaterialEntry is a single regional material price line.
type MaterialEntry struct {
	Description string  `json:"description"`
	UnitPrice   float64 `json:"unitPrice"`
	Unit        string  `json:"unit,omitempty"`
}

// TradePricing is the provider payload for one (trade, zipcode) pair.
type TradePricing struct {
	Materials []MaterialEntry `json:"materials"`
	Labor     []LaborEntry    `json:"labor"`
}

// PricingProvider is the interface consumed by the pricing cache gateway.
type PricingProvider interface {
	GetTradePricing(ctx context.Context, tradeID, zipcode string) (*TradePricing, error)
	Configured() bool
}

type Config struct {
	BaseURL string
	APIKey  string
}

type Client struct {
	config     *Config
	httpClient *commonhttp.Client
}

func NewClient(config *Config) *Client {
	return &Client{
		config: config,
		// Generous client-level ceiling; the gateway owns the real deadline
		// and passes it through the request context.
		httpClient: commonhttp.NewClient(30 * time.Second),
	}
}

// Configured reports whether the provider can be called at all.
func (c *Client) Configured() bool {
	return c.config.BaseURL != "" && c.config.APIKey != ""
}

func (c *Client) GetTradePricing(ctx context.Context, tradeID, zipcode string) (*TradePricing, error) {
	endpoint := fmt.Sprintf("%s/v1/pricing/trades/%s?zipcode=%s",
		c.config.BaseURL, url.PathEscape(tradeID), url.QueryEscape(zipcode))

	req, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	req.Header.Set("X-Api-Key", c.config.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrFetchFailed, resp.StatusCode)
	}

	var pricing TradePricing
	if err := json.NewDecoder(resp.Body).Decode(&pricing); err != nil {
		return nil, fmt.Errorf("%w: decode error: %v", ErrFetchFailed, err)
	}

	return &pricing, nil
}
