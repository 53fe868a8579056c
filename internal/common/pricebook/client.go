// Package pricebook wraps the external base-pricing service that turns a
// template's base price range plus multipliers into a concrete price range.
package pricebook

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	commonhttp "proposal-workers/internal/common/http"
)

var ErrUnavailable = errors.New("PRICEBOOK_UNAVAILABLE")

// PriceInputs bundles every multiplier input for one price computation.
// The combination arithmetic lives in the pricebook service, not here.
type PriceInputs struct {
	BasePriceLow        int     `json:"basePriceLow"`
	BasePriceHigh       int     `json:"basePriceHigh"`
	JobSize             int     `json:"jobSize"`
	UserPriceMultiplier int     `json:"userPriceMultiplier"` // percent
	TradeMultiplier     *int    `json:"tradeMultiplier"`     // percent, nil when no trade override
	MarketMultiplier    float64 `json:"marketMultiplier"`
}

// PriceRange is the computed low/high for the base package.
type PriceRange struct {
	PriceLow  int `json:"priceLow"`
	PriceHigh int `json:"priceHigh"`
}

// Pricer is the interface consumed by the draft pipeline.
type Pricer interface {
	ComputePriceRange(ctx context.Context, inputs PriceInputs) (PriceRange, error)
}

type Config struct {
	BaseURL string
	Timeout time.Duration
}

type Client struct {
	config     *Config
	httpClient *commonhttp.Client
}

func NewClient(config *Config) *Client {
	return &Client{
		config:     config,
		httpClient: commonhttp.NewClient(config.Timeout),
	}
}

func (c *Client) ComputePriceRange(ctx context.Context, inputs PriceInputs) (PriceRange, error) {
	body, _ := json.Marshal(inputs)
	req, err := http.NewRequestWithContext(ctx, "POST", c.config.BaseURL+"/api/pricing/compute-range", bytes.NewBuffer(body))
	if err != nil {
		return PriceRange{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return PriceRange{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return PriceRange{}, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}

	var pr PriceRange
	if err := json.NewDecoder(resp.Body).Decode(&pr); err != nil {
		return PriceRange{}, fmt.Errorf("%w: decode error: %v", ErrUnavailable, err)
	}

	if pr.PriceLow <= 0 || pr.PriceHigh < pr.PriceLow {
		return PriceRange{}, fmt.Errorf("%w: implausible range %d-%d", ErrUnavailable, pr.PriceLow, pr.PriceHigh)
	}

	return pr, nil
}
