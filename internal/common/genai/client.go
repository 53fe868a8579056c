// Package genai wraps the external scope-enhancement service.
package genai

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

var (
	ErrEnhancementFailed  = errors.New("ENHANCEMENT_FAILED")
	ErrEnhancementTimeout = errors.New("ENHANCEMENT_TIMEOUT")
)

// EnhanceScopeRequest carries the job context sent to the enhancement model.
type EnhanceScopeRequest struct {
	JobTypeName string   `json:"jobTypeName"`
	BaseScope   []string `json:"baseScope"`
	ClientName  string   `json:"clientName"`
	Address     string   `json:"address"`
	JobNotes    string   `json:"jobNotes"`
}

// EnhanceScopeResult is the enhancement service response.
type EnhanceScopeResult struct {
	Success       bool     `json:"success"`
	EnhancedScope []string `json:"enhancedScope"`
}

// ScopeEnhancer is the interface consumed by the draft pipeline.
type ScopeEnhancer interface {
	EnhanceScope(ctx context.Context, req EnhanceScopeRequest) (EnhanceScopeResult, error)
}

type Config struct {
	BaseURL string
	APIKey  string
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

func (c *Client) EnhanceScope(ctx context.Context, req EnhanceScopeRequest) (EnhanceScopeResult, error) {
	body, _ := json.Marshal(req)
	httpReq, err := http.NewRequestWithContext(ctx, "POST", c.config.BaseURL+"/api/ai/enhance-scope", bytes.NewBuffer(body))
	if err != nil {
		return EnhanceScopeResult{}, fmt.Errorf("%w: %v", ErrEnhancementFailed, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.config.APIKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.config.APIKey)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil ||
			errors.Is(err, context.DeadlineExceeded) ||
			errors.Is(err, context.Canceled) {
			return EnhanceScopeResult{}, ErrEnhancementTimeout
		}
		return EnhanceScopeResult{}, fmt.Errorf("%w: %v", ErrEnhancementFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return EnhanceScopeResult{}, fmt.Errorf("%w: status %d", ErrEnhancementFailed, resp.StatusCode)
	}

	var result EnhanceScopeResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return EnhanceScopeResult{}, fmt.Errorf("%w: decode error: %v", ErrEnhancementFailed, err)
	}

	return result, nil
}
