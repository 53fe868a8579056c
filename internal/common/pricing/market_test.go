// internal/common/pricing/market_test.go
package pricing

import (
	"testing"

	"proposal-workers/internal/common/onebuild"

	"github.com/stretchr/testify/assert"
)

func laborResult(rates ...float64) *Result {
	entries := make([]onebuild.LaborEntry, 0, len(rates))
	for _, r := range rates {
		entries = append(entries, onebuild.LaborEntry{Description: "labor", HourlyRate: r, Unit: "hour"})
	}
	return &Result{
		Entry:  CachedPriceEntry{Payload: onebuild.TradePricing{Labor: entries}},
		Source: SourceLive,
	}
}

func TestMarketMultiplier(t *testing.T) {
	gateway := newGateway(t, nil, nil, nil)

	tests := []struct {
		name          string
		result        *Result
		tradeID       string
		expected      float64
		expectedBasis string
	}{
		{
			name:          "nil result is neutral",
			result:        nil,
			tradeID:       "plumbing",
			expected:      1.0,
			expectedBasis: "none",
		},
		{
			name:          "no labor entries is neutral",
			result:        laborResult(),
			tradeID:       "plumbing",
			expected:      1.0,
			expectedBasis: "none",
		},
		{
			name:          "average over baseline",
			result:        laborResult(88.4, 98.6), // avg 93.5 / 85 = 1.1
			tradeID:       "plumbing",
			expected:      1.1,
			expectedBasis: "regional_labor_rates",
		},
		{
			name:          "clamped to ceiling",
			result:        laborResult(200.0),
			tradeID:       "plumbing",
			expected:      1.15,
			expectedBasis: "regional_labor_rates",
		},
		{
			name:          "clamped to floor",
			result:        laborResult(10.0),
			tradeID:       "plumbing",
			expected:      0.90,
			expectedBasis: "regional_labor_rates",
		},
		{
			name:          "unknown trade uses default baseline",
			result:        laborResult(75.0),
			tradeID:       "landscaping",
			expected:      1.0,
			expectedBasis: "regional_labor_rates",
		},
		{
			name:          "non-positive rates ignored",
			result:        laborResult(0, -5, 93.5),
			tradeID:       "electrical", // baseline 90
			expected:      93.5 / 90.0,
			expectedBasis: "regional_labor_rates",
		},
		{
			name:          "only non-positive rates is neutral",
			result:        laborResult(0, -5),
			tradeID:       "plumbing",
			expected:      1.0,
			expectedBasis: "none",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			multiplier, basis := gateway.MarketMultiplier(tt.result, tt.tradeID)
			assert.InDelta(t, tt.expected, multiplier, 0.0001)
			assert.Equal(t, tt.expectedBasis, basis)
		})
	}
}
