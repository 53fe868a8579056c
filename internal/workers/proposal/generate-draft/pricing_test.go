// internal/workers/proposal/generate-draft/pricing_test.go
package generatedraft

import (
	"context"
	"errors"
	"testing"

	"proposal-workers/internal/common/pricebook"

	"github.com/stretchr/testify/assert"
)

type fakePricer struct {
	priceRange pricebook.PriceRange
	err        error
	lastInputs pricebook.PriceInputs
}

func (f *fakePricer) ComputePriceRange(_ context.Context, inputs pricebook.PriceInputs) (pricebook.PriceRange, error) {
	f.lastInputs = inputs
	if f.err != nil {
		return pricebook.PriceRange{}, f.err
	}
	return f.priceRange, nil
}

func TestBuildPackages_TierRatiosAndTotals(t *testing.T) {
	goodRange := pricebook.PriceRange{PriceLow: 1000, PriceHigh: 1500}
	scope := []string{"Item A", "Item B"}

	packages := buildPackages(goodRange, scope)

	assert.Len(t, packages, 3)

	good := packages[0]
	assert.Equal(t, PackageGood, good.Label)
	assert.Equal(t, 1000, good.PriceLow)
	assert.Equal(t, 1500, good.PriceHigh)
	assert.Equal(t, 1250, good.Total)
	assert.Equal(t, scope, good.LineItems)

	better := packages[1]
	assert.Equal(t, PackageBetter, better.Label)
	assert.Equal(t, 1080, better.PriceLow)
	assert.Equal(t, 1620, better.PriceHigh)
	assert.Equal(t, 1350, better.Total)
	assert.Len(t, better.LineItems, 3)
	assert.Equal(t, "Verify all field measurements prior to ordering materials", better.LineItems[2])

	best := packages[2]
	assert.Equal(t, PackageBest, best.Label)
	assert.Equal(t, 1180, best.PriceLow)
	assert.Equal(t, 1770, best.PriceHigh)
	assert.Equal(t, 1475, best.Total)
	assert.Len(t, best.LineItems, 5)
	assert.Contains(t, best.LineItems, "Premium protection plan coverage")
	assert.Contains(t, best.LineItems, "Full photo documentation of completed work")
}

func TestBuildPackages_TierMonotonicity(t *testing.T) {
	ranges := []pricebook.PriceRange{
		{PriceLow: 1, PriceHigh: 2},
		{PriceLow: 750, PriceHigh: 1200},
		{PriceLow: 99999, PriceHigh: 250000},
	}

	for _, goodRange := range ranges {
		packages := buildPackages(goodRange, []string{"work"})

		for i := 1; i < len(packages); i++ {
			assert.GreaterOrEqual(t, packages[i].PriceLow, packages[i-1].PriceLow)
			assert.GreaterOrEqual(t, packages[i].PriceHigh, packages[i-1].PriceHigh)
			assert.GreaterOrEqual(t, packages[i].Total, packages[i-1].Total)
		}
	}
}

func TestBuildPackages_DoesNotMutateScope(t *testing.T) {
	scope := []string{"Item A"}
	buildPackages(pricebook.PriceRange{PriceLow: 100, PriceHigh: 200}, scope)
	assert.Equal(t, []string{"Item A"}, scope)
}

func TestSynthesizePriceRange_DelegatesToPricebook(t *testing.T) {
	pricer := &fakePricer{priceRange: pricebook.PriceRange{PriceLow: 2000, PriceHigh: 3000}}
	inputs := pricebook.PriceInputs{
		BasePriceLow:        1000,
		BasePriceHigh:       1500,
		JobSize:             2,
		UserPriceMultiplier: 110,
		MarketMultiplier:    1.05,
	}

	result := synthesizePriceRange(context.Background(), pricer, inputs, newTestLogger(t))

	assert.Equal(t, pricebook.PriceRange{PriceLow: 2000, PriceHigh: 3000}, result)
	assert.Equal(t, inputs, pricer.lastInputs)
}

func TestSynthesizePriceRange_LocalFallback(t *testing.T) {
	pricer := &fakePricer{err: errors.New("connection refused")}
	tradeMult := 120
	inputs := pricebook.PriceInputs{
		BasePriceLow:        1000,
		BasePriceHigh:       2000,
		JobSize:             2,
		UserPriceMultiplier: 100,
		TradeMultiplier:     &tradeMult,
		MarketMultiplier:    1.0,
	}

	result := synthesizePriceRange(context.Background(), pricer, inputs, newTestLogger(t))

	// 1000 * 1.0 * 1.2 * 1.0 * 1.15 = 1380
	assert.Equal(t, 1380, result.PriceLow)
	assert.Equal(t, 2760, result.PriceHigh)
}

func TestLocalPriceRange_NoMultipliers(t *testing.T) {
	result := localPriceRange(pricebook.PriceInputs{
		BasePriceLow:        500,
		BasePriceHigh:       800,
		JobSize:             1,
		UserPriceMultiplier: 100,
		MarketMultiplier:    1.0,
	})

	assert.Equal(t, pricebook.PriceRange{PriceLow: 500, PriceHigh: 800}, result)
}
