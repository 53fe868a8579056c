package generatedraft

import (
	"context"
	"math"

	"proposal-workers/internal/common/logger"
	"proposal-workers/internal/common/pricebook"
)

// Tier escalation ratios over the GOOD price bounds.
const (
	betterRatio = 1.08
	bestRatio   = 1.18
)

var (
	betterExtraItems = []string{
		"Verify all field measurements prior to ordering materials",
	}
	bestExtraItems = []string{
		"Premium protection plan coverage",
		"Full photo documentation of completed work",
	}
)

// synthesizePriceRange asks the pricebook service for the GOOD range and
// falls back to a local approximation when the service is unavailable. A
// draft always gets priced.
func synthesizePriceRange(ctx context.Context, pricer pricebook.Pricer, inputs pricebook.PriceInputs, log logger.Logger) pricebook.PriceRange {
	if pricer != nil {
		priceRange, err := pricer.ComputePriceRange(ctx, inputs)
		if err == nil {
			return priceRange
		}
		log.Warn("Pricebook unavailable, using local price fallback", map[string]interface{}{
			"error": err.Error(),
		})
	}
	return localPriceRange(inputs)
}

// localPriceRange approximates the pricebook arithmetic: percent multipliers
// applied in sequence, then a job-size factor of +15% per size step above 1.
func localPriceRange(inputs pricebook.PriceInputs) pricebook.PriceRange {
	factor := float64(inputs.UserPriceMultiplier) / 100.0
	if inputs.TradeMultiplier != nil {
		factor *= float64(*inputs.TradeMultiplier) / 100.0
	}
	factor *= inputs.MarketMultiplier

	sizeFactor := 1.0 + 0.15*float64(inputs.JobSize-1)
	factor *= sizeFactor

	return pricebook.PriceRange{
		PriceLow:  roundToInt(float64(inputs.BasePriceLow) * factor),
		PriceHigh: roundToInt(float64(inputs.BasePriceHigh) * factor),
	}
}

// buildPackages derives the three tiers from the GOOD range. BETTER and BEST
// scale both bounds by fixed ratios and extend the scope with fixed items.
func buildPackages(goodRange pricebook.PriceRange, scope []string) []Package {
	good := newPackage(PackageGood, goodRange.PriceLow, goodRange.PriceHigh, scope)

	betterScope := append(append([]string{}, scope...), betterExtraItems...)
	better := newPackage(PackageBetter,
		roundToInt(float64(goodRange.PriceLow)*betterRatio),
		roundToInt(float64(goodRange.PriceHigh)*betterRatio),
		betterScope)

	bestScope := append(append([]string{}, betterScope...), bestExtraItems...)
	best := newPackage(PackageBest,
		roundToInt(float64(goodRange.PriceLow)*bestRatio),
		roundToInt(float64(goodRange.PriceHigh)*bestRatio),
		bestScope)

	return []Package{good, better, best}
}

func newPackage(label string, priceLow, priceHigh int, lineItems []string) Package {
	return Package{
		Label:     label,
		PriceLow:  priceLow,
		PriceHigh: priceHigh,
		Total:     roundToInt(float64(priceLow+priceHigh) / 2.0),
		LineItems: lineItems,
	}
}

func roundToInt(v float64) int {
	return int(math.Round(v))
}
