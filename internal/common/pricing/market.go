package pricing

const (
	BasisNone          = "none"
	BasisRegionalLabor = "regional_labor_rates"
)

// MarketMultiplier derives a price adjustment from regional labor rates: the
// average hourly rate divided by the configured baseline for the trade,
// clamped to the configured floor and ceiling. No market data means a
// neutral multiplier.
func (g *Gateway) MarketMultiplier(result *Result, tradeID string) (float64, string) {
	if result == nil || len(result.Entry.Payload.Labor) == 0 {
		return 1.0, BasisNone
	}

	var sum float64
	var count int
	for _, entry := range result.Entry.Payload.Labor {
		if entry.HourlyRate <= 0 {
			continue
		}
		sum += entry.HourlyRate
		count++
	}
	if count == 0 {
		return 1.0, BasisNone
	}

	baseline, ok := g.config.BaselineHourlyRates[tradeID]
	if !ok || baseline <= 0 {
		baseline = g.config.DefaultBaselineRate
	}
	if baseline <= 0 {
		return 1.0, BasisNone
	}

	multiplier := (sum / float64(count)) / baseline
	if multiplier < g.config.MultiplierFloor {
		multiplier = g.config.MultiplierFloor
	}
	if multiplier > g.config.MultiplierCeiling {
		multiplier = g.config.MultiplierCeiling
	}

	return multiplier, BasisRegionalLabor
}
