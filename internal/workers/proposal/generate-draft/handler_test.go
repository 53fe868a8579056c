// internal/workers/proposal/generate-draft/handler_test.go
package generatedraft

import (
	"context"
	"fmt"
	"testing"
	"time"

	"proposal-workers/internal/common/genai"
	"proposal-workers/internal/common/logger"
	"proposal-workers/internal/common/onebuild"
	"proposal-workers/internal/common/pricebook"
	"proposal-workers/internal/common/pricing"
	"proposal-workers/internal/common/remedystore"

	"github.com/stretchr/testify/assert"
)

// ==========================
// Test Helper Functions
// ==========================

// Create a test logger that implements your logger.Logger interface
type testLogger struct {
	t *testing.T
}

func (tl *testLogger) Debug(msg string, fields map[string]interface{}) {
	tl.t.Logf("DEBUG: %s %v", msg, fields)
}

func (tl *testLogger) Info(msg string, fields map[string]interface{}) {
	tl.t.Logf("INFO: %s %v", msg, fields)
}

func (tl *testLogger) Warn(msg string, fields map[string]interface{}) {
	tl.t.Logf("WARN: %s %v", msg, fields)
}

func (tl *testLogger) Error(msg string, fields map[string]interface{}) {
	tl.t.Logf("ERROR: %s %v", msg, fields)
}

func (tl *testLogger) WithFields(fields map[string]interface{}) logger.Logger {
	return tl // Simple implementation for testing
}

func (tl *testLogger) WithError(err error) logger.Logger {
	return tl.WithFields(map[string]interface{}{"error": err})
}

func (tl *testLogger) With(fields map[string]interface{}) logger.Logger {
	return tl
}

func newTestLogger(t *testing.T) logger.Logger {
	return &testLogger{t: t}
}

type fakeEnhancer struct {
	result      genai.EnhanceScopeResult
	err         error
	lastRequest genai.EnhanceScopeRequest
	called      bool
}

func (f *fakeEnhancer) EnhanceScope(_ context.Context, req genai.EnhanceScopeRequest) (genai.EnhanceScopeResult, error) {
	f.called = true
	f.lastRequest = req
	if f.err != nil {
		return genai.EnhanceScopeResult{}, f.err
	}
	return f.result, nil
}

type fakeProvider struct {
	pricing    *onebuild.TradePricing
	err        error
	configured bool
	delay      time.Duration
}

func (f *fakeProvider) Configured() bool { return f.configured }

func (f *fakeProvider) GetTradePricing(ctx context.Context, tradeID, zipcode string) (*onebuild.TradePricing, error) {
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.pricing, nil
}

func testGatewayConfig() *pricing.Config {
	return &pricing.Config{
		CacheTTL:            168 * time.Hour,
		FetchTimeout:        100 * time.Millisecond,
		BaselineHourlyRates: map[string]float64{"plumbing": 85.0},
		DefaultBaselineRate: 75.0,
		MultiplierFloor:     0.90,
		MultiplierCeiling:   1.15,
	}
}

func newTestHandler(t *testing.T, enhancer genai.ScopeEnhancer, pricer pricebook.Pricer, provider onebuild.PricingProvider) *Handler {
	log := newTestLogger(t)
	gateway := pricing.NewGateway(testGatewayConfig(), nil, nil, provider, log)
	remedies := remedystore.New(nil, log)
	return NewHandler(
		&Config{Timeout: 10 * time.Second, PricebookVersion: "v2"},
		log, enhancer, pricer, gateway, remedies,
	)
}

func createTestInput() *Input {
	return &Input{
		Job: JobInput{
			ID:          "job-001",
			ClientName:  "Dana Whitfield",
			Address:     "482 Alder Creek Rd, Austin, TX 78701",
			TradeID:     "plumbing",
			TradeName:   "Plumbing",
			JobTypeID:   "jt-faucet",
			JobTypeName: "Faucet Service",
			JobSize:     1,
		},
		Template: TemplateInput{
			TradeID:           "plumbing",
			JobTypeID:         "jt-faucet",
			BaseScope:         []string{"Inspect fixture and supply lines", "Test water pressure"},
			BasePriceLow:      400,
			BasePriceHigh:     700,
			EstimatedDaysLow:  1,
			EstimatedDaysHigh: 2,
			Warranty:          "1 year labor",
			Exclusions:        "Drywall repair not included",
		},
		User: UserProfile{PriceMultiplier: 100},
	}
}

func marketDataProvider() *fakeProvider {
	return &fakeProvider{
		configured: true,
		pricing: &onebuild.TradePricing{
			Labor: []onebuild.LaborEntry{
				{Description: "Journeyman plumber", HourlyRate: 88.4, Unit: "hour"},
				{Description: "Apprentice", HourlyRate: 98.6, Unit: "hour"},
			},
		},
	}
}

// ==========================
// Core Functionality Tests
// ==========================

func TestHandler_Execute_FullDraft(t *testing.T) {
	enhancer := &fakeEnhancer{
		result: genai.EnhanceScopeResult{
			Success:       true,
			EnhancedScope: []string{"Replace faucet and supply lines", "Test under full pressure"},
		},
	}
	pricer := &fakePricer{priceRange: pricebook.PriceRange{PriceLow: 500, PriceHigh: 900}}
	handler := newTestHandler(t, enhancer, pricer, marketDataProvider())

	input := createTestInput()
	input.Job.JobNotes = "Customer reports constant dripping from kitchen faucet base."
	input.Photos = []PhotoInput{
		photoWithFindings(t, map[string]interface{}{
			"llm": map[string]interface{}{"damage": []string{"dripping faucet"}, "confidence": 0.85},
		}),
		photoWithFindings(t, map[string]interface{}{
			"llm": map[string]interface{}{"issues": []string{"worn cartridge"}, "confidence": 0.75},
		}),
		photoWithFindings(t, map[string]interface{}{
			"combined": map[string]interface{}{"materials": []string{"chrome fixture"}, "confidence": 0.8},
		}),
	}

	output, err := handler.Execute(context.Background(), input)

	assert.NoError(t, err)
	assert.NotNil(t, output)

	draft := output.Draft
	assert.NotEmpty(t, draft.DraftID)
	assert.Equal(t, PackageBetter, draft.DefaultPackage)
	assert.Len(t, draft.Packages, 3)

	// GOOD comes straight from the pricebook; tiers scale deterministically.
	assert.Equal(t, 500, draft.Packages[0].PriceLow)
	assert.Equal(t, 900, draft.Packages[0].PriceHigh)
	assert.Equal(t, 540, draft.Packages[1].PriceLow)  // 500 * 1.08
	assert.Equal(t, 972, draft.Packages[1].PriceHigh) // 900 * 1.08
	assert.Equal(t, 590, draft.Packages[2].PriceLow)  // 500 * 1.18
	assert.Equal(t, 1062, draft.Packages[2].PriceHigh)

	assert.Equal(t, enhancer.result.EnhancedScope, draft.Packages[0].LineItems)
	assert.Empty(t, draft.Questions)

	// Avg labor 93.5 / baseline 85.0 = 1.1, inside the clamp.
	assert.Equal(t, "v2", draft.Pricing.PricebookVersion)
	assert.InDelta(t, 1.1, draft.Pricing.Inputs.MarketMultiplier, 0.0001)
	assert.NotNil(t, draft.Pricing.Inputs.Onebuild)
	assert.Equal(t, "live", draft.Pricing.Inputs.Onebuild.Source)
	assert.Equal(t, "78701", draft.Pricing.Inputs.Onebuild.Zipcode)
	assert.Equal(t, "regional_labor_rates", draft.Pricing.Inputs.Onebuild.Basis)

	// 70 base + 10 photos + 10 avg 0.8 + 5 damage + 5 notes + 5 complete + 5 market = 110 -> 95
	assert.Equal(t, 95, draft.Confidence)

	assert.Equal(t, [2]int{1, 2}, draft.EstimatedDays)
	assert.Equal(t, "1 year labor", draft.Warranty)
}

func TestHandler_Execute_EnhancementFailureDegrades(t *testing.T) {
	enhancer := &fakeEnhancer{err: genai.ErrEnhancementFailed}
	pricer := &fakePricer{priceRange: pricebook.PriceRange{PriceLow: 400, PriceHigh: 700}}
	handler := newTestHandler(t, enhancer, pricer, &fakeProvider{configured: false})

	input := createTestInput()
	output, err := handler.Execute(context.Background(), input)

	assert.NoError(t, err)
	assert.Equal(t, input.Template.BaseScope, output.Draft.Packages[0].LineItems)
	assert.Contains(t, output.Draft.Questions[0], "review the scope of work manually")

	// 45 base, zero photos, no market data.
	assert.Equal(t, 45, output.Draft.Confidence)
}

func TestHandler_Execute_ZeroPhotosQuestion(t *testing.T) {
	enhancer := &fakeEnhancer{result: genai.EnhanceScopeResult{Success: true, EnhancedScope: []string{"work"}}}
	pricer := &fakePricer{priceRange: pricebook.PriceRange{PriceLow: 100, PriceHigh: 200}}
	handler := newTestHandler(t, enhancer, pricer, &fakeProvider{configured: false})

	output, err := handler.Execute(context.Background(), createTestInput())

	assert.NoError(t, err)
	found := false
	for _, q := range output.Draft.Questions {
		if q == "No photos were provided; add at least one photo of the job site to improve this estimate." {
			found = true
		}
	}
	assert.True(t, found, "expected zero-photos question, got %v", output.Draft.Questions)
}

func TestHandler_Execute_ConfirmedScopeSuppressesVisionInNotes(t *testing.T) {
	enhancer := &fakeEnhancer{result: genai.EnhanceScopeResult{Success: true, EnhancedScope: []string{"work"}}}
	pricer := &fakePricer{priceRange: pricebook.PriceRange{PriceLow: 100, PriceHigh: 200}}
	handler := newTestHandler(t, enhancer, pricer, &fakeProvider{configured: false})

	input := createTestInput()
	input.Job.JobNotes = "Confirmed scope tier: GOOD. Replace kitchen faucet only."
	input.Photos = []PhotoInput{
		photoWithFindings(t, map[string]interface{}{
			"llm": map[string]interface{}{
				"damage": []string{"water staining", "mold"},
				"issues": []string{"hidden leak"},
			},
		}),
	}

	_, err := handler.Execute(context.Background(), input)

	assert.NoError(t, err)
	assert.True(t, enhancer.called)
	assert.Equal(t, "Confirmed scope tier: GOOD. Replace kitchen faucet only.", enhancer.lastRequest.JobNotes)
	assert.NotContains(t, enhancer.lastRequest.JobNotes, "water staining")
}

func TestHandler_Execute_ReplaceMarkerFiltersRepairItems(t *testing.T) {
	enhancer := &fakeEnhancer{err: genai.ErrEnhancementFailed}
	pricer := &fakePricer{priceRange: pricebook.PriceRange{PriceLow: 100, PriceHigh: 200}}
	handler := newTestHandler(t, enhancer, pricer, &fakeProvider{configured: false})

	input := createTestInput()
	input.Job.JobNotes = "Kitchen faucet (ACTION: REPLACE)"
	input.Template.BaseScope = []string{
		"Repair faucet cartridge as needed",
		"Replace washer if worn",
		"Test water pressure",
	}

	output, err := handler.Execute(context.Background(), input)

	assert.NoError(t, err)
	scope := output.Draft.Packages[0].LineItems
	for _, item := range scope {
		assert.NotContains(t, item, "cartridge as needed")
		assert.NotContains(t, item, "washer if worn")
	}
	assert.Contains(t, scope, "Supply and install new faucet (mid-grade fixture)")
	assert.Contains(t, scope, "Test water pressure")

	assert.Len(t, output.Draft.ScopeSections, 1)
	assert.Equal(t, "Faucet Replacement", output.Draft.ScopeSections[0].Title)
}

func TestHandler_Execute_ProviderTimeoutDegrades(t *testing.T) {
	enhancer := &fakeEnhancer{result: genai.EnhanceScopeResult{Success: true, EnhancedScope: []string{"work"}}}
	pricer := &fakePricer{priceRange: pricebook.PriceRange{PriceLow: 100, PriceHigh: 200}}
	provider := marketDataProvider()
	provider.delay = 500 * time.Millisecond // beyond the 100ms fetch timeout
	handler := newTestHandler(t, enhancer, pricer, provider)

	output, err := handler.Execute(context.Background(), createTestInput())

	assert.NoError(t, err)
	assert.Nil(t, output.Draft.Pricing.Inputs.Onebuild)
	assert.Equal(t, 1.0, output.Draft.Pricing.Inputs.MarketMultiplier)
}

func TestHandler_Execute_QuestionsCapped(t *testing.T) {
	enhancer := &fakeEnhancer{err: genai.ErrEnhancementFailed}
	pricer := &fakePricer{priceRange: pricebook.PriceRange{PriceLow: 100, PriceHigh: 200}}
	handler := newTestHandler(t, enhancer, pricer, &fakeProvider{configured: false})

	hints := make([]string, 8)
	for i := range hints {
		hints[i] = fmt.Sprintf("angle %d", i)
	}
	input := createTestInput()
	input.Photos = []PhotoInput{
		photoWithFindings(t, map[string]interface{}{
			"llm": map[string]interface{}{"needsMorePhotos": hints},
		}),
	}

	output, err := handler.Execute(context.Background(), input)

	assert.NoError(t, err)
	assert.Len(t, output.Draft.Questions, 5)
}

func TestHandler_Execute_DefaultsUserMultiplier(t *testing.T) {
	enhancer := &fakeEnhancer{result: genai.EnhanceScopeResult{Success: true, EnhancedScope: []string{"work"}}}
	pricer := &fakePricer{priceRange: pricebook.PriceRange{PriceLow: 100, PriceHigh: 200}}
	handler := newTestHandler(t, enhancer, pricer, &fakeProvider{configured: false})

	input := createTestInput()
	input.User.PriceMultiplier = 0

	output, err := handler.Execute(context.Background(), input)

	assert.NoError(t, err)
	assert.Equal(t, 100, output.Draft.Pricing.Inputs.UserPriceMultiplier)
	assert.Equal(t, 100, pricer.lastInputs.UserPriceMultiplier)
}

func TestHandler_Execute_TradeMultiplierPassedThrough(t *testing.T) {
	enhancer := &fakeEnhancer{result: genai.EnhanceScopeResult{Success: true, EnhancedScope: []string{"work"}}}
	pricer := &fakePricer{priceRange: pricebook.PriceRange{PriceLow: 100, PriceHigh: 200}}
	handler := newTestHandler(t, enhancer, pricer, &fakeProvider{configured: false})

	input := createTestInput()
	input.User.TradeMultipliers = map[string]int{"plumbing": 115}

	output, err := handler.Execute(context.Background(), input)

	assert.NoError(t, err)
	assert.NotNil(t, output.Draft.Pricing.Inputs.TradeMultiplier)
	assert.Equal(t, 115, *output.Draft.Pricing.Inputs.TradeMultiplier)
}

func TestExtractZipcode(t *testing.T) {
	tests := []struct {
		address  string
		expected string
	}{
		{"482 Alder Creek Rd, Austin, TX 78701", "78701"},
		{"12345 Long Street, Denver, CO 80202", "80202"},
		{"No zip here", ""},
		{"", ""},
		{"78701", "78701"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, extractZipcode(tt.address), "address: %s", tt.address)
	}
}
