package generatedraft

import "encoding/json"

// Input is the job-variable payload posted by the mobile job API layer.
type Input struct {
	Job      JobInput      `json:"job"`
	Template TemplateInput `json:"template"`
	User     UserProfile   `json:"user"`
	Photos   []PhotoInput  `json:"photos"`
}

type JobInput struct {
	ID          string `json:"id"`
	ClientName  string `json:"clientName"`
	Address     string `json:"address"`
	TradeID     string `json:"tradeId"`
	TradeName   string `json:"tradeName"`
	JobTypeID   string `json:"jobTypeId"`
	JobTypeName string `json:"jobTypeName"`
	JobSize     int    `json:"jobSize"` // ordinal 1-3
	JobNotes    string `json:"jobNotes"`
}

// PhotoInput carries one job-site photo and its upstream analysis payload.
// Findings stays raw until the aggregation boundary validates it; a photo
// with a malformed payload contributes no signals but does not fail the run.
type PhotoInput struct {
	PublicURL string          `json:"publicUrl"`
	Kind      string          `json:"kind"`
	Findings  json.RawMessage `json:"findings,omitempty"`
}

// Findings is the per-photo analysis union: detector labels plus LLM-style
// and combined/summary results, every source optional.
type Findings struct {
	Detector *DetectorResult `json:"detector,omitempty"`
	LLM      *AnalysisResult `json:"llm,omitempty"`
	Combined *AnalysisResult `json:"combined,omitempty"`
}

type DetectorResult struct {
	Labels []DetectedLabel `json:"labels,omitempty"`
}

type DetectedLabel struct {
	Name       string  `json:"name"`
	Confidence float64 `json:"confidence"`
}

type AnalysisResult struct {
	Damage          []string         `json:"damage,omitempty"`
	Issues          []string         `json:"issues,omitempty"`
	Materials       []string         `json:"materials,omitempty"`
	Objects         []ObservedObject `json:"objects,omitempty"`
	NeedsMorePhotos []string         `json:"needsMorePhotos,omitempty"`
	Confidence      *float64         `json:"confidence,omitempty"`
}

type ObservedObject struct {
	Name string `json:"name"`
	Note string `json:"note,omitempty"`
}

type TemplateInput struct {
	TradeID           string   `json:"tradeId"`
	JobTypeID         string   `json:"jobTypeId"`
	BaseScope         []string `json:"baseScope"`
	BasePriceLow      int      `json:"basePriceLow"`
	BasePriceHigh     int      `json:"basePriceHigh"`
	EstimatedDaysLow  int      `json:"estimatedDaysLow"`
	EstimatedDaysHigh int      `json:"estimatedDaysHigh"`
	Warranty          string   `json:"warranty"`
	Exclusions        string   `json:"exclusions"`
}

type UserProfile struct {
	PriceMultiplier  int            `json:"priceMultiplier"` // percent, global
	TradeMultipliers map[string]int `json:"tradeMultipliers,omitempty"`
}

// VisionContext is rebuilt fresh on every run from the photo set.
type VisionContext struct {
	Damage          []string
	Issues          []string
	Materials       []string
	Labels          []string
	Objects         []ObservedObject
	NeedsMorePhotos []string
	AvgConfidence   float64
}

// HasSignals reports whether any LLM- or detector-derived content survived
// aggregation.
func (vc *VisionContext) HasSignals() bool {
	return len(vc.Damage) > 0 || len(vc.Issues) > 0 || len(vc.Materials) > 0 ||
		len(vc.Labels) > 0 || len(vc.Objects) > 0
}

// Package labels, escalation order GOOD < BETTER < BEST.
const (
	PackageGood   = "GOOD"
	PackageBetter = "BETTER"
	PackageBest   = "BEST"
)

type Output struct {
	Draft DraftOutput `json:"draft"`
}

type DraftOutput struct {
	DraftID        string         `json:"draftId"`
	Packages       []Package      `json:"packages"`
	DefaultPackage string         `json:"defaultPackage"`
	Confidence     int            `json:"confidence"`
	Questions      []string       `json:"questions"`
	ScopeSections  []ScopeSection `json:"scopeSections,omitempty"`
	Pricing        PricingDetails `json:"pricing"`
	EstimatedDays  [2]int         `json:"estimatedDays"`
	Warranty       string         `json:"warranty,omitempty"`
	Exclusions     string         `json:"exclusions,omitempty"`
}

type Package struct {
	Label     string   `json:"label"`
	PriceLow  int      `json:"priceLow"`
	PriceHigh int      `json:"priceHigh"`
	Total     int      `json:"total"`
	LineItems []string `json:"lineItems"`
}

type ScopeSection struct {
	Title string   `json:"title"`
	Items []string `json:"items"`
}

type PricingDetails struct {
	PricebookVersion string        `json:"pricebookVersion"`
	Inputs           PricingInputs `json:"inputs"`
}

type PricingInputs struct {
	UserPriceMultiplier int                 `json:"userPriceMultiplier"`
	TradeMultiplier     *int                `json:"tradeMultiplier"`
	MarketMultiplier    float64             `json:"marketMultiplier"`
	Onebuild            *OnebuildProvenance `json:"onebuild"`
}

// OnebuildProvenance records where market data came from; nil in the output
// when no market data was available.
type OnebuildProvenance struct {
	Source  string `json:"source"`
	Zipcode string `json:"zipcode"`
	Basis   string `json:"basis"`
}
