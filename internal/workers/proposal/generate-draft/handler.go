package generatedraft

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	cerrors "proposal-workers/internal/common/errors"
	"proposal-workers/internal/common/genai"
	"proposal-workers/internal/common/logger"
	"proposal-workers/internal/common/metrics"
	"proposal-workers/internal/common/pricebook"
	"proposal-workers/internal/common/pricing"
	"proposal-workers/internal/common/remedystore"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"
)

const (
	TaskType = "proposal-generate-draft"

	maxQuestions = 5
)

var zipcodePattern = regexp.MustCompile(`\b\d{5}\b`)

type Handler struct {
	config   *Config
	logger   logger.Logger
	enhancer genai.ScopeEnhancer
	pricer   pricebook.Pricer
	gateway  *pricing.Gateway
	remedies *remedystore.Store
	errors   *cerrors.ErrorHandler
}

func NewHandler(config *Config, log logger.Logger, enhancer genai.ScopeEnhancer, pricer pricebook.Pricer, gateway *pricing.Gateway, remedies *remedystore.Store) *Handler {
	scoped := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:   config,
		logger:   scoped,
		enhancer: enhancer,
		pricer:   pricer,
		gateway:  gateway,
		remedies: remedies,
		errors:   cerrors.NewErrorHandler(scoped),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	start := time.Now()
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		metrics.WorkerJobsFailed.WithLabelValues(TaskType, "DRAFT_INPUT_INVALID").Inc()
		h.errors.HandleJobError(ctx, client, job, cerrors.NewDraftInputInvalidError(fmt.Sprintf("parse input: %v", err)))
		return
	}
	if input.Job.ID == "" {
		metrics.WorkerJobsFailed.WithLabelValues(TaskType, "DRAFT_INPUT_INVALID").Inc()
		h.errors.HandleJobError(ctx, client, job, cerrors.NewDraftInputInvalidError("job.id is required"))
		return
	}

	output, err := h.Execute(ctx, &input)
	if err != nil {
		metrics.WorkerJobsFailed.WithLabelValues(TaskType, "DRAFT_GENERATION_FAILED").Inc()
		h.errors.HandleJobError(ctx, client, job, cerrors.NewDraftGenerationFailedError(err))
		return
	}

	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(start).Seconds())
	h.completeJob(client, job, output)
}

// Execute runs the full draft pipeline. Upstream failures (vision payloads,
// enhancement, pricing) degrade into a lower-confidence draft rather than an
// error; only broken inputs fail the run.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	vision := extractVisionContext(input.Photos)
	selections := parseRemedySelections(input.Job.JobNotes)

	remedyItems, scopeSections := remedyScopeItems(ctx, h.remedies, selections)
	baseScope := filterConflictingItems(input.Template.BaseScope, selections)
	adjustedScope := append(append([]string{}, remedyItems...), baseScope...)

	enhancementNotes := buildEnhancementNotes(&vision, input.Job.JobNotes)

	enhanceSucceeded := false
	finalScope := adjustedScope
	if h.enhancer != nil {
		result, err := h.enhancer.EnhanceScope(ctx, genai.EnhanceScopeRequest{
			JobTypeName: input.Job.JobTypeName,
			BaseScope:   adjustedScope,
			ClientName:  input.Job.ClientName,
			Address:     input.Job.Address,
			JobNotes:    enhancementNotes,
		})
		if err == nil && result.Success && len(result.EnhancedScope) > 0 {
			enhanceSucceeded = true
			finalScope = result.EnhancedScope
			metrics.ScopeEnhancements.WithLabelValues("success").Inc()
		} else {
			metrics.ScopeEnhancements.WithLabelValues("failure").Inc()
			h.logger.Warn("scope enhancement unavailable, using adjusted base scope", map[string]interface{}{
				"jobId": input.Job.ID,
			})
		}
	}

	zipcode := extractZipcode(input.Job.Address)
	marketResult := h.gateway.GetTradePricingBestEffort(ctx, input.Job.TradeID, zipcode)
	marketMultiplier, basis := h.gateway.MarketMultiplier(marketResult, input.Job.TradeID)

	var tradeMultiplier *int
	if m, ok := input.User.TradeMultipliers[input.Job.TradeID]; ok {
		tradeMultiplier = &m
	}
	userMultiplier := input.User.PriceMultiplier
	if userMultiplier <= 0 {
		userMultiplier = 100
	}

	priceInputs := pricebook.PriceInputs{
		BasePriceLow:        input.Template.BasePriceLow,
		BasePriceHigh:       input.Template.BasePriceHigh,
		JobSize:             input.Job.JobSize,
		UserPriceMultiplier: userMultiplier,
		TradeMultiplier:     tradeMultiplier,
		MarketMultiplier:    marketMultiplier,
	}
	goodRange := synthesizePriceRange(ctx, h.pricer, priceInputs, h.logger)
	packages := buildPackages(goodRange, finalScope)

	questions := buildQuestions(enhanceSucceeded, len(input.Photos), vision.NeedsMorePhotos)

	confidence := scoreConfidence(confidenceInputs{
		EnhanceSucceeded:    enhanceSucceeded,
		PhotoCount:          len(input.Photos),
		VisionAvgConfidence: vision.AvgConfidence,
		HasDamageOrIssues:   len(vision.Damage) > 0 || len(vision.Issues) > 0,
		NotesLength:         len(strings.TrimSpace(input.Job.JobNotes)),
		NeedsMorePhotos:     len(vision.NeedsMorePhotos),
		MarketDataAvailable: marketResult != nil,
	})
	metrics.DraftConfidence.Observe(float64(confidence))

	var provenance *OnebuildProvenance
	if marketResult != nil {
		provenance = &OnebuildProvenance{
			Source:  marketResult.Source,
			Zipcode: zipcode,
			Basis:   basis,
		}
	}

	draft := DraftOutput{
		DraftID:        uuid.New().String(),
		Packages:       packages,
		DefaultPackage: PackageBetter,
		Confidence:     confidence,
		Questions:      questions,
		ScopeSections:  scopeSections,
		Pricing: PricingDetails{
			PricebookVersion: h.config.PricebookVersion,
			Inputs: PricingInputs{
				UserPriceMultiplier: userMultiplier,
				TradeMultiplier:     tradeMultiplier,
				MarketMultiplier:    marketMultiplier,
				Onebuild:            provenance,
			},
		},
		EstimatedDays: [2]int{input.Template.EstimatedDaysLow, input.Template.EstimatedDaysHigh},
		Warranty:      input.Template.Warranty,
		Exclusions:    input.Template.Exclusions,
	}

	h.logger.Info("draft generated", map[string]interface{}{
		"jobId":            input.Job.ID,
		"draftId":          draft.DraftID,
		"confidence":       confidence,
		"enhanceSucceeded": enhanceSucceeded,
		"marketBasis":      basis,
		"packageCount":     len(packages),
	})

	return &Output{Draft: draft}, nil
}

// buildQuestions collects followups for the contractor, most actionable
// first, capped so the mobile UI stays scannable.
func buildQuestions(enhanceSucceeded bool, photoCount int, needsMorePhotos []string) []string {
	var questions []string
	if !enhanceSucceeded {
		questions = append(questions, "AI scope enhancement was unavailable; please review the scope of work manually.")
	}
	if photoCount == 0 {
		questions = append(questions, "No photos were provided; add at least one photo of the job site to improve this estimate.")
	}
	for _, hint := range needsMorePhotos {
		questions = append(questions, fmt.Sprintf("More photos needed: %s", hint))
	}
	if len(questions) > maxQuestions {
		questions = questions[:maxQuestions]
	}
	return questions
}

// extractZipcode pulls a US zipcode out of a free-form address. The last
// 5-digit run wins since street numbers come first.
func extractZipcode(address string) string {
	matches := zipcodePattern.FindAllString(address, -1)
	if len(matches) == 0 {
		return ""
	}
	return matches[len(matches)-1]
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)

	if err != nil {
		h.logger.Error("Failed to create complete job command", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err.Error(),
		})
		return
	}

	_, err = cmd.Send(context.Background())
	if err != nil {
		h.logger.Error("Failed to send complete job command", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err.Error(),
		})
	}
}
