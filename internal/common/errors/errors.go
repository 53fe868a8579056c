// Package errors provides standardized error handling for BPMN workflow integration.
package errors

import (
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

// Draft pipeline errors. Most upstream failures in the pipeline degrade
// rather than fail; these codes cover the conditions that do escape.
const (
	ErrCodeDraftInputInvalid     ErrorCode = "DRAFT_INPUT_INVALID"
	ErrCodeDraftGenerationFailed ErrorCode = "DRAFT_GENERATION_FAILED"

	ErrCodeTemplateNotFound ErrorCode = "TEMPLATE_NOT_FOUND"

	ErrCodeDatabaseConnectionFailed ErrorCode = "DATABASE_CONNECTION_FAILED"
	ErrCodeQueryExecutionFailed     ErrorCode = "QUERY_EXECUTION_FAILED"
	ErrCodeDatabaseInsertFailed     ErrorCode = "DATABASE_INSERT_FAILED"

	ErrCodePricingFetchFailed  ErrorCode = "PRICING_FETCH_FAILED"
	ErrCodePricingFetchTimeout ErrorCode = "PRICING_FETCH_TIMEOUT"

	ErrCodeEnhancementFailed  ErrorCode = "ENHANCEMENT_FAILED"
	ErrCodeEnhancementTimeout ErrorCode = "ENHANCEMENT_TIMEOUT"

	ErrCodePricebookUnavailable ErrorCode = "PRICEBOOK_UNAVAILABLE"

	ErrCodeNotificationSendFailed ErrorCode = "NOTIFICATION_SEND_FAILED"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// ==========================
// 2. BPMN Error Integration
// ==========================

// BPMNError represents an error that can be thrown to the Camunda workflow engine.
type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

// ToErrorVariables returns a map suitable for setting Camunda job fail variables.
func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}

	if e.ErrorVariables != nil {
		for k, v := range e.ErrorVariables {
			vars[k] = v
		}
	}

	return vars
}

// ==========================
// 3. Error Constructors
// ==========================

// NewDraftInputInvalidError creates a non-retryable input error.
func NewDraftInputInvalidError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeDraftInputInvalid,
		Message:   "Draft input failed validation",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewDraftGenerationFailedError creates a retryable pipeline error for
// conditions outside the defined degradation paths.
func NewDraftGenerationFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDraftGenerationFailed,
		Message:   "Draft generation failed unexpectedly",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewTemplateNotFoundError creates a non-retryable template error.
func NewTemplateNotFoundError(tradeID, jobTypeID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeTemplateNotFound,
		Message:   "Proposal template not found",
		Details:   fmt.Sprintf("tradeId: %s, jobTypeId: %s", tradeID, jobTypeID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewDatabaseConnectionFailedError creates a retryable database connection error.
func NewDatabaseConnectionFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDatabaseConnectionFailed,
		Message:   "Database connection error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewQueryExecutionFailedError creates a retryable query execution error.
func NewQueryExecutionFailedError(queryType string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeQueryExecutionFailed,
		Message:   "Database query execution error",
		Details:   fmt.Sprintf("queryType: %s, error: %s", queryType, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewDatabaseInsertFailedError creates a retryable database insert error.
func NewDatabaseInsertFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDatabaseInsertFailed,
		Message:   "Database insert operation failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewPricingFetchFailedError records a failed regional pricing fetch. The
// gateway swallows this; it exists for logging and metrics context.
func NewPricingFetchFailedError(tradeID, zipcode string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodePricingFetchFailed,
		Message:   "Regional pricing fetch failed",
		Details:   fmt.Sprintf("tradeId: %s, zipcode: %s, error: %s", tradeID, zipcode, err.Error()),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewPricingFetchTimeoutError records a timed-out regional pricing fetch.
func NewPricingFetchTimeoutError(tradeID, zipcode string) *StandardError {
	return &StandardError{
		Code:      ErrCodePricingFetchTimeout,
		Message:   "Regional pricing fetch timed out",
		Details:   fmt.Sprintf("tradeId: %s, zipcode: %s", tradeID, zipcode),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewEnhancementFailedError records a failed scope enhancement call.
func NewEnhancementFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeEnhancementFailed,
		Message:   "Scope enhancement API error",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewEnhancementTimeoutError records a timed-out scope enhancement call.
func NewEnhancementTimeoutError() *StandardError {
	return &StandardError{
		Code:      ErrCodeEnhancementTimeout,
		Message:   "Scope enhancement API timeout",
		Details:   "API call exceeded timeout threshold",
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewPricebookUnavailableError records a failed base pricing call. The
// orchestrator falls back to local multiplier arithmetic.
func NewPricebookUnavailableError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodePricebookUnavailable,
		Message:   "Base pricing service unavailable",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewNotificationSendFailedError creates a retryable notification send error.
func NewNotificationSendFailedError(channel string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeNotificationSendFailed,
		Message:   "Notification delivery failed",
		Details:   fmt.Sprintf("channel: %s, error: %s", channel, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// Generic constructors

func NewExternalServiceError(service string, err error) *StandardError {
	return &StandardError{
		Code:      "EXTERNAL_SERVICE_ERROR",
		Message:   fmt.Sprintf("External service '%s' error", service),
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

func NewTimeoutError(service string, err error) *StandardError {
	return &StandardError{
		Code:      "TIMEOUT_ERROR",
		Message:   fmt.Sprintf("Service '%s' timeout", service),
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 4. Error Conversion to BPMN
// ==========================

// BPMNErrorMapping maps internal error codes to BPMN error codes. The codes
// are identical; the map exists so a rename on either side stays explicit.
var BPMNErrorMapping = map[ErrorCode]string{
	ErrCodeDraftInputInvalid:        "DRAFT_INPUT_INVALID",
	ErrCodeDraftGenerationFailed:    "DRAFT_GENERATION_FAILED",
	ErrCodeTemplateNotFound:         "TEMPLATE_NOT_FOUND",
	ErrCodeDatabaseConnectionFailed: "DATABASE_CONNECTION_FAILED",
	ErrCodeQueryExecutionFailed:     "QUERY_EXECUTION_FAILED",
	ErrCodeDatabaseInsertFailed:     "DATABASE_INSERT_FAILED",
	ErrCodePricingFetchFailed:       "PRICING_FETCH_FAILED",
	ErrCodePricingFetchTimeout:      "PRICING_FETCH_TIMEOUT",
	ErrCodeEnhancementFailed:        "ENHANCEMENT_FAILED",
	ErrCodeEnhancementTimeout:       "ENHANCEMENT_TIMEOUT",
	ErrCodePricebookUnavailable:     "PRICEBOOK_UNAVAILABLE",
	ErrCodeNotificationSendFailed:   "NOTIFICATION_SEND_FAILED",
}

// GetRetryCount returns the recommended retry count per error code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeDatabaseConnectionFailed,
		ErrCodeQueryExecutionFailed,
		ErrCodeDatabaseInsertFailed,
		ErrCodeNotificationSendFailed:
		return 3 // Retryable technical errors

	case ErrCodeDraftGenerationFailed:
		return 1 // One retry for unexpected pipeline failures

	default:
		return 0 // Degradation-path and business errors: no retry
	}
}

// ConvertToBPMNError converts a StandardError to a BPMNError for Camunda.
func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	bpmnCode, exists := BPMNErrorMapping[stdErr.Code]
	if !exists {
		bpmnCode = string(stdErr.Code) // Fallback
	}

	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	return &BPMNError{
		Code:      bpmnCode,
		Message:   stdErr.Message,
		Details:   stdErr.Details,
		Retryable: stdErr.Retryable,
		Retries:   retries,
		ErrorVariables: map[string]interface{}{
			"originalErrorCode": string(stdErr.Code),
			"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
		},
	}
}

// ==========================
// 5. Utility Functions
// ==========================

// IsRetryableErrorCode checks if an error code is retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "DRAFT"):
		return "DRAFT"
	case strings.Contains(codeStr, "TEMPLATE"):
		return "TEMPLATE"
	case strings.Contains(codeStr, "DATABASE") || strings.Contains(codeStr, "QUERY"):
		return "DATABASE"
	case strings.Contains(codeStr, "PRICING") || strings.Contains(codeStr, "PRICEBOOK"):
		return "PRICING"
	case strings.Contains(codeStr, "ENHANCEMENT"):
		return "AI"
	case strings.Contains(codeStr, "NOTIFICATION"):
		return "NOTIFICATION"
	default:
		return "GENERAL"
	}
}
