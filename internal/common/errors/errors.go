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

const (
	// Segmentation errors. Both abort the run before any segment_id is
	// written; existing segment state is never corrupted.
	ErrCodeInsufficientData   ErrorCode = "INSUFFICIENT_DATA"
	ErrCodeSegmentationFailed ErrorCode = "SEGMENTATION_FAILED"
	ErrCodeSegmentationBusy   ErrorCode = "SEGMENTATION_BUSY"
	ErrCodeInvalidStrategy    ErrorCode = "INVALID_STRATEGY"

	// Recommender / advisor errors.
	ErrCodeNoPlatformAvailable ErrorCode = "NO_PLATFORM_AVAILABLE"
	ErrCodeJobNotFound         ErrorCode = "JOB_NOT_FOUND"
	ErrCodeCampaignNotFound    ErrorCode = "CAMPAIGN_NOT_FOUND"

	// Store errors.
	ErrCodeDatabaseConnectionFailed ErrorCode = "DATABASE_CONNECTION_FAILED"
	ErrCodeQueryExecutionFailed     ErrorCode = "QUERY_EXECUTION_FAILED"
	ErrCodeQueryTimeout             ErrorCode = "QUERY_TIMEOUT"
	ErrCodeCommitFailed             ErrorCode = "COMMIT_FAILED"

	// Input validation.
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
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

// WithMetadata attaches structured context (strategy, params, counts) for
// host-side logging and returns the same error.
func (e *StandardError) WithMetadata(meta map[string]interface{}) *StandardError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{}, len(meta))
	}
	for k, v := range meta {
		e.Metadata[k] = v
	}
	return e
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

// NewInsufficientDataError creates a non-retryable segmentation data error.
// Recoverable by the caller adjusting parameters or waiting for more data.
func NewInsufficientDataError(completeRows, required int) *StandardError {
	return &StandardError{
		Code:      ErrCodeInsufficientData,
		Message:   "Not enough complete candidate records for segmentation",
		Details:   fmt.Sprintf("completeRows: %d, required: %d", completeRows, required),
		Retryable: false,
		Metadata: map[string]interface{}{
			"completeRows": completeRows,
			"required":     required,
		},
		Timestamp: time.Now().UTC(),
	}
}

// NewSegmentationFailedError creates a non-retryable clustering error carrying
// the attempted strategy and parameters.
func NewSegmentationFailedError(strategy string, params map[string]interface{}, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeSegmentationFailed,
		Message:   "Clustering strategy could not produce a valid segmentation",
		Details:   err.Error(),
		Retryable: false,
		Metadata: map[string]interface{}{
			"strategy": strategy,
			"params":   params,
		},
		Timestamp: time.Now().UTC(),
	}
}

// NewSegmentationBusyError creates a retryable single-flight rejection: a
// segmentation run is already in flight, the trigger can be re-queued.
func NewSegmentationBusyError(holder string) *StandardError {
	return &StandardError{
		Code:      ErrCodeSegmentationBusy,
		Message:   "A segmentation run is already in progress",
		Details:   fmt.Sprintf("activeRunId: %s", holder),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidStrategyError creates a non-retryable strategy selector error.
func NewInvalidStrategyError(strategy string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidStrategy,
		Message:   "Unknown clustering strategy",
		Details:   fmt.Sprintf("strategy: %s", strategy),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewNoPlatformAvailableError creates a non-retryable recommender error:
// there is nothing to rank.
func NewNoPlatformAvailableError() *StandardError {
	return &StandardError{
		Code:      ErrCodeNoPlatformAvailable,
		Message:   "No advertising platforms are configured",
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewJobNotFoundError creates a non-retryable missing-job error.
func NewJobNotFoundError(jobID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeJobNotFound,
		Message:   "Job opening not found",
		Details:   fmt.Sprintf("jobId: %s", jobID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewCampaignNotFoundError creates a non-retryable missing-campaign error.
func NewCampaignNotFoundError(campaignID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeCampaignNotFound,
		Message:   "Campaign not found",
		Details:   fmt.Sprintf("campaignId: %s", campaignID),
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
func NewQueryExecutionFailedError(queryName string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeQueryExecutionFailed,
		Message:   "Database query execution error",
		Details:   fmt.Sprintf("query: %s, error: %s", queryName, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewQueryTimeoutError creates a retryable query timeout error.
func NewQueryTimeoutError(queryName string) *StandardError {
	return &StandardError{
		Code:      ErrCodeQueryTimeout,
		Message:   "Database query timeout",
		Details:   fmt.Sprintf("query: %s", queryName),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewCommitFailedError creates a retryable error for a failed segmentation
// commit transaction. The transaction is rolled back, so no partial
// segment_id writes survive.
func NewCommitFailedError(runID string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeCommitFailed,
		Message:   "Segmentation commit transaction failed",
		Details:   err.Error(),
		Retryable: true,
		Metadata:  map[string]interface{}{"runId": runID},
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidInputError creates a non-retryable job variable validation error.
func NewInvalidInputError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidInput,
		Message:   "Job input validation failed",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 4. Error Conversion to BPMN
// ==========================

// BPMNErrorMapping maps internal error codes to BPMN error codes; the
// workflow definitions use the same identifiers.
var BPMNErrorMapping = map[ErrorCode]string{
	ErrCodeInsufficientData:         "INSUFFICIENT_DATA",
	ErrCodeSegmentationFailed:       "SEGMENTATION_FAILED",
	ErrCodeSegmentationBusy:         "SEGMENTATION_BUSY",
	ErrCodeInvalidStrategy:          "INVALID_STRATEGY",
	ErrCodeNoPlatformAvailable:      "NO_PLATFORM_AVAILABLE",
	ErrCodeJobNotFound:              "JOB_NOT_FOUND",
	ErrCodeCampaignNotFound:         "CAMPAIGN_NOT_FOUND",
	ErrCodeDatabaseConnectionFailed: "DATABASE_CONNECTION_FAILED",
	ErrCodeQueryExecutionFailed:     "QUERY_EXECUTION_FAILED",
	ErrCodeQueryTimeout:             "QUERY_TIMEOUT",
	ErrCodeCommitFailed:             "COMMIT_FAILED",
	ErrCodeInvalidInput:             "INVALID_INPUT",
}

// GetRetryCount returns the recommended retry count per error code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeDatabaseConnectionFailed,
		ErrCodeQueryExecutionFailed,
		ErrCodeCommitFailed:
		return 3 // Retryable technical errors

	case ErrCodeQueryTimeout:
		return 2 // Partial retry for timeouts

	case ErrCodeSegmentationBusy:
		return 1 // Let the orchestrator re-queue behind the active run

	default:
		return 0 // Business errors: no retry
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

	vars := map[string]interface{}{
		"originalErrorCode": string(stdErr.Code),
		"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
	}
	for k, v := range stdErr.Metadata {
		vars[k] = v
	}

	return &BPMNError{
		Code:           bpmnCode,
		Message:        stdErr.Message,
		Details:        stdErr.Details,
		Retryable:      stdErr.Retryable,
		Retries:        retries,
		ErrorVariables: vars,
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
	case strings.Contains(codeStr, "SEGMENTATION") || codeStr == string(ErrCodeInsufficientData) || codeStr == string(ErrCodeInvalidStrategy):
		return "SEGMENTATION"
	case strings.Contains(codeStr, "PLATFORM") || strings.Contains(codeStr, "JOB") || strings.Contains(codeStr, "CAMPAIGN"):
		return "RECOMMENDATION"
	case strings.Contains(codeStr, "DATABASE") || strings.Contains(codeStr, "QUERY") || strings.Contains(codeStr, "COMMIT"):
		return "DATABASE"
	case strings.Contains(codeStr, "INVALID") || strings.Contains(codeStr, "VALIDATION"):
		return "VALIDATION"
	default:
		return "OTHER"
	}
}
