// Package errors provides standardized error handling for the career agents,
// shared by the HTTP API and the BPMN workflow integration.
package errors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeInvalidRequest      ErrorCode = "INVALID_REQUEST"
	ErrCodeResumeParseFailed   ErrorCode = "RESUME_PARSE_FAILED"
	ErrCodeResumeTooLarge      ErrorCode = "RESUME_TOO_LARGE"
	ErrCodeUnsupportedFileType ErrorCode = "UNSUPPORTED_FILE_TYPE"

	ErrCodeJobSourcingFailed    ErrorCode = "JOB_SOURCING_FAILED"
	ErrCodeATSScoringFailed     ErrorCode = "ATS_SCORING_FAILED"
	ErrCodeGapAnalysisFailed    ErrorCode = "GAP_ANALYSIS_FAILED"
	ErrCodeLearningPathFailed   ErrorCode = "LEARNING_PATH_FAILED"
	ErrCodeAnalysisNotFound     ErrorCode = "ANALYSIS_NOT_FOUND"
	ErrCodeStorageNotConfigured ErrorCode = "STORAGE_NOT_CONFIGURED"

	ErrCodeLLMTimeout     ErrorCode = "LLM_TIMEOUT"
	ErrCodeLLMUnavailable ErrorCode = "LLM_UNAVAILABLE"
	ErrCodeLLMBadResponse ErrorCode = "LLM_BAD_RESPONSE"

	ErrCodeDatabaseConnectionFailed ErrorCode = "DATABASE_CONNECTION_FAILED"
	ErrCodeQueryExecutionFailed     ErrorCode = "QUERY_EXECUTION_FAILED"
	ErrCodeDatabaseInsertFailed     ErrorCode = "DATABASE_INSERT_FAILED"

	ErrCodeSearchQueryFailed ErrorCode = "SEARCH_QUERY_FAILED"
	ErrCodeCacheUnavailable  ErrorCode = "CACHE_UNAVAILABLE"

	ErrCodeWorkflowUnavailable ErrorCode = "WORKFLOW_ENGINE_UNAVAILABLE"
	ErrCodeWorkflowTimeout     ErrorCode = "WORKFLOW_ENGINE_TIMEOUT"
	ErrCodeWorkflowRejected    ErrorCode = "WORKFLOW_COMMAND_REJECTED"

	ErrCodeNotificationSendFailed ErrorCode = "NOTIFICATION_SEND_FAILED"
	ErrCodeInternal               ErrorCode = "INTERNAL_ERROR"
)

// User-facing messages reported by agents that degrade instead of failing.
const (
	MsgJobSourcingFailed = "Could not retrieve jobs at this time."
	MsgATSScoringFailed  = "Analysis engine temporarily unavailable."
	MsgGapAnalysisFailed = "Pathfinder engine is currently recalculating."
	MsgInternal          = "An internal error occurred while processing your career analysis."
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

func errDetails(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

func newError(code ErrorCode, message, details string, retryable bool) *StandardError {
	return &StandardError{
		Code:      code,
		Message:   message,
		Details:   details,
		Retryable: retryable,
		Timestamp: time.Now().UTC(),
	}
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
	for k, v := range e.ErrorVariables {
		vars[k] = v
	}
	return vars
}

// ==========================
// 3. Error Constructors
// ==========================

// NewInvalidRequestError creates a non-retryable request validation error.
func NewInvalidRequestError(details string) *StandardError {
	return newError(ErrCodeInvalidRequest, "Request validation failed", details, false)
}

// NewResumeParseFailedError creates a non-retryable resume parsing error.
func NewResumeParseFailedError(details string) *StandardError {
	return newError(ErrCodeResumeParseFailed, "Resume could not be parsed", details, false)
}

// NewResumeTooLargeError reports a file above the upload limit.
func NewResumeTooLargeError(size int64, limitMB int) *StandardError {
	return newError(ErrCodeResumeTooLarge,
		fmt.Sprintf("File too large. Max %dMB allowed.", limitMB),
		fmt.Sprintf("size: %d bytes", size), false)
}

func NewUnsupportedFileTypeError(mimeType string) *StandardError {
	return newError(ErrCodeUnsupportedFileType, "Unsupported resume file type",
		fmt.Sprintf("mimeType: %s", mimeType), false)
}

// NewJobSourcingFailedError creates a retryable sourcing error.
func NewJobSourcingFailedError(err error) *StandardError {
	return newError(ErrCodeJobSourcingFailed, MsgJobSourcingFailed, errDetails(err), true)
}

func NewATSScoringFailedError(err error) *StandardError {
	return newError(ErrCodeATSScoringFailed, MsgATSScoringFailed, errDetails(err), true)
}

func NewGapAnalysisFailedError(err error) *StandardError {
	return newError(ErrCodeGapAnalysisFailed, MsgGapAnalysisFailed, errDetails(err), true)
}

func NewLearningPathFailedError(err error) *StandardError {
	return newError(ErrCodeLearningPathFailed, "Learning path could not be built", errDetails(err), true)
}

// NewAnalysisNotFoundError creates a non-retryable lookup error.
func NewAnalysisNotFoundError(id string) *StandardError {
	return newError(ErrCodeAnalysisNotFound, "Analysis not found", fmt.Sprintf("id: %s", id), false)
}

func NewStorageNotConfiguredError() *StandardError {
	return newError(ErrCodeStorageNotConfigured, "Analysis history is not configured", "", false)
}

// NewLLMTimeoutError creates a retryable LLM timeout error.
func NewLLMTimeoutError(provider string) *StandardError {
	return newError(ErrCodeLLMTimeout, "LLM call timed out", fmt.Sprintf("provider: %s", provider), true)
}

// NewLLMUnavailableError is returned when every provider in the router failed.
func NewLLMUnavailableError(err error) *StandardError {
	return newError(ErrCodeLLMUnavailable, "No LLM provider available", errDetails(err), true)
}

func NewLLMBadResponseError(details string) *StandardError {
	return newError(ErrCodeLLMBadResponse, "LLM returned an invalid response", details, true)
}

// NewDatabaseConnectionFailedError creates a retryable database connection error.
func NewDatabaseConnectionFailedError(err error) *StandardError {
	return newError(ErrCodeDatabaseConnectionFailed, "Database connection error", errDetails(err), true)
}

// NewQueryExecutionFailedError creates a retryable query execution error.
func NewQueryExecutionFailedError(queryType string, err error) *StandardError {
	return newError(ErrCodeQueryExecutionFailed, "Database query execution error",
		fmt.Sprintf("queryType: %s, error: %s", queryType, err.Error()), true)
}

// NewDatabaseInsertFailedError creates a retryable database insert error.
func NewDatabaseInsertFailedError(err error) *StandardError {
	return newError(ErrCodeDatabaseInsertFailed, "Database insert operation failed", errDetails(err), true)
}

// NewSearchQueryFailedError creates a retryable search query error.
func NewSearchQueryFailedError(index string, err error) *StandardError {
	return newError(ErrCodeSearchQueryFailed, "Elasticsearch query error",
		fmt.Sprintf("index: %s, error: %s", index, err.Error()), true)
}

func NewCacheUnavailableError(err error) *StandardError {
	return newError(ErrCodeCacheUnavailable, "Cache unavailable", errDetails(err), true)
}

// NewNotificationSendFailedError creates a retryable notification send error.
func NewNotificationSendFailedError(notificationType string, err error) *StandardError {
	return newError(ErrCodeNotificationSendFailed, "Notification delivery failed",
		fmt.Sprintf("type: %s, error: %s", notificationType, err.Error()), true)
}

// NewWorkflowUnavailableError reports a broker that cannot be reached.
func NewWorkflowUnavailableError(operation string, err error) *StandardError {
	return newError(ErrCodeWorkflowUnavailable, "Workflow engine unavailable",
		fmt.Sprintf("operation: %s, error: %s", operation, errDetails(err)), true)
}

func NewWorkflowTimeoutError(operation string, err error) *StandardError {
	return newError(ErrCodeWorkflowTimeout, "Workflow engine timed out",
		fmt.Sprintf("operation: %s, error: %s", operation, errDetails(err)), true)
}

// NewWorkflowRejectedError reports a command the broker refused, such as an
// unknown process or a duplicate deployment.
func NewWorkflowRejectedError(operation string, err error) *StandardError {
	return newError(ErrCodeWorkflowRejected, "Workflow command rejected",
		fmt.Sprintf("operation: %s, error: %s", operation, errDetails(err)), false)
}

// NewInternalError wraps an unexpected error.
func NewInternalError(err error) *StandardError {
	return newError(ErrCodeInternal, MsgInternal, errDetails(err), false)
}

// AsStandardError unwraps err into a StandardError, wrapping unknown errors as internal.
func AsStandardError(err error) *StandardError {
	var stdErr *StandardError
	if errors.As(err, &stdErr) {
		return stdErr
	}
	return NewInternalError(err)
}

// ==========================
// 4. Error Conversion
// ==========================

// BPMNErrorMapping maps internal error codes to BPMN error codes. Codes not
// listed here are thrown as-is.
var BPMNErrorMapping = map[ErrorCode]string{
	ErrCodeResumeParseFailed:   "RESUME_PARSE_FAILED",
	ErrCodeResumeTooLarge:      "RESUME_REJECTED",
	ErrCodeUnsupportedFileType: "RESUME_REJECTED",
	ErrCodeInvalidRequest:      "RESUME_REJECTED",
	ErrCodeLLMTimeout:          "LLM_TIMEOUT",
	ErrCodeLLMUnavailable:      "LLM_UNAVAILABLE",
	ErrCodeLLMBadResponse:      "LLM_UNAVAILABLE",
}

// GetRetryCount returns the recommended retry count for a code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeDatabaseConnectionFailed,
		ErrCodeQueryExecutionFailed,
		ErrCodeDatabaseInsertFailed,
		ErrCodeSearchQueryFailed,
		ErrCodeCacheUnavailable,
		ErrCodeNotificationSendFailed,
		ErrCodeJobSourcingFailed,
		ErrCodeLearningPathFailed,
		ErrCodeWorkflowUnavailable:
		return 3

	case ErrCodeLLMUnavailable,
		ErrCodeLLMBadResponse,
		ErrCodeATSScoringFailed,
		ErrCodeGapAnalysisFailed:
		return 2

	case ErrCodeLLMTimeout, ErrCodeWorkflowTimeout:
		return 1

	default:
		return 0 // business errors: no retry
	}
}

// ConvertToBPMNError converts a StandardError to a BPMNError for Camunda.
func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	bpmnCode, exists := BPMNErrorMapping[stdErr.Code]
	if !exists {
		bpmnCode = string(stdErr.Code)
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

// HTTPStatus maps an error code to the status returned by the API.
func HTTPStatus(code ErrorCode) int {
	switch code {
	case ErrCodeInvalidRequest, ErrCodeResumeParseFailed, ErrCodeUnsupportedFileType:
		return http.StatusBadRequest
	case ErrCodeResumeTooLarge:
		return http.StatusRequestEntityTooLarge
	case ErrCodeAnalysisNotFound:
		return http.StatusNotFound
	case ErrCodeStorageNotConfigured, ErrCodeLLMUnavailable, ErrCodeCacheUnavailable, ErrCodeWorkflowUnavailable:
		return http.StatusServiceUnavailable
	case ErrCodeLLMTimeout, ErrCodeWorkflowTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
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
	case strings.Contains(codeStr, "RESUME") || strings.Contains(codeStr, "FILE_TYPE"):
		return "RESUME"
	case strings.Contains(codeStr, "LLM"):
		return "AI"
	case strings.Contains(codeStr, "DATABASE") || strings.Contains(codeStr, "QUERY") || strings.Contains(codeStr, "STORAGE"):
		return "DATABASE"
	case strings.Contains(codeStr, "SEARCH") || strings.Contains(codeStr, "CACHE"):
		return "SEARCH"
	case strings.Contains(codeStr, "NOTIFICATION"):
		return "NOTIFICATION"
	case strings.Contains(codeStr, "WORKFLOW"):
		return "WORKFLOW"
	case strings.Contains(codeStr, "JOB") || strings.Contains(codeStr, "ATS") ||
		strings.Contains(codeStr, "GAP") || strings.Contains(codeStr, "LEARNING") ||
		strings.Contains(codeStr, "ANALYSIS"):
		return "AGENT"
	case strings.Contains(codeStr, "INVALID"):
		return "VALIDATION"
	default:
		return "OTHER"
	}
}
