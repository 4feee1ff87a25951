package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvertToBPMNError(t *testing.T) {
	tests := []struct {
		name        string
		err         *StandardError
		wantCode    string
		wantRetries int
	}{
		{"mapped rejection", NewUnsupportedFileTypeError("image/png"), "RESUME_REJECTED", 0},
		{"llm timeout", NewLLMTimeoutError("gemini"), "LLM_TIMEOUT", 1},
		{"unmapped technical", NewSearchQueryFailedError("jobs", stderrors.New("down")), "SEARCH_QUERY_FAILED", 3},
		{"not found", NewAnalysisNotFoundError("abc"), "ANALYSIS_NOT_FOUND", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bpmn := ConvertToBPMNError(tt.err)
			assert.Equal(t, tt.wantCode, bpmn.Code)
			assert.Equal(t, tt.wantRetries, bpmn.Retries)

			vars := bpmn.ToErrorVariables()
			assert.Equal(t, string(tt.err.Code), vars["originalErrorCode"])
			assert.Equal(t, tt.err.Message, vars["errorMessage"])
		})
	}
}

func TestConvertToBPMNError_NonRetryableOverridesCount(t *testing.T) {
	stdErr := NewSearchQueryFailedError("jobs", stderrors.New("down"))
	stdErr.Retryable = false
	assert.Equal(t, 0, ConvertToBPMNError(stdErr).Retries)
}

func TestHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(ErrCodeInvalidRequest))
	assert.Equal(t, http.StatusRequestEntityTooLarge, HTTPStatus(ErrCodeResumeTooLarge))
	assert.Equal(t, http.StatusNotFound, HTTPStatus(ErrCodeAnalysisNotFound))
	assert.Equal(t, http.StatusServiceUnavailable, HTTPStatus(ErrCodeStorageNotConfigured))
	assert.Equal(t, http.StatusGatewayTimeout, HTTPStatus(ErrCodeLLMTimeout))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(ErrCodeInternal))
}

func TestAsStandardError(t *testing.T) {
	original := NewResumeParseFailedError("empty")
	wrapped := fmt.Errorf("parse node: %w", original)

	got := AsStandardError(wrapped)
	assert.Same(t, original, got)

	plain := AsStandardError(stderrors.New("boom"))
	require.Equal(t, ErrCodeInternal, plain.Code)
	assert.Equal(t, "boom", plain.Details)
}

func TestGetErrorCategory(t *testing.T) {
	assert.Equal(t, "RESUME", GetErrorCategory(ErrCodeResumeTooLarge))
	assert.Equal(t, "RESUME", GetErrorCategory(ErrCodeUnsupportedFileType))
	assert.Equal(t, "AI", GetErrorCategory(ErrCodeLLMUnavailable))
	assert.Equal(t, "DATABASE", GetErrorCategory(ErrCodeDatabaseInsertFailed))
	assert.Equal(t, "SEARCH", GetErrorCategory(ErrCodeCacheUnavailable))
	assert.Equal(t, "AGENT", GetErrorCategory(ErrCodeGapAnalysisFailed))
	assert.Equal(t, "VALIDATION", GetErrorCategory(ErrCodeInvalidRequest))
	assert.Equal(t, "OTHER", GetErrorCategory(ErrCodeInternal))
}

func TestRemainingRetries(t *testing.T) {
	assert.Equal(t, int32(2), remainingRetries(3, 3))
	assert.Equal(t, int32(0), remainingRetries(1, 3))
	assert.Equal(t, int32(2), remainingRetries(5, 2))
	assert.Equal(t, int32(3), remainingRetries(0, 3))
}

func TestIsRetryableErrorCode(t *testing.T) {
	assert.True(t, IsRetryableErrorCode(ErrCodeJobSourcingFailed))
	assert.False(t, IsRetryableErrorCode(ErrCodeResumeParseFailed))
}

func TestWorkflowErrors(t *testing.T) {
	unavailable := NewWorkflowUnavailableError("deploy_process", stderrors.New("connection refused"))
	assert.True(t, unavailable.Retryable)
	assert.Contains(t, unavailable.Details, "deploy_process")
	assert.Equal(t, http.StatusServiceUnavailable, HTTPStatus(unavailable.Code))
	assert.Equal(t, 3, ConvertToBPMNError(unavailable).Retries)

	timeout := NewWorkflowTimeoutError("create_instance", nil)
	assert.Equal(t, http.StatusGatewayTimeout, HTTPStatus(timeout.Code))
	assert.Equal(t, 1, GetRetryCount(timeout.Code))

	rejected := NewWorkflowRejectedError("create_instance", stderrors.New("process not found"))
	assert.False(t, rejected.Retryable)
	assert.Equal(t, 0, ConvertToBPMNError(rejected).Retries)

	assert.Equal(t, "WORKFLOW", GetErrorCategory(ErrCodeWorkflowRejected))
}
