// Package client calls the career analysis API.
package client

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	httpclient "nexus-talent/internal/common/http"
)

const AnalyzePath = "/v1/career/analyze"

// APIError is a non-2xx answer decoded from the API error body.
type APIError struct {
	StatusCode int
	Code       string `json:"code"`
	Message    string `json:"message"`
	Details    string `json:"details,omitempty"`
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("career api returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// UserMessage is the text safe to show to an end user.
func (e *APIError) UserMessage() string {
	if e.Message == "" {
		return fmt.Sprintf("career api returned status %d", e.StatusCode)
	}
	return e.Message
}

type Client struct {
	baseURL string
	http    *httpclient.Client
}

// New returns a client for the API at baseURL. Analysis requests are not
// retried.
func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpclient.NewClient(timeout),
	}
}

// AnalyzeProfile posts the resume text and returns the decoded response body.
func (c *Client) AnalyzeProfile(ctx context.Context, resume string) (map[string]any, error) {
	var out map[string]any
	err := c.http.PostJSON(ctx, c.baseURL+AnalyzePath, nil, map[string]string{"resume": resume}, &out)
	if err != nil {
		var statusErr *httpclient.StatusError
		if stderrors.As(err, &statusErr) {
			apiErr := &APIError{StatusCode: statusErr.StatusCode}
			_ = json.Unmarshal([]byte(statusErr.Body), apiErr)
			return nil, apiErr
		}
		return nil, fmt.Errorf("analyze profile: %w", err)
	}
	return out, nil
}
