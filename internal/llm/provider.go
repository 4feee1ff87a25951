// internal/llm/provider.go
package llm

import (
	"context"
	"errors"
	"strings"
)

var (
	ErrNoProvider    = errors.New("LLM_NO_PROVIDER")
	ErrEmptyResponse = errors.New("LLM_EMPTY_RESPONSE")
)

// Provider generates a completion for a prompt under a system instruction.
type Provider interface {
	Name() string
	Generate(ctx context.Context, prompt, system string) (string, error)
}

// CleanJSON strips markdown code fences that models wrap around JSON output.
func CleanJSON(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```json") {
		s = strings.TrimPrefix(s, "```json")
	} else if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
