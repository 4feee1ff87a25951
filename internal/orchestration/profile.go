// internal/orchestration/profile.go
package orchestration

import (
	"context"
	"encoding/json"
	"fmt"
)

// AnalyzeProfile runs the graph for resume text with default options and
// returns the response as decoded JSON, the shape the Analyze page renders.
func (e *Engine) AnalyzeProfile(ctx context.Context, resume string) (map[string]any, error) {
	state, err := e.Run(ctx, Request{Resume: resume})
	if err != nil {
		return nil, err
	}

	raw, err := json.Marshal(state.Response())
	if err != nil {
		return nil, fmt.Errorf("encode analysis: %w", err)
	}
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode analysis: %w", err)
	}
	return out, nil
}
