// internal/llm/router.go
package llm

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	apperrors "nexus-talent/internal/common/errors"
	"nexus-talent/internal/common/logger"
	"nexus-talent/internal/common/observability"
)

// Router picks a provider per call. Priority calls go to the primary
// provider first and fall back to the local one; other calls use the local
// provider only.
type Router struct {
	primary  Provider
	fallback Provider
	logger   logger.Logger
}

// NewRouter accepts nil for either provider.
func NewRouter(primary, fallback Provider, log logger.Logger) *Router {
	return &Router{
		primary:  primary,
		fallback: fallback,
		logger:   log.WithFields(map[string]interface{}{"component": "llm-router"}),
	}
}

// Run returns the raw model text. Errors are *errors.StandardError with
// code LLM_TIMEOUT or LLM_UNAVAILABLE.
func (r *Router) Run(ctx context.Context, prompt, system string, priority bool) (string, error) {
	ctx, span := observability.StartSpan(ctx, "llm.run", attribute.Bool("llm.priority", priority))
	defer span.End()

	var chain []Provider
	if priority && r.primary != nil {
		chain = append(chain, r.primary)
	}
	if r.fallback != nil {
		chain = append(chain, r.fallback)
	}
	if len(chain) == 0 {
		span.SetStatus(codes.Error, ErrNoProvider.Error())
		return "", apperrors.NewLLMUnavailableError(ErrNoProvider)
	}

	var lastErr error
	var lastProvider string
	for _, p := range chain {
		text, err := p.Generate(ctx, prompt, system)
		if err == nil {
			span.SetAttributes(attribute.String("llm.provider", p.Name()))
			return text, nil
		}

		r.logger.Warn("LLM provider failed", map[string]interface{}{
			"provider": p.Name(),
			"error":    err.Error(),
		})
		lastErr, lastProvider = err, p.Name()

		if ctx.Err() != nil {
			break
		}
	}

	span.RecordError(lastErr)
	span.SetStatus(codes.Error, lastErr.Error())
	if errors.Is(lastErr, context.DeadlineExceeded) {
		return "", apperrors.NewLLMTimeoutError(lastProvider)
	}
	return "", apperrors.NewLLMUnavailableError(fmt.Errorf("%s: %w", lastProvider, lastErr))
}
