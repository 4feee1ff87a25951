package logger

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func newObserved() (Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zap.DebugLevel)
	return NewZapAdapter(zap.New(core)), logs
}

func TestZapWrapper_FieldsAreCarried(t *testing.T) {
	l, logs := newObserved()

	child := l.WithFields(map[string]interface{}{"taskType": "score-ats"})
	child.Info("scored", map[string]interface{}{"score": 72})

	entries := logs.All()
	assert.Len(t, entries, 1)
	ctx := entries[0].ContextMap()
	assert.Equal(t, "score-ats", ctx["taskType"])
	assert.EqualValues(t, 72, ctx["score"])
}

func TestZapWrapper_ErrorValuesAreNamed(t *testing.T) {
	l, logs := newObserved()

	l.Error("failed", map[string]interface{}{"cause": errors.New("boom")})

	ctx := logs.All()[0].ContextMap()
	assert.Equal(t, "boom", ctx["cause"])
}

func TestWithContext(t *testing.T) {
	l, logs := newObserved()

	// no span: logger unchanged
	WithContext(context.Background(), l).Info("plain", nil)
	assert.NotContains(t, logs.All()[0].ContextMap(), "traceId")

	traceID, _ := trace.TraceIDFromHex("0102030405060708090a0b0c0d0e0f10")
	spanID, _ := trace.SpanIDFromHex("0102030405060708")
	sc := trace.NewSpanContext(trace.SpanContextConfig{TraceID: traceID, SpanID: spanID})
	ctx := trace.ContextWithSpanContext(context.Background(), sc)

	WithContext(ctx, l).Info("traced", nil)
	fields := logs.All()[1].ContextMap()
	assert.Equal(t, "0102030405060708090a0b0c0d0e0f10", fields["traceId"])
	assert.Equal(t, "0102030405060708", fields["spanId"])
}

func TestNew_Levels(t *testing.T) {
	assert.True(t, New("debug", "console").Core().Enabled(zap.DebugLevel))
	assert.False(t, New("warn", "json").Core().Enabled(zap.InfoLevel))
	assert.True(t, New("", "json").Core().Enabled(zap.InfoLevel))
}
