package main

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nexus-talent/internal/common/logger"
	"nexus-talent/pkg/registry"
)

type stubPinger struct{ err error }

func (s stubPinger) Ping(ctx context.Context) error { return s.err }

type noopHandler struct{}

func (noopHandler) Handle(client worker.JobClient, job entities.Job) {}

func TestProbeMux_Ready(t *testing.T) {
	mux := probeMux(map[string]pinger{"zeebe": stubPinger{}, "redis": stubPinger{}})

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ready", body["status"])
}

func TestProbeMux_NotReady(t *testing.T) {
	mux := probeMux(map[string]pinger{"zeebe": stubPinger{err: stderrors.New("unavailable")}})

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var body struct {
		Status string            `json:"status"`
		Checks map[string]string `json:"checks"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "not_ready", body.Status)
	assert.Equal(t, "unavailable", body.Checks["zeebe"])
}

func TestProbeMux_Health(t *testing.T) {
	rec := httptest.NewRecorder()
	probeMux(nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"healthy"`)
}

func TestWithRegistry(t *testing.T) {
	log := logger.NewTestLogger(t)
	h := noopHandler{}

	assert.Equal(t, h, withRegistry(nil, "parse-resume", h, log))

	reg := &registry.ActivityRegistry{Activities: []registry.Activity{
		{ID: "career.path.build", TaskType: "build-learning-path"},
		{ID: "career.ats.score", TaskType: "score-ats", InputSchema: map[string]interface{}{"type": "object"}},
	}}
	assert.Equal(t, h, withRegistry(reg, "unknown", h, log))
	assert.Equal(t, h, withRegistry(reg, "build-learning-path", h, log))
	assert.NotEqual(t, h, withRegistry(reg, "score-ats", h, log))
}
