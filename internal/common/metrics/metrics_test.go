package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveAgentRun(t *testing.T) {
	before := testutil.ToFloat64(AgentRunsCompleted.WithLabelValues("score-ats"))
	failedBefore := testutil.ToFloat64(AgentRunsFailed.WithLabelValues("score-ats", "LLM_TIMEOUT"))

	ObserveAgentRun("score-ats", 0.2, "")
	ObserveAgentRun("score-ats", 1.5, "LLM_TIMEOUT")

	assert.Equal(t, before+1, testutil.ToFloat64(AgentRunsCompleted.WithLabelValues("score-ats")))
	assert.Equal(t, failedBefore+1, testutil.ToFloat64(AgentRunsFailed.WithLabelValues("score-ats", "LLM_TIMEOUT")))
}
