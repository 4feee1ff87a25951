// internal/workers/career/analyze-skill-gaps/handler.go
package analyzeskillgaps

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"nexus-talent/internal/common/errors"
	"nexus-talent/internal/common/logger"
	"nexus-talent/internal/common/metrics"
	"nexus-talent/internal/common/observability"
	"nexus-talent/internal/common/security"
	"nexus-talent/internal/common/validation"
	"nexus-talent/internal/llm"
	"nexus-talent/internal/matching"
	"nexus-talent/internal/models"
)

const (
	TaskType = "analyze-skill-gaps"
)

// GapSchemaJSON is the contract the model must satisfy.
const GapSchemaJSON = `{
  "type": "object",
  "required": ["hard_skills", "soft_skills", "required_experience", "priority_focus"],
  "properties": {
    "hard_skills": {"type": "array", "items": {"type": "string"}, "description": "Missing technical skills like Python, AWS, etc."},
    "soft_skills": {"type": "array", "items": {"type": "string"}, "description": "Missing soft skills like Leadership or Agile."},
    "required_experience": {"type": "string", "description": "Specific experience gaps found."},
    "priority_focus": {"type": "string", "description": "The single most critical skill to learn first."}
  }
}`

var gapSchema = validation.MustSchema(GapSchemaJSON)

// Generator is the LLM surface the agent needs.
type Generator interface {
	Run(ctx context.Context, prompt, system string, priority bool) (string, error)
}

type Handler struct {
	config     *Config
	llm        Generator
	errHandler *errors.ErrorHandler
	logger     logger.Logger
}

func NewHandler(config *Config, gen Generator, log logger.Logger) *Handler {
	l := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:     config,
		llm:        gen,
		errHandler: errors.NewErrorHandler(l),
		logger:     l,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	start := time.Now()
	metrics.AgentRunsActive.WithLabelValues(TaskType).Inc()
	defer metrics.AgentRunsActive.WithLabelValues(TaskType).Dec()

	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		stdErr := errors.NewInvalidRequestError(err.Error())
		metrics.ObserveAgentRun(TaskType, time.Since(start).Seconds(), string(stdErr.Code))
		h.errHandler.HandleJobError(ctx, client, job, stdErr)
		return
	}

	output, _ := h.Execute(ctx, &input)

	errorCode := ""
	if output.Error != "" {
		errorCode = string(errors.ErrCodeGapAnalysisFailed)
	}
	h.completeJob(ctx, client, job, output)
	metrics.ObserveAgentRun(TaskType, time.Since(start).Seconds(), errorCode)
}

// Execute never returns an error. A model failure is reported in
// Output.Error and PathSkills falls back to the keyword diff.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	if input.Score >= h.config.PerfectMatchThreshold {
		return &Output{
			MissingSkills:        nil,
			RecommendationStatus: models.StatusPerfectMatch,
			PathSkills:           []string{},
		}, nil
	}

	ctx, span := observability.StartSpan(ctx, "GapAnalysisAgent",
		attribute.Int("ats.score_incoming", input.Score),
	)
	defer span.End()

	gaps, err := h.analyze(ctx, input)
	if err != nil {
		h.logger.Error("Gap Analysis Agent Failure", map[string]interface{}{"error": err.Error()})
		span.RecordError(err)
		span.SetStatus(codes.Error, "LLM Processing Failure")

		hard, soft := matching.MissingSkills(matching.ExtractKeywords(input.ResumeText), input.JobDescription)
		return &Output{
			MissingSkills: &models.SkillGaps{},
			PathSkills:    append(append([]string{}, hard...), soft...),
			Error:         errors.MsgGapAnalysisFailed,
		}, nil
	}

	span.SetAttributes(attribute.Int("gap.count", len(gaps.HardSkills)))
	return &Output{
		MissingSkills:        gaps,
		RecommendationStatus: models.StatusGapsIdentified,
		PrioritySkill:        gaps.PriorityFocus,
		PathSkills:           gaps.All(),
	}, nil
}

func (h *Handler) analyze(ctx context.Context, input *Input) (*models.SkillGaps, error) {
	if h.llm == nil {
		return nil, llm.ErrNoProvider
	}

	text, err := h.llm.Run(ctx, BuildPrompt(input.ResumeText, input.JobDescription, h.config.PromptChars), SystemInstruction(), true)
	if err != nil {
		return nil, err
	}

	raw := llm.CleanJSON(text)
	if result := gapSchema.ValidateJSON(raw); !result.Valid {
		return nil, errors.NewLLMBadResponseError(strings.Join(result.GetErrorMessages(), "; "))
	}

	var gaps models.SkillGaps
	if err := json.Unmarshal([]byte(raw), &gaps); err != nil {
		return nil, errors.NewLLMBadResponseError(err.Error())
	}
	return &gaps, nil
}

// BuildPrompt bounds both documents to limit runes each.
func BuildPrompt(resumeText, jd string, limit int) string {
	return fmt.Sprintf(`Analyze the following Resume against the Job Description.
Identify the delta (gaps) and prioritize what the candidate must learn.

RESUME:
%s

JOB DESCRIPTION:
%s
`, security.Truncate(resumeText, limit), security.Truncate(jd, limit))
}

func SystemInstruction() string {
	return "You are an expert ATS auditor. You must output only valid JSON matching this schema: " + GapSchemaJSON
}

func (h *Handler) completeJob(ctx context.Context, client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err.Error(),
		})
		return
	}
	if _, err := cmd.Send(ctx); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err.Error(),
		})
	}
}
