// internal/workers/career/parse-resume/handler.go
package parseresume

import (
	"context"
	"encoding/json"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"nexus-talent/internal/common/errors"
	"nexus-talent/internal/common/logger"
	"nexus-talent/internal/common/metrics"
	"nexus-talent/internal/common/security"
	"nexus-talent/internal/resume"
)

const (
	TaskType = "parse-resume"
)

type Handler struct {
	config     *Config
	parser     *resume.Parser
	errHandler *errors.ErrorHandler
	logger     logger.Logger
}

func NewHandler(config *Config, parser *resume.Parser, log logger.Logger) *Handler {
	l := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:     config,
		parser:     parser,
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
		h.fail(ctx, client, job, start, errors.NewInvalidRequestError(err.Error()))
		return
	}

	output, err := h.Execute(ctx, &input)
	if err != nil {
		h.fail(ctx, client, job, start, err)
		return
	}

	h.completeJob(ctx, client, job, output)
	metrics.ObserveAgentRun(TaskType, time.Since(start).Seconds(), "")
}

// Execute extracts text from the input, bounds it and parses it into
// structured resume data.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	raw := input.Resume
	if len(input.File) > 0 {
		if err := security.ValidateFileSize(int64(len(input.File)), h.config.MaxUploadMB); err != nil {
			return nil, err
		}
		text, err := resume.ExtractText(resume.DetectMIME(input.FileName, input.MimeType), input.File)
		if err != nil {
			return nil, err
		}
		raw = text
	}

	data, source, err := h.parser.Parse(ctx, raw)
	if err != nil {
		return nil, err
	}

	h.logger.Info("resume parsed", map[string]interface{}{
		"parseSource": source,
		"skillCount":  len(data.Skills),
		"jobTitle":    data.TargetTitle(input.JobTitle),
	})

	return &Output{
		ResumeData:  *data,
		ResumeText:  security.Truncate(security.SanitizeInput(raw), h.config.MaxResumeChars),
		ParseSource: source,
		JobTitle:    data.TargetTitle(input.JobTitle),
	}, nil
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

func (h *Handler) fail(ctx context.Context, client worker.JobClient, job entities.Job, start time.Time, err error) {
	stdErr := errors.AsStandardError(err)
	metrics.ObserveAgentRun(TaskType, time.Since(start).Seconds(), string(stdErr.Code))
	h.errHandler.HandleJobError(ctx, client, job, stdErr)
}
