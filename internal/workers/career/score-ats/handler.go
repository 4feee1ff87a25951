// internal/workers/career/score-ats/handler.go
package scoreats

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"sort"
	"strings"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"nexus-talent/internal/common/aws"
	"nexus-talent/internal/common/cache"
	"nexus-talent/internal/common/errors"
	"nexus-talent/internal/common/logger"
	"nexus-talent/internal/common/metrics"
	"nexus-talent/internal/common/observability"
	"nexus-talent/internal/common/security"
	"nexus-talent/internal/matching"
	"nexus-talent/internal/models"
)

const (
	TaskType = "score-ats"

	cacheKeyChars = 500
)

var ErrEmptyResume = stderrors.New("EMPTY_RESUME")

// ShortlistNotifier is told about every fresh score at or above the threshold.
type ShortlistNotifier interface {
	PublishShortlist(ctx context.Context, event aws.ShortlistEvent) error
}

// Dependencies may be left nil.
type Dependencies struct {
	Cache    *cache.Cache
	Obs      *observability.Observability
	Notifier ShortlistNotifier
}

type Handler struct {
	config     *Config
	deps       Dependencies
	errHandler *errors.ErrorHandler
	logger     logger.Logger
}

func NewHandler(config *Config, deps Dependencies, log logger.Logger) *Handler {
	l := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:     config,
		deps:       deps,
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
		errorCode = string(errors.ErrCodeATSScoringFailed)
	}
	h.completeJob(ctx, client, job, output)
	metrics.ObserveAgentRun(TaskType, time.Since(start).Seconds(), errorCode)
}

// Execute scores every request job plus the first MaxScoredJobs sourced jobs.
// On failure the score is 0 and Output.Error is set; no error is returned.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	ctx, span := observability.StartSpan(ctx, "ATSScoringAgent",
		attribute.String("component", "keyword-scorer"),
		attribute.Int("resume.size_bytes", len(input.ResumeText)),
	)
	defer span.End()

	output, err := h.score(ctx, input)
	if err != nil {
		h.logger.Error("ATS scoring failed", map[string]interface{}{"error": err.Error()})
		span.RecordError(err)
		span.SetStatus(codes.Error, "AI Analysis Failure")
		return &Output{Score: 0, TopJobs: []models.JobMatch{}, Error: errors.MsgATSScoringFailed}, nil
	}

	span.SetAttributes(attribute.Int("ats.score", output.Score))
	return output, nil
}

type scored struct {
	job   models.Job
	score int
}

func (h *Handler) score(ctx context.Context, input *Input) (*Output, error) {
	if strings.TrimSpace(input.ResumeText) == "" {
		return nil, ErrEmptyResume
	}

	resumeKW := matching.ExtractKeywords(input.ResumeText)
	results := make([]scored, 0, len(input.Jobs))
	for _, job := range SelectJobs(input.Jobs, h.config.MaxScoredJobs) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		results = append(results, scored{job: job, score: h.scoreJob(ctx, input.ResumeText, resumeKW, job)})
	}

	sort.SliceStable(results, func(i, j int) bool { return results[i].score > results[j].score })

	output := &Output{TopJobs: make([]models.JobMatch, 0, len(results))}
	for _, r := range results {
		output.TopJobs = append(output.TopJobs, models.JobMatch{
			Title:   r.job.Title,
			Company: r.job.Company,
			Link:    r.job.Link,
			Score:   r.score,
		})
	}
	if len(results) > 0 {
		best := results[0].job
		output.BestJob = &best
		output.Score = results[0].score
	}
	return output, nil
}

func (h *Handler) scoreJob(ctx context.Context, resumeText string, resumeKW map[string]bool, job models.Job) int {
	key := CacheKey(resumeText, job.JD)

	var cached int
	if h.deps.Cache.GetJSON(ctx, key, &cached) {
		return cached
	}

	score := matching.Score(resumeKW, job.JD).Score
	_ = h.deps.Cache.SetJSON(ctx, key, score, cache.TTLATS)

	if score >= h.config.ShortlistThreshold {
		h.shortlist(ctx, job, score)
	}
	return score
}

func (h *Handler) shortlist(ctx context.Context, job models.Job, score int) {
	title := job.Title
	if title == "" {
		title = "unknown"
	}
	h.deps.Obs.RecordShortlisted(ctx, title)

	if h.deps.Notifier == nil {
		return
	}
	err := h.deps.Notifier.PublishShortlist(ctx, aws.ShortlistEvent{
		JobTitle: title,
		Company:  job.Company,
		Score:    score,
	})
	if err != nil {
		h.logger.Warn("shortlist notification failed", map[string]interface{}{
			"jobTitle": title,
			"error":    err.Error(),
		})
	}
}

// SelectJobs keeps every request job and the first limit sourced jobs.
func SelectJobs(jobs []models.Job, limit int) []models.Job {
	out := make([]models.Job, 0, len(jobs))
	sourced := 0
	for _, job := range jobs {
		if job.Source == models.JobSourceRequest {
			out = append(out, job)
			continue
		}
		if sourced < limit {
			out = append(out, job)
			sourced++
		}
	}
	return out
}

// CacheKey hashes the leading characters of resume and job description.
func CacheKey(resumeText, jd string) string {
	return cache.GenerateKey(cache.NamespaceATS,
		security.Truncate(resumeText, cacheKeyChars),
		security.Truncate(jd, cacheKeyChars))
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
