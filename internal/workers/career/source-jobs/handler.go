// internal/workers/career/source-jobs/handler.go
package sourcejobs

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"go.opentelemetry.io/otel/attribute"

	"nexus-talent/internal/common/cache"
	"nexus-talent/internal/common/errors"
	"nexus-talent/internal/common/logger"
	"nexus-talent/internal/common/metrics"
	"nexus-talent/internal/common/observability"
	"nexus-talent/internal/common/security"
	"nexus-talent/internal/models"
)

const (
	TaskType = "source-jobs"

	skillsKeyChars = 50
)

// SourcingFailedMessage is reported when no level could produce jobs.
const SourcingFailedMessage = errors.MsgJobSourcingFailed

// JobIndex is the internal search layer.
type JobIndex interface {
	Search(ctx context.Context, title, location string, skills []string, limit int) ([]models.Job, error)
	IndexJobs(ctx context.Context, jobs []models.Job) error
}

// JobBoard is the external freshness layer.
type JobBoard interface {
	Search(ctx context.Context, title, location string) ([]models.Job, error)
}

// Dependencies may leave any layer nil; missing layers are skipped.
type Dependencies struct {
	Cache *cache.Cache
	Index JobIndex
	Board JobBoard
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
		errorCode = string(errors.ErrCodeJobSourcingFailed)
	}
	h.completeJob(ctx, client, job, output)
	metrics.ObserveAgentRun(TaskType, time.Since(start).Seconds(), errorCode)
}

// Execute walks cache, index and job board in that order. It never returns
// an error; a total failure is reported in Output.Error with an empty job
// list so the graph can continue. A job description carried by the request
// is always placed first.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	ctx, span := observability.StartSpan(ctx, "SourcingAgent",
		attribute.String("search.title", input.JobTitle),
		attribute.Int("search.skills_count", len(input.Skills)),
	)
	defer span.End()

	output := h.source(ctx, input)
	span.SetAttributes(
		attribute.String("data.source", string(output.DataSource)),
		attribute.Int("jobs.found", len(output.Jobs)),
	)

	if jd := strings.TrimSpace(input.JobDescription); jd != "" {
		requested := models.Job{
			Title:    input.JobTitle,
			Location: input.Location,
			JD:       jd,
			Source:   models.JobSourceRequest,
		}
		output.Jobs = append([]models.Job{requested}, output.Jobs...)
	}
	return output, nil
}

func (h *Handler) source(ctx context.Context, input *Input) *Output {
	key := CacheKey(input.JobTitle, input.Location, input.Skills)

	var cached []models.Job
	if h.deps.Cache.GetJSON(ctx, key, &cached) && len(cached) > 0 {
		for i := range cached {
			cached[i].Source = models.JobSourceCache
		}
		return &Output{Jobs: cached, DataSource: models.JobSourceCache}
	}

	if h.deps.Index != nil {
		jobs, err := h.deps.Index.Search(ctx, input.JobTitle, input.Location, input.Skills, h.config.IndexLimit)
		if err != nil {
			h.logger.Warn("job index search failed", map[string]interface{}{"error": err.Error()})
		} else if len(jobs) >= h.config.MinIndexHits {
			return &Output{Jobs: jobs, DataSource: models.JobSourceIndex}
		}
	}

	if h.deps.Board == nil {
		return &Output{Jobs: []models.Job{}, Error: SourcingFailedMessage}
	}

	jobs, err := h.deps.Board.Search(ctx, input.JobTitle, input.Location)
	if err != nil {
		h.logger.Error("job board fetch failed", map[string]interface{}{"error": err.Error()})
		return &Output{Jobs: []models.Job{}, Error: SourcingFailedMessage}
	}

	if len(jobs) > 0 {
		_ = h.deps.Cache.SetJSON(ctx, key, jobs, cache.TTLJobs)
		if h.deps.Index != nil {
			if err := h.deps.Index.IndexJobs(ctx, jobs); err != nil {
				h.logger.Warn("failed to index fresh jobs", map[string]interface{}{"error": err.Error()})
			}
		}
	}
	return &Output{Jobs: jobs, DataSource: models.JobSourceExternalAPI}
}

// CacheKey hashes the title, location and the first characters of the skill
// list, falling back to the title when there are no skills.
func CacheKey(title, location string, skills []string) string {
	skillsQuery := title
	if len(skills) > 0 {
		skillsQuery = strings.Join(skills, ", ")
	}
	return cache.GenerateKey(cache.NamespaceJobs, title, location, security.Truncate(skillsQuery, skillsKeyChars))
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
