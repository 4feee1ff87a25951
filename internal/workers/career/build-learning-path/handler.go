// internal/workers/career/build-learning-path/handler.go
package buildlearningpath

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"nexus-talent/internal/common/cache"
	"nexus-talent/internal/common/errors"
	"nexus-talent/internal/common/logger"
	"nexus-talent/internal/common/metrics"
	"nexus-talent/internal/common/observability"
	"nexus-talent/internal/models"
	"nexus-talent/internal/youtube"
)

const (
	TaskType = "build-learning-path"

	ResourceNotFound = "Resource not found"
)

// VideoSearcher finds one study video per query.
type VideoSearcher interface {
	SearchVideo(ctx context.Context, query string) (youtube.Video, error)
}

type Dependencies struct {
	Cache  *cache.Cache
	Videos VideoSearcher
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

	output, err := h.Execute(ctx, &input)
	if err != nil {
		stdErr := errors.NewLearningPathFailedError(err)
		metrics.ObserveAgentRun(TaskType, time.Since(start).Seconds(), string(stdErr.Code))
		h.errHandler.HandleJobError(ctx, client, job, stdErr)
		return
	}

	h.completeJob(ctx, client, job, output)
	metrics.ObserveAgentRun(TaskType, time.Since(start).Seconds(), "")
}

// Execute builds one step per skill. A skill whose search fails is skipped.
// The only error is a cancelled context.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	if len(input.Skills) == 0 {
		return &Output{LearningPath: []models.LearningStep{}}, nil
	}

	ctx, span := observability.StartSpan(ctx, "PathfinderAgent",
		attribute.Int("skills.to_solve", len(input.Skills)),
	)
	defer span.End()

	key := CacheKey(input.Skills)
	var cached []models.LearningStep
	if h.deps.Cache.GetJSON(ctx, key, &cached) && len(cached) > 0 {
		span.SetAttributes(attribute.Bool("cache.hit", true))
		return &Output{LearningPath: cached, CacheHit: true}, nil
	}
	span.SetAttributes(attribute.Bool("cache.hit", false))

	path := make([]models.LearningStep, 0, len(input.Skills))
	for _, skill := range input.Skills {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		step, err := h.buildStep(ctx, skill)
		if err != nil {
			h.logger.Warn("video search failed, skipping skill", map[string]interface{}{
				"skill": skill,
				"error": err.Error(),
			})
			continue
		}
		path = append(path, step)
	}

	if len(path) > 0 {
		_ = h.deps.Cache.SetJSON(ctx, key, path, cache.TTLLearning)
	}
	return &Output{LearningPath: path}, nil
}

func (h *Handler) buildStep(ctx context.Context, skill string) (models.LearningStep, error) {
	query := skill + " " + h.config.QuerySuffix
	ctx, span := observability.StartSpan(ctx, "youtube_search_operation",
		attribute.String("search.query", query),
		attribute.String("search.system", "youtube_v3"),
	)
	defer span.End()

	if h.deps.Videos == nil {
		return models.LearningStep{}, fmt.Errorf("video search not configured")
	}
	video, err := h.deps.Videos.SearchVideo(ctx, query)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "YouTube API failure")
		return models.LearningStep{}, err
	}

	step := models.LearningStep{
		Skill:         skill,
		Title:         ResourceNotFound,
		Milestones:    Milestones(skill),
		EstimatedTime: h.config.EstimatedTime,
	}
	if video.ID != "" {
		url := video.WatchURL()
		step.ResourceURL = &url
	}
	if video.Title != "" {
		step.Title = video.Title
	}
	return step, nil
}

// Milestones returns the three fixed study milestones for a skill.
func Milestones(skill string) []string {
	return []string{
		"Master " + skill + " fundamentals",
		"Build a " + skill + " project",
		"Optimize " + skill + " for production",
	}
}

// CacheKey is independent of skill order.
func CacheKey(skills []string) string {
	sorted := append([]string(nil), skills...)
	sort.Strings(sorted)
	return cache.GenerateKey(cache.NamespaceLearning, strings.Join(sorted, ","))
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
