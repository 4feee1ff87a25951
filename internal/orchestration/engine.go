// internal/orchestration/engine.go
package orchestration

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	apperrors "nexus-talent/internal/common/errors"
	"nexus-talent/internal/common/logger"
	"nexus-talent/internal/common/messaging"
	"nexus-talent/internal/common/metrics"
	"nexus-talent/internal/common/observability"
	"nexus-talent/internal/common/validation"
	"nexus-talent/internal/models"
	analyzeskillgaps "nexus-talent/internal/workers/career/analyze-skill-gaps"
	buildlearningpath "nexus-talent/internal/workers/career/build-learning-path"
	parseresume "nexus-talent/internal/workers/career/parse-resume"
	scoreats "nexus-talent/internal/workers/career/score-ats"
	sourcejobs "nexus-talent/internal/workers/career/source-jobs"
)

const (
	DefaultLocation = "Remote"
	DefaultJobTitle = models.DefaultJobTitle

	// GapThreshold routes runs scoring below it through gap analysis.
	GapThreshold = 85

	nodeParse  = "parse"
	nodeSource = "source"
	nodeScore  = "score"
	nodeGap    = "gap"
	nodePath   = "path"
)

// The graph nodes. The career worker handlers satisfy these through Execute.
type (
	ResumeParser interface {
		Execute(ctx context.Context, input *parseresume.Input) (*parseresume.Output, error)
	}
	JobSourcer interface {
		Execute(ctx context.Context, input *sourcejobs.Input) (*sourcejobs.Output, error)
	}
	ATSScorer interface {
		Execute(ctx context.Context, input *scoreats.Input) (*scoreats.Output, error)
	}
	GapAnalyzer interface {
		Execute(ctx context.Context, input *analyzeskillgaps.Input) (*analyzeskillgaps.Output, error)
	}
	PathBuilder interface {
		Execute(ctx context.Context, input *buildlearningpath.Input) (*buildlearningpath.Output, error)
	}
)

type Nodes struct {
	Parse  ResumeParser
	Source JobSourcer
	Score  ATSScorer
	Gap    GapAnalyzer
	Path   PathBuilder
}

// Side effects run after the graph. Each one may be nil.
type (
	AnalysisStore interface {
		Save(ctx context.Context, jobTitle, location string, analysis *models.CareerAnalysisResponse) error
	}
	EventPublisher interface {
		Publish(ctx context.Context, routingKey string, payload interface{}) error
	}
	ResumeArchiver interface {
		ArchiveResume(ctx context.Context, id, filename, contentType string, data []byte) (string, error)
	}
	ReportMailer interface {
		SendReport(ctx context.Context, to, subject, body string) (string, error)
	}
)

type SideEffects struct {
	Store     AnalysisStore
	Publisher EventPublisher
	Archiver  ResumeArchiver
	Mailer    ReportMailer
}

type Config struct {
	Timeout        time.Duration
	EffectsTimeout time.Duration
}

func DefaultConfig() *Config {
	return &Config{
		Timeout:        3 * time.Minute,
		EffectsTimeout: 15 * time.Second,
	}
}

// Request is one analysis request. Either Resume or File must be set.
type Request struct {
	Resume         string
	File           []byte
	FileName       string
	MimeType       string
	JobTitle       string
	Location       string
	JobDescription string
	NotifyEmail    string
}

// AnalysisCompletedEvent is published on messaging.RoutingKeyAnalysisCompleted.
type AnalysisCompletedEvent struct {
	AnalysisID    string    `json:"analysisId"`
	JobTitle      string    `json:"jobTitle"`
	Location      string    `json:"location"`
	Score         int       `json:"score"`
	Status        string    `json:"recommendationStatus,omitempty"`
	PrioritySkill string    `json:"prioritySkill,omitempty"`
	DataSource    string    `json:"dataSource,omitempty"`
	ParseSource   string    `json:"parseSource"`
	CreatedAt     time.Time `json:"createdAt"`
}

// Engine runs the career graph:
//
//	parse -> source -> score -> (score < 85 ? gap -> path : path)
type Engine struct {
	config  *Config
	nodes   Nodes
	effects SideEffects
	obs     *observability.Observability
	logger  logger.Logger
}

func NewEngine(config *Config, nodes Nodes, effects SideEffects, obs *observability.Observability, log logger.Logger) *Engine {
	if config == nil {
		config = DefaultConfig()
	}
	return &Engine{
		config:  config,
		nodes:   nodes,
		effects: effects,
		obs:     obs,
		logger:  log.WithFields(map[string]interface{}{"component": "career-graph"}),
	}
}

// ShouldAnalyzeGaps is the routing predicate after scoring.
func ShouldAnalyzeGaps(score int) bool {
	return score < GapThreshold
}

// Run executes the graph. Only a parse failure ends the run with an error;
// every other node records its failure in State.Errors.
func (e *Engine) Run(ctx context.Context, req Request) (*State, error) {
	if e.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.config.Timeout)
		defer cancel()
	}

	if strings.TrimSpace(req.Location) == "" {
		req.Location = DefaultLocation
	}

	state := &State{
		ID:        uuid.NewString(),
		Request:   req,
		CreatedAt: time.Now().UTC(),
	}

	ctx, span := observability.StartSpan(ctx, "CareerGraph_Workflow",
		attribute.String("flow.type", "multi_agent_matchmaking"),
		attribute.String("analysis.id", state.ID),
		attribute.String("user.location", req.Location),
	)
	defer span.End()

	log := logger.WithContext(ctx, e.logger).WithFields(map[string]interface{}{"analysisId": state.ID})
	log.Info("starting career analysis", map[string]interface{}{
		"location": req.Location,
		"hasFile":  len(req.File) > 0,
	})

	if err := e.parse(ctx, state); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "parse failed")
		log.Error("career analysis aborted", map[string]interface{}{"error": err.Error()})
		return nil, err
	}
	span.SetAttributes(attribute.String("user.job_title", state.JobTitle))

	e.source(ctx, state)
	e.score(ctx, state)

	if ShouldAnalyzeGaps(state.Score) {
		e.gap(ctx, state)
	} else {
		state.PathSkills = []string{}
	}
	if err := e.path(ctx, state); err != nil {
		state.addError(apperrors.NewLearningPathFailedError(err).Message)
	}

	span.SetAttributes(attribute.Int("final.score", state.Score))
	if len(state.Errors) > 0 {
		span.SetStatus(codes.Error, strings.Join(state.Errors, " "))
	} else {
		span.SetStatus(codes.Ok, "")
	}

	e.runSideEffects(ctx, state, log)

	log.Info("career analysis completed", map[string]interface{}{
		"score":      state.Score,
		"topJobs":    len(state.TopJobs),
		"pathSteps":  len(state.LearningPath),
		"errorCount": len(state.Errors),
	})
	return state, nil
}

func (e *Engine) parse(ctx context.Context, state *State) error {
	if e.nodes.Parse == nil {
		return apperrors.NewInternalError(fmt.Errorf("parse node not configured"))
	}
	done := e.observe(ctx, nodeParse)
	out, err := e.nodes.Parse.Execute(ctx, &parseresume.Input{
		Resume:   state.Request.Resume,
		File:     state.Request.File,
		FileName: state.Request.FileName,
		MimeType: state.Request.MimeType,
		JobTitle: state.Request.JobTitle,
	})
	if err != nil {
		done(errorCode(err))
		return err
	}
	done("")

	state.ResumeData = out.ResumeData
	state.ResumeText = out.ResumeText
	state.ParseSource = out.ParseSource
	state.JobTitle = ResolveJobTitle(state.Request.JobTitle, out.ResumeData)
	return nil
}

func (e *Engine) source(ctx context.Context, state *State) {
	state.Jobs = []models.Job{}
	if e.nodes.Source == nil {
		return
	}
	done := e.observe(ctx, nodeSource)
	out, err := e.nodes.Source.Execute(ctx, &sourcejobs.Input{
		JobTitle:       state.JobTitle,
		Location:       state.Request.Location,
		Skills:         state.ResumeData.Skills,
		JobDescription: state.Request.JobDescription,
	})
	if err != nil {
		done(errorCode(err))
		state.addError(apperrors.MsgJobSourcingFailed)
		return
	}
	if out.Error != "" {
		done(string(apperrors.ErrCodeJobSourcingFailed))
		state.addError(out.Error)
	} else {
		done("")
	}
	if out.Jobs != nil {
		state.Jobs = out.Jobs
	}
	state.DataSource = out.DataSource
}

func (e *Engine) score(ctx context.Context, state *State) {
	state.TopJobs = []models.JobMatch{}
	if e.nodes.Score == nil {
		return
	}
	done := e.observe(ctx, nodeScore)
	out, err := e.nodes.Score.Execute(ctx, &scoreats.Input{
		ResumeText: state.ResumeText,
		Jobs:       state.Jobs,
	})
	if err != nil {
		done(errorCode(err))
		state.addError(apperrors.MsgATSScoringFailed)
		return
	}
	if out.Error != "" {
		done(string(apperrors.ErrCodeATSScoringFailed))
		state.addError(out.Error)
	} else {
		done("")
	}
	state.Score = out.Score
	if out.TopJobs != nil {
		state.TopJobs = out.TopJobs
	}
	state.BestJob = out.BestJob
}

func (e *Engine) gap(ctx context.Context, state *State) {
	state.PathSkills = []string{}
	if e.nodes.Gap == nil {
		return
	}
	done := e.observe(ctx, nodeGap)
	out, err := e.nodes.Gap.Execute(ctx, &analyzeskillgaps.Input{
		ResumeText:     state.ResumeText,
		JobDescription: state.targetDescription(),
		Score:          state.Score,
	})
	if err != nil {
		done(errorCode(err))
		state.MissingSkills = &models.SkillGaps{}
		state.addError(apperrors.MsgGapAnalysisFailed)
		return
	}
	if out.Error != "" {
		done(string(apperrors.ErrCodeGapAnalysisFailed))
		state.addError(out.Error)
	} else {
		done("")
	}
	state.MissingSkills = out.MissingSkills
	state.RecommendationStatus = out.RecommendationStatus
	state.PrioritySkill = out.PrioritySkill
	if out.PathSkills != nil {
		state.PathSkills = out.PathSkills
	}
}

func (e *Engine) path(ctx context.Context, state *State) error {
	state.LearningPath = []models.LearningStep{}
	if e.nodes.Path == nil {
		return nil
	}
	done := e.observe(ctx, nodePath)
	out, err := e.nodes.Path.Execute(ctx, &buildlearningpath.Input{Skills: state.PathSkills})
	if err != nil {
		done(errorCode(err))
		return err
	}
	done("")
	if out.LearningPath != nil {
		state.LearningPath = out.LearningPath
	}
	return nil
}

// observe starts the metrics for one node run and returns the function that
// finishes them.
func (e *Engine) observe(ctx context.Context, node string) func(errorCode string) {
	start := time.Now()
	metrics.AgentRunsActive.WithLabelValues(node).Inc()
	return func(errorCode string) {
		metrics.AgentRunsActive.WithLabelValues(node).Dec()
		elapsed := time.Since(start)
		metrics.ObserveAgentRun(node, elapsed.Seconds(), errorCode)

		status := "success"
		if errorCode != "" {
			status = "failed"
		}
		e.obs.RecordJobProcessed(ctx, node, status)
		e.obs.RecordJobDuration(ctx, node, elapsed, status)
	}
}

func errorCode(err error) string {
	return string(apperrors.AsStandardError(err).Code)
}

func (e *Engine) runSideEffects(ctx context.Context, state *State, log logger.Logger) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), e.config.EffectsTimeout)
	defer cancel()

	resp := state.Response()

	if e.effects.Store != nil {
		if err := e.effects.Store.Save(ctx, state.JobTitle, state.Request.Location, resp); err != nil {
			log.Warn("failed to persist analysis", map[string]interface{}{"error": err.Error()})
		}
	}

	if e.effects.Archiver != nil && len(state.Request.File) > 0 {
		key, err := e.effects.Archiver.ArchiveResume(ctx, state.ID, state.Request.FileName, state.Request.MimeType, state.Request.File)
		if err != nil {
			log.Warn("failed to archive resume", map[string]interface{}{"error": err.Error()})
		} else {
			log.Debug("resume archived", map[string]interface{}{"key": key})
		}
	}

	if e.effects.Publisher != nil {
		event := AnalysisCompletedEvent{
			AnalysisID:    state.ID,
			JobTitle:      state.JobTitle,
			Location:      state.Request.Location,
			Score:         state.Score,
			Status:        state.RecommendationStatus,
			PrioritySkill: state.PrioritySkill,
			DataSource:    string(state.DataSource),
			ParseSource:   string(state.ParseSource),
			CreatedAt:     state.CreatedAt,
		}
		if err := e.effects.Publisher.Publish(ctx, messaging.RoutingKeyAnalysisCompleted, event); err != nil {
			log.Warn("failed to publish analysis event", map[string]interface{}{"error": err.Error()})
		}
	}

	to := strings.TrimSpace(state.Request.NotifyEmail)
	if e.effects.Mailer != nil && to != "" {
		if !validation.ValidateEmail(to) {
			log.Warn("skipping report e-mail, invalid address", nil)
			return
		}
		subject := fmt.Sprintf("Your career analysis for %s", state.JobTitle)
		if _, err := e.effects.Mailer.SendReport(ctx, to, subject, BuildReport(resp, state.JobTitle)); err != nil {
			log.Warn("failed to send report", map[string]interface{}{
				"error": apperrors.NewNotificationSendFailedError("email", err).Details,
			})
		}
	}
}
