// Package bootstrap wires the career agents and their infrastructure from
// configuration. It is shared by career-api and worker-manager.
package bootstrap

import (
	"context"
	"fmt"
	"time"

	"nexus-talent/internal/common/aws"
	"nexus-talent/internal/common/cache"
	"nexus-talent/internal/common/config"
	"nexus-talent/internal/common/database"
	"nexus-talent/internal/common/logger"
	"nexus-talent/internal/common/messaging"
	"nexus-talent/internal/common/observability"
	"nexus-talent/internal/jobs"
	"nexus-talent/internal/llm"
	"nexus-talent/internal/orchestration"
	"nexus-talent/internal/resume"
	"nexus-talent/internal/storage"
	analyzeskillgaps "nexus-talent/internal/workers/career/analyze-skill-gaps"
	buildlearningpath "nexus-talent/internal/workers/career/build-learning-path"
	parseresume "nexus-talent/internal/workers/career/parse-resume"
	scoreats "nexus-talent/internal/workers/career/score-ats"
	sourcejobs "nexus-talent/internal/workers/career/source-jobs"
	"nexus-talent/internal/youtube"
)

// Infra holds the external clients. Optional ones are nil when disabled.
type Infra struct {
	Redis     *database.RedisClient
	Postgres  *database.PostgresClient
	Search    *database.ElasticsearchClient
	Publisher *messaging.Publisher
	S3        *aws.S3Client
	SES       *aws.SESClient
	SNS       *aws.SNSClient

	Cache   *cache.Cache
	Store   *storage.AnalysisStore
	Router  *llm.Router
	Obs     *observability.Observability
	closers []func() error
}

// Close releases every connection opened by Connect.
func (i *Infra) Close() {
	for n := len(i.closers) - 1; n >= 0; n-- {
		_ = i.closers[n]()
	}
}

// Agents are the five career worker handlers.
type Agents struct {
	Parse  *parseresume.Handler
	Source *sourcejobs.Handler
	Score  *scoreats.Handler
	Gap    *analyzeskillgaps.Handler
	Path   *buildlearningpath.Handler
}

// Nodes exposes the agents as graph nodes.
func (a *Agents) Nodes() orchestration.Nodes {
	return orchestration.Nodes{
		Parse:  a.Parse,
		Source: a.Source,
		Score:  a.Score,
		Gap:    a.Gap,
		Path:   a.Path,
	}
}

// RetryWithBackoff runs operation up to maxRetries times, doubling the delay
// after each failure.
func RetryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log logger.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName), map[string]interface{}{
				"error":       err.Error(),
				"attempt":     i + 1,
				"maxRetries":  maxRetries,
				"nextRetryIn": delay.String(),
			})
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

// Connect opens the configured infrastructure. Redis is required; Postgres,
// Elasticsearch, RabbitMQ and AWS are optional and only logged when they fail.
func Connect(ctx context.Context, cfg *config.Config, obs *observability.Observability, log logger.Logger) (*Infra, error) {
	infra := &Infra{Obs: obs}

	var redis *database.RedisClient
	err := RetryWithBackoff(func() error {
		var err error
		redis, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		return redis.Ping(ctx)
	}, 5, time.Second, log, "Redis connection")
	if err != nil {
		return nil, err
	}
	infra.Redis = redis
	infra.closers = append(infra.closers, redis.Close)
	infra.Cache = cache.New(redis.Client, obs, log)
	log.Info("Redis connected successfully", nil)

	if cfg.Database.Postgres.Enabled() {
		if err := infra.connectPostgres(ctx, cfg, log); err != nil {
			log.Error("analysis history disabled", map[string]interface{}{"error": err.Error()})
		}
	}

	if cfg.Database.Elasticsearch.Enabled() {
		if err := infra.connectSearch(ctx, cfg, log); err != nil {
			log.Error("job search index disabled", map[string]interface{}{"error": err.Error()})
		}
	}

	if cfg.Integrations.RabbitMQ.Enabled {
		pub, err := messaging.NewPublisher(cfg.Integrations.RabbitMQ.URL, cfg.Integrations.RabbitMQ.Exchange)
		if err != nil {
			log.Error("analysis events disabled", map[string]interface{}{"error": err.Error()})
		} else {
			infra.Publisher = pub
			infra.closers = append(infra.closers, pub.Close)
		}
	}

	infra.connectAWS(ctx, cfg, log)
	infra.Router = NewLLMRouter(ctx, cfg, log)

	return infra, nil
}

func (i *Infra) connectPostgres(ctx context.Context, cfg *config.Config, log logger.Logger) error {
	var pg *database.PostgresClient
	err := RetryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		return pg.Ping(ctx)
	}, 5, 2*time.Second, log, "PostgreSQL connection")
	if err != nil {
		return err
	}

	store := storage.NewAnalysisStore(pg.DB, log)
	if err := store.EnsureSchema(ctx); err != nil {
		_ = pg.Close()
		return err
	}
	i.Postgres = pg
	i.Store = store
	i.closers = append(i.closers, pg.Close)
	log.Info("PostgreSQL connected successfully", pg.Stats())
	return nil
}

func (i *Infra) connectSearch(ctx context.Context, cfg *config.Config, log logger.Logger) error {
	var es *database.ElasticsearchClient
	err := RetryWithBackoff(func() error {
		var err error
		es, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
		if err != nil {
			return err
		}
		return es.Ping(ctx)
	}, 5, 2*time.Second, log, "Elasticsearch connection")
	if err != nil {
		return err
	}

	if err := es.EnsureIndex(ctx, cfg.Database.Elasticsearch.JobsIndex, jobs.IndexMapping); err != nil {
		return err
	}
	i.Search = es
	log.Info("Elasticsearch connected successfully", nil)
	return nil
}

func (i *Infra) connectAWS(ctx context.Context, cfg *config.Config, log logger.Logger) {
	a := cfg.Integrations.AWS
	if !a.S3.Enabled && !a.SES.Enabled && !a.SNS.Enabled {
		return
	}

	awsCfg, err := aws.LoadConfig(ctx, a.Region)
	if err != nil {
		log.Error("aws integrations disabled", map[string]interface{}{"error": err.Error()})
		return
	}
	if a.S3.Enabled {
		i.S3 = aws.NewS3Client(awsCfg, a.S3.Bucket, a.S3.Prefix, a.S3.Endpoint)
	}
	if a.SES.Enabled {
		i.SES = aws.NewSESClient(awsCfg, a.SES.FromEmail)
	}
	if a.SNS.Enabled {
		i.SNS = aws.NewSNSClient(awsCfg, a.SNS.TopicARN)
	}
}

// NewLLMRouter builds Gemini as the priority provider and Ollama as the
// fallback. A missing Gemini key leaves only Ollama.
func NewLLMRouter(ctx context.Context, cfg *config.Config, log logger.Logger) *llm.Router {
	var primary, fallback llm.Provider

	gemini, err := llm.NewGemini(ctx, cfg.LLM.Gemini.APIKey, cfg.LLM.Gemini.Model, config.GetDuration(cfg.LLM.Gemini.Timeout))
	if err != nil {
		log.Warn("gemini provider disabled", map[string]interface{}{"error": err.Error()})
	} else {
		primary = gemini
	}

	if cfg.LLM.Ollama.URL != "" {
		fallback = llm.NewOllama(cfg.LLM.Ollama.URL, cfg.LLM.Ollama.Model, config.GetDuration(cfg.LLM.Ollama.Timeout))
	}
	return llm.NewRouter(primary, fallback, log)
}

// NewAgents builds the five career handlers on top of infra.
func NewAgents(cfg *config.Config, infra *Infra, log logger.Logger) *Agents {
	sourceDeps := sourcejobs.Dependencies{
		Cache: infra.Cache,
		Board: jobs.NewBoardClient(
			cfg.APIs.JobBoard.BaseURL,
			cfg.APIs.JobBoard.APIKey,
			cfg.APIs.JobBoard.Country,
			cfg.APIs.JobBoard.Limit,
			config.GetDuration(cfg.APIs.JobBoard.Timeout),
			log,
		),
	}
	if infra.Search != nil {
		sourceDeps.Index = jobs.NewIndex(infra.Search.Client, cfg.Database.Elasticsearch.JobsIndex)
	}

	scoreDeps := scoreats.Dependencies{Cache: infra.Cache, Obs: infra.Obs}
	if infra.SNS != nil {
		scoreDeps.Notifier = infra.SNS
	}

	pathDeps := buildlearningpath.Dependencies{Cache: infra.Cache}
	if cfg.APIs.YouTube.APIKey != "" {
		pathDeps.Videos = youtube.NewClient(cfg.APIs.YouTube.BaseURL, cfg.APIs.YouTube.APIKey, config.GetDuration(cfg.APIs.YouTube.Timeout))
	} else {
		log.Warn("YOUTUBE_API_KEY not set, learning paths will be empty", nil)
	}

	var gen analyzeskillgaps.Generator
	var parserGen resume.Generator
	if infra.Router != nil {
		gen = infra.Router
		parserGen = infra.Router
	}

	return &Agents{
		Parse:  parseresume.NewHandler(parseresume.NewConfig(cfg), resume.NewParser(parserGen, log), log),
		Source: sourcejobs.NewHandler(sourcejobs.NewConfig(cfg), sourceDeps, log),
		Score:  scoreats.NewHandler(scoreats.NewConfig(cfg), scoreDeps, log),
		Gap:    analyzeskillgaps.NewHandler(analyzeskillgaps.NewConfig(cfg), gen, log),
		Path:   buildlearningpath.NewHandler(buildlearningpath.NewConfig(cfg), pathDeps, log),
	}
}

// SideEffects returns the post-run effects that are configured.
func (i *Infra) SideEffects() orchestration.SideEffects {
	var effects orchestration.SideEffects
	if i.Store != nil {
		effects.Store = i.Store
	}
	if i.Publisher != nil {
		effects.Publisher = i.Publisher
	}
	if i.S3 != nil {
		effects.Archiver = i.S3
	}
	if i.SES != nil {
		effects.Mailer = i.SES
	}
	return effects
}
