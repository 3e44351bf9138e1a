package app

import (
	"context"
	"fmt"
	"time"

	"jobmatch/internal/config"
	"jobmatch/internal/database"
	dbpostgres "jobmatch/internal/database/postgres"
	"jobmatch/internal/infrastructure/cache"
	"jobmatch/internal/infrastructure/extraction"
	"jobmatch/internal/infrastructure/messaging"
	"jobmatch/internal/infrastructure/reasoning"
	"jobmatch/internal/infrastructure/reasoning/gemini"
	"jobmatch/internal/infrastructure/reasoning/openai"
	"jobmatch/internal/infrastructure/storage"
	"jobmatch/internal/pkg/jwt"
	"jobmatch/internal/pkg/workerpool"
	"jobmatch/internal/repository"
	"jobmatch/internal/scheduler"
	"jobmatch/internal/usecase/analysis"
	"jobmatch/internal/usecase/auth"
	"jobmatch/internal/usecase/jobs"
	"jobmatch/internal/usecase/profile"
	resumeuc "jobmatch/internal/usecase/resume"
	"jobmatch/internal/usecase/scoring"
	"jobmatch/internal/usecase/tracker"
	"jobmatch/internal/ws"

	"go.uber.org/zap"
)

// Container owns the long-lived dependencies of a running server.
type Container struct {
	Config config.Config
	Logger *zap.Logger
	DB     database.DB
	Cache  *cache.Redis
	Bus    *messaging.Publisher
	Hub    *ws.Hub
	Pool   *workerpool.Pool

	Candidates repository.CandidateRepository

	Auth      *auth.Service
	Analysis  *analysis.Service
	Jobs      *jobs.Service
	Scoring   *scoring.Service
	Tracker   *tracker.Service
	Profiles  *profile.Service
	Scheduler *scheduler.Scheduler
}

func NewContainer(ctx context.Context, cfg config.Config, logger *zap.Logger) (*Container, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	db, err := dbpostgres.Connect(connectCtx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	c := &Container{Config: cfg, Logger: logger, DB: db}

	if cfg.Database.AutoMigrate {
		if err := Migrate(ctx, db, cfg.Database); err != nil {
			_ = c.Close()
			return nil, err
		}
	}

	store, err := storage.New(ctx, cfg.Storage)
	if err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("init storage: %w", err)
	}

	c.Cache = cache.NewRedis(cfg.Redis, logger.Named("cache"))
	c.Hub = ws.NewHub(logger.Named("ws"))
	notifiers := analysis.Notifiers{ws.NewNotifier(c.Hub, logger.Named("ws"))}
	if cfg.AMQP.URL != "" {
		bus, err := messaging.Dial(cfg.AMQP.URL, cfg.AMQP.Exchange, logger.Named("amqp"))
		if err != nil {
			logger.Warn("amqp unavailable, stage events stay local", zap.Error(err))
		} else {
			c.Bus = bus
			notifiers = append(notifiers, bus)
		}
	}

	principals := repository.NewPostgresPrincipalRepository(db)
	candidates := repository.NewPostgresCandidateRepository(db)
	resumes := repository.NewPostgresResumeRepository(db)
	analyses := repository.NewPostgresAnalysisRepository(db)
	jobRepo := repository.NewPostgresJobRepository(db)
	companies := repository.NewPostgresCompanyRepository(db)
	applications := repository.NewPostgresApplicationRepository(db)
	recommendations := repository.NewPostgresRecommendationRepository(db)
	skills := repository.NewPostgresSkillRepository(db)
	c.Candidates = candidates

	tokens := jwt.NewHMACService(cfg.JWT.AccessSecret, cfg.JWT.AccessExpiresIn, cfg.JWT.Issuer)
	c.Auth = auth.NewService(principals, tokens)

	extractor := extraction.New(skills, logger.Named("extraction"))
	ingestor := resumeuc.NewIngestor(resumes, store, extractor, cfg.Pipeline.MaxUploadBytes, logger.Named("ingest"))
	reasoner := reasoning.New(ctx, cfg.Reasoning, generatorFactories(), logger.Named("reasoning"))

	c.Pool = workerpool.New(cfg.Pipeline.Workers, cfg.Pipeline.QueueSize)
	registry := analysis.NewRegistry()
	pipeline := analysis.NewPipeline(
		analysis.Repositories{
			Resumes:         resumes,
			Analyses:        analyses,
			Candidates:      candidates,
			Jobs:            jobRepo,
			Recommendations: recommendations,
		},
		ingestor,
		reasoner,
		c.Pool,
		c.Cache,
		notifiers,
		registry,
		analysis.Options{
			TopN:              cfg.Pipeline.TopN,
			Attempts:          cfg.Reasoning.MaxAttempts,
			AttemptTimeout:    cfg.Reasoning.AttemptTimeout,
			BaseBackoff:       cfg.Pipeline.BaseBackoff,
			MaxBackoff:        cfg.Pipeline.MaxBackoff,
			LockTTL:           cfg.Pipeline.RunLockTTL,
			RecommendMinScore: cfg.Pipeline.RecommendMinScore,
		},
		logger.Named("pipeline"),
	)

	c.Analysis = analysis.NewService(pipeline, candidates, resumes, analyses)
	c.Jobs = jobs.NewService(jobRepo, companies, c.Cache, logger.Named("jobs"))
	c.Scoring = scoring.NewService(jobRepo, candidates, analyses, recommendations, c.Cache, logger.Named("scoring"))
	c.Tracker = tracker.NewService(applications, jobRepo, companies, candidates, logger.Named("tracker"))
	c.Profiles = profile.NewService(candidates, logger.Named("profile"))

	c.Scheduler = scheduler.New(logger.Named("scheduler"))
	reaper := scheduler.NewReaper(resumes, registry, cfg.Pipeline.StaleAfter, logger.Named("reaper"))
	if err := c.Scheduler.AddReaper(cfg.Pipeline.ReaperSchedule, reaper); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("schedule reaper: %w", err)
	}

	return c, nil
}

func generatorFactories() map[string]reasoning.GeneratorFactory {
	return map[string]reasoning.GeneratorFactory{
		reasoning.ProviderGemini: func(ctx context.Context, cfg config.ReasoningConfig) (reasoning.Generator, error) {
			return gemini.NewGenerator(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		},
		reasoning.ProviderOpenAI: func(_ context.Context, cfg config.ReasoningConfig) (reasoning.Generator, error) {
			return openai.NewGenerator(cfg.OpenAIAPIKey, cfg.OpenAIModel)
		},
	}
}

// Start launches the background workers. They stop when ctx is cancelled.
func (c *Container) Start(ctx context.Context) {
	c.Pool.Start(ctx)
	go c.Hub.Run(ctx)
	c.Scheduler.Start()
}

func (c *Container) Close() error {
	if c == nil {
		return nil
	}

	if c.Scheduler != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		c.Scheduler.Stop(ctx)
	}
	if c.Pool != nil {
		c.Pool.Close()
	}
	if c.Bus != nil {
		_ = c.Bus.Close()
	}
	if c.Cache != nil {
		_ = c.Cache.Close()
	}
	if c.DB == nil {
		return nil
	}
	return c.DB.Close()
}
