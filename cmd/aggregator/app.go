package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"

	"internship_fetcher/internal/cache"
	"internship_fetcher/internal/config"
	"internship_fetcher/internal/fetch"
	"internship_fetcher/internal/llm"
	"internship_fetcher/internal/metrics"
	"internship_fetcher/internal/publisher"
	"internship_fetcher/internal/reconcile"
	"internship_fetcher/internal/service"
	"internship_fetcher/internal/source/habr"
	"internship_fetcher/internal/source/hh"
	"internship_fetcher/internal/source/universal"
	"internship_fetcher/internal/storage/postgres"
)

// app holds every long-lived dependency of a command.
type app struct {
	cfg     *config.Config
	logger  *slog.Logger
	db      *sqlx.DB
	redis   *redis.Client
	rabbit  *publisher.RabbitMQ
	metrics *metrics.Metrics
	fetcher *fetch.Client

	websites   *postgres.WebsiteStore
	postings   *postgres.PostingStore
	queries    *postgres.SearchQueryStore
	reconciler *reconcile.Reconciler
}

func newApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*app, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	db, err := connectDB(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	a := &app{
		cfg:      cfg,
		logger:   logger,
		db:       db,
		metrics:  metrics.New(),
		websites: postgres.NewWebsiteStore(db),
		postings: postgres.NewPostingStore(db),
		queries:  postgres.NewSearchQueryStore(db),
	}

	a.reconciler = reconcile.New(a.postings, postgres.NewTransactionManager(db), logger)

	a.fetcher = fetch.New(fetch.Config{
		BaseDelay:         cfg.Fetch.BaseDelay,
		MaxRetries:        cfg.Fetch.MaxRetries,
		JitterMin:         cfg.Fetch.JitterRange[0],
		JitterMax:         cfg.Fetch.JitterRange[1],
		Timeout:           cfg.Fetch.Timeout,
		RequestsPerSecond: cfg.Fetch.RequestsPerSecond,
		Burst:             cfg.Fetch.Burst,
		UserAgent:         cfg.Fetch.UserAgent,
	}, logger.With("component", "fetch"), fetch.WithObserver(a.metrics))

	if cfg.RabbitMQ.Enabled {
		a.rabbit, err = publisher.NewRabbitMQ(publisher.Config{
			URL:        cfg.RabbitMQ.URL,
			Exchange:   cfg.RabbitMQ.Exchange,
			RoutingKey: cfg.RabbitMQ.RoutingKey,
			QueueName:  cfg.RabbitMQ.QueueName,
		}, logger)
		if err != nil {
			a.Close()
			return nil, err
		}
	}

	if cfg.Redis.URL != "" {
		a.redis, err = cache.NewRedisClient(ctx, cfg.Redis.URL)
		if err != nil {
			a.Close()
			return nil, err
		}
		logger.Info("connected to redis")
	}

	return a, nil
}

func connectDB(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*sqlx.DB, error) {
	db, err := sqlx.ConnectContext(ctx, "postgres", cfg.Database.DSN())
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	logger.Info("connected to database")

	return db, nil
}

// boardAdapters returns the enabled job-board adapters in registration
// order.
func (a *app) boardAdapters() []service.Adapter {
	var adapters []service.Adapter

	if a.cfg.Sources.HH.Enabled {
		src := a.cfg.Sources.HH
		adapters = append(adapters, hh.New(hh.Config{
			BaseURL:     src.BaseURL,
			Token:       src.Token,
			ContactUA:   src.ContactUA,
			PerPage:     src.PerPage,
			MaxPagesCap: src.MaxPagesCap,
			PageDelay:   src.PageDelay,
			StaleAfter:  a.cfg.Sync.StaleAfter,
			Keywords:    a.cfg.TechKeywords,
		}, a.fetcher, a.logger))
	}

	if a.cfg.Sources.Habr.Enabled {
		src := a.cfg.Sources.Habr
		adapters = append(adapters, habr.New(habr.Config{
			BaseURL:              src.BaseURL,
			MaxResults:           src.MaxResults,
			MinDescriptionLength: src.MinDescriptionLength,
			DescriptionSelector:  src.DescriptionSelector,
			PageDelay:            src.PageDelay,
			StaleAfter:           a.cfg.Sync.StaleAfter,
			Keywords:             a.cfg.TechKeywords,
		}, a.fetcher, a.logger))
	}

	return adapters
}

func (a *app) universalAdapter() service.Adapter {
	var extractor universal.FieldExtractor
	if a.cfg.LLM.APIKey != "" {
		extractor = llm.New(llm.Config{
			APIKey:    a.cfg.LLM.APIKey,
			Model:     a.cfg.LLM.Model,
			MaxTokens: a.cfg.LLM.MaxTokens,
			MaxChars:  a.cfg.LLM.MaxChars,
		}, a.fetcher, a.logger)
	}

	var extractionCache universal.Cache
	if a.redis != nil {
		extractionCache = cache.NewExtractionCache(a.redis, a.cfg.Sync.StaleAfter)
	}

	return universal.New(universal.Config{
		Concurrency: a.cfg.Sources.Universal.Concurrency,
		Keywords:    a.cfg.TechKeywords,
	}, a.fetcher, extractor, extractionCache, a.logger)
}

func (a *app) orchestrator(adapters []service.Adapter) *service.Orchestrator {
	var pub service.Publisher
	if a.rabbit != nil {
		pub = a.rabbit
	}

	return service.NewOrchestrator(
		adapters,
		a.websites,
		a.postings,
		a.queries,
		a.reconciler,
		pub,
		a.logger,
		service.WithMetrics(a.metrics),
	)
}

func (a *app) Close() {
	if a.rabbit != nil {
		a.rabbit.Close()
	}
	if a.redis != nil {
		a.redis.Close()
	}
	if a.db != nil {
		a.db.Close()
	}
}
