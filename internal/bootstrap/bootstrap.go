// Package bootstrap wires infrastructure to the classification core.
package bootstrap

import (
	"fmt"
	"log/slog"

	httpadapter "github.com/meiwa-tech/inquiry-classifier/internal/adapters/http"
	"github.com/meiwa-tech/inquiry-classifier/internal/config"
	"github.com/meiwa-tech/inquiry-classifier/internal/core/ports"
	"github.com/meiwa-tech/inquiry-classifier/internal/core/usecase"
	"github.com/meiwa-tech/inquiry-classifier/internal/infrastructure/auth/hmactoken"
	"github.com/meiwa-tech/inquiry-classifier/internal/infrastructure/cache/rediscache"
	"github.com/meiwa-tech/inquiry-classifier/internal/infrastructure/llm/openai"
	"github.com/meiwa-tech/inquiry-classifier/internal/infrastructure/queue/nats"
	"github.com/meiwa-tech/inquiry-classifier/internal/infrastructure/repository/memory"
	"github.com/meiwa-tech/inquiry-classifier/internal/infrastructure/resilience"
	"github.com/meiwa-tech/inquiry-classifier/internal/observability/logging"
	"github.com/meiwa-tech/inquiry-classifier/internal/observability/metrics"
)

const serviceName = "inquiry-classifier"

type App struct {
	Config  config.Config
	Logger  *slog.Logger
	Metrics *metrics.ServerMetrics

	ClassifyUC *usecase.ClassifyInquiryUseCase
	Store      ports.InquiryStore
	Verifier   *hmactoken.Verifier

	closeFn func()
}

func New(cfg config.Config) (*App, error) {
	logger := logging.New(serviceName, cfg.LogLevel)
	slog.SetDefault(logger)
	serverMetrics := metrics.NewServerMetrics(serviceName)

	// The embedded API contract is part of the build; refuse to start if
	// it no longer validates.
	if _, err := httpadapter.LoadContract(); err != nil {
		return nil, fmt.Errorf("validate api contract: %w", err)
	}

	executor := resilience.NewExecutor(resilience.DefaultConfig(), logger)
	classifier := metrics.InstrumentClassifier(openai.New(openai.Config{
		BaseURL:        cfg.LLMBaseURL,
		APIKey:         cfg.LLMAPIKey,
		Model:          cfg.LLMModel,
		RequestTimeout: cfg.LLMTimeout(),
	}, executor), serverMetrics)

	var cache ports.Cache
	var redisCache *rediscache.Cache
	if cfg.RedisAddr != "" {
		var err error
		redisCache, err = rediscache.New(rediscache.Config{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("init redis cache: %w", err)
		}
		cache = redisCache
	} else {
		logger.Info("no redis address configured, using in-process cache")
		cache = rediscache.NewMemory()
	}
	cache = metrics.InstrumentCache(cache, serverMetrics)

	var events ports.EventPublisher
	var publisher *nats.Publisher
	if cfg.NATSURL != "" {
		var err error
		publisher, err = nats.New(cfg.NATSURL, cfg.NATSSubject, nats.Options{
			Executor: executor,
			Logger:   logger,
		})
		if err != nil {
			return nil, fmt.Errorf("init event publisher: %w", err)
		}
		events = publisher
	} else {
		logger.Info("no nats url configured, classified events disabled")
	}

	store := memory.NewInquiryStore(cfg.StoreCapacity)
	verifier := hmactoken.NewVerifier(cfg.AuthSecret)

	classifyUC := usecase.NewClassifyInquiryUseCase(
		classifier,
		cache,
		store,
		events,
		cfg.CacheEnabled,
		logger,
	)

	return &App{
		Config:     cfg,
		Logger:     logger,
		Metrics:    serverMetrics,
		ClassifyUC: classifyUC,
		Store:      store,
		Verifier:   verifier,

		closeFn: func() {
			if publisher != nil {
				publisher.Close()
			}
			if redisCache != nil {
				_ = redisCache.Close()
			}
		},
	}, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
