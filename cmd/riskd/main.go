package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/parametric-risk-engine/internal/adapter/httpapi"
	kafkaadapter "github.com/couchcryptid/parametric-risk-engine/internal/adapter/kafka"
	"github.com/couchcryptid/parametric-risk-engine/internal/adapter/rediscache"
	"github.com/couchcryptid/parametric-risk-engine/internal/config"
	"github.com/couchcryptid/parametric-risk-engine/internal/domain"
	"github.com/couchcryptid/parametric-risk-engine/internal/generator"
	"github.com/couchcryptid/parametric-risk-engine/internal/observability"
	"github.com/couchcryptid/parametric-risk-engine/internal/product"
	"github.com/couchcryptid/parametric-risk-engine/internal/risk"
	"github.com/couchcryptid/parametric-risk-engine/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	registry := product.NewRegistry(logger, metrics)
	products, err := loadCatalog(cfg)
	if err != nil {
		logger.Error("failed to load product catalog", "error", err)
		os.Exit(1)
	}
	accepted := product.PopulateRegistry(registry, products)
	logger.Info("product catalog loaded", "accepted", accepted, "total", len(products))

	// Series cache: Redis when configured, in-memory LRU otherwise.
	var cache generator.SeriesCache
	var redisCache *rediscache.Cache
	if cfg.RedisAddr != "" {
		redisCache = rediscache.New(cfg.RedisAddr, cfg.RedisDB, cfg.RedisTTL, logger)
		if err := redisCache.Ping(context.Background()); err != nil {
			logger.Error("redis unreachable", "addr", cfg.RedisAddr, "error", err)
			os.Exit(1)
		}
		cache = redisCache
		logger.Info("using redis series cache", "addr", cfg.RedisAddr, "ttl", cfg.RedisTTL)
	} else {
		cache = generator.NewMemoryCache(cfg.CacheMaxSeries)
		logger.Info("using in-memory series cache", "max_series", cfg.CacheMaxSeries)
	}

	gen := generator.New(cache, logger, metrics)
	evaluator := risk.NewEvaluator(logger, metrics)

	// Event publishing is feature-flagged via KAFKA_ENABLED.
	var publisher service.EventPublisher
	var kafkaPublisher *kafkaadapter.Publisher
	if cfg.KafkaEnabled {
		kafkaPublisher = kafkaadapter.NewPublisher(cfg, logger)
		publisher = kafkaPublisher
		logger.Info("kafka event publishing enabled", "topic", cfg.KafkaEventsTopic)
	} else {
		logger.Info("kafka event publishing disabled")
	}

	svc := service.New(registry, gen, evaluator, publisher, logger, metrics)
	srv := httpapi.NewServer(cfg.HTTPAddr, svc, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if kafkaPublisher != nil {
		if err := kafkaPublisher.Close(); err != nil {
			logger.Error("kafka publisher close error", "error", err)
		}
	}
	if redisCache != nil {
		if err := redisCache.Close(); err != nil {
			logger.Error("redis close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}

func loadCatalog(cfg *config.Config) ([]domain.Product, error) {
	if cfg.CatalogPath != "" {
		return product.LoadCatalog(cfg.CatalogPath)
	}
	return product.LoadDefaultCatalog()
}
