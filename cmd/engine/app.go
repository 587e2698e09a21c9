package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/SAP-F-2025/assessment-engine/internal/cache"
	"github.com/SAP-F-2025/assessment-engine/internal/config"
	"github.com/SAP-F-2025/assessment-engine/internal/events"
	"github.com/SAP-F-2025/assessment-engine/internal/repositories"
	"github.com/SAP-F-2025/assessment-engine/internal/repositories/postgres"
	"github.com/SAP-F-2025/assessment-engine/internal/selector"
	"github.com/SAP-F-2025/assessment-engine/internal/services"
	"github.com/SAP-F-2025/assessment-engine/internal/utils"
	"github.com/SAP-F-2025/assessment-engine/internal/validator"
	"github.com/SAP-F-2025/assessment-engine/pkg"
)

// app holds every long-lived dependency of a process.
type app struct {
	cfg       *config.Config
	logger    *slog.Logger
	db        *gorm.DB
	redis     *redis.Client
	repo      repositories.Repository
	publisher events.EventPublisher
	sink      *events.AsyncSelectionSink
	services  services.ServiceManager
}

func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}
	logger := utils.NewSlog(cfg.IsProduction())
	a := &app{cfg: cfg, logger: logger}

	if a.db, err = pkg.InitDatabase(cfg); err != nil {
		return nil, err
	}
	a.repo = postgres.NewRepository(a.db)

	cacheManager := cache.NewNoopCacheManager()
	if a.redis, err = pkg.NewRedisClient(ctx, cfg); err != nil {
		logger.Warn("Redis unavailable, caching disabled", "error", err)
	} else {
		cacheManager = cache.NewCacheManager(a.redis, logger)
	}

	if a.publisher, err = cfg.Events.CreateEventPublisher(logger); err != nil {
		a.close()
		return nil, fmt.Errorf("failed to create event publisher: %w", err)
	}

	a.sink = events.NewAsyncSelectionSink(cfg.Engine.SelectionLogBuffer, a.repo.SelectionLog(), a.publisher, logger)
	a.sink.Start(context.WithoutCancel(ctx))

	selectorConfig := selector.DefaultConfig()
	selectorConfig.SkipValue = cfg.Engine.AdaptiveSkipValue
	sel := selector.New(
		services.NewQuestionStore(a.repo.Question()),
		services.NewTopicMetadata(a.repo.Topic(), cacheManager.Topic, cfg.Engine.TopicCacheTTL, cfg.Engine.DefaultDataLevelFactor, logger),
		services.NewUserStats(a.repo.UserStat()),
		logger,
		selector.WithLogSink(a.sink),
		selector.WithConfig(selectorConfig),
	)

	gradingConfig := services.DefaultGradingConfig()
	gradingConfig.PickingAbilityThreshold = cfg.Engine.PickingAbilityThreshold

	a.services = services.NewServiceManager(a.repo, sel, cacheManager, a.publisher, logger, validator.New(), services.ManagerConfig{
		Selection: services.SelectionConfig{RecalibrationMinAttempts: cfg.Engine.RecalibrationMinAttempts},
		Grading:   gradingConfig,
	})
	return a, nil
}

// close waits for background grading, drains the selection log buffer and
// releases connections.
func (a *app) close() {
	if a.services != nil {
		a.services.Grading().Wait()
	}
	if a.sink != nil {
		a.sink.Close()
		if dropped := a.sink.Dropped(); dropped > 0 {
			a.logger.Warn("Selection logs dropped", "count", dropped)
		}
	}
	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil {
			a.logger.Warn("Failed to close event publisher", "error", err)
		}
	}
	if a.redis != nil {
		_ = a.redis.Close()
	}
	if a.db != nil {
		if sqlDB, err := a.db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
}
