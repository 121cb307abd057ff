package cmd

import (
	"context"
	"errors"
	"log/slog"

	"github.com/SAP-F-2025/suggestibility-service/internal/cache"
	"github.com/SAP-F-2025/suggestibility-service/internal/catalog"
	"github.com/SAP-F-2025/suggestibility-service/internal/config"
	"github.com/SAP-F-2025/suggestibility-service/internal/events"
	"github.com/SAP-F-2025/suggestibility-service/internal/metrics"
	"github.com/SAP-F-2025/suggestibility-service/internal/repositories"
	repopg "github.com/SAP-F-2025/suggestibility-service/internal/repositories/postgres"
	"github.com/SAP-F-2025/suggestibility-service/internal/services"
	"github.com/SAP-F-2025/suggestibility-service/internal/utils"
	"github.com/SAP-F-2025/suggestibility-service/internal/validator"
	"github.com/SAP-F-2025/suggestibility-service/pkg"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// runtime is everything a command needs once configuration is loaded
type runtime struct {
	cfg    *config.Config
	logger utils.Logger

	db        *gorm.DB
	repo      repositories.Repository
	redis     *redis.Client
	zap       *zap.Logger
	publisher events.EventPublisher
	metrics   *metrics.Metrics
	services  services.ServiceManager
}

func loadConfig() (*config.Config, utils.Logger, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, err
	}
	logger := utils.NewLogger(cfg.Environment)
	slog.SetDefault(logger.Slog())
	return cfg, logger, nil
}

// newRuntime connects to the database and wires the services. Redis is
// optional: without it the service runs uncached.
func newRuntime(ctx context.Context, withPublisher bool) (*runtime, error) {
	cfg, logger, err := loadConfig()
	if err != nil {
		return nil, err
	}
	rt := &runtime{cfg: cfg, logger: logger}

	rt.db, err = pkg.InitDatabase(cfg)
	if err != nil {
		return nil, err
	}
	rt.repo = repopg.NewRepository(rt.db)

	cacheService := cache.NewNoopCache()
	if cfg.Cache.Enabled {
		if rt.zap, err = pkg.NewZapLogger(cfg); err != nil {
			rt.Close()
			return nil, err
		}
		rt.redis, err = pkg.NewRedisClient(ctx, cfg)
		if err != nil {
			logger.Warn("Redis unavailable, running without cache", "error", err)
		} else {
			cacheService = cache.NewRedisCache(rt.redis, rt.zap, cfg.Cache.Prefix)
		}
	}

	rt.publisher = events.NewMockEventPublisher(logger.Slog())
	if withPublisher {
		rt.publisher, err = cfg.Events.CreateEventPublisher(logger.Slog())
		if err != nil {
			rt.Close()
			return nil, err
		}
	}

	var recorder metrics.Recorder = metrics.NewNoop()
	if cfg.Metrics.Enabled {
		rt.metrics = metrics.New(nil)
		recorder = rt.metrics
	}

	rt.services = services.NewServiceManager(services.Dependencies{
		Repo:      rt.repo,
		Catalogs:  catalog.NewStore(rt.repo.Questionnaire(), cacheService, logger.Slog(), cfg.Cache.TTL),
		Cache:     cacheService,
		Publisher: rt.publisher,
		Metrics:   recorder,
		Validator: validator.New(),
		Logger:    logger.Slog(),
		StyleTTL:  cfg.Cache.TTL,
	})
	return rt, nil
}

func (rt *runtime) Close() error {
	var errs []error
	if rt.publisher != nil {
		errs = append(errs, rt.publisher.Close())
	}
	if rt.redis != nil {
		errs = append(errs, rt.redis.Close())
	}
	if rt.zap != nil {
		_ = rt.zap.Sync()
	}
	if rt.db != nil {
		errs = append(errs, pkg.CloseDatabase(rt.db))
	}
	return errors.Join(errs...)
}
