package services

import (
	"context"
	"fmt"

	"github.com/shotbox/shotbox/internal/app/config"
	"github.com/shotbox/shotbox/internal/domain/services"
	"github.com/shotbox/shotbox/internal/infrastructure/cache"
	"github.com/shotbox/shotbox/internal/infrastructure/database"
	"github.com/shotbox/shotbox/internal/infrastructure/imaging"
	"github.com/shotbox/shotbox/internal/infrastructure/ocr"
	"github.com/shotbox/shotbox/internal/infrastructure/repositories/postgresql"
	"github.com/shotbox/shotbox/internal/infrastructure/storage/local"
	"github.com/shotbox/shotbox/pkg/logger"
)

// ServiceManager wires infrastructure and domain services together.
type ServiceManager struct {
	Config *config.Config

	// Infrastructure
	DB           *database.DB
	Repositories *postgresql.Repositories
	CacheService services.CacheService

	// Domain services
	ScreenshotService *services.ScreenshotService
	TagService        *services.TagService
	OcrService        *services.OcrService
}

// NewServiceManager creates a new service manager. An unreachable
// Redis degrades the OCR claim to best-effort instead of blocking
// startup.
func NewServiceManager(cfg *config.Config, db *database.DB, log *logger.Logger) (*ServiceManager, error) {
	repos := postgresql.NewRepositories(db)

	var cacheService services.CacheService
	if cfg.Redis.URL != "" {
		cs, err := cache.CreateCacheService(cfg.Redis.URL)
		if err != nil {
			log.Warn("Redis unavailable, continuing without OCR claims", "error", err)
		} else {
			cacheService = cs
		}
	}

	storageService := local.NewStorageService(cfg.Storage.Path)
	imageProcessor := imaging.NewProcessor(cfg.Storage.Path)
	ocrEngine := ocr.NewStubEngine(cfg.Storage.Path)

	screenshotService := services.NewScreenshotService(
		repos.ScreenshotRepo,
		repos.TagRepo,
		storageService,
		imageProcessor,
		services.ScreenshotServiceConfig{
			MaxFileSize:       cfg.Limits.MaxFileSize,
			AllowedExtensions: cfg.Limits.AllowedExtensions,
		},
	)

	tagService := services.NewTagService(repos.TagRepo)

	ocrService := services.NewOcrService(
		repos.ScreenshotRepo,
		repos.OcrRepo,
		ocrEngine,
		cacheService,
		services.OcrServiceConfig{
			Timeout:  cfg.OCR.Timeout,
			ClaimTTL: cfg.OCR.ClaimTTL,
		},
	)

	sm := &ServiceManager{
		Config:            cfg,
		DB:                db,
		Repositories:      repos,
		CacheService:      cacheService,
		ScreenshotService: screenshotService,
		TagService:        tagService,
		OcrService:        ocrService,
	}

	return sm, nil
}

// HealthCheck verifies the backing stores.
func (sm *ServiceManager) HealthCheck() error {
	if err := sm.Repositories.HealthCheck(context.Background()); err != nil {
		return fmt.Errorf("database health check failed: %w", err)
	}

	if sm.CacheService != nil {
		if err := sm.CacheService.Ping(context.Background()); err != nil {
			return fmt.Errorf("redis health check failed: %w", err)
		}
	}

	return nil
}

// Close gracefully shuts down all services
func (sm *ServiceManager) Close() error {
	if sm.CacheService != nil {
		if err := sm.CacheService.Close(); err != nil {
			return fmt.Errorf("failed to close cache service: %w", err)
		}
	}

	if err := sm.DB.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}

	return nil
}
