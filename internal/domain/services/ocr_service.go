package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/shotbox/shotbox/internal/domain/repositories"
	"github.com/shotbox/shotbox/internal/infrastructure/database/models"
)

// OcrServiceConfig holds configuration for the OCR orchestrator.
type OcrServiceConfig struct {
	// Timeout bounds the external OCR call. On timeout the screenshot
	// stays unprocessed so a retry can be triggered.
	Timeout time.Duration
	// ClaimTTL bounds the per-screenshot in-flight claim.
	ClaimTTL time.Duration
}

// OcrService orchestrates at-most-once-unless-forced OCR runs per
// screenshot: Unprocessed -> Processing -> Processed.
type OcrService struct {
	screenshotRepo repositories.ScreenshotRepository
	ocrRepo        repositories.OcrRepository
	engine         OcrEngine
	cache          CacheService
	config         OcrServiceConfig
}

// NewOcrService creates the orchestrator. cache may be nil; the
// in-flight claim is then skipped and concurrent triggers may both run
// the engine, which is safe because the upsert is idempotent.
func NewOcrService(
	screenshotRepo repositories.ScreenshotRepository,
	ocrRepo repositories.OcrRepository,
	engine OcrEngine,
	cache CacheService,
	config OcrServiceConfig,
) *OcrService {
	if config.Timeout <= 0 {
		config.Timeout = 30 * time.Second
	}
	if config.ClaimTTL <= 0 {
		config.ClaimTTL = time.Minute
	}
	return &OcrService{
		screenshotRepo: screenshotRepo,
		ocrRepo:        ocrRepo,
		engine:         engine,
		cache:          cache,
		config:         config,
	}
}

// Trigger runs OCR for a screenshot. With force=false an existing
// record is returned untouched and the engine is not invoked. With
// force=true the engine always runs and the stored record is
// overwritten.
func (s *OcrService) Trigger(ctx context.Context, screenshotID uuid.UUID, force bool) (*models.OcrContent, error) {
	if !force {
		existing, err := s.ocrRepo.GetByScreenshotID(ctx, screenshotID)
		if err == nil {
			return existing, nil
		}
		if !errors.Is(err, repositories.ErrNotFound) {
			return nil, err
		}
	}

	screenshot, err := s.screenshotRepo.GetByID(ctx, screenshotID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrScreenshotNotFound
		}
		return nil, err
	}

	release, err := s.claim(ctx, screenshotID)
	if err != nil {
		return nil, err
	}
	defer release()

	runCtx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	result, err := s.engine.Recognize(runCtx, screenshot.OriginalFilePath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOcrFailed, err)
	}

	content := &models.OcrContent{
		ScreenshotID:    screenshotID,
		ExtractedText:   result.Text,
		Language:        result.Language,
		ConfidenceScore: result.Confidence,
		ProcessedAt:     time.Now().UTC(),
	}
	if len(result.BoundingBoxes) > 0 {
		content.BoundingBoxes = models.JSONB{"boxes": result.BoundingBoxes}
	}

	if err := s.ocrRepo.Upsert(ctx, content); err != nil {
		return nil, err
	}

	if err := s.screenshotRepo.MarkProcessed(ctx, screenshotID); err != nil {
		return nil, err
	}

	return s.ocrRepo.GetByScreenshotID(ctx, screenshotID)
}

// claim takes a best-effort per-screenshot lock so concurrent triggers
// do not both pay for the engine call. Losing the race is not an
// error: the duplicate run converges on the same upserted record.
func (s *OcrService) claim(ctx context.Context, screenshotID uuid.UUID) (func(), error) {
	if s.cache == nil {
		return func() {}, nil
	}

	key := fmt.Sprintf(OcrClaimKeyPattern, screenshotID)
	acquired, err := s.cache.SetNX(ctx, key, "1", s.config.ClaimTTL)
	if err != nil || !acquired {
		// Cache trouble must not block OCR; proceed unclaimed.
		return func() {}, nil
	}
	return func() {
		_ = s.cache.Delete(context.WithoutCancel(ctx), key)
	}, nil
}
