package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/shotbox/shotbox/internal/domain/detection"
	"github.com/shotbox/shotbox/internal/domain/repositories"
	"github.com/shotbox/shotbox/internal/infrastructure/database/models"
)

// ScreenshotServiceConfig holds configuration for the screenshot service
type ScreenshotServiceConfig struct {
	MaxFileSize       int64
	AllowedExtensions []string
}

// ScreenshotService owns the screenshot lifecycle: upload with
// detection, filtered search, tag association, and soft deletion.
type ScreenshotService struct {
	screenshotRepo repositories.ScreenshotRepository
	tagRepo        repositories.TagRepository

	storage StorageService
	images  ImageProcessor
	config  ScreenshotServiceConfig
}

func NewScreenshotService(
	screenshotRepo repositories.ScreenshotRepository,
	tagRepo repositories.TagRepository,
	storage StorageService,
	images ImageProcessor,
	config ScreenshotServiceConfig,
) *ScreenshotService {
	return &ScreenshotService{
		screenshotRepo: screenshotRepo,
		tagRepo:        tagRepo,
		storage:        storage,
		images:         images,
		config:         config,
	}
}

// CreateScreenshotParams contains parameters for screenshot ingestion.
type CreateScreenshotParams struct {
	UserID     uuid.UUID
	FileName   string
	FileReader io.Reader
	FileSize   int64
	TakenAt    *time.Time
	DeviceType string
	SourceApp  string
	Metadata   map[string]interface{}
}

// CreateScreenshot stores the image, classifies it, and persists the
// record with the detection output in its metadata map. The
// classification is informational; a low-confidence image is stored
// all the same.
func (s *ScreenshotService) CreateScreenshot(ctx context.Context, params CreateScreenshotParams) (*models.Screenshot, error) {
	if params.FileSize > s.config.MaxFileSize {
		return nil, ErrFileTooLarge
	}
	if !s.allowedExtension(params.FileName) {
		return nil, ErrUnsupportedFormat
	}

	storedPath, err := s.storage.Store(ctx, StorageParams{
		UserID:     params.UserID,
		FileReader: params.FileReader,
		Filename:   params.FileName,
		Size:       params.FileSize,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to store image: %w", err)
	}

	var width, height int
	meta, err := s.images.Metadata(ctx, storedPath)
	if err == nil && meta != nil {
		width, height = meta.Width, meta.Height
	}

	result := detection.Classify(params.FileName, width, height)

	thumbnailURL, err := s.images.Thumbnail(ctx, storedPath)
	if err != nil {
		// A record without a thumbnail is still useful.
		thumbnailURL = ""
	}

	metadata := models.JSONB{}
	for k, v := range params.Metadata {
		metadata[k] = v
	}
	metadata[models.MetaIsScreenshot] = result.IsScreenshot
	metadata[models.MetaDetectionConfidence] = result.Confidence
	metadata[models.MetaDetectionReasons] = result.Reasons
	metadata[models.MetaFileName] = params.FileName
	if width > 0 && height > 0 {
		metadata[models.MetaAspectRatio] = float64(width) / float64(height)
	}

	screenshot := &models.Screenshot{
		UserID:           params.UserID,
		OriginalFilePath: storedPath,
		ThumbnailURL:     thumbnailURL,
		FileSize:         params.FileSize,
		TakenAt:          params.TakenAt,
		DeviceType:       params.DeviceType,
		SourceApp:        params.SourceApp,
		Metadata:         metadata,
	}
	if width > 0 && height > 0 {
		screenshot.Width = &width
		screenshot.Height = &height
	}

	if err := s.screenshotRepo.Create(ctx, screenshot); err != nil {
		return nil, err
	}
	return screenshot, nil
}

// SearchResult is one page of matching screenshots.
type SearchResult struct {
	Screenshots []models.Screenshot
	Total       int64
	HasMore     bool
}

// Search executes a canonical filter for one user. The repository
// guarantees deterministic ordering, so fetching consecutive pages
// with the same filter covers every match exactly once.
func (s *ScreenshotService) Search(ctx context.Context, userID uuid.UUID, filter repositories.ScreenshotFilter) (*SearchResult, error) {
	screenshots, total, err := s.screenshotRepo.List(ctx, userID, filter)
	if err != nil {
		return nil, err
	}

	return &SearchResult{
		Screenshots: screenshots,
		Total:       total,
		HasMore:     int64(filter.Offset+filter.Limit) < total,
	}, nil
}

// GetScreenshot returns one live screenshot with its relations.
func (s *ScreenshotService) GetScreenshot(ctx context.Context, id uuid.UUID) (*models.Screenshot, error) {
	screenshot, err := s.screenshotRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrScreenshotNotFound
		}
		return nil, err
	}
	return screenshot, nil
}

// DeleteScreenshot soft-deletes; the record disappears from listings
// and lookups but the row and its image remain.
func (s *ScreenshotService) DeleteScreenshot(ctx context.Context, id uuid.UUID) error {
	if err := s.screenshotRepo.SoftDelete(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrScreenshotNotFound
		}
		return err
	}
	return nil
}

// AttachTags attaches each tag to the screenshot as one batch.
// Already-attached pairs are skipped, so the call is idempotent.
func (s *ScreenshotService) AttachTags(ctx context.Context, screenshotID uuid.UUID, tagIDs []uuid.UUID) error {
	if len(tagIDs) == 0 {
		return &ValidationError{Field: "tag_ids", Message: "must not be empty"}
	}

	if _, err := s.screenshotRepo.GetByID(ctx, screenshotID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrScreenshotNotFound
		}
		return err
	}

	for _, tagID := range tagIDs {
		if _, err := s.tagRepo.GetByID(ctx, tagID); err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return fmt.Errorf("%w: %s", ErrTagNotFound, tagID)
			}
			return err
		}
	}

	return s.screenshotRepo.AttachTags(ctx, screenshotID, tagIDs)
}

// DetachTag removes one association.
func (s *ScreenshotService) DetachTag(ctx context.Context, screenshotID, tagID uuid.UUID) error {
	removed, err := s.screenshotRepo.DetachTag(ctx, screenshotID, tagID)
	if err != nil {
		return err
	}
	if !removed {
		return ErrAssociationNotFound
	}
	return nil
}

func (s *ScreenshotService) allowedExtension(fileName string) bool {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(fileName)), ".")
	for _, allowed := range s.config.AllowedExtensions {
		if ext == strings.ToLower(strings.TrimSpace(allowed)) {
			return true
		}
	}
	return false
}
