package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/shotbox/shotbox/internal/domain/repositories"
	"github.com/shotbox/shotbox/internal/infrastructure/database"
	"github.com/shotbox/shotbox/internal/infrastructure/database/models"
)

type OcrRepository struct {
	db *database.DB
}

func NewOcrRepository(db *database.DB) repositories.OcrRepository {
	return &OcrRepository{db: db}
}

func (r *OcrRepository) GetByScreenshotID(ctx context.Context, screenshotID uuid.UUID) (*models.OcrContent, error) {
	var content models.OcrContent
	err := r.db.WithContext(ctx).Where("screenshot_id = ?", screenshotID).First(&content).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repositories.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get OCR content: %w", err)
	}
	return &content, nil
}

// Upsert keys on screenshot_id: at most one OCR record exists per
// screenshot, and a re-run overwrites the extracted fields in place.
func (r *OcrRepository) Upsert(ctx context.Context, content *models.OcrContent) error {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "screenshot_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"extracted_text", "language", "confidence_score",
				"bounding_boxes", "processed_at",
			}),
		}).
		Create(content).Error
	if err != nil {
		return fmt.Errorf("failed to upsert OCR content: %w", err)
	}
	return nil
}

func (r *OcrRepository) Delete(ctx context.Context, screenshotID uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("screenshot_id = ?", screenshotID).
		Delete(&models.OcrContent{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete OCR content: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return repositories.ErrNotFound
	}
	return nil
}
