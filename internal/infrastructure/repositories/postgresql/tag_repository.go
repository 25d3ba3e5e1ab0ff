package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/shotbox/shotbox/internal/domain/repositories"
	"github.com/shotbox/shotbox/internal/infrastructure/database"
	"github.com/shotbox/shotbox/internal/infrastructure/database/models"
)

type TagRepository struct {
	db *database.DB
}

func NewTagRepository(db *database.DB) repositories.TagRepository {
	return &TagRepository{db: db}
}

func (r *TagRepository) Create(ctx context.Context, tag *models.Tag) error {
	if err := r.db.WithContext(ctx).Create(tag).Error; err != nil {
		if isDuplicateKeyError(err) {
			return fmt.Errorf("tag %q: %w", tag.Name, repositories.ErrDuplicate)
		}
		return fmt.Errorf("failed to create tag: %w", err)
	}
	return nil
}

func (r *TagRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Tag, error) {
	var tag models.Tag
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&tag).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repositories.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get tag: %w", err)
	}
	return &tag, nil
}

func (r *TagRepository) GetByName(ctx context.Context, userID uuid.UUID, name string) (*models.Tag, error) {
	var tag models.Tag
	err := r.db.WithContext(ctx).Where("user_id = ? AND name = ?", userID, name).First(&tag).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repositories.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get tag by name: %w", err)
	}
	return &tag, nil
}

func (r *TagRepository) Update(ctx context.Context, tag *models.Tag) error {
	result := r.db.WithContext(ctx).Save(tag)
	if result.Error != nil {
		if isDuplicateKeyError(result.Error) {
			return fmt.Errorf("tag %q: %w", tag.Name, repositories.ErrDuplicate)
		}
		return fmt.Errorf("failed to update tag: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return repositories.ErrNotFound
	}
	return nil
}

// ListByUser returns the user's tags with the count of live
// screenshots each one is attached to.
func (r *TagRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]repositories.TagWithCount, error) {
	var tags []models.Tag
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).
		Order("name ASC").Find(&tags).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}

	result := make([]repositories.TagWithCount, 0, len(tags))
	for _, tag := range tags {
		var count int64
		err := r.db.WithContext(ctx).Model(&models.ScreenshotTag{}).
			Joins("JOIN screenshots ON screenshots.id = screenshot_tags.screenshot_id").
			Where("screenshot_tags.tag_id = ? AND screenshots.is_deleted = ?", tag.ID, false).
			Count(&count).Error
		if err != nil {
			return nil, fmt.Errorf("failed to count tag usage: %w", err)
		}
		result = append(result, repositories.TagWithCount{Tag: tag, ScreenshotCount: count})
	}
	return result, nil
}

// Delete removes the tag and all of its screenshot associations in a
// single transaction.
func (r *TagRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("tag_id = ?", id).Delete(&models.ScreenshotTag{}).Error; err != nil {
			return fmt.Errorf("failed to remove tag associations: %w", err)
		}

		result := tx.Delete(&models.Tag{}, "id = ?", id)
		if result.Error != nil {
			return fmt.Errorf("failed to delete tag: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return repositories.ErrNotFound
		}
		return nil
	})
}

// isDuplicateKeyError recognizes unique-constraint violations from
// both PostgreSQL and SQLite.
func isDuplicateKeyError(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "SQLSTATE 23505")
}
