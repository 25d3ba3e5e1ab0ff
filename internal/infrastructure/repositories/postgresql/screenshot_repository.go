package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/shotbox/shotbox/internal/domain/repositories"
	"github.com/shotbox/shotbox/internal/infrastructure/database"
	"github.com/shotbox/shotbox/internal/infrastructure/database/models"
)

// sortColumns maps the API sort fields onto real columns. Anything
// outside this map never reaches the ORDER BY clause.
var sortColumns = map[repositories.SortField]string{
	repositories.SortByCreatedAt: "created_at",
	repositories.SortByTakenAt:   "taken_at",
	repositories.SortByUpdatedAt: "updated_at",
}

type ScreenshotRepository struct {
	db *database.DB
}

func NewScreenshotRepository(db *database.DB) repositories.ScreenshotRepository {
	return &ScreenshotRepository{db: db}
}

func (r *ScreenshotRepository) Create(ctx context.Context, screenshot *models.Screenshot) error {
	if err := r.db.WithContext(ctx).Create(screenshot).Error; err != nil {
		return fmt.Errorf("failed to create screenshot: %w", err)
	}
	return nil
}

func (r *ScreenshotRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Screenshot, error) {
	var screenshot models.Screenshot
	err := r.db.WithContext(ctx).
		Preload("Tags").
		Preload("Ocr").
		Where("id = ? AND is_deleted = ?", id, false).
		First(&screenshot).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repositories.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get screenshot: %w", err)
	}
	return &screenshot, nil
}

func (r *ScreenshotRepository) Update(ctx context.Context, screenshot *models.Screenshot) error {
	result := r.db.WithContext(ctx).Save(screenshot)
	if result.Error != nil {
		return fmt.Errorf("failed to update screenshot: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return repositories.ErrNotFound
	}
	return nil
}

// List executes the canonical filter: soft-deleted rows are always
// excluded, the text / tag / date dimensions are ANDed together, and
// within the date dimension taken_at and created_at are ORed. Ordering
// is the canonical sort column with an id tiebreak so pagination is
// stable across calls.
func (r *ScreenshotRepository) List(ctx context.Context, userID uuid.UUID, filter repositories.ScreenshotFilter) ([]models.Screenshot, int64, error) {
	var screenshots []models.Screenshot
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Screenshot{}).
		Where("user_id = ? AND is_deleted = ?", userID, false)

	if filter.TextQuery != "" {
		// Substring match over the joined OCR text. Screenshots with
		// no OCR record never match a non-empty query. The query text
		// is escaped so LIKE metacharacters match literally.
		pattern := "%" + escapeLike(strings.ToLower(filter.TextQuery)) + "%"
		query = query.Where(
			"id IN (?)",
			r.db.WithContext(ctx).Model(&models.OcrContent{}).
				Select("screenshot_id").
				Where("LOWER(extracted_text) LIKE ? ESCAPE '\\'", pattern),
		)
	}

	if len(filter.TagIDs) > 0 {
		// OR semantics: any one matching association qualifies.
		query = query.Where(
			"id IN (?)",
			r.db.WithContext(ctx).Model(&models.ScreenshotTag{}).
				Select("screenshot_id").
				Where("tag_id IN ?", filter.TagIDs),
		)
	}

	if cond, args := dateRangeCondition(filter.DateFrom, filter.DateTo); cond != "" {
		query = query.Where(cond, args...)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count screenshots: %w", err)
	}

	column := sortColumns[filter.SortBy]
	if column == "" {
		column = "created_at"
	}
	direction := "DESC"
	if filter.SortOrder == repositories.SortAsc {
		direction = "ASC"
	}
	orderBy := fmt.Sprintf("%s %s, id ASC", column, direction)

	err := query.Preload("Tags").Preload("Ocr").
		Order(orderBy).Offset(filter.Offset).Limit(filter.Limit).
		Find(&screenshots).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list screenshots: %w", err)
	}

	return screenshots, total, nil
}

// escapeLike makes %, _ and the escape character match literally
// inside a LIKE pattern.
func escapeLike(s string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return replacer.Replace(s)
}

// dateRangeCondition builds the disjunctive range check: a screenshot
// matches when either taken_at or created_at falls inside the bounds.
// A missing bound leaves that side unbounded.
func dateRangeCondition(from, to *time.Time) (string, []interface{}) {
	if from == nil && to == nil {
		return "", nil
	}

	var side []string
	var sideArgs []interface{}
	if from != nil {
		side = append(side, ">= ?")
		sideArgs = append(sideArgs, *from)
	}
	if to != nil {
		side = append(side, "<= ?")
		sideArgs = append(sideArgs, *to)
	}

	var parts []string
	var args []interface{}
	for _, column := range []string{"taken_at", "created_at"} {
		var checks []string
		for _, op := range side {
			checks = append(checks, column+" "+op)
		}
		parts = append(parts, "("+strings.Join(checks, " AND ")+")")
		args = append(args, sideArgs...)
	}

	return "(" + strings.Join(parts, " OR ") + ")", args
}

// SemanticSearch will rank screenshots by OCR-embedding similarity.
// Until an embedding source is wired in it falls back to the caller's
// regular listing path with an empty filter.
func (r *ScreenshotRepository) SemanticSearch(ctx context.Context, userID uuid.UUID, embedding []float32, limit int) ([]models.Screenshot, error) {
	if limit <= 0 {
		limit = 20
	}
	screenshots, _, err := r.List(ctx, userID, repositories.ScreenshotFilter{
		Limit:     limit,
		SortBy:    repositories.SortByCreatedAt,
		SortOrder: repositories.SortDesc,
	})
	return screenshots, err
}

// AttachTags inserts the associations, relying on the composite
// primary key to make re-attachment a no-op.
func (r *ScreenshotRepository) AttachTags(ctx context.Context, screenshotID uuid.UUID, tagIDs []uuid.UUID) error {
	if len(tagIDs) == 0 {
		return nil
	}

	links := make([]models.ScreenshotTag, 0, len(tagIDs))
	for _, tagID := range tagIDs {
		links = append(links, models.ScreenshotTag{
			ScreenshotID: screenshotID,
			TagID:        tagID,
		})
	}

	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&links).Error
	if err != nil {
		return fmt.Errorf("failed to attach tags: %w", err)
	}
	return nil
}

func (r *ScreenshotRepository) DetachTag(ctx context.Context, screenshotID, tagID uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("screenshot_id = ? AND tag_id = ?", screenshotID, tagID).
		Delete(&models.ScreenshotTag{})
	if result.Error != nil {
		return false, fmt.Errorf("failed to detach tag: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}

func (r *ScreenshotRepository) MarkProcessed(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Model(&models.Screenshot{}).
		Where("id = ?", id).
		Update("ai_processed", true)
	if result.Error != nil {
		return fmt.Errorf("failed to mark screenshot processed: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return repositories.ErrNotFound
	}
	return nil
}

func (r *ScreenshotRepository) ListUnprocessed(ctx context.Context, limit int) ([]models.Screenshot, error) {
	var screenshots []models.Screenshot
	err := r.db.WithContext(ctx).
		Where("ai_processed = ? AND is_deleted = ?", false, false).
		Order("created_at ASC").
		Limit(limit).
		Find(&screenshots).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list unprocessed screenshots: %w", err)
	}
	return screenshots, nil
}

func (r *ScreenshotRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	now := time.Now().UTC()
	result := r.db.WithContext(ctx).Model(&models.Screenshot{}).
		Where("id = ? AND is_deleted = ?", id, false).
		Updates(map[string]interface{}{
			"is_deleted": true,
			"deleted_at": now,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to soft delete screenshot: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return repositories.ErrNotFound
	}
	return nil
}

func (r *ScreenshotRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.Screenshot{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete screenshot: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return repositories.ErrNotFound
	}
	return nil
}
