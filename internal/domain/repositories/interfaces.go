package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/shotbox/shotbox/internal/infrastructure/database/models"
)

// Sentinel errors every implementation must return so services can
// translate storage outcomes without knowing the backend.
var (
	// ErrNotFound means the row does not exist or is soft-deleted.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate means a unique constraint rejected the write.
	ErrDuplicate = errors.New("duplicate record")
)

// Core repository interfaces for clean architecture

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type ScreenshotRepository interface {
	Create(ctx context.Context, screenshot *models.Screenshot) error
	// GetByID returns the screenshot with its tags and OCR record.
	// Soft-deleted screenshots are reported as not found.
	GetByID(ctx context.Context, id uuid.UUID) (*models.Screenshot, error)
	Update(ctx context.Context, screenshot *models.Screenshot) error
	// List applies the canonical filter and returns the page of matches
	// plus the total match count ignoring pagination.
	List(ctx context.Context, userID uuid.UUID, filter ScreenshotFilter) ([]models.Screenshot, int64, error)
	SemanticSearch(ctx context.Context, userID uuid.UUID, embedding []float32, limit int) ([]models.Screenshot, error)
	// AttachTags creates the requested associations, silently skipping
	// pairs that already exist.
	AttachTags(ctx context.Context, screenshotID uuid.UUID, tagIDs []uuid.UUID) error
	// DetachTag removes one association and reports whether it existed.
	DetachTag(ctx context.Context, screenshotID, tagID uuid.UUID) (bool, error)
	MarkProcessed(ctx context.Context, id uuid.UUID) error
	ListUnprocessed(ctx context.Context, limit int) ([]models.Screenshot, error)
	SoftDelete(ctx context.Context, id uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type TagRepository interface {
	Create(ctx context.Context, tag *models.Tag) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Tag, error)
	GetByName(ctx context.Context, userID uuid.UUID, name string) (*models.Tag, error)
	Update(ctx context.Context, tag *models.Tag) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]TagWithCount, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type OcrRepository interface {
	GetByScreenshotID(ctx context.Context, screenshotID uuid.UUID) (*models.OcrContent, error)
	// Upsert creates the record, or overwrites text, confidence,
	// language, boxes and processed time when one already exists.
	Upsert(ctx context.Context, content *models.OcrContent) error
	Delete(ctx context.Context, screenshotID uuid.UUID) error
}

// SortField is a whitelisted screenshot sort column.
type SortField string

const (
	SortByCreatedAt SortField = "createdAt"
	SortByTakenAt   SortField = "takenAt"
	SortByUpdatedAt SortField = "updatedAt"
)

// SortOrder is a sort direction.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// ScreenshotFilter is the canonical, fully-defaulted search filter
// produced by the query model. A zero TextQuery or empty TagIDs leaves
// that dimension unfiltered.
type ScreenshotFilter struct {
	TextQuery string
	TagIDs    []uuid.UUID
	DateFrom  *time.Time
	DateTo    *time.Time
	Limit     int
	Offset    int
	SortBy    SortField
	SortOrder SortOrder
}

// TagWithCount pairs a tag with the number of live screenshots it is
// attached to.
type TagWithCount struct {
	models.Tag
	ScreenshotCount int64 `json:"screenshot_count"`
}
