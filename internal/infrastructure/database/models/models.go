package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

// Metadata keys written by the screenshot detector on upload.
const (
	MetaIsScreenshot        = "isScreenshot"
	MetaDetectionConfidence = "detectionConfidence"
	MetaDetectionReasons    = "detectionReasons"
	MetaAspectRatio         = "aspectRatio"
	MetaFileName            = "fileName"
)

// JSONB is an open key-value extension map stored as a jsonb column on
// PostgreSQL and as serialized JSON text on SQLite.
type JSONB map[string]interface{}

func (j JSONB) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

func (j *JSONB) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*j = nil
		return nil
	case []byte:
		return json.Unmarshal(v, j)
	case string:
		return json.Unmarshal([]byte(v), j)
	default:
		return errors.New("unsupported type for JSONB scan")
	}
}

// User owns screenshots and tags. Authentication is handled outside
// this service; the record exists for referential integrity.
type User struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primary_key"`
	Email       string    `json:"email" gorm:"type:varchar(320);unique;not null"`
	DisplayName string    `json:"display_name" gorm:"type:varchar(100)"`
	CreatedAt   time.Time `json:"created_at" gorm:"not null"`

	// Relationships
	Screenshots []Screenshot `json:"screenshots,omitempty" gorm:"foreignKey:UserID"`
	Tags        []Tag        `json:"tags,omitempty" gorm:"foreignKey:UserID"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// Screenshot is a stored image record plus metadata. Detection output
// lives in the Metadata map; it is informational and never enforced.
type Screenshot struct {
	ID     uuid.UUID `json:"id" gorm:"type:uuid;primary_key"`
	UserID uuid.UUID `json:"user_id" gorm:"type:uuid;not null;index"`

	OriginalFilePath string `json:"original_file_path" gorm:"type:varchar(500);not null"`
	ThumbnailURL     string `json:"thumbnail_url,omitempty" gorm:"type:varchar(500)"`
	FullSizeURL      string `json:"full_size_url,omitempty" gorm:"type:varchar(500)"`

	FileSize int64 `json:"file_size" gorm:"not null"`
	Width    *int  `json:"width" gorm:"type:integer"`
	Height   *int  `json:"height" gorm:"type:integer"`

	TakenAt    *time.Time `json:"taken_at" gorm:"index"`
	DeviceType string     `json:"device_type,omitempty" gorm:"type:varchar(100)"`
	SourceApp  string     `json:"source_app,omitempty" gorm:"type:varchar(100)"`

	AIProcessed bool `json:"ai_processed" gorm:"column:ai_processed;not null;default:false"`

	IsDeleted bool       `json:"is_deleted" gorm:"not null;default:false;index"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`

	Metadata JSONB `json:"metadata,omitempty" gorm:"type:jsonb"`

	CreatedAt time.Time `json:"created_at" gorm:"not null;index"`
	UpdatedAt time.Time `json:"updated_at" gorm:"not null"`

	// Relationships
	User User        `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Tags []Tag       `json:"tags,omitempty" gorm:"many2many:screenshot_tags"`
	Ocr  *OcrContent `json:"ocr,omitempty" gorm:"foreignKey:ScreenshotID"`
}

func (s *Screenshot) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// Tag labels screenshots. Name is unique per user.
type Tag struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primary_key"`
	UserID      uuid.UUID `json:"user_id" gorm:"type:uuid;not null;uniqueIndex:idx_user_tag_name"`
	Name        string    `json:"name" gorm:"type:varchar(50);not null;uniqueIndex:idx_user_tag_name"`
	Color       string    `json:"color,omitempty" gorm:"type:varchar(7)"`
	IsSystemTag bool      `json:"is_system_tag" gorm:"not null;default:false"`
	CreatedAt   time.Time `json:"created_at" gorm:"not null"`

	// Relationships
	User        User         `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Screenshots []Screenshot `json:"screenshots,omitempty" gorm:"many2many:screenshot_tags"`
}

func (t *Tag) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// ScreenshotTag is the screenshot-to-tag association. The composite
// primary key doubles as the uniqueness constraint that makes attach
// idempotent. ConfidenceScore and IsAIGenerated are reserved for
// automated tagging.
type ScreenshotTag struct {
	ScreenshotID    uuid.UUID `json:"screenshot_id" gorm:"type:uuid;primaryKey"`
	TagID           uuid.UUID `json:"tag_id" gorm:"type:uuid;primaryKey"`
	ConfidenceScore *float64  `json:"confidence_score,omitempty" gorm:"type:decimal(3,2)"`
	IsAIGenerated   bool      `json:"is_ai_generated" gorm:"not null;default:false"`
	CreatedAt       time.Time `json:"created_at" gorm:"not null"`
}

func (ScreenshotTag) TableName() string {
	return "screenshot_tags"
}

// OcrContent holds the text extracted from a screenshot's image. At
// most one record exists per screenshot; re-running OCR overwrites it.
type OcrContent struct {
	ID           uuid.UUID `json:"id" gorm:"type:uuid;primary_key"`
	ScreenshotID uuid.UUID `json:"screenshot_id" gorm:"type:uuid;not null;uniqueIndex"`

	ExtractedText   string   `json:"extracted_text,omitempty" gorm:"type:text"`
	Language        string   `json:"language,omitempty" gorm:"type:varchar(10)"`
	ConfidenceScore *float64 `json:"confidence_score,omitempty" gorm:"type:decimal(3,2)"`
	BoundingBoxes   JSONB    `json:"bounding_boxes,omitempty" gorm:"type:jsonb"`

	// Reserved for semantic search over extracted text. Nullable so
	// rows without an embedding round-trip cleanly.
	Embedding *pgvector.Vector `json:"-" gorm:"type:vector(1536)"`

	ProcessedAt time.Time `json:"processed_at" gorm:"not null"`
}

func (o *OcrContent) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}

// GetAllModels returns all models for migration
func GetAllModels() []interface{} {
	return []interface{}{
		&User{},
		&Tag{},
		&Screenshot{},
		&ScreenshotTag{},
		&OcrContent{},
	}
}
