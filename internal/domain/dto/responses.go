package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/shotbox/shotbox/internal/infrastructure/database/models"
)

// TagSummary is the trimmed tag shape embedded in screenshot responses.
type TagSummary struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Color string    `json:"color,omitempty"`
}

// ScreenshotResponse is the API shape of a screenshot with its
// relations. Deleted screenshots are never serialized, so the soft
// delete fields are omitted.
type ScreenshotResponse struct {
	ID     uuid.UUID `json:"id"`
	UserID uuid.UUID `json:"user_id"`

	OriginalFilePath string `json:"original_file_path"`
	ThumbnailURL     string `json:"thumbnail_url,omitempty"`
	FullSizeURL      string `json:"full_size_url,omitempty"`

	FileSize int64 `json:"file_size"`
	Width    *int  `json:"width"`
	Height   *int  `json:"height"`

	TakenAt    *time.Time `json:"taken_at"`
	DeviceType string     `json:"device_type,omitempty"`
	SourceApp  string     `json:"source_app,omitempty"`

	AIProcessed bool         `json:"ai_processed"`
	Metadata    models.JSONB `json:"metadata,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Tags []TagSummary       `json:"tags"`
	Ocr  *models.OcrContent `json:"ocr,omitempty"`
}

// NewScreenshotResponse maps a model onto the API shape.
func NewScreenshotResponse(s *models.Screenshot) ScreenshotResponse {
	tags := make([]TagSummary, 0, len(s.Tags))
	for _, tag := range s.Tags {
		tags = append(tags, TagSummary{ID: tag.ID, Name: tag.Name, Color: tag.Color})
	}

	return ScreenshotResponse{
		ID:               s.ID,
		UserID:           s.UserID,
		OriginalFilePath: s.OriginalFilePath,
		ThumbnailURL:     s.ThumbnailURL,
		FullSizeURL:      s.FullSizeURL,
		FileSize:         s.FileSize,
		Width:            s.Width,
		Height:           s.Height,
		TakenAt:          s.TakenAt,
		DeviceType:       s.DeviceType,
		SourceApp:        s.SourceApp,
		AIProcessed:      s.AIProcessed,
		Metadata:         s.Metadata,
		CreatedAt:        s.CreatedAt,
		UpdatedAt:        s.UpdatedAt,
		Tags:             tags,
		Ocr:              s.Ocr,
	}
}

// NewScreenshotResponses maps a page of models.
func NewScreenshotResponses(screenshots []models.Screenshot) []ScreenshotResponse {
	responses := make([]ScreenshotResponse, 0, len(screenshots))
	for i := range screenshots {
		responses = append(responses, NewScreenshotResponse(&screenshots[i]))
	}
	return responses
}
