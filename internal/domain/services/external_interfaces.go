package services

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"
)

// External capabilities the domain services depend on.

// StorageService stores and retrieves the raw image files.
type StorageService interface {
	Store(ctx context.Context, params StorageParams) (string, error)
	Get(ctx context.Context, path string) (io.ReadCloser, error)
	Delete(ctx context.Context, path string) error
}

// StorageParams contains parameters for storing files
type StorageParams struct {
	UserID      uuid.UUID
	FileReader  io.Reader
	Filename    string
	ContentType string
	Size        int64
}

// OcrEngine extracts text from a stored image. Real implementations
// call a vision API; the orchestrator only owns the caching and
// state-transition behavior around the call.
type OcrEngine interface {
	Recognize(ctx context.Context, imagePath string) (*OcrResult, error)
}

// OcrResult is the raw output of an OCR run.
type OcrResult struct {
	Text          string
	Confidence    *float64
	Language      string
	BoundingBoxes []map[string]interface{}
}

// ImageProcessor supplies image metadata and thumbnails for stored
// files. Dimensions may be absent or fabricated; the detector and the
// search engine work either way.
type ImageProcessor interface {
	Metadata(ctx context.Context, path string) (*ImageMetadata, error)
	Thumbnail(ctx context.Context, path string) (string, error)
}

// ImageMetadata describes a stored image file.
type ImageMetadata struct {
	Width    int
	Height   int
	FileSize int64
	MimeType string
}

// CacheService is the subset of Redis operations the services use.
type CacheService interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, key string) error
	// SetNX acquires a short-lived claim; it reports false when the
	// key is already held.
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) (bool, error)
	Ping(ctx context.Context) error
	Close() error
}

// Cache key patterns for the application
const (
	// Per-screenshot OCR in-flight claim.
	OcrClaimKeyPattern = "ocr:claim:%s"
)
