package imaging

import (
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/shotbox/shotbox/internal/domain/services"
)

// Processor reads metadata from stored image files. Dimensions come
// from the image header when the format is decodable; webp and heic
// headers are not parsed, so those report zero dimensions and the
// detector falls back to filename signals.
type Processor struct {
	basePath string
}

func NewProcessor(basePath string) *Processor {
	return &Processor{basePath: basePath}
}

func (p *Processor) Metadata(ctx context.Context, path string) (*services.ImageMetadata, error) {
	fullPath := filepath.Join(p.basePath, path)

	info, err := os.Stat(fullPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat image: %w", err)
	}

	meta := &services.ImageMetadata{
		FileSize: info.Size(),
		MimeType: mimeTypeFor(path),
	}

	file, err := os.Open(fullPath)
	if err != nil {
		return meta, nil
	}
	defer file.Close()

	if cfg, _, err := image.DecodeConfig(file); err == nil {
		meta.Width = cfg.Width
		meta.Height = cfg.Height
	}

	return meta, nil
}

// Thumbnail returns the serving URL for the original file. Actual
// downscaling would slot in here once an image-resize dependency is
// picked up.
func (p *Processor) Thumbnail(ctx context.Context, path string) (string, error) {
	return fmt.Sprintf("/api/v1/files/%s", path), nil
}

func mimeTypeFor(path string) string {
	switch strings.ToLower(strings.TrimPrefix(filepath.Ext(path), ".")) {
	case "png":
		return "image/png"
	case "jpg", "jpeg":
		return "image/jpeg"
	case "webp":
		return "image/webp"
	case "heic":
		return "image/heic"
	default:
		return "application/octet-stream"
	}
}
