package ocr

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/shotbox/shotbox/internal/domain/services"
)

// StubEngine is the development OCR engine. It produces deterministic
// text from the file name so search behavior can be exercised without
// a vision API key. A production deployment swaps in a real engine
// behind the same interface.
type StubEngine struct {
	basePath string
}

func NewStubEngine(basePath string) *StubEngine {
	return &StubEngine{basePath: basePath}
}

func (e *StubEngine) Recognize(ctx context.Context, imagePath string) (*services.OcrResult, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	fullPath := filepath.Join(e.basePath, imagePath)
	if _, err := os.Stat(fullPath); err != nil {
		return nil, fmt.Errorf("image not readable: %w", err)
	}

	base := filepath.Base(imagePath)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	text := fmt.Sprintf("stub ocr output for %s", strings.ReplaceAll(name, "_", " "))

	confidence := 0.99
	return &services.OcrResult{
		Text:       text,
		Confidence: &confidence,
		Language:   "en",
	}, nil
}
