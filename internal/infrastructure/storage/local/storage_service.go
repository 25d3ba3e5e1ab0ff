package local

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/shotbox/shotbox/internal/domain/services"
)

// StorageService writes uploads to the local filesystem under one
// directory per user.
type StorageService struct {
	basePath string
}

func NewStorageService(basePath string) *StorageService {
	return &StorageService{
		basePath: basePath,
	}
}

func (s *StorageService) Store(ctx context.Context, params services.StorageParams) (string, error) {
	userDir := filepath.Join(s.basePath, params.UserID.String())
	if err := os.MkdirAll(userDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create user directory: %w", err)
	}

	// Stored name is a fresh uuid; the original filename only survives
	// in the screenshot record.
	fileExt := filepath.Ext(params.Filename)
	fileName := fmt.Sprintf("%s%s", uuid.New().String(), fileExt)
	filePath := filepath.Join(userDir, fileName)

	file, err := os.Create(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	if _, err := io.Copy(file, params.FileReader); err != nil {
		return "", fmt.Errorf("failed to write file content: %w", err)
	}

	relativePath := filepath.Join(params.UserID.String(), fileName)
	return relativePath, nil
}

func (s *StorageService) Get(ctx context.Context, path string) (io.ReadCloser, error) {
	fullPath := filepath.Join(s.basePath, path)

	file, err := os.Open(fullPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}

	return file, nil
}

func (s *StorageService) Delete(ctx context.Context, path string) error {
	fullPath := filepath.Join(s.basePath, path)

	if err := os.Remove(fullPath); err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}

	return nil
}

// GetPublicURL returns the application-served URL for a stored file.
func (s *StorageService) GetPublicURL(filePath string) string {
	return fmt.Sprintf("/api/v1/files/%s", filePath)
}

// FullPath resolves a stored relative path against the base directory,
// for components that read the file directly (OCR, thumbnailing).
func (s *StorageService) FullPath(path string) string {
	return filepath.Join(s.basePath, path)
}
