package services

import (
	"errors"
	"fmt"
)

// Domain error taxonomy. Handlers map these onto HTTP statuses:
// not-found sentinels to 404, ErrTagExists to 409, ValidationError to
// 400, ErrOcrFailed to 502.
var (
	ErrScreenshotNotFound  = errors.New("screenshot not found")
	ErrTagNotFound         = errors.New("tag not found")
	ErrAssociationNotFound = errors.New("tag is not attached to screenshot")
	ErrTagExists           = errors.New("tag already exists")
	ErrOcrFailed           = errors.New("ocr processing failed")
	ErrFileTooLarge        = errors.New("file exceeds maximum size limit")
	ErrUnsupportedFormat   = errors.New("unsupported image format")
)

// ValidationError reports malformed client input on a named field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}
