package services

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/shotbox/shotbox/internal/domain/repositories"
	"github.com/shotbox/shotbox/internal/infrastructure/database/models"
)

// TagService owns tag lifecycle. Names are unique per user; deleting a
// tag removes every association it participates in.
type TagService struct {
	tagRepo repositories.TagRepository
}

func NewTagService(tagRepo repositories.TagRepository) *TagService {
	return &TagService{tagRepo: tagRepo}
}

// CreateTag creates a tag for a user. The name is trimmed and must be
// 1-50 characters; color, when present, is a #RRGGBB code.
func (s *TagService) CreateTag(ctx context.Context, userID uuid.UUID, name, color string, isSystemTag bool) (*models.Tag, error) {
	name = strings.TrimSpace(name)
	if name == "" || len(name) > 50 {
		return nil, &ValidationError{Field: "name", Message: "must be 1-50 characters"}
	}
	if color != "" && !validHexColor(color) {
		return nil, &ValidationError{Field: "color", Message: "must be a #RRGGBB code"}
	}

	tag := &models.Tag{
		UserID:      userID,
		Name:        name,
		Color:       color,
		IsSystemTag: isSystemTag,
	}

	if err := s.tagRepo.Create(ctx, tag); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, ErrTagExists
		}
		return nil, err
	}
	return tag, nil
}

// GetTag returns one tag owned by the user.
func (s *TagService) GetTag(ctx context.Context, userID, tagID uuid.UUID) (*models.Tag, error) {
	tag, err := s.tagRepo.GetByID(ctx, tagID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrTagNotFound
		}
		return nil, err
	}
	if tag.UserID != userID {
		return nil, ErrTagNotFound
	}
	return tag, nil
}

// ListTags returns the user's tags with live screenshot counts.
func (s *TagService) ListTags(ctx context.Context, userID uuid.UUID) ([]repositories.TagWithCount, error) {
	return s.tagRepo.ListByUser(ctx, userID)
}

// UpdateTag renames and/or recolors a tag.
func (s *TagService) UpdateTag(ctx context.Context, userID, tagID uuid.UUID, name, color *string) (*models.Tag, error) {
	tag, err := s.GetTag(ctx, userID, tagID)
	if err != nil {
		return nil, err
	}

	if name != nil {
		trimmed := strings.TrimSpace(*name)
		if trimmed == "" || len(trimmed) > 50 {
			return nil, &ValidationError{Field: "name", Message: "must be 1-50 characters"}
		}
		tag.Name = trimmed
	}
	if color != nil {
		if *color != "" && !validHexColor(*color) {
			return nil, &ValidationError{Field: "color", Message: "must be a #RRGGBB code"}
		}
		tag.Color = *color
	}

	if err := s.tagRepo.Update(ctx, tag); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, ErrTagExists
		}
		return nil, err
	}
	return tag, nil
}

// DeleteTag removes the tag and its associations.
func (s *TagService) DeleteTag(ctx context.Context, userID, tagID uuid.UUID) error {
	if _, err := s.GetTag(ctx, userID, tagID); err != nil {
		return err
	}
	if err := s.tagRepo.Delete(ctx, tagID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrTagNotFound
		}
		return err
	}
	return nil
}

func validHexColor(color string) bool {
	if len(color) != 7 || color[0] != '#' {
		return false
	}
	for _, c := range color[1:] {
		switch {
		case c >= '0' && c <= '9':
		case c >= 'a' && c <= 'f':
		case c >= 'A' && c <= 'F':
		default:
			return false
		}
	}
	return true
}
