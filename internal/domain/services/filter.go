package services

import (
	"time"

	"github.com/google/uuid"

	"github.com/shotbox/shotbox/internal/domain/dto"
	"github.com/shotbox/shotbox/internal/domain/repositories"
)

// Pagination bounds for screenshot listing.
const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// NewScreenshotFilter canonicalizes a raw query into a fully-defaulted
// filter. Defaults: limit 20, offset 0, sort by createdAt descending.
// A limit above the maximum is clamped; negative limits and offsets
// are client errors rather than silently fixed. Empty text and an
// empty tag set leave those dimensions unfiltered.
func NewScreenshotFilter(raw dto.ScreenshotQuery) (repositories.ScreenshotFilter, error) {
	filter := repositories.ScreenshotFilter{
		TextQuery: raw.Query,
		SortBy:    repositories.SortByCreatedAt,
		SortOrder: repositories.SortDesc,
		Limit:     DefaultLimit,
	}

	switch {
	case raw.Limit < 0:
		return filter, &ValidationError{Field: "limit", Message: "must not be negative"}
	case raw.Limit > MaxLimit:
		filter.Limit = MaxLimit
	case raw.Limit > 0:
		filter.Limit = raw.Limit
	}

	if raw.Offset < 0 {
		return filter, &ValidationError{Field: "offset", Message: "must not be negative"}
	}
	filter.Offset = raw.Offset

	if raw.SortBy != "" {
		switch repositories.SortField(raw.SortBy) {
		case repositories.SortByCreatedAt, repositories.SortByTakenAt, repositories.SortByUpdatedAt:
			filter.SortBy = repositories.SortField(raw.SortBy)
		default:
			return filter, &ValidationError{Field: "sort_by", Message: "must be one of createdAt, takenAt, updatedAt"}
		}
	}

	if raw.SortOrder != "" {
		switch repositories.SortOrder(raw.SortOrder) {
		case repositories.SortAsc, repositories.SortDesc:
			filter.SortOrder = repositories.SortOrder(raw.SortOrder)
		default:
			return filter, &ValidationError{Field: "sort_order", Message: "must be asc or desc"}
		}
	}

	var err error
	if filter.DateFrom, err = parseDate("date_from", raw.DateFrom); err != nil {
		return filter, err
	}
	if filter.DateTo, err = parseDate("date_to", raw.DateTo); err != nil {
		return filter, err
	}

	if filter.TagIDs, err = parseTagIDs(raw.Tags); err != nil {
		return filter, err
	}

	return filter, nil
}

func parseDate(field, value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return nil, &ValidationError{Field: field, Message: "must be an RFC 3339 timestamp"}
	}
	return &t, nil
}

func parseTagIDs(values []string) ([]uuid.UUID, error) {
	if len(values) == 0 {
		return nil, nil
	}

	ids := make([]uuid.UUID, 0, len(values))
	for _, value := range values {
		id, err := uuid.Parse(value)
		if err != nil {
			return nil, &ValidationError{Field: "tags", Message: "must be a list of UUIDs"}
		}
		ids = append(ids, id)
	}
	return ids, nil
}
