package postgresql

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shotbox/shotbox/internal/domain/repositories"
	"github.com/shotbox/shotbox/internal/infrastructure/database/models"
	"github.com/shotbox/shotbox/internal/infrastructure/repositories/postgresql/testutil"
)

func TestOcrRepository_UpsertAndGet(t *testing.T) {
	db := testutil.NewTestDB(t)
	defer db.Cleanup(t)

	repo := NewOcrRepository(db.DB)
	ctx := context.Background()

	user := db.CreateTestUser(t)
	screenshot := db.CreateTestScreenshot(t, user)

	confidence := 0.92
	content := &models.OcrContent{
		ScreenshotID:    screenshot.ID,
		ExtractedText:   "Subtotal 19.99",
		Language:        "en",
		ConfidenceScore: &confidence,
		ProcessedAt:     time.Now().UTC(),
	}

	require.NoError(t, repo.Upsert(ctx, content))

	found, err := repo.GetByScreenshotID(ctx, screenshot.ID)
	require.NoError(t, err)
	assert.Equal(t, "Subtotal 19.99", found.ExtractedText)
	assert.Equal(t, "en", found.Language)
	require.NotNil(t, found.ConfidenceScore)
	assert.InDelta(t, 0.92, *found.ConfidenceScore, 0.001)
}

func TestOcrRepository_Upsert_OverwritesExisting(t *testing.T) {
	db := testutil.NewTestDB(t)
	defer db.Cleanup(t)

	repo := NewOcrRepository(db.DB)
	ctx := context.Background()

	user := db.CreateTestUser(t)
	screenshot := db.CreateTestScreenshot(t, user)

	first := &models.OcrContent{
		ScreenshotID:  screenshot.ID,
		ExtractedText: "first pass",
		Language:      "en",
		ProcessedAt:   time.Now().UTC(),
	}
	require.NoError(t, repo.Upsert(ctx, first))

	second := &models.OcrContent{
		ScreenshotID:  screenshot.ID,
		ExtractedText: "second pass",
		Language:      "de",
		ProcessedAt:   time.Now().UTC(),
	}
	require.NoError(t, repo.Upsert(ctx, second))

	found, err := repo.GetByScreenshotID(ctx, screenshot.ID)
	require.NoError(t, err)
	assert.Equal(t, "second pass", found.ExtractedText)
	assert.Equal(t, "de", found.Language)

	// Still exactly one record for the screenshot.
	var count int64
	err = db.DB.Model(&models.OcrContent{}).
		Where("screenshot_id = ?", screenshot.ID).
		Count(&count).Error
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestOcrRepository_GetByScreenshotID_NotFound(t *testing.T) {
	db := testutil.NewTestDB(t)
	defer db.Cleanup(t)

	repo := NewOcrRepository(db.DB)

	_, err := repo.GetByScreenshotID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestOcrRepository_Delete(t *testing.T) {
	db := testutil.NewTestDB(t)
	defer db.Cleanup(t)

	repo := NewOcrRepository(db.DB)
	ctx := context.Background()

	user := db.CreateTestUser(t)
	screenshot := db.CreateTestScreenshot(t, user)
	db.CreateTestOcr(t, screenshot, "to be removed")

	require.NoError(t, repo.Delete(ctx, screenshot.ID))

	_, err := repo.GetByScreenshotID(ctx, screenshot.ID)
	assert.ErrorIs(t, err, repositories.ErrNotFound)

	assert.ErrorIs(t, repo.Delete(ctx, screenshot.ID), repositories.ErrNotFound)
}
