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

func defaultFilter() repositories.ScreenshotFilter {
	return repositories.ScreenshotFilter{
		Limit:     20,
		SortBy:    repositories.SortByCreatedAt,
		SortOrder: repositories.SortDesc,
	}
}

func TestScreenshotRepository_CreateAndGet(t *testing.T) {
	db := testutil.NewTestDB(t)
	defer db.Cleanup(t)

	repo := NewScreenshotRepository(db.DB)
	ctx := context.Background()

	user := db.CreateTestUser(t)

	screenshot := &models.Screenshot{
		UserID:           user.ID,
		OriginalFilePath: "path/shot.png",
		FileSize:         1024,
		Metadata: models.JSONB{
			models.MetaIsScreenshot:        true,
			models.MetaDetectionConfidence: 0.5,
		},
	}

	err := repo.Create(ctx, screenshot)
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, screenshot.ID)

	found, err := repo.GetByID(ctx, screenshot.ID)
	require.NoError(t, err)
	assert.Equal(t, screenshot.ID, found.ID)
	assert.Equal(t, true, found.Metadata[models.MetaIsScreenshot])
}

func TestScreenshotRepository_GetByID_NotFound(t *testing.T) {
	db := testutil.NewTestDB(t)
	defer db.Cleanup(t)

	repo := NewScreenshotRepository(db.DB)

	_, err := repo.GetByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestScreenshotRepository_List_ExcludesSoftDeleted(t *testing.T) {
	db := testutil.NewTestDB(t)
	defer db.Cleanup(t)

	repo := NewScreenshotRepository(db.DB)
	ctx := context.Background()

	user := db.CreateTestUser(t)
	alive := db.CreateTestScreenshot(t, user)
	deleted := db.CreateTestScreenshot(t, user)

	require.NoError(t, repo.SoftDelete(ctx, deleted.ID))

	screenshots, total, err := repo.List(ctx, user.ID, defaultFilter())
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, screenshots, 1)
	assert.Equal(t, alive.ID, screenshots[0].ID)

	// The soft-deleted row also disappears from direct lookups.
	_, err = repo.GetByID(ctx, deleted.ID)
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestScreenshotRepository_List_ScopedToUser(t *testing.T) {
	db := testutil.NewTestDB(t)
	defer db.Cleanup(t)

	repo := NewScreenshotRepository(db.DB)
	ctx := context.Background()

	user1 := db.CreateTestUser(t)
	user2 := db.CreateTestUser(t)
	mine := db.CreateTestScreenshot(t, user1)
	db.CreateTestScreenshot(t, user2)

	screenshots, total, err := repo.List(ctx, user1.ID, defaultFilter())
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, screenshots, 1)
	assert.Equal(t, mine.ID, screenshots[0].ID)
}

func TestScreenshotRepository_List_TextFilter(t *testing.T) {
	db := testutil.NewTestDB(t)
	defer db.Cleanup(t)

	repo := NewScreenshotRepository(db.DB)
	ctx := context.Background()

	user := db.CreateTestUser(t)
	withMatch := db.CreateTestScreenshot(t, user)
	withOther := db.CreateTestScreenshot(t, user)
	noOcr := db.CreateTestScreenshot(t, user)

	db.CreateTestOcr(t, withMatch, "Total: $42.50 INVOICE for groceries")
	db.CreateTestOcr(t, withOther, "boarding pass gate B12")

	filter := defaultFilter()
	filter.TextQuery = "invoice"

	screenshots, total, err := repo.List(ctx, user.ID, filter)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, screenshots, 1)
	assert.Equal(t, withMatch.ID, screenshots[0].ID)

	// A screenshot with no OCR record never matches a non-empty query.
	filter.TextQuery = "anything"
	screenshots, total, err = repo.List(ctx, user.ID, filter)
	require.NoError(t, err)
	assert.Equal(t, int64(0), total)
	assert.Empty(t, screenshots)
	_ = noOcr
}

func TestScreenshotRepository_List_TextFilter_CaseInsensitive(t *testing.T) {
	db := testutil.NewTestDB(t)
	defer db.Cleanup(t)

	repo := NewScreenshotRepository(db.DB)
	ctx := context.Background()

	user := db.CreateTestUser(t)
	screenshot := db.CreateTestScreenshot(t, user)
	db.CreateTestOcr(t, screenshot, "Meeting Notes From Monday")

	filter := defaultFilter()
	filter.TextQuery = "mEETING nOTES"

	screenshots, total, err := repo.List(ctx, user.ID, filter)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, screenshots, 1)
	assert.Equal(t, screenshot.ID, screenshots[0].ID)
}

func TestScreenshotRepository_List_TextFilter_LiteralMetacharacters(t *testing.T) {
	db := testutil.NewTestDB(t)
	defer db.Cleanup(t)

	repo := NewScreenshotRepository(db.DB)
	ctx := context.Background()

	user := db.CreateTestUser(t)
	percent := db.CreateTestScreenshot(t, user)
	spelled := db.CreateTestScreenshot(t, user)
	db.CreateTestOcr(t, percent, "battery at 10% remaining")
	db.CreateTestOcr(t, spelled, "battery at 10 percent remaining")

	// % and _ in the query are literal characters, not wildcards.
	filter := defaultFilter()
	filter.TextQuery = "10%rem"

	screenshots, total, err := repo.List(ctx, user.ID, filter)
	require.NoError(t, err)
	assert.Equal(t, int64(0), total)
	assert.Empty(t, screenshots)

	filter.TextQuery = "10% rem"
	screenshots, total, err = repo.List(ctx, user.ID, filter)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, screenshots, 1)
	assert.Equal(t, percent.ID, screenshots[0].ID)

	filter.TextQuery = "10_rem"
	_, total, err = repo.List(ctx, user.ID, filter)
	require.NoError(t, err)
	assert.Equal(t, int64(0), total)
}

func TestScreenshotRepository_List_TagFilter_OrSemantics(t *testing.T) {
	db := testutil.NewTestDB(t)
	defer db.Cleanup(t)

	repo := NewScreenshotRepository(db.DB)
	ctx := context.Background()

	user := db.CreateTestUser(t)
	tagA := db.CreateTestTag(t, user, "receipts")
	tagB := db.CreateTestTag(t, user, "travel")

	onlyA := db.CreateTestScreenshot(t, user)
	onlyB := db.CreateTestScreenshot(t, user)
	both := db.CreateTestScreenshot(t, user)
	db.CreateTestScreenshot(t, user) // untagged

	require.NoError(t, repo.AttachTags(ctx, onlyA.ID, []uuid.UUID{tagA.ID}))
	require.NoError(t, repo.AttachTags(ctx, onlyB.ID, []uuid.UUID{tagB.ID}))
	require.NoError(t, repo.AttachTags(ctx, both.ID, []uuid.UUID{tagA.ID, tagB.ID}))

	filter := defaultFilter()
	filter.TagIDs = []uuid.UUID{tagA.ID, tagB.ID}

	screenshots, total, err := repo.List(ctx, user.ID, filter)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)

	// A screenshot carrying both tags appears once, not twice.
	seen := map[uuid.UUID]int{}
	for _, s := range screenshots {
		seen[s.ID]++
	}
	assert.Equal(t, 1, seen[both.ID])
	assert.Equal(t, 1, seen[onlyA.ID])
	assert.Equal(t, 1, seen[onlyB.ID])
}

func TestScreenshotRepository_List_DateFilter_EitherTimestamp(t *testing.T) {
	db := testutil.NewTestDB(t)
	defer db.Cleanup(t)

	repo := NewScreenshotRepository(db.DB)
	ctx := context.Background()

	user := db.CreateTestUser(t)

	inRange := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	outOfRange := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

	// taken_at in range, created_at out of range
	byTakenAt := &models.Screenshot{
		UserID:           user.ID,
		OriginalFilePath: "a.png",
		FileSize:         1,
		TakenAt:          &inRange,
		CreatedAt:        outOfRange,
	}
	require.NoError(t, repo.Create(ctx, byTakenAt))

	// no taken_at, created_at in range
	byCreatedAt := &models.Screenshot{
		UserID:           user.ID,
		OriginalFilePath: "b.png",
		FileSize:         1,
		CreatedAt:        inRange,
	}
	require.NoError(t, repo.Create(ctx, byCreatedAt))

	// both timestamps out of range
	neither := &models.Screenshot{
		UserID:           user.ID,
		OriginalFilePath: "c.png",
		FileSize:         1,
		TakenAt:          &outOfRange,
		CreatedAt:        outOfRange,
	}
	require.NoError(t, repo.Create(ctx, neither))

	from := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC)
	filter := defaultFilter()
	filter.DateFrom = &from
	filter.DateTo = &to

	screenshots, total, err := repo.List(ctx, user.ID, filter)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)

	ids := map[uuid.UUID]bool{}
	for _, s := range screenshots {
		ids[s.ID] = true
	}
	assert.True(t, ids[byTakenAt.ID])
	assert.True(t, ids[byCreatedAt.ID])
	assert.False(t, ids[neither.ID])
}

func TestScreenshotRepository_List_CombinedFiltersAnd(t *testing.T) {
	db := testutil.NewTestDB(t)
	defer db.Cleanup(t)

	repo := NewScreenshotRepository(db.DB)
	ctx := context.Background()

	user := db.CreateTestUser(t)
	tag := db.CreateTestTag(t, user, "work")

	// Matches text but not tag.
	textOnly := db.CreateTestScreenshot(t, user)
	db.CreateTestOcr(t, textOnly, "quarterly report draft")

	// Matches tag but not text.
	tagOnly := db.CreateTestScreenshot(t, user)
	require.NoError(t, repo.AttachTags(ctx, tagOnly.ID, []uuid.UUID{tag.ID}))

	// Matches both.
	bothMatch := db.CreateTestScreenshot(t, user)
	db.CreateTestOcr(t, bothMatch, "final quarterly report")
	require.NoError(t, repo.AttachTags(ctx, bothMatch.ID, []uuid.UUID{tag.ID}))

	filter := defaultFilter()
	filter.TextQuery = "quarterly"
	filter.TagIDs = []uuid.UUID{tag.ID}

	screenshots, total, err := repo.List(ctx, user.ID, filter)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, screenshots, 1)
	assert.Equal(t, bothMatch.ID, screenshots[0].ID)
}

func TestScreenshotRepository_List_PaginationIsStable(t *testing.T) {
	db := testutil.NewTestDB(t)
	defer db.Cleanup(t)

	repo := NewScreenshotRepository(db.DB)
	ctx := context.Background()

	user := db.CreateTestUser(t)

	// Identical created_at on every row forces the id tiebreak.
	createdAt := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		s := &models.Screenshot{
			UserID:           user.ID,
			OriginalFilePath: "p.png",
			FileSize:         1,
			CreatedAt:        createdAt,
		}
		require.NoError(t, repo.Create(ctx, s))
	}

	filter := defaultFilter()
	filter.Limit = 2

	var collected []uuid.UUID
	for offset := 0; offset < 5; offset += 2 {
		filter.Offset = offset
		page, total, err := repo.List(ctx, user.ID, filter)
		require.NoError(t, err)
		assert.Equal(t, int64(5), total)
		for _, s := range page {
			collected = append(collected, s.ID)
		}
	}

	// Every row shows up exactly once across consecutive pages.
	require.Len(t, collected, 5)
	seen := map[uuid.UUID]bool{}
	for _, id := range collected {
		assert.False(t, seen[id], "screenshot repeated across pages")
		seen[id] = true
	}
}

func TestScreenshotRepository_List_SortAscending(t *testing.T) {
	db := testutil.NewTestDB(t)
	defer db.Cleanup(t)

	repo := NewScreenshotRepository(db.DB)
	ctx := context.Background()

	user := db.CreateTestUser(t)

	older := &models.Screenshot{
		UserID:           user.ID,
		OriginalFilePath: "old.png",
		FileSize:         1,
		CreatedAt:        time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, repo.Create(ctx, older))

	newer := &models.Screenshot{
		UserID:           user.ID,
		OriginalFilePath: "new.png",
		FileSize:         1,
		CreatedAt:        time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, repo.Create(ctx, newer))

	filter := defaultFilter()
	filter.SortOrder = repositories.SortAsc

	screenshots, _, err := repo.List(ctx, user.ID, filter)
	require.NoError(t, err)
	require.Len(t, screenshots, 2)
	assert.Equal(t, older.ID, screenshots[0].ID)
	assert.Equal(t, newer.ID, screenshots[1].ID)
}

func TestScreenshotRepository_AttachTags_Idempotent(t *testing.T) {
	db := testutil.NewTestDB(t)
	defer db.Cleanup(t)

	repo := NewScreenshotRepository(db.DB)
	ctx := context.Background()

	user := db.CreateTestUser(t)
	tag := db.CreateTestTag(t, user, "memes")
	screenshot := db.CreateTestScreenshot(t, user)

	require.NoError(t, repo.AttachTags(ctx, screenshot.ID, []uuid.UUID{tag.ID}))
	require.NoError(t, repo.AttachTags(ctx, screenshot.ID, []uuid.UUID{tag.ID}))

	var count int64
	err := db.DB.Table("screenshot_tags").
		Where("screenshot_id = ? AND tag_id = ?", screenshot.ID, tag.ID).
		Count(&count).Error
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestScreenshotRepository_DetachTag(t *testing.T) {
	db := testutil.NewTestDB(t)
	defer db.Cleanup(t)

	repo := NewScreenshotRepository(db.DB)
	ctx := context.Background()

	user := db.CreateTestUser(t)
	tag := db.CreateTestTag(t, user, "travel")
	screenshot := db.CreateTestScreenshot(t, user)

	require.NoError(t, repo.AttachTags(ctx, screenshot.ID, []uuid.UUID{tag.ID}))

	removed, err := repo.DetachTag(ctx, screenshot.ID, tag.ID)
	require.NoError(t, err)
	assert.True(t, removed)

	// Second detach reports the association was already gone.
	removed, err = repo.DetachTag(ctx, screenshot.ID, tag.ID)
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestScreenshotRepository_SoftDelete_NotFound(t *testing.T) {
	db := testutil.NewTestDB(t)
	defer db.Cleanup(t)

	repo := NewScreenshotRepository(db.DB)
	ctx := context.Background()

	err := repo.SoftDelete(ctx, uuid.New())
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestScreenshotRepository_SoftDelete_Twice(t *testing.T) {
	db := testutil.NewTestDB(t)
	defer db.Cleanup(t)

	repo := NewScreenshotRepository(db.DB)
	ctx := context.Background()

	user := db.CreateTestUser(t)
	screenshot := db.CreateTestScreenshot(t, user)

	require.NoError(t, repo.SoftDelete(ctx, screenshot.ID))
	assert.ErrorIs(t, repo.SoftDelete(ctx, screenshot.ID), repositories.ErrNotFound)
}

func TestScreenshotRepository_MarkProcessedAndListUnprocessed(t *testing.T) {
	db := testutil.NewTestDB(t)
	defer db.Cleanup(t)

	repo := NewScreenshotRepository(db.DB)
	ctx := context.Background()

	user := db.CreateTestUser(t)
	first := db.CreateTestScreenshot(t, user)
	second := db.CreateTestScreenshot(t, user)

	unprocessed, err := repo.ListUnprocessed(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, unprocessed, 2)

	require.NoError(t, repo.MarkProcessed(ctx, first.ID))

	unprocessed, err = repo.ListUnprocessed(ctx, 10)
	require.NoError(t, err)
	require.Len(t, unprocessed, 1)
	assert.Equal(t, second.ID, unprocessed[0].ID)
}
