package testutil

import (
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/shotbox/shotbox/internal/infrastructure/database"
	"github.com/shotbox/shotbox/internal/infrastructure/database/models"
)

// TestDB wraps the database for testing
type TestDB struct {
	*database.DB
}

// NewTestDB creates a new test database connection
func NewTestDB(t *testing.T) *TestDB {
	t.Helper()

	// Use DATABASE_URL_TEST if available (for Docker), otherwise SQLite
	databaseURL := os.Getenv("DATABASE_URL_TEST")
	if databaseURL == "" {
		databaseURL = "file::memory:?cache=shared"
		t.Logf("Using SQLite in-memory database for testing")
	} else {
		t.Logf("Using PostgreSQL database for testing: %s", databaseURL)
	}

	db, err := database.New(databaseURL)
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	if err := db.AutoMigrate(models.GetAllModels()...); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	return &TestDB{DB: db}
}

// Cleanup closes the test database
func (db *TestDB) Cleanup(t *testing.T) {
	t.Helper()
	if err := db.Close(); err != nil {
		t.Errorf("Failed to close test database: %v", err)
	}
}

// CreateTestUser creates a test user
func (db *TestDB) CreateTestUser(t *testing.T) *models.User {
	t.Helper()

	user := &models.User{
		ID:          uuid.New(),
		Email:       fmt.Sprintf("test-%s@example.com", uuid.New().String()[:8]),
		DisplayName: "Test User",
	}

	if err := db.Create(user).Error; err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}

	return user
}

// CreateTestScreenshot creates a test screenshot
func (db *TestDB) CreateTestScreenshot(t *testing.T, user *models.User) *models.Screenshot {
	t.Helper()

	screenshot := &models.Screenshot{
		ID:               uuid.New(),
		UserID:           user.ID,
		OriginalFilePath: fmt.Sprintf("%s/%s.png", user.ID, uuid.New()),
		FileSize:         2048,
		Metadata: models.JSONB{
			models.MetaIsScreenshot: true,
			models.MetaFileName:     "Screenshot_test.png",
		},
	}

	if err := db.Create(screenshot).Error; err != nil {
		t.Fatalf("Failed to create test screenshot: %v", err)
	}

	return screenshot
}

// CreateTestTag creates a test tag
func (db *TestDB) CreateTestTag(t *testing.T, user *models.User, name string) *models.Tag {
	t.Helper()

	tag := &models.Tag{
		ID:     uuid.New(),
		UserID: user.ID,
		Name:   name,
		Color:  "#3B82F6",
	}

	if err := db.Create(tag).Error; err != nil {
		t.Fatalf("Failed to create test tag: %v", err)
	}

	return tag
}

// CreateTestOcr creates OCR content for a screenshot
func (db *TestDB) CreateTestOcr(t *testing.T, screenshot *models.Screenshot, text string) *models.OcrContent {
	t.Helper()

	content := &models.OcrContent{
		ID:            uuid.New(),
		ScreenshotID:  screenshot.ID,
		ExtractedText: text,
		Language:      "en",
		ProcessedAt:   time.Now().UTC(),
	}

	if err := db.Create(content).Error; err != nil {
		t.Fatalf("Failed to create test ocr content: %v", err)
	}

	return content
}
