package main

import (
	"fmt"
	"log"
	"os"

	"github.com/shotbox/shotbox/internal/app/config"
	"github.com/shotbox/shotbox/internal/infrastructure/database"
	"github.com/shotbox/shotbox/internal/infrastructure/database/models"
	"github.com/shotbox/shotbox/pkg/logger"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		return
	}

	command := os.Args[1]

	logger := logger.New()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := database.New(cfg.GetDatabaseURL())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	switch command {
	case "up":
		runMigrations(db, logger)
	case "reset":
		resetDatabase(db, logger)
	case "seed":
		seedDatabase(db, logger)
	case "status":
		migrationStatus(db, logger)
	default:
		logger.Error("Unknown command", "command", command)
		printUsage()
	}
}

func printUsage() {
	fmt.Println("Usage: go run cmd/migrate/main.go <command>")
	fmt.Println("")
	fmt.Println("Commands:")
	fmt.Println("  up     - Run all pending migrations")
	fmt.Println("  reset  - Drop all tables and recreate them")
	fmt.Println("  seed   - Seed the database with initial data")
	fmt.Println("  status - Show migration status")
}

func runMigrations(db *database.DB, logger *logger.Logger) {
	logger.Info("Running database migrations...")

	if err := db.AutoMigrate(models.GetAllModels()...); err != nil {
		logger.Error("Failed to run migrations", "error", err)
		return
	}

	if err := createIndexes(db); err != nil {
		logger.Error("Failed to create indexes", "error", err)
		return
	}

	logger.Info("Database migrations completed successfully")
}

func resetDatabase(db *database.DB, logger *logger.Logger) {
	logger.Info("Resetting database...")

	// Drop in reverse dependency order.
	tables := []interface{}{
		&models.OcrContent{},
		&models.Screenshot{},
		&models.Tag{},
		&models.User{},
	}

	for _, table := range tables {
		if err := db.Migrator().DropTable(table); err != nil {
			logger.Error("Failed to drop table", "error", err)
		}
	}

	if err := db.Exec("DROP TABLE IF EXISTS screenshot_tags").Error; err != nil {
		logger.Error("Failed to drop junction table", "table", "screenshot_tags", "error", err)
	}

	runMigrations(db, logger)

	logger.Info("Database reset completed")
}

func seedDatabase(db *database.DB, logger *logger.Logger) {
	logger.Info("Seeding database with initial data...")

	defaultUser := &models.User{
		Email: "demo@shotbox.local",
	}

	if err := db.FirstOrCreate(defaultUser, models.User{Email: "demo@shotbox.local"}).Error; err != nil {
		logger.Error("Failed to create default user", "error", err)
		return
	}

	defaultTags := []models.Tag{
		{
			UserID:      defaultUser.ID,
			Name:        "receipts",
			Color:       "#F59E0B",
			IsSystemTag: true,
		},
		{
			UserID:      defaultUser.ID,
			Name:        "memes",
			Color:       "#8B5CF6",
			IsSystemTag: true,
		},
		{
			UserID:      defaultUser.ID,
			Name:        "work",
			Color:       "#3B82F6",
			IsSystemTag: true,
		},
		{
			UserID:      defaultUser.ID,
			Name:        "travel",
			Color:       "#10B981",
			IsSystemTag: true,
		},
	}

	for _, tag := range defaultTags {
		if err := db.FirstOrCreate(&tag, models.Tag{
			UserID: defaultUser.ID,
			Name:   tag.Name,
		}).Error; err != nil {
			logger.Error("Failed to create tag", "name", tag.Name, "error", err)
		}
	}

	logger.Info("Database seeding completed successfully", "user_id", defaultUser.ID)
}

func migrationStatus(db *database.DB, logger *logger.Logger) {
	logger.Info("Checking migration status...")

	tables := map[string]interface{}{
		"users":        &models.User{},
		"screenshots":  &models.Screenshot{},
		"tags":         &models.Tag{},
		"ocr_contents": &models.OcrContent{},
	}

	for tableName, model := range tables {
		exists := db.Migrator().HasTable(model)
		status := "✓ exists"
		if !exists {
			status = "✗ missing"
		}
		logger.Info("Table status", "table", tableName, "status", status)
	}

	junctionExists := db.Migrator().HasTable("screenshot_tags")
	status := "✓ exists"
	if !junctionExists {
		status = "✗ missing"
	}
	logger.Info("Table status", "table", "screenshot_tags", "status", status)
}

func createIndexes(db *database.DB) error {
	// Indexes the model tags don't cover, for the hot filter paths.
	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_screenshots_user_live ON screenshots (user_id, is_deleted)",
		"CREATE INDEX IF NOT EXISTS idx_screenshots_created_at ON screenshots (created_at)",
		"CREATE INDEX IF NOT EXISTS idx_screenshots_taken_at ON screenshots (taken_at)",
		"CREATE INDEX IF NOT EXISTS idx_screenshots_unprocessed ON screenshots (ai_processed, created_at)",
		"CREATE INDEX IF NOT EXISTS idx_screenshot_tags_tag ON screenshot_tags (tag_id)",
	}

	for _, stmt := range indexes {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("index creation failed: %w", err)
		}
	}

	return nil
}
