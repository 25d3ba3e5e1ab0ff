package postgresql

import (
	"context"
	"fmt"

	"github.com/shotbox/shotbox/internal/domain/repositories"
	"github.com/shotbox/shotbox/internal/infrastructure/database"
)

// Repositories holds all repository implementations
type Repositories struct {
	UserRepo       repositories.UserRepository
	ScreenshotRepo repositories.ScreenshotRepository
	TagRepo        repositories.TagRepository
	OcrRepo        repositories.OcrRepository

	// Internal reference to database for health checks
	db *database.DB
}

// NewRepositories creates a new repositories container
func NewRepositories(db *database.DB) *Repositories {
	return &Repositories{
		UserRepo:       NewUserRepository(db),
		ScreenshotRepo: NewScreenshotRepository(db),
		TagRepo:        NewTagRepository(db),
		OcrRepo:        NewOcrRepository(db),
		db:             db,
	}
}

// HealthCheck verifies database connectivity
func (r *Repositories) HealthCheck(ctx context.Context) error {
	sqlDB, err := r.db.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	return nil
}
