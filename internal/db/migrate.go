package db

import (
	"github.com/samaraie/linktree-backend/internal/app/model"
	"github.com/samaraie/linktree-backend/pkg/logger"
	"gorm.io/gorm"
)

// Models lists every table owned by this service
func Models() []interface{} {
	return []interface{}{
		&model.AdminUser{},
		&model.ResetToken{},
	}
}

// Migrate runs database migrations
func Migrate() error {
	return MigrateDB(DB)
}

// MigrateDB runs the migrations against an explicit handle
func MigrateDB(db *gorm.DB) error {
	logger.Info("Running database migrations...")

	models := Models()
	if err := db.AutoMigrate(models...); err != nil {
		logger.Error("Failed to run migrations", err)
		return err
	}

	logger.Info("Database migrations completed successfully", map[string]interface{}{
		"models_count": len(models),
	})
	return nil
}
