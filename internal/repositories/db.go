package repositories

import (
	"fmt"
	"log/slog"

	"github.com/rohits-web03/sitedrop/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ConnectDatabase opens the postgres connection and migrates the schema.
func ConnectDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	// Run migrations
	if err := db.AutoMigrate(&models.Deployment{}); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	slog.Info("successfully connected to database")
	return db, nil
}
