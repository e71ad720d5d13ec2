package database

import (
	"fmt"
	"log/slog"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/LooWze/LooWzeIA/internal/models"
)

// Initialize opens the sqlite database at dbPath and migrates the schema.
// Pass "file::memory:" for a throwaway database.
func Initialize(dbPath string, verbose bool, log *slog.Logger) (*gorm.DB, error) {
	if log == nil {
		log = slog.Default()
	}

	level := logger.Warn
	if verbose {
		level = logger.Info
	}

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.NewSlogLogger(log.With("component", "gorm"), logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			IgnoreRecordNotFoundError: true,
			LogLevel:                  level,
		}),
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// sqlite allows a single writer; an in-memory database also exists per
	// connection, so keep the pool at one.
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	log.Info("database connected", "path", dbPath)

	if err := cleanupDuplicateUsers(db, log); err != nil {
		return nil, fmt.Errorf("cleanup duplicate users: %w", err)
	}

	if err := db.AutoMigrate(&models.User{}, &models.OwnedCard{}, &models.UploadedImage{}); err != nil {
		return nil, fmt.Errorf("migrate schema: %w", err)
	}

	if err := RunMigrations(db, log); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	log.Info("database migration completed")
	return db, nil
}
