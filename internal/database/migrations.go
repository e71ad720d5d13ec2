package database

import (
	"log/slog"

	"gorm.io/gorm"

	"github.com/LooWze/LooWzeIA/internal/models"
)

// cleanupDuplicateUsers removes users sharing an email (case-insensitively)
// before the unique index is added, keeping the oldest account.
// This runs BEFORE AutoMigrate to prevent constraint violations.
func cleanupDuplicateUsers(db *gorm.DB, log *slog.Logger) error {
	if !db.Migrator().HasTable("users") {
		return nil
	}

	result := db.Exec(`UPDATE users SET email = LOWER(TRIM(email))`)
	if result.Error != nil {
		log.Warn("failed to normalize user emails", "error", result.Error)
	}

	result = db.Exec(`
		DELETE FROM users
		WHERE id NOT IN (
			SELECT MIN(id)
			FROM users
			GROUP BY email
		)
	`)
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected > 0 {
		log.Warn("removed duplicate user accounts", "count", result.RowsAffected)
	}
	return nil
}

// RunMigrations runs any custom data migrations after schema changes
func RunMigrations(db *gorm.DB, log *slog.Logger) error {
	if log == nil {
		log = slog.Default()
	}
	return migrateFinishField(db, log)
}

// migrateFinishField rewrites free-form finish values to their canonical
// spelling. Safe to run repeatedly.
func migrateFinishField(db *gorm.DB, log *slog.Logger) error {
	if !db.Migrator().HasColumn(&models.OwnedCard{}, "finish") {
		return nil
	}

	var finishes []string
	if err := db.Model(&models.OwnedCard{}).Distinct().Pluck("COALESCE(finish, '')", &finishes).Error; err != nil {
		return err
	}

	for _, finish := range finishes {
		canonical := string(models.NormalizeFinish(finish))
		if canonical == finish {
			continue
		}
		result := db.Model(&models.OwnedCard{}).
			Where("COALESCE(finish, '') = ?", finish).
			Update("finish", canonical)
		if result.Error != nil {
			log.Warn("failed to migrate finish value", "from", finish, "to", canonical, "error", result.Error)
			continue
		}
		log.Info("migrated finish values", "from", finish, "to", canonical, "rows", result.RowsAffected)
	}
	return nil
}
